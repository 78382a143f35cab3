package service

import (
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mindmap/internal/domain"
	"mindmap/internal/graph"
)

func textUpload(name, mimeType, body string) Upload {
	return Upload{
		Name:     name,
		MIMEType: mimeType,
		Size:     int64(len(body)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(body)), nil
		},
	}
}

// gatedUpload blocks its read until gate is closed and reports when the
// read has started on opened
func gatedUpload(name, body string, opened chan<- string, gate <-chan struct{}) Upload {
	u := textUpload(name, domain.MIMEText, body)
	open := u.Open
	u.Open = func() (io.ReadCloser, error) {
		if opened != nil {
			opened <- name
		}
		<-gate
		return open()
	}
	return u
}

func documentNames(n domain.Node) []string {
	names := make([]string, 0, len(n.Documents))
	for _, d := range n.Documents {
		names = append(names, d.Name)
	}
	return names
}

func TestAttach_RejectsUnsupportedAndKeepsTheRest(t *testing.T) {
	h := startService(t)

	res, err := h.svc.Attach(h.ctx, "1", []Upload{
		textUpload("notes.txt", domain.MIMEText, "hello"),
		textUpload("setup.exe", "application/x-msdownload", "MZ"),
		textUpload("paper.pdf", domain.MIMEPDF, "%PDF-1.4"),
	})
	require.NoError(t, err)

	require.Len(t, res.Rejected, 1)
	assert.Equal(t, "setup.exe", res.Rejected[0].Name)
	assert.Equal(t,
		"File type application/x-msdownload is not supported. Please upload PDF, TXT, MD, or DOC files.",
		res.Rejected[0].Message)

	require.Len(t, res.Attached, 2)
	assert.Equal(t, "notes.txt", res.Attached[0].Name)
	assert.Equal(t, "paper.pdf", res.Attached[1].Name)

	node, err := h.svc.GetNode(h.ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, []string{"notes.txt", "paper.pdf"}, documentNames(node))
	assert.Equal(t, "hello", node.Documents[0].Content)
	assert.True(t, strings.HasPrefix(node.Documents[1].Content, "data:application/pdf;base64,"))

	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.DocumentsRejected))
	assert.Equal(t, 2.0, testutil.ToFloat64(h.metrics.DocumentsAttached))
}

func TestAttach_OnlyRejected(t *testing.T) {
	h := startService(t)

	res, err := h.svc.Attach(h.ctx, "1", []Upload{textUpload("a.exe", "application/octet-stream", "x")})
	require.NoError(t, err)
	assert.Len(t, res.Rejected, 1)
	assert.Empty(t, res.Attached)

	node, err := h.svc.GetNode(h.ctx, "1")
	require.NoError(t, err)
	assert.Empty(t, node.Documents)
}

func TestAttach_MIMEParametersIgnored(t *testing.T) {
	h := startService(t)

	res, err := h.svc.Attach(h.ctx, "1", []Upload{textUpload("a.md", "text/markdown; charset=UTF-8", "# A")})
	require.NoError(t, err)
	require.Len(t, res.Attached, 1)
	assert.Equal(t, domain.MIMEMarkdown, res.Attached[0].MIMEType)
}

func TestAttach_OrderFollowsSubmissionNotCompletion(t *testing.T) {
	h := startService(t)
	_, err := h.svc.Attach(h.ctx, "1", []Upload{textUpload("earlier.txt", domain.MIMEText, "0")})
	require.NoError(t, err)
	h.drain()

	names := []string{"a.txt", "b.txt", "c.txt"}
	gates := make([]chan struct{}, len(names))
	uploads := make([]Upload, len(names))
	for i, name := range names {
		gates[i] = make(chan struct{})
		uploads[i] = gatedUpload(name, name, nil, gates[i])
	}

	type attachReturn struct {
		res *AttachResult
		err error
	}
	done := make(chan attachReturn, 1)
	go func() {
		res, err := h.svc.Attach(h.ctx, "1", uploads)
		done <- attachReturn{res, err}
	}()

	for _, i := range []int{2, 0, 1} {
		close(gates[i])
		e := h.waitFor(t, EventDocumentAttached)
		assert.Equal(t, names[i], e.Payload.(DocumentAttachedPayload).Name)
	}

	var ret attachReturn
	select {
	case ret = <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("attach did not finish")
	}
	require.NoError(t, ret.err)
	require.Len(t, ret.res.Attached, 3)
	for i, info := range ret.res.Attached {
		assert.Equal(t, names[i], info.Name)
	}

	node, err := h.svc.GetNode(h.ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, []string{"earlier.txt", "a.txt", "b.txt", "c.txt"}, documentNames(node))
}

func TestAttach_DiscardsReadsForDeletedNode(t *testing.T) {
	h := startService(t)
	n, err := h.svc.CreateNode(h.ctx, "Doomed", "")
	require.NoError(t, err)

	opened := make(chan string, 1)
	gate := make(chan struct{})

	type attachReturn struct {
		res *AttachResult
		err error
	}
	done := make(chan attachReturn, 1)
	go func() {
		res, err := h.svc.Attach(h.ctx, n.ID, []Upload{gatedUpload("late.txt", "late", opened, gate)})
		done <- attachReturn{res, err}
	}()

	select {
	case <-opened:
	case <-time.After(2 * time.Second):
		t.Fatal("read never started")
	}
	_, err = h.svc.DeleteNode(h.ctx, n.ID)
	require.NoError(t, err)
	close(gate)

	ret := <-done
	require.NoError(t, ret.err)
	assert.Equal(t, 1, ret.res.Discarded)
	assert.Empty(t, ret.res.Attached)

	_, err = h.svc.GetNode(h.ctx, n.ID)
	assert.ErrorIs(t, err, graph.ErrNodeNotFound)
	nodes, err := h.svc.ListNodes(h.ctx)
	require.NoError(t, err)
	assert.Len(t, nodes, 1)
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.DocumentsDiscarded))
}

func TestAttach_Limits(t *testing.T) {
	h := startService(t, func(o *Options) {
		o.MaxFiles = 2
		o.MaxUploadBytes = 4
	})

	t.Run("too many files", func(t *testing.T) {
		_, err := h.svc.Attach(h.ctx, "1", []Upload{
			textUpload("a.txt", domain.MIMEText, "a"),
			textUpload("b.txt", domain.MIMEText, "b"),
			textUpload("c.txt", domain.MIMEText, "c"),
		})
		assert.ErrorIs(t, err, ErrTooManyFiles)
	})

	t.Run("oversized file fails alone", func(t *testing.T) {
		res, err := h.svc.Attach(h.ctx, "1", []Upload{
			textUpload("big.txt", domain.MIMEText, "too large"),
			textUpload("ok.txt", domain.MIMEText, "ok"),
		})
		require.NoError(t, err)
		require.Len(t, res.Failed, 1)
		assert.Equal(t, "big.txt", res.Failed[0].Name)
		require.Len(t, res.Attached, 1)
		assert.Equal(t, "ok.txt", res.Attached[0].Name)
	})

	t.Run("open error", func(t *testing.T) {
		broken := textUpload("broken.txt", domain.MIMEText, "")
		broken.Open = func() (io.ReadCloser, error) { return nil, errors.New("disk gone") }

		res, err := h.svc.Attach(h.ctx, "1", []Upload{broken})
		require.NoError(t, err)
		require.Len(t, res.Failed, 1)
		assert.Contains(t, res.Failed[0].Message, "disk gone")
	})
}

func TestAttach_UnknownNode(t *testing.T) {
	h := startService(t)
	_, err := h.svc.Attach(h.ctx, "99", []Upload{textUpload("a.txt", domain.MIMEText, "a")})
	assert.ErrorIs(t, err, graph.ErrNodeNotFound)
}

func TestGetDocument(t *testing.T) {
	h := startService(t)
	res, err := h.svc.Attach(h.ctx, "1", []Upload{textUpload("a.txt", domain.MIMEText, "alpha")})
	require.NoError(t, err)

	doc, err := h.svc.GetDocument(h.ctx, "1", res.Attached[0].ID)
	require.NoError(t, err)
	view, err := doc.Open()
	require.NoError(t, err)
	assert.Equal(t, "alpha", string(view.Body))

	_, err = h.svc.GetDocument(h.ctx, "1", "missing")
	assert.ErrorIs(t, err, ErrDocumentNotFound)
}
