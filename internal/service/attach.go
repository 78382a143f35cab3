package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"mindmap/internal/domain"
	"mindmap/internal/graph"
	"mindmap/internal/metrics"
)

// Upload is one file of an attach batch
type Upload struct {
	Name     string
	MIMEType string
	Size     int64
	Open     func() (io.ReadCloser, error)
}

// DocumentInfo describes an attached document without its content
type DocumentInfo struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	MIMEType string `json:"type"`
	Size     int64  `json:"size"`
}

// AttachResult reports what happened to each file of a batch. Slices are in
// submission order.
type AttachResult struct {
	NodeID    string             `json:"node_id"`
	Attached  []DocumentInfo     `json:"attached"`
	Rejected  []domain.Rejection `json:"rejected"`
	Failed    []domain.Rejection `json:"failed"`
	Discarded int                `json:"discarded"`
}

type attachOutcome struct {
	info      *DocumentInfo
	failure   *domain.Rejection
	discarded bool
}

// Attach validates uploads against the allow-list and attaches the accepted
// ones to a node. Rejected files do not stop the batch. Accepted files are
// read concurrently and each finished read is appended on its own; the
// final document order matches the order of uploads.
func (s *GraphService) Attach(ctx context.Context, nodeID string, uploads []Upload) (*AttachResult, error) {
	if len(uploads) > s.opts.MaxFiles {
		return nil, fmt.Errorf("%d files, limit is %d: %w", len(uploads), s.opts.MaxFiles, ErrTooManyFiles)
	}
	if _, err := s.GetNode(ctx, nodeID); err != nil {
		return nil, err
	}

	result := &AttachResult{
		NodeID:   nodeID,
		Attached: make([]DocumentInfo, 0, len(uploads)),
		Rejected: make([]domain.Rejection, 0),
		Failed:   make([]domain.Rejection, 0),
	}

	batch := uuid.NewString()
	outcomes := make([]attachOutcome, len(uploads))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.ReadConcurrency)

	for i, u := range uploads {
		if !domain.IsAllowedMIMEType(u.MIMEType) {
			result.Rejected = append(result.Rejected, domain.Reject(u.Name, u.MIMEType))
			s.metrics.Inc(metrics.DocumentsRejected)
			s.logger.Info("file rejected",
				zap.String("node_id", nodeID),
				zap.String("name", u.Name),
				zap.String("type", u.MIMEType))
			continue
		}

		i, u := i, u
		g.Go(func() error {
			data, err := s.readUpload(u)
			if err != nil {
				outcomes[i].failure = &domain.Rejection{
					Name:     u.Name,
					MIMEType: u.MIMEType,
					Message:  fmt.Sprintf("Could not read file %s: %v", u.Name, err),
				}
				s.logger.Warn("file read failed", zap.String("name", u.Name), zap.Error(err))
				return nil
			}

			doc := domain.NewDocument(u.Name, u.MIMEType, data)
			doc.Batch, doc.Seq = batch, i

			err = s.appendDocument(gctx, nodeID, doc)
			switch {
			case errors.Is(err, graph.ErrNodeNotFound):
				outcomes[i].discarded = true
				return nil
			case err != nil:
				return err
			}
			outcomes[i].info = &DocumentInfo{ID: doc.ID, Name: doc.Name, MIMEType: doc.MIMEType, Size: doc.Size}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("attach to node %s: %w", nodeID, err)
	}

	for _, o := range outcomes {
		switch {
		case o.info != nil:
			result.Attached = append(result.Attached, *o.info)
		case o.failure != nil:
			result.Failed = append(result.Failed, *o.failure)
		case o.discarded:
			result.Discarded++
		}
	}
	return result, nil
}

func (s *GraphService) readUpload(u Upload) ([]byte, error) {
	if u.Open == nil {
		return nil, errors.New("no content")
	}
	rc, err := u.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, s.opts.MaxUploadBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > s.opts.MaxUploadBytes {
		return nil, fmt.Errorf("file exceeds the %d byte limit", s.opts.MaxUploadBytes)
	}
	return data, nil
}

// appendDocument stores one finished read. If the node was deleted while the
// read was in flight the document is dropped and ErrNodeNotFound returned.
func (s *GraphService) appendDocument(ctx context.Context, nodeID string, doc domain.Document) error {
	return s.exec(ctx, "append_document", func() ([]Event, error) {
		node, err := s.reg.AttachDocument(nodeID, doc)
		if err != nil {
			s.metrics.Inc(metrics.DocumentsDiscarded)
			s.logger.Info("discarding document for deleted node",
				zap.String("node_id", nodeID),
				zap.String("name", doc.Name))
			return nil, err
		}
		s.metrics.Inc(metrics.DocumentsAttached)

		pos := len(node.Documents) - 1
		for i, d := range node.Documents {
			if d.ID == doc.ID {
				pos = i
				break
			}
		}
		return []Event{{
			Type: EventDocumentAttached,
			Payload: DocumentAttachedPayload{
				NodeID:     nodeID,
				DocumentID: doc.ID,
				Name:       doc.Name,
				MIMEType:   doc.MIMEType,
				Size:       doc.Size,
				Position:   pos,
			},
		}}, nil
	})
}
