package handler

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"mindmap/internal/domain"
	"mindmap/internal/service"
)

// uploadField is the multipart field carrying attached files
const uploadField = "files"

// multipartMemory is how much of a form is buffered before spilling to disk
const multipartMemory = 32 << 20

// AttachDocuments accepts a multipart batch of files for one node. Files
// outside the allow-list are reported in the response without failing the
// request.
func (h *GraphHandler) AttachDocuments(w http.ResponseWriter, r *http.Request) {
	limit := h.maxUploadBytes*int64(h.maxFiles) + (1 << 20)
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.writeError(w, "Upload too large", err.Error(), http.StatusRequestEntityTooLarge)
			return
		}
		h.writeError(w, "Invalid multipart form", err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File[uploadField]
	if len(files) == 0 {
		h.writeError(w, "No files", fmt.Sprintf("expected one or more %q parts", uploadField), http.StatusBadRequest)
		return
	}

	uploads := make([]service.Upload, 0, len(files))
	for _, fh := range files {
		uploads = append(uploads, toUpload(fh))
	}

	result, err := h.svc.Attach(r.Context(), chi.URLParam(r, "id"), uploads)
	if err != nil {
		h.fail(w, "Failed to attach documents", err)
		return
	}

	status := http.StatusOK
	if len(result.Attached) == 0 && len(result.Rejected)+len(result.Failed) > 0 {
		status = http.StatusUnprocessableEntity
	}
	h.logger.Debug("attach finished",
		zap.String("node_id", result.NodeID),
		zap.Int("attached", len(result.Attached)),
		zap.Int("rejected", len(result.Rejected)),
		zap.Int("failed", len(result.Failed)))
	h.writeJSON(w, result, status)
}

func toUpload(fh *multipart.FileHeader) service.Upload {
	return service.Upload{
		Name:     fh.Filename,
		MIMEType: detectType(fh),
		Size:     fh.Size,
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}

// detectType trusts the declared part type unless it is missing or generic,
// in which case the content is sniffed
func detectType(fh *multipart.FileHeader) string {
	declared := domain.NormalizeMIMEType(fh.Header.Get("Content-Type"))
	if declared != "" && declared != "application/octet-stream" {
		return declared
	}

	f, err := fh.Open()
	if err != nil {
		return declared
	}
	defer f.Close()

	mt, err := mimetype.DetectReader(f)
	if err != nil {
		return declared
	}
	detected := domain.NormalizeMIMEType(mt.String())
	if detected == domain.MIMEText && isMarkdownName(fh.Filename) {
		return domain.MIMEMarkdown
	}
	return detected
}

func isMarkdownName(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".md", ".markdown":
		return true
	}
	return false
}

// ListDocuments returns a node's documents without their content
func (h *GraphHandler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	node, err := h.svc.GetNode(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, "Failed to list documents", err)
		return
	}

	docs := make([]service.DocumentInfo, 0, len(node.Documents))
	for _, d := range node.Documents {
		docs = append(docs, service.DocumentInfo{
			ID:       d.ID,
			Name:     d.Name,
			MIMEType: d.MIMEType,
			Size:     d.Size,
		})
	}
	h.writeJSON(w, docs, http.StatusOK)
}

// OpenDocument serves a document for viewing in the browser
func (h *GraphHandler) OpenDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := h.svc.GetDocument(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "docID"))
	if err != nil {
		h.fail(w, "Failed to open document", err)
		return
	}

	view, err := doc.Open()
	if err != nil {
		h.fail(w, "Failed to open document", err)
		return
	}

	w.Header().Set("Content-Type", view.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(view.Body)))
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", doc.Name))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(view.Body); err != nil {
		h.logger.Warn("failed to write document", zap.String("document_id", doc.ID), zap.Error(err))
	}
}
