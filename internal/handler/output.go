package handler

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"mindmap/internal/codec"
	"mindmap/internal/summary"
)

// SummaryResponse is the preview payload of the summary dialog
type SummaryResponse struct {
	Text     string          `json:"text"`
	HTML     string          `json:"html"`
	Report   *summary.Report `json:"report"`
	Filename string          `json:"filename"`
}

// GetSummary returns the summary preview
func (h *GraphHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	report, err := h.svc.Summary(r.Context())
	if err != nil {
		h.fail(w, "Failed to generate summary", err)
		return
	}

	html, err := report.HTML()
	if err != nil {
		h.fail(w, "Failed to render summary", err)
		return
	}

	h.writeJSON(w, SummaryResponse{
		Text:     report.Text(),
		HTML:     html,
		Report:   report,
		Filename: summary.Filename,
	}, http.StatusOK)
}

// DownloadSummary serves the summary as a plain text attachment. The body is
// exactly the preview text.
func (h *GraphHandler) DownloadSummary(w http.ResponseWriter, r *http.Request) {
	report, err := h.svc.Summary(r.Context())
	if err != nil {
		h.fail(w, "Failed to generate summary", err)
		return
	}

	w.Header().Set("Content-Type", summary.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", summary.Filename))
	w.WriteHeader(http.StatusOK)
	if _, err := report.WriteTo(w); err != nil {
		h.logger.Warn("failed to write summary", zap.Error(err))
	}
}

// Export serves the graph in the requested file format
func (h *GraphHandler) Export(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	c, err := codec.ForFormat(format)
	if err != nil {
		h.writeError(w, "Unsupported format", err.Error(), http.StatusBadRequest)
		return
	}

	var buf bytes.Buffer
	if err := h.svc.Export(r.Context(), c, &buf); err != nil {
		h.fail(w, "Failed to export graph", err)
		return
	}

	w.Header().Set("Content-Type", c.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "mindmap."+c.Format()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Warn("failed to write export", zap.String("format", format), zap.Error(err))
	}
}
