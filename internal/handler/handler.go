package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"mindmap/internal/domain"
	"mindmap/internal/graph"
	"mindmap/internal/service"
)

// GraphHandler handles graph API requests
type GraphHandler struct {
	svc      *service.GraphService
	logger   *zap.Logger
	validate *validator.Validate

	maxUploadBytes int64
	maxFiles       int
}

// Limits bounds request sizes
type Limits struct {
	MaxUploadBytes int64
	MaxFiles       int
}

// NewGraphHandler creates a new graph handler
func NewGraphHandler(svc *service.GraphService, limits Limits, logger *zap.Logger) *GraphHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	defaults := service.DefaultOptions()
	if limits.MaxUploadBytes <= 0 {
		limits.MaxUploadBytes = defaults.MaxUploadBytes
	}
	if limits.MaxFiles <= 0 {
		limits.MaxFiles = defaults.MaxFiles
	}
	return &GraphHandler{
		svc:            svc,
		logger:         logger,
		validate:       newValidator(),
		maxUploadBytes: limits.MaxUploadBytes,
		maxFiles:       limits.MaxFiles,
	}
}

// Error response structure
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// CreateNodeRequest is the body of POST /api/nodes
type CreateNodeRequest struct {
	Label string `json:"label"`
	Color string `json:"color" validate:"omitempty,hexcolor"`
}

// PositionRequest is the body of PUT /api/nodes/{id}/position
type PositionRequest struct {
	X *float64 `json:"x" validate:"required"`
	Y *float64 `json:"y" validate:"required"`
}

// CreateEdgeRequest is the body of POST /api/edges. An empty style means the
// currently selected one.
type CreateEdgeRequest struct {
	Source string `json:"source" validate:"required"`
	Target string `json:"target" validate:"required"`
	Style  string `json:"style" validate:"omitempty,oneof=single double dotted thick animated"`
}

// SelectStyleRequest is the body of PUT /api/styles/selected
type SelectStyleRequest struct {
	Style string `json:"style" validate:"required,oneof=single double dotted thick animated"`
}

// NodeChangesRequest is the body of POST /api/changes/nodes
type NodeChangesRequest struct {
	Changes []service.NodeChange `json:"changes" validate:"required,dive"`
}

// EdgeChangesRequest is the body of POST /api/changes/edges
type EdgeChangesRequest struct {
	Changes []service.EdgeChange `json:"changes" validate:"required,dive"`
}

// StyleSelection reports the style new edges get
type StyleSelection struct {
	Style domain.StyleID `json:"style"`
}

// GetGraph returns the canvas payload: nodes with resolved colors, edges,
// the style catalog and the current selection
func (h *GraphHandler) GetGraph(w http.ResponseWriter, r *http.Request) {
	cg, err := h.svc.Canvas(r.Context())
	if err != nil {
		h.fail(w, "Failed to get graph", err)
		return
	}
	h.writeJSON(w, cg, http.StatusOK)
}

// ListNodes returns all nodes in creation order
func (h *GraphHandler) ListNodes(w http.ResponseWriter, r *http.Request) {
	nodes, err := h.svc.ListNodes(r.Context())
	if err != nil {
		h.fail(w, "Failed to list nodes", err)
		return
	}
	h.writeJSON(w, nodes, http.StatusOK)
}

// GetNode retrieves a single node
func (h *GraphHandler) GetNode(w http.ResponseWriter, r *http.Request) {
	node, err := h.svc.GetNode(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, "Failed to get node", err)
		return
	}
	h.writeJSON(w, node, http.StatusOK)
}

// CreateNode adds a topic. The body is optional.
func (h *GraphHandler) CreateNode(w http.ResponseWriter, r *http.Request) {
	var req CreateNodeRequest
	if r.ContentLength != 0 {
		if !h.decode(w, r, &req) {
			return
		}
	}

	node, err := h.svc.CreateNode(r.Context(), req.Label, req.Color)
	if err != nil {
		h.fail(w, "Failed to create node", err)
		return
	}
	h.writeJSON(w, node, http.StatusCreated)
}

// UpdateNode changes a node's label and/or color
func (h *GraphHandler) UpdateNode(w http.ResponseWriter, r *http.Request) {
	var req service.NodeUpdate
	if !h.decode(w, r, &req) {
		return
	}

	node, err := h.svc.UpdateNode(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		h.fail(w, "Failed to update node", err)
		return
	}
	h.writeJSON(w, node, http.StatusOK)
}

// UpdatePosition stores a node's canvas position
func (h *GraphHandler) UpdatePosition(w http.ResponseWriter, r *http.Request) {
	var req PositionRequest
	if !h.decode(w, r, &req) {
		return
	}

	node, err := h.svc.SetPosition(r.Context(), chi.URLParam(r, "id"), domain.Position{X: *req.X, Y: *req.Y})
	if err != nil {
		h.fail(w, "Failed to update position", err)
		return
	}
	h.writeJSON(w, node, http.StatusOK)
}

// DeleteNode asks for the node's removal through its widget model. The
// deletion happens asynchronously, so the response is 202. Unknown IDs are
// accepted too: the request still goes through the relay and is a no-op.
func (h *GraphHandler) DeleteNode(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	view, err := h.svc.NodeView(r.Context(), id)
	switch {
	case err == nil:
		view.Delete()
	case errors.Is(err, graph.ErrNodeNotFound):
		h.svc.Relay().RequestDelete(id)
	default:
		h.fail(w, "Failed to delete node", err)
		return
	}

	h.writeJSON(w, service.DeleteRequest{ID: id}, http.StatusAccepted)
}

// ListEdges returns all edges in insertion order
func (h *GraphHandler) ListEdges(w http.ResponseWriter, r *http.Request) {
	edges, err := h.svc.ListEdges(r.Context())
	if err != nil {
		h.fail(w, "Failed to list edges", err)
		return
	}
	h.writeJSON(w, edges, http.StatusOK)
}

// CreateEdge connects two nodes
func (h *GraphHandler) CreateEdge(w http.ResponseWriter, r *http.Request) {
	var req CreateEdgeRequest
	if !h.decode(w, r, &req) {
		return
	}

	var (
		edge domain.Edge
		err  error
	)
	if req.Style == "" {
		edge, err = h.svc.Connect(r.Context(), req.Source, req.Target)
	} else {
		edge, err = h.svc.ConnectWithStyle(r.Context(), req.Source, req.Target, domain.StyleID(req.Style))
	}
	if err != nil {
		h.fail(w, "Failed to create edge", err)
		return
	}
	h.writeJSON(w, edge, http.StatusCreated)
}

// DeleteEdge removes an edge. Unknown IDs succeed.
func (h *GraphHandler) DeleteEdge(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.RemoveEdge(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, "Failed to delete edge", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListStyles returns the connection style catalog
func (h *GraphHandler) ListStyles(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, domain.Styles(), http.StatusOK)
}

// GetSelectedStyle returns the style new edges get
func (h *GraphHandler) GetSelectedStyle(w http.ResponseWriter, r *http.Request) {
	style, err := h.svc.SelectedStyle(r.Context())
	if err != nil {
		h.fail(w, "Failed to get selected style", err)
		return
	}
	h.writeJSON(w, StyleSelection{Style: style}, http.StatusOK)
}

// SelectStyle changes the style new edges get
func (h *GraphHandler) SelectStyle(w http.ResponseWriter, r *http.Request) {
	var req SelectStyleRequest
	if !h.decode(w, r, &req) {
		return
	}

	style := domain.StyleID(req.Style)
	if err := h.svc.SelectStyle(r.Context(), style); err != nil {
		h.fail(w, "Failed to select style", err)
		return
	}
	h.writeJSON(w, StyleSelection{Style: style}, http.StatusOK)
}

// ApplyNodeChanges applies a canvas node change list
func (h *GraphHandler) ApplyNodeChanges(w http.ResponseWriter, r *http.Request) {
	var req NodeChangesRequest
	if !h.decode(w, r, &req) {
		return
	}

	result, err := h.svc.ApplyNodeChanges(r.Context(), req.Changes)
	if err != nil {
		h.fail(w, "Failed to apply node changes", err)
		return
	}
	h.writeJSON(w, result, http.StatusOK)
}

// ApplyEdgeChanges applies a canvas edge change list
func (h *GraphHandler) ApplyEdgeChanges(w http.ResponseWriter, r *http.Request) {
	var req EdgeChangesRequest
	if !h.decode(w, r, &req) {
		return
	}

	result, err := h.svc.ApplyEdgeChanges(r.Context(), req.Changes)
	if err != nil {
		h.fail(w, "Failed to apply edge changes", err)
		return
	}
	h.writeJSON(w, result, http.StatusOK)
}

// Health reports liveness and the graph size
func (h *GraphHandler) Health(w http.ResponseWriter, r *http.Request) {
	g, err := h.svc.GetGraph(r.Context())
	if err != nil {
		h.writeJSON(w, map[string]string{"status": "unavailable"}, http.StatusServiceUnavailable)
		return
	}
	h.writeJSON(w, map[string]interface{}{
		"status": "ok",
		"nodes":  len(g.Nodes),
		"edges":  len(g.Edges),
	}, http.StatusOK)
}

// Helper methods

// decode reads a JSON body into dst and validates it. On failure the error
// response has been written and false is returned.
func (h *GraphHandler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		h.writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		h.writeError(w, "Validation failed", formatValidationError(err), http.StatusBadRequest)
		return false
	}
	return true
}

// statusFor maps service and registry errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, graph.ErrNodeNotFound),
		errors.Is(err, graph.ErrEdgeNotFound),
		errors.Is(err, service.ErrDocumentNotFound):
		return http.StatusNotFound
	case errors.Is(err, graph.ErrDanglingEndpoint):
		return http.StatusUnprocessableEntity
	case errors.Is(err, graph.ErrUnknownStyle):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrTooManyFiles):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, service.ErrStopped),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func (h *GraphHandler) fail(w http.ResponseWriter, msg string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error(msg, zap.Error(err))
	}
	if status == http.StatusNotFound {
		msg = "Not found"
	}
	h.writeError(w, msg, err.Error(), status)
}

func (h *GraphHandler) writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Warn("failed to encode JSON", zap.Error(err))
	}
}

func (h *GraphHandler) writeError(w http.ResponseWriter, error, details string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(ErrorResponse{
		Error:   error,
		Details: details,
	}); err != nil {
		h.logger.Warn("failed to encode error response", zap.Error(err))
	}
}
