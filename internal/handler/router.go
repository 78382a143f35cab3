package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"mindmap/internal/metrics"
)

// RouterOptions configures NewRouter
type RouterOptions struct {
	CORSOrigins []string
	// Events serves the server-sent event stream, if set
	Events http.Handler
	// Metrics is exposed at /metrics, if set
	Metrics *metrics.Collector
	Logger  *zap.Logger
}

// NewRouter builds the HTTP routes for a graph handler
func NewRouter(h *GraphHandler, opts RouterOptions) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(Logger(logger))
	router.Use(Metrics(opts.Metrics))

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID", "Content-Disposition"},
		MaxAge:         300,
	}))

	router.Get("/health", h.Health)
	if opts.Metrics != nil {
		router.Handle("/metrics", opts.Metrics.Handler())
	}
	if opts.Events != nil {
		router.Handle("/events", opts.Events)
	}

	router.Route("/api", func(r chi.Router) {
		r.Get("/graph", h.GetGraph)

		r.Get("/styles", h.ListStyles)
		r.Get("/styles/selected", h.GetSelectedStyle)
		r.Put("/styles/selected", h.SelectStyle)

		r.Route("/nodes", func(r chi.Router) {
			r.Get("/", h.ListNodes)
			r.Post("/", h.CreateNode)
			r.Get("/{id}", h.GetNode)
			r.Patch("/{id}", h.UpdateNode)
			r.Delete("/{id}", h.DeleteNode)
			r.Put("/{id}/position", h.UpdatePosition)
			r.Get("/{id}/documents", h.ListDocuments)
			r.Post("/{id}/documents", h.AttachDocuments)
			r.Get("/{id}/documents/{docID}", h.OpenDocument)
		})

		r.Route("/edges", func(r chi.Router) {
			r.Get("/", h.ListEdges)
			r.Post("/", h.CreateEdge)
			r.Delete("/{id}", h.DeleteEdge)
		})

		r.Post("/changes/nodes", h.ApplyNodeChanges)
		r.Post("/changes/edges", h.ApplyEdgeChanges)

		r.Get("/summary", h.GetSummary)
		r.Get("/summary/download", h.DownloadSummary)
		r.Get("/export/{format}", h.Export)
	})

	return router
}
