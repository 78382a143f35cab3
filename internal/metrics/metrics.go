// Package metrics exposes Prometheus instrumentation for the graph service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Namespace prefixes every metric name
const Namespace = "mindmap"

// Collector holds all Prometheus metrics for one service instance. Each
// Collector owns its registry so tests can build as many as they like.
//
// A nil *Collector is valid and records nothing.
type Collector struct {
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Graph metrics
	NodesCreated       prometheus.Counter
	NodesDeleted       prometheus.Counter
	EdgesCreated       prometheus.Counter
	EdgesDeleted       prometheus.Counter
	DocumentsAttached  prometheus.Counter
	DocumentsRejected  prometheus.Counter
	DocumentsDiscarded prometheus.Counter
	Nodes              prometheus.Gauge
	Edges              prometheus.Gauge

	// Transport metrics
	SSEClients    prometheus.Gauge
	EventsDropped prometheus.Counter
}

// NewCollector creates a collector with a fresh registry
func NewCollector() *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		NodesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "nodes_created_total",
			Help:      "Total number of nodes created",
		}),
		NodesDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "nodes_deleted_total",
			Help:      "Total number of nodes deleted",
		}),
		EdgesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "edges_created_total",
			Help:      "Total number of edges created",
		}),
		EdgesDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "edges_deleted_total",
			Help:      "Total number of edges deleted, including cascades",
		}),
		DocumentsAttached: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "documents_attached_total",
			Help:      "Total number of documents attached to nodes",
		}),
		DocumentsRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "documents_rejected_total",
			Help:      "Total number of files rejected by type",
		}),
		DocumentsDiscarded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "documents_discarded_total",
			Help:      "Total number of reads that finished after their node was deleted",
		}),
		Nodes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "nodes",
			Help:      "Current number of nodes",
		}),
		Edges: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "edges",
			Help:      "Current number of edges",
		}),
		SSEClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "sse_clients",
			Help:      "Connected event stream clients",
		}),
		EventsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "events_dropped_total",
			Help:      "Events dropped because a subscriber was slow",
		}),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		c.HTTPRequests,
		c.HTTPDuration,
		c.NodesCreated,
		c.NodesDeleted,
		c.EdgesCreated,
		c.EdgesDeleted,
		c.DocumentsAttached,
		c.DocumentsRejected,
		c.DocumentsDiscarded,
		c.Nodes,
		c.Edges,
		c.SSEClients,
		c.EventsDropped,
	)

	return c
}

// Registry returns the Prometheus registry for this collector
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the collector's registry in the Prometheus text format
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// ObserveRequest records one finished HTTP request
func (c *Collector) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.HTTPDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// SetGraphSize updates the node and edge gauges
func (c *Collector) SetGraphSize(nodes, edges int) {
	if c == nil {
		return
	}
	c.Nodes.Set(float64(nodes))
	c.Edges.Set(float64(edges))
}

// Inc increments a counter unless the collector is nil
func (c *Collector) Inc(pick func(*Collector) prometheus.Counter) {
	c.Add(pick, 1)
}

// Add adds n to a counter unless the collector is nil
func (c *Collector) Add(pick func(*Collector) prometheus.Counter, n int) {
	if c == nil || n <= 0 {
		return
	}
	pick(c).Add(float64(n))
}

// Counter selectors for Inc and Add
var (
	NodesCreated       = func(c *Collector) prometheus.Counter { return c.NodesCreated }
	NodesDeleted       = func(c *Collector) prometheus.Counter { return c.NodesDeleted }
	EdgesCreated       = func(c *Collector) prometheus.Counter { return c.EdgesCreated }
	EdgesDeleted       = func(c *Collector) prometheus.Counter { return c.EdgesDeleted }
	DocumentsAttached  = func(c *Collector) prometheus.Counter { return c.DocumentsAttached }
	DocumentsRejected  = func(c *Collector) prometheus.Counter { return c.DocumentsRejected }
	DocumentsDiscarded = func(c *Collector) prometheus.Counter { return c.DocumentsDiscarded }
	EventsDropped      = func(c *Collector) prometheus.Counter { return c.EventsDropped }
)

// SetSSEClients updates the connected client gauge
func (c *Collector) SetSSEClients(n int) {
	if c == nil {
		return
	}
	c.SSEClients.Set(float64(n))
}
