package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"

	"go.uber.org/zap"

	"mindmap/internal/codec"
	"mindmap/internal/domain"
	"mindmap/internal/graph"
	"mindmap/internal/metrics"
	"mindmap/internal/summary"
)

// Options configures a GraphService
type Options struct {
	SeedLabel       string
	SeedColor       string
	DefaultStyle    domain.StyleID
	SpawnRadius     float64
	MaxUploadBytes  int64
	MaxFiles        int
	ReadConcurrency int

	// Placer overrides random placement of new nodes
	Placer graph.Placer
}

// DefaultOptions returns the options used when nothing is configured
func DefaultOptions() Options {
	return Options{
		SeedLabel:       domain.CentralTopicLabel,
		SeedColor:       domain.CentralTopicColor,
		DefaultStyle:    domain.DefaultStyle,
		SpawnRadius:     graph.DefaultSpawnRadius,
		MaxUploadBytes:  10 << 20,
		MaxFiles:        20,
		ReadConcurrency: 4,
	}
}

type op struct {
	name string
	fn   func() ([]Event, error)
	done chan error
}

// GraphService is the single owner of the diagram state
type GraphService struct {
	reg      *graph.Registry
	eventBus *EventBus
	relay    *Relay
	metrics  *metrics.Collector
	logger   *zap.Logger
	opts     Options

	// selected is only read and written on the Run goroutine
	selected domain.StyleID

	ops     chan op
	stopped chan struct{}
	started atomic.Bool
}

// NewGraphService creates the service and seeds the Central Topic node.
// Nothing is applied until Run is started.
func NewGraphService(eventBus *EventBus, opts Options, logger *zap.Logger, m *metrics.Collector) *GraphService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if eventBus == nil {
		eventBus = NewEventBus()
	}
	defaults := DefaultOptions()
	if !opts.DefaultStyle.Valid() {
		opts.DefaultStyle = defaults.DefaultStyle
	}
	if opts.SpawnRadius <= 0 {
		opts.SpawnRadius = defaults.SpawnRadius
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = defaults.MaxUploadBytes
	}
	if opts.MaxFiles <= 0 {
		opts.MaxFiles = defaults.MaxFiles
	}
	if opts.ReadConcurrency <= 0 {
		opts.ReadConcurrency = defaults.ReadConcurrency
	}
	placer := opts.Placer
	if placer == nil {
		placer = graph.RandomPlacer(opts.SpawnRadius)
	}

	s := &GraphService{
		reg:      graph.New(graph.WithPlacer(placer)),
		eventBus: eventBus,
		relay:    NewRelay(logger.Named("relay")),
		metrics:  m,
		logger:   logger,
		opts:     opts,
		selected: opts.DefaultStyle,
		ops:      make(chan op),
		stopped:  make(chan struct{}),
	}

	seed := s.reg.Seed(opts.SeedLabel, opts.SeedColor)
	s.metrics.Inc(metrics.NodesCreated)
	s.metrics.SetGraphSize(s.reg.NodeCount(), s.reg.EdgeCount())
	logger.Debug("seeded central topic", zap.String("node_id", seed.ID), zap.String("label", seed.Label))

	return s
}

// Relay returns the deletion relay node views are built with
func (s *GraphService) Relay() *Relay {
	return s.relay
}

// EventBus returns the bus events are published on
func (s *GraphService) EventBus() *EventBus {
	return s.eventBus
}

// Run applies submitted operations one at a time until ctx is cancelled.
// While running it is the listener of the deletion relay.
func (s *GraphService) Run(ctx context.Context) error {
	if !s.started.CompareAndSwap(false, true) {
		return errors.New("graph service already started")
	}
	defer close(s.stopped)

	stop, err := s.relay.Listen(func(req DeleteRequest) {
		if _, err := s.DeleteNode(ctx, req.ID); err != nil && !isShutdown(err) {
			s.logger.Warn("relay delete failed", zap.String("node_id", req.ID), zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("attach deletion listener: %w", err)
	}
	defer stop()

	s.logger.Info("graph service started", zap.String("selected_style", string(s.selected)))
	for {
		select {
		case o := <-s.ops:
			s.apply(o)
		case <-ctx.Done():
			s.logger.Info("graph service stopped")
			return nil
		}
	}
}

func (s *GraphService) apply(o op) {
	events, err := o.fn()
	for _, e := range events {
		if dropped := s.eventBus.Publish(e); dropped > 0 {
			s.metrics.Add(metrics.EventsDropped, dropped)
			s.logger.Debug("event skipped for slow subscribers", zap.String("event", string(e.Type)), zap.Int("subscribers", dropped))
		}
	}
	s.metrics.SetGraphSize(s.reg.NodeCount(), s.reg.EdgeCount())
	if err != nil {
		s.logger.Debug("operation failed", zap.String("op", o.name), zap.Error(err))
	}
	o.done <- err
}

// exec submits fn to the Run loop and waits for it to finish
func (s *GraphService) exec(ctx context.Context, name string, fn func() ([]Event, error)) error {
	o := op{name: name, fn: fn, done: make(chan error, 1)}
	select {
	case s.ops <- o:
	case <-s.stopped:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-o.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func isShutdown(err error) bool {
	return errors.Is(err, ErrStopped) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// GetGraph returns a snapshot of both registries
func (s *GraphService) GetGraph(ctx context.Context) (*domain.Graph, error) {
	var g *domain.Graph
	err := s.exec(ctx, "get_graph", func() ([]Event, error) {
		g = s.reg.Snapshot()
		return nil, nil
	})
	return g, err
}

// Canvas returns the snapshot the canvas renders from
func (s *GraphService) Canvas(ctx context.Context) (*domain.CanvasGraph, error) {
	var cg *domain.CanvasGraph
	err := s.exec(ctx, "canvas", func() ([]Event, error) {
		cg = domain.NewCanvasGraph(s.reg.Snapshot(), s.selected)
		return nil, nil
	})
	return cg, err
}

// GetNode retrieves a single node by ID
func (s *GraphService) GetNode(ctx context.Context, id string) (domain.Node, error) {
	var node domain.Node
	err := s.exec(ctx, "get_node", func() ([]Event, error) {
		n, ok := s.reg.Node(id)
		if !ok {
			return nil, fmt.Errorf("node %s: %w", id, graph.ErrNodeNotFound)
		}
		node = n
		return nil, nil
	})
	return node, err
}

// ListNodes returns all nodes in creation order
func (s *GraphService) ListNodes(ctx context.Context) ([]domain.Node, error) {
	var nodes []domain.Node
	err := s.exec(ctx, "list_nodes", func() ([]Event, error) {
		nodes = s.reg.Nodes()
		return nil, nil
	})
	return nodes, err
}

// CreateNode adds a node with the given label and optional color override
func (s *GraphService) CreateNode(ctx context.Context, label, color string) (domain.Node, error) {
	var node domain.Node
	err := s.exec(ctx, "create_node", func() ([]Event, error) {
		node = s.reg.CreateNode(label, color)
		s.metrics.Inc(metrics.NodesCreated)
		return []Event{{Type: EventNodeCreated, Payload: node}}, nil
	})
	return node, err
}

// NodeUpdate lists the node fields to change. Nil fields are left alone.
type NodeUpdate struct {
	Label *string `json:"label,omitempty"`
	Color *string `json:"color,omitempty" validate:"omitempty,hexcolor"`
}

// UpdateNode applies a label and/or color change
func (s *GraphService) UpdateNode(ctx context.Context, id string, update NodeUpdate) (domain.Node, error) {
	var node domain.Node
	err := s.exec(ctx, "update_node", func() ([]Event, error) {
		n, ok := s.reg.Node(id)
		if !ok {
			return nil, fmt.Errorf("node %s: %w", id, graph.ErrNodeNotFound)
		}
		var err error
		if update.Label != nil {
			if n, err = s.reg.UpdateLabel(id, *update.Label); err != nil {
				return nil, err
			}
		}
		if update.Color != nil {
			if n, err = s.reg.SetColor(id, *update.Color); err != nil {
				return nil, err
			}
		}
		node = n
		return []Event{{Type: EventNodeUpdated, Payload: node}}, nil
	})
	return node, err
}

// SetPosition stores the canvas position of one node
func (s *GraphService) SetPosition(ctx context.Context, id string, pos domain.Position) (domain.Node, error) {
	var node domain.Node
	err := s.exec(ctx, "set_position", func() ([]Event, error) {
		n, err := s.reg.SetPosition(id, pos)
		if err != nil {
			return nil, err
		}
		node = n
		moved := []domain.NodePosition{{NodeID: id, X: pos.X, Y: pos.Y}}
		return []Event{{Type: EventPositionsUpdated, Payload: moved}}, nil
	})
	return node, err
}

// DeleteNode removes a node and its edges. Deleting an unknown node is a
// no-op and returns a nil slice.
func (s *GraphService) DeleteNode(ctx context.Context, id string) ([]string, error) {
	var removed []string
	err := s.exec(ctx, "delete_node", func() ([]Event, error) {
		edges, ok := s.reg.DeleteNode(id)
		if !ok {
			return nil, nil
		}
		removed = edges
		return s.nodeDeleted(id, edges), nil
	})
	return removed, err
}

func (s *GraphService) nodeDeleted(id string, edges []string) []Event {
	s.metrics.Inc(metrics.NodesDeleted)
	s.metrics.Add(metrics.EdgesDeleted, len(edges))
	if edges == nil {
		edges = []string{}
	}
	s.logger.Debug("node deleted", zap.String("node_id", id), zap.Int("cascaded_edges", len(edges)))
	return []Event{{Type: EventNodeDeleted, Payload: NodeDeletedPayload{NodeID: id, RemovedEdges: edges}}}
}

// NodeView builds the widget model of a node, wired to the deletion relay
func (s *GraphService) NodeView(ctx context.Context, id string) (*domain.NodeView, error) {
	node, err := s.GetNode(ctx, id)
	if err != nil {
		return nil, err
	}
	return domain.NewNodeView(node, s.relay), nil
}

// ListEdges returns all edges in insertion order
func (s *GraphService) ListEdges(ctx context.Context) ([]domain.Edge, error) {
	var edges []domain.Edge
	err := s.exec(ctx, "list_edges", func() ([]Event, error) {
		edges = s.reg.Edges()
		return nil, nil
	})
	return edges, err
}

// GetEdge retrieves a single edge by ID
func (s *GraphService) GetEdge(ctx context.Context, id string) (domain.Edge, error) {
	var edge domain.Edge
	err := s.exec(ctx, "get_edge", func() ([]Event, error) {
		e, ok := s.reg.Edge(id)
		if !ok {
			return nil, fmt.Errorf("edge %s: %w", id, graph.ErrEdgeNotFound)
		}
		edge = e
		return nil, nil
	})
	return edge, err
}

// Connect creates an edge with the currently selected style
func (s *GraphService) Connect(ctx context.Context, source, target string) (domain.Edge, error) {
	return s.connect(ctx, source, target, "")
}

// ConnectWithStyle creates an edge with an explicit style
func (s *GraphService) ConnectWithStyle(ctx context.Context, source, target string, style domain.StyleID) (domain.Edge, error) {
	if style == "" {
		return domain.Edge{}, fmt.Errorf("connect %s -> %s: %w: empty", source, target, graph.ErrUnknownStyle)
	}
	return s.connect(ctx, source, target, style)
}

func (s *GraphService) connect(ctx context.Context, source, target string, style domain.StyleID) (domain.Edge, error) {
	var edge domain.Edge
	err := s.exec(ctx, "connect", func() ([]Event, error) {
		st := style
		if st == "" {
			st = s.selected
		}
		e, err := s.reg.Connect(source, target, st)
		if err != nil {
			return nil, err
		}
		edge = e
		s.metrics.Inc(metrics.EdgesCreated)
		return []Event{{Type: EventEdgeCreated, Payload: edge}}, nil
	})
	return edge, err
}

// RemoveEdge deletes one edge. Unknown IDs are ignored.
func (s *GraphService) RemoveEdge(ctx context.Context, id string) error {
	return s.exec(ctx, "remove_edge", func() ([]Event, error) {
		if !s.reg.RemoveEdge(id) {
			return nil, nil
		}
		s.metrics.Inc(metrics.EdgesDeleted)
		return []Event{{Type: EventEdgeDeleted, Payload: EdgeDeletedPayload{EdgeID: id}}}, nil
	})
}

// SelectedStyle returns the style new edges will get
func (s *GraphService) SelectedStyle(ctx context.Context) (domain.StyleID, error) {
	var style domain.StyleID
	err := s.exec(ctx, "selected_style", func() ([]Event, error) {
		style = s.selected
		return nil, nil
	})
	return style, err
}

// SelectStyle changes the style of edges created from now on. Existing
// edges keep their style.
func (s *GraphService) SelectStyle(ctx context.Context, style domain.StyleID) error {
	if !style.Valid() {
		return fmt.Errorf("select %q: %w", style, graph.ErrUnknownStyle)
	}
	return s.exec(ctx, "select_style", func() ([]Event, error) {
		s.selected = style
		return []Event{{Type: EventStyleSelected, Payload: StyleSelectedPayload{Style: style}}}, nil
	})
}

// GetDocument finds a document on a node
func (s *GraphService) GetDocument(ctx context.Context, nodeID, docID string) (domain.Document, error) {
	node, err := s.GetNode(ctx, nodeID)
	if err != nil {
		return domain.Document{}, err
	}
	doc, ok := node.DocumentByID(docID)
	if !ok {
		return domain.Document{}, fmt.Errorf("document %s on node %s: %w", docID, nodeID, ErrDocumentNotFound)
	}
	return doc, nil
}

// Summary generates the report for the current graph
func (s *GraphService) Summary(ctx context.Context) (*summary.Report, error) {
	g, err := s.GetGraph(ctx)
	if err != nil {
		return nil, err
	}
	return summary.Generate(g), nil
}

// Export writes a snapshot of the graph in the given format
func (s *GraphService) Export(ctx context.Context, exporter codec.Exporter, w io.Writer) error {
	g, err := s.GetGraph(ctx)
	if err != nil {
		return err
	}
	return exporter.Export(g, w)
}
