package graph

import (
	"fmt"
	"math/rand"
	"slices"
	"time"

	"mindmap/internal/domain"
)

// DefaultSpawnRadius bounds the random position of new nodes on each axis
const DefaultSpawnRadius = 250

// Placer picks the initial canvas position of a new node
type Placer func() domain.Position

// RandomPlacer places nodes uniformly in [-radius, radius) on both axes
func RandomPlacer(radius float64) Placer {
	return func() domain.Position {
		return domain.Position{
			X: rand.Float64()*2*radius - radius,
			Y: rand.Float64()*2*radius - radius,
		}
	}
}

// Registry stores the nodes and edges of one diagram
type Registry struct {
	nodes     map[string]*domain.Node
	nodeOrder []string
	edges     map[string]*domain.Edge
	edgeOrder []string
	created   int
	place     Placer
}

// Option configures a Registry
type Option func(*Registry)

// WithPlacer overrides how new nodes are positioned
func WithPlacer(p Placer) Option {
	return func(r *Registry) {
		r.place = p
	}
}

// New creates an empty registry
func New(opts ...Option) *Registry {
	r := &Registry{
		nodes: make(map[string]*domain.Node),
		edges: make(map[string]*domain.Edge),
		place: RandomPlacer(DefaultSpawnRadius),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Seed creates the Central Topic node at the origin. Empty arguments fall
// back to the standard label and color.
func (r *Registry) Seed(label, color string) domain.Node {
	if label == "" {
		label = domain.CentralTopicLabel
	}
	if color == "" {
		color = domain.CentralTopicColor
	}
	node := r.CreateNode(label, color)
	r.nodes[node.ID].Position = domain.Position{}
	return r.nodes[node.ID].Clone()
}

// CreateNode adds a node with the next creation ordinal. An empty color
// means the palette default applies.
func (r *Registry) CreateNode(label, color string) domain.Node {
	r.created++
	node := domain.NewNode(r.created, label, color, r.place())
	r.nodes[node.ID] = &node
	r.nodeOrder = append(r.nodeOrder, node.ID)
	return node.Clone()
}

// Node returns a copy of the node with the given ID
func (r *Registry) Node(id string) (domain.Node, bool) {
	n, ok := r.nodes[id]
	if !ok {
		return domain.Node{}, false
	}
	return n.Clone(), true
}

// HasNode reports whether the node exists
func (r *Registry) HasNode(id string) bool {
	_, ok := r.nodes[id]
	return ok
}

// Nodes returns copies of all nodes in creation order
func (r *Registry) Nodes() []domain.Node {
	out := make([]domain.Node, 0, len(r.nodeOrder))
	for _, id := range r.nodeOrder {
		out = append(out, r.nodes[id].Clone())
	}
	return out
}

// NodeCount returns the number of live nodes
func (r *Registry) NodeCount() int {
	return len(r.nodeOrder)
}

// UpdateLabel replaces the node's label. Any text is accepted.
func (r *Registry) UpdateLabel(id, label string) (domain.Node, error) {
	return r.update(id, func(n *domain.Node) {
		n.Label = label
	})
}

// SetColor overrides the node's palette color; "" restores the default
func (r *Registry) SetColor(id, color string) (domain.Node, error) {
	return r.update(id, func(n *domain.Node) {
		n.Color = color
	})
}

// SetPosition stores the canvas position of a node
func (r *Registry) SetPosition(id string, pos domain.Position) (domain.Node, error) {
	return r.update(id, func(n *domain.Node) {
		n.Position = pos
	})
}

// AttachDocument stores doc on the node by swapping in a copy of the node
// with the document placed. Returns ErrNodeNotFound if the node was deleted,
// in which case nothing is stored.
func (r *Registry) AttachDocument(id string, doc domain.Document) (domain.Node, error) {
	cur, ok := r.nodes[id]
	if !ok {
		return domain.Node{}, fmt.Errorf("attach %s to %s: %w", doc.Name, id, ErrNodeNotFound)
	}
	next := cur.WithDocument(doc)
	r.nodes[id] = &next
	return next.Clone(), nil
}

func (r *Registry) update(id string, fn func(*domain.Node)) (domain.Node, error) {
	n, ok := r.nodes[id]
	if !ok {
		return domain.Node{}, fmt.Errorf("node %s: %w", id, ErrNodeNotFound)
	}
	fn(n)
	n.UpdatedAt = time.Now()
	return n.Clone(), nil
}

// DeleteNode removes the node and every edge that starts or ends on it.
// It returns the IDs of the removed edges and whether the node existed;
// deleting an unknown node does nothing.
func (r *Registry) DeleteNode(id string) ([]string, bool) {
	if _, ok := r.nodes[id]; !ok {
		return nil, false
	}
	delete(r.nodes, id)
	r.nodeOrder = slices.DeleteFunc(r.nodeOrder, func(n string) bool { return n == id })

	var removed []string
	r.edgeOrder = slices.DeleteFunc(r.edgeOrder, func(eid string) bool {
		if r.edges[eid].Involves(id) {
			removed = append(removed, eid)
			delete(r.edges, eid)
			return true
		}
		return false
	})
	return removed, true
}

// Connect adds a directed edge with the given style. Both endpoints must
// exist. Self loops and repeated edges between the same pair are allowed.
func (r *Registry) Connect(source, target string, style domain.StyleID) (domain.Edge, error) {
	if !style.Valid() {
		return domain.Edge{}, fmt.Errorf("connect %s -> %s: %w: %q", source, target, ErrUnknownStyle, style)
	}
	if !r.HasNode(source) {
		return domain.Edge{}, fmt.Errorf("connect %s -> %s: source: %w", source, target, ErrDanglingEndpoint)
	}
	if !r.HasNode(target) {
		return domain.Edge{}, fmt.Errorf("connect %s -> %s: target: %w", source, target, ErrDanglingEndpoint)
	}

	edge := domain.NewEdge(source, target, style)
	r.edges[edge.ID] = &edge
	r.edgeOrder = append(r.edgeOrder, edge.ID)
	return edge, nil
}

// Edge returns the edge with the given ID
func (r *Registry) Edge(id string) (domain.Edge, bool) {
	e, ok := r.edges[id]
	if !ok {
		return domain.Edge{}, false
	}
	return *e, true
}

// Edges returns all edges in insertion order
func (r *Registry) Edges() []domain.Edge {
	out := make([]domain.Edge, 0, len(r.edgeOrder))
	for _, id := range r.edgeOrder {
		out = append(out, *r.edges[id])
	}
	return out
}

// EdgeCount returns the number of live edges
func (r *Registry) EdgeCount() int {
	return len(r.edgeOrder)
}

// RemoveEdge deletes one edge. Unknown IDs are ignored.
func (r *Registry) RemoveEdge(id string) bool {
	if _, ok := r.edges[id]; !ok {
		return false
	}
	delete(r.edges, id)
	r.edgeOrder = slices.DeleteFunc(r.edgeOrder, func(e string) bool { return e == id })
	return true
}

// Snapshot copies both registries into a Graph
func (r *Registry) Snapshot() *domain.Graph {
	g := &domain.Graph{
		Nodes: r.Nodes(),
		Edges: r.Edges(),
	}
	return g
}
