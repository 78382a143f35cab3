package domain

// Graph is a snapshot of both registries, each in registry order
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// NewGraph creates an empty snapshot
func NewGraph() *Graph {
	return &Graph{
		Nodes: make([]Node, 0),
		Edges: make([]Edge, 0),
	}
}

// AddNode appends a copy of node
func (g *Graph) AddNode(node Node) {
	g.Nodes = append(g.Nodes, node.Clone())
}

// AddEdge appends edge
func (g *Graph) AddEdge(edge Edge) {
	g.Edges = append(g.Edges, edge)
}

// NodeByID finds a node in the snapshot
func (g *Graph) NodeByID(id string) (Node, bool) {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// CanvasGraph is the payload the canvas renders from: the snapshot with
// resolved node colors, the style catalog and the style new edges will get.
type CanvasGraph struct {
	Nodes         []CanvasNode      `json:"nodes"`
	Edges         []Edge            `json:"edges"`
	Styles        []ConnectionStyle `json:"styles"`
	SelectedStyle StyleID           `json:"selected_style"`
}

// CanvasNode adds the resolved color to a node for rendering
type CanvasNode struct {
	Node
	EffectiveColor string `json:"effective_color"`
}

// NewCanvasGraph derives the canvas payload from a snapshot
func NewCanvasGraph(g *Graph, selected StyleID) *CanvasGraph {
	cg := &CanvasGraph{
		Nodes:         make([]CanvasNode, 0, len(g.Nodes)),
		Edges:         make([]Edge, len(g.Edges)),
		Styles:        Styles(),
		SelectedStyle: selected,
	}
	for _, n := range g.Nodes {
		cg.Nodes = append(cg.Nodes, CanvasNode{Node: n, EffectiveColor: n.EffectiveColor()})
	}
	copy(cg.Edges, g.Edges)
	return cg
}
