package domain

import (
	"strconv"
	"time"
)

const (
	// CentralTopicLabel is the label of the node every new graph starts with
	CentralTopicLabel = "Central Topic"
	// CentralTopicColor is the fixed color of the seed node
	CentralTopicColor = "#FFB6C1"
)

// Palette holds the default node colors, picked by creation ordinal
var Palette = [...]string{
	"#FF9B9B", // soft red
	"#9BFFC4", // soft green
	"#9BB5FF", // soft blue
	"#FFE89B", // soft yellow
	"#E2A2FF", // soft purple
}

// PaletteColor returns the default color for the node created at ordinal
func PaletteColor(ordinal int) string {
	i := ordinal % len(Palette)
	if i < 0 {
		i += len(Palette)
	}
	return Palette[i]
}

// Node represents a topic on the diagram
type Node struct {
	ID        string     `json:"id"`
	Ordinal   int        `json:"ordinal"`
	Label     string     `json:"label"`
	Color     string     `json:"color,omitempty"`
	Documents []Document `json:"documents"`
	Position  Position   `json:"position"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// NewNode creates a node for the given creation ordinal. The ID is the
// decimal form of the ordinal.
func NewNode(ordinal int, label, color string, pos Position) Node {
	now := time.Now()
	return Node{
		ID:        strconv.Itoa(ordinal),
		Ordinal:   ordinal,
		Label:     label,
		Color:     color,
		Documents: make([]Document, 0),
		Position:  pos,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// EffectiveColor returns the color override, or the palette default
func (n Node) EffectiveColor() string {
	if n.Color != "" {
		return n.Color
	}
	return PaletteColor(n.Ordinal)
}

// Clone returns a copy that shares no slices with n
func (n Node) Clone() Node {
	docs := make([]Document, len(n.Documents))
	copy(docs, n.Documents)
	n.Documents = docs
	return n
}

// WithDocument returns a copy of n with doc placed in its document list.
// Documents from the same attach batch keep their submission order no
// matter which read finished first; everything else is appended.
func (n Node) WithDocument(doc Document) Node {
	out := n.Clone()
	at := len(out.Documents)
	if doc.Batch != "" {
		for i, d := range out.Documents {
			if d.Batch == doc.Batch && d.Seq > doc.Seq {
				at = i
				break
			}
		}
	}
	out.Documents = append(out.Documents, Document{})
	copy(out.Documents[at+1:], out.Documents[at:])
	out.Documents[at] = doc
	out.UpdatedAt = time.Now()
	return out
}

// DocumentByID finds an attached document
func (n Node) DocumentByID(id string) (Document, bool) {
	for _, d := range n.Documents {
		if d.ID == id {
			return d, true
		}
	}
	return Document{}, false
}

// NodeView is what a node-local widget holds: a read-only copy of its node
// and the relay it uses to ask the graph owner for its own removal.
type NodeView struct {
	node  Node
	relay DeletionRelay
}

// DeletionRelay carries removal requests from node widgets to the graph owner
type DeletionRelay interface {
	RequestDelete(id string)
}

// NewNodeView builds the widget model for n
func NewNodeView(n Node, relay DeletionRelay) *NodeView {
	return &NodeView{node: n.Clone(), relay: relay}
}

// Node returns the widget's copy of its node
func (v *NodeView) Node() Node {
	return v.node.Clone()
}

// Delete asks the graph owner to remove this node. One call, one request.
func (v *NodeView) Delete() {
	if v.relay == nil {
		return
	}
	v.relay.RequestDelete(v.node.ID)
}
