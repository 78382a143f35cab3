package domain

import (
	"time"

	"github.com/google/uuid"
)

// Edge is a directed connection between two nodes. Style is fixed at
// creation; later changes to the selected style do not touch it.
type Edge struct {
	ID        string    `json:"id"`
	Source    string    `json:"source"`
	Target    string    `json:"target"`
	Style     StyleID   `json:"style"`
	CreatedAt time.Time `json:"created_at"`
}

// NewEdge creates an edge with a fresh random ID
func NewEdge(source, target string, style StyleID) Edge {
	return Edge{
		ID:        uuid.NewString(),
		Source:    source,
		Target:    target,
		Style:     style,
		CreatedAt: time.Now(),
	}
}

// Involves checks if this edge touches the given node
func (e Edge) Involves(nodeID string) bool {
	return e.Source == nodeID || e.Target == nodeID
}

// IsLoop reports whether the edge starts and ends on the same node
func (e Edge) IsLoop() bool {
	return e.Source == e.Target
}
