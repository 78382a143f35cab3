package domain

// Position is the canvas coordinate of a node. The core stores it and hands
// it back unchanged; only the canvas gives it meaning.
type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// NodePosition pairs a node ID with a position, as sent by canvas drags
type NodePosition struct {
	NodeID string  `json:"node_id" validate:"required"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

// Position returns the coordinate part of the update
func (p NodePosition) Position() Position {
	return Position{X: p.X, Y: p.Y}
}
