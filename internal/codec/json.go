package codec

import (
	"encoding/json"
	"fmt"
	"io"

	"mindmap/internal/domain"
)

// JSONCodec handles JSON import/export
type JSONCodec struct{}

// NewJSONCodec creates a new JSON codec
func NewJSONCodec() *JSONCodec {
	return &JSONCodec{}
}

// Format returns the codec format identifier
func (c *JSONCodec) Format() string {
	return "json"
}

// ContentType returns the media type of exported data
func (c *JSONCodec) ContentType() string {
	return "application/json"
}

// Parse imports graph data from JSON
func (c *JSONCodec) Parse(r io.Reader) (*domain.Graph, error) {
	g := domain.NewGraph()
	decoder := json.NewDecoder(r)
	if err := decoder.Decode(g); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	normalize(g)
	return g, nil
}

// Export exports graph data to JSON
func (c *JSONCodec) Export(g *domain.Graph, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(g); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}

	return nil
}

// normalize fills in the fields a hand-written snapshot may leave out
func normalize(g *domain.Graph) {
	if g.Nodes == nil {
		g.Nodes = make([]domain.Node, 0)
	}
	if g.Edges == nil {
		g.Edges = make([]domain.Edge, 0)
	}
	for i := range g.Nodes {
		n := &g.Nodes[i]
		if n.Documents == nil {
			n.Documents = make([]domain.Document, 0)
		}
		if n.Ordinal == 0 {
			n.Ordinal = i + 1
		}
		for j := range n.Documents {
			n.Documents[j].MIMEType = domain.NormalizeMIMEType(n.Documents[j].MIMEType)
		}
	}
	for i := range g.Edges {
		if g.Edges[i].Style == "" {
			g.Edges[i].Style = domain.DefaultStyle
		}
	}
}
