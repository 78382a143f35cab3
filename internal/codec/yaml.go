package codec

import (
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"mindmap/internal/domain"
)

// YAMLCodec handles YAML import/export
type YAMLCodec struct{}

// NewYAMLCodec creates a new YAML codec
func NewYAMLCodec() *YAMLCodec {
	return &YAMLCodec{}
}

// Format returns the codec format identifier
func (c *YAMLCodec) Format() string {
	return "yaml"
}

// ContentType returns the media type of exported data
func (c *YAMLCodec) ContentType() string {
	return "application/yaml"
}

// yamlGraph represents the YAML structure for graph data
type yamlGraph struct {
	Nodes []yamlNode `yaml:"nodes"`
	Edges []yamlEdge `yaml:"edges"`
}

type yamlNode struct {
	ID        string          `yaml:"id"`
	Ordinal   int             `yaml:"ordinal,omitempty"`
	Label     string          `yaml:"label"`
	Color     string          `yaml:"color,omitempty"`
	Position  domain.Position `yaml:"position"`
	Documents []yamlDocument  `yaml:"documents,omitempty"`
	CreatedAt time.Time       `yaml:"created_at,omitempty"`
	UpdatedAt time.Time       `yaml:"updated_at,omitempty"`
}

type yamlDocument struct {
	ID      string `yaml:"id,omitempty"`
	Name    string `yaml:"name"`
	Type    string `yaml:"type"`
	Size    int64  `yaml:"size,omitempty"`
	Content    string    `yaml:"content"`
	AttachedAt time.Time `yaml:"attached_at,omitempty"`
}

type yamlEdge struct {
	ID     string `yaml:"id,omitempty"`
	Source string `yaml:"source"`
	Target string `yaml:"target"`
	Style     string    `yaml:"style,omitempty"`
	CreatedAt time.Time `yaml:"created_at,omitempty"`
}

// Parse imports graph data from YAML
func (c *YAMLCodec) Parse(r io.Reader) (*domain.Graph, error) {
	var yg yamlGraph
	decoder := yaml.NewDecoder(r)
	if err := decoder.Decode(&yg); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	g := domain.NewGraph()

	// Convert nodes
	for _, yn := range yg.Nodes {
		node := domain.Node{
			ID:        yn.ID,
			Ordinal:   yn.Ordinal,
			Label:     yn.Label,
			Color:     yn.Color,
			Position:  yn.Position,
			Documents: make([]domain.Document, 0, len(yn.Documents)),
			CreatedAt: yn.CreatedAt,
			UpdatedAt: yn.UpdatedAt,
		}
		if node.UpdatedAt.IsZero() {
			node.UpdatedAt = yn.CreatedAt
		}
		for _, yd := range yn.Documents {
			size := yd.Size
			if size == 0 {
				size = int64(len(yd.Content))
			}
			node.Documents = append(node.Documents, domain.Document{
				ID:       yd.ID,
				Name:     yd.Name,
				MIMEType: yd.Type,
				Size:     size,
				Content:    yd.Content,
				AttachedAt: yd.AttachedAt,
			})
		}
		g.Nodes = append(g.Nodes, node)
	}

	// Convert edges
	for _, ye := range yg.Edges {
		g.Edges = append(g.Edges, domain.Edge{
			ID:     ye.ID,
			Source: ye.Source,
			Target: ye.Target,
			Style:     domain.StyleID(ye.Style),
			CreatedAt: ye.CreatedAt,
		})
	}

	normalize(g)
	return g, nil
}

// Export exports graph data to YAML
func (c *YAMLCodec) Export(g *domain.Graph, w io.Writer) error {
	yg := yamlGraph{
		Nodes: make([]yamlNode, 0, len(g.Nodes)),
		Edges: make([]yamlEdge, 0, len(g.Edges)),
	}

	// Convert nodes
	for _, node := range g.Nodes {
		yn := yamlNode{
			ID:        node.ID,
			Ordinal:   node.Ordinal,
			Label:     node.Label,
			Color:     node.Color,
			Position:  node.Position,
			CreatedAt: node.CreatedAt,
			UpdatedAt: node.UpdatedAt,
		}
		for _, d := range node.Documents {
			yn.Documents = append(yn.Documents, yamlDocument{
				ID:      d.ID,
				Name:    d.Name,
				Type:    d.MIMEType,
				Size:    d.Size,
				Content:    d.Content,
				AttachedAt: d.AttachedAt,
			})
		}
		yg.Nodes = append(yg.Nodes, yn)
	}

	// Convert edges
	for _, edge := range g.Edges {
		yg.Edges = append(yg.Edges, yamlEdge{
			ID:     edge.ID,
			Source: edge.Source,
			Target: edge.Target,
			Style:     string(edge.Style),
			CreatedAt: edge.CreatedAt,
		})
	}

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	defer encoder.Close()

	if err := encoder.Encode(&yg); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}

	return nil
}
