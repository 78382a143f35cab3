package codec

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mindmap/internal/domain"
)

func sampleGraph() *domain.Graph {
	g := domain.NewGraph()
	a := domain.NewNode(1, "Central Topic", domain.CentralTopicColor, domain.Position{})
	b := domain.NewNode(2, "Plan", "", domain.Position{X: 120, Y: -40})
	b = b.WithDocument(domain.NewDocument("plan.md", domain.MIMEMarkdown, []byte("# Plan")))
	g.AddNode(a)
	g.AddNode(b)
	g.AddEdge(domain.NewEdge(a.ID, b.ID, domain.StyleThick))
	return g
}

func TestYAMLCodec_ExportThenParse(t *testing.T) {
	c := NewYAMLCodec()
	g := sampleGraph()

	var buf bytes.Buffer
	require.NoError(t, c.Export(g, &buf))
	assert.Contains(t, buf.String(), "label: Plan")

	parsed, err := c.Parse(&buf)
	require.NoError(t, err)

	require.Len(t, parsed.Nodes, 2)
	assert.Equal(t, "Central Topic", parsed.Nodes[0].Label)
	assert.Equal(t, domain.CentralTopicColor, parsed.Nodes[0].EffectiveColor())
	assert.Equal(t, domain.Position{X: 120, Y: -40}, parsed.Nodes[1].Position)
	require.Len(t, parsed.Nodes[1].Documents, 1)
	assert.Equal(t, "# Plan", parsed.Nodes[1].Documents[0].Content)
	assert.True(t, parsed.Nodes[1].Documents[0].IsText())

	require.Len(t, parsed.Edges, 1)
	assert.Equal(t, g.Edges[0].ID, parsed.Edges[0].ID)
	assert.Equal(t, domain.StyleThick, parsed.Edges[0].Style)
}

func TestYAMLCodec_KeepsTimestamps(t *testing.T) {
	created := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	updated := created.Add(time.Hour)
	attached := created.Add(10 * time.Minute)
	linked := created.Add(20 * time.Minute)

	g := sampleGraph()
	g.Nodes[1].CreatedAt = created
	g.Nodes[1].UpdatedAt = updated
	g.Nodes[1].Documents[0].AttachedAt = attached
	g.Edges[0].CreatedAt = linked

	c := NewYAMLCodec()
	var buf bytes.Buffer
	require.NoError(t, c.Export(g, &buf))

	parsed, err := c.Parse(&buf)
	require.NoError(t, err)

	node := parsed.Nodes[1]
	assert.True(t, created.Equal(node.CreatedAt), node.CreatedAt)
	assert.True(t, updated.Equal(node.UpdatedAt), node.UpdatedAt)
	assert.True(t, attached.Equal(node.Documents[0].AttachedAt), node.Documents[0].AttachedAt)
	assert.True(t, linked.Equal(parsed.Edges[0].CreatedAt), parsed.Edges[0].CreatedAt)
}

func TestYAMLCodec_ParseHandWritten(t *testing.T) {
	input := `
nodes:
  - id: "1"
    label: Central Topic
  - id: "2"
    label: Notes
    documents:
      - name: a.txt
        type: text/plain; charset=utf-8
        content: hello
edges:
  - source: "1"
    target: "2"
`
	g, err := NewYAMLCodec().Parse(strings.NewReader(input))
	require.NoError(t, err)

	require.Len(t, g.Nodes, 2)
	assert.Equal(t, 2, g.Nodes[1].Ordinal)
	assert.Equal(t, domain.MIMEText, g.Nodes[1].Documents[0].MIMEType)
	assert.Equal(t, int64(5), g.Nodes[1].Documents[0].Size)
	assert.NotNil(t, g.Nodes[0].Documents)
	require.Len(t, g.Edges, 1)
	assert.Equal(t, domain.DefaultStyle, g.Edges[0].Style)
}

func TestYAMLCodec_ParseEmpty(t *testing.T) {
	g, err := NewYAMLCodec().Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, g.Nodes)
	assert.NotNil(t, g.Edges)
}

func TestJSONCodec(t *testing.T) {
	c := NewJSONCodec()
	g := sampleGraph()

	var buf bytes.Buffer
	require.NoError(t, c.Export(g, &buf))
	assert.Contains(t, buf.String(), `"label": "Plan"`)
	assert.NotContains(t, buf.String(), "Batch")

	parsed, err := c.Parse(&buf)
	require.NoError(t, err)
	require.Len(t, parsed.Nodes, 2)
	assert.Equal(t, "plan.md", parsed.Nodes[1].Documents[0].Name)

	_, err = c.Parse(strings.NewReader("{not json"))
	assert.Error(t, err)
}

func TestForPath(t *testing.T) {
	tests := []struct {
		path    string
		format  string
		wantErr bool
	}{
		{"graph.yaml", "yaml", false},
		{"graph.YML", "yaml", false},
		{"/tmp/graph.json", "json", false},
		{"graph.toml", "", true},
		{"graph", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			c, err := ForPath(tt.path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.format, c.Format())
		})
	}
}
