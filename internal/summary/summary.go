// Package summary renders a deterministic text report of a diagram.
//
// Generate reads a graph snapshot and never mutates it. The same snapshot
// always yields the same report, byte for byte.
package summary

import (
	"fmt"
	"io"
	"strings"

	"mindmap/internal/domain"
)

const (
	// Filename is the name offered for the downloaded report
	Filename = "mindmap-summary.txt"
	// ContentType is the media type of the downloaded report
	ContentType = "text/plain; charset=utf-8"
	// ExcerptLength is the number of characters kept from text documents
	ExcerptLength = 100
	// BinaryMarker stands in for the content of non-text documents
	BinaryMarker = "[Binary content]"
)

// NodeLine is one entry of the node structure section
type NodeLine struct {
	Label     string `json:"label"`
	Documents int    `json:"documents"`
}

// DocumentLine is one document within a DocumentBlock
type DocumentLine struct {
	Name    string `json:"name"`
	Excerpt string `json:"excerpt"`
}

// DocumentBlock lists the documents of one node
type DocumentBlock struct {
	Label     string         `json:"label"`
	Documents []DocumentLine `json:"documents"`
}

// Report is the composed summary
type Report struct {
	Nodes       []NodeLine      `json:"nodes"`
	Connections []string        `json:"connections"`
	Documents   []DocumentBlock `json:"documents"`
}

// Generate builds the report for g
func Generate(g *domain.Graph) *Report {
	r := &Report{
		Nodes:       make([]NodeLine, 0, len(g.Nodes)),
		Connections: make([]string, 0, len(g.Edges)),
		Documents:   make([]DocumentBlock, 0),
	}

	labels := make(map[string]string, len(g.Nodes))
	for _, n := range g.Nodes {
		labels[n.ID] = n.Label
	}

	outgoing := make(map[string][]domain.Edge)
	for _, e := range g.Edges {
		outgoing[e.Source] = append(outgoing[e.Source], e)
	}

	for _, n := range g.Nodes {
		r.Nodes = append(r.Nodes, NodeLine{Label: n.Label, Documents: len(n.Documents)})

		for _, e := range outgoing[n.ID] {
			target, ok := labels[e.Target]
			if !ok {
				target = e.Target
			}
			r.Connections = append(r.Connections, Sentence(n.Label, target, e.Style))
		}

		if len(n.Documents) == 0 {
			continue
		}
		block := DocumentBlock{Label: n.Label, Documents: make([]DocumentLine, 0, len(n.Documents))}
		for _, d := range n.Documents {
			block.Documents = append(block.Documents, DocumentLine{Name: d.Name, Excerpt: Excerpt(d)})
		}
		r.Documents = append(r.Documents, block)
	}

	return r
}

// Sentence describes one edge
func Sentence(source, target string, style domain.StyleID) string {
	return fmt.Sprintf(`"%s" is connected to "%s" with a %s connection`, source, target, style)
}

// Excerpt returns the first ExcerptLength characters of a text document
// followed by an ellipsis, or BinaryMarker for anything else
func Excerpt(d domain.Document) string {
	if !d.IsText() {
		return BinaryMarker
	}
	runes := []rune(d.Content)
	if len(runes) > ExcerptLength {
		runes = runes[:ExcerptLength]
	}
	return string(runes) + "..."
}

// Header returns the first line of the document block
func (b DocumentBlock) Header() string {
	return fmt.Sprintf(`Node "%s" contains %d document(s):`, b.Label, len(b.Documents))
}

// Text renders the plain text report. This is the downloadable artifact.
func (r *Report) Text() string {
	var sb strings.Builder
	sb.WriteString("MIND MAP SUMMARY\n\nNODE STRUCTURE:\n")
	for i, n := range r.Nodes {
		if i > 0 {
			sb.WriteByte('\n')
		}
		fmt.Fprintf(&sb, "• %s (%d document(s))", n.Label, n.Documents)
	}

	if len(r.Connections) > 0 {
		sb.WriteString("\n\nCONNECTIONS:\n")
		for i, c := range r.Connections {
			if i > 0 {
				sb.WriteByte('\n')
			}
			sb.WriteString("• ")
			sb.WriteString(c)
		}
	}

	if len(r.Documents) > 0 {
		sb.WriteString("\n\nDOCUMENTS:\n")
		for i, b := range r.Documents {
			if i > 0 {
				sb.WriteString("\n\n")
			}
			sb.WriteString(b.Header())
			for _, d := range b.Documents {
				fmt.Fprintf(&sb, "\n- %s: %s", d.Name, d.Excerpt)
			}
		}
	}

	return sb.String()
}

// WriteTo writes the text report to w
func (r *Report) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, r.Text())
	return int64(n), err
}
