package graph

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mindmap/internal/domain"
)

func fixedPlacer() domain.Position {
	return domain.Position{X: 10, Y: -10}
}

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	return New(WithPlacer(fixedPlacer))
}

func TestRegistry_CreateNode(t *testing.T) {
	r := newTestRegistry(t)

	seed := r.Seed("", "")
	assert.Equal(t, "1", seed.ID)
	assert.Equal(t, domain.CentralTopicLabel, seed.Label)
	assert.Equal(t, domain.CentralTopicColor, seed.EffectiveColor())
	assert.Equal(t, domain.Position{}, seed.Position)

	n := r.CreateNode("", "")
	assert.Equal(t, "2", n.ID)
	assert.Equal(t, 2, n.Ordinal)
	assert.Empty(t, n.Label)
	assert.NotNil(t, n.Documents)
	assert.Empty(t, n.Documents)
	assert.Equal(t, domain.Position{X: 10, Y: -10}, n.Position)
	assert.Equal(t, domain.Palette[2], n.EffectiveColor())
	assert.Equal(t, 2, r.NodeCount())
}

func TestRegistry_IDsAreNotReused(t *testing.T) {
	r := newTestRegistry(t)
	a := r.CreateNode("a", "")
	b := r.CreateNode("b", "")

	r.DeleteNode(b.ID)
	c := r.CreateNode("c", "")

	assert.NotEqual(t, a.ID, c.ID)
	assert.NotEqual(t, b.ID, c.ID)
	assert.Equal(t, "3", c.ID)
}

func TestRegistry_RandomPlacerBounds(t *testing.T) {
	place := RandomPlacer(DefaultSpawnRadius)
	for i := 0; i < 500; i++ {
		p := place()
		require.GreaterOrEqual(t, p.X, -250.0)
		require.Less(t, p.X, 250.0)
		require.GreaterOrEqual(t, p.Y, -250.0)
		require.Less(t, p.Y, 250.0)
	}
}

func TestRegistry_Mutations(t *testing.T) {
	r := newTestRegistry(t)
	n := r.CreateNode("", "")

	t.Run("label accepts any text", func(t *testing.T) {
		got, err := r.UpdateLabel(n.ID, "Ideas")
		require.NoError(t, err)
		assert.Equal(t, "Ideas", got.Label)

		got, err = r.UpdateLabel(n.ID, "")
		require.NoError(t, err)
		assert.Empty(t, got.Label)
	})

	t.Run("color override and reset", func(t *testing.T) {
		got, err := r.SetColor(n.ID, "#000000")
		require.NoError(t, err)
		assert.Equal(t, "#000000", got.EffectiveColor())

		got, err = r.SetColor(n.ID, "")
		require.NoError(t, err)
		assert.Equal(t, domain.PaletteColor(n.Ordinal), got.EffectiveColor())
	})

	t.Run("position pass-through", func(t *testing.T) {
		got, err := r.SetPosition(n.ID, domain.Position{X: 1.5, Y: 2.5})
		require.NoError(t, err)
		assert.Equal(t, domain.Position{X: 1.5, Y: 2.5}, got.Position)
	})

	t.Run("unknown node", func(t *testing.T) {
		_, err := r.UpdateLabel("missing", "x")
		assert.ErrorIs(t, err, ErrNodeNotFound)
		_, err = r.SetColor("missing", "#fff")
		assert.ErrorIs(t, err, ErrNodeNotFound)
		_, err = r.SetPosition("missing", domain.Position{})
		assert.ErrorIs(t, err, ErrNodeNotFound)
	})
}

func TestRegistry_ReturnedNodesAreCopies(t *testing.T) {
	r := newTestRegistry(t)
	n := r.CreateNode("a", "")
	_, err := r.AttachDocument(n.ID, domain.NewDocument("a.txt", domain.MIMEText, []byte("x")))
	require.NoError(t, err)

	got, ok := r.Node(n.ID)
	require.True(t, ok)
	got.Label = "changed"
	got.Documents[0].Name = "changed"

	again, _ := r.Node(n.ID)
	assert.Equal(t, "a", again.Label)
	assert.Equal(t, "a.txt", again.Documents[0].Name)
}

func TestRegistry_Connect(t *testing.T) {
	r := newTestRegistry(t)
	a := r.CreateNode("A", "")
	b := r.CreateNode("B", "")

	t.Run("creates edge with style", func(t *testing.T) {
		e, err := r.Connect(a.ID, b.ID, domain.StyleDotted)
		require.NoError(t, err)
		assert.NotEmpty(t, e.ID)
		assert.Equal(t, a.ID, e.Source)
		assert.Equal(t, b.ID, e.Target)
		assert.Equal(t, domain.StyleDotted, e.Style)
	})

	t.Run("self loop and parallel edges", func(t *testing.T) {
		loop, err := r.Connect(a.ID, a.ID, domain.StyleSingle)
		require.NoError(t, err)
		assert.True(t, loop.IsLoop())

		_, err = r.Connect(a.ID, b.ID, domain.StyleDotted)
		require.NoError(t, err)
		assert.Equal(t, 3, r.EdgeCount())
	})

	t.Run("dangling endpoint", func(t *testing.T) {
		before := r.EdgeCount()
		_, err := r.Connect(a.ID, "99", domain.StyleSingle)
		assert.ErrorIs(t, err, ErrDanglingEndpoint)
		_, err = r.Connect("99", b.ID, domain.StyleSingle)
		assert.ErrorIs(t, err, ErrDanglingEndpoint)
		assert.Equal(t, before, r.EdgeCount())
	})

	t.Run("unknown style", func(t *testing.T) {
		_, err := r.Connect(a.ID, b.ID, domain.StyleID("zigzag"))
		assert.ErrorIs(t, err, ErrUnknownStyle)
	})
}

func TestRegistry_DeleteNodeCascades(t *testing.T) {
	r := newTestRegistry(t)
	a := r.CreateNode("A", "")
	b := r.CreateNode("B", "")
	c := r.CreateNode("C", "")

	ab, err := r.Connect(a.ID, b.ID, domain.StyleSingle)
	require.NoError(t, err)
	bc, err := r.Connect(b.ID, c.ID, domain.StyleThick)
	require.NoError(t, err)
	ca, err := r.Connect(c.ID, a.ID, domain.StyleDouble)
	require.NoError(t, err)

	removed, ok := r.DeleteNode(b.ID)
	require.True(t, ok)
	assert.ElementsMatch(t, []string{ab.ID, bc.ID}, removed)

	edges := r.Edges()
	require.Len(t, edges, 1)
	assert.Equal(t, ca.ID, edges[0].ID)
	for _, e := range edges {
		assert.False(t, e.Involves(b.ID))
	}

	t.Run("idempotent", func(t *testing.T) {
		removed, ok := r.DeleteNode(b.ID)
		assert.False(t, ok)
		assert.Empty(t, removed)
		assert.Equal(t, 2, r.NodeCount())
		assert.Equal(t, 1, r.EdgeCount())
	})
}

func TestRegistry_RemoveEdge(t *testing.T) {
	r := newTestRegistry(t)
	a := r.CreateNode("A", "")
	e, err := r.Connect(a.ID, a.ID, domain.StyleSingle)
	require.NoError(t, err)

	assert.True(t, r.RemoveEdge(e.ID))
	assert.False(t, r.RemoveEdge(e.ID))
	_, ok := r.Edge(e.ID)
	assert.False(t, ok)
	assert.True(t, r.HasNode(a.ID))
}

func TestRegistry_OrderIsPreserved(t *testing.T) {
	r := newTestRegistry(t)
	var ids []string
	for i := 0; i < 5; i++ {
		ids = append(ids, r.CreateNode(fmt.Sprintf("n%d", i), "").ID)
	}
	r.DeleteNode(ids[2])

	var got []string
	for _, n := range r.Nodes() {
		got = append(got, n.ID)
	}
	assert.Equal(t, []string{ids[0], ids[1], ids[3], ids[4]}, got)

	var edgeIDs []string
	for i := 0; i < 3; i++ {
		e, err := r.Connect(ids[0], ids[4-i], domain.StyleSingle)
		require.NoError(t, err)
		edgeIDs = append(edgeIDs, e.ID)
	}
	var gotEdges []string
	for _, e := range r.Edges() {
		gotEdges = append(gotEdges, e.ID)
	}
	assert.Equal(t, edgeIDs, gotEdges)
}

func TestRegistry_AttachDocument(t *testing.T) {
	r := newTestRegistry(t)
	n := r.CreateNode("Docs", "")

	doc := domain.NewDocument("notes.md", domain.MIMEMarkdown, []byte("# hi"))
	got, err := r.AttachDocument(n.ID, doc)
	require.NoError(t, err)
	require.Len(t, got.Documents, 1)
	assert.Equal(t, "notes.md", got.Documents[0].Name)

	r.DeleteNode(n.ID)
	_, err = r.AttachDocument(n.ID, doc)
	assert.ErrorIs(t, err, ErrNodeNotFound)
	assert.False(t, r.HasNode(n.ID))
}

func TestRegistry_Snapshot(t *testing.T) {
	r := newTestRegistry(t)
	a := r.CreateNode("A", "")
	_, err := r.Connect(a.ID, a.ID, domain.StyleAnimated)
	require.NoError(t, err)

	g := r.Snapshot()
	require.Len(t, g.Nodes, 1)
	require.Len(t, g.Edges, 1)

	g.Nodes[0].Label = "mutated"
	node, _ := r.Node(a.ID)
	assert.Equal(t, "A", node.Label)
}
