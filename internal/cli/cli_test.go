package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const snapshotJSON = `{
  "nodes": [
    {"id": "1", "label": "Central Topic", "documents": [
      {"id": "d1", "name": "notes.txt", "type": "text/plain", "content": "first notes"}
    ]},
    {"id": "2", "label": "Branch"}
  ],
  "edges": [
    {"id": "e1", "source": "1", "target": "2", "style": "thick"}
  ]
}`

const snapshotSummary = "MIND MAP SUMMARY\n\n" +
	"NODE STRUCTURE:\n" +
	"• Central Topic (1 document(s))\n" +
	"• Branch (0 document(s))\n\n" +
	"CONNECTIONS:\n" +
	"• \"Central Topic\" is connected to \"Branch\" with a thick connection\n\n" +
	"DOCUMENTS:\n" +
	"Node \"Central Topic\" contains 1 document(s):\n" +
	"- notes.txt: first notes..."

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	// keep the real user config out of the way
	t.Setenv("MINDMAP_CONFIG", "")
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	chdir(t, t.TempDir())

	root := NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--no-color"}, args...))
	err := root.Execute()
	return out.String(), err
}

func writeSnapshot(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestSummarize_Stdout(t *testing.T) {
	path := writeSnapshot(t, "map.json", snapshotJSON)

	out, err := run(t, "summarize", path)
	require.NoError(t, err)
	assert.Equal(t, snapshotSummary+"\n", out)
}

func TestSummarize_OutFile(t *testing.T) {
	path := writeSnapshot(t, "map.json", snapshotJSON)
	dest := filepath.Join(t.TempDir(), "summary.txt")

	out, err := run(t, "summarize", path, "--out", dest)
	require.NoError(t, err)
	assert.Empty(t, out)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, snapshotSummary, string(data))
}

func TestSummarize_YAMLAndHTML(t *testing.T) {
	path := writeSnapshot(t, "map.yaml", "nodes:\n  - id: \"1\"\n    label: Solo\n")

	out, err := run(t, "summarize", "--html", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Solo")
	assert.NotContains(t, out, "<h3>Connections</h3>")
}

func TestSummarize_Errors(t *testing.T) {
	_, err := run(t, "summarize", writeSnapshot(t, "map.xml", "<x/>"))
	assert.ErrorContains(t, err, "unsupported format")

	_, err = run(t, "summarize", filepath.Join(t.TempDir(), "gone.json"))
	assert.ErrorContains(t, err, "open snapshot")

	_, err = run(t, "summarize", writeSnapshot(t, "bad.json", "{"))
	assert.ErrorContains(t, err, "parse")

	_, err = run(t, "summarize")
	assert.Error(t, err)
}

func TestStyles(t *testing.T) {
	out, err := run(t, "styles")
	require.NoError(t, err)

	for _, want := range []string{"single", "double", "dotted", "thick", "animated", "Dotted line connection", "#F44336"} {
		assert.Contains(t, out, want)
	}
}

func TestConfigInitAndShow(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mindmap.toml")

	out, err := run(t, "config", "init", path)
	require.NoError(t, err)
	assert.Contains(t, out, "wrote "+path)

	_, err = run(t, "config", "init", path)
	assert.ErrorContains(t, err, "already exists")

	_, err = run(t, "config", "init", "--force", path)
	require.NoError(t, err)

	out, err = run(t, "--config", path, "--addr", ":9090", "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "config: "+path)
	assert.Contains(t, out, "Listen: :9090")
}

func TestConfigShow_Defaults(t *testing.T) {
	out, err := run(t, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "no config file found")
	assert.Contains(t, out, "mindmap.toml")
	assert.Contains(t, out, "/etc/mindmap/config.yaml")
	assert.Contains(t, out, "Listen: :3000")
}

func TestInvalidLogLevelFlag(t *testing.T) {
	_, err := run(t, "--log-level", "loud", "config", "show")
	assert.ErrorContains(t, err, "log.level")
}
