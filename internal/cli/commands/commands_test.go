package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/fpml-mcp/internal/config"
	"github.com/dshills/fpml-mcp/internal/embedder"
	"github.com/dshills/fpml-mcp/internal/indexer"
	"github.com/dshills/fpml-mcp/internal/storage"
)

const fixtureJSON = `{
  "fpml-msg.xsd": {
    "elements": [
      {
        "name": "requestConfirmation",
        "type": "RequestConfirmation",
        "documentation": "A message to request a trade confirmation.",
        "attributes": {"fpmlVersion": {"type": "xsd:token", "use": "required"}, "href": {"use": "optional"}},
        "children": [
          {"name": "header", "minOccurs": "1"},
          {"name": "comment", "minOccurs": "0"}
        ]
      },
      {"name": "loop", "children": [{"name": "loopBody", "minOccurs": "1"}]}
    ],
    "complexTypes": [
      {
        "name": "RequestConfirmation",
        "children": [
          {"name": "header", "type": "MessageHeader", "children": [{"name": "messageId", "minOccurs": "1"}]},
          {"name": "messageId", "type": "MessageId"},
          {"name": "comment", "type": "xsd:string"},
          {"name": "loopBody", "children": [{"name": "loop", "minOccurs": "1"}]}
        ]
      }
    ]
  }
}`

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

// workspace switches to a fresh directory holding the default schema source
func workspace(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, indexer.DefaultSourceFile), []byte(fixtureJSON), 0o644))
	return dir
}

func runCommand(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestNewRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	assert.Equal(t, "fpml", cmd.Use)
	assert.NotEmpty(t, cmd.Short)

	var names []string
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	for _, expected := range []string{"version", "lookup", "generate", "tags", "status", "embed", "serve"} {
		assert.Contains(t, names, expected)
	}
}

func TestVersionCommand(t *testing.T) {
	Version = "1.2.3-test"
	defer func() { Version = "dev" }()

	// version must not need a schema source or config
	t.Chdir(t.TempDir())
	stdout, _, err := runCommand(t, "version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "fpml version: 1.2.3-test")
	assert.Contains(t, stdout, "Build mode: "+storage.BuildMode)
}

func TestLookupCommand(t *testing.T) {
	workspace(t)

	t.Run("hit", func(t *testing.T) {
		stdout, _, err := runCommand(t, "lookup", "requestConfirmation")
		require.NoError(t, err)
		assert.Contains(t, stdout, "✓ Tag 'requestConfirmation' found.")
		assert.Contains(t, stdout, "fpml-msg.xsd")
		assert.Contains(t, stdout, "Top-Level Element")
		assert.Contains(t, stdout, "fpmlVersion (required), href")
		assert.Contains(t, stdout, "2 (showing 2)")
		assert.Contains(t, stdout, "    - header")
	})

	t.Run("json", func(t *testing.T) {
		stdout, _, err := runCommand(t, "lookup", "header", "--json")
		require.NoError(t, err)

		var summary indexer.Summary
		require.NoError(t, json.Unmarshal([]byte(stdout), &summary))
		assert.Equal(t, "header", summary.TagName)
		assert.Equal(t, "MessageHeader", summary.DataType)
		assert.Equal(t, "Child of RequestConfirmation", summary.Location)
		assert.Equal(t, 1, summary.ChildrenCount)
	})

	t.Run("miss prints suggestions", func(t *testing.T) {
		stdout, stderr, err := runCommand(t, "lookup", "headr")
		assert.ErrorIs(t, err, errReported)
		assert.Empty(t, stdout)
		assert.Contains(t, stderr, "Tag 'headr' not found in the Base Model.")
		assert.Contains(t, stderr, "Did you mean: header?")
	})

	t.Run("requires a tag", func(t *testing.T) {
		_, _, err := runCommand(t, "lookup")
		assert.Error(t, err)
	})
}

func TestLookupMissingSource(t *testing.T) {
	t.Chdir(t.TempDir())
	_, _, err := runCommand(t, "lookup", "header")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read schema source")
}

func TestGenerateTemplateCommand(t *testing.T) {
	workspace(t)

	t.Run("depth and check", func(t *testing.T) {
		stdout, stderr, err := runCommand(t, "generate", "template", "requestConfirmation", "--max-depth", "2", "--check")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(stdout, `<?xml version="1.0" encoding="utf-8"?>`))
		assert.Contains(t, stdout, `<requestConfirmation fpmlVersion="VALUE_REQUIRED">`)
		assert.Contains(t, stdout, "<header>")
		assert.NotContains(t, stdout, "<messageId>")
		assert.True(t, strings.HasSuffix(stdout, "</fpml:dataDocument>\n"))
		assert.Contains(t, stderr, "well-formed (document element dataDocument)")
	})

	t.Run("unknown root", func(t *testing.T) {
		_, stderr, err := runCommand(t, "generate", "template", "requestConfirmaton")
		assert.ErrorIs(t, err, errReported)
		assert.Contains(t, stderr, "Did you mean: requestConfirmation?")
	})
}

func TestGenerateMinimalCommand(t *testing.T) {
	workspace(t)

	t.Run("custom namespace", func(t *testing.T) {
		stdout, _, err := runCommand(t, "generate", "minimal", "requestConfirmation", "--namespace", "urn:test", "--check")
		require.NoError(t, err)
		assert.Contains(t, stdout, `<requestConfirmation xmlns="urn:test">`)
		assert.Contains(t, stdout, "<messageId>")
		assert.NotContains(t, stdout, "<comment>")
	})

	t.Run("nested root", func(t *testing.T) {
		_, stderr, err := runCommand(t, "generate", "minimal", "header")
		assert.ErrorIs(t, err, errReported)
		assert.Contains(t, stderr, "NOT APPLICABLE")
	})

	t.Run("cycle", func(t *testing.T) {
		_, _, err := runCommand(t, "generate", "minimal", "loop")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "loop -> loopBody -> loop")
	})
}

func TestTagsCommand(t *testing.T) {
	workspace(t)

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{"all", nil, []string{"comment", "header", "loop", "loopBody", "messageId", "requestConfirmation"}},
		{"top level", []string{"--top-level"}, []string{"loop", "requestConfirmation"}},
		{"prefix", []string{"--prefix", "loop"}, []string{"loop", "loopBody"}},
		{"top level with prefix", []string{"--top-level", "--prefix", "loop"}, []string{"loop"}},
		{"source order", []string{"--order", "source"}, []string{"requestConfirmation", "loop", "header", "messageId", "comment", "loopBody"}},
		{"source order top level", []string{"--order", "source", "--top-level"}, []string{"requestConfirmation", "loop"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, stderr, err := runCommand(t, append([]string{"tags"}, tt.args...)...)
			require.NoError(t, err)
			assert.Equal(t, strings.Join(tt.want, "\n")+"\n", stdout)
			assert.Contains(t, stderr, "of 6 tags")
		})
	}
}

func TestTagsInvalidOrder(t *testing.T) {
	workspace(t)
	_, _, err := runCommand(t, "tags", "--order", "random")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --order")
}

func TestEmbedAndStatusCommands(t *testing.T) {
	dir := workspace(t)
	dbPath := filepath.Join(dir, "embeddings.db")

	stdout, _, err := runCommand(t, "embed", "--provider", "local", "--output", "out.json", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, stdout, "✓ Embedded 1 elements")
	assert.Contains(t, stdout, embedder.ProviderLocal+"/"+embedder.DefaultLocalModel)

	vectors, err := storage.LoadEmbeddingsFile(filepath.Join(dir, "out.json"))
	require.NoError(t, err)
	require.Equal(t, 1, vectors.Len())
	vec, ok := vectors.Get("fpml-msg.xsd/requestConfirmation")
	require.True(t, ok)
	assert.Len(t, vec, embedder.LocalDimension)

	stdout, _, err = runCommand(t, "status", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Tags:")
	assert.Contains(t, stdout, "Embeddings:")
	assert.Contains(t, stdout, "Latest run:")
	assert.Contains(t, stdout, "local/")
}

func TestEmbedSinksWriteDatabaseFirst(t *testing.T) {
	dir := t.TempDir()
	e := &env{cfg: &config.Config{
		Output: filepath.Join(dir, "out.json"),
		DB:     filepath.Join(dir, "embeddings.db"),
	}}

	sinks, jsonSink, closeSinks, err := e.embedSinks()
	require.NoError(t, err)
	defer closeSinks()

	require.Len(t, sinks, 2)
	assert.IsType(t, &storage.SQLiteStorage{}, sinks[0])
	assert.Same(t, jsonSink, sinks[1])

	e.cfg.DB = ""
	sinks, jsonSink, _, err = e.embedSinks()
	require.NoError(t, err)
	assert.Equal(t, storage.MultiSink{jsonSink}, sinks)
}

func TestStatusWithoutDatabase(t *testing.T) {
	workspace(t)
	stdout, _, err := runCommand(t, "status")
	require.NoError(t, err)
	assert.Contains(t, stdout, "no database configured")
}

func TestEmbedNothingDocumented(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, indexer.DefaultSourceFile),
		[]byte(`{"a.xsd": {"elements": [{"name": "bare"}]}}`), 0o644))

	_, _, err := runCommand(t, "embed", "--provider", "local")
	assert.ErrorIs(t, err, embedder.ErrNoPrompts)
	assert.NoFileExists(t, filepath.Join(dir, storage.DefaultOutputFile))
}

func TestConfigFileAndEnvironment(t *testing.T) {
	dir := workspace(t)
	require.NoError(t, os.Rename(
		filepath.Join(dir, indexer.DefaultSourceFile),
		filepath.Join(dir, "schema.json")))

	t.Run("config file", func(t *testing.T) {
		cfgPath := filepath.Join(dir, "custom.yaml")
		require.NoError(t, os.WriteFile(cfgPath, []byte("source: schema.json\n"), 0o644))

		stdout, _, err := runCommand(t, "--config", cfgPath, "tags", "--top-level")
		require.NoError(t, err)
		assert.Equal(t, "loop\nrequestConfirmation\n", stdout)
	})

	t.Run("environment", func(t *testing.T) {
		t.Setenv("FPML_SOURCE", "schema.json")
		_, _, err := runCommand(t, "lookup", "header")
		require.NoError(t, err)
	})

	t.Run("flag", func(t *testing.T) {
		_, _, err := runCommand(t, "--source", "schema.json", "lookup", "header")
		require.NoError(t, err)
	})

	t.Run("invalid provider", func(t *testing.T) {
		_, _, err := runCommand(t, "--source", "schema.json", "embed", "--provider", "bogus")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "embedding.provider")
	})
}
