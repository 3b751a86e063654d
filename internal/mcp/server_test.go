package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/fpml-mcp/internal/config"
	"github.com/dshills/fpml-mcp/internal/indexer"
	"github.com/dshills/fpml-mcp/internal/storage"
	"github.com/dshills/fpml-mcp/pkg/types"
)

const fixtureJSON = `{
  "fpml-msg.xsd": {
    "elements": [
      {
        "name": "requestConfirmation",
        "type": "RequestConfirmation",
        "documentation": "A message to request a trade confirmation.",
        "attributes": {"fpmlVersion": {"type": "xsd:token", "use": "required"}},
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

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	t.Chdir(t.TempDir())
	cfg, err := config.Load(config.New(), "")
	require.NoError(t, err)
	return cfg
}

func newTestServer(t *testing.T, store storage.EmbeddingStore) *Server {
	t.Helper()
	src, err := types.ParseSchemaSource([]byte(fixtureJSON))
	require.NoError(t, err)
	idx := indexer.New(nil, nil).Build(src)
	return NewServerWithIndex(idx, store, testConfig(t), nil)
}

func callRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

// decodeResult unmarshals the JSON text content of a tool result
func decodeResult(t *testing.T, result *mcp.CallToolResult) map[string]interface{} {
	t.Helper()
	require.NotNil(t, result)
	require.Len(t, result.Content, 1)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", result.Content[0])

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(text.Text), &out))
	return out
}

// requireToolError checks an isError result and returns its data payload
func requireToolError(t *testing.T, result *mcp.CallToolResult, err error, code int) map[string]interface{} {
	t.Helper()
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.IsError)

	out := decodeResult(t, result)
	assert.Equal(t, float64(code), out["code"])
	data, ok := out["data"].(map[string]interface{})
	require.True(t, ok, "expected data object, got %T", out["data"])
	return data
}

func requireMCPError(t *testing.T, err error, code int) *MCPError {
	t.Helper()
	require.Error(t, err)
	mcpErr, ok := err.(*MCPError)
	require.True(t, ok, "expected *MCPError, got %T", err)
	assert.Equal(t, code, mcpErr.Code)
	return mcpErr
}

func TestLookupTagTool(t *testing.T) {
	s := newTestServer(t, nil)
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		result, err := s.handleLookupTag(ctx, callRequest("lookup_tag", map[string]interface{}{
			"tag": "requestConfirmation",
		}))
		require.NoError(t, err)

		out := decodeResult(t, result)
		assert.Equal(t, "requestConfirmation", out["tag_name"])
		assert.Equal(t, "fpml-msg.xsd", out["source_xsd"])
		assert.Equal(t, "RequestConfirmation", out["data_type"])
		assert.Equal(t, types.LocationTopLevel, out["location"])
		assert.Equal(t, float64(2), out["children_count"])
	})

	t.Run("nested tag", func(t *testing.T) {
		result, err := s.handleLookupTag(ctx, callRequest("lookup_tag", map[string]interface{}{
			"tag": "messageId",
		}))
		require.NoError(t, err)
		out := decodeResult(t, result)
		assert.Equal(t, types.ChildLocation("RequestConfirmation"), out["location"])
	})

	t.Run("miss carries suggestions", func(t *testing.T) {
		result, err := s.handleLookupTag(ctx, callRequest("lookup_tag", map[string]interface{}{
			"tag": "heade",
		}))
		require.NoError(t, err)
		assert.False(t, result.IsError)

		out := decodeResult(t, result)
		assert.Equal(t, false, out["found"])
		assert.Equal(t, "Tag 'heade' not found in the Base Model.", out["status"])
		assert.Contains(t, out["suggestions"], "header")
	})

	t.Run("lookup is case sensitive", func(t *testing.T) {
		result, err := s.handleLookupTag(ctx, callRequest("lookup_tag", map[string]interface{}{
			"tag": "Header",
		}))
		require.NoError(t, err)
		assert.Equal(t, false, decodeResult(t, result)["found"])
	})

	t.Run("missing tag parameter", func(t *testing.T) {
		_, err := s.handleLookupTag(ctx, callRequest("lookup_tag", map[string]interface{}{}))
		requireMCPError(t, err, ErrorCodeInvalidParams)
	})
}

func TestGenerateTemplateTool(t *testing.T) {
	s := newTestServer(t, nil)
	ctx := context.Background()

	t.Run("default depth", func(t *testing.T) {
		result, err := s.handleGenerateTemplate(ctx, callRequest("generate_template", map[string]interface{}{
			"root": "requestConfirmation",
		}))
		require.NoError(t, err)

		out := decodeResult(t, result)
		assert.Equal(t, true, out["well_formed"])
		assert.Equal(t, "dataDocument", out["document_element"])
		doc, _ := out["document"].(string)
		assert.Contains(t, doc, `<requestConfirmation fpmlVersion="VALUE_REQUIRED">`)
		assert.Contains(t, doc, "<messageId>PLACEHOLDER_MessageId</messageId>")
	})

	t.Run("depth arrives as json number", func(t *testing.T) {
		result, err := s.handleGenerateTemplate(ctx, callRequest("generate_template", map[string]interface{}{
			"root":      "requestConfirmation",
			"max_depth": float64(1),
		}))
		require.NoError(t, err)
		doc, _ := decodeResult(t, result)["document"].(string)
		assert.NotContains(t, doc, "<header")
	})

	t.Run("zero depth renders the envelope only", func(t *testing.T) {
		result, err := s.handleGenerateTemplate(ctx, callRequest("generate_template", map[string]interface{}{
			"root":      "requestConfirmation",
			"max_depth": 0,
		}))
		require.NoError(t, err)
		out := decodeResult(t, result)
		doc, _ := out["document"].(string)
		assert.NotContains(t, doc, "requestConfirmation")
		assert.Equal(t, true, out["well_formed"])
	})

	t.Run("negative depth", func(t *testing.T) {
		_, err := s.handleGenerateTemplate(ctx, callRequest("generate_template", map[string]interface{}{
			"root":      "requestConfirmation",
			"max_depth": -1,
		}))
		requireMCPError(t, err, ErrorCodeInvalidParams)
	})

	t.Run("non-numeric depth", func(t *testing.T) {
		_, err := s.handleGenerateTemplate(ctx, callRequest("generate_template", map[string]interface{}{
			"root":      "requestConfirmation",
			"max_depth": "deep",
		}))
		requireMCPError(t, err, ErrorCodeInvalidParams)
	})

	t.Run("unknown root", func(t *testing.T) {
		result, err := s.handleGenerateTemplate(ctx, callRequest("generate_template", map[string]interface{}{
			"root": "requestConfirmaton",
		}))
		data := requireToolError(t, result, err, ErrorCodeTagNotFound)
		assert.Contains(t, data["suggestions"], "requestConfirmation")
	})
}

func TestGenerateMinimalTool(t *testing.T) {
	s := newTestServer(t, nil)
	ctx := context.Background()

	t.Run("required children only", func(t *testing.T) {
		result, err := s.handleGenerateMinimal(ctx, callRequest("generate_minimal", map[string]interface{}{
			"root": "requestConfirmation",
		}))
		require.NoError(t, err)

		out := decodeResult(t, result)
		assert.Equal(t, true, out["well_formed"])
		doc, _ := out["document"].(string)
		assert.Contains(t, doc, `xmlns="http://www.fpml.org/FpML-5/confirmation"`)
		assert.Contains(t, doc, "<header>")
		assert.NotContains(t, doc, "<comment>")
	})

	t.Run("custom namespace", func(t *testing.T) {
		result, err := s.handleGenerateMinimal(ctx, callRequest("generate_minimal", map[string]interface{}{
			"root":      "requestConfirmation",
			"namespace": "urn:test",
		}))
		require.NoError(t, err)
		doc, _ := decodeResult(t, result)["document"].(string)
		assert.Contains(t, doc, `<requestConfirmation xmlns="urn:test">`)
	})

	t.Run("nested root is not applicable", func(t *testing.T) {
		result, err := s.handleGenerateMinimal(ctx, callRequest("generate_minimal", map[string]interface{}{
			"root": "header",
		}))
		data := requireToolError(t, result, err, ErrorCodeNotApplicable)
		assert.Equal(t, "header", data["root"])
	})

	t.Run("cycle is reported", func(t *testing.T) {
		result, err := s.handleGenerateMinimal(ctx, callRequest("generate_minimal", map[string]interface{}{
			"root": "loop",
		}))
		data := requireToolError(t, result, err, ErrorCodeInternalError)
		assert.Equal(t, []interface{}{"loop", "loopBody", "loop"}, data["path"])
	})
}

func TestListTagsTool(t *testing.T) {
	s := newTestServer(t, nil)
	ctx := context.Background()

	tests := []struct {
		name      string
		args      map[string]interface{}
		wantTags  []interface{}
		wantTotal float64
		truncated bool
	}{
		{
			name:      "all tags sorted",
			args:      map[string]interface{}{},
			wantTags:  []interface{}{"comment", "header", "loop", "loopBody", "messageId", "requestConfirmation"},
			wantTotal: 6,
		},
		{
			name:      "top level only",
			args:      map[string]interface{}{"top_level_only": true},
			wantTags:  []interface{}{"loop", "requestConfirmation"},
			wantTotal: 2,
		},
		{
			name:      "prefix",
			args:      map[string]interface{}{"prefix": "loop"},
			wantTags:  []interface{}{"loop", "loopBody"},
			wantTotal: 2,
		},
		{
			name:      "limit truncates",
			args:      map[string]interface{}{"limit": float64(2)},
			wantTags:  []interface{}{"comment", "header"},
			wantTotal: 6,
			truncated: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := s.handleListTags(ctx, callRequest("list_tags", tt.args))
			require.NoError(t, err)

			out := decodeResult(t, result)
			assert.Equal(t, tt.wantTags, out["tags"])
			assert.Equal(t, tt.wantTotal, out["total"])
			assert.Equal(t, float64(len(tt.wantTags)), out["count"])
			assert.Equal(t, tt.truncated, out["truncated"])
		})
	}

	t.Run("negative limit", func(t *testing.T) {
		_, err := s.handleListTags(ctx, callRequest("list_tags", map[string]interface{}{"limit": -3}))
		requireMCPError(t, err, ErrorCodeInvalidParams)
	})
}

func TestGetStatusTool(t *testing.T) {
	ctx := context.Background()

	t.Run("without embedding store", func(t *testing.T) {
		s := newTestServer(t, nil)
		result, err := s.handleGetStatus(ctx, callRequest("get_status", nil))
		require.NoError(t, err)

		out := decodeResult(t, result)
		assert.Equal(t, true, out["loaded"])
		assert.Equal(t, storage.BuildMode, out["build_mode"])
		assert.NotContains(t, out, "load_error")

		stats, ok := out["statistics"].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, float64(6), stats["tags"])
		assert.Equal(t, float64(2), stats["top_level"])

		embeddings, ok := out["embeddings"].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, false, embeddings["available"])
	})

	t.Run("with stored run", func(t *testing.T) {
		store, err := storage.NewSQLiteStorage(":memory:")
		require.NoError(t, err)
		s := newTestServer(t, store)
		t.Cleanup(func() { _ = s.Close() })

		empty, err := s.handleGetStatus(ctx, callRequest("get_status", nil))
		require.NoError(t, err)
		embeddings := decodeResult(t, empty)["embeddings"].(map[string]interface{})
		assert.Equal(t, false, embeddings["available"])
		assert.NotContains(t, embeddings, "latest_run")

		run := &storage.Run{Source: "all_xsd_data.json", Provider: "local", Model: "local-hashed-words", Dimension: 2}
		require.NoError(t, store.SaveEmbeddings(ctx, run, []storage.EmbeddingRecord{
			{Key: "fpml-msg.xsd/requestConfirmation", Prompt: "p", Vector: []float32{1, 0}, WordCount: 1},
		}))

		result, err := s.handleGetStatus(ctx, callRequest("get_status", nil))
		require.NoError(t, err)
		embeddings = decodeResult(t, result)["embeddings"].(map[string]interface{})
		assert.Equal(t, true, embeddings["available"])
		assert.Equal(t, float64(1), embeddings["count"])

		latest, ok := embeddings["latest_run"].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, run.ID, latest["id"])
		assert.Equal(t, "local", latest["provider"])
	})

	t.Run("unreadable source", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Source = filepath.Join(t.TempDir(), "missing.json")

		s, err := NewServer(cfg, nil)
		require.NoError(t, err)

		result, err := s.handleGetStatus(ctx, callRequest("get_status", nil))
		require.NoError(t, err)
		out := decodeResult(t, result)
		assert.Equal(t, false, out["loaded"])
		assert.Contains(t, out["load_error"], "read schema source")
	})
}

func TestNewServerLoadsSource(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.WriteFile(cfg.Source, []byte(fixtureJSON), 0o644))
	cfg.DB = filepath.Join(t.TempDir(), "embeddings.db")

	s, err := NewServer(cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	assert.Equal(t, 6, s.index.Len())
	assert.NotNil(t, s.store)
	assert.NoError(t, s.index.Err())
}

// rpc sends one JSON-RPC request through the protocol layer and decodes the reply
func rpc(t *testing.T, s *Server, method string, params interface{}) map[string]interface{} {
	t.Helper()
	raw, err := json.Marshal(map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  method,
		"params":  params,
	})
	require.NoError(t, err)

	reply, err := json.Marshal(s.mcp.HandleMessage(context.Background(), raw))
	require.NoError(t, err)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(reply, &out))
	return out
}

// toolText returns the text content of a tools/call reply
func toolText(t *testing.T, reply map[string]interface{}) (map[string]interface{}, bool) {
	t.Helper()
	require.NotContains(t, reply, "error")
	result, ok := reply["result"].(map[string]interface{})
	require.True(t, ok)
	content, ok := result["content"].([]interface{})
	require.True(t, ok)
	require.Len(t, content, 1)
	text, _ := content[0].(map[string]interface{})["text"].(string)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(text), &out))
	isError, _ := result["isError"].(bool)
	return out, isError
}

func TestToolCallsOverProtocol(t *testing.T) {
	s := newTestServer(t, nil)

	t.Run("lookup miss is a result", func(t *testing.T) {
		out, isError := toolText(t, rpc(t, s, "tools/call", map[string]interface{}{
			"name":      "lookup_tag",
			"arguments": map[string]interface{}{"tag": "nope"},
		}))
		assert.False(t, isError)
		assert.Equal(t, false, out["found"])
		assert.Equal(t, "Tag 'nope' not found in the Base Model.", out["status"])
	})

	t.Run("not applicable keeps its code", func(t *testing.T) {
		out, isError := toolText(t, rpc(t, s, "tools/call", map[string]interface{}{
			"name":      "generate_minimal",
			"arguments": map[string]interface{}{"root": "header"},
		}))
		assert.True(t, isError)
		assert.Equal(t, float64(ErrorCodeNotApplicable), out["code"])
	})

	t.Run("unknown root keeps its code", func(t *testing.T) {
		out, isError := toolText(t, rpc(t, s, "tools/call", map[string]interface{}{
			"name":      "generate_template",
			"arguments": map[string]interface{}{"root": "nope"},
		}))
		assert.True(t, isError)
		assert.Equal(t, float64(ErrorCodeTagNotFound), out["code"])
	})

	t.Run("invalid params stay protocol errors", func(t *testing.T) {
		reply := rpc(t, s, "tools/call", map[string]interface{}{
			"name":      "lookup_tag",
			"arguments": map[string]interface{}{},
		})
		rpcErr, ok := reply["error"].(map[string]interface{})
		require.True(t, ok)
		assert.Contains(t, rpcErr["message"], "-32602")
	})
}

func TestServeStopsOnCancel(t *testing.T) {
	s := newTestServer(t, nil)

	in, w := io.Pipe()
	t.Cleanup(func() { _ = w.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- s.listen(ctx, in, io.Discard)
	}()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop after cancel")
	}
}

func TestServeAnswersUntilEOF(t *testing.T) {
	s := newTestServer(t, nil)

	in := strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"list_tags","arguments":{"top_level_only":true}}}` + "\n")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var out bytes.Buffer
	require.NoError(t, s.listen(ctx, in, &out))

	var reply map[string]interface{}
	require.NoError(t, json.Unmarshal(out.Bytes(), &reply))
	body, isError := toolText(t, reply)
	assert.False(t, isError)
	assert.Equal(t, []interface{}{"loop", "requestConfirmation"}, body["tags"])
}
