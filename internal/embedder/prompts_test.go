package embedder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/fpml-mcp/pkg/types"
)

const promptSource = `{
  "fx.xsd": {
    "elements": [
      {"name": "trade", "documentation": "A trade record"},
      {"name": "undocumented", "type": "Thing"},
      {"documentation": "nameless element"},
      {"name": "trade", "documentation": "A later duplicate"},
      {"name": "fxSingleLeg", "documentation": "A single FX leg."}
    ],
    "complexTypes": [
      {"name": "Trade", "children": [
        {"name": "tradeHeader", "documentation": "Child elements are not prompted."}
      ]}
    ]
  },
  "shared.xsd": {
    "elements": [
      {"name": "party", "documentation": "A legal entity."},
      {"name": "trade", "documentation": "Same name, other file."}
    ]
  }
}`

func mustSource(t *testing.T, raw string) *types.SchemaSource {
	t.Helper()
	src, err := types.ParseSchemaSource([]byte(raw))
	require.NoError(t, err)
	return src
}

func TestExtractPrompts(t *testing.T) {
	ps := ExtractPrompts(mustSource(t, promptSource))

	assert.Equal(t, []string{
		"fx.xsd/trade",
		"fx.xsd/fxSingleLeg",
		"shared.xsd/party",
		"shared.xsd/trade",
	}, ps.Keys)
	require.Len(t, ps.Prompts, len(ps.Keys))
	assert.Equal(t, 1, ps.Duplicates())

	assert.Equal(t,
		"XSD File: fx.xsd. Element Name: trade. Function/Documentation: A trade record",
		ps.Prompts[0])

	for i, key := range ps.Keys {
		prompt, ok := ps.Get(key)
		require.True(t, ok)
		assert.Equal(t, ps.Prompts[i], prompt, "key %s misaligned", key)
	}
}

func TestExtractPromptsAlignment(t *testing.T) {
	ps := ExtractPrompts(mustSource(t, promptSource))

	i := -1
	for j, k := range ps.Keys {
		if k == "fx.xsd/trade" {
			i = j
		}
	}
	require.GreaterOrEqual(t, i, 0)
	assert.Contains(t, ps.Prompts[i], "fx.xsd")
	assert.Contains(t, ps.Prompts[i], "trade")
	assert.Contains(t, ps.Prompts[i], "A trade record")
}

func TestExtractPromptsSkipsUndocumented(t *testing.T) {
	ps := ExtractPrompts(mustSource(t, promptSource))

	_, ok := ps.Get("fx.xsd/undocumented")
	assert.False(t, ok)
	_, ok = ps.Get("fx.xsd/tradeHeader")
	assert.False(t, ok, "complex type children are not prompted")
	assert.Equal(t, 4, ps.Len())
}

func TestExtractPromptsEmpty(t *testing.T) {
	assert.Zero(t, ExtractPrompts(nil).Len())
	assert.Zero(t, ExtractPrompts(types.NewSchemaSource()).Len())
	assert.Zero(t, ExtractPrompts(mustSource(t, `{"a.xsd": {"elements": [{"name": "x"}]}}`)).Len())
}

func TestExtractPromptsIsDeterministic(t *testing.T) {
	a := ExtractPrompts(mustSource(t, promptSource))
	b := ExtractPrompts(mustSource(t, promptSource))
	assert.Equal(t, a.Keys, b.Keys)
	assert.Equal(t, a.Prompts, b.Prompts)
	assert.Equal(t, a.TotalWords(), b.TotalWords())
}

func TestPromptWordCounts(t *testing.T) {
	ps := ExtractPrompts(mustSource(t, promptSource))

	total := 0
	for i := range ps.Keys {
		n := ps.WordCount(i)
		assert.Equal(t, WordCount(ps.Prompts[i]), n)
		total += n
	}
	assert.Equal(t, total, ps.TotalWords())
	assert.Positive(t, total)
}

func TestWords(t *testing.T) {
	tests := []struct {
		text string
		want []string
	}{
		{"", []string{}},
		{"one two  three.", []string{"one", "two", "three"}},
		{"Element Name: trade", []string{"Element", "Name", "trade"}},
		{"  ,;  ", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, Words(tt.text))
			assert.Equal(t, len(tt.want), WordCount(tt.text))
		})
	}
}
