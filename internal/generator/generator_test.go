package generator

import (
	"testing"

	"github.com/dshills/fpml-mcp/internal/indexer"
	"github.com/dshills/fpml-mcp/pkg/types"
)

func attrs(pairs ...string) *types.Attributes {
	a := types.NewAttributes()
	for i := 0; i+1 < len(pairs); i += 2 {
		a.Set(pairs[i], types.AttributeDetail{Use: pairs[i+1]})
	}
	return a
}

func fixtureSource() *types.SchemaSource {
	src := types.NewSchemaSource()
	src.Add("fx.xsd", types.FileContent{
		Elements: []types.Element{
			{
				Name:       "trade",
				Type:       "Trade",
				Attributes: attrs("id", "required", "href", "optional"),
				Children: []types.Element{
					{Name: "tradeHeader", MinOccurs: "1"},
					{Name: "product", MinOccurs: "0"},
					{Name: "notes"},
				},
			},
			{Name: "note"},
			{
				Name:     "productSpec",
				Type:     "Product",
				Children: []types.Element{{Name: "productType", MinOccurs: "1"}},
			},
		},
		ComplexTypes: []types.ComplexType{
			{
				Name: "Trade",
				Children: []types.Element{
					{Name: "tradeHeader", Type: "TradeHeader", Children: []types.Element{
						{Name: "tradeDate", MinOccurs: "1"},
						{Name: "partyRef", MinOccurs: "0"},
					}},
					{Name: "product", Type: "Product", Children: []types.Element{
						{Name: "productType", MinOccurs: "1"},
					}},
					{Name: "tradeDate", Type: "xsd:date"},
					{Name: "partyRef", Type: "PartyReference", Attributes: attrs("href", "required")},
					{Name: "productType", Type: "ProductTypeEnum"},
					{Name: "notes", Type: "xsd:string"},
				},
			},
		},
	})
	return src
}

func newFixtureGenerator(t *testing.T, src *types.SchemaSource, cfg *Config) *Generator {
	t.Helper()
	idx := indexer.New(nil, nil).Build(src)
	return New(idx, nil, cfg)
}
