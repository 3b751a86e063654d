// Package types provides the shared schema model for the fpml-mcp tools.
//
// SchemaSource is the ingested, per-file representation of an XML Schema family
// (elements, complex types, attributes and documentation). TagDescriptor is the
// flattened record the indexer produces for every unique tag name.
//
//	src, err := types.ParseSchemaSource(data)
//	for _, f := range src.Files() {
//	    fmt.Println(f.ID, len(f.Content.Elements))
//	}
//
// File order, element order and attribute order are preserved exactly as they
// appear in the source document; the indexer's first-writer-wins policy and the
// generators' output both depend on it.
//
// Occurrence bounds are kept as written (Occurs) so that callers can apply their
// own default when a bound was not declared.
package types
