// Package indexer flattens an ingested schema source into a single tag index.
//
// The index is keyed by bare tag name across every file in the source. It is
// built once, eagerly, and is read-only afterwards.
//
// # Basic Usage
//
//	idx := indexer.New(logger, nil).Load("all_xsd_data.json")
//
//	res := idx.Lookup("requestConfirmation")
//	if !res.Found {
//	    fmt.Println(res.Status())
//	    return
//	}
//	fmt.Printf("%s (%s) has %d children\n",
//	    res.Summary.TagName, res.Summary.DataType, res.Summary.ChildrenCount)
//
// # Traversal Order
//
// Build folds over the source in a fixed order:
//
//  1. Files, in the order they appear in the source document
//  2. Per file, the top-level elements
//  3. Per file, each complex type's children
//
// Every candidate passes through an insert-if-absent step, so the first
// declaration of a name wins and later ones are discarded whole, never merged:
//
//	// a.xsd declares <X type="A">, b.xsd declares <X type="B">
//	d, _ := idx.Get("X")
//	d.DataType // "A"
//
// This treats the schema family as one coherent vocabulary. Two legitimately
// different tags that share a name are conflated.
//
// # Descriptors
//
// Each descriptor records the source file, the declared type ("N/A" when
// absent), a description, attributes, the element's children verbatim (they are
// not resolved at build time), minOccurs/maxOccurs ("1" when absent) and where
// the tag was found ("Top-Level Element" or "Child of <type>").
//
// Descriptions fall back from the element's own documentation to its enclosing
// complex type's documentation, then to a fixed sentinel.
//
// # Error Handling
//
// Load never fails. An unreadable or malformed source is logged and produces an
// empty index; Err reports the cause and every lookup is a miss.
package indexer
