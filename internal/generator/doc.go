// Package generator synthesizes example XML documents from a tag index.
//
// Two generators share the index but follow different content policies:
//
//   - Template renders every declared child, ignoring occurrence bounds, down
//     to a maximum depth. It is a debugging view of "everything a tag can hold".
//   - Minimal renders only children whose minOccurs is at least 1, with no
//     depth parameter. It is the smallest skeleton of a conformant message.
//
// Values are placeholders (PLACEHOLDER_<type>, '<type>_VALUE',
// ENUM_VALUE_FROM_<type>); documents are structurally shaped, not valid
// instances.
//
//	gen := generator.New(idx, logger, nil)
//	doc, err := gen.Template("requestConfirmation", 3)
//	doc, err = gen.Minimal("requestConfirmation", "")
//
// Minimal only accepts top-level elements and reports anything else with
// ErrNotApplicable. Because it has no depth parameter it guards against required
// children that lead back to a tag already being rendered (CycleError) and
// against runaway nesting (DepthLimitError).
package generator
