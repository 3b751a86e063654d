package generator

import "fmt"

// Template renders every declared child of root, to at most maxDepth levels
// counting the root as level 1, inside the fixed dataDocument envelope.
// Occurrence bounds are ignored. Leaves carry PLACEHOLDER_<type> values and
// required attributes carry VALUE_REQUIRED.
func (g *Generator) Template(root string, maxDepth int) (string, error) {
	if _, ok := g.source.Get(root); !ok {
		return "", &RootNotFoundError{Tag: root}
	}

	var body fragments
	g.templateNode(root, 1, maxDepth, &body)

	var doc fragments
	doc.add(0, XMLDeclaration)
	doc.add(0, fmt.Sprintf(`<fpml:dataDocument xmlns:fpml="%s" version="%s">`,
		g.config.Namespace, g.config.EnvelopeVersion))
	doc.nest(body, 0)
	doc.add(0, "</fpml:dataDocument>")
	return doc.render(templateIndent), nil
}

func (g *Generator) templateNode(name string, depth, maxDepth int, out *fragments) {
	if depth > maxDepth {
		return
	}
	d, ok := g.source.Get(name)
	if !ok {
		return
	}

	open := openTag(name, d.RequiredAttributes())
	switch {
	case d.HasDataType() && len(d.Children) == 0:
		out.add(depth, open+"PLACEHOLDER_"+d.DataType+closeTag(name))
	case len(d.Children) > 0:
		out.add(depth, open)
		for _, child := range d.Children {
			g.templateNode(child.Name, depth+1, maxDepth, out)
		}
		out.add(depth, closeTag(name))
	default:
		out.add(depth, open+closeTag(name))
	}
}
