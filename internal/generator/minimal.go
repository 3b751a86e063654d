package generator

import (
	"fmt"
	"slices"
	"strings"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/dshills/fpml-mcp/pkg/types"
)

type visitState uint8

const (
	stateVisiting visitState = iota + 1
	stateDone
)

// minimalWalk holds per-call traversal state
type minimalWalk struct {
	g      *Generator
	states map[string]visitState
	path   []string
	done   map[string]rendered
}

// rendered is a finished subtree. height counts levels including the tag
// itself and deepest names a tag on the longest branch.
type rendered struct {
	frags   fragments
	height  int
	deepest string
}

// Minimal renders the smallest skeleton of a top-level message: only children
// whose own minOccurs is at least 1 are included, at any depth. Roots that are
// unknown or not top-level elements yield ErrNotApplicable. An empty namespace
// selects the configured default.
func (g *Generator) Minimal(root, namespace string) (string, error) {
	d, ok := g.source.Get(root)
	if !ok || !d.IsTopLevel() {
		return "", fmt.Errorf("%w: root tag '%s' not found or is not a top-level message element",
			ErrNotApplicable, root)
	}
	if namespace == "" {
		namespace = g.config.Namespace
	}

	w := &minimalWalk{
		g:      g,
		states: make(map[string]visitState),
		done:   make(map[string]rendered),
	}
	body, err := w.node(root, 1)
	if err != nil {
		return "", err
	}

	var doc fragments
	doc.add(0, XMLDeclaration)
	doc.add(0, fmt.Sprintf(`<%s xmlns="%s">`, root, namespace))
	doc.nest(body.frags, 1)
	doc.add(0, closeTag(root))
	return doc.render(minimalIndent) + "\n", nil
}

// node renders name at relative level 0. depth is only used for the guard.
// A subtree reused from an earlier branch is checked against the guard again
// at its new depth.
func (w *minimalWalk) node(name string, depth int) (rendered, error) {
	limit := w.g.config.MinimalMaxDepth
	switch w.states[name] {
	case stateVisiting:
		start := slices.Index(w.path, name)
		cycle := append(slices.Clone(w.path[start:]), name)
		return rendered{}, &CycleError{Path: cycle}
	case stateDone:
		r := w.done[name]
		if depth+r.height-1 > limit {
			return rendered{}, &DepthLimitError{Tag: r.deepest, Limit: limit}
		}
		return r, nil
	}

	d, ok := w.g.source.Get(name)
	if !ok {
		return rendered{}, nil
	}
	if depth > limit {
		return rendered{}, &DepthLimitError{Tag: name, Limit: limit}
	}

	w.states[name] = stateVisiting
	w.path = append(w.path, name)

	var inner fragments
	tallest := rendered{deepest: name}
	for _, child := range lo.Filter(d.Children, w.required) {
		sub, err := w.node(child.Name, depth+1)
		if err != nil {
			return rendered{}, err
		}
		inner.nest(sub.frags, 1)
		if sub.height > tallest.height {
			tallest = sub
		}
	}

	w.path = w.path[:len(w.path)-1]
	w.states[name] = stateDone

	out := rendered{height: tallest.height + 1, deepest: tallest.deepest}
	if len(inner) > 0 {
		out.frags.add(0, "<"+name+">")
		out.frags.nest(inner, 0)
		out.frags.add(0, closeTag(name))
	} else {
		out.frags.add(0, "<"+name+">"+placeholder(d.DataType)+closeTag(name))
	}
	w.done[name] = out
	return out, nil
}

// required reports whether a child record's own minOccurs is at least 1
func (w *minimalWalk) required(child types.Element, _ int) bool {
	minOccurs := child.MinOccurs.Or(w.g.config.DefaultMinOccurs)
	n, err := minOccurs.Int()
	if err != nil {
		w.g.logger.Debug("treating child as optional",
			zap.String("child", child.Name),
			zap.Error(err))
		return false
	}
	return n >= 1
}

func placeholder(dataType string) string {
	if strings.Contains(dataType, "Enum") {
		return "ENUM_VALUE_FROM_" + dataType
	}
	return "'" + dataType + "_VALUE'"
}
