package generator

import "strings"

// fragment is one output line at an indentation level
type fragment struct {
	level int
	text  string
}

// fragments accumulates output lines; indentation is applied only at render time
type fragments []fragment

func (f *fragments) add(level int, text string) {
	*f = append(*f, fragment{level: level, text: text})
}

// nest appends other, shifted by delta levels
func (f *fragments) nest(other fragments, delta int) {
	for _, line := range other {
		*f = append(*f, fragment{level: line.level + delta, text: line.text})
	}
}

func (f fragments) render(unit string) string {
	var b strings.Builder
	for i, line := range f {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(strings.Repeat(unit, line.level))
		b.WriteString(line.text)
	}
	return b.String()
}

func openTag(name string, requiredAttrs []string) string {
	var b strings.Builder
	b.WriteByte('<')
	b.WriteString(name)
	for _, attr := range requiredAttrs {
		b.WriteByte(' ')
		b.WriteString(attr)
		b.WriteString(`="` + RequiredAttributeValue + `"`)
	}
	b.WriteByte('>')
	return b.String()
}

func closeTag(name string) string {
	return "</" + name + ">"
}
