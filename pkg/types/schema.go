package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// DataTypeUnknown is recorded when an element declares no type
const DataTypeUnknown = "N/A"

// Attributes maps attribute name to its declaration, in declaration order
type Attributes = orderedmap.OrderedMap[string, AttributeDetail]

// NewAttributes creates an empty ordered attribute map
func NewAttributes() *Attributes {
	return orderedmap.New[string, AttributeDetail]()
}

// AttributeDetail describes a declared attribute
type AttributeDetail struct {
	Use           string `json:"use,omitempty"`
	Type          string `json:"type,omitempty"`
	Default       string `json:"default,omitempty"`
	Fixed         string `json:"fixed,omitempty"`
	Documentation string `json:"documentation,omitempty"`
}

// Required reports whether the attribute must be present
func (a AttributeDetail) Required() bool {
	return a.Use == "required"
}

// Element is an element declaration as it appears in the ingested schema source
type Element struct {
	Name          string      `json:"name,omitempty"`
	Type          string      `json:"type,omitempty"`
	Documentation string      `json:"documentation,omitempty"`
	Attributes    *Attributes `json:"attributes,omitempty"`
	Children      []Element   `json:"children,omitempty"`
	MinOccurs     Occurs      `json:"minOccurs,omitempty"`
	MaxOccurs     Occurs      `json:"maxOccurs,omitempty"`
}

// ComplexType is a named complex type and the elements nested inside it
type ComplexType struct {
	Name          string    `json:"name,omitempty"`
	Documentation string    `json:"documentation,omitempty"`
	Children      []Element `json:"children,omitempty"`
}

// FileContent is the ingested content of one schema file
type FileContent struct {
	Elements     []Element     `json:"elements,omitempty"`
	ComplexTypes []ComplexType `json:"complexTypes,omitempty"`
}

// SourceFile pairs a schema file identifier with its content
type SourceFile struct {
	ID      string
	Content FileContent
}

// SchemaSource is the ingested schema family keyed by file identifier.
// Iteration follows the order in which files appear in the source document.
type SchemaSource struct {
	files *orderedmap.OrderedMap[string, FileContent]
}

// NewSchemaSource creates an empty schema source
func NewSchemaSource() *SchemaSource {
	return &SchemaSource{files: orderedmap.New[string, FileContent]()}
}

// ParseSchemaSource decodes a schema source document, preserving file order
func ParseSchemaSource(data []byte) (*SchemaSource, error) {
	src := NewSchemaSource()
	if err := json.Unmarshal(data, src); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedSource, err)
	}
	return src, nil
}

// Add appends a file; re-adding an identifier replaces its content in place
func (s *SchemaSource) Add(id string, content FileContent) {
	s.init()
	s.files.Set(id, content)
}

// Len returns the number of files
func (s *SchemaSource) Len() int {
	if s == nil || s.files == nil {
		return 0
	}
	return s.files.Len()
}

// Files returns the files in source order
func (s *SchemaSource) Files() []SourceFile {
	if s == nil || s.files == nil {
		return nil
	}
	files := make([]SourceFile, 0, s.files.Len())
	for pair := s.files.Oldest(); pair != nil; pair = pair.Next() {
		files = append(files, SourceFile{ID: pair.Key, Content: pair.Value})
	}
	return files
}

func (s *SchemaSource) init() {
	if s.files == nil {
		s.files = orderedmap.New[string, FileContent]()
	}
}

// UnmarshalJSON implements json.Unmarshaler
func (s *SchemaSource) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return fmt.Errorf("schema source must be a JSON object")
	}
	s.files = orderedmap.New[string, FileContent]()
	return s.files.UnmarshalJSON(trimmed)
}

// MarshalJSON implements json.Marshaler
func (s *SchemaSource) MarshalJSON() ([]byte, error) {
	s.init()
	return s.files.MarshalJSON()
}

// Occurs is an occurrence bound as written in the schema: a decimal integer,
// "unbounded", or empty when the attribute was not declared.
type Occurs string

// OccursUnbounded is the maxOccurs marker for no upper bound
const OccursUnbounded Occurs = "unbounded"

// IsSet reports whether the bound was declared
func (o Occurs) IsSet() bool {
	return o != ""
}

// Or returns o, or def when o was not declared
func (o Occurs) Or(def Occurs) Occurs {
	if o.IsSet() {
		return o
	}
	return def
}

// IsUnbounded reports whether o is the unbounded marker
func (o Occurs) IsUnbounded() bool {
	return strings.EqualFold(string(o), string(OccursUnbounded))
}

// Int parses the bound as an integer
func (o Occurs) Int() (int, error) {
	if o.IsUnbounded() {
		return 0, fmt.Errorf("%w: %q is unbounded", ErrInvalidOccurs, string(o))
	}
	n, err := strconv.Atoi(strings.TrimSpace(string(o)))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidOccurs, string(o))
	}
	return n, nil
}

// UnmarshalJSON accepts JSON strings, numbers and null
func (o *Occurs) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	switch {
	case bytes.Equal(trimmed, []byte("null")):
		*o = ""
		return nil
	case len(trimmed) > 0 && trimmed[0] == '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*o = Occurs(s)
		return nil
	default:
		var n json.Number
		if err := json.Unmarshal(trimmed, &n); err != nil {
			return fmt.Errorf("%w: %s", ErrInvalidOccurs, string(trimmed))
		}
		*o = Occurs(n.String())
		return nil
	}
}
