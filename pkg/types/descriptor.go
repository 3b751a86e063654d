package types

import "strings"

// Location kinds recorded on descriptors
const (
	LocationTopLevel    = "Top-Level Element"
	locationChildPrefix = "Child of "
)

// Description fallbacks
const (
	NoDescription            = "No description available"
	NoComplexTypeDescription = "No description available for complex type."
)

// DefaultOccurs is the bound recorded on a descriptor when the element declares none
const DefaultOccurs Occurs = "1"

// ChildLocation returns the location recorded for an element nested in typeName
func ChildLocation(typeName string) string {
	return locationChildPrefix + typeName
}

// TagDescriptor is the flattened record of one tag name
type TagDescriptor struct {
	SourceXSD    string      `json:"source_xsd"`
	DataType     string      `json:"data_type"`
	Description  string      `json:"description"`
	Attributes   *Attributes `json:"attributes"`
	Children     []Element   `json:"children"`
	MinOccurs    Occurs      `json:"minOccurs"`
	MaxOccurs    Occurs      `json:"maxOccurs"`
	LocationType string      `json:"location_type"`
}

// IsTopLevel reports whether the tag can root a standalone message
func (d *TagDescriptor) IsTopLevel() bool {
	return d.LocationType == LocationTopLevel
}

// EnclosingType returns the complex type a nested tag was found in
func (d *TagDescriptor) EnclosingType() (string, bool) {
	return strings.CutPrefix(d.LocationType, locationChildPrefix)
}

// HasDataType reports whether the descriptor carries a usable data type
func (d *TagDescriptor) HasDataType() bool {
	return d.DataType != "" && d.DataType != DataTypeUnknown
}

// RequiredAttributes returns the names of required attributes in declaration order
func (d *TagDescriptor) RequiredAttributes() []string {
	if d.Attributes == nil {
		return nil
	}
	var names []string
	for pair := d.Attributes.Oldest(); pair != nil; pair = pair.Next() {
		if pair.Value.Required() {
			names = append(names, pair.Key)
		}
	}
	return names
}
