package indexer

import (
	"fmt"
	"slices"
	"strings"

	"github.com/samber/lo"

	"github.com/dshills/fpml-mcp/pkg/types"
)

// sampleSize is the number of children shown in a lookup summary
const sampleSize = 2

// Index is the flat, name-keyed view of a schema source. It is never
// modified after Build returns, so concurrent readers need no locking.
type Index struct {
	tags    map[string]*types.TagDescriptor
	order   []string
	files   int
	loadErr error
}

// Summary is the read-only projection returned by a successful lookup
type Summary struct {
	TagName        string            `json:"tag_name"`
	SourceXSD      string            `json:"source_xsd"`
	DataType       string            `json:"data_type"`
	Location       string            `json:"location"`
	Description    string            `json:"description"`
	Attributes     *types.Attributes `json:"attributes"`
	ChildrenCount  int               `json:"children_count"`
	ChildrenSample []types.Element   `json:"children_sample"`
}

// LookupResult is either a hit carrying a Summary or an explicit miss
type LookupResult struct {
	Name    string
	Found   bool
	Summary *Summary
}

// Status describes a miss in the same words the CLI and MCP tools use
func (r LookupResult) Status() string {
	if r.Found {
		return fmt.Sprintf("Tag '%s' found.", r.Name)
	}
	return fmt.Sprintf("Tag '%s' not found in the Base Model.", r.Name)
}

// Stats summarizes index contents
type Stats struct {
	Files    int `json:"files"`
	Tags     int `json:"tags"`
	TopLevel int `json:"top_level"`
	Nested   int `json:"nested"`
}

// Len returns the number of unique tags
func (i *Index) Len() int {
	return len(i.tags)
}

// Err returns the load failure that produced an empty index, if any
func (i *Index) Err() error {
	return i.loadErr
}

// Get returns the descriptor for name. The descriptor is shared and must not
// be modified.
func (i *Index) Get(name string) (*types.TagDescriptor, bool) {
	d, ok := i.tags[name]
	return d, ok
}

// Lookup performs an exact, case-sensitive lookup of name
func (i *Index) Lookup(name string) LookupResult {
	d, ok := i.tags[name]
	if !ok {
		return LookupResult{Name: name}
	}

	attrs := d.Attributes
	if attrs == nil {
		attrs = types.NewAttributes()
	}
	return LookupResult{
		Name:  name,
		Found: true,
		Summary: &Summary{
			TagName:        name,
			SourceXSD:      d.SourceXSD,
			DataType:       d.DataType,
			Location:       d.LocationType,
			Description:    d.Description,
			Attributes:     attrs,
			ChildrenCount:  len(d.Children),
			ChildrenSample: slices.Clone(d.Children[:min(sampleSize, len(d.Children))]),
		},
	}
}

// Names returns every indexed tag name, sorted
func (i *Index) Names() []string {
	names := lo.Keys(i.tags)
	slices.Sort(names)
	return names
}

// InsertionOrder returns tag names in the order they were indexed
func (i *Index) InsertionOrder() []string {
	return slices.Clone(i.order)
}

// TopLevel returns the sorted names of tags that can root a message
func (i *Index) TopLevel() []string {
	names := lo.Filter(i.Names(), func(name string, _ int) bool {
		return i.tags[name].IsTopLevel()
	})
	return names
}

// WithPrefix returns sorted names starting with prefix
func (i *Index) WithPrefix(prefix string) []string {
	return lo.Filter(i.Names(), func(name string, _ int) bool {
		return strings.HasPrefix(name, prefix)
	})
}

// Stats returns counts over the index
func (i *Index) Stats() Stats {
	top := lo.CountBy(lo.Values(i.tags), func(d *types.TagDescriptor) bool {
		return d.IsTopLevel()
	})
	return Stats{
		Files:    i.files,
		Tags:     len(i.tags),
		TopLevel: top,
		Nested:   len(i.tags) - top,
	}
}

// Suggest returns up to n indexed names close to name. It is a display aid
// for misses and never affects Lookup.
func (i *Index) Suggest(name string, n int) []string {
	return FindSimilar(name, i.Names(), &FuzzyMatchOptions{MaxSuggestions: n})
}
