package embedder

import (
	"fmt"

	"github.com/dshills/fpml-mcp/pkg/types"
)

// PromptFormat is filled with the file identifier, element name and documentation
const PromptFormat = "XSD File: %s. Element Name: %s. Function/Documentation: %s"

// PromptKey builds the "{file}/{name}" key for a top-level element
func PromptKey(file, name string) string {
	return file + "/" + name
}

// BuildPrompt renders the embedding prompt for one element
func BuildPrompt(file, name, doc string) string {
	return fmt.Sprintf(PromptFormat, file, name, doc)
}

// PromptSet holds the prompts for every documented top-level element.
// Keys[i] is the key of Prompts[i].
type PromptSet struct {
	Keys    []string
	Prompts []string

	byKey      map[string]int
	wordCounts []int
	duplicates int
}

// ExtractPrompts walks the source in file order and builds one prompt per
// top-level element that has both a name and documentation. Child elements of
// complex types are not included. When a file declares the same element name
// twice, the first declaration keeps the key.
func ExtractPrompts(src *types.SchemaSource) *PromptSet {
	ps := &PromptSet{
		Keys:    make([]string, 0),
		Prompts: make([]string, 0),
		byKey:   make(map[string]int),
	}
	if src == nil {
		return ps
	}

	for _, file := range src.Files() {
		for _, el := range file.Content.Elements {
			if el.Name == "" || el.Documentation == "" {
				continue
			}
			key := PromptKey(file.ID, el.Name)
			if _, seen := ps.byKey[key]; seen {
				ps.duplicates++
				continue
			}
			prompt := BuildPrompt(file.ID, el.Name, el.Documentation)

			ps.byKey[key] = len(ps.Keys)
			ps.Keys = append(ps.Keys, key)
			ps.Prompts = append(ps.Prompts, prompt)
			ps.wordCounts = append(ps.wordCounts, WordCount(prompt))
		}
	}
	return ps
}

// Len returns the number of prompts
func (p *PromptSet) Len() int {
	return len(p.Keys)
}

// Get returns the prompt for key
func (p *PromptSet) Get(key string) (string, bool) {
	i, ok := p.byKey[key]
	if !ok {
		return "", false
	}
	return p.Prompts[i], true
}

// WordCount returns the word count of the i-th prompt
func (p *PromptSet) WordCount(i int) int {
	return p.wordCounts[i]
}

// TotalWords sums the word counts of all prompts
func (p *PromptSet) TotalWords() int {
	total := 0
	for _, n := range p.wordCounts {
		total += n
	}
	return total
}

// Duplicates reports how many repeated keys were skipped
func (p *PromptSet) Duplicates() int {
	return p.duplicates
}
