package embedder

import (
	"strings"

	"github.com/blevesearch/segment"
)

// Words splits text on Unicode word boundaries and drops whitespace and punctuation segments
func Words(text string) []string {
	seg := segment.NewWordSegmenter(strings.NewReader(text))

	words := make([]string, 0)
	for seg.Segment() {
		if seg.Type() == segment.None {
			continue
		}
		words = append(words, seg.Text())
	}
	return words
}

// WordCount returns len(Words(text)) without keeping the segments
func WordCount(text string) int {
	seg := segment.NewWordSegmenter(strings.NewReader(text))

	n := 0
	for seg.Segment() {
		if seg.Type() != segment.None {
			n++
		}
	}
	return n
}
