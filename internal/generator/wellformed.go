package generator

import (
	"fmt"
	"strings"

	"github.com/agentflare-ai/go-xmldom"
)

// CheckWellFormed parses doc and returns the local name of its document
// element. It checks syntax only; nothing is validated against a schema.
func CheckWellFormed(doc string) (string, error) {
	parsed, err := xmldom.Decode(strings.NewReader(doc))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNotWellFormed, err)
	}
	root := parsed.DocumentElement()
	if root == nil {
		return "", fmt.Errorf("%w: no document element", ErrNotWellFormed)
	}
	return string(root.LocalName()), nil
}
