package generator

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/dshills/fpml-mcp/pkg/types"
)

// Document constants
const (
	XMLDeclaration = `<?xml version="1.0" encoding="utf-8"?>`

	DefaultNamespace       = "http://www.fpml.org/FpML-5/confirmation"
	DefaultEnvelopeVersion = "5-12"
	DefaultMaxDepth        = 3
	DefaultMinimalMaxDepth = 64

	RequiredAttributeValue = "VALUE_REQUIRED"

	templateIndent = "  "
	minimalIndent  = "    "
)

// DefaultMinOccurs applies to a child record with no minOccurs when deciding
// whether the minimal generator must include it. It differs from the index
// default on purpose.
const DefaultMinOccurs types.Occurs = "0"

var (
	// ErrNotApplicable is returned by Minimal for unknown or nested roots
	ErrNotApplicable = errors.New("not applicable")
	// ErrNotWellFormed is returned by CheckWellFormed
	ErrNotWellFormed = errors.New("document is not well-formed")
)

// RootNotFoundError reports a root tag that is not indexed
type RootNotFoundError struct {
	Tag string
}

func (e *RootNotFoundError) Error() string {
	return fmt.Sprintf("root tag '%s' not found in the Base Model", e.Tag)
}

// CycleError reports a required-children chain that returns to a tag already
// being rendered. Path starts and ends with the repeated tag.
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("required children form a cycle: %s", strings.Join(e.Path, " -> "))
}

// DepthLimitError reports a minimal document nested deeper than the guard
type DepthLimitError struct {
	Tag   string
	Limit int
}

func (e *DepthLimitError) Error() string {
	return fmt.Sprintf("minimal document exceeds depth limit %d at '%s'", e.Limit, e.Tag)
}

// Source resolves tag names to descriptors
type Source interface {
	Get(name string) (*types.TagDescriptor, bool)
}

// Config controls document envelopes and guards
type Config struct {
	Namespace        string       // Envelope and minimal default namespace
	EnvelopeVersion  string       // version attribute of the template envelope
	MinimalMaxDepth  int          // Nesting guard for Minimal
	DefaultMinOccurs types.Occurs // minOccurs assumed for child records that declare none
}

// Generator synthesizes example documents from an index
type Generator struct {
	source Source
	config Config
	logger *zap.Logger
}

// New creates a Generator over source
func New(source Source, logger *zap.Logger, config *Config) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg := Config{
		Namespace:        DefaultNamespace,
		EnvelopeVersion:  DefaultEnvelopeVersion,
		MinimalMaxDepth:  DefaultMinimalMaxDepth,
		DefaultMinOccurs: DefaultMinOccurs,
	}
	if config != nil {
		if config.Namespace != "" {
			cfg.Namespace = config.Namespace
		}
		if config.EnvelopeVersion != "" {
			cfg.EnvelopeVersion = config.EnvelopeVersion
		}
		if config.MinimalMaxDepth > 0 {
			cfg.MinimalMaxDepth = config.MinimalMaxDepth
		}
		if config.DefaultMinOccurs.IsSet() {
			cfg.DefaultMinOccurs = config.DefaultMinOccurs
		}
	}
	return &Generator{source: source, config: cfg, logger: logger}
}
