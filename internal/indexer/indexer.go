package indexer

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/dshills/fpml-mcp/pkg/types"
)

// DefaultSourceFile is the conventional name of the ingested schema source
const DefaultSourceFile = "all_xsd_data.json"

// Indexer flattens a schema source into a tag index
type Indexer struct {
	logger *zap.Logger
	config Config
}

// Config contains configuration for the indexer
type Config struct {
	// DefaultOccurs is recorded on descriptors whose element declares no
	// minOccurs/maxOccurs (default: "1")
	DefaultOccurs types.Occurs
}

// New creates a new Indexer instance
func New(logger *zap.Logger, config *Config) *Indexer {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg := Config{DefaultOccurs: types.DefaultOccurs}
	if config != nil && config.DefaultOccurs.IsSet() {
		cfg.DefaultOccurs = config.DefaultOccurs
	}
	return &Indexer{logger: logger, config: cfg}
}

// entry is one candidate descriptor produced by the ordered traversal
type entry struct {
	name       string
	descriptor *types.TagDescriptor
}

// Build flattens src into an index. Tags are keyed by bare name across the
// whole source and the first declaration encountered wins.
func (idx *Indexer) Build(src *types.SchemaSource) *Index {
	tags := make(map[string]*types.TagDescriptor)
	order := make([]string, 0)
	for _, e := range idx.entries(src) {
		order = insertIfAbsent(tags, order, e)
	}

	index := &Index{tags: tags, order: order, files: src.Len()}
	idx.logger.Info("schema index built",
		zap.Int("files", index.files),
		zap.Int("tags", index.Len()))
	return index
}

// Load reads the schema source at path and builds its index. A source that
// cannot be read or decoded is logged and yields an empty index whose Err
// reports the cause.
func (idx *Indexer) Load(path string) *Index {
	src, err := LoadSource(path)
	if err != nil {
		idx.logger.Error("failed to load schema source",
			zap.String("path", path),
			zap.Error(err))
		return &Index{tags: map[string]*types.TagDescriptor{}, loadErr: err}
	}
	return idx.Build(src)
}

// LoadSource reads and decodes a schema source file
func LoadSource(path string) (*types.SchemaSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema source: %w", err)
	}
	src, err := types.ParseSchemaSource(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return src, nil
}

// entries walks files in source order, then each file's top-level elements,
// then each complex type's children.
func (idx *Indexer) entries(src *types.SchemaSource) []entry {
	var out []entry
	for _, file := range src.Files() {
		for _, el := range file.Content.Elements {
			if el.Name == "" {
				continue
			}
			out = append(out, entry{
				name: el.Name,
				descriptor: idx.describe(el, file.ID, types.LocationTopLevel,
					firstNonEmpty(el.Documentation, types.NoDescription)),
			})
		}

		for _, ct := range file.Content.ComplexTypes {
			typeDoc := firstNonEmpty(ct.Documentation, types.NoComplexTypeDescription)
			for _, child := range ct.Children {
				if child.Name == "" {
					continue
				}
				out = append(out, entry{
					name: child.Name,
					descriptor: idx.describe(child, file.ID, types.ChildLocation(ct.Name),
						firstNonEmpty(child.Documentation, typeDoc, types.NoDescription)),
				})
			}
		}
	}
	return out
}

// insertIfAbsent adds e unless its name is already indexed
func insertIfAbsent(tags map[string]*types.TagDescriptor, order []string, e entry) []string {
	if _, exists := tags[e.name]; exists {
		return order
	}
	tags[e.name] = e.descriptor
	return append(order, e.name)
}

func (idx *Indexer) describe(el types.Element, file, location, description string) *types.TagDescriptor {
	attrs := el.Attributes
	if attrs == nil {
		attrs = types.NewAttributes()
	}
	children := el.Children
	if children == nil {
		children = []types.Element{}
	}
	return &types.TagDescriptor{
		SourceXSD:    file,
		DataType:     firstNonEmpty(el.Type, types.DataTypeUnknown),
		Description:  description,
		Attributes:   attrs,
		Children:     children,
		MinOccurs:    el.MinOccurs.Or(idx.config.DefaultOccurs),
		MaxOccurs:    el.MaxOccurs.Or(idx.config.DefaultOccurs),
		LocationType: location,
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
