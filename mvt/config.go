package mvt

import (
	"errors"
	"fmt"

	"github.com/arloliu/mlt/internal/options"
)

// DefaultDelimiter separates a column mapping prefix from its suffix, as in "name:en".
const DefaultDelimiter = ":"

// ColumnMapping groups the string properties "<Prefix>" and
// "<Prefix><Delimiter><suffix>" into one struct column named Prefix. The bare
// property becomes the child "default"; every other property becomes a child
// named by its suffix.
type ColumnMapping struct {
	Prefix    string `yaml:"prefix"`
	Delimiter string `yaml:"delimiter,omitempty"`
}

func (m ColumnMapping) delimiter() string {
	if m.Delimiter == "" {
		return DefaultDelimiter
	}

	return m.Delimiter
}

// InferConfig controls schema inference.
type InferConfig struct {
	ids      bool
	mappings []ColumnMapping
}

// InferOption configures an InferConfig.
type InferOption = options.Option[*InferConfig]

// WithIDs adds an id column to every inferred layer whose features carry ids.
func WithIDs(enabled bool) InferOption {
	return options.NoError(func(c *InferConfig) {
		c.ids = enabled
	})
}

// WithColumnMappings sets the struct column groupings applied to every layer.
func WithColumnMappings(mappings ...ColumnMapping) InferOption {
	return options.New(func(c *InferConfig) error {
		seen := make(map[string]struct{}, len(mappings))
		for _, m := range mappings {
			if m.Prefix == "" {
				return errors.New("column mapping with empty prefix")
			}
			if _, dup := seen[m.Prefix]; dup {
				return fmt.Errorf("duplicate column mapping for prefix %q", m.Prefix)
			}
			seen[m.Prefix] = struct{}{}
		}
		c.mappings = append(c.mappings[:0], mappings...)

		return nil
	})
}
