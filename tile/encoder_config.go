package tile

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/arloliu/mlt/format"
	"github.com/arloliu/mlt/internal/options"
)

// EncoderConfig holds the settings shared by every layer an Encoder writes.
type EncoderConfig struct {
	physical         format.PhysicalTechnique
	sharedDictionary bool
	logger           *zap.Logger
}

// NewEncoderConfig returns the default configuration: block packed integer
// streams, shared dictionaries for struct columns and no logging.
func NewEncoderConfig() *EncoderConfig {
	return &EncoderConfig{
		physical:         format.PhysicalFastPFOR,
		sharedDictionary: true,
		logger:           zap.NewNop(),
	}
}

// PhysicalTechnique returns the physical technique requested for integer streams.
func (c *EncoderConfig) PhysicalTechnique() format.PhysicalTechnique {
	return c.physical
}

func (c *EncoderConfig) setPhysicalTechnique(p format.PhysicalTechnique) error {
	switch p {
	case format.PhysicalFastPFOR, format.PhysicalVarint:
		c.physical = p
		return nil
	default:
		return fmt.Errorf("invalid physical technique: %v", p)
	}
}

// EncoderOption configures an EncoderConfig.
type EncoderOption = options.Option[*EncoderConfig]

// WithPhysicalTechnique selects the physical technique for 32-bit integer
// streams. 64-bit streams always use varint.
func WithPhysicalTechnique(p format.PhysicalTechnique) EncoderOption {
	return options.New(func(c *EncoderConfig) error {
		return c.setPhysicalTechnique(p)
	})
}

// WithSharedDictionary enables shared dictionary encoding of struct columns.
// It is enabled by default; with it disabled a layer with a struct field
// fails to encode, since struct columns have no other encoding.
func WithSharedDictionary(enabled bool) EncoderOption {
	return options.NoError(func(c *EncoderConfig) {
		c.sharedDictionary = enabled
	})
}

// WithLogger sets the logger used for per-column debug output. Nil restores the no-op logger.
func WithLogger(logger *zap.Logger) EncoderOption {
	return options.NoError(func(c *EncoderConfig) {
		if logger == nil {
			logger = zap.NewNop()
		}
		c.logger = logger
	})
}

// DecoderConfig holds decoder settings.
type DecoderConfig struct {
	logger *zap.Logger
}

// DecoderOption configures a DecoderConfig.
type DecoderOption = options.Option[*DecoderConfig]

// WithDecoderLogger sets the logger used for per-layer debug output.
func WithDecoderLogger(logger *zap.Logger) DecoderOption {
	return options.NoError(func(c *DecoderConfig) {
		if logger == nil {
			logger = zap.NewNop()
		}
		c.logger = logger
	})
}
