package options

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type codecConfig struct {
	technique string
	blockSize int
}

var errBadBlockSize = errors.New("block size must be positive")

func withTechnique(name string) Option[*codecConfig] {
	return NoError(func(c *codecConfig) {
		c.technique = name
	})
}

func withBlockSize(n int) Option[*codecConfig] {
	return New(func(c *codecConfig) error {
		if n <= 0 {
			return errBadBlockSize
		}
		c.blockSize = n

		return nil
	})
}

func TestApply(t *testing.T) {
	tests := []struct {
		name     string
		opts     []Option[*codecConfig]
		expected codecConfig
		err      error
	}{
		{
			name:     "no options",
			expected: codecConfig{},
		},
		{
			name:     "applied in order",
			opts:     []Option[*codecConfig]{withTechnique("varint"), withTechnique("fastpfor"), withBlockSize(128)},
			expected: codecConfig{technique: "fastpfor", blockSize: 128},
		},
		{
			name:     "nil option skipped",
			opts:     []Option[*codecConfig]{nil, withBlockSize(64)},
			expected: codecConfig{blockSize: 64},
		},
		{
			name:     "error stops application",
			opts:     []Option[*codecConfig]{withBlockSize(0), withTechnique("varint")},
			expected: codecConfig{},
			err:      errBadBlockSize,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &codecConfig{}
			err := Apply(cfg, tt.opts...)
			if tt.err != nil {
				require.ErrorIs(t, err, tt.err)
			} else {
				require.NoError(t, err)
			}
			require.Equal(t, tt.expected, *cfg)
		})
	}
}
