package main

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/arloliu/mlt"
	"github.com/arloliu/mlt/format"
	"github.com/arloliu/mlt/mvt"
	"github.com/arloliu/mlt/tile"
)

// Config is the conversion config read from YAML.
//
//	ids: true
//	physical: fastpfor
//	sharedDictionary: true
//	compression: zstd
//	columnMappings:
//	  - prefix: name
//	    delimiter: ":"
//	log:
//	  level: ${MLT_LOG_LEVEL}
//	  encoding: console
type Config struct {
	IDs              bool                `yaml:"ids"`
	Physical         string              `yaml:"physical"`
	SharedDictionary bool                `yaml:"sharedDictionary"`
	Compression      string              `yaml:"compression"`
	ColumnMappings   []mvt.ColumnMapping `yaml:"columnMappings"`
	Log              LogConfig           `yaml:"log"`
}

// LogConfig selects the CLI log level and encoding.
type LogConfig struct {
	Level    string `yaml:"level"`
	Encoding string `yaml:"encoding"`
}

// DefaultConfig returns the settings used when no config file is given.
func DefaultConfig() *Config {
	return &Config{
		IDs:              true,
		Physical:         "fastpfor",
		SharedDictionary: true,
		Compression:      "none",
		ColumnMappings:   []mvt.ColumnMapping{{Prefix: "name", Delimiter: mvt.DefaultDelimiter}},
		Log:              LogConfig{Level: "info", Encoding: "console"},
	}
}

// LoadConfig reads a YAML config over the defaults. ${VAR} references are
// replaced with environment variables before parsing.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path) //nolint: gosec
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal([]byte(substituteEnvVars(string(data))), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if _, err := cfg.encodeOptions(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// substituteEnvVars replaces ${VAR_NAME} with the environment variable value.
// Unset variables become empty strings.
func substituteEnvVars(content string) string {
	var b strings.Builder
	for {
		start := strings.Index(content, "${")
		if start == -1 {
			break
		}
		end := strings.Index(content[start:], "}")
		if end == -1 {
			break
		}
		end += start

		b.WriteString(content[:start])
		b.WriteString(os.Getenv(content[start+2 : end]))
		content = content[end+1:]
	}
	b.WriteString(content)

	return b.String()
}

func (c *Config) inferOptions() []mvt.InferOption {
	return []mvt.InferOption{
		mvt.WithIDs(c.IDs),
		mvt.WithColumnMappings(c.ColumnMappings...),
	}
}

func (c *Config) encodeOptions() ([]mlt.Option, error) {
	physical, ok := format.ParsePhysicalTechnique(c.Physical)
	if !ok {
		return nil, fmt.Errorf("unknown physical technique %q", c.Physical)
	}
	compression, ok := format.ParseCompressionType(c.Compression)
	if !ok {
		return nil, fmt.Errorf("unknown compression %q", c.Compression)
	}

	return []mlt.Option{
		mlt.WithCompression(compression),
		mlt.WithEncoderOptions(
			tile.WithPhysicalTechnique(physical),
			tile.WithSharedDictionary(c.SharedDictionary),
		),
	}, nil
}
