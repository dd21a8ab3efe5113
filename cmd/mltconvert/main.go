package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/arloliu/mlt"
	"github.com/arloliu/mlt/format"
)

var version = "0.1.0"

func main() {
	// .env values feed ${VAR} references in the config file
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type rootFlags struct {
	configFile  string
	logLevel    string
	compression string
}

// load reads the config file and applies command line overrides.
func (f *rootFlags) load() (*Config, *zap.Logger, error) {
	cfg, err := LoadConfig(f.configFile)
	if err != nil {
		return nil, nil, err
	}
	if f.logLevel != "" {
		cfg.Log.Level = f.logLevel
	}
	if f.compression != "" {
		if _, ok := format.ParseCompressionType(f.compression); !ok {
			return nil, nil, fmt.Errorf("unknown compression %q", f.compression)
		}
		cfg.Compression = f.compression
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		return nil, nil, err
	}

	return cfg, logger, nil
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:           "mltconvert",
		Short:         "Convert Mapbox Vector Tiles to MLT",
		SilenceUsage:  true,
		SilenceErrors: true,
		Long: `mltconvert converts Mapbox Vector Tiles into the columnar MLT format.
The tile schema is inferred from the input and written next to each tile,
since decoding an MLT tile requires the schema it was encoded with.`,
	}
	root.PersistentFlags().StringVarP(&flags.configFile, "config", "c", "", "Path to YAML config file")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&flags.compression, "compression", "", "Envelope compression (none, zstd, s2, lz4, gzip)")

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "mltconvert v%s\n", version)
			fmt.Fprintf(out, "Go version: %s\n", runtime.Version())
			fmt.Fprintf(out, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	})

	var outDir string
	convertCmd := &cobra.Command{
		Use:   "convert [files...]",
		Short: "Convert MVT files to MLT",
		Long: `Convert one or more MVT files (plain or gzipped) to MLT.
Each input produces <name>.mlt and <name>.schema.yaml.

Example:
  mltconvert convert --out-dir out --compression zstd 14_8529_5975.mvt`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := flags.load()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			if outDir != "" {
				if err := os.MkdirAll(outDir, 0o755); err != nil { //nolint: gosec
					return err
				}
			}

			c := &converter{cfg: cfg, logger: logger, outDir: outDir}
			results, err := c.convertAll(args)
			for _, res := range results {
				fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s (%d -> %d bytes)\n",
					res.Input, res.Output, res.InputSize, res.OutputSize)
			}

			return err
		},
	}
	convertCmd.Flags().StringVarP(&outDir, "out-dir", "o", "", "Output directory (defaults to the input directory)")
	root.AddCommand(convertCmd)

	var schemaFile string
	var verbose bool
	inspectCmd := &cobra.Command{
		Use:   "inspect <tile>",
		Short: "Show the layer and column layout of an MLT file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if schemaFile == "" {
				schemaFile = schemaPathFor(args[0])
			}
			schema, err := loadSchema(schemaFile)
			if err != nil {
				return err
			}

			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			infos, err := mlt.Inspect(data, schema)
			if err != nil {
				return err
			}

			return writeInspect(cmd.OutOrStdout(), infos, verbose)
		},
	}
	inspectCmd.Flags().StringVarP(&schemaFile, "schema", "s", "", "Schema YAML (defaults to <tile>.schema.yaml)")
	inspectCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Print every stream header")
	root.AddCommand(inspectCmd)

	root.AddCommand(&cobra.Command{
		Use:   "stats [files...]",
		Short: "Compare MVT and MLT sizes for every envelope compression",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := flags.load()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			stats, statsErr := collectStats(cfg, args)
			if err := writeStats(cmd.OutOrStdout(), stats); err != nil {
				return err
			}

			return statsErr
		},
	})

	return root
}
