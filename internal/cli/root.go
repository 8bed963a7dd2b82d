// Package cli implements the isoanchor command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roboco-io/isoanchor/internal/config"
	"github.com/roboco-io/isoanchor/internal/logging"
	"github.com/roboco-io/isoanchor/internal/pipeline"
)

var version = "dev"

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

var (
	rootConfigPath string
	rootLogLevel   string
	rootLogFormat  string
	rootDraft      bool
)

var rootCmd = &cobra.Command{
	Use:   "isoanchor",
	Short: "Normalize ISO standards documents and build their anchor registries",
	Long: `isoanchor normalizes the document tree of an ISO standards document and
computes its anchor registry: clause numbers, annex letters, figure, table
and formula labels, table footnote markers and bibliographic citations.

Inputs are ISO XML documents (.xml) or trees written by "isoanchor
normalize -f json" (.json).

Examples:
  isoanchor anchors iso-17301-1.xml
  isoanchor anchors iso-17301-1.xml -f text --hierarchical
  isoanchor normalize iso-17301-1.xml -o tree.json
  isoanchor lookup --db anchors.db "ISO 17301-1" AnnexB`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "isoanchor %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootConfigPath, "config", "", "config file (default: ~/.isoanchor/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&rootLogLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&rootLogFormat, "log-format", "", "log format (text, json)")
	rootCmd.PersistentFlags().BoolVar(&rootDraft, "draft", false, "keep review notes")

	rootCmd.AddCommand(versionCmd)
}

// ExecuteContext runs the root command. Cancelling ctx stops watch mode.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func newLoader() (*config.Loader, error) {
	if rootConfigPath != "" {
		return config.NewLoaderWithPath(rootConfigPath), nil
	}
	return config.NewLoader()
}

// loadConfig returns the effective configuration: file, then environment,
// then command line flags.
func loadConfig() (*config.Config, error) {
	loader, err := newLoader()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize config loader: %w", err)
	}
	cfg, err := loader.Load()
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv()

	if rootLogLevel != "" {
		cfg.Log.Level = rootLogLevel
	}
	if rootLogFormat != "" {
		cfg.Log.Format = rootLogFormat
	}
	if rootDraft {
		cfg.Draft = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(w io.Writer, cfg *config.Config) (*slog.Logger, error) {
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	format, err := logging.ParseFormat(cfg.Log.Format)
	if err != nil {
		return nil, err
	}
	return logging.New(w, level, format), nil
}

func newPipeline(cfg *config.Config, logger *slog.Logger) (*pipeline.Pipeline, error) {
	reserved, err := cfg.ReservedTitles()
	if err != nil {
		return nil, err
	}
	return pipeline.New(pipeline.Options{
		Parser:         cfg.ParserOptions(),
		ReservedTitles: reserved,
		XRef:           cfg.XRefOptions(),
		Logger:         logger,
	}), nil
}
