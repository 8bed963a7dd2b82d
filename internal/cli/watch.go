package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/roboco-io/isoanchor/internal/watch"
)

var (
	watchOutDir   string
	watchDB       string
	watchDebounce time.Duration
)

var watchCmd = &cobra.Command{
	Use:   "watch <file>...",
	Short: "Rebuild anchor registries when documents change",
	Long: `Watch documents and rebuild their anchor registries whenever they are
saved. Each rebuild writes <name>.anchors.json into --out-dir and, with
--db, replaces the document's registry in the anchor store.

Rebuilds run one at a time. A document that fails to convert is logged and
watching continues. Stop with Ctrl-C.

Examples:
  isoanchor watch iso-17301-1.xml --out-dir build
  isoanchor watch drafts/*.xml --db anchors.db`,
	Args: cobra.MinimumNArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&watchOutDir, "out-dir", "", "directory for <name>.anchors.json files")
	watchCmd.Flags().StringVar(&watchDB, "db", "", "save registries to this SQLite database")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", watch.DefaultDebounce, "quiet period before a rebuild")

	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	for _, path := range args {
		if err := checkInput(path); err != nil {
			return err
		}
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if watchDB != "" {
		cfg.Store.Path = watchDB
	}
	if cfg.Store.Path == "" && watchOutDir == "" {
		return fmt.Errorf("nothing to write: use --out-dir or --db")
	}
	if watchOutDir != "" {
		if err := os.MkdirAll(watchOutDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	logger, err := newLogger(cmd.ErrOrStderr(), cfg)
	if err != nil {
		return err
	}
	p, err := newPipeline(cfg, logger)
	if err != nil {
		return err
	}

	rebuild := func(ctx context.Context, path string) error {
		res, err := convert(ctx, p, cfg, path)
		if err != nil {
			return err
		}
		if watchOutDir == "" {
			return nil
		}
		data, err := encode(anchorsResult{
			Document:    res.Key(),
			RunID:       res.RunID,
			Anchors:     res.Registry,
			Diagnostics: res.Diagnostics,
		}, "json", true)
		if err != nil {
			return err
		}
		base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		return os.WriteFile(filepath.Join(watchOutDir, base+".anchors.json"), data, 0644)
	}

	// Build once up front so outputs exist before the first edit.
	for _, path := range args {
		if err := rebuild(cmd.Context(), path); err != nil {
			logger.Error("conversion failed", "path", path, "error", err)
		}
	}

	w, err := watch.New(args, watch.Options{Debounce: watchDebounce, Logger: logger})
	if err != nil {
		return err
	}
	return w.Run(cmd.Context(), rebuild)
}
