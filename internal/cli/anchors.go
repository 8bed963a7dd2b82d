package cli

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roboco-io/isoanchor/internal/config"
	"github.com/roboco-io/isoanchor/internal/pipeline"
	"github.com/roboco-io/isoanchor/internal/store"
	"github.com/roboco-io/isoanchor/internal/xref"
)

var (
	anchorsOutput       string
	anchorsFormat       string
	anchorsPretty       bool
	anchorsAnnexStyle   string
	anchorsHierarchical bool
	anchorsSeparator    string
	anchorsDB           string
	anchorsMetricsFile  string
	anchorsStrict       bool
)

var anchorsCmd = &cobra.Command{
	Use:   "anchors <file>",
	Short: "Build the anchor registry of a document",
	Long: `Normalize the document and compute its anchor registry.

Every clause, annex, appendix, figure, table, formula, table note, table
footnote and bibliographic item with an id gets exactly one entry with its
label, its cross-reference text and its numbering type.

Environment variables:
  ISOANCHOR_HIERARCHICAL=true   number assets per top-level clause
  ISOANCHOR_DB=path             anchor store
  ISOANCHOR_LOG_LEVEL=level     log level

Examples:
  isoanchor anchors iso-17301-1.xml
  isoanchor anchors iso-17301-1.xml -f text
  isoanchor anchors iso-17301-1.xml --annex-style number --hierarchical
  isoanchor anchors iso-17301-1.xml --db anchors.db --metrics-file isoanchor.prom`,
	Args: cobra.ExactArgs(1),
	RunE: runAnchors,
}

func init() {
	anchorsCmd.Flags().StringVarP(&anchorsOutput, "output", "o", "", "output file (default: stdout)")
	anchorsCmd.Flags().StringVarP(&anchorsFormat, "format", "f", "json", "output format (json, yaml, text)")
	anchorsCmd.Flags().BoolVar(&anchorsPretty, "pretty", true, "indent JSON output")
	anchorsCmd.Flags().StringVar(&anchorsAnnexStyle, "annex-style", "", "annex labels (letter, number)")
	anchorsCmd.Flags().BoolVar(&anchorsHierarchical, "hierarchical", false, "number figures, tables and formulas per top-level clause")
	anchorsCmd.Flags().StringVar(&anchorsSeparator, "separator", "", "separator between clause and asset number")
	anchorsCmd.Flags().StringVar(&anchorsDB, "db", "", "save the registry to this SQLite database")
	anchorsCmd.Flags().StringVar(&anchorsMetricsFile, "metrics-file", "", "write Prometheus metrics to this file")
	anchorsCmd.Flags().BoolVar(&anchorsStrict, "strict", false, "fail when the build reports diagnostics")

	rootCmd.AddCommand(anchorsCmd)
}

type anchorsResult struct {
	Document    string            `json:"document" yaml:"document"`
	RunID       string            `json:"run_id" yaml:"run_id"`
	Anchors     *xref.Registry    `json:"anchors" yaml:"anchors"`
	Diagnostics []xref.Diagnostic `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
}

func runAnchors(cmd *cobra.Command, args []string) error {
	inputPath := args[0]
	if err := checkInput(inputPath); err != nil {
		return err
	}

	cfg, err := anchorsConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cmd.ErrOrStderr(), cfg)
	if err != nil {
		return err
	}
	p, err := newPipeline(cfg, logger)
	if err != nil {
		return err
	}

	res, err := convert(cmd.Context(), p, cfg, inputPath)
	if err != nil {
		return err
	}

	var data []byte
	if anchorsFormat == "text" {
		data = formatAnchorsText(res.Registry)
	} else {
		data, err = encode(anchorsResult{
			Document:    res.Key(),
			RunID:       res.RunID,
			Anchors:     res.Registry,
			Diagnostics: res.Diagnostics,
		}, anchorsFormat, anchorsPretty)
		if err != nil {
			return err
		}
	}
	if err := writeOutput(cmd, anchorsOutput, data, "anchor registry"); err != nil {
		return err
	}

	if anchorsStrict && len(res.Diagnostics) > 0 {
		for _, d := range res.Diagnostics {
			fmt.Fprintln(cmd.ErrOrStderr(), d.String())
		}
		return fmt.Errorf("%d diagnostics reported", len(res.Diagnostics))
	}
	return nil
}

// anchorsConfig applies the numbering flags on top of the configuration.
func anchorsConfig() (*config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if anchorsAnnexStyle != "" {
		cfg.Numbering.AnnexStyle = anchorsAnnexStyle
	}
	if anchorsHierarchical {
		cfg.Numbering.Hierarchical = true
	}
	if anchorsSeparator != "" {
		cfg.Numbering.Separator = anchorsSeparator
	}
	if anchorsDB != "" {
		cfg.Store.Path = anchorsDB
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// convert runs the full conversion of one file and stores its side
// outputs: the registry in the anchor store and the metrics file.
func convert(ctx context.Context, p *pipeline.Pipeline, cfg *config.Config, path string) (*pipeline.Result, error) {
	res, err := p.RunFile(ctx, path)
	if err != nil {
		return nil, err
	}

	if cfg.Store.Path != "" {
		if err := saveRegistry(ctx, cfg.Store.Path, res); err != nil {
			return nil, err
		}
	}
	if anchorsMetricsFile != "" {
		if err := res.Metrics.WriteToTextfile(anchorsMetricsFile); err != nil {
			return nil, err
		}
	}
	return res, nil
}

func saveRegistry(ctx context.Context, dbPath string, res *pipeline.Result) error {
	s, err := store.Open(dbPath)
	if err != nil {
		return err
	}
	defer s.Close()

	return s.SaveRegistry(ctx, store.Document{
		Key:    res.Key(),
		RunID:  res.RunID,
		Digest: res.Report.DigestAfter,
	}, res.Registry)
}

func formatAnchorsText(reg *xref.Registry) []byte {
	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)

	fmt.Fprintln(w, "ID\tLABEL\tXREF\tTYPE\tLEVEL\tCONTAINER")
	for _, a := range reg.Entries() {
		label := a.Label
		if a.Unnumbered {
			label = "-"
		}
		level := ""
		if a.Level > 0 {
			level = strconv.Itoa(a.Level)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			a.ID, label, a.XRef, a.Type, level, a.Container)
	}
	w.Flush()
	return buf.Bytes()
}
