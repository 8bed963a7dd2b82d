package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roboco-io/isoanchor/internal/normalize"
	"github.com/roboco-io/isoanchor/internal/pipeline"
)

var (
	normalizeOutput string
	normalizeFormat string
	normalizePretty bool
	normalizeCheck  bool
	normalizeReport bool
)

var normalizeCmd = &cobra.Command{
	Use:   "normalize <file>",
	Short: "Normalize a document tree",
	Long: `Normalize the document tree and write it as JSON or YAML.

Normalization moves the foreword and introduction into the preface, groups
annexes and bibliographies into the back matter, attaches table notes,
"where" lists and figure keys to their owners, and unwraps term markup.
The JSON output can be given back to "isoanchor anchors".

With --check nothing is written; the command fails if the input is not
already in normal form.

Examples:
  isoanchor normalize iso-17301-1.xml
  isoanchor normalize iso-17301-1.xml -o tree.json
  isoanchor normalize tree.json --check`,
	Args: cobra.ExactArgs(1),
	RunE: runNormalize,
}

func init() {
	normalizeCmd.Flags().StringVarP(&normalizeOutput, "output", "o", "", "output file (default: stdout)")
	normalizeCmd.Flags().StringVarP(&normalizeFormat, "format", "f", "json", "output format (json, yaml)")
	normalizeCmd.Flags().BoolVar(&normalizePretty, "pretty", true, "indent JSON output")
	normalizeCmd.Flags().BoolVar(&normalizeCheck, "check", false, "only check that the input is already normalized")
	normalizeCmd.Flags().BoolVar(&normalizeReport, "report", false, "print the rewrites of each pass to stderr")

	rootCmd.AddCommand(normalizeCmd)
}

func runNormalize(cmd *cobra.Command, args []string) error {
	inputPath := args[0]
	if err := checkInput(inputPath); err != nil {
		return err
	}

	cfg, err := loadConfig()
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

	doc, err := pipeline.Load(inputPath, cfg.ParserOptions())
	if err != nil {
		return err
	}

	res, err := p.Normalize(cmd.Context(), inputPath, doc)
	if err != nil {
		return fmt.Errorf("normalization failed: %w", err)
	}

	if normalizeReport || normalizeCheck {
		printReport(cmd, res.Report)
	}
	if normalizeCheck {
		if res.Report.Changed() {
			return fmt.Errorf("%s is not normalized (%d rewrites)", inputPath, res.Report.Rewrites())
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s is normalized\n", inputPath)
		return nil
	}

	data, err := encode(res.Document, normalizeFormat, normalizePretty)
	if err != nil {
		return err
	}
	return writeOutput(cmd, normalizeOutput, data, "normalized tree")
}

func printReport(cmd *cobra.Command, report *normalize.Report) {
	w := tabwriter.NewWriter(cmd.ErrOrStderr(), 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintln(w, "PASS\tREWRITES")
	for _, p := range report.Passes {
		fmt.Fprintf(w, "%s\t%d\n", p.Name, p.Rewrites)
	}
	fmt.Fprintf(w, "total\t%d\n", report.Rewrites())
}
