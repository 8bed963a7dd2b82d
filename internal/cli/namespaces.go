package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roboco-io/isoanchor/internal/xref"
)

type namespaceInfo struct {
	Name     string
	Type     xref.Type
	LabelKey string
	Example  string
	Scope    string
}

var namespaces = []namespaceInfo{
	{"introduction", xref.TypeClause, "", "0.1", "clauses of the introduction"},
	{"main body", xref.TypeClause, xref.LabelClause, "Clause 3, 3.1", "top-level clauses, reserved sections excluded"},
	{"annex", xref.TypeAnnex, xref.LabelAnnex, "Annex A, A.2", "annexes in the back matter"},
	{"appendix", xref.TypeAppendix, xref.LabelAppendix, "Annex B, Appendix 2", "per annex"},
	{"figure", xref.TypeFigure, xref.LabelFigure, "Figure 3, Figure 3 a)", "per frame, sub-figures share the parent number"},
	{"table", xref.TypeTable, xref.LabelTable, "Table 2", "per frame"},
	{"formula", xref.TypeFormula, xref.LabelFormula, "Formula (4)", "per frame"},
	{"inequality", xref.TypeInequality, xref.LabelInequality, "Inequality (5)", "shares the formula counter"},
	{"table note", xref.TypeNote, xref.LabelNote, "Table 1, NOTE 2", "per table"},
	{"table footnote", xref.TypeFootnote, xref.LabelFootnote, "Table 1, Footnote a", "per table, by reference"},
	{"bibliography", xref.TypeBibItem, "", "ISO 712", "citation text of each item"},
}

var namespacesCmd = &cobra.Command{
	Use:   "namespaces",
	Short: "List the numbering namespaces",
	Long: `List the numbering namespaces of the anchor registry with their label
prefixes. Prefixes can be changed in the labels section of the config file.

A frame is the counter scope of figures, tables and formulas: the whole main
body, each top-level clause with --hierarchical, and each annex.`,
	RunE: runNamespaces,
}

func init() {
	rootCmd.AddCommand(namespacesCmd)
}

func runNamespaces(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	labels := cfg.XRefOptions().Labels
	defaults := xref.DefaultLabels()

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintln(w, "NAMESPACE\tTYPE\tPREFIX\tEXAMPLE\tSCOPE")
	for _, ns := range namespaces {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			ns.Name, ns.Type, prefixOf(ns.LabelKey, labels, defaults), ns.Example, ns.Scope)
	}
	return nil
}

// prefixOf returns the configured label prefix for key, marking overrides.
func prefixOf(key string, labels, defaults map[string]string) string {
	if key == "" {
		return "-"
	}
	if v, ok := labels[key]; ok && v != defaults[key] {
		return v + " (config)"
	}
	return defaults[key]
}
