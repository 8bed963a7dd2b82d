package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roboco-io/isoanchor/internal/store"
	"github.com/roboco-io/isoanchor/internal/xref"
)

var (
	lookupDB         string
	lookupLocalities []string
	lookupList       bool
)

var lookupCmd = &cobra.Command{
	Use:   "lookup <document> <id>...",
	Short: "Resolve ids against a stored anchor registry",
	Long: `Print the cross-reference text of ids from a registry saved with
"isoanchor anchors --db".

Anchors with a container are printed with the container's text, e.g.
"Annex B, Appendix 2". A locality narrows the reference; it is written
type=from or type=from..to and may be repeated.

Examples:
  isoanchor lookup --db anchors.db "ISO 17301-1" AnnexB app2
  isoanchor lookup --db anchors.db "ISO 17301-1" ISO712 --locality clause=3.1 --locality table=1..2
  isoanchor lookup --db anchors.db --list`,
	RunE: runLookup,
}

func init() {
	lookupCmd.Flags().StringVar(&lookupDB, "db", "", "anchor store (default: store.path from config)")
	lookupCmd.Flags().StringArrayVar(&lookupLocalities, "locality", nil, "locality type=from[..to] appended to the citation")
	lookupCmd.Flags().BoolVar(&lookupList, "list", false, "list the stored documents")

	rootCmd.AddCommand(lookupCmd)
}

func runLookup(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	dbPath := lookupDB
	if dbPath == "" {
		dbPath = cfg.Store.Path
	}
	if dbPath == "" {
		return fmt.Errorf("no anchor store: use --db or set store.path")
	}

	s, err := store.Open(dbPath)
	if err != nil {
		return err
	}
	defer s.Close()

	if lookupList {
		docs, err := s.Documents(cmd.Context())
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		defer w.Flush()
		fmt.Fprintln(w, "DOCUMENT\tANCHORS\tUPDATED\tRUN")
		for _, d := range docs {
			fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", d.Key, d.Anchors, d.UpdatedAt.Format("2006-01-02 15:04:05"), d.RunID)
		}
		return nil
	}

	if len(args) < 2 {
		return fmt.Errorf("expected a document key and at least one id")
	}
	localities, err := parseLocalities(lookupLocalities)
	if err != nil {
		return err
	}

	reg, err := s.LoadRegistry(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	defer w.Flush()
	for _, id := range args[1:] {
		text, err := citationText(reg, id, localities, cfg.Labels)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%s\n", id, text)
	}
	return nil
}

// citationText returns the reference text of id, narrowed by localities.
func citationText(reg *xref.Registry, id string, localities []xref.Locality, labels map[string]string) (string, error) {
	base, err := reg.ReferenceText(id)
	if err != nil {
		return "", err
	}
	if len(localities) == 0 {
		return base, nil
	}
	return xref.FormatCitation(reg, xref.Citation{
		Target:     id,
		CiteAs:     base,
		Localities: localities,
	}, labels)
}

func parseLocalities(args []string) ([]xref.Locality, error) {
	var out []xref.Locality
	for _, arg := range args {
		typ, ref, ok := strings.Cut(arg, "=")
		if !ok || typ == "" {
			return nil, fmt.Errorf("invalid locality %q (want type=from[..to])", arg)
		}
		from, to, _ := strings.Cut(ref, "..")
		out = append(out, xref.Locality{Type: typ, From: from, To: to})
	}
	return out, nil
}
