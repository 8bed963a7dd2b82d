package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/roboco-io/isoanchor/internal/ir"
	"github.com/roboco-io/isoanchor/internal/logging"
	"github.com/roboco-io/isoanchor/internal/parser"
	"github.com/roboco-io/isoanchor/internal/xref"
)

const sampleXML = `<?xml version="1.0" encoding="UTF-8"?>
<iso-standard xmlns="http://riboseinc.com/isoxml">
  <bibdata type="standard">
    <docidentifier>ISO 17301-1</docidentifier>
  </bibdata>
  <preface/>
  <sections>
    <clause id="intro"><title>Introduction</title><p>Background.</p></clause>
    <clause id="scope"><title>Scope</title><p>This document specifies requirements.</p></clause>
    <clause id="general"><title>General</title>
      <figure id="fig1"><name>Sampling device</name></figure>
      <table id="tab1"><tbody><tr><td>1</td></tr></tbody></table>
    </clause>
  </sections>
  <annex id="annexA"><title>Precision</title>
    <figure id="figA1"/>
    <appendix id="appx1"><title>Data</title></appendix>
  </annex>
  <bibliography id="bib"><title>Bibliography</title>
    <bibitem id="iso712" citeas="ISO 712 (All Parts)"/>
  </bibliography>
</iso-standard>`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestPipeline_RunFile(t *testing.T) {
	var logs bytes.Buffer
	p := New(Options{
		Parser: parser.DefaultOptions(),
		Logger: logging.New(&logs, slog.LevelInfo, logging.FormatJSON),
	})

	res, err := p.RunFile(context.Background(), writeFile(t, "iso-17301.xml", sampleXML))
	if err != nil {
		t.Fatalf("RunFile failed: %v", err)
	}

	if res.Key() != "ISO 17301-1" {
		t.Errorf("expected key from doc identifier, got %q", res.Key())
	}
	if !res.Document.Normalized {
		t.Error("expected normalized document")
	}

	tests := []struct {
		id    string
		xref  string
		label string
	}{
		{"general", "Clause 1", "1"},
		{"fig1", "Figure 1", "1"},
		{"tab1", "Table 1", "1"},
		{"annexA", "Annex A", "A"},
		{"figA1", "Figure A.1", "A.1"},
		{"appx1", "Appendix 1", "Appendix 1"},
		{"iso712", "ISO 712", "ISO 712 (All Parts)"},
	}
	for _, tc := range tests {
		a, err := res.Registry.Lookup(tc.id)
		if err != nil {
			t.Errorf("Lookup(%q): %v", tc.id, err)
			continue
		}
		if a.XRef != tc.xref || a.Label != tc.label {
			t.Errorf("%s: expected %q/%q, got %q/%q", tc.id, tc.label, tc.xref, a.Label, a.XRef)
		}
	}

	intro, err := res.Registry.Lookup("intro")
	if err != nil {
		t.Fatalf("Lookup(intro): %v", err)
	}
	if intro.Label != "" || !intro.Unnumbered {
		t.Errorf("introduction without subclauses must be unnumbered, got %+v", intro)
	}
	if res.Document.Front().FirstChildOf(ir.KindIntroduction) == nil {
		t.Error("expected introduction moved into the preface")
	}

	if n, err := testutil.GatherAndCount(res.Metrics.Registry(), "isoanchor_anchors_total"); err != nil || n < 5 {
		t.Errorf("expected anchor counts per type, got %d (%v)", n, err)
	}

	var first map[string]any
	line := strings.SplitN(logs.String(), "\n", 2)[0]
	if err := json.Unmarshal([]byte(line), &first); err != nil {
		t.Fatalf("expected JSON log line, got %q", line)
	}
	if first["run_id"] != res.RunID {
		t.Errorf("expected run_id %s on log records, got %v", res.RunID, first["run_id"])
	}
}

func TestPipeline_DiagnosticsAreLogged(t *testing.T) {
	var logs bytes.Buffer
	p := New(Options{Logger: logging.New(&logs, slog.LevelWarn, logging.FormatText)})

	doc := ir.NewDocument()
	doc.AddSection(ir.NewClause("c1", "General", ir.NewElement(ir.KindAppendix, "stray")))

	res, err := p.Run(context.Background(), "stray.xml", doc)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(res.Diagnostics) == 0 || res.Diagnostics[0].Code != xref.DiagMissingContainer {
		t.Fatalf("expected missing-container diagnostic, got %v", res.Diagnostics)
	}
	if !strings.Contains(logs.String(), "code="+xref.DiagMissingContainer) {
		t.Errorf("expected diagnostic logged at warn level, got %q", logs.String())
	}
	if n, err := testutil.GatherAndCount(res.Metrics.Registry(), "isoanchor_diagnostics_total"); err != nil || n != 1 {
		t.Errorf("expected one diagnostics series, got %d (%v)", n, err)
	}
}

func TestPipeline_NormalizeOnly(t *testing.T) {
	doc := ir.NewDocument()
	doc.AddToRoot(ir.NewSection(ir.KindAnnex, "a1", "Extra"))

	res, err := New(Options{}).Normalize(context.Background(), "doc.json", doc)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if res.Registry != nil {
		t.Error("normalize-only run must not build a registry")
	}
	if res.Document.Back() == nil {
		t.Error("expected back matter container")
	}
	if res.Key() != "doc" {
		t.Errorf("expected key from file name, got %q", res.Key())
	}
}

func TestPipeline_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(Options{}).Run(ctx, "x.xml", ir.NewDocument())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestLoad_UnsupportedFormat(t *testing.T) {
	_, err := Load(writeFile(t, "iso.adoc", "= ISO 712"), parser.DefaultOptions())
	if err == nil {
		t.Error("expected error for unsupported extension")
	}
}

func TestLoadReader(t *testing.T) {
	doc, err := LoadReader(strings.NewReader(sampleXML), parser.DefaultOptions())
	if err != nil {
		t.Fatalf("LoadReader failed: %v", err)
	}
	if doc.Metadata.DocIdentifier != "ISO 17301-1" {
		t.Errorf("unexpected identifier %q", doc.Metadata.DocIdentifier)
	}

	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	again, err := LoadReader(bytes.NewReader(data), parser.DefaultOptions())
	if err != nil {
		t.Fatalf("LoadReader(json) failed: %v", err)
	}
	if ir.Digest(again.Root) != ir.Digest(doc.Root) {
		t.Error("JSON round trip changed the tree")
	}

	if _, err := LoadReader(strings.NewReader("= ISO 712"), parser.DefaultOptions()); err == nil {
		t.Error("expected error for unknown content")
	}
}
