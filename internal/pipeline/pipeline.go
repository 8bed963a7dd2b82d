// Package pipeline runs one conversion: load a document, normalize its tree
// and build its anchor registry. Every run gets its own id, logger and
// metrics registry, so runs share no mutable state.
package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/roboco-io/isoanchor/internal/ir"
	"github.com/roboco-io/isoanchor/internal/metrics"
	"github.com/roboco-io/isoanchor/internal/normalize"
	"github.com/roboco-io/isoanchor/internal/parser"
	"github.com/roboco-io/isoanchor/internal/parser/irjson"
	"github.com/roboco-io/isoanchor/internal/parser/isoxml"
	"github.com/roboco-io/isoanchor/internal/xref"
)

// Options configures a Pipeline.
type Options struct {
	Parser         parser.Options
	ReservedTitles map[string]ir.Kind
	XRef           xref.Options
	Logger         *slog.Logger
}

// Pipeline converts documents.
type Pipeline struct {
	opts Options
}

// New creates a Pipeline.
func New(opts Options) *Pipeline {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	return &Pipeline{opts: opts}
}

// Result is the output of one run. Registry and Diagnostics are nil when
// the run stopped after normalization.
type Result struct {
	RunID       string
	Source      string
	Document    *ir.Document
	Report      *normalize.Report
	Registry    *xref.Registry
	Diagnostics []xref.Diagnostic
	Metrics     *metrics.Metrics
	Duration    time.Duration
}

// Key identifies the document in the anchor store: its identifier when the
// metadata has one, else the source file name without extension.
func (r *Result) Key() string {
	if r.Document != nil && r.Document.Metadata.DocIdentifier != "" {
		return r.Document.Metadata.DocIdentifier
	}
	base := filepath.Base(r.Source)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Open returns the parser for the file at path, chosen by extension.
func Open(path string, opts parser.Options) (parser.Parser, error) {
	switch format := parser.DetectFormat(path); format {
	case parser.FormatISOXML:
		return isoxml.New(path, opts)
	case parser.FormatIRJSON:
		return irjson.New(path, opts)
	default:
		return nil, fmt.Errorf("unsupported file format: %s", filepath.Ext(path))
	}
}

// Load parses the file at path.
func Load(path string, opts parser.Options) (*ir.Document, error) {
	p, err := Open(path, opts)
	if err != nil {
		return nil, err
	}
	defer p.Close()

	doc, err := p.Parse()
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return doc, nil
}

// LoadReader parses a document read from r, detecting the format from its
// content.
func LoadReader(r io.Reader, opts parser.Options) (*ir.Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	format, err := parser.DetectFormatFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	var p parser.Parser
	switch format {
	case parser.FormatISOXML:
		p = isoxml.NewFromReader(bytes.NewReader(data), opts)
	case parser.FormatIRJSON:
		p = irjson.NewFromReader(bytes.NewReader(data), opts)
	default:
		return nil, fmt.Errorf("unsupported input format")
	}
	defer p.Close()
	return p.Parse()
}

// RunFile loads the file at path and runs the full conversion.
func (p *Pipeline) RunFile(ctx context.Context, path string) (*Result, error) {
	start := time.Now()
	doc, err := Load(path, p.opts.Parser)
	if err != nil {
		return nil, err
	}
	res, err := p.Run(ctx, path, doc)
	if err != nil {
		return nil, err
	}
	res.Metrics.ObserveStage("load", time.Since(start)-res.Duration)
	return res, nil
}

// Run normalizes doc and builds its anchor registry. source names the
// input in logs and store keys.
func (p *Pipeline) Run(ctx context.Context, source string, doc *ir.Document) (*Result, error) {
	return p.run(ctx, source, doc, true)
}

// Normalize runs only the normalization stage.
func (p *Pipeline) Normalize(ctx context.Context, source string, doc *ir.Document) (*Result, error) {
	return p.run(ctx, source, doc, false)
}

func (p *Pipeline) run(ctx context.Context, source string, doc *ir.Document, build bool) (*Result, error) {
	start := time.Now()
	res := &Result{
		RunID:    uuid.NewString(),
		Source:   source,
		Document: doc,
		Metrics:  metrics.New(),
	}
	logger := p.opts.Logger.With("run_id", res.RunID, "source", source)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	n := normalize.New(normalize.Options{
		ReservedTitles: p.opts.ReservedTitles,
		Logger:         logger,
	})
	report, err := n.Normalize(doc)
	if err != nil {
		return nil, err
	}
	res.Report = report
	for _, pr := range report.Passes {
		res.Metrics.RecordPass(pr.Name, pr.Rewrites)
	}
	res.Metrics.ObserveStage("normalize", time.Since(start))
	logger.Info("tree normalized",
		"rewrites", report.Rewrites(),
		"changed", report.Changed(),
	)

	if !build {
		res.Duration = time.Since(start)
		return res, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	buildStart := time.Now()
	out, err := xref.NewBuilder(p.opts.XRef).Build(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to build anchors for %s: %w", source, err)
	}
	res.Registry = out.Registry
	res.Diagnostics = out.Diagnostics
	res.Metrics.ObserveStage("build", time.Since(buildStart))

	counts := make(map[string]int)
	for typ, c := range out.Registry.CountByType() {
		counts[string(typ)] = c
	}
	res.Metrics.RecordAnchors(counts)
	for _, d := range out.Diagnostics {
		res.Metrics.RecordDiagnostic(d.Code)
		logger.Warn(d.Message,
			"code", d.Code,
			"kind", string(d.Kind),
			"id", d.ID,
			"path", d.Path,
		)
	}

	res.Duration = time.Since(start)
	logger.Info("anchors built",
		"anchors", out.Registry.Len(),
		"diagnostics", len(out.Diagnostics),
		"duration_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}
