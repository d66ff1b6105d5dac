package spcht

import (
	"fmt"
	"log/slog"

	"github.com/ubleipzig/spcht/internal/engine"
	"github.com/ubleipzig/spcht/internal/ir"
	"github.com/ubleipzig/spcht/loader"
)

const defaultMaxRecursionDepth = 64

// engineOptions holds the knobs an Engine carries; the engine itself takes
// no environment configuration (§5: it is a pure function of compiled
// descriptor + record) -- these are the few things spec.md does mention
// (SPEC_FULL.md §4.7), gathered through the functional-options style the
// teacher uses for its own ParseOpt/PresenceOpt bundles.
type engineOptions struct {
	maxRecursionDepth int
	collectSaveAs     bool
	subjectPrefix     string
}

// EngineOption configures an Engine at construction time.
type EngineOption func(*engineOptions)

// WithMaxRecursionDepth bounds fallback/sub_nodes/sub_data recursion depth.
// Not a feature spec.md names; a guard against pathological descriptors.
func WithMaxRecursionDepth(n int) EngineOption {
	return func(o *engineOptions) { o.maxRecursionDepth = n }
}

// WithSaveAs turns on collection of the `saveas` side-channel (§3 "NEW").
// Off by default since most callers only want triples.
func WithSaveAs(collect bool) EngineOption {
	return func(o *engineOptions) { o.collectSaveAs = collect }
}

// WithSubjectPrefix prepends prefix to every record's derived subject
// before it is used as a triple subject (§3: "the record's subject
// identifier, which becomes the triple subject after optional prefix
// application by the caller").
func WithSubjectPrefix(prefix string) EngineOption {
	return func(o *engineOptions) { o.subjectPrefix = prefix }
}

// Engine is a compiled descriptor ready to evaluate records. An Engine
// holds no per-record state and is safe for concurrent use (§5).
type Engine struct {
	descriptor *ir.Descriptor
	opts       engineOptions
}

// NewEngine wraps an already-compiled descriptor (see package loader) as
// an Engine.
func NewEngine(descriptor *ir.Descriptor, opts ...EngineOption) *Engine {
	o := engineOptions{maxRecursionDepth: defaultMaxRecursionDepth}
	for _, apply := range opts {
		apply(&o)
	}
	return &Engine{descriptor: descriptor, opts: o}
}

// Load parses and compiles a descriptor document and wraps it as an Engine
// in one step. baseDir anchors $ref/joined_map_ref resolution.
func Load(doc any, baseDir string, opts ...EngineOption) (*Engine, Issues) {
	d, issues := loader.Load(doc, baseDir)
	if issues != nil {
		return nil, issues
	}
	return NewEngine(d, opts...), nil
}

// LoadFile reads, parses, and compiles a descriptor document from disk.
func LoadFile(path string, opts ...EngineOption) (*Engine, Issues) {
	d, issues := loader.LoadFile(path)
	if issues != nil {
		return nil, issues
	}
	return NewEngine(d, opts...), nil
}

// EvalResult is the outcome of evaluating one record (§4.6, §7).
type EvalResult struct {
	Triples  []Triple
	SaveAs   map[string][]string
	Warnings Issues

	// Discarded is true when a mandatory node (including the head node)
	// produced no value; Triples and SaveAs are nil in that case.
	Discarded     bool
	DiscardReason Issue
}

// Evaluate runs the engine driver (§4.6) for one record: derive the subject
// via the head node, evaluate every body node, and either return the
// ordered triples or report RecordDiscarded. A panic anywhere in the
// recursive evaluation (InternalInvariantViolation, §7) is recovered here
// and turned into a CodeInternal Issue rather than propagated to the
// caller.
func (e *Engine) Evaluate(rec Record) (result EvalResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = Issues{{Code: CodeInternal, Message: fmt.Sprintf("recovered from panic: %v", r)}}
		}
	}()

	rec = promoteMarcView(rec, e.descriptor.MarcKey)

	ctx := engine.New(engine.Options{
		MaxDepth:      e.opts.maxRecursionDepth,
		CollectSaveAs: e.opts.collectSaveAs,
	})

	subject, ok, fatal := ctx.EvalHead(rec, &e.descriptor.Head)
	if fatal.Code != "" {
		// A head node yielding more than one value is the fatal authoring
		// error §3 describes ("caught at load time if statically
		// detectable, otherwise at runtime"), not an ordinary discard.
		slog.Error("spcht: head node invariant violated", "code", fatal.Code, "message", fatal.Message)
		return EvalResult{}, Issues{fatal}
	}
	if !ok {
		slog.Debug("spcht: record discarded, head node produced no subject")
		return EvalResult{
			Discarded: true,
			DiscardReason: Issue{
				Code:    CodeMandatoryMissing,
				Message: "head node produced no subject",
			},
			Warnings: ctx.Warnings(),
		}, nil
	}
	if e.opts.subjectPrefix != "" {
		subject = e.opts.subjectPrefix + subject
	}

	var triples []Triple
	for _, node := range e.descriptor.Nodes {
		nodeTriples, discard, issue := ctx.EvalBody(rec, node, subject, 0, false)
		if discard {
			slog.Debug("spcht: record discarded", "subject", subject, "code", issue.Code, "node", issue.Rule)
			return EvalResult{Discarded: true, DiscardReason: issue, Warnings: ctx.Warnings()}, nil
		}
		triples = append(triples, nodeTriples...)
	}

	if warnings := ctx.Warnings(); len(warnings) > 0 {
		slog.Warn("spcht: record evaluated with warnings", "subject", subject, "warning_count", len(warnings))
	}

	return EvalResult{
		Triples:  triples,
		SaveAs:   ctx.SaveAs(),
		Warnings: ctx.Warnings(),
	}, nil
}

// promoteMarcView returns a Record whose Marc view is populated from
// Flat[marcKey] when the caller hasn't already supplied one via
// Record.WithMarc (§3: "a record presents the MARC view when a
// distinguished key...holds parsed MARC21 data"). It never mutates the
// caller's Flat map (§8 property 2, purity).
func promoteMarcView(rec Record, marcKey string) Record {
	if rec.Marc != nil || rec.Flat == nil {
		return rec
	}
	v, ok := rec.Flat[marcKey]
	if !ok {
		return rec
	}
	marc, ok := v.(map[string]any)
	if !ok {
		return rec
	}
	return rec.WithMarc(marc)
}
