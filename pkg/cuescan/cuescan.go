// Package cuescan ties the cue detector and the census aggregator into
// one engine: collaborators stream corpus records in, and get per-record
// cue totals out while the dedup census accumulates on the side.
package cuescan

import (
	"context"
	"strings"

	"github.com/lexcue/cuescan/pkg/cuescan/census"
	"github.com/lexcue/cuescan/pkg/cuescan/detect"
	"github.com/lexcue/cuescan/pkg/cuescan/internalerr"
	"github.com/lexcue/cuescan/pkg/cuescan/lexicon"
	"github.com/lexcue/cuescan/pkg/cuescan/record"
	"github.com/lexcue/cuescan/pkg/cuescan/report"
	"github.com/lexcue/cuescan/pkg/cuescan/store"
	"github.com/lexcue/cuescan/pkg/cuescan/textnorm"
)

// Engine is the main corpus-analysis facade.
type Engine struct {
	detector *detect.Detector
	agg      *census.Aggregator
	store    store.Store
}

// Options configures an Engine instance.
type Options struct {
	Lexicon *lexicon.Lexicon // nil means the built-in default lexicon
	Census  census.Options
	Store   store.Store // optional run persistence
}

// New creates an Engine with the given dependencies.
func New(opts Options) *Engine {
	lex := opts.Lexicon
	if lex == nil {
		lex = lexicon.Default()
	}
	return &Engine{
		detector: detect.NewDetector(lex),
		agg:      census.NewAggregator(opts.Census),
		store:    opts.Store,
	}
}

// Close cleanly shuts down the engine's store, if any.
func (e *Engine) Close() error {
	if e.store == nil {
		return nil
	}
	return e.store.Close()
}

// Lexicon returns the cue lexicon the engine detects with.
func (e *Engine) Lexicon() *lexicon.Lexicon {
	return e.detector.Lexicon()
}

// DetectText extracts a record's analyzable text: plain body columns plus
// the visible text of any HTML column.
func DetectText(r record.Record) string {
	var parts []string
	if body := r.PlainBody(); body != "" {
		parts = append(parts, body)
	}
	if html := r.HTMLBody(); strings.TrimSpace(html) != "" {
		parts = append(parts, textnorm.HTMLToText(html))
	}
	return strings.Join(parts, "\n")
}

// RecordResult is the outcome of processing one record: the cue profile
// of its text plus its census identity.
type RecordResult struct {
	Totals    detect.Totals
	Extras    detect.Extras
	Signature census.Signature
	EmailLike bool
}

// ProcessRecord runs cue detection over one record's text and folds the
// record into the census. source names where the record came from (used
// for year fallback and example retention). Rows failing the email-like
// gate still get a cue profile but leave the census untouched.
func (e *Engine) ProcessRecord(r record.Record, source string) RecordResult {
	totals, extras := e.detector.DetectWithExtras(DetectText(r))
	sig, emailLike := e.agg.Process(r, source)
	return RecordResult{
		Totals:    totals,
		Extras:    extras,
		Signature: sig,
		EmailLike: emailLike,
	}
}

// Detector exposes the engine's detector for callers that only need cue
// detection on loose text (OCR output, fetched pages).
func (e *Engine) Detector() *detect.Detector {
	return e.detector
}

// Snapshot finalizes the census for everything processed so far.
func (e *Engine) Snapshot() census.Snapshot {
	return e.agg.Snapshot()
}

// SaveRun persists the current census snapshot under the given run
// metadata. Fails when the engine was built without a store.
func (e *Engine) SaveRun(ctx context.Context, meta report.RunMeta) error {
	if e.store == nil {
		return internalerr.ErrStoreUnavailable
	}
	return e.store.SaveRun(ctx, meta, e.agg.Snapshot())
}
