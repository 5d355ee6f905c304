// Package detect runs compiled cue lexicons against text fragments and
// reduces matches to per-category totals plus cheap surface heuristics.
package detect

import (
	"regexp"

	"github.com/lexcue/cuescan/pkg/cuescan/lexicon"
	"github.com/lexcue/cuescan/pkg/cuescan/textnorm"
)

var (
	allCapsWords = regexp.MustCompile(`\b[A-Z]{2,}\b`)
	exclamations = regexp.MustCompile(`!+`)
	moneySymbols = regexp.MustCompile(`[£$€]`)
	linkMarkers  = regexp.MustCompile(`(?i)(https?://|www\.)`)
)

// Result maps category to phrase to non-overlapping match count. Every
// lexicon category is present, with an empty inner map when nothing
// matched, so downstream tabular output never has to special-case gaps.
type Result map[string]map[string]int

// Totals maps category to summed phrase counts.
type Totals map[string]int

// Extras holds lexicon-independent surface heuristics, computed over the
// raw text only.
type Extras struct {
	AllCapsWords int
	Exclamations int
	MoneySymbols int
	Links        int
}

// Detector matches one compiled lexicon. It is read-only after
// construction; a single detector can serve any number of texts.
type Detector struct {
	lex      *lexicon.Lexicon
	patterns lexicon.Patterns
}

// NewDetector compiles the lexicon once and returns a detector bound to it.
func NewDetector(lex *lexicon.Lexicon) *Detector {
	return &Detector{
		lex:      lex,
		patterns: lex.Compile(),
	}
}

// Lexicon returns the lexicon this detector was built from.
func (d *Detector) Lexicon() *lexicon.Lexicon {
	return d.lex
}

// Detect runs every compiled pattern against the text once and returns
// per-phrase match counts. Empty input yields an all-empty fixed-shape
// result, never an error.
func (d *Detector) Detect(text string) Result {
	result := d.emptyResult()
	if text == "" {
		return result
	}
	for _, p := range d.patterns {
		if n := len(p.Matcher.FindAllStringIndex(text, -1)); n > 0 {
			result[p.Category][p.Phrase] += n
		}
	}
	return result
}

// DetectMerged runs a dual pass, once over the raw text and once over its
// normalized form, and sums the per-phrase counts. Phrases that survive
// normalization are intentionally counted twice; the second pass exists to
// catch phrases whose raw punctuation or casing breaks a literal match
// ("act now!!" still counts as "act now").
func (d *Detector) DetectMerged(text string) Result {
	merged := d.Detect(text)
	for category, phrases := range d.Detect(textnorm.Normalize(text)) {
		for phrase, count := range phrases {
			merged[category][phrase] += count
		}
	}
	return merged
}

// DetectWithExtras deobfuscates defanged indicators, runs the merged dual
// pass reduced to category totals, and computes the surface heuristics
// over the (deobfuscated) raw text.
func (d *Detector) DetectWithExtras(text string) (Totals, Extras) {
	text = textnorm.Deobfuscate(text)
	extras := Extras{
		AllCapsWords: len(allCapsWords.FindAllString(text, -1)),
		Exclamations: len(exclamations.FindAllString(text, -1)),
		MoneySymbols: len(moneySymbols.FindAllString(text, -1)),
		Links:        len(linkMarkers.FindAllString(text, -1)),
	}
	return d.DetectMerged(text).Totals(), extras
}

// Totals reduces per-phrase counts to per-category sums. Every category in
// the result is present in the totals, zero included.
func (r Result) Totals() Totals {
	totals := make(Totals, len(r))
	for category, phrases := range r {
		total := 0
		for _, count := range phrases {
			total += count
		}
		totals[category] = total
	}
	return totals
}

func (d *Detector) emptyResult() Result {
	result := make(Result, len(d.lex.Categories()))
	for _, cat := range d.lex.Categories() {
		result[cat] = make(map[string]int)
	}
	return result
}
