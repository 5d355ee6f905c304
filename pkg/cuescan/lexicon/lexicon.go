package lexicon

import (
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Lexicon stores the persuasion-cue vocabulary: an ordered set of
// categories, each holding the phrases that signal it.
//
// Design principles:
// - Immutable after construction: build once, share freely between detectors
// - Order-preserving: category and phrase order is the authoritative output order,
//   so tabular reports stay reproducible across runs
// - Phrases are trusted literal text; any regexp metacharacters they contain are
//   escaped at compile time
type Lexicon struct {
	categories []string
	phrases    map[string][]string
}

// Category pairs a category name with its phrase list. Used as the
// construction and YAML representation so ordering survives round-trips.
type Category struct {
	Name    string   `yaml:"category"`
	Phrases []string `yaml:"phrases"`
}

// New creates a lexicon from an ordered category list. Empty category
// names and empty phrases are dropped; a category repeated later extends
// the earlier entry rather than reordering it.
func New(categories []Category) *Lexicon {
	lex := &Lexicon{
		phrases: make(map[string][]string, len(categories)),
	}
	for _, cat := range categories {
		name := strings.TrimSpace(cat.Name)
		if name == "" {
			continue
		}
		if _, ok := lex.phrases[name]; !ok {
			lex.categories = append(lex.categories, name)
			lex.phrases[name] = nil
		}
		for _, p := range cat.Phrases {
			if strings.TrimSpace(p) == "" {
				continue
			}
			lex.phrases[name] = append(lex.phrases[name], p)
		}
	}
	return lex
}

// LoadFromYAML loads a lexicon from a YAML file.
//
// Expected format:
//   cues:
//     - category: urgency
//       phrases: [urgent, act now, final notice]
//     - category: authority
//       phrases: [official notice, security team]
//
// The list form keeps category order authoritative.
func LoadFromYAML(path string) (*Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config struct {
		Cues []Category `yaml:"cues"`
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, err
	}

	return New(config.Cues), nil
}

// Categories returns the category names in insertion order.
func (l *Lexicon) Categories() []string {
	out := make([]string, len(l.categories))
	copy(out, l.categories)
	return out
}

// Phrases returns the phrase list for a category, in insertion order.
// Unknown categories return nil.
func (l *Lexicon) Phrases(category string) []string {
	src, ok := l.phrases[category]
	if !ok {
		return nil
	}
	out := make([]string, len(src))
	copy(out, src)
	return out
}

// Has reports whether the lexicon contains the category.
func (l *Lexicon) Has(category string) bool {
	_, ok := l.phrases[category]
	return ok
}

// Stats returns statistics about the lexicon contents.
func (l *Lexicon) Stats() Stats {
	total := 0
	for _, phrases := range l.phrases {
		total += len(phrases)
	}
	return Stats{
		Categories:   len(l.categories),
		TotalPhrases: total,
	}
}

// Stats holds statistics about lexicon contents.
type Stats struct {
	Categories   int
	TotalPhrases int
}

// Pattern is one compiled matcher: the phrase as literal text, matched
// case-insensitively on whole-word boundaries.
type Pattern struct {
	Category string
	Phrase   string
	Matcher  *regexp.Regexp
}

// Patterns is the compiled form of a lexicon, preserving lexicon order.
type Patterns []Pattern

// Compile builds one matcher per (category, phrase) pair. Phrases are
// escaped so metacharacters match literally; \b anchors enforce that a
// phrase never matches inside a larger word ("now" does not hit "snow").
// An anchor is emitted only when the phrase edge is a word character:
// \b next to punctuation can never match, so a phrase like "(test)" keeps
// its literal parentheses without a boundary requirement there.
// Compilation is deterministic and cannot fail on any phrase text.
func (l *Lexicon) Compile() Patterns {
	var out Patterns
	for _, cat := range l.categories {
		for _, phrase := range l.phrases[cat] {
			out = append(out, Pattern{
				Category: cat,
				Phrase:   phrase,
				Matcher:  regexp.MustCompile(phraseExpr(phrase)),
			})
		}
	}
	return out
}

func phraseExpr(phrase string) string {
	expr := `(?i)`
	if isWordChar(phrase[0]) {
		expr += `\b`
	}
	expr += regexp.QuoteMeta(phrase)
	if isWordChar(phrase[len(phrase)-1]) {
		expr += `\b`
	}
	return expr
}

// isWordChar matches the \b notion of a word character (RE2's \b is
// ASCII-only).
func isWordChar(c byte) bool {
	return c == '_' ||
		(c >= '0' && c <= '9') ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z')
}
