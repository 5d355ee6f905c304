// Package report assembles the collaborator-facing output shapes: run
// metadata, per-record cue rows with fixed category columns, and the
// privacy scrubbing applied before anything is persisted.
package report

import (
	"crypto/rand"
	"fmt"
	"mime"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/abadojack/whatlanggo"
	"github.com/oklog/ulid/v2"

	"github.com/lexcue/cuescan/pkg/cuescan/detect"
	"github.com/lexcue/cuescan/pkg/cuescan/lexicon"
)

var emailAddress = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)

// Minimum text length before language detection is attempted; shorter
// fragments give unreliable guesses.
const minLangChars = 20

// RunMeta identifies one corpus pass.
type RunMeta struct {
	ID        string    `json:"id"`
	Input     string    `json:"input"`
	StartedAt time.Time `json:"started_at"`
}

// Builder mints run metadata with monotonic ULIDs, so runs started in the
// same millisecond still sort by creation order.
type Builder struct {
	entropy *ulid.MonotonicEntropy
}

// NewBuilder creates a run metadata builder.
func NewBuilder() *Builder {
	return &Builder{
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
}

// NewRun returns metadata for a run over the given input.
func (b *Builder) NewRun(input string) RunMeta {
	return RunMeta{
		ID:        ulid.MustNew(ulid.Now(), b.entropy).String(),
		Input:     input,
		StartedAt: time.Now(),
	}
}

// Row is one record's cue report: redacted metadata, per-category totals,
// surface heuristics, and a language guess.
type Row struct {
	Source   string        `json:"source"`
	TextLen  int           `json:"text_len"`
	Subject  string        `json:"subject"`
	From     string        `json:"from"`
	To       string        `json:"to"`
	Date     string        `json:"date"`
	Language string        `json:"language,omitempty"`
	Totals   detect.Totals `json:"cues_total"`
	Extras   detect.Extras `json:"extras"`
	Err      string        `json:"error,omitempty"`
}

// NewRow builds a report row from detection output, redacting addresses
// in the contact fields and tagging the text's language.
func NewRow(source, subject, from, to, date, text string, totals detect.Totals, extras detect.Extras) Row {
	return Row{
		Source:   source,
		TextLen:  len(text),
		Subject:  RedactEmails(DecodeMIMEHeader(subject)),
		From:     RedactEmails(from),
		To:       RedactEmails(to),
		Date:     date,
		Language: DetectLanguage(text),
		Totals:   totals,
		Extras:   extras,
	}
}

// RedactEmails masks email addresses so report files stay free of
// personal addresses from the corpus.
func RedactEmails(s string) string {
	if s == "" {
		return ""
	}
	return emailAddress.ReplaceAllString(s, "[redacted-email]")
}

// DecodeMIMEHeader decodes RFC 2047 encoded-words in a header value
// (=?UTF-8?Q?...?= and friends). Undecodable input passes through as-is.
func DecodeMIMEHeader(s string) string {
	if s == "" {
		return ""
	}
	dec := new(mime.WordDecoder)
	decoded, err := dec.DecodeHeader(s)
	if err != nil {
		return s
	}
	return decoded
}

// DetectLanguage returns the ISO 639-3 code of the text's most likely
// language, "" when the text is too short or the guess is unreliable.
func DetectLanguage(text string) string {
	if len(text) < minLangChars {
		return ""
	}
	info := whatlanggo.Detect(text)
	if !info.IsReliable() {
		return ""
	}
	return whatlanggo.LangToString(info.Lang)
}

// CSVHeader returns the flat summary header: fixed metadata columns, one
// sum_<category> column per lexicon category in lexicon order, then the
// extras columns. Callers get stable tabular shape without hardcoding
// category names.
func CSVHeader(lex *lexicon.Lexicon) []string {
	header := []string{"source", "text_len", "subject", "from", "to", "date", "language"}
	for _, cat := range lex.Categories() {
		header = append(header, "sum_"+cat)
	}
	header = append(header, "all_caps_words", "exclamations", "money_symbols", "links", "error")
	return header
}

// CSVRecord renders the row in CSVHeader order. Newlines in text fields
// are flattened to spaces so the summary stays one line per record.
func (r Row) CSVRecord(lex *lexicon.Lexicon) []string {
	rec := []string{
		flatten(r.Source),
		strconv.Itoa(r.TextLen),
		flatten(r.Subject),
		flatten(r.From),
		flatten(r.To),
		flatten(r.Date),
		r.Language,
	}
	for _, cat := range lex.Categories() {
		rec = append(rec, strconv.Itoa(r.Totals[cat]))
	}
	rec = append(rec,
		strconv.Itoa(r.Extras.AllCapsWords),
		strconv.Itoa(r.Extras.Exclamations),
		strconv.Itoa(r.Extras.MoneySymbols),
		strconv.Itoa(r.Extras.Links),
		flatten(r.Err),
	)
	return rec
}

// SourceRef renders a source name and row index as a single reference,
// e.g. "inbox.csv#row=17".
func SourceRef(name string, row int) string {
	return fmt.Sprintf("%s#row=%d", name, row)
}

func flatten(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "\r", " ")
}
