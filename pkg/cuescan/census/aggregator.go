package census

import (
	"sort"
	"unicode/utf8"

	"github.com/lexcue/cuescan/pkg/cuescan/record"
)

// Retention caps. Examples per signature and report list lengths are
// fixed small constants so memory and report size stay flat no matter how
// large the corpus grows.
const (
	DefaultMaxExamples = 3
	DefaultTopClusters = 50
	DefaultMaxSamples  = 200
	maxExampleSubject  = 200
)

// Options configures an Aggregator. Zero values fall back to the
// defaults above.
type Options struct {
	Years       YearRange
	MaxExamples int
	TopClusters int
	MaxSamples  int
}

// Example references one occurrence of a signature: the source it came
// from and its (truncated) subject line.
type Example struct {
	Source  string `json:"source"`
	Subject string `json:"subject"`
}

type sigRecord struct {
	count        int
	examples     []Example
	earliestYear string
	order        int // first-seen position, for stable sample output
}

// Aggregator consumes a stream of corpus records one at a time and
// maintains per-signature occurrence counts, bounded example retention,
// earliest-year tracking, and per-year raw tallies. It owns its maps
// exclusively; a full corpus pass is a plain loop over Process followed
// by one Snapshot call.
type Aggregator struct {
	opts       Options
	totalRows  int
	emailLike  int
	sigs       map[Signature]*sigRecord
	perYearRaw map[string]int
	audit      YearAudit
	nextOrder  int
}

// NewAggregator creates an empty aggregator.
func NewAggregator(opts Options) *Aggregator {
	if opts.Years == (YearRange{}) {
		opts.Years = DefaultYearRange()
	}
	if opts.MaxExamples <= 0 {
		opts.MaxExamples = DefaultMaxExamples
	}
	if opts.TopClusters <= 0 {
		opts.TopClusters = DefaultTopClusters
	}
	if opts.MaxSamples <= 0 {
		opts.MaxSamples = DefaultMaxSamples
	}
	return &Aggregator{
		opts:       opts,
		sigs:       make(map[Signature]*sigRecord),
		perYearRaw: make(map[string]int),
	}
}

// Process folds one record into the census. Rows that do not look like
// emails are counted but otherwise skipped, so non-email rows never
// pollute the dedup state. Returns the record's signature and whether it
// passed the email-like gate.
func (a *Aggregator) Process(r record.Record, source string) (Signature, bool) {
	a.totalRows++
	if !record.IsEmailLike(r) {
		return Signature{}, false
	}
	a.emailLike++

	sig := BuildSignature(r)
	rec, ok := a.sigs[sig]
	if !ok {
		rec = &sigRecord{order: a.nextOrder}
		a.nextOrder++
		a.sigs[sig] = rec
	}
	rec.count++

	if len(rec.examples) < a.opts.MaxExamples {
		rec.examples = append(rec.examples, Example{
			Source:  source,
			Subject: truncate(r.Subject(), maxExampleSubject),
		})
	}

	if year := a.opts.Years.ResolveYear(r.Get("date"), source, &a.audit); year != "" {
		a.perYearRaw[year]++
		// Validated 4-digit year strings order lexicographically the
		// same as numerically.
		if rec.earliestYear == "" || year < rec.earliestYear {
			rec.earliestYear = year
		}
	}

	return sig, true
}

// Merge folds another aggregator's state into this one, so corpus
// partitions processed separately can still produce a single census.
// Example retention stays bounded; earliest years take the minimum.
func (a *Aggregator) Merge(other *Aggregator) {
	a.totalRows += other.totalRows
	a.emailLike += other.emailLike
	a.audit.Add(other.audit)
	for year, n := range other.perYearRaw {
		a.perYearRaw[year] += n
	}

	ordered := make([]Signature, 0, len(other.sigs))
	for sig := range other.sigs {
		ordered = append(ordered, sig)
	}
	sort.Slice(ordered, func(i, j int) bool {
		return other.sigs[ordered[i]].order < other.sigs[ordered[j]].order
	})

	for _, sig := range ordered {
		src := other.sigs[sig]
		rec, ok := a.sigs[sig]
		if !ok {
			rec = &sigRecord{order: a.nextOrder}
			a.nextOrder++
			a.sigs[sig] = rec
		}
		rec.count += src.count
		for _, ex := range src.examples {
			if len(rec.examples) >= a.opts.MaxExamples {
				break
			}
			rec.examples = append(rec.examples, ex)
		}
		if src.earliestYear != "" && (rec.earliestYear == "" || src.earliestYear < rec.earliestYear) {
			rec.earliestYear = src.earliestYear
		}
	}
}

// truncate caps s at n bytes, backing off to the previous rune boundary
// so a multi-byte character is never cut in half.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
