package census

import (
	"regexp"
	"strconv"
	"strings"
)

// Default collection window of the corpus. Bounding the acceptable range
// keeps spurious 4-digit numbers in noisy free text (IDs, amounts, phone
// fragments) from being misread as calendar years.
const (
	DefaultYearMin = 2005
	DefaultYearMax = 2024
)

var yearToken = regexp.MustCompile(`\b(19|20)\d\d\b`)

// findYearToken locates the first 4-digit year token in s. Underscores
// count as word characters to \b, which would hide the year in
// underscore-separated filenames like corpus_2013.csv, so they are
// mapped to spaces before matching.
func findYearToken(s string) string {
	return yearToken.FindString(strings.ReplaceAll(s, "_", " "))
}

// YearRange bounds the calendar years the resolver accepts.
type YearRange struct {
	Min int
	Max int
}

// DefaultYearRange returns the corpus collection window [2005, 2024].
func DefaultYearRange() YearRange {
	return YearRange{Min: DefaultYearMin, Max: DefaultYearMax}
}

// Contains reports whether a validated 4-digit year string falls inside
// the range.
func (yr YearRange) Contains(year string) bool {
	if len(year) != 4 {
		return false
	}
	n, err := strconv.Atoi(year)
	if err != nil {
		return false
	}
	return n >= yr.Min && n <= yr.Max
}

// ExtractYear returns the first in-range 4-digit year token found in the
// text, "" when none qualifies.
func (yr YearRange) ExtractYear(s string) string {
	if s == "" {
		return ""
	}
	y := findYearToken(s)
	if y == "" || !yr.Contains(y) {
		return ""
	}
	return y
}

// YearAudit counts how each email-like row's year was resolved. DateValid,
// FallbackFile, and Unknown are mutually exclusive and sum to the rows
// processed; DateOutOfRange is informational and may accompany either of
// the latter two.
type YearAudit struct {
	DateValid      int `json:"date_valid"`
	DateOutOfRange int `json:"date_out_of_range"`
	FallbackFile   int `json:"fallback_file"`
	Unknown        int `json:"unknown"`
}

// Add merges another audit's counters into this one.
func (a *YearAudit) Add(other YearAudit) {
	a.DateValid += other.DateValid
	a.DateOutOfRange += other.DateOutOfRange
	a.FallbackFile += other.FallbackFile
	a.Unknown += other.Unknown
}

// ResolveYear extracts a plausible calendar year for a record, mutating
// the audit as a side effect. Precedence: an in-range year in the date
// field always wins; otherwise the source filename is tried; otherwise
// the year is unknown and "" is returned. A date-field year outside the
// range is recorded but never short-circuits the fallback.
func (yr YearRange) ResolveYear(date, source string, audit *YearAudit) string {
	if y := yr.ExtractYear(date); y != "" {
		audit.DateValid++
		return y
	}

	if token := findYearToken(date); token != "" && !yr.Contains(token) {
		audit.DateOutOfRange++
	}

	if y := yr.ExtractYear(source); y != "" {
		audit.FallbackFile++
		return y
	}

	audit.Unknown++
	return ""
}
