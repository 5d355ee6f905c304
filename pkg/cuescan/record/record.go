// Package record is the tabular collaborator contract: a named-field view
// over one corpus row with safe defaults, plus the heuristics that decide
// which columns carry subject, body, and HTML content.
package record

import "strings"

// Likely column names, checked in order. Corpus exports disagree on
// naming, so each role carries a preference list.
var (
	SubjectKeys = []string{"subject", "subj", "title", "headline"}
	HTMLKeys    = []string{"sanitized_body", "body_html", "message_html", "content_html", "html"}
	BodyKeys    = []string{
		"body_snippet", "body", "text", "message", "content", "payload",
		"snippet", "description", "body_text", "email", "data",
	}
)

// metadataKeys are never treated as body text by the column fallback.
var metadataKeys = map[string]struct{}{
	"id": {}, "date": {}, "from": {}, "from_domain": {}, "to": {}, "timestamp": {},
}

// Record is one corpus row. Missing fields read as empty strings, never
// errors; nil Records are valid and empty.
type Record map[string]string

// Get returns the named field, "" when absent.
func (r Record) Get(key string) string {
	return r[key]
}

// FirstPresent returns the first candidate field whose value is non-blank.
func (r Record) FirstPresent(keys ...string) string {
	for _, k := range keys {
		if v := r[k]; strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// Subject returns the first subject-like field.
func (r Record) Subject() string {
	return r.FirstPresent(SubjectKeys...)
}

// HTMLBody returns the first HTML-like field.
func (r Record) HTMLBody() string {
	return r.FirstPresent(HTMLKeys...)
}

// PlainBody returns the first plain-body-like field.
func (r Record) PlainBody() string {
	return r.FirstPresent(BodyKeys...)
}

// IsEmailLike reports whether the row carries any message content: a
// non-blank subject or a non-blank body in any recognized column. Rows
// failing this gate never reach signature or year work.
func IsEmailLike(r Record) bool {
	if strings.TrimSpace(r.Subject()) != "" {
		return true
	}
	return strings.TrimSpace(r.FirstPresent(append(append([]string{}, HTMLKeys...), BodyKeys...)...)) != ""
}

// Columns classifies a header row into subject, text, and HTML columns.
type Columns struct {
	Subject []string
	Text    []string
	HTML    []string
}

// PickColumns matches header names case-insensitively against the likely
// key tables. When no text or HTML column is recognized, every
// non-metadata column is treated as body text, so unfamiliar exports
// still flow through the same email-like and signature paths.
func PickColumns(header []string) Columns {
	var cols Columns
	for _, h := range header {
		switch key := strings.ToLower(strings.TrimSpace(h)); {
		case contains(SubjectKeys, key):
			cols.Subject = append(cols.Subject, h)
		case contains(HTMLKeys, key):
			cols.HTML = append(cols.HTML, h)
		case contains(BodyKeys, key):
			cols.Text = append(cols.Text, h)
		}
	}

	if len(cols.Text) == 0 && len(cols.HTML) == 0 {
		for _, h := range header {
			key := strings.ToLower(strings.TrimSpace(h))
			if _, meta := metadataKeys[key]; meta || contains(SubjectKeys, key) {
				continue
			}
			cols.Text = append(cols.Text, h)
		}
	}
	return cols
}

// Build assembles a Record from one value row using the classified
// columns: the first non-blank subject column becomes "subject", HTML
// columns keep their own keys, and text columns are joined (newline
// separated) under "body". Metadata columns are copied through, so the
// email-like predicate and signature builder see the same shape whether
// content arrived via recognized columns or the fallback.
func (c Columns) Build(header, values []string) Record {
	byName := make(map[string]string, len(header))
	for i, h := range header {
		if i >= len(values) {
			break
		}
		byName[h] = values[i]
	}

	r := make(Record, len(header))
	for _, h := range c.Subject {
		if v := byName[h]; strings.TrimSpace(v) != "" {
			r["subject"] = v
			break
		}
	}
	for _, h := range c.HTML {
		if v := byName[h]; strings.TrimSpace(v) != "" {
			r["body_html"] = v
			break
		}
	}
	var parts []string
	for _, h := range c.Text {
		if v := byName[h]; v != "" {
			parts = append(parts, v)
		}
	}
	if len(parts) > 0 {
		r["body"] = strings.Join(parts, "\n")
	}
	for _, h := range header {
		key := strings.ToLower(strings.TrimSpace(h))
		if _, meta := metadataKeys[key]; meta {
			r[key] = byName[h]
		}
	}
	return r
}

// FromRow builds a Record from a CSV header and value row, mapping
// recognized columns onto the canonical field names the likely-key tables
// expect. Ragged rows are tolerated; surplus header cells read as empty.
func FromRow(header, values []string) Record {
	r := make(Record, len(header))
	for i, h := range header {
		if i >= len(values) {
			break
		}
		key := strings.ToLower(strings.TrimSpace(h))
		if key == "" {
			continue
		}
		r[key] = values[i]
	}
	return r
}

func contains(keys []string, key string) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}
