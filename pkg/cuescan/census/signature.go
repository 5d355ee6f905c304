// Package census deduplicates a noisy phishing-email corpus into a yearly
// census of unique messages: content-addressed signatures, audited year
// resolution, and a streaming aggregator with bounded memory.
package census

import (
	"crypto/sha1"
	"encoding/hex"
	"strings"

	"github.com/lexcue/cuescan/pkg/cuescan/record"
	"github.com/lexcue/cuescan/pkg/cuescan/textnorm"
)

// MinContentChars is the minimum normalized body length worth hashing.
// Shorter bodies collapse to the empty-content sentinel instead of a hash
// of near-nothing: hashing a two-character body would cluster unrelated
// blank-ish emails under one trivial digest. Known tradeoff: distinct
// very-short emails sharing a domain and subject merge into one bucket.
const MinContentChars = 5

// Signature identifies an email for deduplication. Two records are the
// same email iff their signatures are equal; equality is plain struct
// comparison, so signatures can key maps directly.
type Signature struct {
	FromDomain  string // lowercased sender domain, "" when absent
	Subject     string // normalized subject
	ContentHash string // sha1 hex of normalized content, "" for short/blank bodies
}

// BuildSignature derives a record's deduplication signature from its
// sender domain, normalized subject, and a content hash of its normalized
// body. HTML-derived text is preferred over a plain body when present.
// Pure function of the record: no state, no errors.
func BuildSignature(r record.Record) Signature {
	content := r.PlainBody()
	if html := r.HTMLBody(); strings.TrimSpace(html) != "" {
		content = textnorm.HTMLToText(html)
	}

	sig := Signature{
		FromDomain: strings.ToLower(strings.TrimSpace(r.Get("from_domain"))),
		Subject:    textnorm.NormalizeSubject(r.Subject()),
	}

	normalized := textnorm.Normalize(content)
	if len(normalized) >= MinContentChars {
		sum := sha1.Sum([]byte(normalized))
		sig.ContentHash = hex.EncodeToString(sum[:])
	}
	return sig
}

// HashPrefix returns the first n characters of the content hash, "-" for
// the empty-content sentinel. Report-friendly short form.
func (s Signature) HashPrefix(n int) string {
	if s.ContentHash == "" {
		return "-"
	}
	if n > len(s.ContentHash) {
		n = len(s.ContentHash)
	}
	return s.ContentHash[:n]
}
