// Package textnorm holds the text canonicalization shared by cue detection
// and deduplication: both the normalized detection pass and the content
// hash are built on Normalize, so the two engines agree on what "the same
// text" means.
package textnorm

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/net/html"
)

var (
	replyMarker = regexp.MustCompile(`^(re|fw|fwd)\s*:\s*`)
	whitespace  = regexp.MustCompile(`\s+`)

	deobfScheme = regexp.MustCompile(`(?i)\bhxxps?://`)
	deobfDot    = regexp.MustCompile(`\[(\.)\]`)

	// Fallback tag stripping for HTML the parser rejects.
	scriptBlocks = regexp.MustCompile(`(?is)<\s*(script|style)[^>]*>.*?<\s*/\s*(script|style)\s*>`)
	htmlTags     = regexp.MustCompile(`<[^>]+>`)
)

// Normalize lowercases text and collapses every run of characters outside
// [a-z0-9] to a single space, trimming the ends. Idempotent: applying it
// twice yields the same string. Empty input yields "".
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	pendingSpace := false
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pendingSpace = false
			b.WriteRune(r)
		} else {
			pendingSpace = true
		}
	}
	return b.String()
}

// NormalizeSubject lowercases and trims a subject line, strips a single
// leading reply/forward marker (re:, fw:, fwd:), and collapses internal
// whitespace. "Re: Account Alert" and "account alert" normalize equal.
func NormalizeSubject(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = replyMarker.ReplaceAllString(s, "")
	return whitespace.ReplaceAllString(s, " ")
}

// HTMLToText extracts the visible text of an HTML fragment: script and
// style subtrees are dropped, remaining text nodes are concatenated, and
// whitespace is collapsed. Never fails: input the parser rejects falls
// back to regex tag stripping.
func HTMLToText(s string) string {
	if s == "" {
		return ""
	}

	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		stripped := scriptBlocks.ReplaceAllString(s, " ")
		stripped = htmlTags.ReplaceAllString(stripped, " ")
		return collapseSpace(stripped)
	}

	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return collapseSpace(b.String())
}

// Deobfuscate rewrites defanged indicators back to their plain forms
// (hxxp:// becomes http://, [.] becomes .) so link-bearing cues
// survive detection. The rewritten text is used in memory only and never
// persisted.
func Deobfuscate(s string) string {
	if s == "" {
		return ""
	}
	s = deobfScheme.ReplaceAllStringFunc(s, func(m string) string {
		if strings.HasPrefix(strings.ToLower(m), "hxxps") {
			return "https://"
		}
		return "http://"
	})
	return deobfDot.ReplaceAllString(s, ".")
}

func collapseSpace(s string) string {
	return strings.Join(strings.FieldsFunc(s, unicode.IsSpace), " ")
}
