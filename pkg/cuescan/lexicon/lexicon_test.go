package lexicon

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestNewPreservesOrder(t *testing.T) {
	lex := New([]Category{
		{Name: "zeta", Phrases: []string{"one"}},
		{Name: "alpha", Phrases: []string{"two", "three"}},
		{Name: "mid", Phrases: []string{"four"}},
	})

	want := []string{"zeta", "alpha", "mid"}
	if got := lex.Categories(); !reflect.DeepEqual(got, want) {
		t.Errorf("Categories() = %v, want %v", got, want)
	}
}

func TestNewDropsBlankEntries(t *testing.T) {
	lex := New([]Category{
		{Name: "", Phrases: []string{"ignored"}},
		{Name: "real", Phrases: []string{"", "  ", "kept"}},
	})

	if got := lex.Categories(); len(got) != 1 || got[0] != "real" {
		t.Errorf("Categories() = %v, want [real]", got)
	}
	if got := lex.Phrases("real"); len(got) != 1 || got[0] != "kept" {
		t.Errorf("Phrases('real') = %v, want [kept]", got)
	}
}

func TestPhrasesUnknownCategory(t *testing.T) {
	lex := New(nil)
	if got := lex.Phrases("missing"); got != nil {
		t.Errorf("Phrases('missing') = %v, want nil", got)
	}
	if lex.Has("missing") {
		t.Error("Has('missing') = true, want false")
	}
}

func TestCompileWholeWord(t *testing.T) {
	lex := New([]Category{
		{Name: "urgency", Phrases: []string{"now", "act now"}},
	})
	patterns := lex.Compile()
	if len(patterns) != 2 {
		t.Fatalf("Compile() produced %d patterns, want 2", len(patterns))
	}

	tests := []struct {
		phrase string
		text   string
		want   int
	}{
		{"now", "act now.", 1},
		{"now", "snowman", 0},
		{"now", "NOW and now", 2},
		{"act now", "please ACT NOW today", 1},
		{"act now", "react nowhere", 0},
	}

	for _, tt := range tests {
		var matcher *Pattern
		for i := range patterns {
			if patterns[i].Phrase == tt.phrase {
				matcher = &patterns[i]
			}
		}
		if matcher == nil {
			t.Fatalf("no pattern compiled for %q", tt.phrase)
		}
		if got := len(matcher.Matcher.FindAllString(tt.text, -1)); got != tt.want {
			t.Errorf("matches of %q in %q = %d, want %d", tt.phrase, tt.text, got, tt.want)
		}
	}
}

func TestCompileEscapesMetacharacters(t *testing.T) {
	lex := New([]Category{
		{Name: "odd", Phrases: []string{"a+b (test)"}},
	})
	patterns := lex.Compile()
	if len(patterns) != 1 {
		t.Fatalf("Compile() produced %d patterns, want 1", len(patterns))
	}
	if got := len(patterns[0].Matcher.FindAllString("value a+b (test) here", -1)); got != 1 {
		t.Errorf("literal metacharacter phrase matched %d times, want 1", got)
	}
	if got := len(patterns[0].Matcher.FindAllString("aab test", -1)); got != 0 {
		t.Errorf("metacharacters interpreted as regex, matched %d times, want 0", got)
	}
}

func TestCompileAnchorsOnlyWordEdges(t *testing.T) {
	lex := New([]Category{
		{Name: "money", Phrases: []string{"$100", "100%"}},
		{Name: "punct", Phrases: []string{"(urgent)"}},
	})
	patterns := lex.Compile()

	tests := []struct {
		phrase string
		text   string
		want   int
	}{
		{"$100", "send $100 today", 1},
		{"$100", "send $1000 today", 0}, // trailing word edge still anchored
		{"100%", "a 100% guarantee", 1},
		{"100%", "a 2100% guarantee", 0}, // leading word edge still anchored
		{"(urgent)", "reply (urgent) please", 1},
		{"(urgent)", "notice:(urgent)!", 1}, // punctuation edges need no boundary
	}

	for _, tt := range tests {
		var matcher *Pattern
		for i := range patterns {
			if patterns[i].Phrase == tt.phrase {
				matcher = &patterns[i]
			}
		}
		if matcher == nil {
			t.Fatalf("no pattern compiled for %q", tt.phrase)
		}
		if got := len(matcher.Matcher.FindAllString(tt.text, -1)); got != tt.want {
			t.Errorf("matches of %q in %q = %d, want %d", tt.phrase, tt.text, got, tt.want)
		}
	}
}

func TestDefaultLexicon(t *testing.T) {
	lex := Default()

	wantCats := []string{
		"authority", "urgency", "scarcity", "fear_loss",
		"consistency_commitment", "similarity_socialproof",
		"reward_reciprocity", "brand_trust",
	}
	if got := lex.Categories(); !reflect.DeepEqual(got, wantCats) {
		t.Errorf("Default().Categories() = %v, want %v", got, wantCats)
	}

	stats := lex.Stats()
	if stats.Categories != len(wantCats) {
		t.Errorf("Stats().Categories = %d, want %d", stats.Categories, len(wantCats))
	}
	if stats.TotalPhrases == 0 {
		t.Error("Stats().TotalPhrases = 0, want > 0")
	}

	// Compilation of the full default lexicon must not panic and must
	// keep lexicon order.
	patterns := lex.Compile()
	if len(patterns) != stats.TotalPhrases {
		t.Errorf("Compile() produced %d patterns, want %d", len(patterns), stats.TotalPhrases)
	}
	if patterns[0].Category != "authority" {
		t.Errorf("first pattern category = %q, want 'authority'", patterns[0].Category)
	}
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lexicon.yaml")
	content := `cues:
  - category: urgency
    phrases: [urgent, act now]
  - category: authority
    phrases: [official notice]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	lex, err := LoadFromYAML(path)
	if err != nil {
		t.Fatalf("LoadFromYAML() error: %v", err)
	}

	want := []string{"urgency", "authority"}
	if got := lex.Categories(); !reflect.DeepEqual(got, want) {
		t.Errorf("Categories() = %v, want %v", got, want)
	}
	if got := lex.Phrases("urgency"); !reflect.DeepEqual(got, []string{"urgent", "act now"}) {
		t.Errorf("Phrases('urgency') = %v, want [urgent, act now]", got)
	}
}

func TestLoadFromYAMLMissingFile(t *testing.T) {
	if _, err := LoadFromYAML(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("LoadFromYAML() on missing file: expected error, got nil")
	}
}
