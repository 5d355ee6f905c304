package detect

import (
	"testing"

	"github.com/lexcue/cuescan/pkg/cuescan/lexicon"
)

func testLexicon() *lexicon.Lexicon {
	return lexicon.New([]lexicon.Category{
		{Name: "urgency", Phrases: []string{"urgent action required", "act now", "urgent", "now"}},
		{Name: "reward", Phrases: []string{"you have won", "prize"}},
		{Name: "quiet", Phrases: []string{"nothing here"}},
	})
}

func TestDetectFixedShape(t *testing.T) {
	d := NewDetector(testLexicon())

	for _, text := range []string{"", "unrelated content", "act now"} {
		result := d.Detect(text)
		if len(result) != 3 {
			t.Fatalf("Detect(%q) has %d categories, want 3", text, len(result))
		}
		for _, cat := range []string{"urgency", "reward", "quiet"} {
			if _, ok := result[cat]; !ok {
				t.Errorf("Detect(%q) missing category %q", text, cat)
			}
		}
	}

	// Non-matching categories stay present but empty.
	result := d.Detect("act now")
	if len(result["quiet"]) != 0 {
		t.Errorf("category 'quiet' = %v, want empty", result["quiet"])
	}
	if result["urgency"]["act now"] != 1 {
		t.Errorf("count for 'act now' = %d, want 1", result["urgency"]["act now"])
	}
}

func TestDetectWholeWordBoundary(t *testing.T) {
	d := NewDetector(testLexicon())

	if got := d.Detect("snowman builds a snowman")["urgency"]["now"]; got != 0 {
		t.Errorf("'now' matched inside 'snowman' %d times, want 0", got)
	}
	if got := d.Detect("act now.")["urgency"]["now"]; got != 1 {
		t.Errorf("'now' in 'act now.' = %d, want 1", got)
	}
}

func TestDetectMergedDualPass(t *testing.T) {
	d := NewDetector(testLexicon())

	// "URGENT action required" matches in both the raw pass and the
	// normalized pass ("urgent action required"), so each phrase counts
	// twice after the merge.
	merged := d.DetectMerged("URGENT action required")
	if got := merged["urgency"]["urgent action required"]; got != 2 {
		t.Errorf("merged count for 'urgent action required' = %d, want 2", got)
	}
	if got := merged["urgency"]["urgent"]; got != 2 {
		t.Errorf("merged count for 'urgent' = %d, want 2", got)
	}

	totals := merged.Totals()
	if totals["urgency"] != 4 {
		t.Errorf("urgency total = %d, want 4", totals["urgency"])
	}
	if totals["reward"] != 0 || totals["quiet"] != 0 {
		t.Errorf("non-matching totals = %d/%d, want 0/0", totals["reward"], totals["quiet"])
	}
}

func TestDetectMergedRecoversPunctuation(t *testing.T) {
	d := NewDetector(testLexicon())

	// "act*now" misses the raw pass but normalizes to "act now".
	merged := d.DetectMerged("act*now")
	if got := merged["urgency"]["act now"]; got != 1 {
		t.Errorf("merged count for 'act now' in 'act*now' = %d, want 1", got)
	}
}

func TestDetectWithExtras(t *testing.T) {
	d := NewDetector(testLexicon())

	text := "URGENT!! You have won a £500 PRIZE: hxxp://claim[.]example and www.other.test"
	totals, extras := d.DetectWithExtras(text)

	if totals["urgency"] < 1 {
		t.Errorf("urgency total = %d, want >= 1", totals["urgency"])
	}
	if totals["reward"] < 2 {
		t.Errorf("reward total = %d, want >= 2 (phrase + word, dual pass)", totals["reward"])
	}
	// URGENT and PRIZE
	if extras.AllCapsWords != 2 {
		t.Errorf("AllCapsWords = %d, want 2", extras.AllCapsWords)
	}
	if extras.Exclamations != 1 {
		t.Errorf("Exclamations = %d, want 1 (run of !! counts once)", extras.Exclamations)
	}
	if extras.MoneySymbols != 1 {
		t.Errorf("MoneySymbols = %d, want 1", extras.MoneySymbols)
	}
	// deobfuscated hxxp:// link plus www.
	if extras.Links != 2 {
		t.Errorf("Links = %d, want 2", extras.Links)
	}
}

func TestDetectEmptyInput(t *testing.T) {
	d := NewDetector(testLexicon())

	totals, extras := d.DetectWithExtras("")
	for cat, n := range totals {
		if n != 0 {
			t.Errorf("total for %q = %d, want 0", cat, n)
		}
	}
	if extras != (Extras{}) {
		t.Errorf("extras = %+v, want zero value", extras)
	}
}

func TestDefaultLexiconDetection(t *testing.T) {
	d := NewDetector(lexicon.Default())

	totals, _ := d.DetectWithExtras("Please verify your account immediately")
	if totals["consistency_commitment"] < 1 {
		t.Errorf("consistency_commitment = %d, want >= 1", totals["consistency_commitment"])
	}
	if totals["urgency"] < 1 {
		t.Errorf("urgency = %d, want >= 1", totals["urgency"])
	}

	result := d.Detect("anything")
	if len(result) != len(lexicon.Default().Categories()) {
		t.Errorf("result has %d categories, want %d", len(result), len(lexicon.Default().Categories()))
	}
}
