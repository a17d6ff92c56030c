package validation

import (
	"math"
	"testing"
)

func TestNormalizeText(t *testing.T) {
	t.Run("collapses whitespace and lowercases", func(t *testing.T) {
		got := NormalizeText("  Hello   World  ", false)
		if got != "hello world" {
			t.Errorf("NormalizeText() = %q, want %q", got, "hello world")
		}
	})

	t.Run("normalizes line breaks", func(t *testing.T) {
		got := NormalizeText("Line1\r\n\r\nLine2\nLine3", false)
		if got != "line1 line2 line3" {
			t.Errorf("NormalizeText() = %q, want %q", got, "line1 line2 line3")
		}
	})

	t.Run("preserves case when asked", func(t *testing.T) {
		got := NormalizeText("Hello World", true)
		if got != "Hello World" {
			t.Errorf("NormalizeText() = %q, want %q", got, "Hello World")
		}
	})

	t.Run("empty input", func(t *testing.T) {
		if got := NormalizeText("", false); got != "" {
			t.Errorf("NormalizeText(\"\") = %q, want empty", got)
		}
	})

	t.Run("idempotent", func(t *testing.T) {
		inputs := []string{
			"  Hello   World  ",
			"already normalized",
			"Tabs\tand\nnewlines",
			"",
			"MIXED Case   TEXT",
		}
		for _, in := range inputs {
			once := NormalizeText(in, false)
			twice := NormalizeText(once, false)
			if once != twice {
				t.Errorf("NormalizeText not idempotent for %q: %q != %q", in, once, twice)
			}
		}
	})
}

func TestExtractNumbers(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []float64
	}{
		{"thousands separators", "Total: 1,234,567.89", []float64{1234567.89}},
		{"percentage", "Growth: 25%", []float64{25.0}},
		{"negative", "Temp: -15", []float64{-15.0}},
		{"multiple", "Scores: 85, 90, 95", []float64{85, 90, 95}},
		{"duplicates preserved", "10 and 10 again", []float64{10, 10}},
		{"decimal", "Price: $1,234.56", []float64{1234.56}},
		{"no numbers", "no digits here", nil},
		{"empty", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractNumbers(tt.text)
			if len(got) != len(tt.want) {
				t.Fatalf("ExtractNumbers(%q) = %v, want %v", tt.text, got, tt.want)
			}
			for i := range got {
				if math.Abs(got[i]-tt.want[i]) > 1e-9 {
					t.Errorf("ExtractNumbers(%q)[%d] = %v, want %v", tt.text, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestExtractKeyTerms(t *testing.T) {
	t.Run("filters short words and deduplicates", func(t *testing.T) {
		terms := ExtractKeyTerms("The quick brown fox is a fox", 3)
		for _, want := range []string{"the", "quick", "brown", "fox"} {
			if _, ok := terms[want]; !ok {
				t.Errorf("expected term %q in %v", want, terms)
			}
		}
		if _, ok := terms["is"]; ok {
			t.Error("did not expect 2-char term \"is\"")
		}
		if _, ok := terms["a"]; ok {
			t.Error("did not expect 1-char term \"a\"")
		}
	})

	t.Run("empty input", func(t *testing.T) {
		if terms := ExtractKeyTerms("", 3); len(terms) != 0 {
			t.Errorf("expected no terms, got %v", terms)
		}
	})
}

func TestWordFrequency(t *testing.T) {
	t.Run("counts whole-word occurrences", func(t *testing.T) {
		freq := WordFrequency("foo bar foo baz foo")
		if freq["foo"] != 3 {
			t.Errorf("freq[foo] = %d, want 3", freq["foo"])
		}
		if freq["bar"] != 1 {
			t.Errorf("freq[bar] = %d, want 1", freq["bar"])
		}
		if freq["baz"] != 1 {
			t.Errorf("freq[baz] = %d, want 1", freq["baz"])
		}
	})

	t.Run("word boundary safe", func(t *testing.T) {
		// "cat" must not count the "cat" inside "catalog".
		freq := WordFrequency("cat catalog cat")
		if freq["cat"] != 2 {
			t.Errorf("freq[cat] = %d, want 2", freq["cat"])
		}
		if freq["catalog"] != 1 {
			t.Errorf("freq[catalog] = %d, want 1", freq["catalog"])
		}
	})

	t.Run("empty input", func(t *testing.T) {
		if freq := WordFrequency(""); len(freq) != 0 {
			t.Errorf("expected empty map, got %v", freq)
		}
	})
}

func TestRemovePageBreaks(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"dashed marker", "page one ---PAGE-BREAK--- page two", "page one page two"},
		{"spaced marker", "a ---PAGE BREAK--- b", "a b"},
		{"bracket marker", "a [PAGE BREAK] b", "a b"},
		{"no markers", "plain text", "plain text"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RemovePageBreaks(tt.text); got != tt.want {
				t.Errorf("RemovePageBreaks(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestNormalizeForComparison(t *testing.T) {
	t.Run("strips punctuation and page breaks", func(t *testing.T) {
		got := NormalizeForComparison("Hello, World! ---PAGE-BREAK--- (End.)")
		if got != "hello world end" {
			t.Errorf("NormalizeForComparison() = %q, want %q", got, "hello world end")
		}
	})

	t.Run("keeps digits", func(t *testing.T) {
		got := NormalizeForComparison("Revenue: $1,234")
		if got != "revenue 1 234" {
			t.Errorf("NormalizeForComparison() = %q, want %q", got, "revenue 1 234")
		}
	})

	t.Run("empty input", func(t *testing.T) {
		if got := NormalizeForComparison(""); got != "" {
			t.Errorf("expected empty, got %q", got)
		}
	})
}
