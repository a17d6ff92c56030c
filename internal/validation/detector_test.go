package validation

import (
	"strings"
	"testing"

	"github.com/jackzampolin/docvet/internal/extract"
)

func containsProblem(problems []Problem, want Problem) bool {
	for _, p := range problems {
		if p == want {
			return true
		}
	}
	return false
}

// goodPage builds content long enough to pass the density, word-count, and
// punctuation checks.
func goodPage() string {
	var b strings.Builder
	for i := 0; i < 20; i++ {
		b.WriteString("The quarterly revenue increased by twelve percent this year. ")
	}
	return b.String()
}

func TestDetectSection(t *testing.T) {
	d := NewDetector(nil)

	t.Run("clean content has no problems", func(t *testing.T) {
		problems := d.DetectSection(extract.Section{PageNumber: 1, Content: goodPage()})
		if len(problems) != 0 {
			t.Errorf("expected no problems, got %v", problems)
		}
	})

	t.Run("short page reports density and word count", func(t *testing.T) {
		problems := d.DetectSection(extract.Section{PageNumber: 1, Content: "Hi."})
		if !containsProblem(problems, ProblemLowContentDensity) {
			t.Errorf("expected low_content_density in %v", problems)
		}
		if !containsProblem(problems, ProblemLowWordCount) {
			t.Errorf("expected low_word_count in %v", problems)
		}
	})

	t.Run("table without digits reports missing numbers", func(t *testing.T) {
		problems := d.DetectSection(extract.Section{PageNumber: 1, Content: "TABLE\n| a | b |\n"})
		if !containsProblem(problems, ProblemMissingNumbers) {
			t.Errorf("expected missing_numbers in %v", problems)
		}
	})

	t.Run("table with digits passes number check", func(t *testing.T) {
		problems := d.DetectSection(extract.Section{PageNumber: 1, Content: "TABLE\n| a | 42 |\n"})
		if containsProblem(problems, ProblemMissingNumbers) {
			t.Errorf("did not expect missing_numbers in %v", problems)
		}
	})

	t.Run("repeated characters", func(t *testing.T) {
		content := goodPage() + "xxxxxxxxxxxx"
		problems := d.DetectSection(extract.Section{PageNumber: 1, Content: content})
		if !containsProblem(problems, ProblemRepeatedCharacters) {
			t.Errorf("expected repeated_characters in %v", problems)
		}
	})

	t.Run("ten repeats is below the glitch threshold", func(t *testing.T) {
		content := goodPage() + strings.Repeat("x", 10)
		problems := d.DetectSection(extract.Section{PageNumber: 1, Content: content})
		if containsProblem(problems, ProblemRepeatedCharacters) {
			t.Errorf("did not expect repeated_characters in %v", problems)
		}
	})

	t.Run("eleven repeats crosses the glitch threshold", func(t *testing.T) {
		content := goodPage() + strings.Repeat("x", 11)
		problems := d.DetectSection(extract.Section{PageNumber: 1, Content: content})
		if !containsProblem(problems, ProblemRepeatedCharacters) {
			t.Errorf("expected repeated_characters in %v", problems)
		}
	})

	t.Run("eleven repeats with no surrounding text", func(t *testing.T) {
		problems := d.DetectSection(extract.Section{PageNumber: 1, Content: strings.Repeat("x", 11)})
		if !containsProblem(problems, ProblemRepeatedCharacters) {
			t.Errorf("expected repeated_characters in %v", problems)
		}
	})

	t.Run("gibberish", func(t *testing.T) {
		// 12 words of length >= 4, all vowel-free.
		content := strings.Repeat("xkcd bzzt qrst ", 4)
		problems := d.DetectSection(extract.Section{PageNumber: 1, Content: content})
		if !containsProblem(problems, ProblemHighGibberish) {
			t.Errorf("expected high_gibberish in %v", problems)
		}
	})

	t.Run("suspicious control characters", func(t *testing.T) {
		content := goodPage() + "\x01\x02"
		problems := d.DetectSection(extract.Section{PageNumber: 1, Content: content})
		if !containsProblem(problems, ProblemSuspiciousChars) {
			t.Errorf("expected suspicious_characters in %v", problems)
		}
	})

	t.Run("tab and newline are not suspicious", func(t *testing.T) {
		content := goodPage() + "\tcolumn\nrow"
		problems := d.DetectSection(extract.Section{PageNumber: 1, Content: content})
		if containsProblem(problems, ProblemSuspiciousChars) {
			t.Errorf("did not expect suspicious_characters in %v", problems)
		}
	})

	t.Run("replacement character run", func(t *testing.T) {
		content := goodPage() + "��"
		problems := d.DetectSection(extract.Section{PageNumber: 1, Content: content})
		if !containsProblem(problems, ProblemSuspiciousChars) {
			t.Errorf("expected suspicious_characters in %v", problems)
		}
	})

	t.Run("ragged table columns", func(t *testing.T) {
		content := goodPage() + "\n| a | b |\n| c |\n| d | e | f | g |\n"
		problems := d.DetectSection(extract.Section{PageNumber: 1, Content: content})
		if !containsProblem(problems, ProblemIncompleteTables) {
			t.Errorf("expected incomplete_tables in %v", problems)
		}
	})

	t.Run("header and body variation is tolerated", func(t *testing.T) {
		content := goodPage() + "\n| h1 | h2 | 1 |\n| a |\n| b |\n"
		problems := d.DetectSection(extract.Section{PageNumber: 1, Content: content})
		if containsProblem(problems, ProblemIncompleteTables) {
			t.Errorf("did not expect incomplete_tables in %v", problems)
		}
	})

	t.Run("excessive spaces", func(t *testing.T) {
		content := goodPage() + strings.Repeat(" ", 25) + "tail"
		problems := d.DetectSection(extract.Section{PageNumber: 1, Content: content})
		if !containsProblem(problems, ProblemExcessiveWhitespace) {
			t.Errorf("expected excessive_whitespace in %v", problems)
		}
	})

	t.Run("excessive blank lines", func(t *testing.T) {
		content := goodPage() + strings.Repeat("x\n\n\n", 6)
		problems := d.DetectSection(extract.Section{PageNumber: 1, Content: content})
		if !containsProblem(problems, ProblemExcessiveWhitespace) {
			t.Errorf("expected excessive_whitespace in %v", problems)
		}
	})

	t.Run("mojibake markers", func(t *testing.T) {
		content := goodPage() + "Itâ€™s here"
		problems := d.DetectSection(extract.Section{PageNumber: 1, Content: content})
		if !containsProblem(problems, ProblemEncodingIssues) {
			t.Errorf("expected encoding_issues in %v", problems)
		}
	})

	t.Run("missing punctuation", func(t *testing.T) {
		content := strings.Repeat("word another thing value item piece ", 20)
		problems := d.DetectSection(extract.Section{PageNumber: 1, Content: content})
		if !containsProblem(problems, ProblemMissingPunctuation) {
			t.Errorf("expected missing_punctuation in %v", problems)
		}
	})

	t.Run("empty content never panics", func(t *testing.T) {
		problems := d.DetectSection(extract.Section{PageNumber: 1, Content: ""})
		if !containsProblem(problems, ProblemLowContentDensity) {
			t.Errorf("expected low_content_density in %v", problems)
		}
		if !containsProblem(problems, ProblemLowWordCount) {
			t.Errorf("expected low_word_count in %v", problems)
		}
	})
}

func TestDetectBatch(t *testing.T) {
	d := NewDetector(nil)

	t.Run("only problem pages are reported", func(t *testing.T) {
		sections := []extract.Section{
			{PageNumber: 1, Content: goodPage()},
			{PageNumber: 2, Content: "x"},
			{PageNumber: 3, Content: goodPage()},
			{PageNumber: 5, Content: "TABLE\n| a | b |\n"},
		}
		report := d.DetectBatch(sections)

		if len(report) != 2 {
			t.Fatalf("expected 2 problem pages, got %d: %v", len(report), report)
		}
		if _, ok := report[2]; !ok {
			t.Error("expected page 2 in report")
		}
		if _, ok := report[5]; !ok {
			t.Error("expected page 5 in report")
		}
	})

	t.Run("empty batch", func(t *testing.T) {
		if report := d.DetectBatch(nil); len(report) != 0 {
			t.Errorf("expected empty report, got %v", report)
		}
	})

	t.Run("problem types are aggregated and sorted", func(t *testing.T) {
		report := Report{
			1: {ProblemLowWordCount, ProblemLowContentDensity},
			2: {ProblemLowWordCount, ProblemMissingNumbers},
		}
		types := report.ProblemTypes()
		want := []Problem{ProblemLowContentDensity, ProblemLowWordCount, ProblemMissingNumbers}
		if len(types) != len(want) {
			t.Fatalf("ProblemTypes() = %v, want %v", types, want)
		}
		for i := range want {
			if types[i] != want[i] {
				t.Errorf("ProblemTypes()[%d] = %s, want %s", i, types[i], want[i])
			}
		}
	})
}
