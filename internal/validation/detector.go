package validation

import (
	"log/slog"
	"regexp"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/jackzampolin/docvet/internal/extract"
)

// Problem identifies one quality-defect category a page's extracted text
// can exhibit.
type Problem string

const (
	ProblemLowContentDensity   Problem = "low_content_density"
	ProblemMissingNumbers      Problem = "missing_numbers"
	ProblemRepeatedCharacters  Problem = "repeated_characters"
	ProblemLowWordCount        Problem = "low_word_count"
	ProblemHighGibberish       Problem = "high_gibberish"
	ProblemSuspiciousChars     Problem = "suspicious_characters"
	ProblemIncompleteTables    Problem = "incomplete_tables"
	ProblemExcessiveWhitespace Problem = "excessive_whitespace"
	ProblemEncodingIssues      Problem = "encoding_issues"
	ProblemMissingPunctuation  Problem = "missing_punctuation"
)

// Report maps page numbers to the problems detected on that page.
// Pages without problems are absent.
type Report map[int][]Problem

// ProblemTypes returns the distinct problem kinds across all pages, sorted.
func (r Report) ProblemTypes() []Problem {
	seen := make(map[Problem]struct{})
	for _, problems := range r {
		for _, p := range problems {
			seen[p] = struct{}{}
		}
	}
	types := make([]Problem, 0, len(seen))
	for p := range seen {
		types = append(types, p)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

// Detector thresholds. Tuning knobs, not structural to the checks.
const (
	minContentLength  = 100 // characters per page
	maxRepeatedChars  = 10  // consecutive identical characters
	minWordCount      = 20  // words per page
	maxGibberishRatio = 0.3 // gibberish words / total words
)

var (
	digitRe          = regexp.MustCompile(`\d`)
	letterWordRe     = regexp.MustCompile(`\b[a-zA-Z]{4,}\b`)
	vowelRe          = regexp.MustCompile(`[aeiou]`)
	consonantRunRe   = regexp.MustCompile(`[bcdfghjklmnpqrstvwxyz]{5,}`)
	nonASCIIRunRe    = regexp.MustCompile(`[^\x00-\x7F]{5,}`)
	replacementRunRe = regexp.MustCompile(`\x{FFFD}{2,}`)
	controlCharRe    = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F]`)
	spaceRunRe       = regexp.MustCompile(` {20,}`)
	punctuationRe    = regexp.MustCompile(`[.,!?;:]`)
)

// encodingErrorMarkers are byte sequences produced by mis-decoding UTF-8 as
// a single-byte codepage (smart quotes, accented characters).
var encodingErrorMarkers = []string{
	"â€™",
	"â€œ",
	"â€",
	"Ã©",
	"Ã¨",
}

// Detector scans extracted page content for quality defects. Stateless;
// safe for concurrent use.
type Detector struct {
	logger *slog.Logger
}

// NewDetector creates a problem detector.
func NewDetector(logger *slog.Logger) *Detector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Detector{logger: logger}
}

// DetectBatch analyzes every section concurrently and returns a Report
// containing only pages with at least one detected problem. Sections have
// no data dependency on each other; results are recombined positionally.
func (d *Detector) DetectBatch(sections []extract.Section) Report {
	report := make(Report)
	if len(sections) == 0 {
		return report
	}

	results := make([][]Problem, len(sections))
	var wg sync.WaitGroup
	for i := range sections {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = d.DetectSection(sections[i])
		}(i)
	}
	wg.Wait()

	for i, problems := range results {
		if len(problems) > 0 {
			report[sections[i].PageNumber] = problems
		}
	}

	d.logger.Debug("problem detection complete",
		"sections", len(sections), "pages_with_problems", len(report))
	return report
}

// DetectSection runs all ten checks against one section's content. The
// checks are independent and order-insensitive; a page may report 0-10
// problems. Never fails, even on degenerate input.
func (d *Detector) DetectSection(section extract.Section) []Problem {
	var problems []Problem
	content := section.Content

	if isLowContentDensity(content) {
		problems = append(problems, ProblemLowContentDensity)
	}
	if hasMissingNumbers(content) {
		problems = append(problems, ProblemMissingNumbers)
	}
	if hasRepeatedCharacters(content) {
		problems = append(problems, ProblemRepeatedCharacters)
	}
	if isLowWordCount(content) {
		problems = append(problems, ProblemLowWordCount)
	}
	if hasHighGibberish(content) {
		problems = append(problems, ProblemHighGibberish)
	}
	if hasSuspiciousCharacters(content) {
		problems = append(problems, ProblemSuspiciousChars)
	}
	if hasIncompleteTables(content) {
		problems = append(problems, ProblemIncompleteTables)
	}
	if hasExcessiveWhitespace(content) {
		problems = append(problems, ProblemExcessiveWhitespace)
	}
	if hasEncodingIssues(content) {
		problems = append(problems, ProblemEncodingIssues)
	}
	if hasMissingPunctuation(content) {
		problems = append(problems, ProblemMissingPunctuation)
	}

	if len(problems) > 0 {
		d.logger.Debug("page problems detected",
			"page", section.PageNumber, "problems", problems)
	}
	return problems
}

func isLowContentDensity(content string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(content)) < minContentLength
}

func hasMissingNumbers(content string) bool {
	hasTableMarkers := strings.Contains(content, "|") ||
		strings.Contains(strings.ToUpper(content), "TABLE")
	if !hasTableMarkers {
		return false
	}
	return !digitRe.MatchString(content)
}

// hasRepeatedCharacters looks for a single rune repeated more than
// maxRepeatedChars times consecutively, the signature of an extraction
// glitch. Implemented as a scan because RE2 has no backreferences.
func hasRepeatedCharacters(content string) bool {
	var prev rune
	run := 0
	for _, r := range content {
		if r == prev {
			run++
		} else {
			prev = r
			run = 1
		}
		if run > maxRepeatedChars {
			return true
		}
	}
	return false
}

func isLowWordCount(content string) bool {
	return len(wordRe.FindAllString(content, -1)) < minWordCount
}

// hasHighGibberish flags pages where too many words of length >= 4 either
// contain no vowel or contain a run of 5+ consonants. Known false-positive
// source for acronym-heavy and non-English text.
func hasHighGibberish(content string) bool {
	words := letterWordRe.FindAllString(content, -1)
	if len(words) < 10 {
		return false
	}
	gibberish := 0
	for _, w := range words {
		lower := strings.ToLower(w)
		if !vowelRe.MatchString(lower) && len(w) > 3 {
			gibberish++
		} else if consonantRunRe.MatchString(lower) {
			gibberish++
		}
	}
	return float64(gibberish)/float64(len(words)) > maxGibberishRatio
}

func hasSuspiciousCharacters(content string) bool {
	return nonASCIIRunRe.MatchString(content) ||
		replacementRunRe.MatchString(content) ||
		controlCharRe.MatchString(content)
}

// hasIncompleteTables flags table-marked content whose pipe-delimited lines
// show more than 2 distinct pipe counts. Two distinct counts are tolerated
// as header/body variation.
func hasIncompleteTables(content string) bool {
	if !strings.Contains(strings.ToUpper(content), "TABLE") &&
		!strings.Contains(content, "|") {
		return false
	}

	var tableLines []string
	for _, line := range strings.Split(content, "\n") {
		if strings.Contains(line, "|") {
			tableLines = append(tableLines, line)
		}
	}
	if len(tableLines) < 2 {
		return false
	}

	counts := make(map[int]struct{})
	for _, line := range tableLines {
		counts[strings.Count(line, "|")] = struct{}{}
	}
	return len(counts) > 2
}

func hasExcessiveWhitespace(content string) bool {
	if spaceRunRe.MatchString(content) {
		return true
	}
	return strings.Count(content, "\n\n\n") > 5
}

func hasEncodingIssues(content string) bool {
	for _, marker := range encodingErrorMarkers {
		if strings.Contains(content, marker) {
			return true
		}
	}
	return false
}

func hasMissingPunctuation(content string) bool {
	words := wordRe.FindAllString(content, -1)
	if len(words) < 50 {
		return false
	}
	punctuation := punctuationRe.FindAllString(content, -1)
	expected := float64(len(words)) / 30
	return float64(len(punctuation)) < expected
}
