package validation

import (
	"regexp"
	"strconv"
	"strings"
)

// Text normalization utilities used by the similarity calculator and the
// problem detector. All functions are total: empty input produces an empty
// result, never an error.

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	numberRe     = regexp.MustCompile(`-?\d+(?:,\d{3})*(?:\.\d+)?%?`)
	keyTermRe    = regexp.MustCompile(`\b[a-z0-9]+\b`)
	wordRe       = regexp.MustCompile(`[\p{L}\p{N}_]+`)
	nonAlnumRe   = regexp.MustCompile(`[^a-z0-9\s]`)
)

// pageBreakMarkers are the literal page-break separators providers insert
// between page contents.
var pageBreakMarkers = []string{
	"---PAGE-BREAK---",
	"---PAGE BREAK---",
	"[PAGE BREAK]",
}

// NormalizeText lowercases (unless preserveCase), collapses all whitespace
// runs (including CR/LF) to single spaces, and trims.
func NormalizeText(text string, preserveCase bool) string {
	if text == "" {
		return ""
	}
	if !preserveCase {
		text = strings.ToLower(text)
	}
	text = whitespaceRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// ExtractNumbers scans text for numeric tokens: optional leading minus,
// digit groups with optional comma thousands separators, optional decimal
// fraction, optional trailing percent sign. Commas and the percent sign are
// stripped before parsing; tokens that still fail to parse are skipped.
// Encounter order and duplicates are preserved.
func ExtractNumbers(text string) []float64 {
	if text == "" {
		return nil
	}
	matches := numberRe.FindAllString(text, -1)
	numbers := make([]float64, 0, len(matches))
	for _, m := range matches {
		clean := strings.ReplaceAll(m, ",", "")
		clean = strings.TrimSuffix(clean, "%")
		n, err := strconv.ParseFloat(clean, 64)
		if err != nil {
			continue
		}
		numbers = append(numbers, n)
	}
	return numbers
}

// ExtractKeyTerms normalizes text and returns the set of alphanumeric runs
// with length >= minLength.
func ExtractKeyTerms(text string, minLength int) map[string]struct{} {
	terms := make(map[string]struct{})
	if text == "" {
		return terms
	}
	normalized := NormalizeText(text, false)
	for _, w := range keyTermRe.FindAllString(normalized, -1) {
		if len(w) >= minLength {
			terms[w] = struct{}{}
		}
	}
	return terms
}

// WordFrequency counts whole-word occurrences of each key term in the
// normalized text.
func WordFrequency(text string) map[string]int {
	freq := make(map[string]int)
	if text == "" {
		return freq
	}
	terms := ExtractKeyTerms(text, 3)
	if len(terms) == 0 {
		return freq
	}
	normalized := NormalizeText(text, false)
	for _, tok := range wordRe.FindAllString(normalized, -1) {
		if _, ok := terms[tok]; ok {
			freq[tok]++
		}
	}
	return freq
}

// RemovePageBreaks strips literal page-break markers and collapses the
// surrounding whitespace.
func RemovePageBreaks(text string) string {
	if text == "" {
		return ""
	}
	for _, marker := range pageBreakMarkers {
		text = strings.ReplaceAll(text, marker, " ")
	}
	text = whitespaceRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// NormalizeForComparison produces the canonical form fed to expensive
// comparisons: page breaks removed, lowercased, whitespace collapsed, and
// everything outside [a-z0-9 ] stripped.
func NormalizeForComparison(text string) string {
	if text == "" {
		return ""
	}
	text = RemovePageBreaks(text)
	text = NormalizeText(text, false)
	text = nonAlnumRe.ReplaceAllString(text, " ")
	text = whitespaceRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
