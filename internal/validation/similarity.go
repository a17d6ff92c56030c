package validation

import (
	"fmt"
	"log/slog"
	"math"
	"strings"
)

// Similarity methods. number_frequency is the default: for tabular and
// financial documents the numeric content is the signal that matters, and
// it is immune to AI paraphrasing of the surrounding prose.
const (
	MethodNumberFrequency = "number_frequency"
	MethodWordOverlap     = "word_overlap"
	MethodCosine          = "cosine"
	MethodLevenshtein     = "levenshtein"
)

// ValidMethods lists the recognized similarity methods.
var ValidMethods = []string{
	MethodNumberFrequency,
	MethodWordOverlap,
	MethodCosine,
	MethodLevenshtein,
}

// UnknownMethodError is returned when an unrecognized similarity method is
// requested. It fails fast, before any computation.
type UnknownMethodError struct {
	Method string
}

func (e *UnknownMethodError) Error() string {
	return fmt.Sprintf("unknown similarity method: %s (valid options: %s, %s, %s, %s)",
		e.Method, MethodNumberFrequency, MethodWordOverlap, MethodCosine, MethodLevenshtein)
}

const (
	// levenshteinMaxLength truncates inputs before the O(n*m) edit-distance
	// pass. Longer inputs are silently truncated, not rejected.
	levenshteinMaxLength = 10000

	// reportLevenshteinLimit skips levenshtein entirely in the all-methods
	// report when either input exceeds it. Cost tradeoff, not correctness.
	reportLevenshteinLimit = 5000
)

// Calculator scores the similarity of two full-document texts on a [0,1]
// scale using one of four interchangeable methods.
type Calculator struct {
	logger *slog.Logger
}

// NewCalculator creates a similarity calculator.
func NewCalculator(logger *slog.Logger) *Calculator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Calculator{logger: logger}
}

// KnownMethod reports whether method names a supported similarity method.
// Matching is case-insensitive.
func KnownMethod(method string) bool {
	switch strings.ToLower(method) {
	case MethodNumberFrequency, MethodWordOverlap, MethodCosine, MethodLevenshtein:
		return true
	}
	return false
}

// Similarity computes a score in [0,1] between two texts. 1.0 means the
// texts are identical under the chosen method's lens; 0.0 means maximally
// dissimilar or a degenerate empty-vs-non-empty comparison. The method name
// is matched case-insensitively.
func (c *Calculator) Similarity(text1, text2, method string) (float64, error) {
	switch strings.ToLower(method) {
	case MethodNumberFrequency:
		return c.numberFrequencySimilarity(text1, text2), nil
	case MethodWordOverlap:
		return c.wordOverlapSimilarity(text1, text2), nil
	case MethodCosine:
		return c.cosineSimilarity(text1, text2), nil
	case MethodLevenshtein:
		return c.levenshteinSimilarity(text1, text2), nil
	default:
		return 0, &UnknownMethodError{Method: method}
	}
}

// Report runs all four methods. Levenshtein is reported as nil when either
// input exceeds reportLevenshteinLimit characters.
func (c *Calculator) Report(text1, text2 string) map[string]*float64 {
	report := map[string]*float64{
		MethodNumberFrequency: ptr(c.numberFrequencySimilarity(text1, text2)),
		MethodWordOverlap:     ptr(c.wordOverlapSimilarity(text1, text2)),
		MethodCosine:          ptr(c.cosineSimilarity(text1, text2)),
	}
	if len(text1) < reportLevenshteinLimit && len(text2) < reportLevenshteinLimit {
		report[MethodLevenshtein] = ptr(c.levenshteinSimilarity(text1, text2))
	} else {
		report[MethodLevenshtein] = nil
	}
	return report
}

func ptr(f float64) *float64 { return &f }

// numberFrequencySimilarity compares the frequency multisets of numbers
// extracted from each text using cosine similarity.
func (c *Calculator) numberFrequencySimilarity(text1, text2 string) float64 {
	numbers1 := ExtractNumbers(text1)
	numbers2 := ExtractNumbers(text2)

	if len(numbers1) == 0 && len(numbers2) == 0 {
		return 1.0 // vacuously identical
	}
	if len(numbers1) == 0 || len(numbers2) == 0 {
		return 0.0
	}

	freq1 := make(map[float64]int, len(numbers1))
	for _, n := range numbers1 {
		freq1[n]++
	}
	freq2 := make(map[float64]int, len(numbers2))
	for _, n := range numbers2 {
		freq2[n]++
	}

	score := cosineFromCounts(freq1, freq2)
	c.logger.Debug("number frequency similarity",
		"score", score, "numbers1", len(numbers1), "numbers2", len(numbers2))
	return score
}

// wordOverlapSimilarity is the Jaccard index over each text's key-term set.
func (c *Calculator) wordOverlapSimilarity(text1, text2 string) float64 {
	terms1 := ExtractKeyTerms(text1, 3)
	terms2 := ExtractKeyTerms(text2, 3)

	if len(terms1) == 0 && len(terms2) == 0 {
		return 1.0
	}
	if len(terms1) == 0 || len(terms2) == 0 {
		return 0.0
	}

	intersection := 0
	for t := range terms1 {
		if _, ok := terms2[t]; ok {
			intersection++
		}
	}
	union := len(terms1) + len(terms2) - intersection
	if union == 0 {
		return 0.0
	}
	return float64(intersection) / float64(union)
}

// cosineSimilarity compares full word-frequency vectors, weighting by
// repetition. Sensitive to emphasis and density differences that pure set
// overlap misses.
func (c *Calculator) cosineSimilarity(text1, text2 string) float64 {
	freq1 := WordFrequency(text1)
	freq2 := WordFrequency(text2)

	if len(freq1) == 0 && len(freq2) == 0 {
		return 1.0
	}
	if len(freq1) == 0 || len(freq2) == 0 {
		return 0.0
	}
	return cosineFromCounts(freq1, freq2)
}

// levenshteinSimilarity normalizes both texts, truncates to
// levenshteinMaxLength, and scores 1 - distance/maxLen.
func (c *Calculator) levenshteinSimilarity(text1, text2 string) float64 {
	r1 := []rune(NormalizeForComparison(text1))
	r2 := []rune(NormalizeForComparison(text2))

	if len(r1) > levenshteinMaxLength {
		r1 = r1[:levenshteinMaxLength]
		c.logger.Warn("levenshtein input truncated", "limit", levenshteinMaxLength)
	}
	if len(r2) > levenshteinMaxLength {
		r2 = r2[:levenshteinMaxLength]
		c.logger.Warn("levenshtein input truncated", "limit", levenshteinMaxLength)
	}

	if string(r1) == string(r2) {
		return 1.0
	}
	if len(r1) == 0 || len(r2) == 0 {
		return 0.0
	}

	distance := levenshtein(r1, r2)
	maxLen := len(r1)
	if len(r2) > maxLen {
		maxLen = len(r2)
	}
	return 1.0 - float64(distance)/float64(maxLen)
}

// LevenshteinDistance returns the edit distance between two strings,
// computed over runes.
func LevenshteinDistance(s1, s2 string) int {
	return levenshtein([]rune(s1), []rune(s2))
}

// levenshtein is the standard O(n*m) dynamic-programming recurrence with
// rolling two-row space optimization.
func levenshtein(s1, s2 []rune) int {
	if len(s1) < len(s2) {
		s1, s2 = s2, s1
	}
	if len(s2) == 0 {
		return len(s1)
	}

	previous := make([]int, len(s2)+1)
	current := make([]int, len(s2)+1)
	for j := range previous {
		previous[j] = j
	}

	for i, c1 := range s1 {
		current[0] = i + 1
		for j, c2 := range s2 {
			insertion := previous[j+1] + 1
			deletion := current[j] + 1
			substitution := previous[j]
			if c1 != c2 {
				substitution++
			}
			current[j+1] = min3(insertion, deletion, substitution)
		}
		previous, current = current, previous
	}
	return previous[len(s2)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}

// cosineFromCounts computes the cosine similarity of two frequency maps
// treated as vectors over the union of their keys. A zero-magnitude vector
// on either side yields 0.0 rather than dividing by zero.
func cosineFromCounts[K comparable](a, b map[K]int) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0.0
	}

	var dot, magA, magB float64
	for k, av := range a {
		magA += float64(av) * float64(av)
		if bv, ok := b[k]; ok {
			dot += float64(av) * float64(bv)
		}
	}
	for _, bv := range b {
		magB += float64(bv) * float64(bv)
	}

	if magA == 0 || magB == 0 {
		return 0.0
	}
	// Single square root keeps identical inputs at exactly 1.0.
	return dot / math.Sqrt(magA*magB)
}
