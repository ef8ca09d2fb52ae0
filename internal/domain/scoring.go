package domain

import (
	"strings"
)

const (
	// Scoring weights
	ScoreExactMatch     = 100.0
	ScorePrefixMatch    = 75.0
	ScoreSubstringMatch = 50.0
	ScoreFuzzyMatch     = 25.0

	// Position bonus (earlier is better)
	ScorePositionBonus = 10.0

	// Exact title match bonus (huge boost)
	ScoreExactTitleBonus = 200.0

	// minSimilarity is the character-overlap ratio below which a
	// fuzzy match is discarded.
	minSimilarity = 0.5
)

// normalizeText lowercases and collapses whitespace.
func normalizeText(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// calculateSimilarity calculates fuzzy similarity between two strings
func calculateSimilarity(s1, s2 string) float64 {
	if s1 == "" || s2 == "" {
		return 0.0
	}

	// Simple similarity: ratio of matching characters
	matches := 0
	total := 0
	for _, c := range s1 {
		if c == ' ' {
			continue
		}
		total++
		if strings.ContainsRune(s2, c) {
			matches++
		}
	}
	if total == 0 {
		return 0.0
	}

	return float64(matches) / float64(total)
}
