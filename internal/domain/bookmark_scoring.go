package domain

import (
	"sort"
	"strings"
)

// BookmarkCandidate represents a bookmark with its title match score
type BookmarkCandidate struct {
	Bookmark Bookmark `json:"bookmark"`
	Score    float64  `json:"score"`
}

// ScoreBookmark calculates how well a bookmark title matches a query string
func ScoreBookmark(queryStr string, bookmark *Bookmark) float64 {
	if bookmark == nil {
		return 0.0
	}

	queryStr = normalizeText(queryStr)
	title := normalizeText(bookmark.Title)
	if queryStr == "" || title == "" {
		return 0.0
	}

	// Exact match (highest score)
	if queryStr == title {
		return ScoreExactMatch + ScoreExactTitleBonus
	}

	// Prefix match
	if strings.HasPrefix(title, queryStr) {
		return ScorePrefixMatch
	}

	// Substring match, earlier is better
	if index := strings.Index(title, queryStr); index >= 0 {
		substringBonus := ScorePositionBonus * (1.0 - float64(index)/float64(len(title)))
		return ScoreSubstringMatch + substringBonus
	}

	// Every query word appears somewhere in the title
	queryWords := strings.Fields(queryStr)
	if len(queryWords) > 1 {
		allMatch := true
		for _, word := range queryWords {
			if !strings.Contains(title, word) {
				allMatch = false
				break
			}
		}
		if allMatch {
			return ScoreFuzzyMatch
		}
	}

	similarity := calculateSimilarity(queryStr, title)
	if similarity > minSimilarity {
		return ScoreFuzzyMatch * similarity
	}

	return 0.0
}

// RankBookmarks returns the bookmarks matching queryStr, best first.
// Ties go to the most recently created bookmark.
func RankBookmarks(queryStr string, bookmarks []Bookmark) []BookmarkCandidate {
	candidates := make([]BookmarkCandidate, 0, len(bookmarks))

	for i := range bookmarks {
		score := ScoreBookmark(queryStr, &bookmarks[i])
		if score == 0.0 {
			continue
		}
		candidates = append(candidates, BookmarkCandidate{
			Bookmark: bookmarks[i],
			Score:    score,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].Bookmark.CreatedAt.After(candidates[j].Bookmark.CreatedAt)
	})

	return candidates
}
