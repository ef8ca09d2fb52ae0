package domain

import (
	"testing"
	"time"
)

func TestScoreBookmark(t *testing.T) {
	tests := []struct {
		name           string
		queryStr       string
		title          string
		expectPositive bool
	}{
		{
			name:           "exact match",
			queryStr:       "the matrix",
			title:          "The Matrix",
			expectPositive: true,
		},
		{
			name:           "prefix match",
			queryStr:       "the mat",
			title:          "The Matrix",
			expectPositive: true,
		},
		{
			name:           "substring match",
			queryStr:       "matrix",
			title:          "The Matrix",
			expectPositive: true,
		},
		{
			name:           "no match",
			queryStr:       "xyz",
			title:          "The Matrix",
			expectPositive: false,
		},
		{
			name:           "multi-word match out of order",
			queryStr:       "bad breaking",
			title:          "Breaking Bad",
			expectPositive: true,
		},
		{
			name:           "empty query",
			queryStr:       "   ",
			title:          "The Matrix",
			expectPositive: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bookmark := &Bookmark{
				MediaID:   "603",
				MediaType: MediaMovie,
				Title:     tt.title,
			}

			score := ScoreBookmark(tt.queryStr, bookmark)

			if tt.expectPositive && score <= 0 {
				t.Errorf("Expected positive score, got %f", score)
			}

			if !tt.expectPositive && score > 0 {
				t.Errorf("Expected zero score, got %f", score)
			}
		})
	}
}

func TestScoreBookmarkOrdering(t *testing.T) {
	b := &Bookmark{Title: "Dune"}
	exact := ScoreBookmark("dune", b)

	b2 := &Bookmark{Title: "Dune: Part Two"}
	prefix := ScoreBookmark("dune", b2)

	b3 := &Bookmark{Title: "The Dune Chronicles"}
	substring := ScoreBookmark("dune", b3)

	if !(exact > prefix && prefix > substring) {
		t.Errorf("expected exact > prefix > substring, got %f, %f, %f", exact, prefix, substring)
	}
}

func TestRankBookmarks(t *testing.T) {
	now := time.Now()
	bookmarks := []Bookmark{
		{MediaID: "1", MediaType: MediaMovie, Title: "Alien", CreatedAt: now},
		{MediaID: "2", MediaType: MediaMovie, Title: "Aliens", CreatedAt: now},
		{MediaID: "3", MediaType: MediaTV, Title: "Succession", CreatedAt: now},
	}

	candidates := RankBookmarks("alien", bookmarks)
	if len(candidates) != 2 {
		t.Fatalf("RankBookmarks() returned %d candidates, want 2", len(candidates))
	}
	if candidates[0].Bookmark.MediaID != "1" {
		t.Errorf("top result = %s, want exact match 1", candidates[0].Bookmark.MediaID)
	}
}

func TestRankBookmarksTieBreaksOnRecency(t *testing.T) {
	now := time.Now()
	bookmarks := []Bookmark{
		{MediaID: "old", Title: "Heat", CreatedAt: now.Add(-time.Hour)},
		{MediaID: "new", Title: "Heat", CreatedAt: now},
	}

	candidates := RankBookmarks("heat", bookmarks)
	if len(candidates) != 2 {
		t.Fatalf("RankBookmarks() returned %d candidates, want 2", len(candidates))
	}
	if candidates[0].Bookmark.MediaID != "new" {
		t.Errorf("tie should favor most recent, got %s", candidates[0].Bookmark.MediaID)
	}
}
