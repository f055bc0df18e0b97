// Package types contains shared type definitions for indexer packages.
package types

import (
	"sort"

	"github.com/google/uuid"

	"github.com/seasonarr/seasonarr/internal/library/quality"
	"github.com/seasonarr/seasonarr/internal/library/scanner"
)

// Protocol represents the download protocol of a candidate.
type Protocol string

const (
	ProtocolTorrent Protocol = "torrent"
	ProtocolUsenet  Protocol = "usenet"
)

// Candidate is a single search result from one indexer, not yet committed to
// a download. Quality and Seasons are derived from the title at construction;
// Score is accumulated later by the scoring engine, which works on copies so
// search results stay free of aliasing.
type Candidate struct {
	ID          uuid.UUID       `json:"id"`
	Indexer     string          `json:"indexer"`
	Title       string          `json:"title"`
	DownloadURL string          `json:"downloadUrl"`
	Seeders     int             `json:"seeders"`
	Flags       []string        `json:"flags"`
	Size        int64           `json:"size"`
	Quality     quality.Quality `json:"quality"`
	Seasons     []int           `json:"seasons"`
	Protocol    Protocol        `json:"protocol"`
	AgeMinutes  int64           `json:"ageMinutes,omitempty"`
	Score       int             `json:"score"`
}

// NewCandidate builds a candidate with its derived fields filled in.
func NewCandidate(indexer, title, downloadURL string) Candidate {
	return Candidate{
		ID:          uuid.New(),
		Indexer:     indexer,
		Title:       title,
		DownloadURL: downloadURL,
		Quality:     quality.FromTitle(title),
		Seasons:     scanner.ParseSeasons(title),
		Protocol:    ProtocolTorrent,
	}
}

// CoversExactly reports whether the candidate covers precisely the one given
// season. Multi-season packs and wrong-season releases do not qualify.
func (c *Candidate) CoversExactly(season int) bool {
	return len(c.Seasons) == 1 && c.Seasons[0] == season
}

// Two comparison directions exist on purpose. Search ranking prefers
// well-seeded releases, so at equal quality more seeders sorts first. Request
// matching walks the acceptable candidates and prefers the smallest seeder
// count that still clears the threshold, so there the direction flips.

// SortForSearch orders candidates for search result ranking: quality
// descending, then seeders descending. The sort is stable so candidates that
// compare equal keep their indexer order.
func SortForSearch(candidates []Candidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Quality != candidates[j].Quality {
			return candidates[i].Quality > candidates[j].Quality
		}
		return candidates[i].Seeders > candidates[j].Seeders
	})
}

// SortForMatching orders candidates for winner selection: quality descending,
// then seeders ascending.
func SortForMatching(candidates []Candidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Quality != candidates[j].Quality {
			return candidates[i].Quality > candidates[j].Quality
		}
		return candidates[i].Seeders < candidates[j].Seeders
	})
}
