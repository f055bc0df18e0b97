package types

import (
	"testing"

	"github.com/seasonarr/seasonarr/internal/library/quality"
)

func TestNewCandidateDerivesFields(t *testing.T) {
	c := NewCandidate("prowlarr", "Some.Show.S02.1080p.WEB-DL", "http://example/dl")

	if c.ID.String() == "00000000-0000-0000-0000-000000000000" {
		t.Error("expected a generated ID")
	}
	if c.Quality != quality.FullHD {
		t.Errorf("quality = %v, want fullhd", c.Quality)
	}
	if len(c.Seasons) != 1 || c.Seasons[0] != 2 {
		t.Errorf("seasons = %v, want [2]", c.Seasons)
	}
	if c.Protocol != ProtocolTorrent {
		t.Errorf("protocol = %v, want torrent", c.Protocol)
	}
}

func TestCoversExactly(t *testing.T) {
	tests := []struct {
		title  string
		season int
		want   bool
	}{
		{"Show.S03.1080p", 3, true},
		{"Show.S03.1080p", 2, false},
		{"Show.S01.S05.1080p", 3, false},
		{"Show.Complete.1080p", 3, false},
	}
	for _, tt := range tests {
		c := NewCandidate("test", tt.title, "http://example/dl")
		if got := c.CoversExactly(tt.season); got != tt.want {
			t.Errorf("CoversExactly(%q, %d) = %v, want %v", tt.title, tt.season, got, tt.want)
		}
	}
}

func makeCandidate(title string, q quality.Quality, seeders int) Candidate {
	c := NewCandidate("test", title, "http://example/"+title)
	c.Quality = q
	c.Seeders = seeders
	return c
}

func titles(candidates []Candidate) []string {
	out := make([]string, len(candidates))
	for i, c := range candidates {
		out[i] = c.Title
	}
	return out
}

func TestSortForSearch(t *testing.T) {
	candidates := []Candidate{
		makeCandidate("hd-low", quality.HD, 3),
		makeCandidate("fullhd-low", quality.FullHD, 5),
		makeCandidate("fullhd-high", quality.FullHD, 80),
		makeCandidate("uhd", quality.UHD, 1),
	}
	SortForSearch(candidates)

	want := []string{"uhd", "fullhd-high", "fullhd-low", "hd-low"}
	for i, title := range titles(candidates) {
		if title != want[i] {
			t.Fatalf("order = %v, want %v", titles(candidates), want)
		}
	}
}

func TestSortForMatchingPrefersFewerSeeders(t *testing.T) {
	candidates := []Candidate{
		makeCandidate("fullhd-high", quality.FullHD, 80),
		makeCandidate("hd", quality.HD, 1),
		makeCandidate("fullhd-low", quality.FullHD, 5),
	}
	SortForMatching(candidates)

	want := []string{"fullhd-low", "fullhd-high", "hd"}
	for i, title := range titles(candidates) {
		if title != want[i] {
			t.Fatalf("order = %v, want %v", titles(candidates), want)
		}
	}
}

func TestSortStability(t *testing.T) {
	a := makeCandidate("first", quality.HD, 10)
	b := makeCandidate("second", quality.HD, 10)
	candidates := []Candidate{a, b}

	SortForSearch(candidates)
	if candidates[0].Title != "first" {
		t.Error("equal candidates must keep their input order")
	}
	SortForMatching(candidates)
	if candidates[0].Title != "first" {
		t.Error("equal candidates must keep their input order")
	}
}
