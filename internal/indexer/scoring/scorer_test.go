package scoring

import (
	"testing"

	"github.com/rs/zerolog"

	"github.com/seasonarr/seasonarr/internal/indexer/types"
)

func testScorer(cfg Config) *Scorer {
	return NewScorer(cfg, zerolog.Nop())
}

func candidate(title string, seeders int, flags ...string) types.Candidate {
	c := types.NewCandidate("test", title, "http://example/dl")
	c.Seeders = seeders
	c.Flags = flags
	return c
}

func TestScoreKeywordRules(t *testing.T) {
	cfg := Config{
		Rules: []Rule{
			{Name: "base", Score: 50},
			{Name: "web", Keywords: []string{"WEB-DL"}, Score: 20},
			{Name: "cam", Keywords: []string{"cam"}, Score: -1000},
		},
		RuleSets: []RuleSet{
			{Name: "tv", RuleNames: []string{"base", "web", "cam"}, Libraries: []string{LibraryAllTV}},
		},
	}
	scorer := testScorer(cfg)

	scored := scorer.Score([]types.Candidate{
		candidate("Show.S01.1080p.WEB-DL.x264", 10),
		candidate("Show.S01.1080p.HDTV.x264", 10),
		candidate("Show.S01.CAM.x264", 200),
	}, "shows", true)

	if len(scored) != 2 {
		t.Fatalf("expected 2 surviving candidates, got %d", len(scored))
	}
	if scored[0].Score != 70 {
		t.Errorf("expected WEB-DL candidate score 70, got %d", scored[0].Score)
	}
	if scored[1].Score != 50 {
		t.Errorf("expected HDTV candidate score 50, got %d", scored[1].Score)
	}
}

func TestScoreKeywordMatchIsCaseInsensitive(t *testing.T) {
	cfg := Config{
		Rules:    []Rule{{Name: "web", Keywords: []string{"web-dl"}, Score: 10}},
		RuleSets: []RuleSet{{Name: "tv", RuleNames: []string{"web"}, Libraries: []string{LibraryAllTV}}},
	}
	scorer := testScorer(cfg)

	scored := scorer.Score([]types.Candidate{candidate("Show.S01.WEB-DL", 1)}, "shows", true)
	if len(scored) != 1 || scored[0].Score != 10 {
		t.Errorf("expected case-insensitive keyword match with score 10, got %+v", scored)
	}
}

func TestScoreFlagRules(t *testing.T) {
	cfg := Config{
		Rules: []Rule{
			{Name: "base", Score: 10},
			{Name: "freeleech", Flags: []string{"freeleech"}, Score: 15},
		},
		RuleSets: []RuleSet{
			{Name: "tv", RuleNames: []string{"base", "freeleech"}, Libraries: []string{LibraryAllTV}},
		},
	}
	scorer := testScorer(cfg)

	scored := scorer.Score([]types.Candidate{
		candidate("Show.S01.1080p", 5, "freeleech"),
		candidate("Show.S01.720p", 5),
	}, "shows", true)

	if len(scored) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(scored))
	}
	if scored[0].Score != 25 {
		t.Errorf("expected freeleech candidate score 25, got %d", scored[0].Score)
	}
	if scored[1].Score != 10 {
		t.Errorf("expected plain candidate score 10, got %d", scored[1].Score)
	}
}

func TestScoreNegatedRule(t *testing.T) {
	cfg := Config{
		Rules: []Rule{
			{Name: "base", Score: 50},
			{Name: "no-group", Keywords: []string{"-"}, Negate: true, Score: -30},
		},
		RuleSets: []RuleSet{
			{Name: "tv", RuleNames: []string{"base", "no-group"}, Libraries: []string{LibraryAllTV}},
		},
	}
	scorer := testScorer(cfg)

	scored := scorer.Score([]types.Candidate{
		candidate("Show.S01.1080p.WEB-DL", 1),
		candidate("Show S01 1080p", 1),
	}, "shows", true)

	if len(scored) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(scored))
	}
	// The negated rule penalizes the title without a group separator.
	if scored[0].Score != 50 || scored[0].Title != "Show.S01.1080p.WEB-DL" {
		t.Errorf("expected grouped release first at 50, got %q at %d", scored[0].Title, scored[0].Score)
	}
	if scored[1].Score != 20 {
		t.Errorf("expected ungrouped release score 20, got %d", scored[1].Score)
	}
}

func TestScoreDropsNonPositive(t *testing.T) {
	cfg := Config{
		Rules:    []Rule{{Name: "fixed", Score: 0}},
		RuleSets: []RuleSet{{Name: "tv", RuleNames: []string{"fixed"}, Libraries: []string{LibraryAllTV}}},
	}

	// A score of exactly zero is dropped; only strictly positive survives.
	tests := []struct {
		name     string
		score    int
		survives bool
	}{
		{"negative", -1, false},
		{"zero", 0, false},
		{"one", 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg.Rules[0].Score = tt.score
			scorer := testScorer(cfg)
			scored := scorer.Score([]types.Candidate{candidate("Show.S01", 1)}, "shows", true)
			if survived := len(scored) == 1; survived != tt.survives {
				t.Errorf("score %d: survived=%v, want %v", tt.score, survived, tt.survives)
			}
		})
	}
}

func TestScoreLibraryBinding(t *testing.T) {
	cfg := Config{
		Rules: []Rule{
			{Name: "base", Score: 10},
			{Name: "anime-bonus", Score: 5},
		},
		RuleSets: []RuleSet{
			{Name: "tv", RuleNames: []string{"base"}, Libraries: []string{LibraryAllTV}},
			{Name: "anime", RuleNames: []string{"anime-bonus"}, Libraries: []string{"anime"}},
		},
	}
	scorer := testScorer(cfg)

	anime := scorer.Score([]types.Candidate{candidate("Show.S01", 1)}, "anime", true)
	if len(anime) != 1 || anime[0].Score != 15 {
		t.Errorf("expected anime library to get both rulesets (15), got %+v", anime)
	}

	shows := scorer.Score([]types.Candidate{candidate("Show.S01", 1)}, "shows", true)
	if len(shows) != 1 || shows[0].Score != 10 {
		t.Errorf("expected shows library to get the wildcard ruleset only (10), got %+v", shows)
	}

	movies := scorer.Score([]types.Candidate{candidate("Movie.2024", 1)}, "movies", false)
	if len(movies) != 0 {
		t.Errorf("expected movie candidate to match no ruleset and be dropped, got %+v", movies)
	}
}

func TestScoreUnknownRuleNameSkipped(t *testing.T) {
	cfg := Config{
		Rules: []Rule{{Name: "base", Score: 10}},
		RuleSets: []RuleSet{
			{Name: "tv", RuleNames: []string{"base", "does-not-exist"}, Libraries: []string{LibraryAllTV}},
		},
	}
	scorer := testScorer(cfg)

	scored := scorer.Score([]types.Candidate{candidate("Show.S01", 1)}, "shows", true)
	if len(scored) != 1 || scored[0].Score != 10 {
		t.Errorf("expected unknown rule to be skipped with score 10, got %+v", scored)
	}
}

func TestScoreSortsByScoreThenQualityThenSeeders(t *testing.T) {
	cfg := Config{
		Rules: []Rule{
			{Name: "base", Score: 10},
			{Name: "web", Keywords: []string{"web-dl"}, Score: 20},
		},
		RuleSets: []RuleSet{
			{Name: "tv", RuleNames: []string{"base", "web"}, Libraries: []string{LibraryAllTV}},
		},
	}
	scorer := testScorer(cfg)

	scored := scorer.Score([]types.Candidate{
		candidate("Show.S01.720p", 99),
		candidate("Show.S01.1080p.WEB-DL", 1),
		candidate("Show.S01.1080p", 5),
		candidate("Show.S01.720p.WEB-DL", 3),
	}, "shows", true)

	if len(scored) != 4 {
		t.Fatalf("expected 4 candidates, got %d", len(scored))
	}

	wantOrder := []string{
		"Show.S01.1080p.WEB-DL", // score 30, fullhd
		"Show.S01.720p.WEB-DL",  // score 30, hd
		"Show.S01.1080p",        // score 10, fullhd
		"Show.S01.720p",         // score 10, hd
	}
	for i, want := range wantOrder {
		if scored[i].Title != want {
			t.Errorf("position %d: got %q, want %q", i, scored[i].Title, want)
		}
	}
}

func TestScoreDoesNotMutateInput(t *testing.T) {
	scorer := NewDefaultScorer(zerolog.Nop())
	input := []types.Candidate{candidate("Show.S01.1080p.WEB-DL", 10)}
	_ = scorer.Score(input, "shows", true)
	if input[0].Score != 0 {
		t.Errorf("input candidate mutated: score %d", input[0].Score)
	}
}
