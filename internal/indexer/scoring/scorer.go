package scoring

import (
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/seasonarr/seasonarr/internal/indexer/types"
)

// Scorer evaluates scoring rules against search candidates.
type Scorer struct {
	config Config
	byName map[string]Rule
	logger zerolog.Logger
}

// NewScorer creates a scorer from the given config. Ruleset entries that
// reference an unknown rule name are logged and skipped at evaluation time.
func NewScorer(config Config, logger zerolog.Logger) *Scorer {
	byName := make(map[string]Rule, len(config.Rules))
	for _, rule := range config.Rules {
		byName[rule.Name] = rule
	}
	return &Scorer{
		config: config,
		byName: byName,
		logger: logger.With().Str("component", "scoring").Logger(),
	}
}

// NewDefaultScorer creates a scorer with the default ruleset.
func NewDefaultScorer(logger zerolog.Logger) *Scorer {
	return NewScorer(DefaultConfig(), logger)
}

// matches reports whether the rule's condition holds for the candidate.
// Negation is applied by the caller.
func (r Rule) matches(candidate types.Candidate) bool {
	if len(r.Keywords) == 0 && len(r.Flags) == 0 {
		return true
	}
	title := strings.ToLower(candidate.Title)
	for _, keyword := range r.Keywords {
		if strings.Contains(title, strings.ToLower(keyword)) {
			return true
		}
	}
	for _, flag := range r.Flags {
		for _, have := range candidate.Flags {
			if flag == have {
				return true
			}
		}
	}
	return false
}

// applies reports whether the ruleset is bound to the given library.
func (rs RuleSet) applies(library string, isTV bool) bool {
	for _, bound := range rs.Libraries {
		if bound == library {
			return true
		}
		if isTV && bound == LibraryAllTV {
			return true
		}
		if !isTV && bound == LibraryAllMovies {
			return true
		}
	}
	return false
}

// scoreCandidate returns the summed delta of every applicable rule.
func (s *Scorer) scoreCandidate(candidate types.Candidate, library string, isTV bool) int {
	score := 0
	for _, ruleset := range s.config.RuleSets {
		if !ruleset.applies(library, isTV) {
			continue
		}
		for _, name := range ruleset.RuleNames {
			rule, ok := s.byName[name]
			if !ok {
				s.logger.Warn().
					Str("ruleset", ruleset.Name).
					Str("rule", name).
					Msg("Ruleset references unknown rule, skipping")
				continue
			}
			if rule.matches(candidate) != rule.Negate {
				score += rule.Score
			}
		}
	}
	return score
}

// Score evaluates all rulesets bound to the library against the candidates
// and returns scored copies, sorted by score descending with quality and
// seeders as tie-breaks. Candidates whose final score is not positive are
// dropped.
func (s *Scorer) Score(candidates []types.Candidate, library string, isTV bool) []types.Candidate {
	scored := make([]types.Candidate, 0, len(candidates))
	for _, candidate := range candidates {
		candidate.Score = s.scoreCandidate(candidate, library, isTV)
		if candidate.Score <= 0 {
			s.logger.Debug().
				Str("title", candidate.Title).
				Int("score", candidate.Score).
				Msg("Dropping candidate with non-positive score")
			continue
		}
		scored = append(scored, candidate)
	}

	types.SortForSearch(scored)
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	return scored
}
