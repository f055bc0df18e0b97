// Package scoring provides rule-based desirability scoring for indexer
// search results. Rules are named and grouped into rulesets bound to
// libraries; a candidate's score is the sum of every applicable rule delta.
package scoring

// Library wildcard bindings. A ruleset bound to one of these applies to
// every library of the matching media type.
const (
	LibraryAllTV     = "all-tv"
	LibraryAllMovies = "all-movies"
)

// Rule is a single scoring rule. A rule matches when any of its keywords
// appears in the candidate title (case-insensitive) or any of its flags is
// present on the candidate; a rule with neither keywords nor flags always
// matches. A non-negated rule contributes Score when it matches; a negated
// rule contributes Score when it does not.
type Rule struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
	Flags    []string `yaml:"flags"`
	Score    int      `yaml:"score"`
	Negate   bool     `yaml:"negate"`
}

// RuleSet groups rules by name and binds them to libraries.
type RuleSet struct {
	Name      string   `yaml:"name"`
	RuleNames []string `yaml:"rules"`
	Libraries []string `yaml:"libraries"`
}

// Config holds the scoring rules and their ruleset bindings.
type Config struct {
	Rules    []Rule    `yaml:"rules"`
	RuleSets []RuleSet `yaml:"rulesets"`
}

// DefaultConfig returns a ruleset that prefers healthy, properly tagged
// season packs and rejects known junk.
func DefaultConfig() Config {
	return Config{
		Rules: []Rule{
			{Name: "baseline", Score: 50},
			{Name: "prefer-web", Keywords: []string{"web-dl", "webrip"}, Score: 20},
			{Name: "prefer-freeleech", Flags: []string{"freeleech"}, Score: 10},
			{Name: "reject-cam", Keywords: []string{"cam", "telesync", "hdts"}, Score: -1000},
			{Name: "reject-unknown-group", Keywords: []string{"-"}, Negate: true, Score: -10},
		},
		RuleSets: []RuleSet{
			{
				Name:      "default-tv",
				RuleNames: []string{"baseline", "prefer-web", "prefer-freeleech", "reject-cam", "reject-unknown-group"},
				Libraries: []string{LibraryAllTV},
			},
			{
				Name:      "default-movies",
				RuleNames: []string{"baseline", "prefer-web", "prefer-freeleech", "reject-cam"},
				Libraries: []string{LibraryAllMovies},
			},
		},
	}
}
