// Package scanner parses release titles and download filenames into the
// season/episode structure the rest of the pipeline works with.
package scanner

import (
	"fmt"
	"regexp"
	"strconv"
)

// seasonTokenPattern matches S<number> tokens on word boundaries: "S07", "s1".
var seasonTokenPattern = regexp.MustCompile(`(?i)\bs(\d+)\b`)

// ParseSeasons extracts the set of season numbers a release title covers.
// One S<number> token yields a singleton, two tokens an inclusive range and
// anything else (no tokens, more than two, inverted range) an empty slice.
// The result is sorted ascending.
func ParseSeasons(title string) []int {
	matches := seasonTokenPattern.FindAllStringSubmatch(title, -1)

	switch len(matches) {
	case 1:
		n, err := strconv.Atoi(matches[0][1])
		if err != nil {
			return nil
		}
		return []int{n}
	case 2:
		lo, err1 := strconv.Atoi(matches[0][1])
		hi, err2 := strconv.Atoi(matches[1][1])
		if err1 != nil || err2 != nil || lo > hi {
			return nil
		}
		seasons := make([]int, 0, hi-lo+1)
		for n := lo; n <= hi; n++ {
			seasons = append(seasons, n)
		}
		return seasons
	default:
		return nil
	}
}

// EpisodePattern compiles the filename pattern for one episode of a season:
// a S<season>E<episode> token with optional leading zeros, case-insensitive,
// separated from surrounding tokens so S2E1 does not match S2E11.
func EpisodePattern(season, episode int) *regexp.Regexp {
	return regexp.MustCompile(fmt.Sprintf(`(?i)[\.\s_-]s0?%de0?%d[\.\s_-]`, season, episode))
}

// subtitlePatternFor matches subtitle filenames of the form
// ...S<season>E<episode>.<lang>.srt and captures the language tag.
func subtitlePatternFor(season, episode int) *regexp.Regexp {
	return regexp.MustCompile(fmt.Sprintf(`(?i)s0?%de0?%d\.([a-z]{2,3})\.srt$`, season, episode))
}

// MatchesEpisode reports whether a downloaded filename belongs to the given
// season and episode.
func MatchesEpisode(filename string, season, episode int) bool {
	return EpisodePattern(season, episode).MatchString(filename)
}

// SubtitleLanguage returns the language tag of a subtitle filename for the
// given episode, or "" when the filename does not match.
func SubtitleLanguage(filename string, season, episode int) string {
	m := subtitlePatternFor(season, episode).FindStringSubmatch(filename)
	if m == nil {
		return ""
	}
	return m[1]
}
