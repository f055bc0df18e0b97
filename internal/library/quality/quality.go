// Package quality defines the release quality tiers and how they are derived
// from release titles.
package quality

import (
	"fmt"
	"regexp"
)

// Quality represents a release quality tier. Higher values are better, so the
// ordering UHD > FullHD > HD > SD > Unknown falls out of the integer values.
type Quality int

const (
	Unknown Quality = iota
	SD
	HD
	FullHD
	UHD
)

// Tier keyword patterns, matched case-insensitively on word boundaries.
var (
	uhdPattern    = regexp.MustCompile(`(?i)\b4k\b`)
	fullHDPattern = regexp.MustCompile(`(?i)\b1080p\b`)
	hdPattern     = regexp.MustCompile(`(?i)\b720p\b`)
	sdPattern     = regexp.MustCompile(`(?i)\b(480p|360p)\b`)
)

// FromTitle derives the quality tier from a release title. The first matching
// tier in UHD, FullHD, HD, SD priority order wins; a title matching nothing
// yields Unknown. FromTitle is total: it never fails.
func FromTitle(title string) Quality {
	switch {
	case uhdPattern.MatchString(title):
		return UHD
	case fullHDPattern.MatchString(title):
		return FullHD
	case hdPattern.MatchString(title):
		return HD
	case sdPattern.MatchString(title):
		return SD
	default:
		return Unknown
	}
}

// String returns the canonical lowercase name used in persistence and logs.
func (q Quality) String() string {
	switch q {
	case UHD:
		return "uhd"
	case FullHD:
		return "fullhd"
	case HD:
		return "hd"
	case SD:
		return "sd"
	default:
		return "unknown"
	}
}

// Parse converts a stored quality name back into a Quality.
func Parse(s string) (Quality, error) {
	switch s {
	case "uhd":
		return UHD, nil
	case "fullhd":
		return FullHD, nil
	case "hd":
		return HD, nil
	case "sd":
		return SD, nil
	case "unknown", "":
		return Unknown, nil
	default:
		return Unknown, fmt.Errorf("unknown quality %q", s)
	}
}

// Within reports whether q lies in the inclusive range [min, max].
func (q Quality) Within(min, max Quality) bool {
	return q >= min && q <= max
}
