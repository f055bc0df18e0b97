package scanner

import (
	"reflect"
	"testing"
)

func TestParseSeasons(t *testing.T) {
	tests := []struct {
		title string
		want  []int
	}{
		{"Show S01", []int{1}},
		{"Show.S07.1080p", []int{7}},
		{"Show S01 S03", []int{1, 2, 3}},
		{"Show.S01-S03.Complete", []int{1, 2, 3}},
		{"Show s2 S4", []int{2, 3, 4}},
		{"Show", nil},
		{"Show 1080p", nil},
		// Inverted range carries no usable season info.
		{"Show S05 S02", nil},
		// More than two tokens is ambiguous.
		{"Show S01 S02 S03", nil},
		// Season token must sit on a word boundary.
		{"Shows01", nil},
		// SxxEyy runs digits into the episode marker, so the season token
		// never ends on a boundary. Episode titles carry no season set.
		{"show s01e05", nil},
		{"Show.S03E07.720p", nil},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			got := ParseSeasons(tt.title)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseSeasons(%q) = %v, want %v", tt.title, got, tt.want)
			}
		})
	}
}

func TestMatchesEpisode(t *testing.T) {
	tests := []struct {
		filename string
		season   int
		episode  int
		want     bool
	}{
		{"Show.S02E01.1080p.mkv", 2, 1, true},
		{"Show.S2E1.mkv", 2, 1, true},
		{"show.s02e01.web-dl.mkv", 2, 1, true},
		{"Show S02E01 final.mkv", 2, 1, true},
		{"Show.S02E11.mkv", 2, 1, false},
		{"Show.S12E01.mkv", 2, 1, false},
		{"Show.S02E02.mkv", 2, 1, false},
		{"Show.1080p.mkv", 2, 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			got := MatchesEpisode(tt.filename, tt.season, tt.episode)
			if got != tt.want {
				t.Errorf("MatchesEpisode(%q, %d, %d) = %v, want %v",
					tt.filename, tt.season, tt.episode, got, tt.want)
			}
		})
	}
}

func TestSubtitleLanguage(t *testing.T) {
	tests := []struct {
		filename string
		season   int
		episode  int
		want     string
	}{
		{"Show.S02E01.en.srt", 2, 1, "en"},
		{"Show.s2e1.GER.srt", 2, 1, "GER"},
		{"Show.S02E01.eng.SRT", 2, 1, "eng"},
		{"Show.S02E01.srt", 2, 1, ""},
		{"Show.S02E02.en.srt", 2, 1, ""},
		{"Show.S02E01.en.sub", 2, 1, ""},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			got := SubtitleLanguage(tt.filename, tt.season, tt.episode)
			if got != tt.want {
				t.Errorf("SubtitleLanguage(%q, %d, %d) = %q, want %q",
					tt.filename, tt.season, tt.episode, got, tt.want)
			}
		})
	}
}

func TestExtensions(t *testing.T) {
	if !IsVideoFile("Show.S01E01.mkv") {
		t.Error("expected .mkv to be a video file")
	}
	if IsVideoFile("Show.S01E01.nfo") {
		t.Error("expected .nfo not to be a video file")
	}
	if !IsSubtitleFile("Show.S01E01.en.srt") {
		t.Error("expected .srt to be a subtitle file")
	}
	if !IsArchiveFile("release.rar") || !IsArchiveFile("release.zip") {
		t.Error("expected .rar and .zip to be archives")
	}
	if IsArchiveFile("release.mkv") {
		t.Error("expected .mkv not to be an archive")
	}
}
