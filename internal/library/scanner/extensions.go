package scanner

import (
	"path/filepath"
	"strings"
)

// VideoExtensions contains supported video file extensions.
var VideoExtensions = map[string]bool{
	".mkv":  true,
	".mp4":  true,
	".avi":  true,
	".m4v":  true,
	".ts":   true,
	".wmv":  true,
	".mov":  true,
	".webm": true,
	".flv":  true,
	".mpg":  true,
	".mpeg": true,
	".m2ts": true,
}

// ArchiveExtensions contains archive formats the import engine extracts.
var ArchiveExtensions = map[string]bool{
	".rar": true,
	".zip": true,
}

// IsVideoFile checks if a filename has a video extension.
func IsVideoFile(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return VideoExtensions[ext]
}

// IsSubtitleFile checks if a filename is a text subtitle.
func IsSubtitleFile(filename string) bool {
	return strings.EqualFold(filepath.Ext(filename), ".srt")
}

// IsArchiveFile checks if a filename has a recognized archive extension.
func IsArchiveFile(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return ArchiveExtensions[ext]
}
