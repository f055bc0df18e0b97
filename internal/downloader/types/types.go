// Package types defines shared types for download clients.
package types

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/seasonarr/seasonarr/internal/library/quality"
)

// Common errors for download clients.
var (
	ErrNotConnected = errors.New("client not connected")
	ErrAuthFailed   = errors.New("authentication failed")
	ErrNotFound     = errors.New("download not found")
)

// Status represents the lifecycle state of a tracked torrent. Clients map
// their native state vocabulary onto these four buckets.
type Status string

const (
	StatusUnknown     Status = "unknown"
	StatusDownloading Status = "downloading"
	StatusFinished    Status = "finished"
	StatusError       Status = "error"
)

// ParseStatus converts a stored status string back into a Status.
func ParseStatus(s string) Status {
	switch Status(s) {
	case StatusDownloading, StatusFinished, StatusError:
		return Status(s)
	default:
		return StatusUnknown
	}
}

// AddOptions specifies the payload for adding a download. Exactly one of
// FileContent or MagnetURL must be set.
type AddOptions struct {
	FileContent []byte // raw .torrent file content
	MagnetURL   string
	Category    string
	SavePath    string // download subdirectory, typically the release title
}

// Client is the common interface for torrent download clients.
type Client interface {
	// Test verifies connectivity and credentials.
	Test(ctx context.Context) error

	// Add submits a download. The torrent is identified afterwards by its
	// info hash, which the caller computes from the payload.
	Add(ctx context.Context, opts AddOptions) error

	// Status reports the current state of the torrent with the given info
	// hash. A hash the client does not know yields StatusUnknown.
	Status(ctx context.Context, hash string) (Status, error)

	Pause(ctx context.Context, hash string) error
	Resume(ctx context.Context, hash string) error

	// Remove drops the torrent from the client, optionally deleting the
	// downloaded files.
	Remove(ctx context.Context, hash string, deleteFiles bool) error
}

// Torrent is a tracked transfer. Status is refreshed from the download
// client; Imported flips once the import engine has linked the files into
// the library.
type Torrent struct {
	ID       uuid.UUID       `json:"id"`
	Title    string          `json:"title"`
	Hash     string          `json:"hash"`
	Status   Status          `json:"status"`
	Quality  quality.Quality `json:"quality"`
	Imported bool            `json:"imported"`
}
