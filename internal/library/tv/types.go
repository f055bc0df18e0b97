// Package tv holds the show catalog entities and the request/file bookkeeping
// around seasons.
package tv

import (
	"github.com/google/uuid"

	"github.com/seasonarr/seasonarr/internal/library/quality"
)

// Show is a catalog entry supplied by a metadata provider. The acquisition
// pipeline consumes it read-only: name, year and external identity are used
// for search queries and library paths.
type Show struct {
	ID               uuid.UUID `json:"id"`
	Name             string    `json:"name"`
	Year             int       `json:"year"`
	ExternalID       int64     `json:"externalId"`
	MetadataProvider string    `json:"metadataProvider"`
	Library          string    `json:"library"`
}

// Season is one season of a show.
type Season struct {
	ID     uuid.UUID `json:"id"`
	ShowID uuid.UUID `json:"showId"`
	Number int       `json:"number"`
}

// Episode is one episode of a season.
type Episode struct {
	ID       uuid.UUID `json:"id"`
	SeasonID uuid.UUID `json:"seasonId"`
	Number   int       `json:"number"`
	Title    string    `json:"title"`
}

// SeasonFile links a season to the transfer that supplied (or will supply)
// its files. A nil TorrentID means the season is already present on disk
// without a tracked transfer. FilePathSuffix disambiguates target filenames
// when multiple releases supply files for the same season.
type SeasonFile struct {
	ID             uuid.UUID       `json:"id"`
	SeasonID       uuid.UUID       `json:"seasonId"`
	TorrentID      *uuid.UUID      `json:"torrentId,omitempty"`
	Quality        quality.Quality `json:"quality"`
	FilePathSuffix string          `json:"filePathSuffix"`
}

// SeasonRequest is a user's ask to acquire a season within a quality range.
// It is created unauthorized, authorized by a privileged user, and deleted
// once a matching transfer has been submitted.
type SeasonRequest struct {
	ID            uuid.UUID       `json:"id"`
	SeasonID      uuid.UUID       `json:"seasonId"`
	WantedQuality quality.Quality `json:"wantedQuality"`
	MinQuality    quality.Quality `json:"minQuality"`
	Authorized    bool            `json:"authorized"`
	RequestedBy   string          `json:"requestedBy"`
	AuthorizedBy  string          `json:"authorizedBy"`
}
