// Package acquisition orchestrates the season pipeline: searching indexers,
// matching authorized requests to candidates, submitting downloads and
// importing finished transfers.
package acquisition

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	dltypes "github.com/seasonarr/seasonarr/internal/downloader/types"
	"github.com/seasonarr/seasonarr/internal/indexer/types"
	"github.com/seasonarr/seasonarr/internal/library/quality"
	"github.com/seasonarr/seasonarr/internal/library/tv"
)

// Orchestrator errors.
var (
	// ErrNoCandidateFound means nothing currently matches the request's
	// criteria. The request stays pending for the next pass.
	ErrNoCandidateFound = errors.New("no matching candidate found")

	// ErrNotAuthorized means the request has not been approved for download.
	ErrNotAuthorized = errors.New("season request not authorized")
)

// minSeeders is the health floor for torrent candidates. Usenet candidates
// have no seeders and are exempt.
const minSeeders = 3

// Searcher aggregates and ranks indexer results.
type Searcher interface {
	Search(ctx context.Context, query, library string, isTV bool) ([]types.Candidate, error)
	Candidate(ctx context.Context, id uuid.UUID) (*types.Candidate, error)
}

// Submitter sends a candidate to the download client.
type Submitter interface {
	Submit(ctx context.Context, candidate *types.Candidate) (*dltypes.Torrent, error)
}

// Importer links finished transfers into the library.
type Importer interface {
	ImportFinished(ctx context.Context) ([]dltypes.Torrent, error)
}

// Service is the acquisition orchestrator.
type Service struct {
	search   Searcher
	torrents Submitter
	importer Importer
	library  *tv.Repository
	logger   zerolog.Logger
}

// NewService creates a new acquisition orchestrator.
func NewService(search Searcher, torrents Submitter, importer Importer, library *tv.Repository, logger zerolog.Logger) *Service {
	return &Service{
		search:   search,
		torrents: torrents,
		importer: importer,
		library:  library,
		logger:   logger.With().Str("component", "acquisition").Logger(),
	}
}

// CreateRequest records a new season request. Privileged requesters get
// their requests authorized immediately.
func (s *Service) CreateRequest(ctx context.Context, seasonID uuid.UUID, wanted, min quality.Quality, requestedBy string, privileged bool) (*tv.SeasonRequest, error) {
	request := &tv.SeasonRequest{
		ID:            uuid.New(),
		SeasonID:      seasonID,
		WantedQuality: wanted,
		MinQuality:    min,
		RequestedBy:   requestedBy,
	}
	if privileged {
		request.Authorized = true
		request.AuthorizedBy = requestedBy
	}
	if err := s.library.AddSeasonRequest(ctx, request); err != nil {
		return nil, err
	}
	return request, nil
}

// AuthorizeRequest marks a pending request as approved for download.
func (s *Service) AuthorizeRequest(ctx context.Context, requestID uuid.UUID, authorizedBy string) error {
	return s.library.AuthorizeSeasonRequest(ctx, requestID, authorizedBy)
}

// seasonQuery builds the default search query for a season.
func seasonQuery(show *tv.Show, seasonNumber int) string {
	return fmt.Sprintf("%s s%02d", show.Name, seasonNumber)
}

// AvailableCandidates returns the ranked candidates for a season. With an
// override query the results are returned as searched, unfiltered; otherwise
// only candidates covering the season are kept.
func (s *Service) AvailableCandidates(ctx context.Context, showID uuid.UUID, seasonNumber int, queryOverride string) ([]types.Candidate, error) {
	show, err := s.library.GetShow(ctx, showID)
	if err != nil {
		return nil, err
	}

	query := queryOverride
	if query == "" {
		query = seasonQuery(show, seasonNumber)
	}

	candidates, err := s.search.Search(ctx, query, show.Library, true)
	if err != nil {
		return nil, err
	}
	if queryOverride != "" {
		return candidates, nil
	}

	var covering []types.Candidate
	for _, candidate := range candidates {
		for _, season := range candidate.Seasons {
			if season == seasonNumber {
				covering = append(covering, candidate)
				break
			}
		}
	}
	types.SortForMatching(covering)
	return covering, nil
}

// DownloadCandidate submits a specific candidate the user picked and records
// a season file for every season the release covers. suffixOverride replaces
// the default quality-derived file path suffix.
func (s *Service) DownloadCandidate(ctx context.Context, candidateID, showID uuid.UUID, suffixOverride string) (*dltypes.Torrent, error) {
	candidate, err := s.search.Candidate(ctx, candidateID)
	if err != nil {
		return nil, err
	}

	torrent, err := s.torrents.Submit(ctx, candidate)
	if err != nil {
		return nil, err
	}

	for _, seasonNumber := range candidate.Seasons {
		season, err := s.library.GetSeasonByNumber(ctx, showID, seasonNumber)
		if err != nil {
			return nil, err
		}
		file := &tv.SeasonFile{
			ID:             uuid.New(),
			SeasonID:       season.ID,
			TorrentID:      &torrent.ID,
			Quality:        candidate.Quality,
			FilePathSuffix: suffixOverride,
		}
		if err := s.library.AddSeasonFile(ctx, file); err != nil {
			return nil, err
		}
	}
	return torrent, nil
}

// DownloadRequest matches an authorized season request to the best available
// candidate and submits it. queryOverride replaces the generated search query
// and skips season filtering. On success the request is consumed.
func (s *Service) DownloadRequest(ctx context.Context, requestID uuid.UUID, queryOverride string) (*dltypes.Torrent, error) {
	request, err := s.library.GetSeasonRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if !request.Authorized {
		return nil, fmt.Errorf("%w: request %s", ErrNotAuthorized, request.ID)
	}

	season, err := s.library.GetSeason(ctx, request.SeasonID)
	if err != nil {
		return nil, err
	}
	show, err := s.library.GetShowBySeason(ctx, request.SeasonID)
	if err != nil {
		return nil, err
	}

	query := queryOverride
	if query == "" {
		query = seasonQuery(show, season.Number)
	}
	candidates, err := s.search.Search(ctx, query, show.Library, true)
	if err != nil {
		return nil, err
	}

	matching := s.filterForRequest(candidates, request, season.Number, queryOverride == "")
	if len(matching) == 0 {
		s.logger.Warn().
			Str("show", show.Name).
			Int("season", season.Number).
			Str("wanted", request.WantedQuality.String()).
			Str("min", request.MinQuality.String()).
			Msg("No candidate matched request criteria")
		return nil, ErrNoCandidateFound
	}
	types.SortForMatching(matching)
	winner := matching[0]

	torrent, err := s.torrents.Submit(ctx, &winner)
	if err != nil {
		return nil, err
	}

	file := &tv.SeasonFile{
		ID:             uuid.New(),
		SeasonID:       season.ID,
		TorrentID:      &torrent.ID,
		Quality:        winner.Quality,
		FilePathSuffix: strings.ToUpper(winner.Quality.String()),
	}
	if err := s.library.AddSeasonFile(ctx, file); err != nil {
		return nil, err
	}
	if err := s.library.DeleteSeasonRequest(ctx, request.ID); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("show", show.Name).
		Int("season", season.Number).
		Str("title", winner.Title).
		Msg("Submitted matching candidate for request")
	return torrent, nil
}

// filterForRequest applies the request's quality bounds, the seeder floor
// and, for season-derived queries, the exact season coverage check.
func (s *Service) filterForRequest(candidates []types.Candidate, request *tv.SeasonRequest, seasonNumber int, filterSeason bool) []types.Candidate {
	var matching []types.Candidate
	for _, candidate := range candidates {
		if !candidate.Quality.Within(request.MinQuality, request.WantedQuality) {
			s.logger.Debug().
				Str("title", candidate.Title).
				Str("quality", candidate.Quality.String()).
				Msg("Skipping candidate outside quality bounds")
			continue
		}
		if candidate.Protocol == types.ProtocolTorrent && candidate.Seeders < minSeeders {
			s.logger.Debug().
				Str("title", candidate.Title).
				Int("seeders", candidate.Seeders).
				Msg("Skipping candidate below seeder floor")
			continue
		}
		if filterSeason && !candidate.CoversExactly(seasonNumber) {
			s.logger.Debug().
				Str("title", candidate.Title).
				Ints("seasons", candidate.Seasons).
				Msg("Skipping candidate with wrong season coverage")
			continue
		}
		matching = append(matching, candidate)
	}
	return matching
}

// AutoDownloadApproved runs the matcher over every authorized request.
// Returns the number of requests satisfied; a request with no matching
// candidate stays pending.
func (s *Service) AutoDownloadApproved(ctx context.Context) (int, error) {
	requests, err := s.library.ListAuthorizedSeasonRequests(ctx)
	if err != nil {
		return 0, err
	}

	satisfied := 0
	for i := range requests {
		if _, err := s.DownloadRequest(ctx, requests[i].ID, ""); err != nil {
			if errors.Is(err, ErrNoCandidateFound) {
				continue
			}
			s.logger.Error().
				Err(err).
				Str("request", requests[i].ID.String()).
				Msg("Failed to process season request")
			continue
		}
		satisfied++
	}

	s.logger.Info().
		Int("satisfied", satisfied).
		Int("total", len(requests)).
		Msg("Auto-download pass completed")
	return satisfied, nil
}

// ImportFinished links every finished transfer into the library and returns
// the torrents imported this run.
func (s *Service) ImportFinished(ctx context.Context) ([]dltypes.Torrent, error) {
	return s.importer.ImportFinished(ctx)
}
