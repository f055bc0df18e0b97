// Package downloader tracks torrent transfers through a download client.
package downloader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/anacrolix/torrent/metainfo"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/seasonarr/seasonarr/internal/downloader/types"
	indexertypes "github.com/seasonarr/seasonarr/internal/indexer/types"
)

// Service errors.
var (
	// ErrClientUnavailable wraps failures to reach the download client.
	ErrClientUnavailable = errors.New("download client unavailable")

	// ErrTorrentReferenced is returned when deleting a torrent whose files
	// are still linked into the library.
	ErrTorrentReferenced = errors.New("torrent is referenced by season files")
)

// downloadCategory groups our transfers inside the download client.
const downloadCategory = "seasonarr"

// SeasonFileRemover detaches season files from a torrent before the torrent
// row is deleted.
type SeasonFileRemover interface {
	RemoveSeasonFilesForTorrent(ctx context.Context, torrentID uuid.UUID) error
}

// SeasonFileCounter reports whether a torrent still backs imported files.
type SeasonFileCounter interface {
	HasSeasonFilesForTorrent(ctx context.Context, torrentID uuid.UUID) (bool, error)
}

// Service owns torrent lifecycle state. All mutations of tracked torrents go
// through it; everything else reads.
type Service struct {
	client     types.Client
	repo       *Repository
	torrentDir string
	httpClient *http.Client
	files      SeasonFileRemover
	counter    SeasonFileCounter
	logger     zerolog.Logger
}

// NewService creates a new torrent lifecycle service. torrentDir is where
// fetched .torrent artifacts are kept for idempotent re-submission.
func NewService(client types.Client, repo *Repository, torrentDir string, files SeasonFileRemover, counter SeasonFileCounter, logger zerolog.Logger) *Service {
	return &Service{
		client:     client,
		repo:       repo,
		torrentDir: torrentDir,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		files:      files,
		counter:    counter,
		logger:     logger.With().Str("component", "downloader").Logger(),
	}
}

// Submit sends a candidate to the download client and returns the tracked
// torrent. Submission is idempotent on the info hash: a candidate whose
// artifact was fetched before is hashed locally instead of re-fetched, and an
// already tracked hash returns the existing torrent with a fresh status.
func (s *Service) Submit(ctx context.Context, candidate *indexertypes.Candidate) (*types.Torrent, error) {
	var hash string
	var addOpts types.AddOptions
	alreadyInClient := false

	if strings.HasPrefix(candidate.DownloadURL, "magnet:") {
		magnet, err := metainfo.ParseMagnetUri(candidate.DownloadURL)
		if err != nil {
			return nil, fmt.Errorf("invalid magnet link: %w", err)
		}
		hash = magnet.InfoHash.HexString()
		addOpts = types.AddOptions{
			MagnetURL: candidate.DownloadURL,
			Category:  downloadCategory,
			SavePath:  candidate.Title,
		}
	} else {
		content, cached, err := s.torrentContent(ctx, candidate)
		if err != nil {
			return nil, err
		}
		mi, err := metainfo.Load(bytes.NewReader(content))
		if err != nil {
			return nil, fmt.Errorf("failed to decode torrent file: %w", err)
		}
		hash = mi.HashInfoBytes().HexString()
		alreadyInClient = cached
		addOpts = types.AddOptions{
			FileContent: content,
			Category:    downloadCategory,
			SavePath:    candidate.Title,
		}
	}

	if existing, err := s.repo.GetByHash(ctx, hash); err == nil {
		s.logger.Info().
			Str("title", existing.Title).
			Str("hash", hash).
			Msg("Torrent already tracked, refreshing status")
		return s.refresh(ctx, existing)
	} else if !errors.Is(err, ErrTorrentNotFound) {
		return nil, err
	}

	if !alreadyInClient {
		if err := s.client.Add(ctx, addOpts); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrClientUnavailable, err)
		}
	}

	torrent := &types.Torrent{
		ID:      uuid.New(),
		Title:   candidate.Title,
		Hash:    hash,
		Status:  types.StatusUnknown,
		Quality: candidate.Quality,
	}
	if err := s.repo.Save(ctx, torrent); err != nil {
		return nil, err
	}
	s.logger.Info().
		Str("title", torrent.Title).
		Str("hash", hash).
		Msg("Submitted torrent to download client")

	return s.refresh(ctx, torrent)
}

// torrentContent returns the raw .torrent payload for a candidate, fetching
// and caching it on first use. cached reports whether the artifact existed
// before this call, which means the client was already asked to download it.
func (s *Service) torrentContent(ctx context.Context, candidate *indexertypes.Candidate) (content []byte, cached bool, err error) {
	path := filepath.Join(s.torrentDir, candidate.Title+".torrent")

	if content, err = os.ReadFile(path); err == nil {
		s.logger.Warn().Str("path", path).Msg("Torrent artifact already exists")
		return content, true, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, false, fmt.Errorf("failed to read torrent artifact: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, candidate.DownloadURL, nil)
	if err != nil {
		return nil, false, fmt.Errorf("invalid download url: %w", err)
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, false, fmt.Errorf("failed to fetch torrent file: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, false, fmt.Errorf("torrent file fetch returned status %d", resp.StatusCode)
	}
	if content, err = io.ReadAll(resp.Body); err != nil {
		return nil, false, fmt.Errorf("failed to read torrent file: %w", err)
	}

	if err := os.MkdirAll(s.torrentDir, 0o755); err != nil {
		return nil, false, fmt.Errorf("failed to create torrent directory: %w", err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return nil, false, fmt.Errorf("failed to store torrent artifact: %w", err)
	}
	return content, false, nil
}

// refresh probes the client for current status, persists and returns the
// torrent. A client failure leaves the stored status untouched.
func (s *Service) refresh(ctx context.Context, torrent *types.Torrent) (*types.Torrent, error) {
	status, err := s.client.Status(ctx, torrent.Hash)
	if err != nil {
		s.logger.Warn().
			Err(err).
			Str("title", torrent.Title).
			Msg("Failed to refresh torrent status")
		return torrent, nil
	}
	torrent.Status = status
	if err := s.repo.UpdateStatus(ctx, torrent.ID, status); err != nil {
		return nil, err
	}
	return torrent, nil
}

// Get returns a tracked torrent with its status refreshed.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*types.Torrent, error) {
	torrent, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.refresh(ctx, torrent)
}

// List returns all tracked torrents with their statuses refreshed.
func (s *Service) List(ctx context.Context) ([]types.Torrent, error) {
	torrents, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range torrents {
		if _, err := s.refresh(ctx, &torrents[i]); err != nil {
			return nil, err
		}
	}
	return torrents, nil
}

// ListFinishedUnimported returns finished torrents awaiting import.
func (s *Service) ListFinishedUnimported(ctx context.Context) ([]types.Torrent, error) {
	return s.repo.ListFinishedUnimported(ctx)
}

// MarkImported records that a torrent's files were linked into the library.
func (s *Service) MarkImported(ctx context.Context, id uuid.UUID) error {
	return s.repo.MarkImported(ctx, id)
}

// Pause pauses the transfer. The client is contacted first so a failure
// there surfaces instead of silently diverging from stored state.
func (s *Service) Pause(ctx context.Context, id uuid.UUID) (*types.Torrent, error) {
	torrent, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.client.Pause(ctx, torrent.Hash); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrClientUnavailable, err)
	}
	return s.refresh(ctx, torrent)
}

// Resume resumes the transfer.
func (s *Service) Resume(ctx context.Context, id uuid.UUID) (*types.Torrent, error) {
	torrent, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.client.Resume(ctx, torrent.Hash); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrClientUnavailable, err)
	}
	return s.refresh(ctx, torrent)
}

// Cancel removes the transfer from the download client, optionally deleting
// its files. The torrent row stays tracked so its history survives.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID, deleteFiles bool) (*types.Torrent, error) {
	torrent, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.client.Remove(ctx, torrent.Hash, deleteFiles); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrClientUnavailable, err)
	}
	s.logger.Info().Str("title", torrent.Title).Msg("Cancelled torrent")
	return s.refresh(ctx, torrent)
}

// Delete removes a torrent row. A torrent that was never imported takes its
// dangling season file links with it; an imported torrent still backing
// season files is refused.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	torrent, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}

	if torrent.Imported {
		referenced, err := s.counter.HasSeasonFilesForTorrent(ctx, id)
		if err != nil {
			return err
		}
		if referenced {
			return ErrTorrentReferenced
		}
	} else if err := s.files.RemoveSeasonFilesForTorrent(ctx, id); err != nil {
		return err
	}

	s.logger.Info().Str("title", torrent.Title).Msg("Deleting torrent")
	return s.repo.Delete(ctx, id)
}
