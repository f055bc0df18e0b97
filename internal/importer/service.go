// Package importer links finished downloads into the media library.
package importer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	dltypes "github.com/seasonarr/seasonarr/internal/downloader/types"
	"github.com/seasonarr/seasonarr/internal/library/scanner"
	"github.com/seasonarr/seasonarr/internal/library/tv"
)

// TorrentTracker is the slice of the torrent lifecycle the importer needs.
type TorrentTracker interface {
	ListFinishedUnimported(ctx context.Context) ([]dltypes.Torrent, error)
	MarkImported(ctx context.Context, id uuid.UUID) error
}

// Service organizes downloaded season files into the library directory
// structure, one hardlink per episode.
type Service struct {
	torrents    TorrentTracker
	library     *tv.Repository
	downloadDir string
	libraryDir  string
	logger      zerolog.Logger
}

// NewService creates a new import service. downloadDir is where the download
// client places finished transfers; libraryDir is the media library root.
func NewService(torrents TorrentTracker, library *tv.Repository, downloadDir, libraryDir string, logger zerolog.Logger) *Service {
	return &Service{
		torrents:    torrents,
		library:     library,
		downloadDir: downloadDir,
		libraryDir:  libraryDir,
		logger:      logger.With().Str("component", "importer").Logger(),
	}
}

// ImportFinished imports every finished transfer that has not been imported
// yet. Returns the transfers that were imported this run.
func (s *Service) ImportFinished(ctx context.Context) ([]dltypes.Torrent, error) {
	torrents, err := s.torrents.ListFinishedUnimported(ctx)
	if err != nil {
		return nil, err
	}

	var imported []dltypes.Torrent
	for i := range torrents {
		if err := s.ImportTorrent(ctx, &torrents[i]); err != nil {
			s.logger.Error().
				Err(err).
				Str("title", torrents[i].Title).
				Msg("Failed to import torrent")
			continue
		}
		imported = append(imported, torrents[i])
	}
	return imported, nil
}

// ImportTorrent links the transfer's video and subtitle files into the
// library. Episodes without a matching video file are logged and skipped;
// the torrent is marked imported even after a partial import.
func (s *Service) ImportTorrent(ctx context.Context, torrent *dltypes.Torrent) error {
	downloadPath := filepath.Join(s.downloadDir, torrent.Title)

	files, err := listFiles(downloadPath)
	if err != nil {
		return err
	}
	extractArchives(files, s.logger)
	if files, err = listFiles(downloadPath); err != nil {
		return err
	}
	videos, subtitles := classify(files)

	s.logger.Info().
		Str("title", torrent.Title).
		Int("videos", len(videos)).
		Int("subtitles", len(subtitles)).
		Msg("Importing torrent")

	seasonFiles, err := s.library.SeasonFilesForTorrent(ctx, torrent.ID)
	if err != nil {
		return err
	}

	for i := range seasonFiles {
		if err := s.importSeasonFile(ctx, &seasonFiles[i], videos, subtitles); err != nil {
			return err
		}
	}

	return s.torrents.MarkImported(ctx, torrent.ID)
}

func (s *Service) importSeasonFile(ctx context.Context, file *tv.SeasonFile, videos, subtitles []string) error {
	season, err := s.library.GetSeason(ctx, file.SeasonID)
	if err != nil {
		return err
	}
	show, err := s.library.GetShowBySeason(ctx, file.SeasonID)
	if err != nil {
		return err
	}
	episodes, err := s.library.ListEpisodes(ctx, file.SeasonID)
	if err != nil {
		return err
	}

	seasonDir := filepath.Join(s.libraryDir, showDirName(show), fmt.Sprintf("Season %d", season.Number))
	if err := os.MkdirAll(seasonDir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", seasonDir, err)
	}

	for _, episode := range episodes {
		name := fmt.Sprintf("%s S%02dE%02d", sanitizeName(show.Name), season.Number, episode.Number)
		if file.FilePathSuffix != "" {
			name += " - " + file.FilePathSuffix
		}

		for _, subtitle := range subtitles {
			lang := scanner.SubtitleLanguage(filepath.Base(subtitle), season.Number, episode.Number)
			if lang == "" {
				continue
			}
			target := filepath.Join(seasonDir, fmt.Sprintf("%s.%s.srt", name, lang))
			if err := link(subtitle, target); err != nil {
				return err
			}
		}

		video := matchVideo(videos, season.Number, episode.Number)
		if video == "" {
			s.logger.Warn().
				Str("show", show.Name).
				Int("season", season.Number).
				Int("episode", episode.Number).
				Msg("No video file found for episode")
			continue
		}
		target := filepath.Join(seasonDir, name+filepath.Ext(video))
		if err := link(video, target); err != nil {
			return err
		}
		s.logger.Debug().Str("target", target).Msg("Linked episode video")
	}

	return nil
}

// matchVideo returns the first video file naming the given episode.
func matchVideo(videos []string, season, episode int) string {
	for _, video := range videos {
		if scanner.MatchesEpisode(filepath.Base(video), season, episode) {
			return video
		}
	}
	return ""
}

// showDirName builds the library directory name for a show, tagged with its
// metadata identity so renames do not orphan the directory.
func showDirName(show *tv.Show) string {
	return fmt.Sprintf("%s (%d) [%sid-%d]",
		sanitizeName(show.Name), show.Year, show.MetadataProvider, show.ExternalID)
}

var unsafePathChars = regexp.MustCompile(`[<>:"/\\|?*]`)

// sanitizeName strips characters that are unsafe in file names.
func sanitizeName(name string) string {
	return strings.TrimSpace(unsafePathChars.ReplaceAllString(name, ""))
}
