package tv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/seasonarr/seasonarr/internal/library/quality"
)

var (
	ErrShowNotFound    = errors.New("show not found")
	ErrSeasonNotFound  = errors.New("season not found")
	ErrRequestNotFound = errors.New("season request not found")
)

// Repository provides access to the show catalog and the season file/request
// bookkeeping. The catalog side (shows, seasons, episodes) matches the shape
// a metadata provider supplies and is consumed read-only by the pipeline.
type Repository struct {
	db     *sql.DB
	logger zerolog.Logger
}

// NewRepository creates a new TV repository.
func NewRepository(db *sql.DB, logger zerolog.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger.With().Str("component", "tv").Logger(),
	}
}

// AddShow inserts a show with its catalog identity.
func (r *Repository) AddShow(ctx context.Context, show *Show) error {
	if show.Library == "" {
		show.Library = "shows"
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO shows (id, name, year, external_id, metadata_provider, library)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		show.ID.String(), show.Name, show.Year, show.ExternalID, show.MetadataProvider, show.Library)
	if err != nil {
		return fmt.Errorf("failed to insert show: %w", err)
	}
	return nil
}

// GetShow retrieves a show by ID.
func (r *Repository) GetShow(ctx context.Context, id uuid.UUID) (*Show, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, year, external_id, metadata_provider, library FROM shows WHERE id = ?`,
		id.String())
	return scanShow(row)
}

// ListShows returns all shows ordered by name.
func (r *Repository) ListShows(ctx context.Context) ([]Show, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, year, external_id, metadata_provider, library
		 FROM shows ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list shows: %w", err)
	}
	defer rows.Close()

	var shows []Show
	for rows.Next() {
		show, err := scanShow(rows)
		if err != nil {
			return nil, err
		}
		shows = append(shows, *show)
	}
	return shows, rows.Err()
}

// GetShowBySeason retrieves the show a season belongs to.
func (r *Repository) GetShowBySeason(ctx context.Context, seasonID uuid.UUID) (*Show, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT s.id, s.name, s.year, s.external_id, s.metadata_provider, s.library
		 FROM shows s
		 JOIN seasons se ON se.show_id = s.id
		 WHERE se.id = ?`,
		seasonID.String())
	return scanShow(row)
}

// AddSeason inserts a season.
func (r *Repository) AddSeason(ctx context.Context, season *Season) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO seasons (id, show_id, number) VALUES (?, ?, ?)`,
		season.ID.String(), season.ShowID.String(), season.Number)
	if err != nil {
		return fmt.Errorf("failed to insert season: %w", err)
	}
	return nil
}

// GetSeason retrieves a season by ID.
func (r *Repository) GetSeason(ctx context.Context, id uuid.UUID) (*Season, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, show_id, number FROM seasons WHERE id = ?`, id.String())

	var s Season
	var sid, showID string
	if err := row.Scan(&sid, &showID, &s.Number); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSeasonNotFound
		}
		return nil, fmt.Errorf("failed to get season: %w", err)
	}
	s.ID = uuid.MustParse(sid)
	s.ShowID = uuid.MustParse(showID)
	return &s, nil
}

// ListSeasons returns a show's seasons ordered by number.
func (r *Repository) ListSeasons(ctx context.Context, showID uuid.UUID) ([]Season, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, show_id, number FROM seasons WHERE show_id = ? ORDER BY number`,
		showID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list seasons: %w", err)
	}
	defer rows.Close()

	var seasons []Season
	for rows.Next() {
		var s Season
		var sid, sh string
		if err := rows.Scan(&sid, &sh, &s.Number); err != nil {
			return nil, fmt.Errorf("failed to scan season: %w", err)
		}
		s.ID = uuid.MustParse(sid)
		s.ShowID = uuid.MustParse(sh)
		seasons = append(seasons, s)
	}
	return seasons, rows.Err()
}

// GetSeasonByNumber retrieves a show's season by its number.
func (r *Repository) GetSeasonByNumber(ctx context.Context, showID uuid.UUID, number int) (*Season, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, show_id, number FROM seasons WHERE show_id = ? AND number = ?`,
		showID.String(), number)

	var s Season
	var sid, sh string
	if err := row.Scan(&sid, &sh, &s.Number); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSeasonNotFound
		}
		return nil, fmt.Errorf("failed to get season: %w", err)
	}
	s.ID = uuid.MustParse(sid)
	s.ShowID = uuid.MustParse(sh)
	return &s, nil
}

// AddEpisode inserts an episode.
func (r *Repository) AddEpisode(ctx context.Context, episode *Episode) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO episodes (id, season_id, number, title) VALUES (?, ?, ?, ?)`,
		episode.ID.String(), episode.SeasonID.String(), episode.Number, episode.Title)
	if err != nil {
		return fmt.Errorf("failed to insert episode: %w", err)
	}
	return nil
}

// ListEpisodes returns all episodes of a season ordered by number.
func (r *Repository) ListEpisodes(ctx context.Context, seasonID uuid.UUID) ([]Episode, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, season_id, number, title FROM episodes WHERE season_id = ? ORDER BY number`,
		seasonID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list episodes: %w", err)
	}
	defer rows.Close()

	var episodes []Episode
	for rows.Next() {
		var e Episode
		var id, sid string
		if err := rows.Scan(&id, &sid, &e.Number, &e.Title); err != nil {
			return nil, fmt.Errorf("failed to scan episode: %w", err)
		}
		e.ID = uuid.MustParse(id)
		e.SeasonID = uuid.MustParse(sid)
		episodes = append(episodes, e)
	}
	return episodes, rows.Err()
}

// AddSeasonFile records a season file, replacing any previous file for the
// same (season, quality) pair so re-grabs stay idempotent.
func (r *Repository) AddSeasonFile(ctx context.Context, file *SeasonFile) error {
	var torrentID any
	if file.TorrentID != nil {
		torrentID = file.TorrentID.String()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO season_files (id, season_id, torrent_id, quality, file_path_suffix)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (season_id, quality) DO UPDATE SET
		   torrent_id = excluded.torrent_id,
		   file_path_suffix = excluded.file_path_suffix`,
		file.ID.String(), file.SeasonID.String(), torrentID,
		file.Quality.String(), file.FilePathSuffix)
	if err != nil {
		return fmt.Errorf("failed to upsert season file: %w", err)
	}
	return nil
}

// SeasonFilesForTorrent returns all season files supplied by a transfer.
func (r *Repository) SeasonFilesForTorrent(ctx context.Context, torrentID uuid.UUID) ([]SeasonFile, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, season_id, torrent_id, quality, file_path_suffix
		 FROM season_files WHERE torrent_id = ?`,
		torrentID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list season files: %w", err)
	}
	defer rows.Close()
	return collectSeasonFiles(rows)
}

// SeasonFilesBySeason returns all season files recorded for a season.
func (r *Repository) SeasonFilesBySeason(ctx context.Context, seasonID uuid.UUID) ([]SeasonFile, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, season_id, torrent_id, quality, file_path_suffix
		 FROM season_files WHERE season_id = ?`,
		seasonID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list season files: %w", err)
	}
	defer rows.Close()
	return collectSeasonFiles(rows)
}

// HasSeasonFilesForTorrent reports whether any season file still references
// the transfer.
func (r *Repository) HasSeasonFilesForTorrent(ctx context.Context, torrentID uuid.UUID) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM season_files WHERE torrent_id = ?`,
		torrentID.String()).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to count season files: %w", err)
	}
	return count > 0, nil
}

// RemoveSeasonFilesForTorrent deletes the season files of a transfer that was
// cancelled before import.
func (r *Repository) RemoveSeasonFilesForTorrent(ctx context.Context, torrentID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM season_files WHERE torrent_id = ?`, torrentID.String())
	if err != nil {
		return fmt.Errorf("failed to remove season files: %w", err)
	}
	return nil
}

// AddSeasonRequest inserts a season request.
func (r *Repository) AddSeasonRequest(ctx context.Context, req *SeasonRequest) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO season_requests
		   (id, season_id, wanted_quality, min_quality, authorized, requested_by, authorized_by)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		req.ID.String(), req.SeasonID.String(),
		req.WantedQuality.String(), req.MinQuality.String(),
		req.Authorized, req.RequestedBy, req.AuthorizedBy)
	if err != nil {
		return fmt.Errorf("failed to insert season request: %w", err)
	}
	return nil
}

// GetSeasonRequest retrieves a season request by ID.
func (r *Repository) GetSeasonRequest(ctx context.Context, id uuid.UUID) (*SeasonRequest, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, season_id, wanted_quality, min_quality, authorized, requested_by, authorized_by
		 FROM season_requests WHERE id = ?`,
		id.String())
	req, err := scanSeasonRequest(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}
	return req, nil
}

// ListSeasonRequests returns all pending season requests.
func (r *Repository) ListSeasonRequests(ctx context.Context) ([]SeasonRequest, error) {
	return r.listRequests(ctx,
		`SELECT id, season_id, wanted_quality, min_quality, authorized, requested_by, authorized_by
		 FROM season_requests ORDER BY created_at`)
}

// ListAuthorizedSeasonRequests returns the requests eligible for auto-download.
func (r *Repository) ListAuthorizedSeasonRequests(ctx context.Context) ([]SeasonRequest, error) {
	return r.listRequests(ctx,
		`SELECT id, season_id, wanted_quality, min_quality, authorized, requested_by, authorized_by
		 FROM season_requests WHERE authorized = 1 ORDER BY created_at`)
}

// AuthorizeSeasonRequest flags a request as approved by the given user.
func (r *Repository) AuthorizeSeasonRequest(ctx context.Context, id uuid.UUID, authorizedBy string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE season_requests SET authorized = 1, authorized_by = ? WHERE id = ?`,
		authorizedBy, id.String())
	if err != nil {
		return fmt.Errorf("failed to authorize season request: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check authorization result: %w", err)
	}
	if affected == 0 {
		return ErrRequestNotFound
	}
	return nil
}

// DeleteSeasonRequest removes a request, typically because it was satisfied.
func (r *Repository) DeleteSeasonRequest(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM season_requests WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("failed to delete season request: %w", err)
	}
	return nil
}

func (r *Repository) listRequests(ctx context.Context, query string) ([]SeasonRequest, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list season requests: %w", err)
	}
	defer rows.Close()

	var requests []SeasonRequest
	for rows.Next() {
		req, err := scanSeasonRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, *req)
	}
	return requests, rows.Err()
}

// scanner abstracts *sql.Row and *sql.Rows for the shared scan helpers.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanShow(row rowScanner) (*Show, error) {
	var s Show
	var id string
	if err := row.Scan(&id, &s.Name, &s.Year, &s.ExternalID, &s.MetadataProvider, &s.Library); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrShowNotFound
		}
		return nil, fmt.Errorf("failed to scan show: %w", err)
	}
	s.ID = uuid.MustParse(id)
	return &s, nil
}

func scanSeasonRequest(row rowScanner) (*SeasonRequest, error) {
	var req SeasonRequest
	var id, seasonID, wanted, min string
	if err := row.Scan(&id, &seasonID, &wanted, &min, &req.Authorized, &req.RequestedBy, &req.AuthorizedBy); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan season request: %w", err)
	}
	req.ID = uuid.MustParse(id)
	req.SeasonID = uuid.MustParse(seasonID)

	var err error
	if req.WantedQuality, err = quality.Parse(wanted); err != nil {
		return nil, fmt.Errorf("invalid wanted quality: %w", err)
	}
	if req.MinQuality, err = quality.Parse(min); err != nil {
		return nil, fmt.Errorf("invalid min quality: %w", err)
	}
	return &req, nil
}

func collectSeasonFiles(rows *sql.Rows) ([]SeasonFile, error) {
	var files []SeasonFile
	for rows.Next() {
		var f SeasonFile
		var id, seasonID, qualityName string
		var torrentID sql.NullString
		if err := rows.Scan(&id, &seasonID, &torrentID, &qualityName, &f.FilePathSuffix); err != nil {
			return nil, fmt.Errorf("failed to scan season file: %w", err)
		}
		f.ID = uuid.MustParse(id)
		f.SeasonID = uuid.MustParse(seasonID)
		if torrentID.Valid {
			tid := uuid.MustParse(torrentID.String)
			f.TorrentID = &tid
		}
		var err error
		if f.Quality, err = quality.Parse(qualityName); err != nil {
			return nil, fmt.Errorf("invalid season file quality: %w", err)
		}
		files = append(files, f)
	}
	return files, rows.Err()
}
