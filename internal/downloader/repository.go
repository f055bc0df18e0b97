package downloader

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/seasonarr/seasonarr/internal/downloader/types"
	"github.com/seasonarr/seasonarr/internal/library/quality"
)

// ErrTorrentNotFound is returned when a tracked torrent does not exist.
var ErrTorrentNotFound = errors.New("torrent not found")

// Repository persists tracked torrents.
type Repository struct {
	db     *sql.DB
	logger zerolog.Logger
}

// NewRepository creates a new torrent repository.
func NewRepository(db *sql.DB, logger zerolog.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger.With().Str("component", "downloader").Logger(),
	}
}

// Save inserts a torrent or updates its mutable fields.
func (r *Repository) Save(ctx context.Context, t *types.Torrent) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO torrents (id, title, hash, status, quality, imported)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET
		   status = excluded.status,
		   imported = excluded.imported`,
		t.ID.String(), t.Title, t.Hash, string(t.Status), t.Quality.String(), t.Imported)
	if err != nil {
		return fmt.Errorf("failed to save torrent: %w", err)
	}
	return nil
}

// Get retrieves a torrent by ID.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (*types.Torrent, error) {
	return r.scanOne(r.db.QueryRowContext(ctx,
		`SELECT id, title, hash, status, quality, imported FROM torrents WHERE id = ?`,
		id.String()))
}

// GetByHash retrieves a torrent by its info hash.
func (r *Repository) GetByHash(ctx context.Context, hash string) (*types.Torrent, error) {
	return r.scanOne(r.db.QueryRowContext(ctx,
		`SELECT id, title, hash, status, quality, imported FROM torrents WHERE hash = ?`,
		hash))
}

// List returns all tracked torrents.
func (r *Repository) List(ctx context.Context) ([]types.Torrent, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, title, hash, status, quality, imported FROM torrents ORDER BY title`)
	if err != nil {
		return nil, fmt.Errorf("failed to list torrents: %w", err)
	}
	defer rows.Close()
	return collectTorrents(rows)
}

// ListFinishedUnimported returns torrents that finished downloading but have
// not yet been imported into the library.
func (r *Repository) ListFinishedUnimported(ctx context.Context) ([]types.Torrent, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, title, hash, status, quality, imported FROM torrents
		 WHERE status = ? AND imported = 0 ORDER BY title`,
		string(types.StatusFinished))
	if err != nil {
		return nil, fmt.Errorf("failed to list finished torrents: %w", err)
	}
	defer rows.Close()
	return collectTorrents(rows)
}

// MarkImported flips the imported flag for a torrent.
func (r *Repository) MarkImported(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE torrents SET imported = 1 WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("failed to mark torrent imported: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrTorrentNotFound
	}
	return nil
}

// UpdateStatus sets the current status of a torrent.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status types.Status) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE torrents SET status = ? WHERE id = ?`, string(status), id.String())
	if err != nil {
		return fmt.Errorf("failed to update torrent status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrTorrentNotFound
	}
	return nil
}

// Delete removes a torrent row.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM torrents WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("failed to delete torrent: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrTorrentNotFound
	}
	return nil
}

func (r *Repository) scanOne(row *sql.Row) (*types.Torrent, error) {
	var t types.Torrent
	var idStr, status, qualityName string
	err := row.Scan(&idStr, &t.Title, &t.Hash, &status, &qualityName, &t.Imported)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTorrentNotFound
		}
		return nil, fmt.Errorf("failed to get torrent: %w", err)
	}
	t.ID = uuid.MustParse(idStr)
	t.Status = types.ParseStatus(status)
	if t.Quality, err = quality.Parse(qualityName); err != nil {
		return nil, fmt.Errorf("invalid torrent quality: %w", err)
	}
	return &t, nil
}

func collectTorrents(rows *sql.Rows) ([]types.Torrent, error) {
	var torrents []types.Torrent
	for rows.Next() {
		var t types.Torrent
		var idStr, status, qualityName string
		if err := rows.Scan(&idStr, &t.Title, &t.Hash, &status, &qualityName, &t.Imported); err != nil {
			return nil, fmt.Errorf("failed to scan torrent: %w", err)
		}
		t.ID = uuid.MustParse(idStr)
		t.Status = types.ParseStatus(status)
		var err error
		if t.Quality, err = quality.Parse(qualityName); err != nil {
			return nil, fmt.Errorf("invalid torrent quality: %w", err)
		}
		torrents = append(torrents, t)
	}
	return torrents, rows.Err()
}
