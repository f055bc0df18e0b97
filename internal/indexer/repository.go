package indexer

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/seasonarr/seasonarr/internal/indexer/types"
	"github.com/seasonarr/seasonarr/internal/library/quality"
)

// ErrCandidateNotFound is returned when a cached candidate no longer exists.
var ErrCandidateNotFound = errors.New("candidate not found")

// Repository caches search candidates. Candidates are produced fresh per
// search; the cache only serves later lookups by ID (grabbing a result the
// user picked) and is never the source of truth for acquisition state.
type Repository struct {
	db     *sql.DB
	logger zerolog.Logger
}

// NewRepository creates a new candidate repository.
func NewRepository(db *sql.DB, logger zerolog.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger.With().Str("component", "indexer").Logger(),
	}
}

// Upsert stores a candidate, replacing any previous row with the same ID.
func (r *Repository) Upsert(ctx context.Context, c *types.Candidate) error {
	flags, err := json.Marshal(c.Flags)
	if err != nil {
		return fmt.Errorf("failed to encode flags: %w", err)
	}
	seasons, err := json.Marshal(c.Seasons)
	if err != nil {
		return fmt.Errorf("failed to encode seasons: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO candidates
		   (id, indexer, title, download_url, seeders, flags, size, quality, seasons, protocol, age_minutes, score, seen_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT (id) DO UPDATE SET
		   seeders = excluded.seeders,
		   flags = excluded.flags,
		   score = excluded.score,
		   seen_at = CURRENT_TIMESTAMP`,
		c.ID.String(), c.Indexer, c.Title, c.DownloadURL, c.Seeders,
		string(flags), c.Size, c.Quality.String(), string(seasons),
		string(c.Protocol), c.AgeMinutes, c.Score)
	if err != nil {
		return fmt.Errorf("failed to upsert candidate: %w", err)
	}
	return nil
}

// Get retrieves a cached candidate by ID.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (*types.Candidate, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, indexer, title, download_url, seeders, flags, size, quality, seasons, protocol, age_minutes, score
		 FROM candidates WHERE id = ?`,
		id.String())

	var c types.Candidate
	var idStr, flags, qualityName, seasons, protocol string
	err := row.Scan(&idStr, &c.Indexer, &c.Title, &c.DownloadURL, &c.Seeders,
		&flags, &c.Size, &qualityName, &seasons, &protocol, &c.AgeMinutes, &c.Score)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCandidateNotFound
		}
		return nil, fmt.Errorf("failed to get candidate: %w", err)
	}

	c.ID = uuid.MustParse(idStr)
	c.Protocol = types.Protocol(protocol)
	if err := json.Unmarshal([]byte(flags), &c.Flags); err != nil {
		return nil, fmt.Errorf("failed to decode flags: %w", err)
	}
	if err := json.Unmarshal([]byte(seasons), &c.Seasons); err != nil {
		return nil, fmt.Errorf("failed to decode seasons: %w", err)
	}
	if c.Quality, err = quality.Parse(qualityName); err != nil {
		return nil, fmt.Errorf("invalid candidate quality: %w", err)
	}
	return &c, nil
}

// PruneSeenBefore drops cached candidates older than the cutoff. Returns the
// number of rows removed.
func (r *Repository) PruneSeenBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM candidates WHERE seen_at < ?`, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to prune candidates: %w", err)
	}
	return res.RowsAffected()
}
