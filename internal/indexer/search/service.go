// Package search aggregates results from all configured indexer backends.
package search

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/seasonarr/seasonarr/internal/indexer"
	"github.com/seasonarr/seasonarr/internal/indexer/scoring"
	"github.com/seasonarr/seasonarr/internal/indexer/types"
)

// searchTimeout bounds each aggregated search across all backends.
const searchTimeout = 30 * time.Second

// Service fans a query out to every configured backend, scores the combined
// results and persists them for later retrieval by id.
type Service struct {
	indexers   []indexer.Indexer
	candidates *indexer.Repository
	scorer     *scoring.Scorer
	logger     zerolog.Logger
}

// NewService creates a search service over the given backends.
func NewService(indexers []indexer.Indexer, candidates *indexer.Repository, scorer *scoring.Scorer, logger zerolog.Logger) *Service {
	return &Service{
		indexers:   indexers,
		candidates: candidates,
		scorer:     scorer,
		logger:     logger.With().Str("component", "search").Logger(),
	}
}

// searchTaskResult carries one backend's outcome through the fan-in channel.
type searchTaskResult struct {
	indexerName string
	candidates  []types.Candidate
	err         error
}

// Search queries all backends in parallel, scores the merged results against
// the library's rulesets and returns them ranked. A backend failure is logged
// and excluded; when every backend fails the result is simply empty.
func (s *Service) Search(ctx context.Context, query, library string, isTV bool) ([]types.Candidate, error) {
	merged := s.dispatchSearches(ctx, query, isTV)
	scored := s.scorer.Score(merged, library, isTV)

	for i := range scored {
		if err := s.candidates.Upsert(ctx, &scored[i]); err != nil {
			s.logger.Error().
				Err(err).
				Str("title", scored[i].Title).
				Msg("Failed to persist search candidate")
		}
	}

	s.logger.Info().
		Str("query", query).
		Int("merged", len(merged)).
		Int("ranked", len(scored)).
		Msg("Search completed")

	return scored, nil
}

// dispatchSearches runs the query in parallel across backends.
func (s *Service) dispatchSearches(ctx context.Context, query string, isTV bool) []types.Candidate {
	var wg sync.WaitGroup
	resultsChan := make(chan searchTaskResult, len(s.indexers))

	searchCtx, cancel := context.WithTimeout(ctx, searchTimeout)
	defer cancel()

	for _, idx := range s.indexers {
		wg.Add(1)
		go func(backend indexer.Indexer) {
			defer wg.Done()
			candidates, err := backend.Search(searchCtx, query, isTV)
			resultsChan <- searchTaskResult{
				indexerName: backend.Name(),
				candidates:  candidates,
				err:         err,
			}
		}(idx)
	}

	go func() {
		wg.Wait()
		close(resultsChan)
	}()

	merged := make([]types.Candidate, 0)
	for result := range resultsChan {
		if result.err != nil {
			s.logger.Error().
				Err(result.err).
				Str("indexer", result.indexerName).
				Msg("Indexer search failed")
			continue
		}
		s.logger.Debug().
			Str("indexer", result.indexerName).
			Int("results", len(result.candidates)).
			Msg("Indexer search succeeded")
		merged = append(merged, result.candidates...)
	}

	return merged
}

// Candidate returns a previously persisted candidate by id.
func (s *Service) Candidate(ctx context.Context, id uuid.UUID) (*types.Candidate, error) {
	return s.candidates.Get(ctx, id)
}
