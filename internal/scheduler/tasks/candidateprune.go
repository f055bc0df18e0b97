package tasks

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/seasonarr/seasonarr/internal/indexer"
	"github.com/seasonarr/seasonarr/internal/scheduler"
)

// candidateRetention is how long a cached search result stays resolvable
// before the nightly prune drops it.
const candidateRetention = 7 * 24 * time.Hour

// RegisterCandidatePruneTask registers the nightly cleanup of stale cached
// search results.
func RegisterCandidatePruneTask(sched *scheduler.Scheduler, repo *indexer.Repository, logger zerolog.Logger) error {
	taskLogger := logger.With().Str("task", "candidate-prune").Logger()
	return sched.RegisterTask(scheduler.TaskConfig{
		ID:          "candidate-prune",
		Name:        "Candidate Prune",
		Description: "Deletes cached search results older than the retention window",
		Cron:        "0 3 * * *",
		RunOnStart:  false,
		Func: func(ctx context.Context) error {
			pruned, err := repo.PruneSeenBefore(ctx, time.Now().Add(-candidateRetention))
			if err != nil {
				return err
			}
			if pruned > 0 {
				taskLogger.Info().Int64("pruned", pruned).Msg("Pruned stale candidates")
			}
			return nil
		},
	})
}
