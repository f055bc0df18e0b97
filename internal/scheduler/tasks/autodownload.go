package tasks

import (
	"context"

	"github.com/seasonarr/seasonarr/internal/acquisition"
	"github.com/seasonarr/seasonarr/internal/scheduler"
)

// RegisterAutoDownloadTask registers the periodic sweep over authorized
// season requests.
func RegisterAutoDownloadTask(sched *scheduler.Scheduler, svc *acquisition.Service) error {
	return sched.RegisterTask(scheduler.TaskConfig{
		ID:          "auto-download",
		Name:        "Auto Download",
		Description: "Searches indexers for every authorized season request and submits the best match",
		Cron:        "*/15 * * * *",
		RunOnStart:  false,
		Func: func(ctx context.Context) error {
			_, err := svc.AutoDownloadApproved(ctx)
			return err
		},
	})
}
