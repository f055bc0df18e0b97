package tasks

import (
	"context"

	"github.com/seasonarr/seasonarr/internal/importer"
	"github.com/seasonarr/seasonarr/internal/scheduler"
)

// RegisterImportScanTask registers the periodic import of finished transfers
// into the library tree.
func RegisterImportScanTask(sched *scheduler.Scheduler, svc *importer.Service) error {
	return sched.RegisterTask(scheduler.TaskConfig{
		ID:          "import-scan",
		Name:        "Import Scan",
		Description: "Imports finished downloads into the library, hardlinking episode and subtitle files",
		Cron:        "*/15 * * * *",
		RunOnStart:  true,
		Func: func(ctx context.Context) error {
			_, err := svc.ImportFinished(ctx)
			return err
		},
	})
}
