package workers

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/gridware/wd-launcher/types"
)

// DryRunLauncher satisfies SessionLauncher without driving a real browser.
// It is used by the --dry-run mode and by tests to exercise the full
// lifecycle without a remote automation endpoint.
type DryRunLauncher struct {
	Log *zap.SugaredLogger
}

// LaunchSession reports every assigned spec as passed.
func (d *DryRunLauncher) LaunchSession(_ context.Context, work Work) (types.WorkerResult, error) {
	start := time.Now()
	if d.Log != nil {
		d.Log.Infow("Dry-run worker session",
			"workerID", work.WorkerID,
			"capability", work.Capability.DisplayName(),
			"specs", len(work.Specs))
	}
	return types.WorkerResult{
		WorkerID:   work.WorkerID,
		Capability: work.Capability,
		Specs:      work.Specs,
		Status:     types.WorkerStatusPass,
		Duration:   time.Since(start),
	}, nil
}
