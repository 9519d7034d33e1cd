package jobs

import (
	"context"

	"github.com/hibiken/asynq"

	"github.com/tallydesk/tallydesk/internal/audit"
	"github.com/tallydesk/tallydesk/internal/tallysync"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTallySync pulls ledgers and the day book into the mirror.
	TaskTallySync = "tally:sync"
	// TaskComplianceScan validates mirrored ledger GSTINs.
	TaskComplianceScan = "audit:compliance"
)

// NewTallySyncTask constructs a sync task. The task carries no payload; the
// worker always performs a full pass.
func NewTallySyncTask() *asynq.Task {
	return asynq.NewTask(TaskTallySync, nil)
}

// NewComplianceScanTask constructs a compliance scan task.
func NewComplianceScanTask() *asynq.Task {
	return asynq.NewTask(TaskComplianceScan, nil)
}

// HandleTallySync returns the handler for TaskTallySync.
func HandleTallySync(svc *tallysync.Service) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		_, err := svc.Sync(ctx)
		return err
	}
}

// HandleComplianceScan returns the handler for TaskComplianceScan.
func HandleComplianceScan(svc *audit.Service) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		_, err := svc.RunScan(ctx)
		return err
	}
}
