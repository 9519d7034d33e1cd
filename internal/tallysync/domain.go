package tallysync

import (
	"time"

	"github.com/google/uuid"
)

// RunStatus is the terminal state of a sync run.
type RunStatus string

const (
	StatusOK     RunStatus = "ok"
	StatusFailed RunStatus = "failed"
)

// Run records one sync pass against the Tally gateway.
type Run struct {
	ID         uuid.UUID `json:"id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Status     RunStatus `json:"status"`
	Ledgers    int       `json:"ledgers"`
	Vouchers   int       `json:"vouchers"`
	Error      string    `json:"error,omitempty"`
}

// Status summarises sync health for the dashboard.
type Status struct {
	LastRun *Run  `json:"last_run"`
	Recent  []Run `json:"recent"`
}
