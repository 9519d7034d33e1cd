package audit

import (
	"time"

	"github.com/google/uuid"
)

// Finding flags one ledger whose GST registration needs attention.
type Finding struct {
	LedgerGUID string `json:"ledger_guid"`
	LedgerName string `json:"ledger_name"`
	GSTIN      string `json:"gstin,omitempty"`
	Reason     string `json:"reason"`
}

// Run records one compliance scan over the mirrored ledgers.
type Run struct {
	ID         uuid.UUID `json:"id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Scanned    int       `json:"scanned"`
	Flagged    int       `json:"flagged"`
	Findings   []Finding `json:"findings"`
}
