package ledgers

import (
	"time"

	"github.com/shopspring/decimal"
)

// Ledger is a mirrored Tally ledger master.
type Ledger struct {
	ID             int64           `json:"id"`
	GUID           string          `json:"guid"`
	Name           string          `json:"name"`
	Parent         string          `json:"parent"`
	GSTIN          string          `json:"gstin,omitempty"`
	StateCode      string          `json:"state_code,omitempty"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	ClosingBalance decimal.Decimal `json:"closing_balance"`
	SyncedAt       time.Time       `json:"synced_at"`
}

// ListRequest filters ledger listings.
type ListRequest struct {
	Query   string
	Parent  string
	Page    int
	PerPage int
}
