package vouchers

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/tallydesk/tallydesk/internal/tally"
)

// Source records where a mirrored voucher originated.
type Source string

const (
	// SourceSync marks vouchers pulled from the Tally day book.
	SourceSync Source = "sync"
	// SourceDashboard marks vouchers entered through the dashboard.
	SourceDashboard Source = "dashboard"
)

// Voucher is a mirrored accounting voucher. The mirror is read-only display
// data; Tally remains the system of record.
type Voucher struct {
	ID        int64           `json:"id"`
	GUID      string          `json:"guid,omitempty"`
	Date      time.Time       `json:"date"`
	Type      string          `json:"type"`
	Number    string          `json:"number"`
	Party     string          `json:"party"`
	Amount    decimal.Decimal `json:"amount"`
	Narration string          `json:"narration,omitempty"`
	Source    Source          `json:"source"`
	CreatedAt time.Time       `json:"created_at"`
}

// ListRequest filters voucher listings.
type ListRequest struct {
	Type    string
	Party   string
	From    time.Time
	To      time.Time
	Page    int
	PerPage int
}

// apiTypeNames maps API voucher types to the names Tally uses.
var apiTypeNames = map[string]string{
	"receipt":  tally.VoucherTypeReceipt,
	"payment":  tally.VoucherTypePayment,
	"sales":    tally.VoucherTypeSales,
	"purchase": tally.VoucherTypePurchase,
}

// TallyTypeName translates an API voucher type ("receipt") to Tally's name
// ("Receipt"). Unknown types pass through unchanged.
func TallyTypeName(apiType string) string {
	if name, ok := apiTypeNames[apiType]; ok {
		return name
	}
	return apiType
}
