package tally

import (
	"time"

	"github.com/shopspring/decimal"
)

// Voucher type names as Tally reports them.
const (
	VoucherTypeReceipt  = "Receipt"
	VoucherTypePayment  = "Payment"
	VoucherTypeSales    = "Sales"
	VoucherTypePurchase = "Purchase"
	VoucherTypeContra   = "Contra"
	VoucherTypeJournal  = "Journal"
)

// Ledger is a ledger master exported from Tally.
type Ledger struct {
	GUID           string
	Name           string
	Parent         string
	GSTIN          string
	OpeningBalance decimal.Decimal
	ClosingBalance decimal.Decimal
}

// Voucher is a day-book entry exported from Tally. Amount is the absolute
// voucher value; Tally reports credits as negative numbers.
type Voucher struct {
	GUID      string
	Date      time.Time
	Type      string
	Number    string
	Party     string
	Amount    decimal.Decimal
	Narration string
}

// ImportResult summarises the outcome of a voucher import.
type ImportResult struct {
	Created int
	Altered int
	Errors  int
}
