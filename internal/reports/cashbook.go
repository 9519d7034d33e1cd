package reports

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/tallydesk/tallydesk/internal/tally"
	"github.com/tallydesk/tallydesk/internal/vouchers"
)

// CashBookRow is one receipt or payment with the running balance after it.
type CashBookRow struct {
	Date      time.Time       `json:"date"`
	Type      string          `json:"type"`
	Number    string          `json:"number"`
	Party     string          `json:"party"`
	Narration string          `json:"narration,omitempty"`
	Receipt   decimal.Decimal `json:"receipt"`
	Payment   decimal.Decimal `json:"payment"`
	Balance   decimal.Decimal `json:"balance"`
}

// CashBook is the structured response for the cash book report.
type CashBook struct {
	From           time.Time       `json:"from"`
	To             time.Time       `json:"to"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	Rows           []CashBookRow   `json:"rows"`
	TotalReceipts  decimal.Decimal `json:"total_receipts"`
	TotalPayments  decimal.Decimal `json:"total_payments"`
	ClosingBalance decimal.Decimal `json:"closing_balance"`
}

// BuildCashBook walks receipts and payments in date order, maintaining a
// running balance from the opening balance. Entries must be sorted oldest
// first.
func BuildCashBook(entries []vouchers.Voucher, opening decimal.Decimal, from, to time.Time) CashBook {
	book := CashBook{
		From:           from,
		To:             to,
		OpeningBalance: opening,
		Rows:           []CashBookRow{},
		TotalReceipts:  decimal.Zero,
		TotalPayments:  decimal.Zero,
		ClosingBalance: opening,
	}

	balance := opening
	for _, v := range entries {
		row := CashBookRow{
			Date:      v.Date,
			Type:      v.Type,
			Number:    v.Number,
			Party:     v.Party,
			Narration: v.Narration,
			Receipt:   decimal.Zero,
			Payment:   decimal.Zero,
		}
		switch vouchers.TallyTypeName(v.Type) {
		case tally.VoucherTypeReceipt:
			row.Receipt = v.Amount
			balance = balance.Add(v.Amount)
			book.TotalReceipts = book.TotalReceipts.Add(v.Amount)
		case tally.VoucherTypePayment:
			row.Payment = v.Amount
			balance = balance.Sub(v.Amount)
			book.TotalPayments = book.TotalPayments.Add(v.Amount)
		default:
			continue
		}
		row.Balance = balance
		book.Rows = append(book.Rows, row)
	}
	book.ClosingBalance = balance
	return book
}
