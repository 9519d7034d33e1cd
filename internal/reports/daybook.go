package reports

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/tallydesk/tallydesk/internal/vouchers"
)

// DayBookGroup collects one day's vouchers with a per-type amount rollup.
type DayBookGroup struct {
	Date     time.Time                  `json:"date"`
	Entries  []vouchers.Voucher         `json:"entries"`
	ByType   map[string]decimal.Decimal `json:"by_type"`
	DayTotal decimal.Decimal            `json:"day_total"`
}

// DayBook is the structured response for the day book report.
type DayBook struct {
	From    time.Time       `json:"from"`
	To      time.Time       `json:"to"`
	Days    []DayBookGroup  `json:"days"`
	Total   decimal.Decimal `json:"total"`
	Entries int             `json:"entries"`
}

// BuildDayBook groups vouchers by date with per-type subtotals. Entries must
// be sorted oldest first; days keep that order.
func BuildDayBook(entries []vouchers.Voucher, from, to time.Time) DayBook {
	book := DayBook{From: from, To: to, Days: []DayBookGroup{}, Total: decimal.Zero}

	var current *DayBookGroup
	for _, v := range entries {
		day := v.Date.Truncate(24 * time.Hour)
		if current == nil || !current.Date.Equal(day) {
			book.Days = append(book.Days, DayBookGroup{
				Date:     day,
				Entries:  []vouchers.Voucher{},
				ByType:   map[string]decimal.Decimal{},
				DayTotal: decimal.Zero,
			})
			current = &book.Days[len(book.Days)-1]
		}
		current.Entries = append(current.Entries, v)
		current.ByType[v.Type] = current.ByType[v.Type].Add(v.Amount)
		current.DayTotal = current.DayTotal.Add(v.Amount)
		book.Total = book.Total.Add(v.Amount)
		book.Entries++
	}
	return book
}
