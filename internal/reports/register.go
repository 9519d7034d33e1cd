package reports

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/tallydesk/tallydesk/internal/gst"
	"github.com/tallydesk/tallydesk/internal/vouchers"
)

// RegisterRow is one voucher line in a sales or purchase register with its
// GST breakdown.
type RegisterRow struct {
	Date       time.Time       `json:"date"`
	Number     string          `json:"number"`
	Party      string          `json:"party"`
	PartyGSTIN string          `json:"party_gstin,omitempty"`
	Taxable    decimal.Decimal `json:"taxable"`
	SplitType  gst.SplitType   `json:"split_type,omitempty"`
	CGST       decimal.Decimal `json:"cgst"`
	SGST       decimal.Decimal `json:"sgst"`
	IGST       decimal.Decimal `json:"igst"`
	Total      decimal.Decimal `json:"total"`
	// Unregistered marks rows without a usable party GSTIN; no split is
	// computed for them.
	Unregistered bool `json:"unregistered,omitempty"`
}

// RegisterTotals accumulates the register columns.
type RegisterTotals struct {
	Taxable decimal.Decimal `json:"taxable"`
	CGST    decimal.Decimal `json:"cgst"`
	SGST    decimal.Decimal `json:"sgst"`
	IGST    decimal.Decimal `json:"igst"`
	Total   decimal.Decimal `json:"total"`
}

// Register is the structured response for sales and purchase registers.
type Register struct {
	From   time.Time      `json:"from"`
	To     time.Time      `json:"to"`
	Rate   string         `json:"rate"`
	Rows   []RegisterRow  `json:"rows"`
	Totals RegisterTotals `json:"totals"`
}

// BuildRegister computes the GST split for every voucher against the company
// GSTIN. Voucher amounts are treated as taxable values; partyGSTINs maps
// party ledger names to their GSTINs.
func BuildRegister(entries []vouchers.Voucher, partyGSTINs map[string]string, companyGSTIN string, rate decimal.Decimal, from, to time.Time) Register {
	reg := Register{
		From: from,
		To:   to,
		Rate: rate.String(),
		Rows: []RegisterRow{},
		Totals: RegisterTotals{
			Taxable: decimal.Zero, CGST: decimal.Zero, SGST: decimal.Zero,
			IGST: decimal.Zero, Total: decimal.Zero,
		},
	}

	for _, v := range entries {
		row := RegisterRow{
			Date:    v.Date,
			Number:  v.Number,
			Party:   v.Party,
			Taxable: v.Amount,
			CGST:    decimal.Zero,
			SGST:    decimal.Zero,
			IGST:    decimal.Zero,
			Total:   v.Amount,
		}

		partyGSTIN := partyGSTINs[v.Party]
		split, err := gst.CalculateTax(v.Amount, partyGSTIN, companyGSTIN, rate)
		if err != nil {
			row.Unregistered = true
		} else {
			row.PartyGSTIN = partyGSTIN
			row.SplitType = split.Type
			row.CGST = split.CGST
			row.SGST = split.SGST
			row.IGST = split.IGST
			row.Total = v.Amount.Add(split.TotalTax)
		}

		reg.Rows = append(reg.Rows, row)
		reg.Totals.Taxable = reg.Totals.Taxable.Add(row.Taxable)
		reg.Totals.CGST = reg.Totals.CGST.Add(row.CGST)
		reg.Totals.SGST = reg.Totals.SGST.Add(row.SGST)
		reg.Totals.IGST = reg.Totals.IGST.Add(row.IGST)
		reg.Totals.Total = reg.Totals.Total.Add(row.Total)
	}
	return reg
}
