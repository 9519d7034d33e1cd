package reports

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tallydesk/tallydesk/internal/gst"
	"github.com/tallydesk/tallydesk/internal/tally"
	"github.com/tallydesk/tallydesk/internal/vouchers"
)

// GSTPartyLine aggregates one party's taxable turnover and tax split.
type GSTPartyLine struct {
	Party   string          `json:"party"`
	GSTIN   string          `json:"gstin,omitempty"`
	Taxable decimal.Decimal `json:"taxable"`
	CGST    decimal.Decimal `json:"cgst"`
	SGST    decimal.Decimal `json:"sgst"`
	IGST    decimal.Decimal `json:"igst"`
}

// GSTSection totals one direction of tax: output (sales) or input (purchases).
type GSTSection struct {
	Parties []GSTPartyLine  `json:"parties"`
	Taxable decimal.Decimal `json:"taxable"`
	CGST    decimal.Decimal `json:"cgst"`
	SGST    decimal.Decimal `json:"sgst"`
	IGST    decimal.Decimal `json:"igst"`
	Total   decimal.Decimal `json:"total"`
}

// GSTSummary is the structured response for the GST summary report. Net
// liability is output tax minus input tax credit.
type GSTSummary struct {
	From         time.Time       `json:"from"`
	To           time.Time       `json:"to"`
	Rate         string          `json:"rate"`
	Output       GSTSection      `json:"output"`
	Input        GSTSection      `json:"input"`
	NetLiability decimal.Decimal `json:"net_liability"`
	// Unregistered counts vouchers skipped because the party has no usable
	// GSTIN; their turnover is excluded from both sections.
	Unregistered int `json:"unregistered"`
}

// BuildGSTSummary folds sales and purchase vouchers into per-party output and
// input tax sections against the company GSTIN.
func BuildGSTSummary(entries []vouchers.Voucher, partyGSTINs map[string]string, companyGSTIN string, rate decimal.Decimal, from, to time.Time) GSTSummary {
	summary := GSTSummary{
		From:   from,
		To:     to,
		Rate:   rate.String(),
		Output: newGSTSection(),
		Input:  newGSTSection(),
	}
	outputByParty := map[string]*GSTPartyLine{}
	inputByParty := map[string]*GSTPartyLine{}

	for _, v := range entries {
		var section *GSTSection
		var byParty map[string]*GSTPartyLine
		switch vouchers.TallyTypeName(v.Type) {
		case tally.VoucherTypeSales:
			section, byParty = &summary.Output, outputByParty
		case tally.VoucherTypePurchase:
			section, byParty = &summary.Input, inputByParty
		default:
			continue
		}

		partyGSTIN := partyGSTINs[v.Party]
		split, err := gst.CalculateTax(v.Amount, partyGSTIN, companyGSTIN, rate)
		if err != nil {
			summary.Unregistered++
			continue
		}

		line, ok := byParty[v.Party]
		if !ok {
			line = &GSTPartyLine{
				Party: v.Party, GSTIN: partyGSTIN,
				Taxable: decimal.Zero, CGST: decimal.Zero, SGST: decimal.Zero, IGST: decimal.Zero,
			}
			byParty[v.Party] = line
		}
		line.Taxable = line.Taxable.Add(v.Amount)
		line.CGST = line.CGST.Add(split.CGST)
		line.SGST = line.SGST.Add(split.SGST)
		line.IGST = line.IGST.Add(split.IGST)

		section.Taxable = section.Taxable.Add(v.Amount)
		section.CGST = section.CGST.Add(split.CGST)
		section.SGST = section.SGST.Add(split.SGST)
		section.IGST = section.IGST.Add(split.IGST)
		section.Total = section.Total.Add(split.TotalTax)
	}

	summary.Output.Parties = sortedLines(outputByParty)
	summary.Input.Parties = sortedLines(inputByParty)
	summary.NetLiability = summary.Output.Total.Sub(summary.Input.Total)
	return summary
}

func newGSTSection() GSTSection {
	return GSTSection{
		Parties: []GSTPartyLine{},
		Taxable: decimal.Zero, CGST: decimal.Zero, SGST: decimal.Zero,
		IGST: decimal.Zero, Total: decimal.Zero,
	}
}

func sortedLines(byParty map[string]*GSTPartyLine) []GSTPartyLine {
	lines := make([]GSTPartyLine, 0, len(byParty))
	for _, line := range byParty {
		lines = append(lines, *line)
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].Party < lines[j].Party })
	return lines
}
