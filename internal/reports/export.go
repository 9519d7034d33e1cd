package reports

import (
	"encoding/csv"
	"io"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Amounts in CSV exports use Indian digit grouping (12,34,567.89).
var inPrinter = message.NewPrinter(language.MustParse("en-IN"))

func formatAmount(d decimal.Decimal) string {
	f, _ := d.Float64()
	return inPrinter.Sprint(number.Decimal(f,
		number.MinFractionDigits(2), number.MaxFractionDigits(2)))
}

// WriteRegisterCSV serialises a sales or purchase register to CSV.
func WriteRegisterCSV(w io.Writer, reg Register) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{"Date", "Number", "Party", "GSTIN", "Taxable", "CGST", "SGST", "IGST", "Total"}); err != nil {
		return err
	}
	for _, row := range reg.Rows {
		record := []string{
			row.Date.Format("2006-01-02"),
			row.Number,
			row.Party,
			row.PartyGSTIN,
			formatAmount(row.Taxable),
			formatAmount(row.CGST),
			formatAmount(row.SGST),
			formatAmount(row.IGST),
			formatAmount(row.Total),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	if err := writer.Write([]string{"", "", "Totals", "",
		formatAmount(reg.Totals.Taxable),
		formatAmount(reg.Totals.CGST),
		formatAmount(reg.Totals.SGST),
		formatAmount(reg.Totals.IGST),
		formatAmount(reg.Totals.Total),
	}); err != nil {
		return err
	}
	writer.Flush()
	return writer.Error()
}

// WriteCashBookCSV serialises the cash book to CSV.
func WriteCashBookCSV(w io.Writer, book CashBook) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{"Date", "Type", "Number", "Party", "Receipt", "Payment", "Balance"}); err != nil {
		return err
	}
	if err := writer.Write([]string{book.From.Format("2006-01-02"), "opening", "", "", "", "", formatAmount(book.OpeningBalance)}); err != nil {
		return err
	}
	for _, row := range book.Rows {
		record := []string{
			row.Date.Format("2006-01-02"),
			row.Type,
			row.Number,
			row.Party,
			formatAmount(row.Receipt),
			formatAmount(row.Payment),
			formatAmount(row.Balance),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	if err := writer.Write([]string{book.To.Format("2006-01-02"), "closing", "", "",
		formatAmount(book.TotalReceipts),
		formatAmount(book.TotalPayments),
		formatAmount(book.ClosingBalance),
	}); err != nil {
		return err
	}
	writer.Flush()
	return writer.Error()
}

// WriteGSTSummaryCSV serialises the GST summary to CSV, one section per
// direction.
func WriteGSTSummaryCSV(w io.Writer, summary GSTSummary) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{"Section", "Party", "GSTIN", "Taxable", "CGST", "SGST", "IGST"}); err != nil {
		return err
	}
	sections := []struct {
		label   string
		section GSTSection
	}{
		{"Output", summary.Output},
		{"Input", summary.Input},
	}
	for _, s := range sections {
		for _, line := range s.section.Parties {
			if err := writer.Write([]string{
				s.label, line.Party, line.GSTIN,
				formatAmount(line.Taxable),
				formatAmount(line.CGST),
				formatAmount(line.SGST),
				formatAmount(line.IGST),
			}); err != nil {
				return err
			}
		}
		if err := writer.Write([]string{
			s.label, "Totals", "",
			formatAmount(s.section.Taxable),
			formatAmount(s.section.CGST),
			formatAmount(s.section.SGST),
			formatAmount(s.section.IGST),
		}); err != nil {
			return err
		}
	}
	if err := writer.Write([]string{"Net Liability", "", "", formatAmount(summary.NetLiability), "", "", ""}); err != nil {
		return err
	}
	writer.Flush()
	return writer.Error()
}

// WriteDayBookCSV serialises the day book to CSV.
func WriteDayBookCSV(w io.Writer, book DayBook) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{"Date", "Type", "Number", "Party", "Narration", "Amount"}); err != nil {
		return err
	}
	for _, day := range book.Days {
		for _, v := range day.Entries {
			if err := writer.Write([]string{
				v.Date.Format("2006-01-02"),
				v.Type,
				v.Number,
				v.Party,
				v.Narration,
				formatAmount(v.Amount),
			}); err != nil {
				return err
			}
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteBalanceSheetCSV serialises the balance sheet to CSV.
func WriteBalanceSheetCSV(w io.Writer, bs BalanceSheet) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{"Section", "Group", "Ledger", "Balance"}); err != nil {
		return err
	}
	for _, section := range []BalanceSheetSection{bs.Assets, bs.Liabilities, bs.Equity} {
		for _, acc := range section.Accounts {
			if err := writer.Write([]string{section.Label, acc.Group, acc.Name, formatAmount(acc.Balance)}); err != nil {
				return err
			}
		}
		if err := writer.Write([]string{section.Label, "", "Total", formatAmount(section.Total)}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
