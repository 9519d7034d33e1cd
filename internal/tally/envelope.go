package tally

import (
	"time"

	"github.com/beevik/etree"
)

// tallyDateLayout is the yyyymmdd format the gateway expects and emits.
const tallyDateLayout = "20060102"

// exportRequest builds an Export Data envelope for the named report.
func exportRequest(report, company string, from, to time.Time) *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	envelope := doc.CreateElement("ENVELOPE")

	header := envelope.CreateElement("HEADER")
	header.CreateElement("TALLYREQUEST").SetText("Export Data")

	desc := envelope.CreateElement("BODY").CreateElement("EXPORTDATA").CreateElement("REQUESTDESC")
	desc.CreateElement("REPORTNAME").SetText(report)
	vars := desc.CreateElement("STATICVARIABLES")
	vars.CreateElement("SVEXPORTFORMAT").SetText("$$SysName:XML")
	if company != "" {
		vars.CreateElement("SVCURRENTCOMPANY").SetText(company)
	}
	if !from.IsZero() {
		vars.CreateElement("SVFROMDATE").SetText(from.Format(tallyDateLayout))
	}
	if !to.IsZero() {
		vars.CreateElement("SVTODATE").SetText(to.Format(tallyDateLayout))
	}
	return doc
}

// importVoucherRequest builds an Import Data envelope creating one voucher.
func importVoucherRequest(company string, v Voucher) *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	envelope := doc.CreateElement("ENVELOPE")

	header := envelope.CreateElement("HEADER")
	header.CreateElement("TALLYREQUEST").SetText("Import Data")

	importData := envelope.CreateElement("BODY").CreateElement("IMPORTDATA")
	desc := importData.CreateElement("REQUESTDESC")
	desc.CreateElement("REPORTNAME").SetText("Vouchers")
	if company != "" {
		desc.CreateElement("STATICVARIABLES").CreateElement("SVCURRENTCOMPANY").SetText(company)
	}

	message := importData.CreateElement("REQUESTDATA").CreateElement("TALLYMESSAGE")
	voucher := message.CreateElement("VOUCHER")
	voucher.CreateAttr("VCHTYPE", v.Type)
	voucher.CreateAttr("ACTION", "Create")
	voucher.CreateElement("DATE").SetText(v.Date.Format(tallyDateLayout))
	voucher.CreateElement("VOUCHERTYPENAME").SetText(v.Type)
	if v.Number != "" {
		voucher.CreateElement("VOUCHERNUMBER").SetText(v.Number)
	}
	voucher.CreateElement("PARTYLEDGERNAME").SetText(v.Party)
	if v.Narration != "" {
		voucher.CreateElement("NARRATION").SetText(v.Narration)
	}

	// Double entry: the party ledger and the counter ledger carry opposite
	// signs; receipts credit the party, payments debit it.
	partyEntry := voucher.CreateElement("ALLLEDGERENTRIES.LIST")
	partyEntry.CreateElement("LEDGERNAME").SetText(v.Party)
	counterEntry := voucher.CreateElement("ALLLEDGERENTRIES.LIST")
	counterEntry.CreateElement("LEDGERNAME").SetText(counterLedgerFor(v.Type))

	amount := v.Amount.StringFixed(2)
	negated := v.Amount.Neg().StringFixed(2)
	switch v.Type {
	case VoucherTypeReceipt, VoucherTypeSales:
		partyEntry.CreateElement("ISDEEMEDPOSITIVE").SetText("No")
		partyEntry.CreateElement("AMOUNT").SetText(amount)
		counterEntry.CreateElement("ISDEEMEDPOSITIVE").SetText("Yes")
		counterEntry.CreateElement("AMOUNT").SetText(negated)
	default:
		partyEntry.CreateElement("ISDEEMEDPOSITIVE").SetText("Yes")
		partyEntry.CreateElement("AMOUNT").SetText(negated)
		counterEntry.CreateElement("ISDEEMEDPOSITIVE").SetText("No")
		counterEntry.CreateElement("AMOUNT").SetText(amount)
	}
	return doc
}

// counterLedgerFor picks the default balancing ledger for simple entries made
// from the dashboard. Receipts and payments settle against Cash.
func counterLedgerFor(voucherType string) string {
	switch voucherType {
	case VoucherTypeSales:
		return "Sales Account"
	case VoucherTypePurchase:
		return "Purchase Account"
	default:
		return "Cash"
	}
}
