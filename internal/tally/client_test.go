package tally

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallydesk/tallydesk/internal/shared"
	_ "github.com/tallydesk/tallydesk/testing"
)

const ledgersResponse = `<?xml version="1.0" encoding="UTF-8"?>
<ENVELOPE>
 <BODY><DATA><COLLECTION>
  <LEDGER NAME="Acme Traders">
   <GUID>guid-acme-1</GUID>
   <PARENT>Sundry Debtors</PARENT>
   <PARTYGSTIN>29ABCDE1234F1ZW</PARTYGSTIN>
   <OPENINGBALANCE>-1500.00</OPENINGBALANCE>
   <CLOSINGBALANCE>-2750.50</CLOSINGBALANCE>
  </LEDGER>
  <LEDGER NAME="Cash">
   <GUID>guid-cash-1</GUID>
   <PARENT>Cash-in-Hand</PARENT>
   <OPENINGBALANCE>10000.00</OPENINGBALANCE>
   <CLOSINGBALANCE>8200.00</CLOSINGBALANCE>
  </LEDGER>
 </COLLECTION></DATA></BODY>
</ENVELOPE>`

const dayBookResponse = `<?xml version="1.0" encoding="UTF-8"?>
<ENVELOPE>
 <BODY><DATA><TALLYMESSAGE>
  <VOUCHER VCHTYPE="Sales">
   <GUID>guid-vch-1</GUID>
   <DATE>20250415</DATE>
   <VOUCHERTYPENAME>Sales</VOUCHERTYPENAME>
   <VOUCHERNUMBER>42</VOUCHERNUMBER>
   <PARTYLEDGERNAME>Acme Traders</PARTYLEDGERNAME>
   <NARRATION>April invoice</NARRATION>
   <ALLLEDGERENTRIES.LIST><LEDGERNAME>Acme Traders</LEDGERNAME><AMOUNT>-1180.00</AMOUNT></ALLLEDGERENTRIES.LIST>
   <ALLLEDGERENTRIES.LIST><LEDGERNAME>Sales Account</LEDGERNAME><AMOUNT>1180.00</AMOUNT></ALLLEDGERENTRIES.LIST>
  </VOUCHER>
  <VOUCHER VCHTYPE="Receipt">
   <GUID>guid-vch-2</GUID>
   <DATE>bogus</DATE>
   <VOUCHERTYPENAME>Receipt</VOUCHERTYPENAME>
  </VOUCHER>
 </TALLYMESSAGE></DATA></BODY>
</ENVELOPE>`

const importOKResponse = `<?xml version="1.0" encoding="UTF-8"?>
<ENVELOPE><BODY><DATA><IMPORTRESULT>
 <CREATED>1</CREATED><ALTERED>0</ALTERED><ERRORS>0</ERRORS>
</IMPORTRESULT></DATA></BODY></ENVELOPE>`

const importRejectedResponse = `<?xml version="1.0" encoding="UTF-8"?>
<ENVELOPE><BODY><DATA><IMPORTRESULT>
 <CREATED>0</CREATED><ALTERED>0</ALTERED><ERRORS>1</ERRORS>
 <LINEERROR>Ledger 'Nobody' does not exist!</LINEERROR>
</IMPORTRESULT></DATA></BODY></ENVELOPE>`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{BaseURL: srv.URL, Company: "Demo Co", Timeout: 2 * time.Second})
}

func TestFetchLedgers(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.Contains(t, string(body), "List of Accounts")
		assert.Contains(t, string(body), "Demo Co")
		_, _ = w.Write([]byte(ledgersResponse))
	})

	ledgers, err := client.FetchLedgers(context.Background())
	require.NoError(t, err)
	require.Len(t, ledgers, 2)

	assert.Equal(t, "Acme Traders", ledgers[0].Name)
	assert.Equal(t, "guid-acme-1", ledgers[0].GUID)
	assert.Equal(t, "Sundry Debtors", ledgers[0].Parent)
	assert.Equal(t, "29ABCDE1234F1ZW", ledgers[0].GSTIN)
	assert.True(t, ledgers[0].ClosingBalance.Equal(decimal.RequireFromString("-2750.50")))
	assert.Empty(t, ledgers[1].GSTIN)
}

func TestFetchDayBookSkipsUnparsableVouchers(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.Contains(t, string(body), "Day Book")
		assert.Contains(t, string(body), "20250401")
		assert.Contains(t, string(body), "20250430")
		_, _ = w.Write([]byte(dayBookResponse))
	})

	from := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 4, 30, 0, 0, 0, 0, time.UTC)
	vouchers, err := client.FetchDayBook(context.Background(), from, to)
	require.NoError(t, err)
	require.Len(t, vouchers, 1)

	v := vouchers[0]
	assert.Equal(t, "guid-vch-1", v.GUID)
	assert.Equal(t, VoucherTypeSales, v.Type)
	assert.Equal(t, "42", v.Number)
	assert.Equal(t, "Acme Traders", v.Party)
	assert.Equal(t, "April invoice", v.Narration)
	assert.True(t, v.Amount.Equal(decimal.RequireFromString("1180.00")), "amount = %s", v.Amount)
	assert.Equal(t, 15, v.Date.Day())
}

func TestImportVoucher(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.Contains(t, string(body), "Import Data")
		assert.Contains(t, string(body), `VCHTYPE="Receipt"`)
		assert.Contains(t, string(body), "Acme Traders")
		_, _ = w.Write([]byte(importOKResponse))
	})

	result, err := client.ImportVoucher(context.Background(), Voucher{
		Type:   VoucherTypeReceipt,
		Date:   time.Date(2025, 4, 20, 0, 0, 0, 0, time.UTC),
		Party:  "Acme Traders",
		Amount: decimal.RequireFromString("500.00"),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Created)
}

func TestImportVoucherRejected(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(importRejectedResponse))
	})

	_, err := client.ImportVoucher(context.Background(), Voucher{
		Type:   VoucherTypeReceipt,
		Date:   time.Date(2025, 4, 20, 0, 0, 0, 0, time.UTC),
		Party:  "Nobody",
		Amount: decimal.RequireFromString("500.00"),
	})
	require.Error(t, err)
	var importErr *ImportError
	require.ErrorAs(t, err, &importErr)
	assert.Contains(t, importErr.Message, "does not exist")
}

func TestGatewayUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()
	client := NewClient(Config{BaseURL: srv.URL, Timeout: time.Second})

	_, err := client.FetchLedgers(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrGatewayUnavailable)
}

func TestGatewayServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := client.FetchDayBook(context.Background(), time.Time{}, time.Time{})
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrGatewayUnavailable)
}
