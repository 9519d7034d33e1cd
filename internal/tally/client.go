package tally

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"

	"github.com/tallydesk/tallydesk/internal/observability"
	"github.com/tallydesk/tallydesk/internal/shared"
)

// Client talks to a Tally gateway over its XML-over-HTTP protocol.
type Client struct {
	baseURL    string
	company    string
	httpClient *http.Client
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// Config collects Client construction parameters.
type Config struct {
	BaseURL string
	Company string
	Timeout time.Duration
	Logger  *slog.Logger
	Metrics *observability.Metrics
}

// NewClient constructs a gateway client.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		company:    cfg.Company,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
		metrics:    cfg.Metrics,
	}
}

// FetchLedgers exports the ledger masters.
func (c *Client) FetchLedgers(ctx context.Context) ([]Ledger, error) {
	doc, err := c.exchange(ctx, "ledgers", exportRequest("List of Accounts", c.company, time.Time{}, time.Time{}))
	if err != nil {
		return nil, err
	}
	var ledgers []Ledger
	for _, el := range doc.FindElements("//LEDGER") {
		ledgers = append(ledgers, Ledger{
			GUID:           childText(el, "GUID"),
			Name:           ledgerName(el),
			Parent:         childText(el, "PARENT"),
			GSTIN:          firstChildText(el, "PARTYGSTIN", "GSTIN", "GSTREGISTRATIONNUMBER"),
			OpeningBalance: parseAmount(childText(el, "OPENINGBALANCE")),
			ClosingBalance: parseAmount(childText(el, "CLOSINGBALANCE")),
		})
	}
	return ledgers, nil
}

// FetchDayBook exports day-book vouchers for the date range.
func (c *Client) FetchDayBook(ctx context.Context, from, to time.Time) ([]Voucher, error) {
	doc, err := c.exchange(ctx, "daybook", exportRequest("Day Book", c.company, from, to))
	if err != nil {
		return nil, err
	}
	var vouchers []Voucher
	for _, el := range doc.FindElements("//VOUCHER") {
		date, err := time.Parse(tallyDateLayout, childText(el, "DATE"))
		if err != nil {
			c.logger.Warn("skipping voucher with unparsable date",
				slog.String("guid", childText(el, "GUID")),
				slog.String("date", childText(el, "DATE")))
			continue
		}
		vouchers = append(vouchers, Voucher{
			GUID:      childText(el, "GUID"),
			Date:      date,
			Type:      childText(el, "VOUCHERTYPENAME"),
			Number:    childText(el, "VOUCHERNUMBER"),
			Party:     childText(el, "PARTYLEDGERNAME"),
			Amount:    voucherAmount(el),
			Narration: childText(el, "NARRATION"),
		})
	}
	return vouchers, nil
}

// ImportVoucher creates a voucher in Tally. A gateway line error is returned
// as an *ImportError.
func (c *Client) ImportVoucher(ctx context.Context, v Voucher) (ImportResult, error) {
	doc, err := c.exchange(ctx, "import", importVoucherRequest(c.company, v))
	if err != nil {
		return ImportResult{}, err
	}
	result := ImportResult{
		Created: childInt(doc.Root(), "//CREATED"),
		Altered: childInt(doc.Root(), "//ALTERED"),
		Errors:  childInt(doc.Root(), "//ERRORS"),
	}
	if result.Errors > 0 || result.Created == 0 {
		lineError := "gateway rejected voucher"
		if el := doc.FindElement("//LINEERROR"); el != nil && strings.TrimSpace(el.Text()) != "" {
			lineError = strings.TrimSpace(el.Text())
		}
		return result, &ImportError{Message: lineError}
	}
	return result, nil
}

// ImportError is a voucher rejection reported by the gateway.
type ImportError struct {
	Message string
}

func (e *ImportError) Error() string {
	return fmt.Sprintf("tally import rejected: %s", e.Message)
}

// exchange posts an envelope and parses the XML response.
func (c *Client) exchange(ctx context.Context, operation string, doc *etree.Document) (*etree.Document, error) {
	payload, err := doc.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("tally: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("tally: build request: %w", err)
	}
	req.Header.Set("Content-Type", "text/xml; charset=utf-8")

	resp, err := c.httpClient.Do(req)
	c.metrics.ObserveTallyRequest(operation, err)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: gateway returned %d", shared.ErrGatewayUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", shared.ErrGatewayUnavailable, err)
	}

	parsed := etree.NewDocument()
	if err := parsed.ReadFromBytes(body); err != nil {
		return nil, fmt.Errorf("tally: malformed response: %w", err)
	}
	return parsed, nil
}

func childText(el *etree.Element, tag string) string {
	if child := el.SelectElement(tag); child != nil {
		return strings.TrimSpace(child.Text())
	}
	return ""
}

func firstChildText(el *etree.Element, tags ...string) string {
	for _, tag := range tags {
		if text := childText(el, tag); text != "" {
			return text
		}
	}
	return ""
}

func childInt(root *etree.Element, path string) int {
	if root == nil {
		return 0
	}
	el := root.FindElement(path)
	if el == nil {
		return 0
	}
	n, _ := strconv.Atoi(strings.TrimSpace(el.Text()))
	return n
}

// ledgerName reads the NAME attribute Tally puts on LEDGER elements, falling
// back to a NAME child element.
func ledgerName(el *etree.Element) string {
	if attr := el.SelectAttrValue("NAME", ""); attr != "" {
		return attr
	}
	return childText(el, "NAME")
}

// voucherAmount sums the positive ledger entry amounts, falling back to the
// voucher-level AMOUNT element.
func voucherAmount(el *etree.Element) decimal.Decimal {
	total := decimal.Zero
	for _, entry := range el.SelectElements("ALLLEDGERENTRIES.LIST") {
		amount := parseAmount(childText(entry, "AMOUNT"))
		if amount.Sign() > 0 {
			total = total.Add(amount)
		}
	}
	if total.Sign() > 0 {
		return total
	}
	return parseAmount(childText(el, "AMOUNT")).Abs()
}

// parseAmount reads a Tally amount, tolerating empty values.
func parseAmount(text string) decimal.Decimal {
	if text == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(text, ",", ""))
	if err != nil {
		return decimal.Zero
	}
	return d
}
