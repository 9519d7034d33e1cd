package reports

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"github.com/tallydesk/tallydesk/internal/ledgers"
	"github.com/tallydesk/tallydesk/internal/tally"
	"github.com/tallydesk/tallydesk/internal/vouchers"
)

// VoucherStore is the slice of the voucher repository reports read from.
type VoucherStore interface {
	ListRange(ctx context.Context, from, to time.Time, types []string) ([]vouchers.Voucher, error)
}

// LedgerStore is the slice of the ledger repository reports read from.
type LedgerStore interface {
	ListAll(ctx context.Context) ([]ledgers.Ledger, error)
}

// Config carries the company registration reports split tax against.
type Config struct {
	CompanyGSTIN string
	DefaultRate  decimal.Decimal
}

// Service computes reports over the mirrored books, caching results in Redis
// and collapsing concurrent identical builds.
type Service struct {
	logger   *slog.Logger
	vouchers VoucherStore
	ledgers  LedgerStore
	cache    *Cache
	cfg      Config
	group    singleflight.Group
}

// NewService wires the report stores with the cache helper.
func NewService(logger *slog.Logger, vs VoucherStore, ls LedgerStore, cache *Cache, cfg Config) *Service {
	if cfg.DefaultRate.IsZero() {
		cfg.DefaultRate = decimal.NewFromInt(18)
	}
	return &Service{logger: logger, vouchers: vs, ledgers: ls, cache: cache, cfg: cfg}
}

// ResolveRate parses an optional rate query value, falling back to the
// configured default.
func (s *Service) ResolveRate(raw string) (decimal.Decimal, error) {
	if raw == "" {
		return s.cfg.DefaultRate, nil
	}
	rate, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid rate %q", raw)
	}
	return rate, nil
}

// SalesRegister builds the sales register with GST splits for the range.
func (s *Service) SalesRegister(ctx context.Context, from, to time.Time, rate decimal.Decimal) (Register, error) {
	return s.register(ctx, "sales", tally.VoucherTypeSales, from, to, rate)
}

// PurchaseRegister builds the purchase register with GST splits for the range.
func (s *Service) PurchaseRegister(ctx context.Context, from, to time.Time, rate decimal.Decimal) (Register, error) {
	return s.register(ctx, "purchase", tally.VoucherTypePurchase, from, to, rate)
}

func (s *Service) register(ctx context.Context, name, voucherType string, from, to time.Time, rate decimal.Decimal) (Register, error) {
	var out Register
	err := s.cached(ctx, &out, []string{"reports", name, dateToken(from), dateToken(to), rate.String()},
		func(ctx context.Context) (interface{}, error) {
			entries, err := s.vouchers.ListRange(ctx, from, to, []string{voucherType})
			if err != nil {
				return nil, err
			}
			gstins, err := s.partyGSTINs(ctx)
			if err != nil {
				return nil, err
			}
			return BuildRegister(entries, gstins, s.cfg.CompanyGSTIN, rate, from, to), nil
		})
	return out, err
}

// CashBook builds the cash book for the range. The opening balance is the sum
// of cash and bank ledger opening balances.
func (s *Service) CashBook(ctx context.Context, from, to time.Time) (CashBook, error) {
	var out CashBook
	err := s.cached(ctx, &out, []string{"reports", "cashbook", dateToken(from), dateToken(to)},
		func(ctx context.Context) (interface{}, error) {
			entries, err := s.vouchers.ListRange(ctx, from, to,
				[]string{tally.VoucherTypeReceipt, tally.VoucherTypePayment})
			if err != nil {
				return nil, err
			}
			all, err := s.ledgers.ListAll(ctx)
			if err != nil {
				return nil, err
			}
			opening := decimal.Zero
			for _, l := range all {
				switch l.Parent {
				case "Cash-in-Hand", "Bank Accounts":
					opening = opening.Add(l.OpeningBalance)
				}
			}
			return BuildCashBook(entries, opening, from, to), nil
		})
	return out, err
}

// BalanceSheet builds the balance sheet from current ledger closing balances.
func (s *Service) BalanceSheet(ctx context.Context) (BalanceSheet, error) {
	var out BalanceSheet
	err := s.cached(ctx, &out, []string{"reports", "balancesheet"},
		func(ctx context.Context) (interface{}, error) {
			all, err := s.ledgers.ListAll(ctx)
			if err != nil {
				return nil, err
			}
			return BuildBalanceSheet(all), nil
		})
	return out, err
}

// GSTSummary builds the output/input tax summary for the range.
func (s *Service) GSTSummary(ctx context.Context, from, to time.Time, rate decimal.Decimal) (GSTSummary, error) {
	var out GSTSummary
	err := s.cached(ctx, &out, []string{"reports", "gstsummary", dateToken(from), dateToken(to), rate.String()},
		func(ctx context.Context) (interface{}, error) {
			entries, err := s.vouchers.ListRange(ctx, from, to,
				[]string{tally.VoucherTypeSales, tally.VoucherTypePurchase})
			if err != nil {
				return nil, err
			}
			gstins, err := s.partyGSTINs(ctx)
			if err != nil {
				return nil, err
			}
			return BuildGSTSummary(entries, gstins, s.cfg.CompanyGSTIN, rate, from, to), nil
		})
	return out, err
}

// DayBook builds the day-grouped voucher listing for the range.
func (s *Service) DayBook(ctx context.Context, from, to time.Time) (DayBook, error) {
	var out DayBook
	err := s.cached(ctx, &out, []string{"reports", "daybook", dateToken(from), dateToken(to)},
		func(ctx context.Context) (interface{}, error) {
			entries, err := s.vouchers.ListRange(ctx, from, to, nil)
			if err != nil {
				return nil, err
			}
			return BuildDayBook(entries, from, to), nil
		})
	return out, err
}

// Invalidate drops every cached report; the sync worker calls it after each
// successful run.
func (s *Service) Invalidate(ctx context.Context) error {
	return s.cache.Bump(ctx)
}

func (s *Service) cached(ctx context.Context, dest interface{}, keyParts []string, loader func(context.Context) (interface{}, error)) error {
	key, err := s.cache.BuildKey(ctx, keyParts...)
	if err != nil {
		// Redis trouble must not take reports down; compute directly.
		s.logger.Warn("report cache unavailable", slog.Any("error", err))
		value, err := loader(ctx)
		if err != nil {
			return err
		}
		return remarshal(value, dest)
	}
	// Concurrent identical requests share one build; each caller unmarshals
	// the raw payload into its own destination.
	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		var raw json.RawMessage
		if err := s.cache.FetchJSON(ctx, key, &raw, loader); err != nil {
			return nil, err
		}
		return raw, nil
	})
	if err != nil {
		return err
	}
	return json.Unmarshal(v.(json.RawMessage), dest)
}

func remarshal(value, dest interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dest)
}

func (s *Service) partyGSTINs(ctx context.Context) (map[string]string, error) {
	all, err := s.ledgers.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	gstins := make(map[string]string, len(all))
	for _, l := range all {
		if l.GSTIN != "" {
			gstins[l.Name] = l.GSTIN
		}
	}
	return gstins, nil
}

func dateToken(t time.Time) string {
	return t.Format("2006-01-02")
}
