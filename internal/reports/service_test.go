package reports

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/tallydesk/tallydesk/internal/ledgers"
	"github.com/tallydesk/tallydesk/internal/tally"
	"github.com/tallydesk/tallydesk/internal/vouchers"
	_ "github.com/tallydesk/tallydesk/testing"
)

type stubVoucherStore struct {
	entries []vouchers.Voucher
	calls   int
}

func (s *stubVoucherStore) ListRange(ctx context.Context, from, to time.Time, types []string) ([]vouchers.Voucher, error) {
	s.calls++
	var out []vouchers.Voucher
	for _, v := range s.entries {
		if len(types) == 0 {
			out = append(out, v)
			continue
		}
		for _, t := range types {
			if v.Type == t {
				out = append(out, v)
				break
			}
		}
	}
	return out, nil
}

type stubLedgerStore struct {
	items []ledgers.Ledger
	calls int
}

func (s *stubLedgerStore) ListAll(ctx context.Context) ([]ledgers.Ledger, error) {
	s.calls++
	return s.items, nil
}

func newTestService(t *testing.T) (*Service, *stubVoucherStore, *stubLedgerStore) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	vs := &stubVoucherStore{entries: []vouchers.Voucher{
		voucher(5, tally.VoucherTypeSales, "Local Traders", "1000"),
	}}
	ls := &stubLedgerStore{items: []ledgers.Ledger{
		{Name: "Local Traders", Parent: "Sundry Debtors", GSTIN: intraPartyGSTIN},
	}}
	svc := NewService(slog.Default(), vs, ls, NewCache(client, time.Minute), Config{
		CompanyGSTIN: companyGSTIN,
		DefaultRate:  decimal.NewFromInt(18),
	})
	return svc, vs, ls
}

func TestSalesRegisterCachesResult(t *testing.T) {
	svc, vs, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.SalesRegister(ctx, periodFrom, periodTo, rate18)
	if err != nil {
		t.Fatalf("first build: %v", err)
	}
	if vs.calls != 1 {
		t.Fatalf("store calls = %d, want 1", vs.calls)
	}

	second, err := svc.SalesRegister(ctx, periodFrom, periodTo, rate18)
	if err != nil {
		t.Fatalf("cached build: %v", err)
	}
	if vs.calls != 1 {
		t.Fatalf("store calls after cache hit = %d, want 1", vs.calls)
	}
	if len(second.Rows) != len(first.Rows) || !second.Totals.Total.Equal(first.Totals.Total) {
		t.Fatalf("cached result differs: %+v vs %+v", second, first)
	}
}

func TestInvalidateBumpsCacheVersion(t *testing.T) {
	svc, vs, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.SalesRegister(ctx, periodFrom, periodTo, rate18); err != nil {
		t.Fatalf("first build: %v", err)
	}
	if err := svc.Invalidate(ctx); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if _, err := svc.SalesRegister(ctx, periodFrom, periodTo, rate18); err != nil {
		t.Fatalf("rebuild: %v", err)
	}
	if vs.calls != 2 {
		t.Fatalf("store calls = %d, want 2 after invalidation", vs.calls)
	}
}

func TestRateVariantsCacheSeparately(t *testing.T) {
	svc, vs, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.SalesRegister(ctx, periodFrom, periodTo, rate18); err != nil {
		t.Fatalf("rate 18: %v", err)
	}
	reg, err := svc.SalesRegister(ctx, periodFrom, periodTo, decimal.NewFromInt(5))
	if err != nil {
		t.Fatalf("rate 5: %v", err)
	}
	if vs.calls != 2 {
		t.Fatalf("store calls = %d, want 2 for distinct rates", vs.calls)
	}
	if !reg.Totals.CGST.Equal(amt("25")) {
		t.Fatalf("rate 5 CGST = %s, want 25", reg.Totals.CGST)
	}
}

func TestResolveRate(t *testing.T) {
	svc, _, _ := newTestService(t)

	rate, err := svc.ResolveRate("")
	if err != nil || !rate.Equal(rate18) {
		t.Fatalf("default rate = %s, err %v", rate, err)
	}
	rate, err = svc.ResolveRate("12")
	if err != nil || !rate.Equal(decimal.NewFromInt(12)) {
		t.Fatalf("explicit rate = %s, err %v", rate, err)
	}
	if _, err := svc.ResolveRate("eighteen"); err == nil {
		t.Fatal("expected error for garbage rate")
	}
}
