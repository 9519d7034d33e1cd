package tallysync

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallydesk/tallydesk/internal/ledgers"
	"github.com/tallydesk/tallydesk/internal/shared"
	"github.com/tallydesk/tallydesk/internal/tally"
	"github.com/tallydesk/tallydesk/internal/vouchers"
)

type mockGateway struct {
	masters    []tally.Ledger
	entries    []tally.Voucher
	ledgerErr  error
	dayBookErr error
}

func (m *mockGateway) FetchLedgers(ctx context.Context) ([]tally.Ledger, error) {
	return m.masters, m.ledgerErr
}

func (m *mockGateway) FetchDayBook(ctx context.Context, from, to time.Time) ([]tally.Voucher, error) {
	return m.entries, m.dayBookErr
}

type mockLedgerStore struct {
	upserted []ledgers.Ledger
}

func (m *mockLedgerStore) Upsert(ctx context.Context, items []ledgers.Ledger) error {
	m.upserted = items
	return nil
}

type mockVoucherStore struct {
	upserted []vouchers.Voucher
}

func (m *mockVoucherStore) Upsert(ctx context.Context, items []vouchers.Voucher) error {
	m.upserted = items
	return nil
}

type mockRunStore struct {
	runs []Run
}

func (m *mockRunStore) SaveRun(ctx context.Context, run Run) error {
	m.runs = append([]Run{run}, m.runs...)
	return nil
}

func (m *mockRunStore) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	if len(m.runs) > limit {
		return m.runs[:limit], nil
	}
	return m.runs, nil
}

type mockInvalidator struct {
	calls int
}

func (m *mockInvalidator) Invalidate(ctx context.Context) error {
	m.calls++
	return nil
}

func newTestService(gateway *mockGateway) (*Service, *mockLedgerStore, *mockVoucherStore, *mockRunStore, *mockInvalidator) {
	ls := &mockLedgerStore{}
	vs := &mockVoucherStore{}
	runs := &mockRunStore{}
	inv := &mockInvalidator{}
	svc := NewService(slog.Default(), gateway, ls, vs, runs, inv, nil, Config{LookbackDays: 30})
	return svc, ls, vs, runs, inv
}

func TestSyncMirrorsLedgersAndVouchers(t *testing.T) {
	gateway := &mockGateway{
		masters: []tally.Ledger{
			{GUID: "l1", Name: "Acme Traders", Parent: "Sundry Debtors", GSTIN: "29ABCDE1234F1ZW"},
			{GUID: "l2", Name: "Petty Cash", Parent: "Cash-in-Hand"},
		},
		entries: []tally.Voucher{
			{GUID: "v1", Type: tally.VoucherTypeSales, Party: "Acme Traders", Amount: decimal.NewFromInt(1000)},
		},
	}
	svc, ls, vs, runs, inv := newTestService(gateway)

	run, err := svc.Sync(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StatusOK, run.Status)
	assert.Equal(t, 2, run.Ledgers)
	assert.Equal(t, 1, run.Vouchers)

	require.Len(t, ls.upserted, 2)
	assert.Equal(t, "29", ls.upserted[0].StateCode, "state code denormalised from GSTIN")
	assert.Empty(t, ls.upserted[1].StateCode)

	require.Len(t, vs.upserted, 1)
	assert.Equal(t, vouchers.SourceSync, vs.upserted[0].Source)

	require.Len(t, runs.runs, 1)
	assert.Equal(t, 1, inv.calls, "report cache invalidated after sync")
}

func TestSyncRecordsFailure(t *testing.T) {
	gateway := &mockGateway{dayBookErr: shared.ErrGatewayUnavailable}
	svc, ls, _, runs, inv := newTestService(gateway)

	run, err := svc.Sync(context.Background())
	require.Error(t, err)

	assert.Equal(t, StatusFailed, run.Status)
	assert.NotEmpty(t, run.Error)
	assert.Empty(t, ls.upserted)
	require.Len(t, runs.runs, 1, "failed runs are recorded too")
	assert.Zero(t, inv.calls, "cache untouched on failure")
}

type heldLocker struct{}

func (heldLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), bool, error) {
	return nil, false, nil
}

func TestSyncHeldLockSkipsRun(t *testing.T) {
	gateway := &mockGateway{}
	runs := &mockRunStore{}
	svc := NewService(slog.Default(), gateway, &mockLedgerStore{}, &mockVoucherStore{}, runs, &mockInvalidator{}, nil, Config{
		Locker: heldLocker{},
	})

	_, err := svc.Sync(context.Background())
	require.ErrorIs(t, err, ErrSyncInProgress)
	assert.Empty(t, runs.runs, "no run recorded when the lock is held")
}

func TestStatusReportsLastRun(t *testing.T) {
	gateway := &mockGateway{}
	svc, _, _, _, _ := newTestService(gateway)

	status, err := svc.Status(context.Background())
	require.NoError(t, err)
	assert.Nil(t, status.LastRun)
	assert.Empty(t, status.Recent)

	_, err = svc.Sync(context.Background())
	require.NoError(t, err)

	status, err = svc.Status(context.Background())
	require.NoError(t, err)
	require.NotNil(t, status.LastRun)
	assert.Equal(t, StatusOK, status.LastRun.Status)
	assert.Len(t, status.Recent, 1)
}
