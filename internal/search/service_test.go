package search

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallydesk/tallydesk/internal/ledgers"
	"github.com/tallydesk/tallydesk/internal/vouchers"
)

type stubLedgers struct {
	items []ledgers.Ledger
	err   error
	calls int
}

func (s *stubLedgers) Search(ctx context.Context, query string, limit int) ([]ledgers.Ledger, error) {
	s.calls++
	return s.items, s.err
}

type stubVouchers struct {
	items []vouchers.Voucher
	err   error
	calls int
}

func (s *stubVouchers) Search(ctx context.Context, query string, limit int) ([]vouchers.Voucher, error) {
	s.calls++
	return s.items, s.err
}

func TestSearchBothKinds(t *testing.T) {
	ls := &stubLedgers{items: []ledgers.Ledger{{Name: "Acme Traders"}}}
	vs := &stubVouchers{items: []vouchers.Voucher{{Party: "Acme Traders"}}}
	svc := NewService(ls, vs)

	result, err := svc.Search(context.Background(), "  acme ")
	require.NoError(t, err)
	assert.Equal(t, "acme", result.Query)
	assert.Len(t, result.Ledgers, 1)
	assert.Len(t, result.Vouchers, 1)
}

func TestSearchEmptyQuerySkipsStores(t *testing.T) {
	ls := &stubLedgers{}
	vs := &stubVouchers{}
	svc := NewService(ls, vs)

	result, err := svc.Search(context.Background(), "   ")
	require.NoError(t, err)
	assert.Empty(t, result.Ledgers)
	assert.Empty(t, result.Vouchers)
	assert.Zero(t, ls.calls)
	assert.Zero(t, vs.calls)
}

func TestSearchPropagatesStoreError(t *testing.T) {
	ls := &stubLedgers{err: errors.New("connection refused")}
	vs := &stubVouchers{}
	svc := NewService(ls, vs)

	_, err := svc.Search(context.Background(), "acme")
	require.Error(t, err)
}
