package vouchers

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallydesk/tallydesk/internal/shared"
	"github.com/tallydesk/tallydesk/internal/tally"
)

type mockRepository struct {
	vouchers    map[int64]*Voucher
	nextID      int64
	insertError error
}

func newMockRepository() *mockRepository {
	return &mockRepository{vouchers: make(map[int64]*Voucher), nextID: 1}
}

func (m *mockRepository) Insert(ctx context.Context, v Voucher) (*Voucher, error) {
	if m.insertError != nil {
		return nil, m.insertError
	}
	v.ID = m.nextID
	m.nextID++
	m.vouchers[v.ID] = &v
	return &v, nil
}

func (m *mockRepository) List(ctx context.Context, req ListRequest) ([]Voucher, int, error) {
	var result []Voucher
	for _, v := range m.vouchers {
		if req.Type != "" && v.Type != req.Type {
			continue
		}
		result = append(result, *v)
	}
	return result, len(result), nil
}

func (m *mockRepository) Get(ctx context.Context, id int64) (*Voucher, error) {
	v, ok := m.vouchers[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return v, nil
}

type mockGateway struct {
	imported    []tally.Voucher
	importError error
}

func (m *mockGateway) ImportVoucher(ctx context.Context, v tally.Voucher) (tally.ImportResult, error) {
	if m.importError != nil {
		return tally.ImportResult{}, m.importError
	}
	m.imported = append(m.imported, v)
	return tally.ImportResult{Created: 1}, nil
}

type mockIdempotency struct {
	keys    map[string]bool
	deleted []string
}

func newMockIdempotency() *mockIdempotency {
	return &mockIdempotency{keys: make(map[string]bool)}
}

func (m *mockIdempotency) CheckAndInsert(ctx context.Context, key, module string) error {
	if m.keys[key] {
		return shared.ErrIdempotencyConflict
	}
	m.keys[key] = true
	return nil
}

func (m *mockIdempotency) Delete(ctx context.Context, key string) error {
	delete(m.keys, key)
	m.deleted = append(m.deleted, key)
	return nil
}

func newTestService() (*Service, *mockRepository, *mockGateway, *mockIdempotency) {
	repo := newMockRepository()
	gateway := &mockGateway{}
	idem := newMockIdempotency()
	svc := NewService(slog.Default(), repo, gateway, idem)
	return svc, repo, gateway, idem
}

func validCreateRequest() CreateVoucherRequest {
	return CreateVoucherRequest{
		Type:      "receipt",
		Date:      "2025-04-20",
		Party:     "Acme Traders",
		Amount:    "500.00",
		Narration: "advance received",
	}
}

func TestCreateVoucher(t *testing.T) {
	svc, repo, gateway, _ := newTestService()

	created, err := svc.CreateVoucher(context.Background(), validCreateRequest(), "")
	require.NoError(t, err)

	assert.Equal(t, tally.VoucherTypeReceipt, created.Type)
	assert.Equal(t, SourceDashboard, created.Source)
	assert.True(t, created.Amount.Equal(decimal.RequireFromString("500.00")))
	assert.Len(t, repo.vouchers, 1)

	require.Len(t, gateway.imported, 1)
	assert.Equal(t, tally.VoucherTypeReceipt, gateway.imported[0].Type)
	assert.Equal(t, "Acme Traders", gateway.imported[0].Party)
}

func TestCreateVoucherValidation(t *testing.T) {
	svc, repo, gateway, _ := newTestService()

	cases := []struct {
		name   string
		mutate func(*CreateVoucherRequest)
	}{
		{"missing type", func(r *CreateVoucherRequest) { r.Type = "" }},
		{"unknown type", func(r *CreateVoucherRequest) { r.Type = "journal" }},
		{"bad date", func(r *CreateVoucherRequest) { r.Date = "20/04/2025" }},
		{"missing party", func(r *CreateVoucherRequest) { r.Party = "" }},
		{"missing amount", func(r *CreateVoucherRequest) { r.Amount = "" }},
		{"garbage amount", func(r *CreateVoucherRequest) { r.Amount = "five hundred" }},
		{"zero amount", func(r *CreateVoucherRequest) { r.Amount = "0" }},
		{"negative amount", func(r *CreateVoucherRequest) { r.Amount = "-10" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validCreateRequest()
			tc.mutate(&req)
			_, err := svc.CreateVoucher(context.Background(), req, "")
			assert.ErrorIs(t, err, ErrInvalidVoucher)
		})
	}
	assert.Empty(t, repo.vouchers)
	assert.Empty(t, gateway.imported)
}

func TestCreateVoucherIdempotency(t *testing.T) {
	svc, repo, _, _ := newTestService()

	_, err := svc.CreateVoucher(context.Background(), validCreateRequest(), "key-1")
	require.NoError(t, err)

	_, err = svc.CreateVoucher(context.Background(), validCreateRequest(), "key-1")
	assert.ErrorIs(t, err, shared.ErrIdempotencyConflict)
	assert.Len(t, repo.vouchers, 1)
}

func TestCreateVoucherGatewayFailureReleasesKey(t *testing.T) {
	svc, repo, gateway, idem := newTestService()
	gateway.importError = shared.ErrGatewayUnavailable

	_, err := svc.CreateVoucher(context.Background(), validCreateRequest(), "key-1")
	assert.ErrorIs(t, err, shared.ErrGatewayUnavailable)
	assert.Empty(t, repo.vouchers)
	assert.Equal(t, []string{"key-1"}, idem.deleted)

	// The key is free again, so the client may retry.
	gateway.importError = nil
	_, err = svc.CreateVoucher(context.Background(), validCreateRequest(), "key-1")
	require.NoError(t, err)
}

func TestCreateVoucherGatewayRejection(t *testing.T) {
	svc, _, gateway, _ := newTestService()
	gateway.importError = &tally.ImportError{Message: "Ledger 'Acme Traders' does not exist!"}

	_, err := svc.CreateVoucher(context.Background(), validCreateRequest(), "")
	var importErr *tally.ImportError
	require.ErrorAs(t, err, &importErr)
}

func TestCreateVoucherMirrorFailure(t *testing.T) {
	svc, repo, gateway, _ := newTestService()
	repo.insertError = errors.New("connection reset")

	_, err := svc.CreateVoucher(context.Background(), validCreateRequest(), "")
	require.Error(t, err)
	// The gateway import still happened; the mirror catches up on next sync.
	assert.Len(t, gateway.imported, 1)
}

func TestListVouchersDefaultsPaging(t *testing.T) {
	svc, repo, _, _ := newTestService()
	_, _ = repo.Insert(context.Background(), Voucher{Type: tally.VoucherTypeReceipt})
	_, _ = repo.Insert(context.Background(), Voucher{Type: tally.VoucherTypePayment})

	items, total, err := svc.ListVouchers(context.Background(), ListRequest{Type: "receipt"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, items, 1)
}
