package search

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/tallydesk/tallydesk/internal/ledgers"
	"github.com/tallydesk/tallydesk/internal/vouchers"
)

// Limit caps results per entity kind.
const Limit = 20

// LedgerSearcher is the slice of the ledger repository search reads from.
type LedgerSearcher interface {
	Search(ctx context.Context, query string, limit int) ([]ledgers.Ledger, error)
}

// VoucherSearcher is the slice of the voucher repository search reads from.
type VoucherSearcher interface {
	Search(ctx context.Context, query string, limit int) ([]vouchers.Voucher, error)
}

// Result bundles matches across entity kinds for one query.
type Result struct {
	Query    string             `json:"query"`
	Ledgers  []ledgers.Ledger   `json:"ledgers"`
	Vouchers []vouchers.Voucher `json:"vouchers"`
}

// Service runs substring search over the mirrored books. The server is
// stateless; discarding superseded responses is the client's concern.
type Service struct {
	ledgers  LedgerSearcher
	vouchers VoucherSearcher
}

// NewService builds Service instance.
func NewService(ls LedgerSearcher, vs VoucherSearcher) *Service {
	return &Service{ledgers: ls, vouchers: vs}
}

// Search queries ledgers and vouchers concurrently. An empty query returns an
// empty result without touching the stores.
func (s *Service) Search(ctx context.Context, query string) (Result, error) {
	result := Result{
		Query:    strings.TrimSpace(query),
		Ledgers:  []ledgers.Ledger{},
		Vouchers: []vouchers.Voucher{},
	}
	if result.Query == "" {
		return result, nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		items, err := s.ledgers.Search(ctx, result.Query, Limit)
		if err != nil {
			return err
		}
		if items != nil {
			result.Ledgers = items
		}
		return nil
	})
	g.Go(func() error {
		items, err := s.vouchers.Search(ctx, result.Query, Limit)
		if err != nil {
			return err
		}
		if items != nil {
			result.Vouchers = items
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return Result{}, err
	}
	return result, nil
}
