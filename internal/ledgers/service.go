package ledgers

import (
	"context"
)

// RepositoryPort defines data access methods for ledgers.
type RepositoryPort interface {
	List(ctx context.Context, req ListRequest) ([]Ledger, int, error)
	Get(ctx context.Context, id int64) (*Ledger, error)
	Search(ctx context.Context, query string, limit int) ([]Ledger, error)
	ListAll(ctx context.Context) ([]Ledger, error)
}

// Service handles ledger queries against the mirror.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// ListLedgers returns a page of ledgers.
func (s *Service) ListLedgers(ctx context.Context, req ListRequest) ([]Ledger, int, error) {
	if req.PerPage <= 0 {
		req.PerPage = 20
	}
	if req.Page <= 0 {
		req.Page = 1
	}
	return s.repo.List(ctx, req)
}

// GetLedger returns one ledger by id.
func (s *Service) GetLedger(ctx context.Context, id int64) (*Ledger, error) {
	return s.repo.Get(ctx, id)
}
