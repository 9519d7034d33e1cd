package vouchers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"

	"github.com/tallydesk/tallydesk/internal/tally"
)

// RepositoryPort defines data access methods for vouchers.
type RepositoryPort interface {
	Insert(ctx context.Context, v Voucher) (*Voucher, error)
	List(ctx context.Context, req ListRequest) ([]Voucher, int, error)
	Get(ctx context.Context, id int64) (*Voucher, error)
}

// GatewayPort is the slice of the Tally client the service needs.
type GatewayPort interface {
	ImportVoucher(ctx context.Context, v tally.Voucher) (tally.ImportResult, error)
}

// IdempotencyPort guards against duplicate submissions.
type IdempotencyPort interface {
	CheckAndInsert(ctx context.Context, key, module string) error
	Delete(ctx context.Context, key string) error
}

// ErrInvalidVoucher wraps request validation failures.
var ErrInvalidVoucher = errors.New("vouchers: invalid voucher")

const idempotencyModule = "vouchers"

// Service handles voucher business logic. Creation is forwarded to Tally
// first; the mirror row is written only after the gateway accepts the entry.
type Service struct {
	logger      *slog.Logger
	repo        RepositoryPort
	gateway     GatewayPort
	idempotency IdempotencyPort
	validate    *validator.Validate
}

// NewService builds Service instance.
func NewService(logger *slog.Logger, repo RepositoryPort, gateway GatewayPort, idempotency IdempotencyPort) *Service {
	return &Service{
		logger:      logger,
		repo:        repo,
		gateway:     gateway,
		idempotency: idempotency,
		validate:    validator.New(),
	}
}

// ListVouchers returns a page of vouchers.
func (s *Service) ListVouchers(ctx context.Context, req ListRequest) ([]Voucher, int, error) {
	if req.PerPage <= 0 {
		req.PerPage = 20
	}
	if req.Page <= 0 {
		req.Page = 1
	}
	// The mirror stores Tally's type names; accept the API spelling too.
	req.Type = TallyTypeName(req.Type)
	return s.repo.List(ctx, req)
}

// GetVoucher returns one voucher by id.
func (s *Service) GetVoucher(ctx context.Context, id int64) (*Voucher, error) {
	return s.repo.Get(ctx, id)
}

// CreateVoucher validates the request, imports the voucher into Tally, and
// records a mirror row. idempotencyKey may be empty, in which case retries
// are not deduplicated.
func (s *Service) CreateVoucher(ctx context.Context, req CreateVoucherRequest, idempotencyKey string) (*Voucher, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidVoucher, err)
	}
	entry, err := req.toTallyVoucher()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidVoucher, err)
	}
	if entry.Amount.Sign() <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidVoucher)
	}

	if idempotencyKey != "" {
		if err := s.idempotency.CheckAndInsert(ctx, idempotencyKey, idempotencyModule); err != nil {
			return nil, err
		}
	}

	if _, err := s.gateway.ImportVoucher(ctx, entry); err != nil {
		if idempotencyKey != "" {
			if delErr := s.idempotency.Delete(ctx, idempotencyKey); delErr != nil {
				s.logger.Warn("release idempotency key", slog.Any("error", delErr))
			}
		}
		return nil, err
	}

	created, err := s.repo.Insert(ctx, Voucher{
		Date:      entry.Date,
		Type:      entry.Type,
		Number:    entry.Number,
		Party:     entry.Party,
		Amount:    entry.Amount,
		Narration: entry.Narration,
		Source:    SourceDashboard,
	})
	if err != nil {
		// The voucher exists in Tally; the mirror catches up on next sync.
		s.logger.Error("mirror insert after gateway accept", slog.Any("error", err))
		return nil, err
	}
	return created, nil
}
