package tallysync

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/tallydesk/tallydesk/internal/gst"
	"github.com/tallydesk/tallydesk/internal/ledgers"
	"github.com/tallydesk/tallydesk/internal/observability"
	"github.com/tallydesk/tallydesk/internal/shared"
	"github.com/tallydesk/tallydesk/internal/tally"
	"github.com/tallydesk/tallydesk/internal/vouchers"
)

// GatewayPort is the slice of the Tally client sync pulls from.
type GatewayPort interface {
	FetchLedgers(ctx context.Context) ([]tally.Ledger, error)
	FetchDayBook(ctx context.Context, from, to time.Time) ([]tally.Voucher, error)
}

// LedgerStore receives synced ledger masters.
type LedgerStore interface {
	Upsert(ctx context.Context, items []ledgers.Ledger) error
}

// VoucherStore receives synced vouchers.
type VoucherStore interface {
	Upsert(ctx context.Context, items []vouchers.Voucher) error
}

// RunStore persists sync runs.
type RunStore interface {
	SaveRun(ctx context.Context, run Run) error
	RecentRuns(ctx context.Context, limit int) ([]Run, error)
}

// Invalidator drops cached reports after the mirror changes.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// Locker serialises sync passes across processes.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(), ok bool, err error)
}

// ErrSyncInProgress signals another sync pass holds the lock.
var ErrSyncInProgress = fmt.Errorf("tallysync: sync already in progress")

// Config tunes the sync window.
type Config struct {
	// LookbackDays bounds how far back the day book fetch reaches.
	LookbackDays int
	// Locker, when set, prevents overlapping passes. A run that finds the
	// lock held returns ErrSyncInProgress without recording a run.
	Locker Locker
}

// Service pulls ledgers and the day book from Tally into the mirror.
type Service struct {
	logger      *slog.Logger
	gateway     GatewayPort
	ledgers     LedgerStore
	vouchers    VoucherStore
	runs        RunStore
	invalidator Invalidator
	metrics     *observability.Metrics
	cfg         Config
}

// NewService wires the sync dependencies.
func NewService(logger *slog.Logger, gateway GatewayPort, ls LedgerStore, vs VoucherStore, runs RunStore, invalidator Invalidator, metrics *observability.Metrics, cfg Config) *Service {
	if cfg.LookbackDays <= 0 {
		cfg.LookbackDays = 90
	}
	return &Service{
		logger:      logger,
		gateway:     gateway,
		ledgers:     ls,
		vouchers:    vs,
		runs:        runs,
		invalidator: invalidator,
		metrics:     metrics,
		cfg:         cfg,
	}
}

// Sync performs one full pass: ledgers and the day book are fetched
// concurrently, then upserted into the mirror. The run is recorded whether it
// succeeds or fails.
func (s *Service) Sync(ctx context.Context) (*Run, error) {
	if s.cfg.Locker != nil {
		release, ok, err := s.cfg.Locker.Acquire(ctx, shared.SyncLockKey, 10*time.Minute)
		if err != nil {
			return nil, fmt.Errorf("acquire sync lock: %w", err)
		}
		if !ok {
			return nil, ErrSyncInProgress
		}
		defer release()
	}

	run := Run{ID: uuid.New(), StartedAt: time.Now().UTC()}

	to := time.Now().UTC().Truncate(24 * time.Hour)
	from := to.AddDate(0, 0, -s.cfg.LookbackDays)

	var (
		masters []tally.Ledger
		entries []tally.Voucher
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		masters, err = s.gateway.FetchLedgers(gctx)
		if err != nil {
			return fmt.Errorf("fetch ledgers: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		entries, err = s.gateway.FetchDayBook(gctx, from, to)
		if err != nil {
			return fmt.Errorf("fetch day book: %w", err)
		}
		return nil
	})

	err := g.Wait()
	if err == nil {
		err = s.mirror(ctx, masters, entries)
	}

	run.FinishedAt = time.Now().UTC()
	run.Ledgers = len(masters)
	run.Vouchers = len(entries)
	if err != nil {
		run.Status = StatusFailed
		run.Error = err.Error()
	} else {
		run.Status = StatusOK
	}
	s.metrics.ObserveSyncRun(err)

	if saveErr := s.runs.SaveRun(ctx, run); saveErr != nil {
		s.logger.Error("record sync run", slog.Any("error", saveErr))
	}
	if err != nil {
		s.logger.Error("sync failed", slog.String("run_id", run.ID.String()), slog.Any("error", err))
		return &run, err
	}

	if err := s.invalidator.Invalidate(ctx); err != nil {
		s.logger.Warn("invalidate report cache", slog.Any("error", err))
	}
	s.logger.Info("sync finished",
		slog.String("run_id", run.ID.String()),
		slog.Int("ledgers", run.Ledgers),
		slog.Int("vouchers", run.Vouchers),
		slog.Duration("took", run.FinishedAt.Sub(run.StartedAt)))
	return &run, nil
}

// Status reports the latest run and recent history.
func (s *Service) Status(ctx context.Context) (Status, error) {
	recent, err := s.runs.RecentRuns(ctx, 10)
	if err != nil {
		return Status{}, err
	}
	status := Status{Recent: recent}
	if status.Recent == nil {
		status.Recent = []Run{}
	}
	if len(recent) > 0 {
		status.LastRun = &recent[0]
	}
	return status, nil
}

func (s *Service) mirror(ctx context.Context, masters []tally.Ledger, entries []tally.Voucher) error {
	mirrored := make([]ledgers.Ledger, 0, len(masters))
	for _, m := range masters {
		l := ledgers.Ledger{
			GUID:           m.GUID,
			Name:           m.Name,
			Parent:         m.Parent,
			GSTIN:          m.GSTIN,
			OpeningBalance: m.OpeningBalance,
			ClosingBalance: m.ClosingBalance,
		}
		// State code is denormalised from the GSTIN when it validates;
		// the compliance scan reports the broken ones.
		if code, err := gst.StateCode(m.GSTIN); err == nil {
			l.StateCode = code
		}
		mirrored = append(mirrored, l)
	}
	if err := s.ledgers.Upsert(ctx, mirrored); err != nil {
		return fmt.Errorf("upsert ledgers: %w", err)
	}

	rows := make([]vouchers.Voucher, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, vouchers.Voucher{
			GUID:      e.GUID,
			Date:      e.Date,
			Type:      e.Type,
			Number:    e.Number,
			Party:     e.Party,
			Amount:    e.Amount,
			Narration: e.Narration,
			Source:    vouchers.SourceSync,
		})
	}
	if err := s.vouchers.Upsert(ctx, rows); err != nil {
		return fmt.Errorf("upsert vouchers: %w", err)
	}
	return nil
}
