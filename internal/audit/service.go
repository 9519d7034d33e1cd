package audit

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tallydesk/tallydesk/internal/gst"
	"github.com/tallydesk/tallydesk/internal/ledgers"
)

// RepositoryPort defines persistence methods for compliance runs.
type RepositoryPort interface {
	SaveRun(ctx context.Context, run Run) error
	ListRuns(ctx context.Context, limit int) ([]Run, error)
	GetRun(ctx context.Context, id uuid.UUID) (*Run, error)
}

// LedgerStore is the slice of the ledger repository the scan reads from.
type LedgerStore interface {
	ListAll(ctx context.Context) ([]ledgers.Ledger, error)
}

// Trading party groups where a missing GSTIN is worth flagging.
var partyGroups = map[string]bool{
	"sundry debtors":   true,
	"sundry creditors": true,
}

// Service runs GST compliance scans over the mirrored ledgers.
type Service struct {
	logger  *slog.Logger
	repo    RepositoryPort
	ledgers LedgerStore
}

// NewService builds Service instance.
func NewService(logger *slog.Logger, repo RepositoryPort, ledgers LedgerStore) *Service {
	return &Service{logger: logger, repo: repo, ledgers: ledgers}
}

// RunScan validates every mirrored ledger's GSTIN and persists the run.
// Party ledgers without a GSTIN are flagged; any ledger with an invalid
// GSTIN is flagged regardless of group.
func (s *Service) RunScan(ctx context.Context) (*Run, error) {
	started := time.Now().UTC()
	items, err := s.ledgers.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load ledgers: %w", err)
	}

	run := Run{
		ID:        uuid.New(),
		StartedAt: started,
		Findings:  []Finding{},
	}
	for _, l := range items {
		run.Scanned++
		if f, flagged := inspect(l); flagged {
			run.Findings = append(run.Findings, f)
		}
	}
	run.Flagged = len(run.Findings)
	run.FinishedAt = time.Now().UTC()

	if err := s.repo.SaveRun(ctx, run); err != nil {
		return nil, fmt.Errorf("save run: %w", err)
	}
	s.logger.Info("compliance scan finished",
		slog.String("run_id", run.ID.String()),
		slog.Int("scanned", run.Scanned),
		slog.Int("flagged", run.Flagged))
	return &run, nil
}

// ListRuns returns recent runs, newest first.
func (s *Service) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	runs, err := s.repo.ListRuns(ctx, limit)
	if err != nil {
		return nil, err
	}
	if runs == nil {
		runs = []Run{}
	}
	return runs, nil
}

// GetRun returns one run by id.
func (s *Service) GetRun(ctx context.Context, id uuid.UUID) (*Run, error) {
	return s.repo.GetRun(ctx, id)
}

func inspect(l ledgers.Ledger) (Finding, bool) {
	isParty := partyGroups[strings.ToLower(strings.TrimSpace(l.Parent))]
	if l.GSTIN == "" {
		if !isParty {
			return Finding{}, false
		}
		return Finding{
			LedgerGUID: l.GUID,
			LedgerName: l.Name,
			Reason:     "party ledger has no GSTIN",
		}, true
	}

	v := gst.ValidateGSTIN(l.GSTIN)
	if !v.Valid {
		return Finding{
			LedgerGUID: l.GUID,
			LedgerName: l.Name,
			GSTIN:      l.GSTIN,
			Reason:     v.Error,
		}, true
	}
	if l.StateCode != "" && l.StateCode != v.StateCode {
		return Finding{
			LedgerGUID: l.GUID,
			LedgerName: l.Name,
			GSTIN:      l.GSTIN,
			Reason:     fmt.Sprintf("ledger state %s does not match GSTIN state %s", l.StateCode, v.StateCode),
		}, true
	}
	return Finding{}, false
}
