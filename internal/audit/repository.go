package audit

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tallydesk/tallydesk/internal/shared"
)

// Repository persists compliance runs in PostgreSQL. Findings are stored as a
// JSONB document alongside the run row.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// SaveRun stores a completed scan.
func (r *Repository) SaveRun(ctx context.Context, run Run) error {
	findings, err := json.Marshal(run.Findings)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO audit_runs (id, started_at, finished_at, scanned, flagged, findings)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		run.ID, run.StartedAt, run.FinishedAt, run.Scanned, run.Flagged, findings)
	return err
}

// ListRuns returns the most recent runs, newest first.
func (r *Repository) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, started_at, finished_at, scanned, flagged, findings
		FROM audit_runs ORDER BY started_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetRun fetches one run by id.
func (r *Repository) GetRun(ctx context.Context, id uuid.UUID) (*Run, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, started_at, finished_at, scanned, flagged, findings
		FROM audit_runs WHERE id = $1`, id)
	run, err := scanRun(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, shared.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

func scanRun(row pgx.Row) (Run, error) {
	var run Run
	var findings []byte
	err := row.Scan(&run.ID, &run.StartedAt, &run.FinishedAt, &run.Scanned, &run.Flagged, &findings)
	if err != nil {
		return Run{}, err
	}
	if err := json.Unmarshal(findings, &run.Findings); err != nil {
		return Run{}, err
	}
	if run.Findings == nil {
		run.Findings = []Finding{}
	}
	return run, nil
}
