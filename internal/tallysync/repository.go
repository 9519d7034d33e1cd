package tallysync

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists sync runs in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// SaveRun stores a finished run.
func (r *Repository) SaveRun(ctx context.Context, run Run) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO sync_runs (id, started_at, finished_at, status, ledgers, vouchers, error)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''))`,
		run.ID, run.StartedAt, run.FinishedAt, run.Status, run.Ledgers, run.Vouchers, run.Error)
	return err
}

// RecentRuns returns the latest runs, newest first.
func (r *Repository) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, started_at, finished_at, status, ledgers, vouchers, COALESCE(error, '')
		FROM sync_runs ORDER BY started_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRuns(rows)
}

func scanRuns(rows pgx.Rows) ([]Run, error) {
	var runs []Run
	for rows.Next() {
		var run Run
		if err := rows.Scan(&run.ID, &run.StartedAt, &run.FinishedAt, &run.Status,
			&run.Ledgers, &run.Vouchers, &run.Error); err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
