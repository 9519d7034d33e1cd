package ledgers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tallydesk/tallydesk/internal/shared"
)

// Repository provides PostgreSQL backed persistence for mirrored ledgers.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const ledgerColumns = `id, guid, name, parent, gstin, state_code, opening_balance, closing_balance, synced_at`

// Upsert inserts or refreshes ledgers by Tally GUID.
func (r *Repository) Upsert(ctx context.Context, ledgers []Ledger) error {
	if len(ledgers) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	now := time.Now()
	for _, l := range ledgers {
		batch.Queue(`
			INSERT INTO ledgers (guid, name, parent, gstin, state_code, opening_balance, closing_balance, synced_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (guid) DO UPDATE SET
				name = EXCLUDED.name,
				parent = EXCLUDED.parent,
				gstin = EXCLUDED.gstin,
				state_code = EXCLUDED.state_code,
				opening_balance = EXCLUDED.opening_balance,
				closing_balance = EXCLUDED.closing_balance,
				synced_at = EXCLUDED.synced_at`,
			l.GUID, l.Name, l.Parent, l.GSTIN, l.StateCode, l.OpeningBalance, l.ClosingBalance, now)
	}
	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()
	for range ledgers {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("upsert ledger: %w", err)
		}
	}
	return nil
}

// List returns ledgers matching the request plus the total count.
func (r *Repository) List(ctx context.Context, req ListRequest) ([]Ledger, int, error) {
	where := []string{"TRUE"}
	args := []any{}
	if q := strings.TrimSpace(req.Query); q != "" {
		args = append(args, "%"+q+"%")
		where = append(where, fmt.Sprintf("name ILIKE $%d", len(args)))
	}
	if req.Parent != "" {
		args = append(args, req.Parent)
		where = append(where, fmt.Sprintf("parent = $%d", len(args)))
	}
	clause := strings.Join(where, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM ledgers WHERE `+clause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, req.PerPage, shared.Offset(req.Page, req.PerPage))
	query := fmt.Sprintf(`SELECT %s FROM ledgers WHERE %s ORDER BY name LIMIT $%d OFFSET $%d`,
		ledgerColumns, clause, len(args)-1, len(args))
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items, err := scanLedgers(rows)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// Get fetches one ledger by id.
func (r *Repository) Get(ctx context.Context, id int64) (*Ledger, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+ledgerColumns+` FROM ledgers WHERE id = $1`, id)
	l, err := scanLedger(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, shared.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// Search returns up to limit ledgers whose name matches the query.
func (r *Repository) Search(ctx context.Context, query string, limit int) ([]Ledger, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+ledgerColumns+` FROM ledgers WHERE name ILIKE $1 ORDER BY name LIMIT $2`,
		"%"+strings.TrimSpace(query)+"%", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanLedgers(rows)
}

// ListAll streams every ledger, used by reports and the compliance scan.
func (r *Repository) ListAll(ctx context.Context) ([]Ledger, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+ledgerColumns+` FROM ledgers ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanLedgers(rows)
}

func scanLedgers(rows pgx.Rows) ([]Ledger, error) {
	var items []Ledger
	for rows.Next() {
		l, err := scanLedger(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, l)
	}
	return items, rows.Err()
}

func scanLedger(row pgx.Row) (Ledger, error) {
	var l Ledger
	err := row.Scan(&l.ID, &l.GUID, &l.Name, &l.Parent, &l.GSTIN, &l.StateCode,
		&l.OpeningBalance, &l.ClosingBalance, &l.SyncedAt)
	return l, err
}
