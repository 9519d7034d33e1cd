package vouchers

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

// Repository provides PostgreSQL backed persistence for mirrored vouchers.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const voucherColumns = `id, guid, date, type, number, party, amount, narration, source, created_at`

// Upsert inserts or refreshes synced vouchers by Tally GUID.
func (r *Repository) Upsert(ctx context.Context, vouchers []Voucher) error {
	if len(vouchers) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, v := range vouchers {
		batch.Queue(`
			INSERT INTO vouchers (guid, date, type, number, party, amount, narration, source, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
			ON CONFLICT (guid) DO UPDATE SET
				date = EXCLUDED.date,
				type = EXCLUDED.type,
				number = EXCLUDED.number,
				party = EXCLUDED.party,
				amount = EXCLUDED.amount,
				narration = EXCLUDED.narration`,
			v.GUID, v.Date, v.Type, v.Number, v.Party, v.Amount, v.Narration, v.Source)
	}
	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()
	for range vouchers {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("upsert voucher: %w", err)
		}
	}
	return nil
}

// Insert stores a dashboard-entered voucher and returns it with its id.
func (r *Repository) Insert(ctx context.Context, v Voucher) (*Voucher, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO vouchers (guid, date, type, number, party, amount, narration, source, created_at)
		VALUES (NULLIF($1, ''), $2, $3, $4, $5, $6, $7, $8, NOW())
		RETURNING id, created_at`,
		v.GUID, v.Date, v.Type, v.Number, v.Party, v.Amount, v.Narration, v.Source)
	if err := row.Scan(&v.ID, &v.CreatedAt); err != nil {
		return nil, err
	}
	return &v, nil
}

// List returns vouchers matching the request plus the total count.
func (r *Repository) List(ctx context.Context, req ListRequest) ([]Voucher, int, error) {
	where := []string{"TRUE"}
	args := []any{}
	if req.Type != "" {
		args = append(args, req.Type)
		where = append(where, fmt.Sprintf("type = $%d", len(args)))
	}
	if q := strings.TrimSpace(req.Party); q != "" {
		args = append(args, "%"+q+"%")
		where = append(where, fmt.Sprintf("party ILIKE $%d", len(args)))
	}
	if !req.From.IsZero() {
		args = append(args, req.From)
		where = append(where, fmt.Sprintf("date >= $%d", len(args)))
	}
	if !req.To.IsZero() {
		args = append(args, req.To)
		where = append(where, fmt.Sprintf("date <= $%d", len(args)))
	}
	clause := strings.Join(where, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM vouchers WHERE `+clause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, req.PerPage, shared.Offset(req.Page, req.PerPage))
	query := fmt.Sprintf(`SELECT %s FROM vouchers WHERE %s ORDER BY date DESC, id DESC LIMIT $%d OFFSET $%d`,
		voucherColumns, clause, len(args)-1, len(args))
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items, err := scanVouchers(rows)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// Get fetches one voucher by id.
func (r *Repository) Get(ctx context.Context, id int64) (*Voucher, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+voucherColumns+` FROM vouchers WHERE id = $1`, id)
	v, err := scanVoucher(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, shared.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// Search returns up to limit vouchers whose party or narration matches.
func (r *Repository) Search(ctx context.Context, query string, limit int) ([]Voucher, error) {
	pattern := "%" + strings.TrimSpace(query) + "%"
	rows, err := r.pool.Query(ctx,
		`SELECT `+voucherColumns+` FROM vouchers
		 WHERE party ILIKE $1 OR narration ILIKE $1 OR number ILIKE $1
		 ORDER BY date DESC LIMIT $2`, pattern, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanVouchers(rows)
}

// ListRange returns every voucher in a date range, oldest first. Reports use
// this to build registers and running balances.
func (r *Repository) ListRange(ctx context.Context, from, to time.Time, types []string) ([]Voucher, error) {
	where := []string{"date >= $1", "date <= $2"}
	args := []any{from, to}
	if len(types) > 0 {
		args = append(args, types)
		where = append(where, fmt.Sprintf("type = ANY($%d)", len(args)))
	}
	query := fmt.Sprintf(`SELECT %s FROM vouchers WHERE %s ORDER BY date, id`,
		voucherColumns, strings.Join(where, " AND "))
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanVouchers(rows)
}

func scanVouchers(rows pgx.Rows) ([]Voucher, error) {
	var items []Voucher
	for rows.Next() {
		v, err := scanVoucher(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, v)
	}
	return items, rows.Err()
}

func scanVoucher(row pgx.Row) (Voucher, error) {
	var v Voucher
	var guid *string
	err := row.Scan(&v.ID, &guid, &v.Date, &v.Type, &v.Number, &v.Party,
		&v.Amount, &v.Narration, &v.Source, &v.CreatedAt)
	if guid != nil {
		v.GUID = *guid
	}
	return v, err
}
