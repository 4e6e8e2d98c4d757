package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	domrecon "example.com/voltcart/app/internal/domain/reconciliation"
)

//go:embed schema.sql
var schema string

const entryColumns = `id, attempt_id, session_id, user_id, idempotency_key, payment_reference,
    amount_minor, currency, reason, status, created_at, resolved_at, resolved_by, note`

// ReconciliationRepository is the ledger of paid checkouts whose order could
// not be recorded.
type ReconciliationRepository struct {
	pool *pgxpool.Pool
}

func NewReconciliationRepository(pool *pgxpool.Pool) *ReconciliationRepository {
	return &ReconciliationRepository{pool: pool}
}

func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pg connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pg ping: %w", err)
	}
	return pool, nil
}

func (r *ReconciliationRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, schema)
	return err
}

// Create inserts e. Reporting the same attempt twice returns the first entry.
func (r *ReconciliationRepository) Create(ctx context.Context, e *domrecon.Entry) (*domrecon.Entry, error) {
	row := r.pool.QueryRow(ctx, `
        INSERT INTO reconciliation_entries
            (attempt_id, session_id, user_id, idempotency_key, payment_reference,
             amount_minor, currency, reason, status, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        ON CONFLICT (attempt_id) DO UPDATE SET attempt_id = EXCLUDED.attempt_id
        RETURNING `+entryColumns,
		e.AttemptID, e.SessionID, e.UserID, e.IdempotencyKey, e.PaymentReference,
		e.AmountMinor, e.Currency, e.Reason, string(domrecon.StatusOpen), e.CreatedAt,
	)
	return scanEntry(row)
}

func (r *ReconciliationRepository) GetByID(ctx context.Context, id int64) (*domrecon.Entry, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+entryColumns+` FROM reconciliation_entries WHERE id = $1`, id)
	e, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domrecon.ErrEntryNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *ReconciliationRepository) List(ctx context.Context, filter domrecon.ListFilter) ([]*domrecon.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM reconciliation_entries`
	var args []any
	if filter.Status != nil {
		query += ` WHERE status = $1`
		args = append(args, string(*filter.Status))
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []*domrecon.Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *ReconciliationRepository) Resolve(ctx context.Context, id int64, resolvedBy, note string) (*domrecon.Entry, error) {
	row := r.pool.QueryRow(ctx, `
        UPDATE reconciliation_entries
        SET status = $2, resolved_at = now(), resolved_by = $3, note = $4
        WHERE id = $1 AND status = $5
        RETURNING `+entryColumns,
		id, string(domrecon.StatusResolved), resolvedBy, note, string(domrecon.StatusOpen),
	)
	e, err := scanEntry(row)
	if err == nil {
		return e, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	// Either the entry does not exist or someone resolved it first.
	if _, getErr := r.GetByID(ctx, id); getErr != nil {
		return nil, getErr
	}
	return nil, domrecon.ErrAlreadyResolved
}

func (r *ReconciliationRepository) HasOpenForSession(ctx context.Context, sessionID string) (bool, error) {
	var open bool
	err := r.pool.QueryRow(ctx, `
        SELECT EXISTS (
            SELECT 1 FROM reconciliation_entries WHERE session_id = $1 AND status = $2
        )
    `, sessionID, string(domrecon.StatusOpen)).Scan(&open)
	return open, err
}

func scanEntry(row pgx.Row) (*domrecon.Entry, error) {
	var e domrecon.Entry
	var status string
	if err := row.Scan(
		&e.ID, &e.AttemptID, &e.SessionID, &e.UserID, &e.IdempotencyKey, &e.PaymentReference,
		&e.AmountMinor, &e.Currency, &e.Reason, &status, &e.CreatedAt, &e.ResolvedAt, &e.ResolvedBy, &e.Note,
	); err != nil {
		return nil, err
	}
	e.Status = domrecon.Status(status)
	return &e, nil
}
