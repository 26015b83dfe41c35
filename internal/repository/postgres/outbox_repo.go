// internal/repository/postgres/outbox_repo.go
package postgres

import (
	"context"
	"fmt"
	"time"

	"checkout-service/internal/domain/outbox"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type OutboxRepository struct {
	db *pgxpool.Pool
}

func NewOutboxRepository(db *pgxpool.Pool) *OutboxRepository {
	return &OutboxRepository{db: db}
}

// Enqueue inserts a pending side-effect row. Duplicate idempotency keys are
// swallowed: a replayed fan-out enqueues nothing.
func (r *OutboxRepository) Enqueue(ctx context.Context, row *outbox.Row) error {
	query := `
		INSERT INTO outbox (kind, sale_id, idempotency_key, payload, status, next_attempt_at)
		VALUES ($1, $2, $3, $4, 'pending', NOW())
		ON CONFLICT (idempotency_key) DO NOTHING
	`
	if _, err := r.db.Exec(ctx, query, row.Kind, row.SaleID, row.IdempotencyKey, row.Payload); err != nil {
		return fmt.Errorf("failed to enqueue outbox row: %w", err)
	}
	return nil
}

// EnqueueTx is Enqueue inside the caller's transaction, so fan-out rows
// commit atomically with the sale status change.
func (r *OutboxRepository) EnqueueTx(ctx context.Context, tx pgx.Tx, row *outbox.Row) error {
	query := `
		INSERT INTO outbox (kind, sale_id, idempotency_key, payload, status, next_attempt_at)
		VALUES ($1, $2, $3, $4, 'pending', NOW())
		ON CONFLICT (idempotency_key) DO NOTHING
	`
	if _, err := tx.Exec(ctx, query, row.Kind, row.SaleID, row.IdempotencyKey, row.Payload); err != nil {
		return fmt.Errorf("failed to enqueue outbox row: %w", err)
	}
	return nil
}

// ClaimPending locks up to limit due rows for this dispatcher run. SKIP
// LOCKED lets several instances drain the table without stepping on each
// other. Callers must Exec the returned rows' outcomes and commit tx.
func (r *OutboxRepository) ClaimPending(ctx context.Context, tx pgx.Tx, limit int) ([]outbox.Row, error) {
	query := `
		SELECT id, kind, sale_id, idempotency_key, payload, status, attempts,
		       last_error, next_attempt_at, created_at, sent_at
		FROM outbox
		WHERE status = 'pending' AND next_attempt_at <= NOW()
		ORDER BY id ASC
		LIMIT $1
		FOR UPDATE SKIP LOCKED
	`
	rows, err := tx.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to claim outbox rows: %w", err)
	}
	defer rows.Close()

	var out []outbox.Row
	for rows.Next() {
		var o outbox.Row
		if err := rows.Scan(
			&o.ID, &o.Kind, &o.SaleID, &o.IdempotencyKey, &o.Payload, &o.Status,
			&o.Attempts, &o.LastError, &o.NextAttemptAt, &o.CreatedAt, &o.SentAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan outbox row: %w", err)
		}
		out = append(out, o)
	}

	return out, rows.Err()
}

// MarkSent finalizes a delivered row.
func (r *OutboxRepository) MarkSent(ctx context.Context, tx pgx.Tx, id int64) error {
	query := `UPDATE outbox SET status = 'sent', sent_at = NOW() WHERE id = $1`
	if _, err := tx.Exec(ctx, query, id); err != nil {
		return fmt.Errorf("failed to mark outbox row sent: %w", err)
	}
	return nil
}

// MarkAttemptFailed records a failed attempt. Rows stay pending with a
// backed-off next_attempt_at until maxAttempts, then flip to failed.
func (r *OutboxRepository) MarkAttemptFailed(ctx context.Context, tx pgx.Tx, id int64, attemptErr string, retryIn time.Duration, maxAttempts int) error {
	query := `
		UPDATE outbox
		SET attempts = attempts + 1,
		    last_error = $1,
		    next_attempt_at = NOW() + $2,
		    status = CASE WHEN attempts + 1 >= $3 THEN 'failed' ELSE 'pending' END
		WHERE id = $4
	`
	if _, err := tx.Exec(ctx, query, attemptErr, retryIn, maxAttempts, id); err != nil {
		return fmt.Errorf("failed to mark outbox attempt: %w", err)
	}
	return nil
}

// ProcessBatch claims up to limit due rows in one transaction and runs fn on
// each. A nil fn error marks the row sent; any other error records the
// attempt with exponential backoff (baseBackoff << attempts, capped at one
// hour) and flips the row to failed once maxAttempts is reached. Returns how
// many rows were processed.
func (r *OutboxRepository) ProcessBatch(ctx context.Context, limit, maxAttempts int, baseBackoff time.Duration, fn func(ctx context.Context, row *outbox.Row) error) (int, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin outbox batch: %w", err)
	}
	defer tx.Rollback(ctx)

	rows, err := r.ClaimPending(ctx, tx, limit)
	if err != nil {
		return 0, err
	}

	for i := range rows {
		row := &rows[i]
		if err := fn(ctx, row); err != nil {
			retryIn := baseBackoff << uint(row.Attempts)
			if retryIn > time.Hour {
				retryIn = time.Hour
			}
			if mErr := r.MarkAttemptFailed(ctx, tx, row.ID, err.Error(), retryIn, maxAttempts); mErr != nil {
				return 0, mErr
			}
			continue
		}
		if err := r.MarkSent(ctx, tx, row.ID); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit outbox batch: %w", err)
	}
	return len(rows), nil
}

// CountByStatus is used by the super-admin health view.
func (r *OutboxRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	rows, err := r.db.Query(ctx, `SELECT status, COUNT(*) FROM outbox GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to count outbox rows: %w", err)
	}
	defer rows.Close()

	out := map[string]int64{}
	for rows.Next() {
		var status string
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("failed to scan outbox count: %w", err)
		}
		out[status] = n
	}

	return out, rows.Err()
}
