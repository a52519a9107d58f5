package notifications

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"zgw/pkg/platform/tx"
)

// Postgres stores outbox rows in the notificaties_outbox table. ClaimPending
// uses SKIP LOCKED so concurrent workers never pick up the same row twice.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Postgres) exec(ctx context.Context) execer {
	if sqlTx, ok := tx.From(ctx); ok {
		return sqlTx
	}
	return s.db
}

func (s *Postgres) Enqueue(ctx context.Context, item OutboxItem) error {
	_, err := s.exec(ctx).ExecContext(ctx, `
		INSERT INTO notificaties_outbox (id, topic, payload, status, attempts, created_at)
		VALUES ($1, $2, $3, $4, 0, $5)`,
		item.ID, item.Topic, []byte(item.Payload), StatusPending, item.CreatedAt)
	if err != nil {
		return fmt.Errorf("enqueue notification: %w", err)
	}
	return nil
}

const outboxColumns = `id, topic, payload, status, attempts, COALESCE(last_error, ''), created_at`

func (s *Postgres) ClaimPending(ctx context.Context, limit int) ([]OutboxItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+outboxColumns+`
		FROM notificaties_outbox
		WHERE status = $1
		ORDER BY created_at
		LIMIT $2
		FOR UPDATE SKIP LOCKED`, StatusPending, limit)
	if err != nil {
		return nil, fmt.Errorf("claim pending notifications: %w", err)
	}
	defer rows.Close()
	return scanItems(rows)
}

func (s *Postgres) MarkDelivered(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE notificaties_outbox
		SET status = $1, delivered_at = now()
		WHERE id = $2`, StatusDelivered, id)
	return err
}

func (s *Postgres) MarkFailed(ctx context.Context, id uuid.UUID, attempts int, lastError string, terminal bool) error {
	status := StatusPending
	if terminal {
		status = StatusFailed
	}
	_, err := s.db.ExecContext(ctx, `
		UPDATE notificaties_outbox
		SET status = $1, attempts = $2, last_error = $3
		WHERE id = $4`, status, attempts, lastError, id)
	return err
}

func (s *Postgres) ListFailed(ctx context.Context) ([]OutboxItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+outboxColumns+`
		FROM notificaties_outbox
		WHERE status = $1
		ORDER BY created_at`, StatusFailed)
	if err != nil {
		return nil, fmt.Errorf("list failed notifications: %w", err)
	}
	defer rows.Close()
	return scanItems(rows)
}

func (s *Postgres) Requeue(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE notificaties_outbox
		SET status = $1, attempts = 0, last_error = NULL
		WHERE id = $2`, StatusPending, id)
	return err
}

func scanItems(rows *sql.Rows) ([]OutboxItem, error) {
	var out []OutboxItem
	for rows.Next() {
		var (
			item    OutboxItem
			payload []byte
		)
		if err := rows.Scan(&item.ID, &item.Topic, &payload, &item.Status, &item.Attempts, &item.LastError, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan outbox row: %w", err)
		}
		item.Payload = payload
		out = append(out, item)
	}
	return out, rows.Err()
}
