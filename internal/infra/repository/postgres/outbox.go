package postgres

import (
	"cmp"
	"context"
	"slices"
	"time"

	"bookstore-choreography/internal/infra"
	"bookstore-choreography/internal/pkg/clock"
	"bookstore-choreography/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const outboxColumns = `seq, id, topic, payload, status, attempts, last_error, created_at`

type OutboxRepository struct {
	db    DBTX
	clock clock.Clock
}

func NewOutboxRepository(db DBTX, clk clock.Clock) *OutboxRepository {
	return &OutboxRepository{db: db, clock: clk}
}

func (r *OutboxRepository) Add(ctx context.Context, msg *shared.OutboxMessage) error {
	status := msg.Status
	if status == "" {
		status = shared.OutboxPending
	}
	createdAt := msg.CreatedAt
	if createdAt.IsZero() {
		createdAt = r.clock.Now()
	}
	_, err := r.db.Exec(ctx,
		`INSERT INTO outbox_messages (id, topic, payload, status, attempts, last_error, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		msg.ID, msg.Topic, msg.Payload, string(status), msg.Attempts, msg.LastError, createdAt)
	if err != nil {
		return mapErr("failed to add outbox message", err)
	}
	return nil
}

// ClaimPending skips rows locked by a concurrent dispatcher.
func (r *OutboxRepository) ClaimPending(ctx context.Context, limit int) ([]*shared.OutboxMessage, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := r.db.Query(ctx,
		`UPDATE outbox_messages SET status = $2
		 WHERE id IN (
		     SELECT id FROM outbox_messages
		     WHERE status = $1
		     ORDER BY seq
		     LIMIT $3
		     FOR UPDATE SKIP LOCKED
		 )
		 RETURNING `+outboxColumns,
		string(shared.OutboxPending), string(shared.OutboxDispatching), limit)
	if err != nil {
		return nil, mapErr("failed to claim outbox messages", err)
	}
	return collectOutbox(rows)
}

func (r *OutboxRepository) MarkSent(ctx context.Context, id uuid.UUID, attempts int) error {
	return r.finish(ctx, id, shared.OutboxSent, attempts, "")
}

func (r *OutboxRepository) MarkFailed(ctx context.Context, id uuid.UUID, attempts int, lastErr string) error {
	return r.finish(ctx, id, shared.OutboxFailed, attempts, lastErr)
}

func (r *OutboxRepository) finish(ctx context.Context, id uuid.UUID, status shared.OutboxStatus, attempts int, lastErr string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE outbox_messages SET status = $2, attempts = $3, last_error = $4 WHERE id = $1`,
		id, string(status), attempts, lastErr)
	if err != nil {
		return mapErr("failed to update outbox message", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.NewRepoErr(infra.KindNotFound, "outbox message not found", nil)
	}
	return nil
}

func (r *OutboxRepository) ResetInFlight(ctx context.Context) (int64, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE outbox_messages SET status = $2 WHERE status = $1`,
		string(shared.OutboxDispatching), string(shared.OutboxPending))
	if err != nil {
		return 0, mapErr("failed to reset in-flight outbox messages", err)
	}
	return tag.RowsAffected(), nil
}

func (r *OutboxRepository) List(ctx context.Context) ([]*shared.OutboxMessage, error) {
	rows, err := r.db.Query(ctx, `SELECT `+outboxColumns+` FROM outbox_messages ORDER BY seq`)
	if err != nil {
		return nil, mapErr("failed to list outbox messages", err)
	}
	return collectOutbox(rows)
}

type outboxRow struct {
	seq int64
	msg shared.OutboxMessage
}

func collectOutbox(rows pgx.Rows) ([]*shared.OutboxMessage, error) {
	scanned, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (outboxRow, error) {
		var (
			r         outboxRow
			status    string
			createdAt time.Time
		)
		err := row.Scan(&r.seq, &r.msg.ID, &r.msg.Topic, &r.msg.Payload, &status, &r.msg.Attempts, &r.msg.LastError, &createdAt)
		r.msg.Status = shared.OutboxStatus(status)
		r.msg.CreatedAt = createdAt.UTC()
		return r, err
	})
	if err != nil {
		return nil, mapErr("failed to scan outbox messages", err)
	}
	// RETURNING does not preserve the subquery order
	slices.SortFunc(scanned, func(a, b outboxRow) int { return cmp.Compare(a.seq, b.seq) })

	out := make([]*shared.OutboxMessage, len(scanned))
	for i := range scanned {
		out[i] = &scanned[i].msg
	}
	return out, nil
}
