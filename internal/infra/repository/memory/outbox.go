package memory

import (
	"context"
	"slices"

	"bookstore-choreography/internal/infra"
	"bookstore-choreography/internal/pkg/clock"
	"bookstore-choreography/internal/usecase/shared"

	"github.com/google/uuid"
)

type OutboxRepository struct {
	t     func() *tables
	clock clock.Clock
}

func (r *OutboxRepository) Add(_ context.Context, msg *shared.OutboxMessage) error {
	t := r.t()
	if _, exists := t.outbox[msg.ID]; exists {
		return infra.NewRepoErr(infra.KindDuplicateKey, "outbox message exists", nil)
	}
	row := *msg
	if row.Status == "" {
		row.Status = shared.OutboxPending
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = r.clock.Now()
	}
	row.Payload = slices.Clone(msg.Payload)
	t.outbox[row.ID] = row
	t.outboxSeq = append(t.outboxSeq, row.ID)
	return nil
}

func (r *OutboxRepository) ClaimPending(_ context.Context, limit int) ([]*shared.OutboxMessage, error) {
	t := r.t()
	var claimed []*shared.OutboxMessage
	for _, id := range t.outboxSeq {
		if len(claimed) >= limit {
			break
		}
		row := t.outbox[id]
		if row.Status != shared.OutboxPending {
			continue
		}
		row.Status = shared.OutboxDispatching
		t.outbox[id] = row
		cp := row
		claimed = append(claimed, &cp)
	}
	return claimed, nil
}

func (r *OutboxRepository) MarkSent(_ context.Context, id uuid.UUID, attempts int) error {
	return r.update(id, func(row *shared.OutboxMessage) {
		row.Status = shared.OutboxSent
		row.Attempts = attempts
		row.LastError = ""
	})
}

func (r *OutboxRepository) MarkFailed(_ context.Context, id uuid.UUID, attempts int, lastErr string) error {
	return r.update(id, func(row *shared.OutboxMessage) {
		row.Status = shared.OutboxFailed
		row.Attempts = attempts
		row.LastError = lastErr
	})
}

func (r *OutboxRepository) ResetInFlight(_ context.Context) (int64, error) {
	t := r.t()
	var n int64
	for id, row := range t.outbox {
		if row.Status == shared.OutboxDispatching {
			row.Status = shared.OutboxPending
			t.outbox[id] = row
			n++
		}
	}
	return n, nil
}

func (r *OutboxRepository) List(_ context.Context) ([]*shared.OutboxMessage, error) {
	t := r.t()
	out := make([]*shared.OutboxMessage, 0, len(t.outboxSeq))
	for _, id := range t.outboxSeq {
		row := t.outbox[id]
		out = append(out, &row)
	}
	return out, nil
}

func (r *OutboxRepository) update(id uuid.UUID, fn func(*shared.OutboxMessage)) error {
	t := r.t()
	row, ok := t.outbox[id]
	if !ok {
		return infra.NewRepoErr(infra.KindNotFound, "outbox message not found", nil)
	}
	fn(&row)
	t.outbox[id] = row
	return nil
}
