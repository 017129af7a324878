package shared

import (
	"context"

	"bookstore-choreography/internal/domain/event"
)

// CatalogClient errors are marked errs.ErrNotFound or errs.ErrServiceUnavailable.
type CatalogClient interface {
	GetBook(ctx context.Context, id int64) (*BookSnapshot, error)
}

// PaymentGateway submits a single attempt; permanent rejections are wrapped
// with retry.Permanent.
type PaymentGateway interface {
	Submit(ctx context.Context, idempotencyKey string, req PaymentRequest) error
}

type EventPublisher interface {
	Publish(ctx context.Context, channel string, msg event.Message) error
}

type IdempotencyStore interface {
	// TryClaim reports false when key was already claimed within scope.
	TryClaim(ctx context.Context, scope, key string) (bool, error)
	Release(ctx context.Context, scope, key string) error
}

// OutboxNotifier wakes the dispatcher after a commit.
type OutboxNotifier interface {
	Notify()
}
