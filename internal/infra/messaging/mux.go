package messaging

import (
	"context"

	"bookstore-choreography/internal/domain/event"
	"bookstore-choreography/internal/pkg/errs"
	"bookstore-choreography/internal/pkg/retry"
)

var ErrUnknownKind = errs.New("no handler registered for event kind")

// Mux is the dispatch table from event kind to typed handler.
type Mux struct {
	handlers map[event.Kind]Handler
}

func NewMux() *Mux {
	return &Mux{handlers: map[event.Kind]Handler{}}
}

// On registers h for T's kind. Undecodable payloads fail permanently.
func On[T event.Message](m *Mux, h func(ctx context.Context, msg T) error) *Mux {
	var zero T
	m.handlers[zero.Kind()] = func(ctx context.Context, env event.Envelope) error {
		msg, err := event.Decode[T](env)
		if err != nil {
			return retry.Permanent(errs.Mark(err, errs.ErrProcessingFault))
		}
		return h(ctx, msg)
	}
	return m
}

func (m *Mux) Handle(ctx context.Context, env event.Envelope) error {
	h, ok := m.handlers[env.Kind]
	if !ok {
		return retry.Permanent(errs.Mark(errs.Wrapf(ErrUnknownKind, "%s", env.Kind), errs.ErrProcessingFault))
	}
	return h(ctx, env)
}
