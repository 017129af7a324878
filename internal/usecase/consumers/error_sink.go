package consumers

import (
	"context"
	"log/slog"
	"sync"

	"bookstore-choreography/internal/domain/event"
)

const defaultFaultLogCap = 100

// ErrorSink records faults from the error channels. It never fails a delivery.
type ErrorSink struct {
	mu     sync.Mutex
	faults []event.Fault
	cap    int
	logger *slog.Logger
}

func NewErrorSink(capacity int, logger *slog.Logger) *ErrorSink {
	if capacity <= 0 {
		capacity = defaultFaultLogCap
	}
	return &ErrorSink{cap: capacity, logger: logger.With("component", "error-sink")}
}

func (s *ErrorSink) HandleFault(_ context.Context, f event.Fault) error {
	s.logger.Error("message faulted",
		"queue", f.Queue,
		"message_id", f.Message.ID.String(),
		"kind", string(f.Message.Kind),
		"attempts", f.Attempts,
		"exceptions", f.Exceptions,
		"payload", string(f.Message.Payload))

	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.faults) == s.cap {
		s.faults = append(s.faults[:0], s.faults[1:]...)
	}
	s.faults = append(s.faults, f)
	return nil
}

// Recent returns the retained faults, oldest first.
func (s *ErrorSink) Recent() []event.Fault {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]event.Fault(nil), s.faults...)
}
