package queries

import (
	"context"

	"bookstore-choreography/internal/domain/event"
)

// FaultLog is the error sink's in-memory record, newest last.
type FaultLog interface {
	Recent() []event.Fault
}

type FaultQueries interface {
	// Recent lists faults newest first.
	Recent(ctx context.Context) []*FaultView
}

type faultQueriesImpl struct {
	log FaultLog
}

func NewFaultQueries(log FaultLog) FaultQueries {
	return &faultQueriesImpl{log: log}
}

func (q *faultQueriesImpl) Recent(context.Context) []*FaultView {
	faults := q.log.Recent()
	out := make([]*FaultView, 0, len(faults))
	for i := len(faults) - 1; i >= 0; i-- {
		f := faults[i]
		out = append(out, &FaultView{
			MessageID:  f.Message.ID.String(),
			Kind:       string(f.Message.Kind),
			Queue:      f.Queue,
			Payload:    f.Message.Payload,
			Exceptions: f.Exceptions,
			Attempts:   f.Attempts,
			Timestamp:  f.Timestamp,
		})
	}
	return out
}
