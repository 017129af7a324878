// Package event holds the immutable messages exchanged between services and
// the envelope that carries them across the broker.
package event

import (
	"encoding/json"
	"time"

	"bookstore-choreography/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrKindMismatch   = errs.New("envelope kind does not match message type")
	ErrMalformedEvent = errs.New("malformed event payload")
)

// Kind discriminates the closed set of event types.
type Kind string

const (
	KindPaymentCompleted Kind = "PaymentCompleted"
	KindBookPriceUpdated Kind = "BookPriceUpdated"
	KindFault            Kind = "Fault"
)

type Message interface {
	Kind() Kind
}

type PaymentCompleted struct {
	OrderID int64           `json:"orderId"`
	Amount  decimal.Decimal `json:"amount"`
}

func (PaymentCompleted) Kind() Kind { return KindPaymentCompleted }

type BookPriceUpdated struct {
	BookID   int64           `json:"bookId"`
	NewPrice decimal.Decimal `json:"newPrice"`
}

func (BookPriceUpdated) Kind() Kind { return KindBookPriceUpdated }

// Fault wraps a message whose handler failed on every attempt.
type Fault struct {
	Message    Envelope  `json:"message"`
	Queue      string    `json:"queue"`
	Exceptions []string  `json:"exceptions"`
	Attempts   int       `json:"attempts"`
	Timestamp  time.Time `json:"timestamp"`
}

func (Fault) Kind() Kind { return KindFault }

type Envelope struct {
	ID          uuid.UUID       `json:"messageId"`
	Kind        Kind            `json:"kind"`
	Payload     json.RawMessage `json:"payload"`
	PublishedAt time.Time       `json:"publishedAt"`
}

func Wrap(msg Message, now time.Time) (Envelope, error) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return Envelope{}, errs.Wrapf(err, "marshal %s", msg.Kind())
	}
	return Envelope{
		ID:          uuid.New(),
		Kind:        msg.Kind(),
		Payload:     payload,
		PublishedAt: now,
	}, nil
}

// Decode unpacks the payload into T after checking the discriminator.
func Decode[T Message](env Envelope) (T, error) {
	var msg T
	if env.Kind != msg.Kind() {
		return msg, errs.Wrapf(ErrKindMismatch, "want %s, got %s", msg.Kind(), env.Kind)
	}
	if err := json.Unmarshal(env.Payload, &msg); err != nil {
		return msg, errs.Mark(errs.Wrapf(err, "decode %s", env.Kind), ErrMalformedEvent)
	}
	return msg, nil
}

func (e Envelope) Encode() ([]byte, error) {
	return json.Marshal(e)
}

func DecodeEnvelope(data []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, errs.Mark(errs.Wrap(err, "decode envelope"), ErrMalformedEvent)
	}
	if env.Kind == "" {
		return Envelope{}, errs.Mark(errs.New("envelope without kind"), ErrMalformedEvent)
	}
	return env, nil
}
