//go:build unit

package kafka

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"slices"
	"sync"
	"testing"
	"time"

	"bookstore-choreography/internal/domain/event"
	"bookstore-choreography/internal/infra/messaging"
	"bookstore-choreography/internal/pkg/clock"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type timeline struct {
	mu      sync.Mutex
	entries []string
}

func (t *timeline) add(entry string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = append(t.entries, entry)
}

func (t *timeline) snapshot() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.entries)
}

type fakeReader struct {
	msgs chan kafka.Message

	mu      sync.Mutex
	commits []int64
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	select {
	case <-ctx.Done():
		return kafka.Message{}, ctx.Err()
	case m := <-r.msgs:
		return m, nil
	}
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range msgs {
		r.commits = append(r.commits, m.Offset)
	}
	return nil
}

func (r *fakeReader) Close() error { return nil }

func (r *fakeReader) committed() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.commits)
}

type fakeWriter struct {
	log *timeline

	mu       sync.Mutex
	fail     bool
	attempts int
	written  []kafka.Message
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.attempts++
	if w.fail {
		return errors.New("leader not available")
	}
	for _, m := range msgs {
		w.written = append(w.written, m)
		w.log.add("write " + m.Topic)
	}
	return nil
}

func (w *fakeWriter) Close() error { return nil }

func (w *fakeWriter) setFail(fail bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.fail = fail
}

func (w *fakeWriter) stats() (int, []kafka.Message) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.attempts, slices.Clone(w.written)
}

type BrokerSuite struct {
	suite.Suite
	clock  *clock.MockClock
	log    *timeline
	reader *fakeReader
	writer *fakeWriter
	broker *Broker
}

func TestBrokerSuite(t *testing.T) {
	suite.Run(t, new(BrokerSuite))
}

func (s *BrokerSuite) SetupTest() {
	s.clock = clock.NewMockClock(time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))
	s.log = &timeline{}
	s.reader = &fakeReader{msgs: make(chan kafka.Message, 16)}
	s.writer = &fakeWriter{log: s.log}
}

func (s *BrokerSuite) TearDownTest() {
	if s.broker != nil {
		s.Require().NoError(s.broker.Close())
		s.broker = nil
	}
}

func (s *BrokerSuite) start(opts messaging.Options, handler messaging.Handler) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	d := messaging.NewDeliverer(opts, s.clock, logger, messaging.NewMetrics(prometheus.NewRegistry()))
	open := func([]string, string, string) reader { return s.reader }
	s.broker = newBroker(nil, s.writer, open, d, logger)
	s.broker.backoff = 5 * time.Millisecond
	s.Require().NoError(s.broker.Subscribe(messaging.Subscription{
		Queue:    event.QueueOrderPrice,
		Channels: []string{event.ChannelBookPriceEvents},
		Handler:  handler,
	}))
}

func (s *BrokerSuite) feed(offset int64, bookID int64) event.Envelope {
	env, err := event.Wrap(event.BookPriceUpdated{BookID: bookID, NewPrice: decimal.RequireFromString("39.99")}, s.clock.Now())
	s.Require().NoError(err)
	body, err := env.Encode()
	s.Require().NoError(err)
	s.reader.msgs <- kafka.Message{Topic: event.ChannelBookPriceEvents, Offset: offset, Value: body}
	return env
}

func failingBook(bookID int64, log *timeline) messaging.Handler {
	return func(_ context.Context, env event.Envelope) error {
		msg, err := event.Decode[event.BookPriceUpdated](env)
		if err != nil {
			return err
		}
		if msg.BookID == bookID {
			log.add("fail")
			return errors.New("order already paid")
		}
		log.add("handled " + env.ID.String())
		return nil
	}
}

func (s *BrokerSuite) TestRedeliveryDoesNotHoldLaterMessages() {
	s.start(messaging.Options{RetryLimit: 2, RetryInterval: 100 * time.Millisecond, Concurrency: 4}, failingBook(2, s.log))

	s.feed(0, 2)
	later := s.feed(1, 1)

	s.Eventually(func() bool {
		_, written := s.writer.stats()
		return len(written) == 1
	}, 2*time.Second, 5*time.Millisecond)

	entries := s.log.snapshot()
	handled := slices.Index(entries, "handled "+later.ID.String())
	routed := slices.Index(entries, "write "+event.ErrorChannel(event.QueueOrderPrice))
	s.Require().NotEqual(-1, handled)
	s.Require().NotEqual(-1, routed)
	s.Less(handled, routed, "later message waits for the faulted one: %v", entries)

	s.Eventually(func() bool { return slices.Equal([]int64{1}, s.reader.committed()) }, time.Second, 5*time.Millisecond)
}

func (s *BrokerSuite) TestUnroutedFaultKeepsOffsetUncommitted() {
	s.writer.setFail(true)
	s.start(messaging.Options{RetryLimit: 0, Concurrency: 2}, failingBook(2, s.log))

	s.feed(0, 2)

	s.Eventually(func() bool {
		attempts, _ := s.writer.stats()
		return attempts >= 3
	}, time.Second, 5*time.Millisecond)
	s.Empty(s.reader.committed())

	s.writer.setFail(false)

	s.Eventually(func() bool { return slices.Equal([]int64{0}, s.reader.committed()) }, time.Second, 5*time.Millisecond)
	_, written := s.writer.stats()
	s.Require().Len(written, 1)
	s.Equal(event.ErrorChannel(event.QueueOrderPrice), written[0].Topic)
}

func (s *BrokerSuite) TestUndecodableMessageIsSkippedInOrder() {
	s.start(messaging.Options{RetryLimit: 0, Concurrency: 2}, failingBook(2, s.log))

	s.reader.msgs <- kafka.Message{Topic: event.ChannelBookPriceEvents, Offset: 0, Value: []byte("not json")}
	s.feed(1, 1)

	s.Eventually(func() bool {
		commits := s.reader.committed()
		return len(commits) > 0 && commits[len(commits)-1] == 1
	}, time.Second, 5*time.Millisecond)
	s.True(slices.IsSorted(s.reader.committed()))
}

func (s *BrokerSuite) TestCloseLeavesInterruptedMessageUncommitted() {
	entered := make(chan struct{})
	s.start(messaging.Options{RetryLimit: 3, Concurrency: 1}, func(ctx context.Context, _ event.Envelope) error {
		close(entered)
		<-ctx.Done()
		return ctx.Err()
	})

	s.feed(0, 1)
	<-entered

	s.Require().NoError(s.broker.Close())
	s.broker = nil
	s.Empty(s.reader.committed())
}
