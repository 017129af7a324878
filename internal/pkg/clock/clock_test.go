//go:build unit

package clock_test

import (
	"context"
	"testing"
	"time"

	"bookstore-choreography/internal/pkg/clock"

	"github.com/stretchr/testify/assert"
)

func TestMockClock(t *testing.T) {
	start := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	c := clock.NewMockClock(start)

	assert.Equal(t, start, c.Now())
	c.Add(5 * time.Second)
	assert.Equal(t, start.Add(5*time.Second), c.Now())
	c.Set(start)
	assert.Equal(t, start, c.Now())
}

func TestSleep(t *testing.T) {
	t.Run("returns after duration", func(t *testing.T) {
		assert.NoError(t, clock.Sleep(context.Background(), time.Millisecond))
	})

	t.Run("zero duration returns immediately", func(t *testing.T) {
		assert.NoError(t, clock.Sleep(context.Background(), 0))
	})

	t.Run("cancelled context interrupts the wait", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		begin := time.Now()
		err := clock.Sleep(ctx, time.Minute)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Less(t, time.Since(begin), time.Second)
	})
}
