// Package retry wraps cenkalti/backoff with the two policies the services use:
// fixed-interval redelivery for consumers and exponential waits for outbound calls.
package retry

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
)

type Policy struct {
	// Retries after the first attempt
	MaxRetries int
	Initial    time.Duration
	// <= 1 selects a constant interval
	Multiplier float64
}

// Exponential waits base, base*2, base*4, ... between attempts.
func Exponential(maxRetries int, base time.Duration) Policy {
	return Policy{MaxRetries: maxRetries, Initial: base, Multiplier: 2}
}

func Fixed(maxRetries int, interval time.Duration) Policy {
	return Policy{MaxRetries: maxRetries, Initial: interval, Multiplier: 1}
}

func (p Policy) Attempts() int {
	return p.MaxRetries + 1
}

func (p Policy) BackOff() backoff.BackOff {
	var b backoff.BackOff
	if p.Multiplier <= 1 {
		b = backoff.NewConstantBackOff(p.Initial)
	} else {
		eb := backoff.NewExponentialBackOff()
		eb.InitialInterval = p.Initial
		eb.Multiplier = p.Multiplier
		eb.RandomizationFactor = 0
		eb.MaxElapsedTime = 0
		eb.MaxInterval = maxInterval(p)
		eb.Reset()
		b = eb
	}
	return backoff.WithMaxRetries(b, uint64(max(p.MaxRetries, 0)))
}

func maxInterval(p Policy) time.Duration {
	shift := min(max(p.MaxRetries, 0), 20)
	if p.Initial <= 0 {
		return time.Second
	}
	return p.Initial << shift
}

// Notify is called before every wait with the error that caused it.
type Notify func(err error, wait time.Duration)

// Do runs op until it succeeds, returns a Permanent error, the policy is
// exhausted or ctx is done. The last error is returned unwrapped.
func Do(ctx context.Context, p Policy, op func(ctx context.Context) error, notify Notify) error {
	b := backoff.WithContext(p.BackOff(), ctx)
	var n backoff.Notify
	if notify != nil {
		n = backoff.Notify(notify)
	}
	return backoff.RetryNotify(func() error { return op(ctx) }, b, n)
}

// Permanent stops Do without further attempts.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return backoff.Permanent(err)
}

func IsPermanent(err error) bool {
	var p *backoff.PermanentError
	return errors.As(err, &p)
}
