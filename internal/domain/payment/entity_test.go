//go:build unit

package payment_test

import (
	"testing"
	"time"

	"bookstore-choreography/internal/domain/payment"
	"bookstore-choreography/internal/pkg/errs"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPayment(t *testing.T) {
	now := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

	testCases := []struct {
		name     string
		quantity int
		amount   string
		errIs    error
	}{
		{name: "valid", quantity: 2, amount: "99.98"},
		{name: "zero quantity NG", quantity: 0, amount: "99.98", errIs: payment.ErrInvalidQuantity},
		{name: "zero amount NG", quantity: 1, amount: "0", errIs: payment.ErrInvalidAmount},
		{name: "negative amount NG", quantity: 1, amount: "-1", errIs: payment.ErrInvalidAmount},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := payment.NewPayment(10, 1, tc.quantity, decimal.RequireFromString(tc.amount), now)
			if tc.errIs != nil {
				require.Error(t, err)
				assert.True(t, errs.Is(err, tc.errIs))
				assert.True(t, errs.Is(err, errs.ErrInvalidInput))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, int64(10), p.OrderID())
			assert.Equal(t, now, p.CreatedAt())
		})
	}
}

func TestVerifyAgainst(t *testing.T) {
	testCases := []struct {
		name     string
		quantity int
		amount   string
		price    string
		mismatch bool
	}{
		{name: "exact match", quantity: 2, amount: "99.98", price: "49.99"},
		{name: "trailing zeros still match", quantity: 2, amount: "99.980", price: "49.99"},
		{name: "one cent short", quantity: 2, amount: "99.97", price: "49.99", mismatch: true},
		{name: "stale price", quantity: 1, amount: "49.99", price: "39.99", mismatch: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := payment.NewPayment(1, 1, tc.quantity, decimal.RequireFromString(tc.amount), time.Now())
			require.NoError(t, err)

			err = p.VerifyAgainst(decimal.RequireFromString(tc.price))
			if !tc.mismatch {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errs.Is(err, errs.ErrPriceMismatch))
			assert.True(t, errs.Is(err, payment.ErrPriceMismatch))
		})
	}
}
