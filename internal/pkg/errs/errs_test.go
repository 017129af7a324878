//go:build unit

package errs_test

import (
	"errors"
	"testing"

	"bookstore-choreography/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
)

func TestMark(t *testing.T) {
	testCases := []struct {
		name   string
		err    error
		mark   error
		wantIs []error
		notIs  []error
	}{
		{
			name:   "marked error matches taxonomy",
			err:    errs.New("book 7 missing"),
			mark:   errs.ErrNotFound,
			wantIs: []error{errs.ErrNotFound},
			notIs:  []error{errs.ErrServiceUnavailable, errs.ErrPriceMismatch},
		},
		{
			name:   "nil error returns mark",
			err:    nil,
			mark:   errs.ErrInvalidInput,
			wantIs: []error{errs.ErrInvalidInput},
		},
		{
			name:   "wrapping keeps the mark",
			err:    errs.Wrap(errs.Mark(errs.New("dial tcp"), errs.ErrServiceUnavailable), "get book"),
			mark:   errs.ErrProcessingFault,
			wantIs: []error{errs.ErrServiceUnavailable, errs.ErrProcessingFault},
			notIs:  []error{errs.ErrNotFound},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := errs.Mark(tc.err, tc.mark)
			for _, target := range tc.wantIs {
				assert.True(t, errs.Is(err, target), "expected %v to match %v", err, target)
			}
			for _, target := range tc.notIs {
				assert.False(t, errs.Is(err, target), "expected %v not to match %v", err, target)
			}
		})
	}
}

func TestWrap(t *testing.T) {
	assert.Nil(t, errs.Wrap(nil, "ignored"))
	assert.Nil(t, errs.Wrapf(nil, "ignored %d", 1))

	base := errors.New("boom")
	err := errs.Wrapf(base, "order %d", 42)
	assert.ErrorIs(t, err, base)
	assert.Contains(t, err.Error(), "order 42")
}

func TestExtractStackLines(t *testing.T) {
	assert.Nil(t, errs.ExtractStackLines(nil, 3))

	lines := errs.ExtractStackLines(errs.New("boom"), 2)
	assert.Len(t, lines, 2)
	assert.Equal(t, "boom", lines[0])
}
