//go:build unit

package catalog_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"bookstore-choreography/internal/handler/httperr"
	"bookstore-choreography/internal/infra/catalog"
	"bookstore-choreography/internal/pkg/config"
	"bookstore-choreography/internal/pkg/errs"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(url string) *catalog.Client {
	return catalog.NewClient(config.CatalogConfig{
		BaseURL:    url,
		Timeout:    time.Second,
		RetryLimit: 3,
		RetryBase:  time.Millisecond,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestGetBook(t *testing.T) {
	tests := []struct {
		name      string
		handler   func(calls int32) (int, string)
		wantCalls int32
		// 0 expects a book
		wantStatus int
		wantPrice  string
	}{
		{
			name: "found",
			handler: func(int32) (int, string) {
				return http.StatusOK, `{"id":1,"title":"Microservices in .NET","price":49.99}`
			},
			wantCalls: 1,
			wantPrice: "49.99",
		},
		{
			name:      "quoted price",
			handler:   func(int32) (int, string) { return http.StatusOK, `{"id":1,"title":"t","price":"12.50"}` },
			wantCalls: 1,
			wantPrice: "12.5",
		},
		{
			name:       "not found is not retried",
			handler:    func(int32) (int, string) { return http.StatusNotFound, `{"error":"not found"}` },
			wantCalls:  1,
			wantStatus: http.StatusNotFound,
		},
		{
			name: "recovers after transient 503",
			handler: func(n int32) (int, string) {
				if n < 3 {
					return http.StatusServiceUnavailable, ""
				}
				return http.StatusOK, `{"id":1,"title":"t","price":1}`
			},
			wantCalls: 3,
			wantPrice: "1",
		},
		{
			name:       "unavailable after retries",
			handler:    func(int32) (int, string) { return http.StatusInternalServerError, "" },
			wantCalls:  4,
			wantStatus: http.StatusServiceUnavailable,
		},
		{
			name:       "unexpected client error is not an outage",
			handler:    func(int32) (int, string) { return http.StatusBadRequest, "bad id" },
			wantCalls:  1,
			wantStatus: http.StatusInternalServerError,
		},
		{
			name:       "malformed body is not an outage",
			handler:    func(int32) (int, string) { return http.StatusOK, `{"id":1,"price":` },
			wantCalls:  1,
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var calls atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/books/1", r.URL.Path)
				status, body := tc.handler(calls.Add(1))
				w.WriteHeader(status)
				_, _ = w.Write([]byte(body))
			}))
			defer srv.Close()

			got, err := newClient(srv.URL).GetBook(context.Background(), 1)

			assert.Equal(t, tc.wantCalls, calls.Load())
			if tc.wantStatus != 0 {
				require.Error(t, err)
				status, _ := httperr.StatusOf(err)
				assert.Equal(t, tc.wantStatus, status, "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tc.wantPrice).Equal(got.Price), "price %s", got.Price)
		})
	}
}

func TestGetBookUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := newClient(url).GetBook(context.Background(), 1)

	assert.True(t, errs.Is(err, errs.ErrServiceUnavailable))
}
