// Package catalog is the HTTP client the order and payment services use to
// look up books in the catalog service.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"bookstore-choreography/internal/pkg/config"
	"bookstore-choreography/internal/pkg/errs"
	"bookstore-choreography/internal/pkg/retry"
	"bookstore-choreography/internal/usecase/shared"
)

var (
	ErrBookNotFound       = errs.Mark(errs.New("book not found in catalog"), errs.ErrNotFound)
	ErrCatalogUnavailable = errs.Mark(errs.New("catalog unavailable"), errs.ErrServiceUnavailable)
)

type Client struct {
	baseURL string
	http    *http.Client
	policy  retry.Policy
	logger  *slog.Logger
}

func NewClient(cfg config.CatalogConfig, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: cfg.Timeout},
		policy:  retry.Exponential(cfg.RetryLimit, cfg.RetryBase),
		logger:  logger.With("component", "catalog-client"),
	}
}

var _ shared.CatalogClient = (*Client)(nil)

// GetBook retries transport failures and 5xx responses. Any other answer the
// catalog gives is returned at once: 404 as ErrBookNotFound, the rest unmarked.
func (c *Client) GetBook(ctx context.Context, id int64) (*shared.BookSnapshot, error) {
	var snap *shared.BookSnapshot
	var rejected bool
	err := retry.Do(ctx, c.policy, func(ctx context.Context) error {
		var err error
		snap, err = c.fetch(ctx, id)
		rejected = retry.IsPermanent(err)
		return err
	}, func(err error, wait time.Duration) {
		c.logger.Warn("catalog lookup failed, retrying", "book_id", id, "wait", wait, "error", err.Error())
	})
	if err == nil {
		return snap, nil
	}
	if rejected {
		if !errs.Is(err, errs.ErrNotFound) {
			c.logger.Error("unexpected catalog response", "book_id", id, "error", err.Error())
		}
		return nil, err
	}
	c.logger.Error("catalog unreachable", "book_id", id, "error", err.Error())
	return nil, errs.Wrapf(ErrCatalogUnavailable, "book %d: %v", id, err)
}

func (c *Client) fetch(ctx context.Context, id int64) (*shared.BookSnapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/books/%d", c.baseURL, id), nil)
	if err != nil {
		return nil, retry.Permanent(errs.Wrap(err, "build catalog request"))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errs.Wrap(err, "catalog request")
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		var snap shared.BookSnapshot
		if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
			return nil, retry.Permanent(errs.Wrap(err, "decode catalog response"))
		}
		return &snap, nil
	case resp.StatusCode == http.StatusNotFound:
		return nil, retry.Permanent(errs.Wrapf(ErrBookNotFound, "book %d", id))
	case resp.StatusCode >= http.StatusInternalServerError:
		return nil, errs.Newf("catalog returned %d", resp.StatusCode)
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, retry.Permanent(errs.Newf("catalog returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body))))
	}
}
