// Package paymentclient submits payment requests to the payment service.
package paymentclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"bookstore-choreography/internal/pkg/config"
	"bookstore-choreography/internal/pkg/errs"
	"bookstore-choreography/internal/pkg/retry"
	"bookstore-choreography/internal/usecase/shared"
)

const HeaderIdempotencyKey = "Idempotency-Key"

var ErrRejected = errs.New("payment rejected")

type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(cfg config.PaymentConfig) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: cfg.Timeout},
	}
}

var _ shared.PaymentGateway = (*Client)(nil)

// Submit makes one attempt. 4xx answers are permanent; transport errors and 5xx are not.
func (c *Client) Submit(ctx context.Context, idempotencyKey string, pr shared.PaymentRequest) error {
	body, err := json.Marshal(pr)
	if err != nil {
		return retry.Permanent(errs.Wrap(err, "encode payment request"))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/payments", bytes.NewReader(body))
	if err != nil {
		return retry.Permanent(errs.Wrap(err, "build payment request"))
	}
	req.Header.Set("Content-Type", "application/json")
	if idempotencyKey != "" {
		req.Header.Set(HeaderIdempotencyKey, idempotencyKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errs.Mark(errs.Wrap(err, "payment request"), errs.ErrServiceUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusAccepted || resp.StatusCode == http.StatusOK {
		return nil
	}

	msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	err = errs.Newf("payment service returned %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	if resp.StatusCode >= http.StatusBadRequest && resp.StatusCode < http.StatusInternalServerError {
		return retry.Permanent(errs.Mark(err, ErrRejected))
	}
	return errs.Mark(err, errs.ErrServiceUnavailable)
}
