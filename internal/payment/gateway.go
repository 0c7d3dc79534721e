// Package payment talks to the externally hosted payment-session endpoint.
// The gateway collects the actual payment out-of-process; all this client
// does is exchange an amount for an opaque client secret.
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Gateway creates a payment session for an amount in minor currency units.
type Gateway interface {
	CreateSession(ctx context.Context, amountMinor int64, idempotencyKey string) (string, error)
}

// SessionError is a rejected session request (non-2xx with an error payload).
type SessionError struct {
	StatusCode int
	Reason     string
}

func (e *SessionError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("payment session refused: %s", e.Reason)
	}
	return fmt.Sprintf("payment gateway responded with status %d", e.StatusCode)
}

type sessionRequest struct {
	Amount int64 `json:"amount"`
}

type sessionResponse struct {
	ClientSecret string `json:"clientSecret"`
	Error        string `json:"error"`
}

type Client struct {
	url  string
	http *http.Client
	cb   *gobreaker.CircuitBreaker[string]
}

func NewClient(url string) *Client {
	return &Client{
		url: url,
		http: &http.Client{
			Timeout:   30 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		cb: gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
			Name:        "payment-gateway",
			MaxRequests: 1,
			Timeout:     30 * time.Second,
		}),
	}
}

func (c *Client) CreateSession(ctx context.Context, amountMinor int64, idempotencyKey string) (string, error) {
	return c.cb.Execute(func() (string, error) {
		return c.createSession(ctx, amountMinor, idempotencyKey)
	})
}

func (c *Client) createSession(ctx context.Context, amountMinor int64, idempotencyKey string) (string, error) {
	body, err := json.Marshal(sessionRequest{Amount: amountMinor})
	if err != nil {
		return "", fmt.Errorf("failed to encode session request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build session request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if idempotencyKey != "" {
		req.Header.Set("X-Idempotency-Key", idempotencyKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("payment session request failed: %w", err)
	}
	defer resp.Body.Close()

	var payload sessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("failed to decode session response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &SessionError{StatusCode: resp.StatusCode, Reason: payload.Error}
	}
	if payload.ClientSecret == "" {
		return "", &SessionError{StatusCode: resp.StatusCode, Reason: "missing client secret"}
	}

	return payload.ClientSecret, nil
}
