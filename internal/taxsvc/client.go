package taxsvc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Client delegates tax calculation to an external HTTP service.
// Network errors and 5xx responses are retried with doubling backoff;
// exhausting the retries surfaces an ExternalServiceError. 4xx
// responses are never retried. The service owns federal and state tax
// only; the IRMAA tiers are applied locally on top of its answer.
type Client struct {
	baseURL    string
	httpClient *http.Client
	maxRetries int
	backoff    time.Duration
}

// ClientOption configures the tax service client.
type ClientOption func(*Client)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithRetries sets the retry budget for transient failures and the
// initial backoff, which doubles per attempt.
func WithRetries(n int, backoff time.Duration) ClientOption {
	return func(c *Client) {
		if n >= 0 {
			c.maxRetries = n
		}
		if backoff > 0 {
			c.backoff = backoff
		}
	}
}

// NewClient constructs a client for the service at baseURL.
func NewClient(baseURL string, opts ...ClientOption) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("tax client: empty base url")
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		maxRetries: 3,
		backoff:    500 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Calculate computes one household-year through the remote service.
func (c *Client) Calculate(ctx context.Context, req Request) (Response, error) {
	var resp Response
	if err := c.post(ctx, "/calculate", req, &resp); err != nil {
		return Response{}, err
	}
	resp.IRMAA = irmaaSurcharge(req)
	return resp, nil
}

// CalculateBatch sends the whole slice in one round trip.
func (c *Client) CalculateBatch(ctx context.Context, reqs []Request) ([]Response, error) {
	var resps []Response
	if err := c.post(ctx, "/calculate-batch", reqs, &resps); err != nil {
		return nil, err
	}
	if len(resps) != len(reqs) {
		return nil, &ExternalServiceError{
			Service: "tax",
			Err:     fmt.Errorf("batch size mismatch: sent %d, got %d", len(reqs), len(resps)),
		}
	}
	for i := range resps {
		resps[i].IRMAA = irmaaSurcharge(reqs[i])
	}
	return resps, nil
}

func (c *Client) post(ctx context.Context, path string, payload, into any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			wait := c.backoff << (attempt - 1)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = err
			continue
		}

		switch {
		case resp.StatusCode >= 500:
			resp.Body.Close()
			lastErr = fmt.Errorf("status %d", resp.StatusCode)
			continue
		case resp.StatusCode >= 300:
			resp.Body.Close()
			return &ExternalServiceError{Service: "tax", Err: fmt.Errorf("status %d", resp.StatusCode)}
		}

		err = json.NewDecoder(resp.Body).Decode(into)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return &ExternalServiceError{Service: "tax", Err: lastErr}
}
