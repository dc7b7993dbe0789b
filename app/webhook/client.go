package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const maxResponseSize = 10 << 20

type Client struct {
	httpClient *http.Client
	limiter    *HostRateLimiter
	userAgent  string
}

func NewClient(userAgent string, requestsPerSecond float64) *Client {
	return &Client{
		httpClient: &http.Client{},
		limiter:    NewHostRateLimiter(requestsPerSecond),
		userAgent:  userAgent,
	}
}

// Post triggers a workflow with params as its JSON body.
func (c *Client) Post(ctx context.Context, config *Config, params map[string]string) (*Response, error) {
	if params == nil {
		params = map[string]string{}
	}
	body, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("failed to encode params: %w", err)
	}

	return c.do(ctx, http.MethodPost, config.URL, bytes.NewReader(body), config.Headers, config.TimeoutDuration())
}

func (c *Client) Get(ctx context.Context, url string, timeout time.Duration) (*Response, error) {
	return c.do(ctx, http.MethodGet, url, nil, nil, timeout)
}

func (c *Client) do(ctx context.Context, method, url string, body io.Reader, headers map[string]string, timeout time.Duration) (*Response, error) {
	if err := c.limiter.WaitForHost(ctx, url); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for name, value := range headers {
		req.Header.Set(name, value)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call %s: %w", url, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("HTTP error: %s", resp.Status)
	}

	response := &Response{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        data,
		Duration:    time.Since(start),
	}

	slog.Debug("Webhook responded", "method", method, "url", url, "status", resp.StatusCode, "bytes", len(data), "duration", response.Duration)

	return response, nil
}
