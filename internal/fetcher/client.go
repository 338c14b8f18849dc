package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"LeagueSync/internal/config"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"
)

// Client fetches upstream pages through a shared Limiter, retrying transient failures
// with capped exponential backoff.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	limiter    *Limiter
	userAgent  string
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
	logger     *logrus.Logger
}

// NewClient builds a Client from scraper config. The limiter is created here so every
// request issued through this Client shares one budget.
func NewClient(cfg *config.ScraperConfig, httpClient *http.Client, logger *logrus.Logger) (*Client, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	maxRetries := cfg.MaxRetries
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &Client{
		baseURL:    base,
		httpClient: httpClient,
		limiter:    NewLimiter(cfg.MaxConcurrent, cfg.MinInterval()),
		userAgent:  cfg.UserAgent,
		maxRetries: maxRetries,
		baseDelay:  cfg.RetryBaseDelay,
		maxDelay:   cfg.RetryMaxDelay,
		logger:     logger,
	}, nil
}

// FetchWithParams encodes params as a query string on endpoint and fetches it.
func (c *Client) FetchWithParams(ctx context.Context, endpoint string, params map[string]string) (string, error) {
	values := url.Values{}
	for k, v := range params {
		values.Set(k, v)
	}
	if len(values) == 0 {
		return c.Fetch(ctx, endpoint)
	}
	return c.Fetch(ctx, endpoint+"?"+values.Encode())
}

// Fetch returns the body of rawURL, resolved against the base URL when relative.
// Failures are returned as *FetchError.
func (c *Client) Fetch(ctx context.Context, rawURL string) (string, error) {
	ref, err := url.Parse(rawURL)
	if err != nil {
		return "", &FetchError{URL: rawURL, Err: err}
	}
	target := c.baseURL.ResolveReference(ref).String()

	var (
		body     string
		attempts int
		lastCode int
	)
	err = c.limiter.Schedule(ctx, func(ctx context.Context) error {
		op := func() error {
			attempts++
			text, code, err := c.do(ctx, target)
			lastCode = code
			if err != nil {
				var se *statusError
				if errors.As(err, &se) && !IsRetryable(se.code) {
					return backoff.Permanent(err)
				}
				return err
			}
			body = text
			return nil
		}
		notify := func(err error, wait time.Duration) {
			c.logger.WithError(err).WithFields(logrus.Fields{
				"url":     target,
				"attempt": attempts,
				"wait":    wait.String(),
			}).Warn("fetch failed, retrying")
		}
		return backoff.RetryNotify(op, c.newBackOff(ctx), notify)
	})
	if err != nil {
		return "", &FetchError{URL: target, StatusCode: lastCode, Attempts: attempts, Err: err}
	}

	c.logger.WithFields(logrus.Fields{"url": target, "attempts": attempts, "bytes": len(body)}).Debug("fetched page")
	return body, nil
}

// newBackOff yields min(base*2^(n-1), cap) before retry n, for at most maxRetries attempts.
func (c *Client) newBackOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.baseDelay
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxInterval = c.maxDelay
	b.MaxElapsedTime = 0
	b.Reset()
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(c.maxRetries-1)), ctx)
}

func (c *Client) do(ctx context.Context, target string) (string, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", 0, backoff.Permanent(err)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return "", resp.StatusCode, &statusError{code: resp.StatusCode}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", resp.StatusCode, fmt.Errorf("read body: %w", err)
	}
	return string(data), resp.StatusCode, nil
}
