package products

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/goccy/go-json"
	"golang.org/x/time/rate"
)

const apiKeyHeader = "x-api-key"

// StatusError is a non-2xx answer from the catalog API.
type StatusError struct {
	Status int
	Path   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("catalog %s: unexpected status %d", e.Path, e.Status)
}

type ClientConfig struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	MaxRetries uint
	// RatePerSec caps outgoing requests; zero disables pacing.
	RatePerSec float64
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client talks to the remote product API.
type Client struct {
	base       *url.URL
	apiKey     string
	timeout    time.Duration
	maxRetries uint
	limiter    *rate.Limiter
	http       *http.Client
	log        *slog.Logger
}

func NewClient(cfg ClientConfig) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("catalog base url %q is invalid", cfg.BaseURL)
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	l := cfg.Logger
	if l == nil {
		l = slog.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	c := &Client{
		base:       base,
		apiKey:     cfg.APIKey,
		timeout:    timeout,
		maxRetries: cfg.MaxRetries,
		http:       hc,
		log:        l,
	}
	if cfg.RatePerSec > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSec), 1)
	}
	return c, nil
}

func (c *Client) List(ctx context.Context, q Query) (ListResult, error) {
	params := url.Values{}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Offset > 0 {
		params.Set("offset", strconv.Itoa(q.Offset))
	}
	if s := strings.TrimSpace(q.Search); s != "" {
		params.Set("search", s)
	}

	var items []Product
	if err := c.getJSON(ctx, "/products", params, &items); err != nil {
		return ListResult{}, err
	}
	if items == nil {
		items = []Product{}
	}
	return ListResult{Data: items, Total: len(items)}, nil
}

func (c *Client) Get(ctx context.Context, id string) (Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Product{}, ErrNotFound
	}
	var p Product
	if err := c.getJSON(ctx, "/products/"+url.PathEscape(id), nil, &p); err != nil {
		return Product{}, err
	}
	return p, nil
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, dst any) error {
	u := *c.base
	u.Path = c.base.Path + path
	u.RawQuery = params.Encode()
	target := u.String()

	op := func() (struct{}, error) {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return struct{}{}, backoff.Permanent(err)
			}
		}
		return struct{}{}, c.do(ctx, target, path, dst)
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 100 * time.Millisecond
	b.MaxInterval = time.Second

	start := time.Now()
	_, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(b),
		backoff.WithMaxTries(c.maxRetries+1),
	)
	if err != nil {
		c.log.LogAttrs(ctx, slog.LevelWarn, "catalog_request_failed",
			slog.String("path", path),
			slog.Duration("elapsed", time.Since(start)),
			slog.Any("err", err),
		)
		return err
	}
	return nil
}

func (c *Client) do(ctx context.Context, target, path string, dst any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return backoff.Permanent(err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set(apiKeyHeader, c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		_, _ = io.Copy(io.Discard, resp.Body)
		return backoff.Permanent(ErrNotFound)
	case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
		_, _ = io.Copy(io.Discard, resp.Body)
		return &StatusError{Status: resp.StatusCode, Path: path}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		_, _ = io.Copy(io.Discard, resp.Body)
		return backoff.Permanent(&StatusError{Status: resp.StatusCode, Path: path})
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return backoff.Permanent(fmt.Errorf("decode catalog %s: %w", path, err))
	}
	return nil
}

// IsNotFound reports whether err means the product does not exist.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
