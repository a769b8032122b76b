// Package fakestore implements the upstream client for the Fake Store API.
// A single GET per domain returns the full current collection as a JSON
// array; there is no pagination. Any transport, status, or parse problem
// is reported as a FETCH error and no records are returned.
package fakestore

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/storelake/fakestore-etl/internal/etlerror"
	"github.com/storelake/fakestore-etl/internal/ingest"
)

const (
	defaultBaseURL = "https://fakestoreapi.com"
	defaultTimeout = 10 * time.Second
)

// Client fetches domain collections over HTTP.
type Client struct {
	baseURL string
	client  *http.Client
	timeout time.Duration
}

// New creates a Client with the given options applied.
func New(opts ...Option) *Client {
	c := &Client{
		baseURL: defaultBaseURL,
		client:  &http.Client{},
		timeout: defaultTimeout,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithClient sets the HTTP client.
func WithClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

// WithTimeout bounds each collection request.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// Fetch retrieves the full current collection for the domain.
func (c *Client) Fetch(ctx context.Context, d ingest.Domain) ([]json.RawMessage, error) {
	url := c.baseURL + d.Endpoint()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, etlerror.Wrap(etlerror.KindFetch, "build request", err)
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.client.Do(req)
	if err != nil {
		return nil, etlerror.Wrap(etlerror.KindFetch, fmt.Sprintf("get %s", url), err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		return nil, etlerror.New(etlerror.KindFetch,
			fmt.Sprintf("%s returned HTTP %d", url, res.StatusCode))
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, etlerror.Wrap(etlerror.KindFetch, "read response", err)
	}

	var records []json.RawMessage
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, etlerror.Wrap(etlerror.KindFetch, "parse response", err)
	}

	slog.Info("fetched collection", "domain", d, "records", len(records))
	return records, nil
}
