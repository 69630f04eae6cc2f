// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Bookclub Contributors

// Package volumes proxies the Google Books volumes API. Responses are
// passed through verbatim so clients talk to one origin only.
package volumes

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/samber/oops"
)

// Error codes attached to failures from this package.
const (
	// CodeInvalidInput marks a request rejected before reaching the
	// upstream API.
	CodeInvalidInput = "VOLUMES_INVALID_INPUT"
	// CodeRequestFailed marks a request that could not be constructed.
	CodeRequestFailed = "VOLUMES_REQUEST_FAILED"
	// CodeUpstreamFailed marks a transport failure talking to the
	// upstream API.
	CodeUpstreamFailed = "VOLUMES_UPSTREAM_FAILED"
	// CodeReadFailed marks a failure reading the upstream response body.
	CodeReadFailed = "VOLUMES_READ_FAILED"
)

// DefaultBaseURL is the Google Books API root.
const DefaultBaseURL = "https://www.googleapis.com/books/v1"

// topTenQuery drives the NYT top-ten passthrough. Google Books exposes
// the list through a subject search capped at ten results.
const topTenQuery = "new york times bestseller"

// maxBodySize caps upstream response bodies at 4 MiB.
const maxBodySize = 4 << 20

// Result is a verbatim upstream response: raw JSON body plus the
// upstream HTTP status, which the API layer forwards unchanged.
type Result struct {
	Body   []byte
	Status int
}

// Client calls the Google Books volumes API.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a volumes client. baseURL defaults to
// DefaultBaseURL when empty; tests inject an httptest server URL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// Search performs a volume search for the given query string. An empty
// query is forwarded as-is; Google Books answers it with an error body
// that the caller passes through like any other response.
func (c *Client) Search(ctx context.Context, query string) (*Result, error) {
	u := c.baseURL + "/volumes"
	if query != "" {
		u += "?q=" + url.QueryEscape(query)
	}
	return c.get(ctx, "search", u)
}

// Get fetches a single volume by its Google Books volume ID.
func (c *Client) Get(ctx context.Context, volumeID string) (*Result, error) {
	if volumeID == "" {
		return nil, oops.Code(CodeInvalidInput).Errorf("Missing `volume_id` in request")
	}
	u := c.baseURL + "/volumes/" + url.PathEscape(volumeID)
	return c.get(ctx, "get", u)
}

// TopTen fetches the NYT top-ten passthrough list.
func (c *Client) TopTen(ctx context.Context) (*Result, error) {
	u := c.baseURL + "/volumes?q=" + url.QueryEscape(topTenQuery) + "&maxResults=" + strconv.Itoa(10)
	return c.get(ctx, "top_ten", u)
}

func (c *Client) get(ctx context.Context, operation, u string) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, oops.Code(CodeRequestFailed).
			With("operation", operation).
			With("url", u).
			Wrap(err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, oops.Code(CodeUpstreamFailed).
			With("operation", operation).
			Wrap(err)
	}
	defer resp.Body.Close() //nolint:errcheck // nothing to do with a close error here

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, oops.Code(CodeReadFailed).
			With("operation", operation).
			Wrap(err)
	}

	return &Result{Body: body, Status: resp.StatusCode}, nil
}
