// Package ghapi drains paginated alert listings from the GitHub REST API.
package ghapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// DefaultFetchTimeout bounds a single GET round trip.
const DefaultFetchTimeout = 20 * time.Second

const userAgent = "docsite"

// Response is the result of one GET. Status 0 with a nil Body means the
// request failed below HTTP (DNS, refused connection, unreadable or
// non-JSON body).
type Response struct {
	Status int
	Body   any
	Link   string
}

// Fetcher performs exactly one GET request.
type Fetcher interface {
	Get(ctx context.Context, url string, header http.Header) Response
}

// Client is the net/http backed Fetcher.
type Client struct {
	httpClient *http.Client
	logger     zerolog.Logger
}

var _ Fetcher = (*Client)(nil)

// NewClient creates a client whose requests time out after timeout.
// A zero timeout uses DefaultFetchTimeout.
func NewClient(timeout time.Duration, logger zerolog.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Get issues the request. Non-2xx statuses are reported numerically and
// never as an error; the caller decides what to do with them.
func (c *Client) Get(ctx context.Context, url string, header http.Header) Response {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		c.logger.Debug().Err(err).Str("url", url).Msg("build request")
		return Response{}
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug().Err(err).Str("url", url).Msg("request failed")
		return Response{}
	}
	defer func() { _ = resp.Body.Close() }()

	c.logger.Debug().Str("url", url).Int("status", resp.StatusCode).Msg("fetched")

	if resp.StatusCode >= http.StatusBadRequest {
		_, _ = io.Copy(io.Discard, resp.Body)
		return Response{Status: resp.StatusCode}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Debug().Err(err).Str("url", url).Msg("read body")
		return Response{}
	}

	body, err := decodeJSON(data)
	if err != nil {
		c.logger.Debug().Err(err).Str("url", url).Msg("decode body")
		return Response{}
	}

	return Response{
		Status: resp.StatusCode,
		Body:   body,
		Link:   resp.Header.Get("Link"),
	}
}

// decodeJSON decodes into a generic tree, keeping numbers as json.Number.
func decodeJSON(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}
