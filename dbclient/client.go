// Package dbclient is a typed HTTP client for the CouchDB-compatible
// document store subset the schematic mirror depends on: ranged
// _all_docs queries, one-shot and continuous _changes polling filtered
// by a selector, and document PUT.
package dbclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/sony/gobreaker"

	"github.com/NyanCAD/Pyttoresque/telemetry"
)

// Config holds the tunables an embedding application supplies when
// constructing a Client. No part of this is parsed from argv, env, or a
// config file here — that plumbing belongs to the embedding application.
type Config struct {
	// BaseURL points at one database, e.g. "http://localhost:5984/offline".
	BaseURL string
	// RequestTimeout bounds one_shot requests (list_by_range,
	// changes_since, put_doc). Zero means no timeout beyond ctx.
	RequestTimeout time.Duration
	// HeartbeatDeadline is the longest gap between change-feed
	// heartbeats before a stream is treated as a transport failure.
	HeartbeatDeadline time.Duration
	// BreakerTimeout is how long the gobreaker guarding changes-stream
	// reconnect attempts stays open before allowing a trial request; zero
	// means 30s. The breaker opens after 3 consecutive failures.
	BreakerTimeout time.Duration
	Logger         *telemetry.Logger
}

// Client is a typed handle on one database.
type Client struct {
	baseURL           string
	http              *http.Client
	breaker           *gobreaker.CircuitBreaker
	heartbeatDeadline time.Duration
	logger            *telemetry.Logger
}

// New constructs a Client. The underlying *http.Client reuses
// go-cleanhttp's pooled transport instead of http.DefaultTransport,
// matching the way internal document-store clients in this pack are
// built.
func New(cfg Config) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = telemetry.Default("dbclient")
	}
	heartbeat := cfg.HeartbeatDeadline
	if heartbeat == 0 {
		heartbeat = 30 * time.Second
	}
	breakerTimeout := cfg.BreakerTimeout
	if breakerTimeout == 0 {
		breakerTimeout = 30 * time.Second
	}

	httpClient := &http.Client{
		Transport: cleanhttp.DefaultPooledTransport(),
		Timeout:   cfg.RequestTimeout,
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "dbclient.changes_stream",
		Timeout: breakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	})

	return &Client{
		baseURL:           strings.TrimSuffix(cfg.BaseURL, "/") + "/",
		http:              httpClient,
		breaker:           breaker,
		heartbeatDeadline: heartbeat,
		logger:            logger,
	}
}

func (c *Client) resolve(path string) string {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return c.baseURL + path
	}
	ref, err := url.Parse(path)
	if err != nil {
		return c.baseURL + path
	}
	return u.ResolveReference(ref).String()
}

// do issues a request and returns the decoded-body reader, decompressing
// a Brotli-encoded response body transparently. Callers must Close the
// returned body.
func (c *Client) do(req *http.Request) (*http.Response, io.ReadCloser, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, nil, telemetry.Transport(err, "request to %s failed", req.URL)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, nil, telemetry.Status(resp.StatusCode, string(body))
	}
	body := decodeBody(resp)
	return resp, body, nil
}

func (c *Client) jsonGet(ctx context.Context, path string, query url.Values, out interface{}) error {
	u := c.resolve(path)
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return telemetry.Transport(err, "build GET %s", path)
	}
	_, body, err := c.do(req)
	if err != nil {
		return err
	}
	defer body.Close()
	if err := json.NewDecoder(body).Decode(out); err != nil {
		return fmt.Errorf("decode response from %s: %w", path, err)
	}
	return nil
}

func (c *Client) jsonPost(ctx context.Context, path string, query url.Values, payload, out interface{}) error {
	buf, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode request body for %s: %w", path, err)
	}
	u := c.resolve(path)
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, strings.NewReader(string(buf)))
	if err != nil {
		return telemetry.Transport(err, "build POST %s", path)
	}
	req.Header.Set("Content-Type", "application/json")
	_, body, err := c.do(req)
	if err != nil {
		return err
	}
	defer body.Close()
	if out == nil {
		io.Copy(io.Discard, body)
		return nil
	}
	if err := json.NewDecoder(body).Decode(out); err != nil {
		return fmt.Errorf("decode response from %s: %w", path, err)
	}
	return nil
}

// PutDoc writes a document and returns its new revision token.
func (c *Client) PutDoc(ctx context.Context, id string, body []byte) (string, error) {
	u := c.resolve(id)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, u, strings.NewReader(string(body)))
	if err != nil {
		return "", telemetry.Transport(err, "build PUT %s", id)
	}
	req.Header.Set("Content-Type", "application/json")
	_, respBody, err := c.do(req)
	if err != nil {
		return "", err
	}
	defer respBody.Close()

	var out struct {
		Rev string `json:"rev"`
	}
	if err := json.NewDecoder(respBody).Decode(&out); err != nil {
		return "", fmt.Errorf("decode PUT response for %s: %w", id, err)
	}
	return out.Rev, nil
}
