// Package apiclient talks to the platform's REST backend on behalf of the
// admin console. It attaches the admin's bearer token, converts non-2xx
// answers into *APIError values carrying the server's message and decodes
// collection envelopes through package envelope.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Client is safe for concurrent use. WithToken returns a copy bound to one
// admin's access token; the underlying http.Client is shared.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// New builds a client for baseURL. A zero timeout leaves calls bounded only
// by the caller's context.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// NewWithHTTPClient is New with a caller supplied http.Client (tests).
func NewWithHTTPClient(baseURL string, hc *http.Client) *Client {
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: hc}
}

// WithToken returns a copy of c that authenticates as token.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = token
	return &cp
}

// Token returns the bearer token the client sends, if any.
func (c *Client) Token() string { return c.token }

// do sends one request and returns the response body of a 2xx answer.
// 204 and empty bodies come back as nil. fallback is the message used when
// the upstream error body has none.
func (c *Client) do(ctx context.Context, method, path string, in any, fallback string) ([]byte, error) {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return c.send(req, fallback)
}

func (c *Client) send(req *http.Request, fallback string) ([]byte, error) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v", ErrNetwork, req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrNetwork, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := messageFrom(data)
		if msg == "" {
			msg = fallback
		}
		return nil, &APIError{Status: resp.StatusCode, Message: msg}
	}
	if resp.StatusCode == http.StatusNoContent || len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	return data, nil
}
