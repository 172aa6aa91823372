// Package api talks to the rewards backend and the static asset host.
// Every backend failure (transport error, timeout, non-2xx, bad JSON)
// collapses to nil at this boundary; callers treat nil as "skip this
// update" and never crash on it.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

var httpClient = &http.Client{}

type Client struct {
	backendURL string
	assetURL   string
	userAgent  string
	timeout    time.Duration
	token      string

	// OnFailure runs after any failed backend request. The app points
	// this at the loading-spinner hide path so a dead backend never
	// leaves the spinner stuck.
	OnFailure func()
}

func NewClient(backendURL, assetURL, userAgent string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		backendURL: strings.TrimRight(backendURL, "/"),
		assetURL:   strings.TrimRight(assetURL, "/"),
		userAgent:  userAgent,
		timeout:    timeout,
	}
}

// SetToken installs the session token extracted by the platform bridge.
// Empty in degraded mode; every request short-circuits until set.
func (c *Client) SetToken(token string) { c.token = token }

func (c *Client) Token() string { return c.token }

func (c *Client) fail(endpoint string, err error) json.RawMessage {
	log.Printf("api: %s: %v", endpoint, err)
	if c.OnFailure != nil {
		c.OnFailure()
	}
	return nil
}

// Fetch issues an authenticated request and returns the response body,
// or nil on any failure. Requests without a session token never reach
// the network.
func (c *Client) Fetch(ctx context.Context, endpoint, method string, body any) json.RawMessage {
	if c.token == "" {
		log.Printf("api: no session token for %s, skipping request", endpoint)
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return c.fail(endpoint, err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.backendURL+endpoint, reader)
	if err != nil {
		return c.fail(endpoint, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "tma "+c.token)

	resp, err := httpClient.Do(req)
	if err != nil {
		return c.fail(endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return c.fail(endpoint, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(text))))
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return c.fail(endpoint, err)
	}
	if !json.Valid(raw) {
		return c.fail(endpoint, fmt.Errorf("malformed response body"))
	}
	return json.RawMessage(raw)
}

// FetchAsset gets a static JSON asset from the content host with a
// timestamp cache-buster. Unauthenticated. Returns nil on failure.
func (c *Client) FetchAsset(ctx context.Context, path string) []byte {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	url := fmt.Sprintf("%s%s?v=%d", c.assetURL, path, time.Now().UnixMilli())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		log.Printf("asset: %s: %v", path, err)
		return nil
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := httpClient.Do(req)
	if err != nil {
		log.Printf("asset: %s: %v", path, err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		log.Printf("asset: %s: status %d", path, resp.StatusCode)
		return nil
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil || !json.Valid(raw) {
		log.Printf("asset: %s: bad body", path)
		return nil
	}
	return raw
}

func decode[T any](raw json.RawMessage) *T {
	if raw == nil {
		return nil
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		log.Printf("api: decode: %v", err)
		return nil
	}
	return &out
}
