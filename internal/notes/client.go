// Package notes is a thin client for the Roam-style note-graph HTTP API,
// used to push run summaries into a research notebook.
package notes

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"time"
)

const defaultBaseURL = "https://api.roamresearch.com"

var (
	// ErrInvalidToken indicates a rejected or under-privileged API token.
	ErrInvalidToken = errors.New("invalid token or insufficient privileges")

	// ErrGraphNotReady indicates the graph cannot serve requests yet and
	// the call should be retried shortly.
	ErrGraphNotReady = errors.New("graph not ready, retry in a few seconds")

	// ErrBadRedirect indicates a peer redirect without a usable location.
	ErrBadRedirect = errors.New("redirect response without usable location")
)

// StatusError is returned for API failures that carry a response body.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("api error (HTTP %d): %s", e.Code, e.Body)
}

var peerLocation = regexp.MustCompile(`https://(peer-\d+)[^:]*:(\d+)`)

// Client talks to one note graph. The API redirects requests to a
// per-graph peer host; the client caches the peer URL after the first
// redirect so subsequent calls go direct.
type Client struct {
	token   string
	graph   string
	httpc   *http.Client
	baseURL string
}

type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client, mainly for tests.
func WithHTTPClient(httpc *http.Client) Option {
	return func(c *Client) { c.httpc = httpc }
}

// WithBaseURL overrides the API endpoint, mainly for tests.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = url }
}

func NewClient(token, graph string, opts ...Option) *Client {
	c := &Client{
		token:   token,
		graph:   graph,
		baseURL: defaultBaseURL,
		httpc: &http.Client{
			Timeout: 30 * time.Second,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	// Redirects are handled by call, not followed blindly.
	if c.httpc.CheckRedirect == nil {
		c.httpc.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}
	return c
}

func (c *Client) call(ctx context.Context, path string, body any) ([]byte, error) {
	return c.callOnce(ctx, path, body, true)
}

func (c *Client) callOnce(ctx context.Context, path string, body any, followPeer bool) ([]byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("x-authorization", "Bearer "+c.token)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 && resp.StatusCode < 400 {
		if !followPeer {
			return nil, ErrBadRedirect
		}
		location := resp.Header.Get("Location")
		m := peerLocation.FindStringSubmatch(location)
		if m == nil {
			return nil, fmt.Errorf("%w: %q", ErrBadRedirect, location)
		}
		c.baseURL = "https://" + m[1] + ".api.roamresearch.com:" + m[2]
		return c.callOnce(ctx, path, body, false)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, statusError(resp.StatusCode, data)
	}
	return data, nil
}

func statusError(code int, body []byte) error {
	switch code {
	case http.StatusUnauthorized:
		return ErrInvalidToken
	case http.StatusServiceUnavailable:
		return ErrGraphNotReady
	default:
		return &StatusError{Code: code, Body: string(body)}
	}
}

type resultEnvelope struct {
	Result json.RawMessage `json:"result"`
}

func (c *Client) result(ctx context.Context, path string, body any) (json.RawMessage, error) {
	data, err := c.call(ctx, path, body)
	if err != nil {
		return nil, err
	}
	var env resultEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("malformed api response: %w", err)
	}
	return env.Result, nil
}

// Query runs a datalog query against the graph.
func (c *Client) Query(ctx context.Context, query string, args ...string) (json.RawMessage, error) {
	body := map[string]any{"query": query}
	if len(args) > 0 {
		body["args"] = args
	}
	return c.result(ctx, "/api/graph/"+c.graph+"/q", body)
}

// Pull fetches one entity by eid using the given selector pattern.
func (c *Client) Pull(ctx context.Context, selector, eid string) (json.RawMessage, error) {
	body := map[string]any{"eid": eid, "selector": selector}
	return c.result(ctx, "/api/graph/"+c.graph+"/pull", body)
}

// PullMany fetches multiple entities at once.
func (c *Client) PullMany(ctx context.Context, selector string, eids []string) (json.RawMessage, error) {
	body := map[string]any{"eids": eids, "selector": selector}
	return c.result(ctx, "/api/graph/"+c.graph+"/pull-many", body)
}
