// Package client is a typed HTTP client for a running bridge.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rbxbridge/rbxbridge/internal/wire"
)

// Client talks to the editor API of a bridge.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// New creates a client for baseURL. token may be empty when the bridge runs
// without an editor secret.
func New(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// APIError is a non-2xx response from the bridge.
type APIError struct {
	Status int
	Code   string
	Msg    string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("bridge returned %d (%s): %s", e.Status, e.Code, e.Msg)
	}
	return fmt.Sprintf("bridge returned %d: %s", e.Status, e.Msg)
}

// Execute queues code for the current target.
func (c *Client) Execute(ctx context.Context, code, file string) (wire.QueuedJob, error) {
	var resp wire.ExecuteResponse
	err := c.do(ctx, http.MethodPost, "/editor/execute", wire.ExecuteRequest{Code: code, File: file}, &resp)
	return resp.Job, err
}

// State returns the full bridge state.
func (c *Client) State(ctx context.Context) (wire.State, error) {
	var state wire.State
	err := c.do(ctx, http.MethodGet, "/editor/state", nil, &state)
	return state, err
}

// SetTargetPlace targets a place; nil clears the target.
func (c *Client) SetTargetPlace(ctx context.Context, placeID *int64) (wire.State, error) {
	var state wire.State
	err := c.do(ctx, http.MethodPost, "/editor/target/place", wire.TargetPlaceRequest{PlaceID: placeID}, &state)
	return state, err
}

// NextTargetPlace targets the next registered place.
func (c *Client) NextTargetPlace(ctx context.Context) (wire.State, error) {
	var state wire.State
	err := c.do(ctx, http.MethodPost, "/editor/target/place/next", nil, &state)
	return state, err
}

// SetTargetContext selects the context new jobs are queued for.
func (c *Client) SetTargetContext(ctx context.Context, name string) (wire.State, error) {
	var state wire.State
	err := c.do(ctx, http.MethodPost, "/editor/target/context", wire.TargetContextRequest{Context: name}, &state)
	return state, err
}

// NextTargetContext toggles between Server and Client.
func (c *Client) NextTargetContext(ctx context.Context) (wire.State, error) {
	var state wire.State
	err := c.do(ctx, http.MethodPost, "/editor/target/context/next", nil, &state)
	return state, err
}

// Events streams UI events until ctx is cancelled or the connection drops.
func (c *Client) Events(ctx context.Context, fn func(wire.Event)) error {
	u, err := url.Parse(c.baseURL + "/editor/events")
	if err != nil {
		return fmt.Errorf("parse url: %w", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	header := http.Header{}
	if c.token != "" {
		header.Set("Authorization", "Bearer "+c.token)
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), header)
	if err != nil {
		return fmt.Errorf("dial events: %w", err)
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	for {
		var ev wire.Event
		if err := conn.ReadJSON(&ev); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read event: %w", err)
		}
		fn(ev)
	}
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode, Msg: strings.TrimSpace(string(data))}
		var errResp wire.ErrorResponse
		if json.Unmarshal(data, &errResp) == nil && errResp.Error != "" {
			apiErr.Code = errResp.Code
			apiErr.Msg = errResp.Error
		}
		return apiErr
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
