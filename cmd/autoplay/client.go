package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/wricardo/rollblock/game/engine"
	"github.com/wricardo/rollblock/game/generator"
	"github.com/wricardo/rollblock/game/service"
)

// Client plays one session through the REST API.
type Client struct {
	baseURL   string
	sessionID string
	client    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SessionID returns the session the client is playing.
func (c *Client) SessionID() string {
	return c.sessionID
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		return fmt.Errorf("%s %s failed: %s - %s", method, path, resp.Status, bytes.TrimSpace(data))
	}
	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("parse %s response: %w", path, err)
		}
	}
	return nil
}

// CreateSession starts a session on a preset, or on a generated level when
// opts is non-nil.
func (c *Client) CreateSession(ctx context.Context, configName string, opts *generator.Options) (*engine.GameState, error) {
	body := map[string]interface{}{}
	if opts != nil {
		body["generate"] = opts
	} else if configName != "" {
		body["config_id"] = configName
	}

	var session service.SessionInfo
	if err := c.do(ctx, http.MethodPost, "/api/sessions", body, &session); err != nil {
		return nil, err
	}

	c.sessionID = session.ID
	return session.GameState, nil
}

// Resume attaches the client to an existing session.
func (c *Client) Resume(ctx context.Context, sessionID string) (*engine.GameState, error) {
	c.sessionID = sessionID
	return c.GetState(ctx)
}

func (c *Client) GetState(ctx context.Context) (*engine.GameState, error) {
	var state engine.GameState
	if err := c.do(ctx, http.MethodGet, "/api/sessions/"+c.sessionID+"/state", nil, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (c *Client) Move(ctx context.Context, direction string) (*service.MoveResult, error) {
	var result service.MoveResult
	body := map[string]interface{}{"direction": direction}
	if err := c.do(ctx, http.MethodPost, "/api/sessions/"+c.sessionID+"/move", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) BulkMove(ctx context.Context, directions []string) (*service.BulkMoveResult, error) {
	var result service.BulkMoveResult
	body := map[string]interface{}{"moves": directions}
	if err := c.do(ctx, http.MethodPost, "/api/sessions/"+c.sessionID+"/bulk-move", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) Reset(ctx context.Context) (*engine.GameState, error) {
	var resp struct {
		Message string            `json:"message"`
		State   *engine.GameState `json:"state"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/sessions/"+c.sessionID+"/reset", nil, &resp); err != nil {
		return nil, err
	}
	return resp.State, nil
}

func (c *Client) Hint(ctx context.Context) (*service.HintResult, error) {
	var hint service.HintResult
	if err := c.do(ctx, http.MethodGet, "/api/sessions/"+c.sessionID+"/hint", nil, &hint); err != nil {
		return nil, err
	}
	return &hint, nil
}
