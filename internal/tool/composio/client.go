// Package composio exposes third-party app actions through the Composio HTTP API.
package composio

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	headerAPIKey      = "x-api-key"
	headerContentType = "Content-Type"
	contentType       = "application/json"
	maxResponseBytes  = 1 << 20
	defaultTimeout    = 60 * time.Second
)

var ErrMissingAPIKey = errors.New("composio api key is not configured")

// APIError is a non-2xx response from the Composio API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("composio: http status %d", e.StatusCode)
	}
	return fmt.Sprintf("composio: http status %d: %s", e.StatusCode, e.Message)
}

// Action describes one executable app action.
type Action struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName,omitempty"`
	Description string `json:"description"`
	AppName     string `json:"appName"`
}

// ExecuteResult is the response to an action execution.
type ExecuteResult struct {
	Data       json.RawMessage `json:"data"`
	Successful bool            `json:"successful"`
	Error      string          `json:"error,omitempty"`
}

// Connection is a pending or active OAuth connection for an app.
type Connection struct {
	ID          string `json:"connectedAccountId"`
	Status      string `json:"connectionStatus"`
	RedirectURL string `json:"redirectUrl"`
}

// Client is a minimal Composio REST client.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewClient(baseURL, apiKey string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    httpClient,
	}
}

// ListActions returns the actions available for app, or for all apps when app is empty.
func (c *Client) ListActions(ctx context.Context, app string, limit int) ([]Action, error) {
	q := url.Values{}
	if app != "" {
		q.Set("apps", app)
	}
	if limit > 0 {
		q.Set("limit", fmt.Sprint(limit))
	}
	var out struct {
		Items []Action `json:"items"`
	}
	if err := c.do(ctx, http.MethodGet, "/actions?"+q.Encode(), nil, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

// Execute runs action on behalf of entityID.
func (c *Client) Execute(ctx context.Context, action, entityID string, params map[string]any) (*ExecuteResult, error) {
	if params == nil {
		params = map[string]any{}
	}
	body := map[string]any{"entityId": entityID, "input": params}
	var out ExecuteResult
	if err := c.do(ctx, http.MethodPost, "/actions/"+url.PathEscape(action)+"/execute", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Connect starts an OAuth connection of app for entityID.
func (c *Client) Connect(ctx context.Context, app, entityID string) (*Connection, error) {
	body := map[string]any{"entityId": entityID, "appName": app}
	var out Connection
	if err := c.do(ctx, http.MethodPost, "/connectedAccounts", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	if c.apiKey == "" {
		return ErrMissingAPIKey
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set(headerAPIKey, c.apiKey)
	if in != nil {
		req.Header.Set(headerContentType, contentType)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errBody struct {
			Message string `json:"message"`
			Error   string `json:"error"`
		}
		_ = json.Unmarshal(data, &errBody)
		msg := errBody.Message
		if msg == "" {
			msg = errBody.Error
		}
		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
