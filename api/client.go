// Package api implements the REST client for the todo backend. Each
// operation issues a single authenticated request and surfaces exactly
// one error from the taxonomy in errors.go; there is no retry logic.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/c360studio/taskdeck/session"
	"github.com/c360studio/taskdeck/task"
)

// maxResponseSize limits response bodies to prevent memory exhaustion.
const maxResponseSize = 4 * 1024 * 1024 // 4MB

// DefaultTimeout bounds each request when no timeout is configured.
const DefaultTimeout = 15 * time.Second

// Client talks to the todo REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger

	mu    sync.RWMutex
	token string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(client *Client) {
		client.httpClient = c
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(client *Client) {
		client.httpClient.Timeout = d
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(client *Client) {
		client.logger = logger
	}
}

// WithToken installs a bearer token at construction time.
func WithToken(token string) ClientOption {
	return func(client *Client) {
		client.token = token
	}
}

// NewClient creates a client for the API rooted at baseURL
// (e.g. "http://localhost:5000/api").
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetToken installs the bearer token used for authenticated requests.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// ClearToken drops the bearer token.
func (c *Client) ClearToken() {
	c.SetToken("")
}

// Token returns the current bearer token, empty when unauthenticated.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Register creates an account and returns the resulting session.
func (c *Client) Register(ctx context.Context, username, email, password string) (*session.Session, error) {
	switch {
	case username == "":
		return nil, &ValidationError{Field: "username"}
	case email == "":
		return nil, &ValidationError{Field: "email"}
	case password == "":
		return nil, &ValidationError{Field: "password"}
	}

	var resp authResponse
	err := c.do(ctx, http.MethodPost, "/register", registerRequest{
		Username: username,
		Email:    email,
		Password: password,
	}, &resp, false)
	if err != nil {
		return nil, asAuthError(err)
	}
	return resp.Session(), nil
}

// Login authenticates with email and password and returns the session.
func (c *Client) Login(ctx context.Context, email, password string) (*session.Session, error) {
	switch {
	case email == "":
		return nil, &ValidationError{Field: "email"}
	case password == "":
		return nil, &ValidationError{Field: "password"}
	}

	var resp authResponse
	err := c.do(ctx, http.MethodPost, "/login", loginRequest{
		Email:    email,
		Password: password,
	}, &resp, false)
	if err != nil {
		return nil, asAuthError(err)
	}
	return resp.Session(), nil
}

// ListTasks fetches the full task collection.
func (c *Client) ListTasks(ctx context.Context) ([]task.Task, error) {
	var resp listResponse
	if err := c.do(ctx, http.MethodGet, "/todos", nil, &resp, true); err != nil {
		return nil, err
	}
	return resp.Todos, nil
}

// CreateTask creates a task and returns the server's copy with its
// assigned id. Unknown category or priority values are normalized the
// same way the server would normalize them.
func (c *Client) CreateTask(ctx context.Context, req CreateTaskRequest) (*task.Task, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, &ValidationError{Field: "title"}
	}
	req.Category = task.ParseCategory(string(req.Category))
	req.Priority = task.ParsePriority(string(req.Priority))

	var resp todoResponse
	if err := c.do(ctx, http.MethodPost, "/todos", req, &resp, true); err != nil {
		return nil, err
	}
	return &resp.Todo, nil
}

// UpdateTask applies a partial patch to a task and returns the updated
// server copy.
func (c *Client) UpdateTask(ctx context.Context, id int, patch TaskPatch) (*task.Task, error) {
	if patch.IsZero() {
		return nil, &ValidationError{Field: "patch"}
	}

	var resp todoResponse
	path := fmt.Sprintf("/todos/%d", id)
	if err := c.do(ctx, http.MethodPut, path, patch, &resp, true); err != nil {
		return nil, err
	}
	return &resp.Todo, nil
}

// DeleteTask removes a task.
func (c *Client) DeleteTask(ctx context.Context, id int) error {
	path := fmt.Sprintf("/todos/%d", id)
	return c.do(ctx, http.MethodDelete, path, nil, nil, true)
}

// Statistics fetches the server-computed aggregate view.
func (c *Client) Statistics(ctx context.Context) (*task.Statistics, error) {
	var stats task.Statistics
	if err := c.do(ctx, http.MethodGet, "/statistics", nil, &stats, true); err != nil {
		return nil, err
	}
	return &stats, nil
}

// Health checks the backend's health endpoint. It needs no session.
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	var status HealthStatus
	if err := c.do(ctx, http.MethodGet, "/health", nil, &status, false); err != nil {
		return nil, err
	}
	return &status, nil
}

// do executes a single request. body is marshaled as JSON when non-nil;
// a 2xx response is decoded into out when out is non-nil. Authenticated
// requests without a token fail with ErrUnauthenticated before any
// request is issued.
func (c *Client) do(ctx context.Context, method, path string, body, out any, authed bool) error {
	token := c.Token()
	if authed && token == "" {
		return ErrUnauthenticated
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	url := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	requestID := uuid.New().String()
	req.Header.Set("X-Request-ID", requestID)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	c.logger.Debug("Sending API request",
		"request_id", requestID,
		"method", method,
		"path", path)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return classifyTransportError(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return classifyTransportError(err)
	}

	c.logger.Debug("API response",
		"request_id", requestID,
		"status", resp.StatusCode,
		"duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{
			Status:  resp.StatusCode,
			Message: serverMessage(respBody),
		}
	}

	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// classifyTransportError separates timeouts from other transport
// failures. No response was received in either case.
func classifyTransportError(err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &TimeoutError{err: err}
	}
	return &NetworkError{err: err}
}

// serverMessage extracts the error text from a failure payload. The
// server sends {"error": ...} and sometimes a secondary "message".
func serverMessage(body []byte) string {
	var payload errorResponse
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Error != "" {
			return payload.Error
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > 200 {
		msg = msg[:200] + "..."
	}
	return msg
}

// asAuthError converts a non-2xx failure from an auth endpoint into an
// AuthError; transport failures pass through unchanged.
func asAuthError(err error) error {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return &AuthError{Status: apiErr.Status, Message: apiErr.Message}
	}
	return err
}
