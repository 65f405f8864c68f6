// Package api is the client-side HTTP binding to the Dayflow backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dayflow/core/internal/domain/entities"
	"github.com/dayflow/core/internal/ports"
)

const defaultTimeout = 10 * time.Second

// Client is the surface the data layer propagates mutations through.
// Implementations must be safe for concurrent use.
type Client interface {
	Signup(ctx context.Context, req ports.RegisterRequest) (*ports.AuthResponse, error)
	Login(ctx context.Context, req ports.LoginRequest) (*ports.AuthResponse, error)

	ListTasks(ctx context.Context, token string) ([]*entities.Task, error)
	CreateTask(ctx context.Context, token string, req ports.CreateTaskRequest) (*entities.Task, error)
	UpdateTask(ctx context.Context, token, id string, req ports.UpdateTaskRequest) (*entities.Task, error)
	DeleteTask(ctx context.Context, token, id string) error

	ListNotes(ctx context.Context, token string) ([]*entities.DailyNote, error)
	SaveNote(ctx context.Context, token string, req ports.SaveNoteRequest) (*entities.DailyNote, error)

	Health(ctx context.Context) error
}

// Error is a non-2xx backend response.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Message)
}

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// IsUnauthorized reports whether err is a 401 from the backend.
func IsUnauthorized(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}

// IsConflict reports whether err is a 400 from the backend, which the
// signup route uses for duplicate accounts.
func IsConflict(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusBadRequest
}

// HTTPClient talks JSON over HTTP to a Dayflow API server.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPClient returns a client for the server at baseURL,
// e.g. "http://localhost:5000".
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
}

func (c *HTTPClient) do(ctx context.Context, method, path, token string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var msg struct {
			Message string `json:"message"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&msg)
		return &Error{StatusCode: resp.StatusCode, Message: msg.Message}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decoding response body: %w", err)
		}
	}
	return nil
}

func (c *HTTPClient) Signup(ctx context.Context, req ports.RegisterRequest) (*ports.AuthResponse, error) {
	var resp ports.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/signup", "", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) Login(ctx context.Context, req ports.LoginRequest) (*ports.AuthResponse, error) {
	var resp ports.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", "", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) ListTasks(ctx context.Context, token string) ([]*entities.Task, error) {
	var tasks []*entities.Task
	if err := c.do(ctx, http.MethodGet, "/api/tasks", token, nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (c *HTTPClient) CreateTask(ctx context.Context, token string, req ports.CreateTaskRequest) (*entities.Task, error) {
	var task entities.Task
	if err := c.do(ctx, http.MethodPost, "/api/tasks", token, req, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *HTTPClient) UpdateTask(ctx context.Context, token, id string, req ports.UpdateTaskRequest) (*entities.Task, error) {
	var task entities.Task
	if err := c.do(ctx, http.MethodPatch, "/api/tasks/"+id, token, req, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *HTTPClient) DeleteTask(ctx context.Context, token, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/tasks/"+id, token, nil, nil)
}

func (c *HTTPClient) ListNotes(ctx context.Context, token string) ([]*entities.DailyNote, error) {
	var notes []*entities.DailyNote
	if err := c.do(ctx, http.MethodGet, "/api/notes", token, nil, &notes); err != nil {
		return nil, err
	}
	return notes, nil
}

func (c *HTTPClient) SaveNote(ctx context.Context, token string, req ports.SaveNoteRequest) (*entities.DailyNote, error) {
	var note entities.DailyNote
	if err := c.do(ctx, http.MethodPost, "/api/notes", token, req, &note); err != nil {
		return nil, err
	}
	return &note, nil
}

func (c *HTTPClient) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/api/health", "", nil, nil)
}
