// Package client is the HTTP task store of the board: a REST client of the
// FocusFlow API that maps responses onto the store error taxonomy.
package client

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
	"sync"
	"time"

	"github.com/focusflow/focusflow-api/internal/dto"
	apierrors "github.com/focusflow/focusflow-api/internal/errors"
	"github.com/focusflow/focusflow-api/internal/store"
)

const defaultTimeout = 30 * time.Second

// Client is safe for concurrent use. It implements store.TaskStore for the
// user whose token it carries.
type Client struct {
	baseURL string
	http    *http.Client

	mu    sync.RWMutex
	token string
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithToken restores a bearer token saved from an earlier login.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) setToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// Signup registers a new account. It does not sign in.
func (c *Client) Signup(ctx context.Context, email, password, name string) (*dto.UserDTO, error) {
	req := map[string]string{"email": email, "password": password, "name": name}
	var user dto.UserDTO
	if err := c.do(ctx, "signup", http.MethodPost, "/api/auth/signup", false, req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Login exchanges credentials for a bearer token, which later calls carry.
func (c *Client) Login(ctx context.Context, email, password string) (*dto.AuthResponse, error) {
	req := map[string]string{"email": email, "password": password}
	var resp dto.AuthResponse
	if err := c.do(ctx, "login", http.MethodPost, "/api/auth/login", false, req, &resp); err != nil {
		return nil, err
	}
	c.setToken(resp.Token)
	return &resp, nil
}

// Logout forgets the token even when the server cannot be reached.
func (c *Client) Logout(ctx context.Context) error {
	defer c.setToken("")
	return c.do(ctx, "logout", http.MethodPost, "/api/auth/logout", false, nil, nil)
}

// Session returns the user the token belongs to.
func (c *Client) Session(ctx context.Context) (*dto.UserDTO, error) {
	var user dto.UserDTO
	if err := c.do(ctx, "session", http.MethodGet, "/api/auth/me", true, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) UpdatePassword(ctx context.Context, password string) (*dto.UserDTO, error) {
	var resp struct {
		User dto.UserDTO `json:"user"`
	}
	req := map[string]string{"password": password}
	if err := c.do(ctx, "update-password", http.MethodPost, "/api/auth/update-password", true, req, &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// GenerateAI asks the assistant a question about the board described by taskContext.
func (c *Client) GenerateAI(ctx context.Context, input, taskContext string) (string, error) {
	req := map[string]string{"input": input, "context": taskContext}
	var resp dto.GenerateResponse
	if err := c.do(ctx, "generate", http.MethodPost, "/api/ai/generate", true, req, &resp); err != nil {
		return "", err
	}
	return resp.Content, nil
}

func (c *Client) List(ctx context.Context) ([]store.Task, error) {
	var tasks []store.Task
	if err := c.do(ctx, "list", http.MethodGet, "/api/tasks", true, nil, &tasks); err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []store.Task{}
	}
	return tasks, nil
}

func (c *Client) Create(ctx context.Context, draft store.Draft) (store.Task, error) {
	var task store.Task
	if err := c.do(ctx, "create", http.MethodPost, "/api/tasks", true, draft, &task); err != nil {
		return store.Task{}, err
	}
	return task, nil
}

func (c *Client) Update(ctx context.Context, id string, patch store.Patch) (store.Task, error) {
	var task store.Task
	if err := c.do(ctx, "update", http.MethodPatch, taskPath(id), true, encodePatch(patch), &task); err != nil {
		return store.Task{}, err
	}
	return task, nil
}

func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, "delete", http.MethodDelete, taskPath(id), true, nil, nil)
}

func taskPath(id string) string {
	return "/api/tasks/" + url.PathEscape(id)
}

// encodePatch sends only the fields being changed; a cleared optional field
// is sent as null.
func encodePatch(p store.Patch) map[string]any {
	body := make(map[string]any)
	if p.Title != nil {
		body["title"] = *p.Title
	}
	if p.Description != nil {
		body["description"] = *p.Description
	}
	if p.Status != nil {
		body["status"] = *p.Status
	}
	if p.Priority != nil {
		body["priority"] = *p.Priority
	}
	if p.Tags != nil {
		body["tags"] = *p.Tags
	}
	switch {
	case p.ClearDueDate:
		body["dueDate"] = nil
	case p.DueDate != nil:
		body["dueDate"] = *p.DueDate
	}
	switch {
	case p.ClearAssignee:
		body["assignedTo"] = nil
	case p.AssigneeID != nil:
		body["assignedTo"] = *p.AssigneeID
	}
	if p.TimeSpent != nil {
		body["timeSpent"] = *p.TimeSpent
	}
	return body
}

func (c *Client) do(ctx context.Context, op, method, path string, auth bool, body, out any) error {
	token := c.Token()
	if auth && token == "" {
		return store.NewError(op, store.ErrUnauthorized, "not signed in")
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: failed to marshal request: %w", op, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("%s: failed to create request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return store.NewError(op, store.ErrTransient, err.Error())
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return store.NewError(op, store.ErrTransient, "failed to read response body: "+err.Error())
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return responseError(op, resp.StatusCode, respBody)
	}

	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("%s: failed to decode response: %w", op, err)
	}
	return nil
}

func responseError(op string, status int, body []byte) error {
	message := http.StatusText(status)
	var apiErr apierrors.APIError
	if json.Unmarshal(body, &apiErr) == nil && apiErr.Message != "" {
		message = apiErr.Message
	}
	return store.NewError(op, kindFor(status), message)
}

func kindFor(status int) error {
	switch {
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return store.ErrUnauthorized
	case status == http.StatusNotFound:
		return store.ErrNotFound
	case status == http.StatusConflict:
		return store.ErrConflict
	case status == http.StatusTooManyRequests, status >= http.StatusInternalServerError:
		return store.ErrTransient
	default:
		return store.ErrInvalid
	}
}

// IsAuthError reports whether err means the token is missing or no longer accepted.
func IsAuthError(err error) bool {
	return errors.Is(err, store.ErrUnauthorized)
}
