// Package tasks is a client for the task service that owns note follow-ups.
package tasks

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

	"go.uber.org/zap"

	"github.com/adeshyearanty/crm-lead-service/internal/domain"
)

// ErrNotConfigured is returned when no task service URL is configured
var ErrNotConfigured = errors.New("task client base URL is not configured")

// UpdateTaskRequest holds the task fields that may be changed
type UpdateTaskRequest struct {
	Title       *string              `json:"title,omitempty"`
	Description *string              `json:"description,omitempty"`
	DueDate     *string              `json:"dueDate,omitempty"`
	Status      *domain.TaskStatus   `json:"status,omitempty"`
	Priority    *domain.TaskPriority `json:"priority,omitempty"`
	AssignedTo  *string              `json:"assignedTo,omitempty"`
}

// Client talks to the task service over HTTP
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a task client. baseURL is the task collection endpoint.
func NewClient(baseURL, apiKey string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Create creates a task and returns it with its id
func (c *Client) Create(ctx context.Context, task domain.Task) (*domain.Task, error) {
	var created domain.Task
	if err := c.do(ctx, http.MethodPost, "", task, &created); err != nil {
		c.logger.Error("Error while creating task", zap.String("note_id", task.NoteID), zap.Error(err))
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	return &created, nil
}

// FindByNote lists the tasks linked to a note
func (c *Client) FindByNote(ctx context.Context, noteID string) ([]domain.Task, error) {
	var tasks []domain.Task
	if err := c.do(ctx, http.MethodGet, "/note/"+url.PathEscape(noteID), nil, &tasks); err != nil {
		c.logger.Error("Error while fetching tasks", zap.String("note_id", noteID), zap.Error(err))
		return nil, fmt.Errorf("failed to fetch tasks: %w", err)
	}
	return tasks, nil
}

// Update changes a task
func (c *Client) Update(ctx context.Context, taskID string, req UpdateTaskRequest) (*domain.Task, error) {
	var updated domain.Task
	if err := c.do(ctx, http.MethodPut, "/"+url.PathEscape(taskID), req, &updated); err != nil {
		c.logger.Error("Error while updating task", zap.String("task_id", taskID), zap.Error(err))
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	return &updated, nil
}

// Delete removes a task
func (c *Client) Delete(ctx context.Context, taskID string) error {
	if err := c.do(ctx, http.MethodDelete, "/"+url.PathEscape(taskID), nil, nil); err != nil {
		c.logger.Error("Error while deleting task", zap.String("task_id", taskID), zap.Error(err))
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	if c.baseURL == "" {
		return ErrNotConfigured
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("task service returned %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
