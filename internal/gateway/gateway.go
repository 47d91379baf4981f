// Package gateway wraps the remote task API. It is stateless: every call
// takes the bearer token to use, performs one request and maps the response
// into domain types. All failure modes collapse into domain.ErrRemoteUnavailable
// so the engine can treat them uniformly as "go offline".
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/taskpocket/taskpocket/internal/domain"
)

// wireTask is the task record as the server sends it. The server's due_date
// is a plain "2006-01-02" string; completed may be omitted and defaults false.
type wireTask struct {
	ID        int      `json:"id"`
	Title     string   `json:"title"`
	DueDate   string   `json:"due_date,omitempty"`
	Completed bool     `json:"completed"`
	Owner     wireUser `json:"owner"`
}

type wireUser struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
}

type createRequest struct {
	Title   string `json:"title"`
	DueDate string `json:"due_date,omitempty"`
}

type updateRequest struct {
	Title     *string `json:"title,omitempty"`
	Completed *bool   `json:"completed,omitempty"`
	DueDate   *string `json:"due_date,omitempty"`
}

// Client is the resty-backed TaskGateway implementation.
type Client struct {
	http *resty.Client
}

// NewClient builds a gateway client for the given API base URL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	c := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	return &Client{http: c}
}

// FetchTasks performs GET /tasks. Only a 200 counts as success.
func (c *Client) FetchTasks(ctx context.Context, token string) ([]domain.Task, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		Get("/tasks")
	if err != nil {
		return nil, remoteErr("fetch tasks", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, remoteStatusErr("fetch tasks", resp.StatusCode())
	}

	var records []wireTask
	if err := json.Unmarshal(resp.Body(), &records); err != nil {
		return nil, remoteErr("decode task list", err)
	}

	tasks := make([]domain.Task, 0, len(records))
	for _, r := range records {
		t, err := r.toDomain()
		if err != nil {
			return nil, remoteErr("map task record", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

// CreateTask performs POST /tasks. 200 and 201 are both success.
func (c *Client) CreateTask(ctx context.Context, token string, draft domain.TaskDraft) (domain.Task, error) {
	body := createRequest{Title: draft.Title}
	if draft.DueDate != nil {
		body.DueDate = draft.DueDate.String()
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Post("/tasks")
	if err != nil {
		return domain.Task{}, remoteErr("create task", err)
	}
	if resp.StatusCode() != http.StatusOK && resp.StatusCode() != http.StatusCreated {
		return domain.Task{}, remoteStatusErr("create task", resp.StatusCode())
	}
	return decodeTask(resp.Body())
}

// UpdateTask performs PUT /tasks/{id} with a partial body.
func (c *Client) UpdateTask(ctx context.Context, token string, id int, patch domain.TaskPatch) (domain.Task, error) {
	body := updateRequest{Title: patch.Title, Completed: patch.Completed}
	if patch.DueDate != nil {
		s := patch.DueDate.String()
		body.DueDate = &s
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Put(fmt.Sprintf("/tasks/%d", id))
	if err != nil {
		return domain.Task{}, remoteErr("update task", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return domain.Task{}, remoteStatusErr("update task", resp.StatusCode())
	}
	return decodeTask(resp.Body())
}

// DeleteTask performs DELETE /tasks/{id}. 200 and 204 are both success.
func (c *Client) DeleteTask(ctx context.Context, token string, id int) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		Delete(fmt.Sprintf("/tasks/%d", id))
	if err != nil {
		return remoteErr("delete task", err)
	}
	if resp.StatusCode() != http.StatusOK && resp.StatusCode() != http.StatusNoContent {
		return remoteStatusErr("delete task", resp.StatusCode())
	}
	return nil
}

func decodeTask(body []byte) (domain.Task, error) {
	var record wireTask
	if err := json.Unmarshal(body, &record); err != nil {
		return domain.Task{}, remoteErr("decode task", err)
	}
	t, err := record.toDomain()
	if err != nil {
		return domain.Task{}, remoteErr("map task record", err)
	}
	return t, nil
}

func (r wireTask) toDomain() (domain.Task, error) {
	t := domain.Task{
		ID:        r.ID,
		Title:     r.Title,
		Completed: r.Completed,
		Owner:     domain.User{ID: r.Owner.ID, Username: r.Owner.Username},
	}
	if r.DueDate != "" {
		due, err := domain.ParseDueDate(r.DueDate)
		if err != nil {
			return domain.Task{}, err
		}
		t.DueDate = &due
	}
	return t, nil
}

func remoteErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", domain.ErrRemoteUnavailable, op, err)
}

func remoteStatusErr(op string, status int) error {
	return fmt.Errorf("%w: %s: unexpected status %d", domain.ErrRemoteUnavailable, op, status)
}
