package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskpocket/taskpocket/internal/domain"
	"github.com/taskpocket/taskpocket/internal/engine"
)

// stubEngine satisfies engine.Engine with canned responses.
type stubEngine struct {
	tasks     []domain.Task
	due       []domain.Task
	queue     []domain.OfflineAction
	created   domain.Task
	createErr error
	updateErr error
	deleteErr error
	drain     engine.DrainResult
}

func (s *stubEngine) FetchTasks(ctx context.Context) ([]domain.Task, error) {
	return s.tasks, nil
}

func (s *stubEngine) CreateTask(ctx context.Context, draft domain.TaskDraft) (domain.Task, error) {
	if s.createErr != nil {
		return domain.Task{}, s.createErr
	}
	return s.created, nil
}

func (s *stubEngine) UpdateTask(ctx context.Context, id int, patch domain.TaskPatch) (domain.Task, error) {
	if s.updateErr != nil {
		return domain.Task{}, s.updateErr
	}
	return patch.Apply(domain.Task{ID: id}), nil
}

func (s *stubEngine) DeleteTask(ctx context.Context, id int) error {
	return s.deleteErr
}

func (s *stubEngine) SyncOfflineChanges(ctx context.Context) (engine.DrainResult, error) {
	return s.drain, nil
}

func (s *stubEngine) GetDueTasks(ctx context.Context) ([]domain.Task, error) {
	return s.due, nil
}

func (s *stubEngine) PendingActions(ctx context.Context) ([]domain.OfflineAction, error) {
	return s.queue, nil
}

func doRequest(t *testing.T, h echo.HandlerFunc, method, path, body string, params map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	for k, v := range params {
		c.SetParamNames(k)
		c.SetParamValues(v)
	}
	require.NoError(t, h(c))
	return rec
}

func TestCreateHandler(t *testing.T) {
	t.Run("RejectsEmptyTitle", func(t *testing.T) {
		h := NewTaskHandler(&stubEngine{})
		rec := doRequest(t, h.CreateHandler, http.MethodPost, "/tasks", `{"title": "  "}`, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("RejectsInvalidDueDate", func(t *testing.T) {
		h := NewTaskHandler(&stubEngine{})
		rec := doRequest(t, h.CreateHandler, http.MethodPost, "/tasks", `{"title": "x", "due_date": "someday"}`, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("ReturnsCreatedTask", func(t *testing.T) {
		h := NewTaskHandler(&stubEngine{created: domain.Task{ID: 3, Title: "x", IsLocal: true, NeedsSync: true}})
		rec := doRequest(t, h.CreateHandler, http.MethodPost, "/tasks", `{"title": "x"}`, nil)
		assert.Equal(t, http.StatusCreated, rec.Code)

		var resp struct {
			Success bool        `json:"success"`
			Data    domain.Task `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		assert.True(t, resp.Data.IsLocal)
	})

	t.Run("MapsAuthenticationRequiredTo401", func(t *testing.T) {
		h := NewTaskHandler(&stubEngine{createErr: domain.ErrAuthenticationRequired})
		rec := doRequest(t, h.CreateHandler, http.MethodPost, "/tasks", `{"title": "x"}`, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestUpdateHandler(t *testing.T) {
	t.Run("MapsTaskNotFoundTo404", func(t *testing.T) {
		h := NewTaskHandler(&stubEngine{updateErr: domain.ErrTaskNotFound})
		rec := doRequest(t, h.UpdateHandler, http.MethodPut, "/tasks/5", `{"completed": true}`, map[string]string{"id": "5"})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("RejectsNonNumericID", func(t *testing.T) {
		h := NewTaskHandler(&stubEngine{})
		rec := doRequest(t, h.UpdateHandler, http.MethodPut, "/tasks/abc", `{"completed": true}`, map[string]string{"id": "abc"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestDeleteHandler(t *testing.T) {
	t.Run("MapsTaskNotFoundTo404", func(t *testing.T) {
		h := NewTaskHandler(&stubEngine{deleteErr: domain.ErrTaskNotFound})
		rec := doRequest(t, h.DeleteHandler, http.MethodDelete, "/tasks/7", "", map[string]string{"id": "7"})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("Success", func(t *testing.T) {
		h := NewTaskHandler(&stubEngine{})
		rec := doRequest(t, h.DeleteHandler, http.MethodDelete, "/tasks/7", "", map[string]string{"id": "7"})
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestSyncHandler(t *testing.T) {
	h := NewTaskHandler(&stubEngine{drain: engine.DrainResult{
		Applied: []string{"a1"},
		Failed:  []string{"a2"},
	}})
	rec := doRequest(t, h.SyncHandler, http.MethodPost, "/sync", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data engine.DrainResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []string{"a1"}, resp.Data.Applied)
	assert.Equal(t, []string{"a2"}, resp.Data.Failed)
}

func TestDueHandler(t *testing.T) {
	h := NewTaskHandler(&stubEngine{due: []domain.Task{{ID: 1, Title: "due today"}}})
	rec := doRequest(t, h.DueHandler, http.MethodGet, "/tasks/due", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data []domain.Task `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "due today", resp.Data[0].Title)
}

func TestExportTasksHandler(t *testing.T) {
	h := NewTaskHandler(&stubEngine{tasks: []domain.Task{{ID: 1, Title: "exported"}}})
	rec := doRequest(t, h.ExportTasksHandler, http.MethodGet, "/export/tasks", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "spreadsheetml")
	assert.NotZero(t, rec.Body.Len())
}
