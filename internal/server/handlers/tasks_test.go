package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pyrus-tasks/backend/internal/models"
	"github.com/pyrus-tasks/backend/internal/pyrus"
)

func newAuthedRequest(method, target, body string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	user := &models.User{ID: 1, Login: "user@example.com", SecurityKey: "key", IsActive: true}
	return req.WithContext(ContextWithUser(req.Context(), user))
}

func TestTasksHandler_List(t *testing.T) {
	t.Run("Aggregates registries of all forms", func(t *testing.T) {
		api := &mockPyrusAPI{
			forms: []pyrus.Form{
				{ID: 100, Name: "Заявки"},
				{ID: 200, Name: "Закупки"},
			},
			registry: []pyrus.Task{{ID: 1}, {ID: 2}},
		}
		handler := NewTasksHandler(testLogger(), &mockGateway{api: api})

		req := newAuthedRequest(http.MethodGet, "/api/tasks", "")
		rec := httptest.NewRecorder()

		handler.List(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var tasks []pyrus.Task
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tasks))
		// По реестру на форму, архивные исключены
		assert.Len(t, tasks, 4)
		require.Len(t, api.registryReqs, 2)
		assert.False(t, api.registryReqs[0].IncludeArchived)
	})

	t.Run("No forms gives empty list", func(t *testing.T) {
		handler := NewTasksHandler(testLogger(), &mockGateway{api: &mockPyrusAPI{}})

		req := newAuthedRequest(http.MethodGet, "/api/tasks", "")
		rec := httptest.NewRecorder()

		handler.List(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, "[]", rec.Body.String())
	})

	t.Run("Stale stored credentials give 401", func(t *testing.T) {
		gateway := &mockGateway{clientErr: pyrus.ErrAuth}
		handler := NewTasksHandler(testLogger(), gateway)

		req := newAuthedRequest(http.MethodGet, "/api/tasks", "")
		rec := httptest.NewRecorder()

		handler.List(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "Ошибка авторизации в Pyrus")
	})

	t.Run("No user in context gives 401", func(t *testing.T) {
		handler := NewTasksHandler(testLogger(), &mockGateway{api: &mockPyrusAPI{}})

		req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
		rec := httptest.NewRecorder()

		handler.List(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestTasksHandler_Get(t *testing.T) {
	t.Run("Returns task", func(t *testing.T) {
		api := &mockPyrusAPI{task: &pyrus.Task{ID: 42, Subject: "Проверка"}}
		handler := NewTasksHandler(testLogger(), &mockGateway{api: api})

		req := newAuthedRequest(http.MethodGet, "/api/tasks/42", "")
		req.SetPathValue("id", "42")
		rec := httptest.NewRecorder()

		handler.Get(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Проверка")
	})

	t.Run("Missing task gives 404", func(t *testing.T) {
		api := &mockPyrusAPI{taskErr: pyrus.ErrNotFound}
		handler := NewTasksHandler(testLogger(), &mockGateway{api: api})

		req := newAuthedRequest(http.MethodGet, "/api/tasks/999", "")
		req.SetPathValue("id", "999")
		rec := httptest.NewRecorder()

		handler.Get(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), "Объект не найден")
	})

	t.Run("Non-numeric id gives 400", func(t *testing.T) {
		handler := NewTasksHandler(testLogger(), &mockGateway{api: &mockPyrusAPI{}})

		req := newAuthedRequest(http.MethodGet, "/api/tasks/abc", "")
		req.SetPathValue("id", "abc")
		rec := httptest.NewRecorder()

		handler.Get(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestTasksHandler_Comment(t *testing.T) {
	t.Run("Passes comment to Pyrus and returns updated task", func(t *testing.T) {
		api := &mockPyrusAPI{commented: &pyrus.Task{ID: 42, Text: "updated"}}
		handler := NewTasksHandler(testLogger(), &mockGateway{api: api})

		body := `{"text":"Готово","action":"finished"}`
		req := newAuthedRequest(http.MethodPost, "/api/tasks/42/comment", body)
		req.SetPathValue("id", "42")
		rec := httptest.NewRecorder()

		handler.Comment(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.Len(t, api.commentReqs, 1)
		assert.Equal(t, "Готово", api.commentReqs[0].Text)
		assert.Equal(t, "finished", api.commentReqs[0].Action)
	})

	t.Run("Malformed body gives 400", func(t *testing.T) {
		handler := NewTasksHandler(testLogger(), &mockGateway{api: &mockPyrusAPI{}})

		req := newAuthedRequest(http.MethodPost, "/api/tasks/42/comment", "{bad")
		req.SetPathValue("id", "42")
		rec := httptest.NewRecorder()

		handler.Comment(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Field updates are passed through untouched", func(t *testing.T) {
		api := &mockPyrusAPI{commented: &pyrus.Task{ID: 42}}
		handler := NewTasksHandler(testLogger(), &mockGateway{api: api})

		body := `{"field_updates":[{"id":5,"value":"2"}]}`
		req := newAuthedRequest(http.MethodPost, "/api/tasks/42/comment", body)
		req.SetPathValue("id", "42")
		rec := httptest.NewRecorder()

		handler.Comment(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.Len(t, api.commentReqs, 1)
		require.Len(t, api.commentReqs[0].FieldUpdates, 1)
		assert.JSONEq(t, `{"id":5,"value":"2"}`, string(api.commentReqs[0].FieldUpdates[0]))
	})
}

func TestTasksHandler_Create(t *testing.T) {
	api := &mockPyrusAPI{created: &pyrus.Task{ID: 77, FormID: 100}}
	handler := NewTasksHandler(testLogger(), &mockGateway{api: api})

	body := `{"form_id":100,"text":"Новая задача","due_date":"2026-09-01","fields":[{"id":1,"value":"описание"}]}`
	req := newAuthedRequest(http.MethodPost, "/api/tasks/create", body)
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, api.createReqs, 1)
	created := api.createReqs[0]
	assert.Equal(t, 100, created.FormID)
	assert.Equal(t, "Новая задача", created.Text)
	assert.Equal(t, "2026-09-01", created.DueDate)
	require.Len(t, created.Fields, 1)
}

func TestTasksHandler_Full(t *testing.T) {
	api := &mockPyrusAPI{
		task: &pyrus.Task{ID: 42, Subject: "Задача"},
		forms: []pyrus.Form{
			{ID: 100, Fields: []pyrus.FormField{
				{ID: 1, Type: "catalog", Info: &pyrus.FormFieldInfo{CatalogID: 500}},
			}},
		},
		catalogs: map[int]*pyrus.Catalog{
			500: {CatalogID: 500, Name: "Города", Items: []pyrus.CatalogItem{
				{ItemID: 1, Values: []string{"Москва"}},
			}},
		},
	}
	handler := NewTasksHandler(testLogger(), &mockGateway{api: api})

	req := newAuthedRequest(http.MethodGet, "/api/task/42/full", "")
	req.SetPathValue("id", "42")
	rec := httptest.NewRecorder()

	handler.Full(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Task     pyrus.Task       `json:"task"`
		Catalogs []map[string]any `json:"catalogs"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 42, resp.Task.ID)
	require.Len(t, resp.Catalogs, 1)
	assert.Contains(t, rec.Body.String(), "Города")
}
