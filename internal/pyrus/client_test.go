package pyrus

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestServer поднимает mock сервер Pyrus с успешной аутентификацией
func newTestServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth", func(w http.ResponseWriter, r *http.Request) {
		var req authRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req.Login != "user@example.com" || req.SecurityKey != "valid-key" {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(errorResponse{Error: "Invalid login or security key"})
			return
		}
		_ = json.NewEncoder(w).Encode(authResponse{AccessToken: "test-token"})
	})
	if handler != nil {
		mux.HandleFunc("/", handler)
	}
	return httptest.NewServer(mux)
}

func TestNewClient_Defaults(t *testing.T) {
	client := NewClient("", "user@example.com", "key")

	assert.Equal(t, DefaultBaseURL, client.baseURL)
	assert.Equal(t, 30*time.Second, client.httpClient.Timeout)
}

func TestClient_Auth(t *testing.T) {
	server := newTestServer(t, nil)
	defer server.Close()

	client := NewClient(server.URL, "user@example.com", "valid-key")
	err := client.Auth(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "test-token", client.accessToken)
}

func TestClient_Auth_InvalidCredentials(t *testing.T) {
	server := newTestServer(t, nil)
	defer server.Close()

	client := NewClient(server.URL, "user@example.com", "wrong-key")
	err := client.Auth(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAuth)
	assert.Contains(t, err.Error(), "Invalid login or security key")
}

func TestClient_Auth_TransportError(t *testing.T) {
	// Сервер не слушает
	client := NewClient("http://127.0.0.1:1", "user@example.com", "valid-key")
	err := client.Auth(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransport)
}

func TestClient_GetForms(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "GET", r.Method)
		assert.Equal(t, "/forms", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"forms": []Form{
				{ID: 1, Name: "Заявка"},
				{ID: 2, Name: "Согласование"},
			},
		})
	})
	defer server.Close()

	client := NewClient(server.URL, "user@example.com", "valid-key")
	require.NoError(t, client.Auth(context.Background()))

	forms, err := client.GetForms(context.Background())

	require.NoError(t, err)
	require.Len(t, forms, 2)
	assert.Equal(t, "Заявка", forms[0].Name)
}

func TestClient_GetTask_NotFound(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(errorResponse{Error: "Task not found"})
	})
	defer server.Close()

	client := NewClient(server.URL, "user@example.com", "valid-key")
	require.NoError(t, client.Auth(context.Background()))

	_, err := client.GetTask(context.Background(), 12345)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClient_GetTask_AuthExpired(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(errorResponse{Error: "Access token expired"})
	})
	defer server.Close()

	client := NewClient(server.URL, "user@example.com", "valid-key")
	require.NoError(t, client.Auth(context.Background()))

	_, err := client.GetTask(context.Background(), 1)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAuth)
}

func TestClient_GetRegistry(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "/forms/829354/register", r.URL.Path)

		var req RegistryRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, []int{101, 102}, req.TaskIDs)
		assert.Equal(t, []int{1, 2, 3}, req.FieldIDs)

		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"tasks": []Task{{ID: 101}, {ID: 102}},
		})
	})
	defer server.Close()

	client := NewClient(server.URL, "user@example.com", "valid-key")
	require.NoError(t, client.Auth(context.Background()))

	tasks, err := client.GetRegistry(context.Background(), 829354, RegistryRequest{
		TaskIDs:  []int{101, 102},
		FieldIDs: []int{1, 2, 3},
	})

	require.NoError(t, err)
	assert.Len(t, tasks, 2)
}

func TestClient_GetInbox(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/inbox", r.URL.Path)
		assert.Equal(t, "50", r.URL.Query().Get("item_count"))

		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"tasks": []Task{{ID: 7, Text: "Входящая задача"}},
		})
	})
	defer server.Close()

	client := NewClient(server.URL, "user@example.com", "valid-key")
	require.NoError(t, client.Auth(context.Background()))

	tasks, err := client.GetInbox(context.Background(), 50)

	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Входящая задача", tasks[0].Text)
}

func TestClient_CommentTask(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "/tasks/42/comments", r.URL.Path)

		var req CommentRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Готово", req.Text)

		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"task": Task{ID: 42, Text: "Задача"},
		})
	})
	defer server.Close()

	client := NewClient(server.URL, "user@example.com", "valid-key")
	require.NoError(t, client.Auth(context.Background()))

	task, err := client.CommentTask(context.Background(), 42, CommentRequest{Text: "Готово"})

	require.NoError(t, err)
	assert.Equal(t, 42, task.ID)
}

func TestClient_UpstreamErrorMessage(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(errorResponse{Error: "Internal Pyrus error"})
	})
	defer server.Close()

	client := NewClient(server.URL, "user@example.com", "valid-key")
	require.NoError(t, client.Auth(context.Background()))

	_, err := client.GetForms(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUpstream)
	// Текст исходной ошибки пробрасывается наверх без изменений
	assert.Contains(t, err.Error(), "Internal Pyrus error")
}

func TestTaskField_Values(t *testing.T) {
	tests := []struct {
		name  string
		value string
		check func(t *testing.T, f TaskField)
	}{
		{
			name:  "string value",
			value: `"hello"`,
			check: func(t *testing.T, f TaskField) {
				s, ok := f.StringValue()
				assert.True(t, ok)
				assert.Equal(t, "hello", s)
			},
		},
		{
			name:  "numeric value as string",
			value: `2`,
			check: func(t *testing.T, f TaskField) {
				s, ok := f.StringValue()
				assert.True(t, ok)
				assert.Equal(t, "2", s)
			},
		},
		{
			name:  "int from number",
			value: `2`,
			check: func(t *testing.T, f TaskField) {
				n, ok := f.IntValue()
				assert.True(t, ok)
				assert.Equal(t, 2, n)
			},
		},
		{
			name:  "int from numeric string",
			value: `"2"`,
			check: func(t *testing.T, f TaskField) {
				n, ok := f.IntValue()
				assert.True(t, ok)
				assert.Equal(t, 2, n)
			},
		},
		{
			name:  "int from garbage",
			value: `"not-a-number"`,
			check: func(t *testing.T, f TaskField) {
				_, ok := f.IntValue()
				assert.False(t, ok)
			},
		},
		{
			name:  "time from date",
			value: `"2025-03-01"`,
			check: func(t *testing.T, f TaskField) {
				tm, ok := f.TimeValue()
				assert.True(t, ok)
				assert.Equal(t, 2025, tm.Year())
			},
		},
		{
			name:  "time from rfc3339",
			value: `"2025-03-01T10:30:00Z"`,
			check: func(t *testing.T, f TaskField) {
				tm, ok := f.TimeValue()
				assert.True(t, ok)
				assert.Equal(t, 10, tm.Hour())
			},
		},
		{
			name:  "missing value",
			value: ``,
			check: func(t *testing.T, f TaskField) {
				_, ok := f.StringValue()
				assert.False(t, ok)
				_, ok = f.IntValue()
				assert.False(t, ok)
				_, ok = f.TimeValue()
				assert.False(t, ok)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := TaskField{ID: 1}
			if tt.value != "" {
				f.Value = json.RawMessage(tt.value)
			}
			tt.check(t, f)
		})
	}
}
