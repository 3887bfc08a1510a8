package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/pyrus-tasks/backend/internal/models"
	"github.com/pyrus-tasks/backend/internal/pyrus"
)

// PyrusAPI определяет операции Pyrus, которые используют обработчики.
// Реализуется *pyrus.Client.
type PyrusAPI interface {
	GetForms(ctx context.Context) ([]pyrus.Form, error)
	GetForm(ctx context.Context, formID int) (*pyrus.Form, error)
	GetRegistry(ctx context.Context, formID int, req pyrus.RegistryRequest) ([]pyrus.Task, error)
	GetTask(ctx context.Context, taskID int) (*pyrus.Task, error)
	GetInbox(ctx context.Context, tasksCount int) ([]pyrus.Task, error)
	CommentTask(ctx context.Context, taskID int, req pyrus.CommentRequest) (*pyrus.Task, error)
	CreateTask(ctx context.Context, req pyrus.CreateTaskRequest) (*pyrus.Task, error)
	GetCatalog(ctx context.Context, catalogID int) (*pyrus.Catalog, error)
}

// Gateway выдает аутентифицированные клиенты Pyrus.
// Client создает клиент под сохраненные учетные данные пользователя и
// сразу проверяет их живым вызовом аутентификации: протухшие или
// отозванные ключи обнаруживаются при первом проксируемом запросе.
type Gateway interface {
	// Client возвращает аутентифицированный клиент для пользователя.
	// Возвращает ошибку с pyrus.ErrAuth, если Pyrus отверг сохраненный ключ.
	Client(ctx context.Context, user *models.User) (PyrusAPI, error)

	// Check проверяет пару логин/ключ живым обращением к Pyrus
	Check(ctx context.Context, login, securityKey string) error
}

// clientForRequest достает пользователя из контекста и строит под него
// аутентифицированный клиент Pyrus. При неудаче сам пишет ответ и
// возвращает ok=false.
func clientForRequest(logger *slog.Logger, gateway Gateway, w http.ResponseWriter, r *http.Request) (PyrusAPI, bool) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		logger.Error("user not found in request context")
		sendError(logger, w, "Not authenticated", http.StatusUnauthorized)
		return nil, false
	}

	client, err := gateway.Client(r.Context(), user)
	if err != nil {
		sendUpstreamError(logger, w, err)
		return nil, false
	}

	return client, true
}
