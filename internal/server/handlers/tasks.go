package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/pyrus-tasks/backend/internal/pyrus"
	"github.com/pyrus-tasks/backend/pkg/api"
)

// TasksHandler проксирует операции над задачами в Pyrus
type TasksHandler struct {
	logger  *slog.Logger
	gateway Gateway
}

// NewTasksHandler создает новый handler для задач
func NewTasksHandler(logger *slog.Logger, gateway Gateway) *TasksHandler {
	return &TasksHandler{
		logger:  logger,
		gateway: gateway,
	}
}

// List обрабатывает GET /api/tasks
// Собирает задачи из реестров всех доступных форм (без архивных)
func (h *TasksHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	client, ok := clientForRequest(h.logger, h.gateway, w, r)
	if !ok {
		return
	}

	forms, err := client.GetForms(ctx)
	if err != nil {
		sendUpstreamError(h.logger, w, err)
		return
	}

	allTasks := []pyrus.Task{}
	for _, form := range forms {
		tasks, err := client.GetRegistry(ctx, form.ID, pyrus.RegistryRequest{IncludeArchived: false})
		if err != nil {
			sendUpstreamError(h.logger, w, err)
			return
		}
		allTasks = append(allTasks, tasks...)
	}

	sendJSON(h.logger, w, allTasks, http.StatusOK)
}

// Get обрабатывает GET /api/tasks/{id}
func (h *TasksHandler) Get(w http.ResponseWriter, r *http.Request) {
	taskID, ok := pathID(h.logger, w, r, "id")
	if !ok {
		return
	}

	client, ok := clientForRequest(h.logger, h.gateway, w, r)
	if !ok {
		return
	}

	task, err := client.GetTask(r.Context(), taskID)
	if err != nil {
		sendUpstreamError(h.logger, w, err)
		return
	}

	sendJSON(h.logger, w, task, http.StatusOK)
}

// Comment обрабатывает POST /api/tasks/{id}/comment
// Добавляет комментарий к задаче и возвращает обновленную задачу
func (h *TasksHandler) Comment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	taskID, ok := pathID(h.logger, w, r, "id")
	if !ok {
		return
	}

	var req api.CommentTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.ErrorContext(ctx, "failed to decode comment request", slog.Any("error", err))
		sendError(h.logger, w, "Некорректное тело запроса", http.StatusBadRequest)
		return
	}

	client, ok := clientForRequest(h.logger, h.gateway, w, r)
	if !ok {
		return
	}

	task, err := client.CommentTask(ctx, taskID, pyrus.CommentRequest{
		Text:         req.Text,
		Action:       req.Action,
		FieldUpdates: req.FieldUpdates,
	})
	if err != nil {
		sendUpstreamError(h.logger, w, err)
		return
	}

	h.logger.InfoContext(ctx, "task commented", slog.Int("task_id", taskID))

	sendJSON(h.logger, w, task, http.StatusOK)
}

// Create обрабатывает POST /api/tasks/create
func (h *TasksHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.ErrorContext(ctx, "failed to decode create task request", slog.Any("error", err))
		sendError(h.logger, w, "Некорректное тело запроса", http.StatusBadRequest)
		return
	}

	client, ok := clientForRequest(h.logger, h.gateway, w, r)
	if !ok {
		return
	}

	task, err := client.CreateTask(ctx, pyrus.CreateTaskRequest{
		FormID:  req.FormID,
		Text:    req.Text,
		Subject: req.Subject,
		DueDate: req.DueDate,
		Fields:  req.Fields,
	})
	if err != nil {
		sendUpstreamError(h.logger, w, err)
		return
	}

	h.logger.InfoContext(ctx, "task created", slog.Int("task_id", task.ID))

	sendJSON(h.logger, w, task, http.StatusOK)
}

// Full обрабатывает GET /api/task/{id}/full
// Возвращает задачу вместе с полным списком справочников
func (h *TasksHandler) Full(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	taskID, ok := pathID(h.logger, w, r, "id")
	if !ok {
		return
	}

	client, ok := clientForRequest(h.logger, h.gateway, w, r)
	if !ok {
		return
	}

	task, err := client.GetTask(ctx, taskID)
	if err != nil {
		sendUpstreamError(h.logger, w, err)
		return
	}

	catalogs, err := collectCatalogs(ctx, client)
	if err != nil {
		sendUpstreamError(h.logger, w, err)
		return
	}

	sendJSON(h.logger, w, api.TaskFullResponse{
		Task:     task,
		Catalogs: catalogs,
	}, http.StatusOK)
}

// pathID извлекает числовой идентификатор из path параметра.
// При неудаче сам пишет 400 и возвращает ok=false.
func pathID(logger *slog.Logger, w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	raw := r.PathValue(name)
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		logger.Warn("invalid path id", slog.String(name, raw))
		sendError(logger, w, "Некорректный идентификатор", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}
