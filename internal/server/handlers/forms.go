package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/pyrus-tasks/backend/internal/pyrus"
	"github.com/pyrus-tasks/backend/internal/server/reshape"
)

// FormsHandler проксирует структуру форм из Pyrus
type FormsHandler struct {
	logger  *slog.Logger
	gateway Gateway
}

// NewFormsHandler создает новый handler для форм
func NewFormsHandler(logger *slog.Logger, gateway Gateway) *FormsHandler {
	return &FormsHandler{
		logger:  logger,
		gateway: gateway,
	}
}

// List обрабатывает GET /api/forms
func (h *FormsHandler) List(w http.ResponseWriter, r *http.Request) {
	client, ok := clientForRequest(h.logger, h.gateway, w, r)
	if !ok {
		return
	}

	forms, err := client.GetForms(r.Context())
	if err != nil {
		sendUpstreamError(h.logger, w, err)
		return
	}

	if forms == nil {
		forms = []pyrus.Form{}
	}

	sendJSON(h.logger, w, forms, http.StatusOK)
}

// TaskForm обрабатывает GET /api/forms/{id}/task-form
// Возвращает структуру формы с подтянутыми справочниками полей
func (h *FormsHandler) TaskForm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	formID, ok := pathID(h.logger, w, r, "id")
	if !ok {
		return
	}

	client, ok := clientForRequest(h.logger, h.gateway, w, r)
	if !ok {
		return
	}

	form, err := client.GetForm(ctx, formID)
	if err != nil {
		sendUpstreamError(h.logger, w, err)
		return
	}

	view, err := reshape.FormView(form, catalogResolver(ctx, client))
	if err != nil {
		sendUpstreamError(h.logger, w, err)
		return
	}

	sendJSON(h.logger, w, view, http.StatusOK)
}

// TaskFormForTask обрабатывает GET /api/tasks/{id}/form
// Возвращает форму задачи с текущими значениями полей, комментариями
// и вложениями
func (h *FormsHandler) TaskFormForTask(w http.ResponseWriter, r *http.Request) {
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

	if task.FormID == 0 {
		h.logger.Warn("task has no form", slog.Int("task_id", taskID))
		sendError(h.logger, w, "Задача не привязана к форме", http.StatusNotFound)
		return
	}

	form, err := client.GetForm(ctx, task.FormID)
	if err != nil {
		sendUpstreamError(h.logger, w, err)
		return
	}

	view, err := reshape.TaskFormView(task, form, catalogResolver(ctx, client))
	if err != nil {
		sendUpstreamError(h.logger, w, err)
		return
	}

	sendJSON(h.logger, w, view, http.StatusOK)
}

// catalogResolver возвращает резолвер справочников поверх клиента Pyrus
func catalogResolver(ctx context.Context, client PyrusAPI) reshape.CatalogResolver {
	return func(catalogID int) (*pyrus.Catalog, error) {
		return client.GetCatalog(ctx, catalogID)
	}
}
