package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/pyrus-tasks/backend/internal/pyrus"
	"github.com/pyrus-tasks/backend/internal/server/reshape"
	"github.com/pyrus-tasks/backend/pkg/api"
)

// InboxConfig задает форму и имена полей, из которых собирается
// обогащенный inbox
type InboxConfig struct {
	FormID           int
	DescriptionField string
	DueField         string
	StageField       string
}

// InboxHandler проксирует входящие задачи из Pyrus
type InboxHandler struct {
	logger  *slog.Logger
	gateway Gateway
	config  InboxConfig
}

// NewInboxHandler создает новый handler для входящих
func NewInboxHandler(logger *slog.Logger, gateway Gateway, config InboxConfig) *InboxHandler {
	return &InboxHandler{
		logger:  logger,
		gateway: gateway,
		config:  config,
	}
}

// Inbox обрабатывает GET /api/inbox?tasks_count=50
// Возвращает задачи из входящих как их отдает Pyrus
func (h *InboxHandler) Inbox(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tasksCount := queryInt(r, "tasks_count", 50)

	client, ok := clientForRequest(h.logger, h.gateway, w, r)
	if !ok {
		return
	}

	tasks, err := client.GetInbox(ctx, tasksCount)
	if err != nil {
		sendUpstreamError(h.logger, w, err)
		return
	}

	if tasks == nil {
		tasks = []pyrus.Task{}
	}

	sendJSON(h.logger, w, tasks, http.StatusOK)
}

// InboxFull обрабатывает GET /api/inbox_full?tasks_count=100
// Входящие обогащаются полями настроенной формы: описание, срок и этап,
// плюс производные цвет срочности и признак заморозки.
func (h *InboxHandler) InboxFull(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tasksCount := queryInt(r, "tasks_count", 100)

	client, ok := clientForRequest(h.logger, h.gateway, w, r)
	if !ok {
		return
	}

	inboxTasks, err := client.GetInbox(ctx, tasksCount)
	if err != nil {
		sendUpstreamError(h.logger, w, err)
		return
	}

	if len(inboxTasks) == 0 {
		sendJSON(h.logger, w, []api.InboxItem{}, http.StatusOK)
		return
	}

	taskIDs := make([]int, 0, len(inboxTasks))
	for _, t := range inboxTasks {
		taskIDs = append(taskIDs, t.ID)
	}

	// Структура формы нужна, чтобы найти ID полей по их именам
	form, err := client.GetForm(ctx, h.config.FormID)
	if err != nil {
		sendUpstreamError(h.logger, w, err)
		return
	}

	fields := h.inboxFields(form)

	detailed, err := client.GetRegistry(ctx, h.config.FormID, pyrus.RegistryRequest{
		TaskIDs:  taskIDs,
		FieldIDs: []int{fields.DescriptionID, fields.DueID, fields.StageID},
	})
	if err != nil {
		sendUpstreamError(h.logger, w, err)
		return
	}

	now := time.Now().UTC()
	items := make([]api.InboxItem, 0, len(detailed))
	for _, task := range detailed {
		items = append(items, reshape.InboxItem(task, fields, now))
	}

	sendJSON(h.logger, w, items, http.StatusOK)
}

// inboxFields находит идентификаторы настроенных полей в структуре формы.
// Отсутствующее поле дает нулевой ID и просто не матчится по значениям.
func (h *InboxHandler) inboxFields(form *pyrus.Form) reshape.InboxFields {
	fields := reshape.InboxFields{}
	for _, f := range form.Fields {
		switch f.Name {
		case h.config.DescriptionField:
			fields.DescriptionID = f.ID
		case h.config.DueField:
			fields.DueID = f.ID
		case h.config.StageField:
			fields.StageID = f.ID
		}
	}
	return fields
}
