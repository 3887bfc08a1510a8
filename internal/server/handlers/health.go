package handlers

import (
	"log/slog"
	"net/http"
	"time"
)

// HealthHandler обрабатывает health check запросы
type HealthHandler struct {
	logger *slog.Logger
}

// NewHealthHandler создает новый handler для health check
func NewHealthHandler(logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		logger: logger,
	}
}

// HealthResponse представляет ответ health check
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

// Health обрабатывает GET /api/health
// Живость самого сервера; доступность Pyrus здесь не проверяется,
// она зависит от учетных данных конкретного пользователя.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	sendJSON(h.logger, w, HealthResponse{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
	}, http.StatusOK)
}
