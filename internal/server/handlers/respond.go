package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/pyrus-tasks/backend/internal/pyrus"
	"github.com/pyrus-tasks/backend/pkg/api"
)

// sendJSON отправляет JSON ответ
func sendJSON(logger *slog.Logger, w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode JSON response", slog.Any("error", err))
	}
}

// sendError отправляет JSON ответ с ошибкой
func sendError(logger *slog.Logger, w http.ResponseWriter, message string, statusCode int) {
	resp := api.ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
	}
	sendJSON(logger, w, resp, statusCode)
}

// sendUpstreamError переводит ошибку клиента Pyrus в HTTP статус:
// отказ аутентификации в 401 (фронтенд предложит войти заново),
// отсутствующий объект в 404, все остальное в 500 с текстом ошибки Pyrus.
func sendUpstreamError(logger *slog.Logger, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, pyrus.ErrAuth):
		logger.Warn("pyrus authentication failed", slog.Any("error", err))
		sendError(logger, w, "Ошибка авторизации в Pyrus", http.StatusUnauthorized)
	case errors.Is(err, pyrus.ErrNotFound):
		logger.Warn("pyrus object not found", slog.Any("error", err))
		sendError(logger, w, "Объект не найден", http.StatusNotFound)
	default:
		logger.Error("pyrus request failed", slog.Any("error", err))
		sendError(logger, w, err.Error(), http.StatusInternalServerError)
	}
}
