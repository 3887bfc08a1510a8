package middleware

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/pyrus-tasks/backend/internal/server/handlers"
	"github.com/pyrus-tasks/backend/internal/server/storage"
	"github.com/pyrus-tasks/backend/pkg/api"
)

// AuthMiddleware создает middleware для проверки сессионного токена.
// Токен берется из куки access_token (опциональный префикс "Bearer "
// отбрасывается) или из заголовка Authorization. Логин из subject токена
// резолвится в запись пользователя: это единственный шлюз перед всеми
// проксируемыми операциями.
func AuthMiddleware(logger *slog.Logger, jwtConfig handlers.JWTConfig, userStorage storage.UserStorage) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, ok := extractToken(r)
			if !ok {
				logger.Warn("missing session token", "path", r.URL.Path)
				unauthorized(w, "Not authenticated")
				return
			}

			login, err := handlers.ValidateAccessToken(jwtConfig, tokenString)
			if err != nil {
				logger.Warn("invalid access token", "error", err)
				unauthorized(w, "Not authenticated")
				return
			}

			user, err := userStorage.GetUserByLogin(r.Context(), login)
			if err != nil {
				if errors.Is(err, storage.ErrUserNotFound) {
					logger.Warn("token subject no longer exists", "login", login)
					unauthorized(w, "Not authenticated")
					return
				}
				logger.Error("failed to resolve token subject", "error", err)
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}

			if !user.IsActive {
				logger.Warn("inactive user", "login", login)
				writeJSONError(w, "Пользователь неактивен", http.StatusBadRequest)
				return
			}

			logger.Debug("user authenticated", "login", login, "user_id", user.ID)

			next.ServeHTTP(w, r.WithContext(handlers.ContextWithUser(r.Context(), user)))
		})
	}
}

// extractToken достает токен из куки или заголовка Authorization
func extractToken(r *http.Request) (string, bool) {
	if cookie, err := r.Cookie(handlers.AccessTokenCookie); err == nil && cookie.Value != "" {
		return strings.TrimPrefix(cookie.Value, handlers.BearerPrefix), true
	}

	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}

	return parts[1], true
}

// unauthorized пишет 401 с JSON телом в формате остальных ошибок API
func unauthorized(w http.ResponseWriter, message string) {
	writeJSONError(w, message, http.StatusUnauthorized)
}

func writeJSONError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(api.ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
	})
}
