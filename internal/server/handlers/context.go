package handlers

import (
	"context"

	"github.com/pyrus-tasks/backend/internal/models"
)

// contextKey тип для ключей контекста
type contextKey string

// UserKey ключ для хранения авторизованного пользователя в контексте
const UserKey contextKey = "user"

// ContextWithUser кладет пользователя в контекст запроса
func ContextWithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, UserKey, user)
}

// UserFromContext извлекает пользователя из контекста запроса
// (устанавливается AuthMiddleware)
func UserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(UserKey).(*models.User)
	return user, ok
}
