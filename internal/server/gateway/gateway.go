// Package gateway создает клиенты Pyrus под учетные данные конкретного
// пользователя. Клиент живет в пределах одного запроса, никакого
// общего состояния между запросами нет.
package gateway

import (
	"context"
	"fmt"

	"github.com/pyrus-tasks/backend/internal/models"
	"github.com/pyrus-tasks/backend/internal/pyrus"
	"github.com/pyrus-tasks/backend/internal/server/handlers"
)

// Gateway реализует handlers.Gateway поверх pyrus.Client
type Gateway struct {
	baseURL string
}

var _ handlers.Gateway = (*Gateway)(nil)

// New создает gateway с адресом API Pyrus
func New(baseURL string) *Gateway {
	return &Gateway{baseURL: baseURL}
}

// Client создает клиент Pyrus под сохраненные учетные данные пользователя
// и выполняет живую проверку аутентификации.
func (g *Gateway) Client(ctx context.Context, user *models.User) (handlers.PyrusAPI, error) {
	client := pyrus.NewClient(g.baseURL, user.Login, user.SecurityKey)
	if err := client.Auth(ctx); err != nil {
		return nil, fmt.Errorf("failed to authenticate user %q in pyrus: %w", user.Login, err)
	}
	return client, nil
}

// Check проверяет пару логин/ключ живым обращением к Pyrus
func (g *Gateway) Check(ctx context.Context, login, securityKey string) error {
	client := pyrus.NewClient(g.baseURL, login, securityKey)
	if err := client.Auth(ctx); err != nil {
		return fmt.Errorf("pyrus credentials check failed: %w", err)
	}
	return nil
}
