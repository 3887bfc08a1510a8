// Package server собирает HTTP сервер: маршруты, middleware, жизненный цикл.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/pyrus-tasks/backend/internal/config"
	"github.com/pyrus-tasks/backend/internal/server/gateway"
	"github.com/pyrus-tasks/backend/internal/server/handlers"
	"github.com/pyrus-tasks/backend/internal/server/middleware"
	"github.com/pyrus-tasks/backend/internal/server/storage"
)

const shutdownTimeout = 10 * time.Second

// App владеет HTTP сервером и его зависимостями
type App struct {
	logger     *slog.Logger
	httpServer *http.Server
}

// New собирает приложение из конфигурации и хранилища пользователей.
// Хранилище закрывает вызывающая сторона.
func New(cfg *config.Config, logger *slog.Logger, userStorage storage.UserStorage) *App {
	jwtConfig := handlers.JWTConfig{
		Secret:         []byte(cfg.Auth.SecretKey),
		AccessTokenTTL: cfg.Auth.AccessTokenTTL,
	}
	gw := gateway.New(cfg.Pyrus.APIURL)

	authHandler := handlers.NewAuthHandler(logger, userStorage, gw, jwtConfig)
	tasksHandler := handlers.NewTasksHandler(logger, gw)
	inboxHandler := handlers.NewInboxHandler(logger, gw, handlers.InboxConfig{
		FormID:           cfg.Inbox.FormID,
		DescriptionField: cfg.Inbox.DescriptionField,
		DueField:         cfg.Inbox.DueField,
		StageField:       cfg.Inbox.StageField,
	})
	formsHandler := handlers.NewFormsHandler(logger, gw)
	catalogsHandler := handlers.NewCatalogsHandler(logger, gw)
	healthHandler := handlers.NewHealthHandler(logger)

	authRequired := middleware.AuthMiddleware(logger, jwtConfig, userStorage)
	authRateLimit := middleware.RateLimitMiddleware(cfg.RateLimit.Requests, cfg.RateLimit.Window, logger)

	mux := http.NewServeMux()

	// Аутентификация: register/login открыты, но под rate limit
	mux.Handle("POST /api/auth/register", authRateLimit(http.HandlerFunc(authHandler.Register)))
	mux.Handle("POST /api/auth/login", authRateLimit(http.HandlerFunc(authHandler.Login)))
	mux.HandleFunc("POST /api/auth/logout", authHandler.Logout)
	mux.Handle("GET /api/auth/me", authRequired(http.HandlerFunc(authHandler.Me)))
	mux.Handle("GET /api/auth/users", authRequired(http.HandlerFunc(authHandler.Users)))

	// Задачи
	mux.Handle("GET /api/tasks", authRequired(http.HandlerFunc(tasksHandler.List)))
	mux.Handle("GET /api/tasks/{id}", authRequired(http.HandlerFunc(tasksHandler.Get)))
	mux.Handle("POST /api/tasks/{id}/comment", authRequired(http.HandlerFunc(tasksHandler.Comment)))
	mux.Handle("POST /api/tasks/create", authRequired(http.HandlerFunc(tasksHandler.Create)))
	mux.Handle("GET /api/task/{id}/full", authRequired(http.HandlerFunc(tasksHandler.Full)))

	// Inbox
	mux.Handle("GET /api/inbox", authRequired(http.HandlerFunc(inboxHandler.Inbox)))
	mux.Handle("GET /api/inbox_full", authRequired(http.HandlerFunc(inboxHandler.InboxFull)))

	// Формы и справочники
	mux.Handle("GET /api/forms", authRequired(http.HandlerFunc(formsHandler.List)))
	mux.Handle("GET /api/forms/{id}/task-form", authRequired(http.HandlerFunc(formsHandler.TaskForm)))
	mux.Handle("GET /api/tasks/{id}/form", authRequired(http.HandlerFunc(formsHandler.TaskFormForTask)))
	mux.Handle("GET /api/catalogs", authRequired(http.HandlerFunc(catalogsHandler.List)))
	mux.Handle("GET /api/catalogs/{id}", authRequired(http.HandlerFunc(catalogsHandler.Get)))

	mux.HandleFunc("GET /api/health", healthHandler.Health)

	// Внешняя цепочка: recovery снаружи, логирование внутри
	var handler http.Handler = mux
	handler = middleware.LoggingWithSkip(logger, []string{"/api/health"})(handler)
	handler = middleware.RecoveryMiddleware(logger)(handler)

	return &App{
		logger: logger,
		httpServer: &http.Server{
			Addr:              cfg.Address,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Run запускает сервер и блокируется до отмены контекста,
// после чего делает graceful shutdown.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("HTTP server listening", "address", a.httpServer.Addr)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server failed: %w", err)
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.logger.Info("shutting down HTTP server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown failed: %w", err)
	}

	return <-errCh
}
