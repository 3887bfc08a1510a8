package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/pyrus-tasks/backend/internal/models"
	"github.com/pyrus-tasks/backend/internal/server/storage"
	"github.com/pyrus-tasks/backend/internal/validation"
	"github.com/pyrus-tasks/backend/pkg/api"
)

// AccessTokenCookie имя куки с сессионным токеном
const AccessTokenCookie = "access_token"

// BearerPrefix префикс значения куки и заголовка Authorization
const BearerPrefix = "Bearer "

// AuthHandler обрабатывает запросы регистрации и авторизации
type AuthHandler struct {
	logger      *slog.Logger
	userStorage storage.UserStorage
	gateway     Gateway
	jwtConfig   JWTConfig
}

// NewAuthHandler создает новый handler для авторизации
func NewAuthHandler(logger *slog.Logger, userStorage storage.UserStorage, gateway Gateway, jwtConfig JWTConfig) *AuthHandler {
	return &AuthHandler{
		logger:      logger,
		userStorage: userStorage,
		gateway:     gateway,
		jwtConfig:   jwtConfig,
	}
}

// Register обрабатывает POST /api/auth/register
// Регистрация нового пользователя: учетные данные проверяются живым
// обращением к Pyrus, это единственное место, где сохраненный ключ
// подтверждается как рабочий.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.ErrorContext(ctx, "failed to decode register request", slog.Any("error", err))
		sendError(h.logger, w, "Некорректное тело запроса", http.StatusBadRequest)
		return
	}

	login := validation.NormalizeLogin(req.Login)
	securityKey := validation.NormalizeSecurityKey(req.SecurityKey)

	if err := validation.ValidateLogin(login); err != nil {
		sendError(h.logger, w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := validation.ValidateSecurityKey(securityKey); err != nil {
		sendError(h.logger, w, err.Error(), http.StatusBadRequest)
		return
	}

	// Проверяем, существует ли пользователь
	if _, err := h.userStorage.GetUserByLogin(ctx, login); err == nil {
		h.logger.WarnContext(ctx, "user already exists", slog.String("login", login))
		sendError(h.logger, w, "Пользователь с таким логином уже существует", http.StatusBadRequest)
		return
	} else if !errors.Is(err, storage.ErrUserNotFound) {
		h.logger.ErrorContext(ctx, "failed to check existing user", slog.Any("error", err))
		sendError(h.logger, w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
		return
	}

	// Проверяем валидность учетных данных живым обращением к Pyrus
	if err := h.gateway.Check(ctx, login, securityKey); err != nil {
		h.logger.WarnContext(ctx, "pyrus credentials check failed",
			slog.String("login", login), slog.Any("error", err))
		sendError(h.logger, w, "Неверные учетные данные Pyrus: "+err.Error(), http.StatusBadRequest)
		return
	}

	// Ключ сохраняется как есть: он нужен для API Pyrus, хешировать его нельзя
	user := &models.User{
		Login:       login,
		SecurityKey: securityKey,
		IsActive:    true,
		CreatedAt:   time.Now().UTC(),
	}

	if err := h.userStorage.CreateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrUserAlreadyExists) {
			sendError(h.logger, w, "Пользователь с таким логином уже существует", http.StatusBadRequest)
			return
		}
		h.logger.ErrorContext(ctx, "failed to create user", slog.Any("error", err))
		sendError(h.logger, w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(ctx, "user registered successfully",
		slog.String("login", login),
		slog.Int64("user_id", user.ID))

	sendJSON(h.logger, w, user, http.StatusOK)
}

// Login обрабатывает POST /api/auth/login
// Аутентификация по сохраненной паре логин/ключ. Pyrus здесь не
// опрашивается: ключ был проверен при регистрации, протухший ключ
// обнаружится при первом проксируемом запросе.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.ErrorContext(ctx, "failed to decode login request", slog.Any("error", err))
		sendError(h.logger, w, "Некорректное тело запроса", http.StatusBadRequest)
		return
	}

	login := validation.NormalizeLogin(req.Login)
	securityKey := validation.NormalizeSecurityKey(req.SecurityKey)

	user, err := h.userStorage.GetUserByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			h.logger.WarnContext(ctx, "login failed: user not found", slog.String("login", login))
			sendError(h.logger, w, "Неверный логин или ключ безопасности", http.StatusUnauthorized)
			return
		}
		h.logger.ErrorContext(ctx, "failed to get user", slog.Any("error", err))
		sendError(h.logger, w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
		return
	}

	// Ключ хранится в открытом виде, сравнение строковое
	if user.SecurityKey != securityKey {
		h.logger.WarnContext(ctx, "login failed: invalid security key", slog.String("login", login))
		sendError(h.logger, w, "Неверный логин или ключ безопасности", http.StatusUnauthorized)
		return
	}

	if !user.IsActive {
		h.logger.WarnContext(ctx, "login failed: inactive user", slog.String("login", login))
		sendError(h.logger, w, "Пользователь неактивен", http.StatusBadRequest)
		return
	}

	accessToken, err := GenerateAccessToken(h.jwtConfig, user.Login)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to generate access token", slog.Any("error", err))
		sendError(h.logger, w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
		return
	}

	// Не критичная ошибка, логируем но не прерываем
	if err := h.userStorage.UpdateLastLogin(ctx, user.ID, time.Now().UTC()); err != nil {
		h.logger.WarnContext(ctx, "failed to update last login", slog.Any("error", err))
	}

	http.SetCookie(w, &http.Cookie{
		Name:   AccessTokenCookie,
		Value:  BearerPrefix + accessToken,
		Path:   "/",
		MaxAge: int(h.jwtConfig.AccessTokenTTL.Seconds()),
		// Куку читает JavaScript фронтенда, поэтому HttpOnly выключен
		HttpOnly: false,
		Secure:   false,
		SameSite: http.SameSiteLaxMode,
	})

	h.logger.InfoContext(ctx, "user logged in successfully",
		slog.String("login", login),
		slog.Int64("user_id", user.ID))

	sendJSON(h.logger, w, api.TokenResponse{
		AccessToken: accessToken,
		TokenType:   "bearer",
	}, http.StatusOK)
}

// Logout обрабатывает POST /api/auth/logout
// Сессия не хранится на сервере, выход сводится к удалению куки.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     AccessTokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		SameSite: http.SameSiteLaxMode,
	})

	sendJSON(h.logger, w, api.MessageResponse{Message: "Успешный выход из системы"}, http.StatusOK)
}

// Me обрабатывает GET /api/auth/me
// Возвращает текущего пользователя (устанавливается AuthMiddleware)
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		sendError(h.logger, w, "Not authenticated", http.StatusUnauthorized)
		return
	}

	sendJSON(h.logger, w, user, http.StatusOK)
}

// Users обрабатывает GET /api/auth/users?skip=&limit=
// Список всех пользователей
func (h *AuthHandler) Users(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	skip := queryInt(r, "skip", 0)
	limit := queryInt(r, "limit", 100)

	users, err := h.userStorage.ListUsers(ctx, skip, limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list users", slog.Any("error", err))
		sendError(h.logger, w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
		return
	}

	if users == nil {
		users = []*models.User{}
	}

	sendJSON(h.logger, w, users, http.StatusOK)
}

// queryInt читает целочисленный query параметр со значением по умолчанию
func queryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return def
	}
	return value
}
