// Команда inituser создает первого пользователя из переменных окружения
// PYRUS_LOGIN и PYRUS_SECURITY_KEY. Если переменные не заданы, учетные
// данные запрашиваются интерактивно (ключ вводится скрыто).
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/pyrus-tasks/backend/internal/config"
	"github.com/pyrus-tasks/backend/internal/models"
	"github.com/pyrus-tasks/backend/internal/pyrus"
	"github.com/pyrus-tasks/backend/internal/server/storage"
	"github.com/pyrus-tasks/backend/internal/server/storage/postgres"
	"github.com/pyrus-tasks/backend/internal/server/storage/sqlite"
	"github.com/pyrus-tasks/backend/internal/validation"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Ошибка инициализации: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Инициализация завершена успешно")
}

func run() error {
	cfg, err := config.New()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx := context.Background()

	login, securityKey, err := credentials(cfg)
	if err != nil {
		return err
	}

	login = validation.NormalizeLogin(login)
	securityKey = validation.NormalizeSecurityKey(securityKey)

	if err := validation.ValidateLogin(login); err != nil {
		return err
	}
	if err := validation.ValidateSecurityKey(securityKey); err != nil {
		return err
	}

	// Живая проверка учетных данных в Pyrus
	client := pyrus.NewClient(cfg.Pyrus.APIURL, login, securityKey)
	if err := client.Auth(ctx); err != nil {
		return fmt.Errorf("проверка учетных данных Pyrus не пройдена: %w", err)
	}
	fmt.Println("Учетные данные Pyrus валидны")

	userStorage, err := newUserStorage(ctx, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to open user storage: %w", err)
	}
	defer func() { _ = userStorage.Close() }()

	user := &models.User{
		Login:       login,
		SecurityKey: securityKey,
		IsActive:    true,
	}

	if err := userStorage.CreateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrUserAlreadyExists) {
			fmt.Printf("Пользователь %s уже существует в базе данных\n", login)
			return nil
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	fmt.Printf("Пользователь %s успешно создан, ID: %d\n", login, user.ID)
	return nil
}

// credentials берет логин и ключ из окружения, при их отсутствии
// спрашивает интерактивно
func credentials(cfg *config.Config) (login, securityKey string, err error) {
	login = cfg.Pyrus.Login
	securityKey = cfg.Pyrus.SecurityKey

	reader := bufio.NewReader(os.Stdin)

	if login == "" {
		fmt.Print("Логин Pyrus: ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return "", "", fmt.Errorf("failed to read login: %w", err)
		}
		login = strings.TrimSpace(line)
	}

	if securityKey == "" {
		fmt.Print("Ключ безопасности Pyrus: ")
		keyBytes, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err != nil {
			return "", "", fmt.Errorf("failed to read security key: %w", err)
		}
		securityKey = string(keyBytes)
	}

	return login, securityKey, nil
}

func newUserStorage(ctx context.Context, databaseURL string) (storage.UserStorage, error) {
	if strings.HasPrefix(databaseURL, "postgres://") || strings.HasPrefix(databaseURL, "postgresql://") {
		return postgres.New(ctx, databaseURL)
	}
	return sqlite.New(ctx, databaseURL)
}
