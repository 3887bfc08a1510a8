package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config содержит конфигурацию сервера, читается из переменных окружения.
type Config struct {
	Address   string    `env:"SERVER_ADDRESS" envDefault:":8000"`
	LogLevel  string    `env:"LOG_LEVEL" envDefault:"info"`
	Database  Database  `envPrefix:""`
	Auth      Auth      `envPrefix:""`
	Pyrus     Pyrus     `envPrefix:"PYRUS_"`
	Inbox     Inbox     `envPrefix:"INBOX_"`
	RateLimit RateLimit `envPrefix:"RATE_LIMIT_"`
}

// Database содержит параметры подключения к базе данных.
// DSN вида postgres:// подключает PostgreSQL, любое другое значение
// трактуется как путь к файлу SQLite (fallback по умолчанию).
type Database struct {
	URL string `env:"DATABASE_URL" envDefault:"pyrus_users.db"`
}

// Auth содержит параметры сессионных токенов.
type Auth struct {
	SecretKey      string        `env:"SECRET_KEY" envDefault:"your-secret-key-change-in-production"`
	AccessTokenTTL time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"30m"`
}

// Pyrus содержит параметры доступа к API Pyrus.
// Login и SecurityKey используются только для начальной инициализации
// пользователя (cmd/inituser), сервер на них не полагается.
type Pyrus struct {
	APIURL      string `env:"API_URL" envDefault:"https://api.pyrus.com/v4"`
	Login       string `env:"LOGIN"`
	SecurityKey string `env:"SECURITY_KEY"`
}

// Inbox содержит параметры обогащения inbox_full: форма и имена полей,
// из которых берутся описание, срок и этап.
type Inbox struct {
	FormID           int    `env:"FORM_ID" envDefault:"829354"`
	DescriptionField string `env:"DESCRIPTION_FIELD" envDefault:"Описание/ Description"`
	DueField         string `env:"DUE_FIELD" envDefault:"Срок/Term"`
	StageField       string `env:"STAGE_FIELD" envDefault:"Этап/Stage"`
}

// RateLimit содержит параметры ограничения частоты запросов к /auth.
type RateLimit struct {
	Requests int           `env:"REQUESTS" envDefault:"20"`
	Window   time.Duration `env:"WINDOW" envDefault:"1m"`
}

// New загружает конфигурацию из переменных окружения.
func New() (*Config, error) {
	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &cfg, nil
}
