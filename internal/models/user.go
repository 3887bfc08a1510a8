package models

import "time"

// User представляет локального пользователя сервиса.
// SecurityKey хранится как есть: это не локальный пароль, а секретный ключ
// Pyrus, который передается в API Pyrus при каждом обращении.
type User struct {
	ID          int64      `json:"id"`         // автоинкрементный ID
	Login       string     `json:"login"`      // уникальный логин (email в Pyrus)
	SecurityKey string     `json:"-"`          // ключ безопасности Pyrus, наружу не отдается
	IsActive    bool       `json:"is_active"`  // активен ли пользователь
	CreatedAt   time.Time  `json:"created_at"` // время создания
	LastLogin   *time.Time `json:"last_login"` // время последнего входа (nil, если не входил)
}
