package validation

import (
	"fmt"
	"strings"
)

const (
	// MaxLoginLen максимальная длина логина
	MaxLoginLen = 255
	// MaxSecurityKeyLen максимальная длина ключа безопасности
	MaxSecurityKeyLen = 512
)

// NormalizeLogin убирает пробелы по краям логина.
// Pyrus использует email в качестве логина, поэтому дополнительно
// приводить регистр или фильтровать символы здесь нельзя.
func NormalizeLogin(login string) string {
	return strings.TrimSpace(login)
}

// NormalizeSecurityKey убирает пробелы по краям ключа безопасности.
// Ключ передается в Pyrus как есть, любая другая нормализация его сломает.
func NormalizeSecurityKey(key string) string {
	return strings.TrimSpace(key)
}

// ValidateLogin проверяет, что логин непустой и разумной длины.
// Формат логина определяет Pyrus, локально проверяем только границы.
func ValidateLogin(login string) error {
	if login == "" {
		return fmt.Errorf("login cannot be empty")
	}

	if len(login) > MaxLoginLen {
		return fmt.Errorf("login must not exceed %d characters", MaxLoginLen)
	}

	return nil
}

// ValidateSecurityKey проверяет, что ключ безопасности непустой.
func ValidateSecurityKey(key string) error {
	if key == "" {
		return fmt.Errorf("security key cannot be empty")
	}

	if len(key) > MaxSecurityKeyLen {
		return fmt.Errorf("security key must not exceed %d characters", MaxSecurityKeyLen)
	}

	return nil
}
