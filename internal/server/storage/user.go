package storage

import (
	"context"
	"time"

	"github.com/pyrus-tasks/backend/internal/models"
)

// UserStorage defines interface for user credential persistence
type UserStorage interface {
	// CreateUser creates a new user and fills in the generated ID
	// Returns ErrUserAlreadyExists if login is taken
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByLogin retrieves user by login
	// Returns ErrUserNotFound if user doesn't exist
	GetUserByLogin(ctx context.Context, login string) (*models.User, error)

	// GetUserByID retrieves user by ID
	// Returns ErrUserNotFound if user doesn't exist
	GetUserByID(ctx context.Context, userID int64) (*models.User, error)

	// ListUsers retrieves users ordered by ID with offset/limit paging
	ListUsers(ctx context.Context, offset, limit int) ([]*models.User, error)

	// UpdateLastLogin updates the last login timestamp
	// Returns ErrUserNotFound if user doesn't exist
	UpdateLastLogin(ctx context.Context, userID int64, lastLogin time.Time) error

	// Close releases the underlying connections
	Close() error
}
