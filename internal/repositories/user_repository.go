package repositories

import (
	"context"

	"promptly/internal/models"
)

// UserRepository defines the interface for user data access. Usernames are
// normalized by the implementation on both read and write.
type UserRepository interface {
	Create(ctx context.Context, username, passwordHash string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByID(ctx context.Context, id models.UserID) (*models.User, error)
}
