package ports

import (
	"context"

	"github.com/petadopt/adoption-api/internal/core/domain"
)

// UserRepository defines persistence operations for user accounts.
type UserRepository interface {
	// Create inserts a user and returns it with its ID assigned.
	// Returns domain.ErrEmailTaken when the email is already registered.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
}

// IdentityCache stores resolved users keyed by ID. Implementations must never
// persist password hashes.
type IdentityCache interface {
	Get(ctx context.Context, userID string) (*domain.User, bool, error)
	Set(ctx context.Context, user *domain.User) error
}
