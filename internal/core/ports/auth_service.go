package ports

import (
	"context"

	"github.com/petadopt/adoption-api/internal/core/domain"
)

// RegisterInput carries the registration form.
type RegisterInput struct {
	Name            string `json:"name"            validate:"required"`
	Email           string `json:"email"           validate:"required,email"`
	Phone           string `json:"phone"           validate:"required"`
	Password        string `json:"password"        validate:"required"`
	ConfirmPassword string `json:"confirmpassword" validate:"required,eqfield=Password"`
}

// LoginInput carries login credentials.
type LoginInput struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthResult is returned after a successful register or login.
type AuthResult struct {
	Message string
	Token   string
	UserID  string
}

// IdentityResolver turns a bearer token into the user it was issued to.
type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, token string) (*domain.User, error)
}

type AuthService interface {
	IdentityResolver
	Register(ctx context.Context, input RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, input LoginInput) (*AuthResult, error)
	GetUser(ctx context.Context, id string) (*domain.User, error)
}
