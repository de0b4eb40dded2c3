package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/petadopt/adoption-api/internal/core/domain"
	"github.com/petadopt/adoption-api/internal/core/ports"
)

// IdentityKey is the echo.Context key holding the authenticated *domain.User.
const IdentityKey = "identity"

// Auth resolves the bearer token to a user and stores it under IdentityKey.
func Auth(resolver ports.IdentityResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, err := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if err != nil {
				return err
			}

			user, err := resolver.ResolveIdentity(c.Request().Context(), token)
			if err != nil {
				return err
			}

			c.Set(IdentityKey, user)
			return next(c)
		}
	}
}

func bearerToken(header string) (string, error) {
	if header == "" {
		return "", domain.ErrAccessDenied
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", domain.ErrInvalidToken
	}
	return strings.TrimSpace(parts[1]), nil
}
