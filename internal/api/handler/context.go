package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/petadopt/adoption-api/internal/api/middleware"
	"github.com/petadopt/adoption-api/internal/core/domain"
)

// ctxIdentity returns the user injected by the Auth middleware. A missing
// identity means the route was registered without the middleware.
func ctxIdentity(c echo.Context) (*domain.User, error) {
	user, _ := c.Get(middleware.IdentityKey).(*domain.User)
	if user == nil {
		return nil, domain.ErrAccessDenied
	}
	return user, nil
}
