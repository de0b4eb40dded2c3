package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/petadopt/adoption-api/internal/core/domain"
)

type stubResolver struct {
	tokens map[string]*domain.User
	seen   string
}

func (r *stubResolver) ResolveIdentity(_ context.Context, token string) (*domain.User, error) {
	r.seen = token
	u, ok := r.tokens[token]
	if !ok {
		return nil, domain.ErrInvalidToken
	}
	return u, nil
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	e := echo.New()
	alice := &domain.User{ID: "u1", Name: "alice"}
	resolver := &stubResolver{tokens: map[string]*domain.User{"good": alice}}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer good")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	handler := Auth(resolver)(func(c echo.Context) error {
		called = true
		if c.Get(IdentityKey) != alice {
			t.Fatalf("identity not set")
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
	if resolver.seen != "good" {
		t.Fatalf("resolver got %q", resolver.seen)
	}
}

func TestAuthMiddleware_Rejects(t *testing.T) {
	cases := []struct {
		name   string
		header string
		want   error
	}{
		{"missing header", "", domain.ErrAccessDenied},
		{"wrong scheme", "Token abc", domain.ErrInvalidToken},
		{"empty bearer", "Bearer ", domain.ErrInvalidToken},
		{"unknown token", "Bearer nope", domain.ErrInvalidToken},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			c := e.NewContext(req, httptest.NewRecorder())

			handler := Auth(&stubResolver{})(func(c echo.Context) error {
				t.Fatalf("should not reach next")
				return nil
			})

			if err := handler(c); err != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}
