package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/petadopt/adoption-api/internal/core/domain"
	"github.com/petadopt/adoption-api/internal/core/ports"
)

type stubAuth struct{}

func (stubAuth) Register(context.Context, ports.RegisterInput) (*ports.AuthResult, error) {
	return nil, domain.ErrEmailTaken
}

func (stubAuth) Login(context.Context, ports.LoginInput) (*ports.AuthResult, error) {
	return nil, domain.ErrUnknownEmail
}

func (stubAuth) GetUser(context.Context, string) (*domain.User, error) {
	return nil, domain.ErrUserNotFound
}

func (stubAuth) ResolveIdentity(_ context.Context, token string) (*domain.User, error) {
	if token != "good" {
		return nil, domain.ErrInvalidToken
	}
	return &domain.User{ID: "u1", Name: "Alice"}, nil
}

type stubPets struct{ ports.PetService }

func (stubPets) ListAll(context.Context) ([]*domain.Pet, error) {
	return []*domain.Pet{{ID: "p1"}}, nil
}

func (stubPets) ListOwnedBy(context.Context, *domain.User) ([]*domain.Pet, error) {
	return nil, domain.ErrNoPets
}

func (stubPets) GetByID(_ context.Context, id string) (*domain.Pet, error) {
	if id == "missing" {
		return nil, domain.ErrPetNotFound
	}
	return &domain.Pet{ID: id}, nil
}

func TestRouter_Routes(t *testing.T) {
	e := NewRouter(Dependencies{
		AuthService: stubAuth{},
		PetService:  stubPets{},
		Logger:      zerolog.Nop(),
	})

	cases := []struct {
		name     string
		method   string
		path     string
		token    string
		body     string
		wantCode int
		wantMsg  string
	}{
		{"list is public", http.MethodGet, "/pets", "", "", http.StatusOK, ""},
		{"get is public", http.MethodGet, "/pets/p1", "", "", http.StatusOK, ""},
		{"missing pet", http.MethodGet, "/pets/missing", "", "", http.StatusNotFound, "pet not found"},
		{"mine needs token", http.MethodGet, "/pets/mine", "", "", http.StatusUnprocessableEntity, "access denied"},
		{"mine rejects bad token", http.MethodGet, "/pets/mine", "bad", "", http.StatusUnprocessableEntity, "invalid token"},
		{"mine empty", http.MethodGet, "/pets/mine", "good", "", http.StatusUnprocessableEntity, "no pets registered"},
		{"create needs token", http.MethodPost, "/pets", "", "", http.StatusUnprocessableEntity, "access denied"},
		{"schedule needs token", http.MethodPatch, "/pets/schedule/p1", "", "", http.StatusUnprocessableEntity, "access denied"},
		{"me needs token", http.MethodGet, "/users/me", "", "", http.StatusUnprocessableEntity, "access denied"},
		{"me", http.MethodGet, "/users/me", "good", "", http.StatusOK, ""},
		{"user not found", http.MethodGet, "/users/u9", "", "", http.StatusNotFound, "user not found"},
		{"register conflict", http.MethodPost, "/users/register", "", `{"email":"a@x.io"}`, http.StatusUnprocessableEntity, domain.ErrEmailTaken.Error()},
		{"liveness", http.MethodGet, "/health", "", "", http.StatusOK, ""},
		{"readiness without checks", http.MethodGet, "/health/ready", "", "", http.StatusOK, ""},
		{"metrics", http.MethodGet, "/metrics", "", "", http.StatusOK, ""},
		{"unknown route", http.MethodGet, "/nope", "", "", http.StatusNotFound, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, strings.NewReader(tc.body))
			if tc.body != "" {
				req.Header.Set("Content-Type", "application/json")
			}
			if tc.token != "" {
				req.Header.Set("Authorization", "Bearer "+tc.token)
			}
			rec := httptest.NewRecorder()

			e.ServeHTTP(rec, req)

			if rec.Code != tc.wantCode {
				t.Fatalf("expected %d, got %d (%s)", tc.wantCode, rec.Code, rec.Body.String())
			}
			if tc.wantMsg == "" {
				return
			}
			var resp errorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
			if resp.Message != tc.wantMsg {
				t.Fatalf("expected message %q, got %q", tc.wantMsg, resp.Message)
			}
		})
	}
}
