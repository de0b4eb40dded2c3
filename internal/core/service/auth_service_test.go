package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/petadopt/adoption-api/internal/core/domain"
	"github.com/petadopt/adoption-api/internal/core/ports"
)

type stubUserRepo struct {
	users    map[string]*domain.User
	findByID int
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == user.Email {
			return nil, domain.ErrEmailTaken
		}
	}
	copy := cloneUser(user)
	copy.ID = primitive.NewObjectID().Hex()
	r.users[copy.ID] = cloneUser(copy)
	return cloneUser(copy), nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.findByID++
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

type stubIdentityCache struct {
	users  map[string]*domain.User
	getErr error
}

func (c *stubIdentityCache) Get(_ context.Context, id string) (*domain.User, bool, error) {
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	u, ok := c.users[id]
	return cloneUser(u), ok, nil
}

func (c *stubIdentityCache) Set(_ context.Context, u *domain.User) error {
	c.users[u.ID] = cloneUser(u)
	return nil
}

const testSecret = "secret"

func newTestAuthService(repo ports.UserRepository, cache ports.IdentityCache) *AuthService {
	return NewAuthService(repo, cache, AuthOptions{JWTSecret: testSecret, TokenTTL: time.Hour, BcryptCost: bcrypt.MinCost}, zerolog.Nop())
}

func registerInput(name, email string) ports.RegisterInput {
	return ports.RegisterInput{
		Name:            name,
		Email:           email,
		Phone:           "555-0100",
		Password:        "pass123",
		ConfirmPassword: "pass123",
	}
}

func TestAuthService_Register_Success(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestAuthService(repo, nil)

	res, err := svc.Register(context.Background(), registerInput("Alice", "alice@example.com"))
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if res.Token == "" || res.UserID == "" {
		t.Fatalf("expected token and user id, got %+v", res)
	}

	stored := repo.users[res.UserID]
	if stored == nil {
		t.Fatalf("user %s not persisted", res.UserID)
	}
	if stored.PasswordHash == "pass123" {
		t.Fatalf("expected password to be hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("pass123")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
}

func TestAuthService_Register_Validation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*ports.RegisterInput)
		want   string
	}{
		{"missing name", func(in *ports.RegisterInput) { in.Name = "" }, "name is required"},
		{"missing email", func(in *ports.RegisterInput) { in.Email = "" }, "email is required"},
		{"missing phone", func(in *ports.RegisterInput) { in.Phone = "" }, "phone is required"},
		{"missing password", func(in *ports.RegisterInput) { in.Password = "" }, "password is required"},
		{"missing confirmation", func(in *ports.RegisterInput) { in.ConfirmPassword = "" }, "confirmpassword is required"},
		{"mismatch", func(in *ports.RegisterInput) { in.ConfirmPassword = "other" }, "confirmpassword must match password"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := newStubUserRepo()
			svc := newTestAuthService(repo, nil)

			in := registerInput("Bob", "bob@example.com")
			tc.mutate(&in)

			_, err := svc.Register(context.Background(), in)
			if !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if err.Error() != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, err.Error())
			}
			if len(repo.users) != 0 {
				t.Fatalf("no user should be persisted, got %d", len(repo.users))
			}
		})
	}
}

func TestAuthService_Register_Duplicate(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestAuthService(repo, nil)

	if _, err := svc.Register(context.Background(), registerInput("Bob", "bob@example.com")); err != nil {
		t.Fatalf("first register failed: %v", err)
	}
	_, err := svc.Register(context.Background(), registerInput("Bobby", "bob@example.com"))
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if len(repo.users) != 1 {
		t.Fatalf("expected 1 user, got %d", len(repo.users))
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestAuthService(repo, nil)

	reg, err := svc.Register(context.Background(), registerInput("Carol", "carol@example.com"))
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	res, err := svc.Login(context.Background(), ports.LoginInput{Email: "carol@example.com", Password: "pass123"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if res.UserID != reg.UserID {
		t.Fatalf("expected user %s, got %s", reg.UserID, res.UserID)
	}

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(res.Token, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("token invalid: %v", err)
	}
	if claims["id"] != reg.UserID || claims["name"] != "Carol" {
		t.Fatalf("unexpected claims: %v", claims)
	}
}

func TestAuthService_Login_Failures(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestAuthService(repo, nil)
	_, _ = svc.Register(context.Background(), registerInput("Dave", "dave@example.com"))

	if _, err := svc.Login(context.Background(), ports.LoginInput{Email: "dave@example.com"}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := svc.Login(context.Background(), ports.LoginInput{Email: "ghost@example.com", Password: "x"}); err != domain.ErrUnknownEmail {
		t.Fatalf("expected ErrUnknownEmail, got %v", err)
	}
	if _, err := svc.Login(context.Background(), ports.LoginInput{Email: "dave@example.com", Password: "bad"}); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_ResolveIdentity(t *testing.T) {
	repo := newStubUserRepo()
	cache := &stubIdentityCache{users: make(map[string]*domain.User)}
	svc := newTestAuthService(repo, cache)

	reg, err := svc.Register(context.Background(), registerInput("Erin", "erin@example.com"))
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	user, err := svc.ResolveIdentity(context.Background(), reg.Token)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if user.ID != reg.UserID || user.Name != "Erin" {
		t.Fatalf("unexpected user: %+v", user)
	}
	if _, ok := cache.users[reg.UserID]; !ok {
		t.Fatal("expected identity to be cached")
	}

	// second resolve is served from the cache
	if _, err := svc.ResolveIdentity(context.Background(), reg.Token); err != nil {
		t.Fatalf("cached resolve failed: %v", err)
	}
	if repo.findByID != 1 {
		t.Fatalf("expected 1 repository lookup, got %d", repo.findByID)
	}
}

func TestAuthService_ResolveIdentity_CacheErrorFallsBack(t *testing.T) {
	repo := newStubUserRepo()
	cache := &stubIdentityCache{users: make(map[string]*domain.User), getErr: errors.New("redis down")}
	svc := newTestAuthService(repo, cache)

	reg, _ := svc.Register(context.Background(), registerInput("Fay", "fay@example.com"))
	if _, err := svc.ResolveIdentity(context.Background(), reg.Token); err != nil {
		t.Fatalf("expected fallback to repository, got %v", err)
	}
}

func TestAuthService_ResolveIdentity_Rejects(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestAuthService(repo, nil)

	if _, err := svc.ResolveIdentity(context.Background(), ""); err != domain.ErrAccessDenied {
		t.Fatalf("expected ErrAccessDenied, got %v", err)
	}
	if _, err := svc.ResolveIdentity(context.Background(), "garbage"); err != domain.ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}

	forged, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":  primitive.NewObjectID().Hex(),
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("other-secret"))
	if _, err := svc.ResolveIdentity(context.Background(), forged); err != domain.ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken for wrong secret, got %v", err)
	}

	unknown, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":  primitive.NewObjectID().Hex(),
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	if _, err := svc.ResolveIdentity(context.Background(), unknown); err != domain.ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken for unknown user, got %v", err)
	}

	expired, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":  primitive.NewObjectID().Hex(),
		"exp": time.Now().Add(-time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	if _, err := svc.ResolveIdentity(context.Background(), expired); err != domain.ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestAuthService_GetUser(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestAuthService(repo, nil)
	reg, _ := svc.Register(context.Background(), registerInput("Gus", "gus@example.com"))

	if _, err := svc.GetUser(context.Background(), "nope"); err != domain.ErrInvalidID {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
	if _, err := svc.GetUser(context.Background(), primitive.NewObjectID().Hex()); err != domain.ErrUserNotFound {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	user, err := svc.GetUser(context.Background(), reg.UserID)
	if err != nil || user.Email != "gus@example.com" {
		t.Fatalf("unexpected result: %+v, %v", user, err)
	}
}
