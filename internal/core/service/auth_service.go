package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/petadopt/adoption-api/internal/pkg/metrics"
	"github.com/petadopt/adoption-api/internal/core/domain"
	"github.com/petadopt/adoption-api/internal/core/ports"
	"github.com/petadopt/adoption-api/internal/pkg/validation"
)

const authenticatedMessage = "you are authenticated"

// AuthOptions tunes token issuance and hashing.
type AuthOptions struct {
	JWTSecret  string
	TokenTTL   time.Duration
	BcryptCost int
}

// AuthService implements registration, login and token resolution.
type AuthService struct {
	repo      ports.UserRepository
	cache     ports.IdentityCache
	validator *validation.Validator
	opts      AuthOptions
	logger    zerolog.Logger
}

// NewAuthService wires an AuthService. cache may be nil.
func NewAuthService(repo ports.UserRepository, cache ports.IdentityCache, opts AuthOptions, logger zerolog.Logger) *AuthService {
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = 24 * time.Hour
	}
	if opts.BcryptCost == 0 {
		opts.BcryptCost = 12
	}
	return &AuthService{
		repo:      repo,
		cache:     cache,
		validator: validation.New(),
		opts:      opts,
		logger:    logger,
	}
}

func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}

	if _, err := s.repo.FindByEmail(ctx, in.Email); err == nil {
		return nil, domain.ErrEmailTaken
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("register: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.opts.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("register: hash password: %w", err)
	}

	now := time.Now().UTC()
	created, err := s.repo.Create(ctx, &domain.User{
		Name:         in.Name,
		Email:        in.Email,
		Phone:        in.Phone,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, err
	}

	metrics.UsersRegisteredTotal.Inc()
	s.logger.Info().Str("user_id", created.ID).Msg("user registered")

	return s.issue(created)
}

func (s *AuthService) Login(ctx context.Context, in ports.LoginInput) (*ports.AuthResult, error) {
	if err := s.validator.Validate(in); err != nil {
		metrics.LoginsTotal.WithLabelValues("invalid").Inc()
		return nil, err
	}

	user, err := s.repo.FindByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			metrics.LoginsTotal.WithLabelValues("unknown_email").Inc()
			return nil, domain.ErrUnknownEmail
		}
		return nil, fmt.Errorf("login: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)) != nil {
		metrics.LoginsTotal.WithLabelValues("bad_password").Inc()
		return nil, domain.ErrInvalidCredentials
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	return s.issue(user)
}

// ResolveIdentity verifies token and loads the user it was issued to.
func (s *AuthService) ResolveIdentity(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, domain.ErrAccessDenied
	}

	claims := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(s.opts.JWTSecret), nil
	})
	if err != nil || !tkn.Valid {
		return nil, domain.ErrInvalidToken
	}

	userID, _ := claims["id"].(string)
	if !domain.ValidID(userID) {
		return nil, domain.ErrInvalidToken
	}

	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, userID)
		if err != nil {
			s.logger.Warn().Err(err).Str("user_id", userID).Msg("identity cache read failed")
		} else if ok {
			return cached, nil
		}
	}

	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidToken
		}
		return nil, fmt.Errorf("resolve identity: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, user); err != nil {
			s.logger.Warn().Err(err).Str("user_id", userID).Msg("identity cache write failed")
		}
	}
	return user, nil
}

// GetUser returns the public profile of a user.
func (s *AuthService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	if !domain.ValidID(id) {
		return nil, domain.ErrInvalidID
	}
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AuthService) issue(user *domain.User) (*ports.AuthResult, error) {
	token, err := s.generateToken(user)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &ports.AuthResult{Message: authenticatedMessage, Token: token, UserID: user.ID}, nil
}

func (s *AuthService) generateToken(user *domain.User) (string, error) {
	claims := jwt.MapClaims{
		"id":   user.ID,
		"name": user.Name,
		"exp":  time.Now().Add(s.opts.TokenTTL).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.opts.JWTSecret))
}
