package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/petadopt/adoption-api/internal/core/domain"
)

const defaultIdentityTTL = 5 * time.Minute

// IdentityCache keeps resolved users in Redis so bearer tokens can be turned
// into identities without a Mongo round trip.
// Key format: identity:<user_id>
type IdentityCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewIdentityCache wraps client. Entries expire after ttl.
func NewIdentityCache(client *redis.Client, ttl time.Duration) *IdentityCache {
	if ttl <= 0 {
		ttl = defaultIdentityTTL
	}
	return &IdentityCache{client: client, ttl: ttl}
}

// cachedIdentity is the stored form; it has no room for a password hash.
type cachedIdentity struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Image     string    `json:"image,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Get returns the cached user, or ok=false on a miss.
func (c *IdentityCache) Get(ctx context.Context, userID string) (*domain.User, bool, error) {
	raw, err := c.client.Get(ctx, c.key(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("identity cache get: %w", err)
	}

	var ci cachedIdentity
	if err := json.Unmarshal(raw, &ci); err != nil {
		return nil, false, fmt.Errorf("identity cache decode: %w", err)
	}
	return &domain.User{
		ID:        ci.ID,
		Name:      ci.Name,
		Email:     ci.Email,
		Phone:     ci.Phone,
		Image:     ci.Image,
		CreatedAt: ci.CreatedAt,
	}, true, nil
}

// Set stores user for the configured TTL.
func (c *IdentityCache) Set(ctx context.Context, user *domain.User) error {
	raw, err := json.Marshal(cachedIdentity{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Phone:     user.Phone,
		Image:     user.Image,
		CreatedAt: user.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("identity cache encode: %w", err)
	}
	return c.client.Set(ctx, c.key(user.ID), raw, c.ttl).Err()
}

func (c *IdentityCache) key(userID string) string {
	return "identity:" + userID
}
