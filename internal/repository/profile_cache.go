package repository

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const profileNameTTL = 10 * time.Minute

// CachedProfileStore fronts a ProfileStore with a Redis read-through cache for
// display names. Cache failures degrade to the backing store.
type CachedProfileStore struct {
	inner  ProfileStore
	client *redis.Client
	logger *zap.Logger
}

// NewCachedProfileStore wraps inner with a Redis name cache.
func NewCachedProfileStore(inner ProfileStore, client *redis.Client, logger *zap.Logger) *CachedProfileStore {
	return &CachedProfileStore{inner: inner, client: client, logger: logger}
}

func (c *CachedProfileStore) Get(ctx context.Context, email string) (*Profile, error) {
	return c.inner.Get(ctx, email)
}

func (c *CachedProfileStore) Create(ctx context.Context, profile *Profile) error {
	if err := c.inner.Create(ctx, profile); err != nil {
		return err
	}
	c.cacheName(ctx, profile.Email, profile.Name)
	return nil
}

func (c *CachedProfileStore) SetName(ctx context.Context, email, name string) error {
	if err := c.inner.SetName(ctx, email, name); err != nil {
		return err
	}
	c.cacheName(ctx, email, name)
	return nil
}

// GetName resolves just the display name, hitting Redis first.
func (c *CachedProfileStore) GetName(ctx context.Context, email string) (string, error) {
	if c.client != nil {
		cached, err := c.client.Get(ctx, nameKey(email)).Result()
		if err == nil {
			return cached, nil
		}
		if err != redis.Nil {
			c.logger.Debug("profile cache read failed", zap.Error(err))
		}
	}
	profile, err := c.inner.Get(ctx, email)
	if err != nil {
		return "", err
	}
	c.cacheName(ctx, email, profile.Name)
	return profile.Name, nil
}

func (c *CachedProfileStore) cacheName(ctx context.Context, email, name string) {
	if c.client == nil || name == "" {
		return
	}
	if err := c.client.Set(ctx, nameKey(email), name, profileNameTTL).Err(); err != nil {
		c.logger.Debug("profile cache write failed", zap.Error(err))
	}
}

func nameKey(email string) string {
	return "profile:name:" + strings.ToLower(email)
}
