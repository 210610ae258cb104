package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"photogram/internal/domain/models"
	"photogram/internal/lib/logger/sl"
	redisapp "photogram/internal/storage/redis"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

var ErrCacheMiss = errors.New("cache miss")

// ProfileCache stores encoded profiles by key.
type ProfileCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

type RedisProfileCache struct {
	Client *redisapp.Client
}

func NewRedisProfileCache(client *redisapp.Client) *RedisProfileCache {
	return &RedisProfileCache{Client: client}
}

func (c *RedisProfileCache) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := c.Client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, ErrCacheMiss
	}
	return val, err
}

func (c *RedisProfileCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.Client.Set(ctx, key, string(value), ttl).Err()
}

func (c *RedisProfileCache) Delete(ctx context.Context, key string) error {
	return c.Client.Del(ctx, key).Err()
}

// MemoryProfileCache keeps profiles in process when no redis is configured.
type MemoryProfileCache struct {
	client *gocache.Cache
}

func NewMemoryProfileCache(defaultExpiration, cleanupInterval time.Duration) *MemoryProfileCache {
	return &MemoryProfileCache{client: gocache.New(defaultExpiration, cleanupInterval)}
}

func (c *MemoryProfileCache) Get(_ context.Context, key string) ([]byte, error) {
	data, found := c.client.Get(key)
	if !found {
		return nil, ErrCacheMiss
	}
	return data.([]byte), nil
}

func (c *MemoryProfileCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.client.Set(key, value, ttl)
	return nil
}

func (c *MemoryProfileCache) Delete(_ context.Context, key string) error {
	c.client.Delete(key)
	return nil
}

// CachedProfileRepo is a read-through cache in front of a ProfileRepository.
// Counter updates invalidate the cached entry.
type CachedProfileRepo struct {
	log   *slog.Logger
	next  ProfileRepository
	cache ProfileCache
	ttl   time.Duration
}

func NewCachedProfileRepo(log *slog.Logger, next ProfileRepository, cache ProfileCache, ttl time.Duration) *CachedProfileRepo {
	return &CachedProfileRepo{
		log:   log,
		next:  next,
		cache: cache,
		ttl:   ttl,
	}
}

func profileKey(userID uuid.UUID) string {
	return "profile:" + userID.String()
}

func (r *CachedProfileRepo) ProfileByUser(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	const op = "repository.CachedProfileRepo.ProfileByUser"

	log := r.log.With(slog.String("op", op), slog.String("user_id", userID.String()))

	key := profileKey(userID)

	data, err := r.cache.Get(ctx, key)
	switch {
	case err == nil:
		var p models.Profile
		if err := json.Unmarshal(data, &p); err == nil {
			return &p, nil
		}
		log.Warn("dropping undecodable cached profile")
	case !errors.Is(err, ErrCacheMiss):
		log.Warn("profile cache read failed", sl.Err(err))
	}

	profile, err := r.next.ProfileByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if data, err := json.Marshal(profile); err == nil {
		if err := r.cache.Set(ctx, key, data, r.ttl); err != nil {
			log.Warn("profile cache write failed", sl.Err(err))
		}
	}

	return profile, nil
}

func (r *CachedProfileRepo) UpdateGalleriesTotal(ctx context.Context, userID uuid.UUID, total int) error {
	const op = "repository.CachedProfileRepo.UpdateGalleriesTotal"

	if err := r.next.UpdateGalleriesTotal(ctx, userID, total); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	r.invalidate(ctx, op, userID)

	return nil
}

func (r *CachedProfileRepo) UpdateCommentsTotal(ctx context.Context, userID uuid.UUID, total int) error {
	const op = "repository.CachedProfileRepo.UpdateCommentsTotal"

	if err := r.next.UpdateCommentsTotal(ctx, userID, total); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	r.invalidate(ctx, op, userID)

	return nil
}

func (r *CachedProfileRepo) invalidate(ctx context.Context, op string, userID uuid.UUID) {
	if err := r.cache.Delete(ctx, profileKey(userID)); err != nil {
		r.log.Warn("profile cache invalidation failed",
			slog.String("op", op),
			slog.String("user_id", userID.String()),
			sl.Err(err),
		)
	}
}
