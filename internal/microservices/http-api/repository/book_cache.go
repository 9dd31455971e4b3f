package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"elibrary/internal/microservices/http-api/models"

	"github.com/redis/go-redis/v9"
)

// BookCache keeps single books in Redis keyed by id. A nil *BookCache is a
// valid no-op cache so the API runs without Redis.
type BookCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisClient returns a go-redis client from a URL (e.g. redis://localhost:6379/0).
// It does not dial; callers ping to learn whether the server is up.
func NewRedisClient(redisURL string) (*redis.Client, error) {
	if redisURL == "" {
		return nil, errors.New("empty redis url")
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return redis.NewClient(opts), nil
}

func NewBookCache(client *redis.Client, ttl time.Duration) *BookCache {
	return &BookCache{client: client, ttl: ttl}
}

func bookKey(id string) string {
	return "book:" + id
}

// Get returns the cached book, or (nil, nil) on a miss.
func (c *BookCache) Get(ctx context.Context, id string) (*models.Book, error) {
	if c == nil || c.client == nil {
		return nil, nil
	}
	raw, err := c.client.Get(ctx, bookKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var b models.Book
	if err := json.Unmarshal(raw, &b); err != nil {
		return nil, fmt.Errorf("decode cached book: %w", err)
	}
	return &b, nil
}

func (c *BookCache) Set(ctx context.Context, b *models.Book) error {
	if c == nil || c.client == nil {
		return nil
	}
	raw, err := json.Marshal(b)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, bookKey(b.ID), raw, c.ttl).Err()
}

func (c *BookCache) Invalidate(ctx context.Context, id string) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Del(ctx, bookKey(id)).Err()
}

// cachedBookRepository is a read-through cache for GetByID in front of another
// BookRepository. Writes go to the store first and then drop the cached entry.
type cachedBookRepository struct {
	BookRepository
	cache  *BookCache
	logger *slog.Logger
}

// NewCachedBookRepository wraps inner with cache. Cache failures are logged and
// never fail the request: the store stays authoritative.
func NewCachedBookRepository(inner BookRepository, cache *BookCache, logger *slog.Logger) BookRepository {
	if cache == nil {
		return inner
	}
	return &cachedBookRepository{BookRepository: inner, cache: cache, logger: logger}
}

func (r *cachedBookRepository) GetByID(ctx context.Context, id string) (*models.Book, error) {
	if b, err := r.cache.Get(ctx, id); err != nil {
		r.logger.Warn("book cache read failed", "book_id", id, "error", err)
	} else if b != nil {
		return b, nil
	}

	b, err := r.BookRepository.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := r.cache.Set(ctx, b); err != nil {
		r.logger.Warn("book cache write failed", "book_id", id, "error", err)
	}
	return b, nil
}

func (r *cachedBookRepository) Update(ctx context.Context, b *models.Book) (*models.Book, error) {
	updated, err := r.BookRepository.Update(ctx, b)
	r.invalidate(ctx, b.ID)
	return updated, err
}

func (r *cachedBookRepository) Delete(ctx context.Context, id string) error {
	err := r.BookRepository.Delete(ctx, id)
	r.invalidate(ctx, id)
	return err
}

func (r *cachedBookRepository) Borrow(ctx context.Context, id, userID string) (*models.Book, error) {
	b, err := r.BookRepository.Borrow(ctx, id, userID)
	r.invalidate(ctx, id)
	return b, err
}

func (r *cachedBookRepository) Return(ctx context.Context, id, userID string) (*models.Book, error) {
	b, err := r.BookRepository.Return(ctx, id, userID)
	r.invalidate(ctx, id)
	return b, err
}

func (r *cachedBookRepository) invalidate(ctx context.Context, id string) {
	if err := r.cache.Invalidate(ctx, id); err != nil {
		r.logger.Warn("book cache invalidation failed", "book_id", id, "error", err)
	}
}
