package lookup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/lexiqai/echolisten/internal/observability"
	"github.com/lexiqai/echolisten/internal/vocab"
)

// ErrCacheMiss is returned by a Cache that has no entry.
var ErrCacheMiss = errors.New("cache miss")

// Cache stores definitions by lower-cased word.
type Cache interface {
	Get(ctx context.Context, word string) (vocab.WordDefinition, error)
	Set(ctx context.Context, word string, def vocab.WordDefinition) error
}

const keyPrefix = "echolisten:def:"

// RedisCache keeps definitions in Redis with a TTL.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache connects to the Redis server at url (redis://host:port/db).
func NewRedisCache(url string, ttl time.Duration) (*RedisCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	return &RedisCache{client: redis.NewClient(opts), ttl: ttl}, nil
}

// Ping checks the connection.
func (r *RedisCache) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the connection pool.
func (r *RedisCache) Close() error {
	return r.client.Close()
}

func (r *RedisCache) Get(ctx context.Context, word string) (vocab.WordDefinition, error) {
	raw, err := r.client.Get(ctx, keyPrefix+vocab.Key(word)).Bytes()
	if errors.Is(err, redis.Nil) {
		return vocab.WordDefinition{}, ErrCacheMiss
	}
	if err != nil {
		return vocab.WordDefinition{}, err
	}

	var def vocab.WordDefinition
	if err := json.Unmarshal(raw, &def); err != nil {
		return vocab.WordDefinition{}, fmt.Errorf("decode cached definition: %w", err)
	}
	return def, nil
}

func (r *RedisCache) Set(ctx context.Context, word string, def vocab.WordDefinition) error {
	raw, err := json.Marshal(def)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, keyPrefix+vocab.Key(word), raw, r.ttl).Err()
}

// Cached serves definitions from a cache before asking the wrapped definer.
// Cache failures are logged and bypassed.
type Cached struct {
	next   Definer
	cache  Cache
	logger zerolog.Logger
}

// WithCache wraps a definer with a cache.
func WithCache(next Definer, cache Cache) *Cached {
	return &Cached{
		next:   next,
		cache:  cache,
		logger: observability.Component("lookup"),
	}
}

// Name returns the wrapped provider name.
func (c *Cached) Name() string {
	return c.next.Name()
}

// Define returns the cached definition or fetches and stores a new one. The
// sentence only matters on a miss; definitions are cached per word.
func (c *Cached) Define(ctx context.Context, word, sentence string) (vocab.WordDefinition, error) {
	def, err := c.cache.Get(ctx, word)
	if err == nil {
		observability.RecordLookupCache(true)
		return def, nil
	}
	if !errors.Is(err, ErrCacheMiss) {
		c.logger.Warn().Err(err).Str("word", word).Msg("Definition cache read failed")
	}
	observability.RecordLookupCache(false)

	def, err = c.next.Define(ctx, word, sentence)
	if err != nil {
		return vocab.WordDefinition{}, err
	}
	if err := c.cache.Set(ctx, word, def); err != nil {
		c.logger.Warn().Err(err).Str("word", word).Msg("Definition cache write failed")
	}
	return def, nil
}
