package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/prn-tf/sentinel-portal/internal/config"
	"github.com/prn-tf/sentinel-portal/internal/domain"
)

// keyPrefix namespaces session keys in Redis.
const keyPrefix = "sentinel:session:"

// RedisStore implements Store using Redis. Sessions survive process
// restarts and are shared across portal instances. Expiry is delegated to
// Redis key TTLs.
type RedisStore struct {
	client *redis.Client
	logger zerolog.Logger
}

// NewRedisStore creates a Redis-backed session store and verifies the
// connection.
func NewRedisStore(ctx context.Context, cfg config.RedisConfig, logger zerolog.Logger) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr(),
		Password:    cfg.Password,
		DB:          cfg.DB,
		PoolSize:    cfg.PoolSize,
		DialTimeout: cfg.DialTimeout,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	logger.Info().
		Str("addr", cfg.Addr()).
		Int("db", cfg.DB).
		Msg("connected to Redis session store")

	return &RedisStore{
		client: client,
		logger: logger.With().Str("component", "session_redis").Logger(),
	}, nil
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Put stores a session until its expiry.
func (s *RedisStore) Put(ctx context.Context, sess *domain.Session) error {
	ttl := time.Until(sess.ExpiresAt)
	if ttl <= 0 {
		// Already expired; storing it would be indistinguishable from not.
		return nil
	}

	payload, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := s.client.Set(ctx, keyPrefix+sess.Token, payload, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}

	return nil
}

// Get retrieves a session by token.
func (s *RedisStore) Get(ctx context.Context, token string) (*domain.Session, error) {
	payload, err := s.client.Get(ctx, keyPrefix+token).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var sess domain.Session
	if err := json.Unmarshal(payload, &sess); err != nil {
		// Corrupt payload: treat as missing rather than failing the visitor.
		s.logger.Warn().Err(err).Msg("discarding undecodable session payload")
		_ = s.client.Del(ctx, keyPrefix+token).Err()
		return nil, domain.ErrSessionNotFound
	}

	if sess.Expired(time.Now()) {
		return nil, domain.ErrSessionNotFound
	}

	return &sess, nil
}

// Delete removes a session by token.
func (s *RedisStore) Delete(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, keyPrefix+token).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// Ensure RedisStore implements Store.
var _ Store = (*RedisStore)(nil)
