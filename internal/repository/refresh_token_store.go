package repository

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/fitshare/auth-service/internal/domain"
	"github.com/fitshare/auth-service/pkg/database"
	"github.com/redis/go-redis/v9"
)

const refreshTokenKeyPrefix = "refresh_token:"

// redisRefreshTokenStore keeps refresh tokens in Redis. Keys are the SHA-256
// of the token so the raw credential is never stored; Redis TTL handles expiry.
type redisRefreshTokenStore struct {
	redis *database.Redis
}

// NewRefreshTokenStore creates a Redis-backed refresh token store
func NewRefreshTokenStore(redis *database.Redis) RefreshTokenStore {
	return &redisRefreshTokenStore{redis: redis}
}

func (s *redisRefreshTokenStore) Set(ctx context.Context, token, subject string, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("refresh token ttl must be positive, got %v", ttl)
	}

	if err := s.redis.Client.Set(ctx, refreshTokenKey(token), subject, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store refresh token: %w", err)
	}
	return nil
}

func (s *redisRefreshTokenStore) Get(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", domain.ErrRefreshTokenNotFound
	}

	subject, err := s.redis.Client.Get(ctx, refreshTokenKey(token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", domain.ErrRefreshTokenNotFound
		}
		return "", fmt.Errorf("failed to get refresh token: %w", err)
	}
	return subject, nil
}

func (s *redisRefreshTokenStore) Delete(ctx context.Context, token string) error {
	if err := s.redis.Client.Del(ctx, refreshTokenKey(token)).Err(); err != nil {
		return fmt.Errorf("failed to delete refresh token: %w", err)
	}
	return nil
}

func refreshTokenKey(token string) string {
	hash := sha256.Sum256([]byte(token))
	return refreshTokenKeyPrefix + hex.EncodeToString(hash[:])
}
