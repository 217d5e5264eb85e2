// Package redis holds short-lived opaque tokens: email verification and
// password reset. TTL is the whole point; nothing here survives expiry.
package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/GuideNet/GuideNet/internal/config"
	"github.com/GuideNet/GuideNet/internal/domain"
)

const (
	verifyPrefix = "verify:"
	resetPrefix  = "reset:"
)

type TokenStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewTokenStore(ctx context.Context, cfg config.RedisConfig, ttl time.Duration) (*TokenStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return &TokenStore{client: client, ttl: ttl}, nil
}

func (s *TokenStore) Close() error { return s.client.Close() }

func (s *TokenStore) SaveVerification(ctx context.Context, token string, uid domain.UserID) error {
	return s.client.Set(ctx, verifyPrefix+token, string(uid), s.ttl).Err()
}

// ConsumeVerification resolves and deletes the token in one round trip, so a
// token can only ever be redeemed once.
func (s *TokenStore) ConsumeVerification(ctx context.Context, token string) (domain.UserID, error) {
	return s.consume(ctx, verifyPrefix+token)
}

func (s *TokenStore) SaveReset(ctx context.Context, token string, uid domain.UserID) error {
	return s.client.Set(ctx, resetPrefix+token, string(uid), s.ttl).Err()
}

func (s *TokenStore) ConsumeReset(ctx context.Context, token string) (domain.UserID, error) {
	return s.consume(ctx, resetPrefix+token)
}

func (s *TokenStore) consume(ctx context.Context, key string) (domain.UserID, error) {
	val, err := s.client.GetDel(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", domain.ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return domain.UserID(val), nil
}
