// Package previewtoken issues short-lived correlation tokens tying a commit
// call back to a preview of the same file. The UI convention of
// preview-before-commit becomes server-enforced when redis is configured;
// without redis the store is a pass-through and the convention stays advisory.
package previewtoken

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/keel-trb-api/internal/config"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Store issues and validates preview tokens
type Store interface {
	// Enforced reports whether commit calls must carry a valid token
	Enforced() bool
	// Issue returns a token bound to one entity family and file digest
	Issue(ctx context.Context, entity, digest string) (string, error)
	// Validate checks a token against the entity and digest of a commit upload
	Validate(ctx context.Context, entity, digest, token string) (bool, error)
}

// Digest returns the hex SHA-256 of an uploaded file, the identity previews
// and commits are correlated by
func Digest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// New builds the redis-backed store, or the disabled pass-through when no
// redis address is configured
func New(cfg *config.RedisConfig, log zerolog.Logger) Store {
	if cfg.Addr == "" {
		return noopStore{}
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return &redisStore{
		client: client,
		ttl:    cfg.TokenTTL,
		log:    log.With().Str("component", "previewtoken").Logger(),
	}
}

type noopStore struct{}

func (noopStore) Enforced() bool { return false }

func (noopStore) Issue(ctx context.Context, entity, digest string) (string, error) {
	return "", nil
}

func (noopStore) Validate(ctx context.Context, entity, digest, token string) (bool, error) {
	return true, nil
}

type redisStore struct {
	client *redis.Client
	ttl    time.Duration
	log    zerolog.Logger
}

func (s *redisStore) Enforced() bool { return true }

func key(token string) string {
	return "keel:preview:" + token
}

func (s *redisStore) Issue(ctx context.Context, entity, digest string) (string, error) {
	token := uuid.New().String()
	value := entity + ":" + digest
	if err := s.client.Set(ctx, key(token), value, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("store preview token: %w", err)
	}
	return token, nil
}

func (s *redisStore) Validate(ctx context.Context, entity, digest, token string) (bool, error) {
	if token == "" {
		return false, nil
	}
	value, err := s.client.Get(ctx, key(token)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("look up preview token: %w", err)
	}
	return value == entity+":"+digest, nil
}
