package database

import (
	"context"
	"fmt"
	"time"

	"mylibrary-server/internal/interfaces"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Compile-time check to ensure redisTokenRepository implements TokenRepository
var _ interfaces.TokenRepository = (*redisTokenRepository)(nil)

// redisTokenRepository keeps a denylist of revoked token ids (jti). Entries
// expire together with the token itself, so the set stays bounded by the
// token TTL.
type redisTokenRepository struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisTokenRepository creates a new Redis-backed TokenRepository.
func NewRedisTokenRepository(client *redis.Client, logger *zap.Logger) interfaces.TokenRepository {
	return &redisTokenRepository{
		client: client,
		logger: logger.Named("RedisTokenRepo"),
	}
}

func revokedKey(jti string) string {
	return fmt.Sprintf("revoked_jti:%s", jti)
}

// Revoke marks a token id as revoked for the remainder of its lifetime.
func (r *redisTokenRepository) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		// Already past expiry; nothing to deny.
		r.logger.Debug("Skipping revocation of already-expired token", zap.String("jti", jti))
		return nil
	}
	r.logger.Debug("Revoking token", zap.String("jti", jti), zap.Duration("ttl", ttl))
	if err := r.client.Set(ctx, revokedKey(jti), "1", ttl).Err(); err != nil {
		r.logger.Error("Failed to store revoked token in redis", zap.Error(err), zap.String("jti", jti))
		return fmt.Errorf("failed to store revoked token in redis: %w", err)
	}
	return nil
}

// IsRevoked reports whether the token id is on the denylist.
func (r *redisTokenRepository) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := r.client.Exists(ctx, revokedKey(jti)).Result()
	if err != nil {
		r.logger.Error("Failed to check revoked token in redis", zap.Error(err), zap.String("jti", jti))
		return false, fmt.Errorf("failed to check revoked token in redis: %w", err)
	}
	return n > 0, nil
}
