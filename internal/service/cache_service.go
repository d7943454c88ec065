package service

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/danangwn/vote-app-backend/internal/domain"
	"github.com/danangwn/vote-app-backend/pkg/redis"
)

// CacheService fronts Redis for the read-heavy voting endpoints. Every method
// is safe to call on a nil receiver so the application degrades to plain
// database reads when Redis is not configured.
type CacheService struct {
	redis  *redis.Client
	logger *zap.Logger
}

// NewCacheService creates a new cache service
func NewCacheService(redisClient *redis.Client, logger *zap.Logger) *CacheService {
	if redisClient == nil {
		return nil
	}
	return &CacheService{
		redis:  redisClient,
		logger: logger,
	}
}

// GetResults returns the cached aggregation, or nil on miss.
func (c *CacheService) GetResults(ctx context.Context) *domain.VoteResults {
	if c == nil {
		return nil
	}

	cached, err := c.redis.Get(ctx, c.redis.KeyBuilder.KeyResults())
	if err != nil || cached == "" {
		return nil
	}

	var results domain.VoteResults
	if err := json.Unmarshal([]byte(cached), &results); err != nil {
		c.logger.Warn("Results cache corrupted, falling back to database", zap.Error(err))
		return nil
	}

	c.logger.Debug("Results cache hit")
	return &results
}

// SetResults caches the aggregation with a short TTL
func (c *CacheService) SetResults(ctx context.Context, results *domain.VoteResults) {
	if c == nil {
		return
	}

	data, err := json.Marshal(results)
	if err != nil {
		return
	}
	if err := c.redis.Set(ctx, c.redis.KeyBuilder.KeyResults(), string(data), redis.TTLResults); err != nil {
		c.logger.Warn("Failed to cache results", zap.Error(err))
	}
}

// InvalidateResults drops the cached aggregation after a submission
func (c *CacheService) InvalidateResults(ctx context.Context) {
	if c == nil {
		return
	}

	if err := c.redis.Delete(ctx, c.redis.KeyBuilder.KeyResults()); err != nil {
		c.logger.Warn("Failed to invalidate results cache", zap.Error(err))
	}
}

// GetMainOptions returns the cached main option list, or nil on miss.
func (c *CacheService) GetMainOptions(ctx context.Context) []domain.VoteOption {
	if c == nil {
		return nil
	}

	cached, err := c.redis.Get(ctx, c.redis.KeyBuilder.KeyMainOptions())
	if err != nil || cached == "" {
		return nil
	}

	var options []domain.VoteOption
	if err := json.Unmarshal([]byte(cached), &options); err != nil {
		c.logger.Warn("Main option cache corrupted, falling back to database", zap.Error(err))
		return nil
	}

	return options
}

// SetMainOptions caches the main option list
func (c *CacheService) SetMainOptions(ctx context.Context, options []domain.VoteOption) {
	if c == nil {
		return
	}

	data, err := json.Marshal(options)
	if err != nil {
		return
	}
	if err := c.redis.Set(ctx, c.redis.KeyBuilder.KeyMainOptions(), string(data), redis.TTLMainOptions); err != nil {
		c.logger.Warn("Failed to cache main options", zap.Error(err))
	}
}

// CacheUserVoted remembers that a user has a ballot
func (c *CacheService) CacheUserVoted(ctx context.Context, userID string) {
	if c == nil {
		return
	}

	key := c.redis.KeyBuilder.KeyUserVoted(userID)
	if err := c.redis.Set(ctx, key, "1", redis.TTLUserVote); err != nil {
		c.logger.Warn("Failed to cache user vote status",
			zap.String("user_id", userID),
			zap.Error(err))
	}
}

// CacheTokenBlacklist remembers a revoked token hash until the token expires
func (c *CacheService) CacheTokenBlacklist(ctx context.Context, tokenHash string, ttl time.Duration) {
	if c == nil || ttl <= 0 {
		return
	}

	key := c.redis.KeyBuilder.KeyTokenBlacklist(tokenHash)
	if err := c.redis.Set(ctx, key, "1", ttl); err != nil {
		c.logger.Warn("Failed to cache token blacklist entry", zap.Error(err))
	}
}

// IsTokenBlacklisted reports whether the revocation is cached. A miss means
// "unknown", not "valid"; callers still consult the database.
func (c *CacheService) IsTokenBlacklisted(ctx context.Context, tokenHash string) bool {
	if c == nil {
		return false
	}

	n, err := c.redis.Exists(ctx, c.redis.KeyBuilder.KeyTokenBlacklist(tokenHash))
	if err != nil {
		return false
	}
	return n > 0
}

// HealthCheck verifies the Redis connection
func (c *CacheService) HealthCheck(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.redis.Health(ctx)
}
