package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danangwn/vote-app-backend/internal/domain"
)

func TestCacheService_NilReceiver(t *testing.T) {
	var cache *CacheService
	ctx := context.Background()

	// Every method must be a no-op without Redis configured.
	assert.Nil(t, cache.GetResults(ctx))
	cache.SetResults(ctx, &domain.VoteResults{})
	cache.InvalidateResults(ctx)
	assert.Nil(t, cache.GetMainOptions(ctx))
	cache.SetMainOptions(ctx, nil)
	cache.CacheUserVoted(ctx, "u1")
	cache.CacheTokenBlacklist(ctx, "hash", time.Minute)
	assert.False(t, cache.IsTokenBlacklisted(ctx, "hash"))
	assert.NoError(t, cache.HealthCheck(ctx))
}

func TestCacheService_ResultsRoundTrip(t *testing.T) {
	cache, _ := setupTestCache(t)
	ctx := context.Background()

	assert.Nil(t, cache.GetResults(ctx), "empty cache misses")

	results := &domain.VoteResults{
		TotalUsers: 3,
		TotalVoted: 2,
		Options: []domain.OptionResult{
			{OptionID: "opt-1", Text: "Main option 1", IsMain: true, Votes: 2, PercentOfAllUsers: 66.67, PercentOfVoters: 100},
		},
	}
	cache.SetResults(ctx, results)

	cached := cache.GetResults(ctx)
	require.NotNil(t, cached)
	assert.Equal(t, 3, cached.TotalUsers)
	require.Len(t, cached.Options, 1)
	assert.Equal(t, "opt-1", cached.Options[0].OptionID)
	assert.InDelta(t, 66.67, cached.Options[0].PercentOfAllUsers, 0.001)

	cache.InvalidateResults(ctx)
	assert.Nil(t, cache.GetResults(ctx))
}

func TestCacheService_CorruptedResultsFallThrough(t *testing.T) {
	cache, client := setupTestCache(t)
	ctx := context.Background()

	require.NoError(t, client.Set(ctx, client.KeyBuilder.KeyResults(), "{not json", time.Minute))
	assert.Nil(t, cache.GetResults(ctx), "corrupted payload must read as a miss")
}

func TestCacheService_TokenBlacklist(t *testing.T) {
	cache, _ := setupTestCache(t)
	ctx := context.Background()

	assert.False(t, cache.IsTokenBlacklisted(ctx, "abc"))

	cache.CacheTokenBlacklist(ctx, "abc", time.Minute)
	assert.True(t, cache.IsTokenBlacklisted(ctx, "abc"))

	cache.CacheTokenBlacklist(ctx, "expired", -time.Minute)
	assert.False(t, cache.IsTokenBlacklisted(ctx, "expired"), "non-positive TTL is never written")
}
