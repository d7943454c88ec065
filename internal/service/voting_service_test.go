package service

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/danangwn/vote-app-backend/internal/domain"
	apperrors "github.com/danangwn/vote-app-backend/pkg/errors"
	"github.com/danangwn/vote-app-backend/pkg/redis"
)

func newVotingFixture(t *testing.T, cache *CacheService) (*VotingService, *fakeOptionRepo, *fakeBallotRepo, *fakeUserRepo) {
	t.Helper()
	ballots := newFakeBallotRepo()
	options := newFakeOptionRepo(ballots)
	users := newFakeUserRepo()
	svc := NewVotingService(options, ballots, users, cache, zap.NewNop())
	return svc, options, ballots, users
}

func setupTestCache(t *testing.T) (*CacheService, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client, err := redis.NewClient("redis://"+mr.Addr(), "test", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	return NewCacheService(client, zap.NewNop()), client
}

func TestEnsureMainOptions_Idempotent(t *testing.T) {
	svc, options, _, _ := newVotingFixture(t, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, svc.EnsureMainOptions(ctx))
	}

	main, err := options.ListMain(ctx)
	require.NoError(t, err)
	require.Len(t, main, 2)
	assert.Equal(t, "Main option 1", main[0].Text)
	assert.Equal(t, "Main option 2", main[1].Text)
	assert.True(t, main[0].IsMain)
	assert.NotEmpty(t, main[0].OptionID)
	assert.NotEqual(t, main[0].OptionID, main[1].OptionID)
}

func TestSubmitVote_MainOption(t *testing.T) {
	svc, options, ballots, users := newVotingFixture(t, nil)
	ctx := context.Background()

	require.NoError(t, svc.EnsureMainOptions(ctx))
	require.NoError(t, users.Create(ctx, &domain.User{ID: "u1", Name: "A", Email: "a@x.com", Role: domain.RoleUser}))

	main, err := options.ListMain(ctx)
	require.NoError(t, err)

	resp, err := svc.SubmitVote(ctx, "u1", &domain.SubmitVoteRequest{OptionID: main[0].OptionID})
	require.NoError(t, err)

	assert.Equal(t, "Vote submitted", resp.Message)
	assert.Equal(t, "u1", resp.Vote.UserID)
	assert.Equal(t, main[0].OptionID, resp.Vote.Answer)
	assert.Equal(t, main[0].OptionID, resp.Option.OptionID)

	voted, err := svc.HasVoted(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, voted)

	user, err := users.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, user.VoteStatus, "vote_status flag should flip on first vote")

	count, err := ballots.CountAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestSubmitVote_ReplacesExistingBallot(t *testing.T) {
	svc, options, ballots, users := newVotingFixture(t, nil)
	ctx := context.Background()

	require.NoError(t, svc.EnsureMainOptions(ctx))
	require.NoError(t, users.Create(ctx, &domain.User{ID: "u1", Name: "A", Email: "a@x.com", Role: domain.RoleUser}))

	main, err := options.ListMain(ctx)
	require.NoError(t, err)

	_, err = svc.SubmitVote(ctx, "u1", &domain.SubmitVoteRequest{OptionID: main[0].OptionID})
	require.NoError(t, err)
	_, err = svc.SubmitVote(ctx, "u1", &domain.SubmitVoteRequest{OptionID: main[1].OptionID})
	require.NoError(t, err)

	count, err := ballots.CountAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count, "resubmission must replace, never add")
	assert.Equal(t, main[1].OptionID, ballots.ballots["u1"].Answer)
}

func TestSubmitVote_OptionIDWinsOverCustomText(t *testing.T) {
	svc, options, _, users := newVotingFixture(t, nil)
	ctx := context.Background()

	require.NoError(t, svc.EnsureMainOptions(ctx))
	require.NoError(t, users.Create(ctx, &domain.User{ID: "u1", Name: "A", Email: "a@x.com", Role: domain.RoleUser}))

	main, err := options.ListMain(ctx)
	require.NoError(t, err)

	resp, err := svc.SubmitVote(ctx, "u1", &domain.SubmitVoteRequest{
		OptionID:   main[0].OptionID,
		CustomText: "ignored",
	})
	require.NoError(t, err)
	assert.Equal(t, main[0].OptionID, resp.Option.OptionID)
	assert.Len(t, options.options, 2, "customText must not create an option when optionId resolves")
}

func TestSubmitVote_CustomTextNeverDeduplicates(t *testing.T) {
	svc, options, _, users := newVotingFixture(t, nil)
	ctx := context.Background()

	require.NoError(t, users.Create(ctx, &domain.User{ID: "u1", Name: "A", Email: "a@x.com", Role: domain.RoleUser}))
	require.NoError(t, users.Create(ctx, &domain.User{ID: "u2", Name: "B", Email: "b@x.com", Role: domain.RoleUser}))

	first, err := svc.SubmitVote(ctx, "u1", &domain.SubmitVoteRequest{CustomText: "  Pizza  ", CustomDetail: "with cheese"})
	require.NoError(t, err)
	second, err := svc.SubmitVote(ctx, "u2", &domain.SubmitVoteRequest{CustomText: "Pizza"})
	require.NoError(t, err)

	assert.Equal(t, "Pizza", first.Option.Text, "custom text is trimmed")
	assert.Equal(t, "with cheese", first.Option.DetailText)
	assert.False(t, first.Option.IsMain)
	assert.NotEqual(t, first.Option.OptionID, second.Option.OptionID,
		"identical free text must still create a separate option")
	assert.Len(t, options.options, 2)
}

func TestSubmitVote_UnknownOptionID(t *testing.T) {
	svc, options, ballots, _ := newVotingFixture(t, nil)
	ctx := context.Background()

	_, err := svc.SubmitVote(ctx, "u1", &domain.SubmitVoteRequest{OptionID: "does-not-exist"})
	require.Error(t, err)

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrorTypeNotFound, appErr.Type)
	assert.Equal(t, "Option not found", appErr.Message)

	count, err := ballots.CountAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count, "failed resolution must leave no ballot")
	assert.Empty(t, options.options, "failed resolution must create no option")
}

func TestSubmitVote_MissingBothFields(t *testing.T) {
	svc, _, _, _ := newVotingFixture(t, nil)

	_, err := svc.SubmitVote(context.Background(), "u1", &domain.SubmitVoteRequest{CustomText: "   "})
	require.Error(t, err)

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrorTypeValidation, appErr.Type)
	assert.Equal(t, "OptionId or customText required", appErr.Message)
}

func TestGetResults_Aggregation(t *testing.T) {
	svc, options, _, users := newVotingFixture(t, nil)
	ctx := context.Background()

	require.NoError(t, svc.EnsureMainOptions(ctx))
	for _, id := range []string{"u1", "u2", "u3"} {
		require.NoError(t, users.Create(ctx, &domain.User{ID: id, Name: id, Email: id + "@x.com", Role: domain.RoleUser}))
	}

	main, err := options.ListMain(ctx)
	require.NoError(t, err)

	_, err = svc.SubmitVote(ctx, "u1", &domain.SubmitVoteRequest{OptionID: main[0].OptionID})
	require.NoError(t, err)
	_, err = svc.SubmitVote(ctx, "u2", &domain.SubmitVoteRequest{OptionID: main[0].OptionID})
	require.NoError(t, err)

	results, err := svc.GetResults(ctx)
	require.NoError(t, err)

	assert.Equal(t, 3, results.TotalUsers)
	assert.Equal(t, 2, results.TotalVoted)
	require.Len(t, results.Options, 2)

	top := results.Options[0]
	assert.Equal(t, main[0].OptionID, top.OptionID)
	assert.Equal(t, 2, top.Votes)
	assert.InDelta(t, 66.67, top.PercentOfAllUsers, 0.001)
	assert.InDelta(t, 100.00, top.PercentOfVoters, 0.001)

	zero := results.Options[1]
	assert.Equal(t, 0, zero.Votes, "zero-vote options stay in the result set")
	assert.Equal(t, 0.0, zero.PercentOfAllUsers)
	assert.Equal(t, 0.0, zero.PercentOfVoters)
}

func TestGetResults_NoUsersNoVotes(t *testing.T) {
	svc, _, _, _ := newVotingFixture(t, nil)
	ctx := context.Background()

	require.NoError(t, svc.EnsureMainOptions(ctx))

	results, err := svc.GetResults(ctx)
	require.NoError(t, err)

	assert.Equal(t, 0, results.TotalUsers)
	assert.Equal(t, 0, results.TotalVoted)
	require.Len(t, results.Options, 2)
	for _, opt := range results.Options {
		assert.Equal(t, 0.0, opt.PercentOfAllUsers, "zero denominator must yield 0, not NaN")
		assert.Equal(t, 0.0, opt.PercentOfVoters)
	}
}

func TestGetResults_MainOptionsOrderedFirst(t *testing.T) {
	svc, options, _, users := newVotingFixture(t, nil)
	ctx := context.Background()

	require.NoError(t, svc.EnsureMainOptions(ctx))
	for _, id := range []string{"u1", "u2"} {
		require.NoError(t, users.Create(ctx, &domain.User{ID: id, Name: id, Email: id + "@x.com", Role: domain.RoleUser}))
	}

	// Two votes on a custom option versus zero on the mains; the mains must
	// still sort first.
	_, err := svc.SubmitVote(ctx, "u1", &domain.SubmitVoteRequest{CustomText: "Something else"})
	require.NoError(t, err)
	_, err = svc.SubmitVote(ctx, "u2", &domain.SubmitVoteRequest{CustomText: "Another thing"})
	require.NoError(t, err)

	results, err := svc.GetResults(ctx)
	require.NoError(t, err)
	require.Len(t, results.Options, 4)

	assert.True(t, results.Options[0].IsMain)
	assert.True(t, results.Options[1].IsMain)
	assert.False(t, results.Options[2].IsMain)
	assert.False(t, results.Options[3].IsMain)

	main, err := options.ListMain(ctx)
	require.NoError(t, err)
	assert.Equal(t, main[0].OptionID, results.Options[0].OptionID, "ties break by creation time")
}

func TestGetResults_CacheInvalidatedOnSubmit(t *testing.T) {
	cache, _ := setupTestCache(t)
	svc, options, _, users := newVotingFixture(t, cache)
	ctx := context.Background()

	require.NoError(t, svc.EnsureMainOptions(ctx))
	require.NoError(t, users.Create(ctx, &domain.User{ID: "u1", Name: "A", Email: "a@x.com", Role: domain.RoleUser}))

	main, err := options.ListMain(ctx)
	require.NoError(t, err)

	before, err := svc.GetResults(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, before.TotalVoted)
	require.NotNil(t, cache.GetResults(ctx), "first read should prime the cache")

	_, err = svc.SubmitVote(ctx, "u1", &domain.SubmitVoteRequest{OptionID: main[0].OptionID})
	require.NoError(t, err)

	after, err := svc.GetResults(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, after.TotalVoted, "submission must invalidate the cached tally")
}

func TestListMainOptions_CacheAside(t *testing.T) {
	cache, _ := setupTestCache(t)
	svc, options, _, _ := newVotingFixture(t, cache)
	ctx := context.Background()

	require.NoError(t, svc.EnsureMainOptions(ctx))

	first, err := svc.ListMainOptions(ctx)
	require.NoError(t, err)
	require.Len(t, first, 2)

	// Mutate the backing store; a cached read must not see it.
	options.options = nil

	second, err := svc.ListMainOptions(ctx)
	require.NoError(t, err)
	assert.Len(t, second, 2)
}
