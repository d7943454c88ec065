package service

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/danangwn/vote-app-backend/internal/domain"
	"github.com/danangwn/vote-app-backend/internal/repository"
	apperrors "github.com/danangwn/vote-app-backend/pkg/errors"
)

// mainOptionSeeds are the fixed choices created at bootstrap.
var mainOptionSeeds = []struct {
	text       string
	detailText string
}{
	{text: "Main option 1", detailText: "Its the first main option"},
	{text: "Main option 2", detailText: "Its the second main option"},
}

// VotingService owns the voting rules: resolving or creating options,
// recording the single ballot per user and aggregating results.
type VotingService struct {
	options repository.OptionRepository
	ballots repository.BallotRepository
	users   repository.UserRepository
	cache   *CacheService
	logger  *zap.Logger
}

func NewVotingService(
	options repository.OptionRepository,
	ballots repository.BallotRepository,
	users repository.UserRepository,
	cache *CacheService,
	logger *zap.Logger,
) *VotingService {
	return &VotingService{
		options: options,
		ballots: ballots,
		users:   users,
		cache:   cache,
		logger:  logger,
	}
}

// EnsureMainOptions seeds the fixed main options. Idempotent across restarts:
// an option whose text already exists under case-insensitive comparison is
// left alone. Individual failures are logged and the remaining seeds still
// run, so seeding never blocks startup.
func (s *VotingService) EnsureMainOptions(ctx context.Context) error {
	var firstErr error
	for _, seed := range mainOptionSeeds {
		option := &domain.VoteOption{
			OptionID:   uuid.NewString(),
			Text:       seed.text,
			DetailText: seed.detailText,
			IsMain:     true,
		}
		if err := s.options.EnsureMainOption(ctx, option); err != nil {
			s.logger.Error("Failed to seed main option",
				zap.String("text", seed.text),
				zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// ListMainOptions returns the fixed main options, earliest created first.
func (s *VotingService) ListMainOptions(ctx context.Context) ([]domain.VoteOption, error) {
	if cached := s.cache.GetMainOptions(ctx); cached != nil {
		return cached, nil
	}

	options, err := s.options.ListMain(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to list main options", err)
	}

	s.cache.SetMainOptions(ctx, options)
	return options, nil
}

// SubmitVote runs the submit-vote use case: resolve or create the option,
// upsert the caller's ballot, then flip the denormalized vote_status flag.
//
// A free-text submission always creates a new non-main option, even when an
// identical text already exists; only bootstrap seeding deduplicates.
func (s *VotingService) SubmitVote(ctx context.Context, userID string, req *domain.SubmitVoteRequest) (*domain.SubmitVoteResponse, error) {
	var option *domain.VoteOption

	customText := strings.TrimSpace(req.CustomText)

	switch {
	case req.OptionID != "":
		existing, err := s.options.GetByOptionID(ctx, req.OptionID)
		if err != nil {
			return nil, apperrors.NewInternalError("Failed to resolve option", err)
		}
		if existing == nil {
			return nil, apperrors.NewNotFoundError("Option not found")
		}
		option = existing

	case customText != "":
		option = &domain.VoteOption{
			OptionID:   uuid.NewString(),
			Text:       customText,
			DetailText: strings.TrimSpace(req.CustomDetail),
			IsMain:     false,
		}
		if err := s.options.Create(ctx, option); err != nil {
			return nil, apperrors.NewInternalError("Failed to create option", err)
		}

	default:
		return nil, apperrors.NewValidationError("OptionId or customText required")
	}

	ballot, err := s.ballots.CastOrReplace(ctx, userID, option.OptionID)
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to record vote", err)
	}

	if err := s.users.SetVoteStatus(ctx, userID, true); err != nil {
		// The ballot is already written; the ledger stays authoritative and
		// vote_status lags until the next successful submission.
		return nil, apperrors.NewInternalError("Failed to update vote status", err)
	}

	s.cache.InvalidateResults(ctx)
	s.cache.CacheUserVoted(ctx, userID)

	s.logger.Info("Vote submitted",
		zap.String("user_id", userID),
		zap.String("option_id", option.OptionID),
		zap.Bool("custom", !option.IsMain && req.OptionID == ""))

	return &domain.SubmitVoteResponse{
		Message: "Vote submitted",
		Vote:    ballot,
		Option:  option,
	}, nil
}

// HasVoted reports whether a ballot exists for the user. The ledger, not the
// user record's vote_status flag, answers this.
func (s *VotingService) HasVoted(ctx context.Context, userID string) (bool, error) {
	voted, err := s.ballots.HasVoted(ctx, userID)
	if err != nil {
		return false, apperrors.NewInternalError("Failed to check vote status", err)
	}
	return voted, nil
}

// GetResults produces the point-in-time tally: every option with its vote
// count and percentages against all users and against voters. Safe to call
// concurrently with submissions; reads a current snapshot.
func (s *VotingService) GetResults(ctx context.Context) (*domain.VoteResults, error) {
	if cached := s.cache.GetResults(ctx); cached != nil {
		return cached, nil
	}

	totalUsers, err := s.users.Count(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to count users", err)
	}

	totalVoted, err := s.ballots.CountAll(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to count ballots", err)
	}

	tallies, err := s.options.CountVotesPerOption(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to aggregate votes", err)
	}

	results := &domain.VoteResults{
		TotalUsers: totalUsers,
		TotalVoted: totalVoted,
		Options:    make([]domain.OptionResult, 0, len(tallies)),
	}

	for _, tally := range tallies {
		results.Options = append(results.Options, domain.OptionResult{
			OptionID:          tally.OptionID,
			Text:              tally.Text,
			DetailText:        tally.DetailText,
			IsMain:            tally.IsMain,
			Votes:             tally.Votes,
			CreatedAt:         tally.CreatedAt,
			UpdatedAt:         tally.UpdatedAt,
			PercentOfAllUsers: percentage(tally.Votes, totalUsers),
			PercentOfVoters:   percentage(tally.Votes, totalVoted),
		})
	}

	s.cache.SetResults(ctx, results)
	return results, nil
}

// percentage returns part/whole as a percent rounded to 2 decimal places,
// or 0 when the denominator is zero.
func percentage(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return math.Round(float64(part)/float64(whole)*10000) / 100
}

// HealthCheck verifies the service's cache dependency
func (s *VotingService) HealthCheck(ctx context.Context) error {
	if err := s.cache.HealthCheck(ctx); err != nil {
		return fmt.Errorf("cache health check failed: %w", err)
	}
	return nil
}
