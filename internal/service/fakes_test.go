package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/danangwn/vote-app-backend/internal/domain"
)

// In-memory doubles for the repository interfaces. The option fake mirrors
// the database ordering rules so aggregation tests exercise the same
// contract the SQL provides.

type fakeOptionRepo struct {
	options []*domain.VoteOption
	ballots *fakeBallotRepo
	clock   time.Time
	nextID  int64
}

func newFakeOptionRepo(ballots *fakeBallotRepo) *fakeOptionRepo {
	return &fakeOptionRepo{
		ballots: ballots,
		clock:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (f *fakeOptionRepo) tick() time.Time {
	f.clock = f.clock.Add(time.Second)
	return f.clock
}

func (f *fakeOptionRepo) GetByOptionID(_ context.Context, optionID string) (*domain.VoteOption, error) {
	for _, opt := range f.options {
		if opt.OptionID == optionID {
			copied := *opt
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeOptionRepo) Create(_ context.Context, option *domain.VoteOption) error {
	f.nextID++
	option.ID = f.nextID
	option.CreatedAt = f.tick()
	option.UpdatedAt = option.CreatedAt
	copied := *option
	f.options = append(f.options, &copied)
	return nil
}

func (f *fakeOptionRepo) ListMain(_ context.Context) ([]domain.VoteOption, error) {
	main := make([]domain.VoteOption, 0)
	for _, opt := range f.options {
		if opt.IsMain {
			main = append(main, *opt)
		}
	}
	sort.Slice(main, func(i, j int) bool { return main[i].CreatedAt.Before(main[j].CreatedAt) })
	return main, nil
}

func (f *fakeOptionRepo) EnsureMainOption(ctx context.Context, option *domain.VoteOption) error {
	normalized := strings.ToLower(strings.TrimSpace(option.Text))
	for _, existing := range f.options {
		if existing.IsMain && strings.ToLower(existing.Text) == normalized {
			return nil
		}
	}
	option.Text = strings.TrimSpace(option.Text)
	option.DetailText = strings.TrimSpace(option.DetailText)
	return f.Create(ctx, option)
}

func (f *fakeOptionRepo) CountVotesPerOption(_ context.Context) ([]domain.OptionTally, error) {
	tallies := make([]domain.OptionTally, 0, len(f.options))
	for _, opt := range f.options {
		votes := 0
		for _, ballot := range f.ballots.ballots {
			if ballot.Answer == opt.OptionID {
				votes++
			}
		}
		tallies = append(tallies, domain.OptionTally{VoteOption: *opt, Votes: votes})
	}
	sort.SliceStable(tallies, func(i, j int) bool {
		if tallies[i].IsMain != tallies[j].IsMain {
			return tallies[i].IsMain
		}
		if tallies[i].Votes != tallies[j].Votes {
			return tallies[i].Votes > tallies[j].Votes
		}
		return tallies[i].CreatedAt.Before(tallies[j].CreatedAt)
	})
	return tallies, nil
}

type fakeBallotRepo struct {
	ballots map[string]*domain.Ballot
	nextID  int64
}

func newFakeBallotRepo() *fakeBallotRepo {
	return &fakeBallotRepo{ballots: make(map[string]*domain.Ballot)}
}

func (f *fakeBallotRepo) CastOrReplace(_ context.Context, userID, optionID string) (*domain.Ballot, error) {
	ballot, ok := f.ballots[userID]
	if !ok {
		f.nextID++
		ballot = &domain.Ballot{ID: f.nextID, UserID: userID}
		f.ballots[userID] = ballot
	}
	ballot.Answer = optionID
	ballot.CreatedAt = time.Now()
	copied := *ballot
	return &copied, nil
}

func (f *fakeBallotRepo) HasVoted(_ context.Context, userID string) (bool, error) {
	_, ok := f.ballots[userID]
	return ok, nil
}

func (f *fakeBallotRepo) CountAll(_ context.Context) (int, error) {
	return len(f.ballots), nil
}

type fakeUserRepo struct {
	users map[string]*domain.User
}

func newFakeUserRepo(users ...*domain.User) *fakeUserRepo {
	repo := &fakeUserRepo{users: make(map[string]*domain.User)}
	for _, u := range users {
		repo.users[u.ID] = u
	}
	return repo
}

func (f *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	copied := *user
	f.users[user.ID] = &copied
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	copied := *user
	return &copied, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, user := range f.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) List(_ context.Context, query domain.ListUsersQuery) ([]domain.User, int, error) {
	matched := make([]domain.User, 0, len(f.users))
	q := strings.ToLower(query.Q)
	for _, user := range f.users {
		if q == "" || strings.Contains(strings.ToLower(user.Name), q) || strings.Contains(strings.ToLower(user.Email), q) {
			matched = append(matched, *user)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })
	return matched, len(matched), nil
}

func (f *fakeUserRepo) Count(_ context.Context) (int, error) {
	return len(f.users), nil
}

func (f *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	user.UpdatedAt = time.Now()
	copied := *user
	f.users[user.ID] = &copied
	return nil
}

func (f *fakeUserRepo) SetVoteStatus(_ context.Context, id string, status bool) error {
	if user, ok := f.users[id]; ok {
		user.VoteStatus = status
	}
	return nil
}

func (f *fakeUserRepo) Delete(_ context.Context, id string) (*domain.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	delete(f.users, id)
	copied := *user
	return &copied, nil
}

type fakeTokenRepo struct {
	blacklisted map[string]time.Time
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{blacklisted: make(map[string]time.Time)}
}

func (f *fakeTokenRepo) Blacklist(_ context.Context, tokenHash string, expiresAt time.Time) error {
	f.blacklisted[tokenHash] = expiresAt
	return nil
}

func (f *fakeTokenRepo) IsBlacklisted(_ context.Context, tokenHash string) (bool, error) {
	expiresAt, ok := f.blacklisted[tokenHash]
	return ok && expiresAt.After(time.Now()), nil
}
