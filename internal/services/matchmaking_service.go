package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Metecanyavuz/KUstay-comp491/internal/matching"
	"github.com/Metecanyavuz/KUstay-comp491/internal/models"
)

// MinScoreToStore is the lowest score worth persisting.
const MinScoreToStore = 10

const (
	DefaultMatchLimit = 20
	MaxMatchLimit     = 50
)

type MatchDirectory interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
	ListEligible(ctx context.Context) ([]models.UserWithProfile, error)
	ListEligibleIDs(ctx context.Context) ([]int64, error)
}

type ProfileReader interface {
	GetByUserID(ctx context.Context, userID int64) (*models.Profile, error)
}

type BlockLookup interface {
	CounterpartIDs(ctx context.Context, userID int64) (map[int64]struct{}, error)
}

type MatchStore interface {
	Upsert(ctx context.Context, match *models.MatchCompatibility) error
	ListTopForUser(ctx context.Context, userID int64, limit int) ([]models.MatchView, error)
}

type MatchmakingService struct {
	users       MatchDirectory
	profiles    ProfileReader
	blocks      BlockLookup
	matches     MatchStore
	scorer      *matching.Scorer
	constraints []matching.Constraint
	logger      *zap.Logger
	workers     int
	maxLimit    int
	now         func() time.Time
}

type MatchmakingOption func(*MatchmakingService)

func WithLogger(logger *zap.Logger) MatchmakingOption {
	return func(s *MatchmakingService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRefreshWorkers sets how many users RefreshAll processes at once.
func WithRefreshWorkers(workers int) MatchmakingOption {
	return func(s *MatchmakingService) {
		if workers > 0 {
			s.workers = workers
		}
	}
}

// WithMaxMatchLimit lowers the top-N ceiling. Values above MaxMatchLimit
// are capped.
func WithMaxMatchLimit(limit int) MatchmakingOption {
	return func(s *MatchmakingService) {
		if limit > 0 {
			s.maxLimit = min(limit, MaxMatchLimit)
		}
	}
}

func WithClock(now func() time.Time) MatchmakingOption {
	return func(s *MatchmakingService) {
		if now != nil {
			s.now = now
		}
	}
}

// WithConstraints adds hard feasibility rules on top of the built-in ones.
func WithConstraints(constraints ...matching.Constraint) MatchmakingOption {
	return func(s *MatchmakingService) {
		s.constraints = append(s.constraints, constraints...)
	}
}

func NewMatchmakingService(
	users MatchDirectory,
	profiles ProfileReader,
	blocks BlockLookup,
	matches MatchStore,
	scorer *matching.Scorer,
	opts ...MatchmakingOption,
) *MatchmakingService {
	s := &MatchmakingService{
		users:    users,
		profiles: profiles,
		blocks:   blocks,
		matches:  matches,
		scorer:   scorer,
		logger:   zap.NewNop(),
		workers:  1,
		maxLimit: MaxMatchLimit,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Candidates returns the users the requester may be matched with. A
// requester without a profile has no candidates.
func (s *MatchmakingService) Candidates(ctx context.Context, userID int64) ([]models.UserWithProfile, error) {
	profile, err := s.loadProfile(ctx, userID)
	if err != nil || profile == nil {
		return nil, err
	}
	return s.candidatesFor(ctx, userID, profile)
}

func (s *MatchmakingService) candidatesFor(
	ctx context.Context,
	userID int64,
	profile *models.Profile,
) ([]models.UserWithProfile, error) {
	pool, err := s.users.ListEligible(ctx)
	if err != nil {
		return nil, fmt.Errorf("list eligible users: %w", err)
	}
	blocked, err := s.blocks.CounterpartIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list blocked users: %w", err)
	}

	return matching.FilterCandidates(userID, profile, pool, blocked, s.constraints...), nil
}

// Refresh recomputes and stores the scores between userID and each of its
// candidates. It returns the number of rows written. Unverified users and
// users without a profile are skipped.
func (s *MatchmakingService) Refresh(ctx context.Context, userID int64) (int, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrUserNotFound
		}
		return 0, fmt.Errorf("load user %d: %w", userID, err)
	}
	if !user.IsVerified {
		return 0, nil
	}

	profile, err := s.loadProfile(ctx, userID)
	if err != nil || profile == nil {
		return 0, err
	}

	candidates, err := s.candidatesFor(ctx, userID, profile)
	if err != nil {
		return 0, err
	}

	updated := 0
	for _, candidate := range candidates {
		if candidate.Profile == nil {
			continue
		}

		result := s.scorer.Score(profile, candidate.Profile)
		if result.Total < MinScoreToStore {
			continue
		}

		user1, user2 := models.CanonicalPair(userID, candidate.User.ID)
		match := &models.MatchCompatibility{
			User1ID:            user1,
			User2ID:            user2,
			CompatibilityScore: result.Total,
			MatchingCriteria:   result.Criteria,
			CalculatedAt:       s.now().UTC(),
		}
		if err := s.matches.Upsert(ctx, match); err != nil {
			return updated, fmt.Errorf("store match %d-%d: %w", user1, user2, err)
		}
		updated++
	}

	s.logger.Debug("matches refreshed",
		zap.Int64("user_id", userID),
		zap.Int("candidates", len(candidates)),
		zap.Int("updated", updated),
	)
	return updated, nil
}

// RefreshAll refreshes every verified user with a profile. A pair is counted
// once from each side. Failing users are logged and skipped; their errors
// are returned joined, next to the total of the users that did succeed.
func (s *MatchmakingService) RefreshAll(ctx context.Context) (int, error) {
	ids, err := s.users.ListEligibleIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("list eligible users: %w", err)
	}

	var (
		total    atomic.Int64
		mu       sync.Mutex
		failures []error
	)

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(s.workers)

	for _, id := range ids {
		if ctx.Err() != nil {
			break
		}
		id := id
		group.Go(func() error {
			updated, err := s.Refresh(groupCtx, id)
			total.Add(int64(updated))
			if err != nil {
				s.logger.Error("refresh matches failed", zap.Int64("user_id", id), zap.Error(err))
				mu.Lock()
				failures = append(failures, fmt.Errorf("user %d: %w", id, err))
				mu.Unlock()
			}
			return nil
		})
	}
	_ = group.Wait()

	if err := ctx.Err(); err != nil {
		failures = append(failures, err)
	}

	s.logger.Info("match recompute finished",
		zap.Int("users", len(ids)),
		zap.Int64("updated", total.Load()),
		zap.Int("failed", len(failures)),
	)
	return int(total.Load()), errors.Join(failures...)
}

// TopMatches refreshes the requester's scores and returns the best stored
// matches. limit is clamped to [1, max].
func (s *MatchmakingService) TopMatches(ctx context.Context, userID int64, limit int) ([]models.MatchView, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("load user %d: %w", userID, err)
	}
	if !user.IsVerified {
		return nil, ErrProfileRequired
	}

	profile, err := s.loadProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, ErrProfileRequired
	}

	if _, err := s.Refresh(ctx, userID); err != nil {
		return nil, err
	}

	return s.matches.ListTopForUser(ctx, userID, s.clampLimit(limit))
}

func (s *MatchmakingService) clampLimit(limit int) int {
	if limit < 1 {
		return 1
	}
	if limit > s.maxLimit {
		return s.maxLimit
	}
	return limit
}

func (s *MatchmakingService) loadProfile(ctx context.Context, userID int64) (*models.Profile, error) {
	profile, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("load profile %d: %w", userID, err)
	}
	return profile, nil
}
