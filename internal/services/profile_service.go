package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Metecanyavuz/KUstay-comp491/internal/models"
	"github.com/Metecanyavuz/KUstay-comp491/internal/repository"
)

type userReader interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

type ProfileStore interface {
	GetByUserID(ctx context.Context, userID int64) (*models.Profile, error)
	Upsert(ctx context.Context, userID int64, input repository.ProfileInput) (*models.Profile, error)
}

// MatchRefresher recomputes the stored matches of one user.
type MatchRefresher interface {
	Refresh(ctx context.Context, userID int64) (int, error)
}

type ProfileService struct {
	profiles  ProfileStore
	users     userReader
	refresher MatchRefresher
	logger    *zap.Logger
}

func NewProfileService(
	profiles ProfileStore,
	users userReader,
	refresher MatchRefresher,
	logger *zap.Logger,
) *ProfileService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfileService{
		profiles:  profiles,
		users:     users,
		refresher: refresher,
		logger:    logger,
	}
}

func (s *ProfileService) GetProfile(ctx context.Context, userID int64) (*models.Profile, error) {
	return s.profiles.GetByUserID(ctx, userID)
}

// SaveProfile stores the profile and, for verified owners, recomputes their
// matches. The saved profile is returned even when the refresh fails.
func (s *ProfileService) SaveProfile(
	ctx context.Context,
	userID int64,
	input repository.ProfileInput,
) (*models.Profile, int, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, 0, err
	}

	profile, err := s.profiles.Upsert(ctx, userID, input)
	if err != nil {
		return nil, 0, fmt.Errorf("save profile %d: %w", userID, err)
	}

	if !user.IsVerified {
		return profile, 0, nil
	}

	updated, err := s.refresher.Refresh(ctx, userID)
	if err != nil {
		s.logger.Warn("refresh after profile save failed", zap.Int64("user_id", userID), zap.Error(err))
		return profile, updated, fmt.Errorf("refresh matches: %w", err)
	}
	return profile, updated, nil
}
