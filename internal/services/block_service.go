package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

type BlockStore interface {
	Block(ctx context.Context, blockerID, blockedID int64) error
	Unblock(ctx context.Context, blockerID, blockedID int64) error
	ListBlockedBy(ctx context.Context, blockerID int64) ([]int64, error)
}

type BlockService struct {
	blocks BlockStore
	users  userReader
}

func NewBlockService(blocks BlockStore, users userReader) *BlockService {
	return &BlockService{blocks: blocks, users: users}
}

// Block hides blockedID from blockerID and vice versa. Blocking twice is a
// no-op. Stored matches are left alone; reads skip blocked counterparts.
func (s *BlockService) Block(ctx context.Context, blockerID, blockedID int64) error {
	if blockedID <= 0 || blockedID == blockerID {
		return ErrInvalidInput
	}

	if _, err := s.users.GetByID(ctx, blockedID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrUserNotFound
		}
		return fmt.Errorf("load user %d: %w", blockedID, err)
	}

	return s.blocks.Block(ctx, blockerID, blockedID)
}

func (s *BlockService) Unblock(ctx context.Context, blockerID, blockedID int64) error {
	if blockedID <= 0 {
		return ErrInvalidInput
	}
	return s.blocks.Unblock(ctx, blockerID, blockedID)
}

func (s *BlockService) ListBlocked(ctx context.Context, blockerID int64) ([]int64, error) {
	return s.blocks.ListBlockedBy(ctx, blockerID)
}
