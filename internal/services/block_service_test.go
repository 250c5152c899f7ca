package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Metecanyavuz/KUstay-comp491/internal/models"
)

type memoryBlockStore struct {
	rows [][2]int64
}

func (m *memoryBlockStore) Block(_ context.Context, blockerID, blockedID int64) error {
	for _, row := range m.rows {
		if row == [2]int64{blockerID, blockedID} {
			return nil
		}
	}
	m.rows = append(m.rows, [2]int64{blockerID, blockedID})
	return nil
}

func (m *memoryBlockStore) Unblock(_ context.Context, blockerID, blockedID int64) error {
	kept := m.rows[:0]
	for _, row := range m.rows {
		if row != [2]int64{blockerID, blockedID} {
			kept = append(kept, row)
		}
	}
	m.rows = kept
	return nil
}

func (m *memoryBlockStore) ListBlockedBy(_ context.Context, blockerID int64) ([]int64, error) {
	ids := make([]int64, 0)
	for _, row := range m.rows {
		if row[0] == blockerID {
			ids = append(ids, row[1])
		}
	}
	return ids, nil
}

func TestBlockIsIdempotent(t *testing.T) {
	store := &memoryBlockStore{}
	service := NewBlockService(store, stubUsers{2: {ID: 2}})

	require.NoError(t, service.Block(context.Background(), 1, 2))
	require.NoError(t, service.Block(context.Background(), 1, 2))

	ids, err := service.ListBlocked(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, ids)
}

func TestBlockRejectsSelfAndUnknownUsers(t *testing.T) {
	service := NewBlockService(&memoryBlockStore{}, stubUsers{1: models.User{ID: 1}})

	assert.ErrorIs(t, service.Block(context.Background(), 1, 1), ErrInvalidInput)
	assert.ErrorIs(t, service.Block(context.Background(), 1, 0), ErrInvalidInput)
	assert.ErrorIs(t, service.Block(context.Background(), 1, 42), ErrUserNotFound)
}

func TestUnblockRemovesOnlyOwnRow(t *testing.T) {
	store := &memoryBlockStore{rows: [][2]int64{{1, 2}, {2, 1}}}
	service := NewBlockService(store, stubUsers{})

	require.NoError(t, service.Unblock(context.Background(), 1, 2))

	assert.Equal(t, [][2]int64{{2, 1}}, store.rows)
}
