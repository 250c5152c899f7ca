package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
)

type BlockRepository struct {
	db DBTX
}

func NewBlockRepository(db DBTX) *BlockRepository {
	return &BlockRepository{db: db}
}

// Block records that blockerID blocked blockedID. Repeating it is a no-op.
func (r *BlockRepository) Block(ctx context.Context, blockerID, blockedID int64) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO blocked_users (blocker_id, blocked_id)
		VALUES ($1, $2)
		ON CONFLICT (blocker_id, blocked_id) DO NOTHING
	`, blockerID, blockedID)
	return err
}

func (r *BlockRepository) Unblock(ctx context.Context, blockerID, blockedID int64) error {
	_, err := r.db.Exec(ctx, `
		DELETE FROM blocked_users
		WHERE blocker_id = $1 AND blocked_id = $2
	`, blockerID, blockedID)
	return err
}

func (r *BlockRepository) ListBlockedBy(ctx context.Context, blockerID int64) ([]int64, error) {
	rows, err := r.db.Query(ctx, `
		SELECT blocked_id
		FROM blocked_users
		WHERE blocker_id = $1
		ORDER BY created_at DESC, blocked_id
	`, blockerID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[int64])
}

// CounterpartIDs returns every user in a block relation with userID, in
// either direction.
func (r *BlockRepository) CounterpartIDs(ctx context.Context, userID int64) (map[int64]struct{}, error) {
	rows, err := r.db.Query(ctx, `
		SELECT blocked_id FROM blocked_users WHERE blocker_id = $1
		UNION
		SELECT blocker_id FROM blocked_users WHERE blocked_id = $1
	`, userID)
	if err != nil {
		return nil, err
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, err
	}

	counterparts := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		counterparts[id] = struct{}{}
	}
	return counterparts, nil
}

func (r *BlockRepository) IsBlockedEitherWay(ctx context.Context, a, b int64) (bool, error) {
	var blocked bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1
			FROM blocked_users
			WHERE (blocker_id = $1 AND blocked_id = $2)
			   OR (blocker_id = $2 AND blocked_id = $1)
		)
	`, a, b).Scan(&blocked)
	return blocked, err
}
