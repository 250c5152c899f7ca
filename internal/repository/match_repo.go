package repository

import (
	"context"

	"github.com/Metecanyavuz/KUstay-comp491/internal/models"
)

type MatchRepository struct {
	db DBTX
}

func NewMatchRepository(db DBTX) *MatchRepository {
	return &MatchRepository{db: db}
}

// Upsert writes the score for match.User1ID/User2ID, which must already be in
// canonical order. The unique constraint on the pair makes concurrent writers
// converge on one row.
func (r *MatchRepository) Upsert(ctx context.Context, match *models.MatchCompatibility) error {
	query := `
		INSERT INTO match_compatibilities (user1_id, user2_id, compatibility_score, matching_criteria, calculated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user1_id, user2_id) DO UPDATE
		SET compatibility_score = EXCLUDED.compatibility_score,
			matching_criteria = EXCLUDED.matching_criteria,
			calculated_at = EXCLUDED.calculated_at
		RETURNING id
	`
	return r.db.QueryRow(ctx, query,
		match.User1ID,
		match.User2ID,
		match.CompatibilityScore,
		match.MatchingCriteria,
		match.CalculatedAt,
	).Scan(&match.ID)
}

func (r *MatchRepository) GetPair(ctx context.Context, a, b int64) (*models.MatchCompatibility, error) {
	user1, user2 := models.CanonicalPair(a, b)
	query := `
		SELECT id, user1_id, user2_id, compatibility_score, matching_criteria, calculated_at
		FROM match_compatibilities
		WHERE user1_id = $1 AND user2_id = $2
	`

	var match models.MatchCompatibility
	err := r.db.QueryRow(ctx, query, user1, user2).Scan(
		&match.ID,
		&match.User1ID,
		&match.User2ID,
		&match.CompatibilityScore,
		&match.MatchingCriteria,
		&match.CalculatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &match, nil
}

// ListTopForUser returns the stored matches involving userID whose
// counterpart is verified, profiled and not blocked, best first.
func (r *MatchRepository) ListTopForUser(ctx context.Context, userID int64, limit int) ([]models.MatchView, error) {
	query := `
		SELECT u.id, u.username, u.first_name, u.last_name, p.department, p.faculty,
			   m.compatibility_score, m.matching_criteria, m.calculated_at
		FROM match_compatibilities m
		JOIN users u
		  ON u.id = CASE WHEN m.user1_id = $1 THEN m.user2_id ELSE m.user1_id END
		JOIN profiles p ON p.user_id = u.id
		WHERE (m.user1_id = $1 OR m.user2_id = $1)
		  AND u.is_verified = TRUE
		  AND NOT EXISTS (
			SELECT 1
			FROM blocked_users b
			WHERE (b.blocker_id = $1 AND b.blocked_id = u.id)
			   OR (b.blocker_id = u.id AND b.blocked_id = $1)
		  )
		ORDER BY m.compatibility_score DESC, m.calculated_at DESC
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	matches := make([]models.MatchView, 0)
	for rows.Next() {
		var view models.MatchView
		if err := rows.Scan(
			&view.Partner.ID,
			&view.Partner.Username,
			&view.Partner.FirstName,
			&view.Partner.LastName,
			&view.Partner.Department,
			&view.Partner.Faculty,
			&view.CompatibilityScore,
			&view.MatchingCriteria,
			&view.CalculatedAt,
		); err != nil {
			return nil, err
		}
		matches = append(matches, view)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return matches, nil
}
