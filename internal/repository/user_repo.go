package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Metecanyavuz/KUstay-comp491/internal/models"
)

type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type UserRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, username, email, password_hash, first_name, last_name, role, is_verified, created_at, updated_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.FirstName,
		&user.LastName,
		&user.Role,
		&user.IsVerified,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) CreateUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (username, email, password_hash, first_name, last_name, role)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, is_verified, created_at, updated_at
	`
	return r.db.QueryRow(ctx, query,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.FirstName,
		user.LastName,
		user.Role,
	).Scan(&user.ID, &user.IsVerified, &user.CreatedAt, &user.UpdatedAt)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (r *UserRepository) MarkVerified(ctx context.Context, id int64) (*models.User, error) {
	query := `
		UPDATE users
		SET is_verified = TRUE,
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns
	return scanUser(r.db.QueryRow(ctx, query, id))
}

// ListEligible returns every verified user that has a profile.
func (r *UserRepository) ListEligible(ctx context.Context) ([]models.UserWithProfile, error) {
	query := `
		SELECT u.id, u.username, u.email, u.first_name, u.last_name, u.role, u.is_verified,
			   u.created_at, u.updated_at, ` + profileColumnsP + `
		FROM users u
		JOIN profiles p ON p.user_id = u.id
		WHERE u.is_verified = TRUE
		ORDER BY u.id
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	eligible := make([]models.UserWithProfile, 0)
	for rows.Next() {
		var user models.User
		var profile models.Profile
		dest := []any{
			&user.ID,
			&user.Username,
			&user.Email,
			&user.FirstName,
			&user.LastName,
			&user.Role,
			&user.IsVerified,
			&user.CreatedAt,
			&user.UpdatedAt,
		}
		if err := rows.Scan(append(dest, profileScanTargets(&profile)...)...); err != nil {
			return nil, err
		}
		eligible = append(eligible, models.UserWithProfile{User: user, Profile: &profile})
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return eligible, nil
}

// ListEligibleIDs returns the ids of verified users with a profile, ascending.
func (r *UserRepository) ListEligibleIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.db.Query(ctx, `
		SELECT u.id
		FROM users u
		JOIN profiles p ON p.user_id = u.id
		WHERE u.is_verified = TRUE
		ORDER BY u.id
	`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[int64])
}
