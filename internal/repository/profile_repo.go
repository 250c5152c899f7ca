package repository

import (
	"context"
	"time"

	"github.com/Metecanyavuz/KUstay-comp491/internal/models"
)

type ProfileRepository struct {
	db DBTX
}

func NewProfileRepository(db DBTX) *ProfileRepository {
	return &ProfileRepository{db: db}
}

const profileColumns = `id, user_id, budget_min, budget_max, move_in_date, smoker, pets,
	sleep_schedule, cleanliness_level, room_type_preference, preferred_neighborhoods,
	lifestyle_notes, department, faculty, created_at, updated_at`

const profileColumnsP = `p.id, p.user_id, p.budget_min, p.budget_max, p.move_in_date, p.smoker, p.pets,
	p.sleep_schedule, p.cleanliness_level, p.room_type_preference, p.preferred_neighborhoods,
	p.lifestyle_notes, p.department, p.faculty, p.created_at, p.updated_at`

func profileScanTargets(profile *models.Profile) []any {
	return []any{
		&profile.ID,
		&profile.UserID,
		&profile.BudgetMin,
		&profile.BudgetMax,
		&profile.MoveInDate,
		&profile.Smoker,
		&profile.Pets,
		&profile.SleepSchedule,
		&profile.CleanlinessLevel,
		&profile.RoomTypePreference,
		&profile.PreferredNeighborhoods,
		&profile.LifestyleNotes,
		&profile.Department,
		&profile.Faculty,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	}
}

func (r *ProfileRepository) GetByUserID(ctx context.Context, userID int64) (*models.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE user_id = $1`

	var profile models.Profile
	if err := r.db.QueryRow(ctx, query, userID).Scan(profileScanTargets(&profile)...); err != nil {
		return nil, err
	}
	return &profile, nil
}

// Upsert creates the user's profile or overwrites every field of it.
func (r *ProfileRepository) Upsert(ctx context.Context, userID int64, input ProfileInput) (*models.Profile, error) {
	query := `
		INSERT INTO profiles (
			user_id, budget_min, budget_max, move_in_date, smoker, pets, sleep_schedule,
			cleanliness_level, room_type_preference, preferred_neighborhoods,
			lifestyle_notes, department, faculty
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (user_id) DO UPDATE
		SET budget_min = EXCLUDED.budget_min,
			budget_max = EXCLUDED.budget_max,
			move_in_date = EXCLUDED.move_in_date,
			smoker = EXCLUDED.smoker,
			pets = EXCLUDED.pets,
			sleep_schedule = EXCLUDED.sleep_schedule,
			cleanliness_level = EXCLUDED.cleanliness_level,
			room_type_preference = EXCLUDED.room_type_preference,
			preferred_neighborhoods = EXCLUDED.preferred_neighborhoods,
			lifestyle_notes = EXCLUDED.lifestyle_notes,
			department = EXCLUDED.department,
			faculty = EXCLUDED.faculty,
			updated_at = NOW()
		RETURNING ` + profileColumns

	neighborhoods := input.PreferredNeighborhoods
	if neighborhoods == nil {
		neighborhoods = []string{}
	}

	var profile models.Profile
	err := r.db.QueryRow(ctx, query,
		userID,
		input.BudgetMin,
		input.BudgetMax,
		input.MoveInDate,
		input.Smoker,
		input.Pets,
		input.SleepSchedule,
		input.CleanlinessLevel,
		input.RoomTypePreference,
		neighborhoods,
		input.LifestyleNotes,
		input.Department,
		input.Faculty,
	).Scan(profileScanTargets(&profile)...)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

type ProfileInput struct {
	BudgetMin              float64
	BudgetMax              float64
	MoveInDate             *time.Time
	Smoker                 bool
	Pets                   bool
	SleepSchedule          models.SleepSchedule
	CleanlinessLevel       models.CleanlinessLevel
	RoomTypePreference     models.RoomType
	PreferredNeighborhoods []string
	LifestyleNotes         string
	Department             string
	Faculty                string
}
