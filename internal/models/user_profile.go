package models

import "time"

type SleepSchedule string

const (
	SleepEarlyBird SleepSchedule = "early_bird"
	SleepNightOwl  SleepSchedule = "night_owl"
	SleepFlexible  SleepSchedule = "flexible"
)

type CleanlinessLevel string

const (
	CleanlinessLow    CleanlinessLevel = "low"
	CleanlinessMedium CleanlinessLevel = "medium"
	CleanlinessHigh   CleanlinessLevel = "high"
)

type RoomType string

const (
	RoomPrivate     RoomType = "private"
	RoomShared      RoomType = "shared"
	RoomEntirePlace RoomType = "entire_place"
)

type Profile struct {
	ID                     int64            `json:"id"`
	UserID                 int64            `json:"user_id"`
	BudgetMin              float64          `json:"budget_min"`
	BudgetMax              float64          `json:"budget_max"`
	MoveInDate             *time.Time       `json:"move_in_date"`
	Smoker                 bool             `json:"smoker"`
	Pets                   bool             `json:"pets"`
	SleepSchedule          SleepSchedule    `json:"sleep_schedule"`
	CleanlinessLevel       CleanlinessLevel `json:"cleanliness_level"`
	RoomTypePreference     RoomType         `json:"room_type_preference"`
	PreferredNeighborhoods []string         `json:"preferred_neighborhoods"`
	LifestyleNotes         string           `json:"lifestyle_notes"`
	Department             string           `json:"department"`
	Faculty                string           `json:"faculty"`
	CreatedAt              time.Time        `json:"created_at"`
	UpdatedAt              time.Time        `json:"updated_at"`
}
