package handlers

import (
	"strings"
	"time"

	"github.com/Metecanyavuz/KUstay-comp491/internal/models"
)

const maxPreferredNeighborhoods = 10

// maxBudgetAmount keeps budgets inside the NUMERIC(10,2) columns.
const maxBudgetAmount = 1e8

const moveInDateLayout = "2006-01-02"

var allowedSleepSchedules = map[models.SleepSchedule]struct{}{
	models.SleepEarlyBird: {},
	models.SleepNightOwl:  {},
	models.SleepFlexible:  {},
}

var allowedCleanlinessLevels = map[models.CleanlinessLevel]struct{}{
	models.CleanlinessLow:    {},
	models.CleanlinessMedium: {},
	models.CleanlinessHigh:   {},
}

var allowedRoomTypes = map[models.RoomType]struct{}{
	models.RoomPrivate:     {},
	models.RoomShared:      {},
	models.RoomEntirePlace: {},
}

// validateProfileRequest checks the request and fills enum defaults in place.
func validateProfileRequest(req *saveProfileRequest) string {
	if req.BudgetMin < 0 {
		return "budget_min must be 0 or greater"
	}
	if req.BudgetMax < 0 {
		return "budget_max must be 0 or greater"
	}
	if req.BudgetMin >= maxBudgetAmount || req.BudgetMax >= maxBudgetAmount {
		return "budget values must be less than 100000000"
	}

	req.SleepSchedule = strings.TrimSpace(req.SleepSchedule)
	if req.SleepSchedule == "" {
		req.SleepSchedule = string(models.SleepFlexible)
	}
	if _, ok := allowedSleepSchedules[models.SleepSchedule(req.SleepSchedule)]; !ok {
		return "sleep_schedule must be one of: early_bird, night_owl, flexible"
	}

	req.CleanlinessLevel = strings.TrimSpace(req.CleanlinessLevel)
	if req.CleanlinessLevel == "" {
		req.CleanlinessLevel = string(models.CleanlinessMedium)
	}
	if _, ok := allowedCleanlinessLevels[models.CleanlinessLevel(req.CleanlinessLevel)]; !ok {
		return "cleanliness_level must be one of: low, medium, high"
	}

	req.RoomTypePreference = strings.TrimSpace(req.RoomTypePreference)
	if req.RoomTypePreference == "" {
		req.RoomTypePreference = string(models.RoomPrivate)
	}
	if _, ok := allowedRoomTypes[models.RoomType(req.RoomTypePreference)]; !ok {
		return "room_type_preference must be one of: private, shared, entire_place"
	}

	if len(req.PreferredNeighborhoods) > maxPreferredNeighborhoods {
		return "preferred_neighborhoods must contain at most 10 items"
	}
	for i, neighborhood := range req.PreferredNeighborhoods {
		trimmed := strings.TrimSpace(neighborhood)
		if trimmed == "" {
			return "preferred_neighborhoods must not contain empty values"
		}
		req.PreferredNeighborhoods[i] = trimmed
	}

	if req.MoveInDate != nil && strings.TrimSpace(*req.MoveInDate) != "" {
		if _, err := time.Parse(moveInDateLayout, strings.TrimSpace(*req.MoveInDate)); err != nil {
			return "move_in_date must use YYYY-MM-DD"
		}
	}
	return ""
}
