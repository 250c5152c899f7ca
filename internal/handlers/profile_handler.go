package handlers

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/Metecanyavuz/KUstay-comp491/internal/models"
	"github.com/Metecanyavuz/KUstay-comp491/internal/repository"
)

type profileApplicationService interface {
	GetProfile(ctx context.Context, userID int64) (*models.Profile, error)
	SaveProfile(ctx context.Context, userID int64, input repository.ProfileInput) (*models.Profile, int, error)
}

type ProfileHandler struct {
	service profileApplicationService
}

func NewProfileHandler(service profileApplicationService) *ProfileHandler {
	return &ProfileHandler{service: service}
}

type saveProfileRequest struct {
	BudgetMin              float64  `json:"budget_min"`
	BudgetMax              float64  `json:"budget_max"`
	MoveInDate             *string  `json:"move_in_date"`
	Smoker                 bool     `json:"smoker"`
	Pets                   bool     `json:"pets"`
	SleepSchedule          string   `json:"sleep_schedule"`
	CleanlinessLevel       string   `json:"cleanliness_level"`
	RoomTypePreference     string   `json:"room_type_preference"`
	PreferredNeighborhoods []string `json:"preferred_neighborhoods"`
	LifestyleNotes         string   `json:"lifestyle_notes"`
	Department             string   `json:"department"`
	Faculty                string   `json:"faculty"`
}

func (h *ProfileHandler) GetProfile(c *fiber.Ctx) error {
	userID, err := parseUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	profile, err := h.service.GetProfile(c.Context(), userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Profile not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch profile"})
	}

	return c.JSON(fiber.Map{"profile": profile})
}

func (h *ProfileHandler) SaveProfile(c *fiber.Ctx) error {
	userID, err := parseUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req saveProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if validationErr := validateProfileRequest(&req); validationErr != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": validationErr})
	}

	profile, updated, err := h.service.SaveProfile(c.Context(), userID, toProfileInput(req))
	if err != nil && profile == nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to save profile"})
	}

	response := fiber.Map{
		"profile":         profile,
		"matches_updated": updated,
	}
	if err != nil {
		response["warning"] = "Profile saved but matches could not be refreshed"
	}
	return c.JSON(response)
}

func toProfileInput(req saveProfileRequest) repository.ProfileInput {
	input := repository.ProfileInput{
		BudgetMin:              req.BudgetMin,
		BudgetMax:              req.BudgetMax,
		Smoker:                 req.Smoker,
		Pets:                   req.Pets,
		SleepSchedule:          models.SleepSchedule(req.SleepSchedule),
		CleanlinessLevel:       models.CleanlinessLevel(req.CleanlinessLevel),
		RoomTypePreference:     models.RoomType(req.RoomTypePreference),
		PreferredNeighborhoods: req.PreferredNeighborhoods,
		LifestyleNotes:         strings.TrimSpace(req.LifestyleNotes),
		Department:             strings.TrimSpace(req.Department),
		Faculty:                strings.TrimSpace(req.Faculty),
	}
	if req.MoveInDate != nil {
		if parsed, err := time.Parse(moveInDateLayout, strings.TrimSpace(*req.MoveInDate)); err == nil {
			input.MoveInDate = &parsed
		}
	}
	return input
}
