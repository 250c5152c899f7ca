package handlers

import (
	"context"
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/Metecanyavuz/KUstay-comp491/internal/models"
	"github.com/Metecanyavuz/KUstay-comp491/internal/services"
)

const profileRequiredDetail = "Verified profile required to view matches."

type matchReader interface {
	TopMatches(ctx context.Context, userID int64, limit int) ([]models.MatchView, error)
}

type MatchHandler struct {
	service      matchReader
	defaultLimit int
}

func NewMatchHandler(service matchReader, defaultLimit int) *MatchHandler {
	if defaultLimit <= 0 {
		defaultLimit = services.DefaultMatchLimit
	}
	return &MatchHandler{service: service, defaultLimit: defaultLimit}
}

type matchEntry struct {
	User     models.UserSummary   `json:"user"`
	Score    int                  `json:"score"`
	Criteria models.MatchCriteria `json:"criteria"`
}

type topMatchEntry struct {
	User               models.UserSummary   `json:"user"`
	CompatibilityScore float64              `json:"compatibility_score"`
	MatchingCriteria   models.MatchCriteria `json:"matching_criteria"`
}

func (h *MatchHandler) ListMatches(c *fiber.Ctx) error {
	userID, err := parseUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	matches, err := h.service.TopMatches(c.Context(), userID, h.parseLimit(c))
	if err != nil {
		if errors.Is(err, services.ErrProfileRequired) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": profileRequiredDetail})
		}
		return mapMatchError(c, err)
	}

	entries := make([]matchEntry, 0, len(matches))
	for _, match := range matches {
		entries = append(entries, matchEntry{
			User:     match.Partner,
			Score:    match.CompatibilityScore,
			Criteria: match.MatchingCriteria,
		})
	}

	return c.JSON(fiber.Map{"matches": entries})
}

func (h *MatchHandler) TopMatches(c *fiber.Ctx) error {
	userID, err := parseUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	matches, err := h.service.TopMatches(c.Context(), userID, h.parseLimit(c))
	if err != nil {
		if errors.Is(err, services.ErrProfileRequired) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": profileRequiredDetail})
		}
		return mapMatchError(c, err)
	}

	results := make([]topMatchEntry, 0, len(matches))
	for _, match := range matches {
		results = append(results, topMatchEntry{
			User:               match.Partner,
			CompatibilityScore: float64(match.CompatibilityScore),
			MatchingCriteria:   match.MatchingCriteria,
		})
	}

	return c.JSON(fiber.Map{"results": results, "count": len(results)})
}

// parseLimit falls back to the default when the value is missing or not a
// number. Range clamping happens in the service.
func (h *MatchHandler) parseLimit(c *fiber.Ctx) int {
	raw := c.Query("limit")
	if raw == "" {
		return h.defaultLimit
	}
	limit, err := strconv.Atoi(raw)
	if err != nil {
		return h.defaultLimit
	}
	return limit
}

func mapMatchError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrUserNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load matches"})
	}
}
