package handlers

import (
	"context"
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/Metecanyavuz/KUstay-comp491/internal/services"
)

type matchRecomputer interface {
	Refresh(ctx context.Context, userID int64) (int, error)
	RefreshAll(ctx context.Context) (int, error)
}

type AdminHandler struct {
	matches matchRecomputer
}

func NewAdminHandler(matches matchRecomputer) *AdminHandler {
	return &AdminHandler{matches: matches}
}

// RecomputeMatches refreshes every eligible user, or only ?user_id= when set.
func (h *AdminHandler) RecomputeMatches(c *fiber.Ctx) error {
	var (
		updated int
		err     error
	)

	if raw := c.Query("user_id"); raw != "" {
		userID, parseErr := strconv.ParseInt(raw, 10, 64)
		if parseErr != nil || userID <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user id"})
		}
		updated, err = h.matches.Refresh(c.Context(), userID)
		if errors.Is(err, services.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
		}
	} else {
		// Per-user failures, including users deleted mid-batch, are partial
		// results rather than a missing resource.
		updated, err = h.matches.RefreshAll(c.Context())
	}

	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":           "Match recompute finished with errors",
			"matches_updated": updated,
		})
	}

	return c.JSON(fiber.Map{"matches_updated": updated})
}
