package handlers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/Metecanyavuz/KUstay-comp491/internal/services"
)

type blockApplicationService interface {
	Block(ctx context.Context, blockerID, blockedID int64) error
	Unblock(ctx context.Context, blockerID, blockedID int64) error
	ListBlocked(ctx context.Context, blockerID int64) ([]int64, error)
}

type BlockHandler struct {
	service blockApplicationService
}

func NewBlockHandler(service blockApplicationService) *BlockHandler {
	return &BlockHandler{service: service}
}

func (h *BlockHandler) ListBlocked(c *fiber.Ctx) error {
	userID, err := parseUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	ids, err := h.service.ListBlocked(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to list blocked users"})
	}

	return c.JSON(fiber.Map{"blocked_user_ids": ids})
}

func (h *BlockHandler) Block(c *fiber.Ctx) error {
	userID, err := parseUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	targetID, ok := parseIDParam(c, "id")
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user id"})
	}

	if err := h.service.Block(c.Context(), userID, targetID); err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidInput):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "You cannot block yourself"})
		case errors.Is(err, services.ErrUserNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to block user"})
		}
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"blocked_user_id": targetID})
}

func (h *BlockHandler) Unblock(c *fiber.Ctx) error {
	userID, err := parseUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	targetID, ok := parseIDParam(c, "id")
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user id"})
	}

	if err := h.service.Unblock(c.Context(), userID, targetID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to unblock user"})
	}

	return c.SendStatus(fiber.StatusNoContent)
}
