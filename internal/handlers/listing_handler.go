package handlers

import (
	"context"
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/Metecanyavuz/KUstay-comp491/internal/models"
	"github.com/Metecanyavuz/KUstay-comp491/internal/repository"
	"github.com/Metecanyavuz/KUstay-comp491/internal/services"
)

const maxListingPhotoBytes = 5 * 1024 * 1024

var allowedPhotoTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/webp": {},
}

type listingApplicationService interface {
	ListListings(ctx context.Context, filter models.ListingFilter) ([]models.Listing, error)
	ListOwnListings(ctx context.Context, ownerID int64) ([]models.Listing, error)
	GetListing(ctx context.Context, viewerID, listingID int64) (*models.Listing, error)
	CreateListing(ctx context.Context, ownerID int64, input repository.ListingInput) (*models.Listing, error)
	UpdateListing(ctx context.Context, actorID, listingID int64, input repository.ListingInput) (*models.Listing, error)
	DeleteListing(ctx context.Context, actorID, listingID int64) error
	AddImage(ctx context.Context, actorID, listingID int64, upload services.ImageUpload) (*models.ListingImage, error)
	DeleteImage(ctx context.Context, actorID, listingID, imageID int64) error
}

type ListingHandler struct {
	service listingApplicationService
}

func NewListingHandler(service listingApplicationService) *ListingHandler {
	return &ListingHandler{service: service}
}

type saveListingRequest struct {
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	ListingType    string   `json:"listing_type"`
	Address        string   `json:"address"`
	Neighborhood   string   `json:"neighborhood"`
	Latitude       *float64 `json:"latitude"`
	Longitude      *float64 `json:"longitude"`
	RentAmount     float64  `json:"rent_amount"`
	AvailableFrom  *string  `json:"available_from"`
	RoomType       string   `json:"room_type"`
	TotalRooms     *int     `json:"total_rooms"`
	AvailableRooms *int     `json:"available_rooms"`
	Amenities      []string `json:"amenities"`
	HouseRules     string   `json:"house_rules"`
	IsActive       *bool    `json:"is_active"`
}

// ListListings is the public browse of active listings.
func (h *ListingHandler) ListListings(c *fiber.Ctx) error {
	listings, err := h.service.ListListings(c.Context(), parseListingFilter(c))
	if err != nil {
		return mapListingError(c, err)
	}
	return c.JSON(fiber.Map{"listings": listings, "count": len(listings)})
}

func (h *ListingHandler) ListMyListings(c *fiber.Ctx) error {
	userID, err := parseUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	listings, err := h.service.ListOwnListings(c.Context(), userID)
	if err != nil {
		return mapListingError(c, err)
	}
	return c.JSON(fiber.Map{"listings": listings, "count": len(listings)})
}

func (h *ListingHandler) GetListing(c *fiber.Ctx) error {
	listingID, ok := parseIDParam(c, "id")
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid listing id"})
	}

	// Anonymous callers browse as viewer 0.
	viewerID, _ := parseUserID(c)
	listing, err := h.service.GetListing(c.Context(), viewerID, listingID)
	if err != nil {
		return mapListingError(c, err)
	}
	return c.JSON(fiber.Map{"listing": listing})
}

func (h *ListingHandler) CreateListing(c *fiber.Ctx) error {
	userID, err := parseUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	input, errMessage := parseListingBody(c)
	if errMessage != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": errMessage})
	}

	listing, err := h.service.CreateListing(c.Context(), userID, input)
	if err != nil {
		return mapListingError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"listing": listing})
}

func (h *ListingHandler) UpdateListing(c *fiber.Ctx) error {
	userID, err := parseUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	listingID, ok := parseIDParam(c, "id")
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid listing id"})
	}

	input, errMessage := parseListingBody(c)
	if errMessage != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": errMessage})
	}

	listing, err := h.service.UpdateListing(c.Context(), userID, listingID, input)
	if err != nil {
		return mapListingError(c, err)
	}
	return c.JSON(fiber.Map{"listing": listing})
}

func (h *ListingHandler) DeleteListing(c *fiber.Ctx) error {
	userID, err := parseUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	listingID, ok := parseIDParam(c, "id")
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid listing id"})
	}

	if err := h.service.DeleteListing(c.Context(), userID, listingID); err != nil {
		return mapListingError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *ListingHandler) UploadImage(c *fiber.Ctx) error {
	userID, err := parseUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	listingID, ok := parseIDParam(c, "id")
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid listing id"})
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "image is required"})
	}
	if fileHeader.Size <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "image is empty"})
	}
	if fileHeader.Size > maxListingPhotoBytes {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "image exceeds 5MB limit"})
	}
	contentType := fileHeader.Header.Get("Content-Type")
	if _, ok := allowedPhotoTypes[contentType]; !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "image must be a JPEG, PNG or WebP file"})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to open image"})
	}
	defer file.Close()

	primary, _ := strconv.ParseBool(c.FormValue("is_primary"))
	image, err := h.service.AddImage(c.Context(), userID, listingID, services.ImageUpload{
		Body:        file,
		Size:        fileHeader.Size,
		Filename:    fileHeader.Filename,
		ContentType: contentType,
		Primary:     primary,
	})
	if err != nil {
		return mapListingError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"image": image})
}

func (h *ListingHandler) DeleteImage(c *fiber.Ctx) error {
	userID, err := parseUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	listingID, ok := parseIDParam(c, "id")
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid listing id"})
	}
	imageID, ok := parseIDParam(c, "imageId")
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid image id"})
	}

	if err := h.service.DeleteImage(c.Context(), userID, listingID, imageID); err != nil {
		return mapListingError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// parseListingFilter reads the browse query. Unparseable prices are ignored
// rather than rejected.
func parseListingFilter(c *fiber.Ctx) models.ListingFilter {
	filter := models.ListingFilter{
		Location: strings.TrimSpace(c.Query("location")),
		PriceMin: parsePrice(c.Query("price_min")),
		PriceMax: parsePrice(c.Query("price_max")),
	}
	if raw := c.Query("amenities"); raw != "" {
		for _, term := range strings.Split(raw, ",") {
			if term = strings.TrimSpace(term); term != "" {
				filter.Amenities = append(filter.Amenities, term)
			}
		}
	}
	return filter
}

func parsePrice(raw string) *float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return nil
	}
	return &value
}

func parseListingBody(c *fiber.Ctx) (repository.ListingInput, string) {
	var req saveListingRequest
	if err := c.BodyParser(&req); err != nil {
		return repository.ListingInput{}, "Invalid request body"
	}
	if validationErr := validateListingRequest(&req); validationErr != "" {
		return repository.ListingInput{}, validationErr
	}
	return toListingInput(req), ""
}

func toListingInput(req saveListingRequest) repository.ListingInput {
	input := repository.ListingInput{
		Title:          req.Title,
		Description:    strings.TrimSpace(req.Description),
		ListingType:    models.ListingType(req.ListingType),
		Address:        strings.TrimSpace(req.Address),
		Neighborhood:   strings.TrimSpace(req.Neighborhood),
		Latitude:       req.Latitude,
		Longitude:      req.Longitude,
		RentAmount:     req.RentAmount,
		RoomType:       models.RoomType(req.RoomType),
		TotalRooms:     *req.TotalRooms,
		AvailableRooms: *req.AvailableRooms,
		Amenities:      req.Amenities,
		HouseRules:     strings.TrimSpace(req.HouseRules),
		IsActive:       *req.IsActive,
	}
	if req.AvailableFrom != nil {
		if parsed, err := time.Parse(moveInDateLayout, strings.TrimSpace(*req.AvailableFrom)); err == nil {
			input.AvailableFrom = &parsed
		}
	}
	return input
}

func mapListingError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Only the owner can change this listing"})
	case errors.Is(err, services.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request"})
	case errors.Is(err, services.ErrStorageUnavailable):
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "Photo storage is unavailable"})
	case errors.Is(err, pgx.ErrNoRows):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Listing not found"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process listing request"})
	}
}
