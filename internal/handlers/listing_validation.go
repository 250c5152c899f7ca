package handlers

import (
	"strings"
	"time"

	"github.com/Metecanyavuz/KUstay-comp491/internal/models"
)

const (
	maxListingTitleLength = 200
	maxListingAmenities   = 30
)

var allowedListingTypes = map[models.ListingType]struct{}{
	models.ListingApartment: {},
	models.ListingHouse:     {},
	models.ListingRoom:      {},
}

// validateListingRequest checks the request and fills defaults in place.
func validateListingRequest(req *saveListingRequest) string {
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return "title is required"
	}
	if len([]rune(req.Title)) > maxListingTitleLength {
		return "title must be at most 200 characters"
	}

	req.ListingType = strings.TrimSpace(req.ListingType)
	if req.ListingType == "" {
		req.ListingType = string(models.ListingApartment)
	}
	if _, ok := allowedListingTypes[models.ListingType(req.ListingType)]; !ok {
		return "listing_type must be one of: apartment, house, room"
	}

	req.RoomType = strings.TrimSpace(req.RoomType)
	if req.RoomType == "" {
		req.RoomType = string(models.RoomPrivate)
	}
	if _, ok := allowedRoomTypes[models.RoomType(req.RoomType)]; !ok {
		return "room_type must be one of: private, shared, entire_place"
	}

	if req.RentAmount < 0 {
		return "rent_amount must be 0 or greater"
	}
	if req.RentAmount >= maxBudgetAmount {
		return "rent_amount must be less than 100000000"
	}

	if req.TotalRooms == nil {
		one := 1
		req.TotalRooms = &one
	}
	if req.AvailableRooms == nil {
		req.AvailableRooms = req.TotalRooms
	}
	if *req.TotalRooms < 0 || *req.AvailableRooms < 0 {
		return "room counts must be 0 or greater"
	}
	if *req.AvailableRooms > *req.TotalRooms {
		return "available_rooms cannot exceed total_rooms"
	}

	if req.Latitude != nil && (*req.Latitude < -90 || *req.Latitude > 90) {
		return "latitude must be between -90 and 90"
	}
	if req.Longitude != nil && (*req.Longitude < -180 || *req.Longitude > 180) {
		return "longitude must be between -180 and 180"
	}

	if req.AvailableFrom != nil && strings.TrimSpace(*req.AvailableFrom) != "" {
		if _, err := time.Parse(moveInDateLayout, strings.TrimSpace(*req.AvailableFrom)); err != nil {
			return "available_from must use YYYY-MM-DD"
		}
	}

	amenities := make([]string, 0, len(req.Amenities))
	for _, amenity := range req.Amenities {
		if trimmed := strings.TrimSpace(amenity); trimmed != "" {
			amenities = append(amenities, trimmed)
		}
	}
	if len(amenities) > maxListingAmenities {
		return "amenities must contain at most 30 items"
	}
	req.Amenities = amenities

	if req.IsActive == nil {
		active := true
		req.IsActive = &active
	}
	return ""
}
