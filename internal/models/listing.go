package models

import "time"

type ListingType string

const (
	ListingApartment ListingType = "apartment"
	ListingHouse     ListingType = "house"
	ListingRoom      ListingType = "room"
)

// Listing is a rental offer published by a student.
type Listing struct {
	ID             int64          `json:"listing_id"`
	OwnerID        int64          `json:"owner_id"`
	Owner          string         `json:"user"`
	Title          string         `json:"title"`
	Description    string         `json:"description"`
	ListingType    ListingType    `json:"listing_type"`
	Address        string         `json:"address"`
	Neighborhood   string         `json:"neighborhood"`
	Latitude       *float64       `json:"latitude"`
	Longitude      *float64       `json:"longitude"`
	RentAmount     float64        `json:"rent_amount"`
	AvailableFrom  *time.Time     `json:"available_from"`
	RoomType       RoomType       `json:"room_type"`
	TotalRooms     int            `json:"total_rooms"`
	AvailableRooms int            `json:"available_rooms"`
	Amenities      []string       `json:"amenities"`
	HouseRules     string         `json:"house_rules"`
	IsActive       bool           `json:"is_active"`
	Images         []ListingImage `json:"images"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// ListingImage is one stored photo. ObjectKey addresses it in the photo
// bucket; URL is filled in when the listing is served.
type ListingImage struct {
	ID         int64     `json:"image_id"`
	ListingID  int64     `json:"-"`
	ObjectKey  string    `json:"-"`
	URL        string    `json:"image_url"`
	IsPrimary  bool      `json:"is_primary"`
	UploadedAt time.Time `json:"upload_date"`
}

// ListingFilter narrows the public browse. Zero values do not filter.
type ListingFilter struct {
	Location  string
	PriceMin  *float64
	PriceMax  *float64
	Amenities []string
}
