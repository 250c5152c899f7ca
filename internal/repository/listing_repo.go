package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Metecanyavuz/KUstay-comp491/internal/models"
)

type ListingInput struct {
	Title          string
	Description    string
	ListingType    models.ListingType
	Address        string
	Neighborhood   string
	Latitude       *float64
	Longitude      *float64
	RentAmount     float64
	AvailableFrom  *time.Time
	RoomType       models.RoomType
	TotalRooms     int
	AvailableRooms int
	Amenities      []string
	HouseRules     string
	IsActive       bool
}

type ListingRepository struct {
	db DBTX
}

func NewListingRepository(db DBTX) *ListingRepository {
	return &ListingRepository{db: db}
}

const listingColumnsL = `l.id, l.owner_id, u.username, l.title, l.description, l.listing_type,
	l.address, l.neighborhood, l.latitude, l.longitude, l.rent_amount, l.available_from,
	l.room_type, l.total_rooms, l.available_rooms, l.amenities, l.house_rules, l.is_active,
	l.created_at, l.updated_at`

func scanListing(row pgx.Row) (models.Listing, error) {
	var listing models.Listing
	err := row.Scan(
		&listing.ID,
		&listing.OwnerID,
		&listing.Owner,
		&listing.Title,
		&listing.Description,
		&listing.ListingType,
		&listing.Address,
		&listing.Neighborhood,
		&listing.Latitude,
		&listing.Longitude,
		&listing.RentAmount,
		&listing.AvailableFrom,
		&listing.RoomType,
		&listing.TotalRooms,
		&listing.AvailableRooms,
		&listing.Amenities,
		&listing.HouseRules,
		&listing.IsActive,
		&listing.CreatedAt,
		&listing.UpdatedAt,
	)
	return listing, err
}

func (r *ListingRepository) Create(ctx context.Context, ownerID int64, input ListingInput) (*models.Listing, error) {
	query := `
		WITH saved AS (
			INSERT INTO listings (
				owner_id, title, description, listing_type, address, neighborhood,
				latitude, longitude, rent_amount, available_from, room_type,
				total_rooms, available_rooms, amenities, house_rules, is_active
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
			RETURNING *
		)
		SELECT ` + listingColumnsL + `
		FROM saved l
		JOIN users u ON u.id = l.owner_id`

	args := append([]any{ownerID}, input.values()...)
	listing, err := scanListing(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, err
	}
	listing.Images = []models.ListingImage{}
	return &listing, nil
}

// Update overwrites every editable field of the listing.
func (r *ListingRepository) Update(ctx context.Context, listingID int64, input ListingInput) (*models.Listing, error) {
	query := `
		WITH saved AS (
			UPDATE listings
			SET title = $2,
				description = $3,
				listing_type = $4,
				address = $5,
				neighborhood = $6,
				latitude = $7,
				longitude = $8,
				rent_amount = $9,
				available_from = $10,
				room_type = $11,
				total_rooms = $12,
				available_rooms = $13,
				amenities = $14,
				house_rules = $15,
				is_active = $16,
				updated_at = NOW()
			WHERE id = $1
			RETURNING *
		)
		SELECT ` + listingColumnsL + `
		FROM saved l
		JOIN users u ON u.id = l.owner_id`

	args := append([]any{listingID}, input.values()...)
	listing, err := scanListing(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, err
	}
	if err := r.attachImages(ctx, []*models.Listing{&listing}); err != nil {
		return nil, err
	}
	return &listing, nil
}

func (input ListingInput) values() []any {
	amenities := input.Amenities
	if amenities == nil {
		amenities = []string{}
	}
	return []any{
		input.Title,
		input.Description,
		input.ListingType,
		input.Address,
		input.Neighborhood,
		input.Latitude,
		input.Longitude,
		input.RentAmount,
		input.AvailableFrom,
		input.RoomType,
		input.TotalRooms,
		input.AvailableRooms,
		amenities,
		input.HouseRules,
		input.IsActive,
	}
}

// GetByID returns the listing whether or not it is active.
func (r *ListingRepository) GetByID(ctx context.Context, listingID int64) (*models.Listing, error) {
	listing, err := scanListing(r.db.QueryRow(ctx, `
		SELECT `+listingColumnsL+`
		FROM listings l
		JOIN users u ON u.id = l.owner_id
		WHERE l.id = $1
	`, listingID))
	if err != nil {
		return nil, err
	}
	if err := r.attachImages(ctx, []*models.Listing{&listing}); err != nil {
		return nil, err
	}
	return &listing, nil
}

// ListActive returns active listings matching filter, newest first.
func (r *ListingRepository) ListActive(ctx context.Context, filter models.ListingFilter) ([]models.Listing, error) {
	where, args := buildListingFilter(filter)
	return r.list(ctx, `
		SELECT `+listingColumnsL+`
		FROM listings l
		JOIN users u ON u.id = l.owner_id
		WHERE `+where+`
		ORDER BY l.created_at DESC, l.id DESC
	`, args...)
}

// ListByOwner includes the owner's inactive listings.
func (r *ListingRepository) ListByOwner(ctx context.Context, ownerID int64) ([]models.Listing, error) {
	return r.list(ctx, `
		SELECT `+listingColumnsL+`
		FROM listings l
		JOIN users u ON u.id = l.owner_id
		WHERE l.owner_id = $1
		ORDER BY l.created_at DESC, l.id DESC
	`, ownerID)
}

func (r *ListingRepository) list(ctx context.Context, query string, args ...any) ([]models.Listing, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	listings, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Listing, error) {
		return scanListing(row)
	})
	if err != nil {
		return nil, err
	}

	refs := make([]*models.Listing, len(listings))
	for i := range listings {
		refs[i] = &listings[i]
	}
	if err := r.attachImages(ctx, refs); err != nil {
		return nil, err
	}
	return listings, nil
}

// Delete removes the listing; its image rows go with it.
func (r *ListingRepository) Delete(ctx context.Context, listingID int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM listings WHERE id = $1`, listingID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// AddImage stores a photo reference. A primary image demotes the previous
// one.
func (r *ListingRepository) AddImage(
	ctx context.Context,
	listingID int64,
	objectKey string,
	primary bool,
) (*models.ListingImage, error) {
	if primary {
		if _, err := r.db.Exec(ctx, `
			UPDATE listing_images SET is_primary = FALSE
			WHERE listing_id = $1 AND is_primary
		`, listingID); err != nil {
			return nil, err
		}
	}

	image, err := scanListingImage(r.db.QueryRow(ctx, `
		INSERT INTO listing_images (listing_id, object_key, is_primary)
		VALUES ($1, $2, $3)
		RETURNING `+listingImageColumns, listingID, objectKey, primary))
	if err != nil {
		return nil, err
	}
	return &image, nil
}

// DeleteImage removes one photo of the listing and returns its object key.
func (r *ListingRepository) DeleteImage(ctx context.Context, listingID, imageID int64) (string, error) {
	var objectKey string
	err := r.db.QueryRow(ctx, `
		DELETE FROM listing_images
		WHERE id = $1 AND listing_id = $2
		RETURNING object_key
	`, imageID, listingID).Scan(&objectKey)
	return objectKey, err
}

const listingImageColumns = `id, listing_id, object_key, is_primary, uploaded_at`

func scanListingImage(row pgx.Row) (models.ListingImage, error) {
	var image models.ListingImage
	err := row.Scan(&image.ID, &image.ListingID, &image.ObjectKey, &image.IsPrimary, &image.UploadedAt)
	return image, err
}

func (r *ListingRepository) attachImages(ctx context.Context, listings []*models.Listing) error {
	if len(listings) == 0 {
		return nil
	}

	byID := make(map[int64]*models.Listing, len(listings))
	ids := make([]int64, 0, len(listings))
	for _, listing := range listings {
		listing.Images = []models.ListingImage{}
		byID[listing.ID] = listing
		ids = append(ids, listing.ID)
	}

	rows, err := r.db.Query(ctx, `
		SELECT `+listingImageColumns+`
		FROM listing_images
		WHERE listing_id = ANY($1)
		ORDER BY is_primary DESC, uploaded_at, id
	`, ids)
	if err != nil {
		return err
	}
	images, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.ListingImage, error) {
		return scanListingImage(row)
	})
	if err != nil {
		return err
	}

	for _, image := range images {
		if listing, ok := byID[image.ListingID]; ok {
			listing.Images = append(listing.Images, image)
		}
	}
	return nil
}

// buildListingFilter renders the WHERE clause of the public browse. Location
// and amenity terms are case-insensitive substring matches; every amenity
// term must match.
func buildListingFilter(filter models.ListingFilter) (string, []any) {
	clauses := []string{"l.is_active = TRUE"}
	args := make([]any, 0, 3+len(filter.Amenities))
	next := func(value any) string {
		args = append(args, value)
		return fmt.Sprintf("$%d", len(args))
	}

	if location := strings.TrimSpace(filter.Location); location != "" {
		placeholder := next(containsPattern(location))
		clauses = append(clauses, fmt.Sprintf(
			"(l.title ILIKE %[1]s OR l.address ILIKE %[1]s OR l.neighborhood ILIKE %[1]s)",
			placeholder,
		))
	}
	if filter.PriceMin != nil {
		clauses = append(clauses, "l.rent_amount >= "+next(*filter.PriceMin))
	}
	if filter.PriceMax != nil {
		clauses = append(clauses, "l.rent_amount <= "+next(*filter.PriceMax))
	}
	for _, term := range filter.Amenities {
		term = strings.TrimSpace(term)
		if term == "" {
			continue
		}
		clauses = append(clauses, "array_to_string(l.amenities, ',') ILIKE "+next(containsPattern(term)))
	}

	return strings.Join(clauses, " AND "), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func containsPattern(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}
