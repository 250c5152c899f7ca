package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/Metecanyavuz/KUstay-comp491/internal/models"
	"github.com/Metecanyavuz/KUstay-comp491/internal/repository"
)

type ListingStore interface {
	Create(ctx context.Context, ownerID int64, input repository.ListingInput) (*models.Listing, error)
	Update(ctx context.Context, listingID int64, input repository.ListingInput) (*models.Listing, error)
	GetByID(ctx context.Context, listingID int64) (*models.Listing, error)
	ListActive(ctx context.Context, filter models.ListingFilter) ([]models.Listing, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]models.Listing, error)
	Delete(ctx context.Context, listingID int64) error
	AddImage(ctx context.Context, listingID int64, objectKey string, primary bool) (*models.ListingImage, error)
	DeleteImage(ctx context.Context, listingID, imageID int64) (string, error)
}

// ImageUpload is a listing photo as received from the client.
type ImageUpload struct {
	Body        io.Reader
	Size        int64
	Filename    string
	ContentType string
	Primary     bool
}

type ListingService struct {
	listings ListingStore
	photos   PhotoStorage
	logger   *zap.Logger
	now      func() time.Time
}

// NewListingService builds the service. photos may be nil, in which case
// listings are served without image links and uploads fail with
// ErrStorageUnavailable.
func NewListingService(listings ListingStore, photos PhotoStorage, logger *zap.Logger) *ListingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ListingService{
		listings: listings,
		photos:   photos,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *ListingService) ListListings(ctx context.Context, filter models.ListingFilter) ([]models.Listing, error) {
	listings, err := s.listings.ListActive(ctx, filter)
	if err != nil {
		return nil, err
	}
	s.resolveAll(ctx, listings)
	return listings, nil
}

func (s *ListingService) ListOwnListings(ctx context.Context, ownerID int64) ([]models.Listing, error) {
	listings, err := s.listings.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	s.resolveAll(ctx, listings)
	return listings, nil
}

// GetListing hides inactive listings from everyone but their owner. viewerID
// is 0 for anonymous callers.
func (s *ListingService) GetListing(ctx context.Context, viewerID, listingID int64) (*models.Listing, error) {
	listing, err := s.listings.GetByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if !listing.IsActive && listing.OwnerID != viewerID {
		return nil, pgx.ErrNoRows
	}
	s.resolve(ctx, listing)
	return listing, nil
}

func (s *ListingService) CreateListing(
	ctx context.Context,
	ownerID int64,
	input repository.ListingInput,
) (*models.Listing, error) {
	if ownerID <= 0 {
		return nil, ErrInvalidInput
	}
	listing, err := s.listings.Create(ctx, ownerID, input)
	if err != nil {
		return nil, fmt.Errorf("create listing: %w", err)
	}
	return listing, nil
}

func (s *ListingService) UpdateListing(
	ctx context.Context,
	actorID int64,
	listingID int64,
	input repository.ListingInput,
) (*models.Listing, error) {
	if _, err := s.ownedListing(ctx, actorID, listingID); err != nil {
		return nil, err
	}
	listing, err := s.listings.Update(ctx, listingID, input)
	if err != nil {
		return nil, err
	}
	s.resolve(ctx, listing)
	return listing, nil
}

// DeleteListing removes the listing and then its stored photos. Photo
// cleanup failures are logged; the listing is already gone.
func (s *ListingService) DeleteListing(ctx context.Context, actorID, listingID int64) error {
	listing, err := s.ownedListing(ctx, actorID, listingID)
	if err != nil {
		return err
	}
	if err := s.listings.Delete(ctx, listingID); err != nil {
		return err
	}

	if s.photos == nil {
		return nil
	}
	for _, image := range listing.Images {
		if err := s.photos.Delete(ctx, image.ObjectKey); err != nil {
			s.logger.Warn("orphaned listing photo",
				zap.Int64("listing_id", listingID),
				zap.String("key", image.ObjectKey),
				zap.Error(err),
			)
		}
	}
	return nil
}

// AddImage uploads a photo for the owner's listing. The first photo of a
// listing becomes its primary image.
func (s *ListingService) AddImage(
	ctx context.Context,
	actorID int64,
	listingID int64,
	upload ImageUpload,
) (*models.ListingImage, error) {
	if s.photos == nil {
		return nil, ErrStorageUnavailable
	}
	if upload.Body == nil || upload.Size <= 0 {
		return nil, ErrInvalidInput
	}

	listing, err := s.ownedListing(ctx, actorID, listingID)
	if err != nil {
		return nil, err
	}
	primary := upload.Primary || len(listing.Images) == 0

	key := s.photoKey(listingID, upload.Filename)
	if err := s.photos.Upload(ctx, key, upload.Body, upload.Size, upload.ContentType); err != nil {
		return nil, err
	}

	image, err := s.listings.AddImage(ctx, listingID, key, primary)
	if err != nil {
		if cleanupErr := s.photos.Delete(ctx, key); cleanupErr != nil {
			return nil, errors.Join(err, fmt.Errorf("cleanup failed: %w", cleanupErr))
		}
		return nil, err
	}

	s.resolveImage(ctx, image)
	return image, nil
}

func (s *ListingService) DeleteImage(ctx context.Context, actorID, listingID, imageID int64) error {
	if _, err := s.ownedListing(ctx, actorID, listingID); err != nil {
		return err
	}
	key, err := s.listings.DeleteImage(ctx, listingID, imageID)
	if err != nil {
		return err
	}
	if s.photos != nil {
		if err := s.photos.Delete(ctx, key); err != nil {
			s.logger.Warn("orphaned listing photo", zap.Int64("listing_id", listingID), zap.String("key", key), zap.Error(err))
		}
	}
	return nil
}

func (s *ListingService) ownedListing(ctx context.Context, actorID, listingID int64) (*models.Listing, error) {
	if actorID <= 0 || listingID <= 0 {
		return nil, ErrInvalidInput
	}
	listing, err := s.listings.GetByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if listing.OwnerID != actorID {
		return nil, ErrForbidden
	}
	return listing, nil
}

func (s *ListingService) photoKey(listingID int64, filename string) string {
	ext := strings.ToLower(filepath.Ext(strings.TrimSpace(filename)))
	if ext == "" {
		ext = ".jpg"
	}
	return fmt.Sprintf("listings/%d/%d%s", listingID, s.now().UnixNano(), ext)
}

func (s *ListingService) resolveAll(ctx context.Context, listings []models.Listing) {
	for i := range listings {
		s.resolve(ctx, &listings[i])
	}
}

func (s *ListingService) resolve(ctx context.Context, listing *models.Listing) {
	for i := range listing.Images {
		s.resolveImage(ctx, &listing.Images[i])
	}
}

func (s *ListingService) resolveImage(ctx context.Context, image *models.ListingImage) {
	if s.photos == nil || image.ObjectKey == "" {
		return
	}
	url, err := s.photos.URL(ctx, image.ObjectKey)
	if err != nil {
		s.logger.Warn("resolve listing photo", zap.String("key", image.ObjectKey), zap.Error(err))
		return
	}
	image.URL = url
}
