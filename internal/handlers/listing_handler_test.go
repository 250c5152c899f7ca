package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/go-cmp/cmp"
	"github.com/jackc/pgx/v5"

	"github.com/Metecanyavuz/KUstay-comp491/internal/models"
	"github.com/Metecanyavuz/KUstay-comp491/internal/repository"
	"github.com/Metecanyavuz/KUstay-comp491/internal/services"
)

type stubListingService struct {
	listResult   []models.Listing
	getErr       error
	writeErr     error
	imageErr     error
	lastFilter   models.ListingFilter
	lastActor    int64
	lastViewer   int64
	lastListing  int64
	lastImage    int64
	lastInput    repository.ListingInput
	lastUpload   services.ImageUpload
	uploadedBody string
	createCalled bool
	deleted      bool
}

func (s *stubListingService) ListListings(_ context.Context, filter models.ListingFilter) ([]models.Listing, error) {
	s.lastFilter = filter
	return s.listResult, nil
}

func (s *stubListingService) ListOwnListings(_ context.Context, ownerID int64) ([]models.Listing, error) {
	s.lastActor = ownerID
	return s.listResult, nil
}

func (s *stubListingService) GetListing(_ context.Context, viewerID, listingID int64) (*models.Listing, error) {
	s.lastViewer = viewerID
	s.lastListing = listingID
	if s.getErr != nil {
		return nil, s.getErr
	}
	return &models.Listing{ID: listingID, Title: "Sunny flat"}, nil
}

func (s *stubListingService) CreateListing(_ context.Context, ownerID int64, input repository.ListingInput) (*models.Listing, error) {
	s.createCalled = true
	s.lastActor = ownerID
	s.lastInput = input
	if s.writeErr != nil {
		return nil, s.writeErr
	}
	return &models.Listing{ID: 11, OwnerID: ownerID, Title: input.Title}, nil
}

func (s *stubListingService) UpdateListing(_ context.Context, actorID, listingID int64, input repository.ListingInput) (*models.Listing, error) {
	s.lastActor = actorID
	s.lastListing = listingID
	s.lastInput = input
	if s.writeErr != nil {
		return nil, s.writeErr
	}
	return &models.Listing{ID: listingID, OwnerID: actorID, Title: input.Title}, nil
}

func (s *stubListingService) DeleteListing(_ context.Context, actorID, listingID int64) error {
	s.lastActor = actorID
	s.lastListing = listingID
	if s.writeErr != nil {
		return s.writeErr
	}
	s.deleted = true
	return nil
}

func (s *stubListingService) AddImage(_ context.Context, actorID, listingID int64, upload services.ImageUpload) (*models.ListingImage, error) {
	s.lastActor = actorID
	s.lastListing = listingID
	s.lastUpload = upload
	if s.imageErr != nil {
		return nil, s.imageErr
	}
	body, _ := io.ReadAll(upload.Body)
	s.uploadedBody = string(body)
	return &models.ListingImage{ID: 3, URL: "https://photos.test/a.png", IsPrimary: upload.Primary}, nil
}

func (s *stubListingService) DeleteImage(_ context.Context, actorID, listingID, imageID int64) error {
	s.lastActor = actorID
	s.lastListing = listingID
	s.lastImage = imageID
	return s.imageErr
}

func newListingApp(service *stubListingService) *fiber.App {
	handler := NewListingHandler(service)
	app := fiber.New()
	app.Get("/api/v1/listings", handler.ListListings)
	app.Get("/api/v1/listings/:id", handler.GetListing)

	protected := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Locals("user_id", "7")
		return c.Next()
	})
	protected.Post("/listings", handler.CreateListing)
	protected.Put("/listings/:id", handler.UpdateListing)
	protected.Delete("/listings/:id", handler.DeleteListing)
	protected.Post("/listings/:id/images", handler.UploadImage)
	protected.Delete("/listings/:id/images/:imageId", handler.DeleteImage)
	protected.Get("/users/me/listings", handler.ListMyListings)
	return app
}

func sendListingJSON(t *testing.T, app *fiber.App, method, path, body string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	return resp
}

func TestListListingsParsesFilter(t *testing.T) {
	service := &stubListingService{listResult: []models.Listing{{ID: 1}, {ID: 2}}}
	app := newListingApp(service)

	req := httptest.NewRequest(http.MethodGet,
		"/api/v1/listings?location=%20Sariyer%20&price_min=4000&price_max=abc&amenities=wifi,%20,Parking", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	minPrice := 4000.0
	want := models.ListingFilter{
		Location:  "Sariyer",
		PriceMin:  &minPrice,
		Amenities: []string{"wifi", "Parking"},
	}
	if diff := cmp.Diff(want, service.lastFilter); diff != "" {
		t.Fatalf("filter mismatch (-want +got):\n%s", diff)
	}

	var payload struct {
		Listings []models.Listing `json:"listings"`
		Count    int              `json:"count"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Count != 2 || len(payload.Listings) != 2 {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestListListingsIgnoresNonFinitePrices(t *testing.T) {
	service := &stubListingService{}
	resp, err := newListingApp(service).Test(
		httptest.NewRequest(http.MethodGet, "/api/v1/listings?price_min=NaN&price_max=Inf", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if service.lastFilter.PriceMin != nil || service.lastFilter.PriceMax != nil {
		t.Fatalf("expected prices to be ignored, got %+v", service.lastFilter)
	}
}

func TestGetListingIsPublic(t *testing.T) {
	service := &stubListingService{}
	resp, err := newListingApp(service).Test(httptest.NewRequest(http.MethodGet, "/api/v1/listings/4", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if service.lastViewer != 0 || service.lastListing != 4 {
		t.Fatalf("unexpected call: viewer %d listing %d", service.lastViewer, service.lastListing)
	}
}

func TestGetListingNotFound(t *testing.T) {
	service := &stubListingService{getErr: pgx.ErrNoRows}
	resp, err := newListingApp(service).Test(httptest.NewRequest(http.MethodGet, "/api/v1/listings/4", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestCreateListingAppliesDefaults(t *testing.T) {
	service := &stubListingService{}
	resp := sendListingJSON(t, newListingApp(service), http.MethodPost, "/api/v1/listings", `{
		"title": "  Sunny flat near campus ",
		"rent_amount": 9500,
		"available_from": "2026-09-01",
		"amenities": [" wifi ", "", "balcony"]
	}`)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	if service.lastActor != 7 {
		t.Fatalf("expected owner 7, got %d", service.lastActor)
	}

	input := service.lastInput
	if input.Title != "Sunny flat near campus" ||
		input.ListingType != models.ListingApartment ||
		input.RoomType != models.RoomPrivate ||
		input.TotalRooms != 1 || input.AvailableRooms != 1 ||
		!input.IsActive {
		t.Fatalf("defaults not applied: %+v", input)
	}
	if diff := cmp.Diff([]string{"wifi", "balcony"}, input.Amenities); diff != "" {
		t.Fatalf("amenities mismatch (-want +got):\n%s", diff)
	}
	if input.AvailableFrom == nil || input.AvailableFrom.Format("2006-01-02") != "2026-09-01" {
		t.Fatalf("unexpected available_from: %v", input.AvailableFrom)
	}
}

func TestCreateListingValidation(t *testing.T) {
	cases := []string{
		`{"rent_amount": 100}`,
		`{"title": "x", "rent_amount": -1}`,
		`{"title": "x", "rent_amount": 100000000}`,
		`{"title": "x", "listing_type": "castle"}`,
		`{"title": "x", "room_type": "bunk"}`,
		`{"title": "x", "total_rooms": 2, "available_rooms": 3}`,
		`{"title": "x", "latitude": 91}`,
		`{"title": "x", "longitude": -181}`,
		`{"title": "x", "available_from": "01/09/2026"}`,
		`{"title": "` + strings.Repeat("a", 201) + `"}`,
	}

	for _, body := range cases {
		service := &stubListingService{}
		resp := sendListingJSON(t, newListingApp(service), http.MethodPost, "/api/v1/listings", body)
		resp.Body.Close()

		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("body %s: expected 400, got %d", body, resp.StatusCode)
		}
		if service.createCalled {
			t.Fatalf("body %s: service should not be called", body)
		}
	}
}

func TestUpdateListingByNonOwnerIsForbidden(t *testing.T) {
	service := &stubListingService{writeErr: services.ErrForbidden}
	resp := sendListingJSON(t, newListingApp(service), http.MethodPut, "/api/v1/listings/4", `{"title": "Mine now"}`)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
	if service.lastActor != 7 || service.lastListing != 4 {
		t.Fatalf("unexpected call: actor %d listing %d", service.lastActor, service.lastListing)
	}
}

func TestDeleteListing(t *testing.T) {
	service := &stubListingService{}
	resp, err := newListingApp(service).Test(httptest.NewRequest(http.MethodDelete, "/api/v1/listings/4", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}
	if !service.deleted {
		t.Fatalf("expected listing to be deleted")
	}
}

func TestDeleteListingRejectsBadID(t *testing.T) {
	service := &stubListingService{}
	resp, err := newListingApp(service).Test(httptest.NewRequest(http.MethodDelete, "/api/v1/listings/abc", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	if service.deleted {
		t.Fatalf("service should not be called")
	}
}

func photoRequest(t *testing.T, contentType string, content []byte, primary string) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	if primary != "" {
		if err := writer.WriteField("is_primary", primary); err != nil {
			t.Fatalf("WriteField is_primary: %v", err)
		}
	}
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="image"; filename="room.png"`)
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		t.Fatalf("CreatePart: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("part.Write: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("writer.Close: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/listings/4/images", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestUploadImageForwardsPhoto(t *testing.T) {
	service := &stubListingService{}
	resp, err := newListingApp(service).Test(photoRequest(t, "image/png", []byte("png-bytes"), "true"))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	upload := service.lastUpload
	if service.lastActor != 7 || service.lastListing != 4 {
		t.Fatalf("unexpected call: actor %d listing %d", service.lastActor, service.lastListing)
	}
	if upload.Filename != "room.png" || upload.ContentType != "image/png" || upload.Size != 9 || !upload.Primary {
		t.Fatalf("unexpected upload: %+v", upload)
	}
	if service.uploadedBody != "png-bytes" {
		t.Fatalf("unexpected body %q", service.uploadedBody)
	}
}

func TestUploadImageRejectsOtherFileTypes(t *testing.T) {
	service := &stubListingService{}
	resp, err := newListingApp(service).Test(photoRequest(t, "application/pdf", []byte("%PDF"), ""))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	if service.lastListing != 0 {
		t.Fatalf("service should not be called")
	}
}

func TestUploadImageWithoutStorage(t *testing.T) {
	service := &stubListingService{imageErr: services.ErrStorageUnavailable}
	resp, err := newListingApp(service).Test(photoRequest(t, "image/jpeg", []byte("jpg"), ""))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", resp.StatusCode)
	}
}

func TestDeleteImage(t *testing.T) {
	service := &stubListingService{}
	resp, err := newListingApp(service).Test(httptest.NewRequest(http.MethodDelete, "/api/v1/listings/4/images/9", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}
	if service.lastListing != 4 || service.lastImage != 9 {
		t.Fatalf("unexpected call: listing %d image %d", service.lastListing, service.lastImage)
	}
}

func TestListMyListingsUsesCaller(t *testing.T) {
	service := &stubListingService{listResult: []models.Listing{{ID: 1, IsActive: false}}}
	resp, err := newListingApp(service).Test(httptest.NewRequest(http.MethodGet, "/api/v1/users/me/listings", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if service.lastActor != 7 {
		t.Fatalf("expected owner 7, got %d", service.lastActor)
	}
}
