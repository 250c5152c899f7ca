package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/Metecanyavuz/KUstay-comp491/internal/services"
)

type stubBlockService struct {
	blockErr   error
	listResult []int64
	lastActor  int64
	lastTarget int64
	unblocked  bool
}

func (s *stubBlockService) Block(_ context.Context, blockerID, blockedID int64) error {
	s.lastActor = blockerID
	s.lastTarget = blockedID
	return s.blockErr
}

func (s *stubBlockService) Unblock(_ context.Context, blockerID, blockedID int64) error {
	s.lastActor = blockerID
	s.lastTarget = blockedID
	s.unblocked = true
	return nil
}

func (s *stubBlockService) ListBlocked(_ context.Context, blockerID int64) ([]int64, error) {
	s.lastActor = blockerID
	return s.listResult, nil
}

func newBlockApp(service *stubBlockService) *fiber.App {
	handler := NewBlockHandler(service)
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user_id", "5")
		return c.Next()
	})
	app.Get("/api/v1/blocks", handler.ListBlocked)
	app.Post("/api/v1/blocks/:id", handler.Block)
	app.Delete("/api/v1/blocks/:id", handler.Unblock)
	return app
}

func TestBlockCreatesRelation(t *testing.T) {
	service := &stubBlockService{}
	resp, err := newBlockApp(service).Test(httptest.NewRequest(http.MethodPost, "/api/v1/blocks/9", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	if service.lastActor != 5 || service.lastTarget != 9 {
		t.Fatalf("unexpected call: %d -> %d", service.lastActor, service.lastTarget)
	}
}

func TestBlockErrorMapping(t *testing.T) {
	cases := []struct {
		path   string
		err    error
		status int
	}{
		{path: "/api/v1/blocks/abc", status: http.StatusBadRequest},
		{path: "/api/v1/blocks/5", err: services.ErrInvalidInput, status: http.StatusBadRequest},
		{path: "/api/v1/blocks/77", err: services.ErrUserNotFound, status: http.StatusNotFound},
	}

	for _, tc := range cases {
		service := &stubBlockService{blockErr: tc.err}
		resp, err := newBlockApp(service).Test(httptest.NewRequest(http.MethodPost, tc.path, nil))
		if err != nil {
			t.Fatalf("app.Test: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != tc.status {
			t.Fatalf("%s: expected %d, got %d", tc.path, tc.status, resp.StatusCode)
		}
	}
}

func TestUnblockReturnsNoContent(t *testing.T) {
	service := &stubBlockService{}
	resp, err := newBlockApp(service).Test(httptest.NewRequest(http.MethodDelete, "/api/v1/blocks/9", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent || !service.unblocked {
		t.Fatalf("expected 204 and an unblock, got %d", resp.StatusCode)
	}
}

func TestListBlocked(t *testing.T) {
	service := &stubBlockService{listResult: []int64{9, 4}}
	resp, err := newBlockApp(service).Test(httptest.NewRequest(http.MethodGet, "/api/v1/blocks", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	var body struct {
		IDs []int64 `json:"blocked_user_ids"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(body.IDs) != 2 || body.IDs[0] != 9 {
		t.Fatalf("unexpected ids: %v", body.IDs)
	}
}
