package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Metecanyavuz/KUstay-comp491/internal/services"
)

type stubRecomputer struct {
	refreshed []int64
	allCalls  int
	updated   int
	err       error
}

func (s *stubRecomputer) Refresh(_ context.Context, userID int64) (int, error) {
	s.refreshed = append(s.refreshed, userID)
	return s.updated, s.err
}

func (s *stubRecomputer) RefreshAll(_ context.Context) (int, error) {
	s.allCalls++
	return s.updated, s.err
}

func recompute(t *testing.T, service *stubRecomputer, query string) (*http.Response, map[string]any) {
	t.Helper()
	app := fiber.New()
	app.Post("/api/v1/admin/matches/recompute", NewAdminHandler(service).RecomputeMatches)

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/api/v1/admin/matches/recompute"+query, nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp, body
}

func TestRecomputeAllUsers(t *testing.T) {
	service := &stubRecomputer{updated: 12}

	resp, body := recompute(t, service, "")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, service.allCalls)
	assert.Equal(t, 12.0, body["matches_updated"])
}

func TestRecomputeSingleUser(t *testing.T) {
	service := &stubRecomputer{updated: 3}

	resp, _ := recompute(t, service, "?user_id=8")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []int64{8}, service.refreshed)
	assert.Zero(t, service.allCalls)
}

func TestRecomputeErrors(t *testing.T) {
	resp, _ := recompute(t, &stubRecomputer{}, "?user_id=x")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = recompute(t, &stubRecomputer{err: services.ErrUserNotFound}, "?user_id=99")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body := recompute(t, &stubRecomputer{updated: 4, err: errors.New("user 2: boom")}, "")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, 4.0, body["matches_updated"])
}

func TestRecomputeAllKeepsPartialCountWhenAUserVanished(t *testing.T) {
	failure := errors.Join(fmt.Errorf("user %d: %w", 6, services.ErrUserNotFound))
	service := &stubRecomputer{updated: 9, err: failure}

	resp, body := recompute(t, service, "")

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, 9.0, body["matches_updated"])
}
