package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Metecanyavuz/KUstay-comp491/internal/models"
	"github.com/Metecanyavuz/KUstay-comp491/internal/services"
)

type stubMatchReader struct {
	result    []models.MatchView
	err       error
	lastUser  int64
	lastLimit int
}

func (s *stubMatchReader) TopMatches(_ context.Context, userID int64, limit int) ([]models.MatchView, error) {
	s.lastUser = userID
	s.lastLimit = limit
	return s.result, s.err
}

func newMatchApp(handler *MatchHandler, userID string) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user_id", userID)
		c.Locals("role", models.RoleStudent)
		return c.Next()
	})
	app.Get("/api/v1/matches", handler.ListMatches)
	app.Get("/api/v1/matches/top", handler.TopMatches)
	return app
}

func sampleMatches() []models.MatchView {
	return []models.MatchView{
		{
			Partner:            models.UserSummary{ID: 3, Username: "deniz", Department: "Computer Engineering"},
			CompatibilityScore: 78,
			MatchingCriteria: models.MatchCriteria{
				"budget": {Score: 12, Weight: 25, Reason: "Budgets overlap roughly TRY 1,000 between TRY 2,500 and TRY 3,500."},
			},
		},
	}
}

func TestTopMatchesRespondsWithFloatScoresAndCount(t *testing.T) {
	service := &stubMatchReader{result: sampleMatches()}
	app := newMatchApp(NewMatchHandler(service, 20), "7")

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/matches/top?limit=5", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int64(7), service.lastUser)
	assert.Equal(t, 5, service.lastLimit)

	var body struct {
		Results []struct {
			User               models.UserSummary   `json:"user"`
			CompatibilityScore float64              `json:"compatibility_score"`
			MatchingCriteria   models.MatchCriteria `json:"matching_criteria"`
		} `json:"results"`
		Count int `json:"count"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, 1, body.Count)
	require.Len(t, body.Results, 1)
	assert.Equal(t, 78.0, body.Results[0].CompatibilityScore)
	assert.Equal(t, "deniz", body.Results[0].User.Username)
	assert.Equal(t, 12, body.Results[0].MatchingCriteria["budget"].Score)
}

func TestTopMatchesLimitParsing(t *testing.T) {
	cases := []struct {
		query string
		want  int
	}{
		{query: "", want: 20},
		{query: "?limit=abc", want: 20},
		{query: "?limit=0", want: 0},
		{query: "?limit=500", want: 500},
	}

	for _, tc := range cases {
		service := &stubMatchReader{}
		app := newMatchApp(NewMatchHandler(service, 20), "7")

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/matches/top"+tc.query, nil))
		require.NoError(t, err)
		resp.Body.Close()

		assert.Equal(t, tc.want, service.lastLimit, "query %q", tc.query)
	}
}

func TestTopMatchesGatedWithoutVerifiedProfile(t *testing.T) {
	service := &stubMatchReader{err: services.ErrProfileRequired}
	app := newMatchApp(NewMatchHandler(service, 20), "7")

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/matches/top", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "Verified profile required to view matches.", body["detail"])
}

func TestListMatchesUsesIntegerScores(t *testing.T) {
	service := &stubMatchReader{result: sampleMatches()}
	app := newMatchApp(NewMatchHandler(service, 20), "7")

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/matches", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body struct {
		Matches []matchEntry `json:"matches"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Matches, 1)
	assert.Equal(t, 78, body.Matches[0].Score)
	assert.Equal(t, int64(3), body.Matches[0].User.ID)
}

func TestListMatchesErrors(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{err: services.ErrProfileRequired, status: http.StatusBadRequest},
		{err: services.ErrUserNotFound, status: http.StatusNotFound},
		{err: errors.New("db down"), status: http.StatusInternalServerError},
	}

	for _, tc := range cases {
		app := newMatchApp(NewMatchHandler(&stubMatchReader{err: tc.err}, 20), "7")
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/matches", nil))
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, tc.status, resp.StatusCode, "error %v", tc.err)
	}
}

func TestListMatchesRejectsMissingIdentity(t *testing.T) {
	app := newMatchApp(NewMatchHandler(&stubMatchReader{}, 20), "")

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/matches", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
