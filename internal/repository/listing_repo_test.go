package repository

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/Metecanyavuz/KUstay-comp491/internal/models"
)

func TestBuildListingFilterActiveOnlyByDefault(t *testing.T) {
	where, args := buildListingFilter(models.ListingFilter{})

	assert.Equal(t, "l.is_active = TRUE", where)
	assert.Empty(t, args)
}

func TestBuildListingFilterCombinesEveryCriterion(t *testing.T) {
	low, high := 5000.0, 12000.0

	where, args := buildListingFilter(models.ListingFilter{
		Location:  " Sariyer ",
		PriceMin:  &low,
		PriceMax:  &high,
		Amenities: []string{"Wi-Fi", " ", "parking"},
	})

	wantWhere := "l.is_active = TRUE" +
		" AND (l.title ILIKE $1 OR l.address ILIKE $1 OR l.neighborhood ILIKE $1)" +
		" AND l.rent_amount >= $2" +
		" AND l.rent_amount <= $3" +
		" AND array_to_string(l.amenities, ',') ILIKE $4" +
		" AND array_to_string(l.amenities, ',') ILIKE $5"
	assert.Equal(t, wantWhere, where)

	wantArgs := []any{"%Sariyer%", 5000.0, 12000.0, "%Wi-Fi%", "%parking%"}
	if diff := cmp.Diff(wantArgs, args); diff != "" {
		t.Fatalf("args mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildListingFilterEscapesWildcards(t *testing.T) {
	_, args := buildListingFilter(models.ListingFilter{Location: `50%_off\`})

	assert.Equal(t, []any{`%50\%\_off\\%`}, args)
}
