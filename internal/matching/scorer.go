// Package matching holds the roommate compatibility rules: budget
// normalisation, the hard-constraint candidate filter and the weighted
// scorer. Everything here is pure; persistence lives in the services layer.
package matching

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/Metecanyavuz/KUstay-comp491/internal/models"
)

const (
	FactorSleepSchedule = "sleep_schedule"
	FactorCleanliness   = "cleanliness"
	FactorRoomType      = "room_type"
	FactorBudget        = "budget"
	FactorLocation      = "location"
	FactorLifestyle     = "lifestyle"
	FactorTotal         = "total"
)

const totalReason = "Weighted blend of lifestyle, feasibility, and preference overlap."

// Weights is the points budget of each factor. The default table sums to 100.
type Weights struct {
	SleepSchedule int
	Cleanliness   int
	RoomType      int
	Budget        int
	Location      int
	Lifestyle     int
}

func DefaultWeights() Weights {
	return Weights{
		SleepSchedule: 5,
		Cleanliness:   10,
		RoomType:      20,
		Budget:        25,
		Location:      30,
		Lifestyle:     10,
	}
}

func (w Weights) Sum() int {
	return w.SleepSchedule + w.Cleanliness + w.RoomType + w.Budget + w.Location + w.Lifestyle
}

type Result struct {
	Total    int
	Criteria models.MatchCriteria
}

type Scorer struct {
	weights Weights
}

func NewScorer(weights Weights) *Scorer {
	return &Scorer{weights: weights}
}

func (s *Scorer) Weights() Weights {
	return s.weights
}

// Score compares two profiles. The result does not depend on argument order.
func (s *Scorer) Score(a, b *models.Profile) Result {
	criteria := make(models.MatchCriteria, 7)
	total := 0

	add := func(name string, weight int, score int, reason string) {
		criteria[name] = models.CriterionScore{Score: score, Weight: weight, Reason: reason}
		total += score
	}

	score, reason := scoreSleepSchedule(s.weights.SleepSchedule, a, b)
	add(FactorSleepSchedule, s.weights.SleepSchedule, score, reason)

	score, reason = scoreCleanliness(s.weights.Cleanliness, a, b)
	add(FactorCleanliness, s.weights.Cleanliness, score, reason)

	score, reason = scoreRoomType(s.weights.RoomType, a, b)
	add(FactorRoomType, s.weights.RoomType, score, reason)

	score, reason = scoreBudget(s.weights.Budget, a, b)
	add(FactorBudget, s.weights.Budget, score, reason)

	score, reason = scoreLocation(s.weights.Location, a, b)
	add(FactorLocation, s.weights.Location, score, reason)

	score, reason = scoreLifestyle(s.weights.Lifestyle, a, b)
	add(FactorLifestyle, s.weights.Lifestyle, score, reason)

	final := clampScore(total)
	criteria[FactorTotal] = models.CriterionScore{
		Score:  final,
		Weight: s.weights.Sum(),
		Reason: totalReason,
	}

	return Result{Total: final, Criteria: criteria}
}

func scoreSleepSchedule(weight int, a, b *models.Profile) (int, string) {
	first := sleepScheduleOrDefault(a.SleepSchedule)
	second := sleepScheduleOrDefault(b.SleepSchedule)

	switch {
	case first == second:
		return weight, fmt.Sprintf("Both prefer %s schedules.", humanizeEnum(string(first)))
	case first == models.SleepFlexible || second == models.SleepFlexible:
		return portion(weight, 0.75), "At least one of you is flexible with sleep schedules."
	default:
		return portion(weight, 0.2), "Different sleep rhythms; plan for compromises."
	}
}

func scoreCleanliness(weight int, a, b *models.Profile) (int, string) {
	delta := cleanlinessRank(a.CleanlinessLevel) - cleanlinessRank(b.CleanlinessLevel)
	if delta < 0 {
		delta = -delta
	}

	switch delta {
	case 0:
		return weight, "You expect similar cleanliness standards."
	case 1:
		return portion(weight, 0.6), "Slight difference in cleanliness expectations."
	default:
		return portion(weight, 0.1), "Very different cleanliness expectations."
	}
}

func scoreRoomType(weight int, a, b *models.Profile) (int, string) {
	first := roomTypeOrDefault(a.RoomTypePreference)
	second := roomTypeOrDefault(b.RoomTypePreference)

	switch {
	case first == second:
		return weight, fmt.Sprintf("Both prefer %s setups.", humanizeEnum(string(first)))
	case pairIs(first, second, models.RoomShared, models.RoomPrivate):
		return portion(weight, 0.6), "One prefers shared rooms while the other prefers private; workable if flexible."
	case pairIs(first, second, models.RoomEntirePlace, models.RoomPrivate):
		return portion(weight, 0.4), "One prefers an entire place while the other prefers a private room."
	default:
		return portion(weight, 0.2), "Room type expectations may be hard to reconcile."
	}
}

func scoreBudget(weight int, a, b *models.Profile) (int, string) {
	first := NormalizeBudget(a.BudgetMin, a.BudgetMax)
	second := NormalizeBudget(b.BudgetMin, b.BudgetMax)

	overlap := first.Overlap(second)
	if overlap <= 0 {
		return 0, "Budget ranges currently do not overlap."
	}

	span := first.Span(second)
	if span == 0 {
		span = 1
	}
	score := portion(weight, math.Min(1, overlap/span))
	reason := fmt.Sprintf(
		"Budgets overlap roughly TRY %s between TRY %s and TRY %s.",
		formatAmount(overlap),
		formatAmount(math.Max(first.Min, second.Min)),
		formatAmount(math.Min(first.Max, second.Max)),
	)
	return score, reason
}

func scoreLocation(weight int, a, b *models.Profile) (int, string) {
	first := NormalizeNeighborhoods(a.PreferredNeighborhoods)
	second := NormalizeNeighborhoods(b.PreferredNeighborhoods)

	if len(first) == 0 || len(second) == 0 {
		return portion(weight, 0.4), "One of you has not shared neighborhood preferences yet."
	}

	shared := make([]string, 0)
	for name := range first {
		if _, ok := second[name]; ok {
			shared = append(shared, name)
		}
	}
	if len(shared) == 0 {
		return portion(weight, 0.2), "Neighborhood preferences do not overlap yet."
	}

	sort.Strings(shared)
	smaller := len(first)
	if len(second) < smaller {
		smaller = len(second)
	}
	coverage := float64(len(shared)) / float64(smaller)
	score := portion(weight, math.Min(1, 0.6+0.4*coverage))
	return score, fmt.Sprintf("Shared interest in %s.", strings.Join(shared, ", "))
}

func scoreLifestyle(weight int, a, b *models.Profile) (int, string) {
	penalty := 0
	reasons := make([]string, 0, 2)

	if a.Smoker != b.Smoker {
		penalty += portion(weight, 0.5)
		reasons = append(reasons, "Different smoking habits.")
	}
	if a.Pets != b.Pets {
		penalty += portion(weight, 0.5)
		reasons = append(reasons, "Pets situation may not align.")
	}

	score := weight - penalty
	if score < 0 {
		score = 0
	}
	if score == weight {
		return score, "Aligned on smoking habits and pet expectations."
	}
	if len(reasons) == 0 {
		return score, "Lifestyle preferences partially align."
	}
	return score, strings.Join(reasons, " ")
}

// NormalizeNeighborhoods lowercases and trims every entry and drops blanks.
func NormalizeNeighborhoods(values []string) map[string]struct{} {
	normalized := make(map[string]struct{}, len(values))
	for _, value := range values {
		if key := strings.ToLower(strings.TrimSpace(value)); key != "" {
			normalized[key] = struct{}{}
		}
	}
	return normalized
}

// portion rounds weight*fraction half to even.
func portion(weight int, fraction float64) int {
	return int(math.RoundToEven(float64(weight) * fraction))
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func sleepScheduleOrDefault(value models.SleepSchedule) models.SleepSchedule {
	if value == "" {
		return models.SleepFlexible
	}
	return value
}

func roomTypeOrDefault(value models.RoomType) models.RoomType {
	if value == "" {
		return models.RoomPrivate
	}
	return value
}

func cleanlinessRank(level models.CleanlinessLevel) int {
	switch level {
	case models.CleanlinessLow:
		return 0
	case models.CleanlinessHigh:
		return 2
	default:
		return 1
	}
}

func pairIs(first, second, x, y models.RoomType) bool {
	return (first == x && second == y) || (first == y && second == x)
}

func humanizeEnum(value string) string {
	return strings.ReplaceAll(value, "_", " ")
}

// formatAmount rounds half up and groups thousands, e.g. 12500.4 -> "12,500".
func formatAmount(value float64) string {
	return humanize.Comma(int64(math.Floor(value + 0.5)))
}
