package matching

import "github.com/Metecanyavuz/KUstay-comp491/internal/models"

// Constraint is a hard feasibility rule. Returning false removes the
// candidate before scoring.
type Constraint func(requester, candidate *models.Profile) bool

// FilterCandidates narrows pool to the users requester may be matched with:
// verified, profiled, not the requester, not blocked in either direction and
// inside the requester's budget band when that band is bounded.
func FilterCandidates(
	requesterID int64,
	requester *models.Profile,
	pool []models.UserWithProfile,
	blocked map[int64]struct{},
	constraints ...Constraint,
) []models.UserWithProfile {
	if requester == nil {
		return nil
	}

	band := NormalizeBudget(requester.BudgetMin, requester.BudgetMax)
	eligible := make([]models.UserWithProfile, 0, len(pool))

	for _, candidate := range pool {
		if candidate.User.ID == requesterID || !candidate.User.IsVerified || candidate.Profile == nil {
			continue
		}
		if _, ok := blocked[candidate.User.ID]; ok {
			continue
		}
		// Compared against the stored values, as the directory query would.
		if band.Bounded() &&
			(candidate.Profile.BudgetMax < band.Min || candidate.Profile.BudgetMin > band.Max) {
			continue
		}
		if !satisfiesAll(requester, candidate.Profile, constraints) {
			continue
		}
		eligible = append(eligible, candidate)
	}

	return eligible
}

func satisfiesAll(requester, candidate *models.Profile, constraints []Constraint) bool {
	for _, constraint := range constraints {
		if !constraint(requester, candidate) {
			return false
		}
	}
	return true
}
