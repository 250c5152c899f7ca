package models

import "time"

type CriterionScore struct {
	Score  int    `json:"score"`
	Weight int    `json:"weight"`
	Reason string `json:"reason"`
}

// MatchCriteria is the per-factor breakdown stored with every match, keyed by
// factor name plus a "total" entry.
type MatchCriteria map[string]CriterionScore

// MatchCompatibility is one stored score for an unordered pair of users.
// User1ID is always the smaller id.
type MatchCompatibility struct {
	ID                 int64         `json:"id"`
	User1ID            int64         `json:"user1_id"`
	User2ID            int64         `json:"user2_id"`
	CompatibilityScore int           `json:"compatibility_score"`
	MatchingCriteria   MatchCriteria `json:"matching_criteria"`
	CalculatedAt       time.Time     `json:"calculated_at"`
}

// MatchView is a stored match seen from one of its members.
type MatchView struct {
	Partner            UserSummary   `json:"user"`
	CompatibilityScore int           `json:"compatibility_score"`
	MatchingCriteria   MatchCriteria `json:"matching_criteria"`
	CalculatedAt       time.Time     `json:"calculated_at"`
}

// CanonicalPair orders two user ids so the smaller one comes first.
func CanonicalPair(a, b int64) (int64, int64) {
	if a < b {
		return a, b
	}
	return b, a
}
