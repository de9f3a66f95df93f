// Package rating computes pairwise Elo adjustments from match outcomes.
// It is pure: no state, no persistence access.
package rating

import "math"

// KFactor controls how much a single result moves a rating.
const KFactor = 32

// Adjust returns the post-match ratings for both players.
//
// Each side's expected score is computed independently with the logistic
// curve 1/(1+10^((other-own)/400)) and the new rating is rounded to the
// nearest integer. In exact arithmetic the two adjustments are equal and
// opposite; after rounding the sum may drift by at most one point, which
// is accepted rather than corrected.
func Adjust(ratingA, ratingB, goalsA, goalsB int) (newA, newB int) {
	scoreA, scoreB := outcome(goalsA, goalsB)

	expectedA := expectedScore(ratingA, ratingB)
	expectedB := expectedScore(ratingB, ratingA)

	newA = int(math.Round(float64(ratingA) + KFactor*(scoreA-expectedA)))
	newB = int(math.Round(float64(ratingB) + KFactor*(scoreB-expectedB)))
	return newA, newB
}

// Change returns the rating deltas instead of the new ratings.
func Change(ratingA, ratingB, goalsA, goalsB int) (deltaA, deltaB int) {
	newA, newB := Adjust(ratingA, ratingB, goalsA, goalsB)
	return newA - ratingA, newB - ratingB
}

func expectedScore(own, other int) float64 {
	return 1.0 / (1.0 + math.Pow(10, float64(other-own)/400.0))
}

func outcome(goalsA, goalsB int) (scoreA, scoreB float64) {
	switch {
	case goalsA > goalsB:
		return 1.0, 0.0
	case goalsA < goalsB:
		return 0.0, 1.0
	default:
		return 0.5, 0.5
	}
}
