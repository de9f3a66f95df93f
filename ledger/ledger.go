// Package ledger applies and reverses a match's contribution to a
// player's cumulative statistics. Derived fields (goal difference,
// points) are always recomputed from the primitive counters, never
// carried as deltas of their own.
package ledger

import "github.com/foosleague/ladder-system/models"

// MaxRecentTeams bounds the MRU team history kept per player.
const MaxRecentTeams = 5

// Result is a single match outcome from one player's perspective.
// Exactly one field is 1 for a played match.
type Result struct {
	Win  int
	Loss int
	Draw int
}

// ResultOf classifies a scoreline from the perspective of the side that
// scored goalsFor.
func ResultOf(goalsFor, goalsAgainst int) Result {
	switch {
	case goalsFor > goalsAgainst:
		return Result{Win: 1}
	case goalsFor < goalsAgainst:
		return Result{Loss: 1}
	default:
		return Result{Draw: 1}
	}
}

// Points returns the league points a result is worth.
func (r Result) Points() int {
	return r.Win*3 + r.Draw
}

// Delta carries signed increments for one player's counters.
// TeamPlayed, when non-empty, is moved to the front of the player's
// recent-team history; team recency is forward-only and is never
// reversed.
type Delta struct {
	Matches      int
	GoalsFor     int
	GoalsAgainst int
	Wins         int
	Losses       int
	Draws        int
	TeamPlayed   string
}

// MatchDelta is the full contribution of one played match.
func MatchDelta(goalsFor, goalsAgainst int, teamPlayed string) Delta {
	r := ResultOf(goalsFor, goalsAgainst)
	return Delta{
		Matches:      1,
		GoalsFor:     goalsFor,
		GoalsAgainst: goalsAgainst,
		Wins:         r.Win,
		Losses:       r.Loss,
		Draws:        r.Draw,
		TeamPlayed:   teamPlayed,
	}
}

// EditDelta is the difference between a match's new and old scorelines,
// per counter. The match count is unchanged: the match was already
// played, only its result moved.
func EditDelta(oldFor, oldAgainst, newFor, newAgainst int) Delta {
	oldResult := ResultOf(oldFor, oldAgainst)
	newResult := ResultOf(newFor, newAgainst)
	return Delta{
		GoalsFor:     newFor - oldFor,
		GoalsAgainst: newAgainst - oldAgainst,
		Wins:         newResult.Win - oldResult.Win,
		Losses:       newResult.Loss - oldResult.Loss,
		Draws:        newResult.Draw - oldResult.Draw,
	}
}

// Reverse flips every signed increment. The team history is not part of
// the reversal.
func (d Delta) Reverse() Delta {
	return Delta{
		Matches:      -d.Matches,
		GoalsFor:     -d.GoalsFor,
		GoalsAgainst: -d.GoalsAgainst,
		Wins:         -d.Wins,
		Losses:       -d.Losses,
		Draws:        -d.Draws,
	}
}

// IsZero reports whether applying the delta would change nothing.
func (d Delta) IsZero() bool {
	return d.Matches == 0 && d.GoalsFor == 0 && d.GoalsAgainst == 0 &&
		d.Wins == 0 && d.Losses == 0 && d.Draws == 0 && d.TeamPlayed == ""
}

// Drift records counters that had to be clamped to zero during an apply.
// A non-empty drift means the stored aggregates no longer equal the sum
// of all historical match deltas; callers log it rather than failing the
// operation.
type Drift struct {
	Clamped []string
}

// Occurred reports whether any counter was clamped.
func (dr Drift) Occurred() bool {
	return len(dr.Clamped) > 0
}

// Apply returns a copy of the player with the delta applied. Counters
// that would go negative are clamped to zero, goal difference and points
// are recomputed from the (possibly clamped) primitive counters, and the
// recent-team history is updated when the delta names a team.
func Apply(player models.Player, d Delta) (models.Player, Drift) {
	var drift Drift
	clamp := func(name string, v int) int {
		if v < 0 {
			drift.Clamped = append(drift.Clamped, name)
			return 0
		}
		return v
	}

	player.MatchesPlayed = clamp("matches_played", player.MatchesPlayed+d.Matches)
	player.GoalsFor = clamp("goals_for", player.GoalsFor+d.GoalsFor)
	player.GoalsAgainst = clamp("goals_against", player.GoalsAgainst+d.GoalsAgainst)
	player.Wins = clamp("wins", player.Wins+d.Wins)
	player.Losses = clamp("losses", player.Losses+d.Losses)
	player.Draws = clamp("draws", player.Draws+d.Draws)

	player.GoalDifference = player.GoalsFor - player.GoalsAgainst
	player.Points = player.Wins*3 + player.Draws

	if d.TeamPlayed != "" {
		player.RecentTeams = pushRecentTeam(player.RecentTeams, d.TeamPlayed)
	}
	return player, drift
}

// pushRecentTeam moves team to the front of the history, dropping any
// earlier occurrence and truncating to MaxRecentTeams.
func pushRecentTeam(teams []string, team string) []string {
	updated := make([]string, 0, len(teams)+1)
	updated = append(updated, team)
	for _, t := range teams {
		if t != team {
			updated = append(updated, t)
		}
	}
	if len(updated) > MaxRecentTeams {
		updated = updated[:MaxRecentTeams]
	}
	return updated
}
