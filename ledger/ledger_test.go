package ledger

import (
	"reflect"
	"testing"

	"github.com/foosleague/ladder-system/models"
)

func TestApplySequenceKeepsCountersConsistent(t *testing.T) {
	scorelines := [][2]int{{3, 1}, {0, 0}, {2, 5}, {1, 1}, {4, 0}, {0, 2}, {2, 2}}

	var player models.Player
	for _, s := range scorelines {
		var drift Drift
		player, drift = Apply(player, MatchDelta(s[0], s[1], "Arsenal"))
		if drift.Occurred() {
			t.Fatalf("unexpected drift applying %v: %v", s, drift.Clamped)
		}
	}

	if got := player.Wins + player.Losses + player.Draws; got != player.MatchesPlayed {
		t.Errorf("W+L+D = %d, matches played = %d", got, player.MatchesPlayed)
	}
	if want := player.Wins*3 + player.Draws; player.Points != want {
		t.Errorf("points = %d, want %d", player.Points, want)
	}
	if want := player.GoalsFor - player.GoalsAgainst; player.GoalDifference != want {
		t.Errorf("goal difference = %d, want %d", player.GoalDifference, want)
	}
	if player.MatchesPlayed != len(scorelines) {
		t.Errorf("matches played = %d, want %d", player.MatchesPlayed, len(scorelines))
	}
}

func TestApplyThenReverseRestoresCounters(t *testing.T) {
	start := models.Player{
		MatchesPlayed: 10, GoalsFor: 21, GoalsAgainst: 14, GoalDifference: 7,
		Wins: 6, Losses: 2, Draws: 2, Points: 20,
	}
	delta := MatchDelta(2, 3, "Milan")

	applied, _ := Apply(start, delta)
	restored, drift := Apply(applied, delta.Reverse())
	if drift.Occurred() {
		t.Fatalf("unexpected drift on reverse: %v", drift.Clamped)
	}

	// Team history is forward-only, so compare everything else.
	restored.RecentTeams = nil
	if !reflect.DeepEqual(start, restored) {
		t.Errorf("reverse did not restore counters:\n got %+v\nwant %+v", restored, start)
	}
}

func TestApplyClampsNegativeCounters(t *testing.T) {
	player := models.Player{MatchesPlayed: 1, Wins: 1, Points: 3}

	// Reversing a heavier result than was ever applied drives goals
	// negative; the clamp hides it and reports drift.
	player, drift := Apply(player, MatchDelta(4, 2, "").Reverse())

	if !drift.Occurred() {
		t.Fatal("expected drift to be reported")
	}
	if player.GoalsFor != 0 || player.GoalsAgainst != 0 {
		t.Errorf("goals not clamped: for=%d against=%d", player.GoalsFor, player.GoalsAgainst)
	}
	if player.GoalDifference != 0 {
		t.Errorf("goal difference = %d, want 0 after clamped recompute", player.GoalDifference)
	}
	if player.Points != 0 {
		t.Errorf("points = %d, want 0 after clamped recompute", player.Points)
	}
}

func TestEditDeltaWinToDraw(t *testing.T) {
	// A 2-1 win edited to 1-1 turns the winner's win into a draw and
	// leaves the match count alone.
	winner := EditDelta(2, 1, 1, 1)
	if winner.Matches != 0 {
		t.Errorf("edit changed match count by %d", winner.Matches)
	}
	if winner.Wins != -1 || winner.Draws != 1 || winner.Losses != 0 {
		t.Errorf("winner delta = %+v, want win -1 draw +1", winner)
	}

	loser := EditDelta(1, 2, 1, 1)
	if loser.Losses != -1 || loser.Draws != 1 || loser.Wins != 0 {
		t.Errorf("loser delta = %+v, want loss -1 draw +1", loser)
	}

	player := models.Player{MatchesPlayed: 5, Wins: 3, Losses: 1, Draws: 1, Points: 10, GoalsFor: 9, GoalsAgainst: 4, GoalDifference: 5}
	updated, _ := Apply(player, winner)
	if updated.MatchesPlayed != 5 {
		t.Errorf("matches played = %d, want unchanged 5", updated.MatchesPlayed)
	}
	if updated.Points != 2*3+2 {
		t.Errorf("points = %d, want %d", updated.Points, 2*3+2)
	}
}

func TestEditDeltaNoChangeIsZero(t *testing.T) {
	if d := EditDelta(2, 2, 2, 2); !d.IsZero() {
		t.Errorf("identical scorelines gave non-zero delta %+v", d)
	}
}

func TestRecentTeamsMostRecentFirst(t *testing.T) {
	var player models.Player
	for _, team := range []string{"Arsenal", "Milan", "Ajax", "Arsenal"} {
		player, _ = Apply(player, MatchDelta(1, 0, team))
	}

	want := []string{"Arsenal", "Ajax", "Milan"}
	if !reflect.DeepEqual(player.RecentTeams, want) {
		t.Errorf("recent teams = %v, want %v", player.RecentTeams, want)
	}
}

func TestRecentTeamsCapped(t *testing.T) {
	var player models.Player
	teams := []string{"A", "B", "C", "D", "E", "F", "G"}
	for _, team := range teams {
		player, _ = Apply(player, MatchDelta(0, 0, team))
	}

	if len(player.RecentTeams) != MaxRecentTeams {
		t.Fatalf("recent teams length = %d, want %d", len(player.RecentTeams), MaxRecentTeams)
	}
	want := []string{"G", "F", "E", "D", "C"}
	if !reflect.DeepEqual(player.RecentTeams, want) {
		t.Errorf("recent teams = %v, want %v", player.RecentTeams, want)
	}
}

func TestResultPoints(t *testing.T) {
	cases := []struct {
		goalsFor, goalsAgainst, points int
	}{
		{3, 0, 3},
		{1, 1, 1},
		{0, 4, 0},
	}
	for _, c := range cases {
		if got := ResultOf(c.goalsFor, c.goalsAgainst).Points(); got != c.points {
			t.Errorf("ResultOf(%d, %d).Points() = %d, want %d", c.goalsFor, c.goalsAgainst, got, c.points)
		}
	}
}
