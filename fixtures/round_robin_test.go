package fixtures

import (
	"reflect"
	"testing"
)

func TestGenerateFullSizeAndUniqueness(t *testing.T) {
	cases := []struct {
		players, rounds, want int
	}{
		{2, 1, 1},
		{3, 1, 3},
		{3, 2, 6},
		{4, 2, 12},
		{5, 3, 30},
	}

	for _, c := range cases {
		roster := make([]int, c.players)
		for i := range roster {
			roster[i] = i + 1
		}
		fixtures := GenerateFull(roster, c.rounds)
		if len(fixtures) != c.want {
			t.Errorf("GenerateFull(%d players, %d rounds): %d fixtures, want %d",
				c.players, c.rounds, len(fixtures), c.want)
		}

		if c.rounds <= 2 {
			seen := make(map[Fixture]bool)
			for _, f := range fixtures {
				if seen[f] {
					t.Errorf("duplicate fixture identity %+v for %d players, %d rounds", f, c.players, c.rounds)
				}
				seen[f] = true
			}
		}
	}
}

func TestGenerateFullAlternatesHomeAway(t *testing.T) {
	fixtures := GenerateFull([]int{1, 2}, 4)
	want := []Fixture{
		{Player1ID: 1, Player2ID: 2},
		{Player1ID: 2, Player2ID: 1},
		{Player1ID: 1, Player2ID: 2},
		{Player1ID: 2, Player2ID: 1},
	}
	if !reflect.DeepEqual(fixtures, want) {
		t.Errorf("fixtures = %v, want alternating %v", fixtures, want)
	}
}

func TestGenerateFullDegenerateInputs(t *testing.T) {
	if got := GenerateFull([]int{1}, 2); got != nil {
		t.Errorf("single-player roster produced %v", got)
	}
	if got := GenerateFull([]int{1, 2}, 0); got != nil {
		t.Errorf("zero rounds produced %v", got)
	}
}

func TestGenerateMissingTopsUpNewPlayer(t *testing.T) {
	roster := []int{1, 2, 3}
	existing := GenerateFull(roster, 2)
	if len(existing) != 6 {
		t.Fatalf("setup: %d fixtures, want 6", len(existing))
	}

	grown := []int{1, 2, 3, 4}
	missing := GenerateMissing(existing, grown, 2)
	if len(missing) != 6 {
		t.Fatalf("adding a fourth player: %d new fixtures, want 6", len(missing))
	}
	for _, f := range missing {
		if f.Player1ID != 4 && f.Player2ID != 4 {
			t.Errorf("new fixture %+v does not involve the added player", f)
		}
	}
}

func TestGenerateMissingIsIdempotent(t *testing.T) {
	roster := []int{1, 2, 3, 4}
	existing := GenerateFull(roster, 2)

	first := GenerateMissing(existing, roster, 2)
	if len(first) != 0 {
		t.Fatalf("complete set still produced %d fixtures", len(first))
	}
	second := GenerateMissing(existing, roster, 2)
	if len(second) != 0 {
		t.Errorf("second run produced %d fixtures, want 0", len(second))
	}
}

func TestGenerateMissingIgnoresDepartedPlayers(t *testing.T) {
	existing := GenerateFull([]int{1, 2, 3}, 1)

	// Player 3 left; their fixtures must not mask the remaining plan.
	missing := GenerateMissing(existing, []int{1, 2}, 1)
	if len(missing) != 0 {
		t.Errorf("pair (1,2) already exists: got %d new fixtures", len(missing))
	}

	// Fixtures with departed players never satisfy another identity.
	stale := []Fixture{{Player1ID: 1, Player2ID: 3}}
	missing = GenerateMissing(stale, []int{1, 2}, 1)
	want := []Fixture{{Player1ID: 1, Player2ID: 2}}
	if !reflect.DeepEqual(missing, want) {
		t.Errorf("missing = %v, want %v", missing, want)
	}
}

func TestGenerateMissingMatchesByOrderedIdentity(t *testing.T) {
	// One (1,2) fixture exists from round 0; the round-1 return leg has
	// the opposite orientation and is still owed.
	existing := []Fixture{{Player1ID: 1, Player2ID: 2}}
	missing := GenerateMissing(existing, []int{1, 2}, 2)
	want := []Fixture{{Player1ID: 2, Player2ID: 1}}
	if !reflect.DeepEqual(missing, want) {
		t.Errorf("missing = %v, want the swapped return leg %v", missing, want)
	}
}

func TestGenerateMissingCollapsesRepeatedIdentities(t *testing.T) {
	// With four rounds the plan names each orientation twice, but the
	// existence check emits each identity at most once.
	missing := GenerateMissing(nil, []int{1, 2}, 4)
	want := []Fixture{
		{Player1ID: 1, Player2ID: 2},
		{Player1ID: 2, Player2ID: 1},
	}
	if !reflect.DeepEqual(missing, want) {
		t.Errorf("missing = %v, want collapsed %v", missing, want)
	}
}

func TestInvolving(t *testing.T) {
	fixtures := GenerateFull([]int{1, 2, 3}, 1)
	got := Involving(fixtures, 3)
	want := []Fixture{
		{Player1ID: 1, Player2ID: 3},
		{Player1ID: 2, Player2ID: 3},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Involving = %v, want %v", got, want)
	}
}
