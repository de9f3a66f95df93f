// Package fixtures generates round-robin fixture sets for a tournament
// roster and incrementally repairs them after roster changes. It also
// hosts the websocket hub that pushes fixture and standings updates to
// subscribed clients.
package fixtures

// Fixture identifies one scheduled match by its ordered player pair.
// The order is the schedule's home/away assignment: (A, B) and (B, A)
// are distinct fixtures.
type Fixture struct {
	Player1ID int
	Player2ID int
}

// GenerateFull enumerates the complete round-robin fixture set for the
// roster: every unordered pair meets roundsPerMatchup times, with the
// home/away assignment swapped on odd round indices. Output order is
// deterministic (round-major, pairs in roster order) and its size is
// exactly C(len(roster), 2) * roundsPerMatchup.
func GenerateFull(roster []int, roundsPerMatchup int) []Fixture {
	if len(roster) < 2 || roundsPerMatchup < 1 {
		return nil
	}

	pairs := allPairs(roster)
	fixtures := make([]Fixture, 0, len(pairs)*roundsPerMatchup)
	for round := 0; round < roundsPerMatchup; round++ {
		for _, pair := range pairs {
			fixtures = append(fixtures, orient(pair, round))
		}
	}
	return fixtures
}

// GenerateMissing returns the fixtures that must be added so the
// existing set covers the full round-robin plan for the roster. Existing
// fixtures are matched by exact ordered identity; fixtures whose players
// have left the roster are ignored rather than counted. The check is
// existence, not multiplicity: once an identity is present (or emitted),
// later rounds planning the same identity are collapsed into it. Calling
// this twice in a row therefore yields nothing the second time.
func GenerateMissing(existing []Fixture, roster []int, roundsPerMatchup int) []Fixture {
	if len(roster) < 2 || roundsPerMatchup < 1 {
		return nil
	}

	onRoster := make(map[int]bool, len(roster))
	for _, id := range roster {
		onRoster[id] = true
	}

	present := make(map[Fixture]bool, len(existing))
	for _, f := range existing {
		if onRoster[f.Player1ID] && onRoster[f.Player2ID] {
			present[f] = true
		}
	}

	var missing []Fixture
	for _, pair := range allPairs(roster) {
		for round := 0; round < roundsPerMatchup; round++ {
			want := orient(pair, round)
			if present[want] {
				continue
			}
			missing = append(missing, want)
			present[want] = true
		}
	}
	return missing
}

// Involving filters fixtures down to those that include the player.
func Involving(fixtures []Fixture, playerID int) []Fixture {
	var out []Fixture
	for _, f := range fixtures {
		if f.Player1ID == playerID || f.Player2ID == playerID {
			out = append(out, f)
		}
	}
	return out
}

// orient applies the alternating home/away assignment for a round index.
func orient(pair Fixture, round int) Fixture {
	if round%2 == 1 {
		return Fixture{Player1ID: pair.Player2ID, Player2ID: pair.Player1ID}
	}
	return pair
}

func allPairs(roster []int) []Fixture {
	var pairs []Fixture
	for i := 0; i < len(roster); i++ {
		for j := i + 1; j < len(roster); j++ {
			pairs = append(pairs, Fixture{Player1ID: roster[i], Player2ID: roster[j]})
		}
	}
	return pairs
}
