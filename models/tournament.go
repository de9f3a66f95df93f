package models

import "time"

// Tournament format versions. Legacy tournaments predate the completed
// flag on matches, so their standings count every match; current ones
// count only completed matches.
const (
	FormatVersionLegacy     = 1
	FormatVersionRoundRobin = 2
)

// Tournament groups a set of round-robin fixtures over an ordered roster.
// Once Completed is set the roster and RoundsPerMatchup are immutable.
type Tournament struct {
	ID               int        `json:"id"`
	Name             string     `json:"name"`
	Description      *string    `json:"description,omitempty"`
	OwnerID          int        `json:"owner_id"`
	StartDate        time.Time  `json:"start_date"`
	EndDate          *time.Time `json:"end_date,omitempty"`
	Completed        bool       `json:"completed"`
	RoundsPerMatchup int        `json:"rounds_per_matchup"`
	FormatVersion    int        `json:"format_version"`
	MatchesCount     int        `json:"matches_count"`
	CreatedAt        time.Time  `json:"created_at"`

	// PlayerIDs is the ordered roster, loaded alongside the tournament.
	PlayerIDs []int `json:"player_ids"`
}
