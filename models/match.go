package models

import "time"

// Match is a head-to-head result between two players. The player order is
// part of the fixture identity, not just display: (A, B) and (B, A) are
// distinct fixtures within a tournament.
type Match struct {
	ID           int       `json:"id"`
	TournamentID *int      `json:"tournament_id,omitempty"`
	Player1ID    int       `json:"player1_id"`
	Player2ID    int       `json:"player2_id"`
	Player1Goals int       `json:"player1_goals"`
	Player2Goals int       `json:"player2_goals"`
	Team1        string    `json:"team1"`
	Team2        string    `json:"team2"`
	HalfLength   int       `json:"half_length"`
	Completed    bool      `json:"completed"`
	Date         time.Time `json:"date"`
	CreatedAt    time.Time `json:"created_at"`

	// Display fields resolved by the service layer, not stored.
	Player1Name    string  `json:"player1_name,omitempty"`
	Player2Name    string  `json:"player2_name,omitempty"`
	TournamentName *string `json:"tournament_name,omitempty"`
}

// DefaultHalfLength is assigned to scheduler-generated fixtures.
const DefaultHalfLength = 4
