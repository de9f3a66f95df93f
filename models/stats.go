package models

import "time"

// StandingsRow is one line of a tournament ranking table.
type StandingsRow struct {
	PlayerID       int     `json:"player_id"`
	Username       string  `json:"username"`
	FirstName      *string `json:"first_name,omitempty"`
	LastName       *string `json:"last_name,omitempty"`
	MatchesPlayed  int     `json:"matches_played"`
	GoalsFor       int     `json:"goals_for"`
	GoalsAgainst   int     `json:"goals_against"`
	GoalDifference int     `json:"goal_difference"`
	Wins           int     `json:"wins"`
	Losses         int     `json:"losses"`
	Draws          int     `json:"draws"`
	Points         int     `json:"points"`

	// RecentForm is the player's last five results, newest first,
	// as W/L/D characters padded with '-' to length 5.
	RecentForm string `json:"recent_form"`
}

// RecentMatch is a match summarized from one player's perspective.
type RecentMatch struct {
	MatchID        int       `json:"match_id"`
	Date           time.Time `json:"date"`
	OpponentID     int       `json:"opponent_id"`
	OpponentName   string    `json:"opponent_name"`
	GoalsFor       int       `json:"goals_for"`
	GoalsAgainst   int       `json:"goals_against"`
	Result         string    `json:"result"` // "win", "loss" or "draw"
	Team           string    `json:"team,omitempty"`
	OpponentTeam   string    `json:"opponent_team,omitempty"`
	TournamentName *string   `json:"tournament_name,omitempty"`
}

// DetailedStats is the precomputed per-player report cached by the
// stats service and invalidated after every statistic-affecting match
// operation.
type DetailedStats struct {
	Player

	WinRate             float64          `json:"win_rate"`
	AverageGoalsFor     float64          `json:"average_goals_for"`
	AverageGoalsAgainst float64          `json:"average_goals_against"`
	HighestWinsAgainst  map[string]int   `json:"highest_wins_against,omitempty"`
	HighestLossesTo     map[string]int   `json:"highest_losses_to,omitempty"`
	WinRateOverTime     []DailyWinRate   `json:"win_rate_over_time"`
	TournamentIDs       []int            `json:"tournament_ids"`
	LastFiveMatches     []RecentMatch    `json:"last_five_matches"`
}

// DailyWinRate is one point of the cumulative win-rate series.
type DailyWinRate struct {
	Date    time.Time `json:"date"`
	WinRate float64   `json:"win_rate"`
}

// HeadToHead aggregates the meetings between two players.
type HeadToHead struct {
	Player1ID      int           `json:"player1_id"`
	Player2ID      int           `json:"player2_id"`
	Player1Name    string        `json:"player1_name"`
	Player2Name    string        `json:"player2_name"`
	TotalMatches   int           `json:"total_matches"`
	Player1Wins    int           `json:"player1_wins"`
	Player2Wins    int           `json:"player2_wins"`
	Draws          int           `json:"draws"`
	Player1Goals   int           `json:"player1_goals"`
	Player2Goals   int           `json:"player2_goals"`
	Player1WinRate float64       `json:"player1_win_rate"`
	Player2WinRate float64       `json:"player2_win_rate"`
	RecentMatches  []RecentMatch `json:"recent_matches"`
}
