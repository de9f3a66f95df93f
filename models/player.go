package models

import "time"

// DefaultRating is the skill rating assigned to every newly registered player.
const DefaultRating = 1200

// Player carries the running ledger of a player's results. The counter
// fields are owned by the ledger package: GoalDifference and Points are
// derived from the primitive counters and recomputed on every apply,
// never written directly.
type Player struct {
	ID           int     `json:"id"`
	Username     string  `json:"username"`
	FirstName    *string `json:"first_name,omitempty"`
	LastName     *string `json:"last_name,omitempty"`
	Email        string  `json:"email,omitempty"`
	PasswordHash string  `json:"-"`

	Rating         int `json:"rating"`
	MatchesPlayed  int `json:"matches_played"`
	GoalsFor       int `json:"goals_for"`
	GoalsAgainst   int `json:"goals_against"`
	GoalDifference int `json:"goal_difference"`
	Wins           int `json:"wins"`
	Losses         int `json:"losses"`
	Draws          int `json:"draws"`
	Points         int `json:"points"`

	TournamentsPlayed int `json:"tournaments_played"`

	// RecentTeams holds up to 5 distinct team names, most recently
	// played first.
	RecentTeams []string `json:"recent_teams"`

	AvatarKey *string `json:"-"`
	AvatarURL *string `json:"avatar_url,omitempty"`

	IsDeleted bool      `json:"is_deleted,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// DisplayName prefers the username, falling back to first/last name.
func (p *Player) DisplayName() string {
	if p == nil {
		return "Unknown Player"
	}
	if p.IsDeleted {
		return "Deleted Player"
	}
	if p.Username != "" {
		return p.Username
	}
	name := ""
	if p.FirstName != nil {
		name = *p.FirstName
	}
	if p.LastName != nil {
		if name != "" {
			name += " "
		}
		name += *p.LastName
	}
	if name != "" {
		return name
	}
	return "Unknown Player"
}
