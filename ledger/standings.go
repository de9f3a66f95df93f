package ledger

import (
	"sort"
	"strings"

	"github.com/foosleague/ladder-system/models"
)

// Compute folds the given matches into a ranking table for the roster.
// Matches not involving a roster player contribute nothing to it. Rows
// are ordered by points, then goal difference, then goals for, all
// descending; further ties keep roster order (the sort is stable).
func Compute(roster []*models.Player, matches []*models.Match) []models.StandingsRow {
	rows := make([]models.StandingsRow, 0, len(roster))
	for _, p := range roster {
		row := models.StandingsRow{
			PlayerID:  p.ID,
			Username:  p.Username,
			FirstName: p.FirstName,
			LastName:  p.LastName,
		}
		for _, m := range matches {
			goalsFor, goalsAgainst, played := perspective(m, p.ID)
			if !played {
				continue
			}
			r := ResultOf(goalsFor, goalsAgainst)
			row.MatchesPlayed++
			row.GoalsFor += goalsFor
			row.GoalsAgainst += goalsAgainst
			row.Wins += r.Win
			row.Losses += r.Loss
			row.Draws += r.Draw
			row.Points += r.Points()
		}
		row.GoalDifference = row.GoalsFor - row.GoalsAgainst
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Points != rows[j].Points {
			return rows[i].Points > rows[j].Points
		}
		if rows[i].GoalDifference != rows[j].GoalDifference {
			return rows[i].GoalDifference > rows[j].GoalDifference
		}
		return rows[i].GoalsFor > rows[j].GoalsFor
	})
	return rows
}

// FormLength is the number of results a recent-form string covers.
const FormLength = 5

// RecentForm maps a player's matches, ordered newest first, to a string
// of W/L/D characters padded with '-' to FormLength.
func RecentForm(playerID int, matches []*models.Match) string {
	var b strings.Builder
	for _, m := range matches {
		if b.Len() == FormLength {
			break
		}
		goalsFor, goalsAgainst, played := perspective(m, playerID)
		if !played {
			continue
		}
		switch r := ResultOf(goalsFor, goalsAgainst); {
		case r.Win == 1:
			b.WriteByte('W')
		case r.Loss == 1:
			b.WriteByte('L')
		default:
			b.WriteByte('D')
		}
	}
	for b.Len() < FormLength {
		b.WriteByte('-')
	}
	return b.String()
}

// perspective orients a match's scoreline toward the given player.
func perspective(m *models.Match, playerID int) (goalsFor, goalsAgainst int, played bool) {
	switch playerID {
	case m.Player1ID:
		return m.Player1Goals, m.Player2Goals, true
	case m.Player2ID:
		return m.Player2Goals, m.Player1Goals, true
	default:
		return 0, 0, false
	}
}
