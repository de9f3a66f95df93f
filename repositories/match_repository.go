package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/foosleague/ladder-system/models"
	"github.com/lib/pq"
)

var (
	ErrMatchNotFound      = errors.New("match not found")
	ErrMatchPlayerInvalid = errors.New("match references an unknown player")
)

type MatchRepository interface {
	Create(ctx context.Context, exec SQLExecutor, match *models.Match) error
	GetByID(ctx context.Context, id int) (*models.Match, error)
	List(ctx context.Context, limit int) ([]*models.Match, error)
	// ListByTournament returns a tournament's matches, newest first.
	// completedOnly nil means no completion filter.
	ListByTournament(ctx context.Context, tournamentID int, completedOnly *bool) ([]*models.Match, error)
	// ListRecentByPlayer returns the player's completed matches, newest
	// first, optionally scoped to one tournament.
	ListRecentByPlayer(ctx context.Context, playerID int, tournamentID *int, limit int) ([]*models.Match, error)
	ListByPlayer(ctx context.Context, playerID int) ([]*models.Match, error)
	ListBetween(ctx context.Context, player1ID, player2ID int) ([]*models.Match, error)
	Update(ctx context.Context, exec SQLExecutor, match *models.Match) error
	Delete(ctx context.Context, exec SQLExecutor, id int) error
	// BulkInsert streams scheduler-generated fixtures with COPY; it must
	// run inside a transaction.
	BulkInsert(ctx context.Context, exec SQLExecutor, matches []*models.Match) error
	DeleteByTournamentAndPlayer(ctx context.Context, exec SQLExecutor, tournamentID, playerID int) (int, error)
	DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

const matchColumns = `
	id, tournament_id, player1_id, player2_id, player1_goals, player2_goals,
	team1, team2, half_length, completed, match_date, created_at`

func (r *postgresMatchRepository) Create(ctx context.Context, exec SQLExecutor, match *models.Match) error {
	query := `
		INSERT INTO matches
			(tournament_id, player1_id, player2_id, player1_goals, player2_goals,
			 team1, team2, half_length, completed, match_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at`

	err := exec.QueryRowContext(ctx, query,
		match.TournamentID,
		match.Player1ID,
		match.Player2ID,
		match.Player1Goals,
		match.Player2Goals,
		match.Team1,
		match.Team2,
		match.HalfLength,
		match.Completed,
		match.Date,
	).Scan(&match.ID, &match.CreatedAt)
	return r.handleMatchError(err)
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, id int) (*models.Match, error) {
	query := `SELECT` + matchColumns + ` FROM matches WHERE id = $1`
	match := &models.Match{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&match.ID,
		&match.TournamentID,
		&match.Player1ID,
		&match.Player2ID,
		&match.Player1Goals,
		&match.Player2Goals,
		&match.Team1,
		&match.Team2,
		&match.HalfLength,
		&match.Completed,
		&match.Date,
		&match.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to scan match %d: %w", id, err)
	}
	return match, nil
}

func (r *postgresMatchRepository) List(ctx context.Context, limit int) ([]*models.Match, error) {
	query := `SELECT` + matchColumns + ` FROM matches ORDER BY match_date DESC, id DESC LIMIT $1`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches: %w", err)
	}
	defer rows.Close()
	return collectMatches(rows)
}

func (r *postgresMatchRepository) ListByTournament(ctx context.Context, tournamentID int, completedOnly *bool) ([]*models.Match, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT` + matchColumns + ` FROM matches WHERE tournament_id = $1`)

	args := []interface{}{tournamentID}
	if completedOnly != nil {
		queryBuilder.WriteString(" AND completed = $" + strconv.Itoa(len(args)+1))
		args = append(args, *completedOnly)
	}
	queryBuilder.WriteString(" ORDER BY match_date DESC, id DESC")

	rows, err := r.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()
	return collectMatches(rows)
}

func (r *postgresMatchRepository) ListRecentByPlayer(ctx context.Context, playerID int, tournamentID *int, limit int) ([]*models.Match, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT` + matchColumns + ` FROM matches
		WHERE (player1_id = $1 OR player2_id = $1) AND completed`)

	args := []interface{}{playerID}
	if tournamentID != nil {
		queryBuilder.WriteString(" AND tournament_id = $" + strconv.Itoa(len(args)+1))
		args = append(args, *tournamentID)
	}
	queryBuilder.WriteString(" ORDER BY match_date DESC, id DESC LIMIT $" + strconv.Itoa(len(args)+1))
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent matches for player %d: %w", playerID, err)
	}
	defer rows.Close()
	return collectMatches(rows)
}

func (r *postgresMatchRepository) ListByPlayer(ctx context.Context, playerID int) ([]*models.Match, error) {
	query := `SELECT` + matchColumns + ` FROM matches
		WHERE player1_id = $1 OR player2_id = $1
		ORDER BY match_date ASC, id ASC`
	rows, err := r.db.QueryContext(ctx, query, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches for player %d: %w", playerID, err)
	}
	defer rows.Close()
	return collectMatches(rows)
}

func (r *postgresMatchRepository) ListBetween(ctx context.Context, player1ID, player2ID int) ([]*models.Match, error) {
	query := `SELECT` + matchColumns + ` FROM matches
		WHERE (player1_id = $1 AND player2_id = $2) OR (player1_id = $2 AND player2_id = $1)
		ORDER BY match_date DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, query, player1ID, player2ID)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches between players %d and %d: %w", player1ID, player2ID, err)
	}
	defer rows.Close()
	return collectMatches(rows)
}

func (r *postgresMatchRepository) Update(ctx context.Context, exec SQLExecutor, match *models.Match) error {
	query := `
		UPDATE matches
		SET player1_goals = $1, player2_goals = $2, team1 = $3, team2 = $4,
		    half_length = $5, completed = $6
		WHERE id = $7`

	result, err := exec.ExecContext(ctx, query,
		match.Player1Goals,
		match.Player2Goals,
		match.Team1,
		match.Team2,
		match.HalfLength,
		match.Completed,
		match.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update match %d: %w", match.ID, err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) Delete(ctx context.Context, exec SQLExecutor, id int) error {
	result, err := exec.ExecContext(ctx, `DELETE FROM matches WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete match %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) BulkInsert(ctx context.Context, exec SQLExecutor, matches []*models.Match) error {
	if len(matches) == 0 {
		return nil
	}

	stmt, err := exec.PrepareContext(ctx, pq.CopyIn("matches",
		"tournament_id", "player1_id", "player2_id", "player1_goals", "player2_goals",
		"team1", "team2", "half_length", "completed", "match_date"))
	if err != nil {
		return fmt.Errorf("failed to prepare fixture bulk insert: %w", err)
	}
	defer stmt.Close()

	for _, m := range matches {
		if _, err := stmt.ExecContext(ctx,
			m.TournamentID, m.Player1ID, m.Player2ID, m.Player1Goals, m.Player2Goals,
			m.Team1, m.Team2, m.HalfLength, m.Completed, m.Date,
		); err != nil {
			return fmt.Errorf("failed to buffer fixture: %w", err)
		}
	}
	if _, err := stmt.ExecContext(ctx); err != nil {
		return fmt.Errorf("failed to flush fixture bulk insert: %w", err)
	}
	return nil
}

func (r *postgresMatchRepository) DeleteByTournamentAndPlayer(ctx context.Context, exec SQLExecutor, tournamentID, playerID int) (int, error) {
	result, err := exec.ExecContext(ctx,
		`DELETE FROM matches WHERE tournament_id = $1 AND (player1_id = $2 OR player2_id = $2)`,
		tournamentID, playerID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete matches of player %d in tournament %d: %w", playerID, tournamentID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check affected rows: %w", err)
	}
	return int(affected), nil
}

func (r *postgresMatchRepository) DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error {
	_, err := exec.ExecContext(ctx, `DELETE FROM matches WHERE tournament_id = $1`, tournamentID)
	if err != nil {
		return fmt.Errorf("failed to delete matches for tournament %d: %w", tournamentID, err)
	}
	return nil
}

func collectMatches(rows *sql.Rows) ([]*models.Match, error) {
	matches := make([]*models.Match, 0)
	for rows.Next() {
		match := &models.Match{}
		if err := rows.Scan(
			&match.ID,
			&match.TournamentID,
			&match.Player1ID,
			&match.Player2ID,
			&match.Player1Goals,
			&match.Player2Goals,
			&match.Team1,
			&match.Team2,
			&match.HalfLength,
			&match.Completed,
			&match.Date,
			&match.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", err)
		}
		matches = append(matches, match)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during match rows iteration: %w", err)
	}
	return matches, nil
}

func (r *postgresMatchRepository) handleMatchError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Constraint {
		case "matches_player1_id_fkey", "matches_player2_id_fkey":
			return ErrMatchPlayerInvalid
		}
	}
	return err
}
