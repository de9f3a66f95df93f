package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/foosleague/ladder-system/models"
	"github.com/lib/pq"
)

var (
	ErrPlayerNotFound         = errors.New("player not found")
	ErrPlayerEmailConflict    = errors.New("player email conflict")
	ErrPlayerUsernameConflict = errors.New("player username conflict")
)

type PlayerRepository interface {
	Create(ctx context.Context, player *models.Player) error
	GetByID(ctx context.Context, id int) (*models.Player, error)
	GetByEmail(ctx context.Context, email string) (*models.Player, error)
	GetByIDs(ctx context.Context, ids []int) ([]*models.Player, error)
	List(ctx context.Context) ([]*models.Player, error)
	// UpdateLedger writes the rating, counters and recent-team history
	// in one statement; it runs on the executor so the match lifecycle
	// can keep both player writes in the same transaction.
	UpdateLedger(ctx context.Context, exec SQLExecutor, player *models.Player) error
	UpdateAvatarKey(ctx context.Context, id int, avatarKey *string) error
	IncrementTournamentsPlayed(ctx context.Context, exec SQLExecutor, playerIDs []int) error
}

type postgresPlayerRepository struct {
	db *sql.DB
}

func NewPostgresPlayerRepository(db *sql.DB) PlayerRepository {
	return &postgresPlayerRepository{db: db}
}

const playerColumns = `
	id, username, first_name, last_name, email, password_hash, rating,
	matches_played, goals_for, goals_against, goal_difference,
	wins, losses, draws, points, tournaments_played, recent_teams,
	avatar_key, is_deleted, created_at`

func (r *postgresPlayerRepository) Create(ctx context.Context, player *models.Player) error {
	query := `
		INSERT INTO players (username, first_name, last_name, email, password_hash, rating, recent_teams)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		player.Username,
		player.FirstName,
		player.LastName,
		player.Email,
		player.PasswordHash,
		models.DefaultRating,
		pq.Array([]string{}),
	).Scan(&player.ID, &player.CreatedAt)
	if err != nil {
		return r.handlePlayerError(err)
	}
	player.Rating = models.DefaultRating
	return nil
}

func (r *postgresPlayerRepository) GetByID(ctx context.Context, id int) (*models.Player, error) {
	query := `SELECT` + playerColumns + ` FROM players WHERE id = $1`
	return r.scanPlayer(r.db.QueryRowContext(ctx, query, id))
}

func (r *postgresPlayerRepository) GetByEmail(ctx context.Context, email string) (*models.Player, error) {
	query := `SELECT` + playerColumns + ` FROM players WHERE email = $1`
	return r.scanPlayer(r.db.QueryRowContext(ctx, query, email))
}

func (r *postgresPlayerRepository) GetByIDs(ctx context.Context, ids []int) ([]*models.Player, error) {
	if len(ids) == 0 {
		return []*models.Player{}, nil
	}
	query := `SELECT` + playerColumns + ` FROM players WHERE id = ANY($1) ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to query players by ids: %w", err)
	}
	defer rows.Close()
	return r.collectPlayers(rows)
}

func (r *postgresPlayerRepository) List(ctx context.Context) ([]*models.Player, error) {
	query := `SELECT` + playerColumns + ` FROM players WHERE NOT is_deleted ORDER BY rating DESC, id ASC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query players: %w", err)
	}
	defer rows.Close()
	return r.collectPlayers(rows)
}

func (r *postgresPlayerRepository) UpdateLedger(ctx context.Context, exec SQLExecutor, player *models.Player) error {
	query := `
		UPDATE players
		SET rating = $1, matches_played = $2, goals_for = $3, goals_against = $4,
		    goal_difference = $5, wins = $6, losses = $7, draws = $8, points = $9,
		    recent_teams = $10
		WHERE id = $11`

	result, err := exec.ExecContext(ctx, query,
		player.Rating,
		player.MatchesPlayed,
		player.GoalsFor,
		player.GoalsAgainst,
		player.GoalDifference,
		player.Wins,
		player.Losses,
		player.Draws,
		player.Points,
		pq.Array(player.RecentTeams),
		player.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update ledger for player %d: %w", player.ID, err)
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

func (r *postgresPlayerRepository) UpdateAvatarKey(ctx context.Context, id int, avatarKey *string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE players SET avatar_key = $1 WHERE id = $2`, avatarKey, id)
	if err != nil {
		return fmt.Errorf("failed to update avatar key for player %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

func (r *postgresPlayerRepository) IncrementTournamentsPlayed(ctx context.Context, exec SQLExecutor, playerIDs []int) error {
	if len(playerIDs) == 0 {
		return nil
	}
	_, err := exec.ExecContext(ctx,
		`UPDATE players SET tournaments_played = tournaments_played + 1 WHERE id = ANY($1)`,
		pq.Array(playerIDs))
	if err != nil {
		return fmt.Errorf("failed to increment tournaments played: %w", err)
	}
	return nil
}

func (r *postgresPlayerRepository) scanPlayer(row *sql.Row) (*models.Player, error) {
	player := &models.Player{}
	var recentTeams pq.StringArray
	err := row.Scan(
		&player.ID,
		&player.Username,
		&player.FirstName,
		&player.LastName,
		&player.Email,
		&player.PasswordHash,
		&player.Rating,
		&player.MatchesPlayed,
		&player.GoalsFor,
		&player.GoalsAgainst,
		&player.GoalDifference,
		&player.Wins,
		&player.Losses,
		&player.Draws,
		&player.Points,
		&player.TournamentsPlayed,
		&recentTeams,
		&player.AvatarKey,
		&player.IsDeleted,
		&player.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to scan player: %w", err)
	}
	player.RecentTeams = recentTeams
	return player, nil
}

func (r *postgresPlayerRepository) collectPlayers(rows *sql.Rows) ([]*models.Player, error) {
	players := make([]*models.Player, 0)
	for rows.Next() {
		player := &models.Player{}
		var recentTeams pq.StringArray
		if err := rows.Scan(
			&player.ID,
			&player.Username,
			&player.FirstName,
			&player.LastName,
			&player.Email,
			&player.PasswordHash,
			&player.Rating,
			&player.MatchesPlayed,
			&player.GoalsFor,
			&player.GoalsAgainst,
			&player.GoalDifference,
			&player.Wins,
			&player.Losses,
			&player.Draws,
			&player.Points,
			&player.TournamentsPlayed,
			&recentTeams,
			&player.AvatarKey,
			&player.IsDeleted,
			&player.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan player row: %w", err)
		}
		player.RecentTeams = recentTeams
		players = append(players, player)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during player rows iteration: %w", err)
	}
	return players, nil
}

func (r *postgresPlayerRepository) handlePlayerError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Constraint {
		case "players_email_key":
			return ErrPlayerEmailConflict
		case "players_username_key":
			return ErrPlayerUsernameConflict
		}
	}
	return err
}
