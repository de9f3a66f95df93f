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
	ErrTournamentNotFound       = errors.New("tournament not found")
	ErrTournamentPlayerConflict = errors.New("player already in tournament")
)

type TournamentRepository interface {
	Create(ctx context.Context, exec SQLExecutor, tournament *models.Tournament) error
	GetByID(ctx context.Context, id int) (*models.Tournament, error)
	ListForPlayer(ctx context.Context, playerID int) ([]*models.Tournament, error)
	ListIDsForPlayer(ctx context.Context, playerID int) ([]int, error)
	Update(ctx context.Context, exec SQLExecutor, tournament *models.Tournament) error
	Delete(ctx context.Context, exec SQLExecutor, id int) error
	// Roster maintenance. The roster keeps insertion order via a
	// sequence column; AddPlayer appends at the end.
	AddPlayer(ctx context.Context, exec SQLExecutor, tournamentID, playerID int) error
	RemovePlayer(ctx context.Context, exec SQLExecutor, tournamentID, playerID int) error
	ListRoster(ctx context.Context, tournamentID int) ([]int, error)
	SetMatchesCount(ctx context.Context, exec SQLExecutor, tournamentID, count int) error
	// AddToMatchesCount floors the stored count at zero for negative deltas.
	AddToMatchesCount(ctx context.Context, exec SQLExecutor, tournamentID, delta int) error
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

const tournamentColumns = `
	id, name, description, owner_id, start_date, end_date, completed,
	rounds_per_matchup, format_version, matches_count, created_at`

func (r *postgresTournamentRepository) Create(ctx context.Context, exec SQLExecutor, tournament *models.Tournament) error {
	query := `
		INSERT INTO tournaments
			(name, description, owner_id, start_date, end_date, completed,
			 rounds_per_matchup, format_version, matches_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at`

	err := exec.QueryRowContext(ctx, query,
		tournament.Name,
		tournament.Description,
		tournament.OwnerID,
		tournament.StartDate,
		tournament.EndDate,
		tournament.Completed,
		tournament.RoundsPerMatchup,
		tournament.FormatVersion,
		tournament.MatchesCount,
	).Scan(&tournament.ID, &tournament.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert tournament: %w", err)
	}
	return nil
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	query := `SELECT` + tournamentColumns + ` FROM tournaments WHERE id = $1`
	tournament := &models.Tournament{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&tournament.ID,
		&tournament.Name,
		&tournament.Description,
		&tournament.OwnerID,
		&tournament.StartDate,
		&tournament.EndDate,
		&tournament.Completed,
		&tournament.RoundsPerMatchup,
		&tournament.FormatVersion,
		&tournament.MatchesCount,
		&tournament.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to scan tournament %d: %w", id, err)
	}

	roster, err := r.ListRoster(ctx, id)
	if err != nil {
		return nil, err
	}
	tournament.PlayerIDs = roster
	return tournament, nil
}

func (r *postgresTournamentRepository) ListForPlayer(ctx context.Context, playerID int) ([]*models.Tournament, error) {
	query := `
		SELECT DISTINCT` + tournamentColumns + `
		FROM tournaments t
		LEFT JOIN tournament_players tp ON tp.tournament_id = t.id
		WHERE t.owner_id = $1 OR tp.player_id = $1
		ORDER BY t.id DESC`

	rows, err := r.db.QueryContext(ctx, query, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tournaments for player %d: %w", playerID, err)
	}
	defer rows.Close()

	tournaments := make([]*models.Tournament, 0)
	for rows.Next() {
		t := &models.Tournament{}
		if err := rows.Scan(
			&t.ID,
			&t.Name,
			&t.Description,
			&t.OwnerID,
			&t.StartDate,
			&t.EndDate,
			&t.Completed,
			&t.RoundsPerMatchup,
			&t.FormatVersion,
			&t.MatchesCount,
			&t.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan tournament row: %w", err)
		}
		tournaments = append(tournaments, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during tournament rows iteration: %w", err)
	}

	for _, t := range tournaments {
		roster, err := r.ListRoster(ctx, t.ID)
		if err != nil {
			return nil, err
		}
		t.PlayerIDs = roster
	}
	return tournaments, nil
}

func (r *postgresTournamentRepository) ListIDsForPlayer(ctx context.Context, playerID int) ([]int, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT tournament_id FROM tournament_players WHERE player_id = $1 ORDER BY tournament_id`,
		playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tournament ids for player %d: %w", playerID, err)
	}
	defer rows.Close()

	ids := make([]int, 0)
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan tournament id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *postgresTournamentRepository) Update(ctx context.Context, exec SQLExecutor, tournament *models.Tournament) error {
	query := `
		UPDATE tournaments
		SET name = $1, description = $2, start_date = $3, end_date = $4,
		    completed = $5, rounds_per_matchup = $6
		WHERE id = $7`

	result, err := exec.ExecContext(ctx, query,
		tournament.Name,
		tournament.Description,
		tournament.StartDate,
		tournament.EndDate,
		tournament.Completed,
		tournament.RoundsPerMatchup,
		tournament.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update tournament %d: %w", tournament.ID, err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) Delete(ctx context.Context, exec SQLExecutor, id int) error {
	result, err := exec.ExecContext(ctx, `DELETE FROM tournaments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete tournament %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) AddPlayer(ctx context.Context, exec SQLExecutor, tournamentID, playerID int) error {
	query := `
		INSERT INTO tournament_players (tournament_id, player_id, seq)
		VALUES ($1, $2, (SELECT COALESCE(MAX(seq), 0) + 1 FROM tournament_players WHERE tournament_id = $1))`

	_, err := exec.ExecContext(ctx, query, tournamentID, playerID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return ErrTournamentPlayerConflict
		}
		return fmt.Errorf("failed to add player %d to tournament %d: %w", playerID, tournamentID, err)
	}
	return nil
}

func (r *postgresTournamentRepository) RemovePlayer(ctx context.Context, exec SQLExecutor, tournamentID, playerID int) error {
	result, err := exec.ExecContext(ctx,
		`DELETE FROM tournament_players WHERE tournament_id = $1 AND player_id = $2`,
		tournamentID, playerID)
	if err != nil {
		return fmt.Errorf("failed to remove player %d from tournament %d: %w", playerID, tournamentID, err)
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

func (r *postgresTournamentRepository) ListRoster(ctx context.Context, tournamentID int) ([]int, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT player_id FROM tournament_players WHERE tournament_id = $1 ORDER BY seq ASC`,
		tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query roster for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	roster := make([]int, 0)
	for rows.Next() {
		var playerID int
		if err := rows.Scan(&playerID); err != nil {
			return nil, fmt.Errorf("failed to scan roster row: %w", err)
		}
		roster = append(roster, playerID)
	}
	return roster, rows.Err()
}

func (r *postgresTournamentRepository) SetMatchesCount(ctx context.Context, exec SQLExecutor, tournamentID, count int) error {
	result, err := exec.ExecContext(ctx,
		`UPDATE tournaments SET matches_count = $1 WHERE id = $2`, count, tournamentID)
	if err != nil {
		return fmt.Errorf("failed to set matches count for tournament %d: %w", tournamentID, err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) AddToMatchesCount(ctx context.Context, exec SQLExecutor, tournamentID, delta int) error {
	result, err := exec.ExecContext(ctx,
		`UPDATE tournaments SET matches_count = GREATEST(0, matches_count + $1) WHERE id = $2`,
		delta, tournamentID)
	if err != nil {
		return fmt.Errorf("failed to adjust matches count for tournament %d: %w", tournamentID, err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}
