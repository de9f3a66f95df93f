package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/foosleague/ladder-system/models"
	"github.com/lib/pq"
)

var ErrStatsCacheMiss = errors.New("stats cache miss")

// StatsCacheRepository persists computed detailed stats so repeated
// profile reads skip the full match scan. Entries are marked stale on
// ledger mutations and rebuilt by a background worker.
type StatsCacheRepository interface {
	Get(ctx context.Context, playerID int) (*models.DetailedStats, error)
	Put(ctx context.Context, playerID int, stats *models.DetailedStats) error
	MarkStale(ctx context.Context, exec SQLExecutor, playerIDs []int) error
	ListStale(ctx context.Context, limit int) ([]int, error)
}

type postgresStatsCacheRepository struct {
	db *sql.DB
}

func NewPostgresStatsCacheRepository(db *sql.DB) StatsCacheRepository {
	return &postgresStatsCacheRepository{db: db}
}

func (r *postgresStatsCacheRepository) Get(ctx context.Context, playerID int) (*models.DetailedStats, error) {
	var payload []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT payload FROM player_stats_cache WHERE player_id = $1 AND stale = FALSE`,
		playerID).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStatsCacheMiss
		}
		return nil, fmt.Errorf("failed to read stats cache for player %d: %w", playerID, err)
	}

	stats := &models.DetailedStats{}
	if err := json.Unmarshal(payload, stats); err != nil {
		// Treat undecodable payloads as a miss so the entry gets rebuilt.
		return nil, ErrStatsCacheMiss
	}
	return stats, nil
}

func (r *postgresStatsCacheRepository) Put(ctx context.Context, playerID int, stats *models.DetailedStats) error {
	payload, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("failed to encode stats for player %d: %w", playerID, err)
	}

	query := `
		INSERT INTO player_stats_cache (player_id, payload, stale, updated_at)
		VALUES ($1, $2, FALSE, NOW())
		ON CONFLICT (player_id)
		DO UPDATE SET payload = EXCLUDED.payload, stale = FALSE, updated_at = NOW()`

	if _, err := r.db.ExecContext(ctx, query, playerID, payload); err != nil {
		return fmt.Errorf("failed to write stats cache for player %d: %w", playerID, err)
	}
	return nil
}

func (r *postgresStatsCacheRepository) MarkStale(ctx context.Context, exec SQLExecutor, playerIDs []int) error {
	if len(playerIDs) == 0 {
		return nil
	}
	query := `UPDATE player_stats_cache SET stale = TRUE WHERE player_id = ANY($1)`
	if _, err := exec.ExecContext(ctx, query, pq.Array(playerIDs)); err != nil {
		return fmt.Errorf("failed to mark stats cache stale: %w", err)
	}
	return nil
}

func (r *postgresStatsCacheRepository) ListStale(ctx context.Context, limit int) ([]int, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT player_id FROM player_stats_cache WHERE stale = TRUE ORDER BY updated_at ASC LIMIT $1`,
		limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query stale stats cache entries: %w", err)
	}
	defer rows.Close()

	ids := make([]int, 0)
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan stale cache row: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
