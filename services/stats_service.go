package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/foosleague/ladder-system/ledger"
	"github.com/foosleague/ladder-system/models"
	"github.com/foosleague/ladder-system/repositories"
	"golang.org/x/sync/errgroup"
)

type StatsService interface {
	CacheInvalidator

	// DetailedStats serves the cached report, recomputing on a miss or
	// after an invalidation marked it stale.
	DetailedStats(ctx context.Context, playerID int) (*models.DetailedStats, error)
	HeadToHead(ctx context.Context, playerID, opponentID int) (*models.HeadToHead, error)
	// RebuildStale recomputes up to limit stale cache entries and
	// returns how many it refreshed.
	RebuildStale(ctx context.Context, limit int) (int, error)
}

type statsService struct {
	playerRepo     repositories.PlayerRepository
	matchRepo      repositories.MatchRepository
	tournamentRepo repositories.TournamentRepository
	cacheRepo      repositories.StatsCacheRepository
	logger         *slog.Logger
}

func NewStatsService(
	playerRepo repositories.PlayerRepository,
	matchRepo repositories.MatchRepository,
	tournamentRepo repositories.TournamentRepository,
	cacheRepo repositories.StatsCacheRepository,
	logger *slog.Logger,
) StatsService {
	return &statsService{
		playerRepo:     playerRepo,
		matchRepo:      matchRepo,
		tournamentRepo: tournamentRepo,
		cacheRepo:      cacheRepo,
		logger:         logger,
	}
}

func (s *statsService) DetailedStats(ctx context.Context, playerID int) (*models.DetailedStats, error) {
	cached, err := s.cacheRepo.Get(ctx, playerID)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, repositories.ErrStatsCacheMiss) {
		return nil, err
	}

	stats, err := s.compute(ctx, playerID)
	if err != nil {
		return nil, err
	}
	if err := s.cacheRepo.Put(ctx, playerID, stats); err != nil {
		s.logger.Warn("failed to store computed stats",
			"player_id", playerID, "error", err)
	}
	return stats, nil
}

func (s *statsService) Invalidate(ctx context.Context, exec repositories.SQLExecutor, playerIDs ...int) error {
	return s.cacheRepo.MarkStale(ctx, exec, playerIDs)
}

func (s *statsService) RebuildStale(ctx context.Context, limit int) (int, error) {
	ids, err := s.cacheRepo.ListStale(ctx, limit)
	if err != nil {
		return 0, err
	}
	rebuilt := 0
	for _, id := range ids {
		stats, err := s.compute(ctx, id)
		if err != nil {
			s.logger.Warn("failed to rebuild stale stats",
				"player_id", id, "error", err)
			continue
		}
		if err := s.cacheRepo.Put(ctx, id, stats); err != nil {
			s.logger.Warn("failed to store rebuilt stats",
				"player_id", id, "error", err)
			continue
		}
		rebuilt++
	}
	return rebuilt, nil
}

func (s *statsService) compute(ctx context.Context, playerID int) (*models.DetailedStats, error) {
	player, err := s.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, err
	}

	var (
		matches       []*models.Match
		tournamentIDs []int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		matches, err = s.matchRepo.ListByPlayer(gctx, playerID)
		return err
	})
	g.Go(func() error {
		var err error
		tournamentIDs, err = s.tournamentRepo.ListIDsForPlayer(gctx, playerID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	completed := make([]*models.Match, 0, len(matches))
	for _, m := range matches {
		if m.Completed {
			completed = append(completed, m)
		}
	}

	opponents, err := s.opponentNames(ctx, playerID, completed)
	if err != nil {
		return nil, err
	}

	stats := &models.DetailedStats{
		Player:        *player,
		TournamentIDs: tournamentIDs,
	}
	if player.MatchesPlayed > 0 {
		stats.WinRate = float64(player.Wins) / float64(player.MatchesPlayed)
		stats.AverageGoalsFor = float64(player.GoalsFor) / float64(player.MatchesPlayed)
		stats.AverageGoalsAgainst = float64(player.GoalsAgainst) / float64(player.MatchesPlayed)
	}

	stats.HighestWinsAgainst = make(map[string]int)
	stats.HighestLossesTo = make(map[string]int)
	wins, played := 0, 0
	var lastDay time.Time
	for _, m := range completed {
		goalsFor, goalsAgainst := orientGoals(m, playerID)
		r := ledger.ResultOf(goalsFor, goalsAgainst)
		played++
		wins += r.Win

		name := opponents[opponentID(m, playerID)]
		if r.Win == 1 {
			stats.HighestWinsAgainst[name]++
		}
		if r.Loss == 1 {
			stats.HighestLossesTo[name]++
		}

		day := m.Date.Truncate(24 * time.Hour)
		point := models.DailyWinRate{Date: day, WinRate: float64(wins) / float64(played)}
		if day.Equal(lastDay) && len(stats.WinRateOverTime) > 0 {
			stats.WinRateOverTime[len(stats.WinRateOverTime)-1] = point
		} else {
			stats.WinRateOverTime = append(stats.WinRateOverTime, point)
			lastDay = day
		}
	}

	start := len(completed) - ledger.FormLength
	if start < 0 {
		start = 0
	}
	for i := len(completed) - 1; i >= start; i-- {
		stats.LastFiveMatches = append(stats.LastFiveMatches,
			recentMatch(completed[i], playerID, opponents))
	}
	return stats, nil
}

func (s *statsService) HeadToHead(ctx context.Context, playerID, opponentID int) (*models.HeadToHead, error) {
	if playerID == opponentID {
		return nil, ErrSamePlayer
	}
	players, err := s.playerRepo.GetByIDs(ctx, []int{playerID, opponentID})
	if err != nil {
		return nil, err
	}
	if len(players) != 2 {
		return nil, ErrPlayerNotFound
	}
	names := map[int]string{}
	for _, p := range players {
		names[p.ID] = p.DisplayName()
	}

	matches, err := s.matchRepo.ListBetween(ctx, playerID, opponentID)
	if err != nil {
		return nil, err
	}

	h2h := &models.HeadToHead{
		Player1ID:   playerID,
		Player2ID:   opponentID,
		Player1Name: names[playerID],
		Player2Name: names[opponentID],
	}
	for _, m := range matches {
		if !m.Completed {
			continue
		}
		goalsFor, goalsAgainst := orientGoals(m, playerID)
		h2h.TotalMatches++
		h2h.Player1Goals += goalsFor
		h2h.Player2Goals += goalsAgainst
		switch r := ledger.ResultOf(goalsFor, goalsAgainst); {
		case r.Win == 1:
			h2h.Player1Wins++
		case r.Loss == 1:
			h2h.Player2Wins++
		default:
			h2h.Draws++
		}
		if len(h2h.RecentMatches) < ledger.FormLength {
			h2h.RecentMatches = append(h2h.RecentMatches,
				recentMatch(m, playerID, map[int]string{opponentID: names[opponentID]}))
		}
	}
	if h2h.TotalMatches > 0 {
		h2h.Player1WinRate = float64(h2h.Player1Wins) / float64(h2h.TotalMatches)
		h2h.Player2WinRate = float64(h2h.Player2Wins) / float64(h2h.TotalMatches)
	}
	return h2h, nil
}

func (s *statsService) opponentNames(ctx context.Context, playerID int, matches []*models.Match) (map[int]string, error) {
	seen := make(map[int]bool)
	ids := make([]int, 0)
	for _, m := range matches {
		id := opponentID(m, playerID)
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	players, err := s.playerRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	names := make(map[int]string, len(players))
	for _, p := range players {
		names[p.ID] = p.DisplayName()
	}
	return names, nil
}

func opponentID(m *models.Match, playerID int) int {
	if m.Player1ID == playerID {
		return m.Player2ID
	}
	return m.Player1ID
}

func orientGoals(m *models.Match, playerID int) (goalsFor, goalsAgainst int) {
	if m.Player1ID == playerID {
		return m.Player1Goals, m.Player2Goals
	}
	return m.Player2Goals, m.Player1Goals
}

func recentMatch(m *models.Match, playerID int, names map[int]string) models.RecentMatch {
	goalsFor, goalsAgainst := orientGoals(m, playerID)
	result := "draw"
	switch r := ledger.ResultOf(goalsFor, goalsAgainst); {
	case r.Win == 1:
		result = "win"
	case r.Loss == 1:
		result = "loss"
	}

	team, opponentTeam := m.Team1, m.Team2
	if m.Player2ID == playerID {
		team, opponentTeam = m.Team2, m.Team1
	}
	return models.RecentMatch{
		MatchID:      m.ID,
		Date:         m.Date,
		OpponentID:   opponentID(m, playerID),
		OpponentName: names[opponentID(m, playerID)],
		GoalsFor:     goalsFor,
		GoalsAgainst: goalsAgainst,
		Result:       result,
		Team:         team,
		OpponentTeam: opponentTeam,
	}
}
