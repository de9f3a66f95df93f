package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/foosleague/ladder-system/models"
	"github.com/foosleague/ladder-system/repositories"
)

type fakeStatsCacheRepo struct {
	entries map[int]*models.DetailedStats
	stale   map[int]bool
	puts    int
}

func newFakeStatsCacheRepo() *fakeStatsCacheRepo {
	return &fakeStatsCacheRepo{
		entries: make(map[int]*models.DetailedStats),
		stale:   make(map[int]bool),
	}
}

func (f *fakeStatsCacheRepo) Get(ctx context.Context, playerID int) (*models.DetailedStats, error) {
	if stats, ok := f.entries[playerID]; ok && !f.stale[playerID] {
		return stats, nil
	}
	return nil, repositories.ErrStatsCacheMiss
}

func (f *fakeStatsCacheRepo) Put(ctx context.Context, playerID int, stats *models.DetailedStats) error {
	f.entries[playerID] = stats
	f.stale[playerID] = false
	f.puts++
	return nil
}

func (f *fakeStatsCacheRepo) MarkStale(ctx context.Context, exec repositories.SQLExecutor, playerIDs []int) error {
	for _, id := range playerIDs {
		if _, ok := f.entries[id]; ok {
			f.stale[id] = true
		}
	}
	return nil
}

func (f *fakeStatsCacheRepo) ListStale(ctx context.Context, limit int) ([]int, error) {
	ids := make([]int, 0)
	for id, stale := range f.stale {
		if stale && len(ids) < limit {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func newStatsServiceFixture() (StatsService, *fakePlayerRepo, *fakeMatchRepo, *fakeStatsCacheRepo) {
	players := newFakePlayerRepo()
	matches := newFakeMatchRepo()
	tournaments := newFakeTournamentRepo()
	cache := newFakeStatsCacheRepo()
	service := NewStatsService(players, matches, tournaments, cache, testLogger())
	return service, players, matches, cache
}

func completedMatch(id, p1, p2, g1, g2 int, daysAgo int) *models.Match {
	return &models.Match{
		ID:           id,
		Player1ID:    p1,
		Player2ID:    p2,
		Player1Goals: g1,
		Player2Goals: g2,
		Completed:    true,
		Date:         time.Now().AddDate(0, 0, -daysAgo),
	}
}

func TestStatsServiceDetailedStats(t *testing.T) {
	service, players, matches, cache := newStatsServiceFixture()
	players.add(models.Player{ID: 1, Username: "alice",
		MatchesPlayed: 3, Wins: 2, Losses: 1, GoalsFor: 7, GoalsAgainst: 4})
	players.add(models.Player{ID: 2, Username: "bob"})

	matches.matches[1] = completedMatch(1, 1, 2, 3, 1, 3)
	matches.matches[2] = completedMatch(2, 2, 1, 2, 1, 2)
	matches.matches[3] = completedMatch(3, 1, 2, 3, 1, 1)
	matches.nextID = 4

	stats, err := service.DetailedStats(context.Background(), 1)
	if err != nil {
		t.Fatalf("DetailedStats: %v", err)
	}

	if got, want := stats.WinRate, 2.0/3.0; got != want {
		t.Errorf("win rate = %v, want %v", got, want)
	}
	if stats.HighestWinsAgainst["bob"] != 2 {
		t.Errorf("wins against bob = %d, want 2", stats.HighestWinsAgainst["bob"])
	}
	if stats.HighestLossesTo["bob"] != 1 {
		t.Errorf("losses to bob = %d, want 1", stats.HighestLossesTo["bob"])
	}
	if len(stats.LastFiveMatches) != 3 {
		t.Fatalf("last matches = %d, want 3", len(stats.LastFiveMatches))
	}
	if stats.LastFiveMatches[0].MatchID != 3 || stats.LastFiveMatches[0].Result != "win" {
		t.Errorf("latest match = %+v, want match 3 as a win", stats.LastFiveMatches[0])
	}
	if len(stats.WinRateOverTime) != 3 {
		t.Errorf("win rate series = %d points, want 3", len(stats.WinRateOverTime))
	}

	// Second read comes out of the cache without recomputation.
	puts := cache.puts
	if _, err := service.DetailedStats(context.Background(), 1); err != nil {
		t.Fatalf("DetailedStats (cached): %v", err)
	}
	if cache.puts != puts {
		t.Error("cached read must not recompute")
	}
}

func TestStatsServiceRebuildStale(t *testing.T) {
	service, players, _, cache := newStatsServiceFixture()
	players.add(models.Player{ID: 1, Username: "alice"})

	if _, err := service.DetailedStats(context.Background(), 1); err != nil {
		t.Fatalf("DetailedStats: %v", err)
	}
	if err := service.Invalidate(context.Background(), nil, 1); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	if _, err := cache.Get(context.Background(), 1); !errors.Is(err, repositories.ErrStatsCacheMiss) {
		t.Fatal("invalidation must make the entry a miss")
	}

	rebuilt, err := service.RebuildStale(context.Background(), 10)
	if err != nil {
		t.Fatalf("RebuildStale: %v", err)
	}
	if rebuilt != 1 {
		t.Errorf("rebuilt = %d, want 1", rebuilt)
	}
	if _, err := cache.Get(context.Background(), 1); err != nil {
		t.Error("rebuilt entry must be readable again")
	}
}

func TestStatsServiceHeadToHead(t *testing.T) {
	service, players, matches, _ := newStatsServiceFixture()
	players.add(models.Player{ID: 1, Username: "alice"})
	players.add(models.Player{ID: 2, Username: "bob"})

	matches.matches[1] = completedMatch(1, 1, 2, 3, 1, 3)
	matches.matches[2] = completedMatch(2, 2, 1, 2, 2, 2)
	matches.matches[3] = completedMatch(3, 1, 2, 0, 1, 1)
	matches.nextID = 4

	h2h, err := service.HeadToHead(context.Background(), 1, 2)
	if err != nil {
		t.Fatalf("HeadToHead: %v", err)
	}
	if h2h.TotalMatches != 3 || h2h.Player1Wins != 1 || h2h.Player2Wins != 1 || h2h.Draws != 1 {
		t.Errorf("aggregate = %+v", h2h)
	}
	if h2h.Player1Goals != 5 || h2h.Player2Goals != 4 {
		t.Errorf("goals = %d-%d, want 5-4", h2h.Player1Goals, h2h.Player2Goals)
	}
	if h2h.Player1WinRate != 1.0/3.0 {
		t.Errorf("player1 win rate = %v", h2h.Player1WinRate)
	}

	if _, err := service.HeadToHead(context.Background(), 1, 1); !errors.Is(err, ErrSamePlayer) {
		t.Errorf("self head-to-head error = %v, want ErrSamePlayer", err)
	}
	if _, err := service.HeadToHead(context.Background(), 1, 99); !errors.Is(err, ErrPlayerNotFound) {
		t.Errorf("unknown opponent error = %v, want ErrPlayerNotFound", err)
	}
}
