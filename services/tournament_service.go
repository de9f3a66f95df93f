package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/foosleague/ladder-system/fixtures"
	"github.com/foosleague/ladder-system/ledger"
	"github.com/foosleague/ladder-system/models"
	"github.com/foosleague/ladder-system/repositories"
)

type CreateTournamentInput struct {
	Name             string
	Description      *string
	OwnerID          int
	StartDate        time.Time
	RoundsPerMatchup int
	PlayerIDs        []int
}

type UpdateTournamentInput struct {
	Name             *string
	Description      *string
	StartDate        *time.Time
	RoundsPerMatchup *int
}

type TournamentService interface {
	Create(ctx context.Context, input *CreateTournamentInput) (*models.Tournament, error)
	GetByID(ctx context.Context, id int) (*models.Tournament, error)
	ListForPlayer(ctx context.Context, playerID int) ([]*models.Tournament, error)
	Update(ctx context.Context, id, requesterID int, input *UpdateTournamentInput) (*models.Tournament, error)
	Delete(ctx context.Context, id, requesterID int) error
	AddPlayer(ctx context.Context, tournamentID, playerID int) (*models.Tournament, error)
	RemovePlayer(ctx context.Context, tournamentID, playerID int) (*models.Tournament, error)
	End(ctx context.Context, id, requesterID int) (*models.Tournament, error)
	Standings(ctx context.Context, id int) ([]models.StandingsRow, error)
	Matches(ctx context.Context, id int) ([]*models.Match, error)
}

type tournamentService struct {
	txRunner       repositories.TxRunner
	tournamentRepo repositories.TournamentRepository
	matchRepo      repositories.MatchRepository
	playerRepo     repositories.PlayerRepository
	cache          CacheInvalidator
	broadcaster    Broadcaster
	logger         *slog.Logger
}

func NewTournamentService(
	txRunner repositories.TxRunner,
	tournamentRepo repositories.TournamentRepository,
	matchRepo repositories.MatchRepository,
	playerRepo repositories.PlayerRepository,
	cache CacheInvalidator,
	broadcaster Broadcaster,
	logger *slog.Logger,
) TournamentService {
	return &tournamentService{
		txRunner:       txRunner,
		tournamentRepo: tournamentRepo,
		matchRepo:      matchRepo,
		playerRepo:     playerRepo,
		cache:          cache,
		broadcaster:    broadcaster,
		logger:         logger,
	}
}

// Create persists the tournament, registers the initial roster in
// order, and bulk-inserts the full fixture schedule.
func (s *tournamentService) Create(ctx context.Context, input *CreateTournamentInput) (*models.Tournament, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, ErrEmptyName
	}
	if input.RoundsPerMatchup < 1 {
		return nil, ErrInvalidRounds
	}

	roster := dedupeIDs(input.PlayerIDs)
	if len(roster) > 0 {
		players, err := s.playerRepo.GetByIDs(ctx, roster)
		if err != nil {
			return nil, err
		}
		if len(players) != len(roster) {
			return nil, ErrPlayerNotFound
		}
	}

	tournament := &models.Tournament{
		Name:             strings.TrimSpace(input.Name),
		Description:      input.Description,
		OwnerID:          input.OwnerID,
		StartDate:        input.StartDate,
		RoundsPerMatchup: input.RoundsPerMatchup,
		FormatVersion:    models.FormatVersionRoundRobin,
		PlayerIDs:        roster,
	}
	if tournament.StartDate.IsZero() {
		tournament.StartDate = time.Now()
	}

	schedule := fixtures.GenerateFull(roster, input.RoundsPerMatchup)
	tournament.MatchesCount = len(schedule)

	err := s.txRunner.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.tournamentRepo.Create(ctx, exec, tournament); err != nil {
			return err
		}
		for _, playerID := range roster {
			if err := s.tournamentRepo.AddPlayer(ctx, exec, tournament.ID, playerID); err != nil {
				return err
			}
		}
		return s.matchRepo.BulkInsert(ctx, exec,
			s.fixturesToMatches(tournament, schedule))
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("tournament created",
		"tournament_id", tournament.ID,
		"players", len(roster),
		"fixtures", len(schedule))
	return tournament, nil
}

func (s *tournamentService) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	return s.load(ctx, id)
}

func (s *tournamentService) ListForPlayer(ctx context.Context, playerID int) ([]*models.Tournament, error) {
	return s.tournamentRepo.ListForPlayer(ctx, playerID)
}

// Update renames or reschedules a tournament. Raising roundsPerMatchup
// tops up the schedule through the missing-fixture repair instead of
// regenerating; existing fixtures are never rewritten.
func (s *tournamentService) Update(ctx context.Context, id, requesterID int, input *UpdateTournamentInput) (*models.Tournament, error) {
	tournament, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if tournament.OwnerID != requesterID {
		return nil, ErrNotOwner
	}
	if tournament.Completed {
		return nil, ErrTournamentCompleted
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, ErrEmptyName
		}
		tournament.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		tournament.Description = input.Description
	}
	if input.StartDate != nil {
		tournament.StartDate = *input.StartDate
	}

	var appended []fixtures.Fixture
	if input.RoundsPerMatchup != nil && *input.RoundsPerMatchup != tournament.RoundsPerMatchup {
		if *input.RoundsPerMatchup < 1 {
			return nil, ErrInvalidRounds
		}
		tournament.RoundsPerMatchup = *input.RoundsPerMatchup
		existing, err := s.existingFixtures(ctx, id)
		if err != nil {
			return nil, err
		}
		appended = fixtures.GenerateMissing(existing, tournament.PlayerIDs, tournament.RoundsPerMatchup)
	}

	err = s.txRunner.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.tournamentRepo.Update(ctx, exec, tournament); err != nil {
			return s.mapTournamentError(err)
		}
		if len(appended) == 0 {
			return nil
		}
		if err := s.matchRepo.BulkInsert(ctx, exec, s.fixturesToMatches(tournament, appended)); err != nil {
			return err
		}
		return s.tournamentRepo.AddToMatchesCount(ctx, exec, id, len(appended))
	})
	if err != nil {
		return nil, err
	}
	tournament.MatchesCount += len(appended)

	if len(appended) > 0 {
		s.broadcaster.BroadcastToRoom(fixtures.TournamentRoom(id),
			fixtures.EventFixturesAppended, map[string]int{"count": len(appended)})
	}
	return tournament, nil
}

func (s *tournamentService) Delete(ctx context.Context, id, requesterID int) error {
	tournament, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if tournament.OwnerID != requesterID {
		return ErrNotOwner
	}

	return s.txRunner.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.matchRepo.DeleteByTournament(ctx, exec, id); err != nil {
			return err
		}
		if err := s.tournamentRepo.Delete(ctx, exec, id); err != nil {
			return s.mapTournamentError(err)
		}
		return s.cache.Invalidate(ctx, exec, tournament.PlayerIDs...)
	})
}

// AddPlayer appends the player to the roster and tops up the schedule
// with every fixture the grown roster is missing.
func (s *tournamentService) AddPlayer(ctx context.Context, tournamentID, playerID int) (*models.Tournament, error) {
	tournament, err := s.load(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if tournament.Completed {
		return nil, ErrTournamentCompleted
	}
	if containsID(tournament.PlayerIDs, playerID) {
		return nil, ErrPlayerInRoster
	}
	if _, err := s.playerRepo.GetByID(ctx, playerID); err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, err
	}

	existing, err := s.existingFixtures(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	roster := append(append([]int{}, tournament.PlayerIDs...), playerID)
	missing := fixtures.GenerateMissing(existing, roster, tournament.RoundsPerMatchup)

	err = s.txRunner.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.tournamentRepo.AddPlayer(ctx, exec, tournamentID, playerID); err != nil {
			if errors.Is(err, repositories.ErrTournamentPlayerConflict) {
				return ErrPlayerInRoster
			}
			return err
		}
		if len(missing) == 0 {
			return nil
		}
		if err := s.matchRepo.BulkInsert(ctx, exec, s.fixturesToMatches(tournament, missing)); err != nil {
			return err
		}
		return s.tournamentRepo.AddToMatchesCount(ctx, exec, tournamentID, len(missing))
	})
	if err != nil {
		return nil, err
	}

	tournament.PlayerIDs = roster
	tournament.MatchesCount += len(missing)
	s.broadcaster.BroadcastToRoom(fixtures.TournamentRoom(tournamentID),
		fixtures.EventRosterChanged, tournament)
	return tournament, nil
}

// RemovePlayer drops the player and deletes every fixture involving
// them, completed ones included. Completed results keep their ledger
// effect; callers wanting a full reversal must delete those matches
// through the match lifecycle first.
func (s *tournamentService) RemovePlayer(ctx context.Context, tournamentID, playerID int) (*models.Tournament, error) {
	tournament, err := s.load(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if tournament.Completed {
		return nil, ErrTournamentCompleted
	}
	if !containsID(tournament.PlayerIDs, playerID) {
		return nil, ErrPlayerNotInRoster
	}

	existing, err := s.existingFixtures(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	roster := removeID(tournament.PlayerIDs, playerID)
	// GenerateMissing ignores identities outside the reduced roster, so
	// the pre-deletion fixture list is a safe baseline.
	missing := fixtures.GenerateMissing(existing, roster, tournament.RoundsPerMatchup)

	// Deleting the player's fixtures also erases results their opponents
	// appear in, so those caches go stale too.
	stale := []int{playerID}
	for _, fx := range fixtures.Involving(existing, playerID) {
		opponent := fx.Player1ID
		if opponent == playerID {
			opponent = fx.Player2ID
		}
		if !containsID(stale, opponent) {
			stale = append(stale, opponent)
		}
	}

	var total int
	err = s.txRunner.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		deleted, err := s.matchRepo.DeleteByTournamentAndPlayer(ctx, exec, tournamentID, playerID)
		if err != nil {
			return err
		}
		if err := s.tournamentRepo.RemovePlayer(ctx, exec, tournamentID, playerID); err != nil {
			if errors.Is(err, repositories.ErrPlayerNotFound) {
				return ErrPlayerNotInRoster
			}
			return err
		}
		if len(missing) > 0 {
			if err := s.matchRepo.BulkInsert(ctx, exec, s.fixturesToMatches(tournament, missing)); err != nil {
				return err
			}
		}
		total = len(existing) - deleted + len(missing)
		if err := s.tournamentRepo.SetMatchesCount(ctx, exec, tournamentID, total); err != nil {
			return err
		}
		return s.cache.Invalidate(ctx, exec, stale...)
	})
	if err != nil {
		return nil, err
	}

	tournament.PlayerIDs = roster
	tournament.MatchesCount = total
	s.broadcaster.BroadcastToRoom(fixtures.TournamentRoom(tournamentID),
		fixtures.EventRosterChanged, tournament)
	return tournament, nil
}

// End marks the tournament completed and credits a played tournament to
// every roster member. Completion is terminal.
func (s *tournamentService) End(ctx context.Context, id, requesterID int) (*models.Tournament, error) {
	tournament, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if tournament.OwnerID != requesterID {
		return nil, ErrNotOwner
	}
	if tournament.Completed {
		return nil, ErrTournamentCompleted
	}

	now := time.Now()
	tournament.Completed = true
	tournament.EndDate = &now

	err = s.txRunner.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.tournamentRepo.Update(ctx, exec, tournament); err != nil {
			return s.mapTournamentError(err)
		}
		if err := s.playerRepo.IncrementTournamentsPlayed(ctx, exec, tournament.PlayerIDs); err != nil {
			return err
		}
		return s.cache.Invalidate(ctx, exec, tournament.PlayerIDs...)
	})
	if err != nil {
		return nil, err
	}

	s.broadcaster.BroadcastToRoom(fixtures.TournamentRoom(id),
		fixtures.EventTournamentEnded, tournament)
	return tournament, nil
}

// Standings folds the tournament's matches into the ranking table.
// Legacy tournaments predate per-match completion, so every match
// counts; current ones count completed matches only.
func (s *tournamentService) Standings(ctx context.Context, id int) ([]models.StandingsRow, error) {
	tournament, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	var completedOnly *bool
	if tournament.FormatVersion != models.FormatVersionLegacy {
		t := true
		completedOnly = &t
	}
	matches, err := s.matchRepo.ListByTournament(ctx, id, completedOnly)
	if err != nil {
		return nil, err
	}
	roster, err := s.rosterPlayers(ctx, tournament)
	if err != nil {
		return nil, err
	}

	rows := ledger.Compute(roster, matches)
	for i := range rows {
		form := matches
		if len(matches) == 0 {
			// Nothing countable yet; show each player's recent
			// results from across the whole ladder instead.
			form, err = s.matchRepo.ListRecentByPlayer(ctx, rows[i].PlayerID, nil, ledger.FormLength)
			if err != nil {
				return nil, err
			}
		}
		rows[i].RecentForm = ledger.RecentForm(rows[i].PlayerID, form)
	}
	return rows, nil
}

// rosterPlayers loads the roster and restores its stored order, which
// the id-ordered batch fetch does not preserve. Full ties in the
// standings sort keep this order.
func (s *tournamentService) rosterPlayers(ctx context.Context, tournament *models.Tournament) ([]*models.Player, error) {
	players, err := s.playerRepo.GetByIDs(ctx, tournament.PlayerIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[int]*models.Player, len(players))
	for _, p := range players {
		byID[p.ID] = p
	}
	ordered := make([]*models.Player, 0, len(players))
	for _, playerID := range tournament.PlayerIDs {
		if p, ok := byID[playerID]; ok {
			ordered = append(ordered, p)
		}
	}
	return ordered, nil
}

func (s *tournamentService) Matches(ctx context.Context, id int) ([]*models.Match, error) {
	if _, err := s.load(ctx, id); err != nil {
		return nil, err
	}
	return s.matchRepo.ListByTournament(ctx, id, nil)
}

func (s *tournamentService) load(ctx context.Context, id int) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapTournamentError(err)
	}
	return tournament, nil
}

func (s *tournamentService) mapTournamentError(err error) error {
	if errors.Is(err, repositories.ErrTournamentNotFound) {
		return ErrTournamentNotFound
	}
	return err
}

// existingFixtures projects the tournament's stored matches onto their
// scheduling identities.
func (s *tournamentService) existingFixtures(ctx context.Context, tournamentID int) ([]fixtures.Fixture, error) {
	matches, err := s.matchRepo.ListByTournament(ctx, tournamentID, nil)
	if err != nil {
		return nil, err
	}
	existing := make([]fixtures.Fixture, 0, len(matches))
	for _, m := range matches {
		existing = append(existing, fixtures.Fixture{
			Player1ID: m.Player1ID,
			Player2ID: m.Player2ID,
		})
	}
	return existing, nil
}

func (s *tournamentService) fixturesToMatches(tournament *models.Tournament, schedule []fixtures.Fixture) []*models.Match {
	tournamentID := tournament.ID
	matches := make([]*models.Match, 0, len(schedule))
	for _, f := range schedule {
		matches = append(matches, &models.Match{
			TournamentID: &tournamentID,
			Player1ID:    f.Player1ID,
			Player2ID:    f.Player2ID,
			HalfLength:   models.DefaultHalfLength,
			Completed:    false,
			Date:         tournament.StartDate,
		})
	}
	return matches
}

func dedupeIDs(ids []int) []int {
	seen := make(map[int]bool, len(ids))
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func containsID(ids []int, id int) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func removeID(ids []int, id int) []int {
	out := make([]int, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
