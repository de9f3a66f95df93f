package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/foosleague/ladder-system/fixtures"
	"github.com/foosleague/ladder-system/ledger"
	"github.com/foosleague/ladder-system/models"
	"github.com/foosleague/ladder-system/rating"
	"github.com/foosleague/ladder-system/repositories"
)

// CacheInvalidator marks players' precomputed stats stale. Writes run on
// the executor so invalidation commits with the operation that caused it.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, exec repositories.SQLExecutor, playerIDs ...int) error
}

// Broadcaster pushes a typed event to a room's live subscribers.
type Broadcaster interface {
	BroadcastToRoom(roomID string, eventType string, payload interface{})
}

type CreateMatchInput struct {
	TournamentID *int
	Player1ID    int
	Player2ID    int
	Player1Goals int
	Player2Goals int
	Team1        string
	Team2        string
	HalfLength   int
	Date         time.Time
}

// UpdateMatchInput carries the editable match fields. Nil pointers mean
// "keep the stored value".
type UpdateMatchInput struct {
	Player1Goals *int
	Player2Goals *int
	Team1        *string
	Team2        *string
	HalfLength   *int
	Completed    *bool
}

type MatchService interface {
	Create(ctx context.Context, input *CreateMatchInput) (*models.Match, error)
	GetByID(ctx context.Context, id int) (*models.Match, error)
	List(ctx context.Context, limit int) ([]*models.Match, error)
	Update(ctx context.Context, id int, input *UpdateMatchInput) (*models.Match, error)
	Delete(ctx context.Context, id int) error
}

type matchService struct {
	txRunner       repositories.TxRunner
	matchRepo      repositories.MatchRepository
	playerRepo     repositories.PlayerRepository
	tournamentRepo repositories.TournamentRepository
	cache          CacheInvalidator
	broadcaster    Broadcaster
	logger         *slog.Logger
}

func NewMatchService(
	txRunner repositories.TxRunner,
	matchRepo repositories.MatchRepository,
	playerRepo repositories.PlayerRepository,
	tournamentRepo repositories.TournamentRepository,
	cache CacheInvalidator,
	broadcaster Broadcaster,
	logger *slog.Logger,
) MatchService {
	return &matchService{
		txRunner:       txRunner,
		matchRepo:      matchRepo,
		playerRepo:     playerRepo,
		tournamentRepo: tournamentRepo,
		cache:          cache,
		broadcaster:    broadcaster,
		logger:         logger,
	}
}

// Create records a finished match: it persists the row, adjusts both
// ratings from the current stored values and applies the full stat
// delta to each player, all in one transaction.
func (s *matchService) Create(ctx context.Context, input *CreateMatchInput) (*models.Match, error) {
	if input.Player1Goals < 0 || input.Player2Goals < 0 {
		return nil, ErrNegativeGoals
	}
	if input.Player1ID == input.Player2ID {
		return nil, ErrSamePlayer
	}

	player1, player2, err := s.loadPlayers(ctx, input.Player1ID, input.Player2ID)
	if err != nil {
		return nil, err
	}
	if input.TournamentID != nil {
		tournament, err := s.loadTournament(ctx, *input.TournamentID)
		if err != nil {
			return nil, err
		}
		if tournament.Completed {
			return nil, ErrTournamentCompleted
		}
	}

	match := &models.Match{
		TournamentID: input.TournamentID,
		Player1ID:    input.Player1ID,
		Player2ID:    input.Player2ID,
		Player1Goals: input.Player1Goals,
		Player2Goals: input.Player2Goals,
		Team1:        input.Team1,
		Team2:        input.Team2,
		HalfLength:   input.HalfLength,
		Completed:    true,
		Date:         input.Date,
	}
	if match.HalfLength == 0 {
		match.HalfLength = models.DefaultHalfLength
	}
	if match.Date.IsZero() {
		match.Date = time.Now()
	}

	player1.Rating, player2.Rating = rating.Adjust(
		player1.Rating, player2.Rating, match.Player1Goals, match.Player2Goals)

	updated1 := s.applyDelta(*player1,
		ledger.MatchDelta(match.Player1Goals, match.Player2Goals, match.Team1))
	updated2 := s.applyDelta(*player2,
		ledger.MatchDelta(match.Player2Goals, match.Player1Goals, match.Team2))

	err = s.txRunner.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.matchRepo.Create(ctx, exec, match); err != nil {
			if errors.Is(err, repositories.ErrMatchPlayerInvalid) {
				return ErrPlayerNotFound
			}
			return err
		}
		if err := s.playerRepo.UpdateLedger(ctx, exec, &updated1); err != nil {
			return err
		}
		if err := s.playerRepo.UpdateLedger(ctx, exec, &updated2); err != nil {
			return err
		}
		if match.TournamentID != nil {
			if err := s.tournamentRepo.AddToMatchesCount(ctx, exec, *match.TournamentID, 1); err != nil {
				return err
			}
		}
		return s.cache.Invalidate(ctx, exec, match.Player1ID, match.Player2ID)
	})
	if err != nil {
		return nil, err
	}

	match.Player1Name = updated1.DisplayName()
	match.Player2Name = updated2.DisplayName()
	s.broadcast(fixtures.EventMatchRecorded, match)
	return match, nil
}

// Update edits a recorded match. Rating changes use the stored goals
// reversed against the current ratings, then the new goals on the
// reverted pair; this sequential revert-then-reapply is the contract,
// not a recomputation from history. Stat counters move by the
// difference between the new and old results, leaving matches played
// untouched.
func (s *matchService) Update(ctx context.Context, id int, input *UpdateMatchInput) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapMatchError(err)
	}

	next := *match
	applyMatchInput(&next, input)
	if next.Player1Goals < 0 || next.Player2Goals < 0 {
		return nil, ErrNegativeGoals
	}
	if next == *match {
		return s.decorate(ctx, match)
	}

	if match.TournamentID != nil {
		tournament, err := s.loadTournament(ctx, *match.TournamentID)
		if err != nil {
			return nil, err
		}
		if tournament.Completed {
			return nil, ErrTournamentCompleted
		}
	}

	player1, player2, err := s.loadPlayers(ctx, match.Player1ID, match.Player2ID)
	if err != nil {
		return nil, err
	}

	updated1, updated2 := *player1, *player2
	ledgerDirty := true
	switch {
	case match.Completed && next.Completed:
		revert1, revert2 := rating.Adjust(
			player1.Rating, player2.Rating, match.Player2Goals, match.Player1Goals)
		updated1.Rating, updated2.Rating = rating.Adjust(
			revert1, revert2, next.Player1Goals, next.Player2Goals)
		updated1 = s.applyDelta(updated1, ledger.EditDelta(
			match.Player1Goals, match.Player2Goals, next.Player1Goals, next.Player2Goals))
		updated2 = s.applyDelta(updated2, ledger.EditDelta(
			match.Player2Goals, match.Player1Goals, next.Player2Goals, next.Player1Goals))
	case !match.Completed && next.Completed:
		// First result on a scheduled fixture counts as a fresh record.
		updated1.Rating, updated2.Rating = rating.Adjust(
			player1.Rating, player2.Rating, next.Player1Goals, next.Player2Goals)
		updated1 = s.applyDelta(updated1,
			ledger.MatchDelta(next.Player1Goals, next.Player2Goals, next.Team1))
		updated2 = s.applyDelta(updated2,
			ledger.MatchDelta(next.Player2Goals, next.Player1Goals, next.Team2))
	case match.Completed && !next.Completed:
		updated1.Rating, updated2.Rating = rating.Adjust(
			player1.Rating, player2.Rating, match.Player2Goals, match.Player1Goals)
		updated1 = s.applyDelta(updated1,
			ledger.MatchDelta(match.Player1Goals, match.Player2Goals, "").Reverse())
		updated2 = s.applyDelta(updated2,
			ledger.MatchDelta(match.Player2Goals, match.Player1Goals, "").Reverse())
	default:
		// Editing a fixture that has never counted touches no ledgers.
		ledgerDirty = false
	}

	err = s.txRunner.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.matchRepo.Update(ctx, exec, &next); err != nil {
			return s.mapMatchError(err)
		}
		if !ledgerDirty {
			return nil
		}
		if err := s.playerRepo.UpdateLedger(ctx, exec, &updated1); err != nil {
			return err
		}
		if err := s.playerRepo.UpdateLedger(ctx, exec, &updated2); err != nil {
			return err
		}
		return s.cache.Invalidate(ctx, exec, next.Player1ID, next.Player2ID)
	})
	if err != nil {
		return nil, err
	}

	next.Player1Name = updated1.DisplayName()
	next.Player2Name = updated2.DisplayName()
	s.broadcast(fixtures.EventMatchUpdated, &next)
	return &next, nil
}

// Delete reverses the match's full statistic contribution and reverts
// both ratings with the stored goals swapped against the current
// ratings, then removes the row and decrements the tournament's
// fixture count.
func (s *matchService) Delete(ctx context.Context, id int) error {
	match, err := s.matchRepo.GetByID(ctx, id)
	if err != nil {
		return s.mapMatchError(err)
	}

	var updated1, updated2 models.Player
	if match.Completed {
		player1, player2, err := s.loadPlayers(ctx, match.Player1ID, match.Player2ID)
		if err != nil {
			return err
		}
		updated1, updated2 = *player1, *player2
		updated1.Rating, updated2.Rating = rating.Adjust(
			player1.Rating, player2.Rating, match.Player2Goals, match.Player1Goals)
		updated1 = s.applyDelta(updated1,
			ledger.MatchDelta(match.Player1Goals, match.Player2Goals, "").Reverse())
		updated2 = s.applyDelta(updated2,
			ledger.MatchDelta(match.Player2Goals, match.Player1Goals, "").Reverse())
	}

	err = s.txRunner.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.matchRepo.Delete(ctx, exec, id); err != nil {
			return s.mapMatchError(err)
		}
		if match.TournamentID != nil {
			if err := s.tournamentRepo.AddToMatchesCount(ctx, exec, *match.TournamentID, -1); err != nil {
				return err
			}
		}
		if !match.Completed {
			return nil
		}
		if err := s.playerRepo.UpdateLedger(ctx, exec, &updated1); err != nil {
			return err
		}
		if err := s.playerRepo.UpdateLedger(ctx, exec, &updated2); err != nil {
			return err
		}
		return s.cache.Invalidate(ctx, exec, match.Player1ID, match.Player2ID)
	})
	if err != nil {
		return err
	}

	s.broadcast(fixtures.EventMatchDeleted, match)
	return nil
}

func (s *matchService) GetByID(ctx context.Context, id int) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapMatchError(err)
	}
	return s.decorate(ctx, match)
}

func (s *matchService) List(ctx context.Context, limit int) ([]*models.Match, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	matches, err := s.matchRepo.List(ctx, limit)
	if err != nil {
		return nil, err
	}
	if err := s.decorateAll(ctx, matches); err != nil {
		return nil, err
	}
	return matches, nil
}

// applyDelta funnels every ledger write through one place so clamped
// counters always get logged.
func (s *matchService) applyDelta(player models.Player, d ledger.Delta) models.Player {
	updated, drift := ledger.Apply(player, d)
	if drift.Occurred() {
		s.logger.Warn("ledger counters clamped at zero",
			"player_id", player.ID,
			"counters", drift.Clamped)
	}
	return updated
}

func (s *matchService) loadPlayers(ctx context.Context, id1, id2 int) (*models.Player, *models.Player, error) {
	player1, err := s.playerRepo.GetByID(ctx, id1)
	if err != nil {
		return nil, nil, s.mapPlayerError(err)
	}
	player2, err := s.playerRepo.GetByID(ctx, id2)
	if err != nil {
		return nil, nil, s.mapPlayerError(err)
	}
	return player1, player2, nil
}

func (s *matchService) loadTournament(ctx context.Context, id int) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return tournament, nil
}

// decorate fills the display names on a single match.
func (s *matchService) decorate(ctx context.Context, match *models.Match) (*models.Match, error) {
	if err := s.decorateAll(ctx, []*models.Match{match}); err != nil {
		return nil, err
	}
	return match, nil
}

// decorateAll batch-resolves player display names for the given matches.
func (s *matchService) decorateAll(ctx context.Context, matches []*models.Match) error {
	if len(matches) == 0 {
		return nil
	}
	seen := make(map[int]bool)
	ids := make([]int, 0, len(matches)*2)
	for _, m := range matches {
		for _, id := range []int{m.Player1ID, m.Player2ID} {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	players, err := s.playerRepo.GetByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("failed to resolve match player names: %w", err)
	}
	names := make(map[int]string, len(players))
	for _, p := range players {
		names[p.ID] = p.DisplayName()
	}
	for _, m := range matches {
		m.Player1Name = names[m.Player1ID]
		m.Player2Name = names[m.Player2ID]
	}
	return nil
}

func (s *matchService) broadcast(eventType string, match *models.Match) {
	if s.broadcaster == nil || match.TournamentID == nil {
		return
	}
	s.broadcaster.BroadcastToRoom(fixtures.TournamentRoom(*match.TournamentID), eventType, match)
}

func (s *matchService) mapMatchError(err error) error {
	if errors.Is(err, repositories.ErrMatchNotFound) {
		return ErrMatchNotFound
	}
	return err
}

func (s *matchService) mapPlayerError(err error) error {
	if errors.Is(err, repositories.ErrPlayerNotFound) {
		return ErrPlayerNotFound
	}
	return err
}

func applyMatchInput(match *models.Match, input *UpdateMatchInput) {
	if input.Player1Goals != nil {
		match.Player1Goals = *input.Player1Goals
	}
	if input.Player2Goals != nil {
		match.Player2Goals = *input.Player2Goals
	}
	if input.Team1 != nil {
		match.Team1 = *input.Team1
	}
	if input.Team2 != nil {
		match.Team2 = *input.Team2
	}
	if input.HalfLength != nil {
		match.HalfLength = *input.HalfLength
	}
	if input.Completed != nil {
		match.Completed = *input.Completed
	}
}
