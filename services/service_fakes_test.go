package services

import (
	"context"
	"sort"

	"github.com/foosleague/ladder-system/models"
	"github.com/foosleague/ladder-system/repositories"
)

// In-memory stand-ins for the repository interfaces. The transaction
// runner just invokes the function; the fakes ignore the executor.

type fakeTxRunner struct{}

func (fakeTxRunner) RunInTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error {
	return fn(nil)
}

type fakePlayerRepo struct {
	players           map[int]*models.Player
	nextID            int
	tournamentsCredit []int
}

func newFakePlayerRepo() *fakePlayerRepo {
	return &fakePlayerRepo{players: make(map[int]*models.Player), nextID: 1}
}

func (f *fakePlayerRepo) add(p models.Player) *models.Player {
	if p.ID == 0 {
		p.ID = f.nextID
	}
	if p.ID >= f.nextID {
		f.nextID = p.ID + 1
	}
	if p.Rating == 0 {
		p.Rating = models.DefaultRating
	}
	stored := p
	f.players[stored.ID] = &stored
	return &stored
}

func (f *fakePlayerRepo) Create(ctx context.Context, player *models.Player) error {
	for _, p := range f.players {
		if p.Email == player.Email {
			return repositories.ErrPlayerEmailConflict
		}
		if p.Username == player.Username {
			return repositories.ErrPlayerUsernameConflict
		}
	}
	player.ID = f.nextID
	player.Rating = models.DefaultRating
	f.nextID++
	stored := *player
	f.players[stored.ID] = &stored
	return nil
}

func (f *fakePlayerRepo) GetByID(ctx context.Context, id int) (*models.Player, error) {
	p, ok := f.players[id]
	if !ok {
		return nil, repositories.ErrPlayerNotFound
	}
	copy := *p
	return &copy, nil
}

func (f *fakePlayerRepo) GetByEmail(ctx context.Context, email string) (*models.Player, error) {
	for _, p := range f.players {
		if p.Email == email {
			copy := *p
			return &copy, nil
		}
	}
	return nil, repositories.ErrPlayerNotFound
}

// GetByIDs mirrors the SQL ordering: ascending id, not input order.
func (f *fakePlayerRepo) GetByIDs(ctx context.Context, ids []int) ([]*models.Player, error) {
	ids = append([]int{}, ids...)
	sort.Ints(ids)
	out := make([]*models.Player, 0, len(ids))
	for _, id := range ids {
		if p, ok := f.players[id]; ok {
			copy := *p
			out = append(out, &copy)
		}
	}
	return out, nil
}

func (f *fakePlayerRepo) List(ctx context.Context) ([]*models.Player, error) {
	ids := make([]int, 0, len(f.players))
	for id := range f.players {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return f.GetByIDs(ctx, ids)
}

func (f *fakePlayerRepo) UpdateLedger(ctx context.Context, exec repositories.SQLExecutor, player *models.Player) error {
	if _, ok := f.players[player.ID]; !ok {
		return repositories.ErrPlayerNotFound
	}
	stored := *player
	f.players[stored.ID] = &stored
	return nil
}

func (f *fakePlayerRepo) UpdateAvatarKey(ctx context.Context, id int, avatarKey *string) error {
	p, ok := f.players[id]
	if !ok {
		return repositories.ErrPlayerNotFound
	}
	p.AvatarKey = avatarKey
	return nil
}

func (f *fakePlayerRepo) IncrementTournamentsPlayed(ctx context.Context, exec repositories.SQLExecutor, playerIDs []int) error {
	for _, id := range playerIDs {
		if p, ok := f.players[id]; ok {
			p.TournamentsPlayed++
			f.tournamentsCredit = append(f.tournamentsCredit, id)
		}
	}
	return nil
}

type fakeMatchRepo struct {
	matches map[int]*models.Match
	nextID  int
}

func newFakeMatchRepo() *fakeMatchRepo {
	return &fakeMatchRepo{matches: make(map[int]*models.Match), nextID: 1}
}

func (f *fakeMatchRepo) sortedIDs() []int {
	ids := make([]int, 0, len(f.matches))
	for id := range f.matches {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

func (f *fakeMatchRepo) Create(ctx context.Context, exec repositories.SQLExecutor, match *models.Match) error {
	match.ID = f.nextID
	f.nextID++
	stored := *match
	f.matches[stored.ID] = &stored
	return nil
}

func (f *fakeMatchRepo) GetByID(ctx context.Context, id int) (*models.Match, error) {
	m, ok := f.matches[id]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	copy := *m
	return &copy, nil
}

func (f *fakeMatchRepo) List(ctx context.Context, limit int) ([]*models.Match, error) {
	ids := f.sortedIDs()
	out := make([]*models.Match, 0)
	for i := len(ids) - 1; i >= 0 && len(out) < limit; i-- {
		copy := *f.matches[ids[i]]
		out = append(out, &copy)
	}
	return out, nil
}

// ListByTournament mirrors the SQL ordering: newest (highest id) first.
func (f *fakeMatchRepo) ListByTournament(ctx context.Context, tournamentID int, completedOnly *bool) ([]*models.Match, error) {
	ids := f.sortedIDs()
	out := make([]*models.Match, 0)
	for i := len(ids) - 1; i >= 0; i-- {
		m := f.matches[ids[i]]
		if m.TournamentID == nil || *m.TournamentID != tournamentID {
			continue
		}
		if completedOnly != nil && m.Completed != *completedOnly {
			continue
		}
		copy := *m
		out = append(out, &copy)
	}
	return out, nil
}

func (f *fakeMatchRepo) ListRecentByPlayer(ctx context.Context, playerID int, tournamentID *int, limit int) ([]*models.Match, error) {
	ids := f.sortedIDs()
	out := make([]*models.Match, 0)
	for i := len(ids) - 1; i >= 0 && len(out) < limit; i-- {
		m := f.matches[ids[i]]
		if !m.Completed || (m.Player1ID != playerID && m.Player2ID != playerID) {
			continue
		}
		if tournamentID != nil && (m.TournamentID == nil || *m.TournamentID != *tournamentID) {
			continue
		}
		copy := *m
		out = append(out, &copy)
	}
	return out, nil
}

func (f *fakeMatchRepo) ListByPlayer(ctx context.Context, playerID int) ([]*models.Match, error) {
	out := make([]*models.Match, 0)
	for _, id := range f.sortedIDs() {
		m := f.matches[id]
		if m.Player1ID == playerID || m.Player2ID == playerID {
			copy := *m
			out = append(out, &copy)
		}
	}
	return out, nil
}

func (f *fakeMatchRepo) ListBetween(ctx context.Context, player1ID, player2ID int) ([]*models.Match, error) {
	ids := f.sortedIDs()
	out := make([]*models.Match, 0)
	for i := len(ids) - 1; i >= 0; i-- {
		m := f.matches[ids[i]]
		if (m.Player1ID == player1ID && m.Player2ID == player2ID) ||
			(m.Player1ID == player2ID && m.Player2ID == player1ID) {
			copy := *m
			out = append(out, &copy)
		}
	}
	return out, nil
}

func (f *fakeMatchRepo) Update(ctx context.Context, exec repositories.SQLExecutor, match *models.Match) error {
	if _, ok := f.matches[match.ID]; !ok {
		return repositories.ErrMatchNotFound
	}
	stored := *match
	f.matches[stored.ID] = &stored
	return nil
}

func (f *fakeMatchRepo) Delete(ctx context.Context, exec repositories.SQLExecutor, id int) error {
	if _, ok := f.matches[id]; !ok {
		return repositories.ErrMatchNotFound
	}
	delete(f.matches, id)
	return nil
}

func (f *fakeMatchRepo) BulkInsert(ctx context.Context, exec repositories.SQLExecutor, matches []*models.Match) error {
	for _, m := range matches {
		if err := f.Create(ctx, exec, m); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeMatchRepo) DeleteByTournamentAndPlayer(ctx context.Context, exec repositories.SQLExecutor, tournamentID, playerID int) (int, error) {
	deleted := 0
	for id, m := range f.matches {
		if m.TournamentID != nil && *m.TournamentID == tournamentID &&
			(m.Player1ID == playerID || m.Player2ID == playerID) {
			delete(f.matches, id)
			deleted++
		}
	}
	return deleted, nil
}

func (f *fakeMatchRepo) DeleteByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) error {
	for id, m := range f.matches {
		if m.TournamentID != nil && *m.TournamentID == tournamentID {
			delete(f.matches, id)
		}
	}
	return nil
}

type fakeTournamentRepo struct {
	tournaments map[int]*models.Tournament
	rosters     map[int][]int
	nextID      int
}

func newFakeTournamentRepo() *fakeTournamentRepo {
	return &fakeTournamentRepo{
		tournaments: make(map[int]*models.Tournament),
		rosters:     make(map[int][]int),
		nextID:      1,
	}
}

func (f *fakeTournamentRepo) Create(ctx context.Context, exec repositories.SQLExecutor, tournament *models.Tournament) error {
	tournament.ID = f.nextID
	f.nextID++
	stored := *tournament
	stored.PlayerIDs = nil
	f.tournaments[stored.ID] = &stored
	return nil
}

func (f *fakeTournamentRepo) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	t, ok := f.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	copy := *t
	copy.PlayerIDs = append([]int{}, f.rosters[id]...)
	return &copy, nil
}

func (f *fakeTournamentRepo) ListForPlayer(ctx context.Context, playerID int) ([]*models.Tournament, error) {
	out := make([]*models.Tournament, 0)
	for id, t := range f.tournaments {
		member := t.OwnerID == playerID
		for _, pid := range f.rosters[id] {
			if pid == playerID {
				member = true
			}
		}
		if member {
			copy, _ := f.GetByID(ctx, id)
			out = append(out, copy)
		}
	}
	return out, nil
}

func (f *fakeTournamentRepo) ListIDsForPlayer(ctx context.Context, playerID int) ([]int, error) {
	ids := make([]int, 0)
	for id, roster := range f.rosters {
		for _, pid := range roster {
			if pid == playerID {
				ids = append(ids, id)
			}
		}
	}
	sort.Ints(ids)
	return ids, nil
}

func (f *fakeTournamentRepo) Update(ctx context.Context, exec repositories.SQLExecutor, tournament *models.Tournament) error {
	stored, ok := f.tournaments[tournament.ID]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	updated := *tournament
	updated.MatchesCount = stored.MatchesCount
	updated.PlayerIDs = nil
	f.tournaments[updated.ID] = &updated
	return nil
}

func (f *fakeTournamentRepo) Delete(ctx context.Context, exec repositories.SQLExecutor, id int) error {
	if _, ok := f.tournaments[id]; !ok {
		return repositories.ErrTournamentNotFound
	}
	delete(f.tournaments, id)
	delete(f.rosters, id)
	return nil
}

func (f *fakeTournamentRepo) AddPlayer(ctx context.Context, exec repositories.SQLExecutor, tournamentID, playerID int) error {
	for _, pid := range f.rosters[tournamentID] {
		if pid == playerID {
			return repositories.ErrTournamentPlayerConflict
		}
	}
	f.rosters[tournamentID] = append(f.rosters[tournamentID], playerID)
	return nil
}

func (f *fakeTournamentRepo) RemovePlayer(ctx context.Context, exec repositories.SQLExecutor, tournamentID, playerID int) error {
	roster := f.rosters[tournamentID]
	for i, pid := range roster {
		if pid == playerID {
			f.rosters[tournamentID] = append(roster[:i:i], roster[i+1:]...)
			return nil
		}
	}
	return repositories.ErrPlayerNotFound
}

func (f *fakeTournamentRepo) ListRoster(ctx context.Context, tournamentID int) ([]int, error) {
	return append([]int{}, f.rosters[tournamentID]...), nil
}

func (f *fakeTournamentRepo) SetMatchesCount(ctx context.Context, exec repositories.SQLExecutor, tournamentID, count int) error {
	t, ok := f.tournaments[tournamentID]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.MatchesCount = count
	return nil
}

func (f *fakeTournamentRepo) AddToMatchesCount(ctx context.Context, exec repositories.SQLExecutor, tournamentID, delta int) error {
	t, ok := f.tournaments[tournamentID]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.MatchesCount += delta
	if t.MatchesCount < 0 {
		t.MatchesCount = 0
	}
	return nil
}

type fakeCache struct {
	invalidated []int
}

func (f *fakeCache) Invalidate(ctx context.Context, exec repositories.SQLExecutor, playerIDs ...int) error {
	f.invalidated = append(f.invalidated, playerIDs...)
	return nil
}

type broadcastEvent struct {
	room      string
	eventType string
}

type fakeBroadcaster struct {
	events []broadcastEvent
}

func (f *fakeBroadcaster) BroadcastToRoom(roomID string, eventType string, payload interface{}) {
	f.events = append(f.events, broadcastEvent{room: roomID, eventType: eventType})
}
