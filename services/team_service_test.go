package services

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/clubops/session-system/models"
	"github.com/clubops/session-system/repositories"
	"github.com/clubops/session-system/teams"
)

// --- фейковая транзакционная граница ---

type fakeTx struct {
	committed  bool
	rolledBack bool
}

func (t *fakeTx) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return nil, nil
}

func (t *fakeTx) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return nil, nil
}

func (t *fakeTx) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return nil
}

func (t *fakeTx) Commit() error {
	t.committed = true
	return nil
}

func (t *fakeTx) Rollback() error {
	t.rolledBack = true
	return nil
}

type fakeDB struct {
	txs []*fakeTx
}

func (f *fakeDB) BeginTx(ctx context.Context, opts *sql.TxOptions) (repositories.Tx, error) {
	tx := &fakeTx{}
	f.txs = append(f.txs, tx)
	return tx, nil
}

type fakeTeamRepo struct {
	byEvent        map[int][]*models.Team
	createBatchErr error
}

func newFakeTeamRepo() *fakeTeamRepo {
	return &fakeTeamRepo{byEvent: make(map[int][]*models.Team)}
}

func (f *fakeTeamRepo) ListByEvent(ctx context.Context, eventID int) ([]*models.Team, error) {
	return append([]*models.Team(nil), f.byEvent[eventID]...), nil
}

func (f *fakeTeamRepo) GetByEventAndIndex(ctx context.Context, eventID, teamIndex int) (*models.Team, error) {
	for _, team := range f.byEvent[eventID] {
		if team.TeamIndex == teamIndex {
			return team, nil
		}
	}
	return nil, repositories.ErrTeamNotFound
}

func (f *fakeTeamRepo) CreateBatch(ctx context.Context, exec repositories.SQLExecutor, generated []*models.Team) error {
	if f.createBatchErr != nil {
		return f.createBatchErr
	}
	for _, team := range generated {
		f.byEvent[team.EventID] = append(f.byEvent[team.EventID], team)
	}
	return nil
}

func (f *fakeTeamRepo) DeleteByEvent(ctx context.Context, exec repositories.SQLExecutor, eventID int) error {
	delete(f.byEvent, eventID)
	return nil
}

type fakeBroadcaster struct {
	eventIDs []int
}

func (f *fakeBroadcaster) BroadcastTeamsGenerated(eventID int, generated []*models.Team) {
	f.eventIDs = append(f.eventIDs, eventID)
}

// --- окружение сервиса команд ---

type teamEnv struct {
	db          *fakeDB
	teamRepo    *fakeTeamRepo
	playerRepo  *fakePlayerRepo
	rsvps       *fakeRsvpRepo
	events      *fakeEventRepo
	broadcaster *fakeBroadcaster
	service     TeamService
}

func newTeamEnv(t *testing.T, roster ...models.Player) (*teamEnv, *models.Event) {
	t.Helper()
	env := &teamEnv{
		db:          &fakeDB{},
		teamRepo:    newFakeTeamRepo(),
		playerRepo:  newFakePlayerRepo(roster...),
		rsvps:       &fakeRsvpRepo{},
		events:      &fakeEventRepo{},
		broadcaster: &fakeBroadcaster{},
	}
	env.service = NewTeamService(
		env.db, env.teamRepo, env.playerRepo, env.rsvps, env.events,
		env.broadcaster, discardLogger(),
	)

	event := &models.Event{Title: "Club Session (Thursday)", StartTime: eventStart}
	if err := env.events.Create(context.Background(), event); err != nil {
		t.Fatalf("failed to seed event: %v", err)
	}
	return env, event
}

func (env *teamEnv) sayYes(eventID int, playerIDs ...int) {
	for _, id := range playerIDs {
		env.rsvps.rsvps = append(env.rsvps.rsvps, models.Rsvp{
			EventID: eventID, PlayerID: id, Status: models.RsvpYes,
		})
	}
}

func seedRoster(n int) []models.Player {
	roster := make([]models.Player, n)
	for i := range roster {
		roster[i] = models.Player{ID: i + 1, Skill: 100 - i*3}
	}
	return roster
}

func TestGenerateTeamsReplacesPreviousGeneration(t *testing.T) {
	env, event := newTeamEnv(t, seedRoster(8)...)
	env.sayYes(event.ID, 1, 2, 3, 4, 5, 6, 7, 8)

	// Прежняя генерация, которую новая должна полностью вытеснить.
	env.teamRepo.byEvent[event.ID] = []*models.Team{
		{EventID: event.ID, TeamIndex: 1, Members: []models.Player{{ID: 99}}},
		{EventID: event.ID, TeamIndex: 2, Members: []models.Player{{ID: 98}}},
		{EventID: event.ID, TeamIndex: 3, Members: []models.Player{{ID: 97}}},
	}

	generated, err := env.service.GenerateTeams(context.Background(), GenerateTeamsInput{
		EventID:  event.ID,
		Strategy: "balanced",
		TeamSize: 4,
	})
	if err != nil {
		t.Fatalf("GenerateTeams returned error: %v", err)
	}
	if len(generated) != 2 {
		t.Fatalf("expected 2 teams for 8 players of size 4, got %d", len(generated))
	}

	// В хранилище осталась ровно одна генерация: старые строки замещены.
	stored, _ := env.teamRepo.ListByEvent(context.Background(), event.ID)
	if len(stored) != 2 {
		t.Fatalf("expected exactly one generation (2 teams) stored, got %d", len(stored))
	}
	seen := make(map[int]int)
	for _, team := range stored {
		if team.TeamIndex != 1 && team.TeamIndex != 2 {
			t.Errorf("stale team index %d survived regeneration", team.TeamIndex)
		}
		for _, member := range team.Members {
			seen[member.ID]++
		}
	}
	if len(seen) != 8 {
		t.Errorf("expected 8 distinct members, got %d", len(seen))
	}
	for id, count := range seen {
		if id > 8 || count != 1 {
			t.Errorf("player %d appears %d times in the new generation", id, count)
		}
	}

	if len(env.db.txs) != 1 || !env.db.txs[0].committed {
		t.Error("replacement must run inside a single committed transaction")
	}
	if len(env.broadcaster.eventIDs) != 1 || env.broadcaster.eventIDs[0] != event.ID {
		t.Errorf("expected one broadcast for event %d, got %v", event.ID, env.broadcaster.eventIDs)
	}
}

func TestGenerateTeamsStrategyErrorPersistsNothing(t *testing.T) {
	env, event := newTeamEnv(t, seedRoster(22)...)
	for id := 1; id <= 22; id++ {
		env.sayYes(event.ID, id)
	}

	prior := []*models.Team{
		{EventID: event.ID, TeamIndex: 1, Members: []models.Player{{ID: 1}}},
	}
	env.teamRepo.byEvent[event.ID] = append([]*models.Team(nil), prior...)

	// 22 игрока по 5 дают 5 команд — uneven-balanced требует ровно 4.
	_, err := env.service.GenerateTeams(context.Background(), GenerateTeamsInput{
		EventID:  event.ID,
		Strategy: "uneven-balanced",
		TeamSize: 5,
	})
	if !errors.Is(err, teams.ErrUnevenTeamCount) {
		t.Fatalf("expected ErrUnevenTeamCount, got %v", err)
	}

	stored, _ := env.teamRepo.ListByEvent(context.Background(), event.ID)
	if len(stored) != 1 || stored[0].TeamIndex != 1 {
		t.Errorf("prior generation must stay intact on strategy error, got %v", stored)
	}
	if len(env.db.txs) != 0 {
		t.Error("no transaction may be opened when the strategy rejects the roster")
	}
	if len(env.broadcaster.eventIDs) != 0 {
		t.Error("no broadcast may happen when nothing was persisted")
	}
}

func TestGenerateTeamsEmptyRosterLeavesTeamsUntouched(t *testing.T) {
	env, event := newTeamEnv(t)
	env.teamRepo.byEvent[event.ID] = []*models.Team{
		{EventID: event.ID, TeamIndex: 1},
	}

	generated, err := env.service.GenerateTeams(context.Background(), GenerateTeamsInput{
		EventID: event.ID,
	})
	if err != nil {
		t.Fatalf("GenerateTeams returned error: %v", err)
	}
	if len(generated) != 0 {
		t.Fatalf("expected empty result for empty roster, got %d teams", len(generated))
	}

	stored, _ := env.teamRepo.ListByEvent(context.Background(), event.ID)
	if len(stored) != 1 {
		t.Errorf("existing teams must not be touched for an empty roster, got %d", len(stored))
	}
	if len(env.db.txs) != 0 {
		t.Error("empty roster must not open a transaction")
	}
}

func TestGenerateTeamsRollsBackOnPersistFailure(t *testing.T) {
	env, event := newTeamEnv(t, seedRoster(8)...)
	env.sayYes(event.ID, 1, 2, 3, 4, 5, 6, 7, 8)
	env.teamRepo.createBatchErr = errors.New("disk full")

	_, err := env.service.GenerateTeams(context.Background(), GenerateTeamsInput{
		EventID:  event.ID,
		Strategy: "balanced",
		TeamSize: 4,
	})
	if err == nil {
		t.Fatal("expected persistence error")
	}

	if len(env.db.txs) != 1 {
		t.Fatalf("expected one transaction, got %d", len(env.db.txs))
	}
	if env.db.txs[0].committed || !env.db.txs[0].rolledBack {
		t.Error("failed insert must roll the transaction back")
	}
	if len(env.broadcaster.eventIDs) != 0 {
		t.Error("no broadcast may happen for a rolled back generation")
	}
}

func TestGenerateTeamsUnknownEvent(t *testing.T) {
	env, _ := newTeamEnv(t)

	_, err := env.service.GenerateTeams(context.Background(), GenerateTeamsInput{EventID: 42})
	if !errors.Is(err, ErrEventNotFound) {
		t.Errorf("expected ErrEventNotFound, got %v", err)
	}
}
