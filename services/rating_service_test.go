package services

import (
	"context"
	"errors"
	"testing"

	"github.com/clubops/session-system/models"
	"github.com/clubops/session-system/rating"
)

type ratingEnv struct {
	db         *fakeDB
	teamRepo   *fakeTeamRepo
	playerRepo *fakePlayerRepo
	events     *fakeEventRepo
	service    RatingService
}

func newRatingEnv(t *testing.T, roster ...models.Player) (*ratingEnv, *models.Event) {
	t.Helper()
	env := &ratingEnv{
		db:         &fakeDB{},
		teamRepo:   newFakeTeamRepo(),
		playerRepo: newFakePlayerRepo(roster...),
		events:     &fakeEventRepo{},
	}
	env.service = NewRatingService(
		env.db, env.teamRepo, env.playerRepo, env.events,
		rating.DefaultKFactor, nil, discardLogger(),
	)

	event := &models.Event{Title: "Club Session (Thursday)", StartTime: eventStart}
	if err := env.events.Create(context.Background(), event); err != nil {
		t.Fatalf("failed to seed event: %v", err)
	}
	return env, event
}

func (env *ratingEnv) addTeam(eventID, teamIndex int, memberIDs ...int) {
	team := &models.Team{EventID: eventID, TeamIndex: teamIndex}
	for _, id := range memberIDs {
		team.Members = append(team.Members, env.playerRepo.players[id])
	}
	env.teamRepo.byEvent[eventID] = append(env.teamRepo.byEvent[eventID], team)
}

func (env *ratingEnv) skill(t *testing.T, playerID int) int {
	t.Helper()
	player, ok := env.playerRepo.players[playerID]
	if !ok {
		t.Fatalf("player %d not found", playerID)
	}
	return player.Skill
}

func TestApplyMatchResultsZeroSumRound(t *testing.T) {
	env, event := newRatingEnv(t,
		models.Player{ID: 1, Skill: 60},
		models.Player{ID: 2, Skill: 60},
		models.Player{ID: 3, Skill: 40},
		models.Player{ID: 4, Skill: 40},
	)
	env.addTeam(event.ID, 1, 1, 2)
	env.addTeam(event.ID, 2, 3, 4)

	// Средние 60 против 40: ожидание сильнейшей стороны ≈ 0.76, командная
	// дельта при K=24 ≈ ±5.8, на игрока ±2.9 → ±3 после округления.
	updated, err := env.service.ApplyMatchResults(context.Background(), event.ID, []models.MatchResult{
		{TeamA: 1, TeamB: 2, Winner: 1},
	}, 24)
	if err != nil {
		t.Fatalf("ApplyMatchResults returned error: %v", err)
	}
	if updated != 4 {
		t.Fatalf("expected 4 players updated, got %d", updated)
	}

	for _, id := range []int{1, 2} {
		if got := env.skill(t, id); got != 63 {
			t.Errorf("winner %d: expected skill 63, got %d", id, got)
		}
	}
	for _, id := range []int{3, 4} {
		if got := env.skill(t, id); got != 37 {
			t.Errorf("loser %d: expected skill 37, got %d", id, got)
		}
	}
	if len(env.db.txs) != 1 || !env.db.txs[0].committed {
		t.Error("rating write must run inside a single committed transaction")
	}
}

func TestApplyMatchResultsSkipsUnknownTeamIndex(t *testing.T) {
	env, event := newRatingEnv(t,
		models.Player{ID: 1, Skill: 60},
		models.Player{ID: 2, Skill: 40},
	)
	env.addTeam(event.ID, 1, 1)
	env.addTeam(event.ID, 2, 2)

	// Первый матч ссылается на несуществующую команду 9 и пропускается,
	// второй применяется: пакет не отменяется целиком.
	updated, err := env.service.ApplyMatchResults(context.Background(), event.ID, []models.MatchResult{
		{TeamA: 1, TeamB: 9, Winner: 1},
		{TeamA: 1, TeamB: 2, Winner: 1},
	}, 24)
	if err != nil {
		t.Fatalf("ApplyMatchResults returned error: %v", err)
	}
	if updated != 2 {
		t.Fatalf("expected 2 players updated, got %d", updated)
	}
	if got := env.skill(t, 1); got != 66 {
		t.Errorf("winner: expected skill 66, got %d", got)
	}
	if got := env.skill(t, 2); got != 34 {
		t.Errorf("loser: expected skill 34, got %d", got)
	}
}

func TestApplyMatchResultsAccumulatesBeforeRounding(t *testing.T) {
	env, event := newRatingEnv(t,
		models.Player{ID: 1, Skill: 60},
		models.Player{ID: 2, Skill: 40},
	)
	env.addTeam(event.ID, 1, 1)
	env.addTeam(event.ID, 2, 2)

	// Две победы при K=10 дают по 2.4 за матч: сумма 4.8 округляется до 5.
	// Поматчевое округление дало бы 2+2=4 — дельты копятся до выгрузки.
	updated, err := env.service.ApplyMatchResults(context.Background(), event.ID, []models.MatchResult{
		{TeamA: 1, TeamB: 2, Winner: 1},
		{TeamA: 1, TeamB: 2, Winner: 1},
	}, 10)
	if err != nil {
		t.Fatalf("ApplyMatchResults returned error: %v", err)
	}
	if updated != 2 {
		t.Fatalf("expected 2 players updated, got %d", updated)
	}
	if got := env.skill(t, 1); got != 65 {
		t.Errorf("winner: expected skill 65, got %d", got)
	}
	if got := env.skill(t, 2); got != 35 {
		t.Errorf("loser: expected skill 35, got %d", got)
	}
}

func TestApplyMatchResultsDefaultKFactor(t *testing.T) {
	env, event := newRatingEnv(t,
		models.Player{ID: 1, Skill: 60},
		models.Player{ID: 2, Skill: 60},
		models.Player{ID: 3, Skill: 40},
		models.Player{ID: 4, Skill: 40},
	)
	env.addTeam(event.ID, 1, 1, 2)
	env.addTeam(event.ID, 2, 3, 4)

	// Неположительный K заменяется сконфигурированным значением по умолчанию.
	updated, err := env.service.ApplyMatchResults(context.Background(), event.ID, []models.MatchResult{
		{TeamA: 1, TeamB: 2, Winner: 1},
	}, 0)
	if err != nil {
		t.Fatalf("ApplyMatchResults returned error: %v", err)
	}
	if updated != 4 {
		t.Fatalf("expected 4 players updated, got %d", updated)
	}
	if got := env.skill(t, 1); got != 63 {
		t.Errorf("expected default K to produce skill 63, got %d", got)
	}
}

func TestApplyMatchResultsUnknownEvent(t *testing.T) {
	env, _ := newRatingEnv(t)

	_, err := env.service.ApplyMatchResults(context.Background(), 42, []models.MatchResult{
		{TeamA: 1, TeamB: 2, Winner: 1},
	}, 24)
	if !errors.Is(err, ErrEventNotFound) {
		t.Errorf("expected ErrEventNotFound, got %v", err)
	}
}

func TestApplyMatchResultsEmptyBatch(t *testing.T) {
	env, event := newRatingEnv(t, models.Player{ID: 1, Skill: 60})
	env.addTeam(event.ID, 1, 1)

	updated, err := env.service.ApplyMatchResults(context.Background(), event.ID, nil, 24)
	if err != nil {
		t.Fatalf("ApplyMatchResults returned error: %v", err)
	}
	if updated != 0 {
		t.Errorf("expected 0 players updated for empty batch, got %d", updated)
	}
	if len(env.db.txs) != 0 {
		t.Error("empty batch must not open a transaction")
	}
}
