package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/clubops/session-system/models"
	"github.com/clubops/session-system/repositories"
)

type fakePlayerRepo struct {
	players map[int]models.Player
}

func newFakePlayerRepo(players ...models.Player) *fakePlayerRepo {
	repo := &fakePlayerRepo{players: make(map[int]models.Player)}
	for _, p := range players {
		repo.players[p.ID] = p
	}
	return repo
}

func (f *fakePlayerRepo) GetByID(ctx context.Context, id int) (*models.Player, error) {
	player, ok := f.players[id]
	if !ok {
		return nil, repositories.ErrPlayerNotFound
	}
	return &player, nil
}

func (f *fakePlayerRepo) List(ctx context.Context) ([]models.Player, error) {
	out := make([]models.Player, 0, len(f.players))
	for _, p := range f.players {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakePlayerRepo) ListByIDs(ctx context.Context, ids []int) ([]models.Player, error) {
	var out []models.Player
	for _, id := range ids {
		if p, ok := f.players[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePlayerRepo) UpdateSkill(ctx context.Context, exec repositories.SQLExecutor, playerID, skill int) error {
	player, ok := f.players[playerID]
	if !ok {
		return repositories.ErrPlayerNotFound
	}
	player.Skill = skill
	f.players[playerID] = player
	return nil
}

func TestCreateEventRequiresTitle(t *testing.T) {
	svc := NewEventService(&fakeEventRepo{}, &fakeRsvpRepo{}, newFakePlayerRepo())

	_, err := svc.CreateEvent(context.Background(), CreateEventInput{Title: "   "})
	if !errors.Is(err, ErrEventTitleRequired) {
		t.Errorf("expected ErrEventTitleRequired, got %v", err)
	}
}

func TestCreateEventDefaultsStartTime(t *testing.T) {
	svc := NewEventService(&fakeEventRepo{}, &fakeRsvpRepo{}, newFakePlayerRepo())

	before := time.Now()
	event, err := svc.CreateEvent(context.Background(), CreateEventInput{Title: "Scrimmage"})
	if err != nil {
		t.Fatalf("CreateEvent returned error: %v", err)
	}
	if event.StartTime.Before(before.Add(59*time.Minute)) || event.StartTime.After(before.Add(61*time.Minute)) {
		t.Errorf("default start time %v is not about an hour from now", event.StartTime)
	}
}

func TestListAttendees(t *testing.T) {
	events := &fakeEventRepo{}
	rsvps := &fakeRsvpRepo{}
	players := newFakePlayerRepo(
		models.Player{ID: 1, Name: "Alice", Skill: 60},
		models.Player{ID: 2, Name: "Bob", Skill: 40},
		models.Player{ID: 3, Name: "Carol", Skill: 50},
	)
	svc := NewEventService(events, rsvps, players)

	event := &models.Event{Title: "Club Session (Thursday)", StartTime: eventStart}
	if err := events.Create(context.Background(), event); err != nil {
		t.Fatalf("failed to seed event: %v", err)
	}
	rsvps.rsvps = []models.Rsvp{
		{EventID: event.ID, PlayerID: 1, Status: models.RsvpYes},
		{EventID: event.ID, PlayerID: 2, Status: models.RsvpNo},
		{EventID: event.ID, PlayerID: 3, Status: models.RsvpYes},
	}

	attendees, err := svc.ListAttendees(context.Background(), event.ID)
	if err != nil {
		t.Fatalf("ListAttendees returned error: %v", err)
	}
	if len(attendees) != 2 {
		t.Fatalf("expected 2 attendees, got %d", len(attendees))
	}
	for _, p := range attendees {
		if p.ID == 2 {
			t.Errorf("player who declined must not be listed")
		}
	}
}

func TestListAttendeesUnknownEvent(t *testing.T) {
	svc := NewEventService(&fakeEventRepo{}, &fakeRsvpRepo{}, newFakePlayerRepo())

	_, err := svc.ListAttendees(context.Background(), 42)
	if !errors.Is(err, ErrEventNotFound) {
		t.Errorf("expected ErrEventNotFound, got %v", err)
	}
}

func TestRsvpUpsertNormalizesStatus(t *testing.T) {
	rsvps := &fakeRsvpRepo{}
	svc := NewRsvpService(rsvps)

	rsvp, err := svc.Upsert(context.Background(), 1, 2, "  YES ")
	if err != nil {
		t.Fatalf("Upsert returned error: %v", err)
	}
	if rsvp.Status != models.RsvpYes {
		t.Errorf("expected normalized status %q, got %q", models.RsvpYes, rsvp.Status)
	}
}

func TestRsvpUpsertRejectsUnknownStatus(t *testing.T) {
	svc := NewRsvpService(&fakeRsvpRepo{})

	_, err := svc.Upsert(context.Background(), 1, 2, "perhaps")
	if !errors.Is(err, ErrInvalidRsvpStatus) {
		t.Errorf("expected ErrInvalidRsvpStatus, got %v", err)
	}
}

func TestSetSkillValidatesRange(t *testing.T) {
	players := newFakePlayerRepo(models.Player{ID: 1, Skill: 50})
	svc := NewPlayerService(players, discardLogger())

	if err := svc.SetSkill(context.Background(), 1, 75); err != nil {
		t.Fatalf("SetSkill returned error: %v", err)
	}
	if players.players[1].Skill != 75 {
		t.Errorf("skill not persisted, got %d", players.players[1].Skill)
	}

	if err := svc.SetSkill(context.Background(), 1, MaxSkill+1); !errors.Is(err, ErrInvalidSkillValue) {
		t.Errorf("expected ErrInvalidSkillValue, got %v", err)
	}
	if err := svc.SetSkill(context.Background(), 99, 50); !errors.Is(err, ErrPlayerNotFound) {
		t.Errorf("expected ErrPlayerNotFound, got %v", err)
	}
}
