package services

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newScheduleEnv() (*fakeEventRepo, ScheduleService) {
	repo := &fakeEventRepo{}
	svc := NewScheduleService(repo, DefaultTemplates(), time.UTC, nil, discardLogger())
	return repo, svc
}

func TestNextOccurrence(t *testing.T) {
	_, svc := newScheduleEnv()

	// 2026-01-07 — среда, 2026-01-08 — четверг.
	cases := []struct {
		name     string
		ref      time.Time
		weekday  time.Weekday
		hour     int
		minute   int
		expected time.Time
	}{
		{
			name:     "later this week",
			ref:      time.Date(2026, time.January, 7, 12, 0, 0, 0, time.UTC),
			weekday:  time.Thursday,
			hour:     19, minute: 30,
			expected: time.Date(2026, time.January, 8, 19, 30, 0, 0, time.UTC),
		},
		{
			name:     "same day before the slot",
			ref:      time.Date(2026, time.January, 8, 10, 0, 0, 0, time.UTC),
			weekday:  time.Thursday,
			hour:     19, minute: 30,
			expected: time.Date(2026, time.January, 8, 19, 30, 0, 0, time.UTC),
		},
		{
			name:     "same day exactly at the slot",
			ref:      time.Date(2026, time.January, 8, 19, 30, 0, 0, time.UTC),
			weekday:  time.Thursday,
			hour:     19, minute: 30,
			expected: time.Date(2026, time.January, 8, 19, 30, 0, 0, time.UTC),
		},
		{
			name:     "same day after the slot rolls a week",
			ref:      time.Date(2026, time.January, 8, 20, 0, 0, 0, time.UTC),
			weekday:  time.Thursday,
			hour:     19, minute: 30,
			expected: time.Date(2026, time.January, 15, 19, 30, 0, 0, time.UTC),
		},
		{
			name:     "wraps past the weekend",
			ref:      time.Date(2026, time.January, 9, 12, 0, 0, 0, time.UTC),
			weekday:  time.Sunday,
			hour:     16, minute: 30,
			expected: time.Date(2026, time.January, 11, 16, 30, 0, 0, time.UTC),
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := svc.NextOccurrence(tc.weekday, tc.hour, tc.minute, tc.ref)
			if !got.Equal(tc.expected) {
				t.Errorf("NextOccurrence = %v, expected %v", got, tc.expected)
			}

			// Результат — неподвижная точка: повторный вызов от него же
			// возвращает то же время.
			again := svc.NextOccurrence(tc.weekday, tc.hour, tc.minute, got)
			if !again.Equal(got) {
				t.Errorf("NextOccurrence is not idempotent: %v -> %v", got, again)
			}
		})
	}
}

func TestRunScheduleCycleIdempotent(t *testing.T) {
	repo, svc := newScheduleEnv()

	now := time.Date(2026, time.January, 5, 9, 0, 0, 0, time.UTC) // понедельник
	if err := svc.RunScheduleCycle(context.Background(), now); err != nil {
		t.Fatalf("RunScheduleCycle returned error: %v", err)
	}

	events, _ := repo.List(context.Background())
	if len(events) != 2 {
		t.Fatalf("expected 2 materialized events, got %d", len(events))
	}

	byTitle := make(map[string]time.Time)
	for _, event := range events {
		byTitle[event.Title] = event.StartTime
	}
	thursday := time.Date(2026, time.January, 8, 19, 30, 0, 0, time.UTC)
	sunday := time.Date(2026, time.January, 11, 16, 30, 0, 0, time.UTC)
	if !byTitle["Club Session (Thursday)"].Equal(thursday) {
		t.Errorf("thursday slot = %v, expected %v", byTitle["Club Session (Thursday)"], thursday)
	}
	if !byTitle["Club Session (Sunday)"].Equal(sunday) {
		t.Errorf("sunday slot = %v, expected %v", byTitle["Club Session (Sunday)"], sunday)
	}

	// Повторные прогоны в тот же слот не плодят дубликаты.
	for i := 0; i < 3; i++ {
		if err := svc.RunScheduleCycle(context.Background(), now.Add(time.Duration(i)*time.Hour)); err != nil {
			t.Fatalf("repeat cycle returned error: %v", err)
		}
	}
	events, _ = repo.List(context.Background())
	if len(events) != 2 {
		t.Errorf("expected still 2 events after repeat cycles, got %d", len(events))
	}
}

func TestRunScheduleCycleAfterSlotMovesToNextWeek(t *testing.T) {
	repo, svc := newScheduleEnv()

	// Четверг после 19:30: четверговый слот уезжает на следующую неделю.
	now := time.Date(2026, time.January, 8, 21, 0, 0, 0, time.UTC)
	if err := svc.RunScheduleCycle(context.Background(), now); err != nil {
		t.Fatalf("RunScheduleCycle returned error: %v", err)
	}

	exists, _ := repo.ExistsByTitleAndStartTime(
		context.Background(),
		"Club Session (Thursday)",
		time.Date(2026, time.January, 15, 19, 30, 0, 0, time.UTC),
	)
	if !exists {
		t.Error("expected thursday event materialized for the following week")
	}
}

func TestCreateEventNow(t *testing.T) {
	repo, svc := newScheduleEnv()

	before := time.Now()
	event, err := svc.CreateEventNow(context.Background(), "thursday")
	if err != nil {
		t.Fatalf("CreateEventNow returned error: %v", err)
	}

	if event.ID == 0 {
		t.Error("expected event to be persisted with an id")
	}
	if event.Title != "Club Session (Thursday) (auto)" {
		t.Errorf("unexpected title %q", event.Title)
	}
	if event.Location != "Local Pool" {
		t.Errorf("unexpected location %q", event.Location)
	}
	// Старт примерно через час от вызова.
	if event.StartTime.Before(before.Add(59*time.Minute)) || event.StartTime.After(before.Add(61*time.Minute)) {
		t.Errorf("start time %v is not about an hour from now", event.StartTime)
	}

	stored, err := repo.GetByID(context.Background(), event.ID)
	if err != nil {
		t.Fatalf("event not stored: %v", err)
	}
	if stored.Title != event.Title {
		t.Errorf("stored title %q differs from returned %q", stored.Title, event.Title)
	}
}

func TestCreateEventNowUnknownTemplate(t *testing.T) {
	_, svc := newScheduleEnv()

	_, err := svc.CreateEventNow(context.Background(), "saturday")
	if !errors.Is(err, ErrTemplateNotFound) {
		t.Errorf("expected ErrTemplateNotFound, got %v", err)
	}
}
