package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/clubops/session-system/metrics"
	"github.com/clubops/session-system/models"
	"github.com/clubops/session-system/repositories"
)

// RecurringTemplate описывает еженедельный слот расписания клуба.
type RecurringTemplate struct {
	ID       string       `json:"id"`
	Title    string       `json:"title"`
	Weekday  time.Weekday `json:"weekday"`
	Hour     int          `json:"hour"`
	Minute   int          `json:"minute"`
	Location string       `json:"location"`
}

// DefaultTemplates — фиксированное расписание клуба: четверг 19:30 и
// воскресенье 16:30 местного времени.
func DefaultTemplates() []RecurringTemplate {
	return []RecurringTemplate{
		{
			ID:       "thursday",
			Title:    "Club Session (Thursday)",
			Weekday:  time.Thursday,
			Hour:     19,
			Minute:   30,
			Location: "Local Pool",
		},
		{
			ID:       "sunday",
			Title:    "Club Session (Sunday)",
			Weekday:  time.Sunday,
			Hour:     16,
			Minute:   30,
			Location: "Local Pool",
		},
	}
}

type ScheduleService interface {
	// RunScheduleCycle материализует ближайшее вхождение каждого шаблона.
	// Повторный запуск для того же слота безвреден: проверка существования
	// по (title, startTime) — единственный механизм защиты от дублей.
	RunScheduleCycle(ctx context.Context, now time.Time) error
	// CreateEventNow — ручной запуск: событие через час от момента вызова,
	// с локацией шаблона.
	CreateEventNow(ctx context.Context, templateID string) (*models.Event, error)
	NextOccurrence(weekday time.Weekday, hour, minute int, ref time.Time) time.Time
	Templates() []RecurringTemplate
}

type scheduleService struct {
	eventRepo repositories.EventRepository
	templates []RecurringTemplate
	location  *time.Location
	metrics   *metrics.Manager
	logger    *slog.Logger
}

func NewScheduleService(
	eventRepo repositories.EventRepository,
	templates []RecurringTemplate,
	location *time.Location,
	m *metrics.Manager,
	logger *slog.Logger,
) ScheduleService {
	return &scheduleService{
		eventRepo: eventRepo,
		templates: templates,
		location:  location,
		metrics:   m,
		logger:    logger,
	}
}

// NextOccurrence возвращает ближайший момент на/после ref, попадающий на
// заданный день недели и время суток в часовом поясе клуба. Если слот
// сегодняшнего дня уже прошёл, берётся следующая неделя. Функция чистая:
// одинаковые входы дают одинаковый результат.
func (s *scheduleService) NextOccurrence(weekday time.Weekday, hour, minute int, ref time.Time) time.Time {
	local := ref.In(s.location)

	daysAhead := (int(weekday) - int(local.Weekday()) + 7) % 7
	candidate := time.Date(
		local.Year(), local.Month(), local.Day()+daysAhead,
		hour, minute, 0, 0,
		s.location,
	)
	if candidate.Before(local) {
		candidate = candidate.AddDate(0, 0, 7)
	}
	return candidate
}

func (s *scheduleService) RunScheduleCycle(ctx context.Context, now time.Time) error {
	for _, tpl := range s.templates {
		startTime := s.NextOccurrence(tpl.Weekday, tpl.Hour, tpl.Minute, now)
		if err := s.ensureEventExists(ctx, tpl.Title, startTime, tpl.Location); err != nil {
			return fmt.Errorf("failed to materialize template %q: %w", tpl.ID, err)
		}
	}
	return nil
}

func (s *scheduleService) CreateEventNow(ctx context.Context, templateID string) (*models.Event, error) {
	var tpl *RecurringTemplate
	for i := range s.templates {
		if s.templates[i].ID == templateID {
			tpl = &s.templates[i]
			break
		}
	}
	if tpl == nil {
		return nil, fmt.Errorf("%w: %q", ErrTemplateNotFound, templateID)
	}

	event := &models.Event{
		Title:     tpl.Title + " (auto)",
		Location:  tpl.Location,
		StartTime: time.Now().Add(time.Hour),
	}
	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to create ad-hoc event: %w", err)
	}
	s.metrics.EventCreated()

	s.logger.Info("created ad-hoc event",
		slog.String("template", tpl.ID),
		slog.Int("event_id", event.ID),
		slog.Time("start_time", event.StartTime),
	)
	return event, nil
}

func (s *scheduleService) Templates() []RecurringTemplate {
	templates := make([]RecurringTemplate, len(s.templates))
	copy(templates, s.templates)
	return templates
}

func (s *scheduleService) ensureEventExists(ctx context.Context, title string, startTime time.Time, location string) error {
	exists, err := s.eventRepo.ExistsByTitleAndStartTime(ctx, title, startTime)
	if err != nil {
		return err
	}
	if exists {
		s.logger.Debug("event already exists, skipping",
			slog.String("title", title),
			slog.Time("start_time", startTime),
		)
		return nil
	}

	event := &models.Event{
		Title:     title,
		Location:  location,
		StartTime: startTime,
	}
	if err := s.eventRepo.Create(ctx, event); err != nil {
		// Параллельный цикл мог вставить событие между проверкой и созданием;
		// конфликт по (title, start_time) означает, что слот уже материализован.
		if errors.Is(err, repositories.ErrEventConflict) {
			return nil
		}
		return err
	}
	s.metrics.EventCreated()

	s.logger.Info("created scheduled event",
		slog.String("title", title),
		slog.Int("event_id", event.ID),
		slog.Time("start_time", startTime),
	)
	return nil
}
