package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/clubops/session-system/metrics"
	"github.com/clubops/session-system/models"
	"github.com/clubops/session-system/push"
	"github.com/clubops/session-system/repositories"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// dayOfReminderHour — час локального времени, в который уходит напоминание
// в день события.
const dayOfReminderHour = 10

// defaultSendConcurrency ограничивает параллельную доставку внутри одного
// срабатывания.
const defaultSendConcurrency = 8

// DispatchConfig задаёт параметры цикла опроса.
type DispatchConfig struct {
	// PollInterval должен совпадать с периодом внешнего таймера: окно
	// просмотра — [now-PollInterval, now].
	PollInterval time.Duration
	// Location — часовой пояс клуба для вычисления времён срабатываний.
	Location *time.Location
	// TeamStrategy и TeamSize используются автогенерацией команд.
	TeamStrategy string
	TeamSize     int
	// SendConcurrency — максимум одновременных доставок (0 — по умолчанию).
	SendConcurrency int
}

type DispatchService interface {
	// RunCycle сканирует все события и запускает срабатывания, чьё время
	// попало в только что прошедшее окно опроса. Идемпотентен: журнал
	// срабатываний гарантирует «не более одного раза» на пару
	// (событие, тип) при перезапусках и перекрывающихся окнах.
	RunCycle(ctx context.Context, now time.Time) error
}

type dispatchService struct {
	eventRepo   repositories.EventRepository
	rsvpRepo    repositories.RsvpRepository
	triggerRepo repositories.TriggerLogRepository
	subRepo     repositories.SubscriptionRepository
	sender      push.Sender
	generator   TeamService
	cfg         DispatchConfig
	metrics     *metrics.Manager
	logger      *slog.Logger
}

func NewDispatchService(
	eventRepo repositories.EventRepository,
	rsvpRepo repositories.RsvpRepository,
	triggerRepo repositories.TriggerLogRepository,
	subRepo repositories.SubscriptionRepository,
	sender push.Sender,
	generator TeamService,
	cfg DispatchConfig,
	m *metrics.Manager,
	logger *slog.Logger,
) DispatchService {
	if cfg.SendConcurrency <= 0 {
		cfg.SendConcurrency = defaultSendConcurrency
	}
	if cfg.TeamStrategy == "" {
		cfg.TeamStrategy = "balanced"
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &dispatchService{
		eventRepo:   eventRepo,
		rsvpRepo:    rsvpRepo,
		triggerRepo: triggerRepo,
		subRepo:     subRepo,
		sender:      sender,
		generator:   generator,
		cfg:         cfg,
		metrics:     m,
		logger:      logger,
	}
}

func (s *dispatchService) RunCycle(ctx context.Context, now time.Time) error {
	// Идентификатор цикла связывает записи журнала одного прохода.
	log := s.logger.With(slog.String("cycle_id", uuid.NewString()))

	windowEnd := now.In(s.cfg.Location).Truncate(time.Minute)
	windowStart := windowEnd.Add(-s.cfg.PollInterval)

	events, err := s.eventRepo.List(ctx)
	if err != nil {
		return fmt.Errorf("dispatch cycle failed to list events: %w", err)
	}
	s.metrics.DispatchCycleRan()

	for _, event := range events {
		if event.StartTime.IsZero() {
			continue
		}
		// Ошибка одного события не останавливает обход остальных.
		s.processEvent(ctx, log, event, windowStart, windowEnd)
	}
	return nil
}

func (s *dispatchService) processEvent(ctx context.Context, log *slog.Logger, event *models.Event, windowStart, windowEnd time.Time) {
	start := event.StartTime.In(s.cfg.Location)

	dayOf := time.Date(start.Year(), start.Month(), start.Day(), dayOfReminderHour, 0, 0, 0, s.cfg.Location)
	if inWindow(windowStart, windowEnd, dayOf) {
		if err := s.fireDayOf(ctx, log, event); err != nil {
			log.Error("day-of trigger failed",
				slog.Int("event_id", event.ID),
				slog.Any("error", err),
			)
		}
	}

	hourBefore := start.Add(-time.Hour).Truncate(time.Minute)
	if inWindow(windowStart, windowEnd, hourBefore) {
		// Сначала автогенерация команд: её провал не должен помешать
		// напоминанию за час.
		s.fireTeamGeneration(ctx, log, event)

		if err := s.fireHourBefore(ctx, log, event); err != nil {
			log.Error("hour-before trigger failed",
				slog.Int("event_id", event.ID),
				slog.Any("error", err),
			)
		}
	}
}

// inWindow проверяет попадание в закрытый интервал [start, end]: опоздавший
// или пропущенный опрос всё равно подхватывает срабатывания прошедшего окна.
func inWindow(start, end, candidate time.Time) bool {
	return !candidate.Before(start) && !candidate.After(end)
}

func (s *dispatchService) fireDayOf(ctx context.Context, log *slog.Logger, event *models.Event) error {
	fired, err := s.triggerRepo.Exists(ctx, event.ID, models.TriggerDayOf)
	if err != nil || fired {
		return err
	}

	subs, err := s.dayOfAudience(ctx, event.ID)
	if err != nil {
		return err
	}

	payload := push.Payload{
		Title: event.Title,
		Body:  "RSVP for the event now",
		URL:   "/",
	}
	s.deliver(ctx, log, event.ID, subs, payload)

	return s.logTrigger(ctx, log, event.ID, models.TriggerDayOf)
}

func (s *dispatchService) fireTeamGeneration(ctx context.Context, log *slog.Logger, event *models.Event) {
	fired, err := s.triggerRepo.Exists(ctx, event.ID, models.TriggerTeamsGenerated)
	if err != nil {
		log.Error("failed to check team generation trigger",
			slog.Int("event_id", event.ID),
			slog.Any("error", err),
		)
		return
	}
	if fired {
		return
	}

	log.Info("auto-generating teams",
		slog.Int("event_id", event.ID),
		slog.String("strategy", s.cfg.TeamStrategy),
	)
	_, err = s.generator.GenerateTeams(ctx, GenerateTeamsInput{
		EventID:  event.ID,
		Strategy: s.cfg.TeamStrategy,
		TeamSize: s.cfg.TeamSize,
	})
	if err != nil {
		log.Error("auto team generation failed",
			slog.Int("event_id", event.ID),
			slog.Any("error", err),
		)
		return
	}

	if err := s.logTrigger(ctx, log, event.ID, models.TriggerTeamsGenerated); err != nil {
		log.Error("failed to log team generation trigger",
			slog.Int("event_id", event.ID),
			slog.Any("error", err),
		)
	}
}

func (s *dispatchService) fireHourBefore(ctx context.Context, log *slog.Logger, event *models.Event) error {
	fired, err := s.triggerRepo.Exists(ctx, event.ID, models.TriggerHourBefore)
	if err != nil || fired {
		return err
	}

	subs, err := s.hourBeforeAudience(ctx, event.ID)
	if err != nil {
		return err
	}

	payload := push.Payload{
		Title: event.Title,
		Body:  "Click this notification to see the teams",
		URL:   "/",
	}
	s.deliver(ctx, log, event.ID, subs, payload)

	return s.logTrigger(ctx, log, event.ID, models.TriggerHourBefore)
}

// dayOfAudience: подписки игроков, ещё не ответивших на приглашение.
// Если не ответил никто — уведомляются все.
func (s *dispatchService) dayOfAudience(ctx context.Context, eventID int) ([]models.Subscription, error) {
	responded, err := s.rsvpRepo.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list responses for event %d: %w", eventID, err)
	}

	allSubs, err := s.subRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	if len(responded) == 0 {
		return allSubs, nil
	}

	respondedIDs := make(map[int]struct{}, len(responded))
	for _, rsvp := range responded {
		respondedIDs[rsvp.PlayerID] = struct{}{}
	}

	subs := make([]models.Subscription, 0, len(allSubs))
	for _, sub := range allSubs {
		if sub.PlayerID != nil {
			if _, ok := respondedIDs[*sub.PlayerID]; ok {
				continue
			}
		}
		subs = append(subs, sub)
	}
	return subs, nil
}

// hourBeforeAudience: подписки ответивших "yes"; если таких нет — все.
func (s *dispatchService) hourBeforeAudience(ctx context.Context, eventID int) ([]models.Subscription, error) {
	yes, err := s.rsvpRepo.ListByEventAndStatus(ctx, eventID, models.RsvpYes)
	if err != nil {
		return nil, fmt.Errorf("failed to list yes responses for event %d: %w", eventID, err)
	}
	if len(yes) == 0 {
		return s.subRepo.ListAll(ctx)
	}

	ids := make([]int, 0, len(yes))
	for _, rsvp := range yes {
		ids = append(ids, rsvp.PlayerID)
	}
	return s.subRepo.ListByPlayers(ctx, ids)
}

// deliver рассылает payload всем подпискам. Доставки независимы: провал
// одной не мешает остальным и не отменяет фиксацию срабатывания.
func (s *dispatchService) deliver(ctx context.Context, log *slog.Logger, eventID int, subs []models.Subscription, payload push.Payload) {
	g := &errgroup.Group{}
	g.SetLimit(s.cfg.SendConcurrency)

	for _, sub := range subs {
		sub := sub
		g.Go(func() error {
			if err := s.sender.Send(ctx, sub, payload); err != nil {
				s.metrics.NotificationFailed()
				log.Warn("push delivery failed",
					slog.Int("event_id", eventID),
					slog.Int("subscription_id", sub.ID),
					slog.Any("error", err),
				)
				return nil
			}
			s.metrics.NotificationSent()
			return nil
		})
	}
	g.Wait()

	log.Info("notification batch finished",
		slog.Int("event_id", eventID),
		slog.Int("subscriptions", len(subs)),
	)
}

func (s *dispatchService) logTrigger(ctx context.Context, log *slog.Logger, eventID int, triggerType models.TriggerType) error {
	entry := &models.TriggerLog{EventID: eventID, Type: triggerType}
	if err := s.triggerRepo.Insert(ctx, entry); err != nil {
		// Параллельный цикл успел первым: срабатывание уже зафиксировано.
		if errors.Is(err, repositories.ErrTriggerAlreadyFired) {
			log.Warn("trigger already logged by a concurrent cycle",
				slog.Int("event_id", eventID),
				slog.String("type", string(triggerType)),
			)
			return nil
		}
		return err
	}
	s.metrics.TriggerFired(string(triggerType))
	return nil
}
