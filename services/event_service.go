package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/clubops/session-system/models"
	"github.com/clubops/session-system/repositories"
)

type CreateEventInput struct {
	Title     string     `json:"title"`
	Location  string     `json:"location"`
	StartTime *time.Time `json:"start_time"`
	CreatedBy *int       `json:"created_by"`
}

type EventService interface {
	CreateEvent(ctx context.Context, input CreateEventInput) (*models.Event, error)
	GetEventByID(ctx context.Context, id int) (*models.Event, error)
	ListEvents(ctx context.Context) ([]*models.Event, error)
	// ListAttendees возвращает игроков, ответивших "yes" на приглашение.
	ListAttendees(ctx context.Context, eventID int) ([]models.Player, error)
}

type eventService struct {
	eventRepo  repositories.EventRepository
	rsvpRepo   repositories.RsvpRepository
	playerRepo repositories.PlayerRepository
}

func NewEventService(
	eventRepo repositories.EventRepository,
	rsvpRepo repositories.RsvpRepository,
	playerRepo repositories.PlayerRepository,
) EventService {
	return &eventService{
		eventRepo:  eventRepo,
		rsvpRepo:   rsvpRepo,
		playerRepo: playerRepo,
	}
}

func (s *eventService) CreateEvent(ctx context.Context, input CreateEventInput) (*models.Event, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrEventTitleRequired
	}

	// Без явного времени событие назначается через час.
	startTime := time.Now().Add(time.Hour)
	if input.StartTime != nil {
		startTime = *input.StartTime
	}

	event := &models.Event{
		Title:     title,
		Location:  input.Location,
		StartTime: startTime,
		CreatedBy: input.CreatedBy,
	}
	if err := s.eventRepo.Create(ctx, event); err != nil {
		if errors.Is(err, repositories.ErrEventConflict) {
			return nil, ErrEventConflict
		}
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	return event, nil
}

func (s *eventService) GetEventByID(ctx context.Context, id int) (*models.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return event, nil
}

func (s *eventService) ListEvents(ctx context.Context) ([]*models.Event, error) {
	events, err := s.eventRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return events, nil
}

func (s *eventService) ListAttendees(ctx context.Context, eventID int) ([]models.Player, error) {
	if _, err := s.GetEventByID(ctx, eventID); err != nil {
		return nil, err
	}

	yes, err := s.rsvpRepo.ListByEventAndStatus(ctx, eventID, models.RsvpYes)
	if err != nil {
		return nil, fmt.Errorf("failed to list yes responses for event %d: %w", eventID, err)
	}

	ids := make([]int, 0, len(yes))
	for _, rsvp := range yes {
		ids = append(ids, rsvp.PlayerID)
	}
	return s.playerRepo.ListByIDs(ctx, ids)
}
