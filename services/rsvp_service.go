package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/clubops/session-system/models"
	"github.com/clubops/session-system/repositories"
)

type RsvpService interface {
	// Upsert сохраняет ответ игрока; повторный ответ перезаписывает прежний.
	Upsert(ctx context.Context, eventID, playerID int, status string) (*models.Rsvp, error)
	ListForEvent(ctx context.Context, eventID int) ([]models.Rsvp, error)
	FindYesForEvent(ctx context.Context, eventID int) ([]models.Rsvp, error)
}

type rsvpService struct {
	rsvpRepo repositories.RsvpRepository
}

func NewRsvpService(rsvpRepo repositories.RsvpRepository) RsvpService {
	return &rsvpService{rsvpRepo: rsvpRepo}
}

func (s *rsvpService) Upsert(ctx context.Context, eventID, playerID int, status string) (*models.Rsvp, error) {
	normalized := models.RsvpStatus(strings.ToLower(strings.TrimSpace(status)))
	if !normalized.Valid() {
		return nil, fmt.Errorf("%w: got %q", ErrInvalidRsvpStatus, status)
	}

	rsvp := &models.Rsvp{
		EventID:  eventID,
		PlayerID: playerID,
		Status:   normalized,
	}
	if err := s.rsvpRepo.Upsert(ctx, rsvp); err != nil {
		switch {
		case errors.Is(err, repositories.ErrRsvpEventInvalid):
			return nil, ErrEventNotFound
		case errors.Is(err, repositories.ErrRsvpPlayerInvalid):
			return nil, ErrPlayerNotFound
		}
		return nil, err
	}
	return rsvp, nil
}

func (s *rsvpService) ListForEvent(ctx context.Context, eventID int) ([]models.Rsvp, error) {
	return s.rsvpRepo.ListByEvent(ctx, eventID)
}

func (s *rsvpService) FindYesForEvent(ctx context.Context, eventID int) ([]models.Rsvp, error) {
	return s.rsvpRepo.ListByEventAndStatus(ctx, eventID, models.RsvpYes)
}
