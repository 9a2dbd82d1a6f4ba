package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/clubops/session-system/models"
	"github.com/clubops/session-system/repositories"
)

type RegisterSubscriptionInput struct {
	PlayerID *int   `json:"player_id"`
	Endpoint string `json:"endpoint"`
	P256dh   string `json:"p256dh"`
	Auth     string `json:"auth"`
}

type SubscriptionService interface {
	// Register сохраняет push-подписку. Подписка без player_id считается
	// анонимной и попадает во все рассылки.
	Register(ctx context.Context, input RegisterSubscriptionInput) (*models.Subscription, error)
	Unregister(ctx context.Context, endpoint string) error
	ListSubscriptions(ctx context.Context) ([]models.Subscription, error)
}

type subscriptionService struct {
	subRepo    repositories.SubscriptionRepository
	playerRepo repositories.PlayerRepository
	logger     *slog.Logger
}

func NewSubscriptionService(
	subRepo repositories.SubscriptionRepository,
	playerRepo repositories.PlayerRepository,
	logger *slog.Logger,
) SubscriptionService {
	return &subscriptionService{
		subRepo:    subRepo,
		playerRepo: playerRepo,
		logger:     logger,
	}
}

func (s *subscriptionService) Register(ctx context.Context, input RegisterSubscriptionInput) (*models.Subscription, error) {
	input.Endpoint = strings.TrimSpace(input.Endpoint)
	if input.Endpoint == "" {
		return nil, fmt.Errorf("%w: endpoint is required", ErrValidationFailed)
	}

	if input.PlayerID != nil {
		if _, err := s.playerRepo.GetByID(ctx, *input.PlayerID); err != nil {
			if errors.Is(err, repositories.ErrPlayerNotFound) {
				return nil, ErrPlayerNotFound
			}
			return nil, fmt.Errorf("failed to verify player %d: %w", *input.PlayerID, err)
		}
	}

	sub := &models.Subscription{
		PlayerID: input.PlayerID,
		Endpoint: input.Endpoint,
		P256dh:   input.P256dh,
		Auth:     input.Auth,
	}
	if err := s.subRepo.Create(ctx, sub); err != nil {
		return nil, fmt.Errorf("failed to create subscription: %w", err)
	}

	s.logger.Info("push subscription registered",
		slog.Any("player_id", input.PlayerID),
	)
	return sub, nil
}

func (s *subscriptionService) Unregister(ctx context.Context, endpoint string) error {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return fmt.Errorf("%w: endpoint is required", ErrValidationFailed)
	}

	if err := s.subRepo.DeleteByEndpoint(ctx, endpoint); err != nil {
		if errors.Is(err, repositories.ErrSubscriptionNotFound) {
			return ErrSubscriptionNotFound
		}
		return fmt.Errorf("failed to delete subscription: %w", err)
	}
	return nil
}

func (s *subscriptionService) ListSubscriptions(ctx context.Context) ([]models.Subscription, error) {
	subs, err := s.subRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	return subs, nil
}
