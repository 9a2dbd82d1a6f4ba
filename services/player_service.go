package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/clubops/session-system/models"
	"github.com/clubops/session-system/repositories"
)

const (
	// MinSkill и MaxSkill ограничивают диапазон рейтинга при ручной установке.
	MinSkill = 0
	MaxSkill = 1000
)

type PlayerService interface {
	GetPlayerByID(ctx context.Context, id int) (*models.Player, error)
	ListPlayers(ctx context.Context) ([]models.Player, error)
	// SetSkill выставляет рейтинг игрока вручную (административная операция).
	SetSkill(ctx context.Context, playerID, skill int) error
}

type playerService struct {
	playerRepo repositories.PlayerRepository
	logger     *slog.Logger
}

func NewPlayerService(playerRepo repositories.PlayerRepository, logger *slog.Logger) PlayerService {
	return &playerService{playerRepo: playerRepo, logger: logger}
}

func (s *playerService) GetPlayerByID(ctx context.Context, id int) (*models.Player, error) {
	player, err := s.playerRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to get player %d: %w", id, err)
	}
	return player, nil
}

func (s *playerService) ListPlayers(ctx context.Context) ([]models.Player, error) {
	players, err := s.playerRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	return players, nil
}

func (s *playerService) SetSkill(ctx context.Context, playerID, skill int) error {
	if skill < MinSkill || skill > MaxSkill {
		return fmt.Errorf("%w: skill must be between %d and %d", ErrInvalidSkillValue, MinSkill, MaxSkill)
	}

	if err := s.playerRepo.UpdateSkill(ctx, nil, playerID, skill); err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return ErrPlayerNotFound
		}
		return fmt.Errorf("failed to update skill for player %d: %w", playerID, err)
	}

	s.logger.Info("player skill set",
		slog.Int("player_id", playerID),
		slog.Int("skill", skill),
	)
	return nil
}
