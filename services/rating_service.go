package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/clubops/session-system/metrics"
	"github.com/clubops/session-system/models"
	"github.com/clubops/session-system/rating"
	"github.com/clubops/session-system/repositories"
)

type RatingService interface {
	// ApplyMatchResults пересчитывает рейтинги по пакету исходов матчей
	// события и возвращает число игроков, чей рейтинг записан. Матчи с
	// неизвестными индексами команд пропускаются без отмены пакета.
	ApplyMatchResults(ctx context.Context, eventID int, matches []models.MatchResult, kFactor float64) (int, error)
}

type ratingService struct {
	db         repositories.TxBeginner
	teamRepo   repositories.TeamRepository
	playerRepo repositories.PlayerRepository
	eventRepo  repositories.EventRepository
	defaultK   float64
	metrics    *metrics.Manager
	logger     *slog.Logger
}

func NewRatingService(
	db repositories.TxBeginner,
	teamRepo repositories.TeamRepository,
	playerRepo repositories.PlayerRepository,
	eventRepo repositories.EventRepository,
	defaultK float64,
	m *metrics.Manager,
	logger *slog.Logger,
) RatingService {
	if defaultK <= 0 {
		defaultK = rating.DefaultKFactor
	}
	return &ratingService{
		db:         db,
		teamRepo:   teamRepo,
		playerRepo: playerRepo,
		eventRepo:  eventRepo,
		defaultK:   defaultK,
		metrics:    m,
		logger:     logger,
	}
}

func (s *ratingService) ApplyMatchResults(ctx context.Context, eventID int, matches []models.MatchResult, kFactor float64) (int, error) {
	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return 0, ErrEventNotFound
		}
		return 0, err
	}
	if kFactor <= 0 {
		kFactor = s.defaultK
	}
	if len(matches) == 0 {
		return 0, nil
	}

	eventTeams, err := s.teamRepo.ListByEvent(ctx, eventID)
	if err != nil {
		return 0, fmt.Errorf("failed to load teams for event %d: %w", eventID, err)
	}
	byIndex := make(map[int]*models.Team, len(eventTeams))
	for _, team := range eventTeams {
		byIndex[team.TeamIndex] = team
	}

	// Текущие рейтинги фиксируются на момент начала пакета: дельты считаются
	// от них и накапливаются до единственного округления на игрока.
	skills := make(map[int]int)
	for _, team := range eventTeams {
		for _, member := range team.Members {
			skills[member.ID] = member.Skill
		}
	}

	acc := rating.NewAccumulator()
	for _, match := range matches {
		teamA, okA := byIndex[match.TeamA]
		teamB, okB := byIndex[match.TeamB]
		if !okA || !okB {
			s.logger.Warn("skipping match with unknown team index",
				slog.Int("event_id", eventID),
				slog.Int("team_a", match.TeamA),
				slog.Int("team_b", match.TeamB),
			)
			continue
		}

		avgA := rating.AverageSkill(teamA.Members)
		avgB := rating.AverageSkill(teamB.Members)
		deltaA, deltaB := rating.TeamDeltas(avgA, avgB, match, kFactor)

		perPlayerA := rating.PerPlayerDelta(deltaA, len(teamA.Members))
		for _, member := range teamA.Members {
			acc.Add(member.ID, perPlayerA)
		}
		perPlayerB := rating.PerPlayerDelta(deltaB, len(teamB.Members))
		for _, member := range teamB.Members {
			acc.Add(member.ID, perPlayerB)
		}
	}
	if acc.Len() == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin rating update transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	updated := 0
	for playerID, delta := range acc.Rounded() {
		if err := s.playerRepo.UpdateSkill(ctx, tx, playerID, skills[playerID]+delta); err != nil {
			tx.Rollback()
			return 0, err
		}
		updated++
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit rating update: %w", err)
	}
	s.metrics.RatingUpdated(updated)

	s.logger.Info("ratings updated",
		slog.Int("event_id", eventID),
		slog.Int("matches", len(matches)),
		slog.Int("players", updated),
		slog.Float64("k_factor", kFactor),
	)
	return updated, nil
}
