package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/clubops/session-system/models"
	"github.com/clubops/session-system/repositories"
	"github.com/clubops/session-system/teams"
)

// DefaultTeamSize используется, когда вызывающий не задал размер команды.
const DefaultTeamSize = 5

type GenerateTeamsInput struct {
	EventID  int
	Strategy string
	TeamSize int // 0 — использовать DefaultTeamSize
}

// TeamsBroadcaster уведомляет подключённых клиентов о новой генерации команд.
type TeamsBroadcaster interface {
	BroadcastTeamsGenerated(eventID int, generated []*models.Team)
}

type TeamService interface {
	// GenerateTeams собирает состав из ответивших "yes", прогоняет выбранную
	// стратегию и атомарно заменяет прежние команды события новыми.
	GenerateTeams(ctx context.Context, input GenerateTeamsInput) ([]*models.Team, error)
	ListTeams(ctx context.Context, eventID int) ([]*models.Team, error)
	// AdjustTeamSkill равномерно применяет дельту к рейтингу каждого игрока
	// команды (ручная корректировка администратором).
	AdjustTeamSkill(ctx context.Context, eventID, teamIndex, delta int) error
}

type teamService struct {
	db          repositories.TxBeginner
	teamRepo    repositories.TeamRepository
	playerRepo  repositories.PlayerRepository
	rsvpRepo    repositories.RsvpRepository
	eventRepo   repositories.EventRepository
	broadcaster TeamsBroadcaster
	logger      *slog.Logger
}

func NewTeamService(
	db repositories.TxBeginner,
	teamRepo repositories.TeamRepository,
	playerRepo repositories.PlayerRepository,
	rsvpRepo repositories.RsvpRepository,
	eventRepo repositories.EventRepository,
	broadcaster TeamsBroadcaster,
	logger *slog.Logger,
) TeamService {
	return &teamService{
		db:          db,
		teamRepo:    teamRepo,
		playerRepo:  playerRepo,
		rsvpRepo:    rsvpRepo,
		eventRepo:   eventRepo,
		broadcaster: broadcaster,
		logger:      logger,
	}
}

func (s *teamService) GenerateTeams(ctx context.Context, input GenerateTeamsInput) ([]*models.Team, error) {
	if _, err := s.eventRepo.GetByID(ctx, input.EventID); err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}

	teamSize := input.TeamSize
	if teamSize == 0 {
		teamSize = DefaultTeamSize
	}
	if teamSize < 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidTeamSize, teamSize)
	}

	yes, err := s.rsvpRepo.ListByEventAndStatus(ctx, input.EventID, models.RsvpYes)
	if err != nil {
		return nil, fmt.Errorf("failed to load roster for event %d: %w", input.EventID, err)
	}
	if len(yes) == 0 {
		// Некого делить: прежние команды остаются нетронутыми.
		return []*models.Team{}, nil
	}

	ids := make([]int, 0, len(yes))
	for _, rsvp := range yes {
		ids = append(ids, rsvp.PlayerID)
	}
	roster, err := s.playerRepo.ListByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load players for event %d: %w", input.EventID, err)
	}

	generator := teams.Resolve(input.Strategy)
	groups, err := generator.MakeTeams(roster, teamSize)
	if err != nil {
		// Ошибка конфигурации стратегии: ничего не записано.
		return nil, err
	}

	generated := make([]*models.Team, 0, len(groups))
	for i, group := range groups {
		generated = append(generated, &models.Team{
			EventID:   input.EventID,
			TeamIndex: i + 1,
			Members:   group,
		})
	}

	// Удаление старой генерации и вставка новой — одна атомарная единица:
	// частичная замена не должна быть наблюдаема.
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin team generation transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := s.teamRepo.DeleteByEvent(ctx, tx, input.EventID); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := s.teamRepo.CreateBatch(ctx, tx, generated); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit team generation: %w", err)
	}

	s.logger.Info("teams generated",
		slog.Int("event_id", input.EventID),
		slog.String("strategy", generator.GetName()),
		slog.Int("teams", len(generated)),
		slog.Int("players", len(roster)),
	)

	if s.broadcaster != nil {
		s.broadcaster.BroadcastTeamsGenerated(input.EventID, generated)
	}
	return generated, nil
}

func (s *teamService) ListTeams(ctx context.Context, eventID int) ([]*models.Team, error) {
	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return s.teamRepo.ListByEvent(ctx, eventID)
}

func (s *teamService) AdjustTeamSkill(ctx context.Context, eventID, teamIndex, delta int) error {
	team, err := s.teamRepo.GetByEventAndIndex(ctx, eventID, teamIndex)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return ErrTeamNotFound
		}
		return err
	}
	if delta == 0 || len(team.Members) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin skill adjustment transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	for _, member := range team.Members {
		if err := s.playerRepo.UpdateSkill(ctx, tx, member.ID, member.Skill+delta); err != nil {
			tx.Rollback()
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit skill adjustment: %w", err)
	}

	s.logger.Info("team skill adjusted",
		slog.Int("event_id", eventID),
		slog.Int("team_index", teamIndex),
		slog.Int("delta", delta),
		slog.Int("players", len(team.Members)),
	)
	return nil
}
