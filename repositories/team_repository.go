package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/clubops/session-system/models"
	"github.com/lib/pq"
)

var ErrTeamNotFound = errors.New("team not found")

type TeamRepository interface {
	// ListByEvent возвращает команды события в порядке team_index,
	// с загруженными составами.
	ListByEvent(ctx context.Context, eventID int) ([]*models.Team, error)
	GetByEventAndIndex(ctx context.Context, eventID, teamIndex int) (*models.Team, error)
	// CreateBatch вставляет команды вместе с составами. Должен вызываться
	// внутри транзакции вместе с DeleteByEvent, чтобы частичная замена
	// никогда не была видна.
	CreateBatch(ctx context.Context, exec SQLExecutor, teams []*models.Team) error
	DeleteByEvent(ctx context.Context, exec SQLExecutor, eventID int) error
}

type postgresTeamRepository struct {
	db *sql.DB
}

func NewPostgresTeamRepository(db *sql.DB) TeamRepository {
	return &postgresTeamRepository{db: db}
}

func (r *postgresTeamRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresTeamRepository) ListByEvent(ctx context.Context, eventID int) ([]*models.Team, error) {
	query := `
		SELECT id, event_id, team_index, created_at
		FROM teams
		WHERE event_id = $1
		ORDER BY team_index ASC`

	rows, err := r.db.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	teams := make([]*models.Team, 0)
	teamIDs := make([]int64, 0)
	for rows.Next() {
		team := &models.Team{}
		if scanErr := rows.Scan(&team.ID, &team.EventID, &team.TeamIndex, &team.CreatedAt); scanErr != nil {
			return nil, scanErr
		}
		teams = append(teams, team)
		teamIDs = append(teamIDs, int64(team.ID))
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	if len(teams) == 0 {
		return teams, nil
	}
	if err = r.loadMembers(ctx, teams, teamIDs); err != nil {
		return nil, err
	}
	return teams, nil
}

func (r *postgresTeamRepository) GetByEventAndIndex(ctx context.Context, eventID, teamIndex int) (*models.Team, error) {
	query := `
		SELECT id, event_id, team_index, created_at
		FROM teams
		WHERE event_id = $1 AND team_index = $2`

	team := &models.Team{}
	err := r.db.QueryRowContext(ctx, query, eventID, teamIndex).Scan(
		&team.ID,
		&team.EventID,
		&team.TeamIndex,
		&team.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to scan team: %w", err)
	}

	if err = r.loadMembers(ctx, []*models.Team{team}, []int64{int64(team.ID)}); err != nil {
		return nil, err
	}
	return team, nil
}

func (r *postgresTeamRepository) CreateBatch(ctx context.Context, exec SQLExecutor, teams []*models.Team) error {
	executor := r.getExecutor(exec)

	teamQuery := `
		INSERT INTO teams (event_id, team_index)
		VALUES ($1, $2)
		RETURNING id, created_at`
	memberQuery := `INSERT INTO team_members (team_id, player_id) VALUES ($1, $2)`

	for _, team := range teams {
		err := executor.QueryRowContext(ctx, teamQuery, team.EventID, team.TeamIndex).
			Scan(&team.ID, &team.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert team %d for event %d: %w", team.TeamIndex, team.EventID, err)
		}
		for _, member := range team.Members {
			if _, err := executor.ExecContext(ctx, memberQuery, team.ID, member.ID); err != nil {
				return fmt.Errorf("failed to insert member %d into team %d: %w", member.ID, team.ID, err)
			}
		}
	}
	return nil
}

func (r *postgresTeamRepository) DeleteByEvent(ctx context.Context, exec SQLExecutor, eventID int) error {
	executor := r.getExecutor(exec)

	// Сначала составы, затем команды.
	memberQuery := `
		DELETE FROM team_members
		WHERE team_id IN (SELECT id FROM teams WHERE event_id = $1)`
	if _, err := executor.ExecContext(ctx, memberQuery, eventID); err != nil {
		return fmt.Errorf("failed to delete team members for event %d: %w", eventID, err)
	}

	teamQuery := `DELETE FROM teams WHERE event_id = $1`
	if _, err := executor.ExecContext(ctx, teamQuery, eventID); err != nil {
		return fmt.Errorf("failed to delete teams for event %d: %w", eventID, err)
	}
	return nil
}

func (r *postgresTeamRepository) loadMembers(ctx context.Context, teams []*models.Team, teamIDs []int64) error {
	query := `
		SELECT tm.team_id, p.id, p.name, p.email, p.skill, p.is_admin, p.created_at
		FROM team_members tm
		JOIN players p ON p.id = tm.player_id
		WHERE tm.team_id = ANY($1)
		ORDER BY tm.id ASC`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(teamIDs))
	if err != nil {
		return err
	}
	defer rows.Close()

	byID := make(map[int]*models.Team, len(teams))
	for _, team := range teams {
		byID[team.ID] = team
	}

	for rows.Next() {
		var teamID int
		var player models.Player
		scanErr := rows.Scan(
			&teamID,
			&player.ID,
			&player.Name,
			&player.Email,
			&player.Skill,
			&player.IsAdmin,
			&player.CreatedAt,
		)
		if scanErr != nil {
			return scanErr
		}
		if team, ok := byID[teamID]; ok {
			team.Members = append(team.Members, player)
		}
	}
	return rows.Err()
}
