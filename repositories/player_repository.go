package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/clubops/session-system/models"
	"github.com/lib/pq"
)

var ErrPlayerNotFound = errors.New("player not found")

type PlayerRepository interface {
	GetByID(ctx context.Context, id int) (*models.Player, error)
	List(ctx context.Context) ([]models.Player, error)
	ListByIDs(ctx context.Context, ids []int) ([]models.Player, error)
	// UpdateSkill перезаписывает рейтинг одного игрока. Пакетные обновления
	// должны выполнять все вызовы в одной транзакции через exec.
	UpdateSkill(ctx context.Context, exec SQLExecutor, playerID, skill int) error
}

type postgresPlayerRepository struct {
	db *sql.DB
}

func NewPostgresPlayerRepository(db *sql.DB) PlayerRepository {
	return &postgresPlayerRepository{db: db}
}

func (r *postgresPlayerRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresPlayerRepository) GetByID(ctx context.Context, id int) (*models.Player, error) {
	query := `
		SELECT id, name, email, skill, is_admin, created_at
		FROM players
		WHERE id = $1`

	player := &models.Player{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&player.ID,
		&player.Name,
		&player.Email,
		&player.Skill,
		&player.IsAdmin,
		&player.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to scan player: %w", err)
	}
	return player, nil
}

func (r *postgresPlayerRepository) List(ctx context.Context) ([]models.Player, error) {
	query := `
		SELECT id, name, email, skill, is_admin, created_at
		FROM players
		ORDER BY name ASC`
	return r.listPlayers(ctx, query)
}

func (r *postgresPlayerRepository) ListByIDs(ctx context.Context, ids []int) ([]models.Player, error) {
	if len(ids) == 0 {
		return []models.Player{}, nil
	}
	query := `
		SELECT id, name, email, skill, is_admin, created_at
		FROM players
		WHERE id = ANY($1)`
	return r.listPlayers(ctx, query, pq.Array(ids))
}

func (r *postgresPlayerRepository) UpdateSkill(ctx context.Context, exec SQLExecutor, playerID, skill int) error {
	executor := r.getExecutor(exec)

	query := `UPDATE players SET skill = $1 WHERE id = $2`
	result, err := executor.ExecContext(ctx, query, skill, playerID)
	if err != nil {
		return fmt.Errorf("failed to update skill for player %d: %w", playerID, err)
	}

	rowsAffected, checkErr := checkRowsAffected(result)
	if checkErr != nil {
		return checkErr
	}
	if rowsAffected == 0 {
		return ErrPlayerNotFound
	}
	return nil
}

func (r *postgresPlayerRepository) listPlayers(ctx context.Context, query string, args ...interface{}) ([]models.Player, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	players := make([]models.Player, 0)
	for rows.Next() {
		var player models.Player
		scanErr := rows.Scan(
			&player.ID,
			&player.Name,
			&player.Email,
			&player.Skill,
			&player.IsAdmin,
			&player.CreatedAt,
		)
		if scanErr != nil {
			return nil, scanErr
		}
		players = append(players, player)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}
	return players, nil
}
