package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/clubops/session-system/models"
	"github.com/lib/pq"
)

// ErrTriggerAlreadyFired возвращается при попытке записать срабатывание,
// которое уже зафиксировано. Уникальный индекс (event_id, type) — единственный
// механизм, гарантирующий «не более одного раза» при перезапусках и
// перекрывающихся окнах опроса.
var ErrTriggerAlreadyFired = errors.New("trigger already fired for this event")

type TriggerLogRepository interface {
	Insert(ctx context.Context, log *models.TriggerLog) error
	Exists(ctx context.Context, eventID int, triggerType models.TriggerType) (bool, error)
}

type postgresTriggerLogRepository struct {
	db *sql.DB
}

func NewPostgresTriggerLogRepository(db *sql.DB) TriggerLogRepository {
	return &postgresTriggerLogRepository{db: db}
}

func (r *postgresTriggerLogRepository) Insert(ctx context.Context, log *models.TriggerLog) error {
	query := `
		INSERT INTO trigger_log (event_id, type)
		VALUES ($1, $2)
		RETURNING id, fired_at`

	err := r.db.QueryRowContext(ctx, query, log.EventID, log.Type).Scan(&log.ID, &log.FiredAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			if pqErr.Constraint == "trigger_log_event_id_type_key" {
				return ErrTriggerAlreadyFired
			}
		}
		return fmt.Errorf("failed to insert trigger log entry: %w", err)
	}
	return nil
}

func (r *postgresTriggerLogRepository) Exists(ctx context.Context, eventID int, triggerType models.TriggerType) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM trigger_log WHERE event_id = $1 AND type = $2)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, eventID, triggerType).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check trigger log: %w", err)
	}
	return exists, nil
}
