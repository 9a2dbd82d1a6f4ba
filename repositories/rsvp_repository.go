package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/clubops/session-system/models"
	"github.com/lib/pq"
)

var (
	ErrRsvpEventInvalid  = errors.New("rsvp references an unknown event")
	ErrRsvpPlayerInvalid = errors.New("rsvp references an unknown player")
)

type RsvpRepository interface {
	// Upsert сохраняет ответ; повторный ответ той же пары (event, player)
	// перезаписывает статус и отметку времени, не создавая новую строку.
	Upsert(ctx context.Context, rsvp *models.Rsvp) error
	ListByEvent(ctx context.Context, eventID int) ([]models.Rsvp, error)
	ListByEventAndStatus(ctx context.Context, eventID int, status models.RsvpStatus) ([]models.Rsvp, error)
}

type postgresRsvpRepository struct {
	db *sql.DB
}

func NewPostgresRsvpRepository(db *sql.DB) RsvpRepository {
	return &postgresRsvpRepository{db: db}
}

func (r *postgresRsvpRepository) Upsert(ctx context.Context, rsvp *models.Rsvp) error {
	query := `
		INSERT INTO rsvps (event_id, player_id, status, responded_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (event_id, player_id)
		DO UPDATE SET status = EXCLUDED.status, responded_at = NOW()
		RETURNING id, responded_at`

	err := r.db.QueryRowContext(ctx, query,
		rsvp.EventID,
		rsvp.PlayerID,
		rsvp.Status,
	).Scan(&rsvp.ID, &rsvp.RespondedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			switch pqErr.Constraint {
			case "rsvps_event_id_fkey":
				return ErrRsvpEventInvalid
			case "rsvps_player_id_fkey":
				return ErrRsvpPlayerInvalid
			}
		}
		return fmt.Errorf("failed to upsert rsvp: %w", err)
	}
	return nil
}

func (r *postgresRsvpRepository) ListByEvent(ctx context.Context, eventID int) ([]models.Rsvp, error) {
	query := `
		SELECT id, event_id, player_id, status, responded_at
		FROM rsvps
		WHERE event_id = $1
		ORDER BY responded_at ASC`
	return r.listRsvps(ctx, query, eventID)
}

func (r *postgresRsvpRepository) ListByEventAndStatus(ctx context.Context, eventID int, status models.RsvpStatus) ([]models.Rsvp, error) {
	query := `
		SELECT id, event_id, player_id, status, responded_at
		FROM rsvps
		WHERE event_id = $1 AND status = $2
		ORDER BY responded_at ASC`
	return r.listRsvps(ctx, query, eventID, status)
}

func (r *postgresRsvpRepository) listRsvps(ctx context.Context, query string, args ...interface{}) ([]models.Rsvp, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rsvps := make([]models.Rsvp, 0)
	for rows.Next() {
		var rsvp models.Rsvp
		scanErr := rows.Scan(
			&rsvp.ID,
			&rsvp.EventID,
			&rsvp.PlayerID,
			&rsvp.Status,
			&rsvp.RespondedAt,
		)
		if scanErr != nil {
			return nil, scanErr
		}
		rsvps = append(rsvps, rsvp)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}
	return rsvps, nil
}
