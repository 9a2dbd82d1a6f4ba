package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/clubops/session-system/models"
	"github.com/lib/pq"
)

var (
	ErrEventNotFound = errors.New("event not found")
	ErrEventConflict = errors.New("event with the same title and start time already exists")
)

type EventRepository interface {
	Create(ctx context.Context, event *models.Event) error
	GetByID(ctx context.Context, id int) (*models.Event, error)
	List(ctx context.Context) ([]*models.Event, error)
	ExistsByTitleAndStartTime(ctx context.Context, title string, startTime time.Time) (bool, error)
}

type postgresEventRepository struct {
	db *sql.DB
}

func NewPostgresEventRepository(db *sql.DB) EventRepository {
	return &postgresEventRepository{db: db}
}

func (r *postgresEventRepository) Create(ctx context.Context, event *models.Event) error {
	query := `
		INSERT INTO events (title, location, start_time, created_by)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		event.Title,
		event.Location,
		event.StartTime,
		event.CreatedBy,
	).Scan(&event.ID, &event.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			if pqErr.Constraint == "events_title_start_time_key" {
				return ErrEventConflict
			}
		}
		return fmt.Errorf("failed to create event: %w", err)
	}
	return nil
}

func (r *postgresEventRepository) GetByID(ctx context.Context, id int) (*models.Event, error) {
	query := `
		SELECT id, title, location, start_time, created_by, created_at
		FROM events
		WHERE id = $1`

	event := &models.Event{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&event.ID,
		&event.Title,
		&event.Location,
		&event.StartTime,
		&event.CreatedBy,
		&event.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to scan event: %w", err)
	}
	return event, nil
}

func (r *postgresEventRepository) List(ctx context.Context) ([]*models.Event, error) {
	query := `
		SELECT id, title, location, start_time, created_by, created_at
		FROM events
		ORDER BY start_time ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]*models.Event, 0)
	for rows.Next() {
		event := &models.Event{}
		scanErr := rows.Scan(
			&event.ID,
			&event.Title,
			&event.Location,
			&event.StartTime,
			&event.CreatedBy,
			&event.CreatedAt,
		)
		if scanErr != nil {
			return nil, scanErr
		}
		events = append(events, event)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

func (r *postgresEventRepository) ExistsByTitleAndStartTime(ctx context.Context, title string, startTime time.Time) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM events WHERE title = $1 AND start_time = $2)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, title, startTime).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check event existence: %w", err)
	}
	return exists, nil
}
