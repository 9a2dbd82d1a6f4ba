package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/clubops/session-system/models"
	"github.com/lib/pq"
)

var ErrSubscriptionNotFound = errors.New("subscription not found")

type SubscriptionRepository interface {
	Create(ctx context.Context, sub *models.Subscription) error
	ListAll(ctx context.Context) ([]models.Subscription, error)
	ListByPlayer(ctx context.Context, playerID int) ([]models.Subscription, error)
	ListByPlayers(ctx context.Context, playerIDs []int) ([]models.Subscription, error)
	DeleteByEndpoint(ctx context.Context, endpoint string) error
}

type postgresSubscriptionRepository struct {
	db *sql.DB
}

func NewPostgresSubscriptionRepository(db *sql.DB) SubscriptionRepository {
	return &postgresSubscriptionRepository{db: db}
}

func (r *postgresSubscriptionRepository) Create(ctx context.Context, sub *models.Subscription) error {
	query := `
		INSERT INTO subscriptions (player_id, endpoint, p256dh, auth)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		sub.PlayerID,
		sub.Endpoint,
		sub.P256dh,
		sub.Auth,
	).Scan(&sub.ID, &sub.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create subscription: %w", err)
	}
	return nil
}

func (r *postgresSubscriptionRepository) ListAll(ctx context.Context) ([]models.Subscription, error) {
	query := `
		SELECT id, player_id, endpoint, p256dh, auth, created_at
		FROM subscriptions`
	return r.listSubscriptions(ctx, query)
}

func (r *postgresSubscriptionRepository) ListByPlayer(ctx context.Context, playerID int) ([]models.Subscription, error) {
	query := `
		SELECT id, player_id, endpoint, p256dh, auth, created_at
		FROM subscriptions
		WHERE player_id = $1`
	return r.listSubscriptions(ctx, query, playerID)
}

func (r *postgresSubscriptionRepository) ListByPlayers(ctx context.Context, playerIDs []int) ([]models.Subscription, error) {
	if len(playerIDs) == 0 {
		return []models.Subscription{}, nil
	}
	query := `
		SELECT id, player_id, endpoint, p256dh, auth, created_at
		FROM subscriptions
		WHERE player_id = ANY($1)`
	return r.listSubscriptions(ctx, query, pq.Array(playerIDs))
}

func (r *postgresSubscriptionRepository) DeleteByEndpoint(ctx context.Context, endpoint string) error {
	query := `DELETE FROM subscriptions WHERE endpoint = $1`
	result, err := r.db.ExecContext(ctx, query, endpoint)
	if err != nil {
		return err
	}

	rowsAffected, checkErr := checkRowsAffected(result)
	if checkErr != nil {
		return checkErr
	}
	if rowsAffected == 0 {
		return ErrSubscriptionNotFound
	}
	return nil
}

func (r *postgresSubscriptionRepository) listSubscriptions(ctx context.Context, query string, args ...interface{}) ([]models.Subscription, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	subs := make([]models.Subscription, 0)
	for rows.Next() {
		var sub models.Subscription
		scanErr := rows.Scan(
			&sub.ID,
			&sub.PlayerID,
			&sub.Endpoint,
			&sub.P256dh,
			&sub.Auth,
			&sub.CreatedAt,
		)
		if scanErr != nil {
			return nil, scanErr
		}
		subs = append(subs, sub)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}
	return subs, nil
}
