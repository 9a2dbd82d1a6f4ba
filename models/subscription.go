package models

import "time"

// Subscription — push-подписка игрока. Поля p256dh/auth хранятся как есть и
// передаются транспорту доставки без интерпретации.
type Subscription struct {
	ID        int       `json:"id" db:"id"`
	PlayerID  *int      `json:"player_id,omitempty" db:"player_id"`
	Endpoint  string    `json:"endpoint" db:"endpoint"`
	P256dh    string    `json:"p256dh" db:"p256dh"`
	Auth      string    `json:"auth" db:"auth"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
