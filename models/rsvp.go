package models

import "time"

// RsvpStatus — ответ игрока на приглашение, соответствует CHECK-ограничению в БД.
type RsvpStatus string

const (
	RsvpYes   RsvpStatus = "yes"
	RsvpNo    RsvpStatus = "no"
	RsvpMaybe RsvpStatus = "maybe"
)

// Valid сообщает, входит ли статус в допустимый набор.
func (s RsvpStatus) Valid() bool {
	switch s {
	case RsvpYes, RsvpNo, RsvpMaybe:
		return true
	}
	return false
}

// Rsvp — ответ на приглашение, уникален по паре (event_id, player_id).
// Повторный ответ перезаписывает статус и отметку времени.
type Rsvp struct {
	ID          int        `json:"id" db:"id"`
	EventID     int        `json:"event_id" db:"event_id"`
	PlayerID    int        `json:"player_id" db:"player_id"`
	Status      RsvpStatus `json:"status" db:"status"`
	RespondedAt time.Time  `json:"responded_at" db:"responded_at"`
}
