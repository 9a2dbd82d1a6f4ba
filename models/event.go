package models

import "time"

// Event представляет одно занятие клуба (одно вхождение расписания).
type Event struct {
	ID        int       `json:"id" db:"id"`
	Title     string    `json:"title" db:"title"`
	Location  string    `json:"location" db:"location"`
	StartTime time.Time `json:"start_time" db:"start_time"`
	CreatedBy *int      `json:"created_by,omitempty" db:"created_by"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// Опциональные связанные сущности (не мапятся напрямую)
	Teams []Team `json:"teams,omitempty" db:"-"`
	Rsvps []Rsvp `json:"rsvps,omitempty" db:"-"`
}
