package models

import "time"

// Player представляет участника клуба. Skill меняется только двумя путями:
// ручная корректировка администратором и пересчёт рейтинга после матчей.
type Player struct {
	ID        int       `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	Skill     int       `json:"skill" db:"skill"`
	IsAdmin   bool      `json:"is_admin" db:"is_admin"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
