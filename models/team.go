package models

import "time"

// Team — команда внутри события, уникальна по паре (event_id, team_index).
// Индексы идут с 1 по N в рамках одной генерации.
type Team struct {
	ID        int       `json:"id" db:"id"`
	EventID   int       `json:"event_id" db:"event_id"`
	TeamIndex int       `json:"team_index" db:"team_index"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	Members []Player `json:"members,omitempty" db:"-"`
}

// TeamMember привязывает игрока к команде. Игрок состоит ровно в одной
// команде события в рамках одной генерации.
type TeamMember struct {
	ID       int `json:"id" db:"id"`
	TeamID   int `json:"team_id" db:"team_id"`
	PlayerID int `json:"player_id" db:"player_id"`
}
