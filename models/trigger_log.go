package models

import "time"

// TriggerType — тип срабатывания, привязанного ко времени начала события.
type TriggerType string

const (
	TriggerDayOf          TriggerType = "DAY_OF_10AM"
	TriggerHourBefore     TriggerType = "HOUR_BEFORE"
	TriggerTeamsGenerated TriggerType = "TEAMS_GENERATED"
)

// TriggerLog — журнал дедупликации: запись означает, что срабатывание
// (event_id, type) уже произошло и повторяться не должно. Единственный
// допустимый переход состояния — появление записи; отката нет, даже если
// время начала события позже отредактировано.
type TriggerLog struct {
	ID      int         `json:"id" db:"id"`
	EventID int         `json:"event_id" db:"event_id"`
	Type    TriggerType `json:"type" db:"type"`
	FiredAt time.Time   `json:"fired_at" db:"fired_at"`
}
