package services

import "errors"

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	// Ресурс не найден (универсальная)
	ErrNotFound = errors.New("requested resource not found")

	// Ошибки валидации и бизнес-правил
	ErrValidationFailed   = errors.New("validation failed")
	ErrEventTitleRequired = errors.New("event title is required")
	ErrInvalidRsvpStatus  = errors.New("rsvp status must be one of yes, no, maybe")
	ErrInvalidTeamSize    = errors.New("team size must be positive")
	ErrInvalidSkillValue  = errors.New("skill value out of allowed range")

	// Ошибки, специфичные для сущностей
	ErrEventConflict        = errors.New("event with the same title and start time already exists")
	ErrEventNotFound        = errors.New("event not found")
	ErrTeamNotFound         = errors.New("team not found")
	ErrPlayerNotFound       = errors.New("player not found")
	ErrTemplateNotFound     = errors.New("recurring template not found")
	ErrSubscriptionNotFound = errors.New("subscription not found")
)
