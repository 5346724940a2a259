package models

import "time"

// SeasonStatus представляет статусы сезона, соответствующие ENUM в БД.
type SeasonStatus string

const (
	SeasonStatusActive   SeasonStatus = "ACTIVE"
	SeasonStatusClosed   SeasonStatus = "CLOSED"
	SeasonStatusArchived SeasonStatus = "ARCHIVED"
)

// Season represents one league season of a single game.
type Season struct {
	ID               string       `json:"id" db:"id"`
	Game             string       `json:"game" db:"game"`
	Name             string       `json:"name" db:"name"`
	Status           SeasonStatus `json:"status" db:"status"`
	StartDate        time.Time    `json:"start_date" db:"start_date"`
	TournamentsCount int          `json:"tournaments_count" db:"tournaments_count"`
	CreatedAt        time.Time    `json:"created_at" db:"created_at"`

	// Опциональные связанные сущности (не мапятся напрямую)
	Tournaments []Tournament `json:"tournaments,omitempty" db:"-"`
}

// CanTransitionTo reports whether the status change is allowed.
// Only ACTIVE → CLOSED and CLOSED → ARCHIVED are valid; everything else,
// including transitions out of ARCHIVED, is rejected.
func (s SeasonStatus) CanTransitionTo(next SeasonStatus) bool {
	switch s {
	case SeasonStatusActive:
		return next == SeasonStatusClosed
	case SeasonStatusClosed:
		return next == SeasonStatusArchived
	default:
		return false
	}
}
