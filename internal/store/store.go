// Package store holds the persistence collaborators of the calendar
// generator and their memory and PostgreSQL implementations.
package store

import (
	"context"
	"errors"

	"github.com/leaguedesk/fixtures/internal/models"
)

// ErrMatchNotFound is returned when updating a fixture that is not stored.
var ErrMatchNotFound = errors.New("match not found")

type TeamStore interface {
	ListTeamsByDivision(ctx context.Context, divisionID string) ([]models.Team, error)
}

type FieldStore interface {
	ListFields(ctx context.Context) ([]models.Field, error)
}

type CategoryStore interface {
	ListCategoriesByDivision(ctx context.Context, divisionID string) ([]models.Category, error)
}

type MatchStore interface {
	ListMatches(ctx context.Context, seasonID string) ([]models.Match, error)
	// CreateMatch persists m and returns the identifier assigned to it.
	CreateMatch(ctx context.Context, m models.Match) (string, error)
	// UpdateMatch replaces the stored fixture with the same ID.
	UpdateMatch(ctx context.Context, m models.Match) error
	// DeleteMatches removes every match of a season's division and reports
	// how many were removed.
	DeleteMatches(ctx context.Context, seasonID, divisionID string) (int, error)
}

// Store is everything the scheduler reads from and writes to.
type Store interface {
	TeamStore
	FieldStore
	CategoryStore
	MatchStore
}
