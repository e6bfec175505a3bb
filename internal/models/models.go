// Package models defines the league records the calendar generator reads and writes.
package models

import "time"

// FieldStatus is the availability of a playing field.
type FieldStatus string

const (
	FieldAvailable   FieldStatus = "available"
	FieldMaintenance FieldStatus = "maintenance"
	FieldClosed      FieldStatus = "closed"
)

// MatchStatus tracks the lifecycle of a match.
type MatchStatus string

const (
	MatchScheduled  MatchStatus = "scheduled"
	MatchInProgress MatchStatus = "in_progress"
	MatchFinished   MatchStatus = "finished"
	MatchCancelled  MatchStatus = "cancelled"
)

type Division struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

type Category struct {
	ID         string `yaml:"id"`
	Name       string `yaml:"name"`
	DivisionID string `yaml:"division_id"`
}

type Team struct {
	ID         string `yaml:"id"`
	Name       string `yaml:"name"`
	DivisionID string `yaml:"division_id"`
	CategoryID string `yaml:"category_id"`
}

type Field struct {
	ID     string      `yaml:"id"`
	Name   string      `yaml:"name"`
	Status FieldStatus `yaml:"status"`
}

// Available reports whether the field can take new fixtures.
func (f Field) Available() bool {
	return f.Status == FieldAvailable
}

// Match is a single fixture. MatchDate is a calendar date at UTC midnight
// and MatchTime is "HH:MM".
type Match struct {
	ID         string      `yaml:"id"`
	SeasonID   string      `yaml:"season_id"`
	DivisionID string      `yaml:"division_id"`
	CategoryID string      `yaml:"category_id"`
	FieldID    string      `yaml:"field_id"`
	HomeTeamID string      `yaml:"home_team_id"`
	AwayTeamID string      `yaml:"away_team_id"`
	MatchDate  time.Time   `yaml:"match_date"`
	MatchTime  string      `yaml:"match_time"`
	Round      int         `yaml:"round"`
	Group      int         `yaml:"group"` // 1-based; 0 when the division was not split
	IsPlayoff  bool        `yaml:"is_playoff"`
	Status     MatchStatus `yaml:"status"`
}
