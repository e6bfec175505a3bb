package schedule

import (
	"time"

	"github.com/leaguedesk/fixtures/internal/models"
)

// Grid is the set of kickoff times available on a play day.
type Grid struct {
	PlayDay time.Weekday
	Times   []string // "07:00", "08:00", ...
}

// DefaultGrid is Sunday play with hourly kickoffs from 07:00 to 16:00.
func DefaultGrid() Grid {
	return Grid{
		PlayDay: time.Sunday,
		Times: []string{
			"07:00", "08:00", "09:00", "10:00", "11:00",
			"12:00", "13:00", "14:00", "15:00", "16:00",
		},
	}
}

// dateOnly truncates t to its calendar date at UTC midnight.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// NextWeekday returns the first date on or after d that falls on day.
func NextWeekday(d time.Time, day time.Weekday) time.Time {
	d = dateOnly(d)
	offset := (int(day) - int(d.Weekday()) + 7) % 7
	return d.AddDate(0, 0, offset)
}

// RoundDate returns the date of the zero-based round index, one round per week.
func RoundDate(start time.Time, index int) time.Time {
	return dateOnly(start).AddDate(0, 0, 7*index)
}

type slotKey struct {
	field string
	date  time.Time
	time  string
}

func keyOf(m models.Match) slotKey {
	return slotKey{m.FieldID, dateOnly(m.MatchDate), m.MatchTime}
}

// Occupancy tracks which field slots are booked. It is loaded once from the
// stored fixtures and updated as new fixtures are placed.
type Occupancy struct {
	used map[slotKey]bool
}

// NewOccupancy books every existing match except the one with excludeID.
func NewOccupancy(existing []models.Match, excludeID string) *Occupancy {
	o := &Occupancy{used: make(map[slotKey]bool, len(existing))}
	for _, m := range existing {
		if excludeID != "" && m.ID == excludeID {
			continue
		}
		o.used[keyOf(m)] = true
	}
	return o
}

func (o *Occupancy) Taken(field string, date time.Time, t string) bool {
	return o.used[slotKey{field, dateOnly(date), t}]
}

func (o *Occupancy) Book(field string, date time.Time, t string) {
	o.used[slotKey{field, dateOnly(date), t}] = true
}

// FirstFree returns the earliest time in times that is free on field and date.
func (o *Occupancy) FirstFree(field string, date time.Time, times []string) (string, bool) {
	for _, t := range times {
		if !o.Taken(field, date, t) {
			return t, true
		}
	}
	return "", false
}

// FindConflict reports the stored match that already holds candidate's
// field, date and time. The match being edited (excludeID) is ignored.
func FindConflict(existing []models.Match, candidate models.Match, excludeID string) (models.Match, bool) {
	want := keyOf(candidate)
	for _, m := range existing {
		if excludeID != "" && m.ID == excludeID {
			continue
		}
		if keyOf(m) == want {
			return m, true
		}
	}
	return models.Match{}, false
}
