package store

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/leaguedesk/fixtures/internal/models"
)

// League is the on-disk layout of the memory store's data file.
type League struct {
	Divisions  []models.Division `yaml:"divisions"`
	Categories []models.Category `yaml:"categories"`
	Teams      []models.Team     `yaml:"teams"`
	Fields     []models.Field    `yaml:"fields"`
	Matches    []models.Match    `yaml:"matches"`
}

// Memory is a Store kept in process memory. Listing preserves the order
// records were loaded or created in.
type Memory struct {
	mu     sync.RWMutex
	league League
}

func NewMemory(league League) *Memory {
	return &Memory{league: league}
}

// LoadFile reads a YAML league data file. A missing file yields an empty store.
func LoadFile(path string) (*Memory, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return NewMemory(League{}), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading league data: %w", err)
	}

	var league League
	if err := yaml.Unmarshal(data, &league); err != nil {
		return nil, fmt.Errorf("parsing league data: %w", err)
	}
	return NewMemory(league), nil
}

// SaveFile writes the current contents back as YAML.
func (m *Memory) SaveFile(path string) error {
	m.mu.RLock()
	data, err := yaml.Marshal(&m.league)
	m.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("encoding league data: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing league data: %w", err)
	}
	return nil
}

// Snapshot returns a copy of the stored league.
func (m *Memory) Snapshot() League {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return League{
		Divisions:  append([]models.Division(nil), m.league.Divisions...),
		Categories: append([]models.Category(nil), m.league.Categories...),
		Teams:      append([]models.Team(nil), m.league.Teams...),
		Fields:     append([]models.Field(nil), m.league.Fields...),
		Matches:    append([]models.Match(nil), m.league.Matches...),
	}
}

func (m *Memory) ListTeamsByDivision(_ context.Context, divisionID string) ([]models.Team, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var teams []models.Team
	for _, t := range m.league.Teams {
		if t.DivisionID == divisionID {
			teams = append(teams, t)
		}
	}
	return teams, nil
}

func (m *Memory) ListFields(_ context.Context) ([]models.Field, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]models.Field(nil), m.league.Fields...), nil
}

func (m *Memory) ListCategoriesByDivision(_ context.Context, divisionID string) ([]models.Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var categories []models.Category
	for _, c := range m.league.Categories {
		if c.DivisionID == divisionID {
			categories = append(categories, c)
		}
	}
	return categories, nil
}

func (m *Memory) ListMatches(_ context.Context, seasonID string) ([]models.Match, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matches []models.Match
	for _, match := range m.league.Matches {
		if match.SeasonID == seasonID {
			matches = append(matches, match)
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		if !matches[i].MatchDate.Equal(matches[j].MatchDate) {
			return matches[i].MatchDate.Before(matches[j].MatchDate)
		}
		return matches[i].MatchTime < matches[j].MatchTime
	})
	return matches, nil
}

func (m *Memory) CreateMatch(ctx context.Context, match models.Match) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if match.HomeTeamID == match.AwayTeamID {
		return "", fmt.Errorf("match has the same home and away team %q", match.HomeTeamID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.checkSlot(match); err != nil {
		return "", err
	}

	match.ID = uuid.NewString()
	m.league.Matches = append(m.league.Matches, match)
	return match.ID, nil
}

// checkSlot rejects match when another fixture of the same season holds its
// field, date and time. Callers hold m.mu.
func (m *Memory) checkSlot(match models.Match) error {
	for _, existing := range m.league.Matches {
		if existing.ID == match.ID && match.ID != "" {
			continue
		}
		if existing.SeasonID == match.SeasonID &&
			existing.FieldID == match.FieldID &&
			existing.MatchDate.Equal(match.MatchDate) &&
			existing.MatchTime == match.MatchTime {
			return fmt.Errorf("field %s is already booked on %s at %s",
				match.FieldID, match.MatchDate.Format("2006-01-02"), match.MatchTime)
		}
	}
	return nil
}

func (m *Memory) UpdateMatch(ctx context.Context, match models.Match) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if match.HomeTeamID == match.AwayTeamID {
		return fmt.Errorf("match has the same home and away team %q", match.HomeTeamID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for i, existing := range m.league.Matches {
		if existing.ID != match.ID {
			continue
		}
		if err := m.checkSlot(match); err != nil {
			return err
		}
		m.league.Matches[i] = match
		return nil
	}
	return fmt.Errorf("%w: %s", ErrMatchNotFound, match.ID)
}

func (m *Memory) DeleteMatches(_ context.Context, seasonID, divisionID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.league.Matches[:0]
	removed := 0
	for _, match := range m.league.Matches {
		if match.SeasonID == seasonID && match.DivisionID == divisionID {
			removed++
			continue
		}
		kept = append(kept, match)
	}
	m.league.Matches = kept
	return removed, nil
}
