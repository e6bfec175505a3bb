package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/leaguedesk/fixtures/internal/models"
)

// Open connects to PostgreSQL and verifies the connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return db, nil
}

// Postgres is a Store backed by the tables in migrations/.
type Postgres struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewPostgres(db *sql.DB, logger *zap.Logger) *Postgres {
	return &Postgres{db: db, logger: logger}
}

func (p *Postgres) ListTeamsByDivision(ctx context.Context, divisionID string) ([]models.Team, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, name, division_id, COALESCE(category_id, '')
		FROM teams
		WHERE division_id = $1
		ORDER BY created_at, id`, divisionID)
	if err != nil {
		return nil, fmt.Errorf("querying teams: %w", err)
	}
	defer rows.Close()

	var teams []models.Team
	for rows.Next() {
		var t models.Team
		if err := rows.Scan(&t.ID, &t.Name, &t.DivisionID, &t.CategoryID); err != nil {
			return nil, fmt.Errorf("scanning team: %w", err)
		}
		teams = append(teams, t)
	}
	return teams, rows.Err()
}

func (p *Postgres) ListFields(ctx context.Context) ([]models.Field, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, name, status
		FROM fields
		ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("querying fields: %w", err)
	}
	defer rows.Close()

	var fields []models.Field
	for rows.Next() {
		var f models.Field
		var status string
		if err := rows.Scan(&f.ID, &f.Name, &status); err != nil {
			return nil, fmt.Errorf("scanning field: %w", err)
		}
		f.Status = models.FieldStatus(status)
		fields = append(fields, f)
	}
	return fields, rows.Err()
}

func (p *Postgres) ListCategoriesByDivision(ctx context.Context, divisionID string) ([]models.Category, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, name, division_id
		FROM categories
		WHERE division_id = $1
		ORDER BY created_at, id`, divisionID)
	if err != nil {
		return nil, fmt.Errorf("querying categories: %w", err)
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.DivisionID); err != nil {
			return nil, fmt.Errorf("scanning category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (p *Postgres) ListMatches(ctx context.Context, seasonID string) ([]models.Match, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, season_id, division_id, COALESCE(category_id, ''), field_id,
		       home_team_id, away_team_id, match_date, match_time, round,
		       group_number, is_playoff, status
		FROM matches
		WHERE season_id = $1
		ORDER BY match_date, match_time, id`, seasonID)
	if err != nil {
		return nil, fmt.Errorf("querying matches: %w", err)
	}
	defer rows.Close()

	var matches []models.Match
	for rows.Next() {
		var m models.Match
		var status string
		var date time.Time
		if err := rows.Scan(&m.ID, &m.SeasonID, &m.DivisionID, &m.CategoryID, &m.FieldID,
			&m.HomeTeamID, &m.AwayTeamID, &date, &m.MatchTime, &m.Round,
			&m.Group, &m.IsPlayoff, &status); err != nil {
			return nil, fmt.Errorf("scanning match: %w", err)
		}
		m.MatchDate = time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
		m.Status = models.MatchStatus(status)
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

func (p *Postgres) CreateMatch(ctx context.Context, m models.Match) (string, error) {
	var category any
	if m.CategoryID != "" {
		category = m.CategoryID
	}

	var id string
	err := p.db.QueryRowContext(ctx, `
		INSERT INTO matches (season_id, division_id, category_id, field_id,
		                     home_team_id, away_team_id, match_date, match_time,
		                     round, group_number, is_playoff, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id`,
		m.SeasonID, m.DivisionID, category, m.FieldID,
		m.HomeTeamID, m.AwayTeamID, m.MatchDate.Format("2006-01-02"), m.MatchTime,
		m.Round, m.Group, m.IsPlayoff, string(m.Status),
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("inserting match: %w", err)
	}

	p.logger.Debug("match created",
		zap.String("match_id", id),
		zap.String("field_id", m.FieldID),
		zap.String("match_date", m.MatchDate.Format("2006-01-02")),
		zap.String("match_time", m.MatchTime))
	return id, nil
}

func (p *Postgres) UpdateMatch(ctx context.Context, m models.Match) error {
	var category any
	if m.CategoryID != "" {
		category = m.CategoryID
	}

	res, err := p.db.ExecContext(ctx, `
		UPDATE matches
		SET field_id = $2, match_date = $3, match_time = $4, category_id = $5,
		    round = $6, group_number = $7, status = $8
		WHERE id = $1`,
		m.ID, m.FieldID, m.MatchDate.Format("2006-01-02"), m.MatchTime, category,
		m.Round, m.Group, string(m.Status),
	)
	if err != nil {
		return fmt.Errorf("updating match: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("counting updated matches: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrMatchNotFound, m.ID)
	}

	p.logger.Debug("match updated",
		zap.String("match_id", m.ID),
		zap.String("field_id", m.FieldID),
		zap.String("match_date", m.MatchDate.Format("2006-01-02")),
		zap.String("match_time", m.MatchTime))
	return nil
}

func (p *Postgres) DeleteMatches(ctx context.Context, seasonID, divisionID string) (int, error) {
	res, err := p.db.ExecContext(ctx,
		`DELETE FROM matches WHERE season_id = $1 AND division_id = $2`,
		seasonID, divisionID)
	if err != nil {
		return 0, fmt.Errorf("deleting matches: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting deleted matches: %w", err)
	}
	return int(n), nil
}
