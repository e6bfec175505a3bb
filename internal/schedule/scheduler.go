package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/leaguedesk/fixtures/internal/models"
	"github.com/leaguedesk/fixtures/internal/store"
	"github.com/leaguedesk/fixtures/internal/strategy"
)

var (
	ErrInsufficientTeams  = errors.New("at least 2 teams are required")
	ErrNoEligibleFields   = errors.New("no eligible fields")
	ErrSchedulingConflict = errors.New("no free slot left")
)

// FailurePolicy decides what happens when persisting one fixture fails.
type FailurePolicy string

const (
	// BestEffort records the failure and keeps creating the remaining fixtures.
	BestEffort FailurePolicy = "best_effort"
	// FailFast stops at the first failed fixture and returns its error.
	FailFast FailurePolicy = "fail_fast"
)

type Options struct {
	UseAvailableFieldsOnly bool
	UseGroups              bool
	GroupSize              int
	// GenerateByRound creates a single round, dated exactly on the start
	// date. Round selects it; 0 picks the round after the highest one
	// already stored for the group, wrapping to 1 after the last.
	GenerateByRound      bool
	Round                int
	DoubleRoundRobin     bool
	MaxRounds            int
	CategoryID           string
	SkipExistingPairings bool
	FailurePolicy        FailurePolicy
	Workers              int
}

func DefaultOptions() Options {
	return Options{
		UseAvailableFieldsOnly: true,
		GroupSize:              9,
		MaxRounds:              9,
		SkipExistingPairings:   true,
		FailurePolicy:          BestEffort,
		Workers:                1,
	}
}

// Failure is a fixture the store refused to create.
type Failure struct {
	Match models.Match
	Err   error
}

// Result is the outcome of one generation call. Created holds the persisted
// fixtures with their store identifiers, in calendar order.
type Result struct {
	Created  []models.Match
	Failed   []Failure
	Skipped  int      // pairings already stored for the season
	Unpaired []string // teams alone in their group, left without fixtures
}

// PlanInput is everything BuildPlan needs. CategoryID, when set, is stamped
// on every fixture; otherwise the home team's category is used.
type PlanInput struct {
	SeasonID   string
	DivisionID string
	CategoryID string
	Teams      []models.Team
	Fields     []models.Field
	Existing   []models.Match
	StartDate  time.Time
	Grid       Grid
	Options    Options
}

// Plan is the placed but not yet persisted calendar.
type Plan struct {
	StartDate time.Time
	Groups    int
	Matches   []models.Match
	Skipped   int
	Unpaired  []string
}

// BuildPlan pairs the teams and places every fixture on a date, field and
// time. It does not touch the store.
func BuildPlan(in PlanInput) (*Plan, error) {
	opts := in.Options

	teams := in.Teams
	if opts.CategoryID != "" {
		teams = nil
		for _, t := range in.Teams {
			if t.CategoryID == opts.CategoryID {
				teams = append(teams, t)
			}
		}
	}
	if len(teams) < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrInsufficientTeams, len(teams))
	}

	fields := eligibleFields(in.Fields, opts.UseAvailableFieldsOnly)
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: %d fields known, available only = %v",
			ErrNoEligibleFields, len(in.Fields), opts.UseAvailableFieldsOnly)
	}

	strat, err := strategy.Get(strategyName(opts))
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(teams))
	byID := make(map[string]models.Team, len(teams))
	for i, t := range teams {
		ids[i] = t.ID
		byID[t.ID] = t
	}

	groups := [][]string{ids}
	if opts.UseGroups && opts.GroupSize > 0 && len(ids) > opts.GroupSize {
		groups = strategy.Partition(ids, opts.GroupSize)
	}

	start := NextWeekday(in.StartDate, in.Grid.PlayDay)
	occupied := NewOccupancy(in.Existing, "")

	var stored map[string]bool
	if opts.SkipExistingPairings {
		stored = storedPairings(in.Existing, opts.DoubleRoundRobin)
	}

	plan := &Plan{StartDate: start, Groups: len(groups)}

	for gi, group := range groups {
		rounds := strat.Rounds(group)
		if len(rounds) == 0 {
			plan.Unpaired = append(plan.Unpaired, group...)
			continue
		}

		groupNum := 0
		if len(groups) > 1 {
			groupNum = gi + 1
		}

		if opts.GenerateByRound {
			n := opts.Round
			if n == 0 {
				n = nextRound(in.Existing, in.DivisionID, group, len(rounds))
			}
			if n < 1 || n > len(rounds) {
				return nil, fmt.Errorf("round %d is out of range: group %d has %d rounds", n, gi+1, len(rounds))
			}
			rounds = rounds[n-1 : n]
		} else if opts.MaxRounds > 0 && len(rounds) > opts.MaxRounds {
			rounds = rounds[:opts.MaxRounds]
		}

		for _, round := range rounds {
			date := start
			if !opts.GenerateByRound {
				date = RoundDate(start, round.Number-1)
			}

			k := 0
			for _, g := range round.Games {
				key := pairingKey(g.Home, g.Away, opts.DoubleRoundRobin)
				if stored[key] {
					plan.Skipped++
					continue
				}

				field := fields[k%len(fields)]
				k++
				kickoff, ok := occupied.FirstFree(field.ID, date, in.Grid.Times)
				if !ok {
					return nil, fmt.Errorf("%w: field %s on %s (round %d)",
						ErrSchedulingConflict, field.Name, date.Format("2006-01-02"), round.Number)
				}
				occupied.Book(field.ID, date, kickoff)

				category := in.CategoryID
				if category == "" {
					category = byID[g.Home].CategoryID
				}

				plan.Matches = append(plan.Matches, models.Match{
					SeasonID:   in.SeasonID,
					DivisionID: in.DivisionID,
					CategoryID: category,
					FieldID:    field.ID,
					HomeTeamID: g.Home,
					AwayTeamID: g.Away,
					MatchDate:  date,
					MatchTime:  kickoff,
					Round:      round.Number,
					Group:      groupNum,
					IsPlayoff:  false,
					Status:     models.MatchScheduled,
				})
			}
		}
	}

	return plan, nil
}

func strategyName(opts Options) string {
	if opts.DoubleRoundRobin {
		return "double_round_robin"
	}
	return "single_round_robin"
}

func eligibleFields(fields []models.Field, availableOnly bool) []models.Field {
	if !availableOnly {
		return fields
	}
	var eligible []models.Field
	for _, f := range fields {
		if f.Available() {
			eligible = append(eligible, f)
		}
	}
	return eligible
}

// pairingKey identifies a pairing. Double round-robins keep the home/away
// order since each leg is its own fixture.
func pairingKey(home, away string, ordered bool) string {
	if !ordered && home > away {
		home, away = away, home
	}
	return home + "\x00" + away
}

func storedPairings(existing []models.Match, ordered bool) map[string]bool {
	pairs := make(map[string]bool, len(existing))
	for _, m := range existing {
		if m.IsPlayoff {
			continue
		}
		pairs[pairingKey(m.HomeTeamID, m.AwayTeamID, ordered)] = true
	}
	return pairs
}

func nextRound(existing []models.Match, divisionID string, group []string, total int) int {
	members := make(map[string]bool, len(group))
	for _, id := range group {
		members[id] = true
	}
	last := 0
	for _, m := range existing {
		if m.DivisionID != divisionID || m.IsPlayoff {
			continue
		}
		if members[m.HomeTeamID] && m.Round > last {
			last = m.Round
		}
	}
	return last%total + 1
}

// Scheduler generates calendars and persists them through a store.
type Scheduler struct {
	store  store.Store
	grid   Grid
	logger *zap.Logger
}

func New(st store.Store, grid Grid, logger *zap.Logger) *Scheduler {
	return &Scheduler{store: st, grid: grid, logger: logger}
}

// GenerateForDivision loads the division's teams and generates their calendar.
func (s *Scheduler) GenerateForDivision(ctx context.Context, seasonID, divisionID string, startDate time.Time, opts Options) (*Result, error) {
	teams, err := s.store.ListTeamsByDivision(ctx, divisionID)
	if err != nil {
		return nil, fmt.Errorf("listing teams: %w", err)
	}
	return s.GenerateCalendar(ctx, seasonID, divisionID, teams, startDate, opts)
}

// GenerateCalendar plans the fixtures for teams and creates them in the
// store. Fixtures are appended; nothing stored is removed. Validation and
// slot errors are returned before any fixture is written.
func (s *Scheduler) GenerateCalendar(ctx context.Context, seasonID, divisionID string, teams []models.Team, startDate time.Time, opts Options) (*Result, error) {
	fields, err := s.store.ListFields(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing fields: %w", err)
	}
	existing, err := s.store.ListMatches(ctx, seasonID)
	if err != nil {
		return nil, fmt.Errorf("listing matches: %w", err)
	}

	category := opts.CategoryID
	if category == "" {
		categories, err := s.store.ListCategoriesByDivision(ctx, divisionID)
		if err != nil {
			return nil, fmt.Errorf("listing categories: %w", err)
		}
		if len(categories) > 0 {
			category = categories[0].ID
		}
	}

	plan, err := BuildPlan(PlanInput{
		SeasonID:   seasonID,
		DivisionID: divisionID,
		CategoryID: category,
		Teams:      teams,
		Fields:     fields,
		Existing:   existing,
		StartDate:  startDate,
		Grid:       s.grid,
		Options:    opts,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("calendar planned",
		zap.String("season_id", seasonID),
		zap.String("division_id", divisionID),
		zap.String("start_date", plan.StartDate.Format("2006-01-02")),
		zap.Int("teams", len(teams)),
		zap.Int("groups", plan.Groups),
		zap.Int("fixtures", len(plan.Matches)),
		zap.Int("skipped", plan.Skipped))
	for _, id := range plan.Unpaired {
		s.logger.Warn("team left without fixtures",
			zap.String("team_id", id),
			zap.String("division_id", divisionID),
			zap.Int("group_size", opts.GroupSize))
	}

	result, err := s.persist(ctx, plan.Matches, opts)
	result.Skipped = plan.Skipped
	result.Unpaired = plan.Unpaired
	return result, err
}

// Reschedule moves a stored fixture to m's field, date and time. When
// m.MatchTime is empty the first free time of the grid on that field and
// date is taken. The fixture's own current slot does not count as booked.
func (s *Scheduler) Reschedule(ctx context.Context, m models.Match) (models.Match, error) {
	if m.ID == "" {
		return models.Match{}, errors.New("rescheduling needs the fixture id")
	}
	existing, err := s.store.ListMatches(ctx, m.SeasonID)
	if err != nil {
		return models.Match{}, fmt.Errorf("listing matches: %w", err)
	}

	m.MatchDate = dateOnly(m.MatchDate)
	if m.MatchTime == "" {
		kickoff, ok := NewOccupancy(existing, m.ID).FirstFree(m.FieldID, m.MatchDate, s.grid.Times)
		if !ok {
			return models.Match{}, fmt.Errorf("%w: field %s on %s",
				ErrSchedulingConflict, m.FieldID, m.MatchDate.Format("2006-01-02"))
		}
		m.MatchTime = kickoff
	} else if other, ok := FindConflict(existing, m, m.ID); ok {
		return models.Match{}, fmt.Errorf("%w: field %s on %s at %s is held by %s vs %s",
			ErrSchedulingConflict, m.FieldID, m.MatchDate.Format("2006-01-02"), m.MatchTime,
			other.HomeTeamID, other.AwayTeamID)
	}

	if err := s.store.UpdateMatch(ctx, m); err != nil {
		return models.Match{}, fmt.Errorf("updating match %s: %w", m.ID, err)
	}
	s.logger.Info("match rescheduled",
		zap.String("match_id", m.ID),
		zap.String("field_id", m.FieldID),
		zap.String("match_date", m.MatchDate.Format("2006-01-02")),
		zap.String("match_time", m.MatchTime))
	return m, nil
}

// Purge deletes the season's fixtures for a division.
func (s *Scheduler) Purge(ctx context.Context, seasonID, divisionID string) (int, error) {
	n, err := s.store.DeleteMatches(ctx, seasonID, divisionID)
	if err != nil {
		return 0, fmt.Errorf("purging matches: %w", err)
	}
	s.logger.Info("calendar purged",
		zap.String("season_id", seasonID),
		zap.String("division_id", divisionID),
		zap.Int("deleted", n))
	return n, nil
}

func (s *Scheduler) persist(ctx context.Context, planned []models.Match, opts Options) (*Result, error) {
	if opts.Workers > 1 {
		return s.persistConcurrent(ctx, planned, opts)
	}

	result := &Result{}
	for _, m := range planned {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		id, err := s.store.CreateMatch(ctx, m)
		if err != nil {
			s.logFailure(m, err)
			result.Failed = append(result.Failed, Failure{Match: m, Err: err})
			if opts.FailurePolicy == FailFast {
				return result, describe(m, err)
			}
			continue
		}
		m.ID = id
		result.Created = append(result.Created, m)
	}
	return result, nil
}

// persistConcurrent writes with at most opts.Workers calls in flight. Every
// slot was assigned during planning, so writers never compete for one.
func (s *Scheduler) persistConcurrent(ctx context.Context, planned []models.Match, opts Options) (*Result, error) {
	ids := make([]string, len(planned))
	errs := make([]error, len(planned))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for i, m := range planned {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			id, err := s.store.CreateMatch(gctx, m)
			if err != nil {
				s.logFailure(m, err)
				errs[i] = err
				if opts.FailurePolicy == FailFast {
					return describe(m, err)
				}
				return nil
			}
			ids[i] = id
			return nil
		})
	}
	waitErr := g.Wait()

	result := &Result{}
	for i, m := range planned {
		switch {
		case errs[i] != nil:
			result.Failed = append(result.Failed, Failure{Match: m, Err: errs[i]})
		case ids[i] != "":
			m.ID = ids[i]
			result.Created = append(result.Created, m)
		}
	}

	if waitErr != nil {
		return result, waitErr
	}
	return result, ctx.Err()
}

func (s *Scheduler) logFailure(m models.Match, err error) {
	s.logger.Error("failed to create match",
		zap.String("match_home", m.HomeTeamID),
		zap.String("match_away", m.AwayTeamID),
		zap.String("field_id", m.FieldID),
		zap.String("match_date", m.MatchDate.Format("2006-01-02")),
		zap.String("match_time", m.MatchTime),
		zap.Int("round", m.Round),
		zap.Error(err))
}

func describe(m models.Match, err error) error {
	return fmt.Errorf("creating match %s vs %s (round %d): %w", m.HomeTeamID, m.AwayTeamID, m.Round, err)
}
