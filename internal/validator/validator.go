package validator

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/leaguedesk/fixtures/internal/config"
	"github.com/leaguedesk/fixtures/internal/excel"
)

// Violation represents a calendar rule broken by an exported workbook.
type Violation struct {
	Row     int
	Type    string // "error" or "warning"
	Message string
}

// Validate reads a calendar Excel file and checks it against the config.
func Validate(cfg *config.Config, path string) ([]Violation, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	games, err := readFixtures(f)
	if err != nil {
		return nil, fmt.Errorf("reading fixtures: %w", err)
	}

	var violations []Violation

	// Hard rules
	violations = append(violations, checkSelfPairing(games)...)
	violations = append(violations, checkOneGamePerDay(games)...)

	// Soft rules
	violations = append(violations, checkPlayDay(cfg, games)...)
	violations = append(violations, checkSlotGrid(cfg, games)...)
	violations = append(violations, checkRoundCap(cfg, games)...)
	violations = append(violations, checkRepeatedPairings(cfg, games)...)

	return violations, nil
}

type parsedGame struct {
	Row    int
	Date   time.Time
	Time   string
	Field  string
	Rounds []int
	Home   string
	Away   string
}

func readFixtures(f *excelize.File) ([]parsedGame, error) {
	rows, err := f.GetRows(excel.MasterSheet)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", excel.MasterSheet, err)
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("%s is empty", excel.MasterSheet)
	}

	// Field columns follow Date, Day, Round, Time.
	const firstField = 4
	header := rows[0]
	type fieldCol struct {
		index int
		name  string
	}
	var fieldCols []fieldCol
	for i := firstField; i < len(header); i++ {
		fieldCols = append(fieldCols, fieldCol{i, header[i]})
	}

	var games []parsedGame
	for i, row := range rows {
		if i == 0 {
			continue
		}
		if len(row) < firstField || row[0] == "" {
			continue
		}

		date, err := time.Parse("01/02/2006", row[0])
		if err != nil {
			continue
		}
		rounds := parseRounds(row[2])
		timeStr := row[3]

		for _, fc := range fieldCols {
			if fc.index >= len(row) || row[fc.index] == "" {
				continue
			}
			away, home, ok := parseGameCell(row[fc.index])
			if !ok {
				continue
			}
			games = append(games, parsedGame{
				Row:    i + 1,
				Date:   date,
				Time:   timeStr,
				Field:  fc.name,
				Rounds: rounds,
				Home:   home,
				Away:   away,
			})
		}
	}

	return games, nil
}

// parseGameCell parses "Away @ Home" and returns (away, home, true).
// Returns ("", "", false) if the cell doesn't match the fixture format.
func parseGameCell(cell string) (away, home string, ok bool) {
	away, home, ok = strings.Cut(cell, " @ ")
	if !ok || away == "" || home == "" {
		return "", "", false
	}
	return away, home, true
}

func parseRounds(label string) []int {
	var rounds []int
	for _, part := range strings.Split(label, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err == nil {
			rounds = append(rounds, n)
		}
	}
	return rounds
}

func checkSelfPairing(games []parsedGame) []Violation {
	var violations []Violation
	for _, g := range games {
		if g.Home == g.Away {
			violations = append(violations, Violation{
				Row:     g.Row,
				Type:    "error",
				Message: fmt.Sprintf("%s is paired against itself on %s", g.Home, g.Date.Format("01/02")),
			})
		}
	}
	return violations
}

func checkOneGamePerDay(games []parsedGame) []Violation {
	type teamDay struct {
		team string
		date time.Time
	}
	rows := make(map[teamDay][]int)
	var order []teamDay
	add := func(team string, g parsedGame) {
		td := teamDay{team, g.Date}
		if _, ok := rows[td]; !ok {
			order = append(order, td)
		}
		rows[td] = append(rows[td], g.Row)
	}
	for _, g := range games {
		add(g.Home, g)
		if g.Away != g.Home {
			add(g.Away, g)
		}
	}

	var violations []Violation
	for _, td := range order {
		if n := len(rows[td]); n > 1 {
			violations = append(violations, Violation{
				Row:     rows[td][1],
				Type:    "error",
				Message: fmt.Sprintf("%s plays %d games on %s", td.team, n, td.date.Format("01/02")),
			})
		}
	}
	return violations
}

func checkPlayDay(cfg *config.Config, games []parsedGame) []Violation {
	day, err := cfg.Slots.Weekday()
	if err != nil {
		return nil
	}

	var violations []Violation
	for _, g := range games {
		if g.Date.Weekday() != day {
			violations = append(violations, Violation{
				Row:  g.Row,
				Type: "warning",
				Message: fmt.Sprintf("%s @ %s is on %s %s, not the %s play day",
					g.Away, g.Home, g.Date.Weekday(), g.Date.Format("01/02"), day),
			})
		}
	}
	return violations
}

func checkSlotGrid(cfg *config.Config, games []parsedGame) []Violation {
	times, err := cfg.Slots.Times()
	if err != nil {
		return nil
	}
	grid := make(map[string]bool, len(times))
	for _, t := range times {
		grid[t] = true
	}

	var violations []Violation
	for _, g := range games {
		if !grid[g.Time] {
			violations = append(violations, Violation{
				Row:     g.Row,
				Type:    "warning",
				Message: fmt.Sprintf("%s @ %s kicks off at %s, outside the %s-%s grid", g.Away, g.Home, g.Time, cfg.Slots.First, cfg.Slots.Last),
			})
		}
	}
	return violations
}

func checkRoundCap(cfg *config.Config, games []parsedGame) []Violation {
	if cfg.Options.GenerateByRound || cfg.Slots.MaxRounds <= 0 {
		return nil
	}

	seen := make(map[int]bool)
	var violations []Violation
	for _, g := range games {
		if seen[g.Row] {
			continue
		}
		seen[g.Row] = true
		for _, r := range g.Rounds {
			if r > cfg.Slots.MaxRounds {
				violations = append(violations, Violation{
					Row:     g.Row,
					Type:    "warning",
					Message: fmt.Sprintf("round %d is past the %d round cap", r, cfg.Slots.MaxRounds),
				})
			}
		}
	}
	return violations
}

// checkRepeatedPairings warns about pairings played more often than the
// number of legs allows.
func checkRepeatedPairings(cfg *config.Config, games []parsedGame) []Violation {
	legs := 1
	if cfg.Options.DoubleRoundRobin {
		legs = 2
	}

	type matchup struct{ a, b string }
	rows := make(map[matchup][]int)
	for _, g := range games {
		a, b := g.Home, g.Away
		if a > b {
			a, b = b, a
		}
		rows[matchup{a, b}] = append(rows[matchup{a, b}], g.Row)
	}

	var violations []Violation
	for mk, r := range rows {
		if len(r) > legs {
			violations = append(violations, Violation{
				Row:     r[legs],
				Type:    "warning",
				Message: fmt.Sprintf("%s vs %s is played %d times (expected at most %d)", mk.a, mk.b, len(r), legs),
			})
		}
	}
	sort.Slice(violations, func(i, j int) bool {
		return violations[i].Row < violations[j].Row
	})
	return violations
}
