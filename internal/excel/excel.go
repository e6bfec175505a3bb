package excel

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/leaguedesk/fixtures/internal/models"
)

// MasterSheet is the name of the sheet holding the full calendar grid.
const MasterSheet = "Master Calendar"

// Calendar is what gets exported: the fixtures plus the teams and fields
// needed to print names instead of identifiers.
type Calendar struct {
	Teams   []models.Team
	Fields  []models.Field
	Matches []models.Match
}

// Generate creates an Excel workbook with the master calendar and per-team sheets.
func Generate(cal Calendar) (*excelize.File, error) {
	f := excelize.NewFile()

	f.SetDefaultFont("Arial")

	if err := writeMasterSheet(f, cal); err != nil {
		return nil, fmt.Errorf("writing master sheet: %w", err)
	}

	if err := writeTeamSheets(f, cal); err != nil {
		return nil, fmt.Errorf("writing team sheets: %w", err)
	}

	f.DeleteSheet("Sheet1")
	return f, nil
}

func fieldColumnName(name string, allNames []string) string {
	first, _, _ := strings.Cut(name, " ")
	count := 0
	for _, n := range allNames {
		word, _, _ := strings.Cut(n, " ")
		if word == first {
			count++
		}
	}
	if count > 1 {
		return name
	}
	return first
}

func teamNames(teams []models.Team) map[string]string {
	names := make(map[string]string, len(teams))
	for _, t := range teams {
		names[t.ID] = t.Name
	}
	return names
}

func lookup(names map[string]string, id string) string {
	if n, ok := names[id]; ok && n != "" {
		return n
	}
	return id
}

// Matchup renders a fixture cell as "Away @ Home".
func Matchup(away, home string) string {
	return fmt.Sprintf("%s @ %s", away, home)
}

func headerStyle(f *excelize.File) int {
	style, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 14, Family: "Arial"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#2E7D32"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	return style
}

func writeHeaders(f *excelize.File, sheet string, headers []string) {
	style := headerStyle(f)
	for i, h := range headers {
		f.SetCellValue(sheet, cellRef(i+1, 1), h)
		if style != 0 {
			f.SetCellStyle(sheet, cellRef(i+1, 1), cellRef(i+1, 1), style)
		}
	}
	f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})
}

func writeMasterSheet(f *excelize.File, cal Calendar) error {
	sheet := MasterSheet
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	var fieldNames []string
	fieldIndex := make(map[string]int)
	for i, field := range cal.Fields {
		fieldNames = append(fieldNames, field.Name)
		fieldIndex[field.ID] = i
	}
	fieldCols := make([]string, len(fieldNames))
	for i, name := range fieldNames {
		fieldCols[i] = fieldColumnName(name, fieldNames)
	}

	// Headers: Date, Day, Round, Time, <field1>, <field2>, ...
	headers := []string{"Date", "Day", "Round", "Time"}
	headers = append(headers, fieldCols...)
	writeHeaders(f, sheet, headers)

	names := teamNames(cal.Teams)

	type timeSlot struct {
		date time.Time
		time string
	}
	type row struct {
		rounds map[int]bool
		cells  map[int]string
	}
	rows := make(map[timeSlot]*row)
	var order []timeSlot
	for _, m := range cal.Matches {
		col, ok := fieldIndex[m.FieldID]
		if !ok {
			return fmt.Errorf("match %s is on unknown field %q", m.ID, m.FieldID)
		}
		ts := timeSlot{m.MatchDate, m.MatchTime}
		r, ok := rows[ts]
		if !ok {
			r = &row{rounds: make(map[int]bool), cells: make(map[int]string)}
			rows[ts] = r
			order = append(order, ts)
		}
		if held, ok := r.cells[col]; ok {
			return fmt.Errorf("match %s and %q share field %s on %s at %s",
				m.ID, held, cal.Fields[col].Name, m.MatchDate.Format("2006-01-02"), m.MatchTime)
		}
		r.rounds[m.Round] = true
		r.cells[col] = Matchup(lookup(names, m.AwayTeamID), lookup(names, m.HomeTeamID))
	}

	sort.Slice(order, func(i, j int) bool {
		if !order[i].date.Equal(order[j].date) {
			return order[i].date.Before(order[j].date)
		}
		return order[i].time < order[j].time
	})

	cellStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Size: 14, Family: "Arial"},
	})
	fieldCellStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Size: 14, Family: "Arial"},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})

	for i, ts := range order {
		rowNum := i + 2
		r := rows[ts]
		f.SetCellValue(sheet, cellRef(1, rowNum), ts.date.Format("01/02/2006"))
		f.SetCellValue(sheet, cellRef(2, rowNum), ts.date.Format("Mon"))
		f.SetCellValue(sheet, cellRef(3, rowNum), roundLabel(r.rounds))
		f.SetCellValue(sheet, cellRef(4, rowNum), ts.time)
		for col, v := range r.cells {
			f.SetCellValue(sheet, cellRef(col+5, rowNum), v)
		}

		if cellStyle != 0 {
			f.SetCellStyle(sheet, cellRef(1, rowNum), cellRef(4, rowNum), cellStyle)
		}
		if fieldCellStyle != 0 && len(fieldNames) > 0 {
			f.SetCellStyle(sheet, cellRef(5, rowNum), cellRef(len(headers), rowNum), fieldCellStyle)
		}
	}

	f.SetColWidth(sheet, "A", "A", 16)
	f.SetColWidth(sheet, "B", "B", 8)
	f.SetColWidth(sheet, "C", "C", 10)
	f.SetColWidth(sheet, "D", "D", 10)
	for i := range fieldNames {
		col := colLetter(i + 5)
		f.SetColWidth(sheet, col, col, 30)
	}

	return nil
}

// roundLabel prints the rounds played in one time slot, e.g. "3" or "2, 5"
// when groups are on different rounds.
func roundLabel(rounds map[int]bool) string {
	nums := make([]int, 0, len(rounds))
	for r := range rounds {
		nums = append(nums, r)
	}
	sort.Ints(nums)
	parts := make([]string, len(nums))
	for i, n := range nums {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ", ")
}

func writeTeamSheets(f *excelize.File, cal Calendar) error {
	names := teamNames(cal.Teams)
	fieldNames := make(map[string]string, len(cal.Fields))
	for _, field := range cal.Fields {
		fieldNames[field.ID] = field.Name
	}

	used := map[string]bool{MasterSheet: true}
	for _, team := range cal.Teams {
		sheet := SheetName(team.Name, used)
		used[sheet] = true
		if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("team %s: %w", team.Name, err)
		}

		headers := []string{"Date", "Day", "Time", "Field", "Opponent", "Home/Away", "Round"}
		writeHeaders(f, sheet, headers)

		type teamGame struct {
			date     time.Time
			time     string
			field    string
			opponent string
			homeAway string
			round    int
		}
		var games []teamGame
		for _, m := range cal.Matches {
			switch team.ID {
			case m.HomeTeamID:
				games = append(games, teamGame{
					date: m.MatchDate, time: m.MatchTime, field: lookup(fieldNames, m.FieldID),
					opponent: lookup(names, m.AwayTeamID), homeAway: "Home", round: m.Round,
				})
			case m.AwayTeamID:
				games = append(games, teamGame{
					date: m.MatchDate, time: m.MatchTime, field: lookup(fieldNames, m.FieldID),
					opponent: lookup(names, m.HomeTeamID), homeAway: "Away", round: m.Round,
				})
			}
		}
		sort.Slice(games, func(i, j int) bool {
			if !games[i].date.Equal(games[j].date) {
				return games[i].date.Before(games[j].date)
			}
			return games[i].time < games[j].time
		})

		cellStyle, _ := f.NewStyle(&excelize.Style{
			Font: &excelize.Font{Size: 14, Family: "Arial"},
		})

		for i, g := range games {
			row := i + 2
			f.SetCellValue(sheet, cellRef(1, row), g.date.Format("01/02/2006"))
			f.SetCellValue(sheet, cellRef(2, row), g.date.Format("Mon"))
			f.SetCellValue(sheet, cellRef(3, row), g.time)
			f.SetCellValue(sheet, cellRef(4, row), g.field)
			f.SetCellValue(sheet, cellRef(5, row), g.opponent)
			f.SetCellValue(sheet, cellRef(6, row), g.homeAway)
			f.SetCellValue(sheet, cellRef(7, row), g.round)
			if cellStyle != 0 {
				f.SetCellStyle(sheet, cellRef(1, row), cellRef(len(headers), row), cellStyle)
			}
		}

		widths := map[string]float64{"A": 16, "B": 8, "C": 10, "D": 26, "E": 24, "F": 14, "G": 10}
		for col, w := range widths {
			f.SetColWidth(sheet, col, col, w)
		}
	}

	return nil
}

// SheetName turns a team name into a valid, unused sheet name: characters
// Excel rejects are replaced and the result is cut to 31 characters.
func SheetName(name string, used map[string]bool) string {
	clean := strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '-'
		}
		return r
	}, strings.TrimSpace(name))
	if clean == "" {
		clean = "Team"
	}
	clean = truncate(clean, 31)

	candidate := clean
	for n := 2; used[candidate]; n++ {
		suffix := fmt.Sprintf(" (%d)", n)
		candidate = truncate(clean, 31-len(suffix)) + suffix
	}
	return candidate
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

func cellRef(col, row int) string {
	return fmt.Sprintf("%s%d", colLetter(col), row)
}

func colLetter(col int) string {
	result := ""
	for col > 0 {
		col--
		result = string(rune('A'+col%26)) + result
		col /= 26
	}
	return result
}
