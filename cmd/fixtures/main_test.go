package main

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/leaguedesk/fixtures/internal/config"
	"github.com/leaguedesk/fixtures/internal/models"
	"github.com/leaguedesk/fixtures/internal/schedule"
	"github.com/leaguedesk/fixtures/internal/store"
)

func TestResolveConfigPath(t *testing.T) {
	t.Chdir(t.TempDir())

	if got, err := resolveConfigPath("custom.yaml"); err != nil || got != "custom.yaml" {
		t.Errorf("explicit flag: got %q, %v", got, err)
	}
	if _, err := resolveConfigPath(""); err == nil {
		t.Error("expected error without config.yaml")
	}

	if err := os.WriteFile(defaultConfigFile, []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}
	if got, err := resolveConfigPath(""); err != nil || got != defaultConfigFile {
		t.Errorf("default file: got %q, %v", got, err)
	}
}

func TestInitTemplatesLoad(t *testing.T) {
	t.Chdir(t.TempDir())

	if err := runInit(defaultConfigFile, defaultLeagueFile); err != nil {
		t.Fatalf("runInit() error: %v", err)
	}

	cfg, err := config.LoadFromFile(defaultConfigFile)
	if err != nil {
		t.Fatalf("generated config does not load: %v", err)
	}
	if cfg.Store.DataFile != defaultLeagueFile {
		t.Errorf("data_file = %q, want %q", cfg.Store.DataFile, defaultLeagueFile)
	}

	mem, err := store.LoadFile(defaultLeagueFile)
	if err != nil {
		t.Fatalf("generated league data does not load: %v", err)
	}
	league := mem.Snapshot()
	if len(league.Teams) != 6 || len(league.Fields) != 3 {
		t.Errorf("league has %d teams and %d fields", len(league.Teams), len(league.Fields))
	}

	if err := runInit(defaultConfigFile, defaultLeagueFile); err == nil {
		t.Error("expected error when files already exist")
	}
}

func TestScheduleOptions(t *testing.T) {
	cfg := config.Default()
	cfg.Slots.PlayDay = "saturday"
	cfg.Slots.First = "09:00"
	cfg.Slots.Last = "12:00"
	cfg.Slots.MaxRounds = 5
	cfg.Division.CategoryID = "sub15"
	cfg.Options.DoubleRoundRobin = true
	cfg.Options.FailurePolicy = "fail_fast"
	cfg.Options.Workers = 3

	opts, grid, err := scheduleOptions(&cfg)
	if err != nil {
		t.Fatalf("scheduleOptions() error: %v", err)
	}

	if grid.PlayDay != time.Saturday {
		t.Errorf("PlayDay = %v, want Saturday", grid.PlayDay)
	}
	if len(grid.Times) != 4 || grid.Times[3] != "12:00" {
		t.Errorf("Times = %v", grid.Times)
	}
	if opts.MaxRounds != 5 || opts.CategoryID != "sub15" || !opts.DoubleRoundRobin {
		t.Errorf("opts = %+v", opts)
	}
	if opts.FailurePolicy != schedule.FailFast || opts.Workers != 3 {
		t.Errorf("policy = %s, workers = %d", opts.FailurePolicy, opts.Workers)
	}
	if !opts.UseAvailableFieldsOnly || !opts.SkipExistingPairings {
		t.Errorf("defaults not carried over: %+v", opts)
	}
}

func TestCalendarLifecycle(t *testing.T) {
	t.Chdir(t.TempDir())
	ctx := context.Background()

	if err := runInit(defaultConfigFile, defaultLeagueFile); err != nil {
		t.Fatalf("runInit() error: %v", err)
	}

	matches := func() int {
		t.Helper()
		mem, err := store.LoadFile(defaultLeagueFile)
		if err != nil {
			t.Fatal(err)
		}
		return len(mem.Snapshot().Matches)
	}

	t.Run("generate stores and exports the calendar", func(t *testing.T) {
		err := runGenerate(ctx, defaultConfigFile, generateFlags{output: "calendar.xlsx"})
		if err != nil {
			t.Fatalf("runGenerate() error: %v", err)
		}
		if n := matches(); n != 15 {
			t.Errorf("stored fixtures = %d, want 15", n)
		}
		if _, err := os.Stat("calendar.xlsx"); err != nil {
			t.Errorf("calendar.xlsx not written: %v", err)
		}
	})

	t.Run("exported calendar validates", func(t *testing.T) {
		if err := runValidate(defaultConfigFile, "calendar.xlsx"); err != nil {
			t.Errorf("runValidate() error: %v", err)
		}
	})

	t.Run("regenerating skips stored pairings", func(t *testing.T) {
		err := runGenerate(ctx, defaultConfigFile, generateFlags{output: "calendar.xlsx"})
		if err != nil {
			t.Fatalf("runGenerate() error: %v", err)
		}
		if n := matches(); n != 15 {
			t.Errorf("stored fixtures = %d, want 15", n)
		}
	})

	t.Run("move a fixture", func(t *testing.T) {
		mem, err := store.LoadFile(defaultLeagueFile)
		if err != nil {
			t.Fatal(err)
		}
		stored := mem.Snapshot().Matches
		target := stored[0]
		var taken models.Match
		for _, m := range stored[1:] {
			if m.MatchDate.Equal(target.MatchDate) {
				taken = m
				break
			}
		}

		err = runMove(ctx, defaultConfigFile, target.ID, moveFlags{
			field: taken.FieldID,
			time:  taken.MatchTime,
			date:  taken.MatchDate.Format("2006-01-02"),
		})
		if !errors.Is(err, schedule.ErrSchedulingConflict) {
			t.Fatalf("moving onto a booked slot: err = %v", err)
		}

		if err := runMove(ctx, defaultConfigFile, target.ID, moveFlags{time: "15:00"}); err != nil {
			t.Fatalf("runMove() error: %v", err)
		}
		mem, err = store.LoadFile(defaultLeagueFile)
		if err != nil {
			t.Fatal(err)
		}
		for _, m := range mem.Snapshot().Matches {
			if m.ID == target.ID && m.MatchTime != "15:00" {
				t.Errorf("stored time = %s, want 15:00", m.MatchTime)
			}
		}

		if err := runMove(ctx, defaultConfigFile, "missing", moveFlags{}); !errors.Is(err, store.ErrMatchNotFound) {
			t.Errorf("unknown fixture: err = %v", err)
		}
	})

	t.Run("purge then generate one round", func(t *testing.T) {
		err := runGenerate(ctx, defaultConfigFile, generateFlags{
			output:    "round.xlsx",
			startDate: "2026-04-05",
			byRound:   true,
			round:     2,
			purge:     true,
		})
		if err != nil {
			t.Fatalf("runGenerate() error: %v", err)
		}
		mem, err := store.LoadFile(defaultLeagueFile)
		if err != nil {
			t.Fatal(err)
		}
		stored := mem.Snapshot().Matches
		if len(stored) != 3 {
			t.Fatalf("stored fixtures = %d, want 3", len(stored))
		}
		for _, m := range stored {
			if m.Round != 2 || m.MatchDate.Format("2006-01-02") != "2026-04-05" {
				t.Errorf("fixture round %d on %s", m.Round, m.MatchDate.Format("2006-01-02"))
			}
		}
	})

	t.Run("purge removes everything", func(t *testing.T) {
		if err := runPurge(ctx, defaultConfigFile); err != nil {
			t.Fatalf("runPurge() error: %v", err)
		}
		if n := matches(); n != 0 {
			t.Errorf("stored fixtures = %d, want 0", n)
		}
	})

	t.Run("bad start date", func(t *testing.T) {
		err := runGenerate(ctx, defaultConfigFile, generateFlags{output: "x.xlsx", startDate: "04/05/2026"})
		if err == nil {
			t.Error("expected error for malformed --start-date")
		}
	})
}

func TestMigrateNeedsPostgres(t *testing.T) {
	t.Chdir(t.TempDir())
	if err := runInit(defaultConfigFile, defaultLeagueFile); err != nil {
		t.Fatal(err)
	}
	if err := runMigrate(defaultConfigFile); err == nil {
		t.Error("expected error for memory driver")
	}
}
