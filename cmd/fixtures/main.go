package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/leaguedesk/fixtures/internal/config"
	"github.com/leaguedesk/fixtures/internal/excel"
	"github.com/leaguedesk/fixtures/internal/logger"
	"github.com/leaguedesk/fixtures/internal/models"
	"github.com/leaguedesk/fixtures/internal/schedule"
	"github.com/leaguedesk/fixtures/internal/store"
	"github.com/leaguedesk/fixtures/internal/validator"
)

const (
	defaultConfigFile = "config.yaml"
	defaultLeagueFile = "league.yaml"
)

func resolveConfigPath(configFlag string) (string, error) {
	if configFlag != "" {
		return configFlag, nil
	}
	if _, err := os.Stat(defaultConfigFile); err == nil {
		return defaultConfigFile, nil
	}
	return "", fmt.Errorf("no config file found. Either create %s in the current directory or pass --config", defaultConfigFile)
}

type generateFlags struct {
	output    string
	startDate string
	byRound   bool
	round     int
	purge     bool
}

type moveFlags struct {
	date  string
	time  string
	field string
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "fixtures",
		Short: "League fixture calendar generator",
	}

	var initConfigPath, initLeaguePath string
	initCmd := &cobra.Command{
		Use:          "init",
		Short:        "Create a starter config.yaml and league.yaml in the current directory",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(initConfigPath, initLeaguePath)
		},
	}
	initCmd.Flags().StringVarP(&initConfigPath, "output", "o", defaultConfigFile, "Output path for the config file")
	initCmd.Flags().StringVar(&initLeaguePath, "league", defaultLeagueFile, "Output path for the league data file")

	var configFile string
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to config file (default: config.yaml in current directory)")

	calendarCmd := &cobra.Command{
		Use:   "calendar",
		Short: "Generate, validate, edit and purge fixture calendars",
	}

	var gen generateFlags
	generateCmd := &cobra.Command{
		Use:          "generate",
		Short:        "Generate the division calendar and export it to Excel",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, err := resolveConfigPath(configFile)
			if err != nil {
				return err
			}
			return runGenerate(cmd.Context(), configPath, gen)
		},
	}
	generateCmd.Flags().StringVarP(&gen.output, "output", "o", "calendar.xlsx", "Output Excel file path")
	generateCmd.Flags().StringVar(&gen.startDate, "start-date", "", "First match date, YYYY-MM-DD (default: season start_date)")
	generateCmd.Flags().BoolVar(&gen.byRound, "by-round", false, "Generate a single round dated on the start date")
	generateCmd.Flags().IntVar(&gen.round, "round", 0, "Round to generate with --by-round (0: the next one)")
	generateCmd.Flags().BoolVar(&gen.purge, "purge", false, "Delete the division's stored fixtures before generating")

	validateCmd := &cobra.Command{
		Use:          "validate <calendar.xlsx>",
		Short:        "Validate an exported calendar against the config",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, err := resolveConfigPath(configFile)
			if err != nil {
				return err
			}
			return runValidate(configPath, args[0])
		},
	}

	purgeCmd := &cobra.Command{
		Use:          "purge",
		Short:        "Delete the division's stored fixtures for the season",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, err := resolveConfigPath(configFile)
			if err != nil {
				return err
			}
			return runPurge(cmd.Context(), configPath)
		},
	}

	var move moveFlags
	moveCmd := &cobra.Command{
		Use:          "move <match-id>",
		Short:        "Move a stored fixture to another date, time or field",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, err := resolveConfigPath(configFile)
			if err != nil {
				return err
			}
			return runMove(cmd.Context(), configPath, args[0], move)
		},
	}
	moveCmd.Flags().StringVar(&move.date, "date", "", "New match date, YYYY-MM-DD (default: unchanged)")
	moveCmd.Flags().StringVar(&move.time, "time", "", "New kickoff HH:MM (default: first free time on the field)")
	moveCmd.Flags().StringVar(&move.field, "field", "", "New field id (default: unchanged)")

	migrateCmd := &cobra.Command{
		Use:          "migrate",
		Short:        "Apply the PostgreSQL schema migrations",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, err := resolveConfigPath(configFile)
			if err != nil {
				return err
			}
			return runMigrate(configPath)
		},
	}

	calendarCmd.AddCommand(generateCmd, validateCmd, moveCmd, purgeCmd)
	rootCmd.AddCommand(initCmd, calendarCmd, migrateCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func runInit(configPath, leaguePath string) error {
	for _, p := range []string{configPath, leaguePath} {
		if _, err := os.Stat(p); err == nil {
			return fmt.Errorf("%s already exists; remove it first or pass another path", p)
		}
	}

	if err := os.WriteFile(configPath, []byte(fmt.Sprintf(configTemplate, leaguePath)), 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	if err := os.WriteFile(leaguePath, []byte(leagueTemplate), 0644); err != nil {
		return fmt.Errorf("writing league data: %w", err)
	}

	fmt.Printf("✓ Created %s and %s\n", configPath, leaguePath)
	return nil
}

// scheduleOptions maps the config file onto scheduler options and the slot grid.
func scheduleOptions(cfg *config.Config) (schedule.Options, schedule.Grid, error) {
	day, err := cfg.Slots.Weekday()
	if err != nil {
		return schedule.Options{}, schedule.Grid{}, err
	}
	times, err := cfg.Slots.Times()
	if err != nil {
		return schedule.Options{}, schedule.Grid{}, err
	}

	opts := schedule.Options{
		UseAvailableFieldsOnly: cfg.Options.UseAvailableFieldsOnly,
		UseGroups:              cfg.Options.UseGroups,
		GroupSize:              cfg.Options.GroupSize,
		GenerateByRound:        cfg.Options.GenerateByRound,
		Round:                  cfg.Options.Round,
		DoubleRoundRobin:       cfg.Options.DoubleRoundRobin,
		MaxRounds:              cfg.Slots.MaxRounds,
		CategoryID:             cfg.Division.CategoryID,
		SkipExistingPairings:   cfg.Options.SkipExistingPairings,
		FailurePolicy:          schedule.FailurePolicy(cfg.Options.FailurePolicy),
		Workers:                cfg.Options.Workers,
	}
	return opts, schedule.Grid{PlayDay: day, Times: times}, nil
}

// openStore returns the configured store and a function that flushes and
// releases it.
func openStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (store.Store, func() error, error) {
	switch cfg.Store.Driver {
	case "postgres":
		db, err := store.Open(ctx, cfg.Store.DSN)
		if err != nil {
			return nil, nil, err
		}
		return store.NewPostgres(db, log), db.Close, nil
	default:
		mem, err := store.LoadFile(cfg.Store.DataFile)
		if err != nil {
			return nil, nil, err
		}
		return mem, func() error { return mem.SaveFile(cfg.Store.DataFile) }, nil
	}
}

func setup(configPath string) (*config.Config, *zap.Logger, error) {
	cfg, err := config.LoadFromFile(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, nil, fmt.Errorf("creating logger: %w", err)
	}
	return cfg, log, nil
}

func runGenerate(ctx context.Context, configPath string, flags generateFlags) (err error) {
	cfg, log, err := setup(configPath)
	if err != nil {
		return err
	}
	defer log.Sync()

	opts, grid, err := scheduleOptions(cfg)
	if err != nil {
		return err
	}
	if flags.byRound {
		opts.GenerateByRound = true
		opts.Round = flags.round
	}

	start := cfg.Season.StartDate.Time
	if flags.startDate != "" {
		start, err = time.Parse("2006-01-02", flags.startDate)
		if err != nil {
			return fmt.Errorf("invalid --start-date %q: %w", flags.startDate, err)
		}
	}

	st, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer func() {
		if cerr := closeStore(); cerr != nil && err == nil {
			err = fmt.Errorf("closing store: %w", cerr)
		}
	}()

	sched := schedule.New(st, grid, log)

	if flags.purge {
		n, err := sched.Purge(ctx, cfg.Season.ID, cfg.Division.ID)
		if err != nil {
			return err
		}
		fmt.Printf("Purged %d stored fixtures\n", n)
	}

	result, genErr := sched.GenerateForDivision(ctx, cfg.Season.ID, cfg.Division.ID, start, opts)
	if result == nil {
		return fmt.Errorf("generating calendar: %w", genErr)
	}

	printSummary(result)

	cal, err := loadCalendar(ctx, st, cfg)
	if err != nil {
		return err
	}
	f, err := excel.Generate(cal)
	if err != nil {
		return fmt.Errorf("generating Excel: %w", err)
	}
	if err := f.SaveAs(flags.output); err != nil {
		return fmt.Errorf("saving file: %w", err)
	}
	fmt.Printf("\n✓ Calendar saved to %s\n", flags.output)

	if genErr != nil {
		return fmt.Errorf("calendar is incomplete: %w", genErr)
	}
	if len(result.Failed) > 0 {
		return fmt.Errorf("calendar is incomplete: %d of %d fixtures failed", len(result.Failed), len(result.Created)+len(result.Failed))
	}
	return nil
}

func printSummary(result *schedule.Result) {
	if len(result.Failed) == 0 {
		fmt.Printf("✓ %d fixtures created\n", len(result.Created))
	} else {
		fmt.Fprintf(os.Stderr, "⚠ %d fixtures created, %d failed\n", len(result.Created), len(result.Failed))
		for _, f := range result.Failed {
			fmt.Fprintf(os.Stderr, "  ✗ round %d: %s vs %s: %s\n", f.Match.Round, f.Match.HomeTeamID, f.Match.AwayTeamID, f.Err)
		}
	}
	if result.Skipped > 0 {
		fmt.Printf("  %d pairings already stored were skipped\n", result.Skipped)
	}
	for _, id := range result.Unpaired {
		fmt.Fprintf(os.Stderr, "⚠ %s is alone in its group and has no fixtures\n", id)
	}

	perRound := make(map[int]int)
	dates := make(map[int]time.Time)
	for _, m := range result.Created {
		perRound[m.Round]++
		dates[m.Round] = m.MatchDate
	}
	rounds := make([]int, 0, len(perRound))
	for r := range perRound {
		rounds = append(rounds, r)
	}
	sort.Ints(rounds)

	if len(rounds) == 0 {
		return
	}
	fmt.Println("\nFixtures per round:")
	fmt.Printf("  %-6s %-12s %8s\n", "Round", "Date", "Fixtures")
	for _, r := range rounds {
		fmt.Printf("  %-6d %-12s %8d\n", r, dates[r].Format("2006-01-02"), perRound[r])
	}
}

// loadCalendar reads back everything stored for the configured season and
// division so the export includes fixtures from earlier runs.
func loadCalendar(ctx context.Context, st store.Store, cfg *config.Config) (excel.Calendar, error) {
	teams, err := st.ListTeamsByDivision(ctx, cfg.Division.ID)
	if err != nil {
		return excel.Calendar{}, fmt.Errorf("listing teams: %w", err)
	}
	fields, err := st.ListFields(ctx)
	if err != nil {
		return excel.Calendar{}, fmt.Errorf("listing fields: %w", err)
	}
	matches, err := st.ListMatches(ctx, cfg.Season.ID)
	if err != nil {
		return excel.Calendar{}, fmt.Errorf("listing matches: %w", err)
	}

	var division []models.Match
	for _, m := range matches {
		if m.DivisionID == cfg.Division.ID {
			division = append(division, m)
		}
	}
	return excel.Calendar{Teams: teams, Fields: fields, Matches: division}, nil
}

func runValidate(configPath, calendarPath string) error {
	cfg, err := config.LoadFromFile(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	violations, err := validator.Validate(cfg, calendarPath)
	if err != nil {
		return fmt.Errorf("validating: %w", err)
	}

	errors := 0
	warnings := 0
	for _, v := range violations {
		switch v.Type {
		case "error":
			errors++
			fmt.Printf("✗ Row %d: %s\n", v.Row, v.Message)
		case "warning":
			warnings++
			fmt.Printf("⚠ Row %d: %s\n", v.Row, v.Message)
		}
	}

	fmt.Printf("\nValidation complete: %d errors, %d warnings\n", errors, warnings)

	if errors > 0 {
		return fmt.Errorf("%d calendar errors found", errors)
	}
	return nil
}

func runMove(ctx context.Context, configPath, matchID string, flags moveFlags) (err error) {
	cfg, log, err := setup(configPath)
	if err != nil {
		return err
	}
	defer log.Sync()

	_, grid, err := scheduleOptions(cfg)
	if err != nil {
		return err
	}

	st, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer func() {
		if cerr := closeStore(); cerr != nil && err == nil {
			err = fmt.Errorf("closing store: %w", cerr)
		}
	}()

	matches, err := st.ListMatches(ctx, cfg.Season.ID)
	if err != nil {
		return fmt.Errorf("listing matches: %w", err)
	}
	var m models.Match
	for _, stored := range matches {
		if stored.ID == matchID {
			m = stored
			break
		}
	}
	if m.ID == "" {
		return fmt.Errorf("%w: %s in season %s", store.ErrMatchNotFound, matchID, cfg.Season.ID)
	}

	if flags.date != "" {
		m.MatchDate, err = time.Parse("2006-01-02", flags.date)
		if err != nil {
			return fmt.Errorf("invalid --date %q: %w", flags.date, err)
		}
	}
	if flags.field != "" {
		m.FieldID = flags.field
	}
	m.MatchTime = flags.time

	moved, err := schedule.New(st, grid, log).Reschedule(ctx, m)
	if err != nil {
		return err
	}
	fmt.Printf("✓ %s vs %s moved to %s %s on %s\n", moved.HomeTeamID, moved.AwayTeamID,
		moved.MatchDate.Format("2006-01-02"), moved.MatchTime, moved.FieldID)
	return nil
}

func runPurge(ctx context.Context, configPath string) (err error) {
	cfg, log, err := setup(configPath)
	if err != nil {
		return err
	}
	defer log.Sync()

	st, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer func() {
		if cerr := closeStore(); cerr != nil && err == nil {
			err = fmt.Errorf("closing store: %w", cerr)
		}
	}()

	n, err := schedule.New(st, schedule.DefaultGrid(), log).Purge(ctx, cfg.Season.ID, cfg.Division.ID)
	if err != nil {
		return err
	}
	fmt.Printf("✓ Deleted %d fixtures of division %s in season %s\n", n, cfg.Division.ID, cfg.Season.ID)
	return nil
}

func runMigrate(configPath string) error {
	cfg, err := config.LoadFromFile(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if cfg.Store.Driver != "postgres" {
		return fmt.Errorf("migrate needs the postgres store driver, config uses %q", cfg.Store.Driver)
	}
	if err := store.Migrate(cfg.Store.DSN); err != nil {
		return err
	}
	fmt.Println("✓ Database schema is up to date")
	return nil
}
