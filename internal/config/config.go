package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Date is a wrapper around time.Time for YAML date parsing.
type Date struct {
	Time time.Time
}

func (d *Date) UnmarshalYAML(value *yaml.Node) error {
	t, err := time.Parse("2006-01-02", value.Value)
	if err != nil {
		return fmt.Errorf("invalid date %q: %w", value.Value, err)
	}
	d.Time = t
	return nil
}

func (d Date) MarshalYAML() (any, error) {
	return d.Time.Format("2006-01-02"), nil
}

type Season struct {
	ID        string `yaml:"id"`
	StartDate Date   `yaml:"start_date"`
}

type Division struct {
	ID         string `yaml:"id"`
	CategoryID string `yaml:"category_id"`
}

// Slots describes the daily grid fixtures are placed on.
type Slots struct {
	PlayDay     string `yaml:"play_day"`
	First       string `yaml:"first"`
	Last        string `yaml:"last"`
	IntervalMin int    `yaml:"interval_minutes"`
	MaxRounds   int    `yaml:"max_rounds"`
}

// Weekday returns the configured play day.
func (s Slots) Weekday() (time.Weekday, error) {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.EqualFold(d.String(), s.PlayDay) {
			return d, nil
		}
	}
	return 0, fmt.Errorf("invalid play_day %q", s.PlayDay)
}

// Times expands the grid into "HH:MM" strings from First to Last inclusive.
func (s Slots) Times() ([]string, error) {
	first, err := time.Parse("15:04", s.First)
	if err != nil {
		return nil, fmt.Errorf("invalid first slot %q: %w", s.First, err)
	}
	last, err := time.Parse("15:04", s.Last)
	if err != nil {
		return nil, fmt.Errorf("invalid last slot %q: %w", s.Last, err)
	}
	if last.Before(first) {
		return nil, fmt.Errorf("last slot %s is before first slot %s", s.Last, s.First)
	}
	if s.IntervalMin <= 0 {
		return nil, fmt.Errorf("interval_minutes must be positive, got %d", s.IntervalMin)
	}

	var times []string
	for t := first; !t.After(last); t = t.Add(time.Duration(s.IntervalMin) * time.Minute) {
		times = append(times, t.Format("15:04"))
	}
	return times, nil
}

type Options struct {
	UseAvailableFieldsOnly bool   `yaml:"use_available_fields_only"`
	UseGroups              bool   `yaml:"use_groups"`
	GroupSize              int    `yaml:"group_size"`
	GenerateByRound        bool   `yaml:"generate_by_round"`
	Round                  int    `yaml:"round"`
	DoubleRoundRobin       bool   `yaml:"double_round_robin"`
	SkipExistingPairings   bool   `yaml:"skip_existing_pairings"`
	FailurePolicy          string `yaml:"failure_policy"`
	Workers                int    `yaml:"workers"`
}

type Store struct {
	Driver   string `yaml:"driver"` // "memory" or "postgres"
	DataFile string `yaml:"data_file"`
	DSN      string `yaml:"dsn"`
}

type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type Config struct {
	Season   Season   `yaml:"season"`
	Division Division `yaml:"division"`
	Slots    Slots    `yaml:"slots"`
	Options  Options  `yaml:"options"`
	Store    Store    `yaml:"store"`
	Log      Log      `yaml:"log"`
}

// Default returns a Config carrying every default value. Keys present in a
// YAML file override these.
func Default() Config {
	return Config{
		Slots: Slots{
			PlayDay:     "sunday",
			First:       "07:00",
			Last:        "16:00",
			IntervalMin: 60,
			MaxRounds:   9,
		},
		Options: Options{
			UseAvailableFieldsOnly: true,
			GroupSize:              9,
			SkipExistingPairings:   true,
			FailurePolicy:          "best_effort",
			Workers:                1,
		},
		Store: Store{
			Driver:   "memory",
			DataFile: "league.yaml",
		},
		Log: Log{
			Level:  "info",
			Format: "console",
		},
	}
}

// LoadFromBytes parses YAML bytes into a Config and validates it.
func LoadFromBytes(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.applyEnv()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFromFile reads and parses a YAML config file. A .env file in the
// working directory is loaded first if present.
func LoadFromFile(path string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return LoadFromBytes(data)
}

func (c *Config) applyEnv() {
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		c.Store.DSN = dsn
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		c.Log.Level = level
	}
}

func (c *Config) validate() error {
	if c.Season.ID == "" {
		return fmt.Errorf("season id is required")
	}
	if c.Season.StartDate.Time.IsZero() {
		return fmt.Errorf("season start_date is required")
	}
	if c.Division.ID == "" {
		return fmt.Errorf("division id is required")
	}

	if _, err := c.Slots.Weekday(); err != nil {
		return err
	}
	if _, err := c.Slots.Times(); err != nil {
		return err
	}
	if c.Slots.MaxRounds < 1 {
		return fmt.Errorf("max_rounds must be at least 1, got %d", c.Slots.MaxRounds)
	}

	if c.Options.UseGroups && c.Options.GroupSize < 2 {
		return fmt.Errorf("group_size must be at least 2 when use_groups is set, got %d", c.Options.GroupSize)
	}
	if c.Options.Round < 0 {
		return fmt.Errorf("round must not be negative, got %d", c.Options.Round)
	}
	if c.Options.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Options.Workers)
	}
	switch c.Options.FailurePolicy {
	case "best_effort", "fail_fast":
	default:
		return fmt.Errorf("unknown failure_policy %q (want best_effort or fail_fast)", c.Options.FailurePolicy)
	}

	switch c.Store.Driver {
	case "memory":
		if c.Store.DataFile == "" {
			return fmt.Errorf("store data_file is required for the memory driver")
		}
	case "postgres":
		if c.Store.DSN == "" {
			return fmt.Errorf("store dsn (or DATABASE_URL) is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}

	return nil
}
