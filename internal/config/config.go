// Package config reads the YAML run configuration for a backtest batch.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/PortBackRank/PortBackRank/types"
	"gopkg.in/yaml.v3"
)

// Ranker names accepted in the configuration.
const (
	RankerRandom  = "random"
	RankerMACross = "ma_cross"
)

// Config is the top-level run configuration.
type Config struct {
	DatabaseURL string `yaml:"database_url"`
	StartDate   string `yaml:"start_date"`
	EndDate     string `yaml:"end_date"`

	InitialCash float64 `yaml:"initial_cash"`
	Workers     int     `yaml:"workers"`
	Ranker      string  `yaml:"ranker"`

	RiskGrid     types.Grid `yaml:"risk_grid"`
	StrategyGrid types.Grid `yaml:"strategy_grid"`

	OutputCSV   string `yaml:"output_csv"`
	TimelineDir string `yaml:"timeline_dir"`
	LogLevel    string `yaml:"log_level"`
}

// Load reads and validates the YAML configuration file at the given path.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration for values that would make a batch
// unrunnable.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("database_url is required")
	}
	if _, _, err := c.Dates(); err != nil {
		return err
	}
	if c.InitialCash <= 0 {
		return fmt.Errorf("initial_cash must be positive, got %v", c.InitialCash)
	}
	if c.Ranker != RankerRandom && c.Ranker != RankerMACross {
		return fmt.Errorf("ranker must be %q or %q, got %q", RankerRandom, RankerMACross, c.Ranker)
	}
	if len(c.RiskGrid) == 0 {
		return fmt.Errorf("risk_grid is required")
	}
	if len(c.StrategyGrid) == 0 {
		return fmt.Errorf("strategy_grid is required")
	}
	return nil
}

// Dates parses the configured inclusive date range.
func (c *Config) Dates() (time.Time, time.Time, error) {
	start, err := time.Parse(time.DateOnly, c.StartDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("parse start_date: %w", err)
	}
	end, err := time.Parse(time.DateOnly, c.EndDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("parse end_date: %w", err)
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("end_date %s precedes start_date %s", c.EndDate, c.StartDate)
	}
	return start, end, nil
}
