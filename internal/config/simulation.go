package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Simulation holds all configuration of the headless session runner.
type Simulation struct {
	LogLevel string `yaml:"log_level" env:"ROGUE2D_LOG_LEVEL"`

	// Step is the fixed dt every session step advances by.
	Step time.Duration `yaml:"step" env:"ROGUE2D_STEP"`
	// Steps limits the run; 0 runs until game over or a signal.
	Steps int `yaml:"steps" env:"ROGUE2D_STEPS"`
	// Realtime paces steps with a ticker instead of running them back to back.
	Realtime bool `yaml:"realtime" env:"ROGUE2D_REALTIME"`
	// Workers bounds how many enemies are advanced in parallel.
	Workers int `yaml:"workers" env:"ROGUE2D_WORKERS"`
	// Seed for the session roller; 0 draws from the global source.
	Seed uint64 `yaml:"seed" env:"ROGUE2D_SEED"`

	// CatalogPath is a YAML catalog; empty uses the embedded one.
	CatalogPath string `yaml:"catalog_path" env:"ROGUE2D_CATALOG"`
	Character   string `yaml:"character" env:"ROGUE2D_CHARACTER"`

	Spawns            []Spawn `yaml:"spawns"`
	ContactRadius     float64 `yaml:"contact_radius"`
	ExperiencePerKill int     `yaml:"experience_per_kill"`

	Cosmetics Cosmetics `yaml:"cosmetics"`
}

// Spawn places Count enemies of one kind on a circle around the origin.
type Spawn struct {
	Enemy  string  `yaml:"enemy"`
	Count  int     `yaml:"count"`
	Radius float64 `yaml:"radius"`
}

// Cosmetics overrides catalog presentation values. Zero keeps the catalog value.
type Cosmetics struct {
	TintFactor    float64       `yaml:"tint_factor" env:"ROGUE2D_TINT_FACTOR"`
	FlashDuration time.Duration `yaml:"flash_duration"`
	DeathFade     time.Duration `yaml:"death_fade"`
	Invincibility time.Duration `yaml:"invincibility"`
}

// DefaultSimulation returns Simulation config with sensible defaults.
func DefaultSimulation() Simulation {
	return Simulation{
		LogLevel:  "info",
		Step:      time.Second / 60,
		Steps:     60 * 60,
		Workers:   4,
		Character: "antonio",
		Spawns: []Spawn{
			{Enemy: "bat", Count: 12, Radius: 8},
			{Enemy: "skeleton", Count: 6, Radius: 10},
			{Enemy: "mummy", Count: 2, Radius: 12},
		},
		ContactRadius:     0.5,
		ExperiencePerKill: 1,
		Cosmetics: Cosmetics{
			TintFactor: 4,
		},
	}
}

// LoadSimulation loads config from a YAML file, then applies ROGUE2D_*
// environment overrides. If the file doesn't exist, defaults are used.
func LoadSimulation(path string) (Simulation, error) {
	cfg := DefaultSimulation()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parsing environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects values the session cannot run with.
func (s Simulation) Validate() error {
	if s.Step <= 0 {
		return fmt.Errorf("step must be positive, got %s", s.Step)
	}
	if s.Steps < 0 {
		return fmt.Errorf("steps must not be negative, got %d", s.Steps)
	}
	if s.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", s.Workers)
	}
	for i, sp := range s.Spawns {
		if sp.Enemy == "" || sp.Count < 0 {
			return fmt.Errorf("spawn %d: enemy and a non-negative count are required", i)
		}
	}
	return nil
}
