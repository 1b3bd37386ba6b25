// Package config loads simulator settings from defaults, an optional YAML
// file, a .env file and the process environment, in that order.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

var ErrInvalidConfig = errors.New("invalid config")

// Grid is the street grid layout.
type Grid struct {
	Rows    int     `yaml:"rows"`
	Cols    int     `yaml:"cols"`
	Spacing float64 `yaml:"spacing"` // meters
}

// Config holds every knob of a simulation run.
type Config struct {
	Seed        int64   `yaml:"seed"`
	Riders      int     `yaml:"riders"`
	Ticks       int     `yaml:"ticks"`
	TickSeconds float64 `yaml:"tick_seconds"`
	StartHour   float64 `yaml:"start_hour"`
	Grid        Grid    `yaml:"grid"`

	LogLevel string `yaml:"log_level"`
	LogJSON  bool   `yaml:"log_json"`

	MongoURI string `yaml:"mongo_uri"` // empty disables persistence
	MongoDB  string `yaml:"mongo_db"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Seed:        1,
		Riders:      20,
		Ticks:       600,
		TickSeconds: 1,
		StartHour:   8,
		Grid:        Grid{Rows: 4, Cols: 4, Spacing: 200},
		LogLevel:    "info",
		MongoDB:     "ridersim",
	}
}

// Load builds a Config. path names an optional YAML file; envFiles are .env
// files to read, defaulting to ./.env. Only a missing default ./.env is
// ignored. Process environment variables win over .env values. Invalid numeric
// environment values are ignored.
func Load(path string, envFiles ...string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config YAML: %w", err)
		}
	}

	fileEnv, err := godotenv.Read(envFiles...)
	if err != nil {
		if len(envFiles) > 0 || !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("reading env file: %w", err)
		}
		fileEnv = map[string]string{}
	}
	cfg.applyEnv(func(key string) string {
		if v, ok := os.LookupEnv(key); ok {
			return v
		}
		return fileEnv[key]
	})

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := getenv("SIM_SEED"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Seed = n
		}
	}
	setInt(getenv("SIM_RIDERS"), &c.Riders)
	setInt(getenv("SIM_TICKS"), &c.Ticks)
	setFloat(getenv("SIM_TICK_SECONDS"), &c.TickSeconds)
	setFloat(getenv("SIM_START_HOUR"), &c.StartHour)
	setInt(getenv("SIM_GRID_ROWS"), &c.Grid.Rows)
	setInt(getenv("SIM_GRID_COLS"), &c.Grid.Cols)
	setFloat(getenv("SIM_GRID_SPACING"), &c.Grid.Spacing)

	if v := getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := getenv("LOG_JSON"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.LogJSON = b
		}
	}
	if v := getenv("MONGO_URI"); v != "" {
		c.MongoURI = v
	}
	if v := getenv("MONGO_DB"); v != "" {
		c.MongoDB = v
	}
}

func setInt(v string, dst *int) {
	if v == "" {
		return
	}
	if n, err := strconv.Atoi(v); err == nil {
		*dst = n
	}
}

func setFloat(v string, dst *float64) {
	if v == "" {
		return
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		*dst = f
	}
}

// Validate checks the settings for consistency.
func (c *Config) Validate() error {
	switch {
	case c.TickSeconds <= 0:
		return fmt.Errorf("tick_seconds must be positive, got %v: %w", c.TickSeconds, ErrInvalidConfig)
	case c.Riders < 0:
		return fmt.Errorf("riders must not be negative, got %d: %w", c.Riders, ErrInvalidConfig)
	case c.Ticks < 0:
		return fmt.Errorf("ticks must not be negative, got %d: %w", c.Ticks, ErrInvalidConfig)
	case c.StartHour < 0 || c.StartHour >= 24:
		return fmt.Errorf("start_hour must be in [0,24), got %v: %w", c.StartHour, ErrInvalidConfig)
	case c.Grid.Rows < 1 || c.Grid.Cols < 1 || c.Grid.Rows > 10 || c.Grid.Cols > 10:
		return fmt.Errorf("grid %dx%d must be between 1x1 and 10x10: %w", c.Grid.Rows, c.Grid.Cols, ErrInvalidConfig)
	case c.Grid.Rows*c.Grid.Cols < 2:
		return fmt.Errorf("grid needs at least two intersections: %w", ErrInvalidConfig)
	case c.Grid.Spacing <= 0:
		return fmt.Errorf("grid spacing must be positive, got %v: %w", c.Grid.Spacing, ErrInvalidConfig)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level %q: %w", c.LogLevel, ErrInvalidConfig)
	}
	return nil
}

// ConfigureLogger applies the level and format settings to l.
func (c *Config) ConfigureLogger(l *logrus.Logger) error {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return fmt.Errorf("log_level %q: %w", c.LogLevel, ErrInvalidConfig)
	}
	l.SetLevel(level)
	if c.LogJSON {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return nil
}
