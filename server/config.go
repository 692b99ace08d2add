package server

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config holds the server settings, read from the environment.
type Config struct {
	Addr              string  `env:"RETIRE_ADDR" envDefault:":8080"`
	Workers           int     `env:"RETIRE_WORKERS"` // 0 runs one worker per CPU
	MaxIterations     int     `env:"RETIRE_MAX_ITERATIONS" envDefault:"100000"`
	MaxYears          int     `env:"RETIRE_MAX_YEARS" envDefault:"100"`
	MaxBodyBytes      int64   `env:"RETIRE_MAX_BODY_BYTES" envDefault:"1048576"`
	Inflation         float64 `env:"RETIRE_INFLATION" envDefault:"0.025"`
	InseeSeries       string  `env:"RETIRE_INSEE_SERIES"`
	InflationSchedule string  `env:"RETIRE_INFLATION_SCHEDULE" envDefault:"@daily"`
	Currency          string  `env:"RETIRE_CURRENCY" envDefault:"USD"`
	Assets            string  `env:"RETIRE_ASSETS"`
	LogLevel          string  `env:"LOG_LEVEL" envDefault:"info"`
}

// LoadConfig reads the configuration from the environment, after loading the
// .env file of the working directory if any.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("no .env file loaded")
	}
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	var errs []error
	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("RETIRE_WORKERS must not be negative, got %d", c.Workers))
	}
	if c.MaxIterations < 1 {
		errs = append(errs, fmt.Errorf("RETIRE_MAX_ITERATIONS must be positive, got %d", c.MaxIterations))
	}
	if c.MaxYears < 0 {
		errs = append(errs, fmt.Errorf("RETIRE_MAX_YEARS must not be negative, got %d", c.MaxYears))
	}
	if c.MaxBodyBytes < 1 {
		errs = append(errs, fmt.Errorf("RETIRE_MAX_BODY_BYTES must be positive, got %d", c.MaxBodyBytes))
	}
	if c.Inflation < 0 {
		errs = append(errs, fmt.Errorf("RETIRE_INFLATION must not be negative, got %v", c.Inflation))
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("LOG_LEVEL: %w", err))
	}
	return errors.Join(errs...)
}

// workers returns the number of goroutines per simulation.
func (c *Config) workers() int {
	if c.Workers == 0 {
		return runtime.NumCPU()
	}
	return c.Workers
}

// NewLogger returns the JSON logger of the server, at the configured level.
func (c *Config) NewLogger() (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}
	logger := logrus.New()
	logger.SetLevel(level)
	logger.SetFormatter(&logrus.JSONFormatter{})
	return logger, nil
}
