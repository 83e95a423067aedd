package config

import (
	"errors"
	"log/slog"
)

type (
	// Config conveys the properties of a Subject that one can configure
	// using Options
	Config struct {
		Logger *slog.Logger
		Replay int
	}

	// Option applies an option to a subject configuration instance
	Option func(*Config) error
)

// Defaults
const (
	DefaultReplay = 1
)

// Error messages
var (
	ErrNegativeReplay = errors.New("replay capacity must not be negative")
)

// Defaults applies the default configuration
func Defaults(c *Config) error {
	c.Replay = DefaultReplay
	c.Logger = slog.Default()
	return nil
}

// Replay sets the number of most recent messages a Subject retains for late
// observers. Zero retains nothing
func Replay(n int) Option {
	return func(c *Config) error {
		if n < 0 {
			return ErrNegativeReplay
		}
		c.Replay = n
		return nil
	}
}

// Logger sets the logger used for debug output
func Logger(l *slog.Logger) Option {
	return func(c *Config) error {
		c.Logger = l
		return nil
	}
}

// Apply builds a Config from the defaults and the provided Options, applied
// in order
func Apply(o ...Option) (*Config, error) {
	c := &Config{}
	if err := Defaults(c); err != nil {
		return nil, err
	}
	for _, opt := range o {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c, nil
}
