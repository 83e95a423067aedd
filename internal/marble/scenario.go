package marble

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type (
	// Scenario describes a timed source, expressed in ticks, and the
	// operator it is run through
	Scenario struct {
		Name        string        `yaml:"name"`
		Description string        `yaml:"description,omitempty"`
		Tick        time.Duration `yaml:"tick"`
		Operator    Operator      `yaml:"operator"`
		Events      []Event       `yaml:"events"`
	}

	// Operator names the operator under test and its duration argument,
	// in ticks
	Operator struct {
		Name  string `yaml:"name"`
		Ticks int    `yaml:"ticks,omitempty"`
	}

	// Event is a single source notification. An Event carrying an Error
	// fails the source and must be the last one
	Event struct {
		Value string `yaml:"value,omitempty"`
		Error string `yaml:"error,omitempty"`
		At    int    `yaml:"at"`
	}
)

// Error messages
var (
	ErrMissingName      = errors.New("scenario name is required")
	ErrInvalidTick      = errors.New("tick must be positive")
	ErrUnknownOperator  = errors.New("unknown operator")
	ErrNegativeTicks    = errors.New("operator ticks must not be negative")
	ErrEventOrder       = errors.New("events must be in non-decreasing tick order")
	ErrAmbiguousEvent   = errors.New("event cannot carry both a value and an error")
	ErrEventAfterFailed = errors.New("no event may follow an error event")
)

// Load reads and parses a scenario file
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a scenario, rejecting unknown fields, and validates it
func Parse(data []byte) (*Scenario, error) {
	var sc Scenario
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&sc); err != nil {
		return nil, fmt.Errorf("failed to parse scenario: %w", err)
	}
	if err := sc.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scenario %q: %w", sc.Name, err)
	}
	return &sc, nil
}

// Validate checks the Scenario for consistency
func (sc *Scenario) Validate() error {
	if sc.Name == "" {
		return ErrMissingName
	}
	if sc.Tick <= 0 {
		return ErrInvalidTick
	}
	if _, ok := operators[sc.Operator.Name]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownOperator, sc.Operator.Name)
	}
	if sc.Operator.Ticks < 0 {
		return ErrNegativeTicks
	}
	last := 0
	for i, e := range sc.Events {
		if e.At < last {
			return fmt.Errorf("%w: event %d", ErrEventOrder, i)
		}
		last = e.At
		if e.Error == "" {
			continue
		}
		if e.Value != "" {
			return fmt.Errorf("%w: event %d", ErrAmbiguousEvent, i)
		}
		if i != len(sc.Events)-1 {
			return fmt.Errorf("%w: event %d", ErrEventAfterFailed, i)
		}
	}
	return nil
}

// Duration returns the operator's duration argument
func (sc *Scenario) Duration() time.Duration {
	return time.Duration(sc.Operator.Ticks) * sc.Tick
}
