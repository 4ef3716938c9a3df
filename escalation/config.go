// Copyright (c) 2023 Colin McRae

// Package escalation retries a fixed-precision computation at increasing
// precision and degree until it succeeds or the configured ceilings are
// reached. The schedule is non-decreasing in both coordinates and visits each
// (precision, degree) pair at most once.
package escalation

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Defaults for Config
const (
	DefaultStartingPrecision  = 1000
	DefaultStartingDegree     = 10
	DefaultPrecisionIncrement = 5000
	DefaultDegreeIncrement    = 5
	DefaultMaxPrecision       = 1000000
	DefaultMaxDegree          = 100
)

var configValidate = validator.New()

// Config is the search space of an escalating computation. It is passed by
// value and never modified.
type Config struct {
	StartingPrecision  uint `yaml:"starting_precision" validate:"gte=53"`
	StartingDegree     int  `yaml:"starting_degree" validate:"gte=1"`
	PrecisionIncrement uint `yaml:"precision_increment"`
	DegreeIncrement    int  `yaml:"degree_increment" validate:"gte=0"`
	MaxPrecision       uint `yaml:"max_precision" validate:"gtefield=StartingPrecision"`
	MaxDegree          int  `yaml:"max_degree" validate:"gtefield=StartingDegree"`

	// Verbose logs each attempt at Info rather than Debug level
	Verbose bool `yaml:"verbose"`

	// UseLastKnownFailed skips pairs already recorded as failures
	UseLastKnownFailed bool `yaml:"use_last_known_failed"`

	// ForceRecompute recomputes invariants that are already known
	ForceRecompute bool `yaml:"force_recompute"`
}

// DefaultConfig returns the default search space: precision 1000 to 10^6 bits
// in steps of 5000 and degree 10 to 100 in steps of 5
func DefaultConfig() Config {
	return Config{
		StartingPrecision:  DefaultStartingPrecision,
		StartingDegree:     DefaultStartingDegree,
		PrecisionIncrement: DefaultPrecisionIncrement,
		DegreeIncrement:    DefaultDegreeIncrement,
		MaxPrecision:       DefaultMaxPrecision,
		MaxDegree:          DefaultMaxDegree,
	}
}

// FixedConfig returns a config with the single pair (prec, degree)
func FixedConfig(prec uint, degree int) Config {
	return Config{
		StartingPrecision: prec,
		StartingDegree:    degree,
		MaxPrecision:      prec,
		MaxDegree:         degree,
	}
}

// Validate checks that the starting values are usable and do not exceed the
// ceilings
func (c Config) Validate() error {
	if err := configValidate.Struct(c); err != nil {
		return fmt.Errorf("Config.Validate: %w", err)
	}
	return nil
}

// Schedule returns the (precision, degree) pairs Run would attempt, in order,
// when every attempt fails
func (c Config) Schedule() []Key {
	var retVal []Key
	key := Key{Precision: c.StartingPrecision, Degree: c.StartingDegree}
	for {
		retVal = append(retVal, key)
		next, ok := c.next(key)
		if !ok {
			return retVal
		}
		key = next
	}
}

// next returns the pair after key, clamping each coordinate to its ceiling,
// and false if key is the last pair
func (c Config) next(key Key) (Key, bool) {
	if key.Precision >= c.MaxPrecision && key.Degree >= c.MaxDegree {
		return key, false
	}
	next := Key{
		Precision: key.Precision + c.PrecisionIncrement,
		Degree:    key.Degree + c.DegreeIncrement,
	}
	if next.Precision > c.MaxPrecision {
		next.Precision = c.MaxPrecision
	}
	if next.Degree > c.MaxDegree {
		next.Degree = c.MaxDegree
	}
	if next == key {
		// Zero increments below the ceiling never reach it
		return key, false
	}
	return next, true
}
