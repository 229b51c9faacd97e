package threshold

import (
	"github.com/matzehuels/medianshift/pkg/errors"
)

// Default search tolerances.
const (
	// DefaultPrecision is the smallest step FindFirstChange still takes.
	DefaultPrecision = 0.01

	// DefaultTolerance is the relative distance to the upper limit at which
	// FindAllChanges stops.
	DefaultTolerance = 0.001
)

// Config holds the numeric tolerances of both search procedures.
type Config struct {
	Precision float64
	Tolerance float64
}

// DefaultConfig returns the default tolerances.
func DefaultConfig() Config {
	return Config{Precision: DefaultPrecision, Tolerance: DefaultTolerance}
}

// ValidateAndSetDefaults fills zero values and rejects negative or NaN ones.
func (c *Config) ValidateAndSetDefaults() error {
	if c.Precision == 0 {
		c.Precision = DefaultPrecision
	}
	if c.Tolerance == 0 {
		c.Tolerance = DefaultTolerance
	}
	if err := errors.ValidateTolerance("precision", c.Precision); err != nil {
		return err
	}
	if err := errors.ValidateTolerance("tolerance", c.Tolerance); err != nil {
		return err
	}
	if c.Tolerance >= 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "tolerance %v must be below 1", c.Tolerance)
	}
	return nil
}
