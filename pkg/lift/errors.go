package lift

import (
	"errors"
	"fmt"
)

// ErrConfiguration matches every ConfigurationError via errors.Is.
var ErrConfiguration = errors.New("lift configuration error")

// LiftWide is the Position used by a ConfigurationError that is not tied to
// a single set.
const LiftWide = -1

// ConfigurationError reports a lift that is misconfigured for its scheme.
// It indicates an upstream bug and is never retried.
type ConfigurationError struct {
	Lift     string
	Position int
	Reason   string
}

// NewConfigurationError builds a ConfigurationError with a formatted reason.
func NewConfigurationError(lift string, position int, format string, args ...interface{}) *ConfigurationError {
	return &ConfigurationError{
		Lift:     lift,
		Position: position,
		Reason:   fmt.Sprintf(format, args...),
	}
}

func (e *ConfigurationError) Error() string {
	name := e.Lift
	if name == "" {
		name = "unnamed lift"
	}
	if e.Position == LiftWide {
		return fmt.Sprintf("%s: %s: %s", ErrConfiguration, name, e.Reason)
	}
	return fmt.Sprintf("%s: %s set %d: %s", ErrConfiguration, name, e.Position, e.Reason)
}

// Is lets errors.Is(err, ErrConfiguration) match.
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}
