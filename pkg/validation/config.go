// Package validation checks lift settings and output options.
package validation

import (
	"fmt"

	"github.com/iwvelando/lift-progression/pkg/constants"
)

// MaxRPE is the top of the RPE scale.
const MaxRPE = 10.0

// ValidateRPETarget checks that an RPE target is on the 0-10 scale. A
// negative position refers to the lift default.
func ValidateRPETarget(liftName string, position int, rpe float64) string {
	if rpe >= 0 && rpe <= MaxRPE {
		return ""
	}
	if position < 0 {
		return fmt.Sprintf("Lift '%s' RPE target %.1f is outside 0-%.0f - goals may never be met", liftName, rpe, MaxRPE)
	}
	return fmt.Sprintf("Lift '%s' set %d RPE target %.1f is outside 0-%.0f - goals may never be met",
		liftName, position, rpe, MaxRPE)
}

// ValidateIncrement checks that an increment moves weight up.
func ValidateIncrement(label string, increment float64) string {
	if increment > 0 {
		return ""
	}
	return fmt.Sprintf("%s %.2f is not positive - successful sessions will not add weight", label, increment)
}

// ResolveOutputFormat picks the output format for a run. A non-empty override
// (the -output-format flag) wins over the configured output.format, and an
// empty result falls back to the pretty table. Only pretty and csv are
// rendered.
func ResolveOutputFormat(configured, override string) (string, error) {
	format := configured
	if override != "" {
		format = override
	}
	if format == "" {
		return constants.OutputFormatPretty, nil
	}
	switch format {
	case constants.OutputFormatPretty, constants.OutputFormatCSV:
		return format, nil
	}
	if override != "" {
		return "", fmt.Errorf("-output-format must be %s or %s, got %q",
			constants.OutputFormatPretty, constants.OutputFormatCSV, format)
	}
	return "", fmt.Errorf("output.format must be %s or %s, got %q",
		constants.OutputFormatPretty, constants.OutputFormatCSV, format)
}
