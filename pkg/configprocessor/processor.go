// Package configprocessor provides shared configuration processing utilities.
package configprocessor

import (
	"fmt"
	"sort"

	"github.com/iwvelando/lift-progression/pkg/validation"
)

// SetInfo represents set override configuration information
type SetInfo struct {
	Position  int
	Kind      string
	RPETarget float64
}

// LiftInfo represents lift configuration information
type LiftInfo struct {
	Name              string
	Scheme            string
	SetCount          int
	RPETarget         float64
	IncrementOverride *float64
	Sets              []SetInfo
	HistoryRows       int
	HistoryPositions  []int
}

// Processor handles configuration processing and validation
type Processor struct{}

// NewProcessor creates a new configuration processor
func NewProcessor() *Processor {
	return &Processor{}
}

// ValidateConfiguration validates the configuration and returns warnings.
// Problems that make a lift unusable are errors raised by the calculators;
// everything here is advisory.
func (p *Processor) ValidateConfiguration(defaultIncrement float64, lifts []LiftInfo) []string {
	var warnings []string

	if warning := validation.ValidateIncrement("default increment", defaultIncrement); warning != "" {
		warnings = append(warnings, warning)
	}

	seen := make(map[string]int, len(lifts))
	for _, l := range lifts {
		seen[l.Name]++
	}
	duplicates := make([]string, 0)
	for name, count := range seen {
		if count > 1 {
			duplicates = append(duplicates, name)
		}
	}
	sort.Strings(duplicates)
	for _, name := range duplicates {
		warnings = append(warnings, fmt.Sprintf("Lift name '%s' is used %d times", name, seen[name]))
	}

	for _, l := range lifts {
		warnings = append(warnings, p.validateLift(l)...)
	}

	return warnings
}

func (p *Processor) validateLift(l LiftInfo) []string {
	var warnings []string

	if l.IncrementOverride != nil {
		if warning := validation.ValidateIncrement(fmt.Sprintf("Lift '%s' increment override", l.Name), *l.IncrementOverride); warning != "" {
			warnings = append(warnings, warning)
		}
	}

	if warning := validation.ValidateRPETarget(l.Name, -1, l.RPETarget); warning != "" {
		warnings = append(warnings, warning)
	}
	for _, s := range l.Sets {
		if s.RPETarget == 0 {
			continue
		}
		if warning := validation.ValidateRPETarget(l.Name, s.Position, s.RPETarget); warning != "" {
			warnings = append(warnings, warning)
		}
	}

	if l.HistoryRows == 0 {
		warnings = append(warnings, fmt.Sprintf("Lift '%s' has no history - recommendations will be empty", l.Name))
		return warnings
	}

	ignored := make(map[int]struct{})
	for _, position := range l.HistoryPositions {
		if position >= l.SetCount {
			ignored[position] = struct{}{}
		}
	}
	positions := make([]int, 0, len(ignored))
	for position := range ignored {
		positions = append(positions, position)
	}
	sort.Ints(positions)
	for _, position := range positions {
		warnings = append(warnings, fmt.Sprintf("Lift '%s' has history for set %d beyond its %d configured sets - it will be ignored",
			l.Name, position, l.SetCount))
	}

	return warnings
}
