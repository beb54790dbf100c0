package config

import (
	"fmt"

	"github.com/iwvelando/lift-progression/pkg/lift"
)

// ToLiftConfiguration converts a configured lift into the domain
// configuration. Only the string enums are checked here; structural checks
// belong to lift.Configuration.Validate.
func (l Lift) ToLiftConfiguration() (lift.Configuration, error) {
	scheme, err := lift.ParseScheme(l.Scheme)
	if err != nil {
		return lift.Configuration{}, lift.NewConfigurationError(l.Name, lift.LiftWide, "%v", err)
	}

	defaults := lift.RepRange{Bottom: l.RepRangeBottom, Top: l.RepRangeTop}
	cfg := lift.Configuration{
		LiftID:    l.LiftID,
		Name:      l.Name,
		Scheme:    scheme,
		SetCount:  l.SetCount,
		RepRange:  defaults,
		RPETarget: l.RPETarget,
	}
	if l.IncrementOverride != nil {
		increment := *l.IncrementOverride
		cfg.IncrementOverride = &increment
	}

	for _, s := range l.Sets {
		override, err := s.ToSetOverride(defaults, l.RPETarget)
		if err != nil {
			return lift.Configuration{}, lift.NewConfigurationError(l.Name, s.Position, "%v", err)
		}
		cfg.Sets = append(cfg.Sets, override)
	}
	return cfg, nil
}

// ToSetOverride converts a set override, inheriting the rep range and RPE
// target when they are unset.
func (s SetOverride) ToSetOverride(defaults lift.RepRange, defaultRPE float64) (lift.SetOverride, error) {
	kind, err := lift.ParseSetKind(s.Kind)
	if err != nil {
		return lift.SetOverride{}, err
	}

	override := lift.SetOverride{
		Position:       s.Position,
		Kind:           kind,
		RepRange:       lift.RepRange{Bottom: s.RepRangeBottom, Top: s.RepRangeTop},
		RPETarget:      s.RPETarget,
		DropPercentage: s.DropPercentage,
		RepFloor:       copyInt(s.RepFloor),
		SetMatching:    s.SetMatching,
		SetGoal:        s.SetGoal,
		MatchSetGoal:   copyInt(s.MatchSetGoal),
	}
	if s.RepRangeTop == 0 {
		override.RepRange = defaults
	}
	if s.RPETarget == 0 {
		override.RPETarget = defaultRPE
	}
	return override, nil
}

// ToHistory converts the logged history into domain results, preserving
// input order.
func (l Lift) ToHistory() ([]lift.HistoricalSetResult, error) {
	results := make([]lift.HistoricalSetResult, 0, len(l.History))
	for i, r := range l.History {
		kind, err := lift.ParseSetKind(r.Kind)
		if err != nil {
			return nil, fmt.Errorf("lift %q history row %d: %w", l.Name, i, err)
		}
		results = append(results, lift.HistoricalSetResult{
			LiftID:         l.LiftID,
			WorkoutID:      r.WorkoutID,
			Position:       r.Position,
			MyoRepPosition: copyInt(r.MyoRepPosition),
			Kind:           kind,
			Weight:         r.Weight,
			Reps:           r.Reps,
			RPE:            r.RPE,
			Microcycle:     r.Microcycle,
			Mesocycle:      r.Mesocycle,
			IsDeload:       r.IsDeload,
			MissedLPGoals:  r.MissedLPGoals,
		})
	}
	return results, nil
}

func copyInt(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
