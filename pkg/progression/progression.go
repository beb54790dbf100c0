// Package progression computes the weight a lifter should attempt on each set
// of their next session from the lift configuration and its logged history.
//
// Each progression scheme is a Calculator. Calculators are plain values with
// no mutable state, so a single value can be used from many goroutines.
package progression

import (
	"github.com/iwvelando/lift-progression/pkg/constants"
	"github.com/iwvelando/lift-progression/pkg/history"
	"github.com/iwvelando/lift-progression/pkg/lift"
	"github.com/iwvelando/lift-progression/pkg/mathutil"
	"github.com/iwvelando/lift-progression/pkg/myorep"
)

// Params carries the per-call inputs owned by external collaborators.
type Params struct {
	// DefaultIncrement is used when the lift has no increment override.
	DefaultIncrement float64
	// IsDeloadWeek is supplied by the microcycle scheduler for the upcoming
	// session.
	IsDeloadWeek bool
}

// Calculator computes one recommendation per configured set slot.
type Calculator interface {
	Scheme() lift.Scheme
	Calculate(cfg lift.Configuration, results []lift.HistoricalSetResult, params Params) ([]lift.WeightRecommendation, error)
}

// Settings holds the policy parameters of the calculators. Zero values fall
// back to the package defaults.
type Settings struct {
	LinearFailureDeloadPercentage float64
	WaveLength                    int
	WaveDeloadPercentage          float64
}

// DefaultSettings returns the settings used when none are configured.
func DefaultSettings() Settings {
	return Settings{
		LinearFailureDeloadPercentage: constants.LinearFailureDeloadPercentage,
		WaveLength:                    constants.DefaultWaveLength,
		WaveDeloadPercentage:          constants.DefaultWaveDeloadPercentage,
	}
}

func (s Settings) withDefaults() Settings {
	defaults := DefaultSettings()
	if s.LinearFailureDeloadPercentage == 0 {
		s.LinearFailureDeloadPercentage = defaults.LinearFailureDeloadPercentage
	}
	if s.WaveLength <= 0 {
		s.WaveLength = defaults.WaveLength
	}
	if s.WaveDeloadPercentage == 0 {
		s.WaveDeloadPercentage = defaults.WaveDeloadPercentage
	}
	return s
}

// ForScheme returns the calculator implementing scheme.
func ForScheme(scheme lift.Scheme, settings Settings) (Calculator, error) {
	settings = settings.withDefaults()
	if settings.LinearFailureDeloadPercentage < 0 || settings.LinearFailureDeloadPercentage >= 1 {
		return nil, lift.NewConfigurationError("", lift.LiftWide,
			"linear failure deload percentage must be in [0, 1), got %v", settings.LinearFailureDeloadPercentage)
	}
	if settings.WaveDeloadPercentage < 0 || settings.WaveDeloadPercentage >= 1 {
		return nil, lift.NewConfigurationError("", lift.LiftWide,
			"wave deload percentage must be in [0, 1), got %v", settings.WaveDeloadPercentage)
	}

	switch scheme {
	case lift.SchemeLinear:
		return Linear{FailureDeloadPercentage: settings.LinearFailureDeloadPercentage}, nil
	case lift.SchemeDoubleProgression:
		return Double{}, nil
	case lift.SchemeDynamicDoubleProgression:
		return DynamicDouble{}, nil
	case lift.SchemeWaveLoading:
		return WaveLoading{WaveLength: settings.WaveLength, DeloadPercentage: settings.WaveDeloadPercentage}, nil
	}
	return nil, lift.NewConfigurationError("", lift.LiftWide, "unsupported progression scheme %q", scheme)
}

// appendRecommendations adds the slots for one set: the set itself and, for
// a myo-rep set, one slot per expected backoff at the activation weight.
func appendRecommendations(recs []lift.WeightRecommendation, set lift.SetOverride, weight *float64) []lift.WeightRecommendation {
	recs = append(recs, lift.WeightRecommendation{
		Position: set.Position,
		Kind:     set.Kind,
		Weight:   weight,
	})
	for i := 0; i < set.ExpectedBackoffSets(); i++ {
		sub := i
		recs = append(recs, lift.WeightRecommendation{
			Position:       set.Position,
			MyoRepPosition: &sub,
			Kind:           set.Kind,
			Weight:         copyWeight(weight),
		})
	}
	return recs
}

// evaluateSet reports whether the set met its goal in session. evaluated is
// false when the set was not logged in the session.
func evaluateSet(set lift.SetOverride, session history.Session) (met bool, evaluated bool) {
	result, ok := session.Result(set.Position)
	if !ok {
		return false, false
	}
	if set.Kind == lift.SetKindMyoRep {
		return myorep.GroupSucceeded(set, result, session.BackoffCount(set.Position)), true
	}
	return set.GoalMet(result.Reps, result.RPE), true
}

// derivedDropWeight applies a drop percentage to the preceding set's new
// recommendation.
func derivedDropWeight(set lift.SetOverride, preceding *float64) *float64 {
	if preceding == nil {
		return nil
	}
	return mathutil.Float64Ptr(mathutil.ReduceByFraction(*preceding, set.DropPercentage))
}

func weightPtr(w float64) *float64 {
	return mathutil.Float64Ptr(mathutil.Round(w))
}

func copyWeight(w *float64) *float64 {
	if w == nil {
		return nil
	}
	return mathutil.Float64Ptr(*w)
}

func nilRecommendations(sets []lift.SetOverride) []lift.WeightRecommendation {
	recs := make([]lift.WeightRecommendation, 0, len(sets))
	for _, set := range sets {
		recs = appendRecommendations(recs, set, nil)
	}
	return recs
}
