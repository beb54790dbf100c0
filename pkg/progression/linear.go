package progression

import (
	"github.com/iwvelando/lift-progression/pkg/constants"
	"github.com/iwvelando/lift-progression/pkg/history"
	"github.com/iwvelando/lift-progression/pkg/lift"
	"github.com/iwvelando/lift-progression/pkg/mathutil"
)

// Linear adds the increment to every set once every set of the last session
// met its goal. A single miss is forgiven; a set that has missed its goal
// LinearMissesBeforeDeload times in a row is reduced by
// FailureDeloadPercentage.
//
// Params.IsDeloadWeek is not consulted. Linear deloads only through its own
// failure rule, so a scheduled deload week recommends the same weights as any
// other week.
type Linear struct {
	FailureDeloadPercentage float64
}

// Scheme implements Calculator.
func (Linear) Scheme() lift.Scheme {
	return lift.SchemeLinear
}

// Calculate implements Calculator. Only standard sets are supported.
func (l Linear) Calculate(cfg lift.Configuration, results []lift.HistoricalSetResult, params Params) ([]lift.WeightRecommendation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	sets := cfg.ResolvedSets()
	for _, set := range sets {
		if set.Kind != lift.SetKindStandard {
			return nil, lift.NewConfigurationError(cfg.Name, set.Position,
				"%s sets are not supported by %s progression", set.Kind, lift.SchemeLinear)
		}
	}

	session, ok := history.Latest(results)
	if !ok {
		return nilRecommendations(sets), nil
	}

	allMet := true
	for _, set := range sets {
		if met, evaluated := evaluateSet(set, session); evaluated && !met {
			allMet = false
			break
		}
	}

	increment := cfg.Increment(params.DefaultIncrement)
	recs := make([]lift.WeightRecommendation, 0, len(sets))
	for _, set := range sets {
		result, ok := session.Result(set.Position)
		if !ok {
			recs = appendRecommendations(recs, set, nil)
			continue
		}

		var weight float64
		switch {
		case allMet:
			weight = result.Weight + increment
		case !set.GoalMet(result.Reps, result.RPE) && result.MissedLPGoals >= constants.LinearMissesBeforeDeload:
			weight = mathutil.ReduceByFraction(result.Weight, l.FailureDeloadPercentage)
		default:
			weight = result.Weight
		}
		recs = appendRecommendations(recs, set, weightPtr(weight))
	}
	return recs, nil
}
