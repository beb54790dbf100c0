package progression

import (
	"github.com/iwvelando/lift-progression/pkg/history"
	"github.com/iwvelando/lift-progression/pkg/lift"
)

// Double is rep-range double progression evaluated across the whole lift:
// every standard and drop set must reach the top of its rep range at or under
// its RPE target, and every myo-rep group must succeed, before any set
// increases. One failing set holds every set at its previous weight.
//
// Drop sets with their own history increase by the same flat increment as
// their siblings. Sets without history get a nil weight.
type Double struct{}

// Scheme implements Calculator.
func (Double) Scheme() lift.Scheme {
	return lift.SchemeDoubleProgression
}

// Calculate implements Calculator.
func (Double) Calculate(cfg lift.Configuration, results []lift.HistoricalSetResult, params Params) ([]lift.WeightRecommendation, error) {
	return calculateDouble(cfg, results, params, false)
}

// calculateDouble implements both double progression variants. perSet
// evaluates success per position instead of lift-wide and recommends zero
// instead of nil for sets without history.
func calculateDouble(cfg lift.Configuration, results []lift.HistoricalSetResult, params Params, perSet bool) ([]lift.WeightRecommendation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	sets := cfg.ResolvedSets()

	var missing *float64
	if perSet {
		missing = weightPtr(0)
	}

	session, ok := history.Latest(results)
	if !ok {
		recs := make([]lift.WeightRecommendation, 0, len(sets))
		for _, set := range sets {
			recs = appendRecommendations(recs, set, copyWeight(missing))
		}
		return recs, nil
	}

	liftMet := true
	setMet := make(map[int]bool, len(sets))
	for _, set := range sets {
		met, evaluated := evaluateSet(set, session)
		setMet[set.Position] = met
		if evaluated && !met {
			liftMet = false
		}
	}

	increment := cfg.Increment(params.DefaultIncrement)
	recs := make([]lift.WeightRecommendation, 0, len(sets))
	var preceding *float64
	for _, set := range sets {
		progress := liftMet
		if perSet {
			progress = setMet[set.Position]
		}

		var weight *float64
		if result, ok := session.Result(set.Position); ok {
			w := result.Weight
			if progress {
				w += increment
			}
			weight = weightPtr(w)
		} else if set.Kind == lift.SetKindDrop && preceding != nil {
			weight = derivedDropWeight(set, preceding)
		} else {
			weight = copyWeight(missing)
		}

		recs = appendRecommendations(recs, set, weight)
		preceding = weight
	}
	return recs, nil
}
