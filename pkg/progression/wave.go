package progression

import (
	"github.com/iwvelando/lift-progression/pkg/history"
	"github.com/iwvelando/lift-progression/pkg/lift"
	"github.com/iwvelando/lift-progression/pkg/mathutil"
)

// WaveLoading ramps each set by the increment every successful microcycle.
// On a deload microcycle the weight is DeloadPercentage off the peak reached
// in the preceding wave, and the first microcycle after a deload resumes
// from that peak plus one increment.
//
// Per position the state moves Ramping(peak) -> Deloaded(peak) ->
// Ramping(peak'), driven by the scheduler's deload flag. The peak is the
// heaviest non-deload weight ever logged at the position, so a heavier wave
// further back is never forgotten. WaveLength must be positive but does not
// bound peak memory.
type WaveLoading struct {
	WaveLength       int
	DeloadPercentage float64
}

// Scheme implements Calculator.
func (WaveLoading) Scheme() lift.Scheme {
	return lift.SchemeWaveLoading
}

// Calculate implements Calculator. Drop sets are always derived from the new
// recommendation of the preceding set.
func (w WaveLoading) Calculate(cfg lift.Configuration, results []lift.HistoricalSetResult, params Params) ([]lift.WeightRecommendation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if w.WaveLength <= 0 {
		return nil, lift.NewConfigurationError(cfg.Name, lift.LiftWide, "wave length must be positive, got %d", w.WaveLength)
	}
	sets := cfg.ResolvedSets()

	sessions := history.Sessions(results)
	if len(sessions) == 0 {
		return nilRecommendations(sets), nil
	}

	increment := cfg.Increment(params.DefaultIncrement)
	recs := make([]lift.WeightRecommendation, 0, len(sets))
	var preceding *float64
	for _, set := range sets {
		var weight *float64
		if set.Kind == lift.SetKindDrop {
			weight = derivedDropWeight(set, preceding)
		} else {
			weight = w.positionWeight(set, sessions, increment, params.IsDeloadWeek)
		}
		recs = appendRecommendations(recs, set, weight)
		preceding = weight
	}
	return recs, nil
}

func (w WaveLoading) positionWeight(set lift.SetOverride, sessions []history.Session, increment float64, deloadWeek bool) *float64 {
	latest := sessions[len(sessions)-1]
	peak, hasPeak := w.peak(sessions, set.Position)
	result, logged := latest.Result(set.Position)

	if !logged && !hasPeak {
		return nil
	}
	base := peak
	if !hasPeak {
		base = result.Weight
	}

	switch {
	case deloadWeek:
		return mathutil.Float64Ptr(mathutil.ReduceByFraction(base, w.DeloadPercentage))
	case latest.IsDeload:
		// positions skipped during the deload resume from their peak too
		return weightPtr(base + increment)
	case !logged:
		return weightPtr(base)
	}

	if met, _ := evaluateSet(set, latest); met {
		return weightPtr(result.Weight + increment)
	}
	return weightPtr(result.Weight)
}

// peak returns the heaviest weight logged at position across every
// non-deload microcycle.
func (w WaveLoading) peak(sessions []history.Session, position int) (float64, bool) {
	peak, found := 0.0, false
	for _, session := range sessions {
		if session.IsDeload {
			continue
		}
		result, ok := session.Result(position)
		if !ok {
			continue
		}
		if !found {
			peak, found = result.Weight, true
			continue
		}
		peak = mathutil.Max(peak, result.Weight)
	}
	return peak, found
}
