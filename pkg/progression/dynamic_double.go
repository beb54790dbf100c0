package progression

import (
	"github.com/iwvelando/lift-progression/pkg/lift"
)

// DynamicDouble applies the double progression goal to each set position on
// its own: a failing set does not hold back the other sets of the lift.
// Sets that were never performed are recommended at 0, meaning start from an
// empty bar or bodyweight.
type DynamicDouble struct{}

// Scheme implements Calculator.
func (DynamicDouble) Scheme() lift.Scheme {
	return lift.SchemeDynamicDoubleProgression
}

// Calculate implements Calculator.
func (DynamicDouble) Calculate(cfg lift.Configuration, results []lift.HistoricalSetResult, params Params) ([]lift.WeightRecommendation, error) {
	return calculateDouble(cfg, results, params, true)
}
