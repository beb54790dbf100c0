// Package lift defines the value types describing a lift's configuration,
// its logged set history and the weight recommendations produced for it.
package lift

import (
	"fmt"
	"strings"
)

// Scheme is the progression policy configured for a lift.
type Scheme string

const (
	SchemeLinear                   Scheme = "linear"
	SchemeDoubleProgression        Scheme = "double_progression"
	SchemeDynamicDoubleProgression Scheme = "dynamic_double_progression"
	SchemeWaveLoading              Scheme = "wave_loading"
)

// Schemes lists every supported progression scheme.
var Schemes = []Scheme{
	SchemeLinear,
	SchemeDoubleProgression,
	SchemeDynamicDoubleProgression,
	SchemeWaveLoading,
}

// ParseScheme converts a configuration string into a Scheme.
func ParseScheme(value string) (Scheme, error) {
	normalized := Scheme(strings.ToLower(strings.TrimSpace(value)))
	for _, scheme := range Schemes {
		if scheme == normalized {
			return scheme, nil
		}
	}
	return "", fmt.Errorf("unknown progression scheme %q", value)
}

// SetKind identifies how a set position is performed.
type SetKind string

const (
	SetKindStandard SetKind = "standard"
	SetKindDrop     SetKind = "drop"
	SetKindMyoRep   SetKind = "myorep"
)

// ParseSetKind converts a configuration string into a SetKind. An empty
// value is a standard set.
func ParseSetKind(value string) (SetKind, error) {
	switch SetKind(strings.ToLower(strings.TrimSpace(value))) {
	case "", SetKindStandard:
		return SetKindStandard, nil
	case SetKindDrop:
		return SetKindDrop, nil
	case SetKindMyoRep, "myo_rep", "myo-rep":
		return SetKindMyoRep, nil
	}
	return "", fmt.Errorf("unknown set kind %q", value)
}

// RepRange is an inclusive rep goal.
type RepRange struct {
	Bottom int
	Top    int
}

// SetOverride replaces the lift defaults for a single set position.
type SetOverride struct {
	Position  int
	Kind      SetKind
	RepRange  RepRange
	RPETarget float64

	// DropPercentage is the fraction of the preceding set's weight removed
	// for a drop set.
	DropPercentage float64

	// Myo-rep fields.
	RepFloor     *int
	SetMatching  bool
	SetGoal      int
	MatchSetGoal *int
}

// GoalMet reports whether a performance satisfies this set's rep and RPE goal.
func (s SetOverride) GoalMet(reps int, rpe float64) bool {
	return reps >= s.RepRange.Top && rpe <= s.RPETarget
}

// ExpectedBackoffSets is the number of backoff slots a myo-rep set plans for.
// Non myo-rep sets have none.
func (s SetOverride) ExpectedBackoffSets() int {
	if s.Kind != SetKindMyoRep {
		return 0
	}
	if s.SetMatching && s.MatchSetGoal != nil {
		return *s.MatchSetGoal
	}
	return s.SetGoal
}

// Configuration describes how a lift is programmed.
type Configuration struct {
	LiftID            int64
	Name              string
	Scheme            Scheme
	SetCount          int
	RepRange          RepRange
	RPETarget         float64
	IncrementOverride *float64
	Sets              []SetOverride
}

// Increment returns the per-lift increment override, or defaultIncrement
// when the lift has none.
func (c Configuration) Increment(defaultIncrement float64) float64 {
	if c.IncrementOverride != nil {
		return *c.IncrementOverride
	}
	return defaultIncrement
}

// SetAt resolves the effective set definition for a position, falling back
// to a standard set built from the lift defaults.
func (c Configuration) SetAt(position int) SetOverride {
	for _, override := range c.Sets {
		if override.Position == position {
			if override.Kind == "" {
				override.Kind = SetKindStandard
			}
			return override
		}
	}
	return SetOverride{
		Position:  position,
		Kind:      SetKindStandard,
		RepRange:  c.RepRange,
		RPETarget: c.RPETarget,
	}
}

// ResolvedSets returns the effective set definition for every configured
// position, in position order.
func (c Configuration) ResolvedSets() []SetOverride {
	if c.SetCount <= 0 {
		return nil
	}
	sets := make([]SetOverride, 0, c.SetCount)
	for position := 0; position < c.SetCount; position++ {
		sets = append(sets, c.SetAt(position))
	}
	return sets
}

// RecommendationCount is the number of recommendations a calculation yields,
// including planned myo-rep backoff slots.
func (c Configuration) RecommendationCount() int {
	count := 0
	for _, set := range c.ResolvedSets() {
		count += 1 + set.ExpectedBackoffSets()
	}
	return count
}

// ActivationPosition is the myo-rep sub-position used in a ResultKey for
// activation sets and for sets that are not myo-rep sets at all.
const ActivationPosition = -1

// ResultKey identifies a logged set within one session.
type ResultKey struct {
	Position       int
	MyoRepPosition int
}

// NewResultKey builds a key from a position and an optional myo-rep
// sub-position.
func NewResultKey(position int, myoRepPosition *int) ResultKey {
	key := ResultKey{Position: position, MyoRepPosition: ActivationPosition}
	if myoRepPosition != nil {
		key.MyoRepPosition = *myoRepPosition
	}
	return key
}

// IsBackoff reports whether the key refers to a myo-rep backoff set.
func (k ResultKey) IsBackoff() bool {
	return k.MyoRepPosition != ActivationPosition
}

// HistoricalSetResult is one logged set outcome.
type HistoricalSetResult struct {
	LiftID    int64
	WorkoutID int64
	Position  int
	// MyoRepPosition is nil for activation and non myo-rep sets, 0..n for
	// backoff sets.
	MyoRepPosition *int
	Kind           SetKind
	Weight         float64
	Reps           int
	RPE            float64
	Microcycle     int
	Mesocycle      int
	IsDeload       bool
	// MissedLPGoals counts consecutive missed goals for linear progression.
	MissedLPGoals int
}

// Key returns the (position, myo-rep sub-position) key of the result.
func (r HistoricalSetResult) Key() ResultKey {
	return NewResultKey(r.Position, r.MyoRepPosition)
}

// WeightRecommendation is the suggested weight for one set slot of the next
// session. A nil Weight means there is not enough history to recommend one.
type WeightRecommendation struct {
	Position       int
	MyoRepPosition *int
	Kind           SetKind
	Weight         *float64
}

// Key returns the (position, myo-rep sub-position) key of the recommendation.
func (r WeightRecommendation) Key() ResultKey {
	return NewResultKey(r.Position, r.MyoRepPosition)
}
