// Package myorep decides whether a myo-rep group should continue with another
// backoff set, and whether a logged group met its goal.
package myorep

import (
	"github.com/iwvelando/lift-progression/pkg/lift"
)

// LoggedSet is a set entry from the live logging flow.
type LoggedSet struct {
	Position int
	// MyoRepPosition is nil for the activation set.
	MyoRepPosition *int
	Weight         float64
	Reps           int
	RPE            float64
	Complete       bool
}

// IsActivation reports whether the set is the activation set of its group.
func (s LoggedSet) IsActivation() bool {
	return s.MyoRepPosition == nil
}

// ShouldContinue reports whether another backoff set should follow completed.
// groupHistory holds the sets logged so far for the same myo-rep group and
// may or may not already contain completed.
func ShouldContinue(set lift.SetOverride, completed LoggedSet, groupHistory []LoggedSet) (bool, error) {
	if !completed.Complete {
		return false, nil
	}

	if completed.IsActivation() {
		return ActivationMet(set, completed.Reps, completed.RPE), nil
	}

	if set.SetMatching {
		if set.MatchSetGoal == nil {
			return false, lift.NewConfigurationError("", set.Position, "set matching enabled without a match set goal")
		}
		return performedBackoffs(completed, groupHistory) < *set.MatchSetGoal, nil
	}

	if set.RepFloor == nil {
		return false, lift.NewConfigurationError("", set.Position, "rep floor mode requires a rep floor")
	}
	return completed.Reps > *set.RepFloor, nil
}

// ActivationMet reports whether an activation set hit the top of the rep range
// at or under the RPE target.
func ActivationMet(set lift.SetOverride, reps int, rpe float64) bool {
	return set.GoalMet(reps, rpe)
}

// GroupSucceeded reports whether a logged myo-rep group met its goal: the
// activation met its goal and at least the configured set goal of backoff
// sets were performed, however the group ended.
func GroupSucceeded(set lift.SetOverride, activation lift.HistoricalSetResult, backoffCount int) bool {
	return ActivationMet(set, activation.Reps, activation.RPE) && backoffCount >= set.SetGoal
}

// performedBackoffs counts distinct completed backoff sets in the group,
// including completed.
func performedBackoffs(completed LoggedSet, groupHistory []LoggedSet) int {
	performed := make(map[int]struct{}, len(groupHistory)+1)
	for _, logged := range groupHistory {
		if logged.Position != completed.Position || logged.IsActivation() || !logged.Complete {
			continue
		}
		performed[*logged.MyoRepPosition] = struct{}{}
	}
	performed[*completed.MyoRepPosition] = struct{}{}
	return len(performed)
}
