// Package history resolves raw logged set results into sessions.
//
// Results for the same (position, myo-rep sub-position) key can appear more
// than once when a set is deleted and re-logged. The last entry in input
// order is authoritative; earlier duplicates are dropped without error.
package history

import (
	"sort"

	"github.com/iwvelando/lift-progression/pkg/lift"
)

// Fold keys results by (position, myo-rep sub-position), keeping the last
// entry seen for each key.
func Fold(results []lift.HistoricalSetResult) map[lift.ResultKey]lift.HistoricalSetResult {
	folded := make(map[lift.ResultKey]lift.HistoricalSetResult, len(results))
	for _, result := range results {
		folded[result.Key()] = result
	}
	return folded
}

// SessionID identifies one microcycle of training.
type SessionID struct {
	Mesocycle  int
	Microcycle int
}

// Before orders sessions chronologically.
func (id SessionID) Before(other SessionID) bool {
	if id.Mesocycle != other.Mesocycle {
		return id.Mesocycle < other.Mesocycle
	}
	return id.Microcycle < other.Microcycle
}

// Session is the folded set of results logged in one microcycle.
type Session struct {
	ID       SessionID
	IsDeload bool
	Results  map[lift.ResultKey]lift.HistoricalSetResult
}

// Sessions groups results by microcycle and folds each group. Sessions are
// returned oldest first.
func Sessions(results []lift.HistoricalSetResult) []Session {
	grouped := make(map[SessionID][]lift.HistoricalSetResult)
	for _, result := range results {
		id := SessionID{Mesocycle: result.Mesocycle, Microcycle: result.Microcycle}
		grouped[id] = append(grouped[id], result)
	}

	sessions := make([]Session, 0, len(grouped))
	for id, rows := range grouped {
		folded := Fold(rows)
		deload := false
		for _, result := range folded {
			if result.IsDeload {
				deload = true
				break
			}
		}
		sessions = append(sessions, Session{ID: id, IsDeload: deload, Results: folded})
	}

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].ID.Before(sessions[j].ID)
	})
	return sessions
}

// Latest returns the most recent session, or false when there is no history.
func Latest(results []lift.HistoricalSetResult) (Session, bool) {
	sessions := Sessions(results)
	if len(sessions) == 0 {
		return Session{}, false
	}
	return sessions[len(sessions)-1], true
}

// Result returns the standard, drop or myo-rep activation result logged for
// a position.
func (s Session) Result(position int) (lift.HistoricalSetResult, bool) {
	result, ok := s.Results[lift.ResultKey{Position: position, MyoRepPosition: lift.ActivationPosition}]
	return result, ok
}

// BackoffCount is the number of distinct backoff sets performed at a position.
func (s Session) BackoffCount(position int) int {
	count := 0
	for key := range s.Results {
		if key.Position == position && key.IsBackoff() {
			count++
		}
	}
	return count
}
