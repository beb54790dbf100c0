// Package testutil provides common utility functions for testing.
package testutil

import (
	"github.com/iwvelando/lift-progression/internal/recommendation"
)

// FindLift finds a lift recommendation by name in the results slice.
// Returns a pointer to the recommendation if found, nil otherwise.
func FindLift(results []recommendation.Recommendation, name string) *recommendation.Recommendation {
	for i := range results {
		if results[i].Name == name {
			return &results[i]
		}
	}
	return nil
}

// Weights returns the recommended weight of every slot, using -1 for a slot
// without a recommendation.
func Weights(rec *recommendation.Recommendation) []float64 {
	if rec == nil {
		return nil
	}
	weights := make([]float64, 0, len(rec.Sets))
	for _, set := range rec.Sets {
		if set.Weight == nil {
			weights = append(weights, -1)
			continue
		}
		weights = append(weights, *set.Weight)
	}
	return weights
}
