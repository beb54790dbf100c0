package configprocessor

import (
	"strings"
	"testing"
)

func TestNewProcessor(t *testing.T) {
	processor := NewProcessor()
	if processor == nil {
		t.Error("NewProcessor() returned nil")
	}
}

func TestProcessor_ValidateConfiguration(t *testing.T) {
	processor := NewProcessor()
	negative := -2.5
	positive := 2.5

	tests := []struct {
		name             string
		defaultIncrement float64
		lifts            []LiftInfo
		expectedWarnings int
		contains         string
	}{
		{
			name:             "Valid configuration",
			defaultIncrement: 5,
			lifts: []LiftInfo{
				{
					Name:              "Bench Press",
					Scheme:            "double_progression",
					SetCount:          3,
					RPETarget:         8,
					IncrementOverride: &positive,
					Sets:              []SetInfo{{Position: 2, Kind: "drop", RPETarget: 9}},
					HistoryRows:       3,
					HistoryPositions:  []int{0, 1, 2},
				},
			},
			expectedWarnings: 0,
		},
		{
			name:             "Zero default increment",
			defaultIncrement: 0,
			lifts:            nil,
			expectedWarnings: 1,
			contains:         "default increment",
		},
		{
			name:             "Duplicate lift names",
			defaultIncrement: 5,
			lifts: []LiftInfo{
				{Name: "Squat", SetCount: 1, RPETarget: 8, HistoryRows: 1, HistoryPositions: []int{0}},
				{Name: "Squat", SetCount: 1, RPETarget: 8, HistoryRows: 1, HistoryPositions: []int{0}},
			},
			expectedWarnings: 1,
			contains:         "used 2 times",
		},
		{
			name:             "No history",
			defaultIncrement: 5,
			lifts:            []LiftInfo{{Name: "Curl", SetCount: 2, RPETarget: 8}},
			expectedWarnings: 1,
			contains:         "no history",
		},
		{
			name:             "History beyond set count reported once per position",
			defaultIncrement: 5,
			lifts: []LiftInfo{
				{Name: "Row", SetCount: 2, RPETarget: 8, HistoryRows: 4, HistoryPositions: []int{0, 1, 2, 2}},
			},
			expectedWarnings: 1,
			contains:         "set 2 beyond its 2 configured sets",
		},
		{
			name:             "Negative override and bad RPE",
			defaultIncrement: 5,
			lifts: []LiftInfo{
				{
					Name:              "Press",
					SetCount:          2,
					RPETarget:         12,
					IncrementOverride: &negative,
					Sets:              []SetInfo{{Position: 1, RPETarget: 11}},
					HistoryRows:       1,
					HistoryPositions:  []int{0},
				},
			},
			expectedWarnings: 3,
			contains:         "increment override",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			warnings := processor.ValidateConfiguration(tt.defaultIncrement, tt.lifts)
			if len(warnings) != tt.expectedWarnings {
				t.Errorf("ValidateConfiguration() returned %d warnings, expected %d: %v", len(warnings), tt.expectedWarnings, warnings)
			}
			if tt.contains != "" && !strings.Contains(strings.Join(warnings, "\n"), tt.contains) {
				t.Errorf("ValidateConfiguration() warnings %v missing %q", warnings, tt.contains)
			}
		})
	}
}
