// Package config defines the data structures related to configuration and
// includes functions for loading and validating the config.
package config

import (
	"fmt"
	"io"

	"github.com/iwvelando/lift-progression/pkg/configprocessor"
	"github.com/iwvelando/lift-progression/pkg/constants"
	"github.com/iwvelando/lift-progression/pkg/progression"
	"github.com/spf13/viper"
)

// Configuration holds all configuration for lift-progression.
type Configuration struct {
	Logging      LoggingConfig     `yaml:"logging,omitempty" json:"logging,omitempty"`
	Output       OutputConfig      `yaml:"output,omitempty" json:"output,omitempty"`
	Progression  ProgressionConfig `yaml:"progression,omitempty" json:"progression,omitempty"`
	IsDeloadWeek bool              `yaml:"isDeloadWeek" json:"isDeloadWeek"`
	Lifts        []Lift            `yaml:"lifts" json:"lifts"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty" json:"level,omitempty"`           // debug, info, warn, error
	Format     string `yaml:"format,omitempty" json:"format,omitempty"`         // json, console
	OutputFile string `yaml:"outputFile,omitempty" json:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty" json:"format,omitempty"` // pretty, csv
}

// ProgressionConfig holds the global progression settings. Zero values use
// the package defaults.
type ProgressionConfig struct {
	DefaultIncrement              float64 `yaml:"defaultIncrement,omitempty" json:"defaultIncrement,omitempty"`
	WaveLength                    int     `yaml:"waveLength,omitempty" json:"waveLength,omitempty"`
	WaveDeloadPercentage          float64 `yaml:"waveDeloadPercentage,omitempty" json:"waveDeloadPercentage,omitempty"`
	LinearFailureDeloadPercentage float64 `yaml:"linearFailureDeloadPercentage,omitempty" json:"linearFailureDeloadPercentage,omitempty"`
}

// Lift is one lift's configuration together with its logged history.
type Lift struct {
	Name              string        `yaml:"name" json:"name"`
	LiftID            int64         `yaml:"liftId,omitempty" json:"liftId,omitempty"`
	Scheme            string        `yaml:"scheme" json:"scheme"`
	SetCount          int           `yaml:"setCount" json:"setCount"`
	RepRangeBottom    int           `yaml:"repRangeBottom" json:"repRangeBottom"`
	RepRangeTop       int           `yaml:"repRangeTop" json:"repRangeTop"`
	RPETarget         float64       `yaml:"rpeTarget" json:"rpeTarget"`
	IncrementOverride *float64      `yaml:"incrementOverride,omitempty" json:"incrementOverride,omitempty"`
	Sets              []SetOverride `yaml:"sets,omitempty" json:"sets,omitempty"`
	History           []SetResult   `yaml:"history,omitempty" json:"history,omitempty"`
}

// SetOverride replaces the lift defaults for one set position. A zero rep
// range or RPE target inherits the lift default.
type SetOverride struct {
	Position       int     `yaml:"position" json:"position"`
	Kind           string  `yaml:"kind,omitempty" json:"kind,omitempty"` // standard, drop, myorep
	RepRangeBottom int     `yaml:"repRangeBottom,omitempty" json:"repRangeBottom,omitempty"`
	RepRangeTop    int     `yaml:"repRangeTop,omitempty" json:"repRangeTop,omitempty"`
	RPETarget      float64 `yaml:"rpeTarget,omitempty" json:"rpeTarget,omitempty"`
	DropPercentage float64 `yaml:"dropPercentage,omitempty" json:"dropPercentage,omitempty"`
	RepFloor       *int    `yaml:"repFloor,omitempty" json:"repFloor,omitempty"`
	SetMatching    bool    `yaml:"setMatching,omitempty" json:"setMatching,omitempty"`
	SetGoal        int     `yaml:"setGoal,omitempty" json:"setGoal,omitempty"`
	MatchSetGoal   *int    `yaml:"matchSetGoal,omitempty" json:"matchSetGoal,omitempty"`
}

// SetResult is one logged set.
type SetResult struct {
	WorkoutID      int64   `yaml:"workoutId,omitempty" json:"workoutId,omitempty"`
	Position       int     `yaml:"position" json:"position"`
	MyoRepPosition *int    `yaml:"myoRepPosition,omitempty" json:"myoRepPosition,omitempty"`
	Kind           string  `yaml:"kind,omitempty" json:"kind,omitempty"`
	Weight         float64 `yaml:"weight" json:"weight"`
	Reps           int     `yaml:"reps" json:"reps"`
	RPE            float64 `yaml:"rpe" json:"rpe"`
	Microcycle     int     `yaml:"microcycle" json:"microcycle"`
	Mesocycle      int     `yaml:"mesocycle" json:"mesocycle"`
	IsDeload       bool    `yaml:"isDeload,omitempty" json:"isDeload,omitempty"`
	MissedLPGoals  int     `yaml:"missedLpGoals,omitempty" json:"missedLpGoals,omitempty"`
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	viper.SetConfigFile(configPath)
	viper.AutomaticEnv()

	viper.SetConfigType("yml")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}

	var configuration Configuration
	err := viper.Unmarshal(&configuration)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}

	return &configuration, nil
}

// LoadConfigurationFromReader loads a YAML-formatted configuration from r
// using its own viper instance, so concurrent callers do not share state.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := viper.New()
	v.SetConfigType("yml")

	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config data, %s", err)
	}

	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}

	return &configuration, nil
}

// Increment returns the global default increment.
func (p ProgressionConfig) Increment() float64 {
	if p.DefaultIncrement == 0 {
		return constants.DefaultIncrement
	}
	return p.DefaultIncrement
}

// Settings converts the progression config into calculator settings.
func (p ProgressionConfig) Settings() progression.Settings {
	return progression.Settings{
		LinearFailureDeloadPercentage: p.LinearFailureDeloadPercentage,
		WaveLength:                    p.WaveLength,
		WaveDeloadPercentage:          p.WaveDeloadPercentage,
	}
}

// Params returns the per-call parameters shared by every lift.
func (conf *Configuration) Params() progression.Params {
	return progression.Params{
		DefaultIncrement: conf.Progression.Increment(),
		IsDeloadWeek:     conf.IsDeloadWeek,
	}
}

// ValidateConfiguration performs general validation of the configuration and returns warnings
func (conf *Configuration) ValidateConfiguration() []string {
	lifts := make([]configprocessor.LiftInfo, 0, len(conf.Lifts))
	for _, l := range conf.Lifts {
		info := configprocessor.LiftInfo{
			Name:              l.Name,
			Scheme:            l.Scheme,
			SetCount:          l.SetCount,
			RPETarget:         l.RPETarget,
			IncrementOverride: l.IncrementOverride,
			HistoryRows:       len(l.History),
		}
		for _, s := range l.Sets {
			info.Sets = append(info.Sets, configprocessor.SetInfo{
				Position:  s.Position,
				Kind:      s.Kind,
				RPETarget: s.RPETarget,
			})
		}
		for _, r := range l.History {
			info.HistoryPositions = append(info.HistoryPositions, r.Position)
		}
		lifts = append(lifts, info)
	}

	processor := configprocessor.NewProcessor()
	return processor.ValidateConfiguration(conf.Progression.Increment(), lifts)
}
