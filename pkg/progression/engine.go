package progression

import (
	"errors"

	"github.com/iwvelando/lift-progression/pkg/lift"
	"go.uber.org/zap"
)

// Engine dispatches a lift to the calculator for its scheme.
type Engine struct {
	settings Settings
	logger   *zap.Logger
}

// NewEngine creates a new engine with the given settings and logger.
// If logger is nil, it will use a no-op logger to prevent panics.
func NewEngine(logger *zap.Logger, settings Settings) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{settings: settings.withDefaults(), logger: logger}
}

// Recommend computes the next session's weights for cfg.
func (e *Engine) Recommend(cfg lift.Configuration, results []lift.HistoricalSetResult, params Params) ([]lift.WeightRecommendation, error) {
	calculator, err := ForScheme(cfg.Scheme, e.settings)
	if err != nil {
		var cfgErr *lift.ConfigurationError
		if errors.As(err, &cfgErr) && cfgErr.Lift == "" {
			cfgErr.Lift = cfg.Name
		}
		return nil, err
	}

	recs, err := calculator.Calculate(cfg, results, params)
	if err != nil {
		return nil, err
	}

	for _, rec := range recs {
		if rec.MyoRepPosition != nil {
			continue
		}
		if rec.Weight == nil {
			e.logger.Debug("no recommendation for set",
				zap.String("op", "progression.Engine.Recommend"),
				zap.String("lift", cfg.Name),
				zap.Int("position", rec.Position),
			)
			continue
		}
		e.logger.Debug("set recommendation",
			zap.String("op", "progression.Engine.Recommend"),
			zap.String("lift", cfg.Name),
			zap.String("scheme", string(cfg.Scheme)),
			zap.Int("position", rec.Position),
			zap.String("kind", string(rec.Kind)),
			zap.Float64("weight", *rec.Weight),
			zap.Bool("deloadWeek", params.IsDeloadWeek),
		)
	}
	return recs, nil
}
