// Package recommendation defines the data structures related to a batch of
// lift recommendations and includes functions for computing them.
package recommendation

import (
	"context"
	"fmt"

	"github.com/iwvelando/lift-progression/internal/config"
	"github.com/iwvelando/lift-progression/pkg/lift"
	"github.com/iwvelando/lift-progression/pkg/progression"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Recommendation holds the next-session weights for one lift.
type Recommendation struct {
	Name   string      `json:"name"`
	LiftID int64       `json:"liftId,omitempty"`
	Scheme string      `json:"scheme"`
	Sets   []SetWeight `json:"sets"`
	Deload bool        `json:"deload"`
}

// SetWeight is one recommended set slot. Weight is nil when the lift lacks
// the history to recommend one.
type SetWeight struct {
	Position       int      `json:"position"`
	MyoRepPosition *int     `json:"myoRepPosition,omitempty"`
	Kind           string   `json:"kind"`
	Weight         *float64 `json:"weight"`
}

// GetRecommendations computes recommendations for every configured lift.
// Lifts are independent and run concurrently; results keep the configured
// lift order. The first failing lift cancels the rest.
func GetRecommendations(ctx context.Context, logger *zap.Logger, conf config.Configuration) ([]Recommendation, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	engine := progression.NewEngine(logger, conf.Progression.Settings())
	params := conf.Params()
	results := make([]Recommendation, len(conf.Lifts))

	g, gctx := errgroup.WithContext(ctx)
	for i := range conf.Lifts {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rec, err := recommendLift(engine, conf.Lifts[i], params)
			if err != nil {
				return err
			}
			results[i] = rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	logger.Debug(fmt.Sprintf("computed recommendations for %d lifts", len(results)),
		zap.String("op", "recommendation.GetRecommendations"),
		zap.Bool("deloadWeek", params.IsDeloadWeek),
	)
	return results, nil
}

// Lift computes the recommendation for a single configured lift.
func Lift(logger *zap.Logger, l config.Lift, conf config.Configuration) (Recommendation, error) {
	engine := progression.NewEngine(logger, conf.Progression.Settings())
	return recommendLift(engine, l, conf.Params())
}

func recommendLift(engine *progression.Engine, l config.Lift, params progression.Params) (Recommendation, error) {
	cfg, err := l.ToLiftConfiguration()
	if err != nil {
		return Recommendation{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Recommendation{}, err
	}
	results, err := l.ToHistory()
	if err != nil {
		return Recommendation{}, err
	}

	recs, err := engine.Recommend(cfg, results, params)
	if err != nil {
		return Recommendation{}, fmt.Errorf("lift %q: %w", l.Name, err)
	}

	return Recommendation{
		Name:   l.Name,
		LiftID: l.LiftID,
		Scheme: string(cfg.Scheme),
		Sets:   toSetWeights(recs),
		Deload: params.IsDeloadWeek,
	}, nil
}

func toSetWeights(recs []lift.WeightRecommendation) []SetWeight {
	sets := make([]SetWeight, 0, len(recs))
	for _, rec := range recs {
		sets = append(sets, SetWeight{
			Position:       rec.Position,
			MyoRepPosition: rec.MyoRepPosition,
			Kind:           string(rec.Kind),
			Weight:         rec.Weight,
		})
	}
	return sets
}
