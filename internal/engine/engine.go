// Package engine wires the probability analyzer, simulation cache, gap
// analyzer, adjustment recommender, and country overlays into the three
// public operations. The engine owns the cache's lifetime; there is no
// process-wide shared state.
package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fincompass/goalengine/internal/config"
	"github.com/fincompass/goalengine/internal/gap"
	"github.com/fincompass/goalengine/internal/overlay"
	"github.com/fincompass/goalengine/internal/overlay/india"
	"github.com/fincompass/goalengine/internal/recommend"
	"github.com/fincompass/goalengine/internal/simcache"
	"github.com/fincompass/goalengine/internal/simulation"
	"github.com/fincompass/goalengine/pkg/goal"
	"github.com/fincompass/goalengine/pkg/market"
	"github.com/fincompass/goalengine/pkg/recommendation"
)

// Response is the engine's answer to a recommendation request.
type Response struct {
	GoalID             string
	CurrentProbability float64
	GapSeverity        recommendation.Severity
	TargetProbability  float64
	ConfidenceScore    float64
	Recommendations    []recommendation.AdjustmentRecommendation
}

// Engine is the orchestrator. Construct with New, release with Close.
type Engine struct {
	logger      *zap.Logger
	conf        *config.Configuration
	model       *market.Model
	analyzer    *simulation.Analyzer
	cache       *simcache.Cache
	gapAnalyzer *gap.Analyzer
	recommender *recommend.Recommender
	overlays    overlay.Registry
}

// New constructs an Engine from configuration, restoring the cache snapshot
// when persistence is enabled.
func New(logger *zap.Logger, conf *config.Configuration) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if conf == nil {
		conf = config.Default()
	}

	model := conf.MarketModel()
	analyzer := simulation.NewAnalyzer(logger, model,
		conf.Simulation.Workers, conf.Simulation.BatchTimeout, conf.Simulation.Seed)
	cache := simcache.New(logger, conf.Cache.TTL, conf.Cache.Capacity,
		conf.Cache.WaitTimeout, conf.Cache.CleanupInterval)
	if conf.Cache.SnapshotPath != "" {
		cache.LoadSnapshot(conf.Cache.SnapshotPath)
	}

	e := &Engine{
		logger:   logger,
		conf:     conf,
		model:    model,
		analyzer: analyzer,
		cache:    cache,
		overlays: overlay.Registry{
			india.CountryTag: india.NewAnnotator(logger, conf.India),
		},
	}
	e.gapAnalyzer = gap.NewAnalyzer(logger, e, model, conf.Severity, conf.Simulation.Count)
	e.recommender = recommend.NewRecommender(logger, e, model, conf.Simulation.Count, conf.Simulation.BatchTimeout)
	return e
}

// Close persists the cache snapshot when configured and stops the cache.
func (e *Engine) Close() {
	if e.conf.Cache.SnapshotPath != "" {
		if err := e.cache.SaveSnapshot(e.conf.Cache.SnapshotPath); err != nil {
			e.logger.Warn("failed to persist cache snapshot",
				zap.String("op", "engine.Close"),
				zap.Error(err),
			)
		}
	}
	e.cache.Close()
}

// CacheStats exposes the simulation cache counters.
func (e *Engine) CacheStats() simcache.Stats {
	return e.cache.Stats()
}

// InvalidateGoal drops any cached result for the goal at the engine's
// configured trial count, forcing the next analysis to recompute.
func (e *Engine) InvalidateGoal(g *goal.Snapshot) {
	fp := simcache.NewFingerprint(g, e.model, e.analyzer.Seed(), e.conf.Simulation.Count)
	e.cache.Invalidate(fp)
}

// Probability fetches a success probability through the cache, falling back
// to direct computation when the cache cannot serve the request and to a
// reduced trial count when the simulation batch times out. It satisfies the
// Prober interfaces of the gap analyzer and the recommender.
func (e *Engine) Probability(ctx context.Context, g *goal.Snapshot, p *goal.Profile, count int) (*simulation.Result, error) {
	fp := simcache.NewFingerprint(g, e.model, e.analyzer.Seed(), count)

	result, err := e.cache.GetOrCompute(ctx, fp, func(ctx context.Context) (*simulation.Result, error) {
		return e.analyzer.Analyze(ctx, g, p, count)
	})
	if err == nil {
		return result, nil
	}

	if errors.Is(err, simcache.ErrUnavailable) {
		e.logger.Warn("cache wait exceeded, computing directly",
			zap.String("op", "engine.Probability"),
			zap.String("goalID", g.ID),
		)
		result, err = e.analyzer.Analyze(ctx, g, p, count)
	}

	if errors.Is(err, simulation.ErrTimeout) && count > e.conf.Simulation.MinimumCount {
		e.logger.Warn("simulation timed out, retrying with reduced trial count",
			zap.String("op", "engine.Probability"),
			zap.String("goalID", g.ID),
			zap.Int("count", count),
			zap.Int("fallbackCount", e.conf.Simulation.MinimumCount),
		)
		return e.analyzer.Analyze(ctx, g, p, e.conf.Simulation.MinimumCount)
	}

	return result, err
}

// GenerateAdjustmentRecommendations runs the full pipeline: probability, gap
// metrics, ranked recommendations, country annotation. Already-achieved goals
// short-circuit to probability 1.0 with no recommendations.
func (e *Engine) GenerateAdjustmentRecommendations(ctx context.Context, g *goal.Snapshot, p *goal.Profile) (*Response, error) {
	requestID := uuid.NewString()
	logger := e.logger.With(
		zap.String("requestID", requestID),
		zap.String("goalID", g.ID),
	)

	if g.TargetAmount <= 0 {
		return nil, &goal.InvalidGoalError{GoalID: g.ID, Field: "target_amount", Reason: "must be positive"}
	}

	if g.Achieved() {
		logger.Info("goal already achieved, no recommendations needed",
			zap.String("op", "engine.GenerateAdjustmentRecommendations"),
		)
		return &Response{
			GoalID:             g.ID,
			CurrentProbability: 1.0,
			GapSeverity:        recommendation.SeverityMinimal,
			TargetProbability:  1.0,
			ConfidenceScore:    1.0,
			Recommendations:    []recommendation.AdjustmentRecommendation{},
		}, nil
	}

	baseline, err := e.Probability(ctx, g, p, e.conf.Simulation.Count)
	if err != nil {
		return nil, fmt.Errorf("goal %s: baseline probability: %w", g.ID, err)
	}

	gapResult, err := e.gapAnalyzer.AnalyzeGap(ctx, g, p)
	if err != nil {
		return nil, err
	}

	set, err := e.recommender.Recommend(ctx, gapResult, g, p, nil)
	if err != nil {
		return nil, err
	}

	annotated := e.annotate(set.AdjustmentOptions, g, p)

	logger.Info("recommendations generated",
		zap.String("op", "engine.GenerateAdjustmentRecommendations"),
		zap.Float64("currentProbability", baseline.SuccessProbability()),
		zap.String("severity", string(gapResult.Severity)),
		zap.Int("recommendations", len(annotated)),
		zap.Float64("confidence", set.ConfidenceScore),
	)

	return &Response{
		GoalID:             g.ID,
		CurrentProbability: baseline.SuccessProbability(),
		GapSeverity:        gapResult.Severity,
		TargetProbability:  set.TargetProbability,
		ConfidenceScore:    set.ConfidenceScore,
		Recommendations:    annotated,
	}, nil
}

// CalculateRecommendationImpact recomputes the effect of one caller-supplied
// recommendation against a copy of the goal snapshot (what-if analysis).
func (e *Engine) CalculateRecommendationImpact(ctx context.Context, g *goal.Snapshot, p *goal.Profile,
	rec *recommendation.AdjustmentRecommendation) (*recommendation.ImpactMetrics, error) {

	impact, err := e.recommender.CalculateImpact(ctx, g, p, rec)
	if err != nil {
		return nil, err
	}

	// Tax impact is a jurisdiction concern; borrow it from the overlay's
	// annotation of the same recommendation.
	if annotator := e.overlays.ForCountry(p.Country); annotator != nil && impact.TaxImpact == nil {
		enriched := annotator.Annotate(*rec, g, p)
		impact.TaxImpact = enriched.ImpactMetrics.TaxImpact
	}
	return impact, nil
}

// PrioritizeRecommendations stably reorders a heterogeneous recommendation
// collection by probability gain per unit cost. The input slice is untouched.
func (e *Engine) PrioritizeRecommendations(recs []recommendation.AdjustmentRecommendation) []recommendation.AdjustmentRecommendation {
	return recommend.Prioritize(recs)
}

func (e *Engine) annotate(recs []recommendation.AdjustmentRecommendation,
	g *goal.Snapshot, p *goal.Profile) []recommendation.AdjustmentRecommendation {

	annotator := e.overlays.ForCountry(p.Country)
	if annotator == nil {
		return recs
	}
	annotated := make([]recommendation.AdjustmentRecommendation, len(recs))
	for i, rec := range recs {
		annotated[i] = annotator.Annotate(rec, g, p)
	}
	return annotated
}
