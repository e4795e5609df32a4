package recommend

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/fincompass/goalengine/pkg/goal"
	"github.com/fincompass/goalengine/pkg/recommendation"
)

// CalculateImpact applies one caller-supplied recommendation to a copy of the
// goal snapshot and measures the probability and budget consequences. The
// input snapshot is never mutated. Unknown recommendation types yield a
// zero-impact result and no error so speculative what-if input cannot break
// the endpoint.
func (r *Recommender) CalculateImpact(ctx context.Context, g *goal.Snapshot, p *goal.Profile,
	rec *recommendation.AdjustmentRecommendation) (*recommendation.ImpactMetrics, error) {

	baseline, err := r.prober.Probability(ctx, g, p, r.trialCount)
	if err != nil {
		return nil, fmt.Errorf("impact baseline for goal %s: %w", g.ID, err)
	}
	baseProbability := baseline.SuccessProbability()

	var perturbed *goal.Snapshot
	var financial recommendation.FinancialImpact

	switch rec.Type {
	case recommendation.AdjustContribution:
		perturbed = g.WithMonthlyContribution(rec.Value)
		delta := rec.Value - g.MonthlyContribution
		financial = recommendation.FinancialImpact{
			MonthlyChange: delta,
			TotalChange:   delta * float64(g.HorizonMonths),
		}
	case recommendation.AdjustTimeframe:
		months := int(rec.Value)
		perturbed = g.WithHorizonMonths(months)
		extra := months - g.HorizonMonths
		financial = recommendation.FinancialImpact{
			TotalChange:           g.MonthlyContribution * float64(extra),
			TimeframeChangeMonths: extra,
		}
	case recommendation.AdjustTargetAmount:
		perturbed = g.WithTargetAmount(rec.Value)
		financial = recommendation.FinancialImpact{
			TotalChange: rec.Value - g.TargetAmount,
		}
	case recommendation.AdjustAllocation:
		if len(rec.Allocation) == 0 {
			return neutralImpact(baseProbability), nil
		}
		perturbed = g.WithAllocation(rec.Allocation)
	default:
		r.logger.Debug("unknown recommendation type, returning neutral impact",
			zap.String("op", "recommend.CalculateImpact"),
			zap.String("goalID", g.ID),
			zap.String("type", string(rec.Type)),
		)
		return neutralImpact(baseProbability), nil
	}

	result, err := r.prober.Probability(ctx, perturbed, p, r.trialCount)
	if err != nil {
		return nil, fmt.Errorf("impact simulation for goal %s: %w", g.ID, err)
	}
	newProbability := result.SuccessProbability()

	return &recommendation.ImpactMetrics{
		ProbabilityIncrease: newProbability - baseProbability,
		NewProbability:      newProbability,
		FinancialImpact:     financial,
	}, nil
}

// neutralImpact is the degraded result for recommendations the engine cannot
// interpret: no probability change, no budget change.
func neutralImpact(baseProbability float64) *recommendation.ImpactMetrics {
	return &recommendation.ImpactMetrics{
		NewProbability: baseProbability,
	}
}
