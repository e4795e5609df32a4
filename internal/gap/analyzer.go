// Package gap quantifies how far a goal is from its target and proposes raw
// single-axis remediation options. All arithmetic here is deterministic; the
// only stochastic inputs are the probability results obtained through the
// injected prober.
package gap

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/fincompass/goalengine/internal/config"
	"github.com/fincompass/goalengine/internal/simulation"
	"github.com/fincompass/goalengine/pkg/finance"
	"github.com/fincompass/goalengine/pkg/format"
	"github.com/fincompass/goalengine/pkg/goal"
	"github.com/fincompass/goalengine/pkg/market"
	"github.com/fincompass/goalengine/pkg/mathutil"
	"github.com/fincompass/goalengine/pkg/recommendation"
)

// maxTimeframeExtensionMonths caps how far the timeframe option may push the
// target date beyond the current horizon.
const maxTimeframeExtensionMonths = 360

// equityShiftStep is how much weight the allocation option moves toward
// equity in one recommendation, subject to the profile's risk ceiling.
const equityShiftStep = 0.20

// Prober supplies success probabilities; the engine injects a cache-backed
// implementation.
type Prober interface {
	Probability(ctx context.Context, g *goal.Snapshot, p *goal.Profile, count int) (*simulation.Result, error)
}

// Analyzer computes gap metrics and remediation options for one goal.
type Analyzer struct {
	logger     *zap.Logger
	prober     Prober
	model      *market.Model
	severity   config.SeverityConfig
	trialCount int
}

// NewAnalyzer constructs a gap Analyzer.
func NewAnalyzer(logger *zap.Logger, prober Prober, model *market.Model, severity config.SeverityConfig, trialCount int) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if model == nil {
		model = market.DefaultModel()
	}
	return &Analyzer{
		logger:     logger,
		prober:     prober,
		model:      model,
		severity:   severity,
		trialCount: trialCount,
	}
}

// AnalyzeGap measures the goal's shortfall, classifies its severity, and
// generates remediation options with simulated impacts. Comparative impacts
// always reuse the baseline's trial count so estimate noise does not swamp
// small true differences.
func (a *Analyzer) AnalyzeGap(ctx context.Context, g *goal.Snapshot, p *goal.Profile) (*recommendation.GapResult, error) {
	baseline, err := a.prober.Probability(ctx, g, p, a.trialCount)
	if err != nil {
		return nil, fmt.Errorf("gap analysis for goal %s: %w", g.ID, err)
	}
	baseProbability := baseline.SuccessProbability()

	monthlyRate := a.model.BlendedMonthlyReturn(g.Allocation)
	projected := finance.FutureValue(g.CurrentAmount, g.MonthlyContribution, monthlyRate, g.HorizonMonths)

	gapAmount := math.Max(0, g.TargetAmount-projected)
	gapPercentage := mathutil.CalculatePercentage(gapAmount, g.TargetAmount)

	required := finance.RequiredMonthly(g.TargetAmount, g.CurrentAmount, monthlyRate, g.HorizonMonths)
	capacityGap := math.Max(0, required-g.MonthlyContribution)
	capacityGapPercentage := 0.0
	if required > 0 {
		capacityGapPercentage = mathutil.CalculatePercentage(capacityGap, required)
	}

	timeframeGap := 0
	if gapAmount > 0 {
		if months, ok := finance.MonthsToReach(g.TargetAmount, g.CurrentAmount, g.MonthlyContribution, monthlyRate,
			g.HorizonMonths+maxTimeframeExtensionMonths); ok && months > g.HorizonMonths {
			timeframeGap = months - g.HorizonMonths
		}
	}

	severity := a.classify(gapPercentage)

	result := &recommendation.GapResult{
		GoalID:                g.ID,
		TargetAmount:          g.TargetAmount,
		CurrentAmount:         g.CurrentAmount,
		GapAmount:             gapAmount,
		GapPercentage:         gapPercentage,
		TimeframeGapMonths:    timeframeGap,
		CapacityGap:           capacityGap,
		CapacityGapPercentage: capacityGapPercentage,
		Severity:              severity,
		Description:           describe(severity, gapAmount, g),
	}

	if mathutil.IsZero(gapAmount) {
		return result, nil
	}

	result.Options = a.generateOptions(ctx, g, p, baseProbability, monthlyRate, required, timeframeGap)

	a.logger.Debug("gap analysis complete",
		zap.String("op", "gap.AnalyzeGap"),
		zap.String("goalID", g.ID),
		zap.Float64("gapAmount", gapAmount),
		zap.String("severity", string(severity)),
		zap.Int("options", len(result.Options)),
	)
	return result, nil
}

// classify maps gap percentage onto the configured severity ladder. The
// mapping is non-decreasing in gap percentage by construction.
func (a *Analyzer) classify(gapPercentage float64) recommendation.Severity {
	switch {
	case gapPercentage >= a.severity.CriticalPercent:
		return recommendation.SeverityCritical
	case gapPercentage >= a.severity.SignificantPercent:
		return recommendation.SeveritySignificant
	case gapPercentage >= a.severity.ModeratePercent:
		return recommendation.SeverityModerate
	default:
		return recommendation.SeverityMinimal
	}
}

func describe(severity recommendation.Severity, gapAmount float64, g *goal.Snapshot) string {
	if mathutil.IsZero(gapAmount) {
		return fmt.Sprintf("Goal %s is on track at the current contribution rate.", g.ID)
	}
	return fmt.Sprintf("Goal %s is projected to fall %s short of its %s target (%s severity).",
		g.ID, format.Currency(gapAmount), format.Currency(g.TargetAmount), severity)
}

// generateOptions perturbs exactly one axis at a time and measures each
// perturbation against the baseline probability. Options whose perturbed
// simulation fails are skipped rather than failing the whole analysis.
func (a *Analyzer) generateOptions(ctx context.Context, g *goal.Snapshot, p *goal.Profile,
	baseProbability, monthlyRate, required float64, timeframeGap int) []recommendation.RemediationOption {

	var options []recommendation.RemediationOption

	if required > g.MonthlyContribution {
		delta := required - g.MonthlyContribution
		if opt, ok := a.measure(ctx, p, baseProbability, g.WithMonthlyContribution(required), recommendation.RemediationOption{
			Type:  recommendation.AdjustContribution,
			Value: required,
			Impact: recommendation.OptionImpact{
				MonthlyBudgetImpact: delta,
				TotalBudgetImpact:   delta * float64(g.HorizonMonths),
			},
		}); ok {
			options = append(options, opt)
		}
	}

	if timeframeGap > 0 {
		extended := g.HorizonMonths + timeframeGap
		if opt, ok := a.measure(ctx, p, baseProbability, g.WithHorizonMonths(extended), recommendation.RemediationOption{
			Type:  recommendation.AdjustTimeframe,
			Value: float64(extended),
			Impact: recommendation.OptionImpact{
				TotalBudgetImpact: g.MonthlyContribution * float64(timeframeGap),
			},
		}); ok {
			options = append(options, opt)
		}
	}

	reachable := finance.FutureValue(g.CurrentAmount, g.MonthlyContribution, monthlyRate, g.HorizonMonths)
	if reachable < g.TargetAmount && reachable > g.CurrentAmount {
		if opt, ok := a.measure(ctx, p, baseProbability, g.WithTargetAmount(reachable), recommendation.RemediationOption{
			Type:  recommendation.AdjustTargetAmount,
			Value: reachable,
			Impact: recommendation.OptionImpact{
				TotalBudgetImpact: -(g.TargetAmount - reachable),
			},
		}); ok {
			options = append(options, opt)
		}
	}

	if shifted, newEquity, ok := shiftTowardEquity(g.Allocation, p.MaxEquityWeight()); ok {
		if opt, measured := a.measure(ctx, p, baseProbability, g.WithAllocation(shifted), recommendation.RemediationOption{
			Type:       recommendation.AdjustAllocation,
			Value:      newEquity,
			Allocation: shifted,
		}); measured {
			options = append(options, opt)
		}
	}

	return options
}

// measure fills in the option's probability change by re-simulating the
// perturbed snapshot.
func (a *Analyzer) measure(ctx context.Context, p *goal.Profile, baseProbability float64,
	perturbed *goal.Snapshot, opt recommendation.RemediationOption) (recommendation.RemediationOption, bool) {

	result, err := a.prober.Probability(ctx, perturbed, p, a.trialCount)
	if err != nil {
		a.logger.Warn("skipping remediation option, perturbed simulation failed",
			zap.String("op", "gap.measure"),
			zap.String("goalID", perturbed.ID),
			zap.String("type", string(opt.Type)),
			zap.Error(err),
		)
		return opt, false
	}
	opt.Impact.ProbabilityChange = result.SuccessProbability() - baseProbability
	return opt, true
}

// shiftTowardEquity moves up to equityShiftStep of weight from non-equity
// classes into equity, capped at the risk-tolerance ceiling. Returns false
// when the allocation is already at or above the ceiling.
func shiftTowardEquity(allocation map[market.AssetClass]float64, maxEquity float64) (map[market.AssetClass]float64, float64, bool) {
	currentEquity := allocation[market.Equity]
	target := math.Min(maxEquity, currentEquity+equityShiftStep)
	if target <= currentEquity+1e-9 {
		return nil, 0, false
	}
	delta := target - currentEquity
	nonEquity := 1 - currentEquity
	if nonEquity <= 0 {
		return nil, 0, false
	}

	shifted := make(map[market.AssetClass]float64, len(allocation)+1)
	for class, weight := range allocation {
		if class == market.Equity {
			continue
		}
		shifted[class] = weight * (1 - delta/nonEquity)
	}
	shifted[market.Equity] = target
	return shifted, target, true
}
