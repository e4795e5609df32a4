// Package recommend turns raw remediation options into ranked, caller-facing
// adjustment recommendations, scores the engine's confidence in them, and
// recomputes the impact of individual what-if recommendations.
package recommend

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"

	"github.com/fincompass/goalengine/internal/simulation"
	"github.com/fincompass/goalengine/pkg/constants"
	"github.com/fincompass/goalengine/pkg/datetime"
	"github.com/fincompass/goalengine/pkg/format"
	"github.com/fincompass/goalengine/pkg/goal"
	"github.com/fincompass/goalengine/pkg/market"
	"github.com/fincompass/goalengine/pkg/mathutil"
	"github.com/fincompass/goalengine/pkg/recommendation"
)

// confidenceRuns is how many independent low-count re-simulations feed the
// stability estimate behind the confidence score.
const confidenceRuns = 5

// Prober supplies success probabilities; the engine injects a cache-backed
// implementation.
type Prober interface {
	Probability(ctx context.Context, g *goal.Snapshot, p *goal.Profile, count int) (*simulation.Result, error)
}

// Set is the recommender's full answer for one goal.
type Set struct {
	GoalID            string
	AdjustmentOptions []recommendation.AdjustmentRecommendation
	TargetProbability float64
	ConfidenceScore   float64
}

// Recommender filters, ranks, and scores remediation options.
type Recommender struct {
	logger       *zap.Logger
	prober       Prober
	model        *market.Model
	trialCount   int
	batchTimeout time.Duration
}

// NewRecommender constructs a Recommender.
func NewRecommender(logger *zap.Logger, prober Prober, model *market.Model, trialCount int, batchTimeout time.Duration) *Recommender {
	if logger == nil {
		logger = zap.NewNop()
	}
	if model == nil {
		model = market.DefaultModel()
	}
	return &Recommender{
		logger:       logger,
		prober:       prober,
		model:        model,
		trialCount:   trialCount,
		batchTimeout: batchTimeout,
	}
}

// Recommend converts the gap result's raw options into ranked
// recommendations. When allowedTypes is non-empty, options of other types are
// dropped before ranking. TargetProbability is the best new probability any
// surviving option reaches.
func (r *Recommender) Recommend(ctx context.Context, gapResult *recommendation.GapResult,
	g *goal.Snapshot, p *goal.Profile, allowedTypes []recommendation.AdjustmentType) (*Set, error) {

	baseline, err := r.prober.Probability(ctx, g, p, r.trialCount)
	if err != nil {
		return nil, fmt.Errorf("recommendations for goal %s: %w", g.ID, err)
	}
	baseProbability := baseline.SuccessProbability()

	allowed := func(t recommendation.AdjustmentType) bool { return true }
	if len(allowedTypes) > 0 {
		permitted := make(map[recommendation.AdjustmentType]bool, len(allowedTypes))
		for _, t := range allowedTypes {
			permitted[t] = true
		}
		allowed = func(t recommendation.AdjustmentType) bool { return permitted[t] }
	}

	set := &Set{GoalID: g.ID, TargetProbability: baseProbability}
	for _, opt := range gapResult.Options {
		if !allowed(opt.Type) {
			continue
		}
		rec := r.build(g, p, opt, baseProbability)
		if rec.ImpactMetrics.NewProbability > set.TargetProbability {
			set.TargetProbability = rec.ImpactMetrics.NewProbability
		}
		set.AdjustmentOptions = append(set.AdjustmentOptions, rec)
	}

	set.AdjustmentOptions = Prioritize(set.AdjustmentOptions)
	set.ConfidenceScore = r.confidence(ctx, g, p)

	return set, nil
}

// build assembles one caller-facing recommendation from a raw option.
func (r *Recommender) build(g *goal.Snapshot, p *goal.Profile,
	opt recommendation.RemediationOption, baseProbability float64) recommendation.AdjustmentRecommendation {

	return recommendation.AdjustmentRecommendation{
		Type:        opt.Type,
		Description: describeOption(opt, g),
		Difficulty:  classifyDifficulty(opt, g, p),
		Value:       opt.Value,
		Allocation:  opt.Allocation,
		ImpactMetrics: recommendation.ImpactMetrics{
			ProbabilityIncrease: opt.Impact.ProbabilityChange,
			NewProbability:      mathutil.Clamp(baseProbability+opt.Impact.ProbabilityChange, 0, 1),
			FinancialImpact: recommendation.FinancialImpact{
				MonthlyChange:         opt.Impact.MonthlyBudgetImpact,
				TotalChange:           opt.Impact.TotalBudgetImpact,
				TimeframeChangeMonths: timeframeChange(opt, g),
			},
		},
	}
}

// confidence estimates simulation stability: several independent low-count
// runs at perturbed seeds, with the spread mapped inversely onto [0,1]. A
// tight spread means repeated analyses agree and the ranking can be trusted.
func (r *Recommender) confidence(ctx context.Context, g *goal.Snapshot, p *goal.Profile) float64 {
	probabilities := make([]float64, 0, confidenceRuns)
	for i := 0; i < confidenceRuns; i++ {
		analyzer := simulation.NewAnalyzer(r.logger, r.model, 1, r.batchTimeout, int64(i+1)*7919)
		result, err := analyzer.Analyze(ctx, g, p, constants.MinimumSimulationCount)
		if err != nil {
			r.logger.Warn("confidence sample failed",
				zap.String("op", "recommend.confidence"),
				zap.String("goalID", g.ID),
				zap.Error(err),
			)
			continue
		}
		probabilities = append(probabilities, result.SuccessProbability())
	}
	if len(probabilities) < 2 {
		return 0.5
	}
	spread := stat.StdDev(probabilities, nil)
	confidence := 1 / (1 + 10*spread)
	if confidence > 1 {
		confidence = 1
	}
	return confidence
}

func timeframeChange(opt recommendation.RemediationOption, g *goal.Snapshot) int {
	if opt.Type != recommendation.AdjustTimeframe {
		return 0
	}
	return int(opt.Value) - g.HorizonMonths
}

func describeOption(opt recommendation.RemediationOption, g *goal.Snapshot) string {
	switch opt.Type {
	case recommendation.AdjustContribution:
		return fmt.Sprintf("Raise the monthly contribution from %s to %s.",
			format.Currency(g.MonthlyContribution), format.Currency(opt.Value))
	case recommendation.AdjustTimeframe:
		extra := int(opt.Value) - g.HorizonMonths
		if g.TargetDate != nil {
			revised, err := datetime.OffsetDate(g.TargetDate.Format(datetime.DateTimeLayout), datetime.DateTimeLayout, extra)
			if err == nil {
				return fmt.Sprintf("Extend the target date by %d months, to %s.", extra, revised)
			}
		}
		return fmt.Sprintf("Extend the target date by %d months (to %d months out).", extra, int(opt.Value))
	case recommendation.AdjustTargetAmount:
		return fmt.Sprintf("Lower the target from %s to the reachable %s.",
			format.Currency(g.TargetAmount), format.Currency(opt.Value))
	case recommendation.AdjustAllocation:
		return fmt.Sprintf("Shift the allocation to %.0f%% equity for higher expected growth.", opt.Value*100)
	default:
		return fmt.Sprintf("Adjust %s.", opt.Type)
	}
}

// classifyDifficulty grades an option by what it demands of the owner:
// contribution raises are graded against disposable income, date and target
// changes against the goal's flexibility, allocation shifts against risk
// tolerance.
func classifyDifficulty(opt recommendation.RemediationOption, g *goal.Snapshot, p *goal.Profile) recommendation.Difficulty {
	switch opt.Type {
	case recommendation.AdjustContribution:
		disposable := p.DisposableIncome()
		if disposable <= 0 {
			return recommendation.DifficultyDifficult
		}
		share := opt.Impact.MonthlyBudgetImpact / disposable
		switch {
		case share <= 0.10:
			return recommendation.DifficultyEasy
		case share <= 0.25:
			return recommendation.DifficultyMedium
		case share <= 0.50:
			return recommendation.DifficultyDifficult
		default:
			return recommendation.DifficultyVeryDifficult
		}
	case recommendation.AdjustTimeframe:
		switch g.Flexibility {
		case goal.FlexibilityVery:
			return recommendation.DifficultyEasy
		case goal.FlexibilityFixed:
			return recommendation.DifficultyDifficult
		default:
			return recommendation.DifficultyMedium
		}
	case recommendation.AdjustTargetAmount:
		switch g.Flexibility {
		case goal.FlexibilityVery:
			return recommendation.DifficultyMedium
		case goal.FlexibilityFixed:
			return recommendation.DifficultyVeryDifficult
		default:
			return recommendation.DifficultyDifficult
		}
	case recommendation.AdjustAllocation:
		switch p.RiskTolerance {
		case goal.RiskAggressive:
			return recommendation.DifficultyEasy
		case goal.RiskConservative:
			return recommendation.DifficultyDifficult
		default:
			return recommendation.DifficultyMedium
		}
	default:
		return recommendation.DifficultyMedium
	}
}

// Prioritize stably sorts recommendations by probability gain per unit of
// budget impact, highest first, breaking ties with lower implementation
// difficulty. The input slice is not modified.
func Prioritize(recs []recommendation.AdjustmentRecommendation) []recommendation.AdjustmentRecommendation {
	ordered := make([]recommendation.AdjustmentRecommendation, len(recs))
	copy(ordered, recs)
	sort.SliceStable(ordered, func(i, j int) bool {
		gi, gj := ordered[i].GainPerCost(), ordered[j].GainPerCost()
		if gi != gj {
			return gi > gj
		}
		return ordered[i].Difficulty.Rank() < ordered[j].Difficulty.Rank()
	})
	return ordered
}
