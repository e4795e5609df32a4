// Package simulation implements the Monte Carlo probability analyzer. Trials
// are sharded across a bounded worker pool and reduced after all shards
// complete; results are reproducible for a fixed seed regardless of
// scheduling because each shard owns its own deterministic random source.
package simulation

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"runtime"
	"sort"
	"time"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"

	"github.com/fincompass/goalengine/pkg/constants"
	"github.com/fincompass/goalengine/pkg/datetime"
	"github.com/fincompass/goalengine/pkg/goal"
	"github.com/fincompass/goalengine/pkg/market"
)

// ErrTimeout reports a simulation batch that exceeded its deadline. Callers
// recover by retrying with a reduced trial count; partial results are
// discarded, never returned.
var ErrTimeout = errors.New("simulation batch timed out")

// Analyzer runs Monte Carlo probability analyses against one market model.
type Analyzer struct {
	logger       *zap.Logger
	model        *market.Model
	workers      int
	batchTimeout time.Duration
	baseSeed     int64
}

// NewAnalyzer constructs an Analyzer. workers <= 0 defaults to GOMAXPROCS;
// seed 0 derives one from the clock (fix the seed for reproducible runs).
func NewAnalyzer(logger *zap.Logger, model *market.Model, workers int, batchTimeout time.Duration, seed int64) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if model == nil {
		model = market.DefaultModel()
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if batchTimeout <= 0 {
		batchTimeout = 5 * time.Second
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Analyzer{
		logger:       logger,
		model:        model,
		workers:      workers,
		batchTimeout: batchTimeout,
		baseSeed:     seed,
	}
}

// Model exposes the analyzer's market model for fingerprinting and for the
// gap analyzer's deterministic arithmetic.
func (a *Analyzer) Model() *market.Model {
	return a.model
}

// Seed exposes the base seed so cache fingerprints can include it.
func (a *Analyzer) Seed() int64 {
	return a.baseSeed
}

type shardOutcome struct {
	endings          []float64
	completionMonths []int
	err              error
}

// Analyze runs count independent trials for the goal and reduces them into a
// Result. Already-achieved goals and non-positive horizons short-circuit
// without simulating; a non-positive target fails with *goal.InvalidGoalError.
func (a *Analyzer) Analyze(ctx context.Context, g *goal.Snapshot, _ *goal.Profile, count int) (*Result, error) {
	if g.TargetAmount <= 0 {
		return nil, &goal.InvalidGoalError{GoalID: g.ID, Field: "target_amount", Reason: "must be positive"}
	}
	if count < 1 {
		return nil, &goal.InvalidGoalError{GoalID: g.ID, Field: "simulation_count", Reason: "must be at least 1"}
	}

	horizonYears := datetime.YearsFromMonths(g.HorizonMonths)

	if g.Achieved() {
		return certainResult(true, g.CurrentAmount, g.TargetAmount, horizonYears, count, a.baseSeed), nil
	}
	if g.HorizonMonths <= 0 {
		return certainResult(false, g.CurrentAmount, g.TargetAmount, 0, count, a.baseSeed), nil
	}

	start := time.Now()
	endings, completions, err := a.runTrials(ctx, g, count)
	if err != nil {
		return nil, err
	}

	result := a.reduce(g, endings, completions, horizonYears)

	a.logger.Debug("simulation complete",
		zap.String("op", "simulation.Analyze"),
		zap.String("goalID", g.ID),
		zap.Int("trials", count),
		zap.Float64("successProbability", result.SuccessProbability()),
		zap.Duration("elapsed", time.Since(start)),
	)
	return result, nil
}

// runTrials distributes trials across the worker pool and joins the shards.
// Shard i always simulates the same trial slice with the same derived seed,
// so a fixed base seed reproduces the exact trial set.
func (a *Analyzer) runTrials(ctx context.Context, g *goal.Snapshot, count int) ([]float64, []int, error) {
	workers := a.workers
	if workers > count {
		workers = count
	}

	results := make(chan shardOutcome, workers)
	deadline := time.NewTimer(a.batchTimeout)
	defer deadline.Stop()

	for shard := 0; shard < workers; shard++ {
		trials := count / workers
		if shard < count%workers {
			trials++
		}
		go func(shard, trials int) {
			rng := rand.New(rand.NewSource(a.baseSeed + int64(shard)))
			outcome := shardOutcome{
				endings:          make([]float64, 0, trials),
				completionMonths: make([]int, 0, trials),
			}
			for t := 0; t < trials; t++ {
				if t%64 == 0 && ctx.Err() != nil {
					outcome.err = ctx.Err()
					break
				}
				ending, completed := a.simulatePath(rng, g)
				outcome.endings = append(outcome.endings, ending)
				if completed > 0 {
					outcome.completionMonths = append(outcome.completionMonths, completed)
				}
			}
			results <- outcome
		}(shard, trials)
	}

	var endings []float64
	var completions []int
	for i := 0; i < workers; i++ {
		select {
		case outcome := <-results:
			if outcome.err != nil {
				return nil, nil, outcome.err
			}
			endings = append(endings, outcome.endings...)
			completions = append(completions, outcome.completionMonths...)
		case <-ctx.Done():
			return nil, nil, ctx.Err()
		case <-deadline.C:
			a.logger.Warn("simulation batch exceeded timeout",
				zap.String("op", "simulation.runTrials"),
				zap.String("goalID", g.ID),
				zap.Duration("timeout", a.batchTimeout),
			)
			return nil, nil, fmt.Errorf("goal %s: %w", g.ID, ErrTimeout)
		}
	}
	return endings, completions, nil
}

// simulatePath runs one trial: each simulated year draws an annual return per
// asset class from the model's normal assumptions, blends by allocation
// weight, and compounds monthly with the ongoing contribution. Returns the
// ending value and the first month the path crossed the target (0 if never).
func (a *Analyzer) simulatePath(rng *rand.Rand, g *goal.Snapshot) (float64, int) {
	classes := market.SortedClasses(g.Allocation)
	value := g.CurrentAmount
	crossed := 0

	monthlyRate := 0.0
	for month := 1; month <= g.HorizonMonths; month++ {
		if (month-1)%constants.MonthsPerYear == 0 {
			annual := 0.0
			for _, class := range classes {
				assumption := a.model.Assumption(class)
				draw := assumption.ExpectedReturn + assumption.Volatility*rng.NormFloat64()
				annual += g.Allocation[class] * draw
			}
			monthlyRate = annual / constants.MonthsPerYear
		}
		value = value*(1+monthlyRate) + g.MonthlyContribution
		if crossed == 0 && value >= g.TargetAmount {
			crossed = month
		}
	}
	return value, crossed
}

// reduce turns raw trial outcomes into a Result using empirical statistics.
func (a *Analyzer) reduce(g *goal.Snapshot, endings []float64, completions []int, horizonYears float64) *Result {
	sort.Float64s(endings)

	successes := 0
	for _, ending := range endings {
		if ending >= g.TargetAmount {
			successes++
		}
	}

	expected := stat.Mean(endings, nil)
	shortfall := math.Max(0, g.TargetAmount-expected)
	shortfallPct := shortfall / g.TargetAmount * 100

	percentiles := make(map[int]float64, len(percentileLevels))
	for _, level := range percentileLevels {
		percentiles[level] = stat.Quantile(float64(level)/100, stat.Empirical, endings, nil)
	}

	completion := 0
	if len(completions) > 0 {
		sort.Ints(completions)
		completion = completions[len(completions)/2]
	}

	return &Result{
		Metrics:                   &SuccessMetrics{Successes: successes, Trials: len(endings)},
		ExpectedValue:             expected,
		ShortfallAmount:           shortfall,
		ShortfallPercentage:       shortfallPct,
		Percentiles:               percentiles,
		TimeHorizonYears:          horizonYears,
		EstimatedCompletionMonths: completion,
		TrialCount:                len(endings),
		Seed:                      a.baseSeed,
	}
}
