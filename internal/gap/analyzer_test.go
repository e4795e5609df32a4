package gap

import (
	"context"
	"math"
	"testing"

	"github.com/fincompass/goalengine/internal/config"
	"github.com/fincompass/goalengine/internal/simulation"
	"github.com/fincompass/goalengine/pkg/finance"
	"github.com/fincompass/goalengine/pkg/goal"
	"github.com/fincompass/goalengine/pkg/market"
	"github.com/fincompass/goalengine/pkg/recommendation"
	"github.com/fincompass/goalengine/pkg/testutil"
)

// deterministicProber maps a snapshot straight to the ratio of its expected
// projection to its target, so option impacts are exact and repeatable.
type deterministicProber struct {
	model *market.Model
}

func (d *deterministicProber) Probability(_ context.Context, g *goal.Snapshot, _ *goal.Profile, count int) (*simulation.Result, error) {
	rate := d.model.BlendedMonthlyReturn(g.Allocation)
	projected := finance.FutureValue(g.CurrentAmount, g.MonthlyContribution, rate, g.HorizonMonths)
	p := math.Min(1, projected/g.TargetAmount)
	return &simulation.Result{
		Metrics:    &simulation.SuccessMetrics{Successes: int(p * float64(count)), Trials: count},
		TrialCount: count,
	}, nil
}

func newTestAnalyzer() *Analyzer {
	model := market.DefaultModel()
	return NewAnalyzer(nil, &deterministicProber{model: model}, model, config.Default().Severity, 1000)
}

func TestAnalyzeGapScenario(t *testing.T) {
	analyzer := newTestAnalyzer()

	result, err := analyzer.AnalyzeGap(context.Background(), testutil.NewGoal(t), testutil.NewProfile())
	if err != nil {
		t.Fatalf("AnalyzeGap returned error: %v", err)
	}

	if result.GapAmount <= 0 {
		t.Errorf("expected a positive gap, got %v", result.GapAmount)
	}
	if result.Severity != recommendation.SeverityModerate {
		t.Errorf("severity = %s, want MODERATE for a ~12%% gap", result.Severity)
	}
	if result.CapacityGap <= 0 {
		t.Errorf("expected a capacity gap, got %v", result.CapacityGap)
	}
	if result.TimeframeGapMonths <= 0 {
		t.Errorf("expected a timeframe gap, got %d", result.TimeframeGapMonths)
	}
	if len(result.Options) == 0 {
		t.Fatal("expected remediation options for an underfunded goal")
	}

	var contribution *recommendation.RemediationOption
	for i := range result.Options {
		if result.Options[i].Type == recommendation.AdjustContribution {
			contribution = &result.Options[i]
		}
	}
	if contribution == nil {
		t.Fatal("expected a contribution option")
	}
	if contribution.Value <= 20000 {
		t.Errorf("contribution option value = %v, must exceed the original 20000", contribution.Value)
	}
	if contribution.Impact.MonthlyBudgetImpact <= 0 {
		t.Errorf("contribution option monthly impact = %v, want positive", contribution.Impact.MonthlyBudgetImpact)
	}
	if contribution.Impact.ProbabilityChange <= 0 {
		t.Errorf("contribution option probability change = %v, want positive", contribution.Impact.ProbabilityChange)
	}
}

func TestAnalyzeGapAchievedGoal(t *testing.T) {
	analyzer := newTestAnalyzer()

	g := testutil.NewGoal(t, testutil.WithTarget(100), testutil.WithCurrent(1000000))
	result, err := analyzer.AnalyzeGap(context.Background(), g, testutil.NewProfile())
	if err != nil {
		t.Fatalf("AnalyzeGap returned error: %v", err)
	}

	if result.GapAmount != 0 {
		t.Errorf("gap for an over-funded goal = %v, want 0", result.GapAmount)
	}
	if result.Severity != recommendation.SeverityMinimal {
		t.Errorf("severity = %s, want MINIMAL", result.Severity)
	}
	if len(result.Options) != 0 {
		t.Errorf("expected no options for an over-funded goal, got %d", len(result.Options))
	}
}

func TestClassifyLadderIsMonotonic(t *testing.T) {
	analyzer := newTestAnalyzer()

	tests := []struct {
		gapPercentage float64
		expected      recommendation.Severity
	}{
		{0, recommendation.SeverityMinimal},
		{5, recommendation.SeverityMinimal},
		{10, recommendation.SeverityModerate},
		{24.9, recommendation.SeverityModerate},
		{25, recommendation.SeveritySignificant},
		{49.9, recommendation.SeveritySignificant},
		{50, recommendation.SeverityCritical},
		{95, recommendation.SeverityCritical},
	}

	previous := recommendation.SeverityMinimal
	for _, tt := range tests {
		got := analyzer.classify(tt.gapPercentage)
		if got != tt.expected {
			t.Errorf("classify(%v) = %s, want %s", tt.gapPercentage, got, tt.expected)
		}
		if !got.AtLeast(previous) {
			t.Errorf("severity decreased at gap %v%%", tt.gapPercentage)
		}
		previous = got
	}
}

func TestOptionsPerturbOneAxisEach(t *testing.T) {
	analyzer := newTestAnalyzer()

	result, err := analyzer.AnalyzeGap(context.Background(), testutil.NewGoal(t), testutil.NewProfile())
	if err != nil {
		t.Fatalf("AnalyzeGap returned error: %v", err)
	}

	seen := make(map[recommendation.AdjustmentType]int)
	for _, opt := range result.Options {
		seen[opt.Type]++
	}
	for adjType, n := range seen {
		if n > 1 {
			t.Errorf("axis %s proposed %d times, want at most once", adjType, n)
		}
	}
	if seen[recommendation.AdjustAllocation] != 0 {
		t.Error("equity already at the moderate-risk ceiling, no allocation option expected")
	}
	// The scenario goal is underfunded, so the three budget axes must all be
	// represented.
	for _, adjType := range []recommendation.AdjustmentType{
		recommendation.AdjustContribution,
		recommendation.AdjustTimeframe,
		recommendation.AdjustTargetAmount,
	} {
		if seen[adjType] == 0 {
			t.Errorf("missing %s option", adjType)
		}
	}
}

func TestShiftTowardEquity(t *testing.T) {
	allocation := map[market.AssetClass]float64{
		market.Equity: 0.50,
		market.Debt:   0.40,
		market.Gold:   0.10,
	}

	shifted, newEquity, ok := shiftTowardEquity(allocation, 0.70)
	if !ok {
		t.Fatal("expected a shift below the ceiling")
	}
	if math.Abs(newEquity-0.70) > 1e-9 {
		t.Errorf("new equity = %v, want 0.70", newEquity)
	}
	sum := 0.0
	for _, weight := range shifted {
		sum += weight
	}
	if math.Abs(sum-1) > 1e-9 {
		t.Errorf("shifted weights sum to %v, want 1", sum)
	}

	// Already at the ceiling: no option.
	atCeiling := map[market.AssetClass]float64{market.Equity: 0.70, market.Debt: 0.30}
	if _, _, ok := shiftTowardEquity(atCeiling, 0.70); ok {
		t.Error("expected no shift at the equity ceiling")
	}
}
