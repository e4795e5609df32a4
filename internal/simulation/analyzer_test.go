package simulation

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/fincompass/goalengine/pkg/goal"
	"github.com/fincompass/goalengine/pkg/testutil"
)

func newTestAnalyzer(seed int64) *Analyzer {
	return NewAnalyzer(nil, nil, 4, 30*time.Second, seed)
}

func TestAnalyzeProbabilityInRange(t *testing.T) {
	analyzer := newTestAnalyzer(42)

	counts := []int{1, 10, 500, 2000}
	for _, count := range counts {
		result, err := analyzer.Analyze(context.Background(), testutil.NewGoal(t), testutil.NewProfile(), count)
		if err != nil {
			t.Fatalf("Analyze(%d trials) returned error: %v", count, err)
		}
		p := result.SuccessProbability()
		if p < 0 || p > 1 {
			t.Errorf("success probability %v out of [0,1] at %d trials", p, count)
		}
		if result.TrialCount != count {
			t.Errorf("TrialCount = %d, want %d", result.TrialCount, count)
		}
	}
}

func TestAnalyzeScenarioStrictlyBetweenZeroAndOne(t *testing.T) {
	// target 1 crore, current 20 lakh, 20k monthly over 9 years at 70/20/10:
	// underfunded on expectation but reachable on good equity paths.
	analyzer := newTestAnalyzer(42)

	result, err := analyzer.Analyze(context.Background(), testutil.NewGoal(t), testutil.NewProfile(), 2000)
	if err != nil {
		t.Fatalf("Analyze returned error: %v", err)
	}
	p := result.SuccessProbability()
	if p <= 0 || p >= 1 {
		t.Errorf("expected probability strictly between 0 and 1, got %v", p)
	}
	if result.ExpectedValue <= 0 {
		t.Errorf("expected value should be positive, got %v", result.ExpectedValue)
	}
	if result.ShortfallAmount < 0 {
		t.Errorf("shortfall should never be negative, got %v", result.ShortfallAmount)
	}
	for _, level := range []int{10, 25, 50, 75, 90} {
		if _, ok := result.Percentiles[level]; !ok {
			t.Errorf("missing percentile %d", level)
		}
	}
	if result.Percentiles[10] > result.Percentiles[90] {
		t.Error("percentiles are not ordered")
	}
}

func TestAnalyzeAchievedGoalShortCircuits(t *testing.T) {
	analyzer := newTestAnalyzer(1)

	g := testutil.NewGoal(t, testutil.WithTarget(100), testutil.WithCurrent(1000000))
	result, err := analyzer.Analyze(context.Background(), g, testutil.NewProfile(), 1000)
	if err != nil {
		t.Fatalf("Analyze returned error: %v", err)
	}
	if p := result.SuccessProbability(); p != 1.0 {
		t.Errorf("achieved goal probability = %v, want 1.0", p)
	}
	if result.ShortfallAmount != 0 {
		t.Errorf("achieved goal shortfall = %v, want 0", result.ShortfallAmount)
	}
}

func TestAnalyzeNonPositiveHorizon(t *testing.T) {
	analyzer := newTestAnalyzer(1)

	g := testutil.NewGoal(t)
	zeroHorizon := g.WithHorizonMonths(0)

	result, err := analyzer.Analyze(context.Background(), zeroHorizon, testutil.NewProfile(), 500)
	if err != nil {
		t.Fatalf("Analyze returned error: %v", err)
	}
	if p := result.SuccessProbability(); p != 0 {
		t.Errorf("unmet goal with zero horizon probability = %v, want 0", p)
	}
}

func TestAnalyzeInvalidInputs(t *testing.T) {
	analyzer := newTestAnalyzer(1)

	bad := &goal.Snapshot{ID: "bad", TargetAmount: 0, HorizonMonths: 12}
	var invalid *goal.InvalidGoalError
	if _, err := analyzer.Analyze(context.Background(), bad, testutil.NewProfile(), 100); !errors.As(err, &invalid) {
		t.Errorf("expected InvalidGoalError for zero target, got %v", err)
	}

	if _, err := analyzer.Analyze(context.Background(), testutil.NewGoal(t), testutil.NewProfile(), 0); !errors.As(err, &invalid) {
		t.Errorf("expected InvalidGoalError for zero trial count, got %v", err)
	}
}

func TestAnalyzeDeterministicPerSeed(t *testing.T) {
	first := newTestAnalyzer(99)
	second := newTestAnalyzer(99)

	a, err := first.Analyze(context.Background(), testutil.NewGoal(t), testutil.NewProfile(), 1000)
	if err != nil {
		t.Fatalf("first Analyze returned error: %v", err)
	}
	b, err := second.Analyze(context.Background(), testutil.NewGoal(t), testutil.NewProfile(), 1000)
	if err != nil {
		t.Fatalf("second Analyze returned error: %v", err)
	}

	if a.SuccessProbability() != b.SuccessProbability() {
		t.Errorf("same seed produced differing probabilities: %v vs %v",
			a.SuccessProbability(), b.SuccessProbability())
	}
	if math.Abs(a.ExpectedValue-b.ExpectedValue) > 1e-6 {
		t.Errorf("same seed produced differing expected values: %v vs %v",
			a.ExpectedValue, b.ExpectedValue)
	}
}

func TestAnalyzeContributionMonotonicity(t *testing.T) {
	// With a fixed seed the return draws are identical across runs, and the
	// path value is increasing in the contribution, so a higher contribution
	// can never lower the success probability.
	analyzer := newTestAnalyzer(7)

	base, err := analyzer.Analyze(context.Background(), testutil.NewGoal(t), testutil.NewProfile(), 1000)
	if err != nil {
		t.Fatalf("Analyze returned error: %v", err)
	}
	raised, err := analyzer.Analyze(context.Background(),
		testutil.NewGoal(t, testutil.WithMonthly(45000)), testutil.NewProfile(), 1000)
	if err != nil {
		t.Fatalf("Analyze returned error: %v", err)
	}

	if raised.SuccessProbability() < base.SuccessProbability() {
		t.Errorf("raising the contribution lowered probability: %v -> %v",
			base.SuccessProbability(), raised.SuccessProbability())
	}
}

func TestAnalyzeCancelledContext(t *testing.T) {
	analyzer := newTestAnalyzer(1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := analyzer.Analyze(ctx, testutil.NewGoal(t), testutil.NewProfile(), 50000); err == nil {
		t.Error("expected error from cancelled context")
	}
}

func TestResultSuccessProbabilityWithoutMetrics(t *testing.T) {
	var nilResult *Result
	if got := nilResult.SuccessProbability(); got != 0 {
		t.Errorf("nil result probability = %v, want 0", got)
	}
	empty := &Result{}
	if got := empty.SuccessProbability(); got != 0 {
		t.Errorf("metric-less result probability = %v, want 0", got)
	}
}
