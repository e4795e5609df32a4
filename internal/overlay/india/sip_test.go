package india

import (
	"math"
	"strings"
	"testing"

	"github.com/fincompass/goalengine/pkg/goal"
	"github.com/fincompass/goalengine/pkg/testutil"
)

func TestRecommendSIPHorizonBands(t *testing.T) {
	tests := []struct {
		name          string
		opts          []testutil.GoalOption
		expectedFunds []string
		equityHeavy   bool
	}{
		{
			name:          "short horizon stays in debt",
			opts:          []testutil.GoalOption{testutil.WithHorizonYears(2)},
			expectedFunds: []string{fundLiquid, fundShortDebt, fundHybrid},
		},
		{
			name:          "medium horizon blends index and debt",
			opts:          []testutil.GoalOption{testutil.WithHorizonYears(5)},
			expectedFunds: []string{fundLargeCapIndex, fundFlexiCap, fundShortDebt, fundGoldETF},
		},
		{
			name:          "long horizon skews equity",
			opts:          []testutil.GoalOption{testutil.WithHorizonYears(12)},
			expectedFunds: []string{fundLargeCapIndex, fundFlexiCap, fundShortDebt, fundGoldETF},
			equityHeavy:   true,
		},
		{
			name: "emergency fund always liquid",
			opts: []testutil.GoalOption{
				testutil.WithCategory(goal.CategoryEmergencyFund),
				testutil.WithHorizonYears(12),
			},
			expectedFunds: []string{fundLiquid, fundShortDebt},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := testutil.NewGoal(t, tt.opts...)
			sip := RecommendSIP(g, 20000)
			if sip == nil {
				t.Fatal("expected a SIP recommendation")
			}
			if len(sip.Allocations) != len(tt.expectedFunds) {
				t.Fatalf("got %d funds, want %d: %v", len(sip.Allocations), len(tt.expectedFunds), sip.Allocations)
			}
			for _, fund := range tt.expectedFunds {
				if _, ok := sip.Allocations[fund]; !ok {
					t.Errorf("missing fund %s in %v", fund, sip.Allocations)
				}
			}
			if tt.equityHeavy {
				equity := sip.Allocations[fundLargeCapIndex] + sip.Allocations[fundFlexiCap]
				if equity < 0.60 {
					t.Errorf("long horizon equity share = %v, want >= 0.60", equity)
				}
			}
		})
	}
}

func TestRecommendSIPAmountsSplitTheContribution(t *testing.T) {
	g := testutil.NewGoal(t)
	sip := RecommendSIP(g, 25000)
	if sip == nil {
		t.Fatal("expected a SIP recommendation")
	}

	weightSum := 0.0
	amountSum := 0.0
	for fund, weight := range sip.Allocations {
		weightSum += weight
		amountSum += sip.MonthlyAmounts[fund]
	}
	if math.Abs(weightSum-1) > 1e-9 {
		t.Errorf("allocation weights sum to %v, want 1", weightSum)
	}
	if math.Abs(amountSum-25000) > 1 {
		t.Errorf("fund amounts sum to %v, want 25000", amountSum)
	}
}

func TestRecommendSIPRejectsNonPositiveMonthly(t *testing.T) {
	g := testutil.NewGoal(t)
	if sip := RecommendSIP(g, 0); sip != nil {
		t.Errorf("zero monthly should yield nil, got %v", sip)
	}
	if sip := RecommendSIP(g, -500); sip != nil {
		t.Errorf("negative monthly should yield nil, got %v", sip)
	}
	if sip := RecommendSIP(g, 0.004); sip != nil {
		t.Errorf("monthly below currency tolerance should yield nil, got %v", sip)
	}
}

func TestTaxSavingOptions(t *testing.T) {
	short := testutil.NewGoal(t, testutil.WithHorizonYears(2))
	if opts := taxSavingOptions(short); len(opts) != 0 {
		t.Errorf("short horizon should have no tax vehicles, got %v", opts)
	}

	retirement := testutil.NewGoal(t,
		testutil.WithCategory(goal.CategoryRetirement),
		testutil.WithHorizonYears(20),
	)
	opts := taxSavingOptions(retirement)
	joined := strings.Join(opts, "\n")
	for _, want := range []string{"ELSS", "NPS", "PPF"} {
		if !strings.Contains(joined, want) {
			t.Errorf("long retirement horizon should propose %s, got %v", want, opts)
		}
	}
}
