// Package testutil provides common utility functions for testing.
package testutil

import (
	"time"

	"github.com/fincompass/goalengine/pkg/datetime"
	"github.com/fincompass/goalengine/pkg/goal"
	"github.com/fincompass/goalengine/pkg/market"
)

// Now is the fixed reference time used across tests so horizon arithmetic is
// reproducible.
var Now = time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC)

// GoalOption mutates the raw inputs before snapshot construction.
type GoalOption func(*goalInputs)

type goalInputs struct {
	id          string
	category    goal.Category
	target      float64
	current     float64
	monthly     float64
	targetDate  *time.Time
	importance  goal.Importance
	flexibility goal.Flexibility
	allocation  map[market.AssetClass]float64
	notes       string
}

// WithTarget overrides the target amount.
func WithTarget(target float64) GoalOption {
	return func(in *goalInputs) { in.target = target }
}

// WithCurrent overrides the current amount.
func WithCurrent(current float64) GoalOption {
	return func(in *goalInputs) { in.current = current }
}

// WithMonthly overrides the monthly contribution.
func WithMonthly(monthly float64) GoalOption {
	return func(in *goalInputs) { in.monthly = monthly }
}

// WithHorizonYears sets the target date the given number of years past Now.
func WithHorizonYears(years int) GoalOption {
	return func(in *goalInputs) {
		d := Now.AddDate(years, 0, 0)
		in.targetDate = &d
	}
}

// WithNoTargetDate clears the target date so the default horizon applies.
func WithNoTargetDate() GoalOption {
	return func(in *goalInputs) { in.targetDate = nil }
}

// WithAllocationWeights overrides the allocation map.
func WithAllocationWeights(allocation map[market.AssetClass]float64) GoalOption {
	return func(in *goalInputs) { in.allocation = allocation }
}

// WithNotes overrides the free-text notes.
func WithNotes(notes string) GoalOption {
	return func(in *goalInputs) { in.notes = notes }
}

// WithCategory overrides the category.
func WithCategory(category goal.Category) GoalOption {
	return func(in *goalInputs) { in.category = category }
}

// WithFlexibility overrides the flexibility.
func WithFlexibility(flexibility goal.Flexibility) GoalOption {
	return func(in *goalInputs) { in.flexibility = flexibility }
}

// NewGoal builds a valid goal snapshot: 1 crore target, 20 lakh saved, 20k
// monthly over 9 years at 70/20/10 equity/debt/gold, overridable per test.
func NewGoal(t interface{ Fatalf(string, ...interface{}) }, opts ...GoalOption) *goal.Snapshot {
	date := datetime.MustParseTime(datetime.DateTimeLayout, "2035-08")
	in := &goalInputs{
		id:          "goal-test",
		category:    goal.CategoryHomePurchase,
		target:      10000000,
		current:     2000000,
		monthly:     20000,
		targetDate:  &date,
		importance:  goal.ImportanceHigh,
		flexibility: goal.FlexibilitySomewhat,
		allocation: map[market.AssetClass]float64{
			market.Equity: 0.70,
			market.Debt:   0.20,
			market.Gold:   0.10,
		},
	}
	for _, opt := range opts {
		opt(in)
	}

	snapshot, err := goal.NewSnapshot(in.id, "profile-test", in.category,
		in.target, in.current, in.monthly, in.targetDate,
		in.importance, in.flexibility, in.allocation, in.notes, Now)
	if err != nil {
		t.Fatalf("failed to build test goal: %v", err)
	}
	return snapshot
}

// NewProfile builds a representative Indian profile.
func NewProfile() *goal.Profile {
	return &goal.Profile{
		ID:              "profile-test",
		AnnualIncome:    2400000,
		MonthlyExpenses: 90000,
		RiskTolerance:   goal.RiskModerate,
		Age:             34,
		Country:         "IN",
		TaxBracket:      0.30,
		Holdings: map[market.AssetClass]float64{
			market.Equity: 1400000,
			market.Debt:   400000,
		},
	}
}
