// Package goal defines the immutable goal and profile snapshots consumed by
// the engine, together with the boundary validation that turns loosely typed
// caller input into well-formed values. All defaulting happens here, once,
// at construction time; downstream code never probes for missing fields.
package goal

import (
	"fmt"
	"time"

	"github.com/fincompass/goalengine/pkg/constants"
	"github.com/fincompass/goalengine/pkg/datetime"
	"github.com/fincompass/goalengine/pkg/market"
	"github.com/fincompass/goalengine/pkg/mathutil"
)

// Category classifies what a goal is funding.
type Category string

const (
	CategoryEmergencyFund   Category = "emergency_fund"
	CategoryRetirement      Category = "retirement"
	CategoryEarlyRetirement Category = "early_retirement"
	CategoryEducation       Category = "education"
	CategoryHomePurchase    Category = "home_purchase"
	CategoryWedding         Category = "wedding"
	CategoryDebtRepayment   Category = "debt_repayment"
	CategoryDiscretionary   Category = "discretionary"
	CategoryLegacy          Category = "legacy"
	CategoryCharitable      Category = "charitable"
	CategoryCustom          Category = "custom"
)

var validCategories = map[Category]bool{
	CategoryEmergencyFund:   true,
	CategoryRetirement:      true,
	CategoryEarlyRetirement: true,
	CategoryEducation:       true,
	CategoryHomePurchase:    true,
	CategoryWedding:         true,
	CategoryDebtRepayment:   true,
	CategoryDiscretionary:   true,
	CategoryLegacy:          true,
	CategoryCharitable:      true,
	CategoryCustom:          true,
}

// ParseCategory validates a category string.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !validCategories[c] {
		return "", &InvalidGoalError{Field: "category", Reason: fmt.Sprintf("unknown category %q", s)}
	}
	return c, nil
}

// Importance expresses how much the owner cares about meeting the goal.
type Importance string

const (
	ImportanceLow    Importance = "low"
	ImportanceMedium Importance = "medium"
	ImportanceHigh   Importance = "high"
)

// Flexibility expresses how movable the goal's target date and amount are.
type Flexibility string

const (
	FlexibilityFixed    Flexibility = "fixed"
	FlexibilitySomewhat Flexibility = "somewhat_flexible"
	FlexibilityVery     Flexibility = "very_flexible"
)

// RiskTolerance is the profile owner's appetite for volatility.
type RiskTolerance string

const (
	RiskConservative RiskTolerance = "conservative"
	RiskModerate     RiskTolerance = "moderate"
	RiskAggressive   RiskTolerance = "aggressive"
)

// InvalidGoalError reports a goal snapshot that cannot be simulated. It is
// surfaced to the caller and never retried.
type InvalidGoalError struct {
	GoalID string
	Field  string
	Reason string
}

func (e *InvalidGoalError) Error() string {
	if e.GoalID != "" {
		return fmt.Sprintf("invalid goal %s: %s: %s", e.GoalID, e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid goal: %s: %s", e.Field, e.Reason)
}

// Snapshot is an immutable view of one financial goal. Construct via
// NewSnapshot so the invariants hold; treat all fields as read-only.
type Snapshot struct {
	ID                  string
	ProfileID           string
	Category            Category
	TargetAmount        float64
	CurrentAmount       float64
	MonthlyContribution float64
	TargetDate          *time.Time
	Importance          Importance
	Flexibility         Flexibility
	Allocation          map[market.AssetClass]float64
	Notes               string

	// HorizonMonths is resolved once at construction from TargetDate,
	// degrading to the configured default when the date is absent or past.
	HorizonMonths int
}

// NewSnapshot validates raw goal fields and resolves defaults. It fails fast
// with *InvalidGoalError on a non-positive target amount, unknown category,
// negative amounts, or allocation weights that do not sum to 1.
func NewSnapshot(id, profileID string, category Category, targetAmount, currentAmount, monthlyContribution float64,
	targetDate *time.Time, importance Importance, flexibility Flexibility,
	allocation map[market.AssetClass]float64, notes string, now time.Time) (*Snapshot, error) {

	if targetAmount <= 0 {
		return nil, &InvalidGoalError{GoalID: id, Field: "target_amount", Reason: "must be positive"}
	}
	if !validCategories[category] {
		return nil, &InvalidGoalError{GoalID: id, Field: "category", Reason: fmt.Sprintf("unknown category %q", category)}
	}
	if currentAmount < 0 {
		return nil, &InvalidGoalError{GoalID: id, Field: "current_amount", Reason: "must not be negative"}
	}
	if monthlyContribution < 0 {
		return nil, &InvalidGoalError{GoalID: id, Field: "monthly_contribution", Reason: "must not be negative"}
	}
	alloc, err := normalizeAllocation(id, allocation)
	if err != nil {
		return nil, err
	}
	if importance == "" {
		importance = ImportanceMedium
	}
	if flexibility == "" {
		flexibility = FlexibilitySomewhat
	}

	return &Snapshot{
		ID:                  id,
		ProfileID:           profileID,
		Category:            category,
		TargetAmount:        targetAmount,
		CurrentAmount:       currentAmount,
		MonthlyContribution: monthlyContribution,
		TargetDate:          targetDate,
		Importance:          importance,
		Flexibility:         flexibility,
		Allocation:          alloc,
		Notes:               notes,
		HorizonMonths:       datetime.HorizonMonths(targetDate, now, constants.DefaultHorizonMonths),
	}, nil
}

func normalizeAllocation(goalID string, allocation map[market.AssetClass]float64) (map[market.AssetClass]float64, error) {
	if len(allocation) == 0 {
		// No allocation provided: park everything in cash.
		return map[market.AssetClass]float64{market.Cash: 1.0}, nil
	}
	sum := 0.0
	for class, weight := range allocation {
		if weight < 0 {
			return nil, &InvalidGoalError{GoalID: goalID, Field: "asset_allocation",
				Reason: fmt.Sprintf("negative weight for %s", class)}
		}
		sum += weight
	}
	if !mathutil.WithinTolerance(sum, 1, constants.AllocationTolerance) {
		return nil, &InvalidGoalError{GoalID: goalID, Field: "asset_allocation",
			Reason: fmt.Sprintf("weights sum to %.6f, expected 1", sum)}
	}
	copied := make(map[market.AssetClass]float64, len(allocation))
	for class, weight := range allocation {
		copied[class] = weight
	}
	return copied, nil
}

// Achieved reports whether the goal is already met.
func (s *Snapshot) Achieved() bool {
	return s.CurrentAmount >= s.TargetAmount
}

// CloneAllocation returns a copy of the allocation map.
func (s *Snapshot) CloneAllocation() map[market.AssetClass]float64 {
	copied := make(map[market.AssetClass]float64, len(s.Allocation))
	for class, weight := range s.Allocation {
		copied[class] = weight
	}
	return copied
}

func (s *Snapshot) clone() *Snapshot {
	copied := *s
	copied.Allocation = s.CloneAllocation()
	if s.TargetDate != nil {
		d := *s.TargetDate
		copied.TargetDate = &d
	}
	return &copied
}

// WithMonthlyContribution returns a copy with a replacement contribution.
func (s *Snapshot) WithMonthlyContribution(monthly float64) *Snapshot {
	copied := s.clone()
	copied.MonthlyContribution = monthly
	return copied
}

// WithTargetAmount returns a copy with a replacement target amount.
func (s *Snapshot) WithTargetAmount(target float64) *Snapshot {
	copied := s.clone()
	copied.TargetAmount = target
	return copied
}

// WithHorizonMonths returns a copy with a replacement horizon, shifting the
// target date by the same delta when one is set.
func (s *Snapshot) WithHorizonMonths(months int) *Snapshot {
	copied := s.clone()
	if s.TargetDate != nil {
		shifted := s.TargetDate.AddDate(0, months-s.HorizonMonths, 0)
		copied.TargetDate = &shifted
	}
	copied.HorizonMonths = months
	return copied
}

// WithAllocation returns a copy with a replacement allocation. The new
// allocation is deep-copied; the caller keeps ownership of its map.
func (s *Snapshot) WithAllocation(allocation map[market.AssetClass]float64) *Snapshot {
	copied := s.clone()
	copied.Allocation = make(map[market.AssetClass]float64, len(allocation))
	for class, weight := range allocation {
		copied.Allocation[class] = weight
	}
	return copied
}
