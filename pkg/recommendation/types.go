// Package recommendation defines the caller-facing result types shared by the
// gap analyzer, the adjustment recommender, and the country overlays.
package recommendation

import "github.com/fincompass/goalengine/pkg/market"

// AdjustmentType identifies which single axis of the goal an option perturbs.
type AdjustmentType string

const (
	AdjustContribution AdjustmentType = "contribution"
	AdjustTimeframe    AdjustmentType = "timeframe"
	AdjustTargetAmount AdjustmentType = "target_amount"
	AdjustAllocation   AdjustmentType = "allocation"
)

// Severity classifies how far a goal is from its target.
type Severity string

const (
	SeverityCritical    Severity = "CRITICAL"
	SeveritySignificant Severity = "SIGNIFICANT"
	SeverityModerate    Severity = "MODERATE"
	SeverityMinimal     Severity = "MINIMAL"
)

// severityRank orders severities from mildest to worst for comparisons.
var severityRank = map[Severity]int{
	SeverityMinimal:     0,
	SeverityModerate:    1,
	SeveritySignificant: 2,
	SeverityCritical:    3,
}

// AtLeast reports whether s is at least as severe as other.
func (s Severity) AtLeast(other Severity) bool {
	return severityRank[s] >= severityRank[other]
}

// Difficulty grades how hard a recommendation is to implement.
type Difficulty string

const (
	DifficultyEasy          Difficulty = "easy"
	DifficultyMedium        Difficulty = "medium"
	DifficultyDifficult     Difficulty = "difficult"
	DifficultyVeryDifficult Difficulty = "very_difficult"
)

var difficultyRank = map[Difficulty]int{
	DifficultyEasy:          0,
	DifficultyMedium:        1,
	DifficultyDifficult:     2,
	DifficultyVeryDifficult: 3,
}

// Rank returns the ordinal position of the difficulty, easiest first.
func (d Difficulty) Rank() int {
	return difficultyRank[d]
}

// OptionImpact quantifies what one remediation option buys and costs.
type OptionImpact struct {
	ProbabilityChange   float64
	MonthlyBudgetImpact float64
	TotalBudgetImpact   float64
}

// RemediationOption is a raw single-axis change proposed by the gap analyzer.
// Value carries the new numeric setting for the axis; allocation options
// additionally carry the proposed weights.
type RemediationOption struct {
	Type       AdjustmentType
	Value      float64
	Allocation map[market.AssetClass]float64
	Impact     OptionImpact
}

// GapResult is the gap analyzer's full answer for one goal.
type GapResult struct {
	GoalID                string
	TargetAmount          float64
	CurrentAmount         float64
	GapAmount             float64
	GapPercentage         float64
	TimeframeGapMonths    int
	CapacityGap           float64
	CapacityGapPercentage float64
	Severity              Severity
	Description           string
	Options               []RemediationOption
}

// FinancialImpact summarizes the budget consequences of a recommendation.
type FinancialImpact struct {
	MonthlyChange         float64
	TotalChange           float64
	TimeframeChangeMonths int
}

// TaxImpact is the optional jurisdiction-specific tax consequence attached by
// a country overlay.
type TaxImpact struct {
	Section       string
	AnnualSavings float64
	Description   string
}

// ImpactMetrics is the outcome of applying one recommendation.
type ImpactMetrics struct {
	ProbabilityIncrease float64
	NewProbability      float64
	FinancialImpact     FinancialImpact
	TaxImpact           *TaxImpact
}

// SIPRecommendation is the India overlay's systematic-investment breakdown of
// a recommended monthly contribution.
type SIPRecommendation struct {
	Allocations      map[string]float64
	MonthlyAmounts   map[string]float64
	TaxSavingOptions []string
}

// IndiaSpecific groups the India overlay's annotations.
type IndiaSpecific struct {
	SIPRecommendations *SIPRecommendation
	TaxImplications    *TaxImpact
}

// AdjustmentRecommendation is the final, caller-facing recommendation.
type AdjustmentRecommendation struct {
	Type          AdjustmentType
	Description   string
	Difficulty    Difficulty
	Value         float64
	Allocation    map[market.AssetClass]float64
	ImpactMetrics ImpactMetrics
	IndiaSpecific *IndiaSpecific
}

// GainPerCost is the ranking heuristic shared by the recommender and
// Prioritize: probability gained per rupee of monthly budget, falling back to
// total budget for one-shot axes and to raw gain for free options.
func (r *AdjustmentRecommendation) GainPerCost() float64 {
	gain := r.ImpactMetrics.ProbabilityIncrease
	cost := r.ImpactMetrics.FinancialImpact.MonthlyChange
	if cost == 0 {
		cost = r.ImpactMetrics.FinancialImpact.TotalChange / 100
	}
	if cost <= 0 {
		// Free or cost-reducing options: rank purely on gain, scaled above
		// anything that costs money.
		return gain * 1e6
	}
	return gain / cost
}
