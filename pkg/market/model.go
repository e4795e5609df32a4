// Package market defines the market model: per-asset-class return and
// volatility assumptions consumed by the probability simulations. The values
// are data, not logic; they are expected to be overridden from configuration
// as assumptions are revised over time.
package market

import (
	"sort"

	"github.com/fincompass/goalengine/pkg/constants"
)

// AssetClass identifies an investable asset category.
type AssetClass string

const (
	Equity AssetClass = "equity"
	Debt   AssetClass = "debt"
	Gold   AssetClass = "gold"
	Cash   AssetClass = "cash"
)

// Assumption holds the annual expected return and volatility for one asset
// class, both as decimal fractions (0.12 == 12%).
type Assumption struct {
	ExpectedReturn float64
	Volatility     float64
}

// Model maps asset classes to their return assumptions. Version identifies
// the assumption vintage so cached simulation results keyed on one vintage
// are not reused after assumptions change.
type Model struct {
	Version     string
	Assumptions map[AssetClass]Assumption
}

// DefaultModel returns the baseline assumption set. Long-run Indian market
// figures: equity 12%±18%, debt 7%±5%, gold 8%±15%, cash 4%±1%.
func DefaultModel() *Model {
	return &Model{
		Version: "2024-baseline",
		Assumptions: map[AssetClass]Assumption{
			Equity: {ExpectedReturn: 0.12, Volatility: 0.18},
			Debt:   {ExpectedReturn: 0.07, Volatility: 0.05},
			Gold:   {ExpectedReturn: 0.08, Volatility: 0.15},
			Cash:   {ExpectedReturn: 0.04, Volatility: 0.01},
		},
	}
}

// Assumption returns the assumption for a class, falling back to the cash
// assumption for unknown classes so a malformed allocation degrades to the
// most conservative estimate rather than failing mid-simulation.
func (m *Model) Assumption(class AssetClass) Assumption {
	if a, ok := m.Assumptions[class]; ok {
		return a
	}
	return m.Assumptions[Cash]
}

// BlendedAnnualReturn computes the allocation-weighted expected annual return.
func (m *Model) BlendedAnnualReturn(allocation map[AssetClass]float64) float64 {
	blended := 0.0
	for class, weight := range allocation {
		blended += weight * m.Assumption(class).ExpectedReturn
	}
	return blended
}

// BlendedMonthlyReturn converts the blended annual return to a monthly rate.
func (m *Model) BlendedMonthlyReturn(allocation map[AssetClass]float64) float64 {
	return m.BlendedAnnualReturn(allocation) / constants.MonthsPerYear
}

// SortedClasses returns the allocation's asset classes in stable (sorted)
// order, used wherever deterministic iteration matters (fingerprinting,
// per-class random draws under a fixed seed).
func SortedClasses(allocation map[AssetClass]float64) []AssetClass {
	classes := make([]AssetClass, 0, len(allocation))
	for class := range allocation {
		classes = append(classes, class)
	}
	sort.Slice(classes, func(i, j int) bool { return classes[i] < classes[j] })
	return classes
}
