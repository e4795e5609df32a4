package india

import (
	"github.com/fincompass/goalengine/pkg/goal"
	"github.com/fincompass/goalengine/pkg/mathutil"
	"github.com/fincompass/goalengine/pkg/recommendation"
)

// Fund categories recommended by the SIP planner.
const (
	fundLiquid        = "liquid"
	fundShortDebt     = "short_duration_debt"
	fundHybrid        = "aggressive_hybrid"
	fundLargeCapIndex = "large_cap_index"
	fundFlexiCap      = "flexi_cap_equity"
	fundGoldETF       = "gold_etf"
	fundELSS          = "elss"
)

// Horizon bands for fund selection, in months.
const (
	shortHorizonMonths  = 36
	mediumHorizonMonths = 84
)

// RecommendSIP maps a goal's category and horizon to a fund-category split of
// the given monthly contribution. Short horizons skew debt and liquid funds;
// long horizons skew equity and index funds. Emergency funds always stay
// liquid regardless of horizon.
func RecommendSIP(g *goal.Snapshot, monthly float64) *recommendation.SIPRecommendation {
	if !mathutil.IsPositive(monthly) {
		return nil
	}

	var allocations map[string]float64
	switch {
	case g.Category == goal.CategoryEmergencyFund:
		allocations = map[string]float64{
			fundLiquid:    0.70,
			fundShortDebt: 0.30,
		}
	case g.HorizonMonths <= shortHorizonMonths:
		allocations = map[string]float64{
			fundLiquid:    0.30,
			fundShortDebt: 0.55,
			fundHybrid:    0.15,
		}
	case g.HorizonMonths <= mediumHorizonMonths:
		allocations = map[string]float64{
			fundLargeCapIndex: 0.35,
			fundFlexiCap:      0.15,
			fundShortDebt:     0.40,
			fundGoldETF:       0.10,
		}
	default:
		allocations = map[string]float64{
			fundLargeCapIndex: 0.50,
			fundFlexiCap:      0.30,
			fundShortDebt:     0.15,
			fundGoldETF:       0.05,
		}
	}

	amounts := make(map[string]float64, len(allocations))
	for fund, weight := range allocations {
		amounts[fund] = mathutil.Round(monthly * weight)
	}

	return &recommendation.SIPRecommendation{
		Allocations:      allocations,
		MonthlyAmounts:   amounts,
		TaxSavingOptions: taxSavingOptions(g),
	}
}

// taxSavingOptions lists tax-advantaged vehicles still worth considering for
// this goal. ELSS carries a three-year lock-in so it is only proposed beyond
// the short horizon band.
func taxSavingOptions(g *goal.Snapshot) []string {
	var options []string
	if g.HorizonMonths > shortHorizonMonths {
		options = append(options, "ELSS equity fund (Section 80C, 3-year lock-in)")
	}
	if g.Category == goal.CategoryRetirement || g.Category == goal.CategoryEarlyRetirement {
		options = append(options, "NPS Tier-1 (Section 80CCD(1B), additional cap over 80C)")
	}
	if g.HorizonMonths > mediumHorizonMonths {
		options = append(options, "PPF (Section 80C, 15-year maturity)")
	}
	return options
}
