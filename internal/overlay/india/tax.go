// Package india implements the India country overlay: marginal slab tax
// arithmetic and SIP (systematic investment plan) guidance. Slab values and
// section caps are versioned configuration, not code constants.
package india

import (
	"math"

	"github.com/fincompass/goalengine/internal/config"
	"github.com/fincompass/goalengine/pkg/mathutil"
)

// TaxCalculator computes marginal tax over an ordered bracket table.
type TaxCalculator struct {
	conf config.IndiaConfig
}

// NewTaxCalculator constructs a calculator over the configured slabs.
func NewTaxCalculator(conf config.IndiaConfig) *TaxCalculator {
	return &TaxCalculator{conf: conf}
}

// TaxAtSlab returns the total income tax (including cess) for an annual
// income under the configured regime.
func (t *TaxCalculator) TaxAtSlab(income float64) float64 {
	taxable := math.Max(0, income-t.conf.StandardDeduct)

	tax := 0.0
	lower := 0.0
	for _, bracket := range t.conf.Brackets {
		upper := bracket.Upper
		if upper == 0 || upper > taxable {
			upper = taxable
		}
		if upper > lower {
			tax += (upper - lower) * bracket.Rate
		}
		if bracket.Upper == 0 || bracket.Upper >= taxable {
			break
		}
		lower = bracket.Upper
	}

	return tax + mathutil.ApplyPercentage(tax, t.conf.CessPercent)
}

// DeductionSavings computes the marginal tax avoided by a deductible
// contribution, bounded by the given statutory section cap. Zero or missing
// income yields zero savings.
func (t *TaxCalculator) DeductionSavings(amount, income, sectionCap float64) float64 {
	if income <= 0 || amount <= 0 {
		return 0
	}
	deductible := math.Min(amount, sectionCap)
	return t.TaxAtSlab(income) - t.TaxAtSlab(income-deductible)
}
