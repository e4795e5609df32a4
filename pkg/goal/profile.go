package goal

import "github.com/fincompass/goalengine/pkg/market"

// Profile is an immutable view of the goal owner's financial situation. It is
// simulation and tax input only; the engine never writes to it.
type Profile struct {
	ID              string
	AnnualIncome    float64
	MonthlyIncome   float64
	MonthlyExpenses float64
	RiskTolerance   RiskTolerance
	Age             int
	Country         string
	TaxBracket      float64
	Holdings        map[market.AssetClass]float64
}

// DisposableIncome is the monthly amount available for additional
// contributions. Zero-valued income fields yield zero, not an error; tax and
// difficulty heuristics degrade accordingly.
func (p *Profile) DisposableIncome() float64 {
	income := p.MonthlyIncome
	if income == 0 && p.AnnualIncome > 0 {
		income = p.AnnualIncome / 12
	}
	disposable := income - p.MonthlyExpenses
	if disposable < 0 {
		return 0
	}
	return disposable
}

// MaxEquityWeight is the equity ceiling implied by the profile's risk
// tolerance, used when remediation shifts allocation toward higher expected
// return.
func (p *Profile) MaxEquityWeight() float64 {
	switch p.RiskTolerance {
	case RiskConservative:
		return 0.40
	case RiskAggressive:
		return 0.90
	default:
		return 0.70
	}
}
