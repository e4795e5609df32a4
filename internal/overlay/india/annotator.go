package india

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/fincompass/goalengine/internal/config"
	"github.com/fincompass/goalengine/pkg/constants"
	"github.com/fincompass/goalengine/pkg/format"
	"github.com/fincompass/goalengine/pkg/goal"
	"github.com/fincompass/goalengine/pkg/recommendation"
)

// CountryTag is the profile country value this overlay serves.
const CountryTag = "IN"

// Annotator enriches recommendations with India-specific SIP and tax detail.
// It is a pure annotation layer and never changes probability figures.
type Annotator struct {
	logger *zap.Logger
	conf   config.IndiaConfig
	tax    *TaxCalculator
}

// NewAnnotator constructs the India overlay from its configured tax data.
func NewAnnotator(logger *zap.Logger, conf config.IndiaConfig) *Annotator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Annotator{
		logger: logger,
		conf:   conf,
		tax:    NewTaxCalculator(conf),
	}
}

// Country implements overlay.Annotator.
func (a *Annotator) Country() string {
	return CountryTag
}

// Annotate attaches SIP guidance to contribution and allocation
// recommendations and, when the profile carries income data, the tax savings
// an ELSS routing of the contribution would yield. Profiles without income
// data get the SIP block only; the tax block is omitted, never an error.
func (a *Annotator) Annotate(rec recommendation.AdjustmentRecommendation,
	g *goal.Snapshot, p *goal.Profile) recommendation.AdjustmentRecommendation {

	monthly := annotatableMonthly(rec, g)
	if monthly <= 0 {
		return rec
	}

	sip := RecommendSIP(g, monthly)
	if sip == nil {
		return rec
	}

	block := &recommendation.IndiaSpecific{SIPRecommendations: sip}

	income := annualIncome(p)
	if income > 0 {
		elssMonthly := sip.MonthlyAmounts[fundELSS] + sip.MonthlyAmounts[fundFlexiCap]
		if g.HorizonMonths > shortHorizonMonths {
			// Equity SIP routed through ELSS qualifies under 80C up to the cap.
			annual := math.Min(elssMonthly*constants.MonthsPerYear, a.conf.Section80CCap)
			if annual == 0 {
				annual = math.Min(monthly*constants.MonthsPerYear, a.conf.Section80CCap)
			}
			savings := a.tax.DeductionSavings(annual, income, a.conf.Section80CCap)
			if savings > 0 {
				block.TaxImplications = &recommendation.TaxImpact{
					Section:       "80C",
					AnnualSavings: savings,
					Description: fmt.Sprintf("Routing %s per year through ELSS saves about %s in tax (FY %s slabs).",
						format.Currency(annual), format.Currency(savings), a.conf.TaxYear),
				}
				rec.ImpactMetrics.TaxImpact = block.TaxImplications
			}
		}
	} else {
		a.logger.Debug("profile lacks income data, omitting tax block",
			zap.String("op", "india.Annotate"),
			zap.String("goalID", g.ID),
		)
	}

	rec.IndiaSpecific = block
	return rec
}

// annotatableMonthly picks the contribution a SIP plan should split: the
// recommended new contribution for contribution adjustments, the existing
// contribution for allocation shifts, nothing for other axes.
func annotatableMonthly(rec recommendation.AdjustmentRecommendation, g *goal.Snapshot) float64 {
	switch rec.Type {
	case recommendation.AdjustContribution:
		return rec.Value
	case recommendation.AdjustAllocation:
		return g.MonthlyContribution
	default:
		return 0
	}
}

func annualIncome(p *goal.Profile) float64 {
	if p == nil {
		return 0
	}
	if p.AnnualIncome > 0 {
		return p.AnnualIncome
	}
	return p.MonthlyIncome * constants.MonthsPerYear
}
