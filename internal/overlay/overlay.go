// Package overlay defines the country-specific annotation layer. Overlays
// enrich ranked recommendations with jurisdiction detail and never change the
// probability math.
package overlay

import (
	"github.com/fincompass/goalengine/pkg/goal"
	"github.com/fincompass/goalengine/pkg/recommendation"
)

// Annotator enriches one recommendation with jurisdiction-specific guidance.
// Implementations must be pure: the returned recommendation may add blocks
// but must not alter probability or budget figures.
type Annotator interface {
	// Country is the profile country tag this annotator serves.
	Country() string

	// Annotate returns the recommendation with jurisdiction blocks attached
	// where applicable; recommendations it cannot enrich pass through
	// unchanged.
	Annotate(rec recommendation.AdjustmentRecommendation, g *goal.Snapshot, p *goal.Profile) recommendation.AdjustmentRecommendation
}

// Registry maps country tags to annotators.
type Registry map[string]Annotator

// ForCountry returns the annotator for a country tag, nil when none is
// registered; unknown jurisdictions simply go unannotated.
func (r Registry) ForCountry(country string) Annotator {
	return r[country]
}
