// Package output provides utilities for formatting and displaying
// recommendation results.
package output

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/fincompass/goalengine/internal/engine"
	"github.com/fincompass/goalengine/pkg/format"
	"github.com/fincompass/goalengine/pkg/recommendation"
)

// PrettyFormat outputs a human-readable rather than machine-readable table.
func PrettyFormat(response *engine.Response) {
	p := message.NewPrinter(language.English)
	fmt.Printf("--- Results for goal %s ---\n", response.GoalID)
	_, _ = p.Printf("Current probability: %s\n", format.Percent(response.CurrentProbability))
	_, _ = p.Printf("Gap severity:        %s\n", response.GapSeverity)
	_, _ = p.Printf("Target probability:  %s\n", format.Percent(response.TargetProbability))
	_, _ = p.Printf("Confidence:          %s\n", format.Percent(response.ConfidenceScore))
	if response.GapSeverity.AtLeast(recommendation.SeveritySignificant) {
		fmt.Printf("Warning: the goal is well off track at the current contribution rate.\n")
	}

	if len(response.Recommendations) == 0 {
		fmt.Printf("\nNo adjustments needed.\n")
		return
	}

	fmt.Printf("\nRank | Type          | Difficulty     | Gain   | Recommendation\n")
	fmt.Printf("____ | ____          | __________     | ____   | ______________\n")
	for i, rec := range response.Recommendations {
		fmt.Printf("%4d | %-13s | %-14s | %s | %s\n",
			i+1, rec.Type, rec.Difficulty,
			format.Percent(rec.ImpactMetrics.ProbabilityIncrease), rec.Description)
		if rec.IndiaSpecific != nil && rec.IndiaSpecific.SIPRecommendations != nil {
			sip := rec.IndiaSpecific.SIPRecommendations
			funds := make([]string, 0, len(sip.MonthlyAmounts))
			for fund := range sip.MonthlyAmounts {
				funds = append(funds, fund)
			}
			sort.Strings(funds)
			parts := make([]string, 0, len(funds))
			for _, fund := range funds {
				parts = append(parts, fmt.Sprintf("%s %s", fund, format.Currency(sip.MonthlyAmounts[fund])))
			}
			fmt.Printf("     |               |                |        | SIP split: %s\n", strings.Join(parts, ", "))
		}
		if rec.ImpactMetrics.TaxImpact != nil {
			fmt.Printf("     |               |                |        | Tax: %s\n", rec.ImpactMetrics.TaxImpact.Description)
		}
	}
}

// CsvFormat outputs in comma-separated value format.
func CsvFormat(response *engine.Response) {
	fmt.Printf("goal_id,rank,type,difficulty,value,probability_increase,new_probability,monthly_change,total_change\n")
	for i, rec := range response.Recommendations {
		fmt.Printf("%s,%d,%s,%s,%.2f,%.4f,%.4f,%.2f,%.2f\n",
			response.GoalID, i+1, rec.Type, rec.Difficulty, rec.Value,
			rec.ImpactMetrics.ProbabilityIncrease,
			rec.ImpactMetrics.NewProbability,
			rec.ImpactMetrics.FinancialImpact.MonthlyChange,
			rec.ImpactMetrics.FinancialImpact.TotalChange)
	}
}
