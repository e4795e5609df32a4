package output

import (
	"bytes"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/fincompass/goalengine/internal/engine"
	"github.com/fincompass/goalengine/pkg/recommendation"
)

func captureOutput(t *testing.T, fn func()) string {
	t.Helper()
	oldStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to open pipe: %v", err)
	}
	os.Stdout = w

	fn()

	_ = w.Close()
	os.Stdout = oldStdout

	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)
	return buf.String()
}

func sampleResponse() *engine.Response {
	return &engine.Response{
		GoalID:             "goal-1",
		CurrentProbability: 0.42,
		GapSeverity:        recommendation.SeverityModerate,
		TargetProbability:  0.78,
		ConfidenceScore:    0.85,
		Recommendations: []recommendation.AdjustmentRecommendation{
			{
				Type:        recommendation.AdjustContribution,
				Value:       27000,
				Description: "Increase monthly contribution to Rs 27,000",
				Difficulty:  recommendation.DifficultyMedium,
				ImpactMetrics: recommendation.ImpactMetrics{
					ProbabilityIncrease: 0.36,
					NewProbability:      0.78,
					FinancialImpact: recommendation.FinancialImpact{
						MonthlyChange: 7000,
						TotalChange:   756000,
					},
				},
				IndiaSpecific: &recommendation.IndiaSpecific{
					SIPRecommendations: &recommendation.SIPRecommendation{
						MonthlyAmounts: map[string]float64{
							"large_cap_index":  13500,
							"flexi_cap_equity": 8100,
						},
					},
				},
			},
			{
				Type:        recommendation.AdjustTimeframe,
				Value:       132,
				Description: "Extend the timeframe by 24 months",
				Difficulty:  recommendation.DifficultyEasy,
				ImpactMetrics: recommendation.ImpactMetrics{
					ProbabilityIncrease: 0.21,
					NewProbability:      0.63,
				},
			},
		},
	}
}

func TestPrettyFormat(t *testing.T) {
	output := captureOutput(t, func() { PrettyFormat(sampleResponse()) })

	if !strings.Contains(output, "--- Results for goal goal-1 ---") {
		t.Error("missing goal header")
	}
	if !strings.Contains(output, "Rank | Type") {
		t.Error("missing table header")
	}
	if !strings.Contains(output, "Increase monthly contribution") {
		t.Error("missing recommendation description")
	}
	if !strings.Contains(output, "SIP split:") {
		t.Error("missing SIP split line")
	}
	// Fund names print sorted, not in map order.
	flexi := strings.Index(output, "flexi_cap_equity")
	large := strings.Index(output, "large_cap_index")
	if flexi == -1 || large == -1 || flexi > large {
		t.Error("SIP funds not listed alphabetically")
	}
}

func TestPrettyFormatOffTrackWarning(t *testing.T) {
	resp := sampleResponse()
	resp.GapSeverity = recommendation.SeveritySignificant

	output := captureOutput(t, func() { PrettyFormat(resp) })
	if !strings.Contains(output, "Warning: the goal is well off track") {
		t.Error("missing the off-track warning for a significant gap")
	}

	// Moderate severity stays below the warning threshold.
	output = captureOutput(t, func() { PrettyFormat(sampleResponse()) })
	if strings.Contains(output, "Warning:") {
		t.Error("moderate severity should not print an off-track warning")
	}
}

func TestPrettyFormatNoRecommendations(t *testing.T) {
	resp := sampleResponse()
	resp.Recommendations = nil

	output := captureOutput(t, func() { PrettyFormat(resp) })
	if !strings.Contains(output, "No adjustments needed.") {
		t.Error("missing the no-adjustments message")
	}
}

func TestCsvFormat(t *testing.T) {
	output := captureOutput(t, func() { CsvFormat(sampleResponse()) })

	lines := strings.Split(strings.TrimSpace(output), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want header plus 2 rows", len(lines))
	}
	if !strings.HasPrefix(lines[0], "goal_id,rank,type") {
		t.Errorf("unexpected header: %s", lines[0])
	}
	if !strings.HasPrefix(lines[1], "goal-1,1,contribution") {
		t.Errorf("unexpected first row: %s", lines[1])
	}
	if !strings.Contains(lines[2], "timeframe") {
		t.Errorf("second row missing the timeframe type: %s", lines[2])
	}
}
