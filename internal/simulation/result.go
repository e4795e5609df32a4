package simulation

// SuccessMetrics counts trial outcomes. Kept separate from the derived
// probability so a result constructed without metrics reads as probability 0
// instead of failing.
type SuccessMetrics struct {
	Successes int
	Trials    int
}

// Result is the outcome of one probability analysis. It is immutable once
// returned; callers own the value.
type Result struct {
	Metrics                   *SuccessMetrics
	ExpectedValue             float64
	ShortfallAmount           float64
	ShortfallPercentage       float64
	Percentiles               map[int]float64
	TimeHorizonYears          float64
	EstimatedCompletionMonths int
	TrialCount                int
	Seed                      int64
}

// SuccessProbability derives the success fraction from the metrics. Absent or
// empty metrics yield 0.
func (r *Result) SuccessProbability() float64 {
	if r == nil || r.Metrics == nil || r.Metrics.Trials == 0 {
		return 0
	}
	return float64(r.Metrics.Successes) / float64(r.Metrics.Trials)
}

// certainResult builds a no-simulation result for short-circuit cases where
// the outcome is already known.
func certainResult(success bool, endingValue, target float64, horizonYears float64, trials int, seed int64) *Result {
	metrics := &SuccessMetrics{Trials: trials}
	if success {
		metrics.Successes = trials
	}
	shortfall := target - endingValue
	if shortfall < 0 {
		shortfall = 0
	}
	shortfallPct := 0.0
	if target > 0 {
		shortfallPct = shortfall / target * 100
	}
	percentiles := make(map[int]float64, len(percentileLevels))
	for _, level := range percentileLevels {
		percentiles[level] = endingValue
	}
	return &Result{
		Metrics:             metrics,
		ExpectedValue:       endingValue,
		ShortfallAmount:     shortfall,
		ShortfallPercentage: shortfallPct,
		Percentiles:         percentiles,
		TimeHorizonYears:    horizonYears,
		TrialCount:          trials,
		Seed:                seed,
	}
}

// percentileLevels are the distribution points reported on every result.
var percentileLevels = []int{10, 25, 50, 75, 90}
