package simcache

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/fincompass/goalengine/pkg/goal"
	"github.com/fincompass/goalengine/pkg/market"
)

// Fingerprint is a cache key derived from every input that affects a
// simulation's outcome and nothing else: two goals differing only in notes or
// other presentation fields share a fingerprint.
type Fingerprint string

// fingerprintInput is the canonical encoding of simulation-relevant inputs.
// Allocation is flattened to sorted pairs so map iteration order cannot leak
// into the key.
type fingerprintInput struct {
	TargetAmount        float64
	CurrentAmount       float64
	MonthlyContribution float64
	HorizonMonths       int
	AllocationClasses   []string
	AllocationWeights   []float64
	ModelVersion        string
	Seed                int64
	TrialCount          int
}

// NewFingerprint computes the cache key for one analysis request.
func NewFingerprint(g *goal.Snapshot, model *market.Model, seed int64, trialCount int) Fingerprint {
	classes := market.SortedClasses(g.Allocation)
	input := fingerprintInput{
		TargetAmount:        g.TargetAmount,
		CurrentAmount:       g.CurrentAmount,
		MonthlyContribution: g.MonthlyContribution,
		HorizonMonths:       g.HorizonMonths,
		AllocationClasses:   make([]string, 0, len(classes)),
		AllocationWeights:   make([]float64, 0, len(classes)),
		ModelVersion:        model.Version,
		Seed:                seed,
		TrialCount:          trialCount,
	}
	for _, class := range classes {
		input.AllocationClasses = append(input.AllocationClasses, string(class))
		input.AllocationWeights = append(input.AllocationWeights, g.Allocation[class])
	}

	encoded, err := msgpack.Marshal(input)
	if err != nil {
		// Marshalling a struct of scalars and slices cannot fail; guard so a
		// future field addition degrades to an unshared key, not a panic.
		return Fingerprint("unfingerprintable:" + g.ID)
	}
	sum := sha256.Sum256(encoded)
	return Fingerprint(hex.EncodeToString(sum[:]))
}
