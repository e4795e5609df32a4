package goal

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/fincompass/goalengine/pkg/constants"
	"github.com/fincompass/goalengine/pkg/market"
)

var testNow = time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC)

func validAllocation() map[market.AssetClass]float64 {
	return map[market.AssetClass]float64{
		market.Equity: 0.70,
		market.Debt:   0.20,
		market.Gold:   0.10,
	}
}

func TestNewSnapshotValidation(t *testing.T) {
	date := testNow.AddDate(9, 0, 0)

	tests := []struct {
		name       string
		target     float64
		current    float64
		monthly    float64
		category   Category
		allocation map[market.AssetClass]float64
		wantField  string
	}{
		{"zero target", 0, 100, 10, CategoryRetirement, validAllocation(), "target_amount"},
		{"negative target", -5, 100, 10, CategoryRetirement, validAllocation(), "target_amount"},
		{"unknown category", 1000, 100, 10, Category("yacht"), validAllocation(), "category"},
		{"negative current", 1000, -1, 10, CategoryRetirement, validAllocation(), "current_amount"},
		{"negative contribution", 1000, 100, -10, CategoryRetirement, validAllocation(), "monthly_contribution"},
		{"weights exceed one", 1000, 100, 10, CategoryRetirement,
			map[market.AssetClass]float64{market.Equity: 0.80, market.Debt: 0.40}, "asset_allocation"},
		{"negative weight", 1000, 100, 10, CategoryRetirement,
			map[market.AssetClass]float64{market.Equity: 1.2, market.Debt: -0.2}, "asset_allocation"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSnapshot("g1", "p1", tt.category, tt.target, tt.current, tt.monthly,
				&date, ImportanceMedium, FlexibilitySomewhat, tt.allocation, "", testNow)
			var invalid *InvalidGoalError
			if !errors.As(err, &invalid) {
				t.Fatalf("expected InvalidGoalError, got %v", err)
			}
			if invalid.Field != tt.wantField {
				t.Errorf("error field = %s, want %s", invalid.Field, tt.wantField)
			}
		})
	}
}

func TestNewSnapshotHorizonDefaults(t *testing.T) {
	past := testNow.AddDate(-1, 0, 0)

	tests := []struct {
		name   string
		date   *time.Time
		expect int
	}{
		{"missing date degrades to default", nil, constants.DefaultHorizonMonths},
		{"past date degrades to default", &past, constants.DefaultHorizonMonths},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewSnapshot("g1", "p1", CategoryEducation, 1000, 0, 10,
				tt.date, "", "", validAllocation(), "", testNow)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if s.HorizonMonths != tt.expect {
				t.Errorf("HorizonMonths = %d, want %d", s.HorizonMonths, tt.expect)
			}
		})
	}
}

func TestNewSnapshotDefaultsEnums(t *testing.T) {
	s, err := NewSnapshot("g1", "p1", CategoryCustom, 1000, 0, 10,
		nil, "", "", nil, "", testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Importance != ImportanceMedium {
		t.Errorf("Importance = %s, want medium default", s.Importance)
	}
	if s.Flexibility != FlexibilitySomewhat {
		t.Errorf("Flexibility = %s, want somewhat_flexible default", s.Flexibility)
	}
	// Empty allocation parks in cash.
	if s.Allocation[market.Cash] != 1.0 {
		t.Errorf("empty allocation = %v, want all cash", s.Allocation)
	}
}

func TestParseCategory(t *testing.T) {
	if _, err := ParseCategory("early_retirement"); err != nil {
		t.Errorf("unexpected error for valid category: %v", err)
	}
	if _, err := ParseCategory("lottery"); err == nil {
		t.Error("expected error for unknown category")
	}
}

func TestPerturbationsDoNotMutateOriginal(t *testing.T) {
	date := testNow.AddDate(5, 0, 0)
	original, err := NewSnapshot("g1", "p1", CategoryWedding, 500000, 100000, 5000,
		&date, ImportanceHigh, FlexibilityFixed, validAllocation(), "venue fund", testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	witness := *original
	witnessAlloc := original.CloneAllocation()

	higher := original.WithMonthlyContribution(9000)
	smaller := original.WithTargetAmount(400000)
	longer := original.WithHorizonMonths(96)
	shifted := original.WithAllocation(map[market.AssetClass]float64{market.Equity: 1.0})

	if higher.MonthlyContribution != 9000 || smaller.TargetAmount != 400000 || longer.HorizonMonths != 96 {
		t.Error("perturbed copies did not take the new values")
	}
	if shifted.Allocation[market.Equity] != 1.0 {
		t.Error("WithAllocation did not replace the allocation")
	}

	if original.MonthlyContribution != witness.MonthlyContribution ||
		original.TargetAmount != witness.TargetAmount ||
		original.HorizonMonths != witness.HorizonMonths {
		t.Error("perturbation mutated the original snapshot")
	}
	if !reflect.DeepEqual(original.Allocation, witnessAlloc) {
		t.Error("perturbation mutated the original allocation")
	}
}

func TestWithHorizonMonthsShiftsDate(t *testing.T) {
	date := testNow.AddDate(5, 0, 0)
	original, err := NewSnapshot("g1", "p1", CategoryEducation, 1000, 0, 10,
		&date, "", "", validAllocation(), "", testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	extended := original.WithHorizonMonths(original.HorizonMonths + 12)
	if extended.TargetDate == nil {
		t.Fatal("extended snapshot lost its target date")
	}
	want := date.AddDate(0, 12, 0)
	if !extended.TargetDate.Equal(want) {
		t.Errorf("shifted target date = %v, want %v", extended.TargetDate, want)
	}
	if !original.TargetDate.Equal(date) {
		t.Error("original target date changed")
	}
}

func TestAchieved(t *testing.T) {
	s, err := NewSnapshot("g1", "p1", CategoryEmergencyFund, 100, 1000000, 0,
		nil, "", "", nil, "", testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !s.Achieved() {
		t.Error("expected goal with current >= target to be achieved")
	}
}
