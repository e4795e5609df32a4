package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/fincompass/goalengine/pkg/datetime"
	"github.com/fincompass/goalengine/pkg/goal"
	"github.com/fincompass/goalengine/pkg/market"
)

// Request is the raw YAML form of one analysis request: a goal plus the
// owner's profile. Fields are loosely typed here and converted strictly at
// the snapshot boundary.
type Request struct {
	Goal    GoalInput    `yaml:"goal"`
	Profile ProfileInput `yaml:"profile"`
}

// GoalInput mirrors the goal snapshot with config-friendly types.
type GoalInput struct {
	ID                  string             `yaml:"id"`
	ProfileID           string             `yaml:"profileId"`
	Category            string             `yaml:"category"`
	TargetAmount        float64            `yaml:"targetAmount"`
	CurrentAmount       float64            `yaml:"currentAmount"`
	MonthlyContribution float64            `yaml:"monthlyContribution"`
	TargetDate          string             `yaml:"targetDate,omitempty"` // YYYY-MM, empty uses the default horizon
	Importance          string             `yaml:"importance,omitempty"`
	Flexibility         string             `yaml:"flexibility,omitempty"`
	Allocation          map[string]float64 `yaml:"allocation"`
	Notes               string             `yaml:"notes,omitempty"`
}

// ProfileInput mirrors the profile snapshot with config-friendly types.
type ProfileInput struct {
	ID              string             `yaml:"id"`
	AnnualIncome    float64            `yaml:"annualIncome,omitempty"`
	MonthlyIncome   float64            `yaml:"monthlyIncome,omitempty"`
	MonthlyExpenses float64            `yaml:"monthlyExpenses,omitempty"`
	RiskTolerance   string             `yaml:"riskTolerance,omitempty"`
	Age             int                `yaml:"age,omitempty"`
	Country         string             `yaml:"country,omitempty"`
	TaxBracket      float64            `yaml:"taxBracket,omitempty"`
	Holdings        map[string]float64 `yaml:"holdings,omitempty"`
}

// LoadRequest reads a YAML request file.
func LoadRequest(path string) (*Request, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading request file, %s", err)
	}

	var request Request
	if err := v.Unmarshal(&request); err != nil {
		return nil, fmt.Errorf("unable to decode request into struct, %s", err)
	}
	return &request, nil
}

// Snapshots converts the raw request into validated immutable snapshots,
// failing fast with *goal.InvalidGoalError on malformed goal input. A target
// date that does not parse degrades to the default horizon rather than
// failing, matching the snapshot invariant.
func (r *Request) Snapshots(now time.Time) (*goal.Snapshot, *goal.Profile, error) {
	category, err := goal.ParseCategory(r.Goal.Category)
	if err != nil {
		return nil, nil, err
	}

	var targetDate *time.Time
	if r.Goal.TargetDate != "" {
		if parsed, parseErr := time.Parse(datetime.DateTimeLayout, r.Goal.TargetDate); parseErr == nil {
			targetDate = &parsed
		}
	}

	allocation := make(map[market.AssetClass]float64, len(r.Goal.Allocation))
	for class, weight := range r.Goal.Allocation {
		allocation[market.AssetClass(class)] = weight
	}

	snapshot, err := goal.NewSnapshot(
		r.Goal.ID, r.Goal.ProfileID, category,
		r.Goal.TargetAmount, r.Goal.CurrentAmount, r.Goal.MonthlyContribution,
		targetDate,
		goal.Importance(r.Goal.Importance), goal.Flexibility(r.Goal.Flexibility),
		allocation, r.Goal.Notes, now,
	)
	if err != nil {
		return nil, nil, err
	}

	holdings := make(map[market.AssetClass]float64, len(r.Profile.Holdings))
	for class, amount := range r.Profile.Holdings {
		holdings[market.AssetClass(class)] = amount
	}

	profile := &goal.Profile{
		ID:              r.Profile.ID,
		AnnualIncome:    r.Profile.AnnualIncome,
		MonthlyIncome:   r.Profile.MonthlyIncome,
		MonthlyExpenses: r.Profile.MonthlyExpenses,
		RiskTolerance:   goal.RiskTolerance(r.Profile.RiskTolerance),
		Age:             r.Profile.Age,
		Country:         r.Profile.Country,
		TaxBracket:      r.Profile.TaxBracket,
		Holdings:        holdings,
	}

	return snapshot, profile, nil
}
