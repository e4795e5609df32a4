// Package config defines the data structures related to engine configuration
// and includes functions for loading and defaulting the config file. Values
// that change over time independently of the algorithm (market assumptions,
// severity thresholds, tax brackets) live here rather than in code constants.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/fincompass/goalengine/pkg/constants"
	"github.com/fincompass/goalengine/pkg/market"
)

// Configuration holds all configuration for the goal engine.
type Configuration struct {
	Simulation SimulationConfig `yaml:"simulation,omitempty"`
	Cache      CacheConfig      `yaml:"cache,omitempty"`
	Severity   SeverityConfig   `yaml:"severity,omitempty"`
	Market     MarketConfig     `yaml:"market,omitempty"`
	India      IndiaConfig      `yaml:"india,omitempty"`
	Logging    LoggingConfig    `yaml:"logging,omitempty"`
	Output     OutputConfig     `yaml:"output,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, csv
}

// SimulationConfig bounds the Monte Carlo runs.
type SimulationConfig struct {
	Count        int           `yaml:"count,omitempty"`        // trials per analysis
	MinimumCount int           `yaml:"minimumCount,omitempty"` // fallback trials on timeout
	Workers      int           `yaml:"workers,omitempty"`      // 0 = GOMAXPROCS
	BatchTimeout time.Duration `yaml:"batchTimeout,omitempty"`
	Seed         int64         `yaml:"seed,omitempty"` // 0 = time-derived
}

// CacheConfig bounds the simulation result cache.
type CacheConfig struct {
	TTL             time.Duration `yaml:"ttl,omitempty"`
	Capacity        int           `yaml:"capacity,omitempty"`
	WaitTimeout     time.Duration `yaml:"waitTimeout,omitempty"` // max wait for an in-flight compute
	CleanupInterval time.Duration `yaml:"cleanupInterval,omitempty"`
	SnapshotPath    string        `yaml:"snapshotPath,omitempty"` // empty disables persistence
}

// SeverityConfig is the threshold ladder that maps gap percentage to
// severity. Each threshold is the minimum gap percentage for that band.
type SeverityConfig struct {
	CriticalPercent    float64 `yaml:"criticalPercent,omitempty"`
	SignificantPercent float64 `yaml:"significantPercent,omitempty"`
	ModeratePercent    float64 `yaml:"moderatePercent,omitempty"`
}

// MarketConfig overrides the built-in market model assumptions.
type MarketConfig struct {
	Version string                     `yaml:"version,omitempty"`
	Classes map[string]ClassAssumption `yaml:"classes,omitempty"`
}

// ClassAssumption holds one asset class's annual figures as decimal fractions.
type ClassAssumption struct {
	ExpectedReturn float64 `yaml:"expectedReturn"`
	Volatility     float64 `yaml:"volatility"`
}

// IndiaConfig carries the India overlay's versioned tax data.
type IndiaConfig struct {
	TaxYear        string       `yaml:"taxYear,omitempty"`
	Brackets       []TaxBracket `yaml:"brackets,omitempty"`
	Section80CCap  float64      `yaml:"section80cCap,omitempty"`
	SectionNPSCap  float64      `yaml:"sectionNpsCap,omitempty"`
	CessPercent    float64      `yaml:"cessPercent,omitempty"`
	StandardDeduct float64      `yaml:"standardDeduction,omitempty"`
}

// TaxBracket is one marginal slab; Upper of 0 means unbounded.
type TaxBracket struct {
	Upper float64 `yaml:"upper"`
	Rate  float64 `yaml:"rate"`
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	viper.SetConfigFile(configPath)
	viper.AutomaticEnv()

	viper.SetConfigType("yml")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}

	var configuration Configuration
	err := viper.Unmarshal(&configuration)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}

	configuration.ApplyDefaults()
	return &configuration, nil
}

// Default returns a configuration with every field at its default value,
// usable without a config file.
func Default() *Configuration {
	conf := &Configuration{}
	conf.ApplyDefaults()
	return conf
}

// ApplyDefaults fills in zero-valued fields with the engine defaults.
func (conf *Configuration) ApplyDefaults() {
	if conf.Simulation.Count <= 0 {
		conf.Simulation.Count = constants.DefaultSimulationCount
	}
	if conf.Simulation.MinimumCount <= 0 {
		conf.Simulation.MinimumCount = constants.MinimumSimulationCount
	}
	if conf.Simulation.BatchTimeout <= 0 {
		conf.Simulation.BatchTimeout = 5 * time.Second
	}
	if conf.Cache.TTL <= 0 {
		conf.Cache.TTL = 15 * time.Minute
	}
	if conf.Cache.Capacity <= 0 {
		conf.Cache.Capacity = 1024
	}
	if conf.Cache.WaitTimeout <= 0 {
		conf.Cache.WaitTimeout = 10 * time.Second
	}
	if conf.Cache.CleanupInterval <= 0 {
		conf.Cache.CleanupInterval = time.Minute
	}
	if conf.Severity.CriticalPercent <= 0 {
		conf.Severity.CriticalPercent = 50
	}
	if conf.Severity.SignificantPercent <= 0 {
		conf.Severity.SignificantPercent = 25
	}
	if conf.Severity.ModeratePercent <= 0 {
		conf.Severity.ModeratePercent = 10
	}
	if len(conf.India.Brackets) == 0 {
		conf.India = defaultIndiaConfig()
	}
}

// MarketModel materializes the configured market model, falling back to the
// built-in assumptions for anything not overridden.
func (conf *Configuration) MarketModel() *market.Model {
	model := market.DefaultModel()
	if conf.Market.Version != "" {
		model.Version = conf.Market.Version
	}
	for class, assumption := range conf.Market.Classes {
		model.Assumptions[market.AssetClass(class)] = market.Assumption{
			ExpectedReturn: assumption.ExpectedReturn,
			Volatility:     assumption.Volatility,
		}
	}
	return model
}

// ValidateConfiguration checks the configuration for suspicious values and
// returns human-readable warnings; it never fails the load.
func (conf *Configuration) ValidateConfiguration() []string {
	var warnings []string

	if conf.Simulation.MinimumCount > conf.Simulation.Count {
		warnings = append(warnings, fmt.Sprintf(
			"simulation minimumCount (%d) exceeds count (%d) - fallback runs will use more trials than normal runs",
			conf.Simulation.MinimumCount, conf.Simulation.Count))
	}
	if conf.Severity.ModeratePercent >= conf.Severity.SignificantPercent ||
		conf.Severity.SignificantPercent >= conf.Severity.CriticalPercent {
		warnings = append(warnings,
			"severity thresholds are not strictly increasing - bands will overlap")
	}
	for class, assumption := range conf.Market.Classes {
		if assumption.ExpectedReturn > 1 || assumption.Volatility > 1 {
			warnings = append(warnings, fmt.Sprintf(
				"market class %s uses values above 1.0 - assumptions are decimal fractions, not percentages", class))
		}
	}
	for i, bracket := range conf.India.Brackets {
		if i > 0 && bracket.Upper != 0 && bracket.Upper <= conf.India.Brackets[i-1].Upper {
			warnings = append(warnings, fmt.Sprintf(
				"india tax bracket %d upper bound is not increasing", i))
		}
	}

	return warnings
}

// defaultIndiaConfig returns the FY 2024-25 new-regime slabs.
func defaultIndiaConfig() IndiaConfig {
	return IndiaConfig{
		TaxYear: "2024-25",
		Brackets: []TaxBracket{
			{Upper: 300000, Rate: 0},
			{Upper: 700000, Rate: 0.05},
			{Upper: 1000000, Rate: 0.10},
			{Upper: 1200000, Rate: 0.15},
			{Upper: 1500000, Rate: 0.20},
			{Upper: 0, Rate: 0.30},
		},
		Section80CCap:  150000,
		SectionNPSCap:  50000,
		CessPercent:    4,
		StandardDeduct: 50000,
	}
}
