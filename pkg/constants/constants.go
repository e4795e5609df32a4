// Package constants provides shared constants for the goal engine.
package constants

// DateTimeLayout is the format expected for target dates in request files and
// is also the output date format.
const DateTimeLayout = "2006-01"

// Financial constants
const (
	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12

	// DecimalPrecision is the precision for currency rounding (2 decimal places)
	DecimalPrecision = 100

	// PercentageMultiplier converts between decimal fractions and percentages
	PercentageMultiplier = 100.0

	// CurrencyTolerance is the tolerance used when comparing currency amounts
	CurrencyTolerance = 0.005

	// AllocationTolerance is how far allocation weights may drift from summing
	// to exactly 1.0 before the snapshot is rejected
	AllocationTolerance = 1e-6
)

// Simulation constants
const (
	// DefaultSimulationCount is the trial count used when the caller does not
	// specify one
	DefaultSimulationCount = 1000

	// MinimumSimulationCount is the floor used by the timeout fallback path
	MinimumSimulationCount = 100

	// DefaultHorizonMonths is used when a goal has no resolvable target date
	DefaultHorizonMonths = 60
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the machine-readable output format
	OutputFormatCSV = "csv"
)

// DefaultConfigFile is the config file path used when none is provided.
const DefaultConfigFile = "config.yaml"
