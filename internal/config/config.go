// Package config collects the externally tunable parameters of SpendLens.
//
// Thresholds are heuristics, not derived constants, so all of them can be
// overridden through the environment.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Storage
	DBPath  string // SQLite database file
	DataDir string // blob store root for uploaded documents

	// Structuring oracle
	GeminiAPIKey string
	GeminiModel  string
	ParseTimeout time.Duration
	ParseWorkers int
	TaxonomyCSV  string // path of the personal finance category taxonomy CSV

	// Intake pipeline
	ReviewConfidence float64 // below this, a transaction needs review

	// Recurrence detection
	MinOccurrences       int
	CadenceToleranceDays int
	AmountTolerance      float64 // relative band around the median amount

	// Anomaly detection
	ZThreshold        float64
	MinTxnsForAnomaly int

	// Budgets
	BudgetThresholds []int // percent marks, ascending

	// Payoff and forecasting
	MaxPayoffMonths      int
	ForecastBaselineDays int
}

// Load reads the configuration from the environment, applying defaults for
// everything unset.
func Load() Config {
	return Config{
		DBPath:  getString("SPENDLENS_DB", "data/spendlens.db"),
		DataDir: getString("SPENDLENS_DATA_DIR", "data"),

		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		GeminiModel:  getString("GEMINI_MODEL", "gemini-2.0-flash"),
		ParseTimeout: time.Duration(getInt("PARSE_TIMEOUT", 120)) * time.Second,
		ParseWorkers: getInt("PARSE_WORKERS", 2),
		TaxonomyCSV:  getString("TAXONOMY_CSV", "transactions-personal-finance-category-taxonomy.csv"),

		ReviewConfidence: getFloat("REVIEW_CONFIDENCE", 0.8),

		MinOccurrences:       getInt("MIN_OCCURRENCES", 2),
		CadenceToleranceDays: getInt("CADENCE_TOLERANCE_DAYS", 3),
		AmountTolerance:      getFloat("AMOUNT_TOLERANCE", 0.10),

		ZThreshold:        getFloat("Z_THRESHOLD", 2.5),
		MinTxnsForAnomaly: getInt("MIN_TXNS_ANOMALY", 5),

		BudgetThresholds: getInts("BUDGET_THRESHOLDS", []int{80, 100, 120}),

		MaxPayoffMonths:      getInt("MAX_PAYOFF_MONTHS", 600),
		ForecastBaselineDays: getInt("FORECAST_BASELINE_DAYS", 60),
	}
}

func getString(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getFloat(key string, fallback float64) float64 {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}

	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getInts(key string, fallback []int) []int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}

	var out []int
	for _, part := range strings.Split(value, ",") {
		parsed, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return fallback
		}
		out = append(out, parsed)
	}

	if len(out) == 0 {
		return fallback
	}
	return out
}
