// Package recommend derives advisory findings from statute diffs.
package recommend

import (
	"github.com/spf13/viper"

	"github.com/lexflow/statrev/internal/models"
)

// Default thresholds for the heuristic rules. All are overridable via
// config; the defaults match long-observed reviewer behavior.
const (
	// DefaultHistoryFrequencyThreshold is the number of historical
	// occurrences above which a change type counts as a recurring pattern.
	DefaultHistoryFrequencyThreshold = 5

	// DefaultPreconditionChurnThreshold is the number of precondition
	// changes above which a diff is flagged as hard to review.
	DefaultPreconditionChurnThreshold = 3

	// DefaultRemovedPreconditionThreshold is the number of removed
	// preconditions above which eligibility is considered broadened.
	DefaultRemovedPreconditionThreshold = 1
)

// Config holds rule thresholds.
type Config struct {
	HistoryFrequencyThreshold    int
	PreconditionChurnThreshold   int
	RemovedPreconditionThreshold int
}

// DefaultConfig returns the rule thresholds, reading from viper when set.
func DefaultConfig() Config {
	cfg := Config{
		HistoryFrequencyThreshold:    viper.GetInt("recommend.history_frequency_threshold"),
		PreconditionChurnThreshold:   viper.GetInt("recommend.precondition_churn_threshold"),
		RemovedPreconditionThreshold: viper.GetInt("recommend.removed_precondition_threshold"),
	}
	if cfg.HistoryFrequencyThreshold <= 0 {
		cfg.HistoryFrequencyThreshold = DefaultHistoryFrequencyThreshold
	}
	if cfg.PreconditionChurnThreshold <= 0 {
		cfg.PreconditionChurnThreshold = DefaultPreconditionChurnThreshold
	}
	if cfg.RemovedPreconditionThreshold <= 0 {
		cfg.RemovedPreconditionThreshold = DefaultRemovedPreconditionThreshold
	}
	return cfg
}

// Rule inspects a diff (and optionally prior diffs of the same statute) and
// returns zero or more recommendations.
type Rule func(d *models.StatuteDiff, historical []*models.StatuteDiff, cfg Config) []models.Recommendation

// AllRules returns the ordered list of rule groups. The order is part of
// the observable contract: output is the concatenation of each group's
// findings.
func AllRules() []Rule {
	return []Rule{
		metadataSyncRule,
		preconditionChurnRule,
		breakingChangeRule,
		historicalPatternRule,
		commonPitfallsRule,
	}
}

// Analyze runs all rule groups with the default config.
func Analyze(d *models.StatuteDiff, historical []*models.StatuteDiff) []models.Recommendation {
	return AnalyzeWith(DefaultConfig(), d, historical)
}

// AnalyzeWith runs all rule groups in order and concatenates their output.
// It never fails: an empty result means no findings.
func AnalyzeWith(cfg Config, d *models.StatuteDiff, historical []*models.StatuteDiff) []models.Recommendation {
	var recs []models.Recommendation
	for _, rule := range AllRules() {
		recs = append(recs, rule(d, historical, cfg)...)
	}
	return recs
}
