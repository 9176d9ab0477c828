// Package features derives the fixed numeric feature schema from raw
// customer records and produces training labels from it.
package features

import "github.com/aristath/stresswatch/internal/domain"

// Default-resolution policy, shared by every reader of raw records:
//   - counts and percentages default to 0 (the struct zero value)
//   - a missing or zero monthly income resolves to 1
//   - ratios with a zero or missing EMI denominator resolve to DefaultRatio
const (
	// DefaultRatio is used for income/EMI and savings/EMI when the EMI
	// amount is zero or absent.
	DefaultRatio = 100.0

	defaultIncome = 1.0
)

// resolveIncome maps a missing or non-positive income to the documented
// default. This is the single place income defaulting happens.
func resolveIncome(p domain.Profile) float64 {
	if p.MonthlyIncome <= 0 {
		return defaultIncome
	}
	return p.MonthlyIncome
}

// Build derives a FeatureVector from a raw record. It is a total function:
// every missing field falls back to the documented default, there is no I/O
// and no randomness, and the same record always produces the same vector.
func Build(rec domain.CustomerRecord) domain.FeatureVector {
	income := resolveIncome(rec.Profile)
	emi := rec.EMIDetails.EMIAmount
	savings := rec.PrimaryAccount().CurrentBalance

	incomeRatio := DefaultRatio
	savingsRatio := DefaultRatio
	if emi > 0 {
		incomeRatio = income / emi
		savingsRatio = savings / emi
	}

	bm := rec.BehavioralMetrics

	return domain.FeatureVector{
		IncomeToEMIRatio:        incomeRatio,
		SavingsToEMIRatio:       savingsRatio,
		SalaryDelayDays:         bm.SalaryDelayDays,
		SavingsDeclinePct:       bm.SavingsDeclinePct,
		DiscretionaryRatio:      bm.DiscretionaryRatio,
		ATMSpikePct:             bm.ATMSpikePct,
		FailedAutoDebits:        bm.FailedAutoDebits,
		UtilityPaymentDelayDays: bm.UtilityPaymentDelayDays,
		MissedEMI6M:             rec.EMIDetails.MissedEMICountLast6M,
		RiskMomentum:            riskMomentum(rec.RiskHistory),
	}
}

// BuildAll derives feature vectors for a batch of records, preserving input
// order.
func BuildAll(records []domain.CustomerRecord) []domain.FeatureVector {
	out := make([]domain.FeatureVector, len(records))
	for i := range records {
		out[i] = Build(records[i])
	}
	return out
}

// riskMomentum is the change between the two most recent history entries.
// Fewer than two entries means no momentum signal: 0.
func riskMomentum(history []domain.RiskSnapshot) float64 {
	if len(history) < 2 {
		return 0
	}
	latest := history[len(history)-1].RiskScore
	previous := history[len(history)-2].RiskScore
	return latest - previous
}
