// Package health computes the rule-based financial health score. It is
// independent of the classifier: purely additive threshold penalties over the
// same feature vector.
package health

import "github.com/aristath/stresswatch/internal/domain"

// Threshold penalties. The score starts at 100 and each tripped threshold
// subtracts its fixed penalty; the result is clamped at 0.
const (
	discretionaryRatioCeil    = 0.4
	discretionaryRatioPenalty = 25

	savingsDeclineCeil    = 20.0
	savingsDeclinePenalty = 20

	incomeRatioFloor   = 3.0
	incomeRatioPenalty = 30

	utilityDelayCeil    = 5.0
	utilityDelayPenalty = 15
)

// Score returns the health score in [0, 100].
func Score(v domain.FeatureVector) int {
	score := 100

	if v.DiscretionaryRatio > discretionaryRatioCeil {
		score -= discretionaryRatioPenalty
	}
	if v.SavingsDeclinePct > savingsDeclineCeil {
		score -= savingsDeclinePenalty
	}
	if v.IncomeToEMIRatio < incomeRatioFloor {
		score -= incomeRatioPenalty
	}
	if v.UtilityPaymentDelayDays > utilityDelayCeil {
		score -= utilityDelayPenalty
	}

	if score < 0 {
		score = 0
	}
	return score
}
