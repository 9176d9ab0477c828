// Package alerts decides whether a customer should be proactively alerted.
// The decision combines the model score, risk momentum, and a count of
// behavioral stress signals.
package alerts

import "github.com/aristath/stresswatch/internal/domain"

const (
	riskScoreCeil = 70
	momentumCeil  = 15.0

	// Stress signal thresholds
	salaryDelayCeil        = 5.0
	failedDebitsFloor      = 2.0
	discretionaryAlertCeil = 0.45

	stressSignalsFloor = 3
)

// StressSignals counts how many of the three behavioral stress thresholds
// are tripped (0-3).
func StressSignals(v domain.FeatureVector) int {
	n := 0
	if v.SalaryDelayDays > salaryDelayCeil {
		n++
	}
	if v.FailedAutoDebits >= failedDebitsFloor {
		n++
	}
	if v.DiscretionaryRatio > discretionaryAlertCeil {
		n++
	}
	return n
}

// ShouldAlert returns true when the score, the momentum, or the stress
// signal count crosses its threshold. Any single condition is sufficient.
func ShouldAlert(v domain.FeatureVector, riskScore int) bool {
	return riskScore > riskScoreCeil ||
		v.RiskMomentum > momentumCeil ||
		StressSignals(v) >= stressSignalsFloor
}
