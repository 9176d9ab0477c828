package features

import "github.com/aristath/stresswatch/internal/domain"

// Label thresholds. A customer is labeled as likely to miss the next
// installment when any one of these trips.
const (
	labelIncomeRatioFloor  = 3.0
	labelFailedDebitsFloor = 2.0
	labelSalaryDelayCeil   = 5.0
	labelMomentumCeil      = 15.0
)

// Label derives the binary training target from a feature vector.
// The rule is a monotonic OR: any single tripped threshold labels positive.
// Training-time only - inference never calls this.
func Label(v domain.FeatureVector) int {
	if v.IncomeToEMIRatio < labelIncomeRatioFloor ||
		v.FailedAutoDebits >= labelFailedDebitsFloor ||
		v.SalaryDelayDays > labelSalaryDelayCeil ||
		v.RiskMomentum > labelMomentumCeil {
		return 1
	}
	return 0
}

// MakeExamples pairs each vector with its derived label.
func MakeExamples(vectors []domain.FeatureVector) []domain.LabeledExample {
	examples := make([]domain.LabeledExample, len(vectors))
	for i, v := range vectors {
		examples[i] = domain.LabeledExample{Features: v, WillMissEMI: Label(v)}
	}
	return examples
}
