package domain

// FeatureVector is the fixed numeric schema derived from a CustomerRecord.
// Field order is canonical: FeatureNames() and Values() must stay aligned.
type FeatureVector struct {
	IncomeToEMIRatio        float64 `json:"income_to_emi_ratio" msgpack:"income_to_emi_ratio"`
	SavingsToEMIRatio       float64 `json:"savings_to_emi_ratio" msgpack:"savings_to_emi_ratio"`
	SalaryDelayDays         float64 `json:"salary_delay_days" msgpack:"salary_delay_days"`
	SavingsDeclinePct       float64 `json:"savings_decline_pct" msgpack:"savings_decline_pct"`
	DiscretionaryRatio      float64 `json:"discretionary_ratio" msgpack:"discretionary_ratio"`
	ATMSpikePct             float64 `json:"atm_spike_pct" msgpack:"atm_spike_pct"`
	FailedAutoDebits        float64 `json:"failed_auto_debits" msgpack:"failed_auto_debits"`
	UtilityPaymentDelayDays float64 `json:"utility_payment_delay_days" msgpack:"utility_payment_delay_days"`
	MissedEMI6M             float64 `json:"missed_emi_6m" msgpack:"missed_emi_6m"`
	RiskMomentum            float64 `json:"risk_momentum" msgpack:"risk_momentum"`
}

// featureNames lists the canonical feature order used by the classifier and
// the attribution output.
var featureNames = []string{
	"income_to_emi_ratio",
	"savings_to_emi_ratio",
	"salary_delay_days",
	"savings_decline_pct",
	"discretionary_ratio",
	"atm_spike_pct",
	"failed_auto_debits",
	"utility_payment_delay_days",
	"missed_emi_6m",
	"risk_momentum",
}

// FeatureNames returns the canonical feature order. The returned slice is a
// copy and safe to mutate.
func FeatureNames() []string {
	out := make([]string, len(featureNames))
	copy(out, featureNames)
	return out
}

// NumFeatures is the width of the feature schema.
const NumFeatures = 10

// Values returns the vector in canonical feature order.
func (v FeatureVector) Values() []float64 {
	return []float64{
		v.IncomeToEMIRatio,
		v.SavingsToEMIRatio,
		v.SalaryDelayDays,
		v.SavingsDeclinePct,
		v.DiscretionaryRatio,
		v.ATMSpikePct,
		v.FailedAutoDebits,
		v.UtilityPaymentDelayDays,
		v.MissedEMI6M,
		v.RiskMomentum,
	}
}

// LabeledExample pairs a feature vector with its training label.
// Training-time only; never constructed at inference time.
type LabeledExample struct {
	Features    FeatureVector
	WillMissEMI int
}

// Attribution is one signed feature contribution to a prediction.
type Attribution struct {
	Feature string  `json:"feature"`
	Impact  float64 `json:"impact"`
}

// Assessment is the per-customer scoring output.
type Assessment struct {
	CustomerID       string        `json:"customer_id"`
	RiskScore        int           `json:"risk_score"`
	HealthScore      int           `json:"health_score"`
	Alert            bool          `json:"alert"`
	RecommendedOffer string        `json:"recommended_offer"`
	Advisory         string        `json:"advisory,omitempty"`
	AIInsight        string        `json:"ai_insight,omitempty"`
	TopFactors       []Attribution `json:"top_factors"`
}
