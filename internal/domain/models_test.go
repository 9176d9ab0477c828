package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeatureVector_ValuesAlignWithNames(t *testing.T) {
	names := FeatureNames()
	require.Len(t, names, NumFeatures)

	v := FeatureVector{
		IncomeToEMIRatio:        1,
		SavingsToEMIRatio:       2,
		SalaryDelayDays:         3,
		SavingsDeclinePct:       4,
		DiscretionaryRatio:      5,
		ATMSpikePct:             6,
		FailedAutoDebits:        7,
		UtilityPaymentDelayDays: 8,
		MissedEMI6M:             9,
		RiskMomentum:            10,
	}
	values := v.Values()
	require.Len(t, values, NumFeatures)

	// Each position carries the distinct marker assigned above, so any
	// ordering drift between Values and FeatureNames shows up here.
	assert.Equal(t, "income_to_emi_ratio", names[0])
	assert.Equal(t, 1.0, values[0])
	assert.Equal(t, "failed_auto_debits", names[6])
	assert.Equal(t, 7.0, values[6])
	assert.Equal(t, "risk_momentum", names[9])
	assert.Equal(t, 10.0, values[9])
}

func TestFeatureNames_ReturnsCopy(t *testing.T) {
	names := FeatureNames()
	names[0] = "mutated"
	assert.Equal(t, "income_to_emi_ratio", FeatureNames()[0])
}

func TestCustomerRecord_PrimaryAccount(t *testing.T) {
	rec := CustomerRecord{
		Accounts: []Account{
			{AccountID: "ACC-1", CurrentBalance: 5000},
			{AccountID: "ACC-2", CurrentBalance: 100},
		},
	}
	assert.Equal(t, "ACC-1", rec.PrimaryAccount().AccountID)

	empty := CustomerRecord{}
	assert.Equal(t, Account{}, empty.PrimaryAccount())
}

func TestCustomerRecord_CloneIsDeep(t *testing.T) {
	rec := CustomerRecord{
		CustomerID: "CUST-1",
		Accounts:   []Account{{AccountID: "ACC-1", CurrentBalance: 5000}},
		RiskHistory: []RiskSnapshot{
			{Date: "2026-07-01", RiskScore: 40},
		},
	}

	clone := rec.Clone()
	clone.Accounts[0].CurrentBalance = 0
	clone.RiskHistory[0].RiskScore = 99

	assert.Equal(t, 5000.0, rec.Accounts[0].CurrentBalance)
	assert.Equal(t, 40.0, rec.RiskHistory[0].RiskScore)
}
