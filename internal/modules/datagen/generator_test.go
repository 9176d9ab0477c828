package datagen

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_Count(t *testing.T) {
	records := New(1).Generate(25)
	assert.Len(t, records, 25)
}

func TestGenerate_IDsAreSequential(t *testing.T) {
	records := New(1).Generate(5)

	for i, rec := range records {
		assert.Equal(t, fmt.Sprintf("CUST%d", 1001+i), rec.CustomerID)
	}
}

func TestGenerate_FieldRanges(t *testing.T) {
	records := New(7).Generate(100)

	for _, rec := range records {
		assert.GreaterOrEqual(t, rec.Profile.MonthlyIncome, 30000.0)
		assert.LessOrEqual(t, rec.Profile.MonthlyIncome, 150000.0)

		// EMI is a fraction of income
		assert.Greater(t, rec.EMIDetails.EMIAmount, 0.0)
		assert.Less(t, rec.EMIDetails.EMIAmount, rec.Profile.MonthlyIncome*0.4+1)

		require.Len(t, rec.Accounts, 1)
		assert.GreaterOrEqual(t, rec.Accounts[0].CurrentBalance, 20000.0)

		assert.GreaterOrEqual(t, rec.BehavioralMetrics.DiscretionaryRatio, 0.2)
		assert.LessOrEqual(t, rec.BehavioralMetrics.DiscretionaryRatio, 0.7)

		require.Len(t, rec.RiskHistory, 2)
		require.Len(t, rec.Transactions, 2)
	}
}

func TestGenerate_DistinctTransactionIDs(t *testing.T) {
	records := New(3).Generate(50)

	seen := make(map[string]bool)
	for _, rec := range records {
		for _, tx := range rec.Transactions {
			assert.False(t, seen[tx.TransactionID], "duplicate transaction id")
			seen[tx.TransactionID] = true
		}
	}
}

func TestGenerate_SeedReproducible(t *testing.T) {
	a := New(42).Generate(10)
	b := New(42).Generate(10)

	// Transaction ids are random UUIDs; everything else must match.
	for i := range a {
		assert.Equal(t, a[i].Profile, b[i].Profile)
		assert.Equal(t, a[i].EMIDetails, b[i].EMIDetails)
		assert.Equal(t, a[i].BehavioralMetrics, b[i].BehavioralMetrics)
		assert.Equal(t, a[i].Accounts, b[i].Accounts)
	}
}
