// Package datagen produces synthetic customer records for development and
// tests. The generator is seedable so fixtures are reproducible.
package datagen

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/aristath/stresswatch/internal/domain"
)

// salaryDelayChoices is weighted toward on-time salaries with a tail of
// meaningful delays.
var salaryDelayChoices = []float64{0, 0, 0, 1, 2, 5, 7, 10}

var employmentTypes = []string{"salaried", "self_employed"}
var loanTypes = []string{"personal_loan", "home_loan", "auto_loan"}
var cityTiers = []string{"Tier-1", "Tier-2", "Tier-3"}

// Generator builds synthetic customer records.
type Generator struct {
	rng *rand.Rand
	now time.Time
}

// New creates a generator seeded from the given source.
func New(seed int64) *Generator {
	return &Generator{
		rng: rand.New(rand.NewSource(seed)),
		now: time.Now(),
	}
}

// Generate returns n synthetic customer records.
func (g *Generator) Generate(n int) []domain.CustomerRecord {
	records := make([]domain.CustomerRecord, 0, n)
	for i := 1; i <= n; i++ {
		records = append(records, g.generateOne(i))
	}
	return records
}

func (g *Generator) generateOne(i int) domain.CustomerRecord {
	income := float64(g.intBetween(30000, 150000))
	emi := float64(int(income * g.floatBetween(0.1, 0.4)))
	balance := float64(g.intBetween(20000, 200000))

	custID := fmt.Sprintf("CUST%d", 1000+i)

	return domain.CustomerRecord{
		CustomerID: custID,
		Profile: domain.Profile{
			Name:           fmt.Sprintf("Customer_%d", i),
			Age:            g.intBetween(22, 60),
			EmploymentType: g.choiceString(employmentTypes),
			MonthlyIncome:  income,
			CityTier:       g.choiceString(cityTiers),
			CustomerSince:  g.pastDate(365, 3650),
		},
		Accounts: []domain.Account{
			{
				AccountID:             fmt.Sprintf("SAV%d", i),
				Type:                  "savings",
				CurrentBalance:        balance,
				AverageMonthlyBalance: float64(int(balance * g.floatBetween(0.8, 1.2))),
			},
		},
		Transactions: []domain.Transaction{
			{
				TransactionID: uuid.NewString(),
				Date:          g.pastDate(1, 30),
				Amount:        income,
				Type:          "credit",
				Category:      "salary_credit",
				Mode:          "bank_transfer",
			},
			{
				TransactionID: uuid.NewString(),
				Date:          g.pastDate(1, 30),
				Amount:        emi,
				Type:          "debit",
				Category:      "emi_payment",
				Mode:          "auto_debit",
			},
		},
		EMIDetails: domain.EMIDetails{
			LoanType:             g.choiceString(loanTypes),
			EMIAmount:            emi,
			EMIDueDay:            g.intBetween(1, 28),
			LastEMIPaidOn:        g.pastDate(1, 30),
			MissedEMICountLast6M: float64(g.intBetween(0, 4)),
		},
		BehavioralMetrics: domain.BehavioralMetrics{
			SalaryDelayDays:         salaryDelayChoices[g.rng.Intn(len(salaryDelayChoices))],
			SavingsDeclinePct:       float64(g.intBetween(0, 40)),
			DiscretionaryRatio:      roundTo(g.floatBetween(0.2, 0.7), 2),
			ATMSpikePct:             float64(g.intBetween(0, 50)),
			FailedAutoDebits:        float64(g.intBetween(0, 3)),
			UtilityPaymentDelayDays: float64(g.intBetween(0, 15)),
		},
		RiskHistory: []domain.RiskSnapshot{
			{Date: g.now.AddDate(0, -2, 0).Format("2006-01-02"), RiskScore: float64(g.intBetween(20, 90))},
			{Date: g.now.AddDate(0, -1, 0).Format("2006-01-02"), RiskScore: float64(g.intBetween(20, 100))},
		},
	}
}

// intBetween returns a uniform integer in [lo, hi].
func (g *Generator) intBetween(lo, hi int) int {
	return lo + g.rng.Intn(hi-lo+1)
}

func (g *Generator) floatBetween(lo, hi float64) float64 {
	return lo + g.rng.Float64()*(hi-lo)
}

func (g *Generator) choiceString(options []string) string {
	return options[g.rng.Intn(len(options))]
}

func (g *Generator) pastDate(minDays, maxDays int) string {
	days := g.intBetween(minDays, maxDays)
	return g.now.AddDate(0, 0, -days).Format("2006-01-02")
}

func roundTo(v float64, places int) float64 {
	scale := 1.0
	for i := 0; i < places; i++ {
		scale *= 10
	}
	return float64(int(v*scale+0.5)) / scale
}
