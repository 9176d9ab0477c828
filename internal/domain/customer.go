// Package domain contains the core data types shared across modules.
// Domain types are pure data - no infrastructure dependencies.
package domain

// Profile holds static customer attributes.
type Profile struct {
	Name           string  `json:"name,omitempty"`
	Age            int     `json:"age,omitempty"`
	EmploymentType string  `json:"employment_type,omitempty"`
	MonthlyIncome  float64 `json:"monthly_income"`
	CityTier       string  `json:"city_tier,omitempty"`
	CustomerSince  string  `json:"customer_since,omitempty"`
}

// Account is a single deposit account. The first account in a record is the
// customer's primary savings account and is the one used for derived ratios.
type Account struct {
	AccountID             string  `json:"account_id"`
	Type                  string  `json:"type"`
	CurrentBalance        float64 `json:"current_balance"`
	AverageMonthlyBalance float64 `json:"average_monthly_balance,omitempty"`
}

// Transaction is a raw account movement. Carried through for completeness,
// not consumed by feature derivation.
type Transaction struct {
	TransactionID string  `json:"transaction_id"`
	Date          string  `json:"date"`
	Amount        float64 `json:"amount"`
	Type          string  `json:"type"`
	Category      string  `json:"category"`
	Mode          string  `json:"mode"`
}

// EMIDetails describes the customer's installment obligation.
type EMIDetails struct {
	LoanType             string  `json:"loan_type,omitempty"`
	EMIAmount            float64 `json:"emi_amount"`
	EMIDueDay            int     `json:"emi_due_day,omitempty"`
	LastEMIPaidOn        string  `json:"last_emi_paid_on,omitempty"`
	MissedEMICountLast6M float64 `json:"missed_emi_count_last_6m"`
}

// BehavioralMetrics holds the behavioral stress indicators computed upstream.
type BehavioralMetrics struct {
	SalaryDelayDays         float64 `json:"salary_delay_days"`
	SavingsDeclinePct       float64 `json:"savings_decline_pct"`
	DiscretionaryRatio      float64 `json:"discretionary_ratio"`
	ATMSpikePct             float64 `json:"atm_spike_pct"`
	FailedAutoDebits        float64 `json:"failed_auto_debits"`
	UtilityPaymentDelayDays float64 `json:"utility_payment_delay_days"`
}

// RiskSnapshot is one historical risk score observation.
type RiskSnapshot struct {
	Date      string  `json:"date"`
	RiskScore float64 `json:"risk_score"`
}

// CustomerRecord is the nested raw record consumed by feature derivation and
// the shock simulator. Records are owned by the caller and treated as
// immutable inputs - anything that needs to mutate one works on a Clone.
type CustomerRecord struct {
	CustomerID        string            `json:"customer_id"`
	Profile           Profile           `json:"profile"`
	Accounts          []Account         `json:"accounts"`
	Transactions      []Transaction     `json:"transactions,omitempty"`
	EMIDetails        EMIDetails        `json:"emi_details"`
	BehavioralMetrics BehavioralMetrics `json:"behavioral_metrics"`
	RiskHistory       []RiskSnapshot    `json:"risk_history"`
}

// PrimaryAccount returns the first account, or a zero account when the
// record carries none.
func (c *CustomerRecord) PrimaryAccount() Account {
	if len(c.Accounts) == 0 {
		return Account{}
	}
	return c.Accounts[0]
}

// Clone returns a deep copy of the record. Slices are copied so mutations of
// the clone never leak back into the original.
func (c CustomerRecord) Clone() CustomerRecord {
	out := c
	if c.Accounts != nil {
		out.Accounts = make([]Account, len(c.Accounts))
		copy(out.Accounts, c.Accounts)
	}
	if c.Transactions != nil {
		out.Transactions = make([]Transaction, len(c.Transactions))
		copy(out.Transactions, c.Transactions)
	}
	if c.RiskHistory != nil {
		out.RiskHistory = make([]RiskSnapshot, len(c.RiskHistory))
		copy(out.RiskHistory, c.RiskHistory)
	}
	return out
}
