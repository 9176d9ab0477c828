// Package offers selects the intervention with the greatest expected
// monetary value from a fixed, ordered catalog.
package offers

// Offer is one intervention in the catalog.
type Offer struct {
	Name            string  `json:"name"`
	Cost            float64 `json:"cost"`
	ReductionFactor float64 `json:"reduction_factor"`
}

// catalog is a process-wide constant. Order matters: selection uses a
// strict-greater comparison, so the first entry wins all ties.
var catalog = []Offer{
	{Name: "Soft Reminder", Cost: 0, ReductionFactor: 0.05},
	{Name: "Grace Period", Cost: 500, ReductionFactor: 0.15},
	{Name: "EMI Reduction", Cost: 2000, ReductionFactor: 0.30},
	{Name: "EMI Holiday", Cost: 4000, ReductionFactor: 0.45},
}

// Catalog returns a copy of the offer catalog in selection order.
func Catalog() []Offer {
	out := make([]Offer, len(catalog))
	copy(out, catalog)
	return out
}

// ExpectedValue is the probability-weighted benefit of an offer minus its
// fixed cost.
func ExpectedValue(o Offer, probDefault, emiAmount float64) float64 {
	return probDefault*emiAmount*o.ReductionFactor - o.Cost
}

// Select returns the name of the offer maximizing expected value for the
// given default probability and installment amount. Deterministic: ties go
// to the earliest catalog entry.
func Select(probDefault, emiAmount float64) string {
	best := catalog[0]
	bestValue := ExpectedValue(best, probDefault, emiAmount)

	for _, o := range catalog[1:] {
		if ev := ExpectedValue(o, probDefault, emiAmount); ev > bestValue {
			bestValue = ev
			best = o
		}
	}
	return best.Name
}
