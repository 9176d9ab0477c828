// Package advisory assembles human-readable guidance from a feature vector.
// Pure string templating at the serving boundary - no influence on scoring.
package advisory

import (
	"strings"

	"github.com/aristath/stresswatch/internal/domain"
)

const (
	discretionaryCeil  = 0.4
	savingsDeclineCeil = 20.0
)

// Generate returns personalized advisory text for the tripped stress
// thresholds, or a reassuring default when none are tripped.
func Generate(v domain.FeatureVector) string {
	var messages []string

	if v.DiscretionaryRatio > discretionaryCeil {
		messages = append(messages,
			"Your discretionary expenses exceed 40% of income. "+
				"Reducing entertainment spend by ₹3,000 can improve EMI stability.")
	}

	if v.SavingsDeclinePct > savingsDeclineCeil {
		messages = append(messages,
			"Your savings are declining rapidly. Maintaining a buffer "+
				"of 3 EMI cycles is recommended.")
	}

	if len(messages) == 0 {
		messages = append(messages,
			"Your financial health looks stable. Keep up the good habits!")
	}

	return strings.Join(messages, " ")
}
