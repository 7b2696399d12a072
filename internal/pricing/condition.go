package pricing

import (
	"strings"
	"time"

	"pazaryeri/internal/config"
)

// Multiplier returns the condition factor for label and the label it was
// resolved to. Empty or unknown labels fall back to the default condition.
func Multiplier(p config.Pricing, label string) (float64, string) {
	label = strings.TrimSpace(label)
	if f, ok := p.ConditionFactors[label]; ok {
		return f, label
	}
	if label == "" {
		label = p.DefaultCondition
	}
	return p.DefaultMultiplier, label
}

// TTL is how long a snapshot of category stays fresh.
func TTL(p config.Pricing, category string) time.Duration {
	days, ok := p.CategoryTTLDays[category]
	if !ok || days <= 0 {
		days = p.DefaultTTLDays
	}
	return time.Duration(days) * 24 * time.Hour
}
