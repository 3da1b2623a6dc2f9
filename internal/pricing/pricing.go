// Package pricing converts token counts into embedding cost estimates.
package pricing

import "strings"

// Price per million tokens, by model size tier (USD).
const (
	SmallTierPerMillion = 0.02
	LargeTierPerMillion = 0.13
)

// EstimateCost returns the cost in USD of embedding totalTokens with
// the given model. Models with "small" in their name are billed at
// the small tier; everything else at the large tier.
func EstimateCost(totalTokens int, model string) float64 {
	perMillion := LargeTierPerMillion
	if strings.Contains(model, "small") {
		perMillion = SmallTierPerMillion
	}
	return float64(totalTokens) / 1_000_000 * perMillion
}
