package metrics

// CostEstimator computes a dollar estimate per §4.8: "a function of
// (has_images, token_count)". Each provider supplies its own curve; the
// orchestrator records the result against CostEstimateDollars.
type CostEstimator func(hasImages bool, tokenCount int) float64

// DOMProviderCost is approximately constant per run (§4.2 "Cost:
// approximately constant per run").
func DOMProviderCost(hasImages bool, tokenCount int) float64 {
	const base = 0.002
	if hasImages {
		return base + 0.001
	}
	return base
}

// LLMProviderCost is higher and variable: base + per-image + per-token
// (§4.3 "Cost: higher and variable").
func LLMProviderCost(hasImages bool, tokenCount int) float64 {
	const base = 0.02
	const perImage = 0.01
	const perToken = 0.000002
	cost := base + float64(tokenCount)*perToken
	if hasImages {
		cost += perImage
	}
	return cost
}
