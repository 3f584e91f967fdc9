package ports

import "aispend/internal/domain"

// TierThreshold is the per-request input token count above which the
// second pricing tier applies, when a model defines one.
const TierThreshold = 200_000

// Schedule holds per-token USD rates for one model. The Above200k fields
// default to the base rate when the catalog defines no second tier.
// The zero value prices everything at zero, which is how a catalog miss
// degrades.
type Schedule struct {
	Input               float64
	InputAbove200k      float64
	Output              float64
	OutputAbove200k     float64
	CacheWrite          float64
	CacheWriteAbove200k float64
	CacheRead           float64
	CacheReadAbove200k  float64
}

// tierRate picks the base or above-threshold rate for a request whose
// total input token count is inputTokens.
func tierRate(base, above float64, inputTokens int64) float64 {
	if inputTokens > TierThreshold && above > 0 {
		return above
	}
	return base
}

// InputRate returns the applicable per-token input rate for a request.
func (s Schedule) InputRate(inputTokens int64) float64 {
	return tierRate(s.Input, s.InputAbove200k, inputTokens)
}

// OutputRate returns the applicable per-token output rate for a request.
func (s Schedule) OutputRate(inputTokens int64) float64 {
	return tierRate(s.Output, s.OutputAbove200k, inputTokens)
}

// CacheWriteRate returns the applicable per-token cache-write rate.
func (s Schedule) CacheWriteRate(inputTokens int64) float64 {
	return tierRate(s.CacheWrite, s.CacheWriteAbove200k, inputTokens)
}

// CacheReadRate returns the applicable per-token cache-read rate.
func (s Schedule) CacheReadRate(inputTokens int64) float64 {
	return tierRate(s.CacheRead, s.CacheReadAbove200k, inputTokens)
}

// Cost prices a token usage against this schedule. Tier selection follows
// the request's total input-side token count (uncached input plus cache
// writes plus cache reads), which is what the upstream catalogs key on.
func (s Schedule) Cost(tokens domain.TokenUsage) float64 {
	inputSide := tokens.Input + tokens.CacheCreation + tokens.CacheRead
	cost := float64(tokens.Input) * s.InputRate(inputSide)
	cost += float64(tokens.Output+tokens.Reasoning) * s.OutputRate(inputSide)
	cost += float64(tokens.CacheCreation) * s.CacheWriteRate(inputSide)
	cost += float64(tokens.CacheRead) * s.CacheReadRate(inputSide)
	return cost
}

// PricingCatalog resolves a model name to its rate schedule.
//
// A miss yields (Schedule{}, false), never an error: unknown models price
// to zero rather than failing a report.
type PricingCatalog interface {
	Schedule(model string) (Schedule, bool)
}
