package services

import (
	"strconv"

	"aispend/internal/domain"
	"aispend/internal/ports"
)

// CostService attributes USD costs to usage records through a pricing
// catalog. Schedule lookups are memoized by the catalog for the lifetime
// of one invocation.
type CostService struct {
	catalog ports.PricingCatalog
}

// NewCostService creates a CostService backed by the given catalog.
func NewCostService(catalog ports.PricingCatalog) *CostService {
	return &CostService{catalog: catalog}
}

// EntryCost returns the total cost of one record. A positive cost already
// computed by the source is authoritative; otherwise the record is priced
// against the catalog, with a catalog miss degrading to zero.
func (s *CostService) EntryCost(r domain.UsageRecord) float64 {
	if r.CostUSD != nil && *r.CostUSD > 0 {
		return *r.CostUSD
	}

	schedule, ok := s.catalog.Schedule(r.NormalizedModel())
	if !ok {
		return 0
	}
	return schedule.Cost(r.Tokens)
}

// ModelCosts attributes per-component costs to a batch of records that
// share one display model. Components are computed tier-aware per record,
// then scaled so they reconcile with the record's authoritative total
// when one exists: tier boundaries stay correct per request while the
// summed components never drift from the displayed total.
func (s *CostService) ModelCosts(model string, records []domain.UsageRecord) domain.ModelBreakdown {
	schedule, _ := s.catalog.Schedule(normalizedName(model))

	breakdown := domain.ModelBreakdown{
		Model:          model,
		InputRate:      rateRange(schedule.Input, schedule.InputAbove200k),
		CacheWriteRate: rateRange(schedule.CacheWrite, schedule.CacheWriteAbove200k),
		CacheReadRate:  rateRange(schedule.CacheRead, schedule.CacheReadAbove200k),
		OutputRate:     rateRange(schedule.Output, schedule.OutputAbove200k),
	}

	for _, r := range records {
		breakdown.Tokens.Add(r.Tokens)

		inputSide := r.Tokens.Input + r.Tokens.CacheCreation + r.Tokens.CacheRead
		inputCost := float64(r.Tokens.Input) * schedule.InputRate(inputSide)
		cacheWriteCost := float64(r.Tokens.CacheCreation) * schedule.CacheWriteRate(inputSide)
		cacheReadCost := float64(r.Tokens.CacheRead) * schedule.CacheReadRate(inputSide)
		outputCost := float64(r.Tokens.Output+r.Tokens.Reasoning) * schedule.OutputRate(inputSide)

		calculated := inputCost + cacheWriteCost + cacheReadCost + outputCost
		if r.CostUSD != nil && *r.CostUSD > 0 && calculated > 0 {
			scale := *r.CostUSD / calculated
			inputCost *= scale
			cacheWriteCost *= scale
			cacheReadCost *= scale
			outputCost *= scale
		}

		breakdown.InputCost += inputCost
		breakdown.CacheWriteCost += cacheWriteCost
		breakdown.CacheReadCost += cacheReadCost
		breakdown.OutputCost += outputCost
	}

	breakdown.TotalCost = breakdown.InputCost + breakdown.CacheWriteCost +
		breakdown.CacheReadCost + breakdown.OutputCost
	return breakdown
}

// rateRange renders a tier pair as USD per million tokens: a single
// number when both tiers charge the same, else "min-max".
func rateRange(base, above float64) string {
	perMillion := func(rate float64) string {
		return strconv.FormatFloat(rate*1e6, 'f', -1, 64)
	}
	if above == 0 || above == base {
		return perMillion(base)
	}
	if above < base {
		return perMillion(above) + "-" + perMillion(base)
	}
	return perMillion(base) + "-" + perMillion(above)
}

// normalizedName strips an embedded provider prefix from a display model
// label before a catalog lookup.
func normalizedName(model string) string {
	r := domain.UsageRecord{Model: model}
	return r.NormalizedModel()
}
