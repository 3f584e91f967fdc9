package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aispend/internal/domain"
	"aispend/internal/ports"
)

// fakeCatalog is a fixed in-memory pricing catalog for tests.
type fakeCatalog struct {
	schedules map[string]ports.Schedule
}

func (c *fakeCatalog) Schedule(model string) (ports.Schedule, bool) {
	s, ok := c.schedules[model]
	return s, ok
}

func testCatalog() *fakeCatalog {
	return &fakeCatalog{schedules: map[string]ports.Schedule{
		"model-a": {
			Input:      1e-6, // $1/M
			Output:     2e-6, // $2/M
			CacheWrite: 1.25e-6,
			CacheRead:  0.1e-6,
		},
		"tiered": {
			Input:          1e-6,
			InputAbove200k: 2e-6,
			Output:         4e-6,
		},
	}}
}

func floatPtr(v float64) *float64 { return &v }

func TestEntryCost_AuthoritativeWins(t *testing.T) {
	service := NewCostService(testCatalog())

	record := domain.UsageRecord{
		Model:   "model-a",
		Tokens:  domain.TokenUsage{Input: 1_000_000},
		CostUSD: floatPtr(0.01),
	}

	// The catalog would price this at $1.00; the source's number wins
	assert.InDelta(t, 0.01, service.EntryCost(record), 1e-9)
}

func TestEntryCost_ComputedWhenNoAuthoritative(t *testing.T) {
	service := NewCostService(testCatalog())

	record := domain.UsageRecord{
		Model:  "model-a",
		Tokens: domain.TokenUsage{Input: 2000, Output: 1000},
	}

	// 2000 * $1/M + 1000 * $2/M
	assert.InDelta(t, 0.004, service.EntryCost(record), 1e-12)
}

func TestEntryCost_CatalogMissIsZero(t *testing.T) {
	service := NewCostService(testCatalog())

	record := domain.UsageRecord{
		Model:  "never-heard-of-it",
		Tokens: domain.TokenUsage{Input: 5_000_000, Output: 5_000_000},
	}

	assert.Zero(t, service.EntryCost(record))
}

func TestEntryCost_ZeroAuthoritativeFallsBack(t *testing.T) {
	service := NewCostService(testCatalog())

	record := domain.UsageRecord{
		Model:   "model-a",
		Tokens:  domain.TokenUsage{Input: 1_000_000},
		CostUSD: floatPtr(0),
	}

	assert.InDelta(t, 1.0, service.EntryCost(record), 1e-9)
}

func TestModelCosts_ComponentsSumToTotal(t *testing.T) {
	service := NewCostService(testCatalog())

	records := []domain.UsageRecord{
		{Model: "model-a", Tokens: domain.TokenUsage{Input: 500_000, Output: 100_000, CacheCreation: 50_000, CacheRead: 200_000}},
		{Model: "model-a", Tokens: domain.TokenUsage{Input: 300_000, Output: 50_000}},
	}

	breakdown := service.ModelCosts("model-a", records)

	sum := breakdown.InputCost + breakdown.CacheWriteCost + breakdown.CacheReadCost + breakdown.OutputCost
	assert.InDelta(t, breakdown.TotalCost, sum, 1e-9)
	assert.Equal(t, int64(1_200_000), breakdown.Tokens.Total())
}

func TestModelCosts_AuthoritativeScalesComponents(t *testing.T) {
	service := NewCostService(testCatalog())

	// Calculated cost is $0.002 input + $0.002 output = $0.004, but the
	// source says $0.008: each component doubles.
	records := []domain.UsageRecord{
		{Model: "model-a", Tokens: domain.TokenUsage{Input: 2000, Output: 1000}, CostUSD: floatPtr(0.008)},
	}

	breakdown := service.ModelCosts("model-a", records)

	assert.InDelta(t, 0.004, breakdown.InputCost, 1e-12)
	assert.InDelta(t, 0.004, breakdown.OutputCost, 1e-12)
	assert.InDelta(t, 0.008, breakdown.TotalCost, 1e-12)
}

func TestModelCosts_AuthoritativeWithZeroCalculatedKeptAsIs(t *testing.T) {
	service := NewCostService(testCatalog())

	// Unknown model: components calculate to zero, so the authoritative
	// total cannot be distributed and the components stay zero.
	records := []domain.UsageRecord{
		{Model: "mystery", Tokens: domain.TokenUsage{Input: 1000}, CostUSD: floatPtr(0.5)},
	}

	breakdown := service.ModelCosts("mystery", records)

	assert.Zero(t, breakdown.InputCost)
	assert.Zero(t, breakdown.TotalCost)
}

func TestModelCosts_TierBoundaryPerRecord(t *testing.T) {
	service := NewCostService(testCatalog())

	records := []domain.UsageRecord{
		{Model: "tiered", Tokens: domain.TokenUsage{Input: 100_000}}, // base tier
		{Model: "tiered", Tokens: domain.TokenUsage{Input: 300_000}}, // above threshold
	}

	breakdown := service.ModelCosts("tiered", records)

	// 100k * $1/M + 300k * $2/M
	assert.InDelta(t, 0.7, breakdown.InputCost, 1e-9)
	assert.Equal(t, "1-2", breakdown.InputRate)
}

func TestModelCosts_ProviderPrefixStrippedForLookup(t *testing.T) {
	service := NewCostService(testCatalog())

	records := []domain.UsageRecord{
		{Model: "anthropic/model-a", Tokens: domain.TokenUsage{Input: 1_000_000}},
	}

	breakdown := service.ModelCosts("anthropic/model-a", records)
	assert.InDelta(t, 1.0, breakdown.InputCost, 1e-9)
}

func TestRateRange(t *testing.T) {
	tests := []struct {
		name     string
		base     float64
		above    float64
		expected string
	}{
		{name: "single tier", base: 3e-6, above: 0, expected: "3"},
		{name: "equal tiers collapse", base: 3e-6, above: 3e-6, expected: "3"},
		{name: "ascending pair", base: 1e-6, above: 2e-6, expected: "1-2"},
		{name: "fractional rates", base: 0.25e-6, above: 0.5e-6, expected: "0.25-0.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, rateRange(tt.base, tt.above))
		})
	}
}

func TestEntryCost_MixedBatchScenario(t *testing.T) {
	service := NewCostService(testCatalog())

	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	records := []domain.UsageRecord{
		{Timestamp: ts, Model: "model-a", Tokens: domain.TokenUsage{Input: 100}, CostUSD: floatPtr(0.01)},
		{Timestamp: ts, Model: "model-a", Tokens: domain.TokenUsage{Input: 2000, Output: 1000}},
		{Timestamp: ts, Model: "unpriced", Tokens: domain.TokenUsage{Input: 9_999_999}},
	}

	var total float64
	for _, r := range records {
		total += service.EntryCost(r)
	}

	require.InDelta(t, 0.014, total, 1e-9)
}
