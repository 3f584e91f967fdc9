package domain

import "time"

// AggregateRow is one row of an aggregated usage report. Rows are built
// fresh per report and never persisted.
type AggregateRow struct {
	Label        string           `json:"label"`
	Tokens       TokenUsage       `json:"tokens"`
	Cost         float64          `json:"cost"`
	Models       []string         `json:"models,omitempty"`
	LastActivity time.Time        `json:"lastActivity,omitzero"`
	Breakdowns   []ModelBreakdown `json:"modelBreakdowns,omitempty"`
	Children     []AggregateRow   `json:"children,omitempty"`
}

// ModelBreakdown attributes a group's cost to priced token components for
// one model, together with the list rates used for display.
type ModelBreakdown struct {
	Model  string     `json:"model"`
	Tokens TokenUsage `json:"tokens"`

	InputCost      float64 `json:"inputCost"`
	CacheWriteCost float64 `json:"cacheWriteCost"`
	CacheReadCost  float64 `json:"cacheReadCost"`
	OutputCost     float64 `json:"outputCost"`
	TotalCost      float64 `json:"totalCost"`

	// List rates in USD per million tokens, collapsed to a single number
	// when both tiers charge the same ("3"), else shown as a range ("3-6").
	InputRate      string `json:"inputRate"`
	CacheWriteRate string `json:"cacheWriteRate"`
	CacheReadRate  string `json:"cacheReadRate"`
	OutputRate     string `json:"outputRate"`
}

// Report is the structured hand-off to the presentation layer.
type Report struct {
	Rows   []AggregateRow `json:"rows"`
	Totals AggregateRow   `json:"totals"`
}
