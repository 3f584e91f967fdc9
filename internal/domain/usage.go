package domain

import (
	"path/filepath"
	"strings"
	"time"
)

// Source identifies the tool a usage record was read from.
type Source string

const (
	SourceOpenCode Source = "opencode"
	SourceClaude   Source = "claude"
	SourceCodex    Source = "codex"
)

// UnknownProject is the display name used when no project can be resolved
const UnknownProject = "unknown"

// TokenUsage holds the token counts of a single assistant turn.
type TokenUsage struct {
	Input         int64 `json:"input"`
	Output        int64 `json:"output"`
	Reasoning     int64 `json:"reasoning"`
	CacheCreation int64 `json:"cacheCreation"`
	CacheRead     int64 `json:"cacheRead"`
}

// Total returns the sum of all token fields.
func (t TokenUsage) Total() int64 {
	return t.Input + t.Output + t.Reasoning + t.CacheCreation + t.CacheRead
}

// IsZero reports whether every token field is zero.
func (t TokenUsage) IsZero() bool {
	return t.Total() == 0
}

// Add accumulates another usage into this one.
func (t *TokenUsage) Add(other TokenUsage) {
	t.Input += other.Input
	t.Output += other.Output
	t.Reasoning += other.Reasoning
	t.CacheCreation += other.CacheCreation
	t.CacheRead += other.CacheRead
}

// UsageRecord is one normalized per-assistant-turn usage fact.
// Records with zero usage are dropped at normalization and never reach
// the filter or aggregation stages.
type UsageRecord struct {
	Timestamp time.Time
	SessionID string
	Source    Source
	Provider  string // lowercase provider id, "unknown" when it cannot be inferred
	Model     string // raw model identifier, may carry a "provider/" prefix
	Tokens    TokenUsage

	// CostUSD is the cost the source itself computed, when it did.
	// It is authoritative over any locally recomputed pricing.
	CostUSD *float64
}

// NormalizedModel returns the model name with an embedded provider prefix
// stripped ("anthropic/claude-sonnet-4" -> "claude-sonnet-4").
func (r UsageRecord) NormalizedModel() string {
	if i := strings.Index(r.Model, "/"); i >= 0 {
		return r.Model[i+1:]
	}
	return r.Model
}

// ComboLabel returns the composite source/provider/model display label.
func (r UsageRecord) ComboLabel() string {
	return string(r.Source) + "/" + r.Provider + "/" + r.NormalizedModel()
}

// SessionMeta describes a session known to one of the sources.
type SessionMeta struct {
	SessionID string
	ParentID  string
	Title     string
	ProjectID string
	Directory string
}

// ProjectName resolves the display name for the session's project:
// last segment of the directory, then the project id, then "unknown".
func (m SessionMeta) ProjectName() string {
	if m.Directory != "" {
		return filepath.Base(m.Directory)
	}
	if m.ProjectID != "" {
		return m.ProjectID
	}
	return UnknownProject
}
