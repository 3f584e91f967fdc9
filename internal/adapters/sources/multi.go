// Package sources composes the individual usage sources into one reader.
package sources

import (
	"context"

	"golang.org/x/sync/errgroup"

	"aispend/internal/adapters/claudecode"
	"aispend/internal/adapters/codex"
	"aispend/internal/adapters/opencode"
	"aispend/internal/domain"
	"aispend/internal/logging"
	"aispend/internal/ports"
)

// Multi reads several sources and merges their results. Sources are read
// concurrently (they touch disjoint files) and joined before the merge,
// because metadata priority depends on the declared source order: the
// first source to define a session id wins.
type Multi struct {
	sources []ports.UsageSource
}

// Verify interface compliance at compile time
var _ ports.UsageSource = (*Multi)(nil)

// NewMulti composes the given sources in priority order.
func NewMulti(srcs ...ports.UsageSource) *Multi {
	return &Multi{sources: srcs}
}

// All returns the default composite over every supported source, in the
// fixed metadata priority order opencode, claude, codex.
func All() *Multi {
	return NewMulti(opencode.NewReader(), claudecode.NewReader(), codex.NewReader())
}

// ForName returns the single named source, or the full composite for
// "all" / "". The boolean reports whether the name was recognized.
func ForName(name string) (ports.UsageSource, bool) {
	switch domain.Source(name) {
	case domain.SourceOpenCode:
		return opencode.NewReader(), true
	case domain.SourceClaude:
		return claudecode.NewReader(), true
	case domain.SourceCodex:
		return codex.NewReader(), true
	}
	if name == "all" || name == "" {
		return All(), true
	}
	return nil, false
}

// Name identifies the composite in log lines
func (m *Multi) Name() string { return "all" }

// Load reads every source. A failing source is logged and contributes
// empty results; the composite itself only fails on context cancellation.
func (m *Multi) Load(ctx context.Context) ([]domain.UsageRecord, map[string]domain.SessionMeta, error) {
	type result struct {
		records []domain.UsageRecord
		meta    map[string]domain.SessionMeta
	}
	results := make([]result, len(m.sources))

	g, gctx := errgroup.WithContext(ctx)
	for i, src := range m.sources {
		g.Go(func() error {
			records, meta, err := src.Load(gctx)
			if err != nil {
				if gctx.Err() != nil {
					return err
				}
				// Source unavailable: degrade to empty, keep the report going
				logging.Logger.Warn("Source failed to load, skipping", "source", src.Name(), "error", err)
				return nil
			}
			results[i] = result{records: records, meta: meta}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	var records []domain.UsageRecord
	merged := make(map[string]domain.SessionMeta)
	for _, res := range results {
		records = append(records, res.records...)
		for id, meta := range res.meta {
			if _, exists := merged[id]; !exists {
				merged[id] = meta
			}
		}
	}
	return records, merged, nil
}
