package ports

import (
	"context"

	"aispend/internal/domain"
)

// UsageSource reads one family of local usage data and yields normalized
// records plus the session metadata the source knows about.
//
// Contract: a missing root directory or database file is not an error and
// yields empty results. Individual malformed lines or rows are skipped.
// A returned error means the whole source was unreadable; callers decide
// whether that aborts or degrades.
type UsageSource interface {
	Name() string
	Load(ctx context.Context) ([]domain.UsageRecord, map[string]domain.SessionMeta, error)
}
