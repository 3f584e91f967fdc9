package cmd

import (
	"fmt"

	"aispend/internal/adapters/litellm"
	"aispend/internal/adapters/sources"
	"aispend/internal/config"
	"aispend/internal/ports"
	"aispend/internal/services"
)

// Container holds all dependencies for the application
type Container struct {
	Settings *config.Settings
}

// NewContainer creates a new Container with all dependencies wired
func NewContainer(settings *config.Settings) *Container {
	return &Container{Settings: settings}
}

// Source resolves a --source flag value to a usage source. "all" (or an
// empty value) composes every supported source.
func (c *Container) Source(name string) (ports.UsageSource, error) {
	src, ok := sources.ForName(name)
	if !ok {
		return nil, fmt.Errorf("unknown source %q (expected opencode, claude, codex or all)", name)
	}
	return src, nil
}

// Aggregator builds the costing and aggregation services for one report.
// The catalog memoizes its schedule lookups for the invocation.
func (c *Container) Aggregator(offline bool) *services.Aggregator {
	catalog := litellm.NewCatalog(offline)
	return services.NewAggregator(services.NewCostService(catalog))
}
