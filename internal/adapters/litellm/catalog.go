// Package litellm resolves model names to tiered pricing schedules using
// the LiteLLM community price catalog, with an embedded snapshot as the
// offline fallback.
package litellm

import (
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"time"

	"aispend/internal/logging"
	"aispend/internal/ports"
)

const catalogURL = "https://raw.githubusercontent.com/BerriAI/litellm/main/model_prices_and_context_window.json"

// catalogEntry is the subset of a LiteLLM catalog row we price with.
// Rates are USD per token.
type catalogEntry struct {
	InputCostPerToken          float64 `json:"input_cost_per_token"`
	InputCostAbove200k         float64 `json:"input_cost_per_token_above_200k_tokens"`
	OutputCostPerToken         float64 `json:"output_cost_per_token"`
	OutputCostAbove200k        float64 `json:"output_cost_per_token_above_200k_tokens"`
	CacheCreationCostPerToken  float64 `json:"cache_creation_input_token_cost"`
	CacheCreationCostAbove200k float64 `json:"cache_creation_input_token_cost_above_200k_tokens"`
	CacheReadCostPerToken      float64 `json:"cache_read_input_token_cost"`
	CacheReadCostAbove200k     float64 `json:"cache_read_input_token_cost_above_200k_tokens"`
}

func (e catalogEntry) schedule() ports.Schedule {
	return ports.Schedule{
		Input:               e.InputCostPerToken,
		InputAbove200k:      e.InputCostAbove200k,
		Output:              e.OutputCostPerToken,
		OutputAbove200k:     e.OutputCostAbove200k,
		CacheWrite:          e.CacheCreationCostPerToken,
		CacheWriteAbove200k: e.CacheCreationCostAbove200k,
		CacheRead:           e.CacheReadCostPerToken,
		CacheReadAbove200k:  e.CacheReadCostAbove200k,
	}
}

// Catalog implements ports.PricingCatalog. The price map is fetched at
// most once per process; lookups afterwards are map reads.
type Catalog struct {
	offline bool
	client  *http.Client

	loadOnce  sync.Once
	schedules map[string]ports.Schedule
}

// Verify interface compliance at compile time
var _ ports.PricingCatalog = (*Catalog)(nil)

// NewCatalog creates a Catalog. With offline set, only the embedded
// snapshot is consulted.
func NewCatalog(offline bool) *Catalog {
	return &Catalog{
		offline: offline,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Schedule returns the rate schedule for a model. The model name is
// alias-resolved first; lookups are otherwise by exact string. A miss
// returns (Schedule{}, false) and never an error.
func (c *Catalog) Schedule(model string) (ports.Schedule, bool) {
	c.loadOnce.Do(c.load)

	name := ResolveAlias(model)
	s, ok := c.schedules[name]
	return s, ok
}

// load populates the schedule map, preferring the remote catalog and
// falling back to the embedded snapshot on any failure.
func (c *Catalog) load() {
	if !c.offline {
		if fetched, err := c.fetch(); err == nil {
			c.schedules = fetched
			return
		} else {
			logging.Logger.Warn("Failed to fetch pricing catalog, using embedded snapshot", "error", err)
		}
	}
	c.schedules = embeddedSchedules()
}

func (c *Catalog) fetch() (map[string]ports.Schedule, error) {
	resp, err := c.client.Get(catalogURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &httpError{status: resp.Status}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var raw map[string]catalogEntry
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, err
	}

	schedules := make(map[string]ports.Schedule, len(raw))
	for name, entry := range raw {
		schedules[name] = entry.schedule()
	}

	logging.Logger.Debug("Fetched pricing catalog", "models", len(schedules))
	return schedules, nil
}

type httpError struct {
	status string
}

func (e *httpError) Error() string {
	return "pricing catalog request failed: " + e.status
}
