package services

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"aispend/internal/domain"
)

// Dimension is one caller-selectable grouping axis for breakdown rows.
type Dimension string

const (
	DimSource   Dimension = "source"
	DimProvider Dimension = "provider"
	DimModel    Dimension = "model"
	DimCombo    Dimension = "combo" // composite source/provider/model
	DimProject  Dimension = "project"
	DimSession  Dimension = "session"

	// Render-only modifiers: they change what columns are shown, not how
	// records are grouped.
	DimCost    Dimension = "cost"
	DimPercent Dimension = "percent"
)

// Bucket selects the top-level grouping of a report.
type Bucket string

const (
	BucketDay     Bucket = "day"
	BucketWeek    Bucket = "week" // ISO week, Monday start
	BucketMonth   Bucket = "month"
	BucketSession Bucket = "session"
	BucketModel   Bucket = "model"
	BucketProject Bucket = "project"
)

// BreakdownSpec is the parsed form of a --breakdown selector.
type BreakdownSpec struct {
	Dimensions  []Dimension // grouping dimensions, in selection order
	ShowCost    bool        // "cost" modifier: per-model component columns
	ShowPercent bool        // "percent" modifier: share-of-total column
}

// ParseBreakdown parses a comma-separated dimension selector. An unknown
// token is a user input error; combo subsumes source, provider and model
// and cannot be combined with them.
func ParseBreakdown(selector string) (BreakdownSpec, error) {
	var spec BreakdownSpec
	if selector == "" {
		return spec, nil
	}

	seen := make(map[Dimension]bool)
	for _, token := range strings.Split(selector, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}

		dim := Dimension(token)
		switch dim {
		case DimCost:
			spec.ShowCost = true
			continue
		case DimPercent:
			spec.ShowPercent = true
			continue
		case DimSource, DimProvider, DimModel, DimCombo, DimProject, DimSession:
		default:
			return BreakdownSpec{}, fmt.Errorf("%w: %q", domain.ErrUnknownDimension, token)
		}

		if seen[dim] {
			continue
		}
		seen[dim] = true
		spec.Dimensions = append(spec.Dimensions, dim)
	}

	if seen[DimCombo] && (seen[DimSource] || seen[DimProvider] || seen[DimModel]) {
		return BreakdownSpec{}, fmt.Errorf("%w: combo already includes source, provider and model", domain.ErrConflictingDimensions)
	}

	return spec, nil
}

// AggregateOptions configures one report.
type AggregateOptions struct {
	Bucket    Bucket
	Breakdown BreakdownSpec
	Location  *time.Location // calendar for time buckets; nil means local
	SkipZero  bool           // suppress rows whose cost displays as $0.00
}

// Aggregator groups filtered records into ordered report rows.
type Aggregator struct {
	costs *CostService
}

// NewAggregator creates an Aggregator pricing entries through costs.
func NewAggregator(costs *CostService) *Aggregator {
	return &Aggregator{costs: costs}
}

// displayedZero reports whether a cost rounds to $0.00 at two decimals.
func displayedZero(cost float64) bool {
	return math.Abs(cost) < 0.005
}

// ISOWeekLabel formats a timestamp's ISO week as "2026-W01" (Monday
// start, week containing January 4th).
func ISOWeekLabel(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// group is the mutable accumulator for one label while partitioning.
type group struct {
	label        string
	tokens       domain.TokenUsage
	cost         float64
	models       map[string]bool
	lastActivity time.Time
	records      []domain.UsageRecord
}

// Aggregate builds the report: top-level buckets with the configured
// breakdown nested one level below, sorted by descending cost.
func (a *Aggregator) Aggregate(records []domain.UsageRecord, meta map[string]domain.SessionMeta, opts AggregateOptions) domain.Report {
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}

	buckets := a.partition(records, func(r domain.UsageRecord) string {
		return a.bucketLabel(r, meta, opts.Bucket, loc)
	})

	rows := make([]domain.AggregateRow, 0, len(buckets))
	for _, g := range buckets {
		row := a.finishGroup(g, opts.Breakdown.ShowCost)

		if len(opts.Breakdown.Dimensions) > 0 {
			row.Children = a.breakdownRows(g.records, meta, opts.Breakdown)
			if opts.SkipZero {
				row.Children = dropZeroRows(row.Children)
			}
		}
		rows = append(rows, row)
	}

	if opts.SkipZero {
		rows = dropZeroRows(rows)
	}

	a.sortRows(rows, opts.Bucket == BucketSession)

	return domain.Report{Rows: rows, Totals: Totals(rows)}
}

// breakdownRows groups a bucket's records by the selected dimensions.
func (a *Aggregator) breakdownRows(records []domain.UsageRecord, meta map[string]domain.SessionMeta, spec BreakdownSpec) []domain.AggregateRow {
	groups := a.partition(records, func(r domain.UsageRecord) string {
		parts := make([]string, 0, len(spec.Dimensions))
		for _, dim := range spec.Dimensions {
			parts = append(parts, dimensionValue(r, meta, dim))
		}
		return strings.Join(parts, "/")
	})

	rows := make([]domain.AggregateRow, 0, len(groups))
	for _, g := range groups {
		rows = append(rows, a.finishGroup(g, spec.ShowCost))
	}
	a.sortRows(rows, false)
	return rows
}

// partition runs the get-or-create-bucket accumulation over a dynamic
// key. Sorting is deferred until accumulation completes so results do
// not depend on input order.
func (a *Aggregator) partition(records []domain.UsageRecord, keyFn func(domain.UsageRecord) string) map[string]*group {
	groups := make(map[string]*group)
	for _, r := range records {
		key := keyFn(r)
		g, ok := groups[key]
		if !ok {
			g = &group{label: key, models: make(map[string]bool)}
			groups[key] = g
		}

		g.tokens.Add(r.Tokens)
		g.cost += a.costs.EntryCost(r)
		g.models[r.NormalizedModel()] = true
		if r.Timestamp.After(g.lastActivity) {
			g.lastActivity = r.Timestamp
		}
		g.records = append(g.records, r)
	}
	return groups
}

// finishGroup converts an accumulator into a report row. A single-model
// group with cost detail requested gets a per-component breakdown.
func (a *Aggregator) finishGroup(g *group, costDetail bool) domain.AggregateRow {
	row := domain.AggregateRow{
		Label:        g.label,
		Tokens:       g.tokens,
		Cost:         g.cost,
		LastActivity: g.lastActivity,
	}

	for model := range g.models {
		row.Models = append(row.Models, model)
	}
	sort.Strings(row.Models)

	if costDetail && len(row.Models) == 1 {
		row.Breakdowns = []domain.ModelBreakdown{
			a.costs.ModelCosts(row.Models[0], g.records),
		}
	}

	return row
}

// sortRows orders rows by descending cost. Session reports break ties by
// most recent activity; everything else breaks them by label.
func (a *Aggregator) sortRows(rows []domain.AggregateRow, byActivity bool) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Cost != rows[j].Cost {
			return rows[i].Cost > rows[j].Cost
		}
		if byActivity {
			return rows[i].LastActivity.After(rows[j].LastActivity)
		}
		return rows[i].Label < rows[j].Label
	})
}

// dropZeroRows removes rows whose cost displays as $0.00, recursing into
// children so suppression applies uniformly at every nesting level.
func dropZeroRows(rows []domain.AggregateRow) []domain.AggregateRow {
	kept := rows[:0]
	for _, row := range rows {
		if displayedZero(row.Cost) {
			continue
		}
		row.Children = dropZeroRows(row.Children)
		kept = append(kept, row)
	}
	return kept
}

// bucketLabel resolves a record's top-level bucket.
func (a *Aggregator) bucketLabel(r domain.UsageRecord, meta map[string]domain.SessionMeta, bucket Bucket, loc *time.Location) string {
	switch bucket {
	case BucketWeek:
		return ISOWeekLabel(r.Timestamp.In(loc))
	case BucketMonth:
		return r.Timestamp.In(loc).Format("2006-01")
	case BucketSession:
		return sessionLabel(r, meta)
	case BucketModel:
		return r.NormalizedModel()
	case BucketProject:
		return meta[r.SessionID].ProjectName()
	default:
		return r.Timestamp.In(loc).Format("2006-01-02")
	}
}

// sessionLabel prefers the session title over the raw id.
func sessionLabel(r domain.UsageRecord, meta map[string]domain.SessionMeta) string {
	if m, ok := meta[r.SessionID]; ok && m.Title != "" {
		return m.Title
	}
	if r.SessionID == "" {
		return domain.UnknownProject
	}
	return r.SessionID
}

// dimensionValue resolves a record's value on one breakdown dimension.
func dimensionValue(r domain.UsageRecord, meta map[string]domain.SessionMeta, dim Dimension) string {
	switch dim {
	case DimSource:
		return string(r.Source)
	case DimProvider:
		return r.Provider
	case DimModel:
		return r.NormalizedModel()
	case DimCombo:
		return r.ComboLabel()
	case DimProject:
		return meta[r.SessionID].ProjectName()
	case DimSession:
		return sessionLabel(r, meta)
	default:
		return ""
	}
}

// Totals sums visible rows into the report's grand-total row.
func Totals(rows []domain.AggregateRow) domain.AggregateRow {
	total := domain.AggregateRow{Label: "Total"}
	models := make(map[string]bool)

	for _, row := range rows {
		total.Tokens.Add(row.Tokens)
		total.Cost += row.Cost
		for _, m := range row.Models {
			models[m] = true
		}
		if row.LastActivity.After(total.LastActivity) {
			total.LastActivity = row.LastActivity
		}
	}

	for m := range models {
		total.Models = append(total.Models, m)
	}
	sort.Strings(total.Models)

	return total
}
