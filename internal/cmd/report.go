package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"aispend/internal/domain"
	"aispend/internal/services"
	"aispend/internal/ui"
)

// reportFlags are shared by every report command.
type reportFlags struct {
	Since     string   `help:"Start date (YYYY-MM-DD), inclusive" short:"s"`
	Until     string   `help:"End date (YYYY-MM-DD), inclusive" short:"u"`
	Days      int      `help:"Limit to the last N days (cannot be combined with --since/--until)"`
	Session   string   `help:"Filter by exact session id"`
	Project   []string `help:"Filter by project name/directory substring (repeatable)"`
	Model     []string `help:"Filter by model name substring (repeatable)"`
	Provider  []string `help:"Filter by provider substring (repeatable)"`
	Combo     []string `help:"Filter by source/provider/model label substring (repeatable)"`
	Source    string   `help:"Data source (opencode, claude, codex or all)" default:"all"`
	Breakdown string   `help:"Nested breakdown dimensions (source, provider, model, combo, project, session, cost, percent)" short:"b"`
	JSON      bool     `help:"Output as JSON"`
	SkipZero  bool     `help:"Hide rows whose cost displays as $0.00" default:"true" negatable:""`
	UTC       bool     `help:"Bucket dates in UTC instead of the local timezone"`
	Timezone  string   `help:"Timezone for date bucketing (e.g. Europe/Lisbon)"`
	Offline   bool     `help:"Use the embedded pricing snapshot (no network)"`
}

// runReport executes the shared read-filter-aggregate-render pipeline.
func (f *reportFlags) runReport(cli *CLI, bucket services.Bucket, title string) error {
	settings := cli.Settings()

	// Settings fill in flags left at their defaults
	if f.Timezone == "" && !f.UTC {
		f.Timezone = settings.Timezone
	}
	if f.SkipZero && settings.SkipZero != nil {
		f.SkipZero = *settings.SkipZero
	}
	if !f.Offline && settings.Offline != nil {
		f.Offline = *settings.Offline
	}

	loc, err := f.location()
	if err != nil {
		return err
	}

	filters, err := f.filters(loc)
	if err != nil {
		return err
	}

	spec, err := services.ParseBreakdown(f.Breakdown)
	if err != nil {
		return err
	}

	src, err := cli.Container.Source(f.Source)
	if err != nil {
		return err
	}

	records, meta, err := src.Load(context.Background())
	if err != nil {
		return fmt.Errorf("failed to read usage data: %w", err)
	}

	records = filters.Apply(records, meta)
	if len(records) == 0 {
		if f.JSON {
			return ui.WriteJSON(os.Stdout, domain.Report{})
		}
		fmt.Println("No usage data found for the given filters.")
		return nil
	}

	report := cli.Container.Aggregator(f.Offline).Aggregate(records, meta, services.AggregateOptions{
		Bucket:    bucket,
		Breakdown: spec,
		Location:  loc,
		SkipZero:  f.SkipZero,
	})

	if f.JSON {
		return ui.WriteJSON(os.Stdout, report)
	}

	fmt.Print(ui.RenderReport(report, ui.TableOptions{
		Title:       title,
		ShowPercent: spec.ShowPercent,
		ShowCost:    spec.ShowCost,
	}))
	return nil
}

func (f *reportFlags) location() (*time.Location, error) {
	if f.UTC {
		return time.UTC, nil
	}
	if f.Timezone != "" {
		loc, err := time.LoadLocation(f.Timezone)
		if err != nil {
			return nil, fmt.Errorf("invalid timezone %q: %w", f.Timezone, err)
		}
		return loc, nil
	}
	return time.Local, nil
}

// filters validates and resolves the date window and field predicates.
func (f *reportFlags) filters(loc *time.Location) (services.Filters, error) {
	filters := services.Filters{
		SessionID: f.Session,
		Projects:  f.Project,
		Models:    f.Model,
		Providers: f.Provider,
		Combos:    f.Combo,
	}

	if f.Days > 0 && (f.Since != "" || f.Until != "") {
		return services.Filters{}, fmt.Errorf("%w: --days cannot be combined with --since/--until", domain.ErrConflictingFilters)
	}

	if f.Days > 0 {
		now := time.Now().In(loc)
		start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
		filters.Since = start.AddDate(0, 0, -(f.Days - 1))
		return filters, nil
	}

	if f.Since != "" {
		t, err := time.ParseInLocation("2006-01-02", f.Since, loc)
		if err != nil {
			return services.Filters{}, fmt.Errorf("invalid --since date %q (expected YYYY-MM-DD)", f.Since)
		}
		filters.Since = t
	}

	if f.Until != "" {
		t, err := time.ParseInLocation("2006-01-02", f.Until, loc)
		if err != nil {
			return services.Filters{}, fmt.Errorf("invalid --until date %q (expected YYYY-MM-DD)", f.Until)
		}
		// Inclusive: cover the entire end day
		filters.Until = t.Add(24*time.Hour - time.Nanosecond)
	}

	if !filters.Since.IsZero() && !filters.Until.IsZero() && filters.Since.After(filters.Until) {
		return services.Filters{}, fmt.Errorf("%w: %s is after %s", domain.ErrInvalidRange, f.Since, f.Until)
	}

	return filters, nil
}
