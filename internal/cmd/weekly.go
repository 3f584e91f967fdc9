package cmd

import "aispend/internal/services"

// WeeklyCmd shows usage and cost grouped by ISO week
type WeeklyCmd struct {
	reportFlags
}

// Run executes the weekly command
func (w *WeeklyCmd) Run(cli *CLI) error {
	return w.runReport(cli, services.BucketWeek, "Week")
}
