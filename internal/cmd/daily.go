package cmd

import "aispend/internal/services"

// DailyCmd shows usage and cost grouped by calendar day
type DailyCmd struct {
	reportFlags
}

// Run executes the daily command
func (d *DailyCmd) Run(cli *CLI) error {
	return d.runReport(cli, services.BucketDay, "Date")
}
