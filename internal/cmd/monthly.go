package cmd

import "aispend/internal/services"

// MonthlyCmd shows usage and cost grouped by calendar month
type MonthlyCmd struct {
	reportFlags
}

// Run executes the monthly command
func (m *MonthlyCmd) Run(cli *CLI) error {
	return m.runReport(cli, services.BucketMonth, "Month")
}
