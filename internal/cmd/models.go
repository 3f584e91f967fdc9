package cmd

import "aispend/internal/services"

// ModelsCmd shows usage and cost grouped by model
type ModelsCmd struct {
	reportFlags
}

// Run executes the models command
func (m *ModelsCmd) Run(cli *CLI) error {
	return m.runReport(cli, services.BucketModel, "Model")
}
