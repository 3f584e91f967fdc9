package cmd

import "aispend/internal/services"

// ProjectsCmd shows usage and cost grouped by project
type ProjectsCmd struct {
	reportFlags
}

// Run executes the projects command
func (p *ProjectsCmd) Run(cli *CLI) error {
	return p.runReport(cli, services.BucketProject, "Project")
}
