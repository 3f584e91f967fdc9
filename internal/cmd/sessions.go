package cmd

import "aispend/internal/services"

// SessionsCmd shows usage and cost grouped by session
type SessionsCmd struct {
	reportFlags
}

// Run executes the sessions command
func (s *SessionsCmd) Run(cli *CLI) error {
	return s.runReport(cli, services.BucketSession, "Session")
}
