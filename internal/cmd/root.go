package cmd

import (
	"os"

	"github.com/alecthomas/kong"

	"aispend/internal/config"
	"aispend/internal/logging"
)

// CLI represents the command-line interface structure
type CLI struct {
	Version     kong.VersionFlag `help:"Show version information"`
	Debug       bool             `help:"Enable debug logging to file" short:"d"`
	DebugFile   string           `help:"Custom path for debug log file (disables automatic cleanup)"`
	MaxLogFiles int              `help:"Maximum number of log files to keep (0 = unlimited)" default:"1000"`

	Daily    DailyCmd    `cmd:"" help:"Show daily usage report (default)" default:"1"`
	Weekly   WeeklyCmd   `cmd:"" help:"Show usage grouped by ISO week"`
	Monthly  MonthlyCmd  `cmd:"" help:"Show monthly usage report"`
	Sessions SessionsCmd `cmd:"" help:"Show usage grouped by session"`
	Models   ModelsCmd   `cmd:"" help:"Show usage grouped by model"`
	Projects ProjectsCmd `cmd:"" help:"Show usage grouped by project"`

	// Internal fields (not flags)
	Container *Container       `kong:"-"`
	settings  *config.Settings `kong:"-"`
}

// SetSettings sets the settings on the CLI struct
func (c *CLI) SetSettings(settings *config.Settings) {
	c.settings = settings
}

// Settings returns the loaded settings (never nil)
func (c *CLI) Settings() *config.Settings {
	if c.settings == nil {
		return &config.Settings{}
	}
	return c.settings
}

// AfterApply initializes logging after CLI parsing and applies settings
func (c *CLI) AfterApply() error {
	// Precedence: CLI flags > env vars > settings.json > defaults
	if c.settings != nil {
		if c.MaxLogFiles == 1000 && c.settings.MaxLogFiles != nil {
			c.MaxLogFiles = *c.settings.MaxLogFiles
		}
		if !c.Debug {
			if _, hasEnv := os.LookupEnv("AISPEND_DEBUG"); !hasEnv {
				if c.settings.Debug != nil && *c.settings.Debug {
					c.Debug = true
				}
			}
		}
	}

	if _, err := logging.Initialize(c.Debug, c.DebugFile, c.MaxLogFiles); err != nil {
		return err
	}

	c.Container = NewContainer(c.Settings())
	return nil
}
