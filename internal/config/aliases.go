package config

import "sync"

var (
	aliasOnce  sync.Once
	aliasRules []AliasRule
)

// LoadAliasRules returns the user's model alias/color rules, loaded at
// most once per process from settings.json. An absent or unreadable file
// yields no rules, never an error. The returned slice is read-only.
func LoadAliasRules() []AliasRule {
	aliasOnce.Do(func() {
		settings, err := LoadSettings()
		if err != nil {
			return
		}
		aliasRules = settings.Aliases
	})
	return aliasRules
}
