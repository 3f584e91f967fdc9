package litellm

import (
	"sync"

	"aispend/internal/config"
)

// vendorAliases maps model spellings seen in local logs to the catalog's
// canonical names. Lookups that miss this table fall through unchanged.
var vendorAliases = map[string]string{
	"claude-3.5-sonnet":   "claude-3-5-sonnet-20241022",
	"claude-3.5-haiku":    "claude-3-5-haiku-20241022",
	"claude-3.7-sonnet":   "claude-3-7-sonnet-20250219",
	"claude-sonnet-4-0":   "claude-sonnet-4-20250514",
	"claude-opus-4-0":     "claude-opus-4-20250514",
	"gpt-4-turbo-preview": "gpt-4-turbo",
	"gpt-4o-2024-11-20":   "gpt-4o",
	"gemini-2.5-pro-exp":  "gemini-2.5-pro",
	"deepseek-v3":         "deepseek-chat",
}

var (
	aliasOnce     sync.Once
	resolvedAlias map[string]string
)

// ResolveAlias maps a raw model name to the catalog's canonical spelling.
// The table is assembled once per process from the fixed vendor aliases
// plus any user rules and is read-only afterwards.
func ResolveAlias(model string) string {
	aliasOnce.Do(func() {
		resolvedAlias = make(map[string]string, len(vendorAliases))
		for from, to := range vendorAliases {
			resolvedAlias[from] = to
		}
		for _, rule := range config.LoadAliasRules() {
			if rule.Match != "" && rule.Replace != "" {
				resolvedAlias[rule.Match] = rule.Replace
			}
		}
	})

	if canonical, ok := resolvedAlias[model]; ok {
		return canonical
	}
	return model
}
