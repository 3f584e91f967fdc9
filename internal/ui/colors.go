package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"aispend/internal/config"
)

// DisplayLabel applies the user's alias rules to a model or row label.
// Rules match as substrings; the first matching rule wins.
func DisplayLabel(label string) string {
	for _, rule := range config.LoadAliasRules() {
		if rule.Match == "" || rule.Replace == "" {
			continue
		}
		if strings.Contains(label, rule.Match) {
			return strings.ReplaceAll(label, rule.Match, rule.Replace)
		}
	}
	return label
}

// ModelStyle returns the style for a model label, using the color from
// the first matching alias rule when one is configured.
func ModelStyle(model string) lipgloss.Style {
	for _, rule := range config.LoadAliasRules() {
		if rule.Color == "" || rule.Match == "" {
			continue
		}
		if strings.Contains(model, rule.Match) {
			return lipgloss.NewStyle().Foreground(lipgloss.Color(rule.Color))
		}
	}
	return lipgloss.NewStyle()
}
