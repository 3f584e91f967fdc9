package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Settings represents the structure of ~/.aispend/settings.json.
// Pointer fields distinguish "not set" from an explicit false/zero so the
// CLI can apply flag > env > settings > default precedence.
type Settings struct {
	Aliases     []AliasRule `json:"aliases,omitempty"`
	Debug       *bool       `json:"debug,omitempty"`
	MaxLogFiles *int        `json:"max_log_files,omitempty"`
	Offline     *bool       `json:"offline,omitempty"`
	SkipZero    *bool       `json:"skip_zero,omitempty"`
	Timezone    string      `json:"timezone,omitempty"`
}

// AliasRule renames and optionally colors a model in rendered output.
// Match is compared as a substring against the displayed model label;
// Replace is also consulted as an exact-spelling pricing alias.
type AliasRule struct {
	Match   string `json:"match"`
	Replace string `json:"replace,omitempty"`
	Color   string `json:"color,omitempty"`
}

// Home returns the aispend home directory ($AISPEND_HOME or ~/.aispend).
func Home() string {
	if home := os.Getenv("AISPEND_HOME"); home != "" {
		return ExpandPath(home)
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".aispend"
	}
	return filepath.Join(homeDir, ".aispend")
}

// GetSettingsPath returns the path to the settings file
func GetSettingsPath() string {
	return filepath.Join(Home(), "settings.json")
}

// LoadSettings loads settings from $AISPEND_HOME/settings.json.
// Returns empty Settings if the file doesn't exist (not an error).
func LoadSettings() (*Settings, error) {
	path := GetSettingsPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Settings{}, nil // Not an error, use defaults
		}
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}

	var settings Settings
	if err := json.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("invalid settings.json: %w", err)
	}

	return &settings, nil
}

// ExpandPath expands a leading ~ to the user's home directory
func ExpandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		if path == "~" {
			return homeDir
		}
		return filepath.Join(homeDir, path[2:])
	}
	return path
}
