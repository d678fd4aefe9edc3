// Package paths resolves the dashboard's per-user directories.
//
// Resolution order:
// 1. DASHBOARD_HOME (portable root) → $DASHBOARD_HOME/{config,state}
// 2. XDG env vars → $XDG_*_HOME/dashboard
// 3. Platform defaults → ~/.config/dashboard, ~/.local/state/dashboard
package paths

import (
	"os"
	"path/filepath"
)

const appDir = "dashboard"

func resolve(homeSub, xdgVar string, fallback ...string) string {
	if home := os.Getenv("DASHBOARD_HOME"); home != "" {
		return filepath.Join(home, homeSub)
	}
	if xdg := os.Getenv(xdgVar); xdg != "" {
		return filepath.Join(xdg, appDir)
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(append(append([]string{homeDir}, fallback...), appDir)...)
	}
	return ""
}

// ConfigDir returns the directory holding the global dashboard.yml.
func ConfigDir() string {
	return resolve("config", "XDG_CONFIG_HOME", ".config")
}

// StateDir returns the directory for per-user runtime state.
func StateDir() string {
	return resolve("state", "XDG_STATE_HOME", ".local", "state")
}

// GlobalConfigPath returns the global configuration file, or "" when no
// home directory can be determined.
func GlobalConfigPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "dashboard.yml")
}
