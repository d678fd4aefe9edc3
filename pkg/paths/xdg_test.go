package paths

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDashboardHomeWins(t *testing.T) {
	t.Setenv("DASHBOARD_HOME", "/opt/dash")
	t.Setenv("XDG_CONFIG_HOME", "/xdg/config")

	assert.Equal(t, filepath.Join("/opt/dash", "config"), ConfigDir())
	assert.Equal(t, filepath.Join("/opt/dash", "state"), StateDir())
	assert.Equal(t, filepath.Join("/opt/dash", "config", "dashboard.yml"), GlobalConfigPath())
}

func TestXDGVariables(t *testing.T) {
	t.Setenv("DASHBOARD_HOME", "")
	t.Setenv("XDG_CONFIG_HOME", "/xdg/config")
	t.Setenv("XDG_STATE_HOME", "/xdg/state")

	assert.Equal(t, filepath.Join("/xdg/config", "dashboard"), ConfigDir())
	assert.Equal(t, filepath.Join("/xdg/state", "dashboard"), StateDir())
}

func TestHomeDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("DASHBOARD_HOME", "")
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("XDG_STATE_HOME", "")
	t.Setenv("HOME", home)

	assert.Equal(t, filepath.Join(home, ".config", "dashboard"), ConfigDir())
	assert.Equal(t, filepath.Join(home, ".local", "state", "dashboard"), StateDir())
}
