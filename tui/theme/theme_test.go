package theme

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/grovetools/dashboard/pkg/models"
)

func TestNewThemeWithNameResolvesAliases(t *testing.T) {
	assert.Equal(t, "terminal", NewThemeWithName("ansi").Name)
	assert.Equal(t, "kanagawa", NewThemeWithName("Kanagawa Dragon").Name)
	assert.Equal(t, "kanagawa", NewThemeWithName("kanagawa_wave").Name)
	assert.Equal(t, defaultThemeName, NewThemeWithName("no-such-theme").Name)
}

func TestDashboardThemeEnv(t *testing.T) {
	t.Setenv("DASHBOARD_THEME", "terminal")
	assert.Equal(t, "terminal", NewTheme().Name)
}

func TestToastIconAndStyle(t *testing.T) {
	th := NewThemeWithName("terminal")

	assert.Equal(t, IconError, ToastIcon(models.ToastError))
	assert.Equal(t, IconWarning, ToastIcon(models.ToastWarning))
	assert.Equal(t, IconSuccess, ToastIcon(models.ToastSuccess))
	assert.Equal(t, IconInfo, ToastIcon(models.ToastInfo))

	assert.Equal(t, th.Error.GetForeground(), th.ToastStyle(models.ToastError).GetForeground())
	assert.Equal(t, th.Info.GetForeground(), th.ToastStyle("").GetForeground())
}

func TestASCIIIcons(t *testing.T) {
	saved := []string{IconProject, IconSuccess, IconError, IconWarning, IconInfo, IconArrow, IconBullet}
	t.Cleanup(func() {
		IconProject, IconSuccess, IconError, IconWarning = saved[0], saved[1], saved[2], saved[3]
		IconInfo, IconArrow, IconBullet = saved[4], saved[5], saved[6]
	})

	useASCIIIcons()
	assert.Equal(t, "✓", IconSuccess)
	assert.Equal(t, "→", IconArrow)
}
