package theme

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/grovetools/dashboard/pkg/models"
)

// Nerd Font Icons (Private Constants)
const (
	nerdIconProject = "" // cod-project (U+EB30)
	nerdIconSuccess = "󰄬" // md-check (U+F012C)
	nerdIconError   = "" // cod-error (U+EA87)
	nerdIconWarning = "" // fa-warning (U+F071)
	nerdIconInfo    = "󰋼" // md-information (U+F02FC)
	nerdIconArrow   = "󰁔" // md-arrow_right (U+F0054)
	nerdIconBullet  = "" // oct-dot_fill (U+F444)
)

// ASCII Fallback Icons (Private Constants)
const (
	asciiIconProject = "◆"
	asciiIconSuccess = "✓"
	asciiIconError   = "✗"
	asciiIconWarning = "⚠"
	asciiIconInfo    = "ℹ"
	asciiIconArrow   = "→"
	asciiIconBullet  = "•"
)

// Exported icons, resolved once at startup.
var (
	IconProject string
	IconSuccess string
	IconError   string
	IconWarning string
	IconInfo    string
	IconArrow   string
	IconBullet  string
)

func init() {
	if os.Getenv("DASHBOARD_ICONS") == "ascii" || loadTUIConfig().Icons == "ascii" {
		useASCIIIcons()
		return
	}
	IconProject = nerdIconProject
	IconSuccess = nerdIconSuccess
	IconError = nerdIconError
	IconWarning = nerdIconWarning
	IconInfo = nerdIconInfo
	IconArrow = nerdIconArrow
	IconBullet = nerdIconBullet
}

func useASCIIIcons() {
	IconProject = asciiIconProject
	IconSuccess = asciiIconSuccess
	IconError = asciiIconError
	IconWarning = asciiIconWarning
	IconInfo = asciiIconInfo
	IconArrow = asciiIconArrow
	IconBullet = asciiIconBullet
}

// ToastIcon returns the icon for a notification kind.
func ToastIcon(kind models.ToastKind) string {
	switch kind {
	case models.ToastSuccess:
		return IconSuccess
	case models.ToastWarning:
		return IconWarning
	case models.ToastError:
		return IconError
	default:
		return IconInfo
	}
}

// ToastStyle returns the text style for a notification kind.
func (t *Theme) ToastStyle(kind models.ToastKind) lipgloss.Style {
	switch kind {
	case models.ToastSuccess:
		return t.Success
	case models.ToastWarning:
		return t.Warning
	case models.ToastError:
		return t.Error
	default:
		return t.Info
	}
}
