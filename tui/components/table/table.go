// Package table renders themed tables for command output.
package table

import (
	"github.com/charmbracelet/lipgloss"
	ltable "github.com/charmbracelet/lipgloss/table"
	"github.com/grovetools/dashboard/tui/theme"
)

// Options configures a styled table.
type Options struct {
	Bordered      bool
	AlternateRows bool
	Theme         *theme.Theme
}

// DefaultOptions returns a bordered table without row striping.
func DefaultOptions() Options {
	return Options{
		Bordered: true,
		Theme:    theme.DefaultTheme,
	}
}

// New creates a lipgloss table with the dashboard styling.
func New(opts Options) *ltable.Table {
	t := opts.Theme
	if t == nil {
		t = theme.DefaultTheme
	}

	tbl := ltable.New()
	if opts.Bordered {
		tbl = tbl.
			Border(lipgloss.RoundedBorder()).
			BorderStyle(lipgloss.NewStyle().Foreground(t.Colors.Border))
	}

	// Headers are styled separately; data rows are numbered from 0.
	return tbl.StyleFunc(func(row, col int) lipgloss.Style {
		if row == ltable.HeaderRow {
			return t.TableHeader.Padding(0, 1)
		}
		style := lipgloss.NewStyle().Padding(0, 1)
		if opts.AlternateRows && row%2 == 1 {
			style = style.Background(t.Colors.SelectedBackground)
		}
		return style
	})
}

// SimpleTable renders headers and rows with the default options.
func SimpleTable(headers []string, rows [][]string) string {
	return New(DefaultOptions()).
		Headers(headers...).
		Rows(rows...).
		String()
}

// StatusTable renders label/value pairs without a border.
func StatusTable(items [][2]string) string {
	t := theme.DefaultTheme
	tbl := New(Options{Theme: t})
	for _, item := range items {
		tbl = tbl.Row(t.Muted.Render(item[0]+":"), item[1])
	}
	return tbl.String()
}
