package dashboard

import (
	"context"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/grovetools/dashboard/internal/app"
	"github.com/grovetools/dashboard/logging"
)

// Run starts the app, blocks in the TUI until the user quits, then closes
// the app.
func Run(ctx context.Context, a *app.App) error {
	// Stderr log lines would tear the alternate screen.
	prev := logging.SetGlobalOutput(io.Discard)
	defer logging.SetGlobalOutput(prev)

	a.Start(ctx)
	defer a.Close()

	m := New(ctx, a)
	defer m.Close()

	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}
