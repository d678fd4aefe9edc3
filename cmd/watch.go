package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/grovetools/dashboard/tui"
	"github.com/grovetools/dashboard/tui/dashboard"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

// NewWatchCmd creates the `watch` command, the interactive dashboard.
func NewWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Open the interactive dashboard",
		Long: `Opens the dashboard in the terminal. Selecting a project updates the
shared scope, so every other open dashboard follows.

Examples:
  dashctl watch
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
				return errNotTerminal
			}
			tui.InitializeTUI()

			a, err := newApp(cmd)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM)
			defer stop()
			return dashboard.Run(ctx, a)
		},
	}
}
