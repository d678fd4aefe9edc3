// Package cmd holds the dashctl subcommands.
package cmd

import (
	"github.com/grovetools/dashboard/cli"
	"github.com/grovetools/dashboard/config"
	"github.com/grovetools/dashboard/errors"
	"github.com/grovetools/dashboard/internal/app"
	"github.com/grovetools/dashboard/pkg/profiling"
	"github.com/grovetools/dashboard/state"
	"github.com/spf13/cobra"
)

// NewRootCmd assembles the dashctl command tree.
func NewRootCmd() *cobra.Command {
	rootCmd := cli.NewStandardCommand(
		"dashctl",
		"Inspect and drive the dashboard from the terminal",
	)
	rootCmd.SilenceUsage = true
	rootCmd.SilenceErrors = true

	profiler := profiling.NewCobraProfiler()
	profiler.AddFlags(rootCmd)
	rootCmd.PersistentPreRunE = profiler.PreRun
	rootCmd.PersistentPostRunE = profiler.PostRun

	rootCmd.AddCommand(cli.NewVersionCommand("dashctl"))
	rootCmd.AddCommand(NewConfigCmd())
	rootCmd.AddCommand(NewScopeCmd())
	rootCmd.AddCommand(NewProjectsCmd())
	rootCmd.AddCommand(NewVersionsCmd())
	rootCmd.AddCommand(NewWatchCmd())
	rootCmd.AddCommand(NewLogsCmd())

	cli.ApplyStyledHelpRecursive(rootCmd)
	return rootCmd
}

var errNotTerminal = errors.New(errors.ErrCodeInvalidInput, "the dashboard needs an interactive terminal; try 'dashctl projects list'")

// newApp builds the app from the command's configuration.
func newApp(cmd *cobra.Command) (*app.App, error) {
	defer profiling.Start("app.new").Stop()

	cfg, err := cli.LoadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return app.New(cfg, app.WithLogger(cli.GetLogger(cmd)))
}

// openState opens the durable scope store named by the configuration.
func openState(cfg *config.Config) (*state.FileStore, error) {
	return state.NewFileStore(cfg.Scope.StateFile)
}
