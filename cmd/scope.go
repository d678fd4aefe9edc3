package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/grovetools/dashboard/cli"
	"github.com/grovetools/dashboard/errors"
	"github.com/grovetools/dashboard/logging"
	"github.com/grovetools/dashboard/pkg/models"
	"github.com/grovetools/dashboard/pkg/scope"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type scopeChange struct {
	Previous string    `json:"previous"`
	Current  string    `json:"current"`
	At       time.Time `json:"at"`
}

// NewScopeCmd creates the `scope` command.
func NewScopeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scope",
		Short: "Read, change or follow the shared project scope",
		Long: `The scope is the currently selected project, shared by every running
dashboard through the state file.

Examples:
  # Show the current project
  dashctl scope get

  # Switch every open dashboard to project p-42
  dashctl scope set p-42

  # Clear the selection
  dashctl scope set --clear

  # Print every change as it happens
  dashctl scope watch
`,
	}

	cmd.AddCommand(newScopeGetCmd())
	cmd.AddCommand(newScopeSetCmd())
	cmd.AddCommand(newScopeWatchCmd())
	return cmd
}

// newScopeMirror opens the configured state file and mirrors its scope key.
func newScopeMirror(cmd *cobra.Command) (*scope.Mirror, error) {
	cfg, err := cli.LoadConfig(cmd)
	if err != nil {
		return nil, err
	}
	fs, err := openState(cfg)
	if err != nil {
		return nil, err
	}
	logger := cli.GetLogger(cmd).WithField("state_file", fs.Path())
	interval := cfg.Scope.PollDuration()
	return scope.New(fs, cfg.Scope.Key,
		scope.WithInterval(interval),
		scope.WithLogger(logger),
		scope.WithWatcher(scope.Auto(fs, cfg.Scope.Key, interval, cfg.Scope.WatchEnabled(), logger))), nil
}

func newScopeGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get",
		Short: "Print the current project scope",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := newScopeMirror(cmd)
			if err != nil {
				return err
			}
			current := m.Current()
			out := cmd.OutOrStdout()

			if cli.GetOptions(cmd).JSONOutput {
				return json.NewEncoder(out).Encode(map[string]string{
					"key":   m.Key(),
					"scope": current.String(),
				})
			}
			if current.IsNull() {
				fmt.Fprintln(out, "(none)")
				return nil
			}
			fmt.Fprintln(out, current)
			return nil
		},
	}
}

func newScopeSetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set [project-id]",
		Short: "Select a project for every open dashboard",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			clearScope, _ := cmd.Flags().GetBool("clear")
			if clearScope == (len(args) == 1) {
				return errors.New(errors.ErrCodeInvalidInput, "provide a project id or --clear")
			}

			m, err := newScopeMirror(cmd)
			if err != nil {
				return err
			}
			var next models.Scope
			if len(args) == 1 {
				next = models.Scope(args[0])
			}
			prev := m.Current()
			if err := m.Set(next); err != nil {
				return err
			}
			cli.GetLogger(cmd).WithFields(logrus.Fields{
				"previous": prev.String(),
				"current":  next.String(),
			}).Debug("Scope updated")

			if cli.GetOptions(cmd).JSONOutput {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(scopeChange{
					Previous: prev.String(),
					Current:  next.String(),
					At:       time.Now(),
				})
			}
			pretty := logging.NewPrettyLogger().WithWriter(cmd.OutOrStdout())
			if next.IsNull() {
				pretty.Success("Scope cleared")
			} else {
				pretty.Success(fmt.Sprintf("Scope set to %s", next))
			}
			return nil
		},
	}
	cmd.Flags().Bool("clear", false, "Clear the current selection")
	return cmd
}

func newScopeWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Print scope changes until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := newScopeMirror(cmd)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return watchScope(ctx, m, cmd.OutOrStdout(), cli.GetOptions(cmd).JSONOutput)
		},
	}
}

// watchScope prints the current scope and then every transition until ctx
// is done.
func watchScope(ctx context.Context, m *scope.Mirror, out io.Writer, asJSON bool) error {
	changes := make(chan scopeChange, 16)
	cancel := m.OnChange(func(prev, next models.Scope) {
		select {
		case changes <- scopeChange{Previous: prev.String(), Current: next.String(), At: time.Now()}:
		default:
		}
	})
	defer cancel()

	m.Start(ctx)
	defer m.Stop()

	emit := func(c scopeChange) error {
		if asJSON {
			return json.NewEncoder(out).Encode(c)
		}
		label := c.Current
		if label == "" {
			label = "(none)"
		}
		_, err := fmt.Fprintf(out, "%s %s\n", c.At.Format(time.TimeOnly), label)
		return err
	}

	if err := emit(scopeChange{Current: m.Current().String(), At: time.Now()}); err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case c := <-changes:
			if err := emit(c); err != nil {
				return err
			}
		}
	}
}
