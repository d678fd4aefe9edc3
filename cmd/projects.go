package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/grovetools/dashboard/cli"
	"github.com/grovetools/dashboard/errors"
	"github.com/grovetools/dashboard/internal/app"
	"github.com/grovetools/dashboard/pkg/models"
	"github.com/grovetools/dashboard/pkg/profiling"
	"github.com/grovetools/dashboard/tui/components/table"
	"github.com/grovetools/dashboard/tui/theme"
	"github.com/moby/patternmatcher"
	"github.com/spf13/cobra"
)

// NewProjectsCmd creates the `projects` command.
func NewProjectsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "projects",
		Short: "List dashboard projects",
	}
	cmd.AddCommand(newProjectsListCmd())
	return cmd
}

func newProjectsListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List every project known to the API",
		Long: `Fetches the project collection and prints it. The selected project is
marked with an arrow.

Examples:
  # List all projects
  dashctl projects list

  # Only projects whose name matches a glob
  dashctl projects list --match 'web-*'
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reload, _ := cmd.Flags().GetBool("reload")
			pattern, _ := cmd.Flags().GetString("match")

			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			span := profiling.Start("projects.load")
			items, err := a.Projects().Load(cmd.Context(), models.NoScope, reload)
			span.Stop()
			if err != nil {
				return err
			}
			if pattern != "" {
				if items, err = matchProjects(items, pattern); err != nil {
					return err
				}
			}

			if cli.GetOptions(cmd).JSONOutput {
				return writeJSON(cmd.OutOrStdout(), items)
			}
			printProjects(cmd.OutOrStdout(), a, items)
			return nil
		},
	}
	cmd.Flags().Bool("reload", false, "Bypass any cached result")
	cmd.Flags().String("match", "", "Only show projects whose name or id matches this glob")
	return cmd
}

// matchProjects keeps projects whose name or id matches pattern.
func matchProjects(items []models.Project, pattern string) ([]models.Project, error) {
	pm, err := patternmatcher.New([]string{pattern})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInvalidInput, fmt.Sprintf("invalid pattern %q", pattern))
	}

	var out []models.Project
	for _, p := range items {
		for _, candidate := range []string{p.Name, p.ID} {
			ok, err := pm.MatchesOrParentMatches(candidate)
			if err != nil {
				return nil, errors.Wrap(err, errors.ErrCodeInvalidInput, fmt.Sprintf("invalid pattern %q", pattern))
			}
			if ok {
				out = append(out, p)
				break
			}
		}
	}
	return out, nil
}

func printProjects(out io.Writer, a *app.App, items []models.Project) {
	t := theme.DefaultTheme
	if len(items) == 0 {
		fmt.Fprintln(out, t.Muted.Render("No projects."))
		return
	}

	current := a.Mirror().Current()
	rows := make([][]string, 0, len(items))
	for _, p := range items {
		marker := ""
		if models.Scope(p.ID) == current {
			marker = theme.IconArrow
		}
		rows = append(rows, []string{marker, p.ID, p.Name, p.Description})
	}
	fmt.Fprintln(out, table.SimpleTable([]string{"", "ID", "NAME", "DESCRIPTION"}, rows))
}

func writeJSON(out io.Writer, v interface{}) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
