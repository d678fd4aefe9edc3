package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/grovetools/dashboard/cli"
	"github.com/grovetools/dashboard/errors"
	"github.com/grovetools/dashboard/pkg/models"
	"github.com/grovetools/dashboard/pkg/profiling"
	"github.com/grovetools/dashboard/tui/components/table"
	"github.com/grovetools/dashboard/tui/theme"
	"github.com/spf13/cobra"
)

// NewVersionsCmd creates the `versions` command.
func NewVersionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "versions",
		Short: "List product versions of a project",
	}
	cmd.AddCommand(newVersionsListCmd())
	return cmd
}

func newVersionsListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List product versions of the selected project",
		Long: `Fetches the product versions of a project. Without --project the shared
scope is used, so this lists whatever the open dashboards show.

Examples:
  # Versions of the selected project
  dashctl versions list

  # Versions of another project
  dashctl versions list --project p-42
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			project, _ := cmd.Flags().GetString("project")
			reload, _ := cmd.Flags().GetBool("reload")

			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			s := models.Scope(project)
			if s.IsNull() {
				s = a.Mirror().Current()
			}
			if s.IsNull() {
				return errors.New(errors.ErrCodeInvalidInput, "no project selected; pass --project or run 'dashctl scope set'")
			}

			span := profiling.Start("versions.load")
			items, err := a.Versions().Load(cmd.Context(), s, reload)
			span.Stop()
			if err != nil {
				return err
			}

			if cli.GetOptions(cmd).JSONOutput {
				return writeJSON(cmd.OutOrStdout(), items)
			}
			printVersions(cmd.OutOrStdout(), s, items)
			return nil
		},
	}
	cmd.Flags().StringP("project", "p", "", "Project id (defaults to the shared scope)")
	cmd.Flags().Bool("reload", false, "Bypass any cached result")
	return cmd
}

func printVersions(out io.Writer, s models.Scope, items []models.ProductVersion) {
	t := theme.DefaultTheme
	fmt.Fprintln(out, theme.RenderHeader(fmt.Sprintf("%s %s", theme.IconProject, s)))
	if len(items) == 0 {
		fmt.Fprintln(out, t.Muted.Render("No product versions."))
		return
	}

	rows := make([][]string, 0, len(items))
	for _, v := range items {
		released := "-"
		if v.ReleasedAt != nil {
			released = v.ReleasedAt.Format(time.DateOnly)
		}
		rows = append(rows, []string{v.ID, v.Name, v.Version, released})
	}
	fmt.Fprintln(out, table.SimpleTable([]string{"ID", "NAME", "VERSION", "RELEASED"}, rows))
}
