package cli

import (
	"encoding/json"
	"fmt"

	"github.com/grovetools/dashboard/version"
	"github.com/spf13/cobra"
)

// NewVersionCommand creates the standard version command. With --json it
// prints the build info as JSON.
func NewVersionCommand(componentName string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: fmt.Sprintf("Print the version number of %s", componentName),
		RunE: func(cmd *cobra.Command, args []string) error {
			info := version.GetInfo()
			if GetOptions(cmd).JSONOutput {
				data, err := json.MarshalIndent(info, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", componentName, info.Short())
			fmt.Fprintln(cmd.OutOrStdout(), info.String())
			return nil
		},
	}
}
