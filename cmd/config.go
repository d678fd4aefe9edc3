package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/grovetools/dashboard/cli"
	"github.com/grovetools/dashboard/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// NewConfigCmd creates the `config` command.
func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Display the effective configuration",
		Long: `Shows the configuration after merging the global file, the project
dashboard.yml and any dashboard.override.yml, with defaults applied.

Examples:
  # Show the merged configuration
  dashctl config

  # Print the JSON schema for dashboard.yml
  dashctl config --schema
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			if schema, _ := cmd.Flags().GetBool("schema"); schema {
				data, err := config.GenerateSchema()
				if err != nil {
					return err
				}
				fmt.Fprintln(out, string(data))
				return nil
			}

			cfg, err := cli.LoadConfig(cmd)
			if err != nil {
				return err
			}
			// The token never leaves the process.
			if cfg.API.Token != "" {
				cfg.API.Token = "********"
			}

			if cli.GetOptions(cmd).JSONOutput {
				data, err := json.MarshalIndent(cfg, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(out, string(data))
				return nil
			}
			data, err := yaml.Marshal(cfg)
			if err != nil {
				return err
			}
			fmt.Fprint(out, string(data))
			return nil
		},
	}
	cmd.Flags().Bool("schema", false, "Print the configuration JSON schema instead")
	return cmd
}
