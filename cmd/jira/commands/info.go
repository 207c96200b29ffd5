package commands

import (
	"fmt"
	"strings"

	"github.com/fivetwenty-io/jira-client/internal/constants"
	"github.com/fivetwenty-io/jira-client/pkg/jiraclient"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
)

// NewInfoCommand creates the info command.
func NewInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Display server information",
		Long:  "Display information about the configured Jira server and check the credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(cmd)
			if err != nil {
				return err
			}

			defer closeClient(cmd, client)

			info, err := jiraclient.GetServerInfo(commandContext(cmd), client)
			if err != nil {
				return fmt.Errorf("failed to get server info: %w", err)
			}

			output, err := outputFormat()
			if err != nil {
				return err
			}

			switch output {
			case constants.FormatJSON:
				return StandardJSONRenderer(cmd.OutOrStdout(), info)
			case constants.FormatYAML:
				return StandardYAMLRenderer(cmd.OutOrStdout(), info)
			default:
				table := tablewriter.NewWriter(cmd.OutOrStdout())
				table.Header("Property", "Value")

				_ = table.Append("Title", info.ServerTitle)
				_ = table.Append("Base URL", info.BaseURL)
				_ = table.Append("Version", info.Version)
				_ = table.Append("Build", cast.ToString(info.BuildNumber))
				_ = table.Append("Deployment", info.DeploymentType)
				_ = table.Append("Version Numbers", joinNumbers(info.VersionNumbers))

				err := table.Render()
				if err != nil {
					return fmt.Errorf("failed to render table: %w", err)
				}
			}

			return nil
		},
	}
}

func joinNumbers(numbers []int) string {
	parts := make([]string, len(numbers))
	for i, n := range numbers {
		parts[i] = cast.ToString(n)
	}

	return strings.Join(parts, ".")
}
