package commands

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/jira-client/internal/constants"
	"github.com/fivetwenty-io/jira-client/pkg/jira"
	"github.com/spf13/cobra"
)

var defaultIssueFields = []string{"summary", "status", "assignee", "updated"}

var issueColumns = []column[*jira.Issue]{
	{"Key", func(i *jira.Issue) string { return i.Key() }},
	{"Summary", func(i *jira.Issue) string { return i.Summary() }},
	{"Status", func(i *jira.Issue) string { return i.Status().String("name") }},
	{"Assignee", func(i *jira.Issue) string {
		if assignee := i.Assignee(); assignee != nil {
			return assignee.DisplayName
		}

		return ""
	}},
	{"Updated", func(i *jira.Issue) string { return i.Updated() }},
}

func issueRecord(issue *jira.Issue) jira.Payload { return issue.Attributes }

// NewIssuesCommand creates the issues command group.
func NewIssuesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "issues",
		Aliases: []string{"issue"},
		Short:   "Search and inspect issues",
		Long:    "Search issues with JQL and display issue details",
	}

	cmd.AddCommand(newIssuesSearchCommand())
	cmd.AddCommand(newIssuesGetCommand())

	return cmd
}

func newIssuesSearchCommand() *cobra.Command {
	var (
		paging  pagingFlags
		fields  []string
		automap bool
	)

	cmd := &cobra.Command{
		Use:   "search JQL",
		Short: "Search issues",
		Long:  "Search issues matching a JQL query, e.g. 'project = ABC AND status = Open'",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(cmd)
			if err != nil {
				return err
			}

			defer closeClient(cmd, client)

			if automap {
				client.SetOptions(jira.AutomapFields)
			}

			issues, err := collect(commandContext(cmd), &paging, args[0], fields,
				func(ctx context.Context, jql string, fields []string, startAt, maxResults int) (*jira.ResultSet[*jira.Issue], error) {
					return client.Issues().Search(ctx, jql, startAt, maxResults, fields...)
				},
				client.Issues().Walker)
			if err != nil {
				return fmt.Errorf("failed to search issues: %w", err)
			}

			err = renderRecords(cmd, issues.items, issueRecord, issueColumns, "No issues found")
			if err != nil {
				return err
			}

			printFooter(cmd, len(issues.items), issues.declared, issues.hasDeclared)

			return nil
		},
	}

	paging.register(cmd, constants.IssuePageSize)
	cmd.Flags().StringSliceVar(&fields, "fields", defaultIssueFields, "issue fields to fetch")
	cmd.Flags().BoolVar(&automap, "automap", false, "replace custom field ids with field names")

	return cmd
}

func newIssuesGetCommand() *cobra.Command {
	var (
		fields  []string
		automap bool
	)

	cmd := &cobra.Command{
		Use:   "get ISSUE_KEY",
		Short: "Get issue details",
		Long:  "Display the fields of a specific issue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(cmd)
			if err != nil {
				return err
			}

			defer closeClient(cmd, client)

			if automap {
				client.SetOptions(jira.AutomapFields)
			}

			issue, err := client.Issues().Get(commandContext(cmd), args[0], fields...)
			if err != nil {
				return fmt.Errorf("failed to get issue: %w", err)
			}

			if issue == nil {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Issue not found")

				return nil
			}

			output, err := outputFormat()
			if err != nil {
				return err
			}

			if output != constants.FormatTable {
				return renderValue(cmd, jira.ObjectValue(issue.Attributes))
			}

			return renderValue(cmd, jira.ObjectValue(issue.Fields()))
		},
	}

	cmd.Flags().StringSliceVar(&fields, "fields", nil, "issue fields to fetch (default all)")
	cmd.Flags().BoolVar(&automap, "automap", false, "replace custom field ids with field names")

	return cmd
}
