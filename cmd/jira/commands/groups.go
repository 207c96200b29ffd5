package commands

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/jira-client/internal/constants"
	"github.com/fivetwenty-io/jira-client/pkg/jira"
	"github.com/spf13/cobra"
)

var groupColumns = []column[*jira.Group]{
	{"Name", func(g *jira.Group) string { return g.Name() }},
	{"Group ID", func(g *jira.Group) string { return g.ID() }},
}

func groupRecord(group *jira.Group) jira.Payload { return group.Attributes }

// NewGroupsCommand creates the groups command group.
func NewGroupsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "groups",
		Aliases: []string{"group"},
		Short:   "Manage groups",
		Long:    "Search Jira groups and list their members",
	}

	cmd.AddCommand(newGroupsSearchCommand())
	cmd.AddCommand(newGroupsGetCommand())
	cmd.AddCommand(newGroupsMembersCommand())

	return cmd
}

func newGroupsSearchCommand() *cobra.Command {
	var paging pagingFlags

	cmd := &cobra.Command{
		Use:   "search [QUERY]",
		Short: "Search groups",
		Long:  "Search groups whose name matches QUERY",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(cmd)
			if err != nil {
				return err
			}

			defer closeClient(cmd, client)

			query := ""
			if len(args) > 0 {
				query = args[0]
			}

			groups, err := collect(commandContext(cmd), &paging, query, nil,
				func(ctx context.Context, query string, _ []string, startAt, maxResults int) (*jira.ResultSet[*jira.Group], error) {
					return client.Groups().Search(ctx, query, startAt, maxResults)
				}, nil)
			if err != nil {
				return fmt.Errorf("failed to search groups: %w", err)
			}

			return renderRecords(cmd, groups.items, groupRecord, groupColumns, "No groups found")
		},
	}

	paging.register(cmd, constants.GroupPageSize)

	return cmd
}

func newGroupsGetCommand() *cobra.Command {
	var expand string

	cmd := &cobra.Command{
		Use:   "get GROUP_NAME",
		Short: "Get group details",
		Long:  "Display detailed information about a specific group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(cmd)
			if err != nil {
				return err
			}

			defer closeClient(cmd, client)

			group, err := client.Groups().Get(commandContext(cmd), args[0], expand)
			if err != nil {
				return fmt.Errorf("failed to get group: %w", err)
			}

			if group == nil {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Group not found")

				return nil
			}

			return renderValue(cmd, jira.ObjectValue(group.Attributes))
		},
	}

	cmd.Flags().StringVar(&expand, "expand", "", "comma separated expansions, e.g. users")

	return cmd
}

func newGroupsMembersCommand() *cobra.Command {
	var paging pagingFlags

	cmd := &cobra.Command{
		Use:   "members GROUP_NAME",
		Short: "List group members",
		Long:  "List the users belonging to a group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(cmd)
			if err != nil {
				return err
			}

			defer closeClient(cmd, client)

			members, err := collect(commandContext(cmd), &paging, args[0], nil,
				func(ctx context.Context, group string, _ []string, startAt, maxResults int) (*jira.ResultSet[*jira.User], error) {
					return client.Groups().Members(ctx, group, startAt, maxResults)
				},
				client.Groups().MembersWalker)
			if err != nil {
				return fmt.Errorf("failed to list group members: %w", err)
			}

			err = renderRecords(cmd, members.items, userRecord, userColumns, "No members found")
			if err != nil {
				return err
			}

			printFooter(cmd, len(members.items), members.declared, members.hasDeclared)

			return nil
		},
	}

	paging.register(cmd, constants.GroupPageSize)

	return cmd
}
