package commands

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/jira-client/internal/constants"
	"github.com/fivetwenty-io/jira-client/pkg/jira"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
)

var userColumns = []column[*jira.User]{
	{"Display Name", func(u *jira.User) string { return u.DisplayName }},
	{"Email", func(u *jira.User) string { return u.Email }},
	{"Account ID", func(u *jira.User) string { return u.ID() }},
	{"Active", func(u *jira.User) string { return cast.ToString(u.Active()) }},
}

func userRecord(user *jira.User) jira.Payload { return user.Attributes }

// NewUsersCommand creates the users command group.
func NewUsersCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "users",
		Aliases: []string{"user"},
		Short:   "Search and inspect users",
		Long:    "Search Jira users and display user details",
	}

	cmd.AddCommand(newUsersSearchCommand())
	cmd.AddCommand(newUsersGetCommand())

	return cmd
}

func newUsersSearchCommand() *cobra.Command {
	var paging pagingFlags

	cmd := &cobra.Command{
		Use:   "search QUERY",
		Short: "Search users",
		Long:  "Search users whose name, username or email matches QUERY",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(cmd)
			if err != nil {
				return err
			}

			defer closeClient(cmd, client)

			users, err := collect(commandContext(cmd), &paging, args[0], nil,
				func(ctx context.Context, query string, fields []string, startAt, maxResults int) (*jira.ResultSet[*jira.User], error) {
					return client.Users().Search(ctx, query, startAt, maxResults, fields...)
				},
				client.Users().Walker)
			if err != nil {
				return fmt.Errorf("failed to search users: %w", err)
			}

			err = renderRecords(cmd, users.items, userRecord, userColumns, "No users found")
			if err != nil {
				return err
			}

			printFooter(cmd, len(users.items), users.declared, users.hasDeclared)

			return nil
		},
	}

	paging.register(cmd, constants.UserPageSize)

	return cmd
}

func newUsersGetCommand() *cobra.Command {
	var expand string

	cmd := &cobra.Command{
		Use:   "get ACCOUNT_ID",
		Short: "Get user details",
		Long:  "Display detailed information about a specific user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(cmd)
			if err != nil {
				return err
			}

			defer closeClient(cmd, client)

			user, err := client.Users().Get(commandContext(cmd), args[0], expand)
			if err != nil {
				return fmt.Errorf("failed to get user: %w", err)
			}

			if user == nil {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "User not found")

				return nil
			}

			return renderValue(cmd, jira.ObjectValue(user.Attributes))
		},
	}

	cmd.Flags().StringVar(&expand, "expand", "", "comma separated expansions, e.g. groups,applicationRoles")

	return cmd
}
