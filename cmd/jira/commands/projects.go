package commands

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/jira-client/internal/constants"
	"github.com/fivetwenty-io/jira-client/pkg/jira"
	"github.com/spf13/cobra"
)

var projectColumns = []column[*jira.Project]{
	{"Key", func(p *jira.Project) string { return p.Key() }},
	{"Name", func(p *jira.Project) string { return p.Name() }},
	{"ID", func(p *jira.Project) string { return p.ID() }},
	{"Type", func(p *jira.Project) string { return p.Attributes.String("projectTypeKey") }},
	{"Lead", func(p *jira.Project) string {
		if lead := p.Lead(); lead != nil {
			return lead.DisplayName
		}

		return ""
	}},
}

func projectRecord(project *jira.Project) jira.Payload { return project.Attributes }

// NewProjectsCommand creates the projects command group.
func NewProjectsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "projects",
		Aliases: []string{"project"},
		Short:   "Manage projects",
		Long:    "List, search and inspect Jira projects",
	}

	cmd.AddCommand(newProjectsListCommand())
	cmd.AddCommand(newProjectsSearchCommand())
	cmd.AddCommand(newProjectsGetCommand())
	cmd.AddCommand(newProjectsMembersCommand())

	return cmd
}

func newProjectsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List projects",
		Long:  "List all projects visible to the current user",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(cmd)
			if err != nil {
				return err
			}

			defer closeClient(cmd, client)

			projects, err := client.Projects().All(commandContext(cmd), 0, constants.ProjectPageSize)
			if err != nil {
				return fmt.Errorf("failed to list projects: %w", err)
			}

			return renderRecords(cmd, projects.Entities(), projectRecord, projectColumns, "No projects found")
		},
	}
}

func newProjectsSearchCommand() *cobra.Command {
	var paging pagingFlags

	cmd := &cobra.Command{
		Use:   "search [QUERY]",
		Short: "Search projects",
		Long:  "Search projects whose key or name matches QUERY",
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

			projects, err := collect(commandContext(cmd), &paging, query, nil,
				func(ctx context.Context, query string, _ []string, startAt, maxResults int) (*jira.ResultSet[*jira.Project], error) {
					return client.Projects().Search(ctx, query, startAt, maxResults)
				},
				client.Projects().Walker)
			if err != nil {
				return fmt.Errorf("failed to search projects: %w", err)
			}

			err = renderRecords(cmd, projects.items, projectRecord, projectColumns, "No projects found")
			if err != nil {
				return err
			}

			printFooter(cmd, len(projects.items), projects.declared, projects.hasDeclared)

			return nil
		},
	}

	paging.register(cmd, constants.DefaultPageSize)

	return cmd
}

func newProjectsGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get PROJECT_KEY",
		Short: "Get project details",
		Long:  "Display detailed information about a specific project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(cmd)
			if err != nil {
				return err
			}

			defer closeClient(cmd, client)

			project, err := client.Projects().Get(commandContext(cmd), args[0])
			if err != nil {
				return fmt.Errorf("failed to get project: %w", err)
			}

			if !project.Exists() {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Project not found")

				return nil
			}

			return renderValue(cmd, project)
		},
	}
}

func newProjectsMembersCommand() *cobra.Command {
	var paging pagingFlags

	cmd := &cobra.Command{
		Use:   "members PROJECT_KEY",
		Short: "List project members",
		Long:  "List the users assignable to issues of a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(cmd)
			if err != nil {
				return err
			}

			defer closeClient(cmd, client)

			members, err := collect(commandContext(cmd), &paging, args[0], nil,
				func(ctx context.Context, projectKey string, _ []string, startAt, maxResults int) (*jira.ResultSet[*jira.User], error) {
					return client.Projects().Members(ctx, projectKey, startAt, maxResults)
				}, nil)
			if err != nil {
				return fmt.Errorf("failed to list project members: %w", err)
			}

			return renderRecords(cmd, members.items, userRecord, userColumns, "No members found")
		},
	}

	paging.register(cmd, constants.UserPageSize)

	return cmd
}
