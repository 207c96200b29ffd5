package commands

import (
	"context"
	"fmt"
	"sort"

	"github.com/fivetwenty-io/jira-client/pkg/jira"
	"github.com/spf13/cobra"
)

var definitionColumns = []column[jira.Payload]{
	{"ID", func(p jira.Payload) string { return p.Get("id").Text() }},
	{"Name", func(p jira.Payload) string { return p.String("name") }},
	{"Description", func(p jira.Payload) string { return p.String("description") }},
}

var fieldColumns = []column[jira.Payload]{
	{"ID", func(p jira.Payload) string { return p.Get("id").Text() }},
	{"Name", func(p jira.Payload) string { return p.String("name") }},
	{"Custom", func(p jira.Payload) string { return cellText(p.Get("custom")) }},
	{"Type", func(p jira.Payload) string { return nestedText(p, "schema.type") }},
}

type definitionsFunc func(jira.MetadataClient, context.Context) (map[string]jira.Payload, error)

// NewFieldsCommand lists the field definitions used for automapping.
func NewFieldsCommand() *cobra.Command {
	return newDefinitionsCommand("fields", "field", "List issue fields",
		"List system and custom issue fields with their ids",
		jira.MetadataClient.Fields, fieldColumns)
}

// NewStatusesCommand lists the workflow statuses.
func NewStatusesCommand() *cobra.Command {
	return newDefinitionsCommand("statuses", "status", "List issue statuses",
		"List the workflow statuses defined on the server",
		jira.MetadataClient.Statuses, definitionColumns)
}

// NewPrioritiesCommand lists the issue priorities.
func NewPrioritiesCommand() *cobra.Command {
	return newDefinitionsCommand("priorities", "priority", "List issue priorities",
		"List the issue priorities defined on the server",
		jira.MetadataClient.Priorities, definitionColumns)
}

// NewResolutionsCommand lists the issue resolutions.
func NewResolutionsCommand() *cobra.Command {
	return newDefinitionsCommand("resolutions", "resolution", "List issue resolutions",
		"List the issue resolutions defined on the server",
		jira.MetadataClient.Resolutions, definitionColumns)
}

func newDefinitionsCommand(use, alias, short, long string, fetch definitionsFunc, columns []column[jira.Payload]) *cobra.Command {
	return &cobra.Command{
		Use:     use,
		Aliases: []string{alias},
		Short:   short,
		Long:    long,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(cmd)
			if err != nil {
				return err
			}

			defer closeClient(cmd, client)

			definitions, err := fetch(client.Metadata(), commandContext(cmd))
			if err != nil {
				return fmt.Errorf("failed to list %s: %w", use, err)
			}

			return renderRecords(cmd, sortedDefinitions(definitions), func(p jira.Payload) jira.Payload { return p },
				columns, "No "+use+" found")
		},
	}
}

func sortedDefinitions(definitions map[string]jira.Payload) []jira.Payload {
	ids := make([]string, 0, len(definitions))
	for id := range definitions {
		ids = append(ids, id)
	}

	sort.Strings(ids)

	out := make([]jira.Payload, 0, len(ids))
	for _, id := range ids {
		out = append(out, definitions[id])
	}

	return out
}
