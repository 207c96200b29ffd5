package client

import (
	"context"
	"fmt"
	"net/url"

	"github.com/fivetwenty-io/jira-client/internal/constants"
	"github.com/fivetwenty-io/jira-client/pkg/jira"
)

const projectExpand = "description,lead,url,projectKeys"

// ProjectsClient implements jira.ProjectsClient.
type ProjectsClient struct {
	api    caller
	logger jira.Logger
}

// NewProjectsClient creates a new projects client.
func NewProjectsClient(api caller, logger jira.Logger) *ProjectsClient {
	return &ProjectsClient{api: api, logger: logger}
}

// All implements jira.ProjectsClient.All.
func (c *ProjectsClient) All(ctx context.Context, startAt, maxResults int) (*jira.ResultSet[*jira.Project], error) {
	value, err := c.api.API(ctx, jira.MethodGet, "/rest/api/latest/project", pageParams(startAt, maxResults))
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}

	return jira.NewResultSet(value, jira.NewProject, "projects", "values"), nil
}

// Search implements jira.ProjectsClient.Search.
func (c *ProjectsClient) Search(ctx context.Context, query string, startAt, maxResults int) (*jira.ResultSet[*jira.Project], error) {
	params := pageParams(startAt, maxResults)
	if query != "" {
		params["query"] = query
	}

	value, err := c.api.API(ctx, jira.MethodGet, "/rest/api/latest/project/search", params)
	if err != nil {
		return nil, fmt.Errorf("searching projects: %w", err)
	}

	return jira.NewResultSet(value, jira.NewProject, "projects", "values"), nil
}

// Get implements jira.ProjectsClient.Get. The project is returned undecoded
// because the expanded record varies between Jira versions.
func (c *ProjectsClient) Get(ctx context.Context, key string) (jira.Value, error) {
	if key == "" {
		return jira.Value{}, fmt.Errorf("getting project: %w", jira.ErrIdentifierRequired)
	}

	value, err := c.api.API(ctx, jira.MethodGet, "/rest/api/2/project/"+url.PathEscape(key), jira.Params{
		"expand": projectExpand,
	})
	if err != nil {
		return jira.Value{}, fmt.Errorf("getting project %s: %w", key, err)
	}

	return value, nil
}

// Members implements jira.ProjectsClient.Members: the users assignable to
// issues of the project with key projectKey.
func (c *ProjectsClient) Members(ctx context.Context, projectKey string, startAt, maxResults int) (*jira.ResultSet[*jira.User], error) {
	params := pageParams(startAt, maxResults)
	params["project"] = projectKey

	value, err := c.api.API(ctx, jira.MethodGet, "/rest/api/latest/user/assignable/search", params)
	if err != nil {
		return nil, fmt.Errorf("listing project members: %w", err)
	}

	return jira.NewResultSet(value, jira.NewUser, "values", "users"), nil
}

// Walker implements jira.ProjectsClient.Walker over the project search.
func (c *ProjectsClient) Walker(perPage int) *jira.Walker[*jira.Project] {
	if perPage <= 0 {
		perPage = constants.ProjectPageSize
	}

	return jira.NewWalker(func(ctx context.Context, query string, _ []string, startAt, maxResults int) (*jira.ResultSet[*jira.Project], error) {
		return c.Search(ctx, query, startAt, maxResults)
	}, perPage, jira.WithWalkerLogger(c.logger))
}
