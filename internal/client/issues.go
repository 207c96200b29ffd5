package client

import (
	"context"
	"fmt"
	"net/url"

	"github.com/fivetwenty-io/jira-client/internal/constants"
	"github.com/fivetwenty-io/jira-client/pkg/jira"
)

// IssuesClient implements jira.IssuesClient.
type IssuesClient struct {
	api    caller
	logger jira.Logger
}

// NewIssuesClient creates a new issues client.
func NewIssuesClient(api caller, logger jira.Logger) *IssuesClient {
	return &IssuesClient{api: api, logger: logger}
}

// Get implements jira.IssuesClient.Get.
func (c *IssuesClient) Get(ctx context.Context, key string, fields ...string) (*jira.Issue, error) {
	if key == "" {
		return nil, fmt.Errorf("getting issue: %w", jira.ErrIdentifierRequired)
	}

	var params jira.Params
	if len(fields) > 0 {
		params = jira.Params{"fields": fields}
	}

	value, err := c.api.API(ctx, jira.MethodGet, "/rest/api/2/issue/"+url.PathEscape(key), params)
	if err != nil {
		return nil, fmt.Errorf("getting issue %s: %w", key, err)
	}

	record, err := singleRecord(value)
	if err != nil || record == nil {
		return nil, err
	}

	return jira.NewIssue(record), nil
}

// Search implements jira.IssuesClient.Search.
func (c *IssuesClient) Search(ctx context.Context, jql string, startAt, maxResults int, fields ...string) (*jira.ResultSet[*jira.Issue], error) {
	params := pageParams(startAt, maxResults)
	params["jql"] = jql

	if len(fields) > 0 {
		params["fields"] = fields
	}

	value, err := c.api.API(ctx, jira.MethodGet, "/rest/api/2/search", params)
	if err != nil {
		return nil, fmt.Errorf("searching issues: %w", err)
	}

	return jira.NewResultSet(value, jira.NewIssue, "issues"), nil
}

// Walker implements jira.IssuesClient.Walker. The pushed query is JQL.
func (c *IssuesClient) Walker(perPage int) *jira.Walker[*jira.Issue] {
	if perPage <= 0 {
		perPage = constants.IssuePageSize
	}

	return jira.NewWalker(func(ctx context.Context, jql string, fields []string, startAt, maxResults int) (*jira.ResultSet[*jira.Issue], error) {
		return c.Search(ctx, jql, startAt, maxResults, fields...)
	}, perPage, jira.WithWalkerLogger(c.logger))
}
