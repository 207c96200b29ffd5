package client

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/jira-client/internal/constants"
	"github.com/fivetwenty-io/jira-client/pkg/jira"
)

// GroupsClient implements jira.GroupsClient.
type GroupsClient struct {
	api    caller
	logger jira.Logger
}

// NewGroupsClient creates a new groups client.
func NewGroupsClient(api caller, logger jira.Logger) *GroupsClient {
	return &GroupsClient{api: api, logger: logger}
}

// Get implements jira.GroupsClient.Get.
func (c *GroupsClient) Get(ctx context.Context, name, expand string) (*jira.Group, error) {
	if name == "" {
		return nil, fmt.Errorf("getting group: %w", jira.ErrIdentifierRequired)
	}

	params := jira.Params{"groupname": name}
	if expand != "" {
		params["expand"] = expand
	}

	value, err := c.api.API(ctx, jira.MethodGet, "/rest/api/latest/group", params)
	if err != nil {
		return nil, fmt.Errorf("getting group %s: %w", name, err)
	}

	record, err := singleRecord(value)
	if err != nil || record == nil {
		return nil, err
	}

	return jira.NewGroup(record), nil
}

// Search implements jira.GroupsClient.Search through the group picker.
func (c *GroupsClient) Search(ctx context.Context, query string, startAt, maxResults int) (*jira.ResultSet[*jira.Group], error) {
	params := pageParams(startAt, maxResults)
	params["query"] = query

	value, err := c.api.API(ctx, jira.MethodGet, "/rest/api/latest/groups/picker", params)
	if err != nil {
		return nil, fmt.Errorf("searching groups: %w", err)
	}

	return jira.NewResultSet(value, jira.NewGroup, "groups"), nil
}

// Members implements jira.GroupsClient.Members.
func (c *GroupsClient) Members(ctx context.Context, groupName string, startAt, maxResults int) (*jira.ResultSet[*jira.User], error) {
	if groupName == "" {
		return nil, fmt.Errorf("listing group members: %w", jira.ErrIdentifierRequired)
	}

	params := pageParams(startAt, maxResults)
	params["groupname"] = groupName

	value, err := c.api.API(ctx, jira.MethodGet, "/rest/api/latest/group/member", params)
	if err != nil {
		return nil, fmt.Errorf("listing members of %s: %w", groupName, err)
	}

	return jira.NewResultSet(value, jira.NewUser, "values", "groups"), nil
}

// MembersWalker implements jira.GroupsClient.MembersWalker. The pushed query
// is the group name.
func (c *GroupsClient) MembersWalker(perPage int) *jira.Walker[*jira.User] {
	if perPage <= 0 {
		perPage = constants.GroupPageSize
	}

	return jira.NewWalker(func(ctx context.Context, group string, _ []string, startAt, maxResults int) (*jira.ResultSet[*jira.User], error) {
		return c.Members(ctx, group, startAt, maxResults)
	}, perPage, jira.WithWalkerLogger(c.logger))
}
