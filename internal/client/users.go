package client

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/jira-client/internal/constants"
	"github.com/fivetwenty-io/jira-client/pkg/jira"
)

const userExpand = "groups,applicationRoles"

// UsersClient implements jira.UsersClient.
type UsersClient struct {
	api    caller
	logger jira.Logger
}

// NewUsersClient creates a new users client.
func NewUsersClient(api caller, logger jira.Logger) *UsersClient {
	return &UsersClient{api: api, logger: logger}
}

// Get implements jira.UsersClient.Get.
func (c *UsersClient) Get(ctx context.Context, accountID, expand string) (*jira.User, error) {
	if accountID == "" {
		return nil, fmt.Errorf("getting user: %w", jira.ErrIdentifierRequired)
	}

	params := jira.Params{"accountId": accountID}
	if expand != "" {
		params["expand"] = expand
	}

	value, err := c.api.API(ctx, jira.MethodGet, "/rest/api/latest/user", params)
	if err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}

	record, err := singleRecord(value)
	if err != nil || record == nil {
		return nil, err
	}

	return jira.NewUser(record), nil
}

// Search implements jira.UsersClient.Search. Jira answers with a bare array
// and no total.
func (c *UsersClient) Search(ctx context.Context, username string, startAt, maxResults int, fields ...string) (*jira.ResultSet[*jira.User], error) {
	params := pageParams(startAt, maxResults)
	params["username"] = username
	params["expand"] = userExpand

	if len(fields) > 0 {
		params["fields"] = fields
	}

	value, err := c.api.API(ctx, jira.MethodGet, "/rest/api/latest/user/search", params)
	if err != nil {
		return nil, fmt.Errorf("searching users: %w", err)
	}

	return jira.NewResultSet(value, jira.NewUser, "values", "users"), nil
}

// Walker implements jira.UsersClient.Walker. The pushed query is the
// username search string.
func (c *UsersClient) Walker(perPage int) *jira.Walker[*jira.User] {
	if perPage <= 0 {
		perPage = constants.UserPageSize
	}

	return jira.NewWalker(func(ctx context.Context, query string, fields []string, startAt, maxResults int) (*jira.ResultSet[*jira.User], error) {
		return c.Search(ctx, query, startAt, maxResults, fields...)
	}, perPage, jira.WithWalkerLogger(c.logger))
}
