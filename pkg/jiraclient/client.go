// Package jiraclient provides the main entry point for creating Jira API clients
package jiraclient

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/jira-client/internal/auth"
	"github.com/fivetwenty-io/jira-client/internal/client"
	"github.com/fivetwenty-io/jira-client/pkg/jira"
	"golang.org/x/oauth2"
)

const serverInfoPath = "/rest/api/2/serverInfo"

// New creates a new Jira API client.
func New(ctx context.Context, config *jira.Config) (jira.Client, error) {
	if config == nil {
		return nil, jira.ErrConfigRequired
	}

	client, err := client.New(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create new client: %w", err)
	}

	return client, nil
}

// NewWithEndpoint creates a new client with just an endpoint (anonymous access).
func NewWithEndpoint(ctx context.Context, endpoint string) (jira.Client, error) {
	return New(ctx, &jira.Config{
		Endpoint: endpoint,
	})
}

// NewWithToken creates a new client sending a personal access token.
func NewWithToken(ctx context.Context, endpoint, token string) (jira.Client, error) {
	return New(ctx, &jira.Config{
		Endpoint: endpoint,
		Token:    token,
	})
}

// NewWithPassword creates a new client using HTTP basic authentication. On
// Jira Cloud the password is an API token.
func NewWithPassword(ctx context.Context, endpoint, username, password string) (jira.Client, error) {
	return New(ctx, &jira.Config{
		Endpoint: endpoint,
		Username: username,
		Password: password,
	})
}

// NewWithOAuth2 creates a new client authorizing every request with a token
// from source.
func NewWithOAuth2(ctx context.Context, endpoint string, source oauth2.TokenSource) (jira.Client, error) {
	return New(ctx, &jira.Config{
		Endpoint:   endpoint,
		Credential: auth.NewOAuth2(source),
	})
}

// NewWithRefreshToken creates a new client that refreshes its OAuth2 access
// token through oauthConfig when it expires.
func NewWithRefreshToken(ctx context.Context, endpoint string, oauthConfig *oauth2.Config, accessToken, refreshToken string) (jira.Client, error) {
	return New(ctx, &jira.Config{
		Endpoint:   endpoint,
		Credential: auth.NewOAuth2Refresh(ctx, oauthConfig, accessToken, refreshToken),
	})
}

// ServerInfo describes the Jira instance behind a client.
type ServerInfo struct {
	BaseURL        string `json:"baseUrl"        yaml:"base_url"`
	Version        string `json:"version"        yaml:"version"`
	VersionNumbers []int  `json:"versionNumbers" yaml:"version_numbers"`
	DeploymentType string `json:"deploymentType" yaml:"deployment_type"`
	BuildNumber    int    `json:"buildNumber"    yaml:"build_number"`
	ServerTitle    string `json:"serverTitle"    yaml:"server_title"`
}

// GetServerInfo fetches the server description. It is a cheap way to check
// the endpoint and the credential before starting longer work.
func GetServerInfo(ctx context.Context, client jira.Client) (*ServerInfo, error) {
	value, err := client.API(ctx, jira.MethodGet, serverInfoPath, nil)
	if err != nil {
		return nil, fmt.Errorf("getting server info: %w", err)
	}

	record, ok := value.Object()
	if !ok {
		return nil, fmt.Errorf("%w: server info is %s", jira.ErrUnexpectedPayload, value.Kind())
	}

	info := &ServerInfo{
		BaseURL:        record.String("baseUrl"),
		Version:        record.String("version"),
		DeploymentType: record.String("deploymentType"),
		ServerTitle:    record.String("serverTitle"),
	}

	info.BuildNumber, _ = record.Int("buildNumber")

	for _, number := range record.Array("versionNumbers") {
		n, ok := number.Int()
		if ok {
			info.VersionNumbers = append(info.VersionNumbers, int(n))
		}
	}

	return info, nil
}
