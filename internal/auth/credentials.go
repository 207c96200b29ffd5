package auth

import (
	"context"
	"fmt"
	"net/http"

	"github.com/fivetwenty-io/jira-client/pkg/jira"
	"golang.org/x/oauth2"
)

// Basic sends HTTP basic authentication.
type Basic struct {
	Username string
	Password string
}

// Apply implements jira.Credential.
func (b *Basic) Apply(_ context.Context, req *http.Request) error {
	req.SetBasicAuth(b.Username, b.Password)

	return nil
}

// Bearer sends a personal access token.
type Bearer struct {
	Token string
}

// Apply implements jira.Credential.
func (b *Bearer) Apply(_ context.Context, req *http.Request) error {
	req.Header.Set("Authorization", "Bearer "+b.Token)

	return nil
}

// Anonymous leaves requests untouched.
type Anonymous struct{}

// Apply implements jira.Credential.
func (Anonymous) Apply(context.Context, *http.Request) error { return nil }

// OAuth2 authenticates with tokens from an oauth2.TokenSource. Wrap the source
// with oauth2.ReuseTokenSource to avoid a token request per call.
type OAuth2 struct {
	Source oauth2.TokenSource
}

// NewOAuth2 returns a credential backed by source.
func NewOAuth2(source oauth2.TokenSource) *OAuth2 {
	return &OAuth2{Source: source}
}

// NewOAuth2Refresh returns a credential that exchanges refreshToken for access
// tokens at config's token endpoint and refreshes them as they expire.
func NewOAuth2Refresh(ctx context.Context, config *oauth2.Config, accessToken, refreshToken string) *OAuth2 {
	token := &oauth2.Token{AccessToken: accessToken, RefreshToken: refreshToken}

	return NewOAuth2(config.TokenSource(ctx, token))
}

// Apply implements jira.Credential.
func (o *OAuth2) Apply(_ context.Context, req *http.Request) error {
	if o.Source == nil {
		return fmt.Errorf("%w: OAuth2 credential without token source", jira.ErrUnsupportedCredential)
	}

	token, err := o.Source.Token()
	if err != nil {
		return fmt.Errorf("retrieving OAuth2 token: %w", err)
	}

	token.SetAuthHeader(req)

	return nil
}

// FromConfig picks the credential described by config: an explicit
// Credential, then Token, then Username and Password, else Anonymous.
func FromConfig(config *jira.Config) jira.Credential {
	switch {
	case config == nil:
		return Anonymous{}
	case config.Credential != nil:
		return config.Credential
	case config.Token != "":
		return &Bearer{Token: config.Token}
	case config.Username != "":
		return &Basic{Username: config.Username, Password: config.Password}
	default:
		return Anonymous{}
	}
}
