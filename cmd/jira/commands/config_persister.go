package commands

import (
	"fmt"
	"sync"

	"github.com/fivetwenty-io/jira-client/internal/client"
	"github.com/fivetwenty-io/jira-client/internal/constants"
	"golang.org/x/oauth2"
)

// ConfigPersister implements the auth.TokenPersister interface on top of the
// CLI config file.
type ConfigPersister struct {
	mutex sync.Mutex
}

// NewConfigPersister creates a new config persister.
func NewConfigPersister() *ConfigPersister {
	return &ConfigPersister{}
}

// PersistToken stores a refreshed token for endpoint. Tokens for any endpoint
// other than the configured one are rejected.
func (p *ConfigPersister) PersistToken(endpoint string, token *oauth2.Token) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	config := loadConfig()

	if client.NormalizeEndpoint(config.Endpoint) != client.NormalizeEndpoint(endpoint) {
		return fmt.Errorf("%w: %s", constants.ErrTokenEndpointMismatch, endpoint)
	}

	config.Token = token.AccessToken

	if token.RefreshToken != "" {
		config.RefreshToken = token.RefreshToken
	}

	config.TokenExpiresAt = nil
	if !token.Expiry.IsZero() {
		expiresAt := token.Expiry
		config.TokenExpiresAt = &expiresAt
	}

	return saveConfigStruct(config)
}
