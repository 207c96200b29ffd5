package constants

import "errors"

// CLI configuration errors.
var (
	ErrNoEndpointConfigured  = errors.New("no Jira endpoint configured, use 'jira config set endpoint <url>' or --endpoint")
	ErrUnknownConfigKey      = errors.New("unknown configuration key")
	ErrInvalidConfigValue    = errors.New("invalid configuration value")
	ErrUnsupportedOutput     = errors.New("unsupported output format")
	ErrPasswordPrompt        = errors.New("password prompt requires a terminal")
	ErrTokenEndpointMismatch = errors.New("token belongs to a different endpoint than the configured one")
)
