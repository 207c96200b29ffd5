package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fivetwenty-io/jira-client/internal/auth"
	"github.com/fivetwenty-io/jira-client/internal/client"
	"github.com/fivetwenty-io/jira-client/internal/constants"
	"github.com/fivetwenty-io/jira-client/pkg/jira"
	"github.com/fivetwenty-io/jira-client/pkg/jiraclient"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/oauth2"
	"gopkg.in/yaml.v3"
)

const secretMask = "********"

// Config represents the CLI configuration.
type Config struct {
	Endpoint       string     `json:"endpoint,omitempty"         yaml:"endpoint,omitempty"`
	Username       string     `json:"username,omitempty"         yaml:"username,omitempty"`
	Password       string     `json:"password,omitempty"         yaml:"password,omitempty"`
	Token          string     `json:"token,omitempty"            yaml:"token,omitempty"`
	RefreshToken   string     `json:"refresh_token,omitempty"    yaml:"refresh_token,omitempty"`
	TokenExpiresAt *time.Time `json:"token_expires_at,omitempty" yaml:"token_expires_at,omitempty"`

	OAuth OAuthConfig `json:"oauth" yaml:"oauth,omitempty"`
	Cache CacheConfig `json:"cache" yaml:"cache,omitempty"`

	Output   string `json:"output,omitempty"    yaml:"output,omitempty"`
	Automap  bool   `json:"automap"             yaml:"automap,omitempty"`
	RetryMax int    `json:"retry_max,omitempty" yaml:"retry_max,omitempty"`
	Timeout  string `json:"timeout,omitempty"   yaml:"timeout,omitempty"`
}

// OAuthConfig holds the OAuth2 client used to refresh access tokens.
type OAuthConfig struct {
	ClientID     string `json:"client_id,omitempty"     yaml:"client_id,omitempty"`
	ClientSecret string `json:"client_secret,omitempty" yaml:"client_secret,omitempty"`
	TokenURL     string `json:"token_url,omitempty"     yaml:"token_url,omitempty"`
}

// CacheConfig selects the metadata cache backend.
type CacheConfig struct {
	Type    string `json:"type,omitempty"     yaml:"type,omitempty"`
	NATSURL string `json:"nats_url,omitempty" yaml:"nats_url,omitempty"`
	Bucket  string `json:"bucket,omitempty"   yaml:"bucket,omitempty"`
}

// configSetters maps every settable key to its handler.
var configSetters = map[string]func(*Config, string) error{
	"endpoint":            stringField(func(c *Config) *string { return &c.Endpoint }),
	"username":            stringField(func(c *Config) *string { return &c.Username }),
	"password":            stringField(func(c *Config) *string { return &c.Password }),
	"token":               stringField(func(c *Config) *string { return &c.Token }),
	"refresh_token":       stringField(func(c *Config) *string { return &c.RefreshToken }),
	"oauth.client_id":     stringField(func(c *Config) *string { return &c.OAuth.ClientID }),
	"oauth.client_secret": stringField(func(c *Config) *string { return &c.OAuth.ClientSecret }),
	"oauth.token_url":     stringField(func(c *Config) *string { return &c.OAuth.TokenURL }),
	"cache.type":          setCacheType,
	"cache.nats_url":      stringField(func(c *Config) *string { return &c.Cache.NATSURL }),
	"cache.bucket":        stringField(func(c *Config) *string { return &c.Cache.Bucket }),
	"output":              setOutput,
	"automap":             setAutomap,
	"retry_max":           setRetryMax,
	"timeout":             setTimeout,
}

func stringField(field func(*Config) *string) func(*Config, string) error {
	return func(config *Config, value string) error {
		*field(config) = value

		return nil
	}
}

func setCacheType(config *Config, value string) error {
	switch jira.CacheType(value) {
	case jira.CacheTypeMemory, jira.CacheTypeNATS, jira.CacheTypeNone:
		config.Cache.Type = value

		return nil
	default:
		return fmt.Errorf("%w: cache.type must be memory, nats or none", constants.ErrInvalidConfigValue)
	}
}

func setOutput(config *Config, value string) error {
	switch value {
	case constants.FormatTable, constants.FormatJSON, constants.FormatYAML:
		config.Output = value

		return nil
	default:
		return fmt.Errorf("%w: %s", constants.ErrUnsupportedOutput, value)
	}
}

func setAutomap(config *Config, value string) error {
	automap, err := cast.ToBoolE(value)
	if err != nil {
		return fmt.Errorf("%w: automap: %w", constants.ErrInvalidConfigValue, err)
	}

	config.Automap = automap

	return nil
}

func setRetryMax(config *Config, value string) error {
	retryMax, err := cast.ToIntE(value)
	if err != nil || retryMax < 0 {
		return fmt.Errorf("%w: retry_max must be a non-negative integer", constants.ErrInvalidConfigValue)
	}

	config.RetryMax = retryMax

	return nil
}

func setTimeout(config *Config, value string) error {
	_, err := cast.ToDurationE(value)
	if err != nil {
		return fmt.Errorf("%w: timeout: %w", constants.ErrInvalidConfigValue, err)
	}

	config.Timeout = value

	return nil
}

// NewConfigCommand creates the config command group.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long:  "Manage the Jira CLI configuration: endpoint, credentials and settings",
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigSetCommand())
	cmd.AddCommand(newConfigUnsetCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	var showSecrets bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long:  "Display the effective CLI configuration. Secrets are masked unless --show-secrets is given",
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()
			if !showSecrets {
				config = maskSecrets(config)
			}

			output, err := outputFormat()
			if err != nil {
				return err
			}

			switch output {
			case constants.FormatJSON:
				return StandardJSONRenderer(cmd.OutOrStdout(), config)
			case constants.FormatYAML:
				return StandardYAMLRenderer(cmd.OutOrStdout(), config)
			default:
				return displayConfigTable(cmd, config)
			}
		},
	}

	cmd.Flags().BoolVar(&showSecrets, "show-secrets", false, "print passwords and tokens in clear text")

	return cmd
}

func newConfigSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set a configuration value",
		Long:  "Set a configuration value. Keys: " + strings.Join(configKeys(), ", "),
		Args:  cobra.ExactArgs(constants.MinimumArgumentCount),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, value := args[0], args[1]

			setter, ok := configSetters[key]
			if !ok {
				return fmt.Errorf("%w: %s", constants.ErrUnknownConfigKey, key)
			}

			config := loadConfig()

			err := setter(config, value)
			if err != nil {
				return err
			}

			err = saveConfigStruct(config)
			if err != nil {
				return err
			}

			if isSecretKey(key) {
				value = secretMask
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Set %s to %s\n", key, value)

			return nil
		},
	}
}

func newConfigUnsetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unset KEY",
		Short: "Unset a configuration value",
		Long:  "Remove a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]

			if _, ok := configSetters[key]; !ok && key != "token_expires_at" {
				return fmt.Errorf("%w: %s", constants.ErrUnknownConfigKey, key)
			}

			config := loadConfig()
			unsetConfigValue(config, key)

			err := saveConfigStruct(config)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Unset %s\n", key)

			return nil
		},
	}
}

func unsetConfigValue(config *Config, key string) {
	switch key {
	case "automap":
		config.Automap = false
	case "retry_max":
		config.RetryMax = 0
	case "token_expires_at":
		config.TokenExpiresAt = nil
	case "token":
		config.Token = ""
		config.TokenExpiresAt = nil
	case "cache.type":
		config.Cache.Type = ""
	case "output":
		config.Output = ""
	case "timeout":
		config.Timeout = ""
	default:
		_ = configSetters[key](config, "")
	}
}

func configKeys() []string {
	keys := make([]string, 0, len(configSetters))
	for key := range configSetters {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	return keys
}

func isSecretKey(key string) bool {
	switch key {
	case "password", "token", "refresh_token", "oauth.client_secret":
		return true
	default:
		return false
	}
}

func maskSecrets(config *Config) *Config {
	masked := *config

	for _, secret := range []*string{&masked.Password, &masked.Token, &masked.RefreshToken, &masked.OAuth.ClientSecret} {
		if *secret != "" {
			*secret = secretMask
		}
	}

	return &masked
}

func displayConfigTable(cmd *cobra.Command, config *Config) error {
	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.Header("Key", "Value")

	expires := ""
	if config.TokenExpiresAt != nil {
		expires = config.TokenExpiresAt.Format(time.RFC3339)
	}

	rows := [][]string{
		{"endpoint", config.Endpoint},
		{"username", config.Username},
		{"password", config.Password},
		{"token", config.Token},
		{"refresh_token", config.RefreshToken},
		{"token_expires_at", expires},
		{"oauth.client_id", config.OAuth.ClientID},
		{"oauth.client_secret", config.OAuth.ClientSecret},
		{"oauth.token_url", config.OAuth.TokenURL},
		{"cache.type", config.Cache.Type},
		{"cache.nats_url", config.Cache.NATSURL},
		{"cache.bucket", config.Cache.Bucket},
		{"output", config.Output},
		{"automap", cast.ToString(config.Automap)},
		{"retry_max", cast.ToString(config.RetryMax)},
		{"timeout", config.Timeout},
	}

	for _, row := range rows {
		if row[1] == "" {
			row[1] = "-"
		}

		_ = table.Append(row)
	}

	err := table.Render()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

func loadConfig() *Config {
	config := &Config{
		Endpoint:     viper.GetString("endpoint"),
		Username:     viper.GetString("username"),
		Password:     viper.GetString("password"),
		Token:        viper.GetString("token"),
		RefreshToken: viper.GetString("refresh_token"),
		OAuth: OAuthConfig{
			ClientID:     viper.GetString("oauth.client_id"),
			ClientSecret: viper.GetString("oauth.client_secret"),
			TokenURL:     viper.GetString("oauth.token_url"),
		},
		Cache: CacheConfig{
			Type:    viper.GetString("cache.type"),
			NATSURL: viper.GetString("cache.nats_url"),
			Bucket:  viper.GetString("cache.bucket"),
		},
		Output:   viper.GetString("output"),
		Automap:  viper.GetBool("automap"),
		RetryMax: viper.GetInt("retry_max"),
		Timeout:  viper.GetString("timeout"),
	}

	expiresAt := viper.GetTime("token_expires_at")
	if !expiresAt.IsZero() {
		config.TokenExpiresAt = &expiresAt
	}

	return config
}

// configFilePath returns the file the configuration is read from, or the
// default location under the user home.
func configFilePath() (string, error) {
	configFile := viper.ConfigFileUsed()
	if configFile != "" {
		return configFile, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(home, constants.ConfigDirName, constants.ConfigFileName), nil
}

func saveConfigStruct(config *Config) error {
	configFile, err := configFilePath()
	if err != nil {
		return err
	}

	err = os.MkdirAll(filepath.Dir(configFile), constants.ConfigDirPerm)
	if err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	err = os.WriteFile(configFile, data, constants.ConfigFilePerm)
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	// keep the running process consistent with the file
	viper.SetConfigFile(configFile)

	err = viper.ReadInConfig()
	if err != nil {
		return fmt.Errorf("failed to reload config file: %w", err)
	}

	return nil
}

// CreateClient builds a Jira client from the effective configuration.
func CreateClient(cmd *cobra.Command) (jira.Client, error) {
	ctx := commandContext(cmd)
	config := loadConfig()

	logger, err := NewZapLogger(viper.GetBool("verbose"))
	if err != nil {
		return nil, err
	}

	clientConfig, err := buildClientConfig(ctx, config, logger)
	if err != nil {
		return nil, err
	}

	clientConfig.Debug = viper.GetBool("verbose")

	client, err := jiraclient.New(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return client, nil
}

// buildClientConfig translates the CLI configuration into a client
// configuration. Credentials are chosen in this order: a refreshable OAuth2
// token, a personal access token, then username and password.
func buildClientConfig(ctx context.Context, config *Config, logger jira.Logger) (*jira.Config, error) {
	if config.Endpoint == "" {
		return nil, constants.ErrNoEndpointConfigured
	}

	clientConfig := &jira.Config{
		Endpoint: config.Endpoint,
		Logger:   logger,
		RetryMax: config.RetryMax,
	}

	if config.Timeout != "" {
		timeout, err := cast.ToDurationE(config.Timeout)
		if err != nil {
			return nil, fmt.Errorf("%w: timeout: %w", constants.ErrInvalidConfigValue, err)
		}

		clientConfig.HTTPTimeout = timeout
	}

	if config.Automap {
		clientConfig.Options |= jira.AutomapFields
	}

	cacheConfig, err := buildCacheConfig(config.Cache)
	if err != nil {
		return nil, err
	}

	clientConfig.Cache = cacheConfig

	switch {
	case hasOAuthRefresh(config):
		clientConfig.Credential = buildOAuthCredential(ctx, config, logger)
	case config.Token != "":
		clientConfig.Token = config.Token
	case config.Username != "":
		password := config.Password
		if password == "" {
			password, err = promptPassword(config.Username)
			if err != nil {
				return nil, err
			}
		}

		clientConfig.Username = config.Username
		clientConfig.Password = password
	}

	return clientConfig, nil
}

func buildCacheConfig(cache CacheConfig) (*jira.CacheConfig, error) {
	switch jira.CacheType(cache.Type) {
	case "", jira.CacheTypeMemory:
		return &jira.CacheConfig{Type: jira.CacheTypeMemory}, nil
	case jira.CacheTypeNone:
		return &jira.CacheConfig{Type: jira.CacheTypeNone}, nil
	case jira.CacheTypeNATS:
		return &jira.CacheConfig{
			Type: jira.CacheTypeNATS,
			NATS: &jira.NATSKVConfig{URL: cache.NATSURL, Bucket: cache.Bucket},
		}, nil
	default:
		return nil, fmt.Errorf("%w: cache.type %q", constants.ErrInvalidConfigValue, cache.Type)
	}
}

func hasOAuthRefresh(config *Config) bool {
	return config.RefreshToken != "" && config.OAuth.ClientID != "" && config.OAuth.TokenURL != ""
}

// buildOAuthCredential refreshes the stored access token when it expires and
// writes refreshed tokens back to the config file.
func buildOAuthCredential(ctx context.Context, config *Config, logger jira.Logger) jira.Credential {
	oauthConfig := &oauth2.Config{
		ClientID:     config.OAuth.ClientID,
		ClientSecret: config.OAuth.ClientSecret,
		Endpoint:     oauth2.Endpoint{TokenURL: config.OAuth.TokenURL},
	}

	token := &oauth2.Token{
		AccessToken:  config.Token,
		RefreshToken: config.RefreshToken,
		TokenType:    "Bearer",
	}

	if config.TokenExpiresAt != nil {
		token.Expiry = *config.TokenExpiresAt
	}

	source := auth.NewPersistingTokenSource(
		oauthConfig.TokenSource(ctx, token),
		NewConfigPersister(),
		client.NormalizeEndpoint(config.Endpoint),
		config.Token,
		func(err error) {
			logger.Warn("Failed to save refreshed token", map[string]interface{}{"error": err.Error()})
		},
	)

	return auth.NewOAuth2(source)
}
