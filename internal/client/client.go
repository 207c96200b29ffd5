package client

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/fivetwenty-io/jira-client/internal/auth"
	"github.com/fivetwenty-io/jira-client/internal/constants"
	jirahttp "github.com/fivetwenty-io/jira-client/internal/http"
	"github.com/fivetwenty-io/jira-client/pkg/jira"
)

// Client implements the jira.Client interface.
type Client struct {
	httpClient jira.HTTPClient
	credential jira.Credential
	logger     jira.Logger
	debug      bool

	mutex    sync.RWMutex
	endpoint string
	options  jira.Options

	// metadataMutex serializes metadata fetches and endpoint changes.
	metadataMutex sync.Mutex
	cache         jira.MetadataCache

	users    *UsersClient
	projects *ProjectsClient
	groups   *GroupsClient
	issues   *IssuesClient
	metadata *MetadataClient
}

// createHTTPClientOptions builds HTTP client options from config.
func createHTTPClientOptions(config *jira.Config) []jirahttp.Option {
	var httpOpts []jirahttp.Option

	if config.Logger != nil {
		httpOpts = append(httpOpts, jirahttp.WithLogger(config.Logger))
	}

	if config.Debug {
		httpOpts = append(httpOpts, jirahttp.WithDebug(true))
	}

	if config.UserAgent != "" {
		httpOpts = append(httpOpts, jirahttp.WithUserAgent(config.UserAgent))
	}

	if config.HTTPTimeout > 0 {
		httpOpts = append(httpOpts, jirahttp.WithTimeout(config.HTTPTimeout))
	}

	if config.RetryMax > 0 {
		retryWaitMin := constants.DefaultRetryWaitMin
		retryWaitMax := constants.DefaultRetryWaitMax

		if config.RetryWaitMin > 0 {
			retryWaitMin = config.RetryWaitMin
		}

		if config.RetryWaitMax > 0 {
			retryWaitMax = config.RetryWaitMax
		}

		httpOpts = append(httpOpts, jirahttp.WithRetryConfig(config.RetryMax, retryWaitMin, retryWaitMax))
	}

	return httpOpts
}

// New creates a new Jira API client. The transport, credential and metadata
// cache are taken from config or built from its settings.
func New(ctx context.Context, config *jira.Config) (*Client, error) {
	if config == nil {
		return nil, jira.ErrConfigRequired
	}

	endpoint := NormalizeEndpoint(config.Endpoint)
	if endpoint == "" {
		return nil, jira.ErrEndpointRequired
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = jirahttp.NewClient(createHTTPClientOptions(config)...)
	}

	cache, err := jira.NewCacheFromConfig(ctx, config.Cache)
	if err != nil {
		return nil, fmt.Errorf("creating metadata cache: %w", err)
	}

	logger := config.Logger
	if logger == nil {
		logger = jira.NopLogger{}
	}

	client := &Client{
		httpClient: httpClient,
		credential: auth.FromConfig(config),
		logger:     logger,
		debug:      config.Debug,
		endpoint:   endpoint,
		options:    config.Options,
		cache:      cache,
	}

	client.initializeResourceClients()

	return client, nil
}

func (c *Client) initializeResourceClients() {
	c.users = NewUsersClient(c, c.logger)
	c.projects = NewProjectsClient(c, c.logger)
	c.groups = NewGroupsClient(c, c.logger)
	c.issues = NewIssuesClient(c, c.logger)
	c.metadata = NewMetadataClient(c)
}

// NormalizeEndpoint trims whitespace and trailing slashes and adds https://
// when no scheme is given.
func NormalizeEndpoint(endpoint string) string {
	endpoint = strings.TrimRight(strings.TrimSpace(endpoint), "/")
	if endpoint == "" {
		return ""
	}

	if !strings.Contains(endpoint, "://") {
		endpoint = "https://" + endpoint
	}

	return endpoint
}

// Endpoint implements jira.Client.Endpoint.
func (c *Client) Endpoint() string {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return c.endpoint
}

// SetEndpoint implements jira.Client.SetEndpoint. Metadata cached for the
// previous endpoint is dropped.
func (c *Client) SetEndpoint(url string) {
	normalized := NormalizeEndpoint(url)

	c.metadataMutex.Lock()
	defer c.metadataMutex.Unlock()

	c.mutex.Lock()
	previous := c.endpoint
	c.endpoint = normalized
	c.mutex.Unlock()

	if previous == normalized {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), constants.CacheClearTimeout)
	defer cancel()

	err := c.cache.Clear(ctx, metadataPrefix(previous))
	if err != nil {
		c.logger.Warn("Failed to clear metadata cache", map[string]interface{}{
			"endpoint": previous,
			"error":    err.Error(),
		})
	}
}

// SetOptions implements jira.Client.SetOptions.
func (c *Client) SetOptions(options jira.Options) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.options = options
}

func (c *Client) currentOptions() jira.Options {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return c.options
}

// API implements jira.Client.API.
func (c *Client) API(ctx context.Context, method, path string, params jira.Params) (jira.Value, error) {
	value, err := c.rawAPI(ctx, method, path, params)
	if err != nil {
		return jira.Value{}, err
	}

	if c.currentOptions().Has(jira.AutomapFields) && value.Exists() {
		value = c.automap(ctx, value)
	}

	return value, nil
}

// rawAPI sends a request and decodes the response without field automapping.
func (c *Client) rawAPI(ctx context.Context, method, path string, params jira.Params) (jira.Value, error) {
	body, err := c.send(ctx, method, path, params, false, false)
	if err != nil {
		return jira.Value{}, err
	}

	if len(bytes.TrimSpace(body)) == 0 {
		return jira.Value{}, nil
	}

	value, err := jira.ParseValue(body)
	if err != nil {
		return jira.Value{}, fmt.Errorf("%w: %s %s: %w", jira.ErrDecodeResponse, method, path, err)
	}

	return value, nil
}

// Fetch implements jira.Client.Fetch.
func (c *Client) Fetch(ctx context.Context, method, path string, params jira.Params, opts *jira.FetchOptions) ([]byte, error) {
	if opts == nil {
		opts = &jira.FetchOptions{}
	}

	body, err := c.send(ctx, method, path, params, opts.IsFile, opts.Debug)
	if err != nil {
		return nil, err
	}

	if len(body) == 0 {
		return nil, nil
	}

	return body, nil
}

// GetHTML fetches a page of the Jira web UI with the client credential, e.g.
// to scrape a screen the REST API does not expose.
func (c *Client) GetHTML(ctx context.Context, path string) (string, error) {
	body, err := c.Fetch(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return "", fmt.Errorf("fetching %s: %w", path, err)
	}

	return string(body), nil
}

func (c *Client) send(ctx context.Context, method, path string, params jira.Params, isFile, debug bool) ([]byte, error) {
	return c.httpClient.SendRequest(ctx, &jira.Request{
		Method:     method,
		Path:       path,
		Params:     params,
		BaseURL:    c.Endpoint(),
		Credential: c.credential,
		IsFile:     isFile,
		Debug:      debug || c.debug,
	})
}

// automap renames the field keys of every record carrying a fields object.
// Definitions that cannot be loaded leave the value untouched.
func (c *Client) automap(ctx context.Context, value jira.Value) jira.Value {
	definitions, err := c.metadata.Fields(ctx)
	if err != nil {
		c.logger.Warn("Field automapping skipped", map[string]interface{}{
			"error": err.Error(),
		})

		return value
	}

	names := make(map[string]string, len(definitions))
	for id, definition := range definitions {
		if name := definition.String("name"); name != "" {
			names[id] = name
		}
	}

	return mapFieldKeys(value, names)
}

func mapFieldKeys(value jira.Value, names map[string]string) jira.Value {
	if items, ok := value.Array(); ok {
		mapped := make([]jira.Value, len(items))
		for i, item := range items {
			mapped[i] = mapFieldKeys(item, names)
		}

		return jira.ArrayValue(mapped)
	}

	record, ok := value.Object()
	if !ok {
		return value
	}

	out := record.Clone()

	for key, member := range record {
		if key == "fields" {
			if fields, ok := member.Object(); ok {
				out[key] = jira.ObjectValue(renameFields(fields, names))
			}

			continue
		}

		if _, ok := member.Array(); ok {
			out[key] = mapFieldKeys(member, names)
		}
	}

	return jira.ObjectValue(out)
}

// renameFields replaces field ids with display names. A key keeps its id when
// the name is already used by another key.
func renameFields(fields jira.Payload, names map[string]string) jira.Payload {
	out := make(jira.Payload, len(fields))

	var mapped []string

	for _, key := range fields.Keys() {
		if _, ok := names[key]; ok {
			mapped = append(mapped, key)

			continue
		}

		out[key] = fields[key]
	}

	for _, key := range mapped {
		target := names[key]
		if _, taken := out[target]; taken {
			target = key
		}

		out[target] = fields[key]
	}

	return out
}

// Close implements jira.Client.Close.
func (c *Client) Close() error {
	c.metadataMutex.Lock()
	defer c.metadataMutex.Unlock()

	err := c.cache.Close()
	if err != nil {
		return fmt.Errorf("closing metadata cache: %w", err)
	}

	return nil
}

// Users implements jira.Client.Users.
func (c *Client) Users() jira.UsersClient { return c.users }

// Projects implements jira.Client.Projects.
func (c *Client) Projects() jira.ProjectsClient { return c.projects }

// Groups implements jira.Client.Groups.
func (c *Client) Groups() jira.GroupsClient { return c.groups }

// Issues implements jira.Client.Issues.
func (c *Client) Issues() jira.IssuesClient { return c.issues }

// Metadata implements jira.Client.Metadata.
func (c *Client) Metadata() jira.MetadataClient { return c.metadata }

var _ jira.Client = (*Client)(nil)
