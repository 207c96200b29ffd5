package jira

import (
	"context"
	"io"
	"net/http"
	"time"
)

// HTTP methods accepted by Client.API.
const (
	MethodGet    = http.MethodGet
	MethodPost   = http.MethodPost
	MethodPut    = http.MethodPut
	MethodDelete = http.MethodDelete
)

// Options is a bit set of client behaviours.
type Options uint32

const (
	// AutomapFields rewrites machine field keys (customfield_10010) in
	// records to the human readable names from the field definitions.
	AutomapFields Options = 1 << iota
)

// Has reports whether all bits of flag are set.
func (o Options) Has(flag Options) bool { return o&flag == flag }

// Params are the query or body parameters of one request.
type Params map[string]interface{}

// FileUpload is a Params value sent as a multipart file part when the request
// is a file upload.
type FileUpload struct {
	Filename string
	Content  io.Reader
}

// Request is one call handed to an HTTPClient.
type Request struct {
	Method     string
	Path       string
	Params     Params
	BaseURL    string
	Credential Credential
	IsFile     bool
	Debug      bool
}

// HTTPClient sends one request and returns the raw response body.
//
// An empty body with a nil error means "no result". Implementations report
// rejected credentials with an error matching ErrUnauthorized.
type HTTPClient interface {
	SendRequest(ctx context.Context, req *Request) ([]byte, error)
}

// Credential attaches authentication material to an outgoing request.
type Credential interface {
	Apply(ctx context.Context, req *http.Request) error
}

// FetchOptions tune a raw Fetch call.
type FetchOptions struct {
	IsFile bool
	Debug  bool
}

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// NopLogger discards everything.
type NopLogger struct{}

func (NopLogger) Debug(string, map[string]interface{}) {}
func (NopLogger) Info(string, map[string]interface{})  {}
func (NopLogger) Warn(string, map[string]interface{})  {}
func (NopLogger) Error(string, map[string]interface{}) {}

// UsersClient covers the user endpoints.
type UsersClient interface {
	Get(ctx context.Context, accountID, expand string) (*User, error)
	Search(ctx context.Context, username string, startAt, maxResults int, fields ...string) (*ResultSet[*User], error)
	Walker(perPage int) *Walker[*User]
}

// ProjectsClient covers the project endpoints.
type ProjectsClient interface {
	All(ctx context.Context, startAt, maxResults int) (*ResultSet[*Project], error)
	Search(ctx context.Context, query string, startAt, maxResults int) (*ResultSet[*Project], error)
	Get(ctx context.Context, key string) (Value, error)
	Members(ctx context.Context, query string, startAt, maxResults int) (*ResultSet[*User], error)
	Walker(perPage int) *Walker[*Project]
}

// GroupsClient covers the group endpoints.
type GroupsClient interface {
	Get(ctx context.Context, name, expand string) (*Group, error)
	Search(ctx context.Context, query string, startAt, maxResults int) (*ResultSet[*Group], error)
	Members(ctx context.Context, groupName string, startAt, maxResults int) (*ResultSet[*User], error)
	MembersWalker(perPage int) *Walker[*User]
}

// IssuesClient covers issue search and lookup.
type IssuesClient interface {
	Get(ctx context.Context, key string, fields ...string) (*Issue, error)
	Search(ctx context.Context, jql string, startAt, maxResults int, fields ...string) (*ResultSet[*Issue], error)
	Walker(perPage int) *Walker[*Issue]
}

// MetadataClient exposes the endpoint scoped definitions cached by the client.
// Every dictionary is keyed by the definition id.
type MetadataClient interface {
	Fields(ctx context.Context) (map[string]Payload, error)
	Priorities(ctx context.Context) (map[string]Payload, error)
	Statuses(ctx context.Context) (map[string]Payload, error)
	Resolutions(ctx context.Context) (map[string]Payload, error)
}

// Client is the Jira API client.
type Client interface {
	Endpoint() string
	SetEndpoint(url string)
	SetOptions(options Options)

	// API sends a request and decodes the JSON response. An empty response
	// body yields the zero Value and a nil error.
	API(ctx context.Context, method, path string, params Params) (Value, error)

	// Fetch sends a request and returns the body undecoded, or nil when the
	// response is empty.
	Fetch(ctx context.Context, method, path string, params Params, opts *FetchOptions) ([]byte, error)

	Users() UsersClient
	Projects() ProjectsClient
	Groups() GroupsClient
	Issues() IssuesClient
	Metadata() MetadataClient

	// Close releases the metadata cache backend. The client must not be used
	// afterwards.
	Close() error
}

// Config represents client configuration for building a Client.
//
// # Authentication precedence
//
//  1. Credential: used as is.
//  2. Token: sent as a Bearer personal access token.
//  3. Username/Password: HTTP basic authentication.
//  4. Nothing: requests are sent anonymously.
type Config struct {
	// Endpoint is the Jira base URL, e.g. "https://jira.example.com".
	// A trailing slash is removed.
	Endpoint string

	Credential Credential
	Token      string
	Username   string
	Password   string

	// HTTPClient replaces the default retrying transport.
	HTTPClient HTTPClient

	HTTPTimeout  time.Duration
	RetryMax     int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
	UserAgent    string

	// Debug enables request/response logging through Logger.
	Debug  bool
	Logger Logger

	Options Options

	// Cache selects where endpoint metadata is kept. Nil means in memory.
	Cache *CacheConfig
}
