package constants

import "time"

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration files.
	ConfigFilePerm = 0600
)

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout is the default timeout for HTTP requests.
	DefaultHTTPTimeout = 30 * time.Second

	// CacheClearTimeout bounds the metadata cache purge run on endpoint change.
	CacheClearTimeout = 5 * time.Second

	// NATSConnectTimeout bounds the initial connection to a NATS server.
	NATSConnectTimeout = 10 * time.Second
)

// Retry limits.
const (
	// DefaultRetryMax is the default maximum number of retries.
	DefaultRetryMax = 3

	// DefaultRetryWaitMin is the minimum wait time between retries.
	DefaultRetryWaitMin = 1 * time.Second

	// DefaultRetryWaitMax is the maximum wait time between retries.
	DefaultRetryWaitMax = 10 * time.Second
)

// Pagination.
const (
	// DefaultPageSize is the page size used when a walker is built with a
	// non-positive one.
	DefaultPageSize = 50

	// UserPageSize is the default page size of user searches.
	UserPageSize = 50

	// ProjectPageSize is the default page size of project listings.
	ProjectPageSize = 1000

	// IssuePageSize is the default page size of issue searches.
	IssuePageSize = 50

	// GroupPageSize is the default page size of group searches.
	GroupPageSize = 50
)

// HTTP headers.
const (
	// HeaderAtlassianToken disables XSRF checks on multipart uploads.
	HeaderAtlassianToken = "X-Atlassian-Token"

	// AtlassianTokenNoCheck is the only accepted value of HeaderAtlassianToken.
	AtlassianTokenNoCheck = "no-check"

	// DefaultUserAgent is sent when the configuration does not set one.
	DefaultUserAgent = "jira-client-go/1.0"
)

// Metadata cache.
const (
	// DefaultCacheBucket is the NATS KV bucket holding endpoint metadata.
	DefaultCacheBucket = "jira_metadata"

	// MetadataKeySeparator joins an endpoint and a metadata kind in cache keys.
	MetadataKeySeparator = "#"
)

// Display.
const (
	// TableTruncateWidth truncates long cells in table output.
	TableTruncateWidth = 60
)

// Output formats.
const (
	// FormatTable renders human readable tables.
	FormatTable = "table"

	// FormatJSON for JSON output format.
	FormatJSON = "json"

	// FormatYAML for YAML output format.
	FormatYAML = "yaml"
)

// CLI configuration.
const (
	// ConfigDirName is the directory under the user home holding the CLI config.
	ConfigDirName = ".jira"

	// ConfigFileName is the CLI config file name.
	ConfigFileName = "config.yml"

	// EnvPrefix prefixes environment variables read by the CLI.
	EnvPrefix = "JIRA"

	// MinimumArgumentCount is the argument count of KEY VALUE commands.
	MinimumArgumentCount = 2
)
