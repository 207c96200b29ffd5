package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/fivetwenty-io/jira-client/internal/constants"
	"github.com/fivetwenty-io/jira-client/pkg/jira"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/spf13/cast"
)

// Client is the default jira.HTTPClient. It retries connection failures, 429
// and 5xx responses with exponential backoff.
type Client struct {
	httpClient *retryablehttp.Client
	logger     jira.Logger
	debug      bool
	userAgent  string
}

// Option configures the HTTP client.
type Option func(*Client)

// WithLogger sets the logger.
func WithLogger(logger jira.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
			c.httpClient.Logger = &leveledLogger{logger: logger}
		}
	}
}

// WithDebug logs every request and response.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		if userAgent != "" {
			c.userAgent = userAgent
		}
	}
}

// WithRetryConfig sets retry configuration.
func WithRetryConfig(retryMax int, waitMin, waitMax time.Duration) Option {
	return func(c *Client) {
		c.httpClient.RetryMax = retryMax
		c.httpClient.RetryWaitMin = waitMin
		c.httpClient.RetryWaitMax = waitMax
	}
}

// WithTimeout sets the per attempt timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.HTTPClient.Timeout = timeout
		}
	}
}

// WithHTTPClient replaces the underlying *http.Client, e.g. to set a proxy or
// custom TLS configuration.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient.HTTPClient = httpClient
		}
	}
}

// NewClient creates a new HTTP client.
func NewClient(opts ...Option) *Client {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = constants.DefaultRetryMax
	retryClient.RetryWaitMin = constants.DefaultRetryWaitMin
	retryClient.RetryWaitMax = constants.DefaultRetryWaitMax
	retryClient.HTTPClient.Timeout = constants.DefaultHTTPTimeout
	retryClient.CheckRetry = retryablehttp.DefaultRetryPolicy
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler
	retryClient.Logger = nil

	client := &Client{
		httpClient: retryClient,
		logger:     jira.NopLogger{},
		userAgent:  constants.DefaultUserAgent,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// SendRequest performs one call and returns the raw response body. A status
// of 400 or above is returned as *jira.ResponseError.
func (c *Client) SendRequest(ctx context.Context, req *jira.Request) ([]byte, error) {
	httpReq, err := c.buildRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	if req.Credential != nil {
		err = req.Credential.Apply(ctx, httpReq.Request)
		if err != nil {
			return nil, fmt.Errorf("applying credential: %w", err)
		}
	}

	debug := c.debug || req.Debug
	if debug {
		c.logger.Debug("HTTP Request", map[string]interface{}{
			"method": httpReq.Method,
			"url":    httpReq.URL.String(),
			"file":   req.IsFile,
		})
	}

	start := time.Now()

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}

	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if debug {
		c.logger.Debug("HTTP Response", map[string]interface{}{
			"status":   resp.StatusCode,
			"size":     len(body),
			"duration": time.Since(start).String(),
		})
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, jira.NewResponseError(resp.StatusCode, body)
	}

	return body, nil
}

func (c *Client) buildRequest(ctx context.Context, req *jira.Request) (*retryablehttp.Request, error) {
	method := req.Method
	if method == "" {
		method = jira.MethodGet
	}

	target := strings.TrimRight(req.BaseURL, "/") + req.Path

	var (
		body        interface{}
		contentType string
	)

	switch method {
	case http.MethodGet, http.MethodDelete:
		query, err := encodeQuery(req.Params)
		if err != nil {
			return nil, err
		}

		if query != "" {
			separator := "?"
			if strings.Contains(target, "?") {
				separator = "&"
			}

			target += separator + query
		}
	default:
		if len(req.Params) == 0 && !req.IsFile {
			break
		}

		var err error

		if req.IsFile {
			body, contentType, err = encodeMultipart(req.Params)
		} else {
			body, err = json.Marshal(req.Params)
			contentType = "application/json"
		}

		if err != nil {
			return nil, err
		}
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)

	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}

	if req.IsFile {
		httpReq.Header.Set(constants.HeaderAtlassianToken, constants.AtlassianTokenNoCheck)
	}

	return httpReq, nil
}

// encodeQuery renders params as a sorted query string. Slices are joined with
// commas, which is how Jira expects fields and expand lists.
func encodeQuery(params jira.Params) (string, error) {
	if len(params) == 0 {
		return "", nil
	}

	values := url.Values{}

	for key, raw := range params {
		if raw == nil {
			continue
		}

		value, err := paramString(raw)
		if err != nil {
			return "", fmt.Errorf("encoding parameter %s: %w", key, err)
		}

		values.Set(key, value)
	}

	return values.Encode(), nil
}

func paramString(raw interface{}) (string, error) {
	switch typed := raw.(type) {
	case []string:
		return strings.Join(typed, ","), nil
	case []interface{}:
		parts, err := cast.ToStringSliceE(typed)
		if err != nil {
			return "", err
		}

		return strings.Join(parts, ","), nil
	case jira.Value:
		return typed.Text(), nil
	default:
		return cast.ToStringE(raw)
	}
}

func encodeMultipart(params jira.Params) ([]byte, string, error) {
	var buf bytes.Buffer

	writer := multipart.NewWriter(&buf)

	keys := make([]string, 0, len(params))
	for key := range params {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	for _, key := range keys {
		switch typed := params[key].(type) {
		case jira.FileUpload:
			err := writeFilePart(writer, key, typed)
			if err != nil {
				return nil, "", err
			}
		case *jira.FileUpload:
			err := writeFilePart(writer, key, *typed)
			if err != nil {
				return nil, "", err
			}
		case nil:
			continue
		default:
			value, err := paramString(typed)
			if err != nil {
				return nil, "", fmt.Errorf("encoding parameter %s: %w", key, err)
			}

			err = writer.WriteField(key, value)
			if err != nil {
				return nil, "", fmt.Errorf("writing form field %s: %w", key, err)
			}
		}
	}

	err := writer.Close()
	if err != nil {
		return nil, "", fmt.Errorf("closing multipart body: %w", err)
	}

	return buf.Bytes(), writer.FormDataContentType(), nil
}

func writeFilePart(writer *multipart.Writer, field string, file jira.FileUpload) error {
	part, err := writer.CreateFormFile(field, file.Filename)
	if err != nil {
		return fmt.Errorf("creating file part %s: %w", field, err)
	}

	if file.Content == nil {
		return nil
	}

	_, err = io.Copy(part, file.Content)
	if err != nil {
		return fmt.Errorf("writing file part %s: %w", field, err)
	}

	return nil
}

// leveledLogger adapts jira.Logger to retryablehttp.LeveledLogger.
type leveledLogger struct {
	logger jira.Logger
}

func fieldsOf(keysAndValues []interface{}) map[string]interface{} {
	fields := make(map[string]interface{}, len(keysAndValues)/2)

	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fields[cast.ToString(keysAndValues[i])] = keysAndValues[i+1]
	}

	return fields
}

func (l *leveledLogger) Error(msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, fieldsOf(keysAndValues))
}

func (l *leveledLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Info(msg, fieldsOf(keysAndValues))
}

func (l *leveledLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, fieldsOf(keysAndValues))
}

func (l *leveledLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.logger.Warn(msg, fieldsOf(keysAndValues))
}
