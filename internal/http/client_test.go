package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	jirahttp "github.com/fivetwenty-io/jira-client/internal/http"
	"github.com/fivetwenty-io/jira-client/pkg/jira"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockCredential for testing.
type MockCredential struct {
	token string
	err   error
}

func (m *MockCredential) Apply(_ context.Context, req *http.Request) error {
	if m.err != nil {
		return m.err
	}

	req.Header.Set("Authorization", "Bearer "+m.token)

	return nil
}

// MockLogger for testing.
type MockLogger struct {
	mu   sync.Mutex
	logs []map[string]interface{}
}

func (l *MockLogger) record(level, msg string, fields map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.logs = append(l.logs, map[string]interface{}{"level": level, "msg": msg, "fields": fields})
}

func (l *MockLogger) Debug(msg string, fields map[string]interface{}) { l.record("debug", msg, fields) }
func (l *MockLogger) Info(msg string, fields map[string]interface{})  { l.record("info", msg, fields) }
func (l *MockLogger) Warn(msg string, fields map[string]interface{})  { l.record("warn", msg, fields) }
func (l *MockLogger) Error(msg string, fields map[string]interface{}) { l.record("error", msg, fields) }

func (l *MockLogger) messages() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]string, 0, len(l.logs))
	for _, entry := range l.logs {
		out = append(out, entry["msg"].(string))
	}

	return out
}

var errNoToken = errors.New("no token")

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestClient_SendRequest(t *testing.T) {
	t.Parallel()
	t.Run("successful request", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "/rest/api/2/issue/ABC-1", request.URL.Path)
			assert.Equal(t, "GET", request.Method)
			assert.Equal(t, "Bearer test-token", request.Header.Get("Authorization"))
			assert.Equal(t, "application/json", request.Header.Get("Accept"))
			assert.Equal(t, "jira-client-go/1.0", request.Header.Get("User-Agent"))

			_ = json.NewEncoder(writer).Encode(map[string]string{"key": "ABC-1"})
		}))
		defer server.Close()

		client := jirahttp.NewClient()

		body, err := client.SendRequest(context.Background(), &jira.Request{
			Method:     jira.MethodGet,
			Path:       "/rest/api/2/issue/ABC-1",
			BaseURL:    server.URL + "/",
			Credential: &MockCredential{token: "test-token"},
		})
		require.NoError(t, err)
		assert.JSONEq(t, `{"key":"ABC-1"}`, string(body))
	})

	t.Run("request with query parameters", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "fields=summary%2Cstatus&jql=project+%3D+ABC&maxResults=50&startAt=0", request.URL.RawQuery)
			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := jirahttp.NewClient()

		body, err := client.SendRequest(context.Background(), &jira.Request{
			Method:  jira.MethodGet,
			Path:    "/rest/api/2/search",
			BaseURL: server.URL,
			Params: jira.Params{
				"jql":        "project = ABC",
				"startAt":    0,
				"maxResults": 50,
				"fields":     []string{"summary", "status"},
				"expand":     nil,
			},
		})
		require.NoError(t, err)
		assert.Empty(t, body)
	})

	t.Run("request with body", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "POST", request.Method)
			assert.Equal(t, "application/json", request.Header.Get("Content-Type"))

			var body map[string]string

			_ = json.NewDecoder(request.Body).Decode(&body)
			assert.Equal(t, "jira-users", body["name"])

			writer.WriteHeader(http.StatusCreated)
			_, _ = writer.Write([]byte(`{"name":"jira-users"}`))
		}))
		defer server.Close()

		client := jirahttp.NewClient()

		body, err := client.SendRequest(context.Background(), &jira.Request{
			Method:  jira.MethodPost,
			Path:    "/rest/api/2/group",
			BaseURL: server.URL,
			Params:  jira.Params{"name": "jira-users"},
		})
		require.NoError(t, err)
		assert.JSONEq(t, `{"name":"jira-users"}`, string(body))
	})

	t.Run("file upload", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "no-check", request.Header.Get("X-Atlassian-Token"))

			file, header, err := request.FormFile("file")
			if !assert.NoError(t, err) {
				return
			}

			content, _ := io.ReadAll(file)
			assert.Equal(t, "report.txt", header.Filename)
			assert.Equal(t, "hello", string(content))
			assert.Equal(t, "note", request.FormValue("comment"))

			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := jirahttp.NewClient()

		_, err := client.SendRequest(context.Background(), &jira.Request{
			Method:  jira.MethodPost,
			Path:    "/rest/api/2/issue/ABC-1/attachments",
			BaseURL: server.URL,
			IsFile:  true,
			Params: jira.Params{
				"file":    jira.FileUpload{Filename: "report.txt", Content: strings.NewReader("hello")},
				"comment": "note",
			},
		})
		require.NoError(t, err)
	})

	t.Run("error response", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writer.WriteHeader(http.StatusNotFound)
			_, _ = writer.Write([]byte(`{"errorMessages":["Issue does not exist or you do not have permission to see it."],"errors":{}}`))
		}))
		defer server.Close()

		client := jirahttp.NewClient()

		_, err := client.SendRequest(context.Background(), &jira.Request{
			Path:    "/rest/api/2/issue/NOPE-1",
			BaseURL: server.URL,
		})
		require.Error(t, err)
		assert.True(t, jira.IsNotFound(err))

		respErr := &jira.ResponseError{}
		ok := errors.As(err, &respErr)
		require.True(t, ok)
		assert.Equal(t, 404, respErr.StatusCode)
		assert.Equal(t, "Issue does not exist or you do not have permission to see it.", respErr.FirstMessage())
	})

	t.Run("unauthorized", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writer.WriteHeader(http.StatusUnauthorized)
		}))
		defer server.Close()

		client := jirahttp.NewClient()

		_, err := client.SendRequest(context.Background(), &jira.Request{Path: "/rest/api/2/myself", BaseURL: server.URL})
		require.Error(t, err)
		assert.True(t, jira.IsUnauthorized(err))
	})

	t.Run("credential failure", func(t *testing.T) {
		t.Parallel()

		client := jirahttp.NewClient()

		_, err := client.SendRequest(context.Background(), &jira.Request{
			Path:       "/rest/api/2/myself",
			BaseURL:    "http://127.0.0.1:1",
			Credential: &MockCredential{err: errNoToken},
		})
		require.ErrorIs(t, err, errNoToken)
	})

	t.Run("with debug logging", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			_ = json.NewEncoder(writer).Encode(map[string]string{"result": "ok"})
		}))
		defer server.Close()

		logger := &MockLogger{}
		client := jirahttp.NewClient(jirahttp.WithLogger(logger), jirahttp.WithDebug(true))

		_, err := client.SendRequest(context.Background(), &jira.Request{Path: "/rest/api/2/field", BaseURL: server.URL})
		require.NoError(t, err)

		messages := logger.messages()
		assert.Contains(t, messages, "HTTP Request")
		assert.Contains(t, messages, "HTTP Response")
	})

	t.Run("debug per request", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		logger := &MockLogger{}
		client := jirahttp.NewClient(jirahttp.WithLogger(logger), jirahttp.WithUserAgent("custom/2"))

		_, err := client.SendRequest(context.Background(), &jira.Request{Path: "/", BaseURL: server.URL})
		require.NoError(t, err)
		assert.NotContains(t, logger.messages(), "HTTP Request")

		_, err = client.SendRequest(context.Background(), &jira.Request{Path: "/", BaseURL: server.URL, Debug: true})
		require.NoError(t, err)
		assert.Contains(t, logger.messages(), "HTTP Request")
	})
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestClient_RetryLogic(t *testing.T) {
	t.Parallel()
	t.Run("retries on 5xx errors", func(t *testing.T) {
		t.Parallel()

		var attempts atomic.Int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			if attempts.Add(1) < 3 {
				writer.WriteHeader(http.StatusInternalServerError)
			} else {
				writer.WriteHeader(http.StatusOK)
			}
		}))
		defer server.Close()

		client := jirahttp.NewClient(jirahttp.WithRetryConfig(3, 10*time.Millisecond, 100*time.Millisecond))

		_, err := client.SendRequest(context.Background(), &jira.Request{Path: "/test", BaseURL: server.URL})
		require.NoError(t, err)
		assert.Equal(t, int32(3), attempts.Load())
	})

	t.Run("retries on rate limiting", func(t *testing.T) {
		t.Parallel()

		var attempts atomic.Int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			if attempts.Add(1) < 2 {
				writer.WriteHeader(http.StatusTooManyRequests)
			} else {
				writer.WriteHeader(http.StatusOK)
			}
		}))
		defer server.Close()

		client := jirahttp.NewClient(jirahttp.WithRetryConfig(3, 10*time.Millisecond, 100*time.Millisecond))

		_, err := client.SendRequest(context.Background(), &jira.Request{Path: "/test", BaseURL: server.URL})
		require.NoError(t, err)
		assert.Equal(t, int32(2), attempts.Load())
	})

	t.Run("gives up with the last response", func(t *testing.T) {
		t.Parallel()

		var attempts atomic.Int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			attempts.Add(1)
			writer.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		client := jirahttp.NewClient(jirahttp.WithRetryConfig(2, time.Millisecond, 5*time.Millisecond))

		_, err := client.SendRequest(context.Background(), &jira.Request{Path: "/test", BaseURL: server.URL})

		respErr := &jira.ResponseError{}
		require.ErrorAs(t, err, &respErr)
		assert.Equal(t, http.StatusServiceUnavailable, respErr.StatusCode)
		assert.Equal(t, int32(3), attempts.Load())
	})

	t.Run("does not retry on client errors", func(t *testing.T) {
		t.Parallel()

		var attempts atomic.Int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			attempts.Add(1)
			writer.WriteHeader(http.StatusBadRequest)
		}))
		defer server.Close()

		client := jirahttp.NewClient(jirahttp.WithRetryConfig(3, 10*time.Millisecond, 100*time.Millisecond))

		_, err := client.SendRequest(context.Background(), &jira.Request{Path: "/test", BaseURL: server.URL})
		require.Error(t, err)
		assert.Equal(t, int32(1), attempts.Load())
	})
}
