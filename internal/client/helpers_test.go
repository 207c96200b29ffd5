package client_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	. "github.com/fivetwenty-io/jira-client/internal/client"
	"github.com/fivetwenty-io/jira-client/pkg/jira"
	"github.com/stretchr/testify/require"
)

// recordedRequest is one request seen by a fakeJira server.
type recordedRequest struct {
	Method string
	Path   string
	Query  url.Values
	User   string
}

// fakeJira routes requests by path to canned JSON bodies and records them.
type fakeJira struct {
	mu       sync.Mutex
	routes   map[string]func(query url.Values) (int, string)
	requests []recordedRequest
	server   *httptest.Server
}

func newFakeJira(t *testing.T) *fakeJira {
	t.Helper()

	fake := &fakeJira{routes: make(map[string]func(url.Values) (int, string))}
	fake.server = httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		user, _, _ := request.BasicAuth()

		fake.mu.Lock()
		fake.requests = append(fake.requests, recordedRequest{
			User:   user,
			Method: request.Method,
			Path:   request.URL.Path,
			Query:  request.URL.Query(),
		})
		handler, ok := fake.routes[request.URL.Path]
		fake.mu.Unlock()

		if !ok {
			writer.WriteHeader(http.StatusNotFound)
			_, _ = writer.Write([]byte(`{"errorMessages":["no route"],"errors":{}}`))

			return
		}

		status, body := handler(request.URL.Query())
		writer.Header().Set("Content-Type", "application/json")
		writer.WriteHeader(status)
		_, _ = writer.Write([]byte(body))
	}))
	t.Cleanup(fake.server.Close)

	return fake
}

func (f *fakeJira) handle(path string, handler func(url.Values) (int, string)) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.routes[path] = handler
}

func (f *fakeJira) respond(path, body string) {
	f.handle(path, func(url.Values) (int, string) { return http.StatusOK, body })
}

func (f *fakeJira) count(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := 0

	for _, req := range f.requests {
		if req.Path == path {
			n++
		}
	}

	return n
}

func (f *fakeJira) last(path string) recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i := len(f.requests) - 1; i >= 0; i-- {
		if f.requests[i].Path == path {
			return f.requests[i]
		}
	}

	return recordedRequest{}
}

// newTestClient creates a client for the fake server. Only 4xx statuses are
// served, so the default retry policy never waits.
func newTestClient(t *testing.T, fake *fakeJira, opts ...func(*jira.Config)) *Client {
	t.Helper()

	config := &jira.Config{
		Endpoint: fake.server.URL + "/",
		Username: "jane",
		Password: "secret",
	}

	for _, opt := range opts {
		opt(config)
	}

	client, err := New(context.Background(), config)
	require.NoError(t, err)

	return client
}
