package auth_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fivetwenty-io/jira-client/internal/auth"
	"github.com/fivetwenty-io/jira-client/pkg/jira"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

var errTokenEndpoint = errors.New("token endpoint down")

type failingSource struct{}

func (failingSource) Token() (*oauth2.Token, error) { return nil, errTokenEndpoint }

func newRequest(t *testing.T) *http.Request {
	t.Helper()

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, "https://jira.example.com/rest/api/2/myself", nil)
	require.NoError(t, err)

	return req
}

func TestBasic_Apply(t *testing.T) {
	t.Parallel()

	req := newRequest(t)
	require.NoError(t, (&auth.Basic{Username: "jane", Password: "secret"}).Apply(context.Background(), req))

	username, password, ok := req.BasicAuth()
	require.True(t, ok)
	assert.Equal(t, "jane", username)
	assert.Equal(t, "secret", password)
}

func TestBearer_Apply(t *testing.T) {
	t.Parallel()

	req := newRequest(t)
	require.NoError(t, (&auth.Bearer{Token: "pat-123"}).Apply(context.Background(), req))
	assert.Equal(t, "Bearer pat-123", req.Header.Get("Authorization"))
}

func TestAnonymous_Apply(t *testing.T) {
	t.Parallel()

	req := newRequest(t)
	require.NoError(t, auth.Anonymous{}.Apply(context.Background(), req))
	assert.Empty(t, req.Header.Get("Authorization"))
}

func TestOAuth2_Apply(t *testing.T) {
	t.Parallel()

	t.Run("static token", func(t *testing.T) {
		t.Parallel()

		req := newRequest(t)
		cred := auth.NewOAuth2(oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "access", TokenType: "Bearer"}))
		require.NoError(t, cred.Apply(context.Background(), req))
		assert.Equal(t, "Bearer access", req.Header.Get("Authorization"))
	})

	t.Run("source failure", func(t *testing.T) {
		t.Parallel()

		err := auth.NewOAuth2(failingSource{}).Apply(context.Background(), newRequest(t))
		require.ErrorIs(t, err, errTokenEndpoint)
	})

	t.Run("missing source", func(t *testing.T) {
		t.Parallel()

		err := (&auth.OAuth2{}).Apply(context.Background(), newRequest(t))
		require.ErrorIs(t, err, jira.ErrUnsupportedCredential)
	})

	t.Run("refreshes expired token", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/oauth/token", r.URL.Path)
			assert.NoError(t, r.ParseForm())
			assert.Equal(t, "refresh_token", r.Form.Get("grant_type"))
			assert.Equal(t, "old-refresh-token", r.Form.Get("refresh_token"))

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"access_token":"new-access-token","token_type":"bearer","expires_in":3600}`))
		}))
		defer server.Close()

		config := &oauth2.Config{
			ClientID: "cli",
			Endpoint: oauth2.Endpoint{TokenURL: server.URL + "/oauth/token"},
		}

		req := newRequest(t)
		cred := auth.NewOAuth2Refresh(context.Background(), config, "", "old-refresh-token")
		require.NoError(t, cred.Apply(context.Background(), req))
		assert.Equal(t, "Bearer new-access-token", req.Header.Get("Authorization"))
	})
}

func TestFromConfig(t *testing.T) {
	t.Parallel()

	custom := &auth.Bearer{Token: "explicit"}

	assert.Equal(t, custom, auth.FromConfig(&jira.Config{Credential: custom, Token: "ignored"}))
	assert.Equal(t, &auth.Bearer{Token: "pat"}, auth.FromConfig(&jira.Config{Token: "pat", Username: "ignored"}))
	assert.Equal(t, &auth.Basic{Username: "jane", Password: "pw"}, auth.FromConfig(&jira.Config{Username: "jane", Password: "pw"}))
	assert.Equal(t, auth.Anonymous{}, auth.FromConfig(&jira.Config{}))
	assert.Equal(t, auth.Anonymous{}, auth.FromConfig(nil))
}

type recordingPersister struct {
	tokens []string
	err    error
}

func (p *recordingPersister) PersistToken(_ string, token *oauth2.Token) error {
	p.tokens = append(p.tokens, token.AccessToken)

	return p.err
}

type sequenceSource struct {
	tokens []string
	calls  int
}

func (s *sequenceSource) Token() (*oauth2.Token, error) {
	token := s.tokens[min(s.calls, len(s.tokens)-1)]
	s.calls++

	return &oauth2.Token{AccessToken: token, Expiry: time.Now().Add(time.Hour)}, nil
}

func TestPersistingTokenSource(t *testing.T) {
	t.Parallel()

	t.Run("persists only new tokens", func(t *testing.T) {
		t.Parallel()

		persister := &recordingPersister{}
		source := auth.NewPersistingTokenSource(&sequenceSource{tokens: []string{"a", "a", "b", "b"}}, persister, "https://jira.example.com", "a", nil)

		for range 4 {
			_, err := source.Token()
			require.NoError(t, err)
		}

		assert.Equal(t, []string{"b"}, persister.tokens)
	})

	t.Run("reports persist errors without failing", func(t *testing.T) {
		t.Parallel()

		var reported []error

		source := auth.NewPersistingTokenSource(&sequenceSource{tokens: []string{"a"}}, nil, "", "", func(err error) {
			reported = append(reported, err)
		})

		token, err := source.Token()
		require.NoError(t, err)
		assert.Equal(t, "a", token.AccessToken)
		require.Len(t, reported, 1)
		require.ErrorIs(t, reported[0], auth.ErrNoTokenPersister)
	})

	t.Run("propagates source errors", func(t *testing.T) {
		t.Parallel()

		source := auth.NewPersistingTokenSource(failingSource{}, &recordingPersister{}, "", "", nil)

		_, err := source.Token()
		require.ErrorIs(t, err, errTokenEndpoint)
	})
}
