package auth

import (
	"errors"
	"fmt"
	"sync"

	"golang.org/x/oauth2"
)

// Static errors for err113 compliance.
var (
	ErrNoTokenPersister = errors.New("no token persister configured")
)

// TokenPersister stores refreshed OAuth2 tokens, e.g. in the CLI config file.
type TokenPersister interface {
	PersistToken(endpoint string, token *oauth2.Token) error
}

// PersistingTokenSource wraps a token source and hands every new token to a
// TokenPersister. Persist failures are reported through OnError and never fail
// the request.
type PersistingTokenSource struct {
	source    oauth2.TokenSource
	persister TokenPersister
	endpoint  string
	onError   func(error)

	mutex sync.Mutex
	last  string
}

// NewPersistingTokenSource creates a persisting source. initialAccessToken is
// the token already on record, which is not persisted again.
func NewPersistingTokenSource(source oauth2.TokenSource, persister TokenPersister, endpoint, initialAccessToken string, onError func(error)) *PersistingTokenSource {
	if onError == nil {
		onError = func(error) {}
	}

	return &PersistingTokenSource{
		source:    source,
		persister: persister,
		endpoint:  endpoint,
		onError:   onError,
		last:      initialAccessToken,
	}
}

// Token implements oauth2.TokenSource.
func (s *PersistingTokenSource) Token() (*oauth2.Token, error) {
	token, err := s.source.Token()
	if err != nil {
		return nil, err
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if token.AccessToken != s.last {
		persistErr := s.persist(token)
		if persistErr != nil {
			s.onError(persistErr)
		}

		s.last = token.AccessToken
	}

	return token, nil
}

func (s *PersistingTokenSource) persist(token *oauth2.Token) error {
	if s.persister == nil {
		return ErrNoTokenPersister
	}

	err := s.persister.PersistToken(s.endpoint, token)
	if err != nil {
		return fmt.Errorf("failed to persist token: %w", err)
	}

	return nil
}
