package jira

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// Static errors for err113 compliance.
var (
	ErrUnauthorized          = errors.New("unauthorized")
	ErrForbidden             = errors.New("forbidden")
	ErrNotFound              = errors.New("not found")
	ErrConfigRequired        = errors.New("config is required")
	ErrEndpointRequired      = errors.New("endpoint is required")
	ErrDecodeResponse        = errors.New("decoding response")
	ErrWalkerNotInitialized  = errors.New("walker not initialized: call Push(query, fields) first")
	ErrNotCallable           = errors.New("passed argument is not callable")
	ErrCacheMiss             = errors.New("key not found in cache")
	ErrCacheDisabled         = errors.New("cache disabled")
	ErrNATSConfigRequired    = errors.New("NATS configuration required for NATS cache")
	ErrUnsupportedCacheType  = errors.New("unsupported cache type")
	ErrUnexpectedPayload     = errors.New("unexpected payload shape")
	ErrIdentifierRequired    = errors.New("identifier is required")
	ErrUnsupportedCredential = errors.New("unsupported credential configuration")
)

// ResponseError is returned by the transport when Jira answers with a status
// of 400 or above. Jira reports problems as
//
//	{"errorMessages": ["..."], "errors": {"field": "..."}}
//
// and both parts are kept.
type ResponseError struct {
	StatusCode    int               `json:"-"`
	ErrorMessages []string          `json:"errorMessages"`
	Errors        map[string]string `json:"errors"`
	Body          string            `json:"-"`
}

// NewResponseError builds a ResponseError from a status code and raw body.
// Bodies that are not Jira error envelopes are kept verbatim.
func NewResponseError(statusCode int, body []byte) *ResponseError {
	respErr := &ResponseError{StatusCode: statusCode}

	if len(body) > 0 {
		err := json.Unmarshal(body, respErr)
		if err != nil {
			respErr.ErrorMessages = nil
			respErr.Errors = nil
		}

		respErr.Body = string(body)
	}

	return respErr
}

// Error implements the error interface.
func (e *ResponseError) Error() string {
	messages := make([]string, 0, len(e.ErrorMessages)+len(e.Errors))
	messages = append(messages, e.ErrorMessages...)

	fields := make([]string, 0, len(e.Errors))
	for field := range e.Errors {
		fields = append(fields, field)
	}

	sort.Strings(fields)

	for _, field := range fields {
		messages = append(messages, field+": "+e.Errors[field])
	}

	status := http.StatusText(e.StatusCode)
	if status == "" {
		status = "unknown status"
	}

	if len(messages) == 0 {
		return fmt.Sprintf("jira: HTTP %d %s", e.StatusCode, status)
	}

	return fmt.Sprintf("jira: HTTP %d %s: %s", e.StatusCode, status, strings.Join(messages, "; "))
}

// Is lets errors.Is match a ResponseError against the status sentinels.
func (e *ResponseError) Is(target error) bool {
	switch {
	case errors.Is(target, ErrUnauthorized):
		return e.StatusCode == http.StatusUnauthorized
	case errors.Is(target, ErrForbidden):
		return e.StatusCode == http.StatusForbidden
	case errors.Is(target, ErrNotFound):
		return e.StatusCode == http.StatusNotFound
	default:
		return false
	}
}

// FirstMessage returns the first error message, or "".
func (e *ResponseError) FirstMessage() string {
	if len(e.ErrorMessages) > 0 {
		return e.ErrorMessages[0]
	}

	return ""
}

// IsUnauthorized checks if the error is an authentication failure.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// IsForbidden checks if the error is an authorization failure.
func IsForbidden(err error) bool {
	return errors.Is(err, ErrForbidden)
}

// IsNotFound checks if the error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
