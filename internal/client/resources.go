package client

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/jira-client/pkg/jira"
)

// caller is the part of Client the resource clients depend on.
type caller interface {
	API(ctx context.Context, method, path string, params jira.Params) (jira.Value, error)
}

// pageParams builds the common paging parameters.
func pageParams(startAt, maxResults int) jira.Params {
	return jira.Params{
		"startAt":    max(startAt, 0),
		"maxResults": maxResults,
	}
}

// singleRecord returns the object held by value. An empty value is not an
// error and yields nil.
func singleRecord(value jira.Value) (jira.Payload, error) {
	if value.IsEmpty() {
		return nil, nil //nolint:nilnil // empty response means no result
	}

	record, ok := value.Object()
	if !ok {
		return nil, fmt.Errorf("%w: expected an object, got %s", jira.ErrUnexpectedPayload, value.Kind())
	}

	return record, nil
}
