package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/fivetwenty-io/jira-client/internal/constants"
	"github.com/fivetwenty-io/jira-client/pkg/jira"
)

// Metadata kinds, also used as cache key suffixes.
const (
	metadataFields      = "fields"
	metadataPriorities  = "priorities"
	metadataStatuses    = "statuses"
	metadataResolutions = "resolutions"
)

var metadataPaths = map[string]string{
	metadataFields:      "/rest/api/2/field",
	metadataPriorities:  "/rest/api/2/priority",
	metadataStatuses:    "/rest/api/2/status",
	metadataResolutions: "/rest/api/2/resolution",
}

func metadataPrefix(endpoint string) string {
	return endpoint + constants.MetadataKeySeparator
}

// MetadataClient implements jira.MetadataClient on top of the client cache.
type MetadataClient struct {
	client *Client
}

// NewMetadataClient creates a new metadata client.
func NewMetadataClient(client *Client) *MetadataClient {
	return &MetadataClient{client: client}
}

// Fields implements jira.MetadataClient.Fields.
func (m *MetadataClient) Fields(ctx context.Context) (map[string]jira.Payload, error) {
	return m.definitions(ctx, metadataFields)
}

// Priorities implements jira.MetadataClient.Priorities.
func (m *MetadataClient) Priorities(ctx context.Context) (map[string]jira.Payload, error) {
	return m.definitions(ctx, metadataPriorities)
}

// Statuses implements jira.MetadataClient.Statuses.
func (m *MetadataClient) Statuses(ctx context.Context) (map[string]jira.Payload, error) {
	return m.definitions(ctx, metadataStatuses)
}

// Resolutions implements jira.MetadataClient.Resolutions.
func (m *MetadataClient) Resolutions(ctx context.Context) (map[string]jira.Payload, error) {
	return m.definitions(ctx, metadataResolutions)
}

// definitions returns one dictionary, fetching it when the cache has no copy
// for the current endpoint.
func (m *MetadataClient) definitions(ctx context.Context, kind string) (map[string]jira.Payload, error) {
	c := m.client

	c.metadataMutex.Lock()
	defer c.metadataMutex.Unlock()

	key := metadataPrefix(c.Endpoint()) + kind

	data, err := c.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, jira.ErrCacheMiss) && !errors.Is(err, jira.ErrCacheDisabled) {
			c.logger.Warn("Metadata cache read failed", map[string]interface{}{
				"key":   key,
				"error": err.Error(),
			})
		}

		data, err = c.send(ctx, jira.MethodGet, metadataPaths[kind], nil, false, false)
		if err != nil {
			return nil, fmt.Errorf("fetching %s: %w", kind, err)
		}

		setErr := c.cache.Set(ctx, key, data)
		if setErr != nil {
			c.logger.Warn("Metadata cache write failed", map[string]interface{}{
				"key":   key,
				"error": setErr.Error(),
			})
		}
	}

	definitions, err := indexByID(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", kind, err)
	}

	return definitions, nil
}

// indexByID maps a JSON array of definitions by their id member.
func indexByID(data []byte) (map[string]jira.Payload, error) {
	definitions := make(map[string]jira.Payload)

	if len(data) == 0 {
		return definitions, nil
	}

	value, err := jira.ParseValue(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", jira.ErrDecodeResponse, err)
	}

	if value.IsEmpty() {
		return definitions, nil
	}

	items, ok := value.Array()
	if !ok {
		return nil, fmt.Errorf("%w: expected an array, got %s", jira.ErrUnexpectedPayload, value.Kind())
	}

	for _, item := range items {
		record, ok := item.Object()
		if !ok {
			continue
		}

		id := record.Get("id").Text()
		if id == "" {
			continue
		}

		definitions[id] = record
	}

	return definitions, nil
}
