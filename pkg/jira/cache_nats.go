package jira

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/fivetwenty-io/jira-client/internal/constants"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// NATSKVConfig configures the NATS JetStream key-value cache.
type NATSKVConfig struct {
	// URL of the NATS server, e.g. "nats://127.0.0.1:4222". Ignored when Conn
	// is set.
	URL string

	// Bucket name; defaults to "jira_metadata".
	Bucket string

	// Conn reuses an existing connection. The cache does not close it.
	Conn *nats.Conn
}

// NATSKVCache is a MetadataCache stored in a JetStream key-value bucket.
//
// Cache keys contain URL characters that the bucket rejects, so they are
// stored base64url encoded.
type NATSKVCache struct {
	conn    *nats.Conn
	ownConn bool
	kv      jetstream.KeyValue
}

// NewNATSKVCache connects to NATS and opens (or creates) the bucket.
func NewNATSKVCache(ctx context.Context, config *NATSKVConfig) (*NATSKVCache, error) {
	if config == nil {
		return nil, ErrNATSConfigRequired
	}

	conn := config.Conn
	ownConn := false

	if conn == nil {
		var err error

		conn, err = nats.Connect(config.URL,
			nats.Name("jira-client"),
			nats.Timeout(constants.NATSConnectTimeout),
		)
		if err != nil {
			return nil, fmt.Errorf("connecting to NATS: %w", err)
		}

		ownConn = true
	}

	js, err := jetstream.New(conn)
	if err != nil {
		if ownConn {
			conn.Close()
		}

		return nil, fmt.Errorf("creating JetStream context: %w", err)
	}

	bucket := config.Bucket
	if bucket == "" {
		bucket = constants.DefaultCacheBucket
	}

	kv, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      bucket,
		Description: "Jira endpoint metadata",
	})
	if err != nil {
		if ownConn {
			conn.Close()
		}

		return nil, fmt.Errorf("opening key-value bucket %s: %w", bucket, err)
	}

	return &NATSKVCache{conn: conn, ownConn: ownConn, kv: kv}, nil
}

func encodeKey(key string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(key))
}

func decodeKey(stored string) (string, bool) {
	raw, err := base64.RawURLEncoding.DecodeString(stored)
	if err != nil {
		return "", false
	}

	return string(raw), true
}

// Get returns the data stored under key.
func (c *NATSKVCache) Get(ctx context.Context, key string) ([]byte, error) {
	entry, err := c.kv.Get(ctx, encodeKey(key))
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrCacheMiss, key)
		}

		return nil, fmt.Errorf("reading cache key %s: %w", key, err)
	}

	return entry.Value(), nil
}

// Set stores data under key.
func (c *NATSKVCache) Set(ctx context.Context, key string, data []byte) error {
	_, err := c.kv.Put(ctx, encodeKey(key), data)
	if err != nil {
		return fmt.Errorf("writing cache key %s: %w", key, err)
	}

	return nil
}

// Delete removes key.
func (c *NATSKVCache) Delete(ctx context.Context, key string) error {
	err := c.kv.Delete(ctx, encodeKey(key))
	if err != nil && !errors.Is(err, jetstream.ErrKeyNotFound) {
		return fmt.Errorf("deleting cache key %s: %w", key, err)
	}

	return nil
}

// Clear purges every key starting with prefix.
func (c *NATSKVCache) Clear(ctx context.Context, prefix string) error {
	keys, err := c.kv.Keys(ctx)
	if err != nil {
		if errors.Is(err, jetstream.ErrNoKeysFound) {
			return nil
		}

		return fmt.Errorf("listing cache keys: %w", err)
	}

	for _, stored := range keys {
		key, ok := decodeKey(stored)
		if !ok || !strings.HasPrefix(key, prefix) {
			continue
		}

		err = c.kv.Purge(ctx, stored)
		if err != nil {
			return fmt.Errorf("purging cache key %s: %w", key, err)
		}
	}

	return nil
}

// Close closes the connection if the cache opened it. A connection passed in
// through NATSKVConfig.Conn stays open.
func (c *NATSKVCache) Close() error {
	if c.ownConn && c.conn != nil && !c.conn.IsClosed() {
		c.conn.Close()
	}

	return nil
}
