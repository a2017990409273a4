package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Client provides namespace-scoped Redis operations for the course catalog.
// All keys are automatically namespaced with the namespace name.
// The client is thread-safe and can be used concurrently from multiple goroutines.
type Client struct {
	rdb       *redis.Client
	namespace string
	schema    Schema
	now       func() time.Time
}

// NewClient creates a new catalog client for the specified namespace.
//
// Parameters:
//   - redisOpts: Redis connection options (address, password, DB, etc.)
//   - namespace: catalog identifier (must not be empty)
//   - schema: slot labels used for hash fields
//
// Returns an error if namespace is empty or the schema is invalid.
func NewClient(redisOpts *redis.Options, namespace string, schema Schema) (*Client, error) {
	if namespace == "" {
		return nil, fmt.Errorf("namespace cannot be empty")
	}
	if err := schema.Validate(); err != nil {
		return nil, err
	}

	return &Client{
		rdb:       redis.NewClient(redisOpts),
		namespace: namespace,
		schema:    schema,
		now:       time.Now,
	}, nil
}

// Close closes the Redis connection. Implements io.Closer.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Ping verifies Redis connectivity. Useful for health checks.
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Schema returns the slot labels this client reads and writes.
func (c *Client) Schema() Schema {
	return c.schema
}

// PutYearDocument creates or replaces a document and stamps its timestamps.
// CreatedAt is preserved when the document already exists.
// The document is appended to the namespace index on first write, scored by a
// per-namespace sequence so listing follows write order.
func (c *Client) PutYearDocument(ctx context.Context, d *YearDocument) error {
	if err := d.Validate(); err != nil {
		return fmt.Errorf("invalid document: %w", err)
	}

	key := DocumentKey(c.namespace, d.ID)

	// Keep the original creation time on replace
	if d.CreatedAt.IsZero() {
		existing, err := c.rdb.HGet(ctx, key, hashCreatedAt).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return fmt.Errorf("failed to read existing document: %w", err)
		}
		d.CreatedAt = fromMillis(existing)
	}
	d.Touch(c.now())

	hash, err := c.schema.DocumentToHash(d)
	if err != nil {
		return fmt.Errorf("failed to serialize document: %w", err)
	}

	// Replaced documents keep their index position
	var seq int64
	err = c.rdb.ZScore(ctx, IndexKey(c.namespace), d.ID).Err()
	switch {
	case errors.Is(err, redis.Nil):
		seq, err = c.rdb.Incr(ctx, SeqKey(c.namespace)).Result()
		if err != nil {
			return fmt.Errorf("failed to allocate index position: %w", err)
		}
	case err != nil:
		return fmt.Errorf("failed to read document index: %w", err)
	}

	_, err = c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, hash)
		if seq > 0 {
			pipe.ZAddNX(ctx, IndexKey(c.namespace), redis.Z{
				Score:  float64(seq),
				Member: d.ID,
			})
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to write document to Redis: %w", err)
	}

	return nil
}

// GetYearDocument retrieves a document by ID.
// Returns (nil, redis.Nil) if the document doesn't exist.
// Use IsNotFound() to check for not-found errors.
func (c *Client) GetYearDocument(ctx context.Context, id string) (*YearDocument, error) {
	hashData, err := c.rdb.HGetAll(ctx, DocumentKey(c.namespace, id)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read document from Redis: %w", err)
	}

	// HGetAll returns an empty map for non-existent keys
	if len(hashData) == 0 {
		return nil, redis.Nil
	}

	d, err := c.schema.HashToDocument(hashData)
	if err != nil {
		return nil, fmt.Errorf("failed to deserialize document %s: %w", id, err)
	}

	return d, nil
}

// ListYearDocuments returns every document in the namespace in first-write order.
// Index entries whose hash has disappeared are skipped.
func (c *Client) ListYearDocuments(ctx context.Context) ([]*YearDocument, error) {
	ids, err := c.rdb.ZRange(ctx, IndexKey(c.namespace), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read document index: %w", err)
	}

	docs := make([]*YearDocument, 0, len(ids))
	for _, id := range ids {
		d, err := c.GetYearDocument(ctx, id)
		if err != nil {
			if IsNotFound(err) {
				continue
			}
			return nil, err
		}
		docs = append(docs, d)
	}

	return docs, nil
}

// DeleteYearDocument removes a document and its index entry.
// Deleting a missing document is not an error.
func (c *Client) DeleteYearDocument(ctx context.Context, id string) error {
	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, DocumentKey(c.namespace, id))
		pipe.ZRem(ctx, IndexKey(c.namespace), id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	return nil
}

// IsNotFound returns true if the error is a Redis "key not found" error (redis.Nil).
func IsNotFound(err error) bool {
	return errors.Is(err, redis.Nil)
}
