package backend

import (
	"context"
	"fmt"
	"io"

	"github.com/dyluth/coursecat/internal/config"
	"github.com/dyluth/coursecat/internal/mongostore"
	"github.com/dyluth/coursecat/internal/sqlitestore"
	"github.com/dyluth/coursecat/pkg/catalog"
	"github.com/redis/go-redis/v9"
)

// Store is a catalog store backend.
type Store interface {
	io.Closer
	Ping(ctx context.Context) error
	ListYearDocuments(ctx context.Context) ([]*catalog.YearDocument, error)
	PutYearDocument(ctx context.Context, d *catalog.YearDocument) error
	DeleteYearDocument(ctx context.Context, id string) error
}

var (
	_ Store = (*catalog.Client)(nil)
	_ Store = (*mongostore.Store)(nil)
	_ Store = (*sqlitestore.Store)(nil)
)

// Open connects to the backend selected by cfg.Store.Backend and verifies it
// is reachable. The caller owns the returned store and must Close it.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	schema := cfg.CatalogSchema()

	switch cfg.Store.Backend {
	case config.BackendRedis:
		return openRedis(ctx, cfg.Store.Redis, schema)

	case config.BackendMongo:
		m := cfg.Store.Mongo
		return mongostore.Connect(ctx, m.URI, m.Database, m.Collection, schema)

	case config.BackendSQLite:
		return sqlitestore.Open(cfg.Store.SQLite.Path, schema)

	default:
		return nil, fmt.Errorf("unknown store backend: %s", cfg.Store.Backend)
	}
}

func openRedis(ctx context.Context, rc *config.RedisConfig, schema catalog.Schema) (Store, error) {
	redisOpts, err := redis.ParseURL(rc.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid Redis URL: %w", err)
	}

	client, err := catalog.NewClient(redisOpts, rc.Namespace, schema)
	if err != nil {
		return nil, fmt.Errorf("failed to create catalog client: %w", err)
	}

	if err := client.Ping(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("Redis not accessible: %w", err)
	}

	return client, nil
}
