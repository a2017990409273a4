package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/dyluth/coursecat/internal/backend"
	"github.com/dyluth/coursecat/internal/config"
	"github.com/dyluth/coursecat/internal/printer"
)

// storeConnectTimeout bounds the initial connect and ping.
const storeConnectTimeout = 10 * time.Second

// openStore connects to the configured backend, printing a formatted error
// when it is unreachable.
func openStore(ctx context.Context, cfg *config.Config) (backend.Store, error) {
	ctx, cancel := context.WithTimeout(ctx, storeConnectTimeout)
	defer cancel()

	store, err := backend.Open(ctx, cfg)
	if err != nil {
		return nil, printer.ErrorWithContext(
			"store unavailable",
			fmt.Sprintf("Could not open the %s store.", cfg.Store.Backend),
			map[string]string{
				"Backend": cfg.Store.Backend,
				"Target":  storeTarget(cfg),
				"Error":   err.Error(),
			},
			[]string{
				"Check the store is running and reachable",
				"Override the address with REDIS_URL, MONGO_URI or SQLITE_PATH",
			},
		)
	}
	return store, nil
}

func storeTarget(cfg *config.Config) string {
	switch cfg.Store.Backend {
	case config.BackendMongo:
		return fmt.Sprintf("%s (%s.%s)", cfg.Store.Mongo.URI, cfg.Store.Mongo.Database, cfg.Store.Mongo.Collection)
	case config.BackendSQLite:
		return cfg.Store.SQLite.Path
	default:
		return fmt.Sprintf("%s (namespace %s)", cfg.Store.Redis.URL, cfg.Store.Redis.Namespace)
	}
}
