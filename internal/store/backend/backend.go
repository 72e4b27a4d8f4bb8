// Package backend opens the credential store selected by configuration.
package backend

import (
	"context"
	"fmt"
	"log/slog"

	"shopadmin/internal/config"
	"shopadmin/internal/security/secretbox"
	"shopadmin/internal/store"
	"shopadmin/internal/store/file"
	"shopadmin/internal/store/memory"
	"shopadmin/internal/store/postgres"
	"shopadmin/internal/store/redis"
)

// Open returns the store for cfg.StoreMode and a close func for its
// connections. Values are sealed when CREDENTIAL_ENCRYPTION_KEY is set.
func Open(ctx context.Context, cfg config.Config) (store.Store, func() error, error) {
	noop := func() error { return nil }

	var sealer store.Sealer
	if cfg.CredentialEncryptionKey != "" {
		box, err := secretbox.New(cfg.CredentialEncryptionKey)
		if err != nil {
			return nil, noop, err
		}
		sealer = box
	}

	switch cfg.StoreMode {
	case config.StoreMemory:
		return memory.NewStore(), noop, nil
	case config.StoreFile:
		slog.Debug("Using file credential store", "path", cfg.StateFile, "sealed", sealer != nil)
		return file.NewStore(cfg.StateFile, sealer), noop, nil
	case config.StorePostgres:
		st, err := postgres.NewStore(cfg.DatabaseURL, sealer)
		if err != nil {
			return nil, noop, fmt.Errorf("open postgres store: %w", err)
		}
		return st, st.Close, nil
	case config.StoreRedis:
		st, err := redis.NewStore(ctx, cfg.RedisURL, sealer)
		if err != nil {
			return nil, noop, fmt.Errorf("open redis store: %w", err)
		}
		return st, st.Close, nil
	default:
		return nil, noop, fmt.Errorf("unknown store mode %q", cfg.StoreMode)
	}
}
