package redis

import (
	"context"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"shopadmin/internal/domain"
	"shopadmin/internal/store"
)

const keyPrefix = "shopadmin:session:"

type Store struct {
	rdb    *goredis.Client
	sealer store.Sealer
}

// NewStore connects to redisURL (e.g. "redis://localhost:6379/0").
func NewStore(ctx context.Context, redisURL string, sealer store.Sealer) (*Store, error) {
	opts, err := goredis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	rdb := goredis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &Store{rdb: rdb, sealer: sealer}, nil
}

func NewStoreWithClient(rdb *goredis.Client, sealer store.Sealer) *Store {
	return &Store{rdb: rdb, sealer: sealer}
}

func (s *Store) Load(ctx context.Context, key string) (domain.Credentials, error) {
	value, err := s.rdb.Get(ctx, keyPrefix+key).Result()
	if errors.Is(err, goredis.Nil) {
		return domain.Credentials{}, store.ErrNotFound
	}
	if err != nil {
		return domain.Credentials{}, fmt.Errorf("load session %s: %w", key, err)
	}
	return store.Decode(value, s.sealer)
}

// Save writes the pair with a single SET.
func (s *Store) Save(ctx context.Context, key string, creds domain.Credentials) error {
	value, err := store.Encode(creds, s.sealer)
	if err != nil {
		return err
	}
	if err := s.rdb.Set(ctx, keyPrefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("save session %s: %w", key, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("delete session %s: %w", key, err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.rdb.Close()
}
