package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"shopadmin/internal/domain"
	"shopadmin/internal/store"
)

const undefinedTable = "42P01"

const schema = `create table if not exists session_store (
	key        text primary key,
	value      text not null,
	updated_at timestamptz not null default now()
)`

type Store struct {
	db     *sql.DB
	sealer store.Sealer
}

func NewStore(databaseURL string, sealer store.Sealer) (*Store, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	s := NewStoreWithDB(db, sealer)
	if err := s.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewStoreWithDB wraps an existing handle; the caller owns its lifecycle.
func NewStoreWithDB(db *sql.DB, sealer store.Sealer) *Store {
	return &Store{db: db, sealer: sealer}
}

func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create session_store: %w", err)
	}
	return nil
}

func (s *Store) Load(ctx context.Context, key string) (domain.Credentials, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `select value from session_store where key = $1`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) || isUndefinedTable(err) {
		return domain.Credentials{}, store.ErrNotFound
	}
	if err != nil {
		return domain.Credentials{}, fmt.Errorf("load session %s: %w", key, err)
	}
	return store.Decode(value, s.sealer)
}

// Save upserts the whole credential document in one statement.
func (s *Store) Save(ctx context.Context, key string, creds domain.Credentials) error {
	value, err := store.Encode(creds, s.sealer)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`insert into session_store(key, value, updated_at) values ($1, $2, now())
		 on conflict (key) do update
		 set value = excluded.value,
		     updated_at = excluded.updated_at`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("save session %s: %w", key, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `delete from session_store where key = $1`, key)
	if err != nil && !isUndefinedTable(err) {
		return fmt.Errorf("delete session %s: %w", key, err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func isUndefinedTable(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == undefinedTable
}
