package redis

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"testing"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopadmin/internal/domain"
	"shopadmin/internal/store"
)

// mapHook answers GET, SET and DEL from a map so no server is needed.
type mapHook struct {
	mu   sync.Mutex
	data map[string]string
	fail error
}

func (h *mapHook) DialHook(next goredis.DialHook) goredis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		return nil, errors.New("dial disabled in tests")
	}
}

func (h *mapHook) ProcessPipelineHook(next goredis.ProcessPipelineHook) goredis.ProcessPipelineHook {
	return next
}

func (h *mapHook) ProcessHook(next goredis.ProcessHook) goredis.ProcessHook {
	return func(ctx context.Context, cmd goredis.Cmder) error {
		h.mu.Lock()
		defer h.mu.Unlock()
		if h.fail != nil {
			cmd.SetErr(h.fail)
			return h.fail
		}
		args := cmd.Args()
		key := fmt.Sprint(args[1])
		switch strings.ToLower(cmd.Name()) {
		case "get":
			v, ok := h.data[key]
			if !ok {
				cmd.SetErr(goredis.Nil)
				return goredis.Nil
			}
			cmd.(*goredis.StringCmd).SetVal(v)
		case "set":
			h.data[key] = fmt.Sprint(args[2])
			cmd.(*goredis.StatusCmd).SetVal("OK")
		case "del":
			_, ok := h.data[key]
			delete(h.data, key)
			if ok {
				cmd.(*goredis.IntCmd).SetVal(1)
			}
		default:
			err := fmt.Errorf("unexpected command %s", cmd.Name())
			cmd.SetErr(err)
			return err
		}
		return nil
	}
}

func newMapStore(t *testing.T) (*Store, *mapHook) {
	t.Helper()
	hook := &mapHook{data: make(map[string]string)}
	rdb := goredis.NewClient(&goredis.Options{Addr: "localhost:0"})
	rdb.AddHook(hook)
	t.Cleanup(func() { _ = rdb.Close() })
	return NewStoreWithClient(rdb, nil), hook
}

func TestLoadMissingKeyIsNotFound(t *testing.T) {
	s, _ := newMapStore(t)

	_, err := s.Load(context.Background(), domain.SessionKey)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestSaveLoadDeleteUsesPrefixedKey(t *testing.T) {
	s, hook := newMapStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, domain.SessionKey, domain.Credentials{AccessToken: "a1", RefreshToken: "r1"}))
	assert.Contains(t, hook.data, keyPrefix+domain.SessionKey)

	creds, err := s.Load(ctx, domain.SessionKey)
	require.NoError(t, err)
	assert.Equal(t, "a1", creds.AccessToken)
	assert.Equal(t, "r1", creds.RefreshToken)

	require.NoError(t, s.Delete(ctx, domain.SessionKey))
	_, err = s.Load(ctx, domain.SessionKey)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestLoadBackendErrorIsNotNotFound(t *testing.T) {
	s, hook := newMapStore(t)
	hook.fail = errors.New("connection reset")

	_, err := s.Load(context.Background(), domain.SessionKey)
	require.Error(t, err)
	assert.NotErrorIs(t, err, store.ErrNotFound)
	assert.Contains(t, err.Error(), "connection reset")
}
