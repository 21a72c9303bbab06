package storage

import (
	"context"
	"path/filepath"
	"testing"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/slotlist/slotlist/frontend/go-client/internal/config"
	"github.com/stretchr/testify/require"
)

// exerciseStore runs the behaviour every backend must share.
func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	_, err := s.Get(ctx, KeyToken)
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Set(ctx, KeyToken, []byte("abc.def.ghi")))
	v, err := s.Get(ctx, KeyToken)
	require.NoError(t, err)
	require.Equal(t, "abc.def.ghi", string(v))

	require.NoError(t, s.Set(ctx, KeyToken, []byte("second")))
	v, err = s.Get(ctx, KeyToken)
	require.NoError(t, err)
	require.Equal(t, "second", string(v))

	require.NoError(t, SetJSON(ctx, s, KeyDecodedToken, map[string]any{"exp": 42}))
	var decoded map[string]any
	require.NoError(t, GetJSON(ctx, s, KeyDecodedToken, &decoded))
	require.EqualValues(t, 42, decoded["exp"])

	require.NoError(t, s.Remove(ctx, KeyToken))
	require.NoError(t, s.Remove(ctx, KeyToken))
	_, err = s.Get(ctx, KeyToken)
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Set(ctx, KeyRedirect, []byte("/communities/foo")))
	require.NoError(t, s.Clear(ctx))
	_, err = s.Get(ctx, KeyRedirect)
	require.ErrorIs(t, err, ErrNotFound)
	_, err = s.Get(ctx, KeyDecodedToken)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	exerciseStore(t, s)
	require.Equal(t, 0, s.Len())
}

func TestFileStore(t *testing.T) {
	s, err := NewFileStore(filepath.Join(t.TempDir(), "nested", "storage.json"), "")
	require.NoError(t, err)
	exerciseStore(t, s)
}

func TestFileStore_NamespacesAndPersistence(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "storage.json")

	a, err := NewFileStore(path, "a")
	require.NoError(t, err)
	b, err := NewFileStore(path, "b")
	require.NoError(t, err)

	require.NoError(t, a.Set(ctx, KeyToken, []byte("token-a")))
	require.NoError(t, b.Set(ctx, KeyToken, []byte("token-b")))
	require.NoError(t, a.Clear(ctx))

	v, err := b.Get(ctx, KeyToken)
	require.NoError(t, err)
	require.Equal(t, "token-b", string(v))

	// a fresh handle on the same file sees the persisted value
	again, err := NewFileStore(path, "b")
	require.NoError(t, err)
	v, err = again.Get(ctx, KeyToken)
	require.NoError(t, err)
	require.Equal(t, "token-b", string(v))
}

func TestSQLiteStore(t *testing.T) {
	s, err := OpenSQL(context.Background(), DialectSQLite, filepath.Join(t.TempDir(), "storage.db"), "", "")
	require.NoError(t, err)
	defer s.Close()
	exerciseStore(t, s)
}

func TestSQLiteStore_Namespaces(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "storage.db")
	a, err := OpenSQL(ctx, DialectSQLite, dsn, "kv", "a")
	require.NoError(t, err)
	defer a.Close()
	require.NoError(t, a.Set(ctx, KeyToken, []byte("token-a")))
	require.NoError(t, a.Close())

	b, err := OpenSQL(ctx, DialectSQLite, dsn, "kv", "b")
	require.NoError(t, err)
	defer b.Close()
	require.NoError(t, b.Clear(ctx))
	_, err = b.Get(ctx, KeyToken)
	require.ErrorIs(t, err, ErrNotFound)

	a2, err := OpenSQL(ctx, DialectSQLite, dsn, "kv", "a")
	require.NoError(t, err)
	defer a2.Close()
	v, err := a2.Get(ctx, KeyToken)
	require.NoError(t, err)
	require.Equal(t, "token-a", string(v))
}

func TestOpenSQL_RejectsBadTable(t *testing.T) {
	_, err := OpenSQL(context.Background(), DialectSQLite, filepath.Join(t.TempDir(), "x.db"), "kv; DROP TABLE x", "")
	require.Error(t, err)
}

func TestRedisStore(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()

	s, err := NewRedisStore(redis.NewClient(&redis.Options{Addr: m.Addr()}), "")
	require.NoError(t, err)
	defer s.Close()
	exerciseStore(t, s)
}

func TestRedisStore_ClearKeepsOtherNamespaces(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()
	ctx := context.Background()

	require.NoError(t, m.Set("other:auth-token", "keep"))
	s, err := NewRedisStore(redis.NewClient(&redis.Options{Addr: m.Addr()}), "slotlist")
	require.NoError(t, err)
	for i := 0; i < 250; i++ {
		require.NoError(t, s.Set(ctx, "k"+string(rune('a'+i%26))+string(rune('a'+i/26)), []byte("v")))
	}
	require.NoError(t, s.Clear(ctx))

	require.Equal(t, []string{"other:auth-token"}, m.Keys())
}

func TestRedisStore_ClearKeepsPrefixedNamespaces(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()
	ctx := context.Background()

	require.NoError(t, m.Set("app2:auth-token", "keep"))
	require.NoError(t, m.Set("app-x:auth-token", "keep"))
	s, err := NewRedisStore(redis.NewClient(&redis.Options{Addr: m.Addr()}), "app")
	require.NoError(t, err)
	defer s.Close()
	require.NoError(t, s.Set(ctx, KeyToken, []byte("t")))

	require.NoError(t, s.Clear(ctx))
	require.Equal(t, []string{"app-x:auth-token", "app2:auth-token"}, m.Keys())
}

func TestNamespaceValidation(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()
	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	defer client.Close()

	ns, err := CheckNamespace("")
	require.NoError(t, err)
	require.Equal(t, DefaultNamespace, ns)

	for _, bad := range []string{"app:other", "a*", "a/b", "x[y]", "a?", "a b"} {
		_, err := NewRedisStore(client, bad)
		require.Error(t, err, bad)

		_, err = NewMinIOStore(context.Background(), config.MinIOConfig{Endpoint: "localhost:9000", Bucket: "b"}, bad)
		require.Error(t, err, bad)

		cfg := &config.Config{}
		cfg.Storage.Backend = "memory"
		cfg.Storage.Namespace = bad
		_, err = Open(context.Background(), cfg)
		require.Error(t, err, bad)
	}
	require.Empty(t, m.Keys())
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	cfg := &config.Config{}
	cfg.Storage.Backend = "memory"
	s, err := Open(ctx, cfg)
	require.NoError(t, err)
	require.IsType(t, &MemoryStore{}, s)

	cfg.Storage.Backend = "FILE"
	cfg.Storage.Path = filepath.Join(dir, "storage.json")
	s, err = Open(ctx, cfg)
	require.NoError(t, err)
	require.IsType(t, &FileStore{}, s)

	cfg.Storage.Backend = "sqlite"
	cfg.SQL.DSN = filepath.Join(dir, "storage.db")
	s, err = Open(ctx, cfg)
	require.NoError(t, err)
	require.IsType(t, &SQLStore{}, s)
	require.NoError(t, s.Close())

	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()
	cfg.Storage.Backend = "redis"
	cfg.Redis.Host = m.Host()
	cfg.Redis.Port = m.Port()
	s, err = Open(ctx, cfg)
	require.NoError(t, err)
	require.IsType(t, &RedisStore{}, s)
	require.NoError(t, s.Close())

	cfg.Storage.Backend = "mongo"
	_, err = Open(ctx, cfg)
	require.Error(t, err)

	cfg.Storage.Backend = "minio"
	_, err = Open(ctx, cfg)
	require.Error(t, err)

	cfg.Storage.Backend = "floppy"
	_, err = Open(ctx, cfg)
	require.Error(t, err)
}
