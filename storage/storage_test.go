package storage

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocloud.dev/blob/memblob"
)

func backends(t *testing.T) map[string]Storage {
	t.Helper()
	ctx := context.Background()

	file, err := NewFile(t.TempDir(), nil)
	require.NoError(t, err)

	db, err := NewSQLite(ctx, filepath.Join(t.TempDir(), "items.db"))
	require.NoError(t, err)

	out := map[string]Storage{
		"memory": NewMemory(0),
		"file":   file,
		"blob":   NewBlobFromBucket(memblob.OpenBucket(nil), "items"),
		"sqlite": db,
	}
	if addr := os.Getenv("FURRYSTORE_TEST_REDIS"); addr != "" {
		r, err := NewRedis(ctx, addr, "furrystore:test:"+t.Name())
		require.NoError(t, err)
		out["redis"] = r
	}
	return out
}

func TestStorage_Contract(t *testing.T) {
	for name, st := range backends(t) {
		st := st
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			defer st.Close()

			_, ok, err := st.GetItem(ctx, "count")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, st.SetItem(ctx, "count", "1"))
			require.NoError(t, st.SetItem(ctx, "count", "2"))
			require.NoError(t, st.SetItem(ctx, "theme/mode", `"dark"`))

			value, ok, err := st.GetItem(ctx, "count")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "2", value)

			value, ok, err = st.GetItem(ctx, "theme/mode")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, `"dark"`, value)

			keys, err := st.Keys(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"count", "theme/mode"}, keys)

			require.NoError(t, st.RemoveItem(ctx, "count"))
			require.NoError(t, st.RemoveItem(ctx, "count"))
			_, ok, err = st.GetItem(ctx, "count")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, st.RemoveItem(ctx, "theme/mode"))
		})
	}
}

func TestMemory_Quota(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(10)

	require.NoError(t, m.SetItem(ctx, "k", "12345"))
	assert.Equal(t, 6, m.Used())

	err := m.SetItem(ctx, "other", "123456")
	assert.ErrorIs(t, err, ErrQuotaExceeded)

	require.NoError(t, m.SetItem(ctx, "k", "123456789"))
	assert.Equal(t, 10, m.Used())

	require.NoError(t, m.RemoveItem(ctx, "k"))
	assert.Equal(t, 0, m.Used())
}

func TestMemory_Closed(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(0)
	require.NoError(t, m.Close())

	_, _, err := m.GetItem(ctx, "k")
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, m.SetItem(ctx, "k", "v"), ErrClosed)
}

func TestFile_KeysAreEscaped(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	f, err := NewFile(dir, nil)
	require.NoError(t, err)

	require.NoError(t, f.SetItem(ctx, "../escape", "x"))
	_, err = os.Stat(filepath.Join(filepath.Dir(dir), "escape.item"))
	assert.True(t, os.IsNotExist(err))

	value, ok, err := f.GetItem(ctx, "../escape")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "x", value)
}

func TestFile_WatchReportsOtherWriters(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	mine, err := NewFile(dir, nil)
	require.NoError(t, err)
	theirs, err := NewFile(dir, nil)
	require.NoError(t, err)

	var mu sync.Mutex
	var seen []string
	stop, err := mine.Watch(ctx, func(key string) {
		mu.Lock()
		seen = append(seen, key)
		mu.Unlock()
	})
	require.NoError(t, err)
	defer stop()

	require.NoError(t, mine.SetItem(ctx, "own", "1"))
	require.NoError(t, theirs.SetItem(ctx, "shared", "2"))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		for _, k := range seen {
			if k == "shared" {
				return true
			}
		}
		return false
	}, 2*time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.NotContains(t, seen, "own")
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	st, err := Open(ctx, Config{Driver: DriverMemory, Quota: 4}, nil)
	require.NoError(t, err)
	assert.ErrorIs(t, st.SetItem(ctx, "key", "value"), ErrQuotaExceeded)

	st, err = Open(ctx, Config{Driver: DriverFile, Dir: t.TempDir()}, nil)
	require.NoError(t, err)
	assert.IsType(t, &File{}, st)

	st, err = Open(ctx, Config{Driver: DriverBlob, URL: "mem://"}, nil)
	require.NoError(t, err)
	require.NoError(t, st.Close())

	_, err = Open(ctx, Config{Driver: "floppy"}, nil)
	assert.ErrorIs(t, err, ErrUnknownDriver)
}
