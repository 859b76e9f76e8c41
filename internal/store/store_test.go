package store_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liftedinit/roadchain/internal/models"
	"github.com/liftedinit/roadchain/internal/store"
)

func record(i uint64) models.Record {
	return models.Record{
		Index:        i,
		PreviousHash: "prev",
		Timestamp:    time.Date(2026, time.February, 21, int(i), 0, 0, 0, time.UTC),
		Actor:        "alexa",
		Payload:      json.RawMessage(`"entry"`),
		Hash:         "hash",
	}
}

func testStore(t *testing.T, s store.Store) {
	t.Helper()
	ctx := context.Background()

	records, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)

	require.NoError(t, s.Append(ctx, record(0)))
	require.NoError(t, s.Append(ctx, record(1)))

	err = s.Append(ctx, record(5))
	assert.ErrorIs(t, err, store.ErrOutOfOrder)
	err = s.Append(ctx, record(1))
	assert.ErrorIs(t, err, store.ErrOutOfOrder)

	records, err = s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, uint64(1), records[1].Index)
	assert.True(t, record(1).Timestamp.Equal(records[1].Timestamp))
	assert.JSONEq(t, `"entry"`, string(records[1].Payload))

	// Mutating loaded records does not reach the store.
	records[0].Actor = "mallory"
	again, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "alexa", again[0].Actor)

	assert.NoError(t, s.Close())
}

func TestMemoryStore(t *testing.T) {
	testStore(t, store.NewMemoryStore())
}

func TestJSONStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roadchain", "chain-data.json")

	s, err := store.NewJSONStore(path)
	require.NoError(t, err)
	assert.Equal(t, path, s.Path())
	testStore(t, s)

	// Reopen from disk.
	s, err = store.NewJSONStore(path)
	require.NoError(t, err)
	records, err := s.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "alexa", records[0].Actor)

	require.NoError(t, s.Append(context.Background(), record(2)))

	// No temporary files are left behind.
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.Equal(t, []string{"chain-data.json", "chain-data.json.lock"}, names)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var raw []map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	require.Len(t, raw, 3)
	assert.Equal(t, "2026-02-21T02:00:00Z", raw[2]["timestamp"])
	assert.Equal(t, "prev", raw[2]["previous_hash"])
}

func TestJSONStoreErrors(t *testing.T) {
	_, err := store.NewJSONStore("")
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))
	_, err = store.NewJSONStore(path)
	assert.ErrorContains(t, err, "failed to decode chain file")

	records, err := store.ReadJSONFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.Nil(t, records)

	// Timestamps need a zone offset.
	zoneless := filepath.Join(t.TempDir(), "zoneless.json")
	data := `[{"index":0,"previous_hash":"0","timestamp":"2026-02-21T01:00:00.123456","actor":"0","payload":"genesis","hash":"h"}]`
	require.NoError(t, os.WriteFile(zoneless, []byte(data), 0644))
	_, err = store.NewJSONStore(zoneless)
	assert.ErrorContains(t, err, "failed to decode chain file")
}

func TestJSONStoreSharedFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "chain-data.json")

	a, err := store.NewJSONStore(path)
	require.NoError(t, err)
	defer a.Close()
	b, err := store.NewJSONStore(path)
	require.NoError(t, err)
	defer b.Close()

	first := record(0)
	first.Actor = "A"
	require.NoError(t, a.Append(ctx, first))

	// b opened before the append and still sees the stored length.
	second := record(0)
	second.Actor = "B"
	assert.ErrorIs(t, b.Append(ctx, second), store.ErrOutOfOrder)

	records, err := b.Load(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "A", records[0].Actor)

	require.NoError(t, b.Append(ctx, record(1)))
	records, err = a.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestJSONStoreConcurrentWriters(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "chain-data.json")

	const writers = 8
	errs := make([]error, writers)
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		s, err := store.NewJSONStore(path)
		require.NoError(t, err)
		defer s.Close()

		wg.Add(1)
		go func() {
			defer wg.Done()
			r := record(0)
			r.Actor = fmt.Sprintf("writer-%d", i)
			errs[i] = s.Append(ctx, r)
		}()
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, store.ErrOutOfOrder)
	}
	assert.Equal(t, 1, succeeded)

	records, err := store.ReadJSONFile(path)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}
