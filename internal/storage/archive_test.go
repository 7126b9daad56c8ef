package storage_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/food-insight/backend-go/internal/insight"
	"github.com/andresuchdata/food-insight/backend-go/internal/storage"
)

// memStorage is an in-memory ObjectStorage.
type memStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newMemStorage() *memStorage {
	return &memStorage{objects: make(map[string][]byte)}
}

func (m *memStorage) ListObjects(ctx context.Context, prefix string) ([]storage.ObjectInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []storage.ObjectInfo
	for k, v := range m.objects {
		if strings.HasPrefix(k, prefix) {
			out = append(out, storage.ObjectInfo{Key: k, Size: int64(len(v))})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (m *memStorage) DownloadObject(ctx context.Context, key, destPath string) error {
	data, err := m.GetObject(ctx, key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return err
	}
	return os.WriteFile(destPath, data, 0o644)
}

func (m *memStorage) UploadObject(ctx context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = append([]byte(nil), data...)
	return nil
}

func (m *memStorage) GetObject(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[key]
	if !ok {
		return nil, errors.New("no such key")
	}
	return data, nil
}

func TestArchiver_SnapshotKey(t *testing.T) {
	a := storage.NewArchiver(newMemStorage(), "/reports/")
	id := uuid.MustParse("6f1c1f0e-8a55-4b61-9d1e-1d3c2a4b5c6d")
	at := time.Date(2025, time.March, 7, 23, 30, 0, 0, time.UTC)

	assert.Equal(t, "reports/2025/03/07/6f1c1f0e-8a55-4b61-9d1e-1d3c2a4b5c6d.json", a.SnapshotKey(at, id))

	def := storage.NewArchiver(newMemStorage(), "")
	assert.True(t, strings.HasPrefix(def.SnapshotKey(at, id), "insights/2025/03/07/"))
}

func TestArchiver_ArchiveAndLoad(t *testing.T) {
	ctx := context.Background()
	store := newMemStorage()
	a := storage.NewArchiver(store, "insights")

	// GIVEN: a bundle with one section
	all := &insight.AllInsights{
		GeneratedAt: time.Date(2025, time.January, 31, 9, 0, 0, 0, time.UTC),
		AsOf:        time.Date(2025, time.January, 30, 0, 0, 0, 0, time.UTC),
		Waste:       &insight.WasteInsight{DaysAboveThreshold: 2},
	}

	// WHEN
	key, err := a.Archive(ctx, all)
	require.NoError(t, err)

	// THEN
	assert.True(t, strings.HasPrefix(key, "insights/2025/01/31/"))
	assert.True(t, strings.HasSuffix(key, ".json"))

	loaded, err := a.Load(ctx, key)
	require.NoError(t, err)
	assert.True(t, all.AsOf.Equal(loaded.AsOf))
	require.NotNil(t, loaded.Waste)
	assert.Equal(t, 2, loaded.Waste.DaysAboveThreshold)
	assert.Nil(t, loaded.CashFlow)

	keys, err := a.List(ctx, time.Date(2025, time.January, 31, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, []string{key}, keys)

	keys, err = a.List(ctx, time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestArchiver_LoadMissing(t *testing.T) {
	a := storage.NewArchiver(newMemStorage(), "")
	_, err := a.Load(context.Background(), "insights/nope.json")
	assert.Error(t, err)
}

func TestFetchExports(t *testing.T) {
	ctx := context.Background()
	store := newMemStorage()
	require.NoError(t, store.UploadObject(ctx, "exports/2025-01/purchases.csv", []byte("date,code,qty,price\n")))
	require.NoError(t, store.UploadObject(ctx, "exports/2025-01/sales.XLSX", []byte("xlsx")))
	require.NoError(t, store.UploadObject(ctx, "exports/2025-01/readme.txt", []byte("skip")))
	require.NoError(t, store.UploadObject(ctx, "other/production.csv", []byte("skip")))

	dir := t.TempDir()
	paths, err := storage.FetchExports(ctx, store, "exports/", dir)
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(dir, "purchases.csv"),
		filepath.Join(dir, "sales.XLSX"),
	}, paths)
	data, err := os.ReadFile(filepath.Join(dir, "purchases.csv"))
	require.NoError(t, err)
	assert.Equal(t, "date,code,qty,price\n", string(data))
}
