package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/andresuchdata/food-insight/backend-go/internal/insight"
	"github.com/andresuchdata/food-insight/backend-go/pkg/logger"
)

const defaultArchivePrefix = "insights"

// Archiver stores computed insight bundles as JSON snapshots under
// <prefix>/YYYY/MM/DD/<uuid>.json and pulls ERP export files back down.
type Archiver struct {
	store  ObjectStorage
	prefix string
}

func NewArchiver(store ObjectStorage, prefix string) *Archiver {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		prefix = defaultArchivePrefix
	}
	return &Archiver{store: store, prefix: prefix}
}

// SnapshotKey builds the object key for a bundle generated at t.
func (a *Archiver) SnapshotKey(t time.Time, id uuid.UUID) string {
	t = t.UTC()
	return path.Join(a.prefix, t.Format("2006"), t.Format("01"), t.Format("02"), id.String()+".json")
}

// Archive uploads all and returns its object key.
func (a *Archiver) Archive(ctx context.Context, all *insight.AllInsights) (string, error) {
	payload, err := json.Marshal(all)
	if err != nil {
		return "", fmt.Errorf("encode insight snapshot: %w", err)
	}

	generated := all.GeneratedAt
	if generated.IsZero() {
		generated = time.Now()
	}
	key := a.SnapshotKey(generated, uuid.New())
	if err := a.store.UploadObject(ctx, key, payload); err != nil {
		return "", err
	}

	log := logger.Component("archive")
	log.Info().Str("key", key).Int("bytes", len(payload)).Msg("insight snapshot archived")
	return key, nil
}

// Load fetches a previously archived bundle.
func (a *Archiver) Load(ctx context.Context, key string) (*insight.AllInsights, error) {
	data, err := a.store.GetObject(ctx, key)
	if err != nil {
		return nil, err
	}
	var all insight.AllInsights
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, fmt.Errorf("decode insight snapshot %s: %w", key, err)
	}
	return &all, nil
}

// List returns archived snapshot keys for one day, or all days when day is zero, newest path last.
func (a *Archiver) List(ctx context.Context, day time.Time) ([]string, error) {
	prefix := a.prefix + "/"
	if !day.IsZero() {
		day = day.UTC()
		prefix = path.Join(a.prefix, day.Format("2006"), day.Format("01"), day.Format("02")) + "/"
	}
	objects, err := a.store.ListObjects(ctx, prefix)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(objects))
	for _, o := range objects {
		if strings.HasSuffix(o.Key, ".json") {
			keys = append(keys, o.Key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// FetchExports downloads every .csv/.xlsx object under prefix into destDir and
// returns the local paths. Object keys are flattened to their base name.
func FetchExports(ctx context.Context, store ObjectStorage, prefix, destDir string) ([]string, error) {
	log := logger.Component("archive")

	objects, err := store.ListObjects(ctx, prefix)
	if err != nil {
		return nil, err
	}

	var paths []string
	for _, o := range objects {
		ext := strings.ToLower(path.Ext(o.Key))
		if ext != ".csv" && ext != ".xlsx" {
			continue
		}
		dest := filepath.Join(destDir, path.Base(o.Key))
		if err := store.DownloadObject(ctx, o.Key, dest); err != nil {
			return nil, err
		}
		log.Info().Str("key", o.Key).Str("dest", dest).Msg("export downloaded")
		paths = append(paths, dest)
	}
	return paths, nil
}
