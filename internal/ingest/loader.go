package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/andresuchdata/food-insight/backend-go/internal/domain"
	"github.com/andresuchdata/food-insight/backend-go/pkg/logger"
)

// maxParallelFiles bounds how many files LoadDir parses at once.
const maxParallelFiles = 4

// KindFromFilename maps "purchases.csv", "2025-01_sales.xlsx" and the like to a table kind.
// The longest matching kind name wins so "inventory_snapshots" is not read as "inventory".
func KindFromFilename(name string) (Kind, bool) {
	base := strings.ToLower(strings.TrimSuffix(filepath.Base(name), filepath.Ext(name)))
	var best Kind
	for _, k := range Kinds {
		if strings.Contains(base, string(k)) && len(k) > len(best) {
			best = k
		}
	}
	return best, best != ""
}

// ReadFile reads a .csv or .xlsx file into a table.
func ReadFile(path string) (Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return Table{}, err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return ReadCSV(f)
	case ".xlsx":
		return ReadXLSX(f, "")
	default:
		return Table{}, fmt.Errorf("unsupported file type %s", path)
	}
}

// LoadDir parses every recognized .csv/.xlsx file in dir into one dataset.
// Files of the same kind are concatenated in name order.
func LoadDir(ctx context.Context, dir string) (domain.Dataset, error) {
	log := logger.Component("ingest")

	entries, err := os.ReadDir(dir)
	if err != nil {
		return domain.Dataset{}, fmt.Errorf("read data dir %s: %w", dir, err)
	}

	type job struct {
		kind Kind
		path string
	}
	var jobs []job
	for _, e := range entries {
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if e.IsDir() || (ext != ".csv" && ext != ".xlsx") {
			continue
		}
		kind, ok := KindFromFilename(e.Name())
		if !ok {
			log.Debug().Str("file", e.Name()).Msg("unrecognized file skipped")
			continue
		}
		jobs = append(jobs, job{kind: kind, path: filepath.Join(dir, e.Name())})
	}

	parts := make([]domain.Dataset, len(jobs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelFiles)
	for i, j := range jobs {
		i, j := i, j
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			t, err := ReadFile(j.path)
			if err != nil {
				return err
			}
			if err := ParseTable(j.kind, t, &parts[i]); err != nil {
				return fmt.Errorf("%s: %w", filepath.Base(j.path), err)
			}
			log.Info().Str("file", filepath.Base(j.path)).Str("kind", string(j.kind)).Int("rows", len(t.Rows)).Msg("file parsed")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return domain.Dataset{}, err
	}

	var ds domain.Dataset
	for _, p := range parts {
		Merge(&ds, p)
	}
	return ds, nil
}

// Merge appends every table of src to dst.
func Merge(dst *domain.Dataset, src domain.Dataset) {
	dst.Purchases = append(dst.Purchases, src.Purchases...)
	dst.Production = append(dst.Production, src.Production...)
	dst.Sales = append(dst.Sales, src.Sales...)
	dst.Utilities = append(dst.Utilities, src.Utilities...)
	dst.Inventory = append(dst.Inventory, src.Inventory...)
	dst.BomItems = append(dst.BomItems, src.BomItems...)
	dst.MaterialMaster = append(dst.MaterialMaster, src.MaterialMaster...)
	dst.InventorySnapshots = append(dst.InventorySnapshots, src.InventorySnapshots...)
	dst.ChannelCosts = append(dst.ChannelCosts, src.ChannelCosts...)
	dst.LaborRecords = append(dst.LaborRecords, src.LaborRecords...)
}
