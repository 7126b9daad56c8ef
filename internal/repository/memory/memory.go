// Package memory provides in-memory repository implementations for file-based runs and tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/andresuchdata/food-insight/backend-go/internal/domain"
	"github.com/andresuchdata/food-insight/backend-go/internal/repository"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for file-based runs and tests)
// =============================================================================

// Store keeps a dataset, channel costs and labor records in memory.
type Store struct {
	mu    sync.RWMutex
	ds    domain.Dataset
	costs map[string]domain.ChannelCostSummary
	labor map[laborKey]domain.LaborRecord
	runs  []domain.ImportRun
}

type laborKey struct {
	Month      string
	Department string
}

var (
	_ repository.DatasetRepository     = (*Store)(nil)
	_ repository.DatasetWriter         = (*Store)(nil)
	_ repository.ChannelCostRepository = (*Store)(nil)
	_ repository.LaborRecordRepository = (*Store)(nil)
	_ repository.ImportRunRepository   = (*Store)(nil)
)

func NewStore() *Store {
	return &Store{
		costs: make(map[string]domain.ChannelCostSummary),
		labor: make(map[laborKey]domain.LaborRecord),
	}
}

// NewStoreFromDataset seeds a store with ds, including its channel costs and labor records.
func NewStoreFromDataset(ds domain.Dataset) *Store {
	s := NewStore()
	_ = s.SaveDataset(context.Background(), ds)
	return s
}

// SaveDataset mirrors the postgres store: dated tables lose only the rows inside the date
// span ds covers, reference tables are replaced whole, channel costs and labor are upserted.
func (s *Store) SaveDataset(ctx context.Context, ds domain.Dataset) error {
	s.mu.Lock()
	if len(ds.Purchases) > 0 {
		s.ds.Purchases = replaceSpan(s.ds.Purchases, ds.Purchases, func(p domain.PurchaseRecord) time.Time { return p.Date })
	}
	if len(ds.Production) > 0 {
		s.ds.Production = replaceSpan(s.ds.Production, ds.Production, func(p domain.ProductionRecord) time.Time { return p.Date })
	}
	if len(ds.Sales) > 0 {
		s.ds.Sales = replaceSpan(s.ds.Sales, ds.Sales, func(d domain.DailySalesRecord) time.Time { return d.Date })
	}
	if len(ds.Utilities) > 0 {
		s.ds.Utilities = replaceSpan(s.ds.Utilities, ds.Utilities, func(u domain.UtilityRecord) time.Time { return u.Date })
	}
	if len(ds.Inventory) > 0 {
		s.ds.Inventory = append([]domain.InventorySafetyItem(nil), ds.Inventory...)
	}
	if len(ds.BomItems) > 0 {
		s.ds.BomItems = append([]domain.BomItemData(nil), ds.BomItems...)
	}
	if len(ds.MaterialMaster) > 0 {
		s.ds.MaterialMaster = append([]domain.MaterialMasterItem(nil), ds.MaterialMaster...)
	}
	if len(ds.InventorySnapshots) > 0 {
		s.ds.InventorySnapshots = replaceSpan(s.ds.InventorySnapshots, ds.InventorySnapshots,
			func(i domain.InventorySnapshotData) time.Time { return i.SnapshotDate })
	}
	s.mu.Unlock()

	if err := s.UpsertChannelCosts(ctx, ds.ChannelCosts); err != nil {
		return err
	}
	return s.UpsertLaborRecords(ctx, ds.LaborRecords)
}

func (s *Store) ListPurchases(_ context.Context, r domain.DateRange) ([]domain.PurchaseRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return filterByDate(s.ds.Purchases, r, func(p domain.PurchaseRecord) time.Time { return p.Date }), nil
}

func (s *Store) ListProduction(_ context.Context, r domain.DateRange) ([]domain.ProductionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return filterByDate(s.ds.Production, r, func(p domain.ProductionRecord) time.Time { return p.Date }), nil
}

func (s *Store) ListSales(_ context.Context, r domain.DateRange) ([]domain.DailySalesRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return filterByDate(s.ds.Sales, r, func(d domain.DailySalesRecord) time.Time { return d.Date }), nil
}

func (s *Store) ListUtilities(_ context.Context, r domain.DateRange) ([]domain.UtilityRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return filterByDate(s.ds.Utilities, r, func(u domain.UtilityRecord) time.Time { return u.Date }), nil
}

func (s *Store) ListInventorySnapshots(_ context.Context, r domain.DateRange) ([]domain.InventorySnapshotData, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return filterByDate(s.ds.InventorySnapshots, r, func(i domain.InventorySnapshotData) time.Time { return i.SnapshotDate }), nil
}

func (s *Store) ListInventory(context.Context) ([]domain.InventorySafetyItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.InventorySafetyItem{}, s.ds.Inventory...), nil
}

func (s *Store) ListBomItems(context.Context) ([]domain.BomItemData, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.BomItemData{}, s.ds.BomItems...), nil
}

func (s *Store) ListMaterialMaster(context.Context) ([]domain.MaterialMasterItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.MaterialMasterItem{}, s.ds.MaterialMaster...), nil
}

func (s *Store) ListChannelCosts(context.Context) ([]domain.ChannelCostSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.ChannelCostSummary, 0, len(s.costs))
	for _, c := range s.costs {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ChannelName < out[j].ChannelName })
	return out, nil
}

func (s *Store) GetChannelCost(_ context.Context, channel string) (*domain.ChannelCostSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.costs[strings.ToLower(strings.TrimSpace(channel))]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}

func (s *Store) UpsertChannelCosts(_ context.Context, costs []domain.ChannelCostSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range costs {
		s.costs[strings.ToLower(strings.TrimSpace(c.ChannelName))] = c
	}
	return nil
}

func (s *Store) ListLaborRecords(_ context.Context, fromMonth, toMonth string) ([]domain.LaborRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.LaborRecord, 0, len(s.labor))
	for _, l := range s.labor {
		if fromMonth != "" && l.Month < fromMonth {
			continue
		}
		if toMonth != "" && l.Month > toMonth {
			continue
		}
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Month != out[j].Month {
			return out[i].Month < out[j].Month
		}
		return out[i].Department < out[j].Department
	})
	return out, nil
}

func (s *Store) UpsertLaborRecords(_ context.Context, records []domain.LaborRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range records {
		s.labor[laborKey{Month: l.Month, Department: l.Department}] = l
	}
	return nil
}

func (s *Store) CreateImportRun(_ context.Context, run *domain.ImportRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	run.ID = int64(len(s.runs) + 1)
	s.runs = append(s.runs, *run)
	return nil
}

func (s *Store) UpdateImportRun(_ context.Context, run *domain.ImportRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if run.ID < 1 || int(run.ID) > len(s.runs) {
		return repository.ErrNotFound
	}
	s.runs[run.ID-1] = *run
	return nil
}

func (s *Store) GetImportRun(_ context.Context, id int64) (*domain.ImportRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if id < 1 || int(id) > len(s.runs) {
		return nil, repository.ErrNotFound
	}
	run := s.runs[id-1]
	return &run, nil
}

func (s *Store) ListImportRuns(_ context.Context, limit int) ([]domain.ImportRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.ImportRun, 0, len(s.runs))
	for i := len(s.runs) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		out = append(out, s.runs[i])
	}
	return out, nil
}

// replaceSpan drops the rows of existing that fall inside the span of incoming, then adds
// incoming. The result is ordered by date.
func replaceSpan[T any](existing, incoming []T, at func(T) time.Time) []T {
	lo, hi := at(incoming[0]), at(incoming[0])
	for _, row := range incoming[1:] {
		if t := at(row); t.Before(lo) {
			lo = t
		} else if t.After(hi) {
			hi = t
		}
	}

	out := make([]T, 0, len(existing)+len(incoming))
	for _, row := range existing {
		if t := at(row); t.Before(lo) || t.After(hi) {
			out = append(out, row)
		}
	}
	out = append(out, incoming...)
	sort.SliceStable(out, func(i, j int) bool { return at(out[i]).Before(at(out[j])) })
	return out
}

func filterByDate[T any](rows []T, r domain.DateRange, at func(T) time.Time) []T {
	out := make([]T, 0, len(rows))
	for _, row := range rows {
		if r.Contains(at(row)) {
			out = append(out, row)
		}
	}
	return out
}
