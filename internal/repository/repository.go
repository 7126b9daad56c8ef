// backend-go/internal/repository/repository.go
package repository

import (
	"context"
	"errors"

	"github.com/andresuchdata/food-insight/backend-go/internal/domain"
)

// ErrNotFound is returned when a single requested row does not exist.
var ErrNotFound = errors.New("not found")

// DatasetRepository reads the operational tables an insight computation needs.
// Dated tables are filtered by the range; reference tables are returned whole.
type DatasetRepository interface {
	ListPurchases(ctx context.Context, r domain.DateRange) ([]domain.PurchaseRecord, error)
	ListProduction(ctx context.Context, r domain.DateRange) ([]domain.ProductionRecord, error)
	ListSales(ctx context.Context, r domain.DateRange) ([]domain.DailySalesRecord, error)
	ListUtilities(ctx context.Context, r domain.DateRange) ([]domain.UtilityRecord, error)
	ListInventorySnapshots(ctx context.Context, r domain.DateRange) ([]domain.InventorySnapshotData, error)
	ListInventory(ctx context.Context) ([]domain.InventorySafetyItem, error)
	ListBomItems(ctx context.Context) ([]domain.BomItemData, error)
	ListMaterialMaster(ctx context.Context) ([]domain.MaterialMasterItem, error)
}

// DatasetWriter replaces the operational tables with freshly ingested rows.
// Tables whose slice is empty are left untouched.
type DatasetWriter interface {
	SaveDataset(ctx context.Context, ds domain.Dataset) error
}

// ChannelCostRepository stores the admin-maintained cost structure per sales channel.
type ChannelCostRepository interface {
	ListChannelCosts(ctx context.Context) ([]domain.ChannelCostSummary, error)
	GetChannelCost(ctx context.Context, channel string) (*domain.ChannelCostSummary, error)
	UpsertChannelCosts(ctx context.Context, costs []domain.ChannelCostSummary) error
}

// LaborRecordRepository stores monthly payroll per department.
// Month bounds are inclusive YYYY-MM strings; empty means unbounded.
type LaborRecordRepository interface {
	ListLaborRecords(ctx context.Context, fromMonth, toMonth string) ([]domain.LaborRecord, error)
	UpsertLaborRecords(ctx context.Context, records []domain.LaborRecord) error
}

// ImportRunRepository records every dataset import and its outcome.
type ImportRunRepository interface {
	CreateImportRun(ctx context.Context, run *domain.ImportRun) error
	UpdateImportRun(ctx context.Context, run *domain.ImportRun) error
	GetImportRun(ctx context.Context, id int64) (*domain.ImportRun, error)
	// ListImportRuns returns the most recent runs first.
	ListImportRuns(ctx context.Context, limit int) ([]domain.ImportRun, error)
}
