package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/andresuchdata/food-insight/backend-go/internal/domain"
	"github.com/andresuchdata/food-insight/backend-go/internal/repository"
)

type datasetRepository struct {
	db *DB
}

var (
	_ repository.DatasetRepository = (*datasetRepository)(nil)
	_ repository.DatasetWriter     = (*datasetRepository)(nil)
)

func NewDatasetRepository(db *DB) *datasetRepository {
	return &datasetRepository{db: db}
}

var (
	purchaseColumns    = []string{"purchase_date", "product_code", "product_name", "quantity", "unit_price", "total"}
	productionColumns  = []string{"production_date", "normal_qty", "preprocess_qty", "frozen_qty", "sauce_qty", "bibimbap_qty", "total_qty", "total_kg", "waste_finished_qty", "waste_finished_pct", "waste_semi_pct", "waste_semi_kg"}
	salesColumns       = []string{"sales_date", "jasa_revenue", "coupang_revenue", "kurly_revenue", "total_revenue"}
	utilityColumns     = []string{"utility_date", "electricity", "water", "gas"}
	snapshotColumns    = []string{"snapshot_date", "material_code", "product_name", "balance_qty", "unit_price"}
	inventoryColumns   = []string{"sku_code", "sku_name", "current_stock", "safety_stock", "turnover_rate", "status", "warehouse"}
	bomColumns         = []string{"product_code", "product_name", "material_code", "material_name", "consumption_qty", "unit"}
	materialColumns    = []string{"material_code", "material_name", "unit_price", "unit"}
	channelCostColumns = []string{"channel_name", "total_variable_rate_pct", "total_variable_per_order", "total_fixed_monthly", "discount_rate", "commission_rate"}
	laborColumns       = []string{"month", "department", "headcount", "total_cost"}
)

func (r *datasetRepository) ListPurchases(ctx context.Context, dr domain.DateRange) ([]domain.PurchaseRecord, error) {
	var rows []domain.PurchaseRecord
	err := r.selectRange(ctx, &rows, "purchases", purchaseColumns, dr)
	return rows, err
}

func (r *datasetRepository) ListProduction(ctx context.Context, dr domain.DateRange) ([]domain.ProductionRecord, error) {
	var rows []domain.ProductionRecord
	err := r.selectRange(ctx, &rows, "production_records", productionColumns, dr)
	return rows, err
}

func (r *datasetRepository) ListSales(ctx context.Context, dr domain.DateRange) ([]domain.DailySalesRecord, error) {
	var rows []domain.DailySalesRecord
	err := r.selectRange(ctx, &rows, "daily_sales", salesColumns, dr)
	return rows, err
}

func (r *datasetRepository) ListUtilities(ctx context.Context, dr domain.DateRange) ([]domain.UtilityRecord, error) {
	var rows []domain.UtilityRecord
	err := r.selectRange(ctx, &rows, "utilities", utilityColumns, dr)
	return rows, err
}

func (r *datasetRepository) ListInventorySnapshots(ctx context.Context, dr domain.DateRange) ([]domain.InventorySnapshotData, error) {
	var rows []domain.InventorySnapshotData
	err := r.selectRange(ctx, &rows, "inventory_snapshots", snapshotColumns, dr)
	return rows, err
}

func (r *datasetRepository) ListInventory(ctx context.Context) ([]domain.InventorySafetyItem, error) {
	var rows []domain.InventorySafetyItem
	err := r.selectAll(ctx, &rows, "inventory_items", inventoryColumns, "sku_code, warehouse")
	return rows, err
}

func (r *datasetRepository) ListBomItems(ctx context.Context) ([]domain.BomItemData, error) {
	var rows []domain.BomItemData
	err := r.selectAll(ctx, &rows, "bom_items", bomColumns, "product_code, material_code")
	return rows, err
}

func (r *datasetRepository) ListMaterialMaster(ctx context.Context) ([]domain.MaterialMasterItem, error) {
	var rows []domain.MaterialMasterItem
	err := r.selectAll(ctx, &rows, "material_master", materialColumns, "material_code")
	return rows, err
}

// selectRange loads a dated table; the first column is the date column.
func (r *datasetRepository) selectRange(ctx context.Context, dest interface{}, table string, cols []string, dr domain.DateRange) error {
	where, args := buildDateRangeClause(cols[0], dr, 1)
	query := fmt.Sprintf("SELECT %s FROM %s%s ORDER BY %s", strings.Join(cols, ", "), table, where, cols[0])
	if err := r.db.SelectContext(ctx, dest, query, args...); err != nil {
		return fmt.Errorf("failed to list %s: %w", table, err)
	}
	return nil
}

func (r *datasetRepository) selectAll(ctx context.Context, dest interface{}, table string, cols []string, orderBy string) error {
	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY %s", strings.Join(cols, ", "), table, orderBy)
	if err := r.db.SelectContext(ctx, dest, query); err != nil {
		return fmt.Errorf("failed to list %s: %w", table, err)
	}
	return nil
}

// SaveDataset replaces the covered date span of every dated table and the whole of
// every reference table present in ds, in a single transaction.
func (r *datasetRepository) SaveDataset(ctx context.Context, ds domain.Dataset) error {
	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		if len(ds.Purchases) > 0 {
			lo, hi := span(ds.Purchases, func(p domain.PurchaseRecord) time.Time { return p.Date })
			if err := replaceRange(ctx, tx, "purchases", purchaseColumns, lo, hi, len(ds.Purchases), func(i int) []interface{} {
				p := ds.Purchases[i]
				return []interface{}{p.Date, p.ProductCode, p.ProductName, p.Quantity, p.UnitPrice, p.Total}
			}); err != nil {
				return err
			}
		}
		if len(ds.Production) > 0 {
			lo, hi := span(ds.Production, func(p domain.ProductionRecord) time.Time { return p.Date })
			if err := replaceRange(ctx, tx, "production_records", productionColumns, lo, hi, len(ds.Production), func(i int) []interface{} {
				p := ds.Production[i]
				return []interface{}{p.Date, p.NormalQty, p.PreprocessQty, p.FrozenQty, p.SauceQty, p.BibimbapQty,
					p.TotalQty, p.TotalKg, p.WasteFinishedQty, p.WasteFinishedPct, p.WasteSemiPct, p.WasteSemiKg}
			}); err != nil {
				return err
			}
		}
		if len(ds.Sales) > 0 {
			lo, hi := span(ds.Sales, func(s domain.DailySalesRecord) time.Time { return s.Date })
			if err := replaceRange(ctx, tx, "daily_sales", salesColumns, lo, hi, len(ds.Sales), func(i int) []interface{} {
				s := ds.Sales[i]
				return []interface{}{s.Date, s.JasaRevenue, s.CoupangRevenue, s.KurlyRevenue, s.TotalRevenue}
			}); err != nil {
				return err
			}
		}
		if len(ds.Utilities) > 0 {
			lo, hi := span(ds.Utilities, func(u domain.UtilityRecord) time.Time { return u.Date })
			if err := replaceRange(ctx, tx, "utilities", utilityColumns, lo, hi, len(ds.Utilities), func(i int) []interface{} {
				u := ds.Utilities[i]
				return []interface{}{u.Date, u.Electricity, u.Water, u.Gas}
			}); err != nil {
				return err
			}
		}
		if len(ds.InventorySnapshots) > 0 {
			lo, hi := span(ds.InventorySnapshots, func(s domain.InventorySnapshotData) time.Time { return s.SnapshotDate })
			if err := replaceRange(ctx, tx, "inventory_snapshots", snapshotColumns, lo, hi, len(ds.InventorySnapshots), func(i int) []interface{} {
				s := ds.InventorySnapshots[i]
				return []interface{}{s.SnapshotDate, s.MaterialCode, s.ProductName, s.BalanceQty, s.UnitPrice}
			}); err != nil {
				return err
			}
		}
		if len(ds.Inventory) > 0 {
			if err := replaceAll(ctx, tx, "inventory_items", inventoryColumns, len(ds.Inventory), func(i int) []interface{} {
				it := ds.Inventory[i]
				return []interface{}{it.SKUCode, it.SKUName, it.CurrentStock, it.SafetyStock, it.TurnoverRate, it.Status, it.Warehouse}
			}); err != nil {
				return err
			}
		}
		if len(ds.BomItems) > 0 {
			if err := replaceAll(ctx, tx, "bom_items", bomColumns, len(ds.BomItems), func(i int) []interface{} {
				b := ds.BomItems[i]
				return []interface{}{b.ProductCode, b.ProductName, b.MaterialCode, b.MaterialName, b.ConsumptionQty, b.Unit}
			}); err != nil {
				return err
			}
		}
		if len(ds.MaterialMaster) > 0 {
			if err := replaceAll(ctx, tx, "material_master", materialColumns, len(ds.MaterialMaster), func(i int) []interface{} {
				m := ds.MaterialMaster[i]
				return []interface{}{m.MaterialCode, m.MaterialName, m.UnitPrice, m.Unit}
			}); err != nil {
				return err
			}
		}
		if len(ds.ChannelCosts) > 0 {
			if err := upsertChannelCosts(ctx, tx, ds.ChannelCosts); err != nil {
				return err
			}
		}
		if len(ds.LaborRecords) > 0 {
			if err := upsertLaborRecords(ctx, tx, ds.LaborRecords); err != nil {
				return err
			}
		}
		return nil
	})
}

func span[T any](rows []T, at func(T) time.Time) (time.Time, time.Time) {
	lo, hi := at(rows[0]), at(rows[0])
	for _, row := range rows[1:] {
		t := at(row)
		if t.Before(lo) {
			lo = t
		}
		if t.After(hi) {
			hi = t
		}
	}
	return lo, hi
}

func replaceRange(ctx context.Context, tx *sqlx.Tx, table string, cols []string, lo, hi time.Time, n int, args func(int) []interface{}) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE %s BETWEEN $1 AND $2", table, cols[0])
	if _, err := tx.ExecContext(ctx, query, lo, hi); err != nil {
		return fmt.Errorf("failed to clear %s: %w", table, err)
	}
	return insertRows(ctx, tx, table, cols, n, args)
}

func replaceAll(ctx context.Context, tx *sqlx.Tx, table string, cols []string, n int, args func(int) []interface{}) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
		return fmt.Errorf("failed to clear %s: %w", table, err)
	}
	return insertRows(ctx, tx, table, cols, n, args)
}

func insertRows(ctx context.Context, tx *sqlx.Tx, table string, cols []string, n int, args func(int) []interface{}) error {
	stmt, err := tx.PrepareContext(ctx, insertQuery(table, cols, ""))
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for i := 0; i < n; i++ {
		if _, err := stmt.ExecContext(ctx, args(i)...); err != nil {
			return fmt.Errorf("failed to insert into %s: %w", table, err)
		}
	}
	return nil
}

// insertQuery builds a positional INSERT with an optional trailing clause (e.g. ON CONFLICT).
func insertQuery(table string, cols []string, suffix string) string {
	placeholders := make([]string, len(cols))
	for i := range cols {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, strings.Join(cols, ", "), strings.Join(placeholders, ", "))
	if suffix != "" {
		query += " " + suffix
	}
	return query
}
