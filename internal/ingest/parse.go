package ingest

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/andresuchdata/food-insight/backend-go/internal/domain"
	"github.com/andresuchdata/food-insight/backend-go/pkg/logger"
)

// Kind names one of the operational tables.
type Kind string

const (
	KindPurchases          Kind = "purchases"
	KindProduction         Kind = "production"
	KindSales              Kind = "sales"
	KindUtilities          Kind = "utilities"
	KindInventory          Kind = "inventory"
	KindBom                Kind = "bom"
	KindMaterialMaster     Kind = "material_master"
	KindInventorySnapshots Kind = "inventory_snapshots"
	KindChannelCosts       Kind = "channel_costs"
	KindLabor              Kind = "labor"
)

// Kinds lists every table kind.
var Kinds = []Kind{
	KindPurchases, KindProduction, KindSales, KindUtilities, KindInventory,
	KindBom, KindMaterialMaster, KindInventorySnapshots, KindChannelCosts, KindLabor,
}

// Table is a header row plus data rows of string cells.
type Table struct {
	Header []string
	Rows   [][]string
}

// newTable treats the first row with at least two non-empty cells as the header, which
// skips the title lines ERP exports put above it. Blank rows are dropped.
func newTable(raw [][]string) Table {
	var t Table
	for _, r := range raw {
		filled := 0
		for _, c := range r {
			if strings.TrimSpace(c) != "" {
				filled++
			}
		}
		switch {
		case t.Header == nil && filled >= 2:
			t.Header = r
		case t.Header != nil && filled > 0:
			t.Rows = append(t.Rows, r)
		}
	}
	return t
}

// row reads typed cells of one data row through a columnMap.
type row struct {
	cells []string
	cols  columnMap
}

func (r row) str(name string) string {
	if idx, ok := r.cols[name]; ok && idx < len(r.cells) {
		return strings.TrimSpace(r.cells[idx])
	}
	return ""
}

func (r row) num(name string) float64 {
	return parseNumber(r.str(name))
}

func (r row) date(name string) (time.Time, bool) {
	return parseDate(r.str(name))
}

var numberCleaner = strings.NewReplacer(",", "", "₩", "", "원", "", "%", "", " ", "")

// parseNumber reads spreadsheet-formatted numbers ("1,200", "₩3,000", "(500)", "12.5%").
// Unparseable cells count as zero.
func parseNumber(v string) float64 {
	v = numberCleaner.Replace(strings.TrimSpace(v))
	if v == "" || v == "-" {
		return 0
	}
	neg := false
	if strings.HasPrefix(v, "(") && strings.HasSuffix(v, ")") {
		neg = true
		v = strings.Trim(v, "()")
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0
	}
	if neg {
		return -f
	}
	return f
}

var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"2006.01.02",
	"2006. 1. 2",
	"20060102",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"2006-1-2",
	"2006/1/2",
}

// parseDate accepts ISO-like layouts, ECOUNT "2025/01/03 -1" slip numbers and Excel
// serial day numbers.
func parseDate(v string) (time.Time, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.UTC(), true
		}
	}
	if fields := strings.Fields(v); len(fields) > 1 {
		if t, ok := parseDate(fields[0]); ok {
			return t, true
		}
	}
	if serial, err := strconv.ParseFloat(v, 64); err == nil && serial > 20000 && serial < 80000 {
		if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

// ParseTable converts t into the records of kind and stores them on ds.
// Rows without a usable date or key are skipped.
func ParseTable(kind Kind, t Table, ds *domain.Dataset) error {
	var err error
	switch kind {
	case KindPurchases:
		ds.Purchases, err = parsePurchases(t)
	case KindProduction:
		ds.Production, err = parseProduction(t)
	case KindSales:
		ds.Sales, err = parseSales(t)
	case KindUtilities:
		ds.Utilities, err = parseUtilities(t)
	case KindInventory:
		ds.Inventory, err = parseInventory(t)
	case KindBom:
		ds.BomItems, err = parseBom(t)
	case KindMaterialMaster:
		ds.MaterialMaster, err = parseMaterialMaster(t)
	case KindInventorySnapshots:
		ds.InventorySnapshots, err = parseSnapshots(t)
	case KindChannelCosts:
		ds.ChannelCosts, err = parseChannelCosts(t)
	case KindLabor:
		ds.LaborRecords, err = parseLabor(t)
	default:
		return fmt.Errorf("unknown table kind %q", kind)
	}
	if err != nil {
		return fmt.Errorf("parse %s: %w", kind, err)
	}
	return nil
}

// eachRow resolves the schema against t and calls fn for every data row.
func eachRow(t Table, schema []column, fn func(r row)) error {
	cols, err := resolveColumns(t.Header, schema)
	if err != nil {
		return err
	}
	for _, cells := range t.Rows {
		fn(row{cells: cells, cols: cols})
	}
	return nil
}

func skipped(kind Kind, reason string, r row) {
	log := logger.Component("ingest")
	log.Debug().Str("table", string(kind)).Str("reason", reason).Strs("cells", r.cells).Msg("row skipped")
}

func parsePurchases(t Table) ([]domain.PurchaseRecord, error) {
	cols, err := resolveColumns(t.Header, purchaseSchema)
	if err != nil {
		return nil, err
	}
	if !cols.has("product_code") && !cols.has("product_name") {
		return nil, fmt.Errorf("%w: product_code or product_name", ErrMissingColumn)
	}
	if !cols.has("unit_price") && !cols.has("total") {
		return nil, fmt.Errorf("%w: unit_price or total", ErrMissingColumn)
	}

	out := make([]domain.PurchaseRecord, 0, len(t.Rows))
	for _, cells := range t.Rows {
		r := row{cells: cells, cols: cols}
		d, ok := r.date("date")
		if !ok {
			skipped(KindPurchases, "date", r)
			continue
		}
		p := domain.PurchaseRecord{
			Date:        d,
			ProductCode: r.str("product_code"),
			ProductName: r.str("product_name"),
			Quantity:    r.num("quantity"),
			UnitPrice:   r.num("unit_price"),
			Total:       r.num("total"),
		}
		if p.ProductCode == "" && p.ProductName == "" {
			skipped(KindPurchases, "product", r)
			continue
		}
		if !cols.has("total") {
			p.Total = p.Quantity * p.UnitPrice
		}
		if !cols.has("unit_price") && p.Quantity != 0 {
			p.UnitPrice = p.Total / p.Quantity
		}
		out = append(out, p)
	}
	return out, nil
}

func parseProduction(t Table) ([]domain.ProductionRecord, error) {
	out := make([]domain.ProductionRecord, 0, len(t.Rows))
	err := eachRow(t, productionSchema, func(r row) {
		d, ok := r.date("date")
		if !ok {
			skipped(KindProduction, "date", r)
			return
		}
		p := domain.ProductionRecord{
			Date:             d,
			NormalQty:        r.num("normal_qty"),
			PreprocessQty:    r.num("preprocess_qty"),
			FrozenQty:        r.num("frozen_qty"),
			SauceQty:         r.num("sauce_qty"),
			BibimbapQty:      r.num("bibimbap_qty"),
			TotalQty:         r.num("total_qty"),
			TotalKg:          r.num("total_kg"),
			WasteFinishedQty: r.num("waste_finished_qty"),
			WasteFinishedPct: r.num("waste_finished_pct"),
			WasteSemiPct:     r.num("waste_semi_pct"),
			WasteSemiKg:      r.num("waste_semi_kg"),
		}
		if !r.cols.has("total_qty") {
			p.TotalQty = p.NormalQty + p.PreprocessQty + p.FrozenQty + p.SauceQty + p.BibimbapQty
		}
		out = append(out, p)
	})
	return out, err
}

func parseSales(t Table) ([]domain.DailySalesRecord, error) {
	out := make([]domain.DailySalesRecord, 0, len(t.Rows))
	err := eachRow(t, salesSchema, func(r row) {
		d, ok := r.date("date")
		if !ok {
			skipped(KindSales, "date", r)
			return
		}
		s := domain.DailySalesRecord{
			Date:           d,
			JasaRevenue:    r.num("jasa_revenue"),
			CoupangRevenue: r.num("coupang_revenue"),
			KurlyRevenue:   r.num("kurly_revenue"),
			TotalRevenue:   r.num("total_revenue"),
		}
		if !r.cols.has("total_revenue") {
			s.TotalRevenue = s.JasaRevenue + s.CoupangRevenue + s.KurlyRevenue
		}
		out = append(out, s)
	})
	return out, err
}

func parseUtilities(t Table) ([]domain.UtilityRecord, error) {
	out := make([]domain.UtilityRecord, 0, len(t.Rows))
	err := eachRow(t, utilitySchema, func(r row) {
		d, ok := r.date("date")
		if !ok {
			skipped(KindUtilities, "date", r)
			return
		}
		out = append(out, domain.UtilityRecord{
			Date:        d,
			Electricity: r.num("electricity"),
			Water:       r.num("water"),
			Gas:         r.num("gas"),
		})
	})
	return out, err
}

func parseInventory(t Table) ([]domain.InventorySafetyItem, error) {
	out := make([]domain.InventorySafetyItem, 0, len(t.Rows))
	err := eachRow(t, inventorySchema, func(r row) {
		code := r.str("sku_code")
		if code == "" {
			skipped(KindInventory, "sku_code", r)
			return
		}
		status := r.str("status")
		if status == "" {
			status = domain.InventoryStatusNormal
		}
		out = append(out, domain.InventorySafetyItem{
			SKUCode:      code,
			SKUName:      r.str("sku_name"),
			CurrentStock: r.num("current_stock"),
			SafetyStock:  r.num("safety_stock"),
			TurnoverRate: r.num("turnover_rate"),
			Status:       status,
			Warehouse:    r.str("warehouse"),
		})
	})
	return out, err
}

func parseBom(t Table) ([]domain.BomItemData, error) {
	out := make([]domain.BomItemData, 0, len(t.Rows))
	err := eachRow(t, bomSchema, func(r row) {
		item := domain.BomItemData{
			ProductCode:    r.str("product_code"),
			ProductName:    r.str("product_name"),
			MaterialCode:   r.str("material_code"),
			MaterialName:   r.str("material_name"),
			ConsumptionQty: r.num("consumption_qty"),
			Unit:           r.str("unit"),
		}
		if item.MaterialCode == "" && item.MaterialName == "" {
			skipped(KindBom, "material", r)
			return
		}
		out = append(out, item)
	})
	return out, err
}

func parseMaterialMaster(t Table) ([]domain.MaterialMasterItem, error) {
	out := make([]domain.MaterialMasterItem, 0, len(t.Rows))
	err := eachRow(t, materialSchema, func(r row) {
		code := r.str("material_code")
		if code == "" {
			skipped(KindMaterialMaster, "material_code", r)
			return
		}
		out = append(out, domain.MaterialMasterItem{
			MaterialCode: code,
			MaterialName: r.str("material_name"),
			UnitPrice:    r.num("unit_price"),
			Unit:         r.str("unit"),
		})
	})
	return out, err
}

func parseSnapshots(t Table) ([]domain.InventorySnapshotData, error) {
	out := make([]domain.InventorySnapshotData, 0, len(t.Rows))
	err := eachRow(t, snapshotSchema, func(r row) {
		d, ok := r.date("snapshot_date")
		if !ok {
			skipped(KindInventorySnapshots, "date", r)
			return
		}
		code := r.str("material_code")
		if code == "" {
			skipped(KindInventorySnapshots, "material_code", r)
			return
		}
		out = append(out, domain.InventorySnapshotData{
			SnapshotDate: d,
			MaterialCode: code,
			ProductName:  r.str("product_name"),
			BalanceQty:   r.num("balance_qty"),
			UnitPrice:    r.num("unit_price"),
		})
	})
	return out, err
}

func parseChannelCosts(t Table) ([]domain.ChannelCostSummary, error) {
	out := make([]domain.ChannelCostSummary, 0, len(t.Rows))
	err := eachRow(t, channelCostSchema, func(r row) {
		name := r.str("channel_name")
		if name == "" {
			skipped(KindChannelCosts, "channel_name", r)
			return
		}
		out = append(out, domain.ChannelCostSummary{
			ChannelName:           name,
			TotalVariableRatePct:  r.num("total_variable_rate_pct"),
			TotalVariablePerOrder: r.num("total_variable_per_order"),
			TotalFixedMonthly:     r.num("total_fixed_monthly"),
			DiscountRate:          r.num("discount_rate"),
			CommissionRate:        r.num("commission_rate"),
		})
	})
	return out, err
}

func parseLabor(t Table) ([]domain.LaborRecord, error) {
	out := make([]domain.LaborRecord, 0, len(t.Rows))
	err := eachRow(t, laborSchema, func(r row) {
		month, ok := parseMonth(r.str("month"))
		if !ok {
			skipped(KindLabor, "month", r)
			return
		}
		out = append(out, domain.LaborRecord{
			Month:      month,
			Department: r.str("department"),
			Headcount:  int(r.num("headcount")),
			TotalCost:  r.num("total_cost"),
		})
	})
	return out, err
}

// parseMonth normalizes "2025-01", "2025/01", "202501" or a full date to YYYY-MM.
func parseMonth(v string) (string, bool) {
	v = strings.TrimSpace(v)
	for _, layout := range []string{"2006-01", "2006/01", "2006.01", "200601", "2006-1"} {
		if t, err := time.Parse(layout, v); err == nil {
			return t.Format("2006-01"), true
		}
	}
	if t, ok := parseDate(v); ok {
		return t.Format("2006-01"), true
	}
	return "", false
}
