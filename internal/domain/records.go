// backend-go/internal/domain/records.go
package domain

import "time"

// PurchaseRecord is a single material purchase line pulled from the ERP or purchase sheet.
type PurchaseRecord struct {
	Date        time.Time `json:"date" db:"purchase_date"`
	ProductCode string    `json:"product_code" db:"product_code"`
	ProductName string    `json:"product_name" db:"product_name"`
	Quantity    float64   `json:"quantity" db:"quantity"`
	UnitPrice   float64   `json:"unit_price" db:"unit_price"`
	Total       float64   `json:"total" db:"total"`
}

// ProductionRecord is one day of production output and waste.
type ProductionRecord struct {
	Date             time.Time `json:"date" db:"production_date"`
	NormalQty        float64   `json:"normal_qty" db:"normal_qty"`
	PreprocessQty    float64   `json:"preprocess_qty" db:"preprocess_qty"`
	FrozenQty        float64   `json:"frozen_qty" db:"frozen_qty"`
	SauceQty         float64   `json:"sauce_qty" db:"sauce_qty"`
	BibimbapQty      float64   `json:"bibimbap_qty" db:"bibimbap_qty"`
	TotalQty         float64   `json:"total_qty" db:"total_qty"`
	TotalKg          float64   `json:"total_kg" db:"total_kg"`
	WasteFinishedQty float64   `json:"waste_finished_qty" db:"waste_finished_qty"`
	WasteFinishedPct float64   `json:"waste_finished_pct" db:"waste_finished_pct"` // 0-100
	WasteSemiPct     float64   `json:"waste_semi_pct" db:"waste_semi_pct"`
	WasteSemiKg      float64   `json:"waste_semi_kg" db:"waste_semi_kg"`
}

// DailySalesRecord holds one day of settled revenue per sales channel.
// TotalRevenue is expected to equal the sum of the channel columns; it is not re-validated.
type DailySalesRecord struct {
	Date           time.Time `json:"date" db:"sales_date"`
	JasaRevenue    float64   `json:"jasa_revenue" db:"jasa_revenue"`
	CoupangRevenue float64   `json:"coupang_revenue" db:"coupang_revenue"`
	KurlyRevenue   float64   `json:"kurly_revenue" db:"kurly_revenue"`
	TotalRevenue   float64   `json:"total_revenue" db:"total_revenue"`
}

// UtilityRecord is one day (or billing date) of utility costs.
type UtilityRecord struct {
	Date        time.Time `json:"date" db:"utility_date"`
	Electricity float64   `json:"electricity" db:"electricity"`
	Water       float64   `json:"water" db:"water"`
	Gas         float64   `json:"gas" db:"gas"`
}

// Total returns the combined utility cost of the record.
func (u UtilityRecord) Total() float64 {
	return u.Electricity + u.Water + u.Gas
}

// LaborRecord is the payroll cost of one department for one month (YYYY-MM).
type LaborRecord struct {
	Month      string  `json:"month" db:"month"`
	Department string  `json:"department" db:"department"`
	Headcount  int     `json:"headcount" db:"headcount"`
	TotalCost  float64 `json:"total_cost" db:"total_cost"`
}

// Inventory status values reported by the inventory sheet.
const (
	InventoryStatusShortage  = "Shortage"
	InventoryStatusOverstock = "Overstock"
	InventoryStatusNormal    = "Normal"
)

// InventorySafetyItem is a current stock line of the warehouse inventory sheet.
type InventorySafetyItem struct {
	SKUCode      string  `json:"sku_code" db:"sku_code"`
	SKUName      string  `json:"sku_name" db:"sku_name"`
	CurrentStock float64 `json:"current_stock" db:"current_stock"`
	SafetyStock  float64 `json:"safety_stock" db:"safety_stock"`
	TurnoverRate float64 `json:"turnover_rate" db:"turnover_rate"`
	Status       string  `json:"status" db:"status"`
	Warehouse    string  `json:"warehouse" db:"warehouse"`
}

// ChannelCostSummary is the admin-maintained cost structure of a sales channel.
// DiscountRate and CommissionRate are percentages (0-100).
type ChannelCostSummary struct {
	ChannelName           string  `json:"channel_name" db:"channel_name"`
	TotalVariableRatePct  float64 `json:"total_variable_rate_pct" db:"total_variable_rate_pct"`
	TotalVariablePerOrder float64 `json:"total_variable_per_order" db:"total_variable_per_order"`
	TotalFixedMonthly     float64 `json:"total_fixed_monthly" db:"total_fixed_monthly"`
	DiscountRate          float64 `json:"discount_rate" db:"discount_rate"`
	CommissionRate        float64 `json:"commission_rate" db:"commission_rate"`
}

// BomItemData is one material line of a product recipe.
type BomItemData struct {
	ProductCode    string  `json:"product_code" db:"product_code"`
	ProductName    string  `json:"product_name" db:"product_name"`
	MaterialCode   string  `json:"material_code" db:"material_code"`
	MaterialName   string  `json:"material_name" db:"material_name"`
	ConsumptionQty float64 `json:"consumption_qty" db:"consumption_qty"` // per produced unit
	Unit           string  `json:"unit" db:"unit"`
}

// MaterialMasterItem is the reference price of a material.
type MaterialMasterItem struct {
	MaterialCode string  `json:"material_code" db:"material_code"`
	MaterialName string  `json:"material_name" db:"material_name"`
	UnitPrice    float64 `json:"unit_price" db:"unit_price"`
	Unit         string  `json:"unit" db:"unit"`
}

// InventorySnapshotData is an ERP balance line for a material at a point in time.
type InventorySnapshotData struct {
	SnapshotDate time.Time `json:"snapshot_date" db:"snapshot_date"`
	MaterialCode string    `json:"material_code" db:"material_code"`
	ProductName  string    `json:"product_name" db:"product_name"`
	BalanceQty   float64   `json:"balance_qty" db:"balance_qty"`
	UnitPrice    float64   `json:"unit_price" db:"unit_price"`
}

// Value returns the stock value of the snapshot line.
func (s InventorySnapshotData) Value() float64 {
	return s.BalanceQty * s.UnitPrice
}
