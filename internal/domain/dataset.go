package domain

import "time"

// DateRange bounds a dataset load. Zero values mean unbounded.
type DateRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// Contains reports whether t falls inside the range (inclusive on both ends).
func (r DateRange) Contains(t time.Time) bool {
	if !r.From.IsZero() && t.Before(r.From) {
		return false
	}
	if !r.To.IsZero() && t.After(r.To) {
		return false
	}
	return true
}

// Dataset is the full set of already-fetched rows one insight computation works on.
type Dataset struct {
	Purchases          []PurchaseRecord        `json:"purchases"`
	Production         []ProductionRecord      `json:"production"`
	Sales              []DailySalesRecord      `json:"sales"`
	Utilities          []UtilityRecord         `json:"utilities"`
	Inventory          []InventorySafetyItem   `json:"inventory"`
	BomItems           []BomItemData           `json:"bom_items"`
	MaterialMaster     []MaterialMasterItem    `json:"material_master"`
	InventorySnapshots []InventorySnapshotData `json:"inventory_snapshots"`
	ChannelCosts       []ChannelCostSummary    `json:"channel_costs"`
	LaborRecords       []LaborRecord           `json:"labor_records"`

	// AsOf is the reference date for recency calculations.
	// When zero, the latest date found in the dataset is used.
	AsOf time.Time `json:"as_of"`
}

// RowCounts reports the number of rows per table.
func (ds Dataset) RowCounts() map[string]int {
	return map[string]int{
		"purchases":           len(ds.Purchases),
		"production":          len(ds.Production),
		"sales":               len(ds.Sales),
		"utilities":           len(ds.Utilities),
		"inventory":           len(ds.Inventory),
		"bom_items":           len(ds.BomItems),
		"material_master":     len(ds.MaterialMaster),
		"inventory_snapshots": len(ds.InventorySnapshots),
		"channel_costs":       len(ds.ChannelCosts),
		"labor_records":       len(ds.LaborRecords),
	}
}

func (ds Dataset) TotalRows() int {
	n := 0
	for _, c := range ds.RowCounts() {
		n += c
	}
	return n
}
