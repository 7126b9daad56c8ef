package insight_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/food-insight/backend-go/internal/domain"
	"github.com/andresuchdata/food-insight/backend-go/internal/insight"
)

// =============================================================================
// COST BREAKDOWN
// =============================================================================

func TestClassifyMaterial(t *testing.T) {
	cfg := testConfig()
	tests := []struct {
		code, name string
		want       insight.MaterialClass
	}{
		{"SM01", "포장재", insight.MaterialSub},
		{"pk-01", "트레이", insight.MaterialSub},
		{"RM01", "양파", insight.MaterialRaw},
		{"1234", "돼지고기", insight.MaterialRaw},
		{"2001", "스티커", insight.MaterialSub},
		{"X1", "포장 박스 대", insight.MaterialSub},
		{"", "Shipping BOX", insight.MaterialSub},
		{"X2", "양파", insight.MaterialRaw},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, insight.ClassifyMaterial(tt.code, tt.name, cfg), "%s/%s", tt.code, tt.name)
	}
}

func costComponent(t *testing.T, r *insight.CostBreakdownInsight, key string) insight.CostComponent {
	t.Helper()
	for _, c := range r.Components {
		if c.Key == key {
			return c
		}
	}
	t.Fatalf("component %s not found", key)
	return insight.CostComponent{}
}

func TestCostBreakdown_EstimatedLabor(t *testing.T) {
	// GIVEN: raw 600k, sub 100k, revenue 3M, no payroll, utilities 50k
	// THEN: labor is 25% of revenue and the four shares add up to 100

	in := insight.CostBreakdownInput{
		Purchases: []domain.PurchaseRecord{
			purchase(day(0), "RM001", "양파", 600, 1000),
			purchase(day(1), "SM001", "용기", 100, 1000),
		},
		Sales:     dailySales(30, 100000, 0, 0),
		Utilities: []domain.UtilityRecord{{Date: day(5), Electricity: 30000, Water: 10000, Gas: 10000}},
	}

	result := insight.ComputeCostBreakdown(in, testConfig())
	require.Len(t, result.Components, 4)

	assert.Equal(t, insight.LaborSourceEstimated, result.LaborSource)
	assert.False(t, result.InventoryAdjusted)
	assert.Equal(t, 600000.0, costComponent(t, result, insight.CostRawMaterial).Amount)
	assert.Equal(t, 100000.0, costComponent(t, result, insight.CostSubMaterial).Amount)
	assert.Equal(t, 750000.0, costComponent(t, result, insight.CostLabor).Amount)
	assert.Equal(t, 50000.0, costComponent(t, result, insight.CostOverhead).Amount)
	assert.Equal(t, 1_500_000.0, result.TotalCost)
	assert.Equal(t, 50.0, result.CostToRevenuePct)

	assert.Equal(t, 40.0, costComponent(t, result, insight.CostRawMaterial).Percentage)
	assert.Equal(t, 6.7, costComponent(t, result, insight.CostSubMaterial).Percentage)
	assert.Equal(t, 50.0, costComponent(t, result, insight.CostLabor).Percentage)
	assert.Equal(t, 3.3, costComponent(t, result, insight.CostOverhead).Percentage)
}

func TestCostBreakdown_PercentagesSumTo100(t *testing.T) {
	// GIVEN: three equal components (33.3% each after rounding)
	// THEN: the remainder goes to the first largest so the total is exactly 100

	in := insight.CostBreakdownInput{
		Purchases: []domain.PurchaseRecord{
			purchase(day(0), "RM001", "양파", 1, 100),
			purchase(day(0), "SM001", "용기", 1, 100),
		},
		Sales: []domain.DailySalesRecord{sales(day(0), 1000, 0, 0)},
		Labor: []domain.LaborRecord{{Month: "2025-01", Department: "생산", Headcount: 1, TotalCost: 100}},
	}

	result := insight.ComputeCostBreakdown(in, testConfig())

	assert.Equal(t, insight.LaborSourceActual, result.LaborSource)
	var total float64
	for _, c := range result.Components {
		total += c.Percentage
	}
	assert.InDelta(t, 100.0, total, 1e-9)
	assert.Equal(t, 33.4, costComponent(t, result, insight.CostRawMaterial).Percentage)
	assert.Equal(t, 0.0, costComponent(t, result, insight.CostOverhead).Percentage)
}

func TestCostBreakdown_LaborOutsideWindowIsIgnored(t *testing.T) {
	in := insight.CostBreakdownInput{
		Purchases: []domain.PurchaseRecord{purchase(day(0), "RM001", "양파", 1, 100)},
		Sales:     []domain.DailySalesRecord{sales(day(0), 1000, 0, 0)},
		Labor:     []domain.LaborRecord{{Month: "2024-06", TotalCost: 99999}},
	}

	result := insight.ComputeCostBreakdown(in, testConfig())
	assert.Equal(t, insight.LaborSourceEstimated, result.LaborSource)
	assert.Equal(t, 250.0, costComponent(t, result, insight.CostLabor).Amount)
}

func TestCostBreakdown_InventoryAdjustment(t *testing.T) {
	in := insight.CostBreakdownInput{
		Purchases: []domain.PurchaseRecord{
			purchase(day(0), "RM001", "양파", 600, 1000),
			purchase(day(1), "SM001", "용기", 100, 1000),
		},
		Sales: dailySales(30, 100000, 0, 0),
		Snapshots: []domain.InventorySnapshotData{
			{SnapshotDate: day(0), MaterialCode: "RM001", ProductName: "양파", BalanceQty: 10, UnitPrice: 1000},
			{SnapshotDate: day(29), MaterialCode: "RM001", ProductName: "양파", BalanceQty: 5, UnitPrice: 1000},
		},
	}

	result := insight.ComputeCostBreakdown(in, testConfig())

	require.True(t, result.InventoryAdjusted)
	raw := result.Adjustments[insight.MaterialRaw]
	assert.Equal(t, 10000.0, raw.Beginning)
	assert.Equal(t, 5000.0, raw.Ending)
	assert.Equal(t, 605000.0, raw.Consumption)
	assert.Equal(t, 605000.0, costComponent(t, result, insight.CostRawMaterial).Amount)
	assert.Equal(t, 100000.0, costComponent(t, result, insight.CostSubMaterial).Amount)
}

// =============================================================================
// INVENTORY COST
// =============================================================================

func TestInventoryCost_ComponentsAddUp(t *testing.T) {
	cfg := testConfig()
	purchases := append(
		dailyPurchases("RM001", "양파", 0, 30, 100, 1000),
		dailyPurchases("RM002", "대파", 0, 30, 10, 500)...,
	)
	items := []domain.InventorySafetyItem{stockItem("RM001", "양파", 0), stockItem("RM002", "대파", 5000)}
	prod := []domain.ProductionRecord{production(day(0), 1000, 10, 1), production(day(29), 1000, 20, 2)}

	order := insight.ComputeStatisticalOrder(items, purchases, cfg, 95)
	result := insight.ComputeInventoryCost(order, purchases, prod, cfg)
	require.Len(t, result.Items, 2)

	var wasteTotal float64
	for _, it := range result.Items {
		parts := it.HoldingCost + it.OrderingCost + it.StockoutCost + it.WasteCost
		assert.InDelta(t, it.TotalCost, parts, 3, it.ProductCode)
		assert.GreaterOrEqual(t, it.EOQSaving, 0.0)
		assert.InDelta(t, 30.0*365/30, it.OrdersPerYear, 1e-9, "one order per day")
		wasteTotal += it.WasteCost
	}

	// 30 waste units over 30 days -> 365 units a year at 3000 each, split by spend.
	assert.InDelta(t, 365*3000, wasteTotal, 2)

	// RM001 is out of stock and carries the shortage risk; RM002 is overstocked.
	byCode := map[string]insight.InventoryCostItem{}
	for _, it := range result.Items {
		byCode[it.ProductCode] = it
	}
	assert.Equal(t, insight.OrderStatusShortage, byCode["RM001"].Status)
	assert.Greater(t, byCode["RM001"].StockoutCost, 0.0)
	assert.Equal(t, 0.0, byCode["RM002"].StockoutCost)

	// Ordering daily is far below EOQ, so moving to EOQ saves money.
	assert.Greater(t, result.Summary.TotalEOQSaving, 0.0)
	assert.Equal(t, 2, result.Summary.ImprovableCount)
}

func TestInventoryCost_LowDemandKeepsFullPrecision(t *testing.T) {
	// GIVEN: two single-unit purchases 300 days apart (2 units over 301 days)
	// WHEN: costing inventory
	// THEN: demand is 2/301 per day, not the displayed 0.01, so each order is exactly one unit

	cfg := testConfig()
	purchases := []domain.PurchaseRecord{
		purchase(day(0), "RM001", "사프란", 1, 10000),
		purchase(day(300), "RM001", "사프란", 1, 10000),
	}
	items := []domain.InventorySafetyItem{stockItem("RM001", "사프란", 0)}

	order := insight.ComputeStatisticalOrder(items, purchases, cfg, 95)
	require.Len(t, order.Items, 1)
	assert.Equal(t, 0.01, order.Items[0].AvgDailyDemand, "display value is rounded")

	result := insight.ComputeInventoryCost(order, purchases, nil, cfg)
	require.Len(t, result.Items, 1)
	it := result.Items[0]

	demand := 2.0 / 301
	ss := order.Items[0].SafetyStock
	assert.Equal(t, 1.0, it.CurrentOrderQty)
	assert.InDelta(t, 730.0/301, it.OrdersPerYear, 0.05)
	assert.InDelta(t, (0.5+ss)*10000*cfg.HoldingCostRate, it.HoldingCost, 1)
	assert.Equal(t, insight.OrderStatusShortage, it.Status)
	assert.InDelta(t, demand*10000*cfg.LeadTimeDays*cfg.StockoutCostMultiplier, it.StockoutCost, 1)
}

func TestInventoryCost_NilOrder(t *testing.T) {
	result := insight.ComputeInventoryCost(nil, nil, nil, testConfig())
	assert.NotNil(t, result.Items)
	assert.Empty(t, result.Items)
}
