package insight_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/food-insight/backend-go/internal/domain"
	"github.com/andresuchdata/food-insight/backend-go/internal/insight"
)

// =============================================================================
// SAFETY STOCK AND REORDER POINT
// =============================================================================

func TestStatisticalOrder_ConstantDemand(t *testing.T) {
	// GIVEN: 100 units/day for 30 days, lead time 5 days with no variability
	// WHEN: computing at a 95% service level
	// THEN: safety stock is 0 and the reorder point is 500

	cfg := testConfig()
	cfg.LeadTimeDays = 5
	cfg.LeadTimeStdDev = 0

	purchases := dailyPurchases("RM001", "양파", 0, 30, 100, 1000)
	items := []domain.InventorySafetyItem{stockItem("RM001", "양파", 1000)}

	result := insight.ComputeStatisticalOrder(items, purchases, cfg, 95)
	require.Len(t, result.Items, 1)

	it := result.Items[0]
	assert.InDelta(t, 1.645, result.ZScore, 0.001)
	assert.Equal(t, 100.0, it.AvgDailyDemand)
	assert.Equal(t, 0.0, it.StdDevDemand)
	assert.Equal(t, 30, it.DemandDays)
	assert.Equal(t, 0.0, it.SafetyStock)
	assert.Equal(t, 500.0, it.ReorderPoint)
	assert.Equal(t, 10.0, it.DaysOfStock)
	assert.Equal(t, insight.OrderStatusNormal, it.Status)
	assert.Equal(t, 0.0, it.SuggestedOrderQty, "stock above ROP needs no order")

	// sqrt(2 * 36500 * 50000 / (1000 * 0.2)) = 4272.0019...
	assert.Equal(t, 4273.0, it.EOQ)
}

func TestStatisticalOrder_ZeroFilledDaysRaiseVariability(t *testing.T) {
	// GIVEN: 300 units bought every third day over 10 days
	// WHEN: computing demand statistics
	// THEN: silent days count as zero demand, so the std dev is positive
	//       and the average uses the full calendar span

	var purchases []domain.PurchaseRecord
	for _, d := range []int{0, 3, 6, 9} {
		purchases = append(purchases, purchase(day(d), "RM001", "양파", 300, 1000))
	}

	result := insight.ComputeStatisticalOrder(nil, purchases, testConfig(), 95)
	require.Len(t, result.Items, 1)

	it := result.Items[0]
	assert.Equal(t, 10, it.DemandDays)
	assert.Equal(t, 120.0, it.AvgDailyDemand)
	assert.Greater(t, it.StdDevDemand, 0.0)
	assert.Greater(t, it.SafetyStock, 0.0)
}

func TestStatisticalOrder_SafetyStockMonotonicInServiceLevel(t *testing.T) {
	// GIVEN: irregular demand
	// WHEN: raising the service level
	// THEN: safety stock never decreases

	purchases := []domain.PurchaseRecord{
		purchase(day(0), "RM001", "양파", 50, 1000),
		purchase(day(2), "RM001", "양파", 400, 1000),
		purchase(day(3), "RM001", "양파", 10, 1000),
		purchase(day(9), "RM001", "양파", 220, 1000),
	}
	items := []domain.InventorySafetyItem{stockItem("RM001", "양파", 100)}

	prev := -1.0
	for _, level := range []float64{50, 80, 90, 95, 97.5, 99, 99.9} {
		result := insight.ComputeStatisticalOrder(items, purchases, testConfig(), level)
		ss := result.Items[0].SafetyStock
		assert.GreaterOrEqual(t, ss, prev, "service level %v", level)
		prev = ss
	}
}

func TestStatisticalOrder_ServiceLevelOverride(t *testing.T) {
	purchases := dailyPurchases("RM001", "양파", 0, 5, 10, 1000)

	defaulted := insight.ComputeStatisticalOrder(nil, purchases, testConfig(), 0)
	overridden := insight.ComputeStatisticalOrder(nil, purchases, testConfig(), 99)

	assert.Equal(t, 95.0, defaulted.ServiceLevel)
	assert.Equal(t, 99.0, overridden.ServiceLevel)
	assert.Greater(t, overridden.ZScore, defaulted.ZScore)
}

// =============================================================================
// STATUS AND ORDERING
// =============================================================================

func TestStatisticalOrder_ZeroStockIsShortage(t *testing.T) {
	// GIVEN: a product with positive safety stock and no stock on hand
	// THEN: it is a shortage regardless of ROP and an order is suggested

	purchases := []domain.PurchaseRecord{
		purchase(day(0), "RM001", "양파", 100, 1000),
		purchase(day(4), "RM001", "양파", 10, 1000),
	}
	items := []domain.InventorySafetyItem{stockItem("RM001", "양파", 0)}

	result := insight.ComputeStatisticalOrder(items, purchases, testConfig(), 95)
	it := result.Items[0]

	require.Greater(t, it.SafetyStock, 0.0)
	assert.Equal(t, insight.OrderStatusShortage, it.Status)
	assert.GreaterOrEqual(t, it.SuggestedOrderQty, it.EOQ)
	assert.GreaterOrEqual(t, it.SuggestedOrderQty, it.ReorderPoint+it.SafetyStock)
	assert.Equal(t, 1, result.Summary.ShortageCount)
}

func TestStatisticalOrder_SortedByStatusThenDaysOfStock(t *testing.T) {
	// GIVEN: constant demand of 10/day, lead time 5, no variability (SS = 0, ROP = 50)
	cfg := testConfig()
	cfg.LeadTimeDays = 5
	cfg.LeadTimeStdDev = 0

	var purchases []domain.PurchaseRecord
	for _, c := range []string{"A", "B", "C", "D", "E"} {
		purchases = append(purchases, dailyPurchases(c, "item "+c, 0, 10, 10, 500)...)
	}
	items := []domain.InventorySafetyItem{
		stockItem("A", "item A", 1000), // 100 days: overstock
		stockItem("B", "item B", 100),  // 10 days: normal
		stockItem("C", "item C", 30),   // below ROP: urgent
		stockItem("D", "item D", 0),    // shortage
		stockItem("E", "item E", 60),   // 6 days: normal
	}

	result := insight.ComputeStatisticalOrder(items, purchases, cfg, 95)

	var order []string
	for _, it := range result.Items {
		order = append(order, it.ProductCode)
	}
	assert.Equal(t, []string{"D", "C", "E", "B", "A"}, order)
	assert.Equal(t, insight.OrderStatusOverstock, result.Items[4].Status)

	s := result.Summary
	assert.Equal(t, 5, s.TotalProducts)
	assert.Equal(t, 1, s.ShortageCount)
	assert.Equal(t, 1, s.UrgentCount)
	assert.Equal(t, 2, s.NormalCount)
	assert.Equal(t, 1, s.OverstockCount)
}

func TestStatisticalOrder_InventoryJoin(t *testing.T) {
	purchases := append(
		dailyPurchases("RM001", "양파", 0, 5, 10, 1000),
		dailyPurchases("RM002", "대파", 0, 5, 10, 1000)...,
	)
	// RM001 matches by name only; RM002 has no inventory line at all.
	items := []domain.InventorySafetyItem{stockItem("SKU-9", " 양파 ", 40)}

	result := insight.ComputeStatisticalOrder(items, purchases, testConfig(), 95)

	byCode := map[string]insight.StatisticalOrderItem{}
	for _, it := range result.Items {
		byCode[it.ProductCode] = it
	}
	assert.True(t, byCode["RM001"].StockMatched)
	assert.Equal(t, 40.0, byCode["RM001"].CurrentStock)

	assert.False(t, byCode["RM002"].StockMatched)
	assert.Equal(t, 0.0, byCode["RM002"].CurrentStock)
	assert.Equal(t, insight.OrderStatusShortage, byCode["RM002"].Status)
}

func TestStatisticalOrder_StockSummedAcrossWarehouses(t *testing.T) {
	// GIVEN: RM001 stocked in two warehouses, 1000 + 50 units, at 100 units/day
	// WHEN: computing order metrics
	// THEN: current stock is the sum over both rows and the product is not short

	purchases := dailyPurchases("RM001", "양파", 0, 30, 100, 1000)
	items := []domain.InventorySafetyItem{
		{SKUCode: "RM001", SKUName: "양파", CurrentStock: 1000, SafetyStock: 100, Warehouse: "A"},
		{SKUCode: "rm001 ", SKUName: "양파", CurrentStock: 50, SafetyStock: 20, Warehouse: "B"},
	}

	result := insight.ComputeStatisticalOrder(items, purchases, testConfig(), 95)
	require.Len(t, result.Items, 1)

	it := result.Items[0]
	assert.True(t, it.StockMatched)
	assert.Equal(t, 1050.0, it.CurrentStock)
	assert.Equal(t, 10.5, it.DaysOfStock)
	assert.Equal(t, insight.OrderStatusNormal, it.Status)

	// The name fallback sums the same way.
	byName := []domain.InventorySafetyItem{
		{SKUCode: "SKU-1", SKUName: "양파", CurrentStock: 1000, Warehouse: "A"},
		{SKUCode: "SKU-2", SKUName: "양파", CurrentStock: 50, Warehouse: "B"},
	}
	result = insight.ComputeStatisticalOrder(byName, dailyPurchases("RM009", "양파", 0, 30, 100, 1000), testConfig(), 95)
	require.Len(t, result.Items, 1)
	assert.Equal(t, 1050.0, result.Items[0].CurrentStock)
}

func TestStatisticalOrder_NoDemandUsesSentinel(t *testing.T) {
	purchases := []domain.PurchaseRecord{purchase(day(0), "RM001", "양파", 0, 1000)}
	items := []domain.InventorySafetyItem{stockItem("RM001", "양파", 50)}

	result := insight.ComputeStatisticalOrder(items, purchases, testConfig(), 95)

	it := result.Items[0]
	assert.Equal(t, float64(insight.NoDemandDays), it.DaysOfStock)
	assert.Equal(t, 0.0, it.EOQ)
	assert.Equal(t, insight.OrderStatusOverstock, it.Status)
}

func TestStatisticalOrder_NoPurchases(t *testing.T) {
	result := insight.ComputeStatisticalOrder([]domain.InventorySafetyItem{stockItem("A", "a", 1)}, nil, testConfig(), 95)
	assert.NotNil(t, result.Items)
	assert.Empty(t, result.Items)
	assert.Equal(t, 0, result.Summary.TotalProducts)
}

// =============================================================================
// EOQ
// =============================================================================

func TestEOQ(t *testing.T) {
	tests := []struct {
		name         string
		annualDemand float64
		orderCost    float64
		unitPrice    float64
		holdingRate  float64
		want         float64
	}{
		{"textbook", 1000, 10, 2.5, 0.2, 200},
		{"zero price", 1000, 10, 0, 0.2, 0},
		{"zero holding rate", 1000, 10, 2.5, 0, 0},
		{"zero demand", 0, 10, 2.5, 0.2, 0},
		{"rounds up", 1000, 10, 3, 0.2, 183},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := insight.EOQ(tt.annualDemand, tt.orderCost, tt.unitPrice, tt.holdingRate)
			assert.Equal(t, tt.want, got)
			assert.GreaterOrEqual(t, got, 0.0)
		})
	}
}
