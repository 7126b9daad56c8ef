package insight_test

import (
	"fmt"
	"time"

	"github.com/andresuchdata/food-insight/backend-go/internal/domain"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

var baseDate = time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)

func day(n int) time.Time {
	return baseDate.AddDate(0, 0, n)
}

func testConfig() domain.BusinessConfig {
	return domain.BusinessConfig{
		ServiceLevel:    95,
		LeadTimeDays:    3,
		LeadTimeStdDev:  1,
		OrderCost:       50000,
		HoldingCostRate: 0.2,
		OverstockDays:   60,

		ABCClassAThreshold: 80,
		ABCClassBThreshold: 95,
		XYZClassXThreshold: 0.5,
		XYZClassYThreshold: 1.0,

		FreshnessRecencyDays:  30,
		FreshnessCoverageDays: 60,

		BomOveruseThreshold:        10,
		BomUnderuseThreshold:       -10,
		BomPriceDeviationThreshold: 5,
		BomMinimumSpend:            100000,
		BomSeverityHighPct:         30,
		BomSeverityMediumPct:       15,

		VATRate:               0.1,
		MaterialCostRatio:     0.5,
		AverageOrderValue:     30000,
		JasaSettlementDays:    3,
		CoupangSettlementDays: 60,
		KurlySettlementDays:   45,

		LaborCostRatioPct:       25,
		RawMaterialCodePrefixes: []string{"RM", "1"},
		SubMaterialCodePrefixes: []string{"SM", "PK", "2"},
		SubMaterialKeywords:     []string{"박스", "용기", "비닐", "라벨", "box"},

		StockoutCostMultiplier: 1.5,
		WasteCostPerUnit:       3000,
		StockoutRiskShortage:   1.0,
		StockoutRiskUrgent:     0.5,
		StockoutRiskNormal:     0.1,
		StockoutRiskOverstock:  0,

		PayableDays:         30,
		WasteThresholdPct:   3,
		PriceChangeAlertPct: 10,

		RevenueBrackets: []domain.RevenueBracket{
			{Label: "small", MonthlyRevenue: 0, RevenueToRawMaterial: 2.5, RevenueToSubMaterial: 10, ProductionToLabor: 300, RevenueToExpense: 20, WasteRatePct: 3},
			{Label: "medium", MonthlyRevenue: 100_000_000, RevenueToRawMaterial: 2.8, RevenueToSubMaterial: 12, ProductionToLabor: 350, RevenueToExpense: 25, WasteRatePct: 2.5},
			{Label: "large", MonthlyRevenue: 300_000_000, RevenueToRawMaterial: 3.0, RevenueToSubMaterial: 14, ProductionToLabor: 400, RevenueToExpense: 30, WasteRatePct: 2},
		},
	}
}

func purchase(d time.Time, code, name string, qty, price float64) domain.PurchaseRecord {
	return domain.PurchaseRecord{
		Date:        d,
		ProductCode: code,
		ProductName: name,
		Quantity:    qty,
		UnitPrice:   price,
		Total:       qty * price,
	}
}

// dailyPurchases buys qty units of one product every day for the given number of days.
func dailyPurchases(code, name string, startDay, days int, qty, price float64) []domain.PurchaseRecord {
	out := make([]domain.PurchaseRecord, 0, days)
	for i := 0; i < days; i++ {
		out = append(out, purchase(day(startDay+i), code, name, qty, price))
	}
	return out
}

func stockItem(code, name string, stock float64) domain.InventorySafetyItem {
	return domain.InventorySafetyItem{
		SKUCode:      code,
		SKUName:      name,
		CurrentStock: stock,
		Status:       domain.InventoryStatusNormal,
		Warehouse:    "main",
	}
}

func production(d time.Time, totalQty, wasteQty, wastePct float64) domain.ProductionRecord {
	return domain.ProductionRecord{
		Date:             d,
		NormalQty:        totalQty,
		TotalQty:         totalQty,
		WasteFinishedQty: wasteQty,
		WasteFinishedPct: wastePct,
	}
}

func sales(d time.Time, jasa, coupang, kurly float64) domain.DailySalesRecord {
	return domain.DailySalesRecord{
		Date:           d,
		JasaRevenue:    jasa,
		CoupangRevenue: coupang,
		KurlyRevenue:   kurly,
		TotalRevenue:   jasa + coupang + kurly,
	}
}

func dailySales(days int, jasa, coupang, kurly float64) []domain.DailySalesRecord {
	out := make([]domain.DailySalesRecord, 0, days)
	for i := 0; i < days; i++ {
		out = append(out, sales(day(i), jasa, coupang, kurly))
	}
	return out
}

func code(i int) string {
	return fmt.Sprintf("RM%03d", i)
}
