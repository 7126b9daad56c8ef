package insight

import (
	"math"
	"sort"

	"github.com/andresuchdata/food-insight/backend-go/internal/domain"
)

// InventoryCostItem is the annualized cost of carrying one product under its current
// ordering pattern.
type InventoryCostItem struct {
	ProductCode     string      `json:"product_code"`
	ProductName     string      `json:"product_name"`
	Status          OrderStatus `json:"status"`
	CurrentOrderQty float64     `json:"current_order_qty"`
	OrdersPerYear   float64     `json:"orders_per_year"`
	EOQ             float64     `json:"eoq"`
	AvgStock        float64     `json:"avg_stock"`
	HoldingCost     float64     `json:"holding_cost"`
	OrderingCost    float64     `json:"ordering_cost"`
	StockoutCost    float64     `json:"stockout_cost"`
	WasteCost       float64     `json:"waste_cost"`
	TotalCost       float64     `json:"total_cost"`
	CostAtEOQ       float64     `json:"cost_at_eoq"`
	EOQSaving       float64     `json:"eoq_saving"`
}

// InventoryCostSummary totals every product.
type InventoryCostSummary struct {
	TotalHoldingCost  float64 `json:"total_holding_cost"`
	TotalOrderingCost float64 `json:"total_ordering_cost"`
	TotalStockoutCost float64 `json:"total_stockout_cost"`
	TotalWasteCost    float64 `json:"total_waste_cost"`
	TotalCost         float64 `json:"total_cost"`
	TotalEOQSaving    float64 `json:"total_eoq_saving"`
	ImprovableCount   int     `json:"improvable_count"`
}

// InventoryCostInsight is the output of ComputeInventoryCost, most expensive first.
type InventoryCostInsight struct {
	Items   []InventoryCostItem  `json:"items"`
	Summary InventoryCostSummary `json:"summary"`
}

// ComputeInventoryCost breaks the yearly cost of each ordered product into holding,
// ordering, stockout and waste cost, and estimates what ordering at EOQ would save.
// Stockout risk comes from the status assigned by the statistical order engine.
func ComputeInventoryCost(
	order *StatisticalOrderInsight,
	purchases []domain.PurchaseRecord,
	production []domain.ProductionRecord,
	cfg domain.BusinessConfig,
) *InventoryCostInsight {
	result := &InventoryCostInsight{Items: []InventoryCostItem{}}
	if order == nil || len(order.Items) == 0 {
		return result
	}

	groups := make(map[string]productGroup)
	var totalSpend float64
	for _, g := range groupPurchases(purchases) {
		groups[g.Code] = g
		totalSpend += g.TotalCost
	}
	annualWaste := annualWasteCost(production, cfg)

	s := &result.Summary
	for _, it := range order.Items {
		g := groups[it.ProductCode]
		// Item demand and price are rounded for display; recompute them at full precision.
		avgDemand, price := it.AvgDailyDemand, it.UnitPrice
		if len(g.Purchases) > 0 {
			avgDemand, _ = g.demandRate()
			price = g.avgUnitPrice()
		}
		annualDemand := avgDemand * 365
		holdingPerUnit := price * cfg.HoldingCostRate

		ordersPerYear := float64(len(g.Purchases)) * 365 / float64(max(1, it.DemandDays))
		currentQty := safeDiv(annualDemand, ordersPerYear, 0)

		avgStock := currentQty/2 + it.SafetyStock
		holding := avgStock * holdingPerUnit
		ordering := ordersPerYear * cfg.OrderCost
		stockout := stockoutRisk(it.Status, cfg) * avgDemand * price * cfg.LeadTimeDays * cfg.StockoutCostMultiplier
		waste := annualWaste * safeDiv(g.TotalCost, totalSpend, 0)
		total := holding + ordering + stockout + waste

		costAtEOQ := total
		if it.EOQ > 0 {
			eoqHolding := (it.EOQ/2 + it.SafetyStock) * holdingPerUnit
			eoqOrdering := annualDemand / it.EOQ * cfg.OrderCost
			costAtEOQ = eoqHolding + eoqOrdering + stockout + waste
		}
		saving := math.Max(0, total-costAtEOQ)

		result.Items = append(result.Items, InventoryCostItem{
			ProductCode:     it.ProductCode,
			ProductName:     it.ProductName,
			Status:          it.Status,
			CurrentOrderQty: round(currentQty, 1),
			OrdersPerYear:   round(ordersPerYear, 1),
			EOQ:             it.EOQ,
			AvgStock:        round(avgStock, 1),
			HoldingCost:     round(holding, 0),
			OrderingCost:    round(ordering, 0),
			StockoutCost:    round(stockout, 0),
			WasteCost:       round(waste, 0),
			TotalCost:       round(total, 0),
			CostAtEOQ:       round(costAtEOQ, 0),
			EOQSaving:       round(saving, 0),
		})

		s.TotalHoldingCost += holding
		s.TotalOrderingCost += ordering
		s.TotalStockoutCost += stockout
		s.TotalWasteCost += waste
		s.TotalCost += total
		s.TotalEOQSaving += saving
		if saving > 0 {
			s.ImprovableCount++
		}
	}

	sort.SliceStable(result.Items, func(i, j int) bool {
		return result.Items[i].TotalCost > result.Items[j].TotalCost
	})

	s.TotalHoldingCost = round(s.TotalHoldingCost, 0)
	s.TotalOrderingCost = round(s.TotalOrderingCost, 0)
	s.TotalStockoutCost = round(s.TotalStockoutCost, 0)
	s.TotalWasteCost = round(s.TotalWasteCost, 0)
	s.TotalCost = round(s.TotalCost, 0)
	s.TotalEOQSaving = round(s.TotalEOQSaving, 0)
	return result
}

func stockoutRisk(status OrderStatus, cfg domain.BusinessConfig) float64 {
	switch status {
	case OrderStatusShortage:
		return cfg.StockoutRiskShortage
	case OrderStatusUrgent:
		return cfg.StockoutRiskUrgent
	case OrderStatusOverstock:
		return cfg.StockoutRiskOverstock
	default:
		return cfg.StockoutRiskNormal
	}
}

// annualWasteCost scales finished-goods waste over the production window to a year.
func annualWasteCost(production []domain.ProductionRecord, cfg domain.BusinessConfig) float64 {
	first, last, ok := dateSpan(production, productionDate)
	if !ok {
		return 0
	}
	var qty float64
	for _, r := range production {
		qty += r.WasteFinishedQty
	}
	return qty * cfg.WasteCostPerUnit * 365 / float64(spanDays(first, last))
}
