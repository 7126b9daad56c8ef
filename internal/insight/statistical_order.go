package insight

import (
	"math"
	"sort"

	"github.com/andresuchdata/food-insight/backend-go/internal/domain"
)

// OrderStatus is the replenishment state of a product.
type OrderStatus string

const (
	OrderStatusShortage  OrderStatus = "shortage"
	OrderStatusUrgent    OrderStatus = "urgent"
	OrderStatusNormal    OrderStatus = "normal"
	OrderStatusOverstock OrderStatus = "overstock"
)

var orderStatusPriority = map[OrderStatus]int{
	OrderStatusShortage:  0,
	OrderStatusUrgent:    1,
	OrderStatusNormal:    2,
	OrderStatusOverstock: 3,
}

// StatisticalOrderItem holds the reorder metrics of one product.
type StatisticalOrderItem struct {
	ProductCode       string      `json:"product_code"`
	ProductName       string      `json:"product_name"`
	CurrentStock      float64     `json:"current_stock"`
	StockMatched      bool        `json:"stock_matched"`
	AvgDailyDemand    float64     `json:"avg_daily_demand"`
	StdDevDemand      float64     `json:"std_dev_demand"`
	DemandDays        int         `json:"demand_days"`
	UnitPrice         float64     `json:"unit_price"`
	SafetyStock       float64     `json:"safety_stock"`
	ReorderPoint      float64     `json:"reorder_point"`
	EOQ               float64     `json:"eoq"`
	DaysOfStock       float64     `json:"days_of_stock"`
	Status            OrderStatus `json:"status"`
	SuggestedOrderQty float64     `json:"suggested_order_qty"`
	SuggestedOrderAmt float64     `json:"suggested_order_amount"`
}

// StatisticalOrderSummary counts products per status.
type StatisticalOrderSummary struct {
	TotalProducts       int     `json:"total_products"`
	ShortageCount       int     `json:"shortage_count"`
	UrgentCount         int     `json:"urgent_count"`
	NormalCount         int     `json:"normal_count"`
	OverstockCount      int     `json:"overstock_count"`
	TotalSuggestedValue float64 `json:"total_suggested_value"`
}

// StatisticalOrderInsight is the output of ComputeStatisticalOrder.
type StatisticalOrderInsight struct {
	Items          []StatisticalOrderItem  `json:"items"`
	Summary        StatisticalOrderSummary `json:"summary"`
	ServiceLevel   float64                 `json:"service_level"`
	ZScore         float64                 `json:"z_score"`
	LeadTimeDays   float64                 `json:"lead_time_days"`
	LeadTimeStdDev float64                 `json:"lead_time_std_dev"`
}

// ComputeStatisticalOrder derives safety stock, reorder point and EOQ per purchased product
// under combined demand and lead-time uncertainty. serviceLevel overrides
// cfg.ServiceLevel when positive.
func ComputeStatisticalOrder(
	items []domain.InventorySafetyItem,
	purchases []domain.PurchaseRecord,
	cfg domain.BusinessConfig,
	serviceLevel float64,
) *StatisticalOrderInsight {
	if serviceLevel <= 0 {
		serviceLevel = cfg.ServiceLevel
	}
	z := ZScore(serviceLevel)

	result := &StatisticalOrderInsight{
		Items:          []StatisticalOrderItem{},
		ServiceLevel:   serviceLevel,
		ZScore:         round(z, 3),
		LeadTimeDays:   cfg.LeadTimeDays,
		LeadTimeStdDev: cfg.LeadTimeStdDev,
	}

	stock := newStockIndex(items)
	for _, g := range groupPurchases(purchases) {
		item := orderMetrics(g, stock, z, cfg)
		result.Items = append(result.Items, item)
	}

	sort.SliceStable(result.Items, func(i, j int) bool {
		a, b := result.Items[i], result.Items[j]
		if pa, pb := orderStatusPriority[a.Status], orderStatusPriority[b.Status]; pa != pb {
			return pa < pb
		}
		if a.DaysOfStock != b.DaysOfStock {
			return a.DaysOfStock < b.DaysOfStock
		}
		return a.ProductCode < b.ProductCode
	})

	result.Summary = summarizeOrders(result.Items)
	return result
}

func orderMetrics(g productGroup, stock stockIndex, z float64, cfg domain.BusinessConfig) StatisticalOrderItem {
	first, last, _ := dateSpan(g.Purchases, purchaseDate)
	series := DailySeries(g.Purchases, first, last, purchaseDate, purchaseQty)

	avgDemand, days := g.demandRate()
	stdDev := populationStdDev(series)

	leadTime := cfg.LeadTimeDays
	ltStd := cfg.LeadTimeStdDev
	variance := leadTime*stdDev*stdDev + avgDemand*avgDemand*ltStd*ltStd
	safetyStock := math.Max(0, ceilInt(z*math.Sqrt(variance)))
	rop := ceilInt(avgDemand*leadTime + safetyStock)

	unitPrice := g.avgUnitPrice()
	eoq := EOQ(avgDemand*365, cfg.OrderCost, unitPrice, cfg.HoldingCostRate)

	inv, matched := stock.lookup(g.Code, g.Name)
	current := inv.CurrentStock

	daysOfStock := float64(NoDemandDays)
	if avgDemand > 0 {
		daysOfStock = round(current/avgDemand, 1)
	}

	status := classifyOrderStatus(current, safetyStock, rop, daysOfStock, cfg.OverstockDays)

	var suggested float64
	if current < rop {
		suggested = ceilInt(math.Max(eoq, rop-current+safetyStock))
	}

	return StatisticalOrderItem{
		ProductCode:       g.Code,
		ProductName:       g.Name,
		CurrentStock:      current,
		StockMatched:      matched,
		AvgDailyDemand:    round(avgDemand, 2),
		StdDevDemand:      round(stdDev, 2),
		DemandDays:        days,
		UnitPrice:         round(unitPrice, 2),
		SafetyStock:       safetyStock,
		ReorderPoint:      rop,
		EOQ:               eoq,
		DaysOfStock:       daysOfStock,
		Status:            status,
		SuggestedOrderQty: suggested,
		SuggestedOrderAmt: round(suggested*unitPrice, 0),
	}
}

// EOQ is the economic order quantity, rounded up; 0 when the per-unit holding cost is 0.
func EOQ(annualDemand, orderCost, unitPrice, holdingRate float64) float64 {
	holding := unitPrice * holdingRate
	if holding <= 0 || annualDemand <= 0 || orderCost <= 0 {
		return 0
	}
	return ceilInt(math.Sqrt(2 * annualDemand * orderCost / holding))
}

// classifyOrderStatus applies the status rules in priority order; the first match wins.
func classifyOrderStatus(current, safetyStock, rop, daysOfStock, overstockDays float64) OrderStatus {
	switch {
	case current <= 0 || current < 0.5*safetyStock:
		return OrderStatusShortage
	case current < rop:
		return OrderStatusUrgent
	case daysOfStock > overstockDays:
		return OrderStatusOverstock
	default:
		return OrderStatusNormal
	}
}

func summarizeOrders(items []StatisticalOrderItem) StatisticalOrderSummary {
	s := StatisticalOrderSummary{TotalProducts: len(items)}
	for _, it := range items {
		switch it.Status {
		case OrderStatusShortage:
			s.ShortageCount++
		case OrderStatusUrgent:
			s.UrgentCount++
		case OrderStatusNormal:
			s.NormalCount++
		case OrderStatusOverstock:
			s.OverstockCount++
		}
		s.TotalSuggestedValue += it.SuggestedOrderAmt
	}
	return s
}
