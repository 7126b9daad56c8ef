package insight

import (
	"strings"

	"github.com/andresuchdata/food-insight/backend-go/internal/domain"
)

// Inventory value sources.
const (
	InventoryValueSnapshot  = "snapshot"
	InventoryValueEstimated = "estimated"
)

// MonthlyCashFlow is one month of operating cash movement.
type MonthlyCashFlow struct {
	Month         string  `json:"month"`
	Inflow        float64 `json:"inflow"`
	Purchases     float64 `json:"purchases"`
	Utilities     float64 `json:"utilities"`
	Labor         float64 `json:"labor"`
	Outflow       float64 `json:"outflow"`
	Net           float64 `json:"net"`
	CumulativeNet float64 `json:"cumulative_net"`
}

// CashFlowInsight is the output of ComputeCashFlow.
type CashFlowInsight struct {
	InventoryValue       float64           `json:"inventory_value"`
	InventoryValueSource string            `json:"inventory_value_source"`
	AvgDailyPurchase     float64           `json:"avg_daily_purchase"`
	AvgDailyRevenue      float64           `json:"avg_daily_revenue"`
	DIO                  float64           `json:"dio"`
	DSO                  float64           `json:"dso"`
	DPO                  float64           `json:"dpo"`
	CCC                  float64           `json:"ccc"`
	WorkingCapitalNeed   float64           `json:"working_capital_need"`
	TotalInflow          float64           `json:"total_inflow"`
	TotalOutflow         float64           `json:"total_outflow"`
	NetCashFlow          float64           `json:"net_cash_flow"`
	Monthly              []MonthlyCashFlow `json:"monthly"`
}

// ComputeCashFlow derives the cash conversion cycle (DIO + DSO - DPO) and the monthly
// operating cash flow. DSO weights each channel's settlement delay by its revenue.
func ComputeCashFlow(ds domain.Dataset, cfg domain.BusinessConfig) *CashFlowInsight {
	result := &CashFlowInsight{Monthly: []MonthlyCashFlow{}}

	result.InventoryValue, result.InventoryValueSource = inventoryValue(ds)

	if first, last, ok := dateSpan(ds.Purchases, purchaseDate); ok {
		var spend float64
		for _, p := range ds.Purchases {
			spend += p.Total
		}
		result.AvgDailyPurchase = spend / float64(spanDays(first, last))
	}

	var weightedDays, revenue float64
	for _, ch := range Channels {
		var r float64
		for _, s := range ds.Sales {
			r += channelRevenue(ch.Key, s)
		}
		weightedDays += r * settlementDays(ch.Key, cfg)
		revenue += r
	}
	if first, last, ok := dateSpan(ds.Sales, salesDate); ok {
		result.AvgDailyRevenue = revenue / float64(spanDays(first, last))
	}

	dio := safeDiv(result.InventoryValue, result.AvgDailyPurchase, 0)
	dso := safeDiv(weightedDays, revenue, 0)
	dpo := cfg.PayableDays
	ccc := dio + dso - dpo

	result.DIO = round(dio, 1)
	result.DSO = round(dso, 1)
	result.DPO = round(dpo, 1)
	result.CCC = round(ccc, 1)
	result.WorkingCapitalNeed = round(ccc*result.AvgDailyPurchase, 0)
	result.AvgDailyPurchase = round(result.AvgDailyPurchase, 0)
	result.AvgDailyRevenue = round(result.AvgDailyRevenue, 0)
	result.InventoryValue = round(result.InventoryValue, 0)

	result.Monthly = monthlyCashFlow(ds)
	for _, m := range result.Monthly {
		result.TotalInflow += m.Inflow
		result.TotalOutflow += m.Outflow
	}
	result.NetCashFlow = result.TotalInflow - result.TotalOutflow
	return result
}

// inventoryValue prefers the latest ERP snapshot and otherwise prices current stock at
// the average purchase price of each product.
func inventoryValue(ds domain.Dataset) (float64, string) {
	if _, last, ok := dateSpan(ds.InventorySnapshots, snapshotDate); ok {
		var v float64
		for _, s := range ds.InventorySnapshots {
			if truncateDay(s.SnapshotDate).Equal(last) {
				v += s.Value()
			}
		}
		return v, InventoryValueSnapshot
	}

	stock := newStockIndex(ds.Inventory)
	var v float64
	for _, g := range groupPurchases(ds.Purchases) {
		if inv, ok := stock.lookup(g.Code, g.Name); ok {
			v += inv.CurrentStock * g.avgUnitPrice()
		}
	}
	return v, InventoryValueEstimated
}

func monthlyCashFlow(ds domain.Dataset) []MonthlyCashFlow {
	inflow := AggregateByPeriod(ds.Sales, Monthly, salesDate, func(s domain.DailySalesRecord) float64 {
		return s.TotalRevenue
	})
	purchases := AggregateByPeriod(ds.Purchases, Monthly, purchaseDate, purchaseTotal)
	utilities := AggregateByPeriod(ds.Utilities, Monthly, utilityDate, domain.UtilityRecord.Total)
	labor := AggregateBy(ds.LaborRecords,
		func(l domain.LaborRecord) string { return strings.TrimSpace(l.Month) },
		func(l domain.LaborRecord) float64 { return l.TotalCost })

	months := make(map[string]struct{})
	for _, m := range []map[string]float64{inflow, purchases, utilities} {
		for k := range m {
			months[k] = struct{}{}
		}
	}
	// Payroll alone does not open a month; it only counts inside months with activity.

	out := make([]MonthlyCashFlow, 0, len(months))
	var cumulative float64
	for _, month := range SortedKeys(months) {
		outflow := purchases[month] + utilities[month] + labor[month]
		net := inflow[month] - outflow
		cumulative += net
		out = append(out, MonthlyCashFlow{
			Month:         month,
			Inflow:        round(inflow[month], 0),
			Purchases:     round(purchases[month], 0),
			Utilities:     round(utilities[month], 0),
			Labor:         round(labor[month], 0),
			Outflow:       round(outflow, 0),
			Net:           round(net, 0),
			CumulativeNet: round(cumulative, 0),
		})
	}
	return out
}
