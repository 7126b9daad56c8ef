package insight

import (
	"strings"
	"time"

	"github.com/andresuchdata/food-insight/backend-go/internal/domain"
)

// Channel identifies one of the fixed sales channels.
type Channel struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// Channels is the fixed channel set, in reporting order.
var Channels = []Channel{
	{Key: "jasa", Label: "자사몰"},
	{Key: "coupang", Label: "쿠팡"},
	{Key: "kurly", Label: "컬리"},
}

func channelRevenue(key string, s domain.DailySalesRecord) float64 {
	switch key {
	case "jasa":
		return s.JasaRevenue
	case "coupang":
		return s.CoupangRevenue
	case "kurly":
		return s.KurlyRevenue
	default:
		return 0
	}
}

// settlementDays returns the payout delay configured for a channel.
func settlementDays(key string, cfg domain.BusinessConfig) float64 {
	switch key {
	case "jasa":
		return cfg.JasaSettlementDays
	case "coupang":
		return cfg.CoupangSettlementDays
	case "kurly":
		return cfg.KurlySettlementDays
	default:
		return 0
	}
}

// channelCostFor finds the admin cost row of a channel by key or by its Korean label.
func channelCostFor(ch Channel, costs []domain.ChannelCostSummary) (domain.ChannelCostSummary, bool) {
	for _, c := range costs {
		name := strings.ToLower(strings.TrimSpace(c.ChannelName))
		if name == ch.Key || name == strings.ToLower(ch.Label) {
			return c, true
		}
	}
	return domain.ChannelCostSummary{}, false
}

// CascadeStage is one step of the profit waterfall.
type CascadeStage struct {
	Name       string  `json:"name"`
	Amount     float64 `json:"amount"`
	MarginRate float64 `json:"margin_rate"`
}

// ChannelProfit is the profit cascade of one channel. Amounts are not rounded so that
// Profit3 equals SettlementRevenue less the three cost layers exactly; only margin
// rates are rounded to one decimal.
type ChannelProfit struct {
	Channel            string         `json:"channel"`
	ChannelLabel       string         `json:"channel_label"`
	HasCostData        bool           `json:"has_cost_data"`
	SettlementRevenue  float64        `json:"settlement_revenue"`
	RevenueShare       float64        `json:"revenue_share"`
	RecommendedRevenue float64        `json:"recommended_revenue"`
	DiscountAmount     float64        `json:"discount_amount"`
	CommissionAmount   float64        `json:"commission_amount"`
	MaterialCost       float64        `json:"material_cost"`
	Profit1            float64        `json:"profit1"`
	EstimatedOrders    float64        `json:"estimated_orders"`
	VariableCost       float64        `json:"variable_cost"`
	Profit2            float64        `json:"profit2"`
	FixedCost          float64        `json:"fixed_cost"`
	Profit3            float64        `json:"profit3"`
	MarginRate1        float64        `json:"margin_rate1"`
	MarginRate2        float64        `json:"margin_rate2"`
	MarginRate3        float64        `json:"margin_rate3"`
	SettlementDays     float64        `json:"settlement_days"`
	Stages             []CascadeStage `json:"stages"`
}

// ChannelTotals rolls every channel cascade up into one.
type ChannelTotals struct {
	SettlementRevenue  float64 `json:"settlement_revenue"`
	RecommendedRevenue float64 `json:"recommended_revenue"`
	DiscountAmount     float64 `json:"discount_amount"`
	CommissionAmount   float64 `json:"commission_amount"`
	MaterialCost       float64 `json:"material_cost"`
	Profit1            float64 `json:"profit1"`
	VariableCost       float64 `json:"variable_cost"`
	Profit2            float64 `json:"profit2"`
	FixedCost          float64 `json:"fixed_cost"`
	Profit3            float64 `json:"profit3"`
	MarginRate1        float64 `json:"margin_rate1"`
	MarginRate2        float64 `json:"margin_rate2"`
	MarginRate3        float64 `json:"margin_rate3"`
}

// WeeklyChannelRevenue is one week (keyed by its Monday) of revenue per channel.
type WeeklyChannelRevenue struct {
	Week    string             `json:"week"`
	Revenue map[string]float64 `json:"revenue"`
	Total   float64            `json:"total"`
}

// PurchaseGap compares the material cost implied by revenue with actual purchases
// in the same window.
type PurchaseGap struct {
	EstimatedMaterialCost float64 `json:"estimated_material_cost"`
	ActualPurchaseCost    float64 `json:"actual_purchase_cost"`
	Gap                   float64 `json:"gap"`
	GapPct                float64 `json:"gap_pct"`
}

// ChannelRevenueInsight is the output of ComputeChannelRevenue.
type ChannelRevenueInsight struct {
	PeriodDays  int                    `json:"period_days"`
	Channels    []ChannelProfit        `json:"channels"`
	Totals      ChannelTotals          `json:"totals"`
	WeeklyTrend []WeeklyChannelRevenue `json:"weekly_trend"`
	PurchaseGap PurchaseGap            `json:"purchase_gap"`
}

// ComputeChannelRevenue runs the profit cascade for every channel over the sales window.
func ComputeChannelRevenue(
	sales []domain.DailySalesRecord,
	purchases []domain.PurchaseRecord,
	costs []domain.ChannelCostSummary,
	cfg domain.BusinessConfig,
) *ChannelRevenueInsight {
	result := &ChannelRevenueInsight{
		Channels:    make([]ChannelProfit, 0, len(Channels)),
		WeeklyTrend: []WeeklyChannelRevenue{},
	}

	first, last, ok := dateSpan(sales, salesDate)
	if !ok {
		return result
	}
	result.PeriodDays = spanDays(first, last)

	var grandRevenue float64
	revenues := make(map[string]float64, len(Channels))
	for _, ch := range Channels {
		for _, s := range sales {
			revenues[ch.Key] += channelRevenue(ch.Key, s)
		}
		grandRevenue += revenues[ch.Key]
	}

	t := &result.Totals
	for _, ch := range Channels {
		cost, found := channelCostFor(ch, costs)
		cp := channelCascade(ch, revenues[ch.Key], cost, result.PeriodDays, cfg)
		cp.HasCostData = found
		cp.RevenueShare = round(pct(cp.SettlementRevenue, grandRevenue), 1)
		cp.SettlementDays = settlementDays(ch.Key, cfg)
		result.Channels = append(result.Channels, cp)

		t.SettlementRevenue += cp.SettlementRevenue
		t.RecommendedRevenue += cp.RecommendedRevenue
		t.DiscountAmount += cp.DiscountAmount
		t.CommissionAmount += cp.CommissionAmount
		t.MaterialCost += cp.MaterialCost
		t.Profit1 += cp.Profit1
		t.VariableCost += cp.VariableCost
		t.Profit2 += cp.Profit2
		t.FixedCost += cp.FixedCost
		t.Profit3 += cp.Profit3
	}
	t.MarginRate1 = marginRate(t.Profit1, t.SettlementRevenue)
	t.MarginRate2 = marginRate(t.Profit2, t.SettlementRevenue)
	t.MarginRate3 = marginRate(t.Profit3, t.SettlementRevenue)

	result.WeeklyTrend = weeklyChannelTrend(sales)
	result.PurchaseGap = purchaseGap(purchases, first, last, t.MaterialCost)
	return result
}

func channelCascade(ch Channel, settlement float64, cost domain.ChannelCostSummary, periodDays int, cfg domain.BusinessConfig) ChannelProfit {
	discountRate := cost.DiscountRate / 100
	commissionRate := cost.CommissionRate / 100

	recommended := settlement
	if denom := 1 - discountRate - commissionRate; denom > 0 {
		recommended = settlement / denom
	}

	materialCost := recommended / (1 + cfg.VATRate) * cfg.MaterialCostRatio
	profit1 := settlement - materialCost

	orders := round(safeDiv(settlement, cfg.AverageOrderValue, 0), 0)
	variable := settlement*cost.TotalVariableRatePct/100 + orders*cost.TotalVariablePerOrder
	profit2 := profit1 - variable

	fixed := cost.TotalFixedMonthly * float64(periodDays) / 30
	profit3 := profit2 - fixed

	cp := ChannelProfit{
		Channel:            ch.Key,
		ChannelLabel:       ch.Label,
		SettlementRevenue:  settlement,
		RecommendedRevenue: recommended,
		DiscountAmount:     recommended * discountRate,
		CommissionAmount:   recommended * commissionRate,
		MaterialCost:       materialCost,
		Profit1:            profit1,
		EstimatedOrders:    orders,
		VariableCost:       variable,
		Profit2:            profit2,
		FixedCost:          fixed,
		Profit3:            profit3,
		MarginRate1:        marginRate(profit1, settlement),
		MarginRate2:        marginRate(profit2, settlement),
		MarginRate3:        marginRate(profit3, settlement),
	}
	cp.Stages = []CascadeStage{
		{Name: "recommended_revenue", Amount: recommended, MarginRate: marginRate(recommended, settlement)},
		{Name: "settlement_revenue", Amount: settlement, MarginRate: marginRate(settlement, settlement)},
		{Name: "profit_after_material", Amount: profit1, MarginRate: cp.MarginRate1},
		{Name: "profit_after_variable", Amount: profit2, MarginRate: cp.MarginRate2},
		{Name: "profit_after_fixed", Amount: profit3, MarginRate: cp.MarginRate3},
	}
	return cp
}

func marginRate(profit, revenue float64) float64 {
	return round(pct(profit, revenue), 1)
}

func weeklyChannelTrend(sales []domain.DailySalesRecord) []WeeklyChannelRevenue {
	byChannel := make(map[string]map[string]float64, len(Channels))
	weeks := make(map[string]struct{})
	for _, ch := range Channels {
		key := ch.Key
		byChannel[key] = AggregateByPeriod(sales, Weekly, salesDate, func(s domain.DailySalesRecord) float64 {
			return channelRevenue(key, s)
		})
		for w := range byChannel[key] {
			weeks[w] = struct{}{}
		}
	}

	trend := make([]WeeklyChannelRevenue, 0, len(weeks))
	for _, w := range SortedKeys(weeks) {
		row := WeeklyChannelRevenue{Week: w, Revenue: make(map[string]float64, len(Channels))}
		for _, ch := range Channels {
			v := byChannel[ch.Key][w]
			row.Revenue[ch.Key] = round(v, 0)
			row.Total += v
		}
		row.Total = round(row.Total, 0)
		trend = append(trend, row)
	}
	return trend
}

func purchaseGap(purchases []domain.PurchaseRecord, from, to time.Time, estimated float64) PurchaseGap {
	window := domain.DateRange{From: from, To: to}
	var actual float64
	for _, p := range purchases {
		if window.Contains(truncateDay(p.Date)) {
			actual += p.Total
		}
	}
	gap := actual - estimated
	return PurchaseGap{
		EstimatedMaterialCost: round(estimated, 0),
		ActualPurchaseCost:    round(actual, 0),
		Gap:                   round(gap, 0),
		GapPct:                round(pct(gap, estimated), 1),
	}
}
