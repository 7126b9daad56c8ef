package insight

import (
	"math"
	"sort"

	"github.com/andresuchdata/food-insight/backend-go/internal/domain"
)

// MonthlyPrice is the average unit price paid for a material in one month.
type MonthlyPrice struct {
	Month    string  `json:"month"`
	AvgPrice float64 `json:"avg_price"`
	Qty      float64 `json:"qty"`
}

// MaterialPriceItem tracks the month-over-month price movement of one material.
type MaterialPriceItem struct {
	MaterialCode  string         `json:"material_code"`
	MaterialName  string         `json:"material_name"`
	PreviousMonth string         `json:"previous_month"`
	CurrentMonth  string         `json:"current_month"`
	PreviousPrice float64        `json:"previous_price"`
	CurrentPrice  float64        `json:"current_price"`
	ChangePct     float64        `json:"change_pct"`
	Alert         bool           `json:"alert"`
	History       []MonthlyPrice `json:"history"`
}

// MaterialPriceInsight is the output of ComputeMaterialPrices, largest absolute change first.
type MaterialPriceInsight struct {
	Items         []MaterialPriceItem `json:"items"`
	AlertCount    int                 `json:"alert_count"`
	IncreaseCount int                 `json:"increase_count"`
	DecreaseCount int                 `json:"decrease_count"`
	AlertPct      float64             `json:"alert_pct"`
}

// ComputeMaterialPrices compares the two most recent purchase months of every material.
// Materials bought in fewer than two months are skipped.
func ComputeMaterialPrices(purchases []domain.PurchaseRecord, cfg domain.BusinessConfig) *MaterialPriceInsight {
	result := &MaterialPriceInsight{
		Items:    []MaterialPriceItem{},
		AlertPct: cfg.PriceChangeAlertPct,
	}

	for _, g := range groupPurchases(purchases) {
		totals := AggregateByPeriod(g.Purchases, Monthly, purchaseDate, purchaseTotal)
		qtys := AggregateByPeriod(g.Purchases, Monthly, purchaseDate, purchaseQty)

		history := make([]MonthlyPrice, 0, len(qtys))
		for _, m := range SortedKeys(qtys) {
			if qtys[m] <= 0 {
				continue
			}
			history = append(history, MonthlyPrice{Month: m, AvgPrice: totals[m] / qtys[m], Qty: qtys[m]})
		}
		if len(history) < 2 {
			continue
		}

		prev, cur := history[len(history)-2], history[len(history)-1]
		change := safeDiv((cur.AvgPrice-prev.AvgPrice)*100, prev.AvgPrice, 0)
		alert := math.Abs(change) >= cfg.PriceChangeAlertPct

		for i := range history {
			history[i].AvgPrice = round(history[i].AvgPrice, 2)
		}
		result.Items = append(result.Items, MaterialPriceItem{
			MaterialCode:  g.Code,
			MaterialName:  g.Name,
			PreviousMonth: prev.Month,
			CurrentMonth:  cur.Month,
			PreviousPrice: round(prev.AvgPrice, 2),
			CurrentPrice:  round(cur.AvgPrice, 2),
			ChangePct:     round(change, 1),
			Alert:         alert,
			History:       history,
		})

		if alert {
			result.AlertCount++
		}
		switch {
		case change > 0:
			result.IncreaseCount++
		case change < 0:
			result.DecreaseCount++
		}
	}

	sort.SliceStable(result.Items, func(i, j int) bool {
		return math.Abs(result.Items[i].ChangePct) > math.Abs(result.Items[j].ChangePct)
	})
	return result
}
