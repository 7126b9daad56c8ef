package insight

import (
	"sort"
	"time"

	"github.com/andresuchdata/food-insight/backend-go/internal/domain"
)

const worstWasteDays = 5

// WasteDay is a single production day with its waste.
type WasteDay struct {
	Date             time.Time `json:"date"`
	WasteFinishedPct float64   `json:"waste_finished_pct"`
	WasteFinishedQty float64   `json:"waste_finished_qty"`
	TotalQty         float64   `json:"total_qty"`
}

// WeeklyWaste is one week (keyed by its Monday) of waste figures.
type WeeklyWaste struct {
	Week             string  `json:"week"`
	AvgFinishedPct   float64 `json:"avg_finished_pct"`
	WasteFinishedQty float64 `json:"waste_finished_qty"`
	WasteSemiKg      float64 `json:"waste_semi_kg"`
}

// WasteInsight is the output of ComputeWaste.
type WasteInsight struct {
	ProductionDays     int           `json:"production_days"`
	AvgFinishedPct     float64       `json:"avg_finished_pct"`
	AvgSemiPct         float64       `json:"avg_semi_pct"`
	TotalFinishedQty   float64       `json:"total_finished_qty"`
	TotalSemiKg        float64       `json:"total_semi_kg"`
	ThresholdPct       float64       `json:"threshold_pct"`
	DaysAboveThreshold int           `json:"days_above_threshold"`
	EstimatedCost      float64       `json:"estimated_cost"`
	WorstDays          []WasteDay    `json:"worst_days"`
	WeeklyTrend        []WeeklyWaste `json:"weekly_trend"`
}

// ComputeWaste summarizes finished and semi-finished goods waste over the production history.
func ComputeWaste(production []domain.ProductionRecord, cfg domain.BusinessConfig) *WasteInsight {
	result := &WasteInsight{
		ThresholdPct: cfg.WasteThresholdPct,
		WorstDays:    []WasteDay{},
		WeeklyTrend:  []WeeklyWaste{},
	}
	if len(production) == 0 {
		return result
	}

	finished := make([]float64, 0, len(production))
	semi := make([]float64, 0, len(production))
	days := make([]WasteDay, 0, len(production))
	for _, r := range production {
		finished = append(finished, r.WasteFinishedPct)
		semi = append(semi, r.WasteSemiPct)
		result.TotalFinishedQty += r.WasteFinishedQty
		result.TotalSemiKg += r.WasteSemiKg
		if r.WasteFinishedPct > cfg.WasteThresholdPct {
			result.DaysAboveThreshold++
		}
		days = append(days, WasteDay{
			Date:             truncateDay(r.Date),
			WasteFinishedPct: r.WasteFinishedPct,
			WasteFinishedQty: r.WasteFinishedQty,
			TotalQty:         r.TotalQty,
		})
	}

	result.ProductionDays = len(production)
	result.AvgFinishedPct = round(mean(finished), 2)
	result.AvgSemiPct = round(mean(semi), 2)
	result.EstimatedCost = round(result.TotalFinishedQty*cfg.WasteCostPerUnit, 0)

	sort.SliceStable(days, func(i, j int) bool {
		if days[i].WasteFinishedPct != days[j].WasteFinishedPct {
			return days[i].WasteFinishedPct > days[j].WasteFinishedPct
		}
		return days[i].Date.Before(days[j].Date)
	})
	result.WorstDays = days[:min(worstWasteDays, len(days))]

	pctSum := AggregateByPeriod(production, Weekly, productionDate, func(r domain.ProductionRecord) float64 { return r.WasteFinishedPct })
	count := AggregateByPeriod(production, Weekly, productionDate, func(domain.ProductionRecord) float64 { return 1 })
	qty := AggregateByPeriod(production, Weekly, productionDate, func(r domain.ProductionRecord) float64 { return r.WasteFinishedQty })
	kg := AggregateByPeriod(production, Weekly, productionDate, func(r domain.ProductionRecord) float64 { return r.WasteSemiKg })
	for _, w := range SortedKeys(count) {
		result.WeeklyTrend = append(result.WeeklyTrend, WeeklyWaste{
			Week:             w,
			AvgFinishedPct:   round(pctSum[w]/count[w], 2),
			WasteFinishedQty: round(qty[w], 1),
			WasteSemiKg:      round(kg[w], 1),
		})
	}
	return result
}
