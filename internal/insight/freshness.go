package insight

import (
	"math"
	"sort"
	"time"

	"github.com/andresuchdata/food-insight/backend-go/internal/domain"
)

// FreshnessGrade is the risk band of a freshness score.
type FreshnessGrade string

const (
	GradeSafe    FreshnessGrade = "safe"
	GradeGood    FreshnessGrade = "good"
	GradeCaution FreshnessGrade = "caution"
	GradeWarning FreshnessGrade = "warning"
	GradeDanger  FreshnessGrade = "danger"
)

const (
	recencyWeight   = 0.4
	coverageWeight  = 0.3
	stabilityWeight = 0.3

	stabilityPointsPerPurchase = 10
)

// FreshnessItem is the freshness score of one product with its sub-scores.
type FreshnessItem struct {
	ProductCode       string         `json:"product_code"`
	ProductName       string         `json:"product_name"`
	CurrentStock      float64        `json:"current_stock"`
	LastPurchaseDate  time.Time      `json:"last_purchase_date"`
	DaysSincePurchase int            `json:"days_since_purchase"`
	PurchaseCount     int            `json:"purchase_count"`
	AvgDailyDemand    float64        `json:"avg_daily_demand"`
	EstimatedDaysLeft float64        `json:"estimated_days_left"`
	RecencyScore      float64        `json:"recency_score"`
	CoverageScore     float64        `json:"coverage_score"`
	StabilityScore    float64        `json:"stability_score"`
	Score             float64        `json:"score"`
	Grade             FreshnessGrade `json:"grade"`
}

// FreshnessInsight is the output of ComputeFreshness, worst score first.
type FreshnessInsight struct {
	Items        []FreshnessItem        `json:"items"`
	AverageScore float64                `json:"average_score"`
	GradeCounts  map[FreshnessGrade]int `json:"grade_counts"`
}

// ComputeFreshness scores every purchased product on recency of purchase, stock
// coverage and purchase regularity. Days since purchase are measured against asOf.
func ComputeFreshness(
	purchases []domain.PurchaseRecord,
	items []domain.InventorySafetyItem,
	cfg domain.BusinessConfig,
	asOf time.Time,
) *FreshnessInsight {
	result := &FreshnessInsight{
		Items: []FreshnessItem{},
		GradeCounts: map[FreshnessGrade]int{
			GradeSafe: 0, GradeGood: 0, GradeCaution: 0, GradeWarning: 0, GradeDanger: 0,
		},
	}

	first, last, ok := dateSpan(purchases, purchaseDate)
	if !ok {
		return result
	}
	windowDays := float64(spanDays(first, last))
	stock := newStockIndex(items)

	scores := make([]float64, 0)
	for _, g := range groupPurchases(purchases) {
		inv, _ := stock.lookup(g.Code, g.Name)

		avgDemand := g.TotalQty / windowDays
		daysLeft := float64(NoDemandDays)
		if avgDemand > 0 {
			daysLeft = round(inv.CurrentStock/avgDemand, 1)
		}
		since := max(0, daysBetween(g.LastDate, asOf))

		recency := clamp(100-safeDiv(float64(since)*100, cfg.FreshnessRecencyDays, 0), 0, 100)
		coverage := 0.0
		if daysLeft != NoDemandDays {
			coverage = clamp(100-safeDiv(daysLeft*100, cfg.FreshnessCoverageDays, 0), 0, 100)
		}
		stability := math.Min(100, float64(len(g.Purchases)*stabilityPointsPerPurchase))

		score := round(clamp(recencyWeight*recency+coverageWeight*coverage+stabilityWeight*stability, 0, 100), 1)
		grade := gradeFreshness(score)

		result.Items = append(result.Items, FreshnessItem{
			ProductCode:       g.Code,
			ProductName:       g.Name,
			CurrentStock:      inv.CurrentStock,
			LastPurchaseDate:  truncateDay(g.LastDate),
			DaysSincePurchase: since,
			PurchaseCount:     len(g.Purchases),
			AvgDailyDemand:    round(avgDemand, 2),
			EstimatedDaysLeft: daysLeft,
			RecencyScore:      round(recency, 1),
			CoverageScore:     round(coverage, 1),
			StabilityScore:    round(stability, 1),
			Score:             score,
			Grade:             grade,
		})
		result.GradeCounts[grade]++
		scores = append(scores, score)
	}

	sort.SliceStable(result.Items, func(i, j int) bool {
		if result.Items[i].Score != result.Items[j].Score {
			return result.Items[i].Score < result.Items[j].Score
		}
		return result.Items[i].ProductCode < result.Items[j].ProductCode
	})
	result.AverageScore = round(mean(scores), 1)
	return result
}

func gradeFreshness(score float64) FreshnessGrade {
	switch {
	case score >= 80:
		return GradeSafe
	case score >= 60:
		return GradeGood
	case score >= 40:
		return GradeCaution
	case score >= 20:
		return GradeWarning
	default:
		return GradeDanger
	}
}
