package insight

import (
	"sort"

	"github.com/andresuchdata/food-insight/backend-go/internal/domain"
)

// ScoreStatus is the band a metric score falls into.
type ScoreStatus string

const (
	ScoreExcellent ScoreStatus = "excellent"
	ScoreGood      ScoreStatus = "good"
	ScoreWarning   ScoreStatus = "warning"
	ScoreDanger    ScoreStatus = "danger"
)

// Profit center metric keys.
const (
	MetricRevenueToRawMaterial = "revenue_to_raw_material"
	MetricRevenueToSubMaterial = "revenue_to_sub_material"
	MetricProductionToLabor    = "production_to_labor"
	MetricRevenueToExpense     = "revenue_to_expense"
	MetricWasteRate            = "waste_rate"
)

// perfectWasteScore is awarded when no waste was recorded at all.
const perfectWasteScore = 200

const laborUnit = 1_000_000

// ProfitCenterMetric compares one actual ratio with its bracket target.
type ProfitCenterMetric struct {
	Key    string      `json:"key"`
	Actual float64     `json:"actual"`
	Target float64     `json:"target"`
	Score  float64     `json:"score"`
	Status ScoreStatus `json:"status"`
}

// ProfitCenterScoreInsight is the output of ComputeProfitCenterScore.
type ProfitCenterScoreInsight struct {
	MonthlyRevenue float64               `json:"monthly_revenue"`
	Bracket        domain.RevenueBracket `json:"bracket"`
	Metrics        []ProfitCenterMetric  `json:"metrics"`
	OverallScore   float64               `json:"overall_score"`
	OverallStatus  ScoreStatus           `json:"overall_status"`
}

// ComputeProfitCenterScore scores the business against the targets of its revenue
// bracket. Scores are actual/target*100 without clamping; the waste rate is scored
// inversely since less waste is better.
func ComputeProfitCenterScore(in CostBreakdownInput, cfg domain.BusinessConfig) *ProfitCenterScoreInsight {
	cost := ComputeCostBreakdown(in, cfg)
	amounts := make(map[string]float64, len(cost.Components))
	for _, c := range cost.Components {
		amounts[c.Key] = c.Amount
	}

	var monthly float64
	if first, last, ok := dateSpan(in.Sales, salesDate); ok {
		monthly = cost.Revenue * 30 / float64(spanDays(first, last))
	}
	bracket := SelectRevenueBracket(cfg.RevenueBrackets, monthly)

	var wastePcts []float64
	for _, r := range in.Production {
		wastePcts = append(wastePcts, r.WasteFinishedPct)
	}
	waste := mean(wastePcts)

	metrics := []ProfitCenterMetric{
		ratioMetric(MetricRevenueToRawMaterial, safeDiv(cost.Revenue, amounts[CostRawMaterial], 0), bracket.RevenueToRawMaterial),
		ratioMetric(MetricRevenueToSubMaterial, safeDiv(cost.Revenue, amounts[CostSubMaterial], 0), bracket.RevenueToSubMaterial),
		ratioMetric(MetricProductionToLabor, safeDiv(cost.ProductionQty, amounts[CostLabor]/laborUnit, 0), bracket.ProductionToLabor),
		ratioMetric(MetricRevenueToExpense, safeDiv(cost.Revenue, amounts[CostOverhead], 0), bracket.RevenueToExpense),
		wasteMetric(waste, bracket.WasteRatePct),
	}

	scores := make([]float64, 0, len(metrics))
	for _, m := range metrics {
		scores = append(scores, m.Score)
	}
	overall := round(mean(scores), 1)

	return &ProfitCenterScoreInsight{
		MonthlyRevenue: round(monthly, 0),
		Bracket:        bracket,
		Metrics:        metrics,
		OverallScore:   overall,
		OverallStatus:  scoreStatus(overall),
	}
}

// SelectRevenueBracket returns the bracket with the largest threshold not above
// monthlyRevenue, or the smallest bracket when revenue is below all of them.
func SelectRevenueBracket(brackets []domain.RevenueBracket, monthlyRevenue float64) domain.RevenueBracket {
	if len(brackets) == 0 {
		return domain.RevenueBracket{}
	}
	sorted := make([]domain.RevenueBracket, len(brackets))
	copy(sorted, brackets)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].MonthlyRevenue < sorted[j].MonthlyRevenue })

	chosen := sorted[0]
	for _, b := range sorted {
		if b.MonthlyRevenue <= monthlyRevenue {
			chosen = b
		}
	}
	return chosen
}

func ratioMetric(key string, actual, target float64) ProfitCenterMetric {
	score := round(safeDiv(actual*100, target, 0), 1)
	return ProfitCenterMetric{
		Key:    key,
		Actual: round(actual, 2),
		Target: target,
		Score:  score,
		Status: scoreStatus(score),
	}
}

func wasteMetric(actual, target float64) ProfitCenterMetric {
	score := float64(perfectWasteScore)
	if actual > 0 {
		score = round(target*100/actual, 1)
	}
	return ProfitCenterMetric{
		Key:    MetricWasteRate,
		Actual: round(actual, 2),
		Target: target,
		Score:  score,
		Status: scoreStatus(score),
	}
}

func scoreStatus(score float64) ScoreStatus {
	switch {
	case score >= 110:
		return ScoreExcellent
	case score >= 100:
		return ScoreGood
	case score >= 90:
		return ScoreWarning
	default:
		return ScoreDanger
	}
}
