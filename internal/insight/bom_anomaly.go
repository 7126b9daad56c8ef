package insight

import (
	"math"
	"sort"
	"strings"

	"github.com/andresuchdata/food-insight/backend-go/internal/domain"
)

// AnomalyType names the kind of consumption anomaly.
type AnomalyType string

const (
	AnomalyOveruse        AnomalyType = "overuse"
	AnomalyUnderuse       AnomalyType = "underuse"
	AnomalyPriceDeviation AnomalyType = "price_deviation"
)

// Severity grades an anomaly by the size of its deviation.
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// BomConsumptionAnomaly is one BOM material whose recent usage or price drifted
// beyond the configured thresholds.
type BomConsumptionAnomaly struct {
	MaterialCode      string      `json:"material_code"`
	MaterialName      string      `json:"material_name"`
	ProductNames      []string    `json:"product_names"`
	Type              AnomalyType `json:"type"`
	Severity          Severity    `json:"severity"`
	ExpectedQty       float64     `json:"expected_qty"`
	ActualQty         float64     `json:"actual_qty"`
	DeviationPct      float64     `json:"deviation_pct"`
	ReferencePrice    float64     `json:"reference_price"`
	ActualPrice       float64     `json:"actual_price"`
	PriceDeviationPct float64     `json:"price_deviation_pct"`
	CostImpact        float64     `json:"cost_impact"`
	TotalSpend        float64     `json:"total_spend"`
}

// BomAnomalySummary counts anomalies by type and severity.
type BomAnomalySummary struct {
	MaterialsChecked int                 `json:"materials_checked"`
	AnomalyCount     int                 `json:"anomaly_count"`
	ByType           map[AnomalyType]int `json:"by_type"`
	BySeverity       map[Severity]int    `json:"by_severity"`
	TotalCostImpact  float64             `json:"total_cost_impact"`
}

// BomConsumptionAnomalyInsight is the output of ComputeBomConsumptionAnomaly,
// highest severity first and then largest absolute cost impact.
type BomConsumptionAnomalyInsight struct {
	Strategy  string                  `json:"strategy"`
	Anomalies []BomConsumptionAnomaly `json:"anomalies"`
	Summary   BomAnomalySummary       `json:"summary"`
}

var severityRank = map[Severity]int{SeverityHigh: 0, SeverityMedium: 1, SeverityLow: 2}

// ComputeBomConsumptionAnomaly compares expected against actual consumption of the
// materials that appear in a BOM. Materials whose total spend is under
// cfg.BomMinimumSpend are ignored. A nil strategy means the self baseline.
func ComputeBomConsumptionAnomaly(
	purchases []domain.PurchaseRecord,
	production []domain.ProductionRecord,
	bom []domain.BomItemData,
	master []domain.MaterialMasterItem,
	snapshots []domain.InventorySnapshotData,
	cfg domain.BusinessConfig,
	strategy VarianceStrategy,
) *BomConsumptionAnomalyInsight {
	if strategy == nil {
		strategy = SelfBaselineVarianceStrategy{}
	}
	result := &BomConsumptionAnomalyInsight{
		Strategy:  strategy.Name(),
		Anomalies: []BomConsumptionAnomaly{},
		Summary: BomAnomalySummary{
			ByType:     map[AnomalyType]int{AnomalyOveruse: 0, AnomalyUnderuse: 0, AnomalyPriceDeviation: 0},
			BySeverity: map[Severity]int{SeverityHigh: 0, SeverityMedium: 0, SeverityLow: 0},
		},
	}

	products := bomProductsByMaterial(bom)
	if len(products) == 0 {
		return result
	}
	masterPrices := make(map[string]float64, len(master))
	for _, m := range master {
		masterPrices[strings.TrimSpace(m.MaterialCode)] = m.UnitPrice
	}

	usage := buildPeriodUsage(strategy.Split(purchases, production), snapshots)
	var totalImpact float64
	for _, code := range usage.comparableCodes() {
		names, inBom := products[code]
		if !inBom {
			continue
		}
		spend := usage.Base[code].Total + usage.Recent[code].Total
		if spend < cfg.BomMinimumSpend {
			continue
		}
		result.Summary.MaterialsChecked++

		expected := usage.standardQty(code)
		actual := usage.actualQty(code)
		deviation := safeDiv((actual-expected)*100, expected, 0)

		refPrice := usage.Base[code].price()
		if mp, ok := masterPrices[code]; ok && mp > 0 {
			refPrice = mp
		}
		actualPrice := usage.Recent[code].price()
		priceDeviation := safeDiv((actualPrice-refPrice)*100, refPrice, 0)

		var (
			kind   AnomalyType
			impact float64
			size   float64
		)
		switch {
		case deviation > cfg.BomOveruseThreshold:
			kind, impact, size = AnomalyOveruse, (actual-expected)*refPrice, math.Abs(deviation)
		case deviation < cfg.BomUnderuseThreshold:
			kind, impact, size = AnomalyUnderuse, (actual-expected)*refPrice, math.Abs(deviation)
		case math.Abs(priceDeviation) > cfg.BomPriceDeviationThreshold:
			kind, impact, size = AnomalyPriceDeviation, (actualPrice-refPrice)*actual, math.Abs(priceDeviation)
		default:
			continue
		}
		severity := classifySeverity(size, cfg.BomSeverityHighPct, cfg.BomSeverityMediumPct)

		result.Anomalies = append(result.Anomalies, BomConsumptionAnomaly{
			MaterialCode:      code,
			MaterialName:      usage.Names[code],
			ProductNames:      names,
			Type:              kind,
			Severity:          severity,
			ExpectedQty:       round(expected, 2),
			ActualQty:         round(actual, 2),
			DeviationPct:      round(deviation, 1),
			ReferencePrice:    round(refPrice, 2),
			ActualPrice:       round(actualPrice, 2),
			PriceDeviationPct: round(priceDeviation, 1),
			CostImpact:        round(impact, 0),
			TotalSpend:        round(spend, 0),
		})
		result.Summary.ByType[kind]++
		result.Summary.BySeverity[severity]++
		totalImpact += impact
	}

	sort.SliceStable(result.Anomalies, func(i, j int) bool {
		a, b := result.Anomalies[i], result.Anomalies[j]
		if severityRank[a.Severity] != severityRank[b.Severity] {
			return severityRank[a.Severity] < severityRank[b.Severity]
		}
		return math.Abs(a.CostImpact) > math.Abs(b.CostImpact)
	})

	result.Summary.AnomalyCount = len(result.Anomalies)
	result.Summary.TotalCostImpact = round(totalImpact, 0)
	return result
}

func classifySeverity(absDeviation, highPct, mediumPct float64) Severity {
	switch {
	case absDeviation >= highPct:
		return SeverityHigh
	case absDeviation >= mediumPct:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// bomProductsByMaterial maps each BOM material code to the sorted, distinct names
// of the products that use it.
func bomProductsByMaterial(bom []domain.BomItemData) map[string][]string {
	sets := make(map[string]map[string]struct{})
	for _, b := range bom {
		code := strings.TrimSpace(b.MaterialCode)
		if code == "" {
			continue
		}
		if sets[code] == nil {
			sets[code] = make(map[string]struct{})
		}
		if name := strings.TrimSpace(b.ProductName); name != "" {
			sets[code][name] = struct{}{}
		}
	}
	out := make(map[string][]string, len(sets))
	for code, set := range sets {
		out[code] = SortedKeys(set)
	}
	return out
}
