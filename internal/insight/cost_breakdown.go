package insight

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/andresuchdata/food-insight/backend-go/internal/domain"
)

// MaterialClass separates food ingredients from packaging and other consumables.
type MaterialClass string

const (
	MaterialRaw MaterialClass = "raw"
	MaterialSub MaterialClass = "sub"
)

// Cost component keys, in reporting order.
const (
	CostRawMaterial = "raw_material"
	CostSubMaterial = "sub_material"
	CostLabor       = "labor"
	CostOverhead    = "overhead"
)

// Labor cost sources.
const (
	LaborSourceActual    = "actual"
	LaborSourceEstimated = "estimated"
)

// ClassifyMaterial decides raw versus sub material from the code prefix and falls back
// to keywords in the name. Unknown materials count as raw.
func ClassifyMaterial(code, name string, cfg domain.BusinessConfig) MaterialClass {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code != "" {
		for _, prefix := range cfg.SubMaterialCodePrefixes {
			if prefix != "" && strings.HasPrefix(code, strings.ToUpper(prefix)) {
				return MaterialSub
			}
		}
		for _, prefix := range cfg.RawMaterialCodePrefixes {
			if prefix != "" && strings.HasPrefix(code, strings.ToUpper(prefix)) {
				return MaterialRaw
			}
		}
	}
	lower := strings.ToLower(name)
	for _, kw := range cfg.SubMaterialKeywords {
		if kw != "" && strings.Contains(lower, strings.ToLower(kw)) {
			return MaterialSub
		}
	}
	return MaterialRaw
}

// CostComponent is one factor of the cost composition.
type CostComponent struct {
	Key        string  `json:"key"`
	Amount     float64 `json:"amount"`
	Percentage float64 `json:"percentage"`
}

// InventoryAdjustment is the beginning/ending stock correction of one material class.
type InventoryAdjustment struct {
	Beginning   float64 `json:"beginning"`
	Purchases   float64 `json:"purchases"`
	Ending      float64 `json:"ending"`
	Consumption float64 `json:"consumption"`
}

// CostBreakdownInsight is the output of ComputeCostBreakdown. Component percentages sum to 100.
type CostBreakdownInsight struct {
	Components        []CostComponent                       `json:"components"`
	TotalCost         float64                               `json:"total_cost"`
	Revenue           float64                               `json:"revenue"`
	CostToRevenuePct  float64                               `json:"cost_to_revenue_pct"`
	LaborSource       string                                `json:"labor_source"`
	InventoryAdjusted bool                                  `json:"inventory_adjusted"`
	Adjustments       map[MaterialClass]InventoryAdjustment `json:"adjustments,omitempty"`
	ProductionQty     float64                               `json:"production_qty"`
	CostPerUnit       float64                               `json:"cost_per_unit"`
}

// CostBreakdownInput groups the record sets the breakdown draws from.
type CostBreakdownInput struct {
	Purchases  []domain.PurchaseRecord
	Production []domain.ProductionRecord
	Sales      []domain.DailySalesRecord
	Utilities  []domain.UtilityRecord
	Labor      []domain.LaborRecord
	Snapshots  []domain.InventorySnapshotData
}

// ComputeCostBreakdown composes total cost from raw material, sub material, labor and
// utility overhead. Material cost is adjusted by stock movement when at least two
// snapshot dates exist; labor comes from payroll records of the covered months when
// present and is estimated from revenue otherwise.
func ComputeCostBreakdown(in CostBreakdownInput, cfg domain.BusinessConfig) *CostBreakdownInsight {
	result := &CostBreakdownInsight{Components: []CostComponent{}}

	purchased := map[MaterialClass]float64{}
	for _, p := range in.Purchases {
		purchased[ClassifyMaterial(p.ProductCode, p.ProductName, cfg)] += p.Total
	}
	raw, sub := purchased[MaterialRaw], purchased[MaterialSub]

	if adj, ok := inventoryAdjustments(in.Snapshots, purchased, cfg); ok {
		result.InventoryAdjusted = true
		result.Adjustments = adj
		raw, sub = adj[MaterialRaw].Consumption, adj[MaterialSub].Consumption
	}

	for _, s := range in.Sales {
		result.Revenue += s.TotalRevenue
	}

	labor, source := laborCost(in, result.Revenue, cfg)
	result.LaborSource = source

	var overhead float64
	for _, u := range in.Utilities {
		overhead += u.Total()
	}

	amounts := []float64{raw, sub, labor, overhead}
	keys := []string{CostRawMaterial, CostSubMaterial, CostLabor, CostOverhead}
	total := sum(amounts)
	shares := percentagesTo100(amounts)
	for i, k := range keys {
		result.Components = append(result.Components, CostComponent{
			Key:        k,
			Amount:     round(amounts[i], 0),
			Percentage: shares[i],
		})
	}

	for _, r := range in.Production {
		result.ProductionQty += r.TotalQty
	}
	result.TotalCost = round(total, 0)
	result.CostToRevenuePct = round(pct(total, result.Revenue), 1)
	result.CostPerUnit = round(safeDiv(total, result.ProductionQty, 0), 1)
	return result
}

// inventoryAdjustments turns purchases into consumption per class using the earliest
// and latest snapshot dates. It reports false when fewer than two dates are available.
func inventoryAdjustments(
	snapshots []domain.InventorySnapshotData,
	purchased map[MaterialClass]float64,
	cfg domain.BusinessConfig,
) (map[MaterialClass]InventoryAdjustment, bool) {
	first, last, ok := dateSpan(snapshots, snapshotDate)
	if !ok || !last.After(first) {
		return nil, false
	}

	out := map[MaterialClass]InventoryAdjustment{
		MaterialRaw: {Purchases: purchased[MaterialRaw]},
		MaterialSub: {Purchases: purchased[MaterialSub]},
	}
	for _, s := range snapshots {
		class := ClassifyMaterial(s.MaterialCode, s.ProductName, cfg)
		adj := out[class]
		switch d := truncateDay(s.SnapshotDate); {
		case d.Equal(first):
			adj.Beginning += s.Value()
		case d.Equal(last):
			adj.Ending += s.Value()
		}
		out[class] = adj
	}
	for class, adj := range out {
		adj.Consumption = math.Max(0, adj.Beginning+adj.Purchases-adj.Ending)
		out[class] = adj
	}
	return out, true
}

// laborCost sums payroll of the months the dataset covers, or estimates it from revenue.
func laborCost(in CostBreakdownInput, revenue float64, cfg domain.BusinessConfig) (float64, string) {
	months := make(map[string]struct{})
	for _, p := range in.Purchases {
		months[PeriodKey(p.Date, Monthly)] = struct{}{}
	}
	for _, s := range in.Sales {
		months[PeriodKey(s.Date, Monthly)] = struct{}{}
	}
	for _, r := range in.Production {
		months[PeriodKey(r.Date, Monthly)] = struct{}{}
	}

	var actual float64
	var matched bool
	for _, l := range in.Labor {
		if _, ok := months[strings.TrimSpace(l.Month)]; ok {
			actual += l.TotalCost
			matched = true
		}
	}
	if matched {
		return actual, LaborSourceActual
	}
	return revenue * cfg.LaborCostRatioPct / 100, LaborSourceEstimated
}

// percentagesTo100 rounds each share to one decimal and hands the rounding remainder
// to the largest amount so the shares add up to exactly 100. All zeros stay zeros.
func percentagesTo100(amounts []float64) []float64 {
	out := make([]float64, len(amounts))
	total := sum(amounts)
	if total <= 0 {
		return out
	}

	shares := make([]decimal.Decimal, len(amounts))
	acc := decimal.Zero
	largest := 0
	for i, a := range amounts {
		shares[i] = decimal.NewFromFloat(a * 100 / total).Round(1)
		acc = acc.Add(shares[i])
		if a > amounts[largest] {
			largest = i
		}
	}
	shares[largest] = shares[largest].Add(decimal.NewFromInt(100).Sub(acc))
	for i := range shares {
		out[i] = shares[i].InexactFloat64()
	}
	return out
}
