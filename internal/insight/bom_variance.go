package insight

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/andresuchdata/food-insight/backend-go/internal/domain"
)

// VariancePeriods is a baseline and a comparison window over the same history.
type VariancePeriods struct {
	BasePurchases    []domain.PurchaseRecord
	RecentPurchases  []domain.PurchaseRecord
	BaseProduction   []domain.ProductionRecord
	RecentProduction []domain.ProductionRecord
}

// VarianceStrategy decides what counts as the standard against which recent
// material usage is compared.
type VarianceStrategy interface {
	Name() string
	Split(purchases []domain.PurchaseRecord, production []domain.ProductionRecord) VariancePeriods
}

// SelfBaselineVarianceStrategy treats the chronologically first half of the records
// as the standard period and the second half as the actual period. Purchases and
// production are halved independently by record count; odd counts leave the extra
// record in the actual period.
type SelfBaselineVarianceStrategy struct{}

func (SelfBaselineVarianceStrategy) Name() string { return "self_baseline" }

func (SelfBaselineVarianceStrategy) Split(purchases []domain.PurchaseRecord, production []domain.ProductionRecord) VariancePeriods {
	p := sortedByDate(purchases, purchaseDate)
	r := sortedByDate(production, productionDate)
	return VariancePeriods{
		BasePurchases:    p[:len(p)/2],
		RecentPurchases:  p[len(p)/2:],
		BaseProduction:   r[:len(r)/2],
		RecentProduction: r[len(r)/2:],
	}
}

func sortedByDate[T any](records []T, date func(T) time.Time) []T {
	out := make([]T, len(records))
	copy(out, records)
	sort.SliceStable(out, func(i, j int) bool { return date(out[i]).Before(date(out[j])) })
	return out
}

// materialUsage is the purchase total of one material inside one period.
type materialUsage struct {
	Qty   float64
	Total float64
}

func (u materialUsage) price() float64 { return safeDiv(u.Total, u.Qty, 0) }

// periodUsage holds per-material usage for both periods and the production volume of each.
type periodUsage struct {
	Base           map[string]materialUsage
	Recent         map[string]materialUsage
	Names          map[string]string
	BaseVolume     float64
	RecentVolume   float64
	latestBalances map[string]float64
}

func buildPeriodUsage(periods VariancePeriods, snapshots []domain.InventorySnapshotData) periodUsage {
	u := periodUsage{
		Base:           usageByMaterial(periods.BasePurchases),
		Recent:         usageByMaterial(periods.RecentPurchases),
		Names:          make(map[string]string),
		latestBalances: latestBalances(snapshots),
	}
	for _, p := range periods.BasePurchases {
		u.Names[materialKey(p)] = p.ProductName
	}
	for _, p := range periods.RecentPurchases {
		u.Names[materialKey(p)] = p.ProductName
	}
	for _, r := range periods.BaseProduction {
		u.BaseVolume += r.TotalQty
	}
	for _, r := range periods.RecentProduction {
		u.RecentVolume += r.TotalQty
	}
	return u
}

// standardQty scales base consumption per produced unit to the recent production volume.
// Without base production the recent purchase is its own standard.
func (u periodUsage) standardQty(code string) float64 {
	if u.BaseVolume <= 0 {
		return u.Recent[code].Qty
	}
	return u.Base[code].Qty * u.RecentVolume / u.BaseVolume
}

// actualQty is the recent purchased quantity less stock still sitting unconsumed.
func (u periodUsage) actualQty(code string) float64 {
	return math.Max(0, u.Recent[code].Qty-u.latestBalances[code])
}

// comparableCodes lists materials purchased in both periods, sorted.
func (u periodUsage) comparableCodes() []string {
	codes := make([]string, 0, len(u.Recent))
	for code, recent := range u.Recent {
		if base, ok := u.Base[code]; ok && base.Qty > 0 && recent.Qty > 0 {
			codes = append(codes, code)
		}
	}
	sort.Strings(codes)
	return codes
}

func usageByMaterial(purchases []domain.PurchaseRecord) map[string]materialUsage {
	out := make(map[string]materialUsage)
	for _, p := range purchases {
		key := materialKey(p)
		if key == "" {
			continue
		}
		u := out[key]
		u.Qty += p.Quantity
		u.Total += p.Total
		out[key] = u
	}
	return out
}

func materialKey(p domain.PurchaseRecord) string {
	if code := strings.TrimSpace(p.ProductCode); code != "" {
		return code
	}
	return strings.TrimSpace(p.ProductName)
}

// latestBalances keeps the balance of the most recent snapshot per material.
func latestBalances(snapshots []domain.InventorySnapshotData) map[string]float64 {
	out := make(map[string]float64)
	seen := make(map[string]domain.InventorySnapshotData)
	for _, s := range snapshots {
		code := strings.TrimSpace(s.MaterialCode)
		if code == "" {
			continue
		}
		prev, ok := seen[code]
		switch {
		case !ok || s.SnapshotDate.After(prev.SnapshotDate):
			seen[code] = s
			out[code] = s.BalanceQty
		case s.SnapshotDate.Equal(prev.SnapshotDate):
			out[code] += s.BalanceQty
		}
	}
	return out
}

// BomVarianceItem is the price and quantity variance of one material.
// Positive variances are unfavorable.
type BomVarianceItem struct {
	MaterialCode    string  `json:"material_code"`
	MaterialName    string  `json:"material_name"`
	StandardPrice   float64 `json:"standard_price"`
	ActualPrice     float64 `json:"actual_price"`
	StandardQty     float64 `json:"standard_qty"`
	ActualQty       float64 `json:"actual_qty"`
	PriceVariance   float64 `json:"price_variance"`
	QtyVariance     float64 `json:"qty_variance"`
	TotalVariance   float64 `json:"total_variance"`
	Favorable       bool    `json:"favorable"`
	PriceChangePct  float64 `json:"price_change_pct"`
	QtyDeviationPct float64 `json:"qty_deviation_pct"`
}

// BomVarianceSummary totals the variances of all materials.
type BomVarianceSummary struct {
	MaterialCount      int     `json:"material_count"`
	TotalPriceVariance float64 `json:"total_price_variance"`
	TotalQtyVariance   float64 `json:"total_qty_variance"`
	TotalVariance      float64 `json:"total_variance"`
	FavorableCount     int     `json:"favorable_count"`
	UnfavorableCount   int     `json:"unfavorable_count"`
	BaseProduction     float64 `json:"base_production"`
	RecentProduction   float64 `json:"recent_production"`
}

// BomVarianceInsight is the output of ComputeBomVariance, largest absolute variance first.
type BomVarianceInsight struct {
	Strategy string             `json:"strategy"`
	Items    []BomVarianceItem  `json:"items"`
	Summary  BomVarianceSummary `json:"summary"`
}

// ComputeBomVariance splits material cost movement into price and quantity variance
// against the baseline chosen by strategy. A nil strategy means the self baseline.
func ComputeBomVariance(
	purchases []domain.PurchaseRecord,
	production []domain.ProductionRecord,
	snapshots []domain.InventorySnapshotData,
	strategy VarianceStrategy,
) *BomVarianceInsight {
	if strategy == nil {
		strategy = SelfBaselineVarianceStrategy{}
	}
	usage := buildPeriodUsage(strategy.Split(purchases, production), snapshots)

	result := &BomVarianceInsight{
		Strategy: strategy.Name(),
		Items:    []BomVarianceItem{},
		Summary: BomVarianceSummary{
			BaseProduction:   usage.BaseVolume,
			RecentProduction: usage.RecentVolume,
		},
	}

	var totalPrice, totalQty float64
	for _, code := range usage.comparableCodes() {
		standardPrice := usage.Base[code].price()
		actualPrice := usage.Recent[code].price()
		standardQty := usage.standardQty(code)
		actualQty := usage.actualQty(code)

		priceVar := (actualPrice - standardPrice) * actualQty
		qtyVar := (actualQty - standardQty) * standardPrice
		total := priceVar + qtyVar
		totalPrice += priceVar
		totalQty += qtyVar

		item := BomVarianceItem{
			MaterialCode:    code,
			MaterialName:    usage.Names[code],
			StandardPrice:   round(standardPrice, 2),
			ActualPrice:     round(actualPrice, 2),
			StandardQty:     round(standardQty, 2),
			ActualQty:       round(actualQty, 2),
			PriceVariance:   round(priceVar, 0),
			QtyVariance:     round(qtyVar, 0),
			TotalVariance:   round(total, 0),
			Favorable:       total < 0,
			PriceChangePct:  round(safeDiv((actualPrice-standardPrice)*100, standardPrice, 0), 1),
			QtyDeviationPct: round(safeDiv((actualQty-standardQty)*100, standardQty, 0), 1),
		}
		result.Items = append(result.Items, item)

		switch {
		case total < 0:
			result.Summary.FavorableCount++
		case total > 0:
			result.Summary.UnfavorableCount++
		}
	}

	sort.SliceStable(result.Items, func(i, j int) bool {
		return math.Abs(result.Items[i].TotalVariance) > math.Abs(result.Items[j].TotalVariance)
	})

	result.Summary.MaterialCount = len(result.Items)
	result.Summary.TotalPriceVariance = round(totalPrice, 0)
	result.Summary.TotalQtyVariance = round(totalQty, 0)
	result.Summary.TotalVariance = round(totalPrice+totalQty, 0)
	return result
}
