package insight

import (
	"time"

	"github.com/andresuchdata/food-insight/backend-go/internal/domain"
	"github.com/andresuchdata/food-insight/backend-go/pkg/logger"
)

// Section names of AllInsights, as used by callers that request a single insight.
const (
	SectionStatisticalOrder = "statistical_order"
	SectionABCXYZ           = "abc_xyz"
	SectionFreshness        = "freshness"
	SectionBomVariance      = "bom_variance"
	SectionBomAnomaly       = "bom_anomaly"
	SectionChannelRevenue   = "channel_revenue"
	SectionCostBreakdown    = "cost_breakdown"
	SectionInventoryCost    = "inventory_cost"
	SectionCashFlow         = "cash_flow"
	SectionProfitCenter     = "profit_center"
	SectionWaste            = "waste"
	SectionMaterialPrice    = "material_price"
)

// Sections lists every section name in reporting order.
var Sections = []string{
	SectionStatisticalOrder,
	SectionABCXYZ,
	SectionFreshness,
	SectionBomVariance,
	SectionBomAnomaly,
	SectionChannelRevenue,
	SectionCostBreakdown,
	SectionInventoryCost,
	SectionCashFlow,
	SectionProfitCenter,
	SectionWaste,
	SectionMaterialPrice,
}

// AllInsights bundles every analysis. A section is nil when its inputs were missing.
type AllInsights struct {
	GeneratedAt      time.Time                     `json:"generated_at"`
	AsOf             time.Time                     `json:"as_of"`
	StatisticalOrder *StatisticalOrderInsight      `json:"statistical_order"`
	ABCXYZ           *ABCXYZInsight                `json:"abc_xyz"`
	Freshness        *FreshnessInsight             `json:"freshness"`
	BomVariance      *BomVarianceInsight           `json:"bom_variance"`
	BomAnomaly       *BomConsumptionAnomalyInsight `json:"bom_anomaly"`
	ChannelRevenue   *ChannelRevenueInsight        `json:"channel_revenue"`
	CostBreakdown    *CostBreakdownInsight         `json:"cost_breakdown"`
	InventoryCost    *InventoryCostInsight         `json:"inventory_cost"`
	CashFlow         *CashFlowInsight              `json:"cash_flow"`
	ProfitCenter     *ProfitCenterScoreInsight     `json:"profit_center"`
	Waste            *WasteInsight                 `json:"waste"`
	MaterialPrice    *MaterialPriceInsight         `json:"material_price"`
}

// Section returns the named section, or nil when it was skipped or the name is unknown.
// The second result reports whether the name is known.
func (a *AllInsights) Section(name string) (any, bool) {
	var v any
	switch name {
	case SectionStatisticalOrder:
		v = nilIfEmpty(a.StatisticalOrder)
	case SectionABCXYZ:
		v = nilIfEmpty(a.ABCXYZ)
	case SectionFreshness:
		v = nilIfEmpty(a.Freshness)
	case SectionBomVariance:
		v = nilIfEmpty(a.BomVariance)
	case SectionBomAnomaly:
		v = nilIfEmpty(a.BomAnomaly)
	case SectionChannelRevenue:
		v = nilIfEmpty(a.ChannelRevenue)
	case SectionCostBreakdown:
		v = nilIfEmpty(a.CostBreakdown)
	case SectionInventoryCost:
		v = nilIfEmpty(a.InventoryCost)
	case SectionCashFlow:
		v = nilIfEmpty(a.CashFlow)
	case SectionProfitCenter:
		v = nilIfEmpty(a.ProfitCenter)
	case SectionWaste:
		v = nilIfEmpty(a.Waste)
	case SectionMaterialPrice:
		v = nilIfEmpty(a.MaterialPrice)
	default:
		return nil, false
	}
	return v, true
}

// nilIfEmpty turns a typed nil pointer into an untyped nil so callers can compare with nil.
func nilIfEmpty[T any](p *T) any {
	if p == nil {
		return nil
	}
	return p
}

// Options tunes a single computation without touching the business configuration.
type Options struct {
	// ServiceLevel overrides cfg.ServiceLevel for the statistical order engine when positive.
	ServiceLevel float64
	// VarianceStrategy picks the BOM baseline; nil means the self baseline.
	VarianceStrategy VarianceStrategy
}

// ComputeAllInsights runs every analysis whose inputs are present.
func ComputeAllInsights(ds domain.Dataset, cfg domain.BusinessConfig) *AllInsights {
	return ComputeAllInsightsWith(ds, cfg, Options{})
}

// ComputeAllInsightsWith is ComputeAllInsights with per-call options.
func ComputeAllInsightsWith(ds domain.Dataset, cfg domain.BusinessConfig, opts Options) *AllInsights {
	log := logger.Component("insight")

	asOf := ds.AsOf
	if asOf.IsZero() {
		asOf = latestDate(ds)
	}
	out := &AllInsights{GeneratedAt: time.Now().UTC(), AsOf: truncateDay(asOf)}

	hasPurchases := len(ds.Purchases) > 0
	hasInventory := len(ds.Inventory) > 0
	hasProduction := len(ds.Production) > 0
	hasSales := len(ds.Sales) > 0

	if hasPurchases && hasInventory {
		out.StatisticalOrder = ComputeStatisticalOrder(ds.Inventory, ds.Purchases, cfg, opts.ServiceLevel)
		out.Freshness = ComputeFreshness(ds.Purchases, ds.Inventory, cfg, out.AsOf)
		out.InventoryCost = ComputeInventoryCost(out.StatisticalOrder, ds.Purchases, ds.Production, cfg)
	}
	if hasPurchases {
		out.ABCXYZ = ComputeABCXYZ(ds.Purchases, cfg)
		out.MaterialPrice = ComputeMaterialPrices(ds.Purchases, cfg)
	}
	if hasPurchases && hasProduction {
		out.BomVariance = ComputeBomVariance(ds.Purchases, ds.Production, ds.InventorySnapshots, opts.VarianceStrategy)
		if len(ds.BomItems) > 0 {
			out.BomAnomaly = ComputeBomConsumptionAnomaly(ds.Purchases, ds.Production, ds.BomItems,
				ds.MaterialMaster, ds.InventorySnapshots, cfg, opts.VarianceStrategy)
		}
	}
	if hasSales {
		out.ChannelRevenue = ComputeChannelRevenue(ds.Sales, ds.Purchases, ds.ChannelCosts, cfg)
	}

	costInput := CostBreakdownInput{
		Purchases:  ds.Purchases,
		Production: ds.Production,
		Sales:      ds.Sales,
		Utilities:  ds.Utilities,
		Labor:      ds.LaborRecords,
		Snapshots:  ds.InventorySnapshots,
	}
	if hasPurchases && hasSales {
		out.CostBreakdown = ComputeCostBreakdown(costInput, cfg)
		out.CashFlow = ComputeCashFlow(ds, cfg)
	}
	if hasPurchases && hasSales && hasProduction && len(cfg.RevenueBrackets) > 0 {
		out.ProfitCenter = ComputeProfitCenterScore(costInput, cfg)
	}
	if hasProduction {
		out.Waste = ComputeWaste(ds.Production, cfg)
	}

	log.Debug().
		Int("purchases", len(ds.Purchases)).
		Int("production", len(ds.Production)).
		Int("sales", len(ds.Sales)).
		Int("inventory", len(ds.Inventory)).
		Time("as_of", out.AsOf).
		Msg("insights computed")
	return out
}

// latestDate is the most recent record date across the dataset, or today when empty.
func latestDate(ds domain.Dataset) time.Time {
	var latest time.Time
	keep := func(t time.Time) {
		if t.After(latest) {
			latest = t
		}
	}
	for _, p := range ds.Purchases {
		keep(p.Date)
	}
	for _, r := range ds.Production {
		keep(r.Date)
	}
	for _, s := range ds.Sales {
		keep(s.Date)
	}
	for _, u := range ds.Utilities {
		keep(u.Date)
	}
	for _, s := range ds.InventorySnapshots {
		keep(s.SnapshotDate)
	}
	if latest.IsZero() {
		return time.Now().UTC()
	}
	return latest
}
