// backend-go/internal/domain/business_config.go
package domain

import (
	"errors"
	"fmt"
)

// RevenueBracket carries the target ratios for businesses whose monthly settlement
// revenue is at least MonthlyRevenue.
type RevenueBracket struct {
	Label                string  `json:"label" mapstructure:"label"`
	MonthlyRevenue       float64 `json:"monthly_revenue" mapstructure:"monthly_revenue"`
	RevenueToRawMaterial float64 `json:"revenue_to_raw_material" mapstructure:"revenue_to_raw_material"`
	RevenueToSubMaterial float64 `json:"revenue_to_sub_material" mapstructure:"revenue_to_sub_material"`
	ProductionToLabor    float64 `json:"production_to_labor" mapstructure:"production_to_labor"` // units per 1M KRW of labor
	RevenueToExpense     float64 `json:"revenue_to_expense" mapstructure:"revenue_to_expense"`
	WasteRatePct         float64 `json:"waste_rate_pct" mapstructure:"waste_rate_pct"`
}

// BusinessConfig is the flat set of knobs every analysis receives explicitly.
// The insight package never supplies defaults of its own.
type BusinessConfig struct {
	// Statistical order engine
	ServiceLevel    float64 `json:"service_level" mapstructure:"service_level"` // percent, e.g. 95
	LeadTimeDays    float64 `json:"lead_time_days" mapstructure:"lead_time_days"`
	LeadTimeStdDev  float64 `json:"lead_time_std_dev" mapstructure:"lead_time_std_dev"`
	OrderCost       float64 `json:"order_cost" mapstructure:"order_cost"`
	HoldingCostRate float64 `json:"holding_cost_rate" mapstructure:"holding_cost_rate"` // annual fraction of unit price
	OverstockDays   float64 `json:"overstock_days" mapstructure:"overstock_days"`

	// ABC-XYZ
	ABCClassAThreshold float64 `json:"abc_class_a_threshold" mapstructure:"abc_class_a_threshold"`
	ABCClassBThreshold float64 `json:"abc_class_b_threshold" mapstructure:"abc_class_b_threshold"`
	XYZClassXThreshold float64 `json:"xyz_class_x_threshold" mapstructure:"xyz_class_x_threshold"`
	XYZClassYThreshold float64 `json:"xyz_class_y_threshold" mapstructure:"xyz_class_y_threshold"`

	// Freshness
	FreshnessRecencyDays  float64 `json:"freshness_recency_days" mapstructure:"freshness_recency_days"`
	FreshnessCoverageDays float64 `json:"freshness_coverage_days" mapstructure:"freshness_coverage_days"`

	// BOM variance and consumption anomalies
	BomOveruseThreshold        float64 `json:"bom_overuse_threshold" mapstructure:"bom_overuse_threshold"`
	BomUnderuseThreshold       float64 `json:"bom_underuse_threshold" mapstructure:"bom_underuse_threshold"`
	BomPriceDeviationThreshold float64 `json:"bom_price_deviation_threshold" mapstructure:"bom_price_deviation_threshold"`
	BomMinimumSpend            float64 `json:"bom_minimum_spend" mapstructure:"bom_minimum_spend"`
	BomSeverityHighPct         float64 `json:"bom_severity_high_pct" mapstructure:"bom_severity_high_pct"`
	BomSeverityMediumPct       float64 `json:"bom_severity_medium_pct" mapstructure:"bom_severity_medium_pct"`

	// Channel profit cascade
	VATRate               float64 `json:"vat_rate" mapstructure:"vat_rate"`
	MaterialCostRatio     float64 `json:"material_cost_ratio" mapstructure:"material_cost_ratio"`
	AverageOrderValue     float64 `json:"average_order_value" mapstructure:"average_order_value"`
	JasaSettlementDays    float64 `json:"jasa_settlement_days" mapstructure:"jasa_settlement_days"`
	CoupangSettlementDays float64 `json:"coupang_settlement_days" mapstructure:"coupang_settlement_days"`
	KurlySettlementDays   float64 `json:"kurly_settlement_days" mapstructure:"kurly_settlement_days"`

	// Cost breakdown
	LaborCostRatioPct       float64  `json:"labor_cost_ratio_pct" mapstructure:"labor_cost_ratio_pct"`
	RawMaterialCodePrefixes []string `json:"raw_material_code_prefixes" mapstructure:"raw_material_code_prefixes"`
	SubMaterialCodePrefixes []string `json:"sub_material_code_prefixes" mapstructure:"sub_material_code_prefixes"`
	SubMaterialKeywords     []string `json:"sub_material_keywords" mapstructure:"sub_material_keywords"`

	// Inventory cost optimizer
	StockoutCostMultiplier float64 `json:"stockout_cost_multiplier" mapstructure:"stockout_cost_multiplier"`
	WasteCostPerUnit       float64 `json:"waste_cost_per_unit" mapstructure:"waste_cost_per_unit"`
	StockoutRiskShortage   float64 `json:"stockout_risk_shortage" mapstructure:"stockout_risk_shortage"`
	StockoutRiskUrgent     float64 `json:"stockout_risk_urgent" mapstructure:"stockout_risk_urgent"`
	StockoutRiskNormal     float64 `json:"stockout_risk_normal" mapstructure:"stockout_risk_normal"`
	StockoutRiskOverstock  float64 `json:"stockout_risk_overstock" mapstructure:"stockout_risk_overstock"`

	// Cash flow
	PayableDays float64 `json:"payable_days" mapstructure:"payable_days"`

	// Waste and material prices
	WasteThresholdPct   float64 `json:"waste_threshold_pct" mapstructure:"waste_threshold_pct"`
	PriceChangeAlertPct float64 `json:"price_change_alert_pct" mapstructure:"price_change_alert_pct"`

	// Profit center goals
	RevenueBrackets []RevenueBracket `json:"revenue_brackets" mapstructure:"revenue_brackets"`
}

// Validate reports every constraint the configuration violates.
func (c BusinessConfig) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...interface{}) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(c.ServiceLevel > 0 && c.ServiceLevel < 100, "service_level must be in (0, 100), got %v", c.ServiceLevel)
	check(c.LeadTimeDays >= 0, "lead_time_days must be >= 0, got %v", c.LeadTimeDays)
	check(c.LeadTimeStdDev >= 0, "lead_time_std_dev must be >= 0, got %v", c.LeadTimeStdDev)
	check(c.OrderCost >= 0, "order_cost must be >= 0, got %v", c.OrderCost)
	check(c.HoldingCostRate >= 0, "holding_cost_rate must be >= 0, got %v", c.HoldingCostRate)
	check(c.OverstockDays > 0, "overstock_days must be > 0, got %v", c.OverstockDays)
	check(c.ABCClassAThreshold > 0 && c.ABCClassAThreshold <= c.ABCClassBThreshold && c.ABCClassBThreshold <= 100,
		"abc thresholds must satisfy 0 < A <= B <= 100, got A=%v B=%v", c.ABCClassAThreshold, c.ABCClassBThreshold)
	check(c.XYZClassXThreshold > 0 && c.XYZClassXThreshold <= c.XYZClassYThreshold,
		"xyz thresholds must satisfy 0 < X <= Y, got X=%v Y=%v", c.XYZClassXThreshold, c.XYZClassYThreshold)
	check(c.FreshnessRecencyDays > 0, "freshness_recency_days must be > 0, got %v", c.FreshnessRecencyDays)
	check(c.FreshnessCoverageDays > 0, "freshness_coverage_days must be > 0, got %v", c.FreshnessCoverageDays)
	check(c.BomUnderuseThreshold < 0 && c.BomOveruseThreshold > 0,
		"bom thresholds must satisfy underuse < 0 < overuse, got underuse=%v overuse=%v", c.BomUnderuseThreshold, c.BomOveruseThreshold)
	check(c.BomSeverityMediumPct <= c.BomSeverityHighPct,
		"bom severity medium (%v) must not exceed high (%v)", c.BomSeverityMediumPct, c.BomSeverityHighPct)
	check(c.VATRate >= 0, "vat_rate must be >= 0, got %v", c.VATRate)
	check(c.MaterialCostRatio >= 0 && c.MaterialCostRatio <= 1, "material_cost_ratio must be in [0, 1], got %v", c.MaterialCostRatio)
	check(c.AverageOrderValue > 0, "average_order_value must be > 0, got %v", c.AverageOrderValue)
	check(len(c.RevenueBrackets) > 0, "at least one revenue bracket is required")
	for i, b := range c.RevenueBrackets {
		check(b.RevenueToRawMaterial > 0 && b.RevenueToSubMaterial > 0 && b.ProductionToLabor > 0 &&
			b.RevenueToExpense > 0 && b.WasteRatePct > 0,
			"revenue bracket %d (%s) must have positive targets", i, b.Label)
	}

	return errors.Join(errs...)
}
