package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/andresuchdata/food-insight/backend-go/internal/domain"
)

// DefaultBusinessConfig returns the stock tuning for a mid-sized Korean food plant.
func DefaultBusinessConfig() domain.BusinessConfig {
	return domain.BusinessConfig{
		ServiceLevel:    95,
		LeadTimeDays:    3,
		LeadTimeStdDev:  1,
		OrderCost:       50000,
		HoldingCostRate: 0.2,
		OverstockDays:   60,

		ABCClassAThreshold: 80,
		ABCClassBThreshold: 95,
		XYZClassXThreshold: 0.5,
		XYZClassYThreshold: 1.0,

		FreshnessRecencyDays:  30,
		FreshnessCoverageDays: 60,

		BomOveruseThreshold:        10,
		BomUnderuseThreshold:       -10,
		BomPriceDeviationThreshold: 5,
		BomMinimumSpend:            100000,
		BomSeverityHighPct:         30,
		BomSeverityMediumPct:       15,

		VATRate:               0.1,
		MaterialCostRatio:     0.5,
		AverageOrderValue:     30000,
		JasaSettlementDays:    3,
		CoupangSettlementDays: 60,
		KurlySettlementDays:   45,

		LaborCostRatioPct:       25,
		RawMaterialCodePrefixes: []string{"RM", "1"},
		SubMaterialCodePrefixes: []string{"SM", "PK", "2"},
		SubMaterialKeywords:     []string{"박스", "용기", "비닐", "라벨", "스티커", "트레이", "포장", "box"},

		StockoutCostMultiplier: 1.5,
		WasteCostPerUnit:       3000,
		StockoutRiskShortage:   1.0,
		StockoutRiskUrgent:     0.5,
		StockoutRiskNormal:     0.1,
		StockoutRiskOverstock:  0,

		PayableDays:         30,
		WasteThresholdPct:   3,
		PriceChangeAlertPct: 10,

		RevenueBrackets: []domain.RevenueBracket{
			{Label: "small", MonthlyRevenue: 0, RevenueToRawMaterial: 2.5, RevenueToSubMaterial: 10, ProductionToLabor: 300, RevenueToExpense: 20, WasteRatePct: 3},
			{Label: "medium", MonthlyRevenue: 100_000_000, RevenueToRawMaterial: 2.8, RevenueToSubMaterial: 12, ProductionToLabor: 350, RevenueToExpense: 25, WasteRatePct: 2.5},
			{Label: "large", MonthlyRevenue: 300_000_000, RevenueToRawMaterial: 3.0, RevenueToSubMaterial: 14, ProductionToLabor: 400, RevenueToExpense: 30, WasteRatePct: 2},
		},
	}
}

// LoadBusinessConfig layers BIZ_* environment variables and the optional profile file
// (YAML, JSON or TOML) over DefaultBusinessConfig and validates the result.
// It uses its own viper instance so profile keys never leak into the global one.
func LoadBusinessConfig(profileFile string) (domain.BusinessConfig, error) {
	v := viper.New()
	setBusinessDefaults(v, DefaultBusinessConfig())

	v.SetEnvPrefix("BIZ")
	v.AutomaticEnv()

	if profileFile != "" {
		v.SetConfigFile(profileFile)
		if err := v.ReadInConfig(); err != nil {
			return domain.BusinessConfig{}, fmt.Errorf("read business profile %s: %w", profileFile, err)
		}
	}

	var cfg domain.BusinessConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return domain.BusinessConfig{}, fmt.Errorf("decode business config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return domain.BusinessConfig{}, fmt.Errorf("invalid business config: %w", err)
	}
	return cfg, nil
}

func setBusinessDefaults(v *viper.Viper, d domain.BusinessConfig) {
	v.SetDefault("service_level", d.ServiceLevel)
	v.SetDefault("lead_time_days", d.LeadTimeDays)
	v.SetDefault("lead_time_std_dev", d.LeadTimeStdDev)
	v.SetDefault("order_cost", d.OrderCost)
	v.SetDefault("holding_cost_rate", d.HoldingCostRate)
	v.SetDefault("overstock_days", d.OverstockDays)

	v.SetDefault("abc_class_a_threshold", d.ABCClassAThreshold)
	v.SetDefault("abc_class_b_threshold", d.ABCClassBThreshold)
	v.SetDefault("xyz_class_x_threshold", d.XYZClassXThreshold)
	v.SetDefault("xyz_class_y_threshold", d.XYZClassYThreshold)

	v.SetDefault("freshness_recency_days", d.FreshnessRecencyDays)
	v.SetDefault("freshness_coverage_days", d.FreshnessCoverageDays)

	v.SetDefault("bom_overuse_threshold", d.BomOveruseThreshold)
	v.SetDefault("bom_underuse_threshold", d.BomUnderuseThreshold)
	v.SetDefault("bom_price_deviation_threshold", d.BomPriceDeviationThreshold)
	v.SetDefault("bom_minimum_spend", d.BomMinimumSpend)
	v.SetDefault("bom_severity_high_pct", d.BomSeverityHighPct)
	v.SetDefault("bom_severity_medium_pct", d.BomSeverityMediumPct)

	v.SetDefault("vat_rate", d.VATRate)
	v.SetDefault("material_cost_ratio", d.MaterialCostRatio)
	v.SetDefault("average_order_value", d.AverageOrderValue)
	v.SetDefault("jasa_settlement_days", d.JasaSettlementDays)
	v.SetDefault("coupang_settlement_days", d.CoupangSettlementDays)
	v.SetDefault("kurly_settlement_days", d.KurlySettlementDays)

	v.SetDefault("labor_cost_ratio_pct", d.LaborCostRatioPct)
	v.SetDefault("raw_material_code_prefixes", d.RawMaterialCodePrefixes)
	v.SetDefault("sub_material_code_prefixes", d.SubMaterialCodePrefixes)
	v.SetDefault("sub_material_keywords", d.SubMaterialKeywords)

	v.SetDefault("stockout_cost_multiplier", d.StockoutCostMultiplier)
	v.SetDefault("waste_cost_per_unit", d.WasteCostPerUnit)
	v.SetDefault("stockout_risk_shortage", d.StockoutRiskShortage)
	v.SetDefault("stockout_risk_urgent", d.StockoutRiskUrgent)
	v.SetDefault("stockout_risk_normal", d.StockoutRiskNormal)
	v.SetDefault("stockout_risk_overstock", d.StockoutRiskOverstock)

	v.SetDefault("payable_days", d.PayableDays)
	v.SetDefault("waste_threshold_pct", d.WasteThresholdPct)
	v.SetDefault("price_change_alert_pct", d.PriceChangeAlertPct)

	v.SetDefault("revenue_brackets", d.RevenueBrackets)
}
