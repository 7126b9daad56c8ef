package insight_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/food-insight/backend-go/internal/domain"
	"github.com/andresuchdata/food-insight/backend-go/internal/insight"
)

func channelCosts() []domain.ChannelCostSummary {
	return []domain.ChannelCostSummary{
		{ChannelName: "jasa", TotalVariableRatePct: 5, TotalVariablePerOrder: 1000, TotalFixedMonthly: 300000, DiscountRate: 10, CommissionRate: 10},
		{ChannelName: "쿠팡", TotalVariableRatePct: 8, TotalVariablePerOrder: 500, TotalFixedMonthly: 100000, DiscountRate: 60, CommissionRate: 40},
	}
}

func channelByKey(t *testing.T, result *insight.ChannelRevenueInsight, key string) insight.ChannelProfit {
	t.Helper()
	for _, c := range result.Channels {
		if c.Channel == key {
			return c
		}
	}
	t.Fatalf("channel %s not found", key)
	return insight.ChannelProfit{}
}

func TestChannelRevenue_Cascade(t *testing.T) {
	// GIVEN: 30 days of 100,000/day on the own mall with 10% discount and 10% commission
	// THEN: list price is back-solved to 3,750,000 and each stage follows from it

	result := insight.ComputeChannelRevenue(dailySales(30, 100000, 50000, 0), nil, channelCosts(), testConfig())
	require.Len(t, result.Channels, 3)
	assert.Equal(t, 30, result.PeriodDays)

	jasa := channelByKey(t, result, "jasa")
	assert.True(t, jasa.HasCostData)
	assert.Equal(t, "자사몰", jasa.ChannelLabel)
	assert.InDelta(t, 3_000_000, jasa.SettlementRevenue, 1e-6)
	assert.InDelta(t, 3_750_000, jasa.RecommendedRevenue, 1e-6)
	assert.InDelta(t, 375_000, jasa.DiscountAmount, 1e-6)
	assert.InDelta(t, 375_000, jasa.CommissionAmount, 1e-6)
	assert.InDelta(t, 1_704_545.4545, jasa.MaterialCost, 1e-3)
	assert.Equal(t, 100.0, jasa.EstimatedOrders)
	assert.InDelta(t, 250_000, jasa.VariableCost, 1e-6)
	assert.InDelta(t, 300_000, jasa.FixedCost, 1e-6)
	assert.InDelta(t, 745_454.5454, jasa.Profit3, 1e-3)
	assert.Equal(t, 43.2, jasa.MarginRate1)
	assert.Equal(t, 34.8, jasa.MarginRate2)
	assert.Equal(t, 24.8, jasa.MarginRate3)
	assert.Equal(t, 3.0, jasa.SettlementDays)
	assert.Equal(t, 66.7, jasa.RevenueShare)

	require.Len(t, jasa.Stages, 5)
	assert.Equal(t, "recommended_revenue", jasa.Stages[0].Name)
	assert.Equal(t, "profit_after_fixed", jasa.Stages[4].Name)
	assert.Equal(t, jasa.Profit3, jasa.Stages[4].Amount)
}

func TestChannelRevenue_Conservation(t *testing.T) {
	result := insight.ComputeChannelRevenue(dailySales(17, 123457, 98765.4, 33333.3), nil, channelCosts(), testConfig())

	for _, c := range result.Channels {
		want := c.SettlementRevenue - c.MaterialCost - c.VariableCost - c.FixedCost
		assert.InDelta(t, want, c.Profit3, 1e-6, c.Channel)
		assert.InDelta(t, c.Profit1-c.VariableCost, c.Profit2, 1e-6, c.Channel)
	}

	tot := result.Totals
	assert.InDelta(t, tot.SettlementRevenue-tot.MaterialCost-tot.VariableCost-tot.FixedCost, tot.Profit3, 1e-6)
}

func TestChannelRevenue_RatesAtOrAbove100Percent(t *testing.T) {
	// Discount 60% + commission 40% cannot be back-solved; settlement is used as is.
	result := insight.ComputeChannelRevenue(dailySales(30, 0, 50000, 0), nil, channelCosts(), testConfig())

	coupang := channelByKey(t, result, "coupang")
	assert.True(t, coupang.HasCostData, "matched by Korean label")
	assert.Equal(t, coupang.SettlementRevenue, coupang.RecommendedRevenue)
	assert.Equal(t, 60.0, coupang.SettlementDays)
}

func TestChannelRevenue_MissingCostRowAndRevenue(t *testing.T) {
	result := insight.ComputeChannelRevenue(dailySales(30, 100000, 50000, 0), nil, channelCosts(), testConfig())

	kurly := channelByKey(t, result, "kurly")
	assert.False(t, kurly.HasCostData)
	assert.Equal(t, 0.0, kurly.SettlementRevenue)
	assert.Equal(t, 0.0, kurly.MarginRate3, "no NaN on zero revenue")
	assert.Equal(t, 0.0, kurly.RevenueShare)
}

func TestChannelRevenue_WeeklyTrendAndPurchaseGap(t *testing.T) {
	purchases := []domain.PurchaseRecord{
		purchase(day(3), "RM001", "밀가루", 100, 10000),
		purchase(day(40), "RM001", "밀가루", 100, 10000), // outside the sales window
	}

	result := insight.ComputeChannelRevenue(dailySales(30, 100000, 50000, 0), purchases, channelCosts(), testConfig())

	// Jan 1 2025 is a Wednesday: the first week runs Dec 30 to Jan 5.
	require.Len(t, result.WeeklyTrend, 5)
	first := result.WeeklyTrend[0]
	assert.Equal(t, "2024-12-30", first.Week)
	assert.Equal(t, 500000.0, first.Revenue["jasa"])
	assert.Equal(t, 750000.0, first.Total)

	gap := result.PurchaseGap
	assert.Equal(t, 1_000_000.0, gap.ActualPurchaseCost)
	assert.Equal(t, 2_386_364.0, gap.EstimatedMaterialCost)
	assert.Equal(t, -1_386_364.0, gap.Gap)
}

func TestChannelRevenue_NoSales(t *testing.T) {
	result := insight.ComputeChannelRevenue(nil, nil, channelCosts(), testConfig())
	assert.Empty(t, result.Channels)
	assert.Empty(t, result.WeeklyTrend)
}
