package insight_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/food-insight/backend-go/internal/domain"
	"github.com/andresuchdata/food-insight/backend-go/internal/insight"
)

func fullDataset() domain.Dataset {
	return domain.Dataset{
		Purchases: append(
			dailyPurchases("RM001", "양파", 0, 30, 10, 1000),
			dailyPurchases("SM001", "용기", 0, 30, 5, 200)...,
		),
		Inventory:  []domain.InventorySafetyItem{stockItem("RM001", "양파", 50), stockItem("SM001", "용기", 500)},
		Production: []domain.ProductionRecord{production(day(0), 100, 2, 2), production(day(20), 100, 3, 3)},
		Sales:      dailySales(31, 100000, 50000, 20000),
		BomItems: []domain.BomItemData{
			{ProductCode: "FG001", ProductName: "불고기", MaterialCode: "RM001", MaterialName: "양파", ConsumptionQty: 0.1},
		},
	}
}

func TestComputeAllInsights_EverySection(t *testing.T) {
	all := insight.ComputeAllInsights(fullDataset(), testConfig())

	for _, name := range insight.Sections {
		v, ok := all.Section(name)
		require.True(t, ok, name)
		assert.NotNil(t, v, name)
	}

	// The latest record is the last sales day (Jan 31).
	assert.Equal(t, day(30), all.AsOf)
	assert.False(t, all.GeneratedAt.IsZero())
}

func TestComputeAllInsights_SkipsSectionsWithoutInputs(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*domain.Dataset)
		skipped []string
	}{
		{
			name:    "no inventory",
			mutate:  func(ds *domain.Dataset) { ds.Inventory = nil },
			skipped: []string{insight.SectionStatisticalOrder, insight.SectionFreshness, insight.SectionInventoryCost},
		},
		{
			name:    "no bom",
			mutate:  func(ds *domain.Dataset) { ds.BomItems = nil },
			skipped: []string{insight.SectionBomAnomaly},
		},
		{
			name:   "no sales",
			mutate: func(ds *domain.Dataset) { ds.Sales = nil },
			skipped: []string{
				insight.SectionChannelRevenue, insight.SectionCostBreakdown,
				insight.SectionCashFlow, insight.SectionProfitCenter,
			},
		},
		{
			name:   "no production",
			mutate: func(ds *domain.Dataset) { ds.Production = nil },
			skipped: []string{
				insight.SectionBomVariance, insight.SectionBomAnomaly,
				insight.SectionProfitCenter, insight.SectionWaste,
			},
		},
		{
			name:   "no purchases",
			mutate: func(ds *domain.Dataset) { ds.Purchases = nil },
			skipped: []string{
				insight.SectionStatisticalOrder, insight.SectionFreshness, insight.SectionInventoryCost,
				insight.SectionABCXYZ, insight.SectionMaterialPrice, insight.SectionBomVariance,
				insight.SectionBomAnomaly, insight.SectionCostBreakdown, insight.SectionCashFlow,
				insight.SectionProfitCenter,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds := fullDataset()
			tt.mutate(&ds)
			all := insight.ComputeAllInsights(ds, testConfig())

			skipped := map[string]bool{}
			for _, s := range tt.skipped {
				skipped[s] = true
			}
			for _, name := range insight.Sections {
				v, _ := all.Section(name)
				if skipped[name] {
					assert.Nil(t, v, name)
				} else {
					assert.NotNil(t, v, name)
				}
			}
		})
	}
}

func TestComputeAllInsights_EmptyDataset(t *testing.T) {
	all := insight.ComputeAllInsights(domain.Dataset{}, testConfig())
	for _, name := range insight.Sections {
		v, ok := all.Section(name)
		assert.True(t, ok)
		assert.Nil(t, v, name)
	}
}

func TestComputeAllInsights_Options(t *testing.T) {
	ds := fullDataset()
	ds.AsOf = day(45)

	all := insight.ComputeAllInsightsWith(ds, testConfig(), insight.Options{ServiceLevel: 99})

	assert.Equal(t, day(45), all.AsOf, "explicit as-of date wins")
	require.NotNil(t, all.StatisticalOrder)
	assert.Equal(t, 99.0, all.StatisticalOrder.ServiceLevel)
	require.NotNil(t, all.BomVariance)
	assert.Equal(t, "self_baseline", all.BomVariance.Strategy)
}

func TestSection_UnknownName(t *testing.T) {
	all := insight.ComputeAllInsights(fullDataset(), testConfig())
	v, ok := all.Section("forecast")
	assert.False(t, ok)
	assert.Nil(t, v)
}
