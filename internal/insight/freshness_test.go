package insight_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/food-insight/backend-go/internal/domain"
	"github.com/andresuchdata/food-insight/backend-go/internal/insight"
)

func TestFreshness_FreshProductScoresFull(t *testing.T) {
	// GIVEN: ten daily purchases ending today and no stock left
	// THEN: recency, coverage and stability are all 100

	purchases := dailyPurchases("RM001", "두부", 0, 10, 5, 1000)
	items := []domain.InventorySafetyItem{stockItem("RM001", "두부", 0)}

	result := insight.ComputeFreshness(purchases, items, testConfig(), day(9))
	require.Len(t, result.Items, 1)

	it := result.Items[0]
	assert.Equal(t, 0, it.DaysSincePurchase)
	assert.Equal(t, 100.0, it.RecencyScore)
	assert.Equal(t, 100.0, it.CoverageScore)
	assert.Equal(t, 100.0, it.StabilityScore)
	assert.Equal(t, 100.0, it.Score)
	assert.Equal(t, insight.GradeSafe, it.Grade)
}

func TestFreshness_StaleProduct(t *testing.T) {
	// GIVEN: a single purchase of 10 units 40 days ago and 100 units in stock
	// THEN: recency is 0, coverage is 100-10*100/60, stability is 10

	purchases := []domain.PurchaseRecord{purchase(day(0), "RM001", "두부", 10, 1000)}
	items := []domain.InventorySafetyItem{stockItem("RM001", "두부", 100)}

	result := insight.ComputeFreshness(purchases, items, testConfig(), day(40))
	it := result.Items[0]

	assert.Equal(t, 40, it.DaysSincePurchase)
	assert.Equal(t, 0.0, it.RecencyScore)
	assert.Equal(t, 10.0, it.EstimatedDaysLeft)
	assert.Equal(t, 83.3, it.CoverageScore)
	assert.Equal(t, 10.0, it.StabilityScore)
	assert.Equal(t, 28.0, it.Score)
	assert.Equal(t, insight.GradeWarning, it.Grade)
}

func TestFreshness_NoDemandZeroesCoverage(t *testing.T) {
	purchases := []domain.PurchaseRecord{purchase(day(0), "RM001", "두부", 0, 1000)}
	items := []domain.InventorySafetyItem{stockItem("RM001", "두부", 10)}

	result := insight.ComputeFreshness(purchases, items, testConfig(), day(0))
	it := result.Items[0]

	assert.Equal(t, float64(insight.NoDemandDays), it.EstimatedDaysLeft)
	assert.Equal(t, 0.0, it.CoverageScore)
}

func TestFreshness_ScoreBoundsAndGrades(t *testing.T) {
	var purchases []domain.PurchaseRecord
	var items []domain.InventorySafetyItem
	for i := 1; i <= 20; i++ {
		c := code(i)
		for j := 0; j < i%7+1; j++ {
			purchases = append(purchases, purchase(day(i*3+j), c, "item", float64(i*j), 500))
		}
		items = append(items, stockItem(c, "item", float64(i*i*3)))
	}

	result := insight.ComputeFreshness(purchases, items, testConfig(), day(90))
	require.Len(t, result.Items, 20)

	bands := []struct {
		lower float64
		grade insight.FreshnessGrade
	}{
		{80, insight.GradeSafe},
		{60, insight.GradeGood},
		{40, insight.GradeCaution},
		{20, insight.GradeWarning},
		{0, insight.GradeDanger},
	}

	prev := -1.0
	for _, it := range result.Items {
		assert.GreaterOrEqual(t, it.Score, 0.0)
		assert.LessOrEqual(t, it.Score, 100.0)
		assert.GreaterOrEqual(t, it.Score, prev, "worst score first")
		prev = it.Score

		for _, b := range bands {
			if it.Score >= b.lower {
				assert.Equal(t, b.grade, it.Grade, "score %v", it.Score)
				break
			}
		}
	}

	var total int
	for _, n := range result.GradeCounts {
		total += n
	}
	assert.Equal(t, 20, total)
}

func TestFreshness_Empty(t *testing.T) {
	result := insight.ComputeFreshness(nil, nil, testConfig(), day(0))
	assert.Empty(t, result.Items)
	assert.Len(t, result.GradeCounts, 5)
}
