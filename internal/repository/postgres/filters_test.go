package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/andresuchdata/food-insight/backend-go/internal/domain"
)

func TestBuildDateRangeClause(t *testing.T) {
	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)

	where, args := buildDateRangeClause("purchase_date", domain.DateRange{}, 1)
	assert.Empty(t, where)
	assert.Empty(t, args)

	where, args = buildDateRangeClause("purchase_date", domain.DateRange{From: from, To: to}, 1)
	assert.Equal(t, " WHERE purchase_date >= $1 AND purchase_date <= $2", where)
	assert.Equal(t, []interface{}{from, to}, args)

	where, args = buildDateRangeClause("sales_date", domain.DateRange{To: to}, 3)
	assert.Equal(t, " WHERE sales_date <= $3", where)
	assert.Equal(t, []interface{}{to}, args)
}

func TestBuildMonthRangeClause(t *testing.T) {
	where, args := buildMonthRangeClause("month", "", "2025-03")
	assert.Equal(t, " WHERE month <= $1", where)
	assert.Equal(t, []interface{}{"2025-03"}, args)

	where, _ = buildMonthRangeClause("month", "", "")
	assert.Empty(t, where)
}

func TestInsertQuery(t *testing.T) {
	assert.Equal(t,
		"INSERT INTO utilities (utility_date, electricity, water, gas) VALUES ($1, $2, $3, $4)",
		insertQuery("utilities", utilityColumns, ""))
	assert.Equal(t,
		"INSERT INTO labor_records (month, department, headcount, total_cost) VALUES ($1, $2, $3, $4) ON CONFLICT DO NOTHING",
		insertQuery("labor_records", laborColumns, "ON CONFLICT DO NOTHING"))
}

func TestSpan(t *testing.T) {
	rows := []domain.UtilityRecord{
		{Date: time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC)},
		{Date: time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)},
		{Date: time.Date(2025, 1, 9, 0, 0, 0, 0, time.UTC)},
	}
	lo, hi := span(rows, func(u domain.UtilityRecord) time.Time { return u.Date })
	assert.Equal(t, 2, lo.Day())
	assert.Equal(t, 9, hi.Day())
}
