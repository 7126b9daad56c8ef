package postgres

import (
	"fmt"
	"strings"

	"github.com/andresuchdata/food-insight/backend-go/internal/domain"
)

// buildDateRangeClause constructs a WHERE clause bounding column by r.
// It returns an empty clause when the range is unbounded.
func buildDateRangeClause(column string, r domain.DateRange, startIndex int) (string, []interface{}) {
	var (
		clauses []string
		args    []interface{}
	)
	idx := startIndex

	if !r.From.IsZero() {
		clauses = append(clauses, fmt.Sprintf("%s >= $%d", column, idx))
		args = append(args, r.From)
		idx++
	}
	if !r.To.IsZero() {
		clauses = append(clauses, fmt.Sprintf("%s <= $%d", column, idx))
		args = append(args, r.To)
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// buildMonthRangeClause is buildDateRangeClause for YYYY-MM text columns.
func buildMonthRangeClause(column, fromMonth, toMonth string) (string, []interface{}) {
	var (
		clauses []string
		args    []interface{}
	)
	if fromMonth != "" {
		args = append(args, fromMonth)
		clauses = append(clauses, fmt.Sprintf("%s >= $%d", column, len(args)))
	}
	if toMonth != "" {
		args = append(args, toMonth)
		clauses = append(clauses, fmt.Sprintf("%s <= $%d", column, len(args)))
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}
