// Package ingest turns CSV, XLSX and Google Sheets tables into domain records.
package ingest

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMissingColumn is returned when a table lacks a required column.
var ErrMissingColumn = errors.New("missing required column")

var columnNameSanitizer = strings.NewReplacer(" ", "", "_", "", ".", "", "-", "", "/", "", "(", "", ")", "")

func normalizeColumnName(name string) string {
	name = strings.TrimSpace(strings.ToLower(strings.TrimPrefix(name, "\ufeff")))
	return columnNameSanitizer.Replace(name)
}

// column describes one logical field and the header spellings it is known by.
// Aliases are compared after normalizeColumnName.
type column struct {
	name     string
	aliases  []string
	required bool
}

// columnMap maps logical field names to header indices.
type columnMap map[string]int

// resolveColumns finds every column of the schema in header. Optional columns that are
// absent are left out of the map; a missing required column yields ErrMissingColumn.
func resolveColumns(header []string, schema []column) (columnMap, error) {
	index := make(map[string]int, len(header))
	for i, h := range header {
		key := normalizeColumnName(h)
		if _, seen := index[key]; !seen && key != "" {
			index[key] = i
		}
	}

	cols := make(columnMap, len(schema))
	var missing []string
	for _, c := range schema {
		found := false
		for _, alias := range append([]string{c.name}, c.aliases...) {
			if i, ok := index[normalizeColumnName(alias)]; ok {
				cols[c.name] = i
				found = true
				break
			}
		}
		if !found && c.required {
			missing = append(missing, c.name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}
	return cols, nil
}

func (m columnMap) has(name string) bool {
	_, ok := m[name]
	return ok
}

var (
	purchaseSchema = []column{
		{name: "date", aliases: []string{"purchase_date", "일자", "일자-No.", "구매일자", "매입일자"}, required: true},
		{name: "product_code", aliases: []string{"code", "품목코드", "자재코드"}},
		{name: "product_name", aliases: []string{"name", "품목명", "자재명"}},
		{name: "quantity", aliases: []string{"qty", "수량"}, required: true},
		{name: "unit_price", aliases: []string{"price", "단가"}},
		{name: "total", aliases: []string{"amount", "합계", "합계금액", "금액"}},
	}

	productionSchema = []column{
		{name: "date", aliases: []string{"production_date", "일자", "생산일자"}, required: true},
		{name: "normal_qty", aliases: []string{"일반"}},
		{name: "preprocess_qty", aliases: []string{"전처리"}},
		{name: "frozen_qty", aliases: []string{"냉동"}},
		{name: "sauce_qty", aliases: []string{"소스"}},
		{name: "bibimbap_qty", aliases: []string{"비빔밥"}},
		{name: "total_qty", aliases: []string{"총생산량", "생산량", "합계"}},
		{name: "total_kg", aliases: []string{"총중량", "중량kg"}},
		{name: "waste_finished_qty", aliases: []string{"완제품폐기수량", "폐기수량"}},
		{name: "waste_finished_pct", aliases: []string{"완제품폐기율", "폐기율"}},
		{name: "waste_semi_pct", aliases: []string{"반제품폐기율"}},
		{name: "waste_semi_kg", aliases: []string{"반제품폐기kg", "반제품폐기량"}},
	}

	salesSchema = []column{
		{name: "date", aliases: []string{"sales_date", "일자", "매출일자"}, required: true},
		{name: "jasa_revenue", aliases: []string{"jasa", "자사몰", "자사몰매출"}},
		{name: "coupang_revenue", aliases: []string{"coupang", "쿠팡", "쿠팡매출"}},
		{name: "kurly_revenue", aliases: []string{"kurly", "컬리", "컬리매출"}},
		{name: "total_revenue", aliases: []string{"total", "합계", "총매출"}},
	}

	utilitySchema = []column{
		{name: "date", aliases: []string{"utility_date", "일자", "청구일자"}, required: true},
		{name: "electricity", aliases: []string{"전기", "전기료"}},
		{name: "water", aliases: []string{"수도", "수도료"}},
		{name: "gas", aliases: []string{"가스", "가스료"}},
	}

	inventorySchema = []column{
		{name: "sku_code", aliases: []string{"sku", "code", "품목코드"}, required: true},
		{name: "sku_name", aliases: []string{"name", "품목명"}},
		{name: "current_stock", aliases: []string{"stock", "현재고", "재고수량"}, required: true},
		{name: "safety_stock", aliases: []string{"안전재고"}},
		{name: "turnover_rate", aliases: []string{"회전율"}},
		{name: "status", aliases: []string{"상태"}},
		{name: "warehouse", aliases: []string{"창고"}},
	}

	bomSchema = []column{
		{name: "product_code", aliases: []string{"제품코드"}},
		{name: "product_name", aliases: []string{"제품명"}, required: true},
		{name: "material_code", aliases: []string{"자재코드", "품목코드"}},
		{name: "material_name", aliases: []string{"자재명", "품목명"}},
		{name: "consumption_qty", aliases: []string{"qty", "소요량", "수량"}, required: true},
		{name: "unit", aliases: []string{"단위"}},
	}

	materialSchema = []column{
		{name: "material_code", aliases: []string{"code", "품목코드", "자재코드"}, required: true},
		{name: "material_name", aliases: []string{"name", "품목명", "자재명"}},
		{name: "unit_price", aliases: []string{"price", "단가"}, required: true},
		{name: "unit", aliases: []string{"단위"}},
	}

	snapshotSchema = []column{
		{name: "snapshot_date", aliases: []string{"date", "일자", "기준일"}, required: true},
		{name: "material_code", aliases: []string{"code", "품목코드"}, required: true},
		{name: "product_name", aliases: []string{"name", "품목명"}},
		{name: "balance_qty", aliases: []string{"balance", "재고수량", "기말재고", "잔량"}, required: true},
		{name: "unit_price", aliases: []string{"price", "단가"}},
	}

	channelCostSchema = []column{
		{name: "channel_name", aliases: []string{"channel", "채널"}, required: true},
		{name: "total_variable_rate_pct", aliases: []string{"변동비율"}},
		{name: "total_variable_per_order", aliases: []string{"건당변동비"}},
		{name: "total_fixed_monthly", aliases: []string{"월고정비"}},
		{name: "discount_rate", aliases: []string{"할인율"}},
		{name: "commission_rate", aliases: []string{"수수료율"}},
	}

	laborSchema = []column{
		{name: "month", aliases: []string{"월", "연월"}, required: true},
		{name: "department", aliases: []string{"부서"}},
		{name: "headcount", aliases: []string{"인원"}},
		{name: "total_cost", aliases: []string{"인건비", "총인건비"}, required: true},
	}
)
