package insight

import (
	"sort"
	"strings"
	"time"

	"github.com/andresuchdata/food-insight/backend-go/internal/domain"
	"github.com/andresuchdata/food-insight/backend-go/pkg/logger"
)

// stockIndex resolves the inventory line of a purchased product. Product codes are the
// primary key; the display name is kept as a logged fallback because older sheets carry
// inconsistent codes. A SKU stocked in several warehouses is folded into one line whose
// current and safety stock are the sums over its rows.
type stockIndex struct {
	byCode map[string]domain.InventorySafetyItem
	byName map[string]domain.InventorySafetyItem
}

func newStockIndex(items []domain.InventorySafetyItem) stockIndex {
	idx := stockIndex{
		byCode: make(map[string]domain.InventorySafetyItem, len(items)),
		byName: make(map[string]domain.InventorySafetyItem, len(items)),
	}
	for _, it := range items {
		if code := normalizeKey(it.SKUCode); code != "" {
			idx.byCode[code] = mergeStock(idx.byCode, code, it)
		}
		if name := normalizeKey(it.SKUName); name != "" {
			idx.byName[name] = mergeStock(idx.byName, name, it)
		}
	}
	return idx
}

func mergeStock(m map[string]domain.InventorySafetyItem, key string, it domain.InventorySafetyItem) domain.InventorySafetyItem {
	prev, ok := m[key]
	if !ok {
		return it
	}
	prev.CurrentStock += it.CurrentStock
	prev.SafetyStock += it.SafetyStock
	if prev.Warehouse != it.Warehouse {
		prev.Warehouse = ""
	}
	return prev
}

// lookup returns the matching item and whether one was found. A miss is an expected
// gap in source data and callers default to zero stock.
func (idx stockIndex) lookup(code, name string) (domain.InventorySafetyItem, bool) {
	if it, ok := idx.byCode[normalizeKey(code)]; ok {
		return it, true
	}
	if it, ok := idx.byName[normalizeKey(name)]; ok {
		logger.Log.Debug().
			Str("product_code", code).
			Str("product_name", name).
			Str("sku_code", it.SKUCode).
			Msg("inventory joined by product name")
		return it, true
	}
	return domain.InventorySafetyItem{}, false
}

func normalizeKey(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// productGroup is the purchase history of one product code.
type productGroup struct {
	Code      string
	Name      string
	Purchases []domain.PurchaseRecord
	TotalQty  float64
	TotalCost float64
	LastDate  time.Time
}

// avgUnitPrice is spend per purchased unit, falling back to the listed unit prices.
func (g productGroup) avgUnitPrice() float64 {
	if g.TotalQty > 0 {
		return g.TotalCost / g.TotalQty
	}
	prices := make([]float64, 0, len(g.Purchases))
	for _, p := range g.Purchases {
		prices = append(prices, p.UnitPrice)
	}
	return mean(prices)
}

// demandRate is purchased units per day over the inclusive purchase window, and the
// window length in days.
func (g productGroup) demandRate() (float64, int) {
	first, last, _ := dateSpan(g.Purchases, purchaseDate)
	days := spanDays(first, last)
	return g.TotalQty / float64(days), days
}

// groupPurchases groups purchases by product code, ordered by code. The name of the
// latest purchase wins when a code was renamed over time.
func groupPurchases(purchases []domain.PurchaseRecord) []productGroup {
	byCode := make(map[string]*productGroup)
	for _, p := range purchases {
		code := strings.TrimSpace(p.ProductCode)
		if code == "" {
			code = strings.TrimSpace(p.ProductName)
		}
		if code == "" {
			continue
		}
		g, ok := byCode[code]
		if !ok {
			g = &productGroup{Code: code, Name: p.ProductName, LastDate: p.Date}
			byCode[code] = g
		} else if !p.Date.Before(g.LastDate) {
			g.LastDate = p.Date
			if p.ProductName != "" {
				g.Name = p.ProductName
			}
		}
		g.Purchases = append(g.Purchases, p)
		g.TotalQty += p.Quantity
		g.TotalCost += p.Total
	}

	groups := make([]productGroup, 0, len(byCode))
	for _, g := range byCode {
		groups = append(groups, *g)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Code < groups[j].Code })
	return groups
}
