package insight

import (
	"sort"

	"github.com/andresuchdata/food-insight/backend-go/internal/domain"
)

// ABCClass ranks a product by its cumulative share of total spend.
type ABCClass string

// XYZClass ranks a product by the volatility of its monthly spend.
type XYZClass string

const (
	ClassA ABCClass = "A"
	ClassB ABCClass = "B"
	ClassC ABCClass = "C"

	ClassX XYZClass = "X"
	ClassY XYZClass = "Y"
	ClassZ XYZClass = "Z"
)

var (
	abcClasses = []ABCClass{ClassA, ClassB, ClassC}
	xyzClasses = []XYZClass{ClassX, ClassY, ClassZ}
)

// ABCXYZItem is the classification of one product.
type ABCXYZItem struct {
	ProductCode     string   `json:"product_code"`
	ProductName     string   `json:"product_name"`
	TotalSpend      float64  `json:"total_spend"`
	SpendShare      float64  `json:"spend_share"`
	CumulativeShare float64  `json:"cumulative_share"`
	MonthCount      int      `json:"month_count"`
	CV              float64  `json:"cv"`
	ABC             ABCClass `json:"abc"`
	XYZ             XYZClass `json:"xyz"`
	Combined        string   `json:"combined"`
}

// ABCXYZSummary counts products per axis class.
type ABCXYZSummary struct {
	TotalProducts int            `json:"total_products"`
	TotalSpend    float64        `json:"total_spend"`
	ABC           map[string]int `json:"abc"`
	XYZ           map[string]int `json:"xyz"`
}

// ABCXYZInsight is the output of ComputeABCXYZ. Matrix always holds all nine
// combined classes, AX through CZ.
type ABCXYZInsight struct {
	Items   []ABCXYZItem   `json:"items"`
	Matrix  map[string]int `json:"matrix"`
	Summary ABCXYZSummary  `json:"summary"`
}

// ComputeABCXYZ classifies purchased products by spend share (ABC) and monthly
// spend volatility (XYZ).
func ComputeABCXYZ(purchases []domain.PurchaseRecord, cfg domain.BusinessConfig) *ABCXYZInsight {
	result := newABCXYZInsight()

	groups := groupPurchases(purchases)
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].TotalCost > groups[j].TotalCost
	})

	// Summed in ranking order so the last cumulative share lands on exactly 100.
	var total float64
	for _, g := range groups {
		total += g.TotalCost
	}

	var cumulative float64
	for _, g := range groups {
		cumulative += g.TotalCost
		cumShare := pct(cumulative, total)

		monthly := AggregateByPeriod(g.Purchases, Monthly, purchaseDate, purchaseTotal)
		amounts := make([]float64, 0, len(monthly))
		for _, k := range SortedKeys(monthly) {
			amounts = append(amounts, monthly[k])
		}
		cv := coefficientOfVariation(amounts)

		abc := classifyABC(cumShare, cfg.ABCClassAThreshold, cfg.ABCClassBThreshold)
		xyz := classifyXYZ(cv, cfg.XYZClassXThreshold, cfg.XYZClassYThreshold)
		combined := string(abc) + string(xyz)

		result.Items = append(result.Items, ABCXYZItem{
			ProductCode:     g.Code,
			ProductName:     g.Name,
			TotalSpend:      round(g.TotalCost, 0),
			SpendShare:      round(pct(g.TotalCost, total), 2),
			CumulativeShare: round(cumShare, 2),
			MonthCount:      len(amounts),
			CV:              round(cv, 3),
			ABC:             abc,
			XYZ:             xyz,
			Combined:        combined,
		})
		result.Matrix[combined]++
		result.Summary.ABC[string(abc)]++
		result.Summary.XYZ[string(xyz)]++
	}

	result.Summary.TotalProducts = len(result.Items)
	result.Summary.TotalSpend = round(total, 0)
	return result
}

func newABCXYZInsight() *ABCXYZInsight {
	r := &ABCXYZInsight{
		Items:  []ABCXYZItem{},
		Matrix: make(map[string]int, 9),
		Summary: ABCXYZSummary{
			ABC: make(map[string]int, 3),
			XYZ: make(map[string]int, 3),
		},
	}
	for _, a := range abcClasses {
		r.Summary.ABC[string(a)] = 0
		for _, x := range xyzClasses {
			r.Matrix[string(a)+string(x)] = 0
		}
	}
	for _, x := range xyzClasses {
		r.Summary.XYZ[string(x)] = 0
	}
	return r
}

func classifyABC(cumulativeShare, aThreshold, bThreshold float64) ABCClass {
	switch {
	case cumulativeShare <= aThreshold:
		return ClassA
	case cumulativeShare <= bThreshold:
		return ClassB
	default:
		return ClassC
	}
}

func classifyXYZ(cv, xThreshold, yThreshold float64) XYZClass {
	switch {
	case cv <= xThreshold:
		return ClassX
	case cv <= yThreshold:
		return ClassY
	default:
		return ClassZ
	}
}
