// Package report computes aggregates over the order and product sets. The
// functions in this file are pure; Service adds access control and reads the
// current state on every call.
package report

import (
	"sort"
	"strings"

	"github.com/matthieukhl/shopcore/internal/models"
	"github.com/shopspring/decimal"
)

// TopSeller is a product id with the total quantity sold across all orders.
type TopSeller struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// TopProduct sums every order line by product id and returns the product
// with the highest quantity. Ties go to the product seen first in orders.
func TopProduct(orders []models.Order) (TopSeller, bool) {
	totals := make(map[string]int)
	var seen []string
	for _, o := range orders {
		for _, item := range o.Items {
			if _, ok := totals[item.ProductID]; !ok {
				seen = append(seen, item.ProductID)
			}
			totals[item.ProductID] += item.Quantity
		}
	}
	if len(seen) == 0 {
		return TopSeller{}, false
	}

	best := TopSeller{ProductID: seen[0], Quantity: totals[seen[0]]}
	for _, id := range seen[1:] {
		if totals[id] > best.Quantity {
			best = TopSeller{ProductID: id, Quantity: totals[id]}
		}
	}
	return best, true
}

// Revenue is the sum of order totals.
func Revenue(orders []models.Order) decimal.Decimal {
	sum := decimal.Zero
	for _, o := range orders {
		sum = sum.Add(o.Total)
	}
	return sum
}

func OutOfStock(products []models.Product) []models.Product {
	out := []models.Product{}
	for _, p := range products {
		if p.OutOfStock() {
			out = append(out, p)
		}
	}
	return out
}

// SortByPrice returns products in ascending price order. Equal prices are
// ordered by product id.
func SortByPrice(products []models.Product) []models.Product {
	out := make([]models.Product, len(products))
	copy(out, products)
	sort.SliceStable(out, func(i, j int) bool {
		if c := out[i].Price.Cmp(out[j].Price); c != 0 {
			return c < 0
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// SearchByName keeps products whose name contains query, ignoring case. An
// empty query keeps everything.
func SearchByName(products []models.Product, query string) []models.Product {
	query = strings.TrimSpace(query)
	if query == "" {
		return products
	}
	out := []models.Product{}
	for _, p := range products {
		if p.NameContains(query) {
			out = append(out, p)
		}
	}
	return out
}

// FilterByPrice keeps products priced within the inclusive bounds. A nil
// bound is open.
func FilterByPrice(products []models.Product, lo, hi *decimal.Decimal) []models.Product {
	out := []models.Product{}
	for _, p := range products {
		if lo != nil && p.Price.LessThan(*lo) {
			continue
		}
		if hi != nil && p.Price.GreaterThan(*hi) {
			continue
		}
		out = append(out, p)
	}
	return out
}
