package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Review is a piece of customer feedback attached to a product.
type Review struct {
	User      string    `json:"user"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// Product is a catalog entry with its quantity on hand.
type Product struct {
	ID                 string          `json:"id" db:"id"`
	Name               string          `json:"name" db:"name"`
	Category           string          `json:"category" db:"category"`
	Price              decimal.Decimal `json:"price" db:"price"`
	Quantity           int             `json:"quantity" db:"quantity"`
	Reviews            []Review        `json:"reviews" db:"reviews"`
	VisibleToCustomers bool            `json:"visible_to_customers" db:"visible_to_customers"`
	CreatedAt          time.Time       `json:"created_at" db:"created_at"`
}

// Clone returns a copy that shares no mutable state with p.
func (p Product) Clone() Product {
	c := p
	if p.Reviews != nil {
		c.Reviews = make([]Review, len(p.Reviews))
		copy(c.Reviews, p.Reviews)
	}
	return c
}

func (p Product) OutOfStock() bool {
	return p.Quantity <= 0
}

// NameContains reports a case-insensitive substring match on the product name.
func (p Product) NameContains(query string) bool {
	return strings.Contains(strings.ToLower(p.Name), strings.ToLower(query))
}

// Product categories
const (
	CategoryElectronics = "electronics"
	CategoryBooks       = "books"
	CategoryClothing    = "clothing"
	CategoryHome        = "home"
	CategorySports      = "sports"
	CategoryToys        = "toys"
)
