package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// OrderItem is the snapshot of one purchased line, taken at placement.
type OrderItem struct {
	ProductID string          `json:"product_id" db:"product_id"`
	Name      string          `json:"name" db:"name"`
	UnitPrice decimal.Decimal `json:"unit_price" db:"unit_price"`
	Quantity  int             `json:"quantity" db:"quantity"`
}

// Order is created once at placement. Only Status changes afterwards.
type Order struct {
	ID         string          `json:"id" db:"id"`
	CustomerID string          `json:"customer_id" db:"customer_id"`
	Items      []OrderItem     `json:"items" db:"items"`
	Subtotal   decimal.Decimal `json:"subtotal" db:"subtotal"`
	Discount   decimal.Decimal `json:"discount" db:"discount"`
	Tax        decimal.Decimal `json:"tax" db:"tax"`
	Total      decimal.Decimal `json:"total" db:"total"`
	Status     string          `json:"status" db:"status"`
	Address    string          `json:"address" db:"address"`
	CreatedAt  time.Time       `json:"timestamp" db:"created_at"`
}

func (o Order) Clone() Order {
	c := o
	c.Items = make([]OrderItem, len(o.Items))
	copy(c.Items, o.Items)
	return c
}

// Quantities returns the purchased quantity per product id.
func (o Order) Quantities() map[string]int {
	q := make(map[string]int, len(o.Items))
	for _, item := range o.Items {
		q[item.ProductID] += item.Quantity
	}
	return q
}

func (o Order) Contains(productID string) bool {
	for _, item := range o.Items {
		if item.ProductID == productID {
			return true
		}
	}
	return false
}

// Order statuses
const (
	OrderStatusPlaced     = "placed"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

var orderStatuses = map[string]bool{
	OrderStatusPlaced:     true,
	OrderStatusProcessing: true,
	OrderStatusShipped:    true,
	OrderStatusDelivered:  true,
	OrderStatusCancelled:  true,
}

// NormalizeStatus trims and lower-cases s and reports whether the result is
// a known order status.
func NormalizeStatus(s string) (string, bool) {
	status := strings.ToLower(strings.TrimSpace(s))
	return status, orderStatuses[status]
}
