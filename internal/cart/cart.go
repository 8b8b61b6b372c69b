// Package cart resolves a customer's pending selections against the live
// catalog. A cart is a plain value owned by the caller: every operation takes
// a Context and returns a new one, and no stock is reserved.
package cart

import (
	"github.com/matthieukhl/shopcore/internal/apperr"
	"github.com/matthieukhl/shopcore/internal/models"
	"github.com/matthieukhl/shopcore/internal/pricing"
	"github.com/shopspring/decimal"
)

// Line is one requested product and quantity.
type Line struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// Context is the session-scoped cart state carried by the request boundary.
// Coupon is the code that produced Discount.
type Context struct {
	Lines    []Line          `json:"lines"`
	Coupon   string          `json:"coupon,omitempty"`
	Discount decimal.Decimal `json:"discount"`
}

func (c Context) clone() Context {
	out := Context{Coupon: c.Coupon, Discount: c.Discount}
	if len(c.Lines) > 0 {
		out.Lines = make([]Line, len(c.Lines))
		copy(out.Lines, c.Lines)
	}
	return out
}

func (c Context) IsEmpty() bool {
	return len(c.Lines) == 0
}

// Quantity returns the running quantity requested for productID.
func (c Context) Quantity(productID string) int {
	for _, l := range c.Lines {
		if l.ProductID == productID {
			return l.Quantity
		}
	}
	return 0
}

// Catalog is the read side of the inventory the cart resolves against.
type Catalog interface {
	Get(id string) (models.Product, error)
}

// Item is a materialized cart line.
type Item struct {
	Product  models.Product `json:"product"`
	Quantity int            `json:"quantity"`
}

func (i Item) LineTotal() decimal.Decimal {
	return i.Product.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// View is the cart as shown to a customer.
type View struct {
	Items      []Item `json:"items"`
	FirstOrder bool   `json:"first_order"`
	pricing.Totals
}

type Service struct {
	catalog Catalog
}

func NewService(catalog Catalog) *Service {
	return &Service{catalog: catalog}
}

// AddItem increments the running quantity for productID. The requested
// quantity alone is checked against the quantity on hand.
func (s *Service) AddItem(c Context, productID string, qty int) (Context, error) {
	if qty <= 0 {
		return c, apperr.Invalid("quantity must be positive")
	}

	p, err := s.catalog.Get(productID)
	if err != nil {
		return c, err
	}
	if !p.VisibleToCustomers {
		return c, apperr.NotFound("product", productID)
	}
	if qty > p.Quantity {
		return c, &apperr.InsufficientStockError{ProductID: productID, Requested: qty, OnHand: p.Quantity}
	}

	next := c.clone()
	for i := range next.Lines {
		if next.Lines[i].ProductID == productID {
			next.Lines[i].Quantity += qty
			return next, nil
		}
	}
	next.Lines = append(next.Lines, Line{ProductID: productID, Quantity: qty})
	return next, nil
}

// RemoveItem drops the line for productID. Removing an absent line is a no-op.
func (s *Service) RemoveItem(c Context, productID string) Context {
	next := Context{Coupon: c.Coupon, Discount: c.Discount}
	for _, l := range c.Lines {
		if l.ProductID != productID {
			next.Lines = append(next.Lines, l)
		}
	}
	if next.IsEmpty() {
		return Clear()
	}
	return next
}

// Clear returns an empty cart with no discount.
func Clear() Context {
	return Context{Discount: decimal.Zero}
}

// Materialize resolves every line against the current catalog in cart order.
// Lines whose product no longer exists are dropped.
func (s *Service) Materialize(c Context) []Item {
	items := make([]Item, 0, len(c.Lines))
	for _, l := range c.Lines {
		if l.Quantity <= 0 {
			continue
		}
		p, err := s.catalog.Get(l.ProductID)
		if err != nil {
			continue
		}
		items = append(items, Item{Product: p, Quantity: l.Quantity})
	}
	return items
}

// PricingLines converts materialized items for the pricing engine.
func PricingLines(items []Item) []pricing.Line {
	lines := make([]pricing.Line, 0, len(items))
	for _, it := range items {
		lines = append(lines, pricing.Line{UnitPrice: it.Product.Price, Quantity: it.Quantity})
	}
	return lines
}

// ApplyCoupon resets the discount and then evaluates code. On rejection the
// returned cart carries a zero discount.
func (s *Service) ApplyCoupon(c Context, code string, isFirstOrder bool) (Context, error) {
	next := c.clone()
	next.Coupon = ""
	next.Discount = decimal.Zero

	subtotal := pricing.Subtotal(PricingLines(s.Materialize(next)))
	discount, err := pricing.ApplyCoupon(code, subtotal, isFirstOrder)
	if err != nil {
		return next, err
	}
	next.Coupon = pricing.NormalizeCode(code)
	next.Discount = discount
	return next, nil
}

// Discount re-evaluates the applied coupon against subtotal. A cart without
// a coupon, or whose coupon no longer applies, gets no discount.
func Discount(c Context, subtotal decimal.Decimal, isFirstOrder bool) decimal.Decimal {
	if c.Coupon == "" {
		return decimal.Zero
	}
	d, err := pricing.ApplyCoupon(c.Coupon, subtotal, isFirstOrder)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func (s *Service) View(c Context, isFirstOrder bool) View {
	items := s.Materialize(c)
	lines := PricingLines(items)
	return View{
		Items:      items,
		FirstOrder: isFirstOrder,
		Totals:     pricing.Compute(lines, Discount(c, pricing.Subtotal(lines), isFirstOrder)),
	}
}
