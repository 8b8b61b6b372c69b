// Package orders turns carts into durable orders and manages their status.
package orders

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/matthieukhl/shopcore/internal/apperr"
	"github.com/matthieukhl/shopcore/internal/auth"
	"github.com/matthieukhl/shopcore/internal/cart"
	"github.com/matthieukhl/shopcore/internal/inventory"
	"github.com/matthieukhl/shopcore/internal/logging"
	"github.com/matthieukhl/shopcore/internal/models"
	"github.com/matthieukhl/shopcore/internal/pricing"
	"github.com/matthieukhl/shopcore/internal/store"
	"github.com/matthieukhl/shopcore/internal/users"
	"github.com/shopspring/decimal"
)

// Service owns the order collection. Placement locks inventory, then
// orders, then users; nothing else nests these locks in another order.
type Service struct {
	mu     sync.RWMutex
	orders map[string]models.Order

	inv   *inventory.Inventory
	users *users.Directory
	carts *cart.Service
	store store.Store
	log   *slog.Logger
	now   func() time.Time
	newID func() string
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDSource replaces the random order id generator.
func WithIDSource(next func() string) Option {
	return func(s *Service) { s.newID = next }
}

func NewService(inv *inventory.Inventory, dir *users.Directory, st store.Store, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		orders: make(map[string]models.Order),
		inv:    inv,
		users:  dir,
		carts:  cart.NewService(inv),
		store:  st,
		log:    logging.OrDefault(logger).With("component", "orders"),
		now:    time.Now,
		newID:  randomOrderID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func randomOrderID() string {
	return strconv.Itoa(100000 + rand.IntN(900000))
}

func (s *Service) Load(ctx context.Context) error {
	orders, err := store.LoadAll[models.Order](ctx, s.store, store.Orders)
	if err != nil {
		return apperr.Persistence("load orders", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders = make(map[string]models.Order, len(orders))
	for id, o := range orders {
		o.ID = id
		s.orders[id] = o
	}
	s.log.Info("orders loaded", "orders", len(orders))
	return nil
}

func (s *Service) uniqueIDLocked() string {
	for {
		id := s.newID()
		if _, taken := s.orders[id]; !taken {
			return id
		}
	}
}

// PlaceOrder converts the caller's cart into an order. On success the
// returned cart is empty; on failure nothing has changed and the input cart
// is returned as is.
//
// The stock check, the order id allocation, the history append and the
// store commit run as one critical section. A store failure leaves memory
// untouched and surfaces as a PersistenceError.
func (s *Service) PlaceOrder(ctx context.Context, caller auth.Principal, c cart.Context, address string) (models.Order, cart.Context, error) {
	if err := auth.RequireCustomer(caller); err != nil {
		return models.Order{}, c, err
	}

	items := s.carts.Materialize(c)
	if len(items) == 0 {
		return models.Order{}, c, apperr.ErrEmptyCart
	}
	address = strings.TrimSpace(address)
	if address == "" {
		return models.Order{}, c, apperr.Invalid("delivery address is required")
	}

	reqs := make([]inventory.Request, 0, len(items))
	snapshot := make([]models.OrderItem, 0, len(items))
	for _, it := range items {
		if it.Quantity > it.Product.Quantity {
			return models.Order{}, c, &apperr.InsufficientStockError{
				ProductID: it.Product.ID,
				Requested: it.Quantity,
				OnHand:    it.Product.Quantity,
			}
		}
		reqs = append(reqs, inventory.Request{ProductID: it.Product.ID, Quantity: it.Quantity})
		snapshot = append(snapshot, models.OrderItem{
			ProductID: it.Product.ID,
			Name:      it.Product.Name,
			UnitPrice: it.Product.Price,
			Quantity:  it.Quantity,
		})
	}

	lines := cart.PricingLines(items)
	discount := decimal.Zero
	if c.Coupon != "" {
		// Eligibility is checked again below, under the user lock.
		d, err := pricing.ApplyCoupon(c.Coupon, pricing.Subtotal(lines), true)
		if err != nil {
			return models.Order{}, c, err
		}
		discount = d
	}
	totals := pricing.Compute(lines, discount)

	var placed models.Order
	err := s.inv.Reserve(ctx, reqs, func(ctx context.Context, updated []models.Product) error {
		s.mu.Lock()
		defer s.mu.Unlock()

		order := models.Order{
			ID:         s.uniqueIDLocked(),
			CustomerID: caller.UserID,
			Items:      snapshot,
			Subtotal:   totals.Subtotal,
			Discount:   totals.Discount,
			Tax:        totals.Tax,
			Total:      totals.Total,
			Status:     models.OrderStatusPlaced,
			Address:    address,
			CreatedAt:  s.now().UTC(),
		}

		err := s.users.AppendOrder(ctx, caller.UserID, order.ID, func(ctx context.Context, u models.User) error {
			if c.Coupon != "" && len(u.OrderHistory) > 1 {
				return &apperr.CouponRejectedError{Code: c.Coupon, Reason: apperr.ReasonNotFirstOrder}
			}
			return s.commitPlacement(ctx, order, updated, u)
		})
		if err != nil {
			return err
		}

		s.orders[order.ID] = order
		placed = order
		return nil
	})
	if err != nil {
		if apperr.IsBusiness(err) {
			s.log.Info("order rejected", "customer_id", caller.UserID, "reason", err.Error())
		}
		return models.Order{}, c, err
	}

	s.log.Info("order placed",
		"order_id", placed.ID,
		"customer_id", placed.CustomerID,
		"items", len(placed.Items),
		"total", placed.Total.StringFixed(pricing.Places),
	)
	return placed.Clone(), cart.Clear(), nil
}

func (s *Service) commitPlacement(ctx context.Context, order models.Order, products []models.Product, user models.User) error {
	writes, err := inventory.ProductWrites(products)
	if err != nil {
		return err
	}
	ow, err := store.Put(store.Orders, order.ID, order)
	if err != nil {
		return err
	}
	uw, err := store.Put(store.Users, user.ID, user)
	if err != nil {
		return err
	}
	writes = append(writes, ow, uw)

	if err := s.store.Commit(ctx, writes...); err != nil {
		s.log.Error("store commit failed", "op", "place order", "order_id", order.ID, "error", err)
		return apperr.Persistence("place order", err)
	}
	return nil
}

// UpdateStatus sets an order's status. The new status is durable before it
// becomes visible to review eligibility.
func (s *Service) UpdateStatus(ctx context.Context, caller auth.Principal, id, status string) (models.Order, error) {
	if err := auth.RequireAdmin(caller); err != nil {
		return models.Order{}, err
	}
	normalized, ok := models.NormalizeStatus(status)
	if !ok {
		return models.Order{}, apperr.Invalid("unknown order status %q", status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.orders[id]
	if !ok {
		return models.Order{}, apperr.NotFound("order", id)
	}

	next := current.Clone()
	next.Status = normalized
	w, err := store.Put(store.Orders, id, next)
	if err != nil {
		return models.Order{}, fmt.Errorf("failed to update order status: %w", err)
	}
	if err := s.store.Commit(ctx, w); err != nil {
		s.log.Error("store commit failed", "op", "update status", "order_id", id, "error", err)
		return models.Order{}, apperr.Persistence("update order status", err)
	}

	s.orders[id] = next
	s.log.Info("order status updated", "order_id", id, "from", current.Status, "to", normalized, "admin_id", caller.UserID)
	return next.Clone(), nil
}

func (s *Service) Get(id string) (models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.orders[id]
	if !ok {
		return models.Order{}, apperr.NotFound("order", id)
	}
	return o.Clone(), nil
}

// Snapshot returns every order, oldest first.
func (s *Service) Snapshot() []models.Order {
	s.mu.RLock()
	out := make([]models.Order, 0, len(s.orders))
	for _, o := range s.orders {
		out = append(out, o.Clone())
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// ForCustomer returns the orders named in the customer's history, in
// history order.
func (s *Service) ForCustomer(customerID string) ([]models.Order, error) {
	u, err := s.users.Get(customerID)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Order, 0, len(u.OrderHistory))
	for _, id := range u.OrderHistory {
		if o, ok := s.orders[id]; ok && o.CustomerID == customerID {
			out = append(out, o.Clone())
		}
	}
	return out, nil
}

// History is the calling customer's own order list.
func (s *Service) History(caller auth.Principal) ([]models.Order, error) {
	if err := auth.RequireCustomer(caller); err != nil {
		return nil, err
	}
	return s.ForCustomer(caller.UserID)
}

// Listing is an order with its customer's display name resolved.
type Listing struct {
	models.Order
	CustomerName string `json:"customer_name"`
}

// List returns every order with customer names, oldest first.
func (s *Service) List(caller auth.Principal) ([]Listing, error) {
	if err := auth.RequireAdmin(caller); err != nil {
		return nil, err
	}
	return s.WithNames(s.Snapshot()), nil
}

func (s *Service) WithNames(orders []models.Order) []Listing {
	out := make([]Listing, 0, len(orders))
	for _, o := range orders {
		out = append(out, Listing{Order: o, CustomerName: s.users.Name(o.CustomerID)})
	}
	return out
}

// Carts exposes the cart service bound to this service's catalog.
func (s *Service) Carts() *cart.Service {
	return s.carts
}
