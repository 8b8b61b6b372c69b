// Package inventory owns the product catalog and is the only place where
// quantity on hand changes.
package inventory

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
	"github.com/matthieukhl/shopcore/internal/logging"
	"github.com/matthieukhl/shopcore/internal/models"
	"github.com/matthieukhl/shopcore/internal/store"
	"github.com/shopspring/decimal"
)

// Request asks for Quantity units of a product.
type Request struct {
	ProductID string
	Quantity  int
}

// CommitFunc runs inside the reservation critical section with the product
// records as they will look after the decrement. Returning an error aborts
// the reservation and leaves every quantity unchanged.
type CommitFunc func(ctx context.Context, updated []models.Product) error

type Inventory struct {
	mu       sync.RWMutex
	products map[string]models.Product

	store store.Store
	log   *slog.Logger
	now   func() time.Time
	newID func() string
}

type Option func(*Inventory)

func WithClock(now func() time.Time) Option {
	return func(inv *Inventory) { inv.now = now }
}

// WithIDSource replaces the random product id generator.
func WithIDSource(next func() string) Option {
	return func(inv *Inventory) { inv.newID = next }
}

func New(st store.Store, logger *slog.Logger, opts ...Option) *Inventory {
	inv := &Inventory{
		products: make(map[string]models.Product),
		store:    st,
		log:      logging.OrDefault(logger).With("component", "inventory"),
		now:      time.Now,
		newID:    randomProductID,
	}
	for _, opt := range opts {
		opt(inv)
	}
	return inv
}

func randomProductID() string {
	return strconv.Itoa(10000 + rand.IntN(90000))
}

// Load replaces the in-memory catalog with the persisted one.
func (inv *Inventory) Load(ctx context.Context) error {
	products, err := store.LoadAll[models.Product](ctx, inv.store, store.Products)
	if err != nil {
		return apperr.Persistence("load products", err)
	}

	inv.mu.Lock()
	defer inv.mu.Unlock()
	inv.products = make(map[string]models.Product, len(products))
	for id, p := range products {
		p.ID = id
		inv.products[id] = p
	}
	inv.log.Info("catalog loaded", "products", len(products))
	return nil
}

func (inv *Inventory) Get(id string) (models.Product, error) {
	inv.mu.RLock()
	defer inv.mu.RUnlock()

	p, ok := inv.products[id]
	if !ok {
		return models.Product{}, apperr.NotFound("product", id)
	}
	return p.Clone(), nil
}

// List returns every product, hidden ones included, oldest first.
func (inv *Inventory) List() []models.Product {
	return inv.filter(func(models.Product) bool { return true })
}

// Visible returns the products customers may see.
func (inv *Inventory) Visible() []models.Product {
	return inv.filter(func(p models.Product) bool { return p.VisibleToCustomers })
}

func (inv *Inventory) filter(keep func(models.Product) bool) []models.Product {
	inv.mu.RLock()
	out := make([]models.Product, 0, len(inv.products))
	for _, p := range inv.products {
		if keep(p) {
			out = append(out, p.Clone())
		}
	}
	inv.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (inv *Inventory) uniqueIDLocked() string {
	for {
		id := inv.newID()
		if _, taken := inv.products[id]; !taken {
			return id
		}
	}
}

// ProductInput carries the administrator-editable attributes.
type ProductInput struct {
	Name     string          `json:"name"`
	Category string          `json:"category"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
	Visible  *bool           `json:"visible_to_customers,omitempty"`
}

func (in ProductInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return apperr.Invalid("product name is required")
	}
	if in.Price.IsNegative() {
		return apperr.Invalid("price must not be negative")
	}
	if in.Quantity < 0 {
		return apperr.Invalid("quantity must not be negative")
	}
	return nil
}

func (inv *Inventory) Create(ctx context.Context, caller auth.Principal, in ProductInput) (models.Product, error) {
	if err := auth.RequireAdmin(caller); err != nil {
		return models.Product{}, err
	}
	if err := in.validate(); err != nil {
		return models.Product{}, err
	}

	inv.mu.Lock()
	defer inv.mu.Unlock()

	id := inv.uniqueIDLocked()

	p := models.Product{
		ID:                 id,
		Name:               strings.TrimSpace(in.Name),
		Category:           strings.TrimSpace(in.Category),
		Price:              in.Price,
		Quantity:           in.Quantity,
		Reviews:            []models.Review{},
		VisibleToCustomers: in.Visible == nil || *in.Visible,
		CreatedAt:          inv.now().UTC(),
	}
	if err := inv.persist(ctx, "create product", p); err != nil {
		return models.Product{}, err
	}

	inv.products[id] = p
	inv.log.Info("product created", "product_id", id, "admin_id", caller.UserID)
	return p.Clone(), nil
}

func (inv *Inventory) Update(ctx context.Context, caller auth.Principal, id string, in ProductInput) (models.Product, error) {
	if err := auth.RequireAdmin(caller); err != nil {
		return models.Product{}, err
	}
	if err := in.validate(); err != nil {
		return models.Product{}, err
	}

	return inv.mutate(ctx, "update product", id, func(p *models.Product) {
		p.Name = strings.TrimSpace(in.Name)
		p.Category = strings.TrimSpace(in.Category)
		p.Price = in.Price
		p.Quantity = in.Quantity
		if in.Visible != nil {
			p.VisibleToCustomers = *in.Visible
		}
	})
}

func (inv *Inventory) SetVisibility(ctx context.Context, caller auth.Principal, id string, visible bool) (models.Product, error) {
	if err := auth.RequireAdmin(caller); err != nil {
		return models.Product{}, err
	}
	return inv.mutate(ctx, "set visibility", id, func(p *models.Product) {
		p.VisibleToCustomers = visible
	})
}

// Delete removes a product from the catalog. Orders keep their snapshot.
func (inv *Inventory) Delete(ctx context.Context, caller auth.Principal, id string, confirm bool) error {
	if err := auth.RequireAdmin(caller); err != nil {
		return err
	}
	if !confirm {
		return apperr.Invalid("deleting product %s requires confirmation", id)
	}

	inv.mu.Lock()
	defer inv.mu.Unlock()

	if _, ok := inv.products[id]; !ok {
		return apperr.NotFound("product", id)
	}
	if err := inv.commit(ctx, "delete product", store.Delete(store.Products, id)); err != nil {
		return err
	}
	delete(inv.products, id)
	inv.log.Info("product deleted", "product_id", id, "admin_id", caller.UserID)
	return nil
}

// AppendReview adds a review to a product. Eligibility is the caller's concern.
func (inv *Inventory) AppendReview(ctx context.Context, id string, review models.Review) error {
	_, err := inv.mutate(ctx, "append review", id, func(p *models.Product) {
		p.Reviews = append(p.Reviews, review)
	})
	return err
}

func (inv *Inventory) mutate(ctx context.Context, op, id string, apply func(p *models.Product)) (models.Product, error) {
	inv.mu.Lock()
	defer inv.mu.Unlock()

	current, ok := inv.products[id]
	if !ok {
		return models.Product{}, apperr.NotFound("product", id)
	}

	next := current.Clone()
	apply(&next)
	if err := inv.persist(ctx, op, next); err != nil {
		return models.Product{}, err
	}

	inv.products[id] = next
	return next.Clone(), nil
}

// ReserveAndDecrement checks every requested line against the quantity on
// hand and decrements all of them, or none. The first failing product in id
// order is reported.
func (inv *Inventory) ReserveAndDecrement(ctx context.Context, items map[string]int) error {
	ids := make([]string, 0, len(items))
	for id := range items {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	reqs := make([]Request, 0, len(ids))
	for _, id := range ids {
		reqs = append(reqs, Request{ProductID: id, Quantity: items[id]})
	}

	return inv.Reserve(ctx, reqs, func(ctx context.Context, updated []models.Product) error {
		writes, err := ProductWrites(updated)
		if err != nil {
			return err
		}
		return apperr.Persistence("decrement stock", inv.store.Commit(ctx, writes...))
	})
}

// Reserve is the single check-and-decrement critical section. commit runs
// while the catalog lock is held; the decrement is applied in memory only
// after it succeeds.
func (inv *Inventory) Reserve(ctx context.Context, reqs []Request, commit CommitFunc) error {
	if len(reqs) == 0 {
		return apperr.Invalid("nothing to reserve")
	}

	wanted := make(map[string]int, len(reqs))
	order := make([]string, 0, len(reqs))
	for _, r := range reqs {
		if r.Quantity <= 0 {
			return apperr.Invalid("quantity for product %s must be positive", r.ProductID)
		}
		if _, seen := wanted[r.ProductID]; !seen {
			order = append(order, r.ProductID)
		}
		wanted[r.ProductID] += r.Quantity
	}

	inv.mu.Lock()
	defer inv.mu.Unlock()

	updated := make([]models.Product, 0, len(order))
	for _, id := range order {
		p, ok := inv.products[id]
		if !ok {
			return apperr.NotFound("product", id)
		}
		if wanted[id] > p.Quantity {
			return &apperr.InsufficientStockError{ProductID: id, Requested: wanted[id], OnHand: p.Quantity}
		}
		next := p.Clone()
		next.Quantity -= wanted[id]
		updated = append(updated, next)
	}

	if commit != nil {
		if err := commit(ctx, updated); err != nil {
			return err
		}
	}

	for _, p := range updated {
		inv.products[p.ID] = p
	}
	return nil
}

// ProductWrites encodes products as store writes.
func ProductWrites(products []models.Product) ([]store.Write, error) {
	writes := make([]store.Write, 0, len(products))
	for _, p := range products {
		w, err := store.Put(store.Products, p.ID, p)
		if err != nil {
			return nil, err
		}
		writes = append(writes, w)
	}
	return writes, nil
}

func (inv *Inventory) persist(ctx context.Context, op string, p models.Product) error {
	w, err := store.Put(store.Products, p.ID, p)
	if err != nil {
		return fmt.Errorf("failed to %s: %w", op, err)
	}
	return inv.commit(ctx, op, w)
}

func (inv *Inventory) commit(ctx context.Context, op string, writes ...store.Write) error {
	if err := inv.store.Commit(ctx, writes...); err != nil {
		inv.log.Error("store commit failed", "op", op, "error", err)
		return apperr.Persistence(op, err)
	}
	return nil
}
