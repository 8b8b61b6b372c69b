package report

import (
	"context"
	"testing"

	"github.com/matthieukhl/shopcore/internal/apperr"
	"github.com/matthieukhl/shopcore/internal/auth"
	"github.com/matthieukhl/shopcore/internal/cart"
	"github.com/matthieukhl/shopcore/internal/inventory"
	"github.com/matthieukhl/shopcore/internal/models"
	"github.com/matthieukhl/shopcore/internal/orders"
	"github.com/matthieukhl/shopcore/internal/store"
	"github.com/matthieukhl/shopcore/internal/users"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fixture struct {
	inv    *inventory.Inventory
	orders *orders.Service
	svc    *Service
	ann    auth.Principal
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := store.NewMemory()
	inv := inventory.New(st, nil)
	dir := users.NewDirectory(st, nil, users.WithHashCost(bcrypt.MinCost))
	ord := orders.NewService(inv, dir, st, nil)

	_, err := dir.Register(context.Background(), users.Registration{ID: "2001", Name: "Ann", Role: models.RoleCustomer, Password: "pw"})
	require.NoError(t, err)

	return &fixture{
		inv:    inv,
		orders: ord,
		svc:    NewService(inv, ord),
		ann:    auth.Principal{UserID: "2001", Role: models.RoleCustomer},
	}
}

func (f *fixture) product(t *testing.T, name, price string, qty int, visible bool) models.Product {
	t.Helper()
	p, err := f.inv.Create(context.Background(), auth.System(), inventory.ProductInput{
		Name: name, Price: decimal.RequireFromString(price), Quantity: qty, Visible: &visible,
	})
	require.NoError(t, err)
	return p
}

func (f *fixture) buy(t *testing.T, productID string, qty int) models.Order {
	t.Helper()
	c, err := f.orders.Carts().AddItem(cart.Context{}, productID, qty)
	require.NoError(t, err)
	o, _, err := f.orders.PlaceOrder(context.Background(), f.ann, c, "addr")
	require.NoError(t, err)
	return o
}

func TestDashboard(t *testing.T) {
	f := newFixture(t)
	mug := f.product(t, "Mug", "25.00", 5, true)
	f.product(t, "Sold out", "3.00", 0, true)

	empty, err := f.svc.Dashboard(auth.System())
	require.NoError(t, err)
	assert.Nil(t, empty.TopProduct)
	assert.True(t, empty.Revenue.IsZero())

	f.buy(t, mug.ID, 2)
	f.buy(t, mug.ID, 3)

	d, err := f.svc.Dashboard(auth.System())
	require.NoError(t, err)
	assert.Len(t, d.Products, 2)
	assert.Len(t, d.OutOfStock, 2)
	assert.Equal(t, 2, d.OrderCount)
	assert.Equal(t, "132.50", d.Revenue.StringFixed(2))
	require.NotNil(t, d.TopProduct)
	assert.Equal(t, mug.ID, d.TopProduct.ProductID)
	assert.Equal(t, 5, d.TopProduct.Quantity)
	require.NotNil(t, d.TopProduct.Product)
	assert.Equal(t, "Mug", d.TopProduct.Product.Name)

	_, err = f.svc.Dashboard(f.ann)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestTopProduct_DeletedProduct(t *testing.T) {
	f := newFixture(t)
	lamp := f.product(t, "Lamp", "10.00", 5, true)
	f.buy(t, lamp.ID, 1)
	require.NoError(t, f.inv.Delete(context.Background(), auth.System(), lamp.ID, true))

	top, err := f.svc.TopProduct(auth.System())
	require.NoError(t, err)
	require.NotNil(t, top)
	assert.Equal(t, lamp.ID, top.ProductID)
	assert.Nil(t, top.Product)
}

func TestRevenueReport(t *testing.T) {
	f := newFixture(t)
	mug := f.product(t, "Mug", "25.00", 5, true)
	f.buy(t, mug.ID, 2)

	r, err := f.svc.RevenueReport(auth.System())
	require.NoError(t, err)
	require.Len(t, r.Orders, 1)
	assert.Equal(t, "Ann", r.Orders[0].CustomerName)
	assert.Equal(t, "53.00", r.Revenue.StringFixed(2))

	_, err = f.svc.OutOfStock(f.ann)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestCatalog(t *testing.T) {
	f := newFixture(t)
	f.product(t, "Desk Lamp", "59.99", 5, true)
	f.product(t, "Lamp Shade", "12.50", 5, true)
	f.product(t, "Hidden Lamp", "1.00", 5, false)

	customer, err := f.svc.Catalog(f.ann, Query{Search: "lamp", SortByPrice: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"Lamp Shade", "Desk Lamp"}, []string{customer[0].Name, customer[1].Name})

	admin, err := f.svc.Catalog(auth.System(), Query{Search: "lamp"})
	require.NoError(t, err)
	assert.Len(t, admin, 3)

	lo := decimal.NewFromInt(10)
	hi := decimal.NewFromInt(20)
	filtered, err := f.svc.Catalog(f.ann, Query{MinPrice: &lo, MaxPrice: &hi})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "Lamp Shade", filtered[0].Name)

	_, err = f.svc.Catalog(f.ann, Query{MinPrice: &hi, MaxPrice: &lo})
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)

	_, err = f.svc.Catalog(auth.Principal{}, Query{})
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}
