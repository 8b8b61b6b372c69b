package cart

import (
	"testing"

	"github.com/matthieukhl/shopcore/internal/apperr"
	"github.com/matthieukhl/shopcore/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCatalog map[string]models.Product

func (f fakeCatalog) Get(id string) (models.Product, error) {
	p, ok := f[id]
	if !ok {
		return models.Product{}, apperr.NotFound("product", id)
	}
	return p, nil
}

func testCatalog() fakeCatalog {
	return fakeCatalog{
		"10001": {ID: "10001", Name: "Mug", Price: decimal.RequireFromString("25.00"), Quantity: 5, VisibleToCustomers: true},
		"10002": {ID: "10002", Name: "Tee", Price: decimal.RequireFromString("4.99"), Quantity: 1, VisibleToCustomers: true},
		"10003": {ID: "10003", Name: "Secret", Price: decimal.RequireFromString("1.00"), Quantity: 9},
	}
}

func TestAddItem_Accumulates(t *testing.T) {
	svc := NewService(testCatalog())

	c, err := svc.AddItem(Context{}, "10001", 2)
	require.NoError(t, err)
	c, err = svc.AddItem(c, "10001", 3)
	require.NoError(t, err)
	c, err = svc.AddItem(c, "10002", 1)
	require.NoError(t, err)

	assert.Equal(t, []Line{{"10001", 5}, {"10002", 1}}, c.Lines)
	assert.Equal(t, 5, c.Quantity("10001"))
}

func TestAddItem_Rejections(t *testing.T) {
	svc := NewService(testCatalog())
	start := Context{Lines: []Line{{ProductID: "10001", Quantity: 1}}}

	_, err := svc.AddItem(start, "10001", 6)
	var ise *apperr.InsufficientStockError
	require.ErrorAs(t, err, &ise)
	assert.Equal(t, "10001", ise.ProductID)
	assert.Equal(t, 5, ise.OnHand)

	_, err = svc.AddItem(start, "99999", 1)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = svc.AddItem(start, "10003", 1)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = svc.AddItem(start, "10001", 0)
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)

	assert.Equal(t, []Line{{ProductID: "10001", Quantity: 1}}, start.Lines)
}

func TestAddItem_DoesNotMutateInput(t *testing.T) {
	svc := NewService(testCatalog())
	start := Context{Lines: []Line{{ProductID: "10001", Quantity: 1}}}

	next, err := svc.AddItem(start, "10001", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, start.Quantity("10001"))
	assert.Equal(t, 2, next.Quantity("10001"))
}

func TestRemoveItem(t *testing.T) {
	svc := NewService(testCatalog())
	c := Context{
		Lines:    []Line{{"10001", 1}, {"10002", 1}},
		Coupon:   "WELCOME10",
		Discount: decimal.NewFromInt(10),
	}

	c = svc.RemoveItem(c, "10001")
	assert.Equal(t, []Line{{"10002", 1}}, c.Lines)
	assert.True(t, c.Discount.Equal(decimal.NewFromInt(10)))

	same := svc.RemoveItem(c, "55555")
	assert.Equal(t, c.Lines, same.Lines)

	c = svc.RemoveItem(c, "10002")
	assert.True(t, c.IsEmpty())
	assert.True(t, c.Discount.IsZero())
	assert.Empty(t, c.Coupon)
}

func TestMaterialize_DropsMissingProducts(t *testing.T) {
	catalog := testCatalog()
	svc := NewService(catalog)
	c := Context{Lines: []Line{{"10002", 1}, {"10001", 2}}}

	delete(catalog, "10002")
	items := svc.Materialize(c)
	require.Len(t, items, 1)
	assert.Equal(t, "10001", items[0].Product.ID)
	assert.Equal(t, "50", items[0].LineTotal().String())
}

func TestApplyCoupon_ReplacesDiscount(t *testing.T) {
	svc := NewService(testCatalog())
	c := Context{Lines: []Line{{"10001", 4}}}

	c, err := svc.ApplyCoupon(c, "welcome10", true)
	require.NoError(t, err)
	assert.Equal(t, "10", c.Discount.String())

	c, err = svc.ApplyCoupon(c, "FIRST25", true)
	require.NoError(t, err)
	assert.Equal(t, "25", c.Discount.String())

	c, err = svc.ApplyCoupon(c, "WELCOME10", true)
	require.NoError(t, err)
	assert.Equal(t, "10", c.Discount.String())
	assert.Equal(t, "WELCOME10", c.Coupon)
}

func TestApplyCoupon_RejectionResetsDiscount(t *testing.T) {
	svc := NewService(testCatalog())
	c := Context{Lines: []Line{{"10001", 4}}, Coupon: "WELCOME10", Discount: decimal.NewFromInt(10)}

	next, err := svc.ApplyCoupon(c, "WELCOME10", false)
	var rejected *apperr.CouponRejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, apperr.ReasonNotFirstOrder, rejected.Reason)
	assert.True(t, next.Discount.IsZero())
	assert.Empty(t, next.Coupon)
	assert.Equal(t, "10", c.Discount.String())

	next, err = svc.ApplyCoupon(c, "BOGUS", true)
	assert.ErrorIs(t, err, apperr.ErrCouponRejected)
	assert.True(t, next.Discount.IsZero())
}

func TestView(t *testing.T) {
	svc := NewService(testCatalog())
	c := Context{Lines: []Line{{"10001", 2}}}

	v := svc.View(c, true)
	require.Len(t, v.Items, 1)
	assert.True(t, v.FirstOrder)
	assert.Equal(t, "50.00", v.Subtotal.StringFixed(2))
	assert.Equal(t, "3.00", v.Tax.StringFixed(2))
	assert.Equal(t, "53.00", v.Total.StringFixed(2))
}

func TestView_ReevaluatesCoupon(t *testing.T) {
	svc := NewService(testCatalog())
	c, err := svc.ApplyCoupon(Context{Lines: []Line{{"10001", 4}}}, "FIRST25", true)
	require.NoError(t, err)

	c, err = svc.AddItem(c, "10001", 1)
	require.NoError(t, err)

	v := svc.View(c, true)
	assert.Equal(t, "125.00", v.Subtotal.StringFixed(2))
	assert.Equal(t, "31.25", v.Discount.StringFixed(2))

	v = svc.View(c, false)
	assert.True(t, v.Discount.IsZero())
}
