package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestNormalizeStatus(t *testing.T) {
	tests := []struct {
		in    string
		want  string
		known bool
	}{
		{"delivered", OrderStatusDelivered, true},
		{"  Delivered ", OrderStatusDelivered, true},
		{"SHIPPED", OrderStatusShipped, true},
		{"lost", "lost", false},
		{"", "", false},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, ok := NormalizeStatus(tc.in)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.known, ok)
		})
	}
}

func TestCloneDoesNotShareSlices(t *testing.T) {
	p := Product{ID: "10001", Reviews: []Review{{User: "Ann", Text: "ok"}}}
	pc := p.Clone()
	pc.Reviews[0].Text = "changed"
	assert.Equal(t, "ok", p.Reviews[0].Text)

	u := User{ID: "1001", OrderHistory: []string{"100001"}}
	uc := u.Clone()
	uc.OrderHistory = append(uc.OrderHistory, "100002")
	uc.OrderHistory[0] = "x"
	assert.Equal(t, []string{"100001"}, u.OrderHistory)

	o := Order{Items: []OrderItem{{ProductID: "10001", Quantity: 2, UnitPrice: decimal.NewFromInt(5)}}}
	oc := o.Clone()
	oc.Items[0].Quantity = 9
	assert.Equal(t, 2, o.Items[0].Quantity)
}

func TestOrderQuantitiesAndContains(t *testing.T) {
	o := Order{Items: []OrderItem{
		{ProductID: "a", Quantity: 2},
		{ProductID: "b", Quantity: 1},
		{ProductID: "a", Quantity: 3},
	}}
	assert.Equal(t, map[string]int{"a": 5, "b": 1}, o.Quantities())
	assert.True(t, o.Contains("b"))
	assert.False(t, o.Contains("c"))
}

func TestProductHelpers(t *testing.T) {
	p := Product{Name: "Wireless Mouse", Quantity: 0}
	assert.True(t, p.OutOfStock())
	assert.True(t, p.NameContains("mouse"))
	assert.False(t, p.NameContains("keyboard"))
	assert.True(t, RoleAdmin.Valid())
	assert.False(t, Role("guest").Valid())
}
