package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/matthieukhl/shopcore/internal/apperr"
	"github.com/matthieukhl/shopcore/internal/cart"
	"github.com/matthieukhl/shopcore/internal/models"
	"github.com/matthieukhl/shopcore/internal/report"
	"github.com/matthieukhl/shopcore/internal/users"
	"github.com/shopspring/decimal"
)

type userView struct {
	ID     string      `json:"id"`
	Name   string      `json:"name"`
	Role   models.Role `json:"role"`
	Orders int         `json:"orders"`
}

func newUserView(u models.User) userView {
	return userView{ID: u.ID, Name: u.Name, Role: u.Role, Orders: len(u.OrderHistory)}
}

// register creates a customer account. Administrators are created through
// the admin API.
func (s *Server) register(c *gin.Context) {
	var req users.Registration
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	req.Role = models.RoleCustomer

	u, err := s.app.Users.Register(c.Request.Context(), req)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newUserView(u))
}

func parseQuery(c *gin.Context) (report.Query, error) {
	q := report.Query{
		Search:      c.Query("q"),
		SortByPrice: strings.EqualFold(c.Query("sort"), "price"),
	}
	for param, dst := range map[string]**decimal.Decimal{"min_price": &q.MinPrice, "max_price": &q.MaxPrice} {
		raw := c.Query(param)
		if raw == "" {
			continue
		}
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return report.Query{}, apperr.Invalid("%s must be a decimal number", param)
		}
		*dst = &d
	}
	return q, nil
}

func (s *Server) listProducts(c *gin.Context) {
	q, err := parseQuery(c)
	if err != nil {
		s.writeError(c, err)
		return
	}
	products, err := s.app.Reports.Catalog(principal(c), q)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products, "count": len(products)})
}

func (s *Server) getProduct(c *gin.Context) {
	p, err := s.app.Inventory.Get(c.Param("id"))
	if err == nil && !p.VisibleToCustomers && principal(c).Role != models.RoleAdmin {
		err = apperr.NotFound("product", p.ID)
	}
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

type cartRequest struct {
	Cart      cart.Context `json:"cart"`
	ProductID string       `json:"product_id"`
	Quantity  int          `json:"quantity"`
	Code      string       `json:"code"`
	Address   string       `json:"address"`
}

// cartResponse returns the updated cart with its priced view.
func (s *Server) cartResponse(c *gin.Context, status int, next cart.Context) {
	first, err := s.app.Users.IsFirstOrder(principal(c).UserID)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(status, gin.H{"cart": next, "view": s.app.Carts.View(next, first)})
}

func (s *Server) bindCart(c *gin.Context) (cartRequest, bool) {
	var req cartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return req, false
	}
	return req, true
}

func (s *Server) viewCart(c *gin.Context) {
	req, ok := s.bindCart(c)
	if !ok {
		return
	}
	s.cartResponse(c, http.StatusOK, req.Cart)
}

func (s *Server) addCartItem(c *gin.Context) {
	req, ok := s.bindCart(c)
	if !ok {
		return
	}
	next, err := s.app.Carts.AddItem(req.Cart, req.ProductID, req.Quantity)
	if err != nil {
		s.writeError(c, err)
		return
	}
	s.cartResponse(c, http.StatusOK, next)
}

func (s *Server) removeCartItem(c *gin.Context) {
	req, ok := s.bindCart(c)
	if !ok {
		return
	}
	s.cartResponse(c, http.StatusOK, s.app.Carts.RemoveItem(req.Cart, c.Param("id")))
}

func (s *Server) applyCoupon(c *gin.Context) {
	req, ok := s.bindCart(c)
	if !ok {
		return
	}
	first, err := s.app.Users.IsFirstOrder(principal(c).UserID)
	if err != nil {
		s.writeError(c, err)
		return
	}

	next, err := s.app.Carts.ApplyCoupon(req.Cart, req.Code, first)
	if err != nil {
		status := statusFor(err)
		c.JSON(status, gin.H{"error": err.Error(), "cart": next, "view": s.app.Carts.View(next, first)})
		return
	}
	s.cartResponse(c, http.StatusOK, next)
}

func (s *Server) placeOrder(c *gin.Context) {
	req, ok := s.bindCart(c)
	if !ok {
		return
	}
	order, next, err := s.app.Orders.PlaceOrder(c.Request.Context(), principal(c), req.Cart, req.Address)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"order": order, "cart": next})
}

func (s *Server) orderHistory(c *gin.Context) {
	history, err := s.app.Orders.History(principal(c))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": history})
}

func (s *Server) reviewable(c *gin.Context) {
	ids, err := s.app.Reviews.Reviewable(principal(c))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"product_ids": ids})
}

func (s *Server) addReview(c *gin.Context) {
	var req struct {
		Text string `json:"text"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	review, err := s.app.Reviews.AddReview(c.Request.Context(), principal(c), c.Param("id"), req.Text)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, review)
}
