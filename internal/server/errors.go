package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/matthieukhl/shopcore/internal/apperr"
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperr.ErrInsufficientStock), errors.Is(err, apperr.ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, apperr.ErrEmptyCart), errors.Is(err, apperr.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, apperr.ErrCouponRejected):
		return http.StatusUnprocessableEntity
	case errors.Is(err, apperr.ErrNotEligible), errors.Is(err, apperr.ErrUnauthorized):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err. Internal failures are logged and hidden from the
// client.
func (s *Server) writeError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.app.Log.Error("request failed",
			"request_id", c.GetString(requestIDKey),
			"path", c.FullPath(),
			"error", err,
		)
		c.JSON(status, gin.H{"error": "internal error", "request_id": c.GetString(requestIDKey)})
		return
	}

	body := gin.H{"error": err.Error()}
	var stock *apperr.InsufficientStockError
	if errors.As(err, &stock) {
		body["product_id"] = stock.ProductID
		body["on_hand"] = stock.OnHand
	}
	var coupon *apperr.CouponRejectedError
	if errors.As(err, &coupon) {
		body["reason"] = coupon.Reason
	}
	c.JSON(status, body)
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
