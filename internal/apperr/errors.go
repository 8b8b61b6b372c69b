package apperr

import (
	"errors"
	"fmt"
)

// Business outcomes. Callers are expected to surface these and allow a retry.
var (
	ErrNotFound          = errors.New("not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrCouponRejected    = errors.New("coupon rejected")
	ErrNotEligible       = errors.New("not eligible")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrInvalidInput      = errors.New("invalid input")
	ErrAlreadyExists     = errors.New("already exists")
)

// ErrPersistence marks a collaborator fault. It is not part of the business
// taxonomy: the outcome of the write is unknown.
var ErrPersistence = errors.New("persistence failure")

// InsufficientStockError names the product whose requested quantity exceeded
// the quantity on hand.
type InsufficientStockError struct {
	ProductID string
	Requested int
	OnHand    int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: requested %d, on hand %d", e.ProductID, e.Requested, e.OnHand)
}

func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// Coupon rejection reasons.
const (
	ReasonEmptyCode     = "empty code"
	ReasonNotFirstOrder = "coupons are only valid for the first purchase"
	ReasonUnknownCode   = "unknown coupon code"
)

type CouponRejectedError struct {
	Code   string
	Reason string
}

func (e *CouponRejectedError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("coupon rejected: %s", e.Reason)
	}
	return fmt.Sprintf("coupon %s rejected: %s", e.Code, e.Reason)
}

func (e *CouponRejectedError) Is(target error) bool {
	return target == ErrCouponRejected
}

// PersistenceError wraps a failure of the record store.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func (e *PersistenceError) Is(target error) bool {
	return target == ErrPersistence
}

// Persistence wraps err as a PersistenceError, or returns nil when err is nil.
func Persistence(op string, err error) error {
	if err == nil {
		return nil
	}
	return &PersistenceError{Op: op, Err: err}
}

// NotFound returns an error matching ErrNotFound that names the missing entity.
func NotFound(kind, id string) error {
	return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
}

// Invalid returns an error matching ErrInvalidInput.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// IsBusiness reports whether err belongs to the recoverable, user-facing taxonomy.
func IsBusiness(err error) bool {
	for _, target := range []error{
		ErrNotFound, ErrInsufficientStock, ErrEmptyCart, ErrCouponRejected,
		ErrNotEligible, ErrUnauthorized, ErrInvalidInput, ErrAlreadyExists,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
