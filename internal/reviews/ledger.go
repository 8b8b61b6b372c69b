// Package reviews gates product feedback on delivered orders.
package reviews

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/matthieukhl/shopcore/internal/apperr"
	"github.com/matthieukhl/shopcore/internal/auth"
	"github.com/matthieukhl/shopcore/internal/inventory"
	"github.com/matthieukhl/shopcore/internal/logging"
	"github.com/matthieukhl/shopcore/internal/models"
	"github.com/matthieukhl/shopcore/internal/orders"
	"github.com/matthieukhl/shopcore/internal/users"
)

type Ledger struct {
	inv    *inventory.Inventory
	orders *orders.Service
	users  *users.Directory
	log    *slog.Logger
	now    func() time.Time
}

func NewLedger(inv *inventory.Inventory, ord *orders.Service, dir *users.Directory, logger *slog.Logger) *Ledger {
	return &Ledger{
		inv:    inv,
		orders: ord,
		users:  dir,
		log:    logging.OrDefault(logger).With("component", "reviews"),
		now:    time.Now,
	}
}

// Reviewable returns the ids of products the customer may review, in the
// order they first appear in the customer's delivered orders.
func (l *Ledger) Reviewable(caller auth.Principal) ([]string, error) {
	if err := auth.RequireCustomer(caller); err != nil {
		return nil, err
	}
	history, err := l.orders.ForCustomer(caller.UserID)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	ids := []string{}
	for _, o := range history {
		if o.Status != models.OrderStatusDelivered {
			continue
		}
		for _, item := range o.Items {
			if !seen[item.ProductID] {
				seen[item.ProductID] = true
				ids = append(ids, item.ProductID)
			}
		}
	}
	return ids, nil
}

// Eligible reports whether the customer has a delivered order containing
// productID.
func (l *Ledger) Eligible(customerID, productID string) (bool, error) {
	history, err := l.orders.ForCustomer(customerID)
	if err != nil {
		return false, err
	}
	for _, o := range history {
		if o.Status == models.OrderStatusDelivered && o.Contains(productID) {
			return true, nil
		}
	}
	return false, nil
}

func (l *Ledger) AddReview(ctx context.Context, caller auth.Principal, productID, text string) (models.Review, error) {
	if err := auth.RequireCustomer(caller); err != nil {
		return models.Review{}, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return models.Review{}, apperr.Invalid("review text is required")
	}
	if _, err := l.inv.Get(productID); err != nil {
		return models.Review{}, err
	}

	ok, err := l.Eligible(caller.UserID, productID)
	if err != nil {
		return models.Review{}, err
	}
	if !ok {
		return models.Review{}, fmt.Errorf("%w: no delivered order contains product %s", apperr.ErrNotEligible, productID)
	}

	review := models.Review{
		User:      l.users.Name(caller.UserID),
		Text:      text,
		CreatedAt: l.now().UTC(),
	}
	if err := l.inv.AppendReview(ctx, productID, review); err != nil {
		return models.Review{}, err
	}

	l.log.Info("review added", "product_id", productID, "customer_id", caller.UserID)
	return review, nil
}
