package report

import (
	"github.com/matthieukhl/shopcore/internal/apperr"
	"github.com/matthieukhl/shopcore/internal/auth"
	"github.com/matthieukhl/shopcore/internal/inventory"
	"github.com/matthieukhl/shopcore/internal/models"
	"github.com/matthieukhl/shopcore/internal/orders"
	"github.com/shopspring/decimal"
)

type Service struct {
	inv    *inventory.Inventory
	orders *orders.Service
}

func NewService(inv *inventory.Inventory, ord *orders.Service) *Service {
	return &Service{inv: inv, orders: ord}
}

// TopProductDetail is the top seller with its catalog record, when the
// product still exists.
type TopProductDetail struct {
	TopSeller
	Product *models.Product `json:"product,omitempty"`
}

type Dashboard struct {
	Products   []models.Product  `json:"products"`
	OutOfStock []models.Product  `json:"out_of_stock"`
	OrderCount int               `json:"order_count"`
	Revenue    decimal.Decimal   `json:"revenue"`
	TopProduct *TopProductDetail `json:"top_product,omitempty"`
}

type RevenueReport struct {
	Orders  []orders.Listing `json:"orders"`
	Revenue decimal.Decimal  `json:"revenue"`
}

// Query narrows a catalog listing.
type Query struct {
	Search      string
	MinPrice    *decimal.Decimal
	MaxPrice    *decimal.Decimal
	SortByPrice bool
}

func (q Query) validate() error {
	if q.MinPrice != nil && q.MaxPrice != nil && q.MinPrice.GreaterThan(*q.MaxPrice) {
		return apperr.Invalid("min price %s exceeds max price %s", q.MinPrice, q.MaxPrice)
	}
	return nil
}

func (s *Service) Dashboard(caller auth.Principal) (Dashboard, error) {
	if err := auth.RequireAdmin(caller); err != nil {
		return Dashboard{}, err
	}

	products := s.inv.List()
	all := s.orders.Snapshot()
	return Dashboard{
		Products:   products,
		OutOfStock: OutOfStock(products),
		OrderCount: len(all),
		Revenue:    Revenue(all),
		TopProduct: s.topDetail(all),
	}, nil
}

func (s *Service) RevenueReport(caller auth.Principal) (RevenueReport, error) {
	if err := auth.RequireAdmin(caller); err != nil {
		return RevenueReport{}, err
	}
	all := s.orders.Snapshot()
	return RevenueReport{
		Orders:  s.orders.WithNames(all),
		Revenue: Revenue(all),
	}, nil
}

// TopProduct returns nil when no order has been placed.
func (s *Service) TopProduct(caller auth.Principal) (*TopProductDetail, error) {
	if err := auth.RequireAdmin(caller); err != nil {
		return nil, err
	}
	return s.topDetail(s.orders.Snapshot()), nil
}

func (s *Service) topDetail(all []models.Order) *TopProductDetail {
	top, ok := TopProduct(all)
	if !ok {
		return nil
	}
	detail := &TopProductDetail{TopSeller: top}
	if p, err := s.inv.Get(top.ProductID); err == nil {
		detail.Product = &p
	}
	return detail
}

func (s *Service) OutOfStock(caller auth.Principal) ([]models.Product, error) {
	if err := auth.RequireAdmin(caller); err != nil {
		return nil, err
	}
	return OutOfStock(s.inv.List()), nil
}

// Catalog lists products for the caller. Administrators see every product;
// customers see visible ones only.
func (s *Service) Catalog(caller auth.Principal, q Query) ([]models.Product, error) {
	var products []models.Product
	switch {
	case auth.RequireAdmin(caller) == nil:
		products = s.inv.List()
	case auth.RequireCustomer(caller) == nil:
		products = s.inv.Visible()
	default:
		return nil, auth.RequireCustomer(caller)
	}
	if err := q.validate(); err != nil {
		return nil, err
	}

	products = SearchByName(products, q.Search)
	if q.MinPrice != nil || q.MaxPrice != nil {
		products = FilterByPrice(products, q.MinPrice, q.MaxPrice)
	}
	if q.SortByPrice {
		products = SortByPrice(products)
	}
	return products, nil
}
