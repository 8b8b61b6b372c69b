// Package app wires the services together over one store.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/matthieukhl/shopcore/internal/cart"
	"github.com/matthieukhl/shopcore/internal/config"
	"github.com/matthieukhl/shopcore/internal/ingest"
	"github.com/matthieukhl/shopcore/internal/inventory"
	"github.com/matthieukhl/shopcore/internal/logging"
	"github.com/matthieukhl/shopcore/internal/orders"
	"github.com/matthieukhl/shopcore/internal/report"
	"github.com/matthieukhl/shopcore/internal/reviews"
	"github.com/matthieukhl/shopcore/internal/store"
	"github.com/matthieukhl/shopcore/internal/users"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/multierr"
	"golang.org/x/crypto/bcrypt"
)

type App struct {
	Store     store.Store
	Log       *slog.Logger
	Inventory *inventory.Inventory
	Users     *users.Directory
	Orders    *orders.Service
	Carts     *cart.Service
	Reviews   *reviews.Ledger
	Reports   *report.Service
	Catalog   *ingest.CatalogIngester
}

// Options tune the services built by New.
type Options struct {
	HashCost int
}

// New builds the services over st without loading any state.
func New(st store.Store, logger *slog.Logger, opts Options) *App {
	logger = logging.OrDefault(logger)
	if opts.HashCost == 0 {
		opts.HashCost = bcrypt.DefaultCost
	}

	inv := inventory.New(st, logger)
	dir := users.NewDirectory(st, logger, users.WithHashCost(opts.HashCost))
	ord := orders.NewService(inv, dir, st, logger)

	return &App{
		Store:     st,
		Log:       logger,
		Inventory: inv,
		Users:     dir,
		Orders:    ord,
		Carts:     ord.Carts(),
		Reviews:   reviews.NewLedger(inv, ord, dir, logger),
		Reports:   report.NewService(inv, ord),
		Catalog:   ingest.NewCatalogIngester(inv),
	}
}

// Open connects the configured store and loads every collection.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	st, err := store.Open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.Store.Driver, err)
	}

	a := New(st, logger, Options{HashCost: cfg.Auth.HashCost})
	if err := a.Load(ctx); err != nil {
		return nil, multierr.Append(err, st.Close())
	}
	return a, nil
}

// Load reads the three collections concurrently. The first failure cancels
// the others.
func (a *App) Load(ctx context.Context) error {
	p := pool.New().WithContext(ctx).WithCancelOnError().WithFirstError()
	p.Go(a.Inventory.Load)
	p.Go(a.Users.Load)
	p.Go(a.Orders.Load)
	if err := p.Wait(); err != nil {
		return fmt.Errorf("failed to load state: %w", err)
	}

	a.Log.Info("state loaded",
		"products", len(a.Inventory.List()),
		"orders", len(a.Orders.Snapshot()),
	)
	return nil
}

// Reset empties every collection and reloads the now empty state.
func (a *App) Reset(ctx context.Context) error {
	for _, collection := range []string{store.Products, store.Users, store.Orders} {
		if err := a.Store.Save(ctx, collection, map[string][]byte{}); err != nil {
			return fmt.Errorf("failed to reset %s: %w", collection, err)
		}
	}
	return a.Load(ctx)
}

func (a *App) HealthCheck(ctx context.Context) error {
	return store.HealthCheck(ctx, a.Store)
}

func (a *App) Close() error {
	return a.Store.Close()
}
