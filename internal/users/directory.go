package users

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/matthieukhl/shopcore/internal/apperr"
	"github.com/matthieukhl/shopcore/internal/logging"
	"github.com/matthieukhl/shopcore/internal/models"
	"github.com/matthieukhl/shopcore/internal/store"
	"golang.org/x/crypto/bcrypt"
)

const (
	MinUserID = 1000
	MaxUserID = 9999
)

// Directory holds user accounts. Order history is appended only through
// AppendOrder, which the order service drives.
type Directory struct {
	mu    sync.RWMutex
	users map[string]models.User

	store    store.Store
	log      *slog.Logger
	hashCost int
	now      func() time.Time
}

type Option func(*Directory)

// WithHashCost sets the bcrypt cost used for new credentials.
func WithHashCost(cost int) Option {
	return func(d *Directory) { d.hashCost = cost }
}

func WithClock(now func() time.Time) Option {
	return func(d *Directory) { d.now = now }
}

func NewDirectory(st store.Store, logger *slog.Logger, opts ...Option) *Directory {
	d := &Directory{
		users:    make(map[string]models.User),
		store:    st,
		log:      logging.OrDefault(logger).With("component", "users"),
		hashCost: bcrypt.DefaultCost,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Directory) Load(ctx context.Context) error {
	users, err := store.LoadAll[models.User](ctx, d.store, store.Users)
	if err != nil {
		return apperr.Persistence("load users", err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.users = make(map[string]models.User, len(users))
	for id, u := range users {
		u.ID = id
		if u.OrderHistory == nil {
			u.OrderHistory = []string{}
		}
		d.users[id] = u
	}
	d.log.Info("users loaded", "users", len(users))
	return nil
}

// Registration is the input for a new account.
type Registration struct {
	ID       string      `json:"user_id"`
	Name     string      `json:"name"`
	Role     models.Role `json:"role"`
	Password string      `json:"password"`
}

// ValidateID checks the 4-digit numeric user id format.
func ValidateID(id string) error {
	n, err := strconv.Atoi(id)
	if err != nil || n < MinUserID || n > MaxUserID || len(id) != 4 {
		return apperr.Invalid("user id must be a 4-digit number")
	}
	return nil
}

func (d *Directory) Register(ctx context.Context, reg Registration) (models.User, error) {
	id := strings.TrimSpace(reg.ID)
	if err := ValidateID(id); err != nil {
		return models.User{}, err
	}
	if strings.TrimSpace(reg.Name) == "" {
		return models.User{}, apperr.Invalid("name is required")
	}
	if !reg.Role.Valid() {
		return models.User{}, apperr.Invalid("role must be %q or %q", models.RoleAdmin, models.RoleCustomer)
	}
	if reg.Password == "" {
		return models.User{}, apperr.Invalid("password is required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), d.hashCost)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.users[id]; exists {
		return models.User{}, fmt.Errorf("user %s: %w", id, apperr.ErrAlreadyExists)
	}

	u := models.User{
		ID:           id,
		Name:         strings.TrimSpace(reg.Name),
		Role:         reg.Role,
		PasswordHash: string(hash),
		OrderHistory: []string{},
		CreatedAt:    d.now().UTC(),
	}
	w, err := store.Put(store.Users, id, u)
	if err != nil {
		return models.User{}, err
	}
	if err := d.store.Commit(ctx, w); err != nil {
		d.log.Error("store commit failed", "op", "register", "error", err)
		return models.User{}, apperr.Persistence("register user", err)
	}

	d.users[id] = u
	d.log.Info("user registered", "user_id", id, "role", u.Role)
	return u.Clone(), nil
}

// Authenticate checks a credential. Unknown ids and wrong passwords are
// indistinguishable to the caller.
func (d *Directory) Authenticate(id, password string) (models.User, error) {
	d.mu.RLock()
	u, ok := d.users[strings.TrimSpace(id)]
	d.mu.RUnlock()

	if !ok {
		return models.User{}, fmt.Errorf("%w: invalid credentials", apperr.ErrUnauthorized)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return models.User{}, fmt.Errorf("%w: invalid credentials", apperr.ErrUnauthorized)
	}
	return u.Clone(), nil
}

func (d *Directory) Get(id string) (models.User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	u, ok := d.users[id]
	if !ok {
		return models.User{}, apperr.NotFound("user", id)
	}
	return u.Clone(), nil
}

// Name resolves a display name, falling back to the id for unknown users.
func (d *Directory) Name(id string) string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if u, ok := d.users[id]; ok {
		return u.Name
	}
	return id
}

// IsFirstOrder reports whether the user's order history is empty.
func (d *Directory) IsFirstOrder(id string) (bool, error) {
	u, err := d.Get(id)
	if err != nil {
		return false, err
	}
	return u.IsFirstOrder(), nil
}

// AppendOrder appends orderID to the user's history. commit receives the
// updated record and must persist it; the in-memory history changes only
// when commit succeeds.
func (d *Directory) AppendOrder(ctx context.Context, userID, orderID string, commit func(ctx context.Context, updated models.User) error) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	u, ok := d.users[userID]
	if !ok {
		return apperr.NotFound("user", userID)
	}

	next := u.Clone()
	next.OrderHistory = append(next.OrderHistory, orderID)
	if err := commit(ctx, next); err != nil {
		return err
	}

	d.users[userID] = next
	return nil
}
