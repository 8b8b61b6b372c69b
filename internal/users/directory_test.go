package users

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/matthieukhl/shopcore/internal/apperr"
	"github.com/matthieukhl/shopcore/internal/models"
	"github.com/matthieukhl/shopcore/internal/store"
	"github.com/matthieukhl/shopcore/internal/store/storetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestDirectory(st store.Store) *Directory {
	return NewDirectory(st, slog.New(slog.NewTextHandler(io.Discard, nil)), WithHashCost(bcrypt.MinCost))
}

func TestRegisterAndAuthenticate(t *testing.T) {
	st := store.NewMemory()
	d := newTestDirectory(st)
	ctx := context.Background()

	u, err := d.Register(ctx, Registration{ID: " 1234 ", Name: "Ann", Role: models.RoleCustomer, Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, "1234", u.ID)
	assert.NotEqual(t, "secret", u.PasswordHash)
	assert.True(t, u.IsFirstOrder())

	got, err := d.Authenticate("1234", "secret")
	require.NoError(t, err)
	assert.Equal(t, "Ann", got.Name)

	_, err = d.Authenticate("1234", "wrong")
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
	_, err = d.Authenticate("9999", "secret")
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	raw, err := st.Get(ctx, store.Users, "1234")
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "secret")
}

func TestRegister_Validation(t *testing.T) {
	d := newTestDirectory(store.NewMemory())
	ctx := context.Background()

	tests := []struct {
		name string
		reg  Registration
	}{
		{"too short id", Registration{ID: "999", Name: "a", Role: models.RoleCustomer, Password: "p"}},
		{"too long id", Registration{ID: "10000", Name: "a", Role: models.RoleCustomer, Password: "p"}},
		{"non numeric id", Registration{ID: "12a4", Name: "a", Role: models.RoleCustomer, Password: "p"}},
		{"signed id", Registration{ID: "+123", Name: "a", Role: models.RoleCustomer, Password: "p"}},
		{"missing name", Registration{ID: "1234", Role: models.RoleCustomer, Password: "p"}},
		{"bad role", Registration{ID: "1234", Name: "a", Role: "guest", Password: "p"}},
		{"missing password", Registration{ID: "1234", Name: "a", Role: models.RoleAdmin}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := d.Register(ctx, tc.reg)
			assert.ErrorIs(t, err, apperr.ErrInvalidInput)
		})
	}
}

func TestRegister_Duplicate(t *testing.T) {
	d := newTestDirectory(store.NewMemory())
	ctx := context.Background()
	reg := Registration{ID: "1000", Name: "Root", Role: models.RoleAdmin, Password: "pw"}

	_, err := d.Register(ctx, reg)
	require.NoError(t, err)
	_, err = d.Register(ctx, reg)
	assert.ErrorIs(t, err, apperr.ErrAlreadyExists)
}

func TestRegister_PersistenceFailure(t *testing.T) {
	st := storetest.NewFaulty()
	d := newTestDirectory(st)
	st.FailCommits(true)

	_, err := d.Register(context.Background(), Registration{ID: "1000", Name: "Root", Role: models.RoleAdmin, Password: "pw"})
	assert.ErrorIs(t, err, apperr.ErrPersistence)
	_, err = d.Get("1000")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestAppendOrder(t *testing.T) {
	st := store.NewMemory()
	d := newTestDirectory(st)
	ctx := context.Background()
	_, err := d.Register(ctx, Registration{ID: "2000", Name: "Bob", Role: models.RoleCustomer, Password: "pw"})
	require.NoError(t, err)

	failed := errors.New("commit failed")
	err = d.AppendOrder(ctx, "2000", "100001", func(context.Context, models.User) error { return failed })
	assert.ErrorIs(t, err, failed)
	first, err := d.IsFirstOrder("2000")
	require.NoError(t, err)
	assert.True(t, first)

	var seen models.User
	err = d.AppendOrder(ctx, "2000", "100001", func(_ context.Context, u models.User) error {
		seen = u
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"100001"}, seen.OrderHistory)

	require.NoError(t, d.AppendOrder(ctx, "2000", "100002", func(context.Context, models.User) error { return nil }))
	u, err := d.Get("2000")
	require.NoError(t, err)
	assert.Equal(t, []string{"100001", "100002"}, u.OrderHistory)

	err = d.AppendOrder(ctx, "4040", "1", func(context.Context, models.User) error { return nil })
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestLoadAndName(t *testing.T) {
	st := store.NewMemory()
	ctx := context.Background()
	_, err := newTestDirectory(st).Register(ctx, Registration{ID: "3000", Name: "Cy", Role: models.RoleCustomer, Password: "pw"})
	require.NoError(t, err)

	d := newTestDirectory(st)
	require.NoError(t, d.Load(ctx))
	assert.Equal(t, "Cy", d.Name("3000"))
	assert.Equal(t, "4000", d.Name("4000"))

	_, err = d.Authenticate("3000", "pw")
	assert.NoError(t, err)
}
