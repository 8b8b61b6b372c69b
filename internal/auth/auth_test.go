package auth

import (
	"testing"

	"github.com/matthieukhl/shopcore/internal/apperr"
	"github.com/matthieukhl/shopcore/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestRequire(t *testing.T) {
	admin := Principal{UserID: "1000", Role: models.RoleAdmin}
	customer := Principal{UserID: "2000", Role: models.RoleCustomer}

	assert.NoError(t, RequireAdmin(admin))
	assert.NoError(t, RequireCustomer(customer))
	assert.ErrorIs(t, RequireAdmin(customer), apperr.ErrUnauthorized)
	assert.ErrorIs(t, RequireCustomer(admin), apperr.ErrUnauthorized)
	assert.ErrorIs(t, RequireCustomer(Principal{}), apperr.ErrUnauthorized)
	assert.NoError(t, RequireAdmin(System()))
}
