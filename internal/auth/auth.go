package auth

import (
	"fmt"

	"github.com/matthieukhl/shopcore/internal/apperr"
	"github.com/matthieukhl/shopcore/internal/models"
)

// Principal is the authenticated caller of an operation, as supplied by the
// request boundary.
type Principal struct {
	UserID string
	Role   models.Role
}

// System is the principal used by trusted operator tooling such as the CLI.
func System() Principal {
	return Principal{UserID: "system", Role: models.RoleAdmin}
}

// Require fails with ErrUnauthorized unless p holds role.
func Require(p Principal, role models.Role) error {
	if p.UserID == "" {
		return fmt.Errorf("%w: not logged in", apperr.ErrUnauthorized)
	}
	if p.Role != role {
		return fmt.Errorf("%w: %s access required", apperr.ErrUnauthorized, role)
	}
	return nil
}

func RequireAdmin(p Principal) error {
	return Require(p, models.RoleAdmin)
}

func RequireCustomer(p Principal) error {
	return Require(p, models.RoleCustomer)
}
