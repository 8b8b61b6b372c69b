package models

import "time"

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleCustomer Role = "customer"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleCustomer
}

// User is an account. OrderHistory is append-only and chronological.
type User struct {
	ID           string    `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Role         Role      `json:"role" db:"role"`
	PasswordHash string    `json:"password_hash" db:"password_hash"`
	OrderHistory []string  `json:"order_history" db:"order_history"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

func (u User) Clone() User {
	c := u
	c.OrderHistory = make([]string, len(u.OrderHistory))
	copy(c.OrderHistory, u.OrderHistory)
	return c
}

// IsFirstOrder reports whether the user has not placed any order yet.
func (u User) IsFirstOrder() bool {
	return len(u.OrderHistory) == 0
}
