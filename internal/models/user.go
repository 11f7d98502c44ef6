package models

import (
	"time"

	"water-delivery/internal/apperr"
)

// Role is attached to a user record and re-read on every request
type Role string

const (
	RoleAdmin      Role = "ADMIN"
	RoleOrderTaker Role = "ORDER_TAKER"
	RoleCourier    Role = "COURIER"
)

var AllRoles = []Role{RoleAdmin, RoleOrderTaker, RoleCourier}

// ParseRole validates a raw role value.
func ParseRole(raw string) (Role, error) {
	switch r := Role(raw); r {
	case RoleAdmin, RoleOrderTaker, RoleCourier:
		return r, nil
	}
	allowed := make([]string, len(AllRoles))
	for i, r := range AllRoles {
		allowed[i] = string(r)
	}
	return "", apperr.InvalidValue("role", "unknown role", allowed)
}

// MayTransition reports whether the role is allowed to perform an already
// legal status transition. Order-takers only dispatch; couriers only close
// orders that are on the road.
func (r Role) MayTransition(from, to OrderStatus) bool {
	switch r {
	case RoleAdmin:
		return true
	case RoleOrderTaker:
		return from == StatusOpen && to == StatusInTransit
	case RoleCourier:
		return from == StatusInTransit && (to == StatusDelivered || to == StatusCanceled)
	}
	return false
}

// User represents a staff account
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
}

// Session binds an opaque token to a user id. It carries no role.
type Session struct {
	Token     string    `json:"token"`
	UserID    int64     `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session is no longer usable at now.
func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Principal is the authenticated identity resolved for a single request.
type Principal struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}
