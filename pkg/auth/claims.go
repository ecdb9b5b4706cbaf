package auth

import (
	"github.com/golang-jwt/jwt/v5"
)

// Role distinguishes the two console audiences.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleDriver   Role = "driver"
	RoleAdmin    Role = "admin"
)

// IsValid reports whether the value is a known Role.
func (r Role) IsValid() bool {
	return r == RoleCustomer || r == RoleDriver || r == RoleAdmin
}

// SessionClaims is the typed view of the JWT issued by the auth
// collaborator. This module only ever validates tokens, it never mints
// them.
type SessionClaims struct {
	UserID string `json:"user_id"`
	Role   Role   `json:"role"`
	jwt.RegisteredClaims
}

// Identity is the resolved authenticated user handed to checkout and
// tracking.
type Identity struct {
	UserID string
	Role   Role
}
