package domain

import (
	"fmt"
	"strings"
	"time"
)

// Role is the closed set of privileges an Identity can hold.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleStandard Role = "standard"
)

// ParseRole decodes a role claim. Anything outside the known set is rejected
// so that a token can never carry a role the service does not understand.
func ParseRole(s string) (Role, error) {
	switch r := Role(strings.TrimSpace(s)); r {
	case RoleAdmin, RoleStandard:
		return r, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// Identity models a registered account.
type Identity struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// IdentityContext is the verified view of a caller, derived from token claims only.
type IdentityContext struct {
	IdentityID int64
	Username   string
	Role       Role
}

// IsAdmin reports whether the caller holds the admin role.
func (c IdentityContext) IsAdmin() bool {
	return c.Role == RoleAdmin
}
