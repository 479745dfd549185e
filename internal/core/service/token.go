package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL is the validity window of a credential token.
const DefaultTokenTTL = 2 * time.Hour

// tokenClaims is the signed payload of a credential token. Role travels as its
// string name and is decoded back into domain.Role by the Guard.
type tokenClaims struct {
	IdentityID int64  `json:"uid"`
	Username   string `json:"username"`
	Role       string `json:"role"`
	jwt.RegisteredClaims
}
