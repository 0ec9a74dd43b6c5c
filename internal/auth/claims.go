package auth

import (
	"time"

	"anara-skills/registrar/internal/constants"
)

// UserClaims is what handlers see of an authenticated caller.
type UserClaims interface {
	UserID() string
	Role() constants.Role
	TokenID() string
	ExpiresAt() time.Time
	Source() string
}

type JWTClaims struct {
	UserUUID  string
	RoleValue constants.Role
	JTI       string
	Expiry    time.Time
}

func (c *JWTClaims) UserID() string       { return c.UserUUID }
func (c *JWTClaims) Role() constants.Role { return c.RoleValue }
func (c *JWTClaims) TokenID() string      { return c.JTI }
func (c *JWTClaims) ExpiresAt() time.Time { return c.Expiry }
func (c *JWTClaims) Source() string       { return "JWT" }
