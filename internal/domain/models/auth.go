package models

import "github.com/golang-jwt/jwt/v5"

// AccessClaims represents the JWT claims issued by the practice-management
// identity provider. Session/token issuance itself is an external
// collaborator; the repository only verifies and reads these claims.
type AccessClaims struct {
	jwt.RegisteredClaims        // Standard JWT claims (sub, iss, aud, exp, iat, etc.)
	Email                string `json:"email"`
	Role                 string `json:"role"`  // "authenticated" or "anon"
	FirmID               string `json:"firm_id,omitempty"`
	Admin                bool   `json:"admin,omitempty"`
}

// GetUserID returns the user ID from the JWT subject claim.
// This is the primary identifier for the authenticated user.
func (c *AccessClaims) GetUserID() string {
	return c.Subject
}
