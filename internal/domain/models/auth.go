package models

import "github.com/golang-jwt/jwt/v5"

// SupabaseClaims represents the JWT claims structure from Supabase Auth.
// See: https://supabase.com/docs/guides/auth/jwts
type SupabaseClaims struct {
	jwt.RegisteredClaims                // Standard JWT claims (sub, iss, aud, exp, iat, etc.)
	Email                string         `json:"email"`
	AppMetadata          map[string]any `json:"app_metadata,omitempty"`
	UserMetadata         map[string]any `json:"user_metadata,omitempty"`
	Role                 string         `json:"role"` // "authenticated" or "anon"
	AAL                  string         `json:"aal,omitempty"`
	SessionID            string         `json:"session_id,omitempty"`
	IsAnonymous          bool           `json:"is_anonymous"`
}

// GetUserID returns the user ID from the JWT subject claim.
// This is the owner id stored on workspaces and collections.
func (c *SupabaseClaims) GetUserID() string {
	return c.Subject
}
