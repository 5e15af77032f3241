package models

import "github.com/golang-jwt/jwt/v5"

// AnonymousUserID scopes preferences when authentication is disabled.
const AnonymousUserID = "local"

// JWTClaims represents the access token payload.
type JWTClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email,omitempty"`
	jwt.RegisteredClaims
}
