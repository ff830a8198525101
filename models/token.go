package models

import "github.com/golang-jwt/jwt/v5"

// TokenClaims is the verified identity carried by an access token.
type TokenClaims struct {
	UserID string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   Role   `json:"role"`
	jwt.RegisteredClaims
}
