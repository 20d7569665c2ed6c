package models

import (
	jwt "github.com/dgrijalva/jwt-go"
)

// MyClaims is the JWT claim set issued to clients. Subject carries the
// identity provider's stable user id.
type MyClaims struct {
	ExternalID string `json:"externalId"`
	Nickname   string `json:"nickname"`
	Tier       string `json:"tier"`
	jwt.StandardClaims
}
