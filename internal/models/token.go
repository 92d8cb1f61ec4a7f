package models

import "github.com/golang-jwt/jwt/v5"

// ConsentTokenClaims is the payload of the signed link sent in consent emails.
type ConsentTokenClaims struct {
	ConsentID string        `json:"consentId"`
	Status    ConsentStatus `json:"status"`
	jwt.RegisteredClaims
}
