package jwttoken

import (
	authmw "veriscreen/pkg/platform/middleware/auth"
)

func toMiddlewareClaims(claims *Claims) *authmw.JWTClaims {
	return &authmw.JWTClaims{
		ClientID: claims.ClientID,
		Subject:  claims.Subject,
		JTI:      claims.ID,
	}
}

// JWTServiceAdapter bridges JWTService to the auth middleware's validator
// interface.
type JWTServiceAdapter struct {
	service *JWTService
}

func NewJWTServiceAdapter(service *JWTService) *JWTServiceAdapter {
	return &JWTServiceAdapter{service: service}
}

func (a *JWTServiceAdapter) ValidateToken(tokenString string) (*authmw.JWTClaims, error) {
	claims, err := a.service.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	return toMiddlewareClaims(claims), nil
}
