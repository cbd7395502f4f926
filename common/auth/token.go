package auth

import (
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v4"
)

// TokenVerifier checks HMAC-signed access tokens issued by the auth service.
// Issuing tokens is not this service's job.
type TokenVerifier struct {
	secretKey []byte
}

func NewTokenVerifier(secret string) *TokenVerifier {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return &TokenVerifier{}
	}
	return &TokenVerifier{secretKey: []byte(secret)}
}

// ParseAndValidateToken parses a JWT token string and returns its claims.
// If expectedType is non-empty, the claim "typ" must match it.
func (v *TokenVerifier) ParseAndValidateToken(tokenStr, expectedType string) (jwt.MapClaims, error) {
	if v == nil || v.secretKey == nil {
		return nil, fmt.Errorf("JWT secret not configured")
	}

	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secretKey, nil
	})

	if err != nil || token == nil || !token.Valid {
		return nil, fmt.Errorf("invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}
	if expectedType != "" {
		if typ, ok := claims["typ"].(string); !ok || typ != expectedType {
			return nil, fmt.Errorf("invalid token type")
		}
	}
	return claims, nil
}

// Role returns the "role" claim, or "" when absent.
func Role(claims jwt.MapClaims) string {
	role, _ := claims["role"].(string)
	return role
}
