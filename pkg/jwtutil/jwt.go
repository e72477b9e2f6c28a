package jwtutil

import (
	"errors"
	"time"

	"workspace-service/pkg/config"

	"github.com/golang-jwt/jwt/v4"
)

var (
	secret     = []byte("secret-key")
	expiration = 24 * time.Hour
)

// SessionClaims identifies the caller and the server-side session backing the token
type SessionClaims struct {
	SessionID string `json:"session_id"`
	UserID    string `json:"user_id"`
	jwt.RegisteredClaims
}

// Initialize sets the signing key and token lifetime
func Initialize(cfg *config.JWTConfig) {
	secret = []byte(cfg.SigningKey)
	if d := cfg.Expiration(); d > 0 {
		expiration = d
	}
}

// Expiration returns the configured token lifetime
func Expiration() time.Duration {
	return expiration
}

// GenerateToken creates a signed token for a session
func GenerateToken(sessionID, userID string) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		SessionID: sessionID,
		UserID:    userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(expiration)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ValidateToken validates and parses the JWT token
func ValidateToken(tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*SessionClaims); ok && token.Valid && claims.SessionID != "" {
		return claims, nil
	}

	return nil, jwt.ErrSignatureInvalid
}
