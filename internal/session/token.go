package session

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const tokenTTL = 12 * time.Hour

// NewRoomToken signs a session token scoping the holder to one room. It is
// issued after a successful password verification and demanded by the
// websocket endpoint.
func NewRoomToken(secret []byte, roomID string) (string, error) {
	claims := &jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(tokenTTL)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		Subject:   roomID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	ss, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign room token: %w", err)
	}

	return ss, nil
}

// ParseRoomToken validates a session token and returns the room id it was
// issued for.
func ParseRoomToken(secret []byte, tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (any, error) {
		return secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("parse room token: %w", err)
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("invalid room token")
	}

	return claims.Subject, nil
}
