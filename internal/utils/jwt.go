package utils

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type jwtCustomClaims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	Type   string `json:"type"`
	jwt.RegisteredClaims
}

func newToken(secret string, userID uint, role, tokenType string, ttl time.Duration) (string, error) {
	claims := &jwtCustomClaims{
		UserID: strconv.FormatUint(uint64(userID), 10),
		Role:   role,
		Type:   tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// GenerateToken creates a signed access JWT for the provided user.
func GenerateToken(secret string, userID uint, role string, ttl time.Duration) (string, error) {
	return newToken(secret, userID, role, "access", ttl)
}

// GenerateRefreshToken creates a signed refresh JWT for the provided user.
func GenerateRefreshToken(secret string, userID uint, role string, ttl time.Duration) (string, error) {
	return newToken(secret, userID, role, "refresh", ttl)
}

func parse(secret, tokenString string) (*jwtCustomClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwtCustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*jwtCustomClaims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

// ParseToken validates an access token and returns the embedded user ID and role.
func ParseToken(secret, tokenString string) (uint, string, error) {
	claims, err := parse(secret, tokenString)
	if err != nil {
		return 0, "", err
	}
	if claims.Type != "access" {
		return 0, "", fmt.Errorf("not an access token")
	}

	id, err := strconv.ParseUint(claims.UserID, 10, 64)
	if err != nil {
		return 0, "", err
	}
	return uint(id), claims.Role, nil
}

// ParseRefreshToken validates a refresh token and returns the user ID.
func ParseRefreshToken(secret, tokenString string) (uint, error) {
	claims, err := parse(secret, tokenString)
	if err != nil {
		return 0, err
	}
	if claims.Type != "refresh" {
		return 0, fmt.Errorf("not a refresh token")
	}

	id, err := strconv.ParseUint(claims.UserID, 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
