package auth

import (
	"errors"
	"fmt"
	"time"

	"alias_gateway/internal/config"

	"github.com/golang-jwt/jwt/v4"
)

// AdminClaims are the claims carried by an admin session token.
type AdminClaims struct {
	User string `json:"user"`
	jwt.RegisteredClaims
}

// GenerateAdminJWT creates a short-lived token for the admin surface
func GenerateAdminJWT(user string, cfg *config.Config) (string, int64, error) {
	expirationTime := time.Now().Add(cfg.Admin.TokenTTL)
	claims := AdminClaims{
		User: user,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user,
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signedToken, err := token.SignedString(cfg.JWTSecret)
	if err != nil {
		return "", 0, err
	}
	return signedToken, expirationTime.Unix(), nil
}

// ValidateAdminJWT verifies an admin token and returns its claims
func ValidateAdminJWT(tokenString string, cfg *config.Config) (*AdminClaims, error) {
	claims := &AdminClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return cfg.JWTSecret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}
