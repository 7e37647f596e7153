// Package auth provides JWT issuance/validation and password hashing for the
// dashboard API.
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/preyalameta02/balance-sheet-analysis/constants"
)

// Claims are the token fields the server trusts after validation.
type Claims struct {
	UserID uuid.UUID
	Email  string
	Role   constants.Role
}

// GenerateToken issues an HS256 bearer token for the user.
func GenerateToken(userID uuid.UUID, email string, role constants.Role, secret string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub":   userID.String(),
		"email": email,
		"role":  string(role),
		"exp":   time.Now().Add(ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ValidateToken checks the token signature and returns parsed claims if valid.
func ValidateToken(tokenString, secret string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	sub, _ := mapClaims["sub"].(string)
	userID, err := uuid.Parse(sub)
	if err != nil {
		return nil, fmt.Errorf("invalid subject claim: %w", err)
	}
	email, _ := mapClaims["email"].(string)
	roleStr, _ := mapClaims["role"].(string)
	role, ok := constants.ParseRole(roleStr)
	if !ok {
		return nil, fmt.Errorf("unknown role claim %q", roleStr)
	}

	return &Claims{UserID: userID, Email: email, Role: role}, nil
}
