package auth

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/zkpauth/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims are the registered claims carried by a jwt session: sub is the
// user id, jti a random token id, exp the session expiry.
type Claims struct {
	jwt.RegisteredClaims
}

func GenerateToken(userID, tokenID string, secretKey []byte, now time.Time, validityDuration time.Duration) (string, error) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  userID,
			ID:       tokenID,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if validityDuration > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(validityDuration))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// GetUserIDFromToken validates a jwt session and returns its subject. Any
// validation failure is reported as common.ErrorUnauthenticated.
func GetUserIDFromToken(tokenString string, secretKey []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrorUnauthenticated, err)
	}

	if !token.Valid {
		return "", common.ErrorUnauthenticated
	}

	return claims.Subject, nil
}
