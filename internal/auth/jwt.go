package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Verification failures are classified so callers can tell an expired token
// apart from a tampered or malformed one.
var (
	ErrTokenExpired = errors.New("token has expired")
	ErrTokenInvalid = errors.New("token is invalid")
)

var (
	jwtSecret []byte
	tokenTTL  = time.Hour * 168
)

// Init sets the signing secret and token lifetime. It must be called before
// any token is issued or verified; an empty secret is rejected so the process
// never signs with a guessable default.
func Init(secret string, ttl time.Duration) error {
	if secret == "" {
		return fmt.Errorf("JWT secret must not be empty")
	}
	if ttl <= 0 {
		return fmt.Errorf("token TTL must be positive")
	}

	jwtSecret = []byte(secret)
	tokenTTL = ttl
	return nil
}

func GenerateJWT(userID uint, email string) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"email":   email,
		"exp":     time.Now().Add(tokenTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret)
}

// VerifyJWT parses and validates a token, returning its claims. Failures are
// ErrTokenExpired or ErrTokenInvalid, matchable with errors.Is.
func VerifyJWT(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return jwtSecret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}

// UserIDFromClaims extracts the user id claim. JSON numbers decode as
// float64, so the claim needs an explicit conversion.
func UserIDFromClaims(claims jwt.MapClaims) (uint, bool) {
	userIDFloat, ok := claims["user_id"].(float64)
	if !ok {
		return 0, false
	}
	return uint(userIDFloat), true
}
