package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// signingKey is the HS256 secret. Overridden at startup from configuration;
// the default only exists so tests and local runs work without env setup.
var signingKey = []byte("chatline_dev_signing_key_change_me")

// SetSigningKey replaces the token secret. Called once from main before
// the server accepts connections.
func SetSigningKey(key string) {
	if key != "" {
		signingKey = []byte(key)
	}
}

// Claims is the data stored inside a session JWT.
type Claims struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	jwt.RegisteredClaims
}

// GenerateToken creates a signed JWT for a specific user.
func GenerateToken(userID, name string, ttl time.Duration) (string, error) {
	claims := &Claims{
		UserID: userID,
		Name:   name,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "chatline",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(signingKey)
}

// ValidateToken parses a JWT string and verifies its signature and expiry.
func ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return signingKey, nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}
	return nil, jwt.ErrSignatureInvalid
}
