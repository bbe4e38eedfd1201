package auth

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// IdentityFromClaims reads the user_id and email claims written by the service.
func IdentityFromClaims(claims jwt.MapClaims) (Identity, error) {
	raw, _ := claims["user_id"].(string)
	if raw == "" {
		return Identity{}, ErrInvalidTokenMissingUserID
	}
	uid, err := bson.ObjectIDFromHex(raw)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidTokenMissingUserID, err)
	}

	email, _ := claims["email"].(string)
	if email == "" {
		return Identity{}, ErrInvalidTokenMissingEmail
	}
	return Identity{UserID: uid, Email: email}, nil
}

// ParseToken verifies an HS256 access token against secret and returns its identity.
func ParseToken(secret, raw string) (Identity, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return Identity{}, ErrUnauthorized(err)
	}
	return IdentityFromClaims(claims)
}
