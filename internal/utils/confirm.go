package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const deleteTokenType = "delete_confirm"

var ErrInvalidConfirmation = errors.New("invalid or expired delete confirmation")

// GenerateDeleteToken issues a short-lived token that authorizes deleting
// exactly one product.
func GenerateDeleteToken(productID, secret string, ttl time.Duration, now time.Time) (string, time.Time, error) {
	expires := now.Add(ttl)
	claims := jwt.MapClaims{
		"sub":  productID,
		"type": deleteTokenType,
		"iat":  now.Unix(),
		"exp":  expires.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign delete token: %w", err)
	}
	return signed, expires, nil
}

// ValidateDeleteToken checks signature, expiry and that the token was issued
// for productID.
func ValidateDeleteToken(tokenString, productID, secret string, now time.Time) error {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	}, jwt.WithTimeFunc(func() time.Time { return now }), jwt.WithExpirationRequired())
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfirmation, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return ErrInvalidConfirmation
	}
	if claims["type"] != deleteTokenType {
		return fmt.Errorf("%w: wrong token type", ErrInvalidConfirmation)
	}
	if sub, _ := claims.GetSubject(); sub != productID {
		return fmt.Errorf("%w: token issued for another product", ErrInvalidConfirmation)
	}
	return nil
}
