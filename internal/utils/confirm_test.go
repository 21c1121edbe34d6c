package utils

import (
	"errors"
	"testing"
	"time"
)

func TestDeleteToken(t *testing.T) {
	secret := "test-secret-key-12345"
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	token, expires, err := GenerateDeleteToken("100001", secret, 5*time.Minute, now)
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}
	if token == "" {
		t.Fatal("Token should not be empty")
	}
	if !expires.Equal(now.Add(5 * time.Minute)) {
		t.Errorf("Unexpected expiry %v", expires)
	}

	// Valid for the same product within ttl
	if err := ValidateDeleteToken(token, "100001", secret, now.Add(time.Minute)); err != nil {
		t.Errorf("Token should be valid: %v", err)
	}

	// Another product
	if err := ValidateDeleteToken(token, "100002", secret, now); !errors.Is(err, ErrInvalidConfirmation) {
		t.Errorf("Token for another product should be rejected, got %v", err)
	}

	// Expired
	if err := ValidateDeleteToken(token, "100001", secret, now.Add(10*time.Minute)); !errors.Is(err, ErrInvalidConfirmation) {
		t.Errorf("Expired token should be rejected, got %v", err)
	}

	// Wrong secret
	if err := ValidateDeleteToken(token, "100001", "other-secret", now); !errors.Is(err, ErrInvalidConfirmation) {
		t.Errorf("Token with wrong secret should be rejected, got %v", err)
	}

	// Garbage
	if err := ValidateDeleteToken("not-a-token", "100001", secret, now); !errors.Is(err, ErrInvalidConfirmation) {
		t.Errorf("Malformed token should be rejected, got %v", err)
	}
}
