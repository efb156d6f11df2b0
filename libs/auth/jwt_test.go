package auth

import (
	"testing"
	"time"
)

func TestHS256RoundTrip(t *testing.T) {
	claims := Claims{
		Sub:  "admin",
		Role: "admin",
		Sid:  "session-1",
		Iat:  time.Now().Unix(),
		Exp:  time.Now().Add(1 * time.Hour).Unix(),
	}
	secret := "test-secret"

	token, err := SignHS256(claims, secret)
	if err != nil {
		t.Fatalf("SignHS256 failed: %v", err)
	}
	if !LooksLikeJWT(token) {
		t.Fatalf("expected a three segment token, got %q", token)
	}
	parsed, err := ParseAndVerifyHS256(token, secret)
	if err != nil {
		t.Fatalf("ParseAndVerifyHS256 failed: %v", err)
	}
	if parsed.Sub != claims.Sub || parsed.Role != claims.Role || parsed.Sid != claims.Sid {
		t.Fatalf("claims mismatch: got %+v", parsed)
	}
	if _, err := ParseAndVerifyHS256(token, "wrong-secret"); err == nil {
		t.Fatal("expected verification error with wrong secret")
	}
	if _, err := ParseAndVerifyHS256(token, ""); err == nil {
		t.Fatal("expected verification error with empty secret")
	}
}

func TestHS256Expired(t *testing.T) {
	issued := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	token, err := SignHS256(Claims{Sub: "admin", Sid: "s", Iat: issued.Unix(), Exp: issued.Add(time.Minute).Unix()}, "k")
	if err != nil {
		t.Fatalf("SignHS256 failed: %v", err)
	}
	if _, err := parseAndVerifyHS256(token, "k", issued.Add(30*time.Second)); err != nil {
		t.Fatalf("token should still be valid: %v", err)
	}
	if _, err := parseAndVerifyHS256(token, "k", issued.Add(2*time.Minute)); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken after expiry, got %v", err)
	}
}

func TestLooksLikeJWT(t *testing.T) {
	if LooksLikeJWT("plain-shared-secret") {
		t.Fatal("plain secret must not look like a JWT")
	}
}
