package helpers

import (
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	m := NewJWTManager("secret", time.Hour)

	token, exp, err := m.GenerateToken("user-1")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if until := time.Until(exp); until < 59*time.Minute || until > 61*time.Minute {
		t.Fatalf("expiry %v not about an hour out", until)
	}

	claims, err := m.ParseToken(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserID != "user-1" {
		t.Fatalf("uid %q, want user-1", claims.UserID)
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	m := NewJWTManager("secret", -time.Minute)

	token, _, err := m.GenerateToken("user-1")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := m.ParseToken(token); err == nil {
		t.Fatalf("expired token must be rejected")
	}
}

func TestWrongSecretRejected(t *testing.T) {
	m := NewJWTManager("secret", time.Hour)
	other := NewJWTManager("different", time.Hour)

	token, _, err := m.GenerateToken("user-1")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := other.ParseToken(token); err == nil {
		t.Fatalf("token signed with another secret must be rejected")
	}
}

func TestMalformedTokenRejected(t *testing.T) {
	m := NewJWTManager("secret", time.Hour)
	if _, err := m.ParseToken("not-a-token"); err == nil {
		t.Fatalf("malformed token must be rejected")
	}
}
