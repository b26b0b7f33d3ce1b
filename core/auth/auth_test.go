package auth

import (
	"testing"
	"time"
)

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "correct horse battery staple" {
		t.Fatal("password stored in the clear")
	}
	if !CheckPasswordHash("correct horse battery staple", hash) {
		t.Error("correct password rejected")
	}
	if CheckPasswordHash("wrong password", hash) {
		t.Error("wrong password accepted")
	}
}

func TestTokenRoundTrip(t *testing.T) {
	Configure("test-secret", time.Hour)

	token, err := GenerateToken(42, "user@example.com")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	claims, err := ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if claims.UserID != 42 || claims.Email != "user@example.com" {
		t.Errorf("claims = %d / %q", claims.UserID, claims.Email)
	}
}

func TestParseTokenRejectsTampering(t *testing.T) {
	Configure("test-secret", time.Hour)

	token, err := GenerateToken(42, "user@example.com")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	if _, err := ParseToken(token + "x"); err == nil {
		t.Error("tampered token accepted")
	}
	if _, err := ParseToken("not.a.token"); err == nil {
		t.Error("garbage token accepted")
	}
}
