package auth

import (
	"errors"
	"testing"
	"time"
)

func TestGenerateAndValidateToken(t *testing.T) {
	token, err := GenerateToken(42, "kasia", RoleManager, 9, time.Hour)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	claims, err := ValidateToken(token)
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if claims.UserID != 42 || claims.Username != "kasia" || claims.Role != RoleManager || claims.OrganizationID != 9 {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestValidateExpiredToken(t *testing.T) {
	token, err := GenerateToken(1, "old", "cashier", 1, -time.Minute)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	if _, err := ValidateToken(token); !errors.Is(err, ErrExpiredToken) {
		t.Fatalf("expected expired token error, got %v", err)
	}
}

func TestValidateGarbageToken(t *testing.T) {
	if _, err := ValidateToken("definitely.not.ajwt"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected invalid token error, got %v", err)
	}
}

func TestIsPrivilegedActor(t *testing.T) {
	if !IsPrivilegedActor(RoleAdmin) || !IsPrivilegedActor(RoleManager) {
		t.Fatalf("expected admin and manager to be privileged")
	}
	if IsPrivilegedActor("cashier") || IsPrivilegedActor("") {
		t.Fatalf("expected cashier to be unprivileged")
	}
}

func TestPINHashRoundTrip(t *testing.T) {
	hash, err := HashPIN("4321")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	if !VerifyPIN(hash, "4321") {
		t.Fatalf("expected matching PIN to verify")
	}
	if VerifyPIN(hash, "1234") {
		t.Fatalf("expected wrong PIN to fail")
	}
}
