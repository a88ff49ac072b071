package auth

import (
	"testing"
	"time"

	"github.com/estately/estately/internal/domain"
)

func TestGenerateAndValidateToken(t *testing.T) {
	tm := NewTokenManager("test-secret", "estately", time.Hour)

	token, err := tm.GenerateToken("user-1", "alice@example.com", domain.RoleLandlord)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	claims, err := tm.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.UserID != "user-1" {
		t.Errorf("user id = %q, want user-1", claims.UserID)
	}
	if claims.Role != domain.RoleLandlord {
		t.Errorf("role = %q, want landlord", claims.Role)
	}
}

func TestGenerateTokenRequiresUserID(t *testing.T) {
	tm := NewTokenManager("test-secret", "estately", time.Hour)
	if _, err := tm.GenerateToken("", "alice@example.com", domain.RoleTenant); err == nil {
		t.Fatal("expected error for empty user id")
	}
}

func TestValidateTokenWrongSecret(t *testing.T) {
	tm := NewTokenManager("test-secret", "estately", time.Hour)
	other := NewTokenManager("other-secret", "estately", time.Hour)

	token, err := tm.GenerateToken("user-1", "alice@example.com", domain.RoleTenant)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	if _, err := other.ValidateToken(token); err == nil {
		t.Fatal("expected validation failure with wrong secret")
	}
}

func TestValidateExpiredToken(t *testing.T) {
	tm := NewTokenManager("test-secret", "estately", -time.Minute)

	token, err := tm.GenerateToken("user-1", "alice@example.com", domain.RoleTenant)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	if _, err := tm.ValidateToken(token); err == nil {
		t.Fatal("expected validation failure for expired token")
	}
}

func TestExtractToken(t *testing.T) {
	token, err := ExtractToken("Bearer abc.def.ghi")
	if err != nil {
		t.Fatalf("ExtractToken: %v", err)
	}
	if token != "abc.def.ghi" {
		t.Errorf("token = %q", token)
	}

	for _, header := range []string{"", "abc", "Basic abc", "Bearer a b"} {
		if _, err := ExtractToken(header); err == nil {
			t.Errorf("ExtractToken(%q): expected error", header)
		}
	}
}
