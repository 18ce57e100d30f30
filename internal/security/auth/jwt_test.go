package auth

import (
	"testing"
	"time"
)

func TestGenerateAndValidateToken(t *testing.T) {
	tm := NewTokenManager("test-secret", "orgvault-test", time.Hour)

	token, err := tm.GenerateToken("admin-1", "org-1", "Acme Corp", "a@acme.com")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	claims, err := tm.ValidateToken(token)
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if claims.AdminID != "admin-1" || claims.TenantID != "org-1" {
		t.Errorf("unexpected identity claims: %+v", claims)
	}
	if claims.TenantName != "Acme Corp" || claims.Email != "a@acme.com" {
		t.Errorf("unexpected tenant claims: %+v", claims)
	}
}

func TestGenerateTokenRequiresIdentity(t *testing.T) {
	tm := NewTokenManager("test-secret", "", time.Hour)

	if _, err := tm.GenerateToken("", "org-1", "Acme", "a@acme.com"); err == nil {
		t.Fatal("expected error for empty admin id")
	}
	if _, err := tm.GenerateToken("admin-1", "", "Acme", "a@acme.com"); err == nil {
		t.Fatal("expected error for empty organization id")
	}
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	tm := NewTokenManager("test-secret", "", time.Nanosecond)

	token, err := tm.GenerateToken("admin-1", "org-1", "Acme", "a@acme.com")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	time.Sleep(10 * time.Millisecond)

	if _, err := tm.ValidateToken(token); err == nil {
		t.Fatal("expired token validated")
	}
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	issuing := NewTokenManager("secret-a", "", time.Hour)
	verifying := NewTokenManager("secret-b", "", time.Hour)

	token, err := issuing.GenerateToken("admin-1", "org-1", "Acme", "a@acme.com")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if _, err := verifying.ValidateToken(token); err == nil {
		t.Fatal("token signed with a different secret validated")
	}
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	tm := NewTokenManager("test-secret", "", time.Hour)

	for _, tok := range []string{"", "garbage", "a.b.c", "eyJhbGciOiJub25lIn0.e30."} {
		if _, err := tm.ValidateToken(tok); err == nil {
			t.Errorf("token %q validated", tok)
		}
	}
}

func TestExtractToken(t *testing.T) {
	if _, err := ExtractToken("Bearer"); err == nil {
		t.Error("expected error for header without token")
	}
	if _, err := ExtractToken("Basic abc"); err == nil {
		t.Error("expected error for non-bearer scheme")
	}
	tok, err := ExtractToken("Bearer abc.def.ghi")
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}
	if tok != "abc.def.ghi" {
		t.Errorf("extracted %q", tok)
	}
}
