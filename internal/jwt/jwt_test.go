package jwt

import (
	"testing"
	"time"
)

func TestGenerateAndValidate(t *testing.T) {
	m := NewJWTManager("test-secret")

	token, err := m.GenerateToken("u1", "b1", time.Minute)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := m.ValidateToken(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.UserID != "u1" || claims.BattleID != "b1" {
		t.Fatalf("claims = %+v", claims)
	}
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	token, err := NewJWTManager("secret-a").GenerateToken("u1", "b1", time.Minute)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := NewJWTManager("secret-b").ValidateToken(token); err == nil {
		t.Fatalf("token signed with another secret must be rejected")
	}
}

func TestValidateRejectsExpired(t *testing.T) {
	m := NewJWTManager("test-secret")
	token, err := m.GenerateToken("u1", "b1", -time.Minute)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := m.ValidateToken(token); err == nil {
		t.Fatalf("expired token must be rejected")
	}
}

func TestGenerateRequiresUser(t *testing.T) {
	m := NewJWTManager("test-secret")
	if _, err := m.GenerateToken("", "b1", time.Minute); err == nil {
		t.Fatalf("empty user id must be rejected")
	}
}
