package auth

import (
	"context"
	"testing"
	"time"
)

func TestTokenMaker_RoundTrip(t *testing.T) {
	tm := NewTokenMaker("test-secret")

	tok, err := tm.New("u_123", "user@example.com", "user", time.Minute)
	if err != nil {
		t.Fatalf("new token: %v", err)
	}

	claims, err := tm.Parse(tok)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}

	if claims.UserID != "u_123" {
		t.Fatalf("user_id=%s", claims.UserID)
	}
	if claims.Email != "user@example.com" {
		t.Fatalf("email=%s", claims.Email)
	}
	if claims.Role != "user" {
		t.Fatalf("role=%s", claims.Role)
	}
}

func TestTokenMaker_RejectsExpired(t *testing.T) {
	tm := NewTokenMaker("test-secret")

	tok, err := tm.New("u_123", "user@example.com", "user", -time.Minute)
	if err != nil {
		t.Fatalf("new token: %v", err)
	}

	if _, err := tm.Parse(tok); err == nil {
		t.Fatal("expected expired token to be rejected")
	}
}

func TestTokenMaker_RejectsWrongSecret(t *testing.T) {
	tok, err := NewTokenMaker("secret-a").New("u_123", "user@example.com", "user", time.Minute)
	if err != nil {
		t.Fatalf("new token: %v", err)
	}

	if _, err := NewTokenMaker("secret-b").Parse(tok); err == nil {
		t.Fatal("expected token signed with another secret to be rejected")
	}
}

func TestMemStore_CreateAndVerify(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()

	if err := s.Create(ctx, "User@Example.com", "password123", "user", "u_1"); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := s.Create(ctx, "user@example.com", "password456", "user", "u_2"); err != ErrEmailExists {
		t.Fatalf("expected ErrEmailExists, got %v", err)
	}

	u, err := s.Verify(ctx, "user@example.com", "password123")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if u.ID != "u_1" {
		t.Fatalf("id=%s", u.ID)
	}

	if _, err := s.Verify(ctx, "user@example.com", "wrong"); err != ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}
