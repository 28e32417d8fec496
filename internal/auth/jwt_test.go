package auth

import (
	"testing"
	"time"

	"workforce/internal/user"
)

func testUser() *user.User {
	return &user.User{
		ID:    "u1",
		Name:  "Ana",
		Email: "ana@example.com",
		Role:  user.RoleAdmin,
	}
}

func TestIssueAndParse(t *testing.T) {
	token, exp, err := Issue(testUser(), "workforce", "test-key", time.Hour)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	if exp.Before(time.Now().Add(55 * time.Minute)) {
		t.Fatalf("expiry too early: %v", exp)
	}

	claims, err := Parse(token, "test-key", "workforce")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if claims.UserID() != "u1" {
		t.Fatalf("wrong subject %q", claims.UserID())
	}
	if claims.Email != "ana@example.com" || claims.Role != user.RoleAdmin {
		t.Fatalf("claims not carried: %+v", claims)
	}
}

func TestParseRejectsWrongKey(t *testing.T) {
	token, _, err := Issue(testUser(), "workforce", "test-key", time.Hour)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	if _, err := Parse(token, "other-key", "workforce"); err == nil {
		t.Fatal("token signed with a different key must not parse")
	}
}

func TestParseRejectsWrongIssuer(t *testing.T) {
	token, _, err := Issue(testUser(), "someone-else", "test-key", time.Hour)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	if _, err := Parse(token, "test-key", "workforce"); err == nil {
		t.Fatal("issuer mismatch must fail")
	}
}

func TestParseRejectsExpired(t *testing.T) {
	token, _, err := Issue(testUser(), "workforce", "test-key", -time.Minute)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	if _, err := Parse(token, "test-key", "workforce"); err == nil {
		t.Fatal("expired token must not parse")
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	if _, err := Parse("not.a.token", "test-key", "workforce"); err == nil {
		t.Fatal("malformed token must not parse")
	}
}
