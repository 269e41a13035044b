package auth

import (
	"context"
	"testing"
	"time"
)

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("hunter2hunter2")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if hash == "hunter2hunter2" {
		t.Fatal("hash must not equal the plaintext")
	}
	if err := CheckPassword(hash, "hunter2hunter2"); err != nil {
		t.Fatalf("correct password rejected: %v", err)
	}
	if err := CheckPassword(hash, "wrong-password"); err == nil {
		t.Fatal("wrong password accepted")
	}
}

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken("test-secret", Claims{UserID: "u1", RoleName: RoleManager}, time.Hour)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	claims, err := ParseToken("test-secret", token)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.UserID != "u1" || claims.RoleName != RoleManager {
		t.Fatalf("claims did not survive the round trip: %+v", claims)
	}
}

func TestTokenRejectedWithWrongSecret(t *testing.T) {
	token, err := GenerateToken("test-secret", Claims{UserID: "u1", RoleName: RoleEmployee}, time.Hour)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	if _, err := ParseToken("other-secret", token); err == nil {
		t.Fatal("token signed with a different secret must not parse")
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	token, err := GenerateToken("test-secret", Claims{UserID: "u1", RoleName: RoleEmployee}, -time.Minute)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	if _, err := ParseToken("test-secret", token); err == nil {
		t.Fatal("expired token must not parse")
	}
}

func TestRolePermissions(t *testing.T) {
	perms := StaticPermissions{}
	ctx := context.Background()
	has := func(role, permission string) bool {
		ok, err := perms.HasPermission(ctx, role, permission)
		if err != nil {
			t.Fatalf("HasPermission(%s, %s): %v", role, permission, err)
		}
		return ok
	}

	if !has(RoleHR, PermReviewCreate) {
		t.Fatal("hr should create reviews")
	}
	if has(RoleEmployee, PermReviewCreate) {
		t.Fatal("employee should not create reviews")
	}
	if !has(RoleEmployee, PermReviewEdit) {
		t.Fatal("employee should edit their reviews")
	}
	if has(RoleHR, PermReviewEdit) {
		t.Fatal("hr reads reviews but does not edit them")
	}
	if !has(RoleManager, PermMeetingCreate) {
		t.Fatal("manager should create meetings")
	}
	if !has(RoleHR, PermAuditRead) {
		t.Fatal("hr should read the audit log")
	}
	if has(RoleManager, PermAuditRead) {
		t.Fatal("manager should not read the audit log")
	}
	if has("unknown", PermReviewRead) {
		t.Fatal("unknown role has no permissions")
	}
}
