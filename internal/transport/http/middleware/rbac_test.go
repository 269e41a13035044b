package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"perfdesk/internal/domain/auth"
)

type fakePerms struct {
	allowed map[string]bool
	err     error
}

func (f fakePerms) HasPermission(_ context.Context, roleName, permission string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.allowed[roleName+"/"+permission], nil
}

func permRequest(role string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/reviews", nil)
	if role == "" {
		return req
	}
	ctx := context.WithValue(req.Context(), ctxKeyUser, auth.UserContext{UserID: "u1", RoleName: role})
	return req.WithContext(ctx)
}

func TestRequirePermission(t *testing.T) {
	perms := fakePerms{allowed: map[string]bool{"Manager/review.read": true}}
	handler := RequirePermission("review.read", perms)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, permRequest("Manager"))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected permitted role to pass, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, permRequest("Employee"))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected missing permission to yield 403, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, permRequest(""))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected anonymous request to yield 401, got %d", rec.Code)
	}
}

func TestRequirePermissionStoreFailure(t *testing.T) {
	handler := RequirePermission("review.read", fakePerms{err: errors.New("boom")})(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, permRequest("Manager"))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected permission store failure to yield 500, got %d", rec.Code)
	}
}
