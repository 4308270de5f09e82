package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestCartScopePrefersAuthenticatedUser(t *testing.T) {
	userID := uuid.NewString()
	var captured string
	handler := CartScope(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = CartScopeFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Cart-Token", "device-token")
	req = req.WithContext(WithUserID(req.Context(), userID))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if captured != UserCartScope(userID) {
		t.Fatalf("expected user scope, got %s", captured)
	}
}

func TestCartScopeUsesGuestToken(t *testing.T) {
	var captured string
	handler := CartScope(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = CartScopeFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Cart-Token", "device-token")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if captured != GuestCartScope("device-token") {
		t.Fatalf("expected guest scope, got %s", captured)
	}
	if resp.Header().Get("X-Cart-Token") != "device-token" {
		t.Fatal("expected token echoed back")
	}
}

func TestCartScopeMintsTokenForFreshGuests(t *testing.T) {
	var captured string
	handler := CartScope(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = CartScopeFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	minted := resp.Header().Get("X-Cart-Token")
	if minted == "" {
		t.Fatal("expected a minted cart token")
	}
	if !strings.HasPrefix(captured, "guest:") || captured != GuestCartScope(minted) {
		t.Fatalf("scope %s does not match minted token %s", captured, minted)
	}
}
